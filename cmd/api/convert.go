package main

import (
	"time"

	v1 "github.com/PaulBabatuyi/surepay-gRPC/api/surepay/v1"
	"github.com/PaulBabatuyi/surepay-gRPC/internal/data"
	"github.com/PaulBabatuyi/surepay-gRPC/internal/session"
	"google.golang.org/protobuf/types/known/timestamppb"
)

// ts converts a time, leaving unset times unset on the wire.
func ts(t time.Time) *timestamppb.Timestamp {
	if t.IsZero() {
		return nil
	}
	return timestamppb.New(t)
}

func fromTS(t *timestamppb.Timestamp) time.Time {
	if t == nil {
		return time.Time{}
	}
	return t.AsTime()
}

func toProfile(p *session.Profile) *v1.Profile {
	return &v1.Profile{
		Uid:          p.UID,
		Username:     p.Username,
		Email:        p.Email,
		IsAdmin:      p.IsAdmin,
		HasSeenGuide: p.HasSeenGuide,
	}
}

func toBooking(b *data.Booking) *v1.Booking {
	return &v1.Booking{
		Id:              b.ID.Hex(),
		UserId:          b.UserID,
		FirstName:       b.FirstName,
		LastName:        b.LastName,
		Sex:             b.Sex,
		Birthdate:       ts(b.Birthdate),
		PaymentType:     b.PaymentType,
		Notes:           b.Notes,
		SocialMediaLink: b.SocialMediaLink,
		Screenshot:      b.Screenshot,
		Date:            ts(b.Date),
		Status:          string(b.Status),
		CreatedAt:       ts(b.CreatedAt),
	}
}

// bookingFromWire copies the client-settable fields only.
func bookingFromWire(b *v1.Booking) *data.Booking {
	if b == nil {
		return &data.Booking{}
	}
	return &data.Booking{
		UserID:          b.UserId,
		FirstName:       b.FirstName,
		LastName:        b.LastName,
		Sex:             b.Sex,
		Birthdate:       fromTS(b.Birthdate),
		PaymentType:     b.PaymentType,
		Notes:           b.Notes,
		SocialMediaLink: b.SocialMediaLink,
		Screenshot:      b.Screenshot,
		Date:            fromTS(b.Date),
	}
}

func toRequest(r *data.Request) *v1.Request {
	return &v1.Request{
		Id:          r.ID.Hex(),
		UserId:      r.UserID,
		FirstName:   r.FirstName,
		LastName:    r.LastName,
		Sex:         r.Sex,
		Birthdate:   ts(r.Birthdate),
		PaymentType: r.PaymentType,
		Notes:       r.Notes,
		Screenshot:  r.Screenshot,
		Time:        ts(r.Time),
		Status:      string(r.Status),
		CreatedAt:   ts(r.CreatedAt),
	}
}

func requestFromWire(r *v1.Request) *data.Request {
	if r == nil {
		return &data.Request{}
	}
	return &data.Request{
		UserID:      r.UserId,
		FirstName:   r.FirstName,
		LastName:    r.LastName,
		Sex:         r.Sex,
		Birthdate:   fromTS(r.Birthdate),
		PaymentType: r.PaymentType,
		Notes:       r.Notes,
		Screenshot:  r.Screenshot,
		Time:        fromTS(r.Time),
	}
}

func toChatMessage(m *data.Message) *v1.ChatMessage {
	return &v1.ChatMessage{
		Id:          m.ID.Hex(),
		SenderId:    m.SenderID,
		RecipientId: m.RecipientID,
		Message:     m.Message,
		ImageUrl:    m.ImageURL,
		Timestamp:   timestamppb.New(m.Timestamp),
	}
}

func toThreadSummary(t *data.ThreadSummary) *v1.ThreadSummary {
	return &v1.ThreadSummary{
		UserId:          t.UserID,
		Username:        t.Username,
		LastMessage:     t.LastMessage,
		LastMessageTime: ts(t.LastMessageTime),
	}
}

func toTransaction(t *data.Transaction) *v1.Transaction {
	return &v1.Transaction{
		Id:     t.ID.Hex(),
		UserId: t.UserID,
		Amount: t.Amount,
		Date:   ts(t.Date),
	}
}
