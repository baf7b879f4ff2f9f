package data

import (
	"time"

	"github.com/PaulBabatuyi/surepay-gRPC/internal/lifecycle"
	"github.com/PaulBabatuyi/surepay-gRPC/internal/normalize"
	"go.mongodb.org/mongo-driver/v2/bson"
)

// AdminID is the fixed participant id of the admin side of every chat thread.
const AdminID = "admin"

// User maps to users collection: the profile document keyed by the identity uid.
// The flags are pointers so a document written before they existed can be
// told apart from one that stores false.
type User struct {
	UID          string `bson:"_id"`
	Username     string `bson:"username"`
	Email        string `bson:"email"`
	IsAdmin      *bool  `bson:"isAdmin,omitempty"`
	HasSeenGuide *bool  `bson:"hasSeenGuide,omitempty"`
}

// Account maps to accounts collection (identity provider credentials)
type Account struct {
	ID              bson.ObjectID `bson:"_id,omitempty"`
	Email           string        `bson:"email"`
	Password        string        `bson:"password"`
	EmailVerified   bool          `bson:"emailVerified"`
	CreatedAt       time.Time     `bson:"created_at"`
	UpdatedAt       time.Time     `bson:"updated_at"`
	LastSignedOutAt time.Time     `bson:"last_signed_out_at,omitempty"`
}

// Booking maps to bookings collection: a scheduled payment-assistance session.
type Booking struct {
	ID              bson.ObjectID    `bson:"_id,omitempty" json:"id"`
	UserID          string           `bson:"userId" json:"userId" validate:"required"`
	FirstName       string           `bson:"firstName" json:"firstName" validate:"required"`
	LastName        string           `bson:"lastName" json:"lastName" validate:"required"`
	Sex             string           `bson:"sex" json:"sex"`
	Birthdate       time.Time        `bson:"birthdate,omitempty" json:"birthdate"`
	PaymentType     string           `bson:"paymentType" json:"paymentType"`
	Notes           string           `bson:"notes" json:"notes"`
	SocialMediaLink string           `bson:"socialMediaLink" json:"socialMediaLink" validate:"required"`
	Screenshot      string           `bson:"screenshot,omitempty" json:"screenshot" validate:"omitempty,url"`
	Date            time.Time        `bson:"date" json:"date"`
	Status          lifecycle.Status `bson:"status" json:"status"`
	CreatedAt       time.Time        `bson:"createdAt" json:"createdAt"`
}

// RecordID returns the hex form of the ObjectID.
func (b *Booking) RecordID() string { return b.ID.Hex() }

// OwnerID returns the uid of the user who filed the booking.
func (b *Booking) OwnerID() string { return b.UserID }

// Prepare trims every text field and stamps status and createdAt. A missing
// scheduled date defaults to createdAt.
func (b *Booking) Prepare(status lifecycle.Status, createdAt time.Time) {
	b.UserID = normalize.Text(b.UserID)
	b.FirstName = normalize.Text(b.FirstName)
	b.LastName = normalize.Text(b.LastName)
	b.Sex = normalize.Text(b.Sex)
	b.PaymentType = normalize.Text(b.PaymentType)
	b.Notes = normalize.Text(b.Notes)
	b.SocialMediaLink = normalize.Text(b.SocialMediaLink)
	b.Screenshot = normalize.Text(b.Screenshot)
	if b.Date.IsZero() {
		b.Date = createdAt
	}
	b.Status = status
	b.CreatedAt = createdAt
}

// Request maps to requests collection: a one-off payment request processed
// immediately, with a preferred contact time instead of a scheduled day.
type Request struct {
	ID          bson.ObjectID    `bson:"_id,omitempty" json:"id"`
	UserID      string           `bson:"userId" json:"userId" validate:"required"`
	FirstName   string           `bson:"firstName" json:"firstName" validate:"required"`
	LastName    string           `bson:"lastName" json:"lastName" validate:"required"`
	Sex         string           `bson:"sex" json:"sex"`
	Birthdate   time.Time        `bson:"birthdate,omitempty" json:"birthdate"`
	PaymentType string           `bson:"paymentType" json:"paymentType" validate:"required"`
	Notes       string           `bson:"notes" json:"notes"`
	Screenshot  string           `bson:"screenshot,omitempty" json:"screenshot" validate:"omitempty,url"`
	Time        time.Time        `bson:"time" json:"time"`
	Status      lifecycle.Status `bson:"status" json:"status"`
	CreatedAt   time.Time        `bson:"createdAt" json:"createdAt"`
}

// RecordID returns the hex form of the ObjectID.
func (r *Request) RecordID() string { return r.ID.Hex() }

// OwnerID returns the uid of the user who filed the request.
func (r *Request) OwnerID() string { return r.UserID }

// Prepare trims every text field and stamps status and createdAt. A missing
// contact time defaults to createdAt.
func (r *Request) Prepare(status lifecycle.Status, createdAt time.Time) {
	r.UserID = normalize.Text(r.UserID)
	r.FirstName = normalize.Text(r.FirstName)
	r.LastName = normalize.Text(r.LastName)
	r.Sex = normalize.Text(r.Sex)
	r.PaymentType = normalize.Text(r.PaymentType)
	r.Notes = normalize.Text(r.Notes)
	r.Screenshot = normalize.Text(r.Screenshot)
	if r.Time.IsZero() {
		r.Time = createdAt
	}
	r.Status = status
	r.CreatedAt = createdAt
}

// Message maps to messages collection: one chat message of a user <-> admin thread.
type Message struct {
	ID          bson.ObjectID `bson:"_id,omitempty"`
	SenderID    string        `bson:"senderId"`
	RecipientID string        `bson:"recipientId"`
	Message     string        `bson:"message"`
	ImageURL    string        `bson:"imageUrl,omitempty"`
	Timestamp   time.Time     `bson:"timestamp"`
}

// ThreadSummary is a minimal struct used by the admin thread list
type ThreadSummary struct {
	UserID          string
	Username        string
	LastMessage     string
	LastMessageTime time.Time
}

// Transaction maps to transactions collection (read-only display)
type Transaction struct {
	ID     bson.ObjectID `bson:"_id,omitempty"`
	UserID string        `bson:"userId"`
	Amount float64       `bson:"amount"`
	Date   time.Time     `bson:"date"`
}

func (b *Booking) canonicalStatus() { b.Status = canonical(b.Status) }
func (r *Request) canonicalStatus() { r.Status = canonical(r.Status) }

// canonical maps stored spellings onto the canonical status; anything
// unrecognised is kept as stored.
func canonical(s lifecycle.Status) lifecycle.Status {
	if c, err := lifecycle.ParseStatus(string(s)); err == nil {
		return c
	}
	return s
}
