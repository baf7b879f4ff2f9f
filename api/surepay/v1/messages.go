package surepayv1

import (
	"google.golang.org/protobuf/types/known/timestamppb"
)

type RegisterRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
	Username string `json:"username"`
}

func (r *RegisterRequest) GetEmail() string {
	if r == nil {
		return ""
	}
	return r.Email
}

// RegisterResponse reports the outcome; Msg carries the reason on failure
// and the verification notice on success.
type RegisterResponse struct {
	Success bool   `json:"success"`
	Msg     string `json:"msg,omitempty"`
}

type VerifyEmailRequest struct {
	Token string `json:"token"`
}

type VerifyEmailResponse struct {
	Success bool   `json:"success"`
	Msg     string `json:"msg,omitempty"`
}

type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

func (r *LoginRequest) GetEmail() string {
	if r == nil {
		return ""
	}
	return r.Email
}

type LoginResponse struct {
	Success   bool                   `json:"success"`
	Msg       string                 `json:"msg,omitempty"`
	Token     string                 `json:"token,omitempty"`
	ExpiresAt *timestamppb.Timestamp `json:"expiresAt,omitempty"`
	Profile   *Profile               `json:"profile,omitempty"`
}

type LogoutRequest struct{}

type LogoutResponse struct {
	Success bool `json:"success"`
}

type GetProfileRequest struct{}

type Profile struct {
	Uid          string `json:"uid"`
	Username     string `json:"username"`
	Email        string `json:"email"`
	IsAdmin      bool   `json:"isAdmin"`
	HasSeenGuide bool   `json:"hasSeenGuide"`
}

type CompleteGuideRequest struct{}

type CompleteGuideResponse struct {
	Success bool   `json:"success"`
	Msg     string `json:"msg,omitempty"`
}

type Booking struct {
	Id              string                 `json:"id,omitempty"`
	UserId          string                 `json:"userId"`
	FirstName       string                 `json:"firstName"`
	LastName        string                 `json:"lastName"`
	Sex             string                 `json:"sex,omitempty"`
	Birthdate       *timestamppb.Timestamp `json:"birthdate,omitempty"`
	PaymentType     string                 `json:"paymentType,omitempty"`
	Notes           string                 `json:"notes,omitempty"`
	SocialMediaLink string                 `json:"socialMediaLink"`
	Screenshot      string                 `json:"screenshot,omitempty"`
	Date            *timestamppb.Timestamp `json:"date,omitempty"`
	Status          string                 `json:"status,omitempty"`
	CreatedAt       *timestamppb.Timestamp `json:"createdAt,omitempty"`
}

// CreateBookingRequest may carry a screenshot to upload first; its URL then
// replaces Booking.Screenshot.
type CreateBookingRequest struct {
	Booking         *Booking `json:"booking"`
	ScreenshotImage []byte   `json:"screenshotImage,omitempty"`
	ScreenshotName  string   `json:"screenshotName,omitempty"`
}

// MutationResponse is the result of every create and transition.
type MutationResponse struct {
	Success bool   `json:"success"`
	Id      string `json:"id,omitempty"`
	Msg     string `json:"msg,omitempty"`
}

// ListBookingsRequest lists the caller's own bookings when Mine is set;
// otherwise every booking (admin only).
type ListBookingsRequest struct {
	Mine bool `json:"mine,omitempty"`
}

type ListBookingsResponse struct {
	Success  bool       `json:"success"`
	Bookings []*Booking `json:"bookings"`
	Msg      string     `json:"msg,omitempty"`
}

type TransitionRequest struct {
	Id     string `json:"id"`
	Status string `json:"status"`
}

type Request struct {
	Id          string                 `json:"id,omitempty"`
	UserId      string                 `json:"userId"`
	FirstName   string                 `json:"firstName"`
	LastName    string                 `json:"lastName"`
	Sex         string                 `json:"sex,omitempty"`
	Birthdate   *timestamppb.Timestamp `json:"birthdate,omitempty"`
	PaymentType string                 `json:"paymentType"`
	Notes       string                 `json:"notes,omitempty"`
	Screenshot  string                 `json:"screenshot,omitempty"`
	Time        *timestamppb.Timestamp `json:"time,omitempty"`
	Status      string                 `json:"status,omitempty"`
	CreatedAt   *timestamppb.Timestamp `json:"createdAt,omitempty"`
}

type CreateRequestRequest struct {
	Request         *Request `json:"request"`
	ScreenshotImage []byte   `json:"screenshotImage,omitempty"`
	ScreenshotName  string   `json:"screenshotName,omitempty"`
}

type ListRequestsRequest struct {
	Mine bool `json:"mine,omitempty"`
}

type ListRequestsResponse struct {
	Success  bool       `json:"success"`
	Requests []*Request `json:"requests"`
	Msg      string     `json:"msg,omitempty"`
}

type ChatMessage struct {
	Id          string                 `json:"id"`
	SenderId    string                 `json:"senderId"`
	RecipientId string                 `json:"recipientId"`
	Message     string                 `json:"message"`
	ImageUrl    string                 `json:"imageUrl,omitempty"`
	Timestamp   *timestamppb.Timestamp `json:"timestamp"`
}

// SendMessageRequest posts to the thread of UserId. Users may leave UserId
// empty (their own thread); admins must set it. An attached Image is
// uploaded and its URL used as ImageUrl.
type SendMessageRequest struct {
	UserId    string `json:"userId,omitempty"`
	Message   string `json:"message"`
	ImageUrl  string `json:"imageUrl,omitempty"`
	Image     []byte `json:"image,omitempty"`
	ImageName string `json:"imageName,omitempty"`
}

type SendMessageResponse struct {
	Success bool         `json:"success"`
	Msg     string       `json:"msg,omitempty"`
	Message *ChatMessage `json:"message,omitempty"`
}

type SubscribeThreadRequest struct {
	UserId string `json:"userId,omitempty"`
}

// ThreadSnapshot is the full thread, oldest message first.
type ThreadSnapshot struct {
	UserId   string         `json:"userId"`
	Messages []*ChatMessage `json:"messages"`
}

type ListActiveThreadsRequest struct {
	Limit int64 `json:"limit,omitempty"`
}

type ThreadSummary struct {
	UserId          string                 `json:"userId"`
	Username        string                 `json:"username"`
	LastMessage     string                 `json:"lastMessage"`
	LastMessageTime *timestamppb.Timestamp `json:"lastMessageTime"`
}

type ListActiveThreadsResponse struct {
	Threads []*ThreadSummary `json:"threads"`
}

type UploadImageRequest struct {
	Name string `json:"name,omitempty"`
	Data []byte `json:"data"`
}

type UploadImageResponse struct {
	Success bool   `json:"success"`
	Url     string `json:"url,omitempty"`
	Msg     string `json:"msg,omitempty"`
}

// ListTransactionsRequest lists the caller's transactions; admins may name
// another user.
type ListTransactionsRequest struct {
	UserId string `json:"userId,omitempty"`
	Limit  int64  `json:"limit,omitempty"`
}

type Transaction struct {
	Id     string                 `json:"id"`
	UserId string                 `json:"userId"`
	Amount float64                `json:"amount"`
	Date   *timestamppb.Timestamp `json:"date"`
}

type ListTransactionsResponse struct {
	Success      bool           `json:"success"`
	Transactions []*Transaction `json:"transactions"`
	Msg          string         `json:"msg,omitempty"`
}
