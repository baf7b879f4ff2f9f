package main

import (
	"context"
	"errors"
	"strings"

	v1 "github.com/PaulBabatuyi/surepay-gRPC/api/surepay/v1"
	"github.com/PaulBabatuyi/surepay-gRPC/internal/blob"
	"github.com/PaulBabatuyi/surepay-gRPC/internal/data"
	"github.com/PaulBabatuyi/surepay-gRPC/internal/thread"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

const defaultTransactionLimit = 100

var errNeedUser = errors.New("userId is required")

// threadUser picks the thread a caller may act on. Users only have their
// own thread; admins must name the user.
func threadUser(c *caller, requested string) (string, error) {
	requested = strings.TrimSpace(requested)
	if c.isAdmin() {
		if requested == "" || requested == data.AdminID {
			return "", errNeedUser
		}
		return requested, nil
	}
	if requested != "" && requested != c.uid() {
		return "", status.Errorf(codes.PermissionDenied, "not your thread")
	}
	return c.uid(), nil
}

// SendMessage appends to a thread; subscribers receive a fresh snapshot.
func (s *Server) SendMessage(ctx context.Context, req *v1.SendMessageRequest) (*v1.SendMessageResponse, error) {
	c, ok := callerFrom(ctx)
	if !ok {
		return nil, status.Errorf(codes.Unauthenticated, "missing session")
	}
	user, err := threadUser(c, req.UserId)
	if errors.Is(err, errNeedUser) {
		return &v1.SendMessageResponse{Msg: "Choose a conversation first"}, nil
	}
	if err != nil {
		return nil, err
	}
	from, to := c.participant(), data.AdminID
	if c.isAdmin() {
		to = user
	}

	imageURL := req.ImageUrl
	if len(req.Image) > 0 {
		url, err := s.upload(ctx, req.ImageName, req.Image)
		if err != nil {
			return &v1.SendMessageResponse{Msg: "Failed to upload the image"}, nil
		}
		imageURL = url
	}

	saved, err := s.chat.Append(ctx, from, to, req.Message, imageURL)
	switch {
	case errors.Is(err, thread.ErrEmptyMessage):
		return &v1.SendMessageResponse{Msg: "Message cannot be empty"}, nil
	case err != nil:
		s.logFor(ctx).ErrorContext(ctx, "send message failed", "thread", user, "err", err)
		return &v1.SendMessageResponse{Msg: "Failed to send message"}, nil
	}
	return &v1.SendMessageResponse{Success: true, Message: toChatMessage(saved)}, nil
}

// SubscribeThread streams the full thread once and again after every
// change, until the client goes away or the server shuts down.
func (s *Server) SubscribeThread(req *v1.SubscribeThreadRequest, stream grpc.ServerStreamingServer[v1.ThreadSnapshot]) error {
	ctx, cancel := context.WithCancel(stream.Context())
	defer cancel()
	stop := context.AfterFunc(s.lifetime, cancel)
	defer stop()

	c, ok := callerFrom(ctx)
	if !ok {
		return status.Errorf(codes.Unauthenticated, "missing session")
	}
	user, err := threadUser(c, req.UserId)
	if errors.Is(err, errNeedUser) {
		return status.Errorf(codes.InvalidArgument, "userId is required")
	}
	if err != nil {
		return err
	}

	sub, err := s.chat.Subscribe(ctx, user)
	if err != nil {
		return status.Errorf(codes.Internal, "failed to open thread: %v", err)
	}
	defer sub.Cancel()

	for snap := range sub.C {
		msgs := make([]*v1.ChatMessage, 0, len(snap.Messages))
		for _, m := range snap.Messages {
			msgs = append(msgs, toChatMessage(m))
		}
		if err := stream.Send(&v1.ThreadSnapshot{UserId: snap.UserID, Messages: msgs}); err != nil {
			return err
		}
	}
	if s.lifetime.Err() != nil {
		return status.Errorf(codes.Unavailable, "server is shutting down")
	}
	return nil
}

// ListActiveThreads is the admin inbox: users with a thread, latest first.
func (s *Server) ListActiveThreads(ctx context.Context, req *v1.ListActiveThreadsRequest) (*v1.ListActiveThreadsResponse, error) {
	threads, err := s.chat.ActiveThreads(ctx, req.Limit)
	if err != nil {
		s.logFor(ctx).ErrorContext(ctx, "list active threads failed", "err", err)
		return nil, status.Errorf(codes.Internal, "failed to list threads")
	}
	out := make([]*v1.ThreadSummary, 0, len(threads))
	for _, t := range threads {
		out = append(out, toThreadSummary(t))
	}
	return &v1.ListActiveThreadsResponse{Threads: out}, nil
}

// UploadImage stores an image and returns its URL.
func (s *Server) UploadImage(ctx context.Context, req *v1.UploadImageRequest) (*v1.UploadImageResponse, error) {
	if len(req.Data) == 0 {
		return &v1.UploadImageResponse{Msg: "No image attached"}, nil
	}
	url, err := s.upload(ctx, req.Name, req.Data)
	switch {
	case errors.Is(err, blob.ErrNotImage):
		return &v1.UploadImageResponse{Msg: "The file is not an image"}, nil
	case err != nil:
		return &v1.UploadImageResponse{Msg: "Failed to upload the image"}, nil
	}
	return &v1.UploadImageResponse{Success: true, Url: url}, nil
}

// ListTransactions lists the caller's transactions; admins name the user.
func (s *Server) ListTransactions(ctx context.Context, req *v1.ListTransactionsRequest) (*v1.ListTransactionsResponse, error) {
	c, ok := callerFrom(ctx)
	if !ok {
		return nil, status.Errorf(codes.Unauthenticated, "missing session")
	}
	user, err := threadUser(c, req.UserId)
	if errors.Is(err, errNeedUser) {
		return &v1.ListTransactionsResponse{Transactions: []*v1.Transaction{}, Msg: "Choose a user first"}, nil
	}
	if err != nil {
		return nil, err
	}

	limit := req.Limit
	if limit <= 0 {
		limit = defaultTransactionLimit
	}
	txns, err := s.transactions.ListByUser(ctx, user, limit)
	if err != nil {
		s.logFor(ctx).ErrorContext(ctx, "list transactions failed", "user", user, "err", err)
		return &v1.ListTransactionsResponse{Transactions: []*v1.Transaction{}, Msg: "Failed to load transactions"}, nil
	}
	out := make([]*v1.Transaction, 0, len(txns))
	for _, t := range txns {
		out = append(out, toTransaction(t))
	}
	return &v1.ListTransactionsResponse{Success: true, Transactions: out}, nil
}
