package main

import (
	"context"
	"log/slog"
	"time"

	v1 "github.com/PaulBabatuyi/surepay-gRPC/api/surepay/v1"
	"github.com/PaulBabatuyi/surepay-gRPC/internal/auth"
	"github.com/PaulBabatuyi/surepay-gRPC/internal/data"
	"github.com/PaulBabatuyi/surepay-gRPC/internal/identity"
	"github.com/PaulBabatuyi/surepay-gRPC/internal/lifecycle"
	"github.com/PaulBabatuyi/surepay-gRPC/internal/logger"
	"github.com/PaulBabatuyi/surepay-gRPC/internal/metrics"
	"github.com/PaulBabatuyi/surepay-gRPC/internal/session"
	"github.com/PaulBabatuyi/surepay-gRPC/internal/thread"
	"google.golang.org/grpc"
)

// Verifier consumes email verification tokens.
type Verifier interface {
	Verify(ctx context.Context, token string) (*identity.Identity, error)
}

// Chat is the thread syncer as seen by the handlers.
type Chat interface {
	Append(ctx context.Context, from, to, text, imageURL string) (*data.Message, error)
	Subscribe(ctx context.Context, userID string) (*thread.Subscription, error)
	ActiveThreads(ctx context.Context, limit int64) ([]*data.ThreadSummary, error)
}

// ImageUploader stores an image and returns its public URL.
type ImageUploader interface {
	Upload(ctx context.Context, name string, data []byte) (string, error)
}

// Transactions lists a user's payment history, newest first.
type Transactions interface {
	ListByUser(ctx context.Context, userID string, limit int64) ([]*data.Transaction, error)
}

// Server implements SurePayService on top of the domain packages.
type Server struct {
	v1.UnimplementedSurePayServiceServer

	verifier     Verifier
	sessions     *session.Registry
	tokens       *auth.JWTManager
	denylist     auth.Denylist
	bookings     *lifecycle.Engine[*data.Booking]
	requests     *lifecycle.Engine[*data.Request]
	chat         Chat
	uploader     ImageUploader
	transactions Transactions
	metrics      *metrics.Metrics
	log          *slog.Logger
	lifetime     context.Context
}

// serverDeps groups what newServer needs; metrics may be nil.
type serverDeps struct {
	Verifier     Verifier
	Sessions     *session.Registry
	Tokens       *auth.JWTManager
	Denylist     auth.Denylist
	Bookings     *lifecycle.Engine[*data.Booking]
	Requests     *lifecycle.Engine[*data.Request]
	Chat         Chat
	Uploader     ImageUploader
	Transactions Transactions
	Metrics      *metrics.Metrics
	Log          *slog.Logger
	// Lifetime ends when the server starts shutting down; open streams
	// close with it. Defaults to a context that never ends.
	Lifetime context.Context
}

// newServer returns a ready-to-use Server.
func newServer(d serverDeps) *Server {
	if d.Log == nil {
		d.Log = slog.Default()
	}
	if d.Denylist == nil {
		d.Denylist = auth.NewMemoryDenylist()
	}
	if d.Lifetime == nil {
		d.Lifetime = context.Background()
	}
	return &Server{
		verifier:     d.Verifier,
		sessions:     d.Sessions,
		tokens:       d.Tokens,
		denylist:     d.Denylist,
		bookings:     d.Bookings,
		requests:     d.Requests,
		chat:         d.Chat,
		uploader:     d.Uploader,
		transactions: d.Transactions,
		metrics:      d.Metrics,
		log:          d.Log,
		lifetime:     d.Lifetime,
	}
}

// registerService registers SurePayService on the given gRPC server.
func registerService(s *grpc.Server, srv *Server) {
	v1.RegisterSurePayServiceServer(s, srv)
}

// logFor returns the server logger tagged with the request and user ids.
func (s *Server) logFor(ctx context.Context) *slog.Logger {
	return logger.FromContext(ctx, s.log)
}

// upload posts an attached image and counts the outcome.
func (s *Server) upload(ctx context.Context, name string, image []byte) (string, error) {
	start := time.Now()
	url, err := s.uploader.Upload(ctx, name, image)
	s.metrics.ObserveUpload(err == nil)
	if err != nil {
		s.logFor(ctx).WarnContext(ctx, "image upload failed", "name", name, "duration", time.Since(start), "err", err)
		return "", err
	}
	return url, nil
}
