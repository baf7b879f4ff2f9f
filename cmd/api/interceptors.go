package main

import (
	"context"
	"errors"
	"strings"

	v1 "github.com/PaulBabatuyi/surepay-gRPC/api/surepay/v1"
	"github.com/PaulBabatuyi/surepay-gRPC/internal/auth"
	"github.com/PaulBabatuyi/surepay-gRPC/internal/data"
	"github.com/PaulBabatuyi/surepay-gRPC/internal/logger"
	"github.com/PaulBabatuyi/surepay-gRPC/internal/middleware"
	"github.com/PaulBabatuyi/surepay-gRPC/internal/session"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/metadata"
	"google.golang.org/grpc/status"
)

// methods that don't require authentication
var publicMethods = map[string]bool{
	v1.SurePayService_Register_FullMethodName:    true,
	v1.SurePayService_VerifyEmail_FullMethodName: true,
	v1.SurePayService_Login_FullMethodName:       true,
	"/grpc.health.v1.Health/Check":               true,
	"/grpc.health.v1.Health/Watch":               true,
	"/grpc.health.v1.Health/List":                true,
}

// methods only admins may call at all; finer checks live in the handlers
var adminMethods = map[string]bool{
	v1.SurePayService_TransitionBooking_FullMethodName: true,
	v1.SurePayService_TransitionRequest_FullMethodName: true,
	v1.SurePayService_ListActiveThreads_FullMethodName: true,
}

// rateLimitedMethods are keyed by email in the limiter.
var rateLimitedMethods = map[string]bool{
	v1.SurePayService_Register_FullMethodName:    true,
	v1.SurePayService_VerifyEmail_FullMethodName: true,
	v1.SurePayService_Login_FullMethodName:       true,
}

// caller is the authenticated session behind a request.
type caller struct {
	claims  *auth.Claims
	gate    *session.Gate
	profile *session.Profile
}

func (c *caller) uid() string   { return c.profile.UID }
func (c *caller) isAdmin() bool { return c.profile.IsAdmin }

// participant is the chat id the caller writes as.
func (c *caller) participant() string {
	if c.isAdmin() {
		return data.AdminID
	}
	return c.uid()
}

type callerKey struct{}

func callerFrom(ctx context.Context) (*caller, bool) {
	c, ok := ctx.Value(callerKey{}).(*caller)
	return c, ok
}

// authenticator resolves bearer tokens to signed-in sessions.
type authenticator struct {
	tokens   *auth.JWTManager
	denylist auth.Denylist
	sessions *session.Registry
}

func (a *authenticator) authenticate(ctx context.Context, method string) (context.Context, error) {
	md, ok := metadata.FromIncomingContext(ctx)
	if !ok {
		return nil, status.Errorf(codes.Unauthenticated, "missing metadata")
	}
	authHeaders := md.Get("authorization")
	if len(authHeaders) == 0 {
		return nil, status.Errorf(codes.Unauthenticated, "missing authorization header")
	}
	token := strings.TrimSpace(strings.TrimPrefix(authHeaders[0], "Bearer"))
	if token == "" {
		return nil, status.Errorf(codes.Unauthenticated, "invalid token")
	}

	claims, err := a.tokens.VerifyToken(token)
	if err != nil {
		return nil, status.Errorf(codes.Unauthenticated, "unauthenticated: %v", err)
	}
	revoked, err := a.denylist.Revoked(ctx, claims.ID)
	if err != nil {
		return nil, status.Errorf(codes.Unauthenticated, "session check failed")
	}
	if revoked {
		return nil, status.Errorf(codes.Unauthenticated, "session has ended")
	}

	gate, err := a.sessions.Resolve(ctx, claims.ID, claims.UserID, claims.ExpiresAt.Time)
	if err != nil {
		if errors.Is(err, session.ErrNotSignedIn) {
			return nil, status.Errorf(codes.Unauthenticated, "session has ended")
		}
		return nil, status.Errorf(codes.Unauthenticated, "session check failed")
	}
	profile := gate.Profile()
	if profile == nil {
		return nil, status.Errorf(codes.Unauthenticated, "session has ended")
	}
	if adminMethods[method] && !profile.IsAdmin {
		return nil, status.Errorf(codes.PermissionDenied, "admin only")
	}

	ctx = context.WithValue(ctx, callerKey{}, &caller{claims: claims, gate: gate, profile: profile})
	return logger.WithUserID(ctx, profile.UID), nil
}

// authUnaryInterceptor enforces a signed-in session for every method except
// the public ones.
func authUnaryInterceptor(a *authenticator) grpc.UnaryServerInterceptor {
	return func(ctx context.Context, req interface{}, info *grpc.UnaryServerInfo, handler grpc.UnaryHandler) (interface{}, error) {
		if publicMethods[info.FullMethod] {
			return handler(ctx, req)
		}
		ctx, err := a.authenticate(ctx, info.FullMethod)
		if err != nil {
			return nil, err
		}
		return handler(ctx, req)
	}
}

// authStreamInterceptor is the stream equivalent of authUnaryInterceptor.
func authStreamInterceptor(a *authenticator) grpc.StreamServerInterceptor {
	return func(srv interface{}, ss grpc.ServerStream, info *grpc.StreamServerInfo, handler grpc.StreamHandler) error {
		if publicMethods[info.FullMethod] {
			return handler(srv, ss)
		}
		ctx, err := a.authenticate(ss.Context(), info.FullMethod)
		if err != nil {
			return err
		}
		return handler(srv, &middleware.WrappedStream{ServerStream: ss, Ctx: ctx})
	}
}
