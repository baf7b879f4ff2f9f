package main

import (
	"context"
	"testing"
	"time"

	v1 "github.com/PaulBabatuyi/surepay-gRPC/api/surepay/v1"
	"github.com/PaulBabatuyi/surepay-gRPC/internal/auth"
	"github.com/PaulBabatuyi/surepay-gRPC/internal/session"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/metadata"
	"google.golang.org/grpc/status"
)

func incoming(authHeader string) context.Context {
	md := metadata.MD{}
	if authHeader != "" {
		md.Set("authorization", authHeader)
	}
	return metadata.NewIncomingContext(context.Background(), md)
}

func TestAuthInterceptorPublicMethods(t *testing.T) {
	a := &authenticator{tokens: auth.NewJWTManager("test-secret", time.Hour), denylist: auth.NewMemoryDenylist()}
	interceptor := authUnaryInterceptor(a)

	for method := range publicMethods {
		called := false
		handler := func(ctx context.Context, req interface{}) (interface{}, error) {
			called = true
			return nil, nil
		}
		_, err := interceptor(context.Background(), nil, &grpc.UnaryServerInfo{FullMethod: method}, handler)
		if err != nil || !called {
			t.Fatalf("%s: err = %v, called = %v", method, err, called)
		}
	}
}

func TestAuthInterceptorRejectsBadTokens(t *testing.T) {
	a := &authenticator{tokens: auth.NewJWTManager("test-secret", time.Hour), denylist: auth.NewMemoryDenylist()}
	interceptor := authUnaryInterceptor(a)
	other := auth.NewJWTManager("other-secret", time.Hour)
	foreign, _, _ := other.GenerateToken("u1", "u1@example.com", false)

	tests := []struct {
		name string
		ctx  context.Context
	}{
		{"no metadata", context.Background()},
		{"no header", incoming("")},
		{"empty bearer", incoming("Bearer ")},
		{"garbage", incoming("Bearer not-a-jwt")},
		{"wrong key", incoming("Bearer " + foreign)},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			handler := func(ctx context.Context, req interface{}) (interface{}, error) {
				t.Fatal("handler ran without a session")
				return nil, nil
			}
			info := &grpc.UnaryServerInfo{FullMethod: v1.SurePayService_GetProfile_FullMethodName}
			_, err := interceptor(tc.ctx, nil, info, handler)
			if status.Code(err) != codes.Unauthenticated {
				t.Fatalf("err = %v, want Unauthenticated", err)
			}
		})
	}
}

func TestVerificationTokenIsNotASession(t *testing.T) {
	jwtMgr := auth.NewJWTManager("test-secret", time.Hour)
	a := &authenticator{tokens: jwtMgr, denylist: auth.NewMemoryDenylist(), sessions: session.NewRegistry(nil)}

	token, _, err := jwtMgr.GenerateVerificationToken("u1", "u1@example.com")
	if err != nil {
		t.Fatalf("GenerateVerificationToken: %v", err)
	}
	_, err = a.authenticate(incoming("Bearer "+token), v1.SurePayService_GetProfile_FullMethodName)
	if status.Code(err) != codes.Unauthenticated {
		t.Fatalf("verification token accepted as a session: err = %v", err)
	}
}

func TestRevokedTokenRejected(t *testing.T) {
	jwtMgr := auth.NewJWTManager("test-secret", time.Hour)
	denylist := auth.NewMemoryDenylist()
	a := &authenticator{tokens: jwtMgr, denylist: denylist, sessions: session.NewRegistry(nil)}

	token, claims, err := jwtMgr.IssueToken("u1", "u1@example.com", false)
	if err != nil {
		t.Fatalf("IssueToken: %v", err)
	}
	if err := denylist.Revoke(context.Background(), claims.ID, claims.ExpiresAt.Time); err != nil {
		t.Fatalf("Revoke: %v", err)
	}

	_, err = a.authenticate(incoming("Bearer "+token), v1.SurePayService_GetProfile_FullMethodName)
	if status.Code(err) != codes.Unauthenticated {
		t.Fatalf("revoked token: err = %v", err)
	}
}

func TestProtectedMethodsOverTheWire(t *testing.T) {
	env := newTestEnv(t)

	_, err := env.client.GetProfile(context.Background(), &v1.GetProfileRequest{})
	if status.Code(err) != codes.Unauthenticated {
		t.Fatalf("GetProfile without token: err = %v", err)
	}
	stream, err := env.client.SubscribeThread(context.Background(), &v1.SubscribeThreadRequest{})
	if err == nil {
		_, err = stream.Recv()
	}
	if status.Code(err) != codes.Unauthenticated {
		t.Fatalf("SubscribeThread without token: err = %v", err)
	}
}

func TestAdminOnlyMethods(t *testing.T) {
	env := newTestEnv(t)
	token, _ := env.signup(t, "ana@example.com", "ana", false)

	_, err := env.client.TransitionBooking(authed(token), &v1.TransitionRequest{Id: "x", Status: "Approved"})
	if status.Code(err) != codes.PermissionDenied {
		t.Fatalf("user TransitionBooking: err = %v", err)
	}
	_, err = env.client.TransitionRequest(authed(token), &v1.TransitionRequest{Id: "x", Status: "Declined"})
	if status.Code(err) != codes.PermissionDenied {
		t.Fatalf("user TransitionRequest: err = %v", err)
	}
	_, err = env.client.ListActiveThreads(authed(token), &v1.ListActiveThreadsRequest{})
	if status.Code(err) != codes.PermissionDenied {
		t.Fatalf("user ListActiveThreads: err = %v", err)
	}
}

// A token presented to a server that has no session for it, e.g. after a
// restart, rebuilds the session from the stored account and profile.
func TestSessionRebuiltFromToken(t *testing.T) {
	env := newTestEnv(t)
	token, uid := env.signup(t, "ana@example.com", "ana", false)

	claims, err := auth.NewJWTManager("test-secret", time.Hour).VerifyToken(token)
	if err != nil {
		t.Fatalf("VerifyToken: %v", err)
	}
	env.sessions.Drop(claims.ID)

	p, err := env.client.GetProfile(authed(token), &v1.GetProfileRequest{})
	if err != nil {
		t.Fatalf("GetProfile after session loss: %v", err)
	}
	if p.Uid != uid {
		t.Fatalf("uid = %q, want %q", p.Uid, uid)
	}
	if env.sessions.Len() != 1 {
		t.Fatalf("sessions = %d, want 1", env.sessions.Len())
	}
}
