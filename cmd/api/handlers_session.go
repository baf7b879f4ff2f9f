package main

import (
	"context"
	"errors"

	v1 "github.com/PaulBabatuyi/surepay-gRPC/api/surepay/v1"
	"github.com/PaulBabatuyi/surepay-gRPC/internal/identity"
	"github.com/PaulBabatuyi/surepay-gRPC/internal/session"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/types/known/timestamppb"
)

const msgInvalidVerification = "This verification link is invalid or has expired."

// Register creates the account and its profile. No token is issued: the
// account has to be verified and then log in.
func (s *Server) Register(ctx context.Context, req *v1.RegisterRequest) (*v1.RegisterResponse, error) {
	gate := s.sessions.NewGate()
	res := gate.Register(ctx, req.Email, req.Password, req.Username)
	return &v1.RegisterResponse{Success: res.Success, Msg: res.Msg}, nil
}

// VerifyEmail consumes the token from a verification link.
func (s *Server) VerifyEmail(ctx context.Context, req *v1.VerifyEmailRequest) (*v1.VerifyEmailResponse, error) {
	if _, err := s.verifier.Verify(ctx, req.Token); err != nil {
		if errors.Is(err, identity.ErrNotFound) {
			return &v1.VerifyEmailResponse{Msg: session.MsgProfileNotFound}, nil
		}
		s.logFor(ctx).InfoContext(ctx, "email verification rejected", "err", err)
		return &v1.VerifyEmailResponse{Msg: msgInvalidVerification}, nil
	}
	return &v1.VerifyEmailResponse{Success: true}, nil
}

// Login runs the session gate and, once it reaches a profile-backed
// session, issues a token bound to that session.
func (s *Server) Login(ctx context.Context, req *v1.LoginRequest) (*v1.LoginResponse, error) {
	gate := s.sessions.NewGate()
	res := gate.Login(ctx, req.Email, req.Password)
	if !res.Success {
		return &v1.LoginResponse{Msg: res.Msg}, nil
	}

	profile := gate.Profile()
	token, claims, err := s.tokens.IssueToken(profile.UID, profile.Email, profile.IsAdmin)
	if err != nil {
		return nil, status.Errorf(codes.Internal, "failed to generate token: %v", err)
	}
	s.sessions.Put(claims.ID, gate, claims.ExpiresAt.Time)

	return &v1.LoginResponse{
		Success:   true,
		Token:     token,
		ExpiresAt: timestamppb.New(claims.ExpiresAt.Time),
		Profile:   toProfile(profile),
	}, nil
}

// Logout ends the caller's session and revokes its token. It always
// succeeds.
func (s *Server) Logout(ctx context.Context, _ *v1.LogoutRequest) (*v1.LogoutResponse, error) {
	c, ok := callerFrom(ctx)
	if !ok {
		return &v1.LogoutResponse{Success: true}, nil
	}
	c.gate.Logout(ctx)
	s.sessions.Drop(c.claims.ID)
	if err := s.denylist.Revoke(ctx, c.claims.ID, c.claims.ExpiresAt.Time); err != nil {
		s.logFor(ctx).ErrorContext(ctx, "token revocation failed", "jti", c.claims.ID, "err", err)
	}
	return &v1.LogoutResponse{Success: true}, nil
}

func (s *Server) GetProfile(ctx context.Context, _ *v1.GetProfileRequest) (*v1.Profile, error) {
	c, ok := callerFrom(ctx)
	if !ok {
		return nil, status.Errorf(codes.Unauthenticated, "missing session")
	}
	return toProfile(c.profile), nil
}

// CompleteGuide records that the caller has seen the user guide.
func (s *Server) CompleteGuide(ctx context.Context, _ *v1.CompleteGuideRequest) (*v1.CompleteGuideResponse, error) {
	c, ok := callerFrom(ctx)
	if !ok {
		return nil, status.Errorf(codes.Unauthenticated, "missing session")
	}
	if err := c.gate.MarkGuideSeen(ctx); err != nil {
		s.logFor(ctx).ErrorContext(ctx, "mark guide seen failed", "err", err)
		return &v1.CompleteGuideResponse{Msg: "Failed to save your progress"}, nil
	}
	return &v1.CompleteGuideResponse{Success: true}, nil
}
