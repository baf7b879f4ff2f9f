// Package session gates the API behind a verified, profile-backed sign-in.
package session

import (
	"context"
	"errors"
	"log/slog"
	"sync"

	"github.com/PaulBabatuyi/surepay-gRPC/internal/data"
	"github.com/PaulBabatuyi/surepay-gRPC/internal/identity"
)

// State is where a session stands in the sign-in flow.
type State int

const (
	// Unknown means the session check has not finished yet.
	Unknown State = iota
	SignedOut
	SignedInUnverified
	SignedInVerifiedNoProfile
	SignedInVerifiedWithProfile
)

func (s State) String() string {
	switch s {
	case SignedOut:
		return "SignedOut"
	case SignedInUnverified:
		return "SignedIn-Unverified"
	case SignedInVerifiedNoProfile:
		return "SignedIn-Verified-NoProfile"
	case SignedInVerifiedWithProfile:
		return "SignedIn-Verified-WithProfile"
	}
	return "Unknown"
}

// Messages shown for the failures users can act on.
const (
	MsgInvalidEmail    = "Invalid email"
	MsgEmailInUse      = "Email already exists"
	MsgWeakPassword    = "Password should be at least 6 characters"
	MsgWrongCreds      = "Wrong credentials"
	MsgVerifyEmail     = "Please verify your email before logging in."
	MsgProfileNotFound = "Account data not found."
	msgRegisterFailed  = "Registration failed"
	msgLoginFailed     = "Login failed"
)

// Provider is the identity provider the gate signs in against.
type Provider interface {
	CreateAccount(ctx context.Context, email, password string) (*identity.Identity, error)
	SendVerification(ctx context.Context, id *identity.Identity) error
	SignIn(ctx context.Context, email, password string) (*identity.Identity, error)
	Reload(ctx context.Context, uid string) (*identity.Identity, error)
	SignOut(ctx context.Context, uid string) error
}

// ProfileStore holds the profile document paired with each identity.
type ProfileStore interface {
	GetProfile(ctx context.Context, uid string) (*data.User, error)
	CreateProfile(ctx context.Context, user *data.User) error
	SetFlags(ctx context.Context, uid string, isAdmin, hasSeenGuide *bool) error
}

// Profile is the merged view of a signed-in user: uid plus stored fields
// with the flags defaulted.
type Profile struct {
	UID          string
	Username     string
	Email        string
	IsAdmin      bool
	HasSeenGuide bool
}

// Result reports the outcome of Register and Login.
type Result struct {
	Success bool
	Msg     string
}

// Gate is one session's state machine. Its operations are serialized;
// observers run synchronously on every state change and must not call back
// into the gate.
type Gate struct {
	provider        Provider
	profiles        ProfileStore
	requireVerified bool
	log             *slog.Logger

	mu        sync.Mutex
	state     State
	uid       string
	profile   *Profile
	notice    string
	observers []func(State)
}

// NewGate returns a gate in the Unknown state.
func NewGate(provider Provider, profiles ProfileStore, requireVerified bool, log *slog.Logger) *Gate {
	if log == nil {
		log = slog.Default()
	}
	return &Gate{provider: provider, profiles: profiles, requireVerified: requireVerified, log: log}
}

// OnStateChange registers fn to be called with every new state.
func (g *Gate) OnStateChange(fn func(State)) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.observers = append(g.observers, fn)
}

// State returns the current state.
func (g *Gate) State() State {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.state
}

// Profile returns a copy of the cached profile, or nil unless the state is
// SignedInVerifiedWithProfile.
func (g *Gate) Profile() *Profile {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.profile == nil {
		return nil
	}
	p := *g.profile
	return &p
}

// Notice returns the last message surfaced by a forced sign-out.
func (g *Gate) Notice() string {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.notice
}

// Register creates the account, sends the verification email and writes
// the profile with its flags defaulted. The new identity signs in right
// away, so with verification required it ends SignedOut with MsgVerifyEmail.
func (g *Gate) Register(ctx context.Context, email, password, username string) Result {
	g.mu.Lock()
	defer g.mu.Unlock()

	id, err := g.provider.CreateAccount(ctx, email, password)
	if err != nil {
		return Result{Msg: g.message(err, msgRegisterFailed)}
	}

	// the account is usable once verified, so a lost mail is not fatal here
	if err := g.provider.SendVerification(ctx, id); err != nil {
		g.log.ErrorContext(ctx, "send verification failed", "uid", id.UID, "err", err)
	}

	no := false
	user := &data.User{UID: id.UID, Username: username, Email: id.Email, IsAdmin: &no, HasSeenGuide: &no}
	if err := g.profiles.CreateProfile(ctx, user); err != nil {
		g.log.ErrorContext(ctx, "create profile failed", "uid", id.UID, "err", err)
		return Result{Msg: msgRegisterFailed}
	}

	if err := g.signedIn(ctx, id.UID); err != nil {
		return Result{Msg: g.message(err, msgRegisterFailed)}
	}
	return Result{Success: true, Msg: g.notice}
}

// Login authenticates and runs the sign-in path. An unverified identity is
// rejected with MsgVerifyEmail.
func (g *Gate) Login(ctx context.Context, email, password string) Result {
	g.mu.Lock()
	defer g.mu.Unlock()

	id, err := g.provider.SignIn(ctx, email, password)
	if err != nil {
		return Result{Msg: g.message(err, msgLoginFailed)}
	}
	if err := g.signedIn(ctx, id.UID); err != nil {
		return Result{Msg: g.message(err, msgLoginFailed)}
	}
	if g.state != SignedInVerifiedWithProfile {
		return Result{Msg: g.notice}
	}
	return Result{Success: true}
}

// HandleSignIn reacts to a sign-in event for uid, e.g. a token presented
// to a server that has no session for it yet.
func (g *Gate) HandleSignIn(ctx context.Context, uid string) error {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.signedIn(ctx, uid)
}

// HandleSignOut reacts to a sign-out event from the provider.
func (g *Gate) HandleSignOut() {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.clear()
	g.setState(SignedOut)
}

// Logout signs out and clears the cached profile. It always succeeds and
// may be called any number of times.
func (g *Gate) Logout(ctx context.Context) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.uid != "" {
		if err := g.provider.SignOut(ctx, g.uid); err != nil {
			g.log.WarnContext(ctx, "provider sign-out failed", "uid", g.uid, "err", err)
		}
	}
	g.notice = ""
	g.clear()
	g.setState(SignedOut)
}

// MarkGuideSeen persists hasSeenGuide=true for the signed-in user.
func (g *Gate) MarkGuideSeen(ctx context.Context) error {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.state != SignedInVerifiedWithProfile {
		return ErrNotSignedIn
	}
	yes := true
	if err := g.profiles.SetFlags(ctx, g.uid, nil, &yes); err != nil {
		return err
	}
	g.profile.HasSeenGuide = true
	return nil
}

// ErrNotSignedIn is returned by operations that need a profile-backed session.
var ErrNotSignedIn = errors.New("session: not signed in")

// signedIn runs the sign-in path. It returns an error only for failures
// that leave the state unchanged; forced sign-outs return nil with the
// notice set.
func (g *Gate) signedIn(ctx context.Context, uid string) error {
	id, err := g.provider.Reload(ctx, uid)
	if err != nil {
		return err
	}
	g.uid = id.UID

	if !id.EmailVerified {
		g.setState(SignedInUnverified)
		if g.requireVerified {
			g.forceSignOut(ctx, MsgVerifyEmail)
			return nil
		}
	}

	user, err := g.profiles.GetProfile(ctx, id.UID)
	if errors.Is(err, data.ErrNotFound) {
		g.setState(SignedInVerifiedNoProfile)
		g.forceSignOut(ctx, MsgProfileNotFound)
		return nil
	}
	if err != nil {
		return err
	}

	profile, err := g.withDefaults(ctx, user)
	if err != nil {
		return err
	}
	g.profile = profile
	g.notice = ""
	g.setState(SignedInVerifiedWithProfile)
	return nil
}

// withDefaults fills absent flags with false and writes exactly those
// fields back, so the next read finds them stored.
func (g *Gate) withDefaults(ctx context.Context, user *data.User) (*Profile, error) {
	var isAdmin, hasSeenGuide *bool
	no := false
	if user.IsAdmin == nil {
		isAdmin = &no
	}
	if user.HasSeenGuide == nil {
		hasSeenGuide = &no
	}
	if isAdmin != nil || hasSeenGuide != nil {
		if err := g.profiles.SetFlags(ctx, user.UID, isAdmin, hasSeenGuide); err != nil {
			return nil, err
		}
	}

	return &Profile{
		UID:          user.UID,
		Username:     user.Username,
		Email:        user.Email,
		IsAdmin:      user.IsAdmin != nil && *user.IsAdmin,
		HasSeenGuide: user.HasSeenGuide != nil && *user.HasSeenGuide,
	}, nil
}

func (g *Gate) forceSignOut(ctx context.Context, notice string) {
	if err := g.provider.SignOut(ctx, g.uid); err != nil {
		g.log.WarnContext(ctx, "forced sign-out failed", "uid", g.uid, "err", err)
	}
	g.clear()
	g.notice = notice
	g.setState(SignedOut)
}

func (g *Gate) clear() {
	g.uid = ""
	g.profile = nil
}

func (g *Gate) setState(s State) {
	g.state = s
	for _, fn := range g.observers {
		fn(s)
	}
}

// message maps known provider errors to their fixed text. Anything else is
// logged and reported as fallback.
func (g *Gate) message(err error, fallback string) string {
	switch {
	case errors.Is(err, identity.ErrInvalidEmail):
		return MsgInvalidEmail
	case errors.Is(err, identity.ErrEmailInUse):
		return MsgEmailInUse
	case errors.Is(err, identity.ErrWeakPassword):
		return MsgWeakPassword
	case errors.Is(err, identity.ErrWrongCredentials):
		return MsgWrongCreds
	case errors.Is(err, identity.ErrNotFound):
		return MsgProfileNotFound
	}
	g.log.Error("session operation failed", "err", err)
	return fallback
}
