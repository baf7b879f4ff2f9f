// Package identity is the account provider behind sign-in: it owns
// credentials and email verification, not profiles.
package identity

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/url"
	"unicode/utf8"

	"github.com/PaulBabatuyi/surepay-gRPC/internal/auth"
	"github.com/PaulBabatuyi/surepay-gRPC/internal/data"
	"github.com/PaulBabatuyi/surepay-gRPC/internal/normalize"
	"github.com/go-playground/validator/v10"
)

// MinPasswordLength is the shortest password CreateAccount accepts.
const MinPasswordLength = 6

var (
	ErrInvalidEmail     = errors.New("identity: invalid email")
	ErrEmailInUse       = errors.New("identity: email already in use")
	ErrWeakPassword     = errors.New("identity: weak password")
	ErrWrongCredentials = errors.New("identity: wrong credentials")
	ErrNotFound         = errors.New("identity: account not found")
)

// Identity is what the provider knows about a signed-in account.
type Identity struct {
	UID           string
	Email         string
	EmailVerified bool
}

// Accounts is the credential storage the provider needs.
type Accounts interface {
	CreateAccount(ctx context.Context, email, hashedPassword string) (*data.Account, error)
	GetAccountByEmail(ctx context.Context, email string) (*data.Account, error)
	GetAccountByID(ctx context.Context, uid string) (*data.Account, error)
	MarkVerified(ctx context.Context, uid string) error
	TouchSignOut(ctx context.Context, uid string) error
}

// Mailer delivers verification links.
type Mailer interface {
	SendVerification(ctx context.Context, email, link string) error
}

// Provider creates accounts, verifies emails and checks credentials.
type Provider struct {
	accounts  Accounts
	tokens    *auth.JWTManager
	mailer    Mailer
	verifyURL string
	validate  *validator.Validate
}

// NewProvider returns a Provider. verifyURL is the base of the links sent by
// SendVerification; the token is appended as the "token" query parameter.
func NewProvider(accounts Accounts, tokens *auth.JWTManager, mailer Mailer, verifyURL string) *Provider {
	return &Provider{
		accounts:  accounts,
		tokens:    tokens,
		mailer:    mailer,
		verifyURL: verifyURL,
		validate:  validator.New(),
	}
}

// CreateAccount registers a new unverified account.
func (p *Provider) CreateAccount(ctx context.Context, email, password string) (*Identity, error) {
	email = normalize.Email(email)
	if err := p.validate.Var(email, "required,email"); err != nil {
		return nil, ErrInvalidEmail
	}
	if utf8.RuneCountInString(password) < MinPasswordLength {
		return nil, ErrWeakPassword
	}

	hash, err := auth.HashPassword(password)
	if err != nil {
		return nil, err
	}
	acc, err := p.accounts.CreateAccount(ctx, email, hash)
	if errors.Is(err, data.ErrDuplicate) {
		return nil, ErrEmailInUse
	}
	if err != nil {
		return nil, err
	}
	return toIdentity(acc), nil
}

// SendVerification mails id a link that marks its email verified.
func (p *Provider) SendVerification(ctx context.Context, id *Identity) error {
	token, _, err := p.tokens.GenerateVerificationToken(id.UID, id.Email)
	if err != nil {
		return err
	}
	link, err := url.Parse(p.verifyURL)
	if err != nil {
		return fmt.Errorf("verify url: %w", err)
	}
	q := link.Query()
	q.Set("token", token)
	link.RawQuery = q.Encode()
	return p.mailer.SendVerification(ctx, id.Email, link.String())
}

// Verify consumes a verification token and marks the account verified.
// Verifying twice is not an error.
func (p *Provider) Verify(ctx context.Context, token string) (*Identity, error) {
	claims, err := p.tokens.VerifyPurpose(token, auth.PurposeVerify)
	if err != nil {
		return nil, err
	}
	if err := p.accounts.MarkVerified(ctx, claims.UserID); err != nil {
		if errors.Is(err, data.ErrNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return p.Reload(ctx, claims.UserID)
}

// SignIn checks credentials. Unknown email and bad password are
// indistinguishable to the caller.
func (p *Provider) SignIn(ctx context.Context, email, password string) (*Identity, error) {
	acc, err := p.accounts.GetAccountByEmail(ctx, email)
	if errors.Is(err, data.ErrNotFound) {
		return nil, ErrWrongCredentials
	}
	if err != nil {
		return nil, err
	}
	if err := auth.CheckPassword(acc.Password, password); err != nil {
		return nil, ErrWrongCredentials
	}
	return toIdentity(acc), nil
}

// Reload fetches the current state of an account, including verification.
func (p *Provider) Reload(ctx context.Context, uid string) (*Identity, error) {
	acc, err := p.accounts.GetAccountByID(ctx, uid)
	if errors.Is(err, data.ErrNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return toIdentity(acc), nil
}

// SignOut records the sign-out on the account.
func (p *Provider) SignOut(ctx context.Context, uid string) error {
	err := p.accounts.TouchSignOut(ctx, uid)
	if errors.Is(err, data.ErrNotFound) {
		return nil
	}
	return err
}

func toIdentity(acc *data.Account) *Identity {
	return &Identity{UID: acc.ID.Hex(), Email: acc.Email, EmailVerified: acc.EmailVerified}
}

// LogMailer writes verification links to the log instead of sending mail.
type LogMailer struct {
	Log *slog.Logger
}

func (m LogMailer) SendVerification(ctx context.Context, email, link string) error {
	log := m.Log
	if log == nil {
		log = slog.Default()
	}
	log.InfoContext(ctx, "verification link", "email", email, "link", link)
	return nil
}
