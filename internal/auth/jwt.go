// Package auth issues and verifies the bearer tokens the API accepts and
// hashes account passwords.
package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/PaulBabatuyi/surepay-gRPC/internal/normalize"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
)

// Token purposes. An access token authenticates API calls; a verification
// token only proves ownership of an email address.
const (
	PurposeAccess = "access"
	PurposeVerify = "verify_email"
)

// VerificationTTL is how long an email verification link stays valid.
const VerificationTTL = 48 * time.Hour

var (
	ErrInvalidToken = errors.New("invalid token")
	ErrWrongPurpose = errors.New("token not valid for this purpose")
)

// JWTManager signs and validates tokens. It holds every known signing key
// by kid so tokens issued before a rotation keep verifying until they
// expire; new tokens are always signed with the active key.
type JWTManager struct {
	keys      map[string][]byte
	activeKid string
	duration  time.Duration
}

// Claims is the token payload. ID (jti) identifies one sign-in session.
// IsAdmin reflects the profile at issue time; authorization re-reads the
// profile.
type Claims struct {
	UserID  string `json:"user_id"`
	Email   string `json:"email"`
	IsAdmin bool   `json:"is_admin,omitempty"`
	Purpose string `json:"purpose"`
	jwt.RegisteredClaims
}

// NewJWTManager returns a manager with a single signing key.
func NewJWTManager(secretKey string, duration time.Duration) *JWTManager {
	return NewJWTManagerFromKeys(map[string]string{"default": secretKey}, "default", duration)
}

// NewJWTManagerFromKeys returns a manager that signs with keys[activeKid]
// and verifies with whichever key the token's kid header names.
func NewJWTManagerFromKeys(keys map[string]string, activeKid string, duration time.Duration) *JWTManager {
	m := &JWTManager{keys: make(map[string][]byte, len(keys)), activeKid: activeKid, duration: duration}
	for kid, secret := range keys {
		m.keys[kid] = []byte(secret)
	}
	return m
}

// Duration is the lifetime of access tokens.
func (m *JWTManager) Duration() time.Duration { return m.duration }

// GenerateToken issues an access token for a user.
func (m *JWTManager) GenerateToken(userID, email string, isAdmin bool) (string, time.Time, error) {
	token, claims, err := m.IssueToken(userID, email, isAdmin)
	if err != nil {
		return "", time.Time{}, err
	}
	return token, claims.ExpiresAt.Time, nil
}

// IssueToken is GenerateToken returning the full claims, for callers that
// key state by the token's jti.
func (m *JWTManager) IssueToken(userID, email string, isAdmin bool) (string, *Claims, error) {
	return m.issue(userID, email, isAdmin, PurposeAccess, m.duration)
}

// GenerateVerificationToken issues a token for an email verification link.
func (m *JWTManager) GenerateVerificationToken(userID, email string) (string, time.Time, error) {
	token, claims, err := m.issue(userID, email, false, PurposeVerify, VerificationTTL)
	if err != nil {
		return "", time.Time{}, err
	}
	return token, claims.ExpiresAt.Time, nil
}

func (m *JWTManager) issue(userID, email string, isAdmin bool, purpose string, ttl time.Duration) (string, *Claims, error) {
	key, ok := m.keys[m.activeKid]
	if !ok {
		return "", nil, fmt.Errorf("no signing key for kid %q", m.activeKid)
	}

	// numeric dates carry whole seconds
	now := time.Now().Truncate(time.Second)
	expiresAt := now.Add(ttl)
	claims := &Claims{
		UserID:  userID,
		Email:   normalize.Email(email),
		IsAdmin: isAdmin,
		Purpose: purpose,
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        uuid.NewString(),
			ExpiresAt: jwt.NewNumericDate(expiresAt),
			IssuedAt:  jwt.NewNumericDate(now),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	token.Header["kid"] = m.activeKid
	signed, err := token.SignedString(key)
	if err != nil {
		return "", nil, err
	}
	return signed, claims, nil
}

// VerifyToken validates an access token and returns its claims.
func (m *JWTManager) VerifyToken(tokenString string) (*Claims, error) {
	return m.VerifyPurpose(tokenString, PurposeAccess)
}

// VerifyPurpose validates a token issued for purpose.
func (m *JWTManager) VerifyPurpose(tokenString, purpose string) (*Claims, error) {
	claims := &Claims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, m.keyFunc,
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
	)
	if err != nil {
		return nil, err
	}
	if !token.Valid || claims.UserID == "" {
		return nil, ErrInvalidToken
	}
	if claims.Purpose != purpose {
		return nil, ErrWrongPurpose
	}
	return claims, nil
}

func (m *JWTManager) keyFunc(token *jwt.Token) (interface{}, error) {
	if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
		return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
	}
	kid, _ := token.Header["kid"].(string)
	if kid == "" {
		// tokens from before kid headers were added
		kid = m.activeKid
	}
	key, ok := m.keys[kid]
	if !ok {
		return nil, fmt.Errorf("unknown kid %q", kid)
	}
	return key, nil
}

// HashPassword returns a bcrypt hash for the provided plaintext.
func HashPassword(password string) (string, error) {
	hashed, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", err
	}
	return string(hashed), nil
}

// CheckPassword compares a plaintext password against a bcrypt hash.
func CheckPassword(hash, password string) error {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(password))
}
