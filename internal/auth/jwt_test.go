package auth

import (
	"errors"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

func TestHashAndCheckPassword(t *testing.T) {
	pwd := "s3cr3t-password"
	hash, err := HashPassword(pwd)
	if err != nil {
		t.Fatalf("HashPassword failed: %v", err)
	}

	if err := CheckPassword(hash, pwd); err != nil {
		t.Fatalf("CheckPassword failed when password should match: %v", err)
	}

	if err := CheckPassword(hash, "wrong"); err == nil {
		t.Fatal("CheckPassword succeeded when it should have failed")
	}
}

func TestJWTManager_GenerateAndVerify(t *testing.T) {
	m := NewJWTManager("test-secret", 5*time.Minute)

	token, exp, err := m.GenerateToken("65a1b2c3d4e5f60718293a4b", "test@example.com", false)
	if err != nil {
		t.Fatalf("GenerateToken failed: %v", err)
	}
	if time.Until(exp) <= 0 {
		t.Fatal("expiry should be in the future")
	}

	claims, err := m.VerifyToken(token)
	if err != nil {
		t.Fatalf("VerifyToken failed: %v", err)
	}
	if claims.UserID != "65a1b2c3d4e5f60718293a4b" || claims.Email != "test@example.com" {
		t.Fatalf("claims mismatch: %+v", claims)
	}
	if claims.ID == "" {
		t.Fatal("token should carry a jti")
	}
	if claims.IsAdmin {
		t.Fatal("IsAdmin should be false")
	}

	adminTkn, _, _ := m.GenerateToken("admin-uid", "boss@example.com", true)
	if c, err := m.VerifyToken(adminTkn); err != nil || !c.IsAdmin {
		t.Fatalf("admin claim lost: %v", err)
	}
}

func TestJWTManager_UniqueJTI(t *testing.T) {
	m := NewJWTManager("test-secret", 5*time.Minute)
	a, _, _ := m.GenerateToken("uid", "a@example.com", false)
	b, _, _ := m.GenerateToken("uid", "a@example.com", false)
	ca, _ := m.VerifyToken(a)
	cb, _ := m.VerifyToken(b)
	if ca.ID == cb.ID {
		t.Fatal("two sign-ins must get distinct jti")
	}
}

func TestJWTManager_NormalizeEmailClaim(t *testing.T) {
	m := NewJWTManager("test-secret", 5*time.Minute)

	token, _, err := m.GenerateToken("uid", "User.Case@Example.COM", false)
	if err != nil {
		t.Fatalf("GenerateToken failed: %v", err)
	}

	claims, err := m.VerifyToken(token)
	if err != nil {
		t.Fatalf("VerifyToken failed: %v", err)
	}

	if claims.Email != "user.case@example.com" {
		t.Fatalf("expected normalized email in claims, got %s", claims.Email)
	}
}

func TestJWTManager_Rotation(t *testing.T) {
	keys := map[string]string{"k1": "secret-one", "k2": "secret-two"}
	m := NewJWTManagerFromKeys(keys, "k2", 5*time.Minute)

	tkn2, _, err := m.GenerateToken("uid", "rot@example.com", false)
	if err != nil {
		t.Fatalf("GenerateToken (k2) failed: %v", err)
	}
	if _, err := m.VerifyToken(tkn2); err != nil {
		t.Fatalf("VerifyToken (k2) failed: %v", err)
	}

	// a token issued while k1 was active
	mOld := NewJWTManagerFromKeys(keys, "k1", 5*time.Minute)
	tkn1, _, err := mOld.GenerateToken("uid", "rot@example.com", false)
	if err != nil {
		t.Fatalf("GenerateToken (k1) failed: %v", err)
	}
	if _, err := m.VerifyToken(tkn1); err != nil {
		t.Fatalf("VerifyToken (old k1) failed: %v", err)
	}

	// once k1 is retired its tokens stop verifying
	retired := NewJWTManagerFromKeys(map[string]string{"k2": "secret-two"}, "k2", 5*time.Minute)
	if _, err := retired.VerifyToken(tkn1); err == nil {
		t.Fatal("token signed with a retired key should not verify")
	}
}

func TestJWTManager_RejectsWrongSecret(t *testing.T) {
	a := NewJWTManager("secret-a", time.Minute)
	b := NewJWTManager("secret-b", time.Minute)
	tkn, _, _ := a.GenerateToken("uid", "x@example.com", false)
	if _, err := b.VerifyToken(tkn); err == nil {
		t.Fatal("token verified with the wrong secret")
	}
}

func TestJWTManager_Expired(t *testing.T) {
	m := NewJWTManager("test-secret", -time.Minute)
	tkn, _, err := m.GenerateToken("uid", "x@example.com", false)
	if err != nil {
		t.Fatalf("GenerateToken failed: %v", err)
	}
	if _, err := m.VerifyToken(tkn); !errors.Is(err, jwt.ErrTokenExpired) {
		t.Fatalf("expected ErrTokenExpired, got %v", err)
	}
}

func TestJWTManager_PurposeSeparation(t *testing.T) {
	m := NewJWTManager("test-secret", 5*time.Minute)

	verify, _, err := m.GenerateVerificationToken("uid", "x@example.com")
	if err != nil {
		t.Fatalf("GenerateVerificationToken failed: %v", err)
	}
	if _, err := m.VerifyToken(verify); !errors.Is(err, ErrWrongPurpose) {
		t.Fatalf("verification token must not authenticate API calls, got %v", err)
	}
	if c, err := m.VerifyPurpose(verify, PurposeVerify); err != nil || c.UserID != "uid" {
		t.Fatalf("VerifyPurpose failed: %v", err)
	}

	access, _, _ := m.GenerateToken("uid", "x@example.com", false)
	if _, err := m.VerifyPurpose(access, PurposeVerify); !errors.Is(err, ErrWrongPurpose) {
		t.Fatalf("access token must not verify an email, got %v", err)
	}
}

func TestJWTManager_IssueTokenClaims(t *testing.T) {
	m := NewJWTManager("test-secret", time.Hour)
	tkn, issued, err := m.IssueToken("uid", "x@example.com", true)
	if err != nil {
		t.Fatalf("IssueToken failed: %v", err)
	}
	parsed, err := m.VerifyToken(tkn)
	if err != nil {
		t.Fatalf("VerifyToken failed: %v", err)
	}
	if parsed.ID != issued.ID || !parsed.ExpiresAt.Time.Equal(issued.ExpiresAt.Time) {
		t.Fatalf("issued %+v, parsed %+v", issued, parsed)
	}
}
