package service

import (
	"errors"
	"testing"
	"time"
)

func newTestAuth() (*AuthService, *time.Time) {
	now := time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)
	s := NewAuthService("secret-key", "jwt-signing-secret", 15*time.Minute)
	s.now = func() time.Time { return now }
	return s, &now
}

func TestIssueAndValidateToken(t *testing.T) {
	s, _ := newTestAuth()

	token, err := s.IssueToken("secret-key")
	if err != nil {
		t.Fatalf("issue: %v", err)
	}

	claims, err := s.ValidateAccessToken(token)
	if err != nil {
		t.Fatalf("validate: %v", err)
	}
	if claims.Subject != "admin" || claims.Role != "admin" {
		t.Errorf("claims = sub=%q role=%q", claims.Subject, claims.Role)
	}
}

func TestIssueToken_WrongKey(t *testing.T) {
	s, _ := newTestAuth()

	if _, err := s.IssueToken("not-the-key"); !errors.Is(err, ErrInvalidAPIKey) {
		t.Errorf("err = %v, want ErrInvalidAPIKey", err)
	}
}

func TestIssueToken_EmptyConfiguredKeyDisablesIssuance(t *testing.T) {
	s := NewAuthService("", "jwt-signing-secret", 15*time.Minute)

	// An empty presented key must not match an empty configured key.
	if _, err := s.IssueToken(""); !errors.Is(err, ErrInvalidAPIKey) {
		t.Errorf("err = %v, want ErrInvalidAPIKey", err)
	}
}

func TestIssueToken_MissingJWTSecret(t *testing.T) {
	s := NewAuthService("secret-key", "", 15*time.Minute)

	if _, err := s.IssueToken("secret-key"); !errors.Is(err, ErrJWTSecretMissing) {
		t.Errorf("err = %v, want ErrJWTSecretMissing", err)
	}
}

func TestValidateAccessToken_Expired(t *testing.T) {
	s, now := newTestAuth()

	token, err := s.IssueToken("secret-key")
	if err != nil {
		t.Fatalf("issue: %v", err)
	}

	*now = now.Add(s.TokenTTL() + time.Minute)

	if _, err := s.ValidateAccessToken(token); !errors.Is(err, ErrInvalidToken) {
		t.Errorf("err = %v, want ErrInvalidToken after expiry", err)
	}
}

func TestValidateAccessToken_WrongSecret(t *testing.T) {
	issuer, _ := newTestAuth()
	token, err := issuer.IssueToken("secret-key")
	if err != nil {
		t.Fatalf("issue: %v", err)
	}

	verifier := NewAuthService("secret-key", "a-different-secret", 15*time.Minute)
	if _, err := verifier.ValidateAccessToken(token); !errors.Is(err, ErrInvalidToken) {
		t.Errorf("err = %v, want ErrInvalidToken for foreign signature", err)
	}
}

func TestValidateAccessToken_Garbage(t *testing.T) {
	s, _ := newTestAuth()

	for _, tokenStr := range []string{"", "not.a.jwt", "aaaa.bbbb.cccc"} {
		if _, err := s.ValidateAccessToken(tokenStr); !errors.Is(err, ErrInvalidToken) {
			t.Errorf("token %q: err = %v, want ErrInvalidToken", tokenStr, err)
		}
	}
}
