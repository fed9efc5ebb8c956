package service

import (
	"crypto/subtle"
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// Sentinel errors for the auth service.
var (
	ErrInvalidAPIKey    = errors.New("auth: invalid api key")
	ErrInvalidToken     = errors.New("auth: invalid or expired token")
	ErrJWTSecretMissing = errors.New("auth: JWT_SECRET not configured")
)

// Claims are the JWT claims embedded in admin access tokens.
type Claims struct {
	jwt.RegisteredClaims
	Role string `json:"role"`
}

// AuthService exchanges the configured admin API key for short-lived
// HS256 access tokens and validates them. There are no user accounts:
// the catalog is read-only and the only protected operation is the admin
// refresh, so a single shared key suffices.
type AuthService struct {
	apiKey    string
	jwtSecret []byte
	tokenTTL  time.Duration
	now       func() time.Time
}

// NewAuthService creates an AuthService. An empty apiKey disables token
// issuance entirely.
func NewAuthService(apiKey, jwtSecret string, tokenTTL time.Duration) *AuthService {
	return &AuthService{
		apiKey:    apiKey,
		jwtSecret: []byte(jwtSecret),
		tokenTTL:  tokenTTL,
		now:       time.Now,
	}
}

// IssueToken validates the presented API key and returns a signed access
// token with the configured TTL.
func (s *AuthService) IssueToken(apiKey string) (string, error) {
	if len(s.jwtSecret) == 0 {
		return "", ErrJWTSecretMissing
	}
	if s.apiKey == "" || subtle.ConstantTimeCompare([]byte(apiKey), []byte(s.apiKey)) != 1 {
		return "", ErrInvalidAPIKey
	}

	now := s.now()
	claims := Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   "admin",
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(s.tokenTTL)),
		},
		Role: "admin",
	}

	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.jwtSecret)
	if err != nil {
		return "", fmt.Errorf("auth: sign token: %w", err)
	}
	return token, nil
}

// TokenTTL returns the configured token lifetime.
func (s *AuthService) TokenTTL() time.Duration {
	return s.tokenTTL
}

// ValidateAccessToken parses and validates a token string, returning its
// claims on success.
func (s *AuthService) ValidateAccessToken(tokenStr string) (*Claims, error) {
	if len(s.jwtSecret) == 0 {
		return nil, ErrJWTSecretMissing
	}

	token, err := jwt.ParseWithClaims(tokenStr, &Claims{}, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("auth: unexpected signing method %v", t.Header["alg"])
		}
		return s.jwtSecret, nil
	}, jwt.WithTimeFunc(func() time.Time { return s.now() }))
	if err != nil || !token.Valid {
		return nil, ErrInvalidToken
	}

	claims, ok := token.Claims.(*Claims)
	if !ok {
		return nil, ErrInvalidToken
	}
	return claims, nil
}
