// Package token implements the session token service. Tokens are signed,
// time-limited JWTs carrying the identity of a logged-in user. They are not
// persisted server-side; possession of a token with a valid signature is the
// session.
package token

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// TokenTTL is the validity window fixed at issuance.
const TokenTTL = 24 * time.Hour

var (
	// ErrInvalidToken is returned when a token is malformed or its signature
	// does not verify
	ErrInvalidToken = errors.New("invalid token")
	// ErrExpiredToken is returned when a token's validity window has elapsed
	ErrExpiredToken = errors.New("token expired")
)

// Identity is the subject a token is issued for.
type Identity struct {
	ID    string `json:"id"`
	Email string `json:"email"`
	Name  string `json:"name"`
}

// Claims are the decoded contents of a session token.
type Claims struct {
	UserID string `json:"id"`
	Email  string `json:"email"`
	Name   string `json:"name"`
	jwt.RegisteredClaims
}

// Service issues and verifies session tokens with a process-wide secret.
type Service struct {
	secret []byte
	ttl    time.Duration
	now    func() time.Time
}

// NewService creates a token service signing with the given secret.
func NewService(secret []byte) *Service {
	return &Service{
		secret: secret,
		ttl:    TokenTTL,
		now:    time.Now,
	}
}

// Issue returns a signed token for the given identity, valid for 24 hours.
func (s *Service) Issue(identity Identity) (string, error) {
	now := s.now()
	claims := Claims{
		UserID: identity.ID,
		Email:  identity.Email,
		Name:   identity.Name,
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(s.ttl)),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(s.secret)
}

// Verify decodes a token and returns its claims. It fails with
// ErrExpiredToken when the validity window has elapsed and ErrInvalidToken
// for anything else (bad signature, malformed input, wrong algorithm).
func (s *Service) Verify(tokenStr string) (*Claims, error) {
	claims := &Claims{}
	parsed, err := jwt.ParseWithClaims(tokenStr, claims, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, ErrInvalidToken
		}
		return s.secret, nil
	}, jwt.WithTimeFunc(func() time.Time { return s.now() }))

	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, ErrExpiredToken
		}
		return nil, ErrInvalidToken
	}

	if !parsed.Valid {
		return nil, ErrInvalidToken
	}

	return claims, nil
}
