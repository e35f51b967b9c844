// Package users implements account registration and credential checking.
// Passwords are stored as bcrypt hashes and never leave the package in
// plaintext.
package users

import (
	"context"
	"errors"
	"fmt"

	"golang.org/x/crypto/bcrypt"
)

// ErrInvalidCredentials is returned on login failure. The same error covers
// both "no such user" and "wrong password" so that accounts cannot be
// enumerated through the login endpoint.
var ErrInvalidCredentials = errors.New("invalid email or password")

// Service defines the users service interface
type Service interface {
	Register(ctx context.Context, req RegisterRequest) (*User, error)
	Authenticate(ctx context.Context, email, password string) (*User, error)
	GetByID(ctx context.Context, id string) (*User, error)
}

type service struct {
	repo Repository
}

// NewService creates a new users service
func NewService(repo Repository) Service {
	return &service{repo: repo}
}

// Register creates a new account. The email must not already exist; on
// conflict ErrEmailTaken is returned and nothing is persisted. No session is
// issued at registration, the user logs in separately.
func (s *service) Register(ctx context.Context, req RegisterRequest) (*User, error) {
	if _, err := s.repo.GetByEmail(ctx, req.Email); err == nil {
		return nil, ErrEmailTaken
	} else if !errors.Is(err, ErrUserNotFound) {
		return nil, err
	}

	// bcrypt generates a random per-user salt internally
	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	return s.repo.Create(ctx, req.Name, req.Email, string(hash))
}

// Authenticate checks the submitted credentials against the stored hash.
func (s *service) Authenticate(ctx context.Context, email, password string) (*User, error) {
	user, err := s.repo.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, ErrUserNotFound) {
			return nil, ErrInvalidCredentials
		}
		return nil, err
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return nil, ErrInvalidCredentials
	}

	return user, nil
}

// GetByID retrieves a user by ID. Used by the auth gate to confirm that the
// identity a token references still exists.
func (s *service) GetByID(ctx context.Context, id string) (*User, error) {
	return s.repo.GetByID(ctx, id)
}
