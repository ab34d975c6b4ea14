// Package identity verifies bearer tokens and registers accounts. A
// Provider is the only thing the rest of the server knows about
// authentication; handlers receive an Identity value and pass it to the
// services explicitly.
package identity

import (
	"context"
	"errors"
	"net/mail"
	"strings"

	"github.com/maasin/byahenow/internal/domain/user"
)

const minPasswordLength = 6

var (
	ErrInvalidToken       = errors.New("invalid or expired token")
	ErrInvalidCredentials = errors.New("invalid email or password")
	ErrEmailTaken         = errors.New("email already registered")
	ErrMissingRole        = errors.New("token carries no valid role claim")

	ErrMissingEmail    = errors.New("email is required")
	ErrInvalidEmail    = errors.New("email is not a valid address")
	ErrMissingPassword = errors.New("password is required")
	ErrWeakPassword    = errors.New("password must be at least 6 characters")
	ErrMissingName     = errors.New("name is required")
)

// Identity is the verified caller of a request
type Identity struct {
	UserID string
	Email  string
	Name   string
	Role   user.Role
}

// IsDriver reports whether the identity may publish presence
func (i Identity) IsDriver() bool {
	return i.Role == user.RoleDriver
}

// Registration is the input to Register
type Registration struct {
	Email    string
	Password string
	Name     string
	Role     user.Role
}

// Normalize trims the free text fields and lower-cases the email
func (r Registration) Normalize() Registration {
	r.Email = strings.ToLower(strings.TrimSpace(r.Email))
	r.Name = strings.TrimSpace(r.Name)
	return r
}

// Validate checks every field required at signup
func (r Registration) Validate() error {
	if r.Email == "" {
		return ErrMissingEmail
	}
	if _, err := mail.ParseAddress(r.Email); err != nil {
		return ErrInvalidEmail
	}
	if r.Password == "" {
		return ErrMissingPassword
	}
	if len(r.Password) < minPasswordLength {
		return ErrWeakPassword
	}
	if r.Name == "" {
		return ErrMissingName
	}
	if _, err := user.ParseRole(string(r.Role)); err != nil {
		return err
	}
	return nil
}

// Provider verifies tokens and creates accounts
type Provider interface {
	// Verify resolves a bearer token to the identity it was issued for
	Verify(ctx context.Context, token string) (Identity, error)

	// Register creates an account; the role is fixed from then on
	Register(ctx context.Context, reg Registration) (Identity, error)
}

// PasswordAuthenticator is implemented by providers that can exchange an
// email and password for a bearer token themselves. Hosted providers issue
// tokens client side and do not implement it.
type PasswordAuthenticator interface {
	Login(ctx context.Context, email, password string) (string, Identity, error)
}
