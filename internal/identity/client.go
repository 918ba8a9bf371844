// Package identity talks to the hosted identity provider. The provider is
// used by the core purely as a password-verification oracle: it never acts
// as the session of record, and the local account cache stays authoritative
// for authorization.
package identity

import (
	"context"
	"errors"
)

var (
	// ErrInvalidCredentials means the provider rejected the email/password pair.
	ErrInvalidCredentials = errors.New("invalid credentials")
)

// Subject identifies an authenticated principal at the provider.
type Subject struct {
	// UID is the provider-issued subject identifier.
	UID string

	Email string

	// EmailVerified is refreshed by Reload.
	EmailVerified bool

	// IDToken is the provider-issued token backing this session.
	IDToken string
}

// Client is the contract toward the hosted identity service.
type Client interface {
	// SignIn verifies email/password and opens a provider session.
	// Returns ErrInvalidCredentials on rejection, common.ErrUnavailable when
	// the provider cannot be reached.
	SignIn(ctx context.Context, email, password string) (*Subject, error)

	// Reload refreshes the subject's verification status in place.
	Reload(ctx context.Context, subject *Subject) error

	// IsEmailVerified reports the subject's verification status as of the
	// last SignIn or Reload.
	IsEmailVerified(subject *Subject) bool

	// SignOut ends the current provider session, if any.
	SignOut(ctx context.Context) error

	// CurrentSession returns the active subject, or nil when signed out.
	CurrentSession() *Subject

	// DeleteSelf removes the subject's identity record at the provider.
	// Provider APIs require the live session to self-delete, so the subject
	// must match the current session.
	DeleteSelf(ctx context.Context, subject *Subject) error
}
