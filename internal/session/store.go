// Package session persists the signed-in user's session metadata in the
// local cache database. The reconciliation core writes a session after a
// successful login and clears it on deletion; it never reads back through
// this package to make authorization decisions.
package session

import (
	"context"
	"time"

	"github.com/ridelinkapp/ridelink/internal/models"
)

// Session is the metadata recorded for the currently signed-in user.
type Session struct {
	Email      string
	Role       models.Role
	FullName   string
	SignedInAt time.Time
}

// Store saves and clears the current session.
type Store interface {
	// Save replaces the current session.
	Save(ctx context.Context, s Session) error

	// Current returns the saved session or common.ErrNotFound.
	Current(ctx context.Context) (*Session, error)

	// Clear removes any saved session.
	Clear(ctx context.Context) error
}
