// Package localstore implements the local relational cache of accounts.
// It is the authoritative record for authorization: login decisions are made
// here even when the remote identity provider is unreachable.
package localstore

import (
	"context"
	"errors"

	"github.com/ridelinkapp/ridelink/internal/models"
)

// ErrLoginMismatch is returned by Login when the account exists but the
// password or role does not match. It is distinct from common.ErrNotFound so
// the reconciler can tell a missing record from a bad credential.
var ErrLoginMismatch = errors.New("login mismatch")

// Store describes the operations the reconciliation core needs from the
// local account cache. Implementations provide their own locking and
// transactions; callers must not coordinate store concurrency themselves.
type Store interface {
	// FindByEmail returns the account for email or common.ErrNotFound.
	FindByEmail(ctx context.Context, email string) (*models.Account, error)

	// Login returns the account matching email, password and (case-insensitive)
	// role. Returns common.ErrNotFound when no record exists for email and
	// ErrLoginMismatch when one exists but the credentials do not match.
	Login(ctx context.Context, email, password string, role models.Role) (*models.Account, error)

	// Insert stores a new account and returns the assigned surrogate id.
	Insert(ctx context.Context, account *models.Account) (int64, error)

	// InsertBatch stores accounts in a single transaction and returns the
	// assigned ids in input order.
	InsertBatch(ctx context.Context, accounts []*models.Account) ([]int64, error)

	// DeleteByEmail removes the account for email, reporting how many rows
	// were removed. Deleting an absent account is not an error.
	DeleteByEmail(ctx context.Context, email string) (int64, error)

	// DeleteAll wipes the cache and returns the number of removed rows.
	DeleteAll(ctx context.Context) (int64, error)

	// GetAll lists every cached account.
	GetAll(ctx context.Context) ([]models.Account, error)

	// Count returns the number of cached accounts.
	Count(ctx context.Context) (int64, error)
}
