// Package directory implements the remote document directory holding one
// record per account in the users collection. The remote directory is
// authoritative for replication: local state is fully replaceable from it.
package directory

import (
	"context"

	"github.com/ridelinkapp/ridelink/internal/models"
)

// Store describes the operations the reconciliation core needs from the
// remote directory.
type Store interface {
	// Get returns the record stored under documentID or common.ErrNotFound.
	Get(ctx context.Context, documentID string) (*models.DirectoryRecord, error)

	// QueryByEmail returns every record whose email field matches. Duplicate
	// records for one email are possible; callers decide how to handle them.
	QueryByEmail(ctx context.Context, email string) ([]models.DirectoryRecord, error)

	// GetAll lists the whole collection.
	GetAll(ctx context.Context) ([]models.DirectoryRecord, error)

	// Upsert writes the record under documentID, creating or replacing it.
	Upsert(ctx context.Context, documentID string, record models.DirectoryRecord) error

	// Delete removes the record under documentID. Deleting an absent record
	// is not an error.
	Delete(ctx context.Context, documentID string) error

	// Count returns the number of records in the collection.
	Count(ctx context.Context) (int64, error)

	// Subscribe registers a long-lived listener for collection changes.
	// onChange receives the number of changed documents per notification.
	// The returned stop function unregisters the listener; listener errors
	// are logged and never unregister the subscription on their own.
	Subscribe(ctx context.Context, onChange func(n int)) (stop func(), err error)
}
