package reconcile

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/ridelinkapp/ridelink/internal/directory"
	"github.com/ridelinkapp/ridelink/internal/localstore"
	"github.com/ridelinkapp/ridelink/internal/logging"
	"github.com/ridelinkapp/ridelink/internal/models"
)

// Replicator performs full one-way replication from the remote directory
// into the local cache. The remote is always authoritative; local state is
// fully replaceable.
type Replicator struct {
	remote directory.Store
	local  localstore.Store
	log    logging.Logger
	now    func() time.Time

	// mu serializes replication runs. Two runs racing to clear-then-refill
	// the cache could interleave and leave it partially overwritten.
	mu sync.Mutex
}

// NewReplicator wires a Replicator to the directory and the local cache.
func NewReplicator(remote directory.Store, local localstore.Store, log logging.Logger) *Replicator {
	return &Replicator{
		remote: remote,
		local:  local,
		log:    log.With("component", "sync"),
		now:    func() time.Time { return time.Now().UTC() },
	}
}

// ReplicateAll replaces the whole local cache with the remote collection and
// returns the number of accounts inserted.
//
// The cache is cleared before the remote read is verified. A failed or empty
// read therefore leaves an empty cache until the next successful run; that
// data-loss window is an accepted property of the design, traded for never
// serving a mix of old and new records.
//
// Records missing required fields are skipped and logged individually, never
// fatal to the batch. Local surrogate ids are always reassigned.
func (r *Replicator) ReplicateAll(ctx context.Context) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, err := r.local.DeleteAll(ctx); err != nil {
		return 0, fmt.Errorf("%w: %w", ErrLocalStore, err)
	}

	records, err := r.remote.GetAll(ctx)
	if err != nil {
		return 0, fmt.Errorf("remote read failed: %w", err)
	}
	if len(records) == 0 {
		return 0, nil
	}

	now := r.now()
	accounts := make([]*models.Account, 0, len(records))
	for _, rec := range records {
		account, err := rec.ToAccount(now)
		if err != nil {
			r.log.Warn(ctx, "skipping invalid directory record", "id", rec.ID, "error", err)
			continue
		}
		accounts = append(accounts, account)
	}
	if len(accounts) == 0 {
		return 0, nil
	}

	if _, err := r.local.InsertBatch(ctx, accounts); err != nil {
		return 0, fmt.Errorf("%w: %w", ErrLocalStore, err)
	}

	r.log.Info(ctx, "replication finished", "count", len(accounts), "skipped", len(records)-len(accounts))
	return len(accounts), nil
}

// IsSyncNeeded compares local and remote record counts. Any error counts as
// stale: better one redundant replication than a silently outdated cache.
func (r *Replicator) IsSyncNeeded(ctx context.Context) bool {
	localCount, err := r.local.Count(ctx)
	if err != nil {
		return true
	}
	remoteCount, err := r.remote.Count(ctx)
	if err != nil {
		return true
	}
	return localCount != remoteCount
}

// Watch subscribes to directory changes and re-replicates on each
// notification. Triggers are coalesced through a single-slot queue consumed
// by one worker, so bursts of notifications never spawn concurrent runs.
// Each run's result is delivered to onComplete (which may be nil).
//
// The returned stop function cancels future runs; a run already in progress
// always finishes, so the cache is never abandoned half-written.
func (r *Replicator) Watch(ctx context.Context, onComplete func(count int, err error)) (stop func(), err error) {
	kick := make(chan struct{}, 1)

	stopSub, err := r.remote.Subscribe(ctx, func(n int) {
		select {
		case kick <- struct{}{}:
		default: // a run is already queued, coalesce
		}
	})
	if err != nil {
		return nil, err
	}

	done := make(chan struct{})
	runCtx := context.WithoutCancel(ctx)

	go func() {
		for {
			select {
			case <-done:
				return
			default:
			}
			select {
			case <-done:
				return
			case <-kick:
				count, err := r.ReplicateAll(runCtx)
				if err != nil {
					r.log.Error(runCtx, "change-triggered replication failed", "error", err)
				}
				if onComplete != nil {
					onComplete(count, err)
				}
			}
		}
	}()

	var once sync.Once
	return func() {
		once.Do(func() {
			stopSub()
			close(done)
		})
	}, nil
}
