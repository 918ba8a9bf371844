package cli

import (
	"context"
	"errors"
	"fmt"
	"os/signal"
	"syscall"
)

func (a *App) cmdSync(ctx context.Context, args []string) error {
	if len(args) != 0 {
		return errors.New("usage: sync")
	}

	n, err := a.replicator.ReplicateAll(ctx)
	if err != nil {
		return fmt.Errorf("replication failed: %w", err)
	}
	fmt.Printf("Replicated %d accounts\n", n)
	return nil
}

func (a *App) cmdStatus(ctx context.Context) error {
	if a.replicator.IsSyncNeeded(ctx) {
		fmt.Println("Local cache is stale, run sync")
	} else {
		fmt.Println("Local cache is up to date")
	}
	return nil
}

// cmdWatch replicates once, then keeps re-replicating on remote changes
// until the process is interrupted.
func (a *App) cmdWatch(ctx context.Context) error {
	ctx, cancel := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	n, err := a.replicator.ReplicateAll(ctx)
	if err != nil {
		return fmt.Errorf("initial replication failed: %w", err)
	}
	fmt.Printf("Replicated %d accounts, watching for changes...\n", n)

	stop, err := a.replicator.Watch(ctx, func(count int, err error) {
		if err != nil {
			fmt.Printf("replication failed: %v\n", err)
			return
		}
		fmt.Printf("Replicated %d accounts\n", count)
	})
	if err != nil {
		return fmt.Errorf("subscribing to remote changes: %w", err)
	}
	defer stop()

	<-ctx.Done()
	fmt.Println("Stopping")
	return nil
}
