package cli

import (
	"context"
	"errors"
	"fmt"

	"github.com/ridelinkapp/ridelink/internal/reconcile"
)

func (a *App) cmdDelete(ctx context.Context, args []string) error {
	if len(args) != 1 {
		return errors.New("usage: delete <email>")
	}
	email := args[0]

	confirm, err := getSimpleText(a.reader, fmt.Sprintf("Type %q to confirm deletion:", email))
	if err != nil {
		return err
	}
	if confirm != email {
		fmt.Println("Aborted")
		return nil
	}

	result, err := a.deleter.DeleteAccount(ctx, email)
	if result != nil {
		printSteps(result)
	}
	if err != nil {
		return err
	}

	switch result.Outcome {
	case reconcile.OutcomeDeletedEverywhere:
		fmt.Println("Account deleted everywhere")
	case reconcile.OutcomeResidualIdentity:
		fmt.Println("Account deleted locally, but an identity provider record remains.")
		fmt.Println("Sign in as this account and delete again to remove it completely.")
	}
	return nil
}

func printSteps(result *reconcile.DeletionResult) {
	for _, s := range result.Steps {
		switch {
		case s.Skipped:
			fmt.Printf("  %-18s skipped (%s)\n", s.Step, s.Reason)
		case s.Err != nil:
			fmt.Printf("  %-18s failed: %v\n", s.Step, s.Err)
		default:
			fmt.Printf("  %-18s ok\n", s.Step)
		}
	}
}
