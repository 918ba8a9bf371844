package cli

import (
	"context"
	"errors"
	"fmt"

	"github.com/ridelinkapp/ridelink/internal/common"
	"github.com/ridelinkapp/ridelink/internal/models"
	"github.com/ridelinkapp/ridelink/internal/reconcile"
)

func (a *App) cmdLogin(ctx context.Context, args []string) error {
	if len(args) != 2 {
		return errors.New("usage: login <email> <role>")
	}
	email := args[0]

	role, err := models.ParseRole(args[1])
	if err != nil {
		return fmt.Errorf("%q: %w", args[1], err)
	}

	password, err := getPassword()
	if err != nil {
		return err
	}

	s, err := a.authenticator.Authenticate(ctx, email, password, role)
	if err != nil {
		return loginError(err)
	}

	fmt.Printf("Signed in as %s (%s)\n", s.Email, s.Role)
	return nil
}

// loginError turns the reconciler's error taxonomy into operator-readable
// messages; unknown errors pass through untouched.
func loginError(err error) error {
	switch {
	case errors.Is(err, reconcile.ErrEmailNotVerified):
		return errors.New("email is not verified yet, check your inbox")
	case errors.Is(err, reconcile.ErrCredentialInvalid):
		return errors.New("invalid email, password or role")
	case errors.Is(err, reconcile.ErrNotFoundLocally):
		return errors.New("no such account, run sync or register first")
	case errors.Is(err, reconcile.ErrReconciliationFailed):
		return errors.New("account could not be repaired, try again later")
	default:
		return err
	}
}

func (a *App) cmdLogout(ctx context.Context) error {
	if err := a.sessions.Clear(ctx); err != nil {
		return err
	}
	fmt.Println("Signed out")
	return nil
}

func (a *App) cmdWhoami(ctx context.Context) error {
	s, err := a.sessions.Current(ctx)
	if errors.Is(err, common.ErrNotFound) {
		fmt.Println("Not signed in")
		return nil
	}
	if err != nil {
		return err
	}
	fmt.Printf("%s (%s), signed in at %s\n", s.Email, s.Role, s.SignedInAt.Format("2006-01-02 15:04:05"))
	return nil
}
