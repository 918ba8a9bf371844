package reconcile

import "errors"

var (
	// ErrCredentialInvalid means neither the identity provider nor the local
	// cache accepted the email/password/role combination.
	ErrCredentialInvalid = errors.New("credential invalid")

	// ErrEmailNotVerified blocks login until the user verifies their email
	// with the identity provider. Recoverable outside this core.
	ErrEmailNotVerified = errors.New("email not verified")

	// ErrNotFoundLocally means no cached account exists for the email and no
	// repair path applied.
	ErrNotFoundLocally = errors.New("account not found locally")

	// ErrReconciliationFailed means ghost repair was attempted and the stores
	// are still inconsistent. Surfaced to the caller, never retried here.
	ErrReconciliationFailed = errors.New("reconciliation failed")

	// ErrLocalStore marks a local cache failure. Never downgraded: fatal for
	// both authentication and deletion.
	ErrLocalStore = errors.New("local store failure")
)
