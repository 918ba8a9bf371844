package reconcile

import (
	"context"
	"fmt"
	"strings"

	"github.com/ridelinkapp/ridelink/internal/directory"
	"github.com/ridelinkapp/ridelink/internal/identity"
	"github.com/ridelinkapp/ridelink/internal/localstore"
	"github.com/ridelinkapp/ridelink/internal/logging"
)

// Step names one side effect inside a deletion.
type Step string

const (
	StepRemoteDirectory  Step = "remote_directory"
	StepMediaPurge       Step = "media_purge"
	StepLocalStore       Step = "local_store"
	StepIdentityProvider Step = "identity_provider"
)

// StepResult is the inspectable outcome of one deletion step. Best-effort
// steps record their failures here instead of aborting the procedure.
type StepResult struct {
	Step    Step
	Err     error
	Skipped bool
	Reason  string
}

// Outcome classifies the overall result of a deletion.
type Outcome int

const (
	// OutcomeDeletedEverywhere: all reachable stores no longer know the email.
	OutcomeDeletedEverywhere Outcome = iota

	// OutcomeResidualIdentity: local (and possibly remote) deletion succeeded
	// but the identity provider still holds the email. The email will appear
	// "already registered" on a future sign-up. Degraded but accepted.
	OutcomeResidualIdentity
)

// DeletionResult folds the step results into one inspectable outcome.
type DeletionResult struct {
	Email   string
	Outcome Outcome
	Steps   []StepResult
}

func (r *DeletionResult) addStep(s StepResult) {
	r.Steps = append(r.Steps, s)
}

// StepFor returns the recorded result for step, or nil.
func (r *DeletionResult) StepFor(step Step) *StepResult {
	for i := range r.Steps {
		if r.Steps[i].Step == step {
			return &r.Steps[i]
		}
	}
	return nil
}

// MediaPurger removes a user's uploaded media from object storage.
type MediaPurger interface {
	PurgeUserMedia(ctx context.Context, email string) (int, error)
}

// Deleter removes an account across all stores with a fixed ordering:
// remote directory first (so a retry after local failure does not meet a
// stale remote record), then the local cache (the only fatal step), then the
// identity provider last, because self-deletion ends the session the earlier
// steps needed.
type Deleter struct {
	provider identity.Client
	local    localstore.Store
	remote   directory.Store
	media    MediaPurger // optional
	log      logging.Logger
}

// NewDeleter wires a Deleter. media may be nil when no object storage is
// configured.
func NewDeleter(provider identity.Client, local localstore.Store, remote directory.Store, media MediaPurger, log logging.Logger) *Deleter {
	return &Deleter{
		provider: provider,
		local:    local,
		remote:   remote,
		media:    media,
		log:      log.With("component", "delete"),
	}
}

// DeleteAccount removes email from every store it can reach. Only a local
// cache failure aborts: the returned error then wraps ErrLocalStore and the
// partial DeletionResult reports what already happened. Any other result
// means the local record is gone; Outcome tells the caller whether an
// identity-provider entry remains.
func (d *Deleter) DeleteAccount(ctx context.Context, email string) (*DeletionResult, error) {
	result := &DeletionResult{Email: email}

	// Demo accounts are local-only by construction; no remote calls.
	if IsDemoAccount(email) {
		if _, err := d.local.DeleteByEmail(ctx, email); err != nil {
			result.addStep(StepResult{Step: StepLocalStore, Err: err})
			return result, fmt.Errorf("%w: %w", ErrLocalStore, err)
		}
		result.addStep(StepResult{Step: StepLocalStore})
		result.Outcome = OutcomeDeletedEverywhere
		return result, nil
	}

	current := d.provider.CurrentSession()
	sessionMatches := current != nil && strings.EqualFold(current.Email, email)

	result.addStep(d.deleteRemote(ctx, email, current, sessionMatches))
	result.addStep(d.purgeMedia(ctx, email))

	if _, err := d.local.DeleteByEmail(ctx, email); err != nil {
		result.addStep(StepResult{Step: StepLocalStore, Err: err})
		return result, fmt.Errorf("%w: %w", ErrLocalStore, err)
	}
	result.addStep(StepResult{Step: StepLocalStore})

	providerStep := d.deleteProviderIdentity(ctx, current, sessionMatches)
	result.addStep(providerStep)

	if providerStep.Err != nil || providerStep.Skipped {
		result.Outcome = OutcomeResidualIdentity
	} else {
		result.Outcome = OutcomeDeletedEverywhere
	}
	return result, nil
}

// deleteRemote removes the directory record(s), best-effort. With a matching
// session the record is addressed by the provider subject id; otherwise all
// records matching the email are removed.
func (d *Deleter) deleteRemote(ctx context.Context, email string, current *identity.Subject, sessionMatches bool) StepResult {
	if sessionMatches && current.UID != "" {
		if err := d.remote.Delete(ctx, current.UID); err != nil {
			d.log.Warn(ctx, "remote directory delete failed", "email", email, "error", err)
			return StepResult{Step: StepRemoteDirectory, Err: err}
		}
		return StepResult{Step: StepRemoteDirectory}
	}

	records, err := d.remote.QueryByEmail(ctx, email)
	if err != nil {
		d.log.Warn(ctx, "remote directory query failed", "email", email, "error", err)
		return StepResult{Step: StepRemoteDirectory, Err: err}
	}
	for _, r := range records {
		if err := d.remote.Delete(ctx, r.ID); err != nil {
			d.log.Warn(ctx, "remote directory delete failed", "email", email, "id", r.ID, "error", err)
			return StepResult{Step: StepRemoteDirectory, Err: err}
		}
	}
	return StepResult{Step: StepRemoteDirectory}
}

func (d *Deleter) purgeMedia(ctx context.Context, email string) StepResult {
	if d.media == nil {
		return StepResult{Step: StepMediaPurge, Skipped: true, Reason: "no media storage configured"}
	}
	if _, err := d.media.PurgeUserMedia(ctx, email); err != nil {
		d.log.Warn(ctx, "media purge failed", "email", email, "error", err)
		return StepResult{Step: StepMediaPurge, Err: err}
	}
	return StepResult{Step: StepMediaPurge}
}

// deleteProviderIdentity self-deletes at the identity provider. Provider
// APIs require the live session, so without a matching session the identity
// record is left behind and the caller is told via the residual outcome.
func (d *Deleter) deleteProviderIdentity(ctx context.Context, current *identity.Subject, sessionMatches bool) StepResult {
	if !sessionMatches {
		return StepResult{Step: StepIdentityProvider, Skipped: true, Reason: "not authenticated as this account"}
	}
	if err := d.provider.DeleteSelf(ctx, current); err != nil {
		d.log.Warn(ctx, "identity provider delete failed", "email", current.Email, "error", err)
		return StepResult{Step: StepIdentityProvider, Err: err}
	}
	return StepResult{Step: StepIdentityProvider}
}

// DeleteAllLocal wipes the local cache one account at a time, counting
// successes and never aborting on a single failure.
func (d *Deleter) DeleteAllLocal(ctx context.Context) (int, error) {
	accounts, err := d.local.GetAll(ctx)
	if err != nil {
		return 0, fmt.Errorf("%w: %w", ErrLocalStore, err)
	}
	deleted := 0
	for _, a := range accounts {
		if _, err := d.local.DeleteByEmail(ctx, a.Email); err != nil {
			d.log.Warn(ctx, "failed to delete local account", "email", a.Email, "error", err)
			continue
		}
		deleted++
	}
	return deleted, nil
}

// DeleteAllRemote removes every record from the remote directory with the
// same non-fatal-per-item policy.
func (d *Deleter) DeleteAllRemote(ctx context.Context) (int, error) {
	records, err := d.remote.GetAll(ctx)
	if err != nil {
		return 0, err
	}
	deleted := 0
	for _, r := range records {
		if err := d.remote.Delete(ctx, r.ID); err != nil {
			d.log.Warn(ctx, "failed to delete directory record", "id", r.ID, "error", err)
			continue
		}
		deleted++
	}
	return deleted, nil
}
