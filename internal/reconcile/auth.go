package reconcile

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/ridelinkapp/ridelink/internal/common"
	"github.com/ridelinkapp/ridelink/internal/directory"
	"github.com/ridelinkapp/ridelink/internal/identity"
	"github.com/ridelinkapp/ridelink/internal/localstore"
	"github.com/ridelinkapp/ridelink/internal/logging"
	"github.com/ridelinkapp/ridelink/internal/models"
	"github.com/ridelinkapp/ridelink/internal/passwordx"
	"github.com/ridelinkapp/ridelink/internal/session"
)

// Authenticator orchestrates login. The identity provider only answers "is
// this password right"; the local cache decides whether the login is
// authorized. When the provider knows a user the cache does not (a ghost
// account), the authenticator repairs the cache before deciding.
type Authenticator struct {
	provider identity.Client
	local    localstore.Store
	remote   directory.Store
	sessions session.Store
	log      logging.Logger
	now      func() time.Time
}

// NewAuthenticator wires an Authenticator to its three stores and the
// session collaborator.
func NewAuthenticator(provider identity.Client, local localstore.Store, remote directory.Store, sessions session.Store, log logging.Logger) *Authenticator {
	return &Authenticator{
		provider: provider,
		local:    local,
		remote:   remote,
		sessions: sessions,
		log:      log.With("component", "auth"),
		now:      func() time.Time { return time.Now().UTC() },
	}
}

// Authenticate verifies email/password/claimedRole and returns the recorded
// session on success. Failures are typed: ErrEmailNotVerified,
// ErrCredentialInvalid, ErrNotFoundLocally, ErrReconciliationFailed or
// ErrLocalStore. No store is mutated on any failure other than a failed
// ghost repair.
func (a *Authenticator) Authenticate(ctx context.Context, email, password string, claimedRole models.Role) (*session.Session, error) {
	role, err := models.ParseRole(string(claimedRole))
	if err != nil {
		return nil, err
	}

	demo := IsDemoAccount(email)

	var subject *identity.Subject
	if !demo {
		subject, err = a.probeProvider(ctx, email, password)
		if err != nil {
			return nil, err
		}
	}

	_, err = a.local.FindByEmail(ctx, email)
	localAbsent := errors.Is(err, common.ErrNotFound)
	if err != nil && !localAbsent {
		return nil, fmt.Errorf("%w: %w", ErrLocalStore, err)
	}

	account, loginErr := a.local.Login(ctx, email, password, role)

	// Ghost: the credential is valid upstream but the cache has no record.
	if loginErr != nil && subject != nil && localAbsent && !demo {
		a.log.Info(ctx, "ghost account detected, repairing local cache", "email", email)
		account, loginErr = a.repairGhost(ctx, email, password, role, subject)
		if loginErr != nil {
			return nil, loginErr
		}
	}

	if loginErr != nil {
		switch {
		case errors.Is(loginErr, common.ErrNotFound):
			return nil, ErrNotFoundLocally
		case errors.Is(loginErr, localstore.ErrLoginMismatch):
			return nil, ErrCredentialInvalid
		default:
			return nil, fmt.Errorf("%w: %w", ErrLocalStore, loginErr)
		}
	}

	sess := session.Session{
		Email:      account.Email,
		Role:       account.Role,
		FullName:   account.FullName,
		SignedInAt: a.now(),
	}
	if err := a.sessions.Save(ctx, sess); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrLocalStore, err)
	}
	return &sess, nil
}

// probeProvider checks the password against the identity provider. The
// provider session is closed in every outcome: it is a verification oracle,
// never the session of record. A nil subject with nil error means the probe
// did not verify the password (rejected or unreachable) and the local cache
// decides alone.
func (a *Authenticator) probeProvider(ctx context.Context, email, password string) (*identity.Subject, error) {
	subject, err := a.provider.SignIn(ctx, email, password)
	if err != nil {
		// Deliberate fallback, not error-swallowing: legacy and offline
		// accounts may still be authorized by the local cache.
		a.log.Warn(ctx, "identity provider probe failed, falling back to local cache", "email", email, "error", err)
		return nil, nil
	}

	if err := a.provider.Reload(ctx, subject); err != nil {
		a.log.Warn(ctx, "failed to reload verification status", "email", email, "error", err)
	}

	if !a.provider.IsEmailVerified(subject) {
		// Must not leave an active provider session behind.
		if err := a.provider.SignOut(ctx); err != nil {
			a.log.Warn(ctx, "provider sign-out failed", "error", err)
		}
		return nil, ErrEmailNotVerified
	}

	if err := a.provider.SignOut(ctx); err != nil {
		a.log.Warn(ctx, "provider sign-out failed", "error", err)
	}
	return subject, nil
}

// repairGhost recreates the missing local record for a provider-verified
// credential, preferring the remote directory's profile data. When the
// remote store does not know the email either, the record is rebuilt from
// claimed defaults and pushed back upstream, bringing all three stores into
// agreement.
func (a *Authenticator) repairGhost(ctx context.Context, email, password string, claimedRole models.Role, subject *identity.Subject) (*models.Account, error) {
	secret, err := passwordx.Hash(password)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrReconciliationFailed, err)
	}

	remote := a.lookupRemote(ctx, email)

	var account *models.Account
	if remote != nil {
		role, _ := models.ParseRole(remote.Role)
		createdAt := remote.CreatedAt
		if createdAt.IsZero() {
			createdAt = a.now()
		}
		account = &models.Account{
			Email:          email,
			PasswordSecret: secret,
			Role:           role,
			FullName:       remote.FullName,
			PhoneNumber:    remote.PhoneNumber,
			CreatedAt:      createdAt,
			Synced:         true,
		}
	} else {
		account = &models.Account{
			Email:          email,
			PasswordSecret: secret,
			Role:           claimedRole,
			FullName:       models.DisplayNameFromEmail(email),
			CreatedAt:      a.now(),
		}
	}

	if _, err := a.local.Insert(ctx, account); err != nil {
		a.log.Error(ctx, "ghost repair insert failed", "email", email, "error", err)
	}

	repaired, err := a.local.Login(ctx, email, password, claimedRole)
	if err != nil {
		return nil, fmt.Errorf("%w: retried login: %w", ErrReconciliationFailed, err)
	}

	if remote == nil {
		// The provider was the only store that knew this identity. Tag the
		// rebuilt record with the provider-issued subject id upstream.
		a.upsertRemote(ctx, repaired, secret, subject)
	}

	return repaired, nil
}

// lookupRemote returns the first usable directory record for email, or nil.
// Remote unavailability and corrupt records downgrade to "not found": the
// repair then proceeds from claimed defaults.
func (a *Authenticator) lookupRemote(ctx context.Context, email string) *models.DirectoryRecord {
	records, err := a.remote.QueryByEmail(ctx, email)
	if err != nil {
		a.log.Warn(ctx, "remote directory lookup failed during repair", "email", email, "error", err)
		return nil
	}
	for i := range records {
		if err := records[i].Validate(); err != nil {
			a.log.Warn(ctx, "skipping corrupt directory record", "email", email, "id", records[i].ID, "error", err)
			continue
		}
		return &records[i]
	}
	return nil
}

func (a *Authenticator) upsertRemote(ctx context.Context, account *models.Account, secret string, subject *identity.Subject) {
	documentID := subject.UID
	if documentID == "" {
		documentID = uuid.NewString()
	}
	record := models.DirectoryRecord{
		ID:          documentID,
		Email:       account.Email,
		Password:    secret,
		Role:        string(account.Role),
		FullName:    account.FullName,
		PhoneNumber: account.PhoneNumber,
		Username:    models.DisplayNameFromEmail(account.Email),
		CreatedAt:   account.CreatedAt,
	}
	if err := a.remote.Upsert(ctx, documentID, record); err != nil {
		a.log.Warn(ctx, "failed to push repaired record to remote directory", "email", account.Email, "error", err)
	}
}
