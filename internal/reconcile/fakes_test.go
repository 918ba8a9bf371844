package reconcile

import (
	"context"
	"database/sql"
	"io"
	"log/slog"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/ridelinkapp/ridelink/internal/common"
	"github.com/ridelinkapp/ridelink/internal/identity"
	"github.com/ridelinkapp/ridelink/internal/localstore"
	"github.com/ridelinkapp/ridelink/internal/logging"
	"github.com/ridelinkapp/ridelink/internal/models"
	"github.com/ridelinkapp/ridelink/internal/passwordx"
	"github.com/ridelinkapp/ridelink/internal/session"
	_ "modernc.org/sqlite"
)

// ---- fake identity provider ----

type providerUser struct {
	uid      string
	password string
	verified bool
}

type fakeProvider struct {
	mu      sync.Mutex
	users   map[string]*providerUser
	current *identity.Subject

	signInErr error // forced transport error
	deleteErr error

	signInCalls  int
	signOutCalls int
}

func newFakeProvider() *fakeProvider {
	return &fakeProvider{users: map[string]*providerUser{}}
}

func (f *fakeProvider) addUser(email, password, uid string, verified bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.users[email] = &providerUser{uid: uid, password: password, verified: verified}
}

func (f *fakeProvider) SignIn(ctx context.Context, email, password string) (*identity.Subject, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.signInCalls++

	if f.signInErr != nil {
		return nil, f.signInErr
	}
	u, ok := f.users[email]
	if !ok || u.password != password {
		return nil, identity.ErrInvalidCredentials
	}
	subject := &identity.Subject{UID: u.uid, Email: email, EmailVerified: u.verified}
	f.current = subject
	return subject, nil
}

func (f *fakeProvider) Reload(ctx context.Context, subject *identity.Subject) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	u, ok := f.users[subject.Email]
	if !ok {
		return identity.ErrInvalidCredentials
	}
	subject.EmailVerified = u.verified
	return nil
}

func (f *fakeProvider) IsEmailVerified(subject *identity.Subject) bool {
	return subject != nil && subject.EmailVerified
}

func (f *fakeProvider) SignOut(ctx context.Context) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.signOutCalls++
	f.current = nil
	return nil
}

func (f *fakeProvider) CurrentSession() *identity.Subject {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.current
}

func (f *fakeProvider) DeleteSelf(ctx context.Context, subject *identity.Subject) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.deleteErr != nil {
		return f.deleteErr
	}
	if f.current == nil || f.current.UID != subject.UID {
		return identity.ErrInvalidCredentials
	}
	delete(f.users, subject.Email)
	f.current = nil
	return nil
}

// hasUser reports whether the provider still holds an identity for email.
func (f *fakeProvider) hasUser(email string) bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	_, ok := f.users[email]
	return ok
}

// ---- fake remote directory ----

type fakeDirectory struct {
	mu          sync.Mutex
	docs        map[string]models.DirectoryRecord
	unavailable bool
	failDelete  map[string]bool
	listeners   []func(int)

	upserts int
}

func newFakeDirectory() *fakeDirectory {
	return &fakeDirectory{docs: map[string]models.DirectoryRecord{}, failDelete: map[string]bool{}}
}

func (f *fakeDirectory) put(id string, r models.DirectoryRecord) {
	f.mu.Lock()
	defer f.mu.Unlock()
	r.ID = id
	f.docs[id] = r
}

func (f *fakeDirectory) Get(ctx context.Context, documentID string) (*models.DirectoryRecord, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.unavailable {
		return nil, common.ErrUnavailable
	}
	r, ok := f.docs[documentID]
	if !ok {
		return nil, common.ErrNotFound
	}
	return &r, nil
}

func (f *fakeDirectory) QueryByEmail(ctx context.Context, email string) ([]models.DirectoryRecord, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.unavailable {
		return nil, common.ErrUnavailable
	}
	var result []models.DirectoryRecord
	for _, r := range f.docs {
		if strings.EqualFold(r.Email, email) {
			result = append(result, r)
		}
	}
	return result, nil
}

func (f *fakeDirectory) GetAll(ctx context.Context) ([]models.DirectoryRecord, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.unavailable {
		return nil, common.ErrUnavailable
	}
	result := make([]models.DirectoryRecord, 0, len(f.docs))
	for _, r := range f.docs {
		result = append(result, r)
	}
	return result, nil
}

func (f *fakeDirectory) Upsert(ctx context.Context, documentID string, record models.DirectoryRecord) error {
	f.mu.Lock()
	if f.unavailable {
		f.mu.Unlock()
		return common.ErrUnavailable
	}
	record.ID = documentID
	f.docs[documentID] = record
	f.upserts++
	listeners := append([]func(int){}, f.listeners...)
	f.mu.Unlock()

	for _, l := range listeners {
		l(1)
	}
	return nil
}

func (f *fakeDirectory) Delete(ctx context.Context, documentID string) error {
	f.mu.Lock()
	if f.unavailable {
		f.mu.Unlock()
		return common.ErrUnavailable
	}
	if f.failDelete[documentID] {
		f.mu.Unlock()
		return common.ErrUnavailable
	}
	_, existed := f.docs[documentID]
	delete(f.docs, documentID)
	listeners := append([]func(int){}, f.listeners...)
	f.mu.Unlock()

	if existed {
		for _, l := range listeners {
			l(1)
		}
	}
	return nil
}

func (f *fakeDirectory) Count(ctx context.Context) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.unavailable {
		return 0, common.ErrUnavailable
	}
	return int64(len(f.docs)), nil
}

func (f *fakeDirectory) Subscribe(ctx context.Context, onChange func(n int)) (func(), error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.unavailable {
		return nil, common.ErrUnavailable
	}
	idx := len(f.listeners)
	f.listeners = append(f.listeners, onChange)
	return func() {
		f.mu.Lock()
		defer f.mu.Unlock()
		f.listeners[idx] = func(int) {}
	}, nil
}

func (f *fakeDirectory) size() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.docs)
}

// ---- test environment ----

type env struct {
	provider *fakeProvider
	dir      *fakeDirectory
	local    *localstore.SQLiteStore
	sessions *session.SQLiteStore
	log      logging.Logger
}

func newEnv(t *testing.T) *env {
	t.Helper()
	db, err := sql.Open("sqlite", "file:"+t.Name()+"?mode=memory&cache=shared")
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	_, err = db.Exec(`
CREATE TABLE accounts (
    id              INTEGER PRIMARY KEY AUTOINCREMENT,
    email           TEXT    NOT NULL UNIQUE,
    password_secret TEXT    NOT NULL,
    role            TEXT    NOT NULL,
    full_name       TEXT    NOT NULL DEFAULT '',
    phone_number    TEXT    NOT NULL DEFAULT '',
    created_at      INTEGER NOT NULL,
    synced          INTEGER NOT NULL DEFAULT 0
);
CREATE TABLE session (key TEXT PRIMARY KEY, value TEXT NOT NULL);
`)
	require.NoError(t, err)

	return &env{
		provider: newFakeProvider(),
		dir:      newFakeDirectory(),
		local:    localstore.NewSQLiteStore(db),
		sessions: session.NewSQLiteStore(db),
		log:      logging.NewSlogLogger(slog.New(slog.NewTextHandler(io.Discard, nil))),
	}
}

func (e *env) authenticator() *Authenticator {
	return NewAuthenticator(e.provider, e.local, e.dir, e.sessions, e.log)
}

func (e *env) deleter(media MediaPurger) *Deleter {
	return NewDeleter(e.provider, e.local, e.dir, media, e.log)
}

func (e *env) replicator() *Replicator {
	return NewReplicator(e.dir, e.local, e.log)
}

func seedLocal(t *testing.T, e *env, email, password string, role models.Role) {
	t.Helper()
	secret, err := passwordx.Hash(password)
	require.NoError(t, err)
	_, err = e.local.Insert(context.Background(), &models.Account{
		Email:          email,
		PasswordSecret: secret,
		Role:           role,
	})
	require.NoError(t, err)
}
