package localstore

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ridelinkapp/ridelink/internal/common"
	"github.com/ridelinkapp/ridelink/internal/models"
	"github.com/ridelinkapp/ridelink/internal/passwordx"
	_ "modernc.org/sqlite"
)

func setupStore(t *testing.T) *SQLiteStore {
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
);`)
	require.NoError(t, err)
	return NewSQLiteStore(db)
}

func testAccount(t *testing.T, email, password string, role models.Role) *models.Account {
	t.Helper()
	secret, err := passwordx.Hash(password)
	require.NoError(t, err)
	return &models.Account{
		Email:          email,
		PasswordSecret: secret,
		Role:           role,
		FullName:       "Test User",
		CreatedAt:      time.Now().UTC().Truncate(time.Second),
	}
}

func TestInsertAndFindByEmail(t *testing.T) {
	ctx := context.Background()
	s := setupStore(t)

	acc := testAccount(t, "a@x.com", "p1", models.RoleDriver)
	id, err := s.Insert(ctx, acc)
	require.NoError(t, err)
	require.Positive(t, id)
	require.Equal(t, id, acc.ID)

	got, err := s.FindByEmail(ctx, "a@x.com")
	require.NoError(t, err)
	assert.Equal(t, acc.Email, got.Email)
	assert.Equal(t, models.RoleDriver, got.Role)
	assert.Equal(t, acc.CreatedAt.Unix(), got.CreatedAt.Unix())
}

func TestFindByEmail_NotFound(t *testing.T) {
	s := setupStore(t)
	_, err := s.FindByEmail(context.Background(), "missing@x.com")
	require.ErrorIs(t, err, common.ErrNotFound)
}

func TestLogin(t *testing.T) {
	ctx := context.Background()
	s := setupStore(t)

	_, err := s.Insert(ctx, testAccount(t, "a@x.com", "p1", models.RoleDriver))
	require.NoError(t, err)

	t.Run("success", func(t *testing.T) {
		got, err := s.Login(ctx, "a@x.com", "p1", models.RoleDriver)
		require.NoError(t, err)
		assert.Equal(t, "a@x.com", got.Email)
	})

	t.Run("role match is case-insensitive", func(t *testing.T) {
		_, err := s.Login(ctx, "a@x.com", "p1", models.Role("driver"))
		require.NoError(t, err)
	})

	t.Run("wrong password", func(t *testing.T) {
		_, err := s.Login(ctx, "a@x.com", "nope", models.RoleDriver)
		require.ErrorIs(t, err, ErrLoginMismatch)
	})

	t.Run("wrong role", func(t *testing.T) {
		_, err := s.Login(ctx, "a@x.com", "p1", models.RolePassenger)
		require.ErrorIs(t, err, ErrLoginMismatch)
	})

	t.Run("unknown email", func(t *testing.T) {
		_, err := s.Login(ctx, "b@x.com", "p1", models.RoleDriver)
		require.ErrorIs(t, err, common.ErrNotFound)
	})
}

func TestInsertBatch_AssignsFreshIDs(t *testing.T) {
	ctx := context.Background()
	s := setupStore(t)

	batch := []*models.Account{
		testAccount(t, "a@x.com", "p1", models.RoleDriver),
		testAccount(t, "b@x.com", "p2", models.RolePassenger),
	}
	ids, err := s.InsertBatch(ctx, batch)
	require.NoError(t, err)
	require.Len(t, ids, 2)
	assert.NotEqual(t, ids[0], ids[1])

	n, err := s.Count(ctx)
	require.NoError(t, err)
	assert.EqualValues(t, 2, n)
}

func TestInsertBatch_RollsBackOnDuplicate(t *testing.T) {
	ctx := context.Background()
	s := setupStore(t)

	batch := []*models.Account{
		testAccount(t, "a@x.com", "p1", models.RoleDriver),
		testAccount(t, "a@x.com", "p2", models.RolePassenger), // duplicate email
	}
	_, err := s.InsertBatch(ctx, batch)
	require.Error(t, err)

	n, err := s.Count(ctx)
	require.NoError(t, err)
	assert.EqualValues(t, 0, n, "failed batch must leave no partial rows")
}

func TestDeleteByEmail(t *testing.T) {
	ctx := context.Background()
	s := setupStore(t)

	_, err := s.Insert(ctx, testAccount(t, "a@x.com", "p1", models.RoleDriver))
	require.NoError(t, err)

	n, err := s.DeleteByEmail(ctx, "a@x.com")
	require.NoError(t, err)
	assert.EqualValues(t, 1, n)

	n, err = s.DeleteByEmail(ctx, "a@x.com")
	require.NoError(t, err)
	assert.EqualValues(t, 0, n, "deleting an absent account is not an error")
}

func TestDeleteAllAndGetAll(t *testing.T) {
	ctx := context.Background()
	s := setupStore(t)

	for _, email := range []string{"a@x.com", "b@x.com", "c@x.com"} {
		_, err := s.Insert(ctx, testAccount(t, email, "p", models.RolePassenger))
		require.NoError(t, err)
	}

	all, err := s.GetAll(ctx)
	require.NoError(t, err)
	require.Len(t, all, 3)

	n, err := s.DeleteAll(ctx)
	require.NoError(t, err)
	assert.EqualValues(t, 3, n)

	all, err = s.GetAll(ctx)
	require.NoError(t, err)
	assert.Empty(t, all)
}

func TestInitDatabase_AppliesMigrations(t *testing.T) {
	ctx := context.Background()
	db, err := InitDatabase(ctx, "file:"+t.Name()+"?mode=memory&cache=shared")
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	s := NewSQLiteStore(db)
	_, err = s.Insert(ctx, testAccount(t, "m@x.com", "p", models.RoleAdmin))
	require.NoError(t, err)

	var n int
	require.NoError(t, db.QueryRow(`SELECT COUNT(*) FROM session`).Scan(&n), "session table must exist")
}
