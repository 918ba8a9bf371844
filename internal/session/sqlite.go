package session

import (
	"context"
	"database/sql"
	"fmt"
	"strconv"
	"time"

	"github.com/ridelinkapp/ridelink/internal/common"
	"github.com/ridelinkapp/ridelink/internal/dbx"
	"github.com/ridelinkapp/ridelink/internal/models"
)

const (
	keyEmail      = "email"
	keyRole       = "role"
	keyFullName   = "full_name"
	keySignedInAt = "signed_in_at"
)

// SQLiteStore keeps the session as key-value rows in the session table.
type SQLiteStore struct {
	db *sql.DB
}

func NewSQLiteStore(db *sql.DB) *SQLiteStore {
	return &SQLiteStore{db: db}
}

func set(ctx context.Context, db dbx.DBTX, key, value string) error {
	_, err := db.ExecContext(ctx, `
		INSERT INTO session (key, value) VALUES (?, ?)
		ON CONFLICT(key) DO UPDATE SET value = excluded.value
	`, key, value)
	if err != nil {
		return fmt.Errorf("failed to set session[%s]: %w", key, err)
	}
	return nil
}

func get(ctx context.Context, db dbx.DBTX, key string) (string, error) {
	var value string
	err := db.QueryRowContext(ctx, `SELECT value FROM session WHERE key = ?`, key).Scan(&value)
	if err == sql.ErrNoRows {
		return "", common.ErrNotFound
	}
	if err != nil {
		return "", fmt.Errorf("failed to get session[%s]: %w", key, err)
	}
	return value, nil
}

// Save replaces the current session in a single transaction.
func (s *SQLiteStore) Save(ctx context.Context, sess Session) error {
	return dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		if err := set(ctx, tx, keyEmail, sess.Email); err != nil {
			return err
		}
		if err := set(ctx, tx, keyRole, string(sess.Role)); err != nil {
			return err
		}
		if err := set(ctx, tx, keyFullName, sess.FullName); err != nil {
			return err
		}
		return set(ctx, tx, keySignedInAt, strconv.FormatInt(sess.SignedInAt.Unix(), 10))
	})
}

func (s *SQLiteStore) Current(ctx context.Context) (*Session, error) {
	email, err := get(ctx, s.db, keyEmail)
	if err != nil {
		return nil, err
	}
	role, err := get(ctx, s.db, keyRole)
	if err != nil {
		return nil, err
	}
	fullName, err := get(ctx, s.db, keyFullName)
	if err != nil {
		return nil, err
	}
	rawTS, err := get(ctx, s.db, keySignedInAt)
	if err != nil {
		return nil, err
	}
	ts, err := strconv.ParseInt(rawTS, 10, 64)
	if err != nil {
		return nil, fmt.Errorf("corrupt session timestamp: %w", err)
	}

	return &Session{
		Email:      email,
		Role:       models.Role(role),
		FullName:   fullName,
		SignedInAt: time.Unix(ts, 0).UTC(),
	}, nil
}

func (s *SQLiteStore) Clear(ctx context.Context) error {
	_, err := s.db.ExecContext(ctx, `DELETE FROM session`)
	if err != nil {
		return fmt.Errorf("failed to clear session: %w", err)
	}
	return nil
}
