package localstore

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/ridelinkapp/ridelink/internal/common"
	"github.com/ridelinkapp/ridelink/internal/dbx"
	"github.com/ridelinkapp/ridelink/internal/models"
	"github.com/ridelinkapp/ridelink/internal/passwordx"
)

// SQLiteStore implements Store over a SQLite database.
type SQLiteStore struct {
	db *sql.DB
}

// NewSQLiteStore returns a SQLiteStore bound to the given database handle.
func NewSQLiteStore(db *sql.DB) *SQLiteStore {
	return &SQLiteStore{db: db}
}

const accountColumns = `id, email, password_secret, role, full_name, phone_number, created_at, synced`

func scanAccount(row interface{ Scan(...any) error }) (*models.Account, error) {
	var a models.Account
	var role string
	var createdAt int64
	if err := row.Scan(&a.ID, &a.Email, &a.PasswordSecret, &role, &a.FullName, &a.PhoneNumber, &createdAt, &a.Synced); err != nil {
		return nil, err
	}
	a.Role = models.Role(role)
	a.CreatedAt = time.Unix(createdAt, 0).UTC()
	return &a, nil
}

func (s *SQLiteStore) FindByEmail(ctx context.Context, email string) (*models.Account, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+accountColumns+` FROM accounts WHERE email = ?`, email)
	a, err := scanAccount(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, common.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to find account by email: %w", err)
	}
	return a, nil
}

func (s *SQLiteStore) Login(ctx context.Context, email, password string, role models.Role) (*models.Account, error) {
	a, err := s.FindByEmail(ctx, email)
	if err != nil {
		return nil, err
	}
	if !passwordx.Verify(a.PasswordSecret, password) {
		return nil, ErrLoginMismatch
	}
	if !a.Role.Equals(role) {
		return nil, ErrLoginMismatch
	}
	return a, nil
}

func insertAccount(ctx context.Context, db dbx.DBTX, a *models.Account) (int64, error) {
	res, err := db.ExecContext(ctx, `
		INSERT INTO accounts (email, password_secret, role, full_name, phone_number, created_at, synced)
		VALUES (?, ?, ?, ?, ?, ?, ?)`,
		a.Email, a.PasswordSecret, string(a.Role), a.FullName, a.PhoneNumber, a.CreatedAt.Unix(), a.Synced)
	if err != nil {
		return 0, fmt.Errorf("failed to insert account: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("failed to get inserted id: %w", err)
	}
	return id, nil
}

func (s *SQLiteStore) Insert(ctx context.Context, account *models.Account) (int64, error) {
	id, err := insertAccount(ctx, s.db, account)
	if err != nil {
		return 0, err
	}
	account.ID = id
	return id, nil
}

func (s *SQLiteStore) InsertBatch(ctx context.Context, accounts []*models.Account) ([]int64, error) {
	ids := make([]int64, 0, len(accounts))

	err := dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		for _, a := range accounts {
			id, err := insertAccount(ctx, tx, a)
			if err != nil {
				return err
			}
			a.ID = id
			ids = append(ids, id)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return ids, nil
}

func (s *SQLiteStore) DeleteByEmail(ctx context.Context, email string) (int64, error) {
	res, err := s.db.ExecContext(ctx, `DELETE FROM accounts WHERE email = ?`, email)
	if err != nil {
		return 0, fmt.Errorf("failed to delete account: %w", err)
	}
	return res.RowsAffected()
}

func (s *SQLiteStore) DeleteAll(ctx context.Context) (int64, error) {
	res, err := s.db.ExecContext(ctx, `DELETE FROM accounts`)
	if err != nil {
		return 0, fmt.Errorf("failed to clear accounts: %w", err)
	}
	return res.RowsAffected()
}

func (s *SQLiteStore) GetAll(ctx context.Context) ([]models.Account, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT `+accountColumns+` FROM accounts ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("failed to select accounts: %w", err)
	}
	defer rows.Close()

	var result []models.Account
	for rows.Next() {
		a, err := scanAccount(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, *a)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return result, nil
}

func (s *SQLiteStore) Count(ctx context.Context) (int64, error) {
	var n int64
	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM accounts`).Scan(&n); err != nil {
		return 0, fmt.Errorf("failed to count accounts: %w", err)
	}
	return n, nil
}
