package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/cory-johannsen/fortune/internal/storage"
)

const recordColumns = `id, name, password_hash, secret, COALESCE(code, ''), ever_max, created_at`

// RecordRepository provides user record persistence operations.
type RecordRepository struct {
	db *pgxpool.Pool
}

// NewRecordRepository creates a RecordRepository backed by the given pool.
//
// Precondition: db must be a valid, open connection pool.
func NewRecordRepository(db *pgxpool.Pool) *RecordRepository {
	return &RecordRepository{db: db}
}

// Create inserts a new record with a bcrypt-hashed password and a fresh secret.
//
// Precondition: name and password must be non-empty.
// Postcondition: Returns the created Record with ID and CreatedAt set,
// or storage.ErrExists if the name is taken.
func (r *RecordRepository) Create(ctx context.Context, name, password string) (storage.Record, error) {
	hash, err := storage.HashPassword(password)
	if err != nil {
		return storage.Record{}, fmt.Errorf("hashing password: %w", err)
	}

	rec, err := scanRecord(r.db.QueryRow(ctx,
		`INSERT INTO users (name, password_hash, secret)
		 VALUES ($1, $2, $3)
		 RETURNING `+recordColumns,
		name, hash, storage.NewSecret(),
	))
	if err != nil {
		if isDuplicateKeyError(err) {
			return storage.Record{}, storage.ErrExists
		}
		return storage.Record{}, fmt.Errorf("inserting user: %w", err)
	}
	return rec, nil
}

// Authenticate verifies credentials and returns the matching record.
//
// Postcondition: Returns the Record if credentials are valid,
// storage.ErrNotFound if the name doesn't exist,
// or storage.ErrInvalidCredentials if the password is wrong.
func (r *RecordRepository) Authenticate(ctx context.Context, name, password string) (storage.Record, error) {
	rec, err := r.GetByName(ctx, name)
	if err != nil {
		return storage.Record{}, err
	}
	if !storage.CheckPassword(password, rec.PasswordHash) {
		return storage.Record{}, storage.ErrInvalidCredentials
	}
	return rec, nil
}

// GetByName retrieves a record by name.
//
// Postcondition: Returns the Record or storage.ErrNotFound.
func (r *RecordRepository) GetByName(ctx context.Context, name string) (storage.Record, error) {
	rec, err := scanRecord(r.db.QueryRow(ctx,
		`SELECT `+recordColumns+` FROM users WHERE name = $1`,
		name,
	))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return storage.Record{}, storage.ErrNotFound
		}
		return storage.Record{}, fmt.Errorf("querying user: %w", err)
	}
	return rec, nil
}

// BindCode sets the code for name.
//
// Precondition: code must satisfy storage.ValidCode.
// Postcondition: The code is stored, or storage.ErrInvalidCode / storage.ErrNotFound is returned.
func (r *RecordRepository) BindCode(ctx context.Context, name, code string) error {
	if !storage.ValidCode(code) {
		return storage.ErrInvalidCode
	}
	return r.exec(ctx, `UPDATE users SET code = $1 WHERE name = $2`, code, name)
}

// UnbindCode clears the code for name.
//
// Postcondition: The code is NULL, or storage.ErrNotFound is returned.
func (r *RecordRepository) UnbindCode(ctx context.Context, name string) error {
	return r.exec(ctx, `UPDATE users SET code = NULL WHERE name = $1`, name)
}

// MarkEverMax sets ever_max for name.
//
// Postcondition: Returns true only for the call that flipped the flag.
func (r *RecordRepository) MarkEverMax(ctx context.Context, name string) (bool, error) {
	tag, err := r.db.Exec(ctx,
		`UPDATE users SET ever_max = TRUE WHERE name = $1 AND NOT ever_max`,
		name,
	)
	if err != nil {
		return false, fmt.Errorf("marking ever_max: %w", err)
	}
	if tag.RowsAffected() == 1 {
		return true, nil
	}
	if _, err := r.GetByName(ctx, name); err != nil {
		return false, err
	}
	return false, nil
}

func (r *RecordRepository) exec(ctx context.Context, query string, args ...any) error {
	tag, err := r.db.Exec(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("updating user: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return storage.ErrNotFound
	}
	return nil
}

func scanRecord(row pgx.Row) (storage.Record, error) {
	var rec storage.Record
	err := row.Scan(&rec.ID, &rec.Name, &rec.PasswordHash, &rec.Secret, &rec.Code, &rec.EverMax, &rec.CreatedAt)
	return rec, err
}

// isDuplicateKeyError checks if a pgx error is a unique constraint violation.
func isDuplicateKeyError(err error) bool {
	// pgx wraps PostgreSQL errors; check for SQLSTATE 23505 (unique_violation)
	var pgErr interface{ SQLState() string }
	if errors.As(err, &pgErr) {
		return pgErr.SQLState() == "23505"
	}
	return false
}

var _ storage.RecordStore = (*RecordRepository)(nil)
