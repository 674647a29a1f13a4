// Package sqlite provides a single-file storage.RecordStore for the
// command-line tool and small deployments.
package sqlite

import (
	"context"
	"database/sql"
	_ "embed"
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	sqlitedriver "modernc.org/sqlite"
	sqlite3 "modernc.org/sqlite/lib"

	"github.com/cory-johannsen/fortune/internal/storage"
)

//go:embed schema.sql
var schema string

const recordColumns = `id, name, password_hash, secret, COALESCE(code, ''), ever_max, created_at`

// Store is a RecordStore backed by an SQLite database file.
type Store struct {
	db  *sql.DB
	now func() time.Time
}

// Open opens path, creating and migrating it if needed. The path ":memory:"
// opens a private in-memory database.
//
// Postcondition: Returns a ready Store or a non-nil error.
func Open(path string) (*Store, error) {
	if strings.TrimSpace(path) == "" {
		return nil, fmt.Errorf("storage path is required")
	}
	dsn := path
	if path != ":memory:" {
		dsn = filepath.Clean(path)
	}
	dsn += "?_pragma=busy_timeout(5000)&_pragma=foreign_keys(1)"

	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open sqlite db: %w", err)
	}
	// One connection serializes writers and keeps ":memory:" a single database.
	db.SetMaxOpenConns(1)

	if err := db.Ping(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping sqlite db: %w", err)
	}
	if _, err := db.Exec(schema); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("apply schema: %w", err)
	}
	return &Store{db: db, now: time.Now}, nil
}

// Close releases the underlying connection.
func (s *Store) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}

// Create inserts a new record with a bcrypt-hashed password and a fresh secret.
//
// Postcondition: Returns the created Record or storage.ErrExists.
func (s *Store) Create(ctx context.Context, name, password string) (storage.Record, error) {
	hash, err := storage.HashPassword(password)
	if err != nil {
		return storage.Record{}, fmt.Errorf("hashing password: %w", err)
	}
	rec, err := scanRecord(s.db.QueryRowContext(ctx,
		`INSERT INTO users (name, password_hash, secret, created_at)
		 VALUES (?, ?, ?, ?)
		 RETURNING `+recordColumns,
		name, hash, storage.NewSecret(), s.now().UnixMilli(),
	))
	if err != nil {
		if isUniqueViolation(err) {
			return storage.Record{}, storage.ErrExists
		}
		return storage.Record{}, fmt.Errorf("insert user: %w", err)
	}
	return rec, nil
}

// Authenticate verifies credentials and returns the matching record.
func (s *Store) Authenticate(ctx context.Context, name, password string) (storage.Record, error) {
	rec, err := s.GetByName(ctx, name)
	if err != nil {
		return storage.Record{}, err
	}
	if !storage.CheckPassword(password, rec.PasswordHash) {
		return storage.Record{}, storage.ErrInvalidCredentials
	}
	return rec, nil
}

// GetByName returns the record or storage.ErrNotFound.
func (s *Store) GetByName(ctx context.Context, name string) (storage.Record, error) {
	rec, err := scanRecord(s.db.QueryRowContext(ctx,
		`SELECT `+recordColumns+` FROM users WHERE name = ?`, name))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return storage.Record{}, storage.ErrNotFound
		}
		return storage.Record{}, fmt.Errorf("get user: %w", err)
	}
	return rec, nil
}

// BindCode sets the code for name.
func (s *Store) BindCode(ctx context.Context, name, code string) error {
	if !storage.ValidCode(code) {
		return storage.ErrInvalidCode
	}
	return s.exec(ctx, `UPDATE users SET code = ? WHERE name = ?`, code, name)
}

// UnbindCode clears the code for name.
func (s *Store) UnbindCode(ctx context.Context, name string) error {
	return s.exec(ctx, `UPDATE users SET code = NULL WHERE name = ?`, name)
}

// MarkEverMax sets ever_max for name and reports whether this call set it.
func (s *Store) MarkEverMax(ctx context.Context, name string) (bool, error) {
	res, err := s.db.ExecContext(ctx,
		`UPDATE users SET ever_max = 1 WHERE name = ? AND ever_max = 0`, name)
	if err != nil {
		return false, fmt.Errorf("mark ever_max: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("mark ever_max: %w", err)
	}
	if n == 1 {
		return true, nil
	}
	if _, err := s.GetByName(ctx, name); err != nil {
		return false, err
	}
	return false, nil
}

func (s *Store) exec(ctx context.Context, query string, args ...any) error {
	res, err := s.db.ExecContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("update user: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("update user: %w", err)
	}
	if n == 0 {
		return storage.ErrNotFound
	}
	return nil
}

func scanRecord(row *sql.Row) (storage.Record, error) {
	var (
		rec       storage.Record
		everMax   int64
		createdAt int64
	)
	if err := row.Scan(&rec.ID, &rec.Name, &rec.PasswordHash, &rec.Secret, &rec.Code, &everMax, &createdAt); err != nil {
		return storage.Record{}, err
	}
	rec.EverMax = everMax != 0
	rec.CreatedAt = time.UnixMilli(createdAt).UTC()
	return rec, nil
}

func isUniqueViolation(err error) bool {
	var sqliteErr *sqlitedriver.Error
	if errors.As(err, &sqliteErr) {
		return sqliteErr.Code() == sqlite3.SQLITE_CONSTRAINT_UNIQUE
	}
	return false
}

var _ storage.RecordStore = (*Store)(nil)
