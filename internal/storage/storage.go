// Package storage defines the user record model shared by the postgres and
// sqlite backends.
package storage

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
)

// ErrNotFound is returned when a record lookup yields no results.
var ErrNotFound = errors.New("record not found")

// ErrExists is returned when attempting to create a duplicate name.
var ErrExists = errors.New("record already exists")

// ErrInvalidCredentials is returned when authentication fails.
var ErrInvalidCredentials = errors.New("invalid credentials")

// ErrInvalidCode is returned when a bind code is not four hex groups.
var ErrInvalidCode = errors.New("invalid code")

// Record is a registered user. Secret is generated once at registration and
// never changes; Code is optional and may be bound or unbound at any time.
type Record struct {
	ID           int64
	Name         string
	PasswordHash string
	Secret       string
	Code         string
	EverMax      bool
	CreatedAt    time.Time
}

// RecordStore persists user records.
type RecordStore interface {
	// Create registers name with a fresh secret.
	//
	// Postcondition: Returns the created Record or ErrExists.
	Create(ctx context.Context, name, password string) (Record, error)
	// Authenticate returns the record when password matches.
	//
	// Postcondition: Returns ErrNotFound or ErrInvalidCredentials on failure.
	Authenticate(ctx context.Context, name, password string) (Record, error)
	// GetByName returns the record or ErrNotFound.
	GetByName(ctx context.Context, name string) (Record, error)
	// BindCode sets the record's code.
	//
	// Precondition: code must satisfy ValidCode.
	BindCode(ctx context.Context, name, code string) error
	// UnbindCode clears the record's code.
	UnbindCode(ctx context.Context, name string) error
	// MarkEverMax sets EverMax and reports whether this call was the first to set it.
	MarkEverMax(ctx context.Context, name string) (bool, error)
}

var codePattern = regexp.MustCompile(`^[0-9A-F]{4}(-[0-9A-F]{4}){3}$`)

// ValidCode reports whether code is four dash-separated groups of four
// upper-case hex digits.
func ValidCode(code string) bool {
	return codePattern.MatchString(code)
}

// NormalizeCode trims and upper-cases code and validates the result.
//
// Postcondition: Returns a code satisfying ValidCode, or ErrInvalidCode.
func NormalizeCode(code string) (string, error) {
	c := strings.ToUpper(strings.TrimSpace(code))
	if !ValidCode(c) {
		return "", fmt.Errorf("%w: %q", ErrInvalidCode, code)
	}
	return c, nil
}

// NewSecret returns a new random user secret.
func NewSecret() string {
	return uuid.NewString()
}

// ValidName reports whether name is an acceptable user name: 3-32 letters,
// digits or underscores.
func ValidName(name string) bool {
	return namePattern.MatchString(name)
}

var namePattern = regexp.MustCompile(`^[A-Za-z0-9_]{3,32}$`)

// HashPassword creates a bcrypt hash of the given password.
//
// Precondition: password must be non-empty.
// Postcondition: Returns a bcrypt hash string.
func HashPassword(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", err
	}
	return string(hash), nil
}

// CheckPassword compares a plaintext password against a bcrypt hash.
//
// Postcondition: Returns true if password matches the hash.
func CheckPassword(password, hash string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)) == nil
}
