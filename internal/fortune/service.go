// Package fortune ties user records, the luck score and score rendering
// together into a daily reading.
package fortune

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/cory-johannsen/fortune/internal/luck"
	"github.com/cory-johannsen/fortune/internal/scoreformat"
	"github.com/cory-johannsen/fortune/internal/storage"
)

// MinPasswordLength is the shortest accepted registration password.
const MinPasswordLength = 6

// ErrInvalidName is returned by Register for names failing storage.ValidName.
var ErrInvalidName = errors.New("name must be 3-32 letters, digits or underscores")

// ErrWeakPassword is returned by Register for passwords shorter than MinPasswordLength.
var ErrWeakPassword = fmt.Errorf("password must be at least %d characters", MinPasswordLength)

// Formatter renders a score for display.
type Formatter interface {
	Format(ctx context.Context, score int, date time.Time, d scoreformat.Display) string
}

// Reading is one user's fortune for one day.
type Reading struct {
	Name  string
	Date  time.Time
	Score int
	// Display is Score rendered under the configured display mode.
	Display string
	Band    luck.Band
	// FirstMax is set when this reading recorded the user's first jackpot.
	FirstMax bool
	EverMax  bool
}

// Service computes readings for stored users.
type Service struct {
	store   storage.RecordStore
	calc    *luck.Calculator
	format  Formatter
	display scoreformat.Display
	bands   luck.Bands
	logger  *zap.Logger
}

// NewService creates a Service.
//
// Precondition: all arguments must be non-nil; bands must pass Validate.
func NewService(
	store storage.RecordStore,
	calc *luck.Calculator,
	format Formatter,
	display scoreformat.Display,
	bands luck.Bands,
	logger *zap.Logger,
) *Service {
	return &Service{
		store:   store,
		calc:    calc,
		format:  format,
		display: display,
		bands:   bands,
		logger:  logger,
	}
}

// Register creates a user after validating name and password.
//
// Postcondition: Returns the new record, ErrInvalidName, ErrWeakPassword or storage.ErrExists.
func (s *Service) Register(ctx context.Context, name, password string) (storage.Record, error) {
	if !storage.ValidName(name) {
		return storage.Record{}, ErrInvalidName
	}
	if len(password) < MinPasswordLength {
		return storage.Record{}, ErrWeakPassword
	}
	rec, err := s.store.Create(ctx, name, password)
	if err != nil {
		return storage.Record{}, err
	}
	s.logger.Info("user registered", zap.String("name", name))
	return rec, nil
}

// Login authenticates name.
func (s *Service) Login(ctx context.Context, name, password string) (storage.Record, error) {
	return s.store.Authenticate(ctx, name, password)
}

// Bind normalizes code and binds it to name.
//
// Postcondition: Returns the stored code, or storage.ErrInvalidCode / storage.ErrNotFound.
func (s *Service) Bind(ctx context.Context, name, code string) (string, error) {
	normalized, err := storage.NormalizeCode(code)
	if err != nil {
		return "", err
	}
	if err := s.store.BindCode(ctx, name, normalized); err != nil {
		return "", err
	}
	return normalized, nil
}

// Unbind removes name's code.
func (s *Service) Unbind(ctx context.Context, name string) error {
	return s.store.UnbindCode(ctx, name)
}

// Today returns name's reading for the calculator's current day. The first
// jackpot a user ever rolls is recorded.
//
// Postcondition: Returns a Reading or storage.ErrNotFound.
func (s *Service) Today(ctx context.Context, name string) (Reading, error) {
	rec, err := s.store.GetByName(ctx, name)
	if err != nil {
		return Reading{}, err
	}

	day := s.calc.Today()
	r := s.Read(ctx, rec.Secret, rec.Code, day)
	r.Name = rec.Name
	r.EverMax = rec.EverMax

	if r.Score == luck.MaxScore && !rec.EverMax {
		first, err := s.store.MarkEverMax(ctx, name)
		if err != nil {
			// The reading is still valid; only the flag is lost.
			s.logger.Warn("recording first jackpot failed", zap.String("name", name), zap.Error(err))
		} else {
			r.FirstMax = first
			r.EverMax = true
		}
	}
	return r, nil
}

// Read computes a reading for explicit inputs without touching storage.
func (s *Service) Read(ctx context.Context, secret, code string, date time.Time) Reading {
	score := luck.Score(secret, code, date)
	return Reading{
		Date:    date,
		Score:   score,
		Display: s.format.Format(ctx, score, date, s.display),
		Band:    s.bands.For(score),
	}
}
