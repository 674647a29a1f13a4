// Package postgres stores fortune user records in PostgreSQL using pgx v5.
package postgres

import (
	"context"
	"fmt"
	"sync/atomic"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"

	"github.com/cory-johannsen/fortune/internal/config"
)

const (
	// HealthInterval is how often the daemon pings the database.
	HealthInterval = 30 * time.Second
	// HealthTimeout bounds a single ping.
	HealthTimeout = 5 * time.Second
)

// Store is the PostgreSQL RecordStore. It owns its connection pool and
// remembers whether the last health check reached the database.
type Store struct {
	*RecordRepository
	pool    *pgxpool.Pool
	logger  *zap.Logger
	healthy atomic.Bool
}

// Open connects to the database described by cfg and returns a Store over it.
//
// Precondition: cfg must contain valid database connection parameters.
// Postcondition: Returns a Store whose database answered a ping, or a non-nil error.
func Open(ctx context.Context, cfg config.DatabaseConfig, logger *zap.Logger) (*Store, error) {
	poolCfg, err := pgxpool.ParseConfig(cfg.DSN())
	if err != nil {
		return nil, fmt.Errorf("parsing database config: %w", err)
	}
	poolCfg.MaxConns = cfg.MaxConns
	poolCfg.MinConns = cfg.MinConns
	poolCfg.MaxConnLifetime = cfg.MaxConnLifetime

	pool, err := pgxpool.NewWithConfig(ctx, poolCfg)
	if err != nil {
		return nil, fmt.Errorf("creating connection pool: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("pinging database %s:%d/%s: %w", cfg.Host, cfg.Port, cfg.Name, err)
	}
	return NewStore(pool, logger), nil
}

// NewStore wraps an open pool. The Store takes ownership of pool and starts
// out healthy.
//
// Precondition: pool and logger must be non-nil.
func NewStore(pool *pgxpool.Pool, logger *zap.Logger) *Store {
	s := &Store{
		RecordRepository: NewRecordRepository(pool),
		pool:             pool,
		logger:           logger,
	}
	s.healthy.Store(true)
	return s
}

// Pool returns the underlying connection pool.
func (s *Store) Pool() *pgxpool.Pool {
	return s.pool
}

// Healthy reports the outcome of the most recent health check.
func (s *Store) Healthy() bool {
	return s.healthy.Load()
}

// CheckHealth pings the database within timeout and records the outcome.
// Only transitions are logged: the first failure at warn and the recovery
// at info. A check cut short by ctx records nothing.
//
// Postcondition: Returns nil if the database answered within timeout.
func (s *Store) CheckHealth(ctx context.Context, timeout time.Duration) error {
	pingCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()
	err := s.pool.Ping(pingCtx)
	if ctx.Err() != nil {
		return ctx.Err()
	}

	wasHealthy := s.healthy.Swap(err == nil)
	switch {
	case err != nil && wasHealthy:
		s.logger.Warn("database unreachable", zap.Error(err))
	case err == nil && !wasHealthy:
		s.logger.Info("database reachable again")
	}
	return err
}

// WatchHealth runs CheckHealth every interval until ctx is done.
//
// Precondition: interval > 0.
func (s *Store) WatchHealth(ctx context.Context, interval, timeout time.Duration) {
	tick := time.NewTicker(interval)
	defer tick.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-tick.C:
			_ = s.CheckHealth(ctx, timeout)
		}
	}
}

// Close releases all pool resources.
//
// Postcondition: The Store is no longer usable.
func (s *Store) Close() error {
	s.pool.Close()
	return nil
}
