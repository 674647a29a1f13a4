// Package app builds the fortune components shared by the daemon and the
// command-line tool from a validated config.Config.
package app

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/cory-johannsen/fortune/internal/config"
	"github.com/cory-johannsen/fortune/internal/expr"
	"github.com/cory-johannsen/fortune/internal/luck"
	"github.com/cory-johannsen/fortune/internal/scorecache"
	"github.com/cory-johannsen/fortune/internal/scoreformat"
)

// SweepInterval is how often an in-memory cache drops expired entries.
const SweepInterval = 10 * time.Minute

// Display converts the display section into a scoreformat.Display.
func Display(cfg config.DisplayConfig) (scoreformat.Display, error) {
	mode, err := scoreformat.ParseMode(cfg.Mode)
	if err != nil {
		return scoreformat.Display{}, err
	}
	return scoreformat.Display{
		Mode:           mode,
		RestrictedDate: cfg.RestrictedDate,
		BaseNumber:     cfg.BaseNumber,
	}, nil
}

// Bands loads the configured band file, or the built-in bands when none is set.
func Bands(cfg config.LuckConfig) (luck.Bands, error) {
	if cfg.BandsFile == "" {
		return luck.DefaultBands(), nil
	}
	return luck.LoadBands(cfg.BandsFile)
}

// Calculator builds a luck.Calculator for the configured timezone.
func Calculator(cfg config.LuckConfig) (*luck.Calculator, error) {
	loc, err := cfg.Location()
	if err != nil {
		return nil, err
	}
	return luck.NewCalculator(loc, nil), nil
}

// Cache is the configured expression cache. Memory is set only for the
// in-process backend so the caller can schedule sweeps.
type Cache struct {
	Store  scorecache.Store
	Memory *scorecache.Memory
	Close  func() error
}

// NewCache builds the configured expression cache. A redis backend is pinged
// before it is returned.
//
// Postcondition: Returns a usable Cache or a non-nil error.
func NewCache(ctx context.Context, cfg config.CacheConfig) (Cache, error) {
	switch cfg.Backend {
	case "redis":
		client := redis.NewClient(&redis.Options{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPassword,
			DB:       cfg.RedisDB,
		})
		store := scorecache.NewRedis(client, cfg.TTL)
		if err := store.Ping(ctx); err != nil {
			_ = client.Close()
			return Cache{}, fmt.Errorf("connecting to redis at %s: %w", cfg.RedisAddr, err)
		}
		return Cache{Store: store, Close: client.Close}, nil
	case "memory", "":
		mem := scorecache.NewMemory(cfg.TTL)
		return Cache{Store: mem, Memory: mem, Close: func() error { return nil }}, nil
	}
	return Cache{}, fmt.Errorf("unknown cache backend %q", cfg.Backend)
}

// NewFormatter builds a score formatter over cache with a crypto-seeded
// generator.
func NewFormatter(cache scorecache.Store, logger *zap.Logger) *scoreformat.Formatter {
	return NewFormatterWithSource(cache, expr.NewCryptoSource(), logger)
}

// NewFormatterWithSource is NewFormatter with an explicit random source, for
// reproducible output.
func NewFormatterWithSource(cache scorecache.Store, src expr.Source, logger *zap.Logger) *scoreformat.Formatter {
	gen := expr.NewGenerator(src, logger.Named("expr"))
	return scoreformat.NewFormatter(gen, cache, src, logger.Named("scoreformat"))
}
