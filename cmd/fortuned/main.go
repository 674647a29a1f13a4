// Package main runs the fortune Telnet server.
package main

import (
	"context"
	"flag"
	"log"
	"time"
	_ "time/tzdata"

	"go.uber.org/zap"

	"github.com/cory-johannsen/fortune/internal/app"
	"github.com/cory-johannsen/fortune/internal/command"
	"github.com/cory-johannsen/fortune/internal/config"
	"github.com/cory-johannsen/fortune/internal/fortune"
	"github.com/cory-johannsen/fortune/internal/frontend/handlers"
	"github.com/cory-johannsen/fortune/internal/frontend/telnet"
	"github.com/cory-johannsen/fortune/internal/observability"
	"github.com/cory-johannsen/fortune/internal/server"
	"github.com/cory-johannsen/fortune/internal/storage"
	"github.com/cory-johannsen/fortune/internal/storage/postgres"
	"github.com/cory-johannsen/fortune/internal/storage/sqlite"
)

func main() {
	start := time.Now()

	configPath := flag.String("config", "configs/dev.yaml", "path to configuration file")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("loading config: %v", err)
	}

	logger, err := observability.NewLogger(cfg.Logging)
	if err != nil {
		log.Fatalf("initializing logger: %v", err)
	}
	defer logger.Sync()

	ctx := context.Background()
	lifecycle := server.NewLifecycle(logger)

	store := openStore(ctx, cfg, logger, lifecycle)

	cache, err := app.NewCache(ctx, cfg.Cache)
	if err != nil {
		logger.Fatal("building expression cache", zap.Error(err))
	}
	lifecycle.AddCloser("cache", cache.Close)
	if cache.Memory != nil {
		lifecycle.Add("cache-sweep", server.NewTicker(app.SweepInterval, func() {
			if n := cache.Memory.Sweep(); n > 0 {
				logger.Debug("expired expression sets swept", zap.Int("count", n))
			}
		}))
	}

	display, err := app.Display(cfg.Display)
	if err != nil {
		logger.Fatal("parsing display config", zap.Error(err))
	}
	bands, err := app.Bands(cfg.Luck)
	if err != nil {
		logger.Fatal("loading fortune bands", zap.Error(err))
	}
	calc, err := app.Calculator(cfg.Luck)
	if err != nil {
		logger.Fatal("building luck calculator", zap.Error(err))
	}

	svc := fortune.NewService(store, calc, app.NewFormatter(cache.Store, logger), display, bands, logger.Named("fortune"))
	acceptor := telnet.NewAcceptor(cfg.Telnet, handlers.NewFortuneHandler(svc, command.DefaultRegistry()), logger.Named("telnet"))
	lifecycle.Add("telnet", &server.FuncService{
		StartFn: acceptor.ListenAndServe,
		StopFn:  acceptor.Stop,
	})

	logger.Info("fortune server initialized",
		zap.Duration("startup", time.Since(start)),
		zap.String("telnet_addr", cfg.Telnet.Addr()),
		zap.String("storage", cfg.Server.Storage),
		zap.String("cache", cfg.Cache.Backend),
		zap.String("display", cfg.Display.Mode),
	)

	if err := lifecycle.Run(ctx); err != nil {
		logger.Fatal("server error", zap.Error(err))
	}
}

// openStore connects the configured record backend and registers its cleanup.
func openStore(ctx context.Context, cfg config.Config, logger *zap.Logger, lifecycle *server.Lifecycle) storage.RecordStore {
	switch cfg.Server.Storage {
	case "sqlite":
		store, err := sqlite.Open(cfg.SQLite.Path)
		if err != nil {
			logger.Fatal("opening sqlite store", zap.Error(err))
		}
		lifecycle.AddCloser("sqlite", store.Close)
		logger.Info("sqlite store opened", zap.String("path", cfg.SQLite.Path))
		return store
	default:
		dbStart := time.Now()
		store, err := postgres.Open(ctx, cfg.Database, logger.Named("postgres"))
		if err != nil {
			logger.Fatal("connecting to database", zap.Error(err))
		}
		logger.Info("database connected",
			zap.String("host", cfg.Database.Host),
			zap.Int("port", cfg.Database.Port),
			zap.String("database", cfg.Database.Name),
			zap.Duration("elapsed", time.Since(dbStart)),
		)
		healthCtx, stopHealth := context.WithCancel(ctx)
		lifecycle.Add("postgres-health", &server.FuncService{
			StartFn: func() error {
				store.WatchHealth(healthCtx, postgres.HealthInterval, postgres.HealthTimeout)
				return nil
			},
			StopFn: stopHealth,
		})
		lifecycle.AddCloser("postgres", store.Close)
		return store
	}
}
