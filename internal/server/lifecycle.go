// Package server runs the fortune daemon's long-lived components and shuts
// them down in order on a signal or failure.
package server

import (
	"context"
	"errors"
	"fmt"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"go.uber.org/zap"
)

// Service is a long-running component. Start blocks until Stop is called
// or the service fails.
type Service interface {
	Start() error
	Stop()
}

// FuncService adapts a start/stop function pair into the Service interface.
type FuncService struct {
	StartFn func() error
	StopFn  func()
}

// Start calls the underlying start function.
func (f *FuncService) Start() error { return f.StartFn() }

// Stop calls the underlying stop function.
func (f *FuncService) Stop() { f.StopFn() }

// Ticker is a Service that calls Fn every Interval until stopped.
type Ticker struct {
	Interval time.Duration
	Fn       func()

	once sync.Once
	done chan struct{}
}

// NewTicker creates a Ticker.
//
// Precondition: interval > 0; fn must be non-nil.
func NewTicker(interval time.Duration, fn func()) *Ticker {
	return &Ticker{Interval: interval, Fn: fn, done: make(chan struct{})}
}

// Start runs Fn on every tick until Stop.
func (t *Ticker) Start() error {
	tick := time.NewTicker(t.Interval)
	defer tick.Stop()
	for {
		select {
		case <-tick.C:
			t.Fn()
		case <-t.done:
			return nil
		}
	}
}

// Stop ends Start. Stop is idempotent.
func (t *Ticker) Stop() {
	t.once.Do(func() { close(t.done) })
}

// Lifecycle starts services in registration order and stops them in
// reverse order. Closers run after every service has stopped.
type Lifecycle struct {
	logger   *zap.Logger
	mu       sync.Mutex
	services []named[Service]
	closers  []named[func() error]
}

type named[T any] struct {
	name string
	v    T
}

// NewLifecycle creates a new Lifecycle manager.
//
// Precondition: logger must be non-nil.
func NewLifecycle(logger *zap.Logger) *Lifecycle {
	return &Lifecycle{logger: logger}
}

// Add registers a named service.
//
// Precondition: name must be non-empty; svc must be non-nil.
func (l *Lifecycle) Add(name string, svc Service) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.services = append(l.services, named[Service]{name, svc})
}

// AddCloser registers a resource to release at shutdown, such as a database
// pool or cache client. Closers run in reverse registration order.
func (l *Lifecycle) AddCloser(name string, fn func() error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.closers = append(l.closers, named[func() error]{name, fn})
}

// Run starts every service and blocks until SIGINT, SIGTERM, ctx
// cancellation or the first service failure.
//
// Postcondition: All services are stopped and all closers have run. The
// first service failure, if any, is returned.
func (l *Lifecycle) Run(ctx context.Context) error {
	start := time.Now()
	ctx, stopSignals := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stopSignals()

	l.mu.Lock()
	services := append([]named[Service](nil), l.services...)
	closers := append([]named[func() error](nil), l.closers...)
	l.mu.Unlock()

	errCh := make(chan error, len(services))
	var wg sync.WaitGroup
	for _, ns := range services {
		wg.Add(1)
		go func() {
			defer wg.Done()
			l.logger.Info("starting service", zap.String("service", ns.name))
			if err := ns.v.Start(); err != nil {
				errCh <- fmt.Errorf("service %s: %w", ns.name, err)
			}
		}()
	}
	l.logger.Info("all services started", zap.Int("count", len(services)))

	var runErr error
	select {
	case runErr = <-errCh:
		l.logger.Error("service failed, shutting down", zap.Error(runErr))
	case <-ctx.Done():
		l.logger.Info("shutting down", zap.NamedError("cause", context.Cause(ctx)))
	}

	for i := len(services) - 1; i >= 0; i-- {
		ns := services[i]
		stopStart := time.Now()
		ns.v.Stop()
		l.logger.Info("service stopped",
			zap.String("service", ns.name),
			zap.Duration("elapsed", time.Since(stopStart)),
		)
	}
	wg.Wait()

	var closeErrs []error
	for i := len(closers) - 1; i >= 0; i-- {
		if err := closers[i].v(); err != nil {
			l.logger.Warn("closing resource", zap.String("resource", closers[i].name), zap.Error(err))
			closeErrs = append(closeErrs, fmt.Errorf("closing %s: %w", closers[i].name, err))
		}
	}

	l.logger.Info("shutdown complete", zap.Duration("uptime", time.Since(start)))
	return errors.Join(append([]error{runErr}, closeErrs...)...)
}
