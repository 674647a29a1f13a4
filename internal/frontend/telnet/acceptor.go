package telnet

import (
	"context"
	"errors"
	"fmt"
	"net"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/cory-johannsen/fortune/internal/config"
	"github.com/cory-johannsen/fortune/internal/observability"
)

// Session is one connected client.
type Session struct {
	*Conn
	// ID uniquely identifies the session in logs.
	ID     string
	Logger *zap.Logger
}

// SessionHandler runs the command loop for one session.
type SessionHandler interface {
	HandleSession(ctx context.Context, s *Session) error
}

// Acceptor accepts Telnet connections and runs each in its own goroutine.
type Acceptor struct {
	cfg     config.TelnetConfig
	handler SessionHandler
	logger  *zap.Logger

	mu       sync.Mutex
	listener net.Listener
	cancel   context.CancelFunc
	wg       sync.WaitGroup
	active   atomic.Int64
}

// NewAcceptor creates an acceptor.
//
// Precondition: handler and logger must be non-nil.
func NewAcceptor(cfg config.TelnetConfig, handler SessionHandler, logger *zap.Logger) *Acceptor {
	return &Acceptor{cfg: cfg, handler: handler, logger: logger}
}

// ListenAndServe listens on the configured address and serves until Stop.
//
// Postcondition: Returns nil after Stop, or the listen error.
func (a *Acceptor) ListenAndServe() error {
	ln, err := net.Listen("tcp", a.cfg.Addr())
	if err != nil {
		return fmt.Errorf("listening on %s: %w", a.cfg.Addr(), err)
	}
	return a.Serve(ln)
}

// Serve accepts connections on ln until Stop is called. Serve takes
// ownership of ln.
//
// Precondition: Serve must not already be running.
func (a *Acceptor) Serve(ln net.Listener) error {
	ctx, cancel := context.WithCancel(context.Background())
	a.mu.Lock()
	if a.listener != nil {
		a.mu.Unlock()
		cancel()
		_ = ln.Close()
		return errors.New("acceptor already serving")
	}
	a.listener = ln
	a.cancel = cancel
	a.mu.Unlock()

	a.logger.Info("telnet acceptor listening", zap.String("addr", ln.Addr().String()))

	var delay time.Duration
	for {
		raw, err := ln.Accept()
		if err != nil {
			if ctx.Err() != nil {
				return nil
			}
			if errors.Is(err, net.ErrClosed) {
				return err
			}
			// Errors such as EMFILE persist until a session exits.
			delay = acceptBackoff(delay)
			a.logger.Error("accepting connection", zap.Error(err), zap.Duration("retry_in", delay))
			select {
			case <-time.After(delay):
			case <-ctx.Done():
				return nil
			}
			continue
		}
		delay = 0
		if !a.track() {
			_ = raw.Close()
			return nil
		}
		go a.serveConn(ctx, raw)
	}
}

const (
	minAcceptBackoff = 5 * time.Millisecond
	maxAcceptBackoff = time.Second
)

// acceptBackoff doubles prev, starting at minAcceptBackoff and capped at
// maxAcceptBackoff.
func acceptBackoff(prev time.Duration) time.Duration {
	if prev == 0 {
		return minAcceptBackoff
	}
	return min(2*prev, maxAcceptBackoff)
}

// track registers a session goroutine with the wait group unless Stop has
// begun. Stop clears cancel under the same lock before waiting, so no
// session is added once Wait may be running.
func (a *Acceptor) track() bool {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.cancel == nil {
		return false
	}
	a.wg.Add(1)
	return true
}

func (a *Acceptor) serveConn(ctx context.Context, raw net.Conn) {
	defer a.wg.Done()
	a.active.Add(1)
	defer a.active.Add(-1)

	start := time.Now()
	id := uuid.NewString()
	s := &Session{
		Conn:   NewConn(raw, a.cfg.ReadTimeout, a.cfg.WriteTimeout),
		ID:     id,
		Logger: observability.SessionLogger(a.logger, id, raw.RemoteAddr().String()),
	}
	defer s.Close()

	// Closing the connection unblocks a handler waiting in ReadLine.
	stop := context.AfterFunc(ctx, func() { _ = s.Close() })
	defer stop()

	defer func() {
		if r := recover(); r != nil {
			s.Logger.Error("session handler panicked", zap.Any("panic", r))
		}
	}()

	s.Logger.Info("client connected")
	if err := s.Negotiate(); err != nil {
		s.Logger.Warn("telnet negotiation failed", zap.Error(err))
		return
	}

	err := a.handler.HandleSession(ctx, s)
	s.Logger.Info("session ended",
		zap.Duration("duration", time.Since(start)),
		zap.NamedError("reason", err),
	)
}

// Stop closes the listener, disconnects every session and waits for their
// goroutines to exit. Stop is idempotent.
func (a *Acceptor) Stop() {
	a.mu.Lock()
	cancel, ln := a.cancel, a.listener
	a.cancel = nil
	a.mu.Unlock()

	if cancel == nil {
		return
	}
	cancel()
	_ = ln.Close()
	a.wg.Wait()
	a.logger.Info("telnet acceptor stopped")
}

// Addr returns the listening address, or "" before Serve.
func (a *Acceptor) Addr() string {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.listener == nil {
		return ""
	}
	return a.listener.Addr().String()
}

// ActiveSessions returns the number of connected sessions.
func (a *Acceptor) ActiveSessions() int {
	return int(a.active.Load())
}
