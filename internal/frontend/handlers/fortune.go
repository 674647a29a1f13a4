// Package handlers provides the Telnet session loop for fortune readings.
package handlers

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/cory-johannsen/fortune/internal/command"
	"github.com/cory-johannsen/fortune/internal/fortune"
	"github.com/cory-johannsen/fortune/internal/frontend/telnet"
	"github.com/cory-johannsen/fortune/internal/storage"
)

// FortuneService is the subset of fortune.Service a session needs.
type FortuneService interface {
	Register(ctx context.Context, name, password string) (storage.Record, error)
	Login(ctx context.Context, name, password string) (storage.Record, error)
	Bind(ctx context.Context, name, code string) (string, error)
	Unbind(ctx context.Context, name string) error
	Today(ctx context.Context, name string) (fortune.Reading, error)
}

const welcomeBanner = telnet.Bold + telnet.BrightYellow + `
   *  .  *   daily fortune   *  .  *
` + telnet.Reset + `
  Type ` + telnet.Green + `register <name>` + telnet.Reset + ` to create an account,
  ` + telnet.Green + `login <name>` + telnet.Reset + ` to sign in, or ` + telnet.Green + `help` + telnet.Reset + ` for commands.
`

// errQuit ends the session loop cleanly.
var errQuit = errors.New("quit")

// FortuneHandler implements telnet.SessionHandler.
type FortuneHandler struct {
	svc      FortuneService
	registry *command.Registry
}

// NewFortuneHandler creates a FortuneHandler.
//
// Precondition: svc and registry must be non-nil.
func NewFortuneHandler(svc FortuneService, registry *command.Registry) *FortuneHandler {
	return &FortuneHandler{svc: svc, registry: registry}
}

// session is per-connection state.
type session struct {
	*telnet.Session
	user string
}

// HandleSession shows the banner and runs commands until quit, disconnect
// or shutdown.
//
// Postcondition: Returns nil on quit, or the error that ended the session.
func (h *FortuneHandler) HandleSession(ctx context.Context, ts *telnet.Session) error {
	s := &session{Session: ts}
	if err := s.WritePrompt(welcomeBanner + "\r\n"); err != nil {
		return fmt.Errorf("sending welcome: %w", err)
	}

	for {
		if err := ctx.Err(); err != nil {
			_ = s.WriteLine(telnet.Colorize(telnet.Yellow, "Server shutting down. Goodbye!"))
			return err
		}
		if err := s.WritePrompt(h.prompt(s)); err != nil {
			return fmt.Errorf("writing prompt: %w", err)
		}
		line, err := s.ReadLine()
		if err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			return fmt.Errorf("reading input: %w", err)
		}

		err = h.dispatch(ctx, s, command.Parse(line))
		if errors.Is(err, errQuit) {
			return nil
		}
		if err != nil {
			return err
		}
	}
}

func (h *FortuneHandler) prompt(s *session) string {
	if s.user == "" {
		return telnet.Colorize(telnet.Dim, "> ")
	}
	return telnet.Colorize(telnet.Cyan, s.user+"> ")
}

// dispatch runs one parsed line. Only connection failures are returned;
// user mistakes are reported to the client.
func (h *FortuneHandler) dispatch(ctx context.Context, s *session, in command.ParseResult) error {
	if in.Command == "" {
		return nil
	}
	cmd, ok := h.registry.Resolve(in.Command)
	if !ok {
		return s.WriteLine(telnet.Colorize(telnet.Red,
			fmt.Sprintf("Unknown command: %s. Type 'help' for available commands.", in.Command)))
	}
	if len(in.Args) < cmd.MinArgs {
		return s.WriteLine(telnet.Colorize(telnet.Red, "Usage: "+cmd.Usage))
	}
	if cmd.RequiresLogin && s.user == "" {
		return s.WriteLine(telnet.Colorize(telnet.Red, "You must log in first."))
	}

	switch cmd.Handler {
	case command.HandlerRegister:
		return h.register(ctx, s, in.Arg(0))
	case command.HandlerLogin:
		return h.login(ctx, s, in.Arg(0))
	case command.HandlerLogout:
		s.Logger.Info("user logged out", zap.String("name", s.user))
		s.user = ""
		return s.WriteLine("Logged out.")
	case command.HandlerLuck:
		return h.luck(ctx, s)
	case command.HandlerBind:
		return h.bind(ctx, s, in.Arg(0))
	case command.HandlerUnbind:
		return h.unbind(ctx, s)
	case command.HandlerHelp:
		return h.help(s)
	case command.HandlerQuit:
		_ = s.WriteLine(telnet.Colorize(telnet.Cyan, "Goodbye!"))
		return errQuit
	}
	return fmt.Errorf("command %q has no handler %q", cmd.Name, cmd.Handler)
}

func (h *FortuneHandler) register(ctx context.Context, s *session, name string) error {
	if err := s.WritePrompt("Choose a password: "); err != nil {
		return err
	}
	password, err := s.ReadPassword()
	if err != nil {
		return err
	}

	rec, err := h.svc.Register(ctx, name, password)
	switch {
	case err == nil:
		s.user = rec.Name
		s.Logger.Info("user registered", zap.String("name", rec.Name))
		return s.WriteLine(telnet.Colorize(telnet.Green,
			fmt.Sprintf("Welcome, %s! Type 'luck' to see today's fortune.", rec.Name)))
	case errors.Is(err, storage.ErrExists):
		return s.WriteLine(telnet.Colorize(telnet.Red, "That name is taken."))
	case errors.Is(err, fortune.ErrInvalidName), errors.Is(err, fortune.ErrWeakPassword):
		return s.WriteLine(telnet.Colorize(telnet.Red, capitalize(err.Error())+"."))
	default:
		return h.internalError(s, "registration failed", err)
	}
}

func (h *FortuneHandler) login(ctx context.Context, s *session, name string) error {
	if err := s.WritePrompt("Password: "); err != nil {
		return err
	}
	password, err := s.ReadPassword()
	if err != nil {
		return err
	}

	rec, err := h.svc.Login(ctx, name, password)
	switch {
	case err == nil:
		s.user = rec.Name
		s.Logger.Info("user logged in", zap.String("name", rec.Name))
		return s.WriteLine(telnet.Colorize(telnet.Green, fmt.Sprintf("Welcome back, %s.", rec.Name)))
	case errors.Is(err, storage.ErrNotFound), errors.Is(err, storage.ErrInvalidCredentials):
		s.Logger.Info("login failed", zap.String("name", name))
		return s.WriteLine(telnet.Colorize(telnet.Red, "Invalid name or password."))
	default:
		return h.internalError(s, "login failed", err)
	}
}

func (h *FortuneHandler) luck(ctx context.Context, s *session) error {
	r, err := h.svc.Today(ctx, s.user)
	if err != nil {
		return h.internalError(s, "reading fortune failed", err)
	}
	return s.WriteLine(RenderReading(r))
}

func (h *FortuneHandler) bind(ctx context.Context, s *session, code string) error {
	bound, err := h.svc.Bind(ctx, s.user, code)
	switch {
	case err == nil:
		return s.WriteLine(telnet.Colorize(telnet.Green, "Bound code "+bound+"."))
	case errors.Is(err, storage.ErrInvalidCode):
		return s.WriteLine(telnet.Colorize(telnet.Red, "Codes look like 1234-ABCD-5678-EF90."))
	default:
		return h.internalError(s, "binding code failed", err)
	}
}

func (h *FortuneHandler) unbind(ctx context.Context, s *session) error {
	if err := h.svc.Unbind(ctx, s.user); err != nil {
		return h.internalError(s, "unbinding code failed", err)
	}
	return s.WriteLine("Code removed.")
}

func (h *FortuneHandler) help(s *session) error {
	var b strings.Builder
	b.WriteString("Commands:\r\n")
	for _, cmd := range h.registry.Commands() {
		fmt.Fprintf(&b, "  %s%-16s%s %s", telnet.Green, cmd.Usage, telnet.Reset, cmd.Help)
		if len(cmd.Aliases) > 0 {
			fmt.Fprintf(&b, " (%s)", strings.Join(cmd.Aliases, ", "))
		}
		b.WriteString("\r\n")
	}
	return s.WritePrompt(b.String())
}

func (h *FortuneHandler) internalError(s *session, msg string, err error) error {
	s.Logger.Error(msg, zap.String("name", s.user), zap.Error(err))
	return s.WriteLine(telnet.Colorize(telnet.Red, "An internal error occurred. Please try again."))
}

// RenderReading formats a reading for a Telnet client.
func RenderReading(r fortune.Reading) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Luck for %s on %s: %s\r\n",
		r.Name, r.Date.Format("2006-01-02"),
		telnet.Colorize(telnet.ScoreColor(r.Score), r.Display))
	fmt.Fprintf(&b, "%s %s", telnet.Colorize(telnet.Bold, r.Band.Title+"."), r.Band.Message)
	if r.FirstMax {
		b.WriteString("\r\n" + telnet.Colorize(telnet.Bold+telnet.BrightMagenta, "Your first perfect score!"))
	}
	return b.String()
}

func capitalize(s string) string {
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}
