package cli

import (
	"fmt"
	"io"
	"time"

	"github.com/spf13/cobra"

	"github.com/cory-johannsen/fortune/internal/fortune"
	"github.com/cory-johannsen/fortune/internal/storage/sqlite"
)

// UserResult is the output of the register, bind and unbind commands.
type UserResult struct {
	Name    string `json:"name"`
	Code    string `json:"code,omitempty"`
	EverMax bool   `json:"ever_max"`
}

func (r UserResult) writeText(w io.Writer) error {
	code := r.Code
	if code == "" {
		code = "(none)"
	}
	_, err := fmt.Fprintf(w, "name:     %s\ncode:     %s\never max: %t\n", r.Name, code, r.EverMax)
	return err
}

// userEnv is the service and store opened for a user command.
type userEnv struct {
	svc   *fortune.Service
	store *sqlite.Store
}

func (e userEnv) Close() error { return e.store.Close() }

// openUsers opens the sqlite store named by --db or sqlite.path.
func openUsers(rootOpts *RootOptions, db string, df *displayFlags, now func() time.Time) (userEnv, error) {
	cfg, err := rootOpts.loadConfig()
	if err != nil {
		return userEnv{}, err
	}
	if df == nil {
		df = &displayFlags{}
	} else if err := df.apply(&cfg); err != nil {
		return userEnv{}, err
	}
	path := db
	if path == "" {
		path = cfg.SQLite.Path
	}
	if path == "" {
		return userEnv{}, fmt.Errorf("no database: pass --db or set sqlite.path")
	}
	store, err := sqlite.Open(path)
	if err != nil {
		return userEnv{}, err
	}
	svc, err := newReader(rootOpts, cfg, df, store, now)
	if err != nil {
		_ = store.Close()
		return userEnv{}, err
	}
	return userEnv{svc: svc, store: store}, nil
}

func addDBFlag(cmd *cobra.Command, db *string) {
	cmd.Flags().StringVar(db, "db", "", "sqlite database path (default sqlite.path from config)")
}

// NewRegisterCommand creates the register command.
func NewRegisterCommand(rootOpts *RootOptions) *cobra.Command {
	var db, password string
	cmd := &cobra.Command{
		Use:   "register <name> --password <password>",
		Short: "Create a user in a local database",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			env, err := openUsers(rootOpts, db, nil, nil)
			if err != nil {
				return err
			}
			defer env.Close()

			rec, err := env.svc.Register(cmd.Context(), args[0], password)
			if err != nil {
				return fmt.Errorf("registering %s: %w", args[0], err)
			}
			res := UserResult{Name: rec.Name, Code: rec.Code, EverMax: rec.EverMax}
			return rootOpts.emit(cmd.OutOrStdout(), res, res.writeText)
		},
	}
	addDBFlag(cmd, &db)
	cmd.Flags().StringVar(&password, "password", "", "account password")
	_ = cmd.MarkFlagRequired("password")
	return cmd
}

// NewBindCommand creates the bind command.
func NewBindCommand(rootOpts *RootOptions) *cobra.Command {
	var db string
	cmd := &cobra.Command{
		Use:   "bind <name> <code>",
		Short: "Bind a code to a user",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			env, err := openUsers(rootOpts, db, nil, nil)
			if err != nil {
				return err
			}
			defer env.Close()

			code, err := env.svc.Bind(cmd.Context(), args[0], args[1])
			if err != nil {
				return fmt.Errorf("binding code for %s: %w", args[0], err)
			}
			return writeUser(cmd, rootOpts, env, args[0], code)
		},
	}
	addDBFlag(cmd, &db)
	return cmd
}

// NewUnbindCommand creates the unbind command.
func NewUnbindCommand(rootOpts *RootOptions) *cobra.Command {
	var db string
	cmd := &cobra.Command{
		Use:   "unbind <name>",
		Short: "Remove a user's bound code",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			env, err := openUsers(rootOpts, db, nil, nil)
			if err != nil {
				return err
			}
			defer env.Close()

			if err := env.svc.Unbind(cmd.Context(), args[0]); err != nil {
				return fmt.Errorf("unbinding code for %s: %w", args[0], err)
			}
			return writeUser(cmd, rootOpts, env, args[0], "")
		},
	}
	addDBFlag(cmd, &db)
	return cmd
}

func writeUser(cmd *cobra.Command, rootOpts *RootOptions, env userEnv, name, code string) error {
	rec, err := env.store.GetByName(cmd.Context(), name)
	if err != nil {
		return err
	}
	res := UserResult{Name: rec.Name, Code: code, EverMax: rec.EverMax}
	return rootOpts.emit(cmd.OutOrStdout(), res, res.writeText)
}

// NewTodayCommand creates the today command.
func NewTodayCommand(rootOpts *RootOptions) *cobra.Command {
	var (
		db, date string
		df       displayFlags
	)
	cmd := &cobra.Command{
		Use:   "today <name> [--date YYYY-MM-DD]",
		Short: "Show a stored user's reading and record a first jackpot",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var now func() time.Time
			if date != "" {
				cfg, err := rootOpts.loadConfig()
				if err != nil {
					return err
				}
				day, err := parseDay(date, cfg.Luck)
				if err != nil {
					return err
				}
				now = func() time.Time { return day }
			}
			env, err := openUsers(rootOpts, db, &df, now)
			if err != nil {
				return err
			}
			defer env.Close()

			r, err := env.svc.Today(cmd.Context(), args[0])
			if err != nil {
				return fmt.Errorf("reading luck for %s: %w", args[0], err)
			}
			res := resultFromReading(r)
			return rootOpts.emit(cmd.OutOrStdout(), res, res.writeText)
		},
	}
	addDBFlag(cmd, &db)
	cmd.Flags().StringVar(&date, "date", "", "calendar day (default today in the configured timezone)")
	df.register(cmd)
	return cmd
}
