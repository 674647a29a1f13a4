package cli

import (
	"fmt"
	"io"
	"time"

	"github.com/spf13/cobra"

	"github.com/cory-johannsen/fortune/internal/app"
	"github.com/cory-johannsen/fortune/internal/config"
	"github.com/cory-johannsen/fortune/internal/expr"
	"github.com/cory-johannsen/fortune/internal/fortune"
	"github.com/cory-johannsen/fortune/internal/luck"
	"github.com/cory-johannsen/fortune/internal/scorecache"
	"github.com/cory-johannsen/fortune/internal/storage"
)

const dateLayout = "2006-01-02"

// ScoreResult is the output of the score and today commands.
type ScoreResult struct {
	Name     string `json:"name,omitempty"`
	Date     string `json:"date"`
	Score    int    `json:"score"`
	Display  string `json:"display"`
	Band     string `json:"band"`
	Message  string `json:"message"`
	FirstMax bool   `json:"first_max,omitempty"`
	EverMax  bool   `json:"ever_max,omitempty"`
}

func resultFromReading(r fortune.Reading) ScoreResult {
	return ScoreResult{
		Name:     r.Name,
		Date:     r.Date.Format(dateLayout),
		Score:    r.Score,
		Display:  r.Display,
		Band:     r.Band.Title,
		Message:  r.Band.Message,
		FirstMax: r.FirstMax,
		EverMax:  r.EverMax,
	}
}

func (r ScoreResult) writeText(w io.Writer) error {
	if r.Name != "" {
		if _, err := fmt.Fprintf(w, "name:    %s\n", r.Name); err != nil {
			return err
		}
	}
	_, err := fmt.Fprintf(w, "date:    %s\nscore:   %d\ndisplay: %s\nband:    %s - %s\n",
		r.Date, r.Score, r.Display, r.Band, r.Message)
	if err == nil && r.FirstMax {
		_, err = fmt.Fprintln(w, "first perfect score!")
	}
	return err
}

// displayFlags override the configured display section.
type displayFlags struct {
	mode           string
	base           int
	restrictedDate string
	seed           uint64
}

func (f *displayFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringVar(&f.mode, "mode", "", "display mode (plain|binary|expression); defaults to config")
	cmd.Flags().IntVar(&f.base, "base", 0, "base digit 1-9 for expressions; defaults to config")
	cmd.Flags().StringVar(&f.restrictedDate, "restricted-date", "", "only obfuscate on this MM-DD day")
	cmd.Flags().Uint64Var(&f.seed, "seed", 0, "seed for reproducible expressions (0 = random)")
}

func (f *displayFlags) apply(cfg *config.Config) error {
	if f.mode != "" {
		cfg.Display.Mode = f.mode
	}
	if f.base != 0 {
		cfg.Display.BaseNumber = f.base
	}
	if f.restrictedDate != "" {
		cfg.Display.RestrictedDate = f.restrictedDate
	}
	return cfg.Validate()
}

func (f *displayFlags) source() expr.Source {
	if f.seed == 0 {
		return expr.NewCryptoSource()
	}
	return expr.NewSeededSource(f.seed)
}

// NewScoreCommand creates the score command.
func NewScoreCommand(rootOpts *RootOptions) *cobra.Command {
	var (
		secret, code, date string
		df                 displayFlags
	)
	cmd := &cobra.Command{
		Use:   "score --secret <secret> [--code <code>] [--date YYYY-MM-DD]",
		Short: "Compute and render a score for explicit inputs",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := rootOpts.loadConfig()
			if err != nil {
				return err
			}
			if err := df.apply(&cfg); err != nil {
				return err
			}
			day, err := parseDay(date, cfg.Luck)
			if err != nil {
				return err
			}
			svc, err := newReader(rootOpts, cfg, &df, nil, nil)
			if err != nil {
				return err
			}
			res := resultFromReading(svc.Read(cmd.Context(), secret, code, day))
			return rootOpts.emit(cmd.OutOrStdout(), res, res.writeText)
		},
	}
	cmd.Flags().StringVar(&secret, "secret", "", "user secret")
	cmd.Flags().StringVar(&code, "code", "", "bound code, if any")
	cmd.Flags().StringVar(&date, "date", "", "calendar day (default today in the configured timezone)")
	_ = cmd.MarkFlagRequired("secret")
	df.register(cmd)
	return cmd
}

// parseDay parses s in the configured timezone, or returns today there.
func parseDay(s string, cfg config.LuckConfig) (time.Time, error) {
	loc, err := cfg.Location()
	if err != nil {
		return time.Time{}, err
	}
	if s == "" {
		return luck.NewCalculator(loc, nil).Today(), nil
	}
	day, err := time.ParseInLocation(dateLayout, s, loc)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid date %q: want YYYY-MM-DD", s)
	}
	return day, nil
}

// newReader builds a fortune.Service over an in-memory expression cache.
// store may be nil for commands that never touch records; now pins the
// calculator's clock when non-nil.
func newReader(rootOpts *RootOptions, cfg config.Config, df *displayFlags, store storage.RecordStore, now func() time.Time) (*fortune.Service, error) {
	logger, err := rootOpts.logger()
	if err != nil {
		return nil, err
	}
	display, err := app.Display(cfg.Display)
	if err != nil {
		return nil, err
	}
	bands, err := app.Bands(cfg.Luck)
	if err != nil {
		return nil, err
	}
	loc, err := cfg.Luck.Location()
	if err != nil {
		return nil, err
	}
	formatter := app.NewFormatterWithSource(scorecache.NewMemory(cfg.Cache.TTL), df.source(), logger)
	return fortune.NewService(store, luck.NewCalculator(loc, now), formatter, display, bands, logger), nil
}
