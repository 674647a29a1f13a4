package cli

import (
	"fmt"
	"io"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/cory-johannsen/fortune/internal/expr"
)

// GenResult is the output of the gen command.
type GenResult struct {
	Target      int      `json:"target"`
	Base        int      `json:"base"`
	Expressions []string `json:"expressions"`
}

// NewGenCommand creates the gen command.
func NewGenCommand(rootOpts *RootOptions) *cobra.Command {
	var (
		base int
		seed uint64
	)
	cmd := &cobra.Command{
		Use:   "gen <target>",
		Short: "List the obfuscated expressions generated for a target",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			target, err := strconv.Atoi(args[0])
			if err != nil {
				return fmt.Errorf("invalid target %q: %w", args[0], err)
			}
			logger, err := rootOpts.logger()
			if err != nil {
				return err
			}
			df := displayFlags{seed: seed}
			gen := expr.NewGenerator(df.source(), logger.Named("expr"))
			exprs, err := gen.Generate(target, base)
			if err != nil {
				return err
			}
			res := GenResult{Target: target, Base: base, Expressions: exprs}
			return rootOpts.emit(cmd.OutOrStdout(), res, func(w io.Writer) error {
				for _, e := range exprs {
					if _, err := fmt.Fprintln(w, e); err != nil {
						return err
					}
				}
				return nil
			})
		},
	}
	cmd.Flags().IntVar(&base, "base", 6, "base digit 1-9")
	cmd.Flags().Uint64Var(&seed, "seed", 0, "seed for reproducible expressions (0 = random)")
	return cmd
}
