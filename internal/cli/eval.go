package cli

import (
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/cory-johannsen/fortune/internal/expr"
)

// EvalResult is the output of the eval command.
type EvalResult struct {
	Expression string `json:"expression"`
	Value      int64  `json:"value"`
}

// NewEvalCommand creates the eval command.
func NewEvalCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "eval <expression>",
		Short: "Evaluate an obfuscation expression",
		Long: `Evaluate an expression in the display grammar: integers, parentheses and
the operators + - * / & | ^ << >>. Division floors.`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			src := strings.Join(args, " ")
			v, err := expr.Evaluate(src)
			if err != nil {
				return fmt.Errorf("evaluating %q: %w", src, err)
			}
			res := EvalResult{Expression: src, Value: v}
			return rootOpts.emit(cmd.OutOrStdout(), res, func(w io.Writer) error {
				_, err := fmt.Fprintln(w, v)
				return err
			})
		},
	}
}
