package expr

import (
	"errors"
	"fmt"
	"strconv"
	"sync"

	"go.uber.org/zap"
)

const (
	// MinTarget and MaxTarget bound the values the generator accepts.
	MinTarget = 0
	MaxTarget = 100
)

// ErrTargetOutOfRange is returned for a target outside [MinTarget, MaxTarget].
var ErrTargetOutOfRange = errors.New("expr: target out of range")

// Strategy synthesizes one candidate expression for target. A strategy that
// finds nothing within its bound returns ("", false); that is not an error.
type Strategy struct {
	Name  string
	Build func(g *Generator, target int, t *DigitTable) (string, bool)
}

// Option configures a Generator.
type Option func(*Generator)

// WithStrategies replaces the default strategy set.
func WithStrategies(strategies ...Strategy) Option {
	return func(g *Generator) {
		g.strategies = strategies
	}
}

// Generator produces validated obfuscated expressions. It owns the per-base
// digit tables, which are built lazily and shared across calls.
type Generator struct {
	src        Source
	logger     *zap.Logger
	strategies []Strategy

	mu     sync.Mutex
	tables map[int]*DigitTable
}

// NewGenerator creates a Generator drawing randomness from src.
//
// Precondition: src and logger must be non-nil.
// Postcondition: Returns a Generator using DefaultStrategies unless overridden.
func NewGenerator(src Source, logger *zap.Logger, opts ...Option) *Generator {
	g := &Generator{
		src:        src,
		logger:     logger,
		strategies: DefaultStrategies(),
		tables:     make(map[int]*DigitTable),
	}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

// DefaultStrategies returns every built-in strategy in the order they run.
func DefaultStrategies() []Strategy {
	return []Strategy{
		{Name: "decimal", Build: decimalStrategy},
		{Name: "factor", Build: factorStrategy},
		{Name: "factor-sqrt", Build: factorSqrtStrategy},
		{Name: "binary", Build: binaryStrategy},
		{Name: "mixed", Build: mixedStrategy},
		{Name: "opmix", Build: opmixStrategy},
	}
}

// Table returns the digit table for base, building it on first use.
//
// Postcondition: Returns the same *DigitTable for every call with the same base.
func (g *Generator) Table(base int) (*DigitTable, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if t, ok := g.tables[base]; ok {
		return t, nil
	}
	t, err := BuildDigitTable(base)
	if err != nil {
		return nil, err
	}
	g.tables[base] = t
	g.logger.Debug("digit table built",
		zap.Int("base", base),
		zap.Int("entries", t.Len()),
	)
	return t, nil
}

// Generate runs every strategy for target and returns the candidates that
// evaluate to target, without duplicates. When no strategy yields a valid
// candidate the plain decimal string of target is returned.
//
// Precondition: target in [MinTarget, MaxTarget]; base in [MinBase, MaxBase].
// Postcondition: Every returned string evaluates to target; the slice is non-empty
// when err is nil.
func (g *Generator) Generate(target, base int) ([]string, error) {
	if target < MinTarget || target > MaxTarget {
		return nil, fmt.Errorf("%w: %d", ErrTargetOutOfRange, target)
	}
	t, err := g.Table(base)
	if err != nil {
		return nil, err
	}

	seen := make(map[string]struct{}, len(g.strategies))
	var out []string
	for _, s := range g.strategies {
		candidate, ok := s.Build(g, target, t)
		if !ok {
			g.logger.Debug("strategy exhausted",
				zap.String("strategy", s.Name),
				zap.Int("target", target),
				zap.Int("base", base),
			)
			continue
		}
		if !g.Validate(candidate, target) {
			continue
		}
		if _, dup := seen[candidate]; dup {
			continue
		}
		seen[candidate] = struct{}{}
		out = append(out, candidate)
	}

	if len(out) == 0 {
		g.logger.Warn("no strategy produced an expression, using plain digits",
			zap.Int("target", target),
			zap.Int("base", base),
		)
		return []string{strconv.Itoa(target)}, nil
	}
	g.logger.Debug("expressions generated",
		zap.Int("target", target),
		zap.Int("base", base),
		zap.Int("candidates", len(out)),
	)
	return out, nil
}

// Validate reports whether candidate evaluates to target. A malformed
// candidate is a generator defect and is logged at error level.
func (g *Generator) Validate(candidate string, target int) bool {
	v, err := Evaluate(candidate)
	if err != nil {
		g.logger.Error("generated expression is malformed",
			zap.String("expression", candidate),
			zap.Error(err),
		)
		return false
	}
	if v != int64(target) {
		g.logger.Debug("generated expression rejected",
			zap.String("expression", candidate),
			zap.Int64("value", v),
			zap.Int("target", target),
		)
		return false
	}
	return true
}
