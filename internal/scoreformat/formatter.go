package scoreformat

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"go.uber.org/zap"

	"github.com/cory-johannsen/fortune/internal/expr"
	"github.com/cory-johannsen/fortune/internal/scorecache"
)

// Generator produces candidate expressions for a target built from base.
type Generator interface {
	Generate(target, base int) ([]string, error)
}

// Formatter renders scores according to a Display. It owns no global state;
// construct one per process and share it.
type Formatter struct {
	gen    Generator
	cache  scorecache.Store
	src    expr.Source
	logger *zap.Logger
}

// NewFormatter creates a Formatter.
//
// Precondition: gen, cache, src and logger must be non-nil.
func NewFormatter(gen Generator, cache scorecache.Store, src expr.Source, logger *zap.Logger) *Formatter {
	return &Formatter{gen: gen, cache: cache, src: src, logger: logger}
}

// Format renders score for date. Failures while generating, validating or
// caching never surface: the plain decimal string is returned instead.
//
// Postcondition: The result is non-empty. In expression mode it evaluates to score.
func (f *Formatter) Format(ctx context.Context, score int, date time.Time, d Display) (out string) {
	plain := strconv.Itoa(score)
	if d.Mode == ModePlain || d.Mode == "" || !d.ObfuscatesOn(date) {
		return plain
	}

	switch d.Mode {
	case ModeBinary:
		if score < 0 {
			return plain
		}
		return strconv.FormatInt(int64(score), 2)
	case ModeExpression:
		defer func() {
			if r := recover(); r != nil {
				f.logger.Warn("expression formatting panicked, showing plain score",
					zap.Int("score", score),
					zap.Any("panic", r),
				)
				out = plain
			}
		}()
		s, err := f.expression(ctx, score, d.Base())
		if err != nil {
			f.logger.Warn("expression formatting failed, showing plain score",
				zap.Int("score", score),
				zap.Int("base", d.Base()),
				zap.Error(err),
			)
			return plain
		}
		return s
	default:
		f.logger.Warn("unknown display mode", zap.String("mode", string(d.Mode)))
		return plain
	}
}

// expression returns a validated candidate for score, generating and caching
// the candidate set on a miss.
func (f *Formatter) expression(ctx context.Context, score, base int) (string, error) {
	key := scorecache.Key{Target: score, Base: base}

	cached, ok, err := f.cache.Get(ctx, key)
	if err != nil {
		f.logger.Warn("expression cache read failed", zap.Stringer("key", key), zap.Error(err))
	}
	if ok {
		pick := cached[f.src.Intn(len(cached))]
		if v, err := expr.Evaluate(pick); err == nil && v == int64(score) {
			return pick, nil
		}
		f.logger.Warn("cached expression failed validation, regenerating",
			zap.Stringer("key", key),
			zap.String("expression", pick),
		)
	}

	candidates, err := f.gen.Generate(score, base)
	if err != nil {
		return "", fmt.Errorf("generating expressions for %d: %w", score, err)
	}
	if len(candidates) == 0 {
		return "", fmt.Errorf("generating expressions for %d: no candidates", score)
	}
	if err := f.cache.Put(ctx, key, candidates); err != nil {
		f.logger.Warn("expression cache write failed", zap.Stringer("key", key), zap.Error(err))
	}
	pick := candidates[f.src.Intn(len(candidates))]
	if v := expr.MustEvaluate(pick); v != int64(score) {
		return "", fmt.Errorf("candidate %q evaluates to %d, want %d", pick, v, score)
	}
	return pick, nil
}
