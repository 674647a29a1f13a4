package luck

import (
	"math"
	"strconv"
	"time"
)

const (
	// MaxScore is the jackpot score.
	MaxScore = 100

	saltDayA  = "fortune:day:"
	saltDayB  = "/year:"
	saltDayC  = ":v1"
	saltCodeA = "|code|"
	saltCodeB = "|dom:"

	mergeDivisor   = 3
	normalizeScale = 527.0
	rawModulus     = 1001
	jackpotFloor   = 970
	rawSpan        = 969.0
	scoreSpan      = 99.0
)

// Score returns the luck score in [0, 100] for secret and code on date's
// calendar day. The date component depends only on the day; the seed
// component depends on secret, code and the day of month.
//
// Raw values 970-1000 are the jackpot band and always score 100; raw values
// 0-969 map proportionally onto 0-99.
//
// Postcondition: 0 <= result <= 100; identical inputs give identical results.
func Score(secret, code string, date time.Time) int {
	dayHash := Hash(saltDayA + strconv.Itoa(date.YearDay()) + saltDayB + strconv.Itoa(date.Year()) + saltDayC)
	seedHash := Hash(secret + code + saltCodeA + strconv.Itoa(date.Day()) + saltCodeB)

	// Each half is divided before summing; summing first would change the
	// distribution and every stored score.
	merged := dayHash/mergeDivisor + seedHash/mergeDivisor
	normalized := math.Abs(float64(merged) / normalizeScale)
	raw := uint64(math.Round(normalized)) % rawModulus

	if raw >= jackpotFloor {
		return MaxScore
	}
	return int(math.Round(float64(raw) / rawSpan * scoreSpan))
}

// Calculator scores "today" for a fixed timezone and an injectable clock.
type Calculator struct {
	loc *time.Location
	now func() time.Time
}

// NewCalculator creates a Calculator.
//
// Precondition: loc must be non-nil. A nil now uses time.Now.
func NewCalculator(loc *time.Location, now func() time.Time) *Calculator {
	if now == nil {
		now = time.Now
	}
	return &Calculator{loc: loc, now: now}
}

// Today returns the current calendar date in the calculator's location.
func (c *Calculator) Today() time.Time {
	n := c.now().In(c.loc)
	return time.Date(n.Year(), n.Month(), n.Day(), 0, 0, 0, 0, c.loc)
}

// ScoreToday returns the score for secret and code on Today.
func (c *Calculator) ScoreToday(secret, code string) (int, time.Time) {
	day := c.Today()
	return Score(secret, code, day), day
}
