// Package scoreformat renders a luck score for display: as plain digits, as
// a binary string, or as an obfuscated expression that evaluates to it.
package scoreformat

import (
	"fmt"
	"time"
)

// Mode selects how a score is displayed.
type Mode string

const (
	ModePlain      Mode = "plain"
	ModeBinary     Mode = "binary"
	ModeExpression Mode = "expression"
)

// DefaultBaseNumber is the base digit used when Display.BaseNumber is zero.
const DefaultBaseNumber = 6

// ParseMode converts a configuration string into a Mode.
func ParseMode(s string) (Mode, error) {
	switch m := Mode(s); m {
	case ModePlain, ModeBinary, ModeExpression:
		return m, nil
	}
	return "", fmt.Errorf("display mode must be one of [plain, binary, expression], got %q", s)
}

// Display is the display configuration for a formatted score.
type Display struct {
	Mode Mode
	// RestrictedDate, when set, limits obfuscation to one calendar day in
	// "MM-DD" form. On every other day the score is shown plain.
	RestrictedDate string
	// BaseNumber is the digit expressions are built from.
	BaseNumber int
}

// Base returns BaseNumber, or DefaultBaseNumber when unset.
func (d Display) Base() int {
	if d.BaseNumber == 0 {
		return DefaultBaseNumber
	}
	return d.BaseNumber
}

// ObfuscatesOn reports whether a non-plain mode applies on date.
func (d Display) ObfuscatesOn(date time.Time) bool {
	if d.RestrictedDate == "" {
		return true
	}
	return date.Format("01-02") == d.RestrictedDate
}

// ValidRestrictedDate reports whether s is empty or a real "MM-DD" day.
func ValidRestrictedDate(s string) bool {
	if s == "" {
		return true
	}
	// 2024 is a leap year, so 02-29 is accepted.
	_, err := time.Parse("2006-01-02", "2024-"+s)
	return err == nil && len(s) == 5
}
