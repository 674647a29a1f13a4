// Package luck computes the deterministic daily luck score.
//
// The salts, divisors and band thresholds in this package form a versioned
// format: changing any of them changes every historical score, so a change
// must come with a FormatVersion bump.
package luck

import (
	"unicode"
	"unicode/utf16"
	"unicode/utf8"
)

// FormatVersion identifies the current hash/score format.
const FormatVersion = 1

const (
	hashSeed     uint64 = 5381
	hashFinalXOR uint64 = 0xA98F501BC684032F
)

// Hash is a DJB2 variant: h = (h<<5) ^ h ^ c per UTF-16 code unit, finished
// by an XOR with a fixed constant. Arithmetic wraps modulo 2^64. Characters
// outside the Basic Multilingual Plane fold as their surrogate pair. A byte
// that is not valid UTF-8 folds as the lone low surrogate 0xDC00+b, a unit
// no valid text produces, so distinct invalid bytes never collide.
//
// Postcondition: Identical input yields identical output on every platform.
func Hash(s string) uint64 {
	h := hashSeed
	fold := func(c uint64) { h = (h << 5) ^ h ^ c }
	for i := 0; i < len(s); {
		r, size := utf8.DecodeRuneInString(s[i:])
		if r == utf8.RuneError && size == 1 {
			fold(0xDC00 + uint64(s[i]))
			i++
			continue
		}
		i += size
		if hi, lo := utf16.EncodeRune(r); hi != unicode.ReplacementChar {
			fold(uint64(hi))
			fold(uint64(lo))
			continue
		}
		fold(uint64(r))
	}
	return h ^ hashFinalXOR
}
