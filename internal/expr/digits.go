package expr

import (
	"errors"
	"fmt"
	"sort"
	"strconv"
)

const (
	// MinBase and MaxBase bound the base number digit.
	MinBase = 1
	MaxBase = 9

	// digitTableMax is the largest value memoized while building a table.
	digitTableMax = 128
	// digitTableRounds caps the closure rounds of the table builder.
	digitTableRounds = 8
)

// ErrInvalidBase is returned for a base number outside [MinBase, MaxBase].
var ErrInvalidBase = errors.New("expr: base number out of range")

// DigitTable maps small integers to expressions written only with the base
// digit, parentheses and + - * /.
//
// Invariant: Evaluate(t.exprs[n]) == n for every key n. Keys 0-10 and 100
// are always present; every other value in [0,128] reached while building is
// memoized as well.
type DigitTable struct {
	base  int
	exprs map[int]string
}

// BuildDigitTable builds the table for base by repeatedly combining known
// values pairwise and keeping the shortest expression for each result.
//
// Precondition: base in [MinBase, MaxBase].
// Postcondition: Returns a table covering 0-10 and 100, or a non-nil error.
func BuildDigitTable(base int) (*DigitTable, error) {
	if base < MinBase || base > MaxBase {
		return nil, fmt.Errorf("%w: %d", ErrInvalidBase, base)
	}
	exprs := map[int]string{base: strconv.Itoa(base)}

	for round := 0; round < digitTableRounds; round++ {
		keys := make([]int, 0, len(exprs))
		for k := range exprs {
			keys = append(keys, k)
		}
		sort.Ints(keys)
		snapshot := make(map[int]string, len(exprs))
		for k, v := range exprs {
			snapshot[k] = v
		}

		changed := false
		for _, x := range keys {
			for _, y := range keys {
				ex, ey := snapshot[x], snapshot[y]
				for _, op := range []byte{'+', '-', '*', '/'} {
					v, ok := combineExact(op, x, y)
					if !ok || v < 0 || v > digitTableMax {
						continue
					}
					size := len(ex) + len(ey) + 3
					if cur, seen := exprs[v]; seen && len(cur) <= size {
						continue
					}
					exprs[v] = "(" + ex + string(op) + ey + ")"
					changed = true
				}
			}
		}
		if !changed {
			break
		}
	}

	t := &DigitTable{base: base, exprs: exprs}
	for _, n := range digitKeys() {
		if _, ok := exprs[n]; !ok {
			return nil, fmt.Errorf("expr: digit table for base %d is missing %d", base, n)
		}
	}
	return t, nil
}

// Base returns the base digit the table was built from.
func (t *DigitTable) Base() int { return t.base }

// Lookup returns the expression for n.
func (t *DigitTable) Lookup(n int) (string, bool) {
	s, ok := t.exprs[n]
	return s, ok
}

// Len returns the number of memoized values.
func (t *DigitTable) Len() int { return len(t.exprs) }

// isDigitKey reports whether n is one of the values every table must hold.
func isDigitKey(n int) bool {
	return (n >= 0 && n <= 10) || n == 100
}

func digitKeys() []int {
	return []int{0, 1, 2, 3, 4, 5, 6, 7, 8, 9, 10, 100}
}

// combineExact applies op and rejects inexact division.
func combineExact(op byte, x, y int) (int, bool) {
	switch op {
	case '+':
		return x + y, true
	case '-':
		return x - y, true
	case '*':
		return x * y, true
	case '/':
		if y == 0 || x%y != 0 {
			return 0, false
		}
		return x / y, true
	}
	return 0, false
}
