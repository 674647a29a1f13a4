package expr

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuildDigitTable_CoversDigitKeysForEveryBase(t *testing.T) {
	for base := MinBase; base <= MaxBase; base++ {
		table, err := BuildDigitTable(base)
		require.NoError(t, err, "base %d", base)
		assert.Equal(t, base, table.Base())
		for n := 0; n <= digitTableMax; n++ {
			s, ok := table.Lookup(n)
			if !ok {
				assert.False(t, isDigitKey(n), "base %d is missing required key %d", base, n)
				continue
			}
			assert.Equal(t, int64(n), MustEvaluate(s), "base %d key %d: %s", base, n, s)
		}
	}
}

func TestBuildDigitTable_UsesOnlyTheBaseDigit(t *testing.T) {
	for base := MinBase; base <= MaxBase; base++ {
		table, err := BuildDigitTable(base)
		require.NoError(t, err)
		for _, n := range digitKeys() {
			s, _ := table.Lookup(n)
			for _, tok := range Tokenize(s) {
				if isOperator(tok) || tok == "(" || tok == ")" {
					continue
				}
				assert.Equal(t, string(rune('0'+base)), tok, "base %d key %d: %s", base, n, s)
			}
		}
	}
}

func TestBuildDigitTable_BaseSix(t *testing.T) {
	table, err := BuildDigitTable(6)
	require.NoError(t, err)
	want := map[int]string{
		0:  "(6-6)",
		1:  "(6/6)",
		2:  "((6+6)/6)",
		3:  "((6*6)/(6+6))",
		6:  "6",
		7:  "((6/6)+6)",
		10: "((6+6)-((6+6)/6))",
	}
	for n, s := range want {
		got, ok := table.Lookup(n)
		require.True(t, ok)
		assert.Equal(t, s, got, "key %d", n)
	}
}

func TestBuildDigitTable_RejectsInvalidBase(t *testing.T) {
	for _, base := range []int{-1, 0, 10, 42} {
		_, err := BuildDigitTable(base)
		assert.ErrorIs(t, err, ErrInvalidBase, "base %d", base)
	}
}
