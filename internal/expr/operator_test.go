package expr

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"
)

func TestOperators_FixedSet(t *testing.T) {
	ops := Operators()
	symbols := make([]string, 0, len(ops))
	for _, op := range ops {
		symbols = append(symbols, op.Symbol)
		assert.Greater(t, op.Weight, 0)
	}
	assert.Equal(t, []string{"+", "-", "*", "<<", ">>", "|", "&", "^"}, symbols)

	weight := func(sym string) int {
		for _, op := range ops {
			if op.Symbol == sym {
				return op.Weight
			}
		}
		return 0
	}
	for _, bitwise := range []string{"|", "&", "^", "<<", ">>"} {
		assert.Greater(t, weight("+"), weight(bitwise), "+ must outweigh %s", bitwise)
	}
}

func TestOperators_ReturnsCopy(t *testing.T) {
	ops := Operators()
	ops[0].Weight = 0
	assert.Equal(t, 30, Operators()[0].Weight)
}

func TestOperator_Apply(t *testing.T) {
	v, err := Operator{Symbol: "<<"}.Apply(6, 1)
	require.NoError(t, err)
	assert.Equal(t, int64(12), v)

	_, err = Operator{Symbol: ">>"}.Apply(6, -1)
	assert.ErrorIs(t, err, ErrNegativeShift)
}

func TestPickOperator_FollowsWeights(t *testing.T) {
	ops := Operators()
	// The first 30 slots of the weight line belong to "+".
	assert.Equal(t, "+", PickOperator(&FixedSource{Values: []int{0}}, ops).Symbol)
	assert.Equal(t, "+", PickOperator(&FixedSource{Values: []int{29}}, ops).Symbol)
	assert.Equal(t, "-", PickOperator(&FixedSource{Values: []int{30}}, ops).Symbol)
	assert.Equal(t, "^", PickOperator(&FixedSource{Values: []int{99}}, ops).Symbol)
}

func TestPickOperator_PlusIsMostFrequent(t *testing.T) {
	src := NewSeededSource(7)
	counts := map[string]int{}
	for i := 0; i < 10000; i++ {
		counts[PickOperator(src, operatorTable).Symbol]++
	}
	for sym, n := range counts {
		if sym != "+" {
			assert.Greater(t, counts["+"], n, "+ should be drawn more often than %s", sym)
		}
	}
}

// Property: WeightedOrder always returns a permutation of its input.
func TestPropertyWeightedOrder_IsPermutation(t *testing.T) {
	rapid.Check(t, func(rt *rapid.T) {
		seed := rapid.Uint64().Draw(rt, "seed")
		order := WeightedOrder(NewSeededSource(seed), operatorTable)
		if len(order) != len(operatorTable) {
			rt.Fatalf("got %d operators, want %d", len(order), len(operatorTable))
		}
		seen := map[string]bool{}
		for _, op := range order {
			if seen[op.Symbol] {
				rt.Fatalf("operator %q repeated", op.Symbol)
			}
			seen[op.Symbol] = true
		}
	})
}
