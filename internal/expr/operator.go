package expr

// Operator describes one binary operator available to generation strategies.
// Weight biases weighted random selection; it has no effect on evaluation.
type Operator struct {
	Symbol string
	Weight int
}

// Apply evaluates a op b with the same semantics as Evaluate.
func (o Operator) Apply(a, b int64) (int64, error) {
	return apply(o.Symbol, a, b)
}

// operatorTable is the fixed operator set, weighted toward "+" and away from
// the bitwise operators.
var operatorTable = []Operator{
	{Symbol: "+", Weight: 30},
	{Symbol: "-", Weight: 20},
	{Symbol: "*", Weight: 15},
	{Symbol: "<<", Weight: 8},
	{Symbol: ">>", Weight: 5},
	{Symbol: "|", Weight: 8},
	{Symbol: "&", Weight: 6},
	{Symbol: "^", Weight: 8},
}

// Operators returns a copy of the fixed weighted operator set.
func Operators() []Operator {
	out := make([]Operator, len(operatorTable))
	copy(out, operatorTable)
	return out
}

// PickOperator draws one operator from ops with probability proportional to
// its weight.
//
// Precondition: ops is non-empty and every weight is > 0.
func PickOperator(src Source, ops []Operator) Operator {
	return ops[pickIndex(src, ops)]
}

// WeightedOrder returns ops in a random order where heavier operators tend
// to come first (weighted sampling without replacement).
//
// Postcondition: The result is a permutation of ops.
func WeightedOrder(src Source, ops []Operator) []Operator {
	pool := make([]Operator, len(ops))
	copy(pool, ops)
	out := make([]Operator, 0, len(ops))
	for len(pool) > 0 {
		i := pickIndex(src, pool)
		out = append(out, pool[i])
		pool = append(pool[:i], pool[i+1:]...)
	}
	return out
}

func pickIndex(src Source, ops []Operator) int {
	total := 0
	for _, op := range ops {
		total += op.Weight
	}
	r := src.Intn(total)
	for i, op := range ops {
		if r < op.Weight {
			return i
		}
		r -= op.Weight
	}
	return len(ops) - 1
}
