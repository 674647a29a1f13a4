package expr

import "strconv"

// binaryJoiners combine fragments with disjoint bits; for such operands
// "|", "+" and "^" agree, so any grouping evaluates to the same value. They
// keep their operator-table weights, so "+" is drawn most often.
var binaryJoiners = selectOperators("|", "+", "^")

// selectOperators returns the named operators from the fixed set, in the
// order given.
func selectOperators(symbols ...string) []Operator {
	all := Operators()
	out := make([]Operator, 0, len(symbols))
	for _, sym := range symbols {
		for _, op := range all {
			if op.Symbol == sym {
				out = append(out, op)
			}
		}
	}
	return out
}

// binaryStrategy emits one fragment per set bit of target and then either
// nests adjacent fragments pairwise or chains them left to right.
func binaryStrategy(g *Generator, target int, t *DigitTable) (string, bool) {
	if target < 0 {
		return "", false
	}
	if target == 0 {
		return t.Lookup(0)
	}
	one, _ := t.Lookup(1)
	baseLit := strconv.Itoa(t.Base())

	var frags []string
	for k := 0; target>>k != 0; k++ {
		if target>>k&1 == 0 {
			continue
		}
		bit := one
		if k > 0 {
			kExpr, ok := t.Lookup(k)
			if !ok {
				return "", false
			}
			bit = "(" + one + "<<" + kExpr + ")"
		}
		forms := []string{bit}
		if t.Base()>>k&1 == 1 {
			forms = append(forms, "("+baseLit+"&"+bit+")")
		}
		frags = append(frags, forms[g.src.Intn(len(forms))])
	}

	if len(frags) == 1 {
		return frags[0], true
	}
	if g.src.Intn(2) == 0 {
		return nestFragments(g.src, frags), true
	}
	out := frags[0]
	for _, f := range frags[1:] {
		out += PickOperator(g.src, binaryJoiners).Symbol + f
	}
	return out, true
}

// nestFragments pairs neighbours under a joiner until one expression remains.
func nestFragments(src Source, frags []string) string {
	for len(frags) > 1 {
		next := make([]string, 0, (len(frags)+1)/2)
		for i := 0; i+1 < len(frags); i += 2 {
			op := PickOperator(src, binaryJoiners).Symbol
			next = append(next, "("+frags[i]+op+frags[i+1]+")")
		}
		if len(frags)%2 == 1 {
			next = append(next, frags[len(frags)-1])
		}
		frags = next
	}
	return frags[0]
}
