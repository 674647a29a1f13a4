package expr

import (
	"math"
	"math/bits"
	"strconv"
)

const (
	// mixedDepth caps recursion of the mixed strategy.
	mixedDepth = 5
	// opmixBound is the largest operand the operator-mix search tries.
	opmixBound = 20
)

type split int

const (
	splitSquare split = iota
	splitFactor
	splitPower
)

func mixedStrategy(g *Generator, target int, t *DigitTable) (string, bool) {
	return g.mixedExpr(target, t, mixedDepth)
}

// mixedExpr tries a perfect-square, a factor, and a power-of-two-plus-
// remainder split in random order, recursing on the parts. Once depth runs
// out it falls back to operator-mix and then decimal construction.
func (g *Generator) mixedExpr(n int, t *DigitTable, depth int) (string, bool) {
	if isDigitKey(n) {
		return t.Lookup(n)
	}
	if n < 0 {
		return "", false
	}
	if depth > 0 {
		order := []split{splitSquare, splitFactor, splitPower}
		for i := len(order) - 1; i > 0; i-- {
			j := g.src.Intn(i + 1)
			order[i], order[j] = order[j], order[i]
		}
		for _, s := range order {
			if out, ok := g.applySplit(s, n, t, depth); ok {
				return out, true
			}
		}
	}
	if out, ok := g.opmixExpr(n, t); ok {
		return out, true
	}
	return decimalExpr(n, t)
}

func (g *Generator) applySplit(s split, n int, t *DigitTable, depth int) (string, bool) {
	switch s {
	case splitSquare:
		r := int(math.Sqrt(float64(n)))
		if r*r != n {
			return "", false
		}
		root, ok := g.mixedExpr(r, t, depth-1)
		if !ok {
			return "", false
		}
		return "(" + root + "*" + root + ")", true
	case splitFactor:
		for _, d := range sqrtDivisors(n) {
			if n%d != 0 {
				continue
			}
			left, ok := g.mixedExpr(d, t, depth-1)
			if !ok {
				return "", false
			}
			right, ok := g.mixedExpr(n/d, t, depth-1)
			if !ok {
				return "", false
			}
			return "(" + left + "*" + right + ")", true
		}
		return "", false
	case splitPower:
		k := bits.Len(uint(n)) - 1
		one, _ := t.Lookup(1)
		kExpr, ok := t.Lookup(k)
		if !ok {
			return "", false
		}
		pow := "(" + one + "<<" + kExpr + ")"
		rem := n - 1<<k
		if rem == 0 {
			return pow, true
		}
		remExpr, ok := g.mixedExpr(rem, t, depth-1)
		if !ok {
			return "", false
		}
		return "(" + pow + "+" + remExpr + ")", true
	}
	return "", false
}

func opmixStrategy(g *Generator, target int, t *DigitTable) (string, bool) {
	return g.opmixExpr(target, t)
}

// opmixExpr searches for ((base o1 x) o2 y) == n with x, y in
// [0, opmixBound], trying operators in weighted random order.
func (g *Generator) opmixExpr(n int, t *DigitTable) (string, bool) {
	base := int64(t.Base())
	order := WeightedOrder(g.src, operatorTable)
	start := g.src.Intn(opmixBound + 1)
	for _, o1 := range order {
		for i := 0; i <= opmixBound; i++ {
			x := (start + i) % (opmixBound + 1)
			v, err := o1.Apply(base, int64(x))
			if err != nil {
				continue
			}
			for _, o2 := range order {
				for y := 0; y <= opmixBound; y++ {
					w, err := o2.Apply(v, int64(y))
					if err != nil || w != int64(n) {
						continue
					}
					xExpr, okX := t.Lookup(x)
					yExpr, okY := t.Lookup(y)
					if !okX || !okY {
						continue
					}
					return "((" + strconv.Itoa(t.Base()) + o1.Symbol + xExpr + ")" + o2.Symbol + yExpr + ")", true
				}
			}
		}
	}
	return "", false
}
