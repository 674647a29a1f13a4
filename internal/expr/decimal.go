package expr

import "math"

const (
	// factorDepth caps recursion of the factor strategies.
	factorDepth = 4
	// maxCorrection is the largest +/- neighbour offset the factor strategies try.
	maxCorrection = 3
)

// decimalStrategy writes target as tens*10 + ones through the digit table.
// When the ones digit is 5 or more, "(next decade) - (10 - ones)" is used if
// it is strictly shorter.
func decimalStrategy(_ *Generator, target int, t *DigitTable) (string, bool) {
	return decimalExpr(target, t)
}

func decimalExpr(n int, t *DigitTable) (string, bool) {
	if isDigitKey(n) {
		return t.Lookup(n)
	}
	if n < 0 || n > MaxTarget {
		return "", false
	}
	tens, ones := n/10, n%10
	ten, _ := t.Lookup(10)
	tensExpr, _ := t.Lookup(tens)

	out := "(" + tensExpr + "*" + ten + ")"
	if ones != 0 {
		onesExpr, _ := t.Lookup(ones)
		out = "(" + out + "+" + onesExpr + ")"
	}
	if ones >= 5 {
		upExpr, _ := t.Lookup(tens + 1)
		diffExpr, _ := t.Lookup(10 - ones)
		up := "((" + upExpr + "*" + ten + ")-" + diffExpr + ")"
		if len(up) < len(out) {
			out = up
		}
	}
	return out, true
}

func factorStrategy(_ *Generator, target int, t *DigitTable) (string, bool) {
	return factorExpr(target, t, descendingDivisors, factorDepth)
}

func factorSqrtStrategy(_ *Generator, target int, t *DigitTable) (string, bool) {
	return factorExpr(target, t, sqrtDivisors, factorDepth)
}

// descendingDivisors tries the single-digit divisors, largest first.
func descendingDivisors(int) []int {
	return []int{9, 8, 7, 6, 5, 4, 3, 2}
}

// sqrtDivisors tries 2..floor(sqrt(n)), smallest first.
func sqrtDivisors(n int) []int {
	limit := int(math.Sqrt(float64(n)))
	if limit < 2 {
		return nil
	}
	out := make([]int, 0, limit-1)
	for d := 2; d <= limit; d++ {
		out = append(out, d)
	}
	return out
}

// factorExpr writes n as d * q where q is itself expressible, recursing on q.
// Without an exact split it falls back to a decomposable neighbour n-k or
// n+k corrected by k in [1, maxCorrection].
func factorExpr(n int, t *DigitTable, divisors func(int) []int, depth int) (string, bool) {
	if isDigitKey(n) {
		return t.Lookup(n)
	}
	if depth == 0 || n < 0 {
		return "", false
	}
	for _, d := range divisors(n) {
		if n%d != 0 || n/d < 2 {
			continue
		}
		dExpr, ok := t.Lookup(d)
		if !ok {
			continue
		}
		if q, ok := factorExpr(n/d, t, divisors, depth-1); ok {
			return "(" + dExpr + "*" + q + ")", true
		}
	}
	for k := 1; k <= maxCorrection; k++ {
		kExpr, _ := t.Lookup(k)
		if n-k >= 0 {
			if q, ok := factorExpr(n-k, t, divisors, depth-1); ok {
				return "(" + q + "+" + kExpr + ")", true
			}
		}
		if q, ok := factorExpr(n+k, t, divisors, depth-1); ok {
			return "(" + q + "-" + kExpr + ")", true
		}
	}
	return "", false
}
