// Package expr evaluates and generates the restricted integer arithmetic
// expressions used to obfuscate luck scores.
//
// The grammar is integer literals, parentheses, and the binary operators
// + - * / & | ^ << >>. Precedence, highest first: shifts, multiplicative,
// additive, bitwise. All operators are left associative and "/" is floor
// division.
package expr

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

var (
	// ErrMismatchedParens is returned when parentheses do not pair up.
	ErrMismatchedParens = errors.New("expr: mismatched parentheses")
	// ErrUnknownToken is returned for a token that is neither an operator nor an integer.
	ErrUnknownToken = errors.New("expr: unknown token")
	// ErrInsufficientOperands is returned when an operator has fewer than two operands.
	ErrInsufficientOperands = errors.New("expr: insufficient operands")
	// ErrTrailingOperands is returned when evaluation leaves more than one value.
	ErrTrailingOperands = errors.New("expr: trailing operands")
	// ErrEmptyExpression is returned for an expression with no tokens.
	ErrEmptyExpression = errors.New("expr: empty expression")
	// ErrDivisionByZero is returned for "/" with a zero right operand.
	ErrDivisionByZero = errors.New("expr: division by zero")
	// ErrNegativeShift is returned for a shift by a negative count.
	ErrNegativeShift = errors.New("expr: negative shift count")
)

var precedence = map[string]int{
	"<<": 5, ">>": 5,
	"*": 4, "/": 4,
	"+": 3, "-": 3,
	"&": 2, "|": 2, "^": 2,
}

// Tokenize splits expr into operator, parenthesis and literal tokens.
// "<<" and ">>" are single tokens.
//
// Postcondition: No returned token is empty or contains whitespace.
func Tokenize(expr string) []string {
	var b strings.Builder
	b.Grow(len(expr) * 2)
	for i := 0; i < len(expr); i++ {
		c := expr[i]
		switch c {
		case '<', '>':
			b.WriteByte(' ')
			b.WriteByte(c)
			if i+1 < len(expr) && expr[i+1] == c {
				b.WriteByte(c)
				i++
			}
			b.WriteByte(' ')
		case '+', '-', '*', '/', '(', ')', '&', '|', '^':
			b.WriteByte(' ')
			b.WriteByte(c)
			b.WriteByte(' ')
		default:
			b.WriteByte(c)
		}
	}
	return strings.Fields(b.String())
}

// ToRPN converts infix tokens to postfix order with the shunting-yard
// algorithm. Parentheses are consumed and never appear in the output.
//
// Postcondition: Returns the postfix token list or ErrMismatchedParens.
func ToRPN(tokens []string) ([]string, error) {
	out := make([]string, 0, len(tokens))
	ops := make([]string, 0, len(tokens)/2)
	for _, tok := range tokens {
		switch {
		case tok == "(":
			ops = append(ops, tok)
		case tok == ")":
			for len(ops) > 0 && ops[len(ops)-1] != "(" {
				out = append(out, ops[len(ops)-1])
				ops = ops[:len(ops)-1]
			}
			if len(ops) == 0 {
				return nil, fmt.Errorf("%w: unmatched ')'", ErrMismatchedParens)
			}
			ops = ops[:len(ops)-1]
		case isOperator(tok):
			p := precedence[tok]
			for len(ops) > 0 {
				top := ops[len(ops)-1]
				if top == "(" || precedence[top] < p {
					break
				}
				out = append(out, top)
				ops = ops[:len(ops)-1]
			}
			ops = append(ops, tok)
		default:
			out = append(out, tok)
		}
	}
	for len(ops) > 0 {
		top := ops[len(ops)-1]
		ops = ops[:len(ops)-1]
		if top == "(" {
			return nil, fmt.Errorf("%w: unmatched '('", ErrMismatchedParens)
		}
		out = append(out, top)
	}
	return out, nil
}

// EvalRPN evaluates a postfix token list. For each operator the right operand
// is popped first.
//
// Postcondition: Returns the single remaining stack value or a non-nil error.
func EvalRPN(rpn []string) (int64, error) {
	stack := make([]int64, 0, len(rpn))
	for _, tok := range rpn {
		if isOperator(tok) {
			if len(stack) < 2 {
				return 0, fmt.Errorf("%w for %q", ErrInsufficientOperands, tok)
			}
			b := stack[len(stack)-1]
			a := stack[len(stack)-2]
			stack = stack[:len(stack)-2]
			v, err := apply(tok, a, b)
			if err != nil {
				return 0, fmt.Errorf("applying %d %s %d: %w", a, tok, b, err)
			}
			stack = append(stack, v)
			continue
		}
		n, err := strconv.ParseInt(tok, 10, 64)
		if err != nil {
			return 0, fmt.Errorf("%w %q", ErrUnknownToken, tok)
		}
		stack = append(stack, n)
	}
	switch len(stack) {
	case 0:
		return 0, ErrEmptyExpression
	case 1:
		return stack[0], nil
	default:
		return 0, fmt.Errorf("%w: %d values left", ErrTrailingOperands, len(stack))
	}
}

// Evaluate tokenizes, converts and evaluates expr.
//
// Postcondition: Returns the integer value of expr or a non-nil error.
func Evaluate(expr string) (int64, error) {
	rpn, err := ToRPN(Tokenize(expr))
	if err != nil {
		return 0, err
	}
	return EvalRPN(rpn)
}

// MustEvaluate is Evaluate for self-generated input. A malformed expression
// here is a generator defect, so it panics instead of returning an error.
func MustEvaluate(expr string) int64 {
	v, err := Evaluate(expr)
	if err != nil {
		panic("expr: MustEvaluate failed for expression " + expr + ": " + err.Error())
	}
	return v
}

func isOperator(tok string) bool {
	_, ok := precedence[tok]
	return ok
}

func apply(op string, a, b int64) (int64, error) {
	switch op {
	case "+":
		return a + b, nil
	case "-":
		return a - b, nil
	case "*":
		return a * b, nil
	case "/":
		return floorDiv(a, b)
	case "<<":
		if b < 0 {
			return 0, ErrNegativeShift
		}
		return a << uint64(b), nil
	case ">>":
		if b < 0 {
			return 0, ErrNegativeShift
		}
		return a >> uint64(b), nil
	case "&":
		return a & b, nil
	case "|":
		return a | b, nil
	case "^":
		return a ^ b, nil
	}
	return 0, fmt.Errorf("%w %q", ErrUnknownToken, op)
}

func floorDiv(a, b int64) (int64, error) {
	if b == 0 {
		return 0, ErrDivisionByZero
	}
	q := a / b
	if a%b != 0 && (a < 0) != (b < 0) {
		q--
	}
	return q, nil
}
