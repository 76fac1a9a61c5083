// Package evaluator implements the stateless arithmetic of the keypad.
package evaluator

import (
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/aretw0/keypad/pkg/domain"
)

// Evaluate applies op to left and right and formats the result with FormatNumber.
// Division by zero (including negative zero) fails with domain.ErrDivisionByZero.
func Evaluate(left, right float64, op domain.Operator) (string, error) {
	var v float64
	switch op {
	case domain.OpAdd:
		v = left + right
	case domain.OpSubtract:
		v = left - right
	case domain.OpMultiply:
		v = left * right
	case domain.OpDivide:
		if right == 0 {
			return "", domain.ErrDivisionByZero
		}
		v = left / right
	default:
		return "", fmt.Errorf("%w: %q", domain.ErrUnknownOperator, string(op))
	}
	return FormatNumber(v), nil
}

// Apply parses two operand strings and evaluates them.
func Apply(left, right string, op domain.Operator) (string, error) {
	l, err := ParseOperand(left)
	if err != nil {
		return "", fmt.Errorf("left operand: %w", err)
	}
	r, err := ParseOperand(right)
	if err != nil {
		return "", fmt.Errorf("right operand: %w", err)
	}
	return Evaluate(l, r, op)
}

// ParseOperand reads an entry or result string back as a number.
// It accepts everything FormatNumber produces as well as partial entries like "5." and ".5".
func ParseOperand(s string) (float64, error) {
	if s == "" || strings.Trim(s, ".-") == "" {
		return 0, fmt.Errorf("%w: %q", domain.ErrIncompleteOperand, s)
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		if errors.Is(err, strconv.ErrRange) {
			return v, nil
		}
		return 0, fmt.Errorf("%w: %q", domain.ErrMalformedOperand, s)
	}
	return v, nil
}

// FormatNumber renders v the way the keypad has always shown doubles:
// integral values keep a ".0" suffix, magnitudes in [1e-3, 1e7) are written
// in plain decimal and everything else in scientific form ("1.0E7", "1.5E-4").
// Digits are the shortest that round-trip.
func FormatNumber(v float64) string {
	switch {
	case math.IsNaN(v):
		return "NaN"
	case math.IsInf(v, 1):
		return "Infinity"
	case math.IsInf(v, -1):
		return "-Infinity"
	case v == 0:
		if math.Signbit(v) {
			return "-0.0"
		}
		return "0.0"
	}

	abs := math.Abs(v)
	if abs >= 1e-3 && abs < 1e7 {
		s := strconv.FormatFloat(v, 'f', -1, 64)
		if !strings.Contains(s, ".") {
			s += ".0"
		}
		return s
	}

	s := strconv.FormatFloat(v, 'E', -1, 64)
	mantissa, exp, _ := strings.Cut(s, "E")
	if !strings.Contains(mantissa, ".") {
		mantissa += ".0"
	}
	e, err := strconv.Atoi(exp)
	if err != nil {
		return s
	}
	return mantissa + "E" + strconv.Itoa(e)
}
