package domain

import "fmt"

// Operator is a pending arithmetic operation.
type Operator string

const (
	OpNone     Operator = ""
	OpAdd      Operator = "+"
	OpSubtract Operator = "-"
	OpMultiply Operator = "*"
	OpDivide   Operator = "/"
)

// Valid reports whether op is one of the four arithmetic operators.
func (op Operator) Valid() bool {
	switch op {
	case OpAdd, OpSubtract, OpMultiply, OpDivide:
		return true
	}
	return false
}

// Name returns a stable lowercase label, used for metrics and logs.
func (op Operator) Name() string {
	switch op {
	case OpAdd:
		return "add"
	case OpSubtract:
		return "subtract"
	case OpMultiply:
		return "multiply"
	case OpDivide:
		return "divide"
	case OpNone:
		return "none"
	}
	return "unknown"
}

// ParseOperator accepts a symbol ("+", "-", "*", "x", "/") or a name ("add", "div", ...).
func ParseOperator(s string) (Operator, error) {
	switch s {
	case "+", "add", "plus":
		return OpAdd, nil
	case "-", "sub", "subtract", "minus":
		return OpSubtract, nil
	case "*", "x", "×", "mul", "multiply", "times":
		return OpMultiply, nil
	case "/", "÷", "div", "divide":
		return OpDivide, nil
	}
	return OpNone, fmt.Errorf("%w: %q", ErrUnknownOperator, s)
}
