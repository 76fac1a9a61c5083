package domain

import "errors"

// Calculation errors. All of them put the machine into the error state.
var (
	// ErrInvalidSecondDecimalPoint is raised when a second '.' is typed into the same entry.
	ErrInvalidSecondDecimalPoint = errors.New("second decimal point in entry")

	// ErrEntryTooLong is raised when the entry grows beyond MaxEntryLength characters.
	ErrEntryTooLong = errors.New("entry too long")

	// ErrIncompleteOperand is raised when an operator is applied to an empty, "." or "-" operand.
	ErrIncompleteOperand = errors.New("incomplete operand")

	// ErrMalformedOperand is raised when an operand cannot be read as a number (e.g. "--5").
	ErrMalformedOperand = errors.New("malformed operand")

	// ErrDivisionByZero is raised when dividing by zero.
	ErrDivisionByZero = errors.New("division by zero")
)

// ErrUnknownOperator is returned when an operator symbol or name is not recognized.
var ErrUnknownOperator = errors.New("unknown operator")

// ErrUnknownKey is returned when a key token cannot be parsed.
var ErrUnknownKey = errors.New("unknown key")

// ErrSessionNotFound is returned when a session ID cannot be found in the store.
var ErrSessionNotFound = errors.New("session not found")

// ErrorKind is the serializable name of a calculation error.
type ErrorKind string

const (
	ErrKindNone                      ErrorKind = ""
	ErrKindInvalidSecondDecimalPoint ErrorKind = "invalid_second_decimal_point"
	ErrKindEntryTooLong              ErrorKind = "entry_too_long"
	ErrKindIncompleteOperand         ErrorKind = "incomplete_operand"
	ErrKindMalformedOperand          ErrorKind = "malformed_operand"
	ErrKindDivisionByZero            ErrorKind = "division_by_zero"
	ErrKindUnknown                   ErrorKind = "unknown"
)

// KindOf maps a calculation error to its ErrorKind.
func KindOf(err error) ErrorKind {
	switch {
	case err == nil:
		return ErrKindNone
	case errors.Is(err, ErrInvalidSecondDecimalPoint):
		return ErrKindInvalidSecondDecimalPoint
	case errors.Is(err, ErrEntryTooLong):
		return ErrKindEntryTooLong
	case errors.Is(err, ErrIncompleteOperand):
		return ErrKindIncompleteOperand
	case errors.Is(err, ErrMalformedOperand):
		return ErrKindMalformedOperand
	case errors.Is(err, ErrDivisionByZero):
		return ErrKindDivisionByZero
	}
	return ErrKindUnknown
}
