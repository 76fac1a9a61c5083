package domain

import (
	"fmt"
	"strings"
)

// KeyKind classifies a key press.
type KeyKind string

const (
	KeyDigit    KeyKind = "digit"
	KeyDot      KeyKind = "dot"
	KeyNegate   KeyKind = "negate"
	KeyClear    KeyKind = "clear"
	KeyOperator KeyKind = "operator"
	KeyEquals   KeyKind = "equals"
)

// Key is a single abstract keypad event.
// Digit is only meaningful for KeyDigit and Op only for KeyOperator.
type Key struct {
	Kind  KeyKind  `json:"kind"`
	Digit byte     `json:"digit,omitempty"`
	Op    Operator `json:"op,omitempty"`
}

// Digit returns the key for digit d (0-9).
func Digit(d byte) Key { return Key{Kind: KeyDigit, Digit: d} }

// Dot returns the decimal point key.
func Dot() Key { return Key{Kind: KeyDot} }

// Negate returns the sign key.
func Negate() Key { return Key{Kind: KeyNegate} }

// Clear returns the reset key.
func Clear() Key { return Key{Kind: KeyClear} }

// Op returns the key for an arithmetic operator.
func Op(op Operator) Key { return Key{Kind: KeyOperator, Op: op} }

// Equals returns the "=" key.
func Equals() Key { return Key{Kind: KeyEquals} }

// Validate checks that the variant fields agree with the kind.
func (k Key) Validate() error {
	switch k.Kind {
	case KeyDigit:
		if k.Digit > 9 {
			return fmt.Errorf("%w: digit %d", ErrUnknownKey, k.Digit)
		}
	case KeyOperator:
		if !k.Op.Valid() {
			return fmt.Errorf("%w: operator %q", ErrUnknownKey, string(k.Op))
		}
	case KeyDot, KeyNegate, KeyClear, KeyEquals:
	default:
		return fmt.Errorf("%w: kind %q", ErrUnknownKey, string(k.Kind))
	}
	return nil
}

// String returns the canonical token of the key, the inverse of ParseKey.
func (k Key) String() string {
	switch k.Kind {
	case KeyDigit:
		return string('0' + k.Digit)
	case KeyDot:
		return "."
	case KeyNegate:
		return "neg"
	case KeyClear:
		return "clear"
	case KeyOperator:
		return string(k.Op)
	case KeyEquals:
		return "="
	}
	return "?"
}

// ParseKey converts a single token into a Key.
//
// Accepted tokens: "0".."9", ".", "+", "-", "*", "x", "/", "=",
// "neg"/"n"/"±" for negate and "c"/"clear"/"ac" for clear.
func ParseKey(token string) (Key, error) {
	t := strings.ToLower(strings.TrimSpace(token))
	if len(t) == 1 && t[0] >= '0' && t[0] <= '9' {
		return Digit(t[0] - '0'), nil
	}
	switch t {
	case ".", ",":
		return Dot(), nil
	case "=", "equals", "enter":
		return Equals(), nil
	case "n", "neg", "negate", "±", "+/-":
		return Negate(), nil
	case "c", "clear", "ac", "clr":
		return Clear(), nil
	}
	if op, err := ParseOperator(t); err == nil {
		return Op(op), nil
	}
	return Key{}, fmt.Errorf("%w: %q", ErrUnknownKey, token)
}

// ParseKeys converts a line of input into keys.
// Tokens are separated by whitespace; a token that is not a key on its own
// is expanded character by character, so "12+3=" yields five keys.
func ParseKeys(line string) ([]Key, error) {
	var keys []Key
	for _, field := range strings.Fields(line) {
		if k, err := ParseKey(field); err == nil {
			keys = append(keys, k)
			continue
		}
		for _, r := range field {
			k, err := ParseKey(string(r))
			if err != nil {
				return nil, fmt.Errorf("%w: %q in %q", ErrUnknownKey, string(r), field)
			}
			keys = append(keys, k)
		}
	}
	return keys, nil
}

// FormatKeys joins keys into a space separated token line.
func FormatKeys(keys []Key) string {
	tokens := make([]string, len(keys))
	for i, k := range keys {
		tokens[i] = k.String()
	}
	return strings.Join(tokens, " ")
}
