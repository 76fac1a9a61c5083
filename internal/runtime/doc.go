// Package runtime holds the keypad input state machine.
//
// The Machine accumulates digits into an entry, captures operands when an
// operator is pressed and evaluates the pending operation left to right.
// Any invalid input moves it into a sticky error state that only Clear leaves.
package runtime
