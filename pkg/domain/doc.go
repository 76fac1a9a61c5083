/*
Package domain contains the core domain models of the keypad calculator.

It defines the abstract keypad events, the operators, the calculator State
snapshot and the two-line Display produced from it. This package is kept pure
and free of I/O or persistence concerns, following Hexagonal Architecture
principles.

# Key Entities

  - Key: a tagged variant describing one key press (digit, dot, negate, clear, operator, equals).
  - Operator: one of the four arithmetic operations, or OpNone.
  - State: the snapshot of a calculation (entry buffer, pending operator, result, error kind).
  - Display: the "current entry" and "result" lines rendered for the host.
*/
package domain
