/*
Package keypad is a four-function calculator engine driven by abstract key presses.

It turns a sequence of keys (digits, decimal point, sign, operators, equals,
clear) into a running calculation and two display lines: the entry being typed
and the current result. Operations chain strictly left to right with a single
pending operator; invalid input puts the calculator in a sticky "ERROR" state
that only Clear leaves.

# Concept

The Engine is stateless. The calculation lives in a domain.State snapshot that
the host ("GUI", CLI, HTTP server, MCP agent) owns and hands back on every call.
This Hexagonal Architecture lets the same core back a REPL, a JSON API or a
session store such as Redis.

# Usage

	eng := keypad.New()
	ctx := context.Background()

	state := eng.Start(ctx, "session-1")
	state, err := eng.PressLine(ctx, state, "12 + 3 =")
	if err != nil {
		log.Fatal(err)
	}

	d := eng.Display(state)
	fmt.Println(d.Result) // 15
*/
package keypad
