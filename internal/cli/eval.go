package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/aretw0/keypad"
	"github.com/aretw0/keypad/pkg/runner"
)

// Eval applies a key line to a fresh calculator and prints the display.
// In JSON mode the state and display are written as one object.
// A calculation ending in ERROR is reported as an error after printing.
func Eval(ctx context.Context, w io.Writer, line string, jsonOut bool) error {
	engine := keypad.New()
	state, err := engine.PressLine(ctx, engine.Start(ctx, ""), line)
	if err != nil {
		return err
	}
	resp := runner.Render(engine, state)

	if jsonOut {
		if err := json.NewEncoder(w).Encode(resp); err != nil {
			return err
		}
	} else {
		out := resp.Display.Result
		if strings.TrimSpace(resp.Display.Current) != "" && !resp.Display.Error {
			out = resp.Display.Current
		}
		fmt.Fprintln(w, out)
	}

	if state.InError() {
		return fmt.Errorf("calculation failed: %s", state.Err)
	}
	return nil
}
