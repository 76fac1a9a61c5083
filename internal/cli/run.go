package cli

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/aretw0/keypad"
	"github.com/aretw0/keypad/internal/config"
	"github.com/aretw0/keypad/internal/presentation/tui"
	"github.com/aretw0/keypad/pkg/domain"
	"github.com/aretw0/keypad/pkg/observability"
	"github.com/aretw0/keypad/pkg/runner"
)

// RunOptions contains the configuration for the run command.
type RunOptions struct {
	Config    config.Config
	Debug     bool
	JSON      bool
	SessionID string
	Fresh     bool

	// Stdin and Stdout default to the process streams.
	Stdin  io.Reader
	Stdout io.Writer
}

// RunSession runs the interactive loop until exit, EOF or an interrupt.
// With a SessionID, the calculation is loaded from and saved to the configured store.
func RunSession(ctx context.Context, opts RunOptions) error {
	logger, err := NewLogger(opts.Config, opts.Debug)
	if err != nil {
		return err
	}
	stdin, stdout := opts.Stdin, opts.Stdout
	if stdin == nil {
		stdin = os.Stdin
	}
	if stdout == nil {
		stdout = os.Stdout
	}

	engineOpts := []keypad.Option{keypad.WithLogger(logger)}
	if opts.Debug {
		engineOpts = append(engineOpts, keypad.WithLifecycleHooks(observability.LogHooks(logger)))
	}
	engine := keypad.New(engineOpts...)

	runnerOpts := []runner.Option{
		runner.WithEngine(engine),
		runner.WithLogger(logger),
	}

	if opts.SessionID != "" {
		backend, err := OpenBackend(ctx, opts.Config.Store, logger)
		if err != nil {
			return err
		}
		defer backend.Close()

		if opts.Fresh {
			if err := backend.Store.Delete(ctx, opts.SessionID); err != nil {
				return fmt.Errorf("failed to reset session %s: %w", opts.SessionID, err)
			}
		}
		runnerOpts = append(runnerOpts, runner.WithStore(backend.Store), runner.WithSessionID(opts.SessionID))
	}

	if opts.JSON {
		runnerOpts = append(runnerOpts, runner.WithInputHandler(
			runner.NewJSONHandler(stdout, runner.WithJSONHandlerInput(stdin)),
		))
	} else {
		tui.PrintBanner(stdout, keypad.Version)
		if opts.SessionID != "" {
			printSystemMessage(stdout, "Session '%s' active. Type 'help' for keys, 'exit' to leave.", opts.SessionID)
		}
		runnerOpts = append(runnerOpts, runner.WithInputHandler(
			runner.NewTextHandler(stdout,
				runner.WithTextHandlerInput(stdin),
				runner.WithTextHandlerRenderer(tui.NewRenderer()),
			),
		))
	}

	sigCtx := NewSignalContext(ctx)
	defer sigCtx.Cancel()

	final, runErr := runner.NewRunner(runnerOpts...).Run(sigCtx)
	if !opts.JSON {
		logCompletion(stdout, final, runErr, sigCtx.Signal())
	}
	return handleExecutionError(runErr)
}

func logCompletion(w io.Writer, final *domain.State, err error, sig os.Signal) {
	if final == nil {
		return
	}
	result := domain.Render(final).Result
	switch {
	case err == nil:
		printSystemMessage(w, "Bye. Last result: %s", orDash(result))
	case isInterrupted(err) && sig != nil:
		fmt.Fprintln(w)
		printSystemMessage(w, "Interrupted (%v). Last result: %s", sig, orDash(result))
	}
}

func orDash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}
