/*
Package runner implements the interactive loop and I/O orchestration for the keypad engine.

It sits between the stateless engine and a user: input lines are read through a
pluggable IOHandler, parsed into keys, applied to the session state and the
resulting display is written back. When a StateStore is configured the state is
saved after every line, so a session can be resumed later.

# Key Components

  - Runner: the read, press, display loop.
  - TextHandler: prompt and display panel for terminals.
  - JSONHandler: newline-delimited JSON for scripts and other processes.

# Usage

	r := runner.NewRunner(
		runner.WithEngine(keypad.New()),
		runner.WithSessionID("desk"),
		runner.WithStore(file.New("")),
		runner.WithInputHandler(runner.NewTextHandler(os.Stdout, runner.WithTextHandlerInput(os.Stdin))),
	)

	if _, err := r.Run(ctx); err != nil {
		log.Fatal(err)
	}
*/
package runner
