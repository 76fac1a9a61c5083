package runner

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/aretw0/keypad/internal/presentation/tui"
	"github.com/aretw0/keypad/pkg/domain"
	"golang.org/x/term"
)

// DefaultPrompt is printed before each line is read.
const DefaultPrompt = "> "

// TextHandler implements the standard text-based interface.
type TextHandler struct {
	Writer   io.Writer
	Renderer ContentRenderer
	Prompt   string

	printer    *tui.DisplayPrinter
	showPrompt bool
	pump       *linePump
}

// TextHandlerOption defines configuration for TextHandler.
type TextHandlerOption func(*TextHandler)

// WithTextHandlerRenderer configures the markdown renderer used for system messages.
func WithTextHandlerRenderer(renderer ContentRenderer) TextHandlerOption {
	return func(h *TextHandler) {
		h.Renderer = renderer
	}
}

// WithTextHandlerInput reads lines from r.
// Prompts are suppressed when r is a file that is not a terminal (piped input).
func WithTextHandlerInput(r io.Reader) TextHandlerOption {
	return func(h *TextHandler) {
		if f, ok := r.(*os.File); ok {
			h.showPrompt = term.IsTerminal(int(f.Fd()))
		}
		h.pump.start(r)
	}
}

// WithTextHandlerPrompt overrides DefaultPrompt.
func WithTextHandlerPrompt(prompt string) TextHandlerOption {
	return func(h *TextHandler) {
		h.Prompt = prompt
	}
}

// NewTextHandler creates a handler writing to w.
// Without WithTextHandlerInput, lines must be supplied through FeedInput.
func NewTextHandler(w io.Writer, opts ...TextHandlerOption) *TextHandler {
	if w == nil {
		w = os.Stdout
	}
	h := &TextHandler{
		Writer:     w,
		Prompt:     DefaultPrompt,
		printer:    tui.NewDisplayPrinter(w),
		showPrompt: true,
		pump:       newLinePump(),
	}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

// FeedInput injects a line as if it had been typed.
func (h *TextHandler) FeedInput(text string, err error) {
	h.pump.feed(text, err)
}

func (h *TextHandler) Output(ctx context.Context, sessionID string, display domain.Display) error {
	h.printer.Print(display)
	return nil
}

func (h *TextHandler) Input(ctx context.Context) (string, error) {
	for {
		if ctx.Err() != nil {
			return "", ctx.Err()
		}
		if h.showPrompt {
			fmt.Fprint(h.Writer, h.Prompt)
		}

		text, err := h.pump.next(ctx)
		if err != nil {
			return "", err
		}

		clean, err := SanitizeInput(text)
		if err != nil {
			fmt.Fprintf(h.Writer, "Error: %v. Please try again.\n", err)
			continue
		}
		return clean, nil
	}
}

func (h *TextHandler) SystemOutput(ctx context.Context, msg string) error {
	output := msg
	if h.Renderer != nil {
		if rendered, err := h.Renderer(msg); err == nil {
			output = rendered
		}
	}
	_, err := fmt.Fprintln(h.Writer, strings.TrimSpace(output))
	return err
}
