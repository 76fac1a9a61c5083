package tui

import (
	"fmt"
	"io"
	"strings"

	"github.com/aretw0/keypad/pkg/domain"
	"github.com/muesli/termenv"
)

// displayWidth fits the longest entry plus a sign.
const displayWidth = domain.MaxEntryLength + 5

// DisplayPrinter draws the two display lines as a small right-aligned panel.
type DisplayPrinter struct {
	out *termenv.Output
}

// NewDisplayPrinter creates a printer that styles according to w's color profile.
// Plain writers (files, buffers) receive unstyled text.
func NewDisplayPrinter(w io.Writer) *DisplayPrinter {
	return &DisplayPrinter{out: termenv.NewOutput(w)}
}

// Print writes the panel.
func (p *DisplayPrinter) Print(d domain.Display) {
	border := "+" + strings.Repeat("-", displayWidth+2) + "+"
	fmt.Fprintln(p.out, border)
	fmt.Fprintln(p.out, "| "+p.style(pad(d.Result), d.Error, true)+" |")
	fmt.Fprintln(p.out, "| "+p.style(pad(d.Current), d.Error, false)+" |")
	fmt.Fprintln(p.out, border)
}

func (p *DisplayPrinter) style(s string, isErr, emphasize bool) string {
	st := p.out.String(s)
	switch {
	case isErr:
		st = st.Foreground(p.out.Color("#f87171")).Bold()
	case emphasize:
		st = st.Bold()
	default:
		st = st.Faint()
	}
	return st.String()
}

func pad(s string) string {
	if len(s) >= displayWidth {
		return s
	}
	return strings.Repeat(" ", displayWidth-len(s)) + s
}
