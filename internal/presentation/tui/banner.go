package tui

import (
	"fmt"
	"io"
	"strings"

	"github.com/muesli/termenv"
)

// PrintBanner writes the keypad banner with the version underneath.
func PrintBanner(w io.Writer, version string) {
	out := termenv.NewOutput(w)
	lines := []struct {
		text  string
		color string
	}{
		{" _                            _ ", "#34d399"},
		{"| | _____ _   _ _ __   __ _  __| |", "#2dd4bf"},
		{"| |/ / _ \\ | | | '_ \\ / _` |/ _` |", "#22d3ee"},
		{"|   <  __/ |_| | |_) | (_| | (_| |", "#38bdf8"},
		{"|_|\\_\\___|\\__, | .__/ \\__,_|\\__,_|", "#60a5fa"},
		{"          |___/|_|", "#818cf8"},
	}

	fmt.Fprintln(w)
	for _, l := range lines {
		fmt.Fprintln(w, out.String(l.text).Foreground(out.Color(l.color)))
	}
	fmt.Fprintln(w, out.String("  v"+strings.TrimSpace(version)).Faint())
	fmt.Fprintln(w)
}
