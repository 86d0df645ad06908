package tui

import (
	"fmt"
	"io"

	"github.com/muesli/termenv"
)

// PrintBanner writes the startup banner with the version and the managed file.
func PrintBanner(w io.Writer, version, path string) {
	out := termenv.NewOutput(w)
	lines := []struct {
		text  string
		color string
	}{
		{"  _                 _           _", "#38bdf8"},
		{" | |_ __ _ __ _ __| |_ __  (_)_ __", "#22d3ee"},
		{" |  _/ _` / _` / _` | '  \\ | | '  \\", "#2dd4bf"},
		{"  \\__\\__, \\__,_\\__,_|_|_|_||_|_||_|", "#34d399"},
		{"     |___/", "#4ade80"},
	}

	fmt.Fprintln(w)
	for _, l := range lines {
		fmt.Fprintln(w, out.String(l.text).Foreground(out.Color(l.color)))
	}
	fmt.Fprintln(w, out.String(fmt.Sprintf("  %s  %s", version, path)).Faint())
	fmt.Fprintln(w)
}
