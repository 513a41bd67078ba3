package tui

import (
	"fmt"
	"io"

	"github.com/muesli/termenv"
)

// PrintBanner writes the ASCII art banner for halo to w.
func PrintBanner(w io.Writer) {
	p := termenv.ColorProfile()
	lines := []struct {
		text  string
		color string
	}{
		{" _           _       ", "#34d399"},
		{"| |__   __ _| | ___  ", "#2dd4bf"},
		{"| '_ \\ / _` | |/ _ \\ ", "#22d3ee"},
		{"| | | | (_| | | (_) |", "#38bdf8"},
		{"|_| |_|\\__,_|_|\\___/ ", "#60a5fa"},
	}

	fmt.Fprintln(w)
	for _, l := range lines {
		fmt.Fprintln(w, termenv.String(l.text).Foreground(p.Color(l.color)))
	}
	fmt.Fprintln(w)
}
