package tui

import (
	"fmt"
	"os"
	"strings"

	"github.com/aretw0/halo"
	"github.com/charmbracelet/glamour"
	"golang.org/x/term"
)

// NewRenderer returns a function that renders markdown using glamour.
func NewRenderer() func(string) (string, error) {
	r, err := glamour.NewTermRenderer(
		glamour.WithAutoStyle(), // Automatically detect light/dark background
	)
	if err != nil {
		return func(markdown string) (string, error) { return markdown, nil }
	}

	return func(markdown string) (string, error) {
		return r.Render(markdown)
	}
}

// IsTerminal reports whether f is attached to a terminal.
func IsTerminal(f *os.File) bool {
	return term.IsTerminal(int(f.Fd()))
}

// ReportMarkdown formats a run report as a markdown table.
func ReportMarkdown(rep *halo.Report) string {
	mode := fmt.Sprintf("%d workers, %s exchange", rep.Workers, rep.Strategy)
	if rep.Serial {
		mode = "serial"
	}

	var b strings.Builder
	b.WriteString("# Run report\n\n")
	b.WriteString("| | |\n|---|---|\n")
	fmt.Fprintf(&b, "| board | %d x %d |\n", rep.BoardSize, rep.BoardSize)
	fmt.Fprintf(&b, "| generations | %d |\n", rep.Iterations)
	fmt.Fprintf(&b, "| mode | %s |\n", mode)
	fmt.Fprintf(&b, "| snapshots | %t |\n", rep.Snapshots)
	fmt.Fprintf(&b, "| alive cells | %d |\n", rep.Alive)
	fmt.Fprintf(&b, "| elapsed | %s |\n", rep.Duration)
	return b.String()
}
