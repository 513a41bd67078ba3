package tui

import (
	"context"
	"fmt"
	"io"
	"strings"
	"sync"

	"github.com/aretw0/halo/pkg/domain"
	"github.com/aretw0/halo/pkg/ports"
	"github.com/muesli/termenv"
)

// BoardSink prints every snapshot as a board of characters.
// Rows that start a block are tinted so the decomposition stays visible.
type BoardSink struct {
	Out     io.Writer
	Profile termenv.Profile

	mu sync.Mutex
}

var _ ports.SnapshotSink = (*BoardSink)(nil)

// NewBoardSink detects the color profile of the terminal.
func NewBoardSink(out io.Writer) *BoardSink {
	return &BoardSink{Out: out, Profile: termenv.ColorProfile()}
}

// Save implements ports.SnapshotSink.
func (b *BoardSink) Save(ctx context.Context, snap *domain.Snapshot) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	_, err := io.WriteString(b.Out, RenderBoard(snap, b.Profile))
	return err
}

// RenderBoard draws alive cells as '#' and dead cells as '.', with a header line.
func RenderBoard(snap *domain.Snapshot, p termenv.Profile) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "generation %d (%d alive)\n", snap.Generation, snap.Alive())

	seam := p.Color("#f59e0b")
	row := make([]byte, snap.Width)
	for y := 0; y < snap.Height; y++ {
		for x, c := range snap.Row(y) {
			if c == domain.Alive {
				row[x] = '#'
			} else {
				row[x] = '.'
			}
		}
		line := termenv.String(string(row))
		if snap.IsSeam(y) && p != termenv.Ascii {
			line = line.Foreground(seam)
		}
		sb.WriteString(line.String())
		sb.WriteByte('\n')
	}
	return sb.String()
}
