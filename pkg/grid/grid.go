package grid

import (
	"strings"

	"github.com/aretw0/halo/pkg/domain"
)

// Grid is a width x height block of cells owned by a single worker.
//
// Cells live in an arena of two equally sized buffers. One of them is current; the
// other is the scratch buffer the next generation is written into. Swapping toggles
// the current index and never reallocates.
type Grid struct {
	width    int
	height   int
	buffers  [2][]domain.Cell
	current  int
	strategy UpdateStrategy
}

// Option configures a Grid.
type Option func(*Grid)

// WithStrategy selects how interior rows are scheduled.
func WithStrategy(s UpdateStrategy) Option {
	return func(g *Grid) {
		if s != nil {
			g.strategy = s
		}
	}
}

// New creates an all-dead grid.
func New(width, height int, opts ...Option) *Grid {
	g := &Grid{
		width:    width,
		height:   height,
		strategy: Sequential(),
	}
	g.buffers[0] = make([]domain.Cell, width*height)
	g.buffers[1] = make([]domain.Cell, width*height)
	for _, opt := range opts {
		opt(g)
	}
	return g
}

// FromCells creates a grid holding a copy of cells, which must be a multiple of width long.
func FromCells(width int, cells []domain.Cell, opts ...Option) *Grid {
	height := 0
	if width > 0 {
		height = len(cells) / width
	}
	g := New(width, height, opts...)
	copy(g.buffers[0], cells)
	return g
}

// Width returns the number of columns.
func (g *Grid) Width() int { return g.width }

// Height returns the number of rows.
func (g *Grid) Height() int { return g.height }

// Row returns row y of the current generation. The slice aliases grid storage and is
// only valid until the next swap.
func (g *Grid) Row(y int) []domain.Cell {
	return g.buffers[g.current][y*g.width : (y+1)*g.width]
}

// Top returns the first row, or nil for an empty grid.
func (g *Grid) Top() []domain.Cell {
	if g.height == 0 {
		return nil
	}
	return g.Row(0)
}

// Bottom returns the last row, or nil for an empty grid.
func (g *Grid) Bottom() []domain.Cell {
	if g.height == 0 {
		return nil
	}
	return g.Row(g.height - 1)
}

// Cells returns a copy of the current generation in row-major order.
func (g *Grid) Cells() []domain.Cell {
	return append([]domain.Cell(nil), g.buffers[g.current]...)
}

// View returns the current generation without copying.
func (g *Grid) View() []domain.Cell {
	return g.buffers[g.current]
}

// At returns the cell at column x, row y.
func (g *Grid) At(x, y int) domain.Cell {
	return g.buffers[g.current][y*g.width+x]
}

// Set writes the cell at column x, row y of the current generation.
func (g *Grid) Set(x, y int, c domain.Cell) {
	g.buffers[g.current][y*g.width+x] = c
}

// Alive counts live cells in the current generation.
func (g *Grid) Alive() int {
	n := 0
	for _, c := range g.buffers[g.current] {
		if c == domain.Alive {
			n++
		}
	}
	return n
}

// Init clears the grid and paints pattern. Placement uses width/2 and height/2.
func (g *Grid) Init(pattern domain.Pattern) {
	cur := g.buffers[g.current]
	clear(cur)

	midCol := g.width / 2
	midRow := g.height / 2
	vertical := func() {
		for y := 0; y < g.height; y++ {
			g.Set(midCol, y, domain.Alive)
		}
	}
	horizontal := func(y int) {
		for x := 0; x < g.width; x++ {
			g.Set(x, y, domain.Alive)
		}
	}

	if g.width == 0 || g.height == 0 {
		return
	}

	switch pattern {
	case domain.PatternLine:
		vertical()
	case domain.PatternTShape:
		vertical()
		horizontal(0)
	case domain.PatternCross:
		horizontal(midRow)
		vertical()
	}
}

// Advance computes the next generation using upper and lower as the rows just outside
// the block (nil when there is no neighbour) and swaps it in.
func (g *Grid) Advance(upper, lower []domain.Cell) {
	g.AdvanceInterior()
	g.AdvanceEdges(upper, lower)
}

// AdvanceInterior computes rows 1..height-2 into the scratch buffer. It reads only the
// current buffer, so it may run while the boundary rows are being sent.
func (g *Grid) AdvanceInterior() {
	if g.height < 3 {
		return
	}
	g.strategy.Interior(g, 1, g.height-1)
}

// AdvanceEdges computes the first and last rows into the scratch buffer and swaps.
// It must follow AdvanceInterior for the same generation.
func (g *Grid) AdvanceEdges(upper, lower []domain.Cell) {
	switch g.height {
	case 0:
		return
	case 1:
		g.updateInto(0, upper, g.Row(0), lower)
	default:
		g.updateInto(0, upper, g.Row(0), g.Row(1))
		last := g.height - 1
		g.updateInto(last, g.Row(last-1), g.Row(last), lower)
	}
	g.swap()
}

// updateRows computes rows [from, to) from the current buffer into scratch.
func (g *Grid) updateRows(from, to int) {
	for y := from; y < to; y++ {
		g.updateInto(y, g.Row(y-1), g.Row(y), g.Row(y+1))
	}
}

func (g *Grid) updateInto(y int, prev, curr, next []domain.Cell) {
	scratch := g.buffers[1-g.current]
	UpdateRow(prev, curr, next, scratch[y*g.width:(y+1)*g.width])
}

func (g *Grid) swap() {
	g.current = 1 - g.current
}

// String renders the grid with '#' for live and '.' for dead cells, one line per row.
func (g *Grid) String() string {
	var b strings.Builder
	b.Grow((g.width + 1) * g.height)
	for y := 0; y < g.height; y++ {
		for _, c := range g.Row(y) {
			if c == domain.Alive {
				b.WriteByte('#')
			} else {
				b.WriteByte('.')
			}
		}
		b.WriteByte('\n')
	}
	return b.String()
}
