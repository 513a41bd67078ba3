package grid

import "github.com/aretw0/halo/pkg/domain"

// NeighborCount counts live cells in the Moore neighbourhood of column col in row curr.
// above and below are the adjacent rows, or nil when no row exists on that side.
// Columns outside [0, len(curr)) are absent: the grid has hard, non-toroidal edges.
func NeighborCount(col int, above, curr, below []domain.Cell) int {
	width := len(curr)
	n := 0
	for x := col - 1; x <= col+1; x++ {
		if x < 0 || x >= width {
			continue
		}
		if above != nil && above[x] == domain.Alive {
			n++
		}
		if x != col && curr[x] == domain.Alive {
			n++
		}
		if below != nil && below[x] == domain.Alive {
			n++
		}
	}
	return n
}

// Next applies B3/S23 to a single cell with n live neighbours.
func Next(c domain.Cell, n int) domain.Cell {
	if n == 3 || (n == 2 && c == domain.Alive) {
		return domain.Alive
	}
	return domain.Dead
}

// UpdateRow writes the next generation of curr into out. prev and next may be nil.
// out must not alias any input row.
func UpdateRow(prev, curr, next, out []domain.Cell) {
	for x := range curr {
		out[x] = Next(curr[x], NeighborCount(x, prev, curr, next))
	}
}

// NeighborCount counts live neighbours of (row, col). above and below replace the
// grid's own rows when row is the first or last row; inside the block they are ignored.
func (g *Grid) NeighborCount(row, col int, above, below []domain.Cell) int {
	if row > 0 {
		above = g.Row(row - 1)
	}
	if row < g.height-1 {
		below = g.Row(row + 1)
	}
	return NeighborCount(col, above, g.Row(row), below)
}
