// Package decomp splits a grid into contiguous row blocks, one per worker.
package decomp

import "github.com/aretw0/halo/pkg/domain"

// Plan assigns each of workers ranks a contiguous row range of a grid totalHeight rows
// tall. Counts differ by at most one and the remainder goes to the lowest ranks.
// When workers > totalHeight the excess ranks receive zero rows; callers treat that as
// a configuration error.
func Plan(totalHeight, workers int) []domain.RowRange {
	if workers <= 0 {
		return nil
	}
	ranges := make([]domain.RowRange, workers)
	base, rem := totalHeight/workers, totalHeight%workers
	start := 0
	for i := range ranges {
		n := base
		if i < rem {
			n++
		}
		ranges[i] = domain.RowRange{Start: start, Count: n}
		start += n
	}
	return ranges
}

// Seams returns the first row of every block after the first.
func Seams(ranges []domain.RowRange) []int {
	if len(ranges) < 2 {
		return nil
	}
	seams := make([]int, 0, len(ranges)-1)
	for _, r := range ranges[1:] {
		seams = append(seams, r.Start)
	}
	return seams
}

// Slice copies the rows of r out of a row-major full grid of the given width.
func Slice(full []domain.Cell, width int, r domain.RowRange) []domain.Cell {
	out := make([]domain.Cell, width*r.Count)
	copy(out, full[r.Start*width:r.End()*width])
	return out
}

// Empty reports whether any range has no rows.
func Empty(ranges []domain.RowRange) bool {
	for _, r := range ranges {
		if r.Count == 0 {
			return true
		}
	}
	return false
}
