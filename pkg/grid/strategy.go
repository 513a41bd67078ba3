package grid

import (
	"runtime"

	"golang.org/x/sync/errgroup"
)

// UpdateStrategy schedules the computation of interior rows [from, to).
// Interior rows are order-independent: each writes its own scratch row and only reads
// the current buffer.
type UpdateStrategy interface {
	Interior(g *Grid, from, to int)
	Name() string
}

type sequential struct{}

// Sequential computes interior rows in a single loop on the calling goroutine.
func Sequential() UpdateStrategy { return sequential{} }

func (sequential) Interior(g *Grid, from, to int) { g.updateRows(from, to) }

func (sequential) Name() string { return "sequential" }

type parallel struct {
	threads int
}

// Parallel splits interior rows into contiguous bands computed by up to threads
// goroutines. threads <= 0 uses GOMAXPROCS.
func Parallel(threads int) UpdateStrategy {
	if threads <= 0 {
		threads = runtime.GOMAXPROCS(0)
	}
	return parallel{threads: threads}
}

func (p parallel) Name() string { return "parallel" }

func (p parallel) Interior(g *Grid, from, to int) {
	rows := to - from
	bands := min(p.threads, rows)
	if bands <= 1 {
		g.updateRows(from, to)
		return
	}

	var eg errgroup.Group
	base, rem := rows/bands, rows%bands
	start := from
	for i := 0; i < bands; i++ {
		n := base
		if i < rem {
			n++
		}
		lo, hi := start, start+n
		eg.Go(func() error {
			g.updateRows(lo, hi)
			return nil
		})
		start = hi
	}
	_ = eg.Wait()
}

// StrategyByName maps a configuration value to a strategy.
func StrategyByName(name string, threads int) (UpdateStrategy, bool) {
	switch name {
	case "", "sequential":
		return Sequential(), true
	case "parallel":
		return Parallel(threads), true
	}
	return nil, false
}
