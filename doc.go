/*
Package halo runs Conway's Game of Life on a square grid split into horizontal
blocks, one block per worker rank.

Each generation, every worker swaps its first and last rows with the neighbours
above and below (the halo exchange), computes its interior rows while that
exchange may still be in flight, and then computes its two edge rows from the
received ghost rows. The grid has hard edges: outside the grid every cell is dead.
Splitting the grid never changes the result; every decomposition produces the
same generations as a single undivided grid.

An optional aggregator rank collects the blocks after every generation and saves
a full-grid snapshot, e.g. as PGM images.

# Usage

	sim, err := halo.New(64, 100, domain.PatternCross,
		halo.WithWorkers(4),
		halo.WithStrategy(exchange.StrategyAsync),
		halo.WithSnapshots(pgm.New("out")),
	)
	if err != nil {
		log.Fatal(err)
	}
	report, err := sim.Run(ctx)

Run executes every rank as a goroutine on an in-memory transport. To spread the
ranks over OS processes, build the same Simulation in each process and call
RunRank with a networked transport such as pkg/adapters/redis; `halo launch`
does exactly that.

# Packages

  - pkg/grid: the double-buffered block and the update rule.
  - pkg/decomp: the row partition.
  - pkg/exchange: the sync and async halo exchange strategies.
  - pkg/worker: the per-rank generation loop.
  - pkg/aggregator: snapshot assembly.
  - pkg/adapters: memory and redis transports, snapshot stores, PGM files, HTTP.
*/
package halo
