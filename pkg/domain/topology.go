package domain

// RowRange is the contiguous block of rows owned by one worker.
type RowRange struct {
	Start int `json:"start" yaml:"start"`
	Count int `json:"count" yaml:"count"`
}

// End returns the first row after the range.
func (r RowRange) End() int {
	return r.Start + r.Count
}

// NoRank marks an absent neighbour or a disabled aggregator.
const NoRank = -1

// Topology is the position of one rank in the linear worker chain.
// It is passed explicitly to every component instead of living in a global communicator.
type Topology struct {
	Rank    int `json:"rank"`
	Workers int `json:"workers"`
	// Aggregator is the rank collecting snapshots, or NoRank when aggregation is off.
	// It is never part of the simulation chain.
	Aggregator int `json:"aggregator"`
}

// NewTopology builds the topology for rank in a chain of workers.
// When aggregate is true the rank right after the last worker is reserved for the aggregator.
func NewTopology(rank, workers int, aggregate bool) Topology {
	t := Topology{Rank: rank, Workers: workers, Aggregator: NoRank}
	if aggregate {
		t.Aggregator = workers
	}
	return t
}

// Upper returns the rank above this one, or NoRank for rank 0.
func (t Topology) Upper() int {
	if t.Rank <= 0 || t.IsAggregator() {
		return NoRank
	}
	return t.Rank - 1
}

// Lower returns the rank below this one, or NoRank for the last worker.
func (t Topology) Lower() int {
	if t.Rank >= t.Workers-1 || t.IsAggregator() {
		return NoRank
	}
	return t.Rank + 1
}

// Size is the total number of ranks, aggregator included.
func (t Topology) Size() int {
	if t.Aggregator != NoRank {
		return t.Workers + 1
	}
	return t.Workers
}

// IsAggregator reports whether this rank is the reserved aggregator.
func (t Topology) IsAggregator() bool {
	return t.Aggregator != NoRank && t.Rank == t.Aggregator
}

// Aggregating reports whether a snapshot aggregator exists in this run.
func (t Topology) Aggregating() bool {
	return t.Aggregator != NoRank
}

// WithRank returns a copy of the topology positioned at another rank.
func (t Topology) WithRank(rank int) Topology {
	t.Rank = rank
	return t
}
