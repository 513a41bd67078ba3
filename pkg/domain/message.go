package domain

import "fmt"

// MessageKind separates the independent message streams of a run.
type MessageKind string

const (
	// KindHalo carries a boundary row to a neighbouring worker.
	KindHalo MessageKind = "halo"
	// KindBlock carries a worker's whole block to the aggregator.
	KindBlock MessageKind = "block"
	// KindBarrier carries synchronization tokens.
	KindBarrier MessageKind = "barrier"
)

// Tag correlates a message with its stream and generation.
// Every message is addressed by (from, to, tag) and each address is used once per run.
type Tag struct {
	Kind       MessageKind `json:"kind"`
	Generation int         `json:"generation"`
}

// HaloTag is the tag of the boundary rows exchanged before computing generation gen.
func HaloTag(gen int) Tag {
	return Tag{Kind: KindHalo, Generation: gen}
}

// BlockTag is the tag of the block a worker forwards after computing generation gen.
func BlockTag(gen int) Tag {
	return Tag{Kind: KindBlock, Generation: gen}
}

// BarrierTag names the n-th barrier of a run.
func BarrierTag(n int) Tag {
	return Tag{Kind: KindBarrier, Generation: n}
}

func (t Tag) String() string {
	return fmt.Sprintf("%s:%d", t.Kind, t.Generation)
}
