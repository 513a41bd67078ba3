package ports

import "context"

// ReleaseFunc gives a claimed rank back.
type ReleaseFunc func(ctx context.Context) error

// RankClaimer hands out ranks to processes that start without an explicit one.
// It lets independently started `halo worker` processes form a cluster.
type RankClaimer interface {
	// Claim blocks until one of the ranks 0..size-1 is free or the context is canceled.
	// The returned ReleaseFunc MUST be called on exit.
	Claim(ctx context.Context, size int) (int, ReleaseFunc, error)
}
