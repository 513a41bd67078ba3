/*
Package domain contains the core data model shared by every halo component.

It is kept free of I/O and transport concerns so that the grid kernel, the exchange
strategies and the adapters agree on a single vocabulary.

# Key Entities

  - Cell and Pattern: binary cell state and the deterministic initial shapes.
  - RowRange and Topology: the block owned by a rank and its neighbours in the chain.
  - Tag: correlation of a message with its stream (halo, block, barrier) and generation.
  - Snapshot: a full-grid picture with seam rows, handed to persistence.
  - LifecycleHooks: observability callbacks fired by workers and the aggregator.
*/
package domain
