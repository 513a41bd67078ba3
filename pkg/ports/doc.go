/*
Package ports defines the driven ports (interfaces) of the halo simulation.

These interfaces decouple the worker loop and the aggregator from concrete transports
and persistence, so the same orchestration runs on goroutines in one process or on
separate processes talking through Redis.

# Key Interfaces

  - Transport: point-to-point, tag-matched message passing between ranks.
  - Exchanger / Pending: a halo exchange strategy, blocking or overlapped.
  - SnapshotSink / SnapshotStore: persistence of full-grid snapshots.
  - RankClaimer: rank assignment for processes started without one.
*/
package ports
