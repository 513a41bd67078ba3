package domain

import "errors"

// ErrInvalidConfig is returned when a run configuration cannot be executed.
var ErrInvalidConfig = errors.New("invalid configuration")

// ErrInsufficientProcesses is returned when fewer ranks exist than the run mode needs.
var ErrInsufficientProcesses = errors.New("insufficient processes")

// ErrUnknownPattern is returned when an initial pattern name or code is not recognized.
var ErrUnknownPattern = errors.New("unknown init pattern")

// ErrExchange is returned when a halo exchange with a neighbour fails.
var ErrExchange = errors.New("halo exchange failed")

// ErrAggregation is returned when the aggregator cannot assemble a generation.
var ErrAggregation = errors.New("snapshot aggregation failed")

// ErrPayloadSize is returned when a received message has an unexpected length.
var ErrPayloadSize = errors.New("unexpected payload size")

// ErrTransportClosed is returned when a transport is used after Close.
var ErrTransportClosed = errors.New("transport closed")

// ErrSnapshotNotFound is returned when a snapshot store has no entry for a generation.
var ErrSnapshotNotFound = errors.New("snapshot not found")
