/*
Package exchange implements the halo exchange strategies used by the worker loop.

Each generation a worker sends its current top row to the rank above and its bottom
row to the rank below, and receives their facing rows as ghost rows. Rank 0 has no
upper neighbour and the last worker has no lower one; those ghosts are nil.

Two interchangeable strategies satisfy ports.Exchanger:

  - Sync performs a combined send+receive with the upper neighbour and then with the
    lower one. Start returns only when both are done.
  - Async starts the two sends and two receives concurrently and returns at once, so
    the caller can compute interior rows while the rows are in flight. Pending.Wait
    blocks until all four operations have completed.

Both produce bit-identical generations. A failed operation is a hard error wrapping
domain.ErrExchange; the generation is never computed from stale ghost rows.
*/
package exchange
