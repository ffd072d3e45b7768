// Package book implements a single-instrument limit order book with
// price-time priority matching. It maintains two red-black trees for the
// bid and ask sides, a flat id lookup for O(1) cancel, and per-price
// aggregates that keep fill-or-kill feasibility checks and depth snapshots
// off the order queues.
//
// All operations are serialized through one mutex; a background sweeper
// cancels GoodForDay orders at the configured daily cutoff.
package book
