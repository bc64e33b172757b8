// Package shuffleplan implements an adaptive post-shuffle partition planner
// for a distributed dataflow engine. Upstream map stages report per-partition
// byte statistics; the planner coalesces contiguous pre-shuffle partitions
// into a smaller number of post-shuffle partitions sized around a configured
// byte budget, or — for a two-input join where one side is small enough —
// emits a full-fanout broadcast plan instead. The planner only produces
// PostShufflePlan values; it never moves bytes itself.
package shuffleplan

import "github.com/zoobzio/clockz"

// Clock provides time operations for deterministic testing.
type Clock = clockz.Clock

// Timer represents a single event timer.
type Timer = clockz.Timer

// Ticker delivers ticks at intervals.
type Ticker = clockz.Ticker

// RealClock is the default Clock, backed by the standard library's time package.
var RealClock Clock = clockz.RealClock
