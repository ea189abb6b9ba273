// Package gc supplies the minimal tracing-collector surface a table
// implementation can be built against: a mutation token gating every
// write, an interior-mutability cell whose writer side requires that
// token, and a tracer callback the collector drives during a trace.
//
// This is deliberately small — a real embedding runtime would bring
// its own collector; this package stands in for one, playing the role
// of an arena of records plus stable handles, where write operations
// take a capability token instead of a bare mutable reference.
package gc

import (
	"sync/atomic"

	"github.com/go-kit/log"
	"github.com/go-kit/log/level"
	uberatomic "go.uber.org/atomic"
)

// Collector owns a set of Cells and hands out Mutation tokens that
// authorize writing to them. It tracks allocation and write-barrier
// counts the way friggdb/friggdb.go and cmd/tempo/app/app.go track
// lightweight operational counters with go.uber.org/atomic, and logs
// through github.com/go-kit/log the way pkg/util/log's logger does.
type Collector struct {
	logger log.Logger

	allocs  uberatomic.Int64
	writes  uberatomic.Int64
	tracing atomic.Bool
}

// New creates a Collector. A nil logger disables diagnostic logging.
func New(logger log.Logger) *Collector {
	if logger == nil {
		logger = log.NewNopLogger()
	}
	return &Collector{logger: logger}
}

// Mutate issues a Mutation token bound to this Collector. Every
// mutating Table operation takes one of these; it is the caller's
// capability to write through a Cell.
//
// Calling Mutate while a trace is in progress is a program bug and
// panics: a trace must see a stable object graph.
func (c *Collector) Mutate() *Mutation {
	if c.tracing.Load() {
		panic("gc: Mutate called while a trace is in progress")
	}
	return &Mutation{collector: c}
}

// Allocs reports how many Cells this Collector has allocated.
func (c *Collector) Allocs() int64 { return c.allocs.Load() }

// Writes reports how many write-barrier-gated mutations have gone
// through this Collector's Cells.
func (c *Collector) Writes() int64 { return c.writes.Load() }

func (c *Collector) recordAlloc() {
	c.allocs.Inc()
}

func (c *Collector) recordWrite() {
	c.writes.Inc()
	level.Debug(c.logger).Log("msg", "gc write barrier", "writes", c.writes.Load())
}

// Trace runs fn with tracing mode engaged: any attempt to obtain a
// Mutation token, or to write through a Cell owned by this Collector,
// panics for the duration. Traces must not allocate or mutate; this
// enforces the no-mutation rule at the API boundary instead of trusting
// callers to honor it. NewCell does not check for a trace in progress.
func (c *Collector) Trace(fn func(t *Tracer)) {
	if !c.tracing.CompareAndSwap(false, true) {
		panic("gc: nested or concurrent trace")
	}
	defer c.tracing.Store(false)
	level.Debug(c.logger).Log("msg", "gc trace begin")
	fn(&Tracer{collector: c})
	level.Debug(c.logger).Log("msg", "gc trace end")
}
