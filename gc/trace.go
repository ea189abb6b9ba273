package gc

import "github.com/embedlua/luatable/value"

// Tracer is handed to a Traceable's Trace method during a Collector
// trace. A Trace method must not allocate, must not mutate, and must
// be deterministic; it reports each contained Value through Visit.
type Tracer struct {
	collector *Collector
	visited   []value.Value
}

// Visit records v as reachable from the traced root by appending it to
// the tracer's list (see Visited).
func (t *Tracer) Visit(v value.Value) {
	t.visited = append(t.visited, v)
}

// Visited returns every Value recorded during the trace. Intended for
// tests and diagnostic tooling, not for production tracing (a real
// collector would mark-and-sweep here instead of accumulating).
func (t *Tracer) Visited() []value.Value { return t.visited }

// Traceable is implemented by GC-managed cells that expose their
// contained Values for tracing.
type Traceable interface {
	Trace(t *Tracer)
}
