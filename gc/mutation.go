package gc

// Mutation is the capability required to write through a Cell. It is
// bound to the Collector that issued it; using it against a Cell
// owned by a different Collector is a program bug and panics.
type Mutation struct {
	collector *Collector
}

// Collector returns the Collector this token was issued by.
func (m *Mutation) Collector() *Collector { return m.collector }
