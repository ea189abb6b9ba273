// Package table implements the associative table core: a single
// key->value mapping that splits storage between a dense array region
// and a hash map region, migrating entries between them as it grows.
package table

import (
	"unsafe"

	"github.com/embedlua/luatable/gc"
	"github.com/embedlua/luatable/value"
)

// InvalidTableKey is returned by Set when the key fails
// canonicalization. It is an alias of value.InvalidKeyError; its Kind
// field (value.IsNil or value.IsNaN) says which check failed.
type InvalidTableKey = value.InvalidKeyError

// Table is a GC-managed associative table. Reference identity is
// pointer equality: two Table handles are equal iff they wrap the
// same cell.
type Table struct {
	entries   *gc.Cell[*entries]
	metatable *gc.Cell[*Table]
}

// New creates an empty Table.
func New(mc *gc.Mutation) *Table {
	c := mc.Collector()
	return &Table{
		entries:   gc.NewCell(c, &entries{}),
		metatable: gc.NewCell[*Table](c, nil),
	}
}

// NewFromSlice builds a Table whose array part is pre-sized to hold
// vs, with vs[i] at user-visible key i+1 — the bulk-construction path
// table literals use instead of growing one Set at a time.
func NewFromSlice(mc *gc.Mutation, vs []value.Value) *Table {
	t := New(mc)
	arr := make([]value.Value, len(vs))
	copy(arr, vs)
	t.entries.Mutate(mc, func(e *entries) *entries {
		e.array = arr
		return e
	})
	return t
}

// NewFromEntries builds a Table by calling Set for each (key, value)
// pair in order. It does not pre-size the array or map parts; they grow
// as the pairs are inserted. The first invalid key aborts construction
// and its error is returned.
func NewFromEntries(mc *gc.Mutation, pairs []struct {
	Key   value.Value
	Value value.Value
}) (*Table, error) {
	t := New(mc)
	for _, p := range pairs {
		if _, err := t.Set(mc, p.Key, p.Value); err != nil {
			return nil, err
		}
	}
	return t, nil
}

// Get returns the value stored at key, or Nil if absent or if key is
// invalid. Get never fails.
func (t *Table) Get(key value.Value) value.Value {
	return t.entries.Get().get(key)
}

// Set stores value at key and returns the value previously there (or
// Nil). It fails with InvalidTableKey if key is Nil or NaN; the table
// is left unchanged on failure.
func (t *Table) Set(mc *gc.Mutation, key, val value.Value) (value.Value, error) {
	var old value.Value
	var setErr error
	t.entries.Mutate(mc, func(e *entries) *entries {
		old, setErr = e.set(key, val)
		return e
	})
	if setErr != nil {
		return value.Nil, setErr
	}
	return old, nil
}

// Length returns a border of the table. Any border is a correct
// answer; a table whose non-Nil integer keys form an unbroken 1..=n
// prefix has exactly one, n.
func (t *Table) Length() int64 {
	return t.entries.Get().length()
}

// Next is the stateless iteration primitive: Next(Nil) returns the
// first pair, and calling it again with the returned key walks the
// table one pair at a time.
func (t *Table) Next(key value.Value) NextValue {
	return t.entries.Get().next(key)
}

// Metatable returns the table's current metatable, if any. The core
// ascribes no semantics to it — it is a plain slot for callers to use.
func (t *Table) Metatable() *Table {
	return t.metatable.Get()
}

// SetMetatable replaces the metatable and returns the previous one.
func (t *Table) SetMetatable(mc *gc.Mutation, m *Table) *Table {
	return t.metatable.Set(mc, m)
}

// IsSequence reports whether the table's non-Nil integer keys already
// form an unbroken 1..=n prefix with nothing beyond — i.e. whether
// Length's answer is unambiguous. Callers that already know this can
// skip the length search entirely.
func (t *Table) IsSequence() bool {
	e := t.entries.Get()
	var count, maxKey int64
	for i, v := range e.array {
		if !v.IsNil() {
			count, maxKey = count+1, int64(i+1)
		}
	}
	e.m.walk(func(_ uint64, key, _ value.Value) bool {
		if i, ok := key.AsInteger(); ok && i >= 1 {
			count, maxKey = count+1, max(maxKey, i)
		}
		return false
	})
	// n distinct positive keys whose largest is n are exactly 1..=n.
	return count == maxKey
}

// Ptr implements value.Handle: Table identity is the address of its
// entries cell, so hashing a Table key hashes that address.
func (t *Table) Ptr() uintptr {
	return uintptr(unsafe.Pointer(t.entries))
}

// Trace visits every Value the table holds: the array part, every
// (key, value) pair in the map part, and the metatable reference.
func (t *Table) Trace(tr *gc.Tracer) {
	e := t.entries.Get()
	for _, v := range e.array {
		tr.Visit(v)
	}
	e.m.walk(func(_ uint64, key, val value.Value) bool {
		tr.Visit(key)
		tr.Visit(val)
		return false
	})
	if m := t.metatable.Get(); m != nil {
		tr.Visit(value.Table(m))
	}
}
