package table

import "github.com/embedlua/luatable/value"

// The map part is a bucketed open hash table: each top-level slot is
// a fixed-size inline array of entries chained to overflow buckets on
// overflow, selected by hash & (len(table)-1). This shape — and the
// bucket order it gives next() for free — is grounded on the
// Starlark-derived hash tables in the retrieval pack
// (other_examples/…canonical-starlark…hashtable.go,
// other_examples/…infastin-toy…hashtable.go), minus their insertion-order
// linked list: traversal here is contractually bucket order, not
// insertion order, so there is no list to maintain.
const bucketSize = 8

// loadFactor bounds how full the bucket array may get (measured
// against entry count, not slot count) before hasSpareCapacityFor
// reports false and the caller must grow. Mirrors the "just a guess"
// load factor used by the Starlark hashtable this is grounded on.
const loadFactor = 6.5

type slot struct {
	used bool
	hash uint64
	key  value.Value
	val  value.Value
}

type bucket struct {
	entries [bucketSize]slot
	next    *bucket
}

type openMap struct {
	table []bucket
	count int
}

func overloaded(elems int, numBuckets int) bool {
	return elems >= bucketSize && float64(elems) >= loadFactor*float64(numBuckets)
}

// hasSpareCapacityFor reports whether `additional` more entries can be
// inserted without needing to grow first.
func (m *openMap) hasSpareCapacityFor(additional int) bool {
	if m.table == nil {
		return true
	}
	return !overloaded(m.count+additional, len(m.table))
}

func (m *openMap) ensureInit() {
	if m.table == nil {
		m.table = make([]bucket, 1)
	}
}

func (m *openMap) topIndex(hash uint64) int {
	return int(hash & uint64(len(m.table)-1))
}

// find locates the slot holding (hash, key) in its chain, if present.
func (m *openMap) find(hash uint64, key value.Value) *slot {
	if m.table == nil {
		return nil
	}
	for b := &m.table[m.topIndex(hash)]; b != nil; b = b.next {
		for i := range b.entries {
			s := &b.entries[i]
			if s.used && s.hash == hash && s.key.Equal(key) {
				return s
			}
		}
	}
	return nil
}

func (m *openMap) get(hash uint64, key value.Value) (value.Value, bool) {
	if s := m.find(hash, key); s != nil {
		return s.val, true
	}
	return value.Nil, false
}

// set inserts or overwrites (hash, key, val). Callers must have
// already confirmed spare capacity (or just grown) — set never grows
// the table itself.
func (m *openMap) set(hash uint64, key, val value.Value) (old value.Value, existed bool) {
	m.ensureInit()

	var free *slot
	for b := &m.table[m.topIndex(hash)]; ; b = b.next {
		for i := range b.entries {
			s := &b.entries[i]
			if s.used {
				if s.hash == hash && s.key.Equal(key) {
					old = s.val
					s.val = val
					return old, true
				}
				continue
			}
			if free == nil {
				free = s
			}
		}
		if b.next == nil {
			if free == nil {
				b.next = &bucket{}
				free = &b.next.entries[0]
			}
			break
		}
	}

	free.used = true
	free.hash = hash
	free.key = key
	free.val = val
	m.count++
	return value.Nil, false
}

func (m *openMap) delete(hash uint64, key value.Value) (old value.Value, existed bool) {
	s := m.find(hash, key)
	if s == nil {
		return value.Nil, false
	}
	old = s.val
	*s = slot{}
	m.count--
	return old, true
}

// grow doubles the bucket count (or allocates the first bucket) and
// rehashes every entry into the new table.
func (m *openMap) grow() {
	newLen := 1
	if m.table != nil {
		newLen = len(m.table) * 2
	}
	old := m.table
	m.table = make([]bucket, newLen)
	m.count = 0 // set counts each entry again as it is re-inserted
	for i := range old {
		for b := &old[i]; b != nil; b = b.next {
			for _, s := range b.entries {
				if s.used {
					m.set(s.hash, s.key, s.val)
				}
			}
		}
	}
}

// walk visits every occupied slot in bucket order. If visit returns
// true the slot is removed. Used by rehash's array/map sweep.
func (m *openMap) walk(visit func(hash uint64, key, val value.Value) (remove bool)) {
	for i := range m.table {
		for b := &m.table[i]; b != nil; b = b.next {
			for j := range b.entries {
				s := &b.entries[j]
				if s.used && visit(s.hash, s.key, s.val) {
					*s = slot{}
					m.count--
				}
			}
		}
	}
}

// first returns the first occupied slot in bucket order, or ok=false
// if the map is empty. Used as the "before index 0" start position for
// next() once the array part is exhausted.
func (m *openMap) first() (key, val value.Value, ok bool) {
	return m.nextAfter(-1, nil, 0)
}

// nextAfter returns the first occupied slot strictly after
// (top-level index topIdx, chained bucket afterBucket, slot index
// within that bucket afterSlot) in bucket order. Passing topIdx=-1 starts from the
// very beginning.
func (m *openMap) nextAfter(topIdx int, afterBucket *bucket, afterSlot int) (key, val value.Value, ok bool) {
	if len(m.table) == 0 {
		return value.Nil, value.Nil, false
	}
	start := topIdx
	if start < 0 {
		start = 0
	}
	for i := start; i < len(m.table); i++ {
		reached := !(i == topIdx && topIdx >= 0)
		for b := &m.table[i]; b != nil; b = b.next {
			from := 0
			if !reached {
				if b == afterBucket {
					from = afterSlot + 1
					reached = true
				} else {
					from = bucketSize
				}
			}
			for j := from; j < bucketSize; j++ {
				s := &b.entries[j]
				if s.used {
					return s.key, s.val, true
				}
			}
		}
	}
	return value.Nil, value.Nil, false
}

// locate finds the (topIdx, bucket, slot index) position of (hash,
// key) within the map, for resuming iteration from it.
func (m *openMap) locate(hash uint64, key value.Value) (topIdx int, b *bucket, slotIdx int, found bool) {
	if m.table == nil {
		return 0, nil, 0, false
	}
	topIdx = m.topIndex(hash)
	for cur := &m.table[topIdx]; cur != nil; cur = cur.next {
		for i := range cur.entries {
			s := &cur.entries[i]
			if s.used && s.hash == hash && s.key.Equal(key) {
				return topIdx, cur, i, true
			}
		}
	}
	return 0, nil, 0, false
}
