package table

import "github.com/embedlua/luatable/value"

// NextKind discriminates the three outcomes of next().
type NextKind byte

const (
	// NextFound: the pair immediately following the supplied key.
	NextFound NextKind = iota
	// NextLast: a present key (or Nil) was supplied and no successor
	// exists.
	NextLast
	// NextNotFound: the supplied key is not present in the table.
	// Safe but the resulting position is unspecified — callers must
	// not rely on it beyond "does not crash."
	NextNotFound
)

// NextValue is the result of Table.Next.
type NextValue struct {
	Kind  NextKind
	Key   value.Value
	Value value.Value
}

// next walks the table one pair at a time. Traversal order is the
// array part in ascending index (skipping Nils), then the map part
// in internal bucket order.
func (e *entries) next(key value.Value) NextValue {
	if key.IsNil() {
		return e.nextFromArray(0)
	}

	ck, ok := canonicalizeForRead(key)
	if !ok {
		return NextValue{Kind: NextNotFound}
	}

	if idx, isArr := value.ArrayIndex(ck); isArr && idx < len(e.array) {
		return e.nextFromArray(idx + 1)
	}

	topIdx, b, slotIdx, found := e.m.locate(value.Hash(ck), ck)
	if !found {
		return NextValue{Kind: NextNotFound}
	}
	if k, v, ok := e.m.nextAfter(topIdx, b, slotIdx); ok {
		return NextValue{Kind: NextFound, Key: k, Value: v}
	}
	return NextValue{Kind: NextLast}
}

// nextFromArray walks array[from:] for the first non-Nil entry; if
// the array is exhausted it falls through to the start of the map.
func (e *entries) nextFromArray(from int) NextValue {
	for i := from; i < len(e.array); i++ {
		if !e.array[i].IsNil() {
			return NextValue{Kind: NextFound, Key: value.Integer(int64(i + 1)), Value: e.array[i]}
		}
	}
	if k, v, ok := e.m.first(); ok {
		return NextValue{Kind: NextFound, Key: k, Value: v}
	}
	return NextValue{Kind: NextLast}
}
