package table

import "github.com/embedlua/luatable/value"

// entries is the storage behind a Table: the dense array region plus
// the open-addressed map region. It holds no GC-related state itself
// — Table wraps it in a gc.Cell so writes are routed through the
// mutation-token API.
type entries struct {
	array []value.Value
	m     openMap
}

func canonicalizeForRead(key value.Value) (value.Value, bool) {
	ck, err := value.Canonicalize(key)
	if err != nil {
		return value.Nil, false
	}
	return ck, true
}

// get never fails: an invalid key is simply treated as absent.
func (e *entries) get(key value.Value) value.Value {
	ck, ok := canonicalizeForRead(key)
	if !ok {
		return value.Nil
	}
	if idx, isArr := value.ArrayIndex(ck); isArr && idx < len(e.array) {
		return e.array[idx]
	}
	v, _ := e.m.get(value.Hash(ck), ck)
	return v
}

// set takes the array fast path when possible, otherwise inserts into
// (or deletes from, for a Nil value) the map, rebalancing and
// retrying when the map has no spare room.
func (e *entries) set(key, val value.Value) (old value.Value, err error) {
	ck, err := value.Canonicalize(key)
	if err != nil {
		return value.Nil, err
	}

	for {
		if idx, isArr := value.ArrayIndex(ck); isArr && idx < len(e.array) {
			old = e.array[idx]
			e.array[idx] = val
			return old, nil
		}

		h := value.Hash(ck)
		if val.IsNil() {
			old, _ = e.m.delete(h, ck)
			return old, nil
		}
		if e.m.hasSpareCapacityFor(1) {
			old, _ = e.m.set(h, ck, val)
			return old, nil
		}
		e.rebalance(ck)
		// re-attempt: the rebalance may have grown the array so that ck
		// now lands in the array fast path, or grown the map so it has
		// spare capacity.
	}
}
