package table

import "github.com/embedlua/luatable/value"

// length searches for a border: any i >= 0 such that (i == 0 or
// t[i] != Nil) and t[i+1] == Nil.
func (e *entries) length() int64 {
	n := len(e.array)

	if n > 0 && e.array[n-1].IsNil() {
		return int64(binarySearchArrayBorder(e.array))
	}

	if e.m.count == 0 {
		return int64(n)
	}

	// Array is dense (or empty) and the map is non-empty: extend the
	// search into the map, doubling the upper bound until a hole is
	// found, then binary search within it.
	max := int64(n) + 1
	for e.mapHas(max) {
		if max > maxInt64/2 {
			// doubling would overflow; cap at the max int64 instead.
			max = maxInt64
			break
		}
		max *= 2
	}
	if max == maxInt64 && e.mapHas(max) {
		return maxInt64
	}
	return binarySearchMapBorder(e, int64(n), max)
}

const maxInt64 = int64(1)<<63 - 1

// mapHas reports whether integer key i is present (non-Nil) anywhere
// in the table — used only for i beyond the array, so only the map
// part is consulted.
func (e *entries) mapHas(i int64) bool {
	k := value.Integer(i)
	_, ok := e.m.get(value.Hash(k), k)
	return ok
}

// binarySearchArrayBorder finds a border within an array known to end
// in Nil. Invariant: arr[max-1] is Nil, arr[min-1] is non-Nil or
// min == 0.
func binarySearchArrayBorder(arr []value.Value) int {
	min, max := 0, len(arr)
	for max-min > 1 {
		mid := (min + max) / 2
		if arr[mid-1].IsNil() {
			max = mid
		} else {
			min = mid
		}
	}
	return min
}

// binarySearchMapBorder finds a border in [lo, hi] where t[lo] is
// non-Nil (or lo == 0) and t[hi] is Nil, using map membership as the
// is-non-nil predicate beyond the array.
func binarySearchMapBorder(e *entries, lo, hi int64) int64 {
	for hi-lo > 1 {
		mid := lo + (hi-lo)/2
		if e.present(mid) {
			lo = mid
		} else {
			hi = mid
		}
	}
	return lo
}

// present reports whether integer key i (1-based) holds a non-Nil
// value, consulting the array part when i is still within it.
func (e *entries) present(i int64) bool {
	if idx, ok := value.ArrayIndex(value.Integer(i)); ok && idx < len(e.array) {
		return !e.array[idx].IsNil()
	}
	return e.mapHas(i)
}
