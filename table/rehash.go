package table

import (
	"math/bits"

	"github.com/embedlua/luatable/value"
)

// bin classifies an array-eligible key by the position of the highest
// set bit of its 0-based array index (highest_bit(0)=0,
// highest_bit(1)=1, …): this is exactly floor(log2(idx))+1 for idx >=
// 1, and 0 for idx == 0, which is what bits.Len64 computes. Binning on
// the 0-based index (not the 1-based key) matches both spec.md's
// worked convention and original_source/src/table.rs's nums[] binning,
// which bins array.iter().enumerate() positions, not keys.
func bin(idx int64) int {
	return bits.Len64(uint64(idx))
}

// rebalance is only called once both the array and map parts have no
// room for the incoming key; it grows whichever part benefits most,
// then returns so the caller re-attempts the original insert.
func (e *entries) rebalance(incoming value.Value) {
	counts := map[int]int{}
	total := 0

	for i, v := range e.array {
		if !v.IsNil() {
			total++
			counts[bin(int64(i))]++
		}
	}
	e.m.walk(func(_ uint64, key, _ value.Value) bool {
		if idx, ok := value.ArrayIndex(key); ok {
			total++
			counts[bin(int64(idx))]++
		}
		return false // counting pass only, never removes
	})
	if idx, ok := value.ArrayIndex(incoming); ok {
		total++
		counts[bin(int64(idx))]++
	}

	optimal := optimalArraySize(counts, total)

	if optimal > len(e.array) {
		e.growArrayTo(optimal)
		return
	}
	e.m.grow()
}

// optimalArraySize finds the largest power of two 2^k such that
// strictly more than half of its slots would be occupied by the
// array-eligible entries counted in counts/total.
func optimalArraySize(counts map[int]int, total int) int {
	running := 0
	optimal := 0
	for k := 0; ; k++ {
		running += counts[k]
		size := 1 << uint(k)
		if running > size/2 {
			optimal = size
		}
		if size/2 >= total {
			break
		}
		if k >= 62 {
			// overflow computing an array capacity is a program bug, not
			// a recoverable condition.
			panic("table: array size computation overflowed")
		}
	}
	return optimal
}

// growArrayTo grows the array part to at least newLen, filling new
// slots with Nil, then sweeps the map for entries that now fit in the
// array and moves them over.
func (e *entries) growArrayTo(newLen int) {
	grown := make([]value.Value, newLen)
	copy(grown, e.array)
	e.array = grown

	e.m.walk(func(_ uint64, key, val value.Value) bool {
		idx, isArr := value.ArrayIndex(key)
		if isArr && idx < len(e.array) {
			e.array[idx] = val
			return true // remove from the map, it now lives in the array
		}
		return false
	})
}
