package table

import (
	"math"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/embedlua/luatable/gc"
	"github.com/embedlua/luatable/value"
)

func newTestTable(t *testing.T) (*Table, *gc.Collector) {
	t.Helper()
	c := gc.New(nil)
	return New(c.Mutate()), c
}

func collectPairs(tbl *Table) (keys, vals []value.Value) {
	Iterate(tbl, func(k, v value.Value) bool {
		keys = append(keys, k)
		vals = append(vals, v)
		return true
	})
	return keys, vals
}

// property 1: round-trip
func TestRoundTrip(t *testing.T) {
	tbl, c := newTestTable(t)
	mc := c.Mutate()
	_, err := tbl.Set(mc, value.Integer(7), value.String("seven"))
	require.NoError(t, err)
	require.True(t, tbl.Get(value.Integer(7)).Equal(value.String("seven")))
}

// property 2: delete
func TestDelete(t *testing.T) {
	tbl, c := newTestTable(t)
	mc := c.Mutate()
	_, err := tbl.Set(mc, value.Integer(1), value.String("a"))
	require.NoError(t, err)
	_, err = tbl.Set(mc, value.Integer(1), value.Nil)
	require.NoError(t, err)
	require.True(t, tbl.Get(value.Integer(1)).IsNil())
	require.Equal(t, int64(0), tbl.Length())
}

// property 3: canonicalization
func TestCanonicalizationAtTheBoundary(t *testing.T) {
	tbl, c := newTestTable(t)
	mc := c.Mutate()
	_, err := tbl.Set(mc, value.Integer(3), value.String("x"))
	require.NoError(t, err)
	require.True(t, tbl.Get(value.Number(3.0)).Equal(value.String("x")))

	_, err = tbl.Set(mc, value.Number(0.0), value.String("z"))
	require.NoError(t, err)
	require.True(t, tbl.Get(value.Number(math.Copysign(0, -1))).Equal(value.String("z")))
}

// property 4: key validation
func TestKeyValidation(t *testing.T) {
	tbl, c := newTestTable(t)
	mc := c.Mutate()

	_, err := tbl.Set(mc, value.Nil, value.Integer(1))
	var ike *InvalidTableKey
	require.ErrorAs(t, err, &ike)
	require.Equal(t, value.IsNil, ike.Kind)

	_, err = tbl.Set(mc, value.Number(math.NaN()), value.Integer(1))
	require.ErrorAs(t, err, &ike)
	require.Equal(t, value.IsNaN, ike.Kind)

	require.Equal(t, int64(0), tbl.Length())
}

// property 5: sequence length
func TestSequenceLength(t *testing.T) {
	tbl, c := newTestTable(t)
	mc := c.Mutate()
	for i := int64(1); i <= 20; i++ {
		_, err := tbl.Set(mc, value.Integer(i), value.Integer(i*10))
		require.NoError(t, err)
	}
	require.Equal(t, int64(20), tbl.Length())
	require.True(t, tbl.IsSequence())
}

// property 6: border correctness, exercised over a table with a gap
func TestBorderCorrectness(t *testing.T) {
	tbl, c := newTestTable(t)
	mc := c.Mutate()
	_, err := tbl.Set(mc, value.Integer(1), value.String("a"))
	require.NoError(t, err)
	_, err = tbl.Set(mc, value.Integer(3), value.String("c"))
	require.NoError(t, err)

	n := tbl.Length()
	require.True(t, n == 0 || !tbl.Get(value.Integer(n)).IsNil())
	require.True(t, tbl.Get(value.Integer(n+1)).IsNil())
}

// property 7: iteration coverage
func TestIterationCoverage(t *testing.T) {
	tbl, c := newTestTable(t)
	mc := c.Mutate()
	want := map[int64]bool{}
	for i := int64(1); i <= 50; i++ {
		_, err := tbl.Set(mc, value.Integer(i), value.Integer(i))
		require.NoError(t, err)
		want[i] = true
	}

	seen := map[int64]bool{}
	key := value.Nil
	for {
		n := tbl.Next(key)
		if n.Kind != NextFound {
			require.Equal(t, NextLast, n.Kind)
			break
		}
		i, ok := n.Key.AsInteger()
		require.True(t, ok)
		require.False(t, seen[i], "key %d visited twice", i)
		seen[i] = true
		key = n.Key
	}
	require.Equal(t, want, seen)
}

// property 8: iteration stability under value-only updates
func TestIterationStableUnderValueOnlyUpdates(t *testing.T) {
	tbl, c := newTestTable(t)
	mc := c.Mutate()
	_, err := tbl.Set(mc, value.Integer(1), value.String("a"))
	require.NoError(t, err)
	_, err = tbl.Set(mc, value.String("k"), value.Integer(9))
	require.NoError(t, err)
	_, err = tbl.Set(mc, value.Integer(2), value.String("b"))
	require.NoError(t, err)

	before, _ := collectPairs(tbl)

	_, err = tbl.Set(mc, value.Integer(1), value.String("A"))
	require.NoError(t, err)
	_, err = tbl.Set(mc, value.String("k"), value.Integer(90))
	require.NoError(t, err)

	after, _ := collectPairs(tbl)
	require.Equal(t, len(before), len(after))
	for i := range before {
		require.True(t, before[i].Equal(after[i]), "key order changed at position %d", i)
	}
}

// S1
func TestScenarioDenseInsertOrder(t *testing.T) {
	tbl, c := newTestTable(t)
	mc := c.Mutate()
	_, err := tbl.Set(mc, value.Integer(1), value.String("a"))
	require.NoError(t, err)
	_, err = tbl.Set(mc, value.Integer(2), value.String("b"))
	require.NoError(t, err)
	_, err = tbl.Set(mc, value.Integer(3), value.String("c"))
	require.NoError(t, err)

	require.Equal(t, int64(3), tbl.Length())
	keys, _ := collectPairs(tbl)
	require.Len(t, keys, 3)
	for i, k := range keys {
		idx, _ := k.AsInteger()
		require.Equal(t, int64(i+1), idx)
	}
}

// S2
func TestScenarioGapAllowsEitherBorder(t *testing.T) {
	tbl, c := newTestTable(t)
	mc := c.Mutate()
	_, err := tbl.Set(mc, value.Integer(1), value.String("a"))
	require.NoError(t, err)
	_, err = tbl.Set(mc, value.Integer(3), value.String("c"))
	require.NoError(t, err)

	n := tbl.Length()
	require.True(t, n == 1 || n == 3, "length %d is not a valid border", n)
}

// S3
func TestScenarioDenseRunThenHole(t *testing.T) {
	tbl, c := newTestTable(t)
	mc := c.Mutate()
	for i := int64(1); i <= 1000; i++ {
		_, err := tbl.Set(mc, value.Integer(i), value.Integer(i))
		require.NoError(t, err)
	}
	require.True(t, len(tbl.entries.Get().array) >= 1024)

	_, err := tbl.Set(mc, value.Integer(500), value.Nil)
	require.NoError(t, err)
	require.True(t, tbl.Get(value.Integer(500)).IsNil())

	n := tbl.Length()
	require.True(t, n == 499 || n == 1000, "length %d is not an expected border", n)
}

// S4
func TestScenarioFloatIntegerKeyUnification(t *testing.T) {
	tbl, c := newTestTable(t)
	mc := c.Mutate()
	_, err := tbl.Set(mc, value.Number(1.0), value.String("x"))
	require.NoError(t, err)
	require.True(t, tbl.Get(value.Integer(1)).Equal(value.String("x")))

	_, err = tbl.Set(mc, value.Number(0.5), value.String("y"))
	require.NoError(t, err)
	require.True(t, tbl.Get(value.Number(0.5)).Equal(value.String("y")))
	require.Empty(t, tbl.entries.Get().array)
}

// S5
func TestScenarioMixedKeyKindsIterateOnce(t *testing.T) {
	tbl, c := newTestTable(t)
	mc := c.Mutate()
	_, err := tbl.Set(mc, value.String("k"), value.Integer(1))
	require.NoError(t, err)
	_, err = tbl.Set(mc, value.Integer(1), value.Integer(2))
	require.NoError(t, err)

	keys, _ := collectPairs(tbl)
	require.Len(t, keys, 2)
}

// S6
func TestScenarioInvalidKeysLeaveTableEmpty(t *testing.T) {
	tbl, c := newTestTable(t)
	mc := c.Mutate()

	_, err := tbl.Set(mc, value.Nil, value.Integer(1))
	var ike *InvalidTableKey
	require.ErrorAs(t, err, &ike)
	require.Equal(t, value.IsNil, ike.Kind)

	_, err = tbl.Set(mc, value.Number(math.NaN()), value.Integer(1))
	require.ErrorAs(t, err, &ike)
	require.Equal(t, value.IsNaN, ike.Kind)

	require.Equal(t, int64(0), tbl.Length())
}

func TestMetatableRoundTrip(t *testing.T) {
	tbl, c := newTestTable(t)
	other, _ := newTestTable(t)
	mc := c.Mutate()

	require.Nil(t, tbl.Metatable())
	prev := tbl.SetMetatable(mc, other)
	require.Nil(t, prev)
	require.Same(t, other, tbl.Metatable())
}

func TestNewFromSlicePreSizesArray(t *testing.T) {
	c := gc.New(nil)
	mc := c.Mutate()
	tbl := NewFromSlice(mc, []value.Value{value.String("a"), value.String("b"), value.String("c")})

	require.Equal(t, int64(3), tbl.Length())
	require.True(t, tbl.Get(value.Integer(1)).Equal(value.String("a")))
	require.True(t, tbl.Get(value.Integer(3)).Equal(value.String("c")))
	require.True(t, tbl.Get(value.Integer(4)).IsNil())
}

func TestNewFromEntriesBuildsMixedTable(t *testing.T) {
	c := gc.New(nil)
	mc := c.Mutate()
	tbl, err := NewFromEntries(mc, []struct {
		Key   value.Value
		Value value.Value
	}{
		{Key: value.Integer(1), Value: value.String("a")},
		{Key: value.String("k"), Value: value.Integer(9)},
	})
	require.NoError(t, err)
	require.True(t, tbl.Get(value.Integer(1)).Equal(value.String("a")))
	require.True(t, tbl.Get(value.String("k")).Equal(value.Integer(9)))
}

func TestNewFromEntriesPropagatesInvalidKey(t *testing.T) {
	c := gc.New(nil)
	mc := c.Mutate()
	_, err := NewFromEntries(mc, []struct {
		Key   value.Value
		Value value.Value
	}{
		{Key: value.Nil, Value: value.Integer(1)},
	})
	var ike *InvalidTableKey
	require.ErrorAs(t, err, &ike)
	require.Equal(t, value.IsNil, ike.Kind)
}

func TestTableIdentityHash(t *testing.T) {
	tbl, c := newTestTable(t)
	mc := c.Mutate()
	_, err := tbl.Set(mc, value.Integer(1), value.Table(tbl))
	require.NoError(t, err)

	got := tbl.Get(value.Integer(1))
	h, ok := got.AsHandle()
	require.True(t, ok)
	require.Equal(t, tbl.Ptr(), h.Ptr())
}
