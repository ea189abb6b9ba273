package value

import "math"

// InvalidKeyKind identifies why a key failed canonicalization.
type InvalidKeyKind byte

const (
	// IsNil: the caller attempted to use Nil as a key.
	IsNil InvalidKeyKind = iota
	// IsNaN: the caller attempted to use a NaN float as a key.
	IsNaN
)

func (k InvalidKeyKind) String() string {
	if k == IsNaN {
		return "key is NaN"
	}
	return "key is nil"
}

// InvalidKeyError reports a key that failed canonicalization. It is
// returned by Canonicalize; of the table operations only Set reports
// it — Get and Next never fail.
type InvalidKeyError struct {
	Kind InvalidKeyKind
}

func (e *InvalidKeyError) Error() string { return "invalid table key: " + e.Kind.String() }

// Canonicalize normalizes a key so that hash and equality treat
// semantically-equal values identically:
//
//   - Nil is rejected with IsNil.
//   - A NaN Number is rejected with IsNaN.
//   - An integer-valued Number folds to an Integer.
//   - +0.0 and -0.0 Numbers canonicalize to the same Integer(0).
//   - every other value passes through unchanged.
//
// Canonicalize is idempotent: Canonicalize(Canonicalize(v)) == Canonicalize(v).
func Canonicalize(v Value) (Value, error) {
	switch v.kind {
	case KindNil:
		return Nil, &InvalidKeyError{Kind: IsNil}
	case KindNumber:
		n := v.n
		if math.IsNaN(n) {
			return Nil, &InvalidKeyError{Kind: IsNaN}
		}
		if i := int64(n); float64(i) == n {
			return Integer(i), nil
		}
		return v, nil
	default:
		return v, nil
	}
}

// ArrayIndex reports whether the canonical key k is array-eligible
// (an Integer >= 1 that fits the host index type) and, if so, its
// 0-based array position.
func ArrayIndex(k Value) (index int, ok bool) {
	i, isInt := k.AsInteger()
	if !isInt || i < 1 {
		return 0, false
	}
	pos := i - 1
	if pos < 0 || pos > int64(math.MaxInt) {
		// host slices are indexed by `int`, so an index that doesn't fit
		// in one is never array-eligible.
		return 0, false
	}
	return int(pos), true
}
