package value

import (
	"math"

	"github.com/cespare/xxhash/v2"
)

// tag bytes mix the variant into the hash so that e.g. Boolean(true)
// and Integer(1) never collide by construction.
const (
	tagNil byte = iota
	tagBoolean
	tagInteger
	tagNumber
	tagString
	tagTable
	tagFunction
	tagThread
	tagUserData
)

func tagFor(k Kind) byte {
	switch k {
	case KindBoolean:
		return tagBoolean
	case KindInteger:
		return tagInteger
	case KindNumber:
		return tagNumber
	case KindString:
		return tagString
	case KindTable:
		return tagTable
	case KindFunction:
		return tagFunction
	case KindThread:
		return tagThread
	case KindUserData:
		return tagUserData
	default:
		return tagNil
	}
}

// Hash computes a hash of a canonical key (one already returned by
// Canonicalize). It mixes a per-variant tag byte with the contents:
// raw integer bits for Integer, the IEEE-754 bit pattern for Number
// (with -0.0 forced to +0.0, though Canonicalize already folds any
// integer-valued float including ±0.0 to Integer(0) before this is
// ever reached), byte content for String via xxhash, and pointer
// identity for reference variants. Any fast non-cryptographic mix is
// acceptable; collision resistance against adversarial keys is not a
// requirement.
func Hash(k Value) uint64 {
	var buf [9]byte
	buf[0] = tagFor(k.kind)

	switch k.kind {
	case KindNil:
		return xxhash.Sum64(buf[:1])
	case KindBoolean:
		if k.b {
			buf[1] = 1
		}
		return xxhash.Sum64(buf[:2])
	case KindInteger:
		putUint64(buf[1:], uint64(k.i))
		return xxhash.Sum64(buf[:])
	case KindNumber:
		n := k.n
		if n == 0 {
			n = 0 // normalize -0.0 to +0.0
		}
		putUint64(buf[1:], math.Float64bits(n))
		return xxhash.Sum64(buf[:])
	case KindString:
		h := xxhash.New()
		h.Write(buf[:1])
		h.WriteString(k.s)
		return h.Sum64()
	default:
		putUint64(buf[1:], uint64(k.handle.Ptr()))
		return xxhash.Sum64(buf[:])
	}
}

func putUint64(b []byte, v uint64) {
	for i := 0; i < 8; i++ {
		b[i] = byte(v >> (8 * i))
	}
}
