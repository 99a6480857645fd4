// Package bitstream provides a bit-addressed buffer engine: a Writer that packs
// arbitrarily sized integer fields into a byte buffer and supports structural
// edits (insert, erase, resize), and a Reader that extracts them again.
//
// Fields are packed most-significant-bit first, consecutive fields are stored
// without padding unless ByteAlign is called. Bit 0 is the most significant bit
// of byte 0.
//
// Neither Writer nor Reader is safe for concurrent use.
package bitstream

import (
	"io"
	"math"
)

type Bit bool

const (
	Zero Bit = false
	One  Bit = true
)

// MaxBits is the largest number of bits a buffer can address.
const MaxBits = math.MaxUint32

// Origin selects what a seek offset is relative to. The values match the
// whence values of io.Seeker.
type Origin int

const (
	Begin   Origin = io.SeekStart
	Current Origin = io.SeekCurrent
	End     Origin = io.SeekEnd
)

func (o Origin) String() string {
	switch o {
	case Begin:
		return "begin"
	case End:
		return "end"
	case Current:
		return "current"
	default:
		return "invalid"
	}
}

// Unsigned is the set of unsigned integer types a field can be written from.
type Unsigned interface {
	~uint | ~uint8 | ~uint16 | ~uint32 | ~uint64 | ~uintptr
}

// Signed is the set of signed integer types a field can be read into.
type Signed interface {
	~int | ~int8 | ~int16 | ~int32 | ~int64
}

// Integer is the set of all integer types a field can be read into.
type Integer interface {
	Signed | Unsigned
}

// bitWidth returns the size of T in bits.
func bitWidth[T Integer]() uint {
	var w uint
	for v := T(1); v != 0; v <<= 1 {
		w++
	}
	return w
}

func isSigned[T Integer]() bool {
	var v T
	v--
	return v < 0
}

func numBytes(nofBits uint64) uint64 {
	return (nofBits + 7) >> 3
}
