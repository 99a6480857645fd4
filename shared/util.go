package shared

import (
	"math/bits"
)

// NumBits returns the number of bits required to represent v. At least one
// bit is needed, even for 0.
func NumBits(v uint64) uint {
	if v == 0 {
		return 1
	}
	return uint(bits.Len64(v))
}

// UintBE decodes a big-endian unsigned integer of up to 8 bytes.
func UintBE(b []byte) uint64 {
	var v uint64
	for _, byt := range b {
		v = v<<8 | uint64(byt)
	}
	return v
}

// PutUintBE encodes v into b in big-endian byte order, keeping the len(b)
// least significant bytes.
func PutUintBE(b []byte, v uint64) {
	for i := len(b) - 1; i >= 0; i-- {
		b[i] = byte(v)
		v >>= 8
	}
}
