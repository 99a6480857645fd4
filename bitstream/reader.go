package bitstream

import (
	"strings"
)

// Reader reads bits from a byte buffer it does not own and never modifies.
// Several readers may share the same memory.
type Reader struct {
	buf     []byte
	cur     cursor
	nofBits uint64
}

// NewReader returns a Reader over all bits of b.
func NewReader(b []byte) *Reader {
	return &Reader{buf: b, nofBits: uint64(len(b)) * 8}
}

// NewReaderBits returns a Reader over the first nofValidBits bits of b. A value
// of 0 makes all bits of b valid.
func NewReaderBits(b []byte, nofValidBits uint64) (*Reader, error) {
	size := uint64(len(b)) * 8
	if nofValidBits > size {
		return nil, newError(ErrRead, "number of valid bits (%d) exceeds the buffer size (%d bits)", nofValidBits, size)
	}
	if nofValidBits == 0 {
		nofValidBits = size
	}

	return &Reader{buf: b, nofBits: nofValidBits}, nil
}

// ReadBit reads a single bit.
func (r *Reader) ReadBit() (Bit, error) {
	v, err := r.readUnsigned(1, 1)
	return v == 1, err
}

// ReadByte reads the next 8 bits, regardless of alignment.
func (r *Reader) ReadByte() (byte, error) {
	v, err := r.readUnsigned(8, 8)
	return byte(v), err
}

// ReadBits reads numBits bits as an unsigned value.
func (r *Reader) ReadBits(numBits uint) (uint64, error) {
	return r.readUnsigned(numBits, 64)
}

// ReadSigned reads numBits bits as a two's complement value.
func (r *Reader) ReadSigned(numBits uint) (int64, error) {
	return r.readSigned(numBits, 64)
}

// Read reads numBits bits into T. Signed types are sign-extended from the
// most significant bit read. numBits may not exceed the width of T.
func Read[T Integer](r *Reader, numBits uint) (T, error) {
	width := bitWidth[T]()
	if isSigned[T]() {
		v, err := r.readSigned(numBits, width)
		return T(v), err
	}

	v, err := r.readUnsigned(numBits, width)
	return T(v), err
}

// readUnsigned reads the leading numBits%8 bits first and then whole bytes,
// shifting the result left by 8 bits for each of them.
func (r *Reader) readUnsigned(numBits, width uint) (uint64, error) {
	if left := r.NofBitsLeft(); uint64(numBits) > left {
		return 0, newError(ErrRead, "not enough data left to parse; requested: %d bits, left: %d bits", numBits, left)
	}
	if numBits == 0 {
		return 0, nil
	}
	if numBits > width {
		return 0, newError(ErrRead, "number of bits (%d) does not fit into a %d-bit value", numBits, width)
	}

	nonAligned := numBits & 7
	var v uint64
	if nonAligned > 0 {
		v = uint64(r.readIntern(nonAligned))
	}
	for rem := numBits - nonAligned; rem >= 8; rem -= 8 {
		v = v<<8 | uint64(r.readIntern(8))
	}

	return v, nil
}

func (r *Reader) readSigned(numBits, width uint) (int64, error) {
	v, err := r.readUnsigned(numBits, width)
	if err != nil || numBits == 0 {
		return 0, err
	}

	if mask := ^uint64(0) << (numBits - 1); v&mask != 0 {
		v |= mask
	}
	return int64(v), nil
}

// readIntern extracts numBits (1..8) bits at the cursor. Bounds have been
// checked by the caller. Bits spanning two bytes are read through a 16-bit
// window, mirroring Writer.writeIntern.
func (r *Reader) readIntern(numBits uint) byte {
	idx := r.cur.byteIdx
	off := r.cur.bitOff

	var v byte
	if off+numBits <= 8 {
		v = (r.buf[idx] & (byte(0xFF) >> off)) >> (8 - off - numBits)
	} else {
		window := uint16(r.buf[idx])<<8 | uint16(r.buf[idx+1])
		window &= uint16(0xFFFF) >> off
		v = byte(window >> (16 - off - numBits))
	}

	r.cur.advance(numBits)
	return v
}

// SeekBits moves the cursor to offset bits relative to origin. Negative offsets are
// allowed for End and Current.
func (r *Reader) SeekBits(offset int64, origin Origin) error {
	return r.cur.seek(offset, origin, r.nofBits)
}

// Tell returns the cursor position in bits.
func (r *Reader) Tell() uint64 {
	return r.cur.tell()
}

// NofReadBits returns the number of bits consumed so far.
func (r *Reader) NofReadBits() uint64 {
	return r.cur.tell()
}

// NofBitsLeft returns the number of bits between the cursor and the end.
func (r *Reader) NofBitsLeft() uint64 {
	return r.nofBits - r.cur.tell()
}

// NofBits returns the number of valid bits.
func (r *Reader) NofBits() uint64 {
	return r.nofBits
}

// NofBytes returns the number of bytes needed to hold the valid bits.
func (r *Reader) NofBytes() uint64 {
	return numBytes(r.nofBits)
}

// EOF reports whether all bits have been read.
func (r *Reader) EOF() bool {
	return r.cur.tell() >= r.nofBits
}

// Raw returns the underlying memory.
func (r *Reader) Raw() []byte {
	return r.buf
}

// String returns the valid bits as a string of '0' and '1' characters. The
// cursor is left untouched.
func (r *Reader) String() string {
	saved := r.cur
	defer func() { r.cur = saved }()

	r.cur.set(0)
	var sb strings.Builder
	sb.Grow(int(r.nofBits))
	for !r.EOF() {
		if r.readIntern(1) == 1 {
			sb.WriteByte('1')
		} else {
			sb.WriteByte('0')
		}
	}
	return sb.String()
}
