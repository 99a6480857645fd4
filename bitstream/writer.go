package bitstream

import (
	"go.uber.org/zap"
)

type options struct {
	logger *zap.Logger
}

// Option configures a Writer or Buffer.
type Option func(*options)

// WithLogger sets the logger structural edits are reported to.
func WithLogger(logger *zap.Logger) Option {
	return func(opts *options) {
		opts.logger = logger
	}
}

// Writer writes bits into a byte buffer at a movable cursor. A Writer created
// by NewWriter works on caller-owned memory and never reallocates it; a Writer
// embedded in a Buffer owns its memory and grows it on demand.
type Writer struct {
	store   storage
	cur     cursor
	nofBits uint64
	logger  *zap.Logger
}

// NewWriter attaches a Writer to an external buffer. nofValidBits is the number
// of bits, from the start of external, that hold content; 0 means the whole
// buffer is valid. The cursor starts at bit 0.
func NewWriter(external []byte, nofValidBits uint64, opts ...Option) (*Writer, error) {
	capacity := uint64(len(external)) * 8
	if nofValidBits > capacity {
		return nil, newError(ErrWrite, "number of valid bits (%d) exceeds the external buffer size (%d bits)", nofValidBits, capacity)
	}
	if nofValidBits == 0 {
		nofValidBits = capacity
	}

	return newWriter(&externalStorage{buf: external}, nofValidBits, opts), nil
}

func newWriter(store storage, nofBits uint64, opts []Option) *Writer {
	options := options{
		logger: zap.NewNop(),
	}
	for _, opt := range opts {
		opt(&options)
	}

	return &Writer{
		store:   store,
		nofBits: nofBits,
		logger:  options.logger,
	}
}

// External reports whether the writer works on caller-owned memory.
func (w *Writer) External() bool {
	_, ok := w.store.(*externalStorage)
	return ok
}

// WriteBit writes a single bit at the cursor.
func (w *Writer) WriteBit(bit Bit) error {
	var v uint64
	if bit {
		v = 1
	}
	return w.write(v, 1, 1)
}

// WriteByte writes 8 bits at the cursor, regardless of alignment.
func (w *Writer) WriteByte(b byte) error {
	return w.write(uint64(b), 8, 8)
}

// WriteBits writes the numBits least significant bits of v at the cursor, most
// significant bit first, overwriting existing content.
func (w *Writer) WriteBits(v uint64, numBits uint) error {
	return w.write(v, numBits, 64)
}

// Write writes the numBits least significant bits of v at the cursor. numBits
// may not exceed the width of T.
func Write[T Unsigned](w *Writer, v T, numBits uint) error {
	return w.write(uint64(v), numBits, bitWidth[T]())
}

func (w *Writer) write(v uint64, numBits, width uint) error {
	if numBits > width {
		return newError(ErrWrite, "number of bits to write (%d) is larger than the value width (%d)", numBits, width)
	}
	if err := w.checkLimit(ErrWrite, w.Tell()+uint64(numBits)); err != nil {
		return err
	}

	w.writeValue(v, numBits)
	return nil
}

func (w *Writer) checkLimit(kind error, nofBits uint64) error {
	if limit := w.store.limit(); nofBits > limit {
		return newError(kind, "buffer too small; required: %d bits, available: %d bits", nofBits, limit)
	}
	return nil
}

// writeValue writes the leading partial byte and then whole bytes, most
// significant first. Bounds have been checked by the caller.
func (w *Writer) writeValue(v uint64, numBits uint) {
	nonAligned := numBits & 7
	w.writeIntern(byte(v>>(numBits-nonAligned)), nonAligned)

	for rem := numBits - nonAligned; rem >= 8; {
		rem -= 8
		w.writeIntern(byte(v>>rem), 8)
	}
}

// writeIntern writes the numBits (<= 8) low bits of b. The affected bits touch
// at most two bytes, handled as one 16-bit window.
func (w *Writer) writeIntern(b byte, numBits uint) {
	if numBits == 0 {
		return
	}

	w.store.grow(w.Tell() + uint64(numBits))
	buf := w.store.bytes()
	idx := w.cur.byteIdx

	shift := 16 - w.cur.bitOff - numBits
	low := byte(0xFF) >> (8 - numBits)
	mask := uint16(low) << shift
	bits := uint16(b&low) << shift

	buf[idx] = buf[idx]&^byte(mask>>8) | byte(bits>>8)
	if byte(mask) != 0 {
		buf[idx+1] = buf[idx+1]&^byte(mask) | byte(bits)
	}

	w.cur.advance(numBits)
	if pos := w.Tell(); pos > w.nofBits {
		w.nofBits = pos
	}
}

// Append writes p, 8 bits per byte, after the last valid bit. If the cursor
// was at the end it follows the appended data, otherwise it stays where it was.
func (w *Writer) Append(p []byte) error {
	appended := uint64(len(p)) * 8
	if err := w.checkLimit(ErrAppend, w.nofBits+appended); err != nil {
		return err
	}

	pos := w.Tell()
	if pos == w.nofBits {
		pos += appended
	}

	w.cur.set(w.nofBits)
	for _, b := range p {
		w.writeIntern(b, 8)
	}
	w.cur.set(pos)
	return nil
}

// InsertBits inserts the numBits least significant bits of v before bit
// position before, moving all following bits back by numBits.
func (w *Writer) InsertBits(v uint64, before uint64, numBits uint) error {
	return w.insert(v, before, numBits, 64)
}

// Insert inserts the numBits least significant bits of v before bit position
// before. numBits may not exceed the width of T.
func Insert[T Unsigned](w *Writer, v T, before uint64, numBits uint) error {
	return w.insert(uint64(v), before, numBits, bitWidth[T]())
}

func (w *Writer) insert(v uint64, before uint64, numBits, width uint) error {
	if before > w.nofBits {
		return newError(ErrInsert, "insert position %d is out of range; expected: <= %d", before, w.nofBits)
	}
	if numBits > width {
		return newError(ErrInsert, "number of bits to insert (%d) is larger than the value width (%d)", numBits, width)
	}
	if err := w.checkLimit(ErrInsert, w.nofBits+uint64(numBits)); err != nil {
		return err
	}

	pos := w.Tell()
	tail := w.extract(before)

	w.truncate(before)
	w.cur.set(before)
	w.writeValue(v, numBits)
	w.copyFrom(tail)

	if pos >= before {
		pos += uint64(numBits)
	}
	w.cur.set(pos)

	w.logger.Debug("bitstream: inserted bits",
		zap.Uint64("before", before),
		zap.Uint("bits", numBits),
		zap.Uint64("length", w.nofBits),
	)
	return nil
}

// Erase removes the bits in [firstBit, firstBit+numBits), moving all following
// bits forward. A cursor inside the erased range moves to firstBit.
func (w *Writer) Erase(firstBit, numBits uint64) error {
	lastBit := firstBit + numBits
	if lastBit < firstBit || lastBit > w.nofBits {
		return newError(ErrErase, "range [%d, %d+%d) is invalid; length: %d", firstBit, firstBit, numBits, w.nofBits)
	}

	pos := w.Tell()
	tail := w.extract(lastBit)

	w.truncate(firstBit)
	w.cur.set(firstBit)
	w.copyFrom(tail)

	switch {
	case pos < firstBit:
	case pos >= lastBit:
		pos -= numBits
	default:
		pos = firstBit
	}
	w.cur.set(pos)

	w.logger.Debug("bitstream: erased bits",
		zap.Uint64("first", firstBit),
		zap.Uint64("bits", numBits),
		zap.Uint64("length", w.nofBits),
	)
	return nil
}

// extract copies the valid bits from position from onwards into a Reader over
// scratch memory.
func (w *Writer) extract(from uint64) *Reader {
	src := &Reader{buf: w.Bytes(), nofBits: w.nofBits}
	src.cur.set(from)

	tmp := NewBuffer(uint32(numBytes(w.nofBits - from)))
	tmp.copyFrom(src)
	return &Reader{buf: tmp.Bytes(), nofBits: tmp.nofBits}
}

// copyFrom writes all bits left in r at the cursor, 8 bits at a time.
func (w *Writer) copyFrom(r *Reader) {
	for rem := r.NofBitsLeft(); rem > 0; {
		n := uint(min(8, rem))
		w.writeIntern(r.readIntern(n), n)
		rem -= uint64(n)
	}
}

// Resize truncates or zero-extends the content to exactly newNofBits bits. The
// cursor is clamped to the new length.
func (w *Writer) Resize(newNofBits uint64) error {
	if err := w.checkLimit(ErrResize, newNofBits); err != nil {
		return err
	}

	pos := w.Tell()
	if newNofBits > w.nofBits {
		w.store.grow(newNofBits)
		w.cur.set(w.nofBits)
		for rem := newNofBits - w.nofBits; rem > 0; {
			n := uint(min(8, rem))
			w.writeIntern(0, n)
			rem -= uint64(n)
		}
	} else if newNofBits < w.nofBits {
		w.truncate(newNofBits)
	}

	w.nofBits = newNofBits
	w.cur.set(min(pos, newNofBits))

	w.logger.Debug("bitstream: resized buffer", zap.Uint64("length", newNofBits))
	return nil
}

// truncate drops all bits from position n onwards. Trailing bits of the last
// kept byte are cleared.
func (w *Writer) truncate(n uint64) {
	if n >= w.nofBits {
		return
	}

	idx := n >> 3
	if rem := n & 7; rem != 0 {
		buf := w.store.bytes()
		buf[idx] &= byte(0xFF) << (8 - rem)
		idx++
	}
	w.store.truncate(idx)
	w.nofBits = n
	if w.Tell() > n {
		w.cur.set(n)
	}
}

// SeekBits moves the cursor to offset bits relative to origin. Negative offsets are
// allowed for End and Current.
func (w *Writer) SeekBits(offset int64, origin Origin) error {
	return w.cur.seek(offset, origin, w.nofBits)
}

// ByteAlign writes zero bits up to the next byte boundary.
func (w *Writer) ByteAlign() error {
	if w.cur.aligned() {
		return nil
	}
	return w.WriteBits(0, 8-w.cur.bitOff)
}

// Tell returns the cursor position in bits.
func (w *Writer) Tell() uint64 {
	return w.cur.tell()
}

// NofBits returns the number of valid bits.
func (w *Writer) NofBits() uint64 {
	return w.nofBits
}

// NofBytes returns the number of bytes needed to hold the valid bits.
func (w *Writer) NofBytes() uint64 {
	return numBytes(w.nofBits)
}

// Capacity returns the number of bits that fit without reallocation.
func (w *Writer) Capacity() uint64 {
	return w.store.capacity()
}

// Raw returns the backing memory.
func (w *Writer) Raw() []byte {
	return w.store.bytes()
}

// Bytes returns the bytes holding the valid bits. The slice aliases the
// backing memory.
func (w *Writer) Bytes() []byte {
	return w.store.bytes()[:w.NofBytes()]
}

// Reader returns a Reader over the current content.
func (w *Writer) Reader() *Reader {
	return &Reader{buf: w.Bytes(), nofBits: w.nofBits}
}

// String returns the valid bits as a string of '0' and '1' characters.
func (w *Writer) String() string {
	return w.Reader().String()
}

// Buffer is a Writer that owns its memory.
type Buffer struct {
	*Writer
	owned *ownedStorage
}

// NewBuffer returns an empty Buffer with an initial capacity in bytes.
func NewBuffer(initLengthInBytes uint32, opts ...Option) *Buffer {
	owned := newOwnedStorage(initLengthInBytes)
	return &Buffer{
		Writer: newWriter(owned, 0, opts),
		owned:  owned,
	}
}

// Reserve grows the capacity to at least bitCapacity bits without changing the
// content.
func (b *Buffer) Reserve(bitCapacity uint64) error {
	if bitCapacity > MaxBits {
		return newError(ErrReserve, "capacity of %d bits requested; expected: <= %d", bitCapacity, uint64(MaxBits))
	}

	b.owned.reserve(int(numBytes(bitCapacity)))
	b.logger.Debug("bitstream: reserved capacity", zap.Uint64("capacity", b.Capacity()))
	return nil
}

// Copy returns a copy of the valid bytes.
func (b *Buffer) Copy() []byte {
	return append([]byte(nil), b.Bytes()...)
}

// Clone returns an independent copy of the buffer, including its cursor.
func (b *Buffer) Clone() *Buffer {
	owned := &ownedStorage{buf: append(make([]byte, 0, cap(b.owned.buf)), b.owned.buf...)}
	w := *b.Writer
	w.store = owned
	return &Buffer{Writer: &w, owned: owned}
}
