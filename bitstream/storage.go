package bitstream

// storage is the byte memory behind a Writer. It is either owned by the writer
// and grows on demand, or supplied by the caller with a fixed size.
type storage interface {
	// bytes returns the backing memory. Its length is the number of bytes in use
	// for owned storage and the full region for external storage.
	bytes() []byte

	// limit returns the maximum number of bits the storage can ever hold.
	limit() uint64

	// capacity returns the number of bits that fit without reallocation.
	capacity() uint64

	// grow makes room for at least nofBits bits. The caller checks limit first.
	grow(nofBits uint64)

	// truncate drops every byte from index n onwards.
	truncate(n uint64)
}

// ownedStorage is a growable slice owned by a Buffer. Bytes exposed by grow are
// always zero.
type ownedStorage struct {
	buf []byte
}

func newOwnedStorage(initLengthInBytes uint32) *ownedStorage {
	return &ownedStorage{buf: make([]byte, 0, initLengthInBytes)}
}

func (s *ownedStorage) bytes() []byte {
	return s.buf
}

func (s *ownedStorage) limit() uint64 {
	return MaxBits
}

func (s *ownedStorage) capacity() uint64 {
	return uint64(cap(s.buf)) * 8
}

func (s *ownedStorage) grow(nofBits uint64) {
	n := int(numBytes(nofBits))
	if n <= len(s.buf) {
		return
	}
	if n > cap(s.buf) {
		s.reserve(n)
	}
	old := len(s.buf)
	s.buf = s.buf[:n]
	clear(s.buf[old:])
}

func (s *ownedStorage) reserve(n int) {
	if n <= cap(s.buf) {
		return
	}
	newCap := 2 * cap(s.buf)
	if newCap < n {
		newCap = n
	}
	buf := make([]byte, len(s.buf), newCap)
	copy(buf, s.buf)
	s.buf = buf
}

func (s *ownedStorage) truncate(n uint64) {
	if n < uint64(len(s.buf)) {
		s.buf = s.buf[:n]
	}
}

// externalStorage is a caller-owned region that is never reallocated.
type externalStorage struct {
	buf []byte
}

func (s *externalStorage) bytes() []byte {
	return s.buf
}

func (s *externalStorage) limit() uint64 {
	return uint64(len(s.buf)) * 8
}

func (s *externalStorage) capacity() uint64 {
	return s.limit()
}

func (s *externalStorage) grow(uint64) {}

// truncate zeroes the unused tail instead of shrinking the region.
func (s *externalStorage) truncate(n uint64) {
	if n < uint64(len(s.buf)) {
		clear(s.buf[n:])
	}
}
