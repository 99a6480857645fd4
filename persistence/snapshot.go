package persistence

import (
	"bytes"
	"errors"
	"fmt"
	"os"

	"github.com/natefinch/atomic"
	xdr "github.com/nullstyle/go-xdr/xdr3"
	"github.com/spacemeshos/sha256-simd"

	"github.com/spacemeshos/bitbuffer/bitstream"
	"github.com/spacemeshos/bitbuffer/shared"
)

// SnapshotExt is the file extension of snapshot files.
const SnapshotExt = ".bits"

var (
	ErrDigestMismatch   = errors.New("snapshot digest mismatch")
	ErrSnapshotTooShort = errors.New("snapshot data shorter than its number of bits")
	ErrSnapshotTrailing = errors.New("snapshot data longer than its number of bits")
)

// Snapshot is the on-disk form of a bit buffer: its valid bytes, the exact
// number of valid bits and a SHA-256 digest of both.
type Snapshot struct {
	NofBits uint64
	Data    []byte
	Digest  [32]byte
}

// NewSnapshot copies the valid content of w.
func NewSnapshot(w *bitstream.Writer) *Snapshot {
	data := append([]byte(nil), w.Bytes()...)
	return &Snapshot{
		NofBits: w.NofBits(),
		Data:    data,
		Digest:  digest(w.NofBits(), data),
	}
}

func digest(nofBits uint64, data []byte) [32]byte {
	var size [8]byte
	shared.PutUintBE(size[:], nofBits)

	var sum [32]byte
	h := sha256.New()
	h.Write(size[:])
	h.Write(data)
	copy(sum[:], h.Sum(nil))
	return sum
}

// Save writes a snapshot of w to path. The file is replaced atomically.
func Save(path string, w *bitstream.Writer) error {
	return NewSnapshot(w).Save(path)
}

func (s *Snapshot) Save(path string) error {
	var buf bytes.Buffer
	if _, err := xdr.Marshal(&buf, s); err != nil {
		return fmt.Errorf("serialization failure: %w", err)
	}

	if err := atomic.WriteFile(path, &buf); err != nil {
		return fmt.Errorf("write to disk failure: %w", err)
	}

	return nil
}

// Load reads and verifies the snapshot at path.
func Load(path string) (*Snapshot, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read file failure: %w", err)
	}

	s := &Snapshot{}
	if _, err := xdr.Unmarshal(bytes.NewReader(data), s); err != nil {
		return nil, fmt.Errorf("deserialization failure: %w", err)
	}

	if err := s.Verify(); err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}

	return s, nil
}

func (s *Snapshot) Verify() error {
	size := uint64(len(s.Data)) * 8
	if s.NofBits > size {
		return fmt.Errorf("%w; bits: %d, data: %d bits", ErrSnapshotTooShort, s.NofBits, size)
	}
	if size-s.NofBits >= 8 {
		return fmt.Errorf("%w; bits: %d, data: %d bits", ErrSnapshotTrailing, s.NofBits, size)
	}

	if digest(s.NofBits, s.Data) != s.Digest {
		return ErrDigestMismatch
	}

	return nil
}

// Reader returns a Reader over the snapshot data.
func (s *Snapshot) Reader() (*bitstream.Reader, error) {
	return bitstream.NewReaderBits(s.Data, s.NofBits)
}

// Buffer returns an owned buffer holding a copy of the snapshot data, with the
// cursor at the start.
func (s *Snapshot) Buffer(opts ...bitstream.Option) (*bitstream.Buffer, error) {
	b := bitstream.NewBuffer(uint32(len(s.Data)), opts...)
	if err := b.Append(s.Data); err != nil {
		return nil, err
	}
	if err := b.Resize(s.NofBits); err != nil {
		return nil, err
	}
	if err := b.SeekBits(0, bitstream.Begin); err != nil {
		return nil, err
	}

	return b, nil
}
