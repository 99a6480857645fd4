package bitstream_test

import (
	"bytes"
	"io"
	"testing"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"github.com/spacemeshos/bitbuffer/bitstream"
)

func allOnes(n int) []byte {
	return bytes.Repeat([]byte{0xFF}, n)
}

func TestWriter_WriteBits(t *testing.T) {
	req := require.New(t)

	b := NewBuffer(0)
	req.NoError(b.WriteBits(0x5, 3))
	req.NoError(b.WriteBits(0x1F, 5))
	req.Equal([]byte{0xBF}, b.Bytes())
	req.Equal("10111111", b.String())

	// Only the low bits of the value are written.
	req.NoError(b.WriteBits(0xFFF0, 4))
	req.Equal([]byte{0xBF, 0x00}, b.Bytes())
	req.Equal(uint64(12), b.NofBits())
	req.Equal(uint64(2), b.NofBytes())

	// Overwrite in the middle.
	req.NoError(b.SeekBits(2, bitstream.Begin))
	req.NoError(b.WriteBits(0x0, 3))
	req.Equal("10000111"+"0000", b.String())
	req.Equal(uint64(5), b.Tell())
	req.Equal(uint64(12), b.NofBits())
}

func TestWriter_WidthExceeded(t *testing.T) {
	req := require.New(t)

	b := NewBuffer(0)
	req.ErrorIs(bitstream.Write(b.Writer, uint8(1), 9), bitstream.ErrWrite)
	req.ErrorIs(bitstream.Write(b.Writer, uint16(1), 17), bitstream.ErrWrite)
	req.ErrorIs(b.WriteBits(1, 65), bitstream.ErrWrite)
	req.Zero(b.NofBits())
	req.Zero(b.Tell())

	req.NoError(bitstream.Write(b.Writer, uint16(0xFFFF), 16))
	req.Equal([]byte{0xFF, 0xFF}, b.Bytes())
}

func TestWriter_ExternalAllOnes(t *testing.T) {
	req := require.New(t)

	ext := allOnes(5)
	w, err := bitstream.NewWriter(ext, 40)
	req.NoError(err)
	req.True(w.External())

	req.NoError(bitstream.Write(w, uint32(0), 32))
	req.Equal([]byte{0x00, 0x00, 0x00, 0x00, 0xFF}, ext)
	req.Equal(uint64(32), w.Tell())
	req.Equal(uint64(40), w.NofBits())
}

func TestWriter_ExternalSeekThenWrite(t *testing.T) {
	req := require.New(t)

	ext := allOnes(5)
	w, err := bitstream.NewWriter(ext, 0)
	req.NoError(err)
	req.Equal(uint64(40), w.NofBits())

	req.NoError(w.SeekBits(5, bitstream.Begin))
	req.NoError(bitstream.Write(w, uint32(0), 32))
	req.Equal([]byte{0xF8, 0x00, 0x00, 0x00, 0x07}, ext)
	req.Equal(uint64(37), w.Tell())
}

func TestWriter_ExternalCapacity(t *testing.T) {
	req := require.New(t)

	ext := []byte{0xAA}
	w, err := bitstream.NewWriter(ext, 0)
	req.NoError(err)

	req.ErrorIs(w.WriteBits(0, 9), bitstream.ErrWrite)
	req.Equal([]byte{0xAA}, ext)
	req.Zero(w.Tell())

	req.NoError(w.SeekBits(4, bitstream.Begin))
	req.NoError(w.WriteBits(0xF, 4))
	req.Equal([]byte{0xAF}, ext)
	req.ErrorIs(w.WriteBit(bitstream.One), bitstream.ErrWrite)
	req.NoError(w.ByteAlign())
	req.Equal(uint64(8), w.Capacity())
}

func TestWriter_ExternalInvalidValidBits(t *testing.T) {
	_, err := bitstream.NewWriter(make([]byte, 2), 17)
	require.ErrorIs(t, err, bitstream.ErrWrite)
}

func TestWriter_ExternalPartialValidBits(t *testing.T) {
	req := require.New(t)

	ext := []byte{0xFF, 0xFF}
	w, err := bitstream.NewWriter(ext, 4)
	req.NoError(err)
	req.Equal(uint64(4), w.NofBits())
	req.Equal(uint64(1), w.NofBytes())

	// Writing past the valid bits extends them up to the capacity.
	req.NoError(w.SeekBits(0, bitstream.End))
	req.NoError(w.WriteBits(0, 8))
	req.Equal(uint64(12), w.NofBits())
	req.Equal([]byte{0xF0, 0x0F}, ext)
	req.ErrorIs(w.SeekBits(13, bitstream.Begin), bitstream.ErrSeek)
}

func TestWriter_Append(t *testing.T) {
	req := require.New(t)

	b := NewBuffer(0)
	req.NoError(b.WriteBits(0x5, 3))

	// Cursor at the end follows the appended data.
	req.NoError(b.Append([]byte{0xAB}))
	req.Equal(uint64(11), b.Tell())
	req.Equal(uint64(11), b.NofBits())
	req.Equal("101"+"10101011", b.String())

	// Otherwise the cursor stays.
	req.NoError(b.SeekBits(1, bitstream.Begin))
	req.NoError(b.Append([]byte{0xFF, 0x00}))
	req.Equal(uint64(1), b.Tell())
	req.Equal(uint64(27), b.NofBits())
	req.Equal("101"+"10101011"+"11111111"+"00000000", b.String())

	req.NoError(b.Append(nil))
	req.Equal(uint64(27), b.NofBits())
}

func TestWriter_AppendExternal(t *testing.T) {
	req := require.New(t)

	ext := make([]byte, 2)
	w, err := bitstream.NewWriter(ext, 8)
	req.NoError(err)

	req.ErrorIs(w.Append([]byte{0x01, 0x02}), bitstream.ErrAppend)
	req.Equal(uint64(8), w.NofBits())

	req.NoError(w.Append([]byte{0x55}))
	req.Equal([]byte{0x00, 0x55}, ext)
	req.Zero(w.Tell())
}

func TestWriter_Insert(t *testing.T) {
	req := require.New(t)

	b := NewBuffer(1)
	req.NoError(bitstream.Write(b.Writer, uint8(0xF0), 8))

	req.NoError(bitstream.Insert(b.Writer, uint8(0x5), 5, 3))
	req.Equal(uint64(11), b.NofBits())
	req.Equal("11110"+"101"+"000", b.String())
	req.Equal([]byte{0xF5, 0x00}, b.Bytes())
	req.Equal(uint64(11), b.Tell())

	// Cursor before the insertion point is kept.
	req.NoError(b.SeekBits(2, bitstream.Begin))
	req.NoError(b.InsertBits(0x3, 4, 2))
	req.Equal("1111"+"11"+"0"+"101"+"000", b.String())
	req.Equal(uint64(2), b.Tell())

	// Cursor at the insertion point moves with the content.
	req.NoError(b.InsertBits(0x0, 2, 1))
	req.Equal("11"+"0"+"11"+"11"+"0"+"101"+"000", b.String())
	req.Equal(uint64(3), b.Tell())

	// Insert at the very end.
	req.NoError(b.InsertBits(0x1, b.NofBits(), 1))
	req.Equal("11"+"0"+"11"+"11"+"0"+"101"+"000"+"1", b.String())
}

func TestWriter_InsertErrors(t *testing.T) {
	req := require.New(t)

	b := NewBuffer(0)
	req.NoError(b.WriteBits(0xAB, 8))

	req.ErrorIs(b.InsertBits(1, 9, 1), bitstream.ErrInsert)
	req.ErrorIs(bitstream.Insert(b.Writer, uint8(1), 0, 9), bitstream.ErrInsert)
	req.ErrorIs(b.InsertBits(1, 0, 65), bitstream.ErrInsert)
	req.Equal([]byte{0xAB}, b.Bytes())
	req.Equal(uint64(8), b.NofBits())

	ext := []byte{0xAB}
	w, err := bitstream.NewWriter(ext, 0)
	req.NoError(err)
	req.ErrorIs(w.InsertBits(1, 0, 1), bitstream.ErrInsert)
	req.Equal([]byte{0xAB}, ext)
}

func TestWriter_InsertExternal(t *testing.T) {
	req := require.New(t)

	ext := []byte{0xF0, 0xAA}
	w, err := bitstream.NewWriter(ext, 8)
	req.NoError(err)

	req.NoError(w.InsertBits(0x5, 5, 3))
	req.Equal(uint64(11), w.NofBits())
	req.Equal([]byte{0xF5, 0x00}, ext)
}

func TestWriter_Erase(t *testing.T) {
	req := require.New(t)

	b := NewBuffer(0)
	req.NoError(b.WriteBits(0xFF, 8))

	req.NoError(b.Erase(2, 3))
	req.Equal(uint64(5), b.NofBits())
	req.Equal("11111", b.String())
	req.Equal([]byte{0xF8}, b.Bytes())
	req.Equal(uint64(5), b.Tell())
}

func TestWriter_EraseCursor(t *testing.T) {
	for _, tc := range []struct {
		name   string
		cursor int64
		want   uint64
	}{
		{"before", 1, 1},
		{"at first", 2, 2},
		{"inside", 3, 2},
		{"at last", 5, 2},
		{"after", 7, 4},
	} {
		t.Run(tc.name, func(t *testing.T) {
			req := require.New(t)

			b := NewBuffer(0)
			req.NoError(b.WriteBits(0xA5, 8))
			req.NoError(b.SeekBits(tc.cursor, bitstream.Begin))

			req.NoError(b.Erase(2, 3))
			req.Equal("10"+"101", b.String())
			req.Equal(tc.want, b.Tell())
		})
	}
}

func TestWriter_EraseErrors(t *testing.T) {
	req := require.New(t)

	b := NewBuffer(0)
	req.NoError(b.WriteBits(0xFF, 8))

	req.ErrorIs(b.Erase(6, 3), bitstream.ErrErase)
	req.ErrorIs(b.Erase(9, 0), bitstream.ErrErase)
	req.ErrorIs(b.Erase(1, ^uint64(0)), bitstream.ErrErase)
	req.Equal("11111111", b.String())

	req.NoError(b.Erase(8, 0))
	req.Equal("11111111", b.String())
}

func TestWriter_EraseExternal(t *testing.T) {
	req := require.New(t)

	ext := []byte{0xFF, 0xFF, 0xFF}
	w, err := bitstream.NewWriter(ext, 16)
	req.NoError(err)

	req.NoError(w.Erase(0, 4))
	req.Equal(uint64(12), w.NofBits())
	req.Equal([]byte{0xFF, 0xF0, 0x00}, ext)
}

func TestWriter_Resize(t *testing.T) {
	req := require.New(t)

	b := NewBuffer(0)
	req.NoError(b.WriteBits(0x5, 3))

	req.NoError(b.Resize(12))
	req.Equal("101000000000", b.String())
	req.Equal(uint64(3), b.Tell())

	req.NoError(b.Resize(2))
	req.Equal("10", b.String())
	req.Equal([]byte{0x80}, b.Bytes())
	req.Equal(uint64(2), b.Tell())

	req.NoError(b.Resize(0))
	req.Empty(b.Bytes())
	req.Zero(b.Tell())
}

func TestWriter_ResizeClearsStaleBytes(t *testing.T) {
	req := require.New(t)

	b := NewBuffer(0)
	req.NoError(b.WriteBits(0xFFFF, 16))
	req.NoError(b.Resize(4))
	req.Equal([]byte{0xF0}, b.Bytes())

	req.NoError(b.Resize(16))
	req.Equal([]byte{0xF0, 0x00}, b.Bytes())
}

func TestWriter_ResizeExternal(t *testing.T) {
	req := require.New(t)

	ext := allOnes(3)
	w, err := bitstream.NewWriter(ext, 0)
	req.NoError(err)

	req.NoError(w.Resize(4))
	req.Equal([]byte{0xF0, 0x00, 0x00}, ext)
	req.Zero(w.Tell())

	req.ErrorIs(w.Resize(25), bitstream.ErrResize)
	req.Equal(uint64(4), w.NofBits())

	ext = allOnes(2)
	w, err = bitstream.NewWriter(ext, 4)
	req.NoError(err)
	req.NoError(w.Resize(12))
	req.Equal([]byte{0xF0, 0x0F}, ext)
	req.Zero(w.Tell())
}

func TestWriter_Seek(t *testing.T) {
	req := require.New(t)

	b := NewBuffer(0)
	req.NoError(b.WriteBits(0, 20))

	req.NoError(b.SeekBits(-5, bitstream.End))
	req.Equal(uint64(15), b.Tell())
	req.NoError(b.SeekBits(-3, bitstream.Current))
	req.Equal(uint64(12), b.Tell())
	req.NoError(b.SeekBits(8, bitstream.Current))
	req.Equal(uint64(20), b.Tell())
	req.NoError(b.SeekBits(0, bitstream.Begin))
	req.Zero(b.Tell())

	req.ErrorIs(b.SeekBits(-1, bitstream.Begin), bitstream.ErrSeek)
	req.ErrorIs(b.SeekBits(21, bitstream.Begin), bitstream.ErrSeek)
	req.ErrorIs(b.SeekBits(1, bitstream.End), bitstream.ErrSeek)
	req.ErrorIs(b.SeekBits(-21, bitstream.End), bitstream.ErrSeek)
	req.ErrorIs(b.SeekBits(0, bitstream.Origin(7)), bitstream.ErrSeek)
	req.Zero(b.Tell())
}

func TestOrigin_Whence(t *testing.T) {
	req := require.New(t)

	req.Equal(bitstream.Begin, bitstream.Origin(io.SeekStart))
	req.Equal(bitstream.Current, bitstream.Origin(io.SeekCurrent))
	req.Equal(bitstream.End, bitstream.Origin(io.SeekEnd))

	b := NewBuffer(0)
	req.NoError(b.WriteBits(0, 20))
	req.NoError(b.SeekBits(-4, bitstream.Origin(io.SeekEnd)))
	req.Equal(uint64(16), b.Tell())
	req.NoError(b.SeekBits(-6, bitstream.Origin(io.SeekCurrent)))
	req.Equal(uint64(10), b.Tell())
}

func TestWriter_ByteAlign(t *testing.T) {
	req := require.New(t)

	b := NewBuffer(0)
	req.NoError(b.WriteBits(0x7, 3))
	req.NoError(b.ByteAlign())
	req.Equal(uint64(8), b.Tell())
	req.Equal([]byte{0xE0}, b.Bytes())

	req.NoError(b.ByteAlign())
	req.Equal(uint64(8), b.Tell())
	req.Equal(uint64(8), b.NofBits())
}

func TestBuffer_Reserve(t *testing.T) {
	req := require.New(t)

	b := NewBuffer(0)
	req.NoError(b.Reserve(100))
	req.GreaterOrEqual(b.Capacity(), uint64(100))
	req.Zero(b.NofBits())
	req.Empty(b.Bytes())

	req.ErrorIs(b.Reserve(bitstream.MaxBits+1), bitstream.ErrReserve)
}

func TestBuffer_CopyAndClone(t *testing.T) {
	req := require.New(t)

	b := NewBuffer(0)
	req.NoError(b.WriteBits(0xABC, 12))
	req.NoError(b.SeekBits(4, bitstream.Begin))

	cp := b.Copy()
	req.Equal([]byte{0xAB, 0xC0}, cp)
	cp[0] = 0
	req.Equal([]byte{0xAB, 0xC0}, b.Bytes())

	clone := b.Clone()
	req.Equal(uint64(4), clone.Tell())
	req.NoError(clone.WriteBits(0, 4))
	req.Equal("1010"+"0000"+"1100", clone.String())
	req.Equal("1010"+"1011"+"1100", b.String())
	req.False(clone.External())
}

func TestWriter_String(t *testing.T) {
	req := require.New(t)

	b := NewBuffer(0)
	req.Equal("", b.String())

	req.NoError(b.WriteBits(0x2D, 7))
	req.NoError(b.SeekBits(3, bitstream.Begin))
	req.Equal("0101101", b.String())
	req.Equal(uint64(3), b.Tell())
}

func TestWriter_Logger(t *testing.T) {
	req := require.New(t)

	core, logs := observer.New(zapcore.DebugLevel)
	b := NewBuffer(0, bitstream.WithLogger(zap.New(core)))
	req.NoError(b.WriteBits(0xFF, 8))
	req.NoError(b.InsertBits(0, 4, 2))
	req.NoError(b.Erase(0, 1))
	req.NoError(b.Resize(4))

	entries := logs.All()
	req.Len(entries, 3)
	req.Equal("bitstream: inserted bits", entries[0].Message)
	req.Equal(uint64(10), entries[0].ContextMap()["length"])
	req.Equal("bitstream: erased bits", entries[1].Message)
	req.Equal("bitstream: resized buffer", entries[2].Message)
}
