package shared

import (
	"io"

	"github.com/spacemeshos/bitbuffer/bitstream"
)

// GranSpecificReader provides a wrapper for bitstream.Reader to allow granularity-specific
// access to the buffer according to the defined item size, where bit-granular and
// byte-granular sizes are supported via a specialized code path.
//
// Items are returned as ceil(itemBitSize/8) bytes. For bit-granular sizes the
// remaining bits of an item are right-aligned in its last byte.
type GranSpecificReader struct {
	ReadNext       func() ([]byte, error)
	ReadNextUintBE func() (uint64, error)
}

func NewGranSpecificReader(br *bitstream.Reader, itemBitSize uint) (*GranSpecificReader, error) {
	if itemBitSize == 0 {
		return nil, ErrInvalidItemSize
	}

	itemSize := (itemBitSize + 7) / 8
	checkLeft := func() error {
		left := br.NofBitsLeft()
		if left == 0 {
			return io.EOF
		}
		if left < uint64(itemBitSize) {
			return io.ErrUnexpectedEOF
		}
		return nil
	}

	gsReader := new(GranSpecificReader)
	if itemBitSize%8 == 0 {
		// Byte-granular reader takes whole bytes, regardless of the cursor alignment.
		gsReader.ReadNext = func() ([]byte, error) {
			if err := checkLeft(); err != nil {
				return nil, err
			}
			b := make([]byte, itemSize)
			for i := range b {
				byt, err := br.ReadByte()
				if err != nil {
					return nil, err
				}
				b[i] = byt
			}
			return b, nil
		}
		gsReader.ReadNextUintBE = func() (uint64, error) {
			b, err := gsReader.ReadNext()
			if err != nil {
				return 0, err
			}
			return UintBE(b), nil
		}
	} else {
		// Bit-granular reader splits the last byte of an item.
		gsReader.ReadNext = func() ([]byte, error) {
			if err := checkLeft(); err != nil {
				return nil, err
			}
			b := make([]byte, itemSize)
			for i := 0; i < len(b)-1; i++ {
				byt, err := br.ReadByte()
				if err != nil {
					return nil, err
				}
				b[i] = byt
			}
			last, err := br.ReadBits(itemBitSize % 8)
			if err != nil {
				return nil, err
			}
			b[len(b)-1] = byte(last)
			return b, nil
		}
		gsReader.ReadNextUintBE = func() (uint64, error) {
			if err := checkLeft(); err != nil {
				return 0, err
			}
			return br.ReadBits(itemBitSize)
		}
	}

	return gsReader, nil
}

// GranSpecificWriter provides a wrapper for bitstream.Writer to allow granularity-specific
// access to the buffer according to the defined item size, where bit-granular and
// byte-granular sizes are supported via a specialized code path.
type GranSpecificWriter struct {
	Write       func([]byte) error
	WriteUintBE func(uint64) error
	Flush       func() error
}

func NewGranSpecificWriter(bw *bitstream.Writer, itemBitSize uint) (*GranSpecificWriter, error) {
	if itemBitSize == 0 {
		return nil, ErrInvalidItemSize
	}

	itemSize := int(itemBitSize+7) / 8
	checkLen := func(b []byte) error {
		if len(b) != itemSize {
			return ItemLengthError{ItemBitSize: itemBitSize, Expected: itemSize, Given: len(b)}
		}
		return nil
	}

	gsWriter := new(GranSpecificWriter)
	if itemBitSize%8 == 0 {
		// Byte-granular writer writes whole bytes.
		gsWriter.Write = func(b []byte) error {
			if err := checkLen(b); err != nil {
				return err
			}
			for _, byt := range b {
				if err := bw.WriteByte(byt); err != nil {
					return err
				}
			}
			return nil
		}
		gsWriter.WriteUintBE = func(v uint64) error {
			b := make([]byte, itemSize)
			PutUintBE(b, v)
			return gsWriter.Write(b)
		}
		gsWriter.Flush = func() error { return nil }
	} else {
		// Bit-granular writer writes the low bits of the last byte only.
		gsWriter.Write = func(b []byte) error {
			if err := checkLen(b); err != nil {
				return err
			}
			for _, byt := range b[:len(b)-1] {
				if err := bw.WriteByte(byt); err != nil {
					return err
				}
			}
			return bw.WriteBits(uint64(b[len(b)-1]), itemBitSize%8)
		}
		gsWriter.WriteUintBE = func(v uint64) error {
			return bw.WriteBits(v, itemBitSize)
		}
		gsWriter.Flush = func() error {
			return bw.ByteAlign()
		}
	}

	return gsWriter, nil
}
