package persistence

import (
	"fmt"
	"os"

	"github.com/spacemeshos/bitbuffer/bitstream"
	"github.com/spacemeshos/bitbuffer/config"
	"github.com/spacemeshos/bitbuffer/shared"
)

// FileReader reads items of itemBitSize bits from a file written by FileWriter.
//
// The file does not record the number of items, so the width is derived from
// the file size. With items narrower than 8 bits the zero padding of the last
// byte may count as extra items.
type FileReader struct {
	br          *bitstream.Reader
	gsReader    *shared.GranSpecificReader
	itemBitSize uint
	width       uint64
}

// A compile time check to ensure that FileReader fully implements the Reader interface.
var _ Reader = (*FileReader)(nil)

func NewFileReader(name string, itemBitSize uint) (*FileReader, error) {
	if itemBitSize == 0 {
		return nil, shared.ErrInvalidItemSize
	}

	data, err := os.ReadFile(name)
	if err != nil {
		return nil, fmt.Errorf("failed to open file for items reader: %v", err)
	}

	width := config.NumItemsIn(itemBitSize, uint64(len(data))*8)
	br := bitstream.NewReader(data)
	if width > 0 {
		br, err = bitstream.NewReaderBits(data, width*uint64(itemBitSize))
		if err != nil {
			return nil, err
		}
	}
	gsReader, err := shared.NewGranSpecificReader(br, itemBitSize)
	if err != nil {
		return nil, err
	}

	return &FileReader{
		br:          br,
		gsReader:    gsReader,
		itemBitSize: itemBitSize,
		width:       width,
	}, nil
}

// ReadNext returns the next item, or io.EOF after the last one.
func (r *FileReader) ReadNext() ([]byte, error) {
	return r.gsReader.ReadNext()
}

// ReadNextUintBE returns the next item as an integer.
func (r *FileReader) ReadNextUintBE() (uint64, error) {
	return r.gsReader.ReadNextUintBE()
}

// Seek moves to the item at index. Seeking to Width positions at the end.
func (r *FileReader) Seek(index uint64) error {
	if index > r.width {
		return fmt.Errorf("invalid index; expected: <= %d, given: %d", r.width, index)
	}
	return r.br.SeekBits(int64(index*uint64(r.itemBitSize)), bitstream.Begin)
}

func (r *FileReader) Width() (uint64, error) {
	return r.width, nil
}

func (r *FileReader) Close() error {
	r.br = nil
	r.gsReader = nil
	return nil
}
