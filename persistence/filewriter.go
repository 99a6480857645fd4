package persistence

import (
	"bufio"
	"fmt"
	"os"

	"go.uber.org/zap"

	"github.com/spacemeshos/bitbuffer/bitstream"
	"github.com/spacemeshos/bitbuffer/shared"
)

// spillSize is the number of whole bytes collected in memory before they are
// handed to the file buffer.
const spillSize = 4096

// FileWriter writes items of itemBitSize bits into a file, packed without
// padding. The last byte is zero-padded on Close.
type FileWriter struct {
	file        *os.File
	buf         *bufio.Writer
	bits        *bitstream.Buffer
	gsWriter    *shared.GranSpecificWriter
	itemBitSize uint
	numItems    uint64
	logger      *zap.Logger
}

// A compile time check to ensure that FileWriter fully implements the Writer interface.
var _ Writer = (*FileWriter)(nil)

// NewFileWriter creates filename, truncating any previous content.
func NewFileWriter(filename string, itemBitSize uint, logger *zap.Logger) (*FileWriter, error) {
	if logger == nil {
		logger = zap.NewNop()
	}

	bits := bitstream.NewBuffer(spillSize+8, bitstream.WithLogger(logger))
	gsWriter, err := shared.NewGranSpecificWriter(bits.Writer, itemBitSize)
	if err != nil {
		return nil, err
	}

	f, err := os.OpenFile(filename, os.O_CREATE|os.O_TRUNC|os.O_WRONLY, OwnerReadWrite)
	if err != nil {
		return nil, err
	}
	return &FileWriter{
		file:        f,
		buf:         bufio.NewWriter(f),
		bits:        bits,
		gsWriter:    gsWriter,
		itemBitSize: itemBitSize,
		logger:      logger,
	}, nil
}

// Write appends a single item. See shared.GranSpecificWriter for the item format.
func (w *FileWriter) Write(item []byte) error {
	if err := w.gsWriter.Write(item); err != nil {
		return err
	}
	w.numItems++
	return w.spill(spillSize)
}

// WriteUintBE appends the itemBitSize least significant bits of v as an item.
func (w *FileWriter) WriteUintBE(v uint64) error {
	if err := w.gsWriter.WriteUintBE(v); err != nil {
		return err
	}
	w.numItems++
	return w.spill(spillSize)
}

// spill moves the whole bytes held in memory to the file buffer once there are
// at least threshold of them. A trailing partial byte stays in memory.
func (w *FileWriter) spill(threshold uint64) error {
	whole := w.bits.NofBits() / 8
	if whole == 0 || whole < threshold {
		return nil
	}

	if _, err := w.buf.Write(w.bits.Bytes()[:whole]); err != nil {
		return err
	}
	return w.bits.Erase(0, whole*8)
}

// Width returns the number of items written so far.
func (w *FileWriter) Width() (uint64, error) {
	return w.numItems, nil
}

// Flush writes all whole bytes to disk.
func (w *FileWriter) Flush() error {
	if err := w.spill(0); err != nil {
		return err
	}
	if err := w.buf.Flush(); err != nil {
		return fmt.Errorf("failed to flush disk writer: %v", err)
	}

	return nil
}

func (w *FileWriter) Close() (*os.FileInfo, error) {
	if err := w.gsWriter.Flush(); err != nil {
		return nil, err
	}
	if err := w.Flush(); err != nil {
		return nil, err
	}
	w.buf = nil

	info, err := w.file.Stat()
	if err != nil {
		return nil, err
	}

	err = w.file.Close()
	if err != nil {
		return nil, err
	}
	w.file = nil

	w.logger.Debug("persistence: closed item file",
		zap.String("name", info.Name()),
		zap.Uint64("items", w.numItems),
		zap.Uint("item_bits", w.itemBitSize),
	)
	return &info, nil
}
