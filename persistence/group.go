package persistence

import (
	"errors"
	"fmt"
	"io"
)

type GroupReader struct {
	readers           []Reader
	activeReaderIndex int
	readerWidth       uint64
	lastReaderWidth   uint64
}

// A compile time check to ensure that GroupReader fully implements the Reader interface.
var _ Reader = (*GroupReader)(nil)

// Group groups a slice of Reader into one continuous Reader.
func Group(readers []Reader) (*GroupReader, error) {
	if len(readers) < 2 {
		return nil, errors.New("number of readers must be at least 2")
	}

	// Verify that all readers, except the last one, have the same width.
	var readerWidth uint64
	var lastReaderWidth uint64
	for i := 0; i < len(readers); i++ {
		if readers[i] == nil {
			return nil, errors.New("nil readers are not allowed")
		}
		width, err := readers[i].Width()
		if err != nil {
			return nil, err
		}

		if width == 0 {
			return nil, errors.New("0 width readers are not allowed")
		}

		if i == len(readers)-1 {
			lastReaderWidth = width
			continue
		}

		if readerWidth == 0 {
			readerWidth = width
		} else if width != readerWidth {
			return nil, fmt.Errorf("readers width mismatch; expected: %d, given: %d", readerWidth, width)
		}
	}

	return &GroupReader{
		readers:         readers,
		readerWidth:     readerWidth,
		lastReaderWidth: lastReaderWidth,
	}, nil
}

func (g *GroupReader) ReadNext() ([]byte, error) {
	item, err := g.readers[g.activeReaderIndex].ReadNext()
	if err == io.EOF && g.activeReaderIndex < len(g.readers)-1 {
		g.activeReaderIndex++
		if err := g.readers[g.activeReaderIndex].Seek(0); err != nil {
			return nil, err
		}
		return g.ReadNext()
	}

	return item, err
}

// Seek moves to the item at the group-wide index.
func (g *GroupReader) Seek(index uint64) error {
	width, _ := g.Width()
	if index > width {
		return fmt.Errorf("invalid index; expected: <= %d, given: %d", width, index)
	}

	readerIndex := int(index / g.readerWidth)
	if readerIndex > len(g.readers)-1 {
		readerIndex = len(g.readers) - 1
	}
	g.activeReaderIndex = readerIndex

	return g.readers[readerIndex].Seek(index - uint64(readerIndex)*g.readerWidth)
}

func (g *GroupReader) Width() (uint64, error) {
	return uint64(len(g.readers)-1)*g.readerWidth + g.lastReaderWidth, nil
}

func (g *GroupReader) Close() error {
	for _, r := range g.readers {
		err := r.Close()
		if err != nil {
			return err
		}
	}
	return nil
}
