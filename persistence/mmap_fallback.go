//go:build !unix

package persistence

import (
	"os"

	"github.com/spacemeshos/bitbuffer/bitstream"
)

// MappedFile holds a file in memory when mmap is not available. Sync writes
// the memory back to the file.
type MappedFile struct {
	path string
	data []byte
}

// MapFile loads the first size bytes of the file at path, creating or
// extending it with zeros when needed. A size of 0 loads the whole file.
func MapFile(path string, size int) (*MappedFile, error) {
	data, err := os.ReadFile(path)
	if err != nil && !os.IsNotExist(err) {
		return nil, err
	}

	switch {
	case size == 0:
	case size > len(data):
		data = append(data, make([]byte, size-len(data))...)
	default:
		data = data[:size]
	}

	m := &MappedFile{path: path, data: data}
	if err := m.Sync(); err != nil {
		return nil, err
	}
	return m, nil
}

// Sync writes the memory back to the file.
func (m *MappedFile) Sync() error {
	f, err := os.OpenFile(m.path, os.O_WRONLY|os.O_CREATE, OwnerReadWrite)
	if err != nil {
		return err
	}
	if _, err := f.WriteAt(m.data, 0); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

// Close syncs and releases the memory.
func (m *MappedFile) Close() error {
	if m.data == nil {
		return nil
	}
	err := m.Sync()
	m.data = nil
	return err
}

// Bytes returns the loaded memory.
func (m *MappedFile) Bytes() []byte {
	return m.data
}

// Writer returns a Writer over the memory. See bitstream.NewWriter for the
// meaning of nofValidBits.
func (m *MappedFile) Writer(nofValidBits uint64, opts ...bitstream.Option) (*bitstream.Writer, error) {
	return bitstream.NewWriter(m.data, nofValidBits, opts...)
}

// Reader returns a Reader over the memory.
func (m *MappedFile) Reader(nofValidBits uint64) (*bitstream.Reader, error) {
	return bitstream.NewReaderBits(m.data, nofValidBits)
}
