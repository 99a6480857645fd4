//go:build unix

package persistence

import (
	"fmt"
	"os"

	"golang.org/x/sys/unix"

	"github.com/spacemeshos/bitbuffer/bitstream"
)

// MappedFile is a file mapped read-write into memory. Writers created from it
// work in external mode directly on the mapping.
type MappedFile struct {
	data []byte
}

// MapFile maps the first size bytes of the file at path, creating or extending
// it with zeros when needed. A size of 0 maps the whole file.
func MapFile(path string, size int) (*MappedFile, error) {
	f, err := openForMapping(path, size)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil {
		return nil, err
	}
	if size == 0 {
		size = int(info.Size())
	}
	if size == 0 {
		return &MappedFile{data: []byte{}}, nil
	}

	data, err := unix.Mmap(int(f.Fd()), 0, size, unix.PROT_READ|unix.PROT_WRITE, unix.MAP_SHARED)
	if err != nil {
		return nil, fmt.Errorf("mmap %s: %w", path, err)
	}

	return &MappedFile{data: data}, nil
}

// Sync flushes the mapping to disk.
func (m *MappedFile) Sync() error {
	if len(m.data) == 0 {
		return nil
	}
	return unix.Msync(m.data, unix.MS_SYNC)
}

// Close unmaps the file. Closing twice is a no-op. Writers and readers over
// the mapping must not be used afterwards.
func (m *MappedFile) Close() error {
	if len(m.data) == 0 {
		return nil
	}

	if err := unix.Munmap(m.data); err != nil {
		return fmt.Errorf("munmap: %w", err)
	}
	m.data = nil
	return nil
}

func openForMapping(path string, size int) (*os.File, error) {
	f, err := os.OpenFile(path, os.O_RDWR|os.O_CREATE, OwnerReadWrite)
	if err != nil {
		return nil, err
	}

	info, err := f.Stat()
	if err != nil {
		f.Close()
		return nil, err
	}
	if int64(size) > info.Size() {
		if err := f.Truncate(int64(size)); err != nil {
			f.Close()
			return nil, fmt.Errorf("failed to extend %s: %w", path, err)
		}
	}

	return f, nil
}

// Bytes returns the mapped memory.
func (m *MappedFile) Bytes() []byte {
	return m.data
}

// Writer returns a Writer over the mapping. See bitstream.NewWriter for the
// meaning of nofValidBits.
func (m *MappedFile) Writer(nofValidBits uint64, opts ...bitstream.Option) (*bitstream.Writer, error) {
	return bitstream.NewWriter(m.data, nofValidBits, opts...)
}

// Reader returns a Reader over the mapping.
func (m *MappedFile) Reader(nofValidBits uint64) (*bitstream.Reader, error) {
	return bitstream.NewReaderBits(m.data, nofValidBits)
}
