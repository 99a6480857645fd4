package persistence

import "os"

// OwnerReadWriteExec is a standard owner read / write / exec file permission.
const OwnerReadWriteExec = 0o700

// OwnerReadWrite is a standard owner read / write file permission.
const OwnerReadWrite = 0o600

// Reader reads fixed-width items from a file.
type Reader interface {
	ReadNext() ([]byte, error)
	Seek(index uint64) error
	Width() (uint64, error)
	Close() error
}

// Writer appends fixed-width items to a file.
type Writer interface {
	Write(item []byte) error
	Flush() error
	Close() (*os.FileInfo, error)
}
