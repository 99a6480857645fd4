package persistence

import (
	"os"
	"path/filepath"
)

// IsSnapshotFile reports whether info describes a snapshot file.
func IsSnapshotFile(info os.FileInfo) bool {
	return info.Mode().IsRegular() && filepath.Ext(info.Name()) == SnapshotExt
}

// ListFiles returns the sorted paths of the files in dir matching predicate.
// A missing dir holds no files.
func ListFiles(dir string, predicate func(os.FileInfo) bool) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, err
	}

	var paths []string
	for _, entry := range entries {
		info, err := entry.Info()
		if err != nil {
			return nil, err
		}
		if predicate(info) {
			paths = append(paths, filepath.Join(dir, info.Name()))
		}
	}

	return paths, nil
}

func NumBytesWritten(dir string, predicate func(os.FileInfo) bool) (uint64, error) {
	paths, err := ListFiles(dir, predicate)
	if err != nil {
		return 0, err
	}

	var numBytesWritten uint64
	for _, path := range paths {
		info, err := os.Stat(path)
		if err != nil {
			return 0, err
		}
		numBytesWritten += uint64(info.Size())
	}

	return numBytesWritten, nil
}
