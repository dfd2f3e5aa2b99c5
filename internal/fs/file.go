package fs

import (
	"io"
	"os"
)

// File is a read-only source: a regular file, or a raw device on Windows.
type File interface {
	io.ReadCloser
	io.ReaderAt
	Stat() (os.FileInfo, error)
}

// Size returns the size of f in bytes.
func Size(f File) (uint64, error) {
	finfo, err := f.Stat()
	if err != nil {
		return 0, err
	}
	if finfo.Size() < 0 {
		return 0, nil
	}
	return uint64(finfo.Size()), nil
}
