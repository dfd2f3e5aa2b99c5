//go:build linux

package fs

import (
	"os"

	"golang.org/x/sys/unix"
)

// OpenSequential opens path for a single front-to-back pass, asking the
// kernel for aggressive read-ahead.
func OpenSequential(path string) (File, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}

	// advisory, errors are ignored
	_ = unix.Fadvise(int(f.Fd()), 0, 0, unix.FADV_SEQUENTIAL)
	return f, nil
}
