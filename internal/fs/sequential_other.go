//go:build !linux

package fs

func OpenSequential(path string) (File, error) {
	return Open(path)
}
