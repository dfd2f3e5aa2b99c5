package fs

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestOpenSequentialSize(t *testing.T) {
	path := filepath.Join(t.TempDir(), "image.bin")
	require.NoError(t, os.WriteFile(path, make([]byte, 4096), 0644))

	f, err := OpenSequential(path)
	require.NoError(t, err)
	defer f.Close()

	size, err := Size(f)
	require.NoError(t, err)
	require.Equal(t, uint64(4096), size)

	buf := make([]byte, 16)
	n, err := f.ReadAt(buf, 4080)
	require.NoError(t, err)
	require.Equal(t, 16, n)
}

func TestOpenMissing(t *testing.T) {
	_, err := Open(filepath.Join(t.TempDir(), "missing.bin"))
	require.ErrorIs(t, err, os.ErrNotExist)
}
