package scan

import (
	"bytes"
	"io"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

// lyingFile reports a size larger than the data it can actually return.
type lyingFile struct {
	*bytes.Reader
	size int64
}

func (f *lyingFile) Close() error { return nil }

func (f *lyingFile) Stat() (os.FileInfo, error) {
	return fakeInfo{size: f.size}, nil
}

type fakeInfo struct {
	size int64
}

func (fi fakeInfo) Name() string       { return "fake" }
func (fi fakeInfo) Size() int64        { return fi.size }
func (fi fakeInfo) Mode() fs.FileMode  { return 0444 }
func (fi fakeInfo) ModTime() time.Time { return time.Time{} }
func (fi fakeInfo) IsDir() bool        { return false }
func (fi fakeInfo) Sys() any           { return nil }

func TestExtractShortRead(t *testing.T) {
	e := &Extractor{
		src:    &lyingFile{Reader: bytes.NewReader(make([]byte, 100)), size: 1000},
		buf:    make([]byte, 64),
		logger: slog.New(slog.NewTextHandler(io.Discard, nil)),
	}

	dst := filepath.Join(t.TempDir(), "out.wav")

	err := e.Extract(50, 200, dst)
	require.ErrorIs(t, err, ErrShortRead)
	require.NoFileExists(t, dst)
}
