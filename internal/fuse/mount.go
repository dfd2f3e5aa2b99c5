//go:build !linux
// +build !linux

package fuse

import (
	"errors"
	"io"
	"log/slog"

	"github.com/ostafen/rz4/internal/format"
)

var ErrUnsupported = errors.New("FUSE mount is only supported on Linux")

func Mount(mountpoint string, r io.ReaderAt, records []format.StreamRecord, logger *slog.Logger) error {
	return ErrUnsupported
}
