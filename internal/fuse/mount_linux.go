//go:build linux
// +build linux

// Copyright (c) 2025 Stefano Scafiti
//
// Permission is hereby granted, free of charge, to any person obtaining a copy
// of this software and associated documentation files (the "Software"), to deal
// in the Software without restriction, including without limitation the rights
// to use, copy, modify, merge, publish, distribute, sublicense, and/or sell
// copies of the Software, and to permit persons to whom the Software is
// furnished to do so, subject to the following conditions:
//
// The above copyright notice and this permission notice shall be included in
// all copies or substantial portions of the Software.
//
// THE SOFTWARE IS PROVIDED "AS IS", WITHOUT WARRANTY OF ANY KIND, EXPRESS OR
// IMPLIED, INCLUDING BUT NOT LIMITED TO THE WARRANTIES OF MERCHANTABILITY,
// FITNESS FOR A PARTICULAR PURPOSE AND NONINFRINGEMENT. IN NO EVENT SHALL THE
// AUTHORS OR COPYRIGHT HOLDERS BE LIABLE FOR ANY CLAIM, DAMAGES OR OTHER
// LIABILITY, WHETHER IN AN ACTION OF CONTRACT, TORT OR OTHERWISE, ARISING FROM,
// OUT OF OR IN CONNECTION WITH THE SOFTWARE OR THE USE OR OTHER DEALINGS IN
// THE SOFTWARE.
package fuse

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"bazil.org/fuse"
	fusefs "bazil.org/fuse/fs"
	"github.com/ostafen/rz4/internal/format"
	osutils "github.com/ostafen/rz4/pkg/util/os"
)

const maxUnmountRetries = 3

// Mount serves records as files under mountpoint until the process is
// interrupted and the file system is unmounted. The mountpoint must be an
// empty directory; it is created if missing and removed afterwards.
func Mount(mountpoint string, r io.ReaderAt, records []format.StreamRecord, logger *slog.Logger) error {
	created, err := osutils.EnsureDir(mountpoint, true)
	if err != nil {
		return fmt.Errorf("invalid mountpoint: %w", err)
	}
	if created {
		defer os.Remove(mountpoint)
	}

	c, err := fuse.Mount(mountpoint, fuse.ReadOnly(), fuse.FSName("rz4"))
	if err != nil {
		return err
	}
	defer c.Close()

	serveErr := make(chan error, 1)
	go func() {
		serveErr <- fusefs.Serve(c, NewStreamFS(r, records))
	}()

	logger.Info("streams mounted", "mountpoint", mountpoint, "streams", len(records))

	return waitForUmount(mountpoint, serveErr, logger)
}

func waitForUmount(mountpoint string, serveErr <-chan error, logger *slog.Logger) error {
	sigc := make(chan os.Signal, 1)
	signal.Notify(sigc, os.Interrupt, syscall.SIGTERM)
	defer signal.Stop(sigc)

	unmountAttempts := 0
	for {
		select {
		case err := <-serveErr:
			// unmounted from outside, e.g. by fusermount -u
			return err
		case sig := <-sigc:
			logger.Info("signal received", "signal", sig)

			err := fuse.Unmount(mountpoint)
			if err == nil {
				logger.Info("unmounted successfully", "mountpoint", mountpoint)
				return <-serveErr
			}

			unmountAttempts++
			if unmountAttempts >= maxUnmountRetries {
				return fmt.Errorf("unable to unmount %s after %d attempts: %w", mountpoint, unmountAttempts, err)
			}
			logger.Warn("unmount failed, waiting for another signal to retry",
				"err", err,
				"remaining_retries", maxUnmountRetries-unmountAttempts,
			)
		}
	}
}
