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
package scan

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/ostafen/rz4/internal/format"
	"github.com/ostafen/rz4/internal/fs"
)

var (
	ErrShortRead        = errors.New("short read")
	ErrOutOfRange       = errors.New("stream exceeds source size")
	ErrOutputUnwritable = errors.New("output unwritable")
)

// Extractor copies byte ranges of a source into individual files.
// It owns its own handle on the source, opened after scanning completed.
type Extractor struct {
	src    fs.File
	buf    []byte
	logger *slog.Logger
}

func NewExtractor(path string, bufSize int, logger *slog.Logger) (*Extractor, error) {
	if bufSize <= 0 {
		bufSize = format.DefaultBufferSize
	}
	if logger == nil {
		logger = discardLogger()
	}

	f, err := fs.Open(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInputUnavailable, err)
	}
	return &Extractor{
		src:    f,
		buf:    make([]byte, bufSize),
		logger: logger,
	}, nil
}

func (e *Extractor) Close() error {
	return e.src.Close()
}

// Extract writes the source bytes [offset, offset+length) to a new file at
// dst. On failure the partially written file is removed.
func (e *Extractor) Extract(offset, length uint64, dst string) (err error) {
	size, err := fs.Size(e.src)
	if err != nil {
		return fmt.Errorf("failed to stat source: %w", err)
	}
	if offset > size || length > size-offset {
		return fmt.Errorf("%w: [%d, %d) with source size %d", ErrOutOfRange, offset, offset+length, size)
	}

	out, err := os.Create(dst)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrOutputUnwritable, err)
	}
	defer func() {
		if cerr := out.Close(); cerr != nil && err == nil {
			err = fmt.Errorf("%w: %w", ErrOutputUnwritable, cerr)
		}
		if err != nil {
			os.Remove(dst)
		}
	}()

	var copied uint64
	for copied < length {
		n := int(min(uint64(len(e.buf)), length-copied))

		m, rerr := e.src.ReadAt(e.buf[:n], int64(offset+copied))
		if m > 0 {
			if _, werr := out.Write(e.buf[:m]); werr != nil {
				return fmt.Errorf("%w: %w", ErrOutputUnwritable, werr)
			}
			copied += uint64(m)
		}

		if m < n {
			if rerr != nil && rerr != io.EOF {
				return fmt.Errorf("failed to read source at offset %d: %w", offset+copied, rerr)
			}
			return fmt.Errorf("%w: copied %d of %d bytes at offset %d", ErrShortRead, copied, length, offset)
		}
	}
	return nil
}

// Failure describes a stream that could not be extracted.
type Failure struct {
	Record format.StreamRecord
	Path   string
	Err    error
}

type ExtractReport struct {
	Extracted int
	Bytes     uint64
	Failures  []Failure
}

// ExtractAll extracts every record of registry into outDir, in registry
// order, naming each file after its record. A failing record is logged
// and skipped. onProgress, if not nil, is called after each record with
// the number of records processed so far.
func (e *Extractor) ExtractAll(registry *format.StreamRegistry, outDir string, onProgress func(done, total int)) *ExtractReport {
	report := &ExtractReport{}
	total := registry.Count()

	for i, rec := range registry.All() {
		path := filepath.Join(outDir, rec.FileName())

		if err := e.Extract(rec.Offset, rec.Length, path); err != nil {
			e.logger.Error("unable to extract stream",
				"offset", rec.Offset,
				"size", rec.Length,
				"path", path,
				"err", err,
			)
			report.Failures = append(report.Failures, Failure{Record: rec, Path: path, Err: err})
		} else {
			e.logger.Info("stream extracted", "path", path, "size", rec.Length)
			report.Extracted++
			report.Bytes += rec.Length
		}

		if onProgress != nil {
			onProgress(i+1, total)
		}
	}
	return report
}
