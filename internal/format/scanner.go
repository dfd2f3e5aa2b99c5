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
package format

import (
	"fmt"
	"io"
	"log/slog"

	"github.com/ostafen/rz4/pkg/reader"
)

const DefaultBufferSize = 256 * 1024

// Scanner walks a source once, front to back, and records every stream
// recognised by its detectors.
type Scanner struct {
	logger     *slog.Logger
	detectors  *DetectorSet
	bufSize    int
	onProgress func(scanned uint64, found int)
}

func NewScanner(logger *slog.Logger, detectors *DetectorSet, bufSize int) *Scanner {
	if bufSize <= 0 {
		bufSize = DefaultBufferSize
	}
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return &Scanner{
		logger:    logger,
		detectors: detectors,
		bufSize:   bufSize,
	}
}

// OnProgress registers fn to be called after each buffer refill and once
// when the scan completes.
func (sc *Scanner) OnProgress(fn func(scanned uint64, found int)) {
	sc.onProgress = fn
}

// Scan reads size bytes of r and returns the registry of the streams found.
//
// A confirmed stream moves the cursor to its end, so payload bytes are never
// searched for nested signatures. A rejected candidate moves it by one byte.
// If reading fails, the streams found up to that point are returned along
// with the error.
func (sc *Scanner) Scan(r io.ReaderAt, size uint64) (*StreamRegistry, error) {
	registry := NewStreamRegistry()
	if sc.detectors.Len() == 0 {
		sc.progress(size, 0)
		return registry, nil
	}

	hdrLen := sc.detectors.MaxHeaderLen()
	w := reader.NewWindow(r, int64(size), max(sc.bufSize, hdrLen))

	fill := func(pos uint64) error {
		if err := w.Fill(int64(pos)); err != nil {
			return fmt.Errorf("read at offset %d: %w", pos, err)
		}
		sc.progress(pos, registry.Count())
		return nil
	}

	for pos := uint64(0); pos < uint64(w.Size()); {
		// keep at least a full header ahead of the cursor; the bytes left
		// before it are carried over to the front of the window
		if w.Available(int64(pos)) < hdrLen && !w.AtEnd() {
			if err := fill(pos); err != nil {
				return registry, err
			}
			continue
		}

		data := w.Bytes(int64(pos))

		d, verdict := sc.detectors.Detect(data)
		if verdict == Insufficient {
			if !w.AtEnd() && len(data) < w.Cap() {
				if err := fill(pos); err != nil {
					return registry, err
				}
				continue
			}
			verdict = NoMatch
		}

		if verdict == NoMatch {
			pos++
			continue
		}

		rec, err := sc.resolve(d, data, pos, uint64(w.Size()))
		if err != nil {
			sc.logger.Debug("discarding candidate",
				"offset", pos,
				"format", d.Descriptor().Ext,
				"err", err,
			)
			pos++
			continue
		}

		if err := registry.Add(rec); err != nil {
			// cannot happen as long as the cursor only moves forward
			return registry, err
		}

		sc.logger.Info("stream found",
			"offset", rec.Offset,
			"size", rec.Length,
			"format", rec.Ext,
		)
		pos = rec.End()
	}

	sc.progress(uint64(w.Size()), registry.Count())
	return registry, nil
}

func (sc *Scanner) resolve(d Detector, hdr []byte, pos, size uint64) (StreamRecord, error) {
	length, err := d.ResolveLength(hdr, pos, size)
	if err != nil {
		return StreamRecord{}, err
	}
	if length == 0 || pos+length > size {
		return StreamRecord{}, fmt.Errorf("%w: length %d at offset %d", ErrUnresolvable, length, pos)
	}
	return StreamRecord{
		Offset: pos,
		Length: length,
		Ext:    d.Descriptor().Ext,
	}, nil
}

func (sc *Scanner) progress(scanned uint64, found int) {
	if sc.onProgress != nil {
		sc.onProgress(scanned, found)
	}
}
