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
	"time"

	"github.com/ostafen/rz4/internal/format"
	"github.com/ostafen/rz4/internal/fs"
	"github.com/ostafen/rz4/pkg/pbar"
)

// ErrInputUnavailable is returned when the source cannot be opened or
// inspected. It is the only error that aborts a whole run.
var ErrInputUnavailable = errors.New("input unavailable")

type Options struct {
	BufferSize int
	Formats    map[string]bool // enabled detectors by extension
	ReportFile string          // DFXML report path, empty to disable
	Progress   io.Writer       // progress bar output, nil to disable
}

// Result is the outcome of a scan phase.
type Result struct {
	Registry *format.StreamRegistry
	Size     uint64 // source size in bytes
	Duration time.Duration
}

// Scan opens filePath, scans it once from start to end and returns the
// streams found. The source is closed before returning; extraction reopens
// it.
//
// If reading fails midway, the returned Result still carries the streams
// found before the failure.
func Scan(filePath string, opts Options, logger *slog.Logger) (*Result, error) {
	if logger == nil {
		logger = discardLogger()
	}

	detectors, err := format.NewDetectorSet(opts.Formats)
	if err != nil {
		return nil, err
	}

	f, err := fs.OpenSequential(filePath)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInputUnavailable, err)
	}
	defer f.Close()

	size, err := fs.Size(f)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInputUnavailable, err)
	}

	logger.Info("scan started",
		"source", absPath(filePath),
		"size", size,
		"buffer_size", opts.BufferSize,
		"detectors", detectors.Len(),
	)

	sc := format.NewScanner(logger, detectors, opts.BufferSize)

	var bar *pbar.ProgressBarState
	if opts.Progress != nil {
		bar = pbar.NewBytesProgressBar(opts.Progress, "Scanning", int64(size))
		sc.OnProgress(func(scanned uint64, found int) {
			bar.Update(int64(scanned), found, false)
		})
	}

	start := time.Now()
	registry, scanErr := sc.Scan(f, size)

	if bar != nil {
		bar.Finish()
	}

	res := &Result{
		Registry: registry,
		Size:     size,
		Duration: time.Since(start),
	}

	logger.Info("scan completed",
		"streams", registry.Count(),
		"total_bytes", registry.TotalBytes(),
		"duration", res.Duration,
		"err", scanErr,
	)

	if opts.ReportFile != "" {
		err := WriteReport(opts.ReportFile, filePath, size, opts.BufferSize, registry)
		if err != nil {
			return res, errors.Join(scanErr, err)
		}
	}
	return res, scanErr
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func absPath(path string) string {
	absPath, err := filepath.Abs(path)
	if err != nil {
		return path
	}
	return absPath
}

// FormatDurationHMS formats a duration as HH:MM:SS, or as fractional
// seconds below one second.
func FormatDurationHMS(d time.Duration) string {
	if d < time.Second {
		return fmt.Sprintf("%.2fs", d.Seconds())
	}
	totalSeconds := int64(d.Seconds())

	hours := totalSeconds / 3600
	minutes := (totalSeconds % 3600) / 60
	seconds := totalSeconds % 60

	return fmt.Sprintf("%02d:%02d:%02d", hours, minutes, seconds)
}

// NewSessionLogger returns a slog.Logger writing to logFilePath, or
// discarding everything when the path is empty. The returned file, if not
// nil, must be closed by the caller.
func NewSessionLogger(logFilePath string, minLevel slog.Level) (*slog.Logger, *os.File, error) {
	var writer io.Writer = io.Discard
	var file *os.File

	if logFilePath != "" {
		logDir := filepath.Dir(logFilePath)
		if err := os.MkdirAll(logDir, 0755); err != nil {
			return nil, nil, fmt.Errorf("failed to create log directory %q: %w", logDir, err)
		}

		f, err := os.OpenFile(logFilePath, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to open log file %q: %w", logFilePath, err)
		}
		writer = f
		file = f
	}

	handler := slog.NewTextHandler(writer, &slog.HandlerOptions{
		Level:     minLevel,
		AddSource: true,
	})
	return slog.New(handler), file, nil
}
