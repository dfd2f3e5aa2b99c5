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
package pbar

import (
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/ostafen/rz4/pkg/util/format"
	"golang.org/x/time/rate"
)

const MinRefreshRate = time.Millisecond * 500

const barLength = 20

// ProgressBarState renders a single, self-overwriting progress line.
type ProgressBarState struct {
	out   io.Writer
	label string
	units func(int64) string

	Total      int64
	Processed  int64
	FilesFound int

	throttle      rate.Sometimes
	lastUpdate    time.Time
	lastProcessed int64
}

// NewBytesProgressBar tracks a quantity of bytes, showing throughput and ETA.
func NewBytesProgressBar(w io.Writer, label string, totalBytes int64) *ProgressBarState {
	return &ProgressBarState{
		out:   w,
		label: label,
		units: format.FormatBytes,
		Total: totalBytes,

		throttle: rate.Sometimes{Interval: MinRefreshRate},
	}
}

// NewCountProgressBar tracks a number of items.
func NewCountProgressBar(w io.Writer, label string, total int) *ProgressBarState {
	return &ProgressBarState{
		out:   w,
		label: label,
		units: func(n int64) string { return strconv.FormatInt(n, 10) },
		Total: int64(total),

		throttle: rate.Sometimes{Interval: MinRefreshRate},
	}
}

func (pbs *ProgressBarState) Percentage() int64 {
	if pbs.Total <= 0 {
		return 100
	}
	return pbs.Processed * 100 / pbs.Total
}

// Update sets the progress and redraws the line, at most once every
// MinRefreshRate unless force is set.
func (pbs *ProgressBarState) Update(processed int64, found int, force bool) {
	pbs.Processed = processed
	pbs.FilesFound = found
	pbs.render(force)
}

func (pbs *ProgressBarState) render(force bool) {
	if !force {
		due := false
		pbs.throttle.Do(func() { due = true })
		if !due {
			return
		}
	}

	now := time.Now()
	elapsed := now.Sub(pbs.lastUpdate)

	percentage := pbs.Percentage()

	filledLen := int(barLength * percentage / 100)
	var bar string
	if filledLen >= barLength {
		bar = strings.Repeat("=", barLength)
	} else {
		bar = strings.Repeat("=", filledLen) + ">" + strings.Repeat(" ", barLength-filledLen-1)
	}

	var rate string
	if !pbs.lastUpdate.IsZero() && elapsed > 0 {
		perSec := float64(pbs.Processed-pbs.lastProcessed) / elapsed.Seconds()
		rate = fmt.Sprintf(" | @ %s/s", pbs.units(int64(perSec)))
	}

	pbs.lastUpdate = now
	pbs.lastProcessed = pbs.Processed

	// trailing spaces clear leftovers of a previous, longer line
	fmt.Fprintf(pbs.out, "\r[INFO] %s: [%s] %3d%% (%s/%s) | Found: %d%s    ",
		pbs.label,
		bar,
		percentage,
		pbs.units(pbs.Processed),
		pbs.units(pbs.Total),
		pbs.FilesFound,
		rate,
	)
}

// Finish draws the final state and moves to the next line.
func (pbs *ProgressBarState) Finish() {
	pbs.render(true)
	fmt.Fprintln(pbs.out)
}
