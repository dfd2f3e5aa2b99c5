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
package reader

import (
	"fmt"
	"io"
)

// Window is a forward-only sliding buffer over an io.ReaderAt of known size.
//
// Refilling the window at an offset that is still buffered moves the
// unconsumed tail (the carry-over) to the front of the buffer and reads the
// rest after it, so a byte pattern straddling two reads is always seen
// contiguously. Refilling at an offset past the buffered data reloads the
// window there without reading the bytes in between.
type Window struct {
	r    io.ReaderAt
	size int64 // size of the source, shrunk if a read hits EOF early

	buf  []byte
	base int64 // absolute offset of buf[0]
	n    int   // number of valid bytes in buf
}

func NewWindow(r io.ReaderAt, size int64, bufSize int) *Window {
	return &Window{
		r:    r,
		size: size,
		buf:  make([]byte, bufSize),
	}
}

// Fill positions the window at off, keeping any bytes already buffered from
// off onwards and reading after them until the buffer is full or the source
// ends.
func (w *Window) Fill(off int64) error {
	if off < w.base {
		return fmt.Errorf("window: cannot move backwards from %d to %d", w.base, off)
	}

	carry := 0
	if off < w.base+int64(w.n) {
		carry = copy(w.buf, w.buf[off-w.base:w.n])
	}
	w.base = off
	w.n = carry

	want := int(min(int64(len(w.buf)), max(w.size-off, 0)))
	if want <= carry {
		return nil
	}

	m, err := w.r.ReadAt(w.buf[carry:want], off+int64(carry))
	w.n += m
	if err != nil && err != io.EOF {
		return err
	}
	if m < want-carry {
		// the source is shorter than announced: this is the final window
		w.size = w.base + int64(w.n)
	}
	return nil
}

// Bytes returns the buffered bytes starting at the absolute offset off,
// or nil if off is not buffered.
func (w *Window) Bytes(off int64) []byte {
	if off < w.base || off >= w.base+int64(w.n) {
		return nil
	}
	return w.buf[off-w.base : w.n]
}

// Available returns how many bytes are buffered from off onwards.
func (w *Window) Available(off int64) int {
	return len(w.Bytes(off))
}

// AtEnd reports whether the buffered data reaches the end of the source,
// i.e. no further Fill can make more bytes available.
func (w *Window) AtEnd() bool {
	return w.base+int64(w.n) >= w.size
}

// Size returns the size of the source. It can be smaller than the size the
// window was created with if the source turned out to be truncated.
func (w *Window) Size() int64 {
	return w.size
}

func (w *Window) Cap() int {
	return len(w.buf)
}
