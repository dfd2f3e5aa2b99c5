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
	"encoding/binary"
	"fmt"
)

const (
	riffChunkHeaderSize = 8 // "RIFF" + little-endian chunk size
	wavHeaderSize       = 12

	// the RIFF chunk must at least hold the "WAVE" form type
	minRIFFChunkSize = 4
)

var wavDescriptor = Descriptor{
	Ext:            "wav",
	Description:    "RIFF WAVE audio",
	Signature:      NewSignature("RIFF????WAVE"),
	HeaderLen:      wavHeaderSize,
	DefaultEnabled: true,
}

// WAVDetector recognises RIFF/WAVE streams.
//
// The RIFF chunk size counts the bytes following the size field, so the
// whole stream spans 8 + chunk size bytes.
type WAVDetector struct{}

func (WAVDetector) Descriptor() Descriptor {
	return wavDescriptor
}

func (WAVDetector) Match(b []byte) Verdict {
	return matchHeader(wavDescriptor, b)
}

func (WAVDetector) ResolveLength(hdr []byte, offset, sourceSize uint64) (uint64, error) {
	if len(hdr) < wavHeaderSize {
		return 0, fmt.Errorf("%w: wav header needs %d bytes, got %d", ErrUnresolvable, wavHeaderSize, len(hdr))
	}

	chunkSize := binary.LittleEndian.Uint32(hdr[4:8])
	if chunkSize < minRIFFChunkSize {
		return 0, fmt.Errorf("%w: degenerate RIFF chunk size %d", ErrUnresolvable, chunkSize)
	}

	size := riffChunkHeaderSize + uint64(chunkSize)
	if offset+size > sourceSize {
		return 0, fmt.Errorf("%w: wav stream at %d with size %d ends past end of source (%d)",
			ErrUnresolvable, offset, size, sourceSize)
	}
	return size, nil
}
