package format

import (
	"encoding/binary"
	"fmt"
)

const (
	// auHeaderSize is the size of the fixed part of an AU header (6 * 4 bytes).
	auHeaderSize = 24

	// auDataSizeUnknown in the data size field means the samples extend
	// to the end of the file.
	auDataSizeUnknown uint32 = 0xFFFFFFFF

	auMaxEncoding = 27
)

var auDescriptor = Descriptor{
	Ext:         "au",
	Description: "Sun/NeXT audio",
	Signature:   NewSignature(".snd"),
	HeaderLen:   auHeaderSize,
}

// AUDetector recognises Sun/NeXT audio streams. All header fields are
// big-endian:
//
//	0  magic ".snd"
//	4  data offset (header size, >= 24)
//	8  data size in bytes, or 0xFFFFFFFF
//	12 encoding
//	16 sample rate
//	20 channels
//
// Unlike WAV, a stream whose samples run past the end of the source is kept
// and truncated there: AU writers commonly leave the data size unknown.
type AUDetector struct{}

func (AUDetector) Descriptor() Descriptor {
	return auDescriptor
}

func (AUDetector) Match(b []byte) Verdict {
	return matchHeader(auDescriptor, b)
}

func (AUDetector) ResolveLength(hdr []byte, offset, sourceSize uint64) (uint64, error) {
	if len(hdr) < auHeaderSize {
		return 0, fmt.Errorf("%w: au header needs %d bytes, got %d", ErrUnresolvable, auHeaderSize, len(hdr))
	}

	dataOffset := binary.BigEndian.Uint32(hdr[4:8])
	dataSize := binary.BigEndian.Uint32(hdr[8:12])
	encoding := binary.BigEndian.Uint32(hdr[12:16])
	channels := binary.BigEndian.Uint32(hdr[20:24])

	if dataOffset < auHeaderSize {
		return 0, fmt.Errorf("%w: au data offset %d is smaller than the header", ErrUnresolvable, dataOffset)
	}
	if encoding == 0 || encoding > auMaxEncoding {
		return 0, fmt.Errorf("%w: unknown au encoding %d", ErrUnresolvable, encoding)
	}
	if channels == 0 {
		return 0, fmt.Errorf("%w: au stream has no channels", ErrUnresolvable)
	}

	remaining := sourceSize - min(offset, sourceSize)
	if uint64(dataOffset) > remaining {
		return 0, fmt.Errorf("%w: au header at %d ends past end of source", ErrUnresolvable, offset)
	}

	if dataSize == auDataSizeUnknown {
		return remaining, nil
	}
	return min(uint64(dataOffset)+uint64(dataSize), remaining), nil
}
