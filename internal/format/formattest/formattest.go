// Package formattest builds synthetic source images with embedded streams
// at known offsets.
package formattest

import (
	"encoding/binary"
	"math/rand/v2"
	"os"
	"path/filepath"
	"testing"
)

// Stream places Data at Offset inside an image.
type Stream struct {
	Offset int
	Data   []byte
}

// NewRand returns a deterministic random source.
func NewRand(seed uint64) *rand.Rand {
	return rand.New(rand.NewPCG(seed, seed^0x9E3779B97F4A7C15))
}

// Filler returns n random bytes that never contain the first byte of a
// supported signature ('R' for RIFF, '.' for .snd), so no stream can start
// inside them.
func Filler(rng *rand.Rand, n int) []byte {
	b := make([]byte, n)
	for i := range b {
		for {
			c := byte(rng.UintN(256))
			if c != 'R' && c != '.' {
				b[i] = c
				break
			}
		}
	}
	return b
}

// WAV returns a well-formed RIFF/WAVE stream of exactly size bytes
// (size >= 12). Streams of at least 44 bytes carry a PCM fmt chunk and a
// data chunk.
func WAV(rng *rand.Rand, size int) []byte {
	if size < 12 {
		panic("wav stream must be at least 12 bytes")
	}

	b := Filler(rng, size)
	copy(b[0:4], "RIFF")
	binary.LittleEndian.PutUint32(b[4:8], uint32(size-8))
	copy(b[8:12], "WAVE")

	if size >= 44 {
		copy(b[12:16], "fmt ")
		binary.LittleEndian.PutUint32(b[16:20], 16)
		binary.LittleEndian.PutUint16(b[20:22], 1) // PCM
		binary.LittleEndian.PutUint16(b[22:24], 2)
		binary.LittleEndian.PutUint32(b[24:28], 44100)
		binary.LittleEndian.PutUint32(b[28:32], 44100*4)
		binary.LittleEndian.PutUint16(b[32:34], 4)
		binary.LittleEndian.PutUint16(b[34:36], 16)
		copy(b[36:40], "data")
		binary.LittleEndian.PutUint32(b[40:44], uint32(size-44))
	}
	return b
}

// WAVHeader returns a bare 12 byte RIFF/WAVE header declaring chunkSize.
func WAVHeader(chunkSize uint32) []byte {
	b := make([]byte, 12)
	copy(b[0:4], "RIFF")
	binary.LittleEndian.PutUint32(b[4:8], chunkSize)
	copy(b[8:12], "WAVE")
	return b
}

// AU returns a Sun audio stream with a 24 byte header followed by
// dataSize bytes of samples. If declaredSize is non-nil it is written in
// the data size field instead of dataSize.
func AU(rng *rand.Rand, dataSize int, declaredSize *uint32) []byte {
	b := Filler(rng, 24+dataSize)
	copy(b[0:4], ".snd")
	binary.BigEndian.PutUint32(b[4:8], 24)

	size := uint32(dataSize)
	if declaredSize != nil {
		size = *declaredSize
	}
	binary.BigEndian.PutUint32(b[8:12], size)
	binary.BigEndian.PutUint32(b[12:16], 3) // 16-bit linear PCM
	binary.BigEndian.PutUint32(b[16:20], 8000)
	binary.BigEndian.PutUint32(b[20:24], 1)
	return b
}

// Image returns size bytes of filler with the given streams copied in.
func Image(rng *rand.Rand, size int, streams ...Stream) []byte {
	img := Filler(rng, size)
	for _, s := range streams {
		copy(img[s.Offset:], s.Data)
	}
	return img
}

// WriteFile stores data in a file inside a per-test temporary directory
// and returns its path.
func WriteFile(t testing.TB, name string, data []byte) string {
	t.Helper()

	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, data, 0644); err != nil {
		t.Fatalf("write %s: %v", path, err)
	}
	return path
}
