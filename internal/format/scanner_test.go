package format_test

import (
	"bytes"
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"math/rand/v2"
	"testing"

	"github.com/ostafen/rz4/internal/format"
	"github.com/ostafen/rz4/internal/format/formattest"
	"github.com/stretchr/testify/require"
)

func wavOnly(t *testing.T) *format.DetectorSet {
	t.Helper()

	set, err := format.NewDetectorSet(map[string]bool{"wav": true})
	require.NoError(t, err)
	return set
}

func scan(t *testing.T, set *format.DetectorSet, bufSize int, img []byte) *format.StreamRegistry {
	t.Helper()

	sc := format.NewScanner(nil, set, bufSize)
	reg, err := sc.Scan(bytes.NewReader(img), uint64(len(img)))
	require.NoError(t, err)
	return reg
}

type span struct {
	offset, length uint64
}

func spans(reg *format.StreamRegistry) []span {
	var out []span
	for _, rec := range reg.All() {
		out = append(out, span{rec.Offset, rec.Length})
	}
	return out
}

func TestScanFindsAllStreams(t *testing.T) {
	rng := formattest.NewRand(42)

	want := []span{{0, 64}, {100, 12}, {500, 4000}, {4500, 44}, {10_000, 30_000}, {65_000, 1000}}

	var streams []formattest.Stream
	var total uint64
	for _, s := range want {
		streams = append(streams, formattest.Stream{
			Offset: int(s.offset),
			Data:   formattest.WAV(rng, int(s.length)),
		})
		total += s.length
	}
	img := formattest.Image(rng, 70_000, streams...)

	for _, bufSize := range []int{12, 13, 100, 4096, format.DefaultBufferSize} {
		t.Run(fmt.Sprintf("bufsize=%d", bufSize), func(t *testing.T) {
			reg := scan(t, wavOnly(t), bufSize, img)

			require.Equal(t, want, spans(reg))
			require.Equal(t, len(want), reg.Count())
			require.Equal(t, total, reg.TotalBytes())
		})
	}
}

func TestScanSignatureStraddlingRefill(t *testing.T) {
	rng := formattest.NewRand(3)

	for _, bufSize := range []int{12, 13, 16, 31, 64, 257, 4096} {
		for delta := 1; delta <= 13; delta++ {
			offset := bufSize - delta
			if offset < 0 {
				continue
			}

			img := formattest.Image(rng, 3*bufSize+100, formattest.Stream{
				Offset: offset,
				Data:   formattest.WAV(rng, 40),
			})

			reg := scan(t, wavOnly(t), bufSize, img)
			require.Equal(t, []span{{uint64(offset), 40}}, spans(reg), "bufsize=%d offset=%d", bufSize, offset)
		}
	}
}

func TestScanDiscardsCorruptHeader(t *testing.T) {
	rng := formattest.NewRand(5)

	// the bogus header claims to run past the end of the image; the real
	// stream starts right after it, inside the claimed range
	img := formattest.Image(rng, 4096,
		formattest.Stream{Offset: 1000, Data: formattest.WAVHeader(1 << 20)},
		formattest.Stream{Offset: 1012, Data: formattest.WAV(rng, 200)},
		formattest.Stream{Offset: 2000, Data: formattest.WAVHeader(0)},
		formattest.Stream{Offset: 2012, Data: formattest.WAV(rng, 100)},
	)

	reg := scan(t, wavOnly(t), 64, img)
	require.Equal(t, []span{{1012, 200}, {2012, 100}}, spans(reg))
}

func TestScanSkipsNestedSignatures(t *testing.T) {
	rng := formattest.NewRand(6)

	outer := formattest.WAV(rng, 2000)
	copy(outer[500:], formattest.WAV(rng, 100))

	img := formattest.Image(rng, 8192, formattest.Stream{Offset: 1024, Data: outer})

	reg := scan(t, wavOnly(t), 256, img)
	require.Equal(t, []span{{1024, 2000}}, spans(reg))
}

func TestScanStreamEndingAtEOF(t *testing.T) {
	rng := formattest.NewRand(8)

	img := formattest.Image(rng, 1000, formattest.Stream{Offset: 900, Data: formattest.WAV(rng, 100)})
	require.Equal(t, []span{{900, 100}}, spans(scan(t, wavOnly(t), 64, img)))

	// one byte short: the stream would end past the source
	img = img[:999]
	require.Empty(t, spans(scan(t, wavOnly(t), 64, img)))
}

func TestScanIsDeterministic(t *testing.T) {
	rng := formattest.NewRand(9)

	img := formattest.Image(rng, 50_000,
		formattest.Stream{Offset: 10, Data: formattest.WAV(rng, 1000)},
		formattest.Stream{Offset: 20_000, Data: formattest.WAV(rng, 5000)},
	)

	first := scan(t, wavOnly(t), 1024, img)
	second := scan(t, wavOnly(t), 1024, img)
	require.Equal(t, first.Records(), second.Records())
	require.Equal(t, first.TotalBytes(), second.TotalBytes())
}

func TestScanDisabledDetector(t *testing.T) {
	rng := formattest.NewRand(10)

	img := formattest.Image(rng, 10_000,
		formattest.Stream{Offset: 0, Data: formattest.WAV(rng, 1000)},
		formattest.Stream{Offset: 5000, Data: formattest.WAV(rng, 1000)},
	)

	set, err := format.NewDetectorSet(map[string]bool{"wav": false})
	require.NoError(t, err)

	reg := scan(t, set, 1024, img)
	require.Zero(t, reg.Count())
	require.Zero(t, reg.TotalBytes())
}

func TestScanMultipleFormats(t *testing.T) {
	rng := formattest.NewRand(11)

	unknown := uint32(0xFFFFFFFF)
	img := formattest.Image(rng, 20_000,
		formattest.Stream{Offset: 100, Data: formattest.WAV(rng, 1000)},
		formattest.Stream{Offset: 3000, Data: formattest.AU(rng, 500, nil)},
		formattest.Stream{Offset: 19_000, Data: formattest.AU(rng, 100, &unknown)},
	)

	set, err := format.NewDetectorSet(map[string]bool{"wav": true, "au": true})
	require.NoError(t, err)

	reg := scan(t, set, 512, img)
	require.Equal(t, []span{{100, 1000}, {3000, 524}, {19_000, 1000}}, spans(reg))

	var exts []string
	for _, rec := range reg.All() {
		exts = append(exts, rec.Ext)
	}
	require.Equal(t, []string{"wav", "au", "au"}, exts)
}

func TestScanProgress(t *testing.T) {
	rng := formattest.NewRand(12)
	img := formattest.Image(rng, 10_000, formattest.Stream{Offset: 0, Data: formattest.WAV(rng, 100)})

	sc := format.NewScanner(nil, wavOnly(t), 1000)

	var last uint64
	var found int
	calls := 0
	sc.OnProgress(func(scanned uint64, n int) {
		require.GreaterOrEqual(t, scanned, last)
		last, found = scanned, n
		calls++
	})

	_, err := sc.Scan(bytes.NewReader(img), uint64(len(img)))
	require.NoError(t, err)
	require.Equal(t, uint64(len(img)), last)
	require.Equal(t, 1, found)
	require.Greater(t, calls, 1)
}

type failingReaderAt struct {
	r      io.ReaderAt
	failAt int64
}

var errDevice = errors.New("device error")

func (f *failingReaderAt) ReadAt(p []byte, off int64) (int, error) {
	if off+int64(len(p)) > f.failAt {
		return 0, errDevice
	}
	return f.r.ReadAt(p, off)
}

func TestScanReadErrorKeepsPartialResults(t *testing.T) {
	rng := formattest.NewRand(13)
	img := formattest.Image(rng, 100_000,
		formattest.Stream{Offset: 100, Data: formattest.WAV(rng, 100)},
		formattest.Stream{Offset: 90_000, Data: formattest.WAV(rng, 100)},
	)

	r := &failingReaderAt{r: bytes.NewReader(img), failAt: 50_000}

	sc := format.NewScanner(nil, wavOnly(t), 4096)
	reg, err := sc.Scan(r, uint64(len(img)))
	require.ErrorIs(t, err, errDevice)
	require.Equal(t, []span{{100, 100}}, spans(reg))
}

func TestScanTruncatedSource(t *testing.T) {
	rng := formattest.NewRand(14)
	img := formattest.Image(rng, 2000,
		formattest.Stream{Offset: 100, Data: formattest.WAV(rng, 100)},
		formattest.Stream{Offset: 1900, Data: formattest.WAV(rng, 100)},
	)

	// the source holds fewer bytes than announced
	reg, err := format.NewScanner(nil, wavOnly(t), 256).Scan(bytes.NewReader(img[:1950]), 2000)
	require.NoError(t, err)
	require.Equal(t, []span{{100, 100}}, spans(reg))
}

func allFormats(t *testing.T) *format.DetectorSet {
	t.Helper()

	set, err := format.NewDetectorSet(map[string]bool{"wav": true, "au": true})
	require.NoError(t, err)
	return set
}

func TestScanSignaturePrefixAtEOF(t *testing.T) {
	rng := formattest.NewRand(11)
	stream := formattest.WAV(rng, 64)

	tails := []string{
		"R", "RI", "RIF", "RIFF",
		"RIFF\x10", "RIFF\x10\x00\x00\x00",
		"RIFF\x10\x00\x00\x00W", "RIFF\x10\x00\x00\x00WA", "RIFF\x10\x00\x00\x00WAV",
		".", ".sn", ".snd", ".snd\x00\x00\x00\x18",
	}

	for _, tail := range tails {
		img := append(make([]byte, 100), stream...)
		img = append(img, tail...)

		for _, bufSize := range []int{12, 13, 16, 24, 100, 4096} {
			t.Run(fmt.Sprintf("tail=%q/bufsize=%d", tail, bufSize), func(t *testing.T) {
				for _, set := range []*format.DetectorSet{wavOnly(t), allFormats(t)} {
					reg := scan(t, set, bufSize, img)
					require.Equal(t, []span{{100, 64}}, spans(reg))
				}
			})
		}
	}
}

func TestScanOnlySignaturePrefix(t *testing.T) {
	for _, img := range []string{"R", "RIFF", "RIFF\x10\x00\x00\x00WAV"} {
		reg := scan(t, wavOnly(t), 12, []byte(img))
		require.Zero(t, reg.Count())
	}
}

// referenceScan finds WAV streams by testing every offset in turn, with no
// buffering at all.
func referenceScan(img []byte) []span {
	var out []span
	for pos := 0; pos+12 <= len(img); {
		hdr := img[pos:]
		if !bytes.Equal(hdr[0:4], []byte("RIFF")) || !bytes.Equal(hdr[8:12], []byte("WAVE")) {
			pos++
			continue
		}

		chunkSize := binary.LittleEndian.Uint32(hdr[4:8])
		size := 8 + int(chunkSize)
		if chunkSize < 4 || pos+size > len(img) {
			pos++
			continue
		}

		out = append(out, span{uint64(pos), uint64(size)})
		pos += size
	}
	return out
}

// noisyImage returns n random bytes interleaved with signature fragments,
// bare headers declaring arbitrary sizes and well formed streams.
func noisyImage(rng *rand.Rand, n int) []byte {
	img := make([]byte, 0, n+512)
	for len(img) < n {
		switch rng.IntN(8) {
		case 0:
			img = append(img, "RIFF"[:1+rng.IntN(4)]...)
		case 1:
			img = append(img, "WAVE"...)
		case 2:
			img = append(img, formattest.WAVHeader(uint32(rng.IntN(400)))...)
		case 3:
			img = append(img, formattest.WAV(rng, 12+rng.IntN(200))...)
		default:
			for range 1 + rng.IntN(16) {
				img = append(img, byte(rng.UintN(256)))
			}
		}
	}
	return img[:n]
}

func TestScanMatchesReferenceOnNoisyImages(t *testing.T) {
	rng := formattest.NewRand(2024)

	for i := range 300 {
		img := noisyImage(rng, 64+rng.IntN(4000))
		want := referenceScan(img)

		for _, bufSize := range []int{12, 13, 17, 64, 1000, format.DefaultBufferSize} {
			reg := scan(t, wavOnly(t), bufSize, img)
			require.Equal(t, want, spans(reg), "image %d, bufsize %d", i, bufSize)
		}
	}
}
