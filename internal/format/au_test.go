package format_test

import (
	"encoding/binary"
	"testing"

	"github.com/ostafen/rz4/internal/format"
	"github.com/ostafen/rz4/internal/format/formattest"
	"github.com/stretchr/testify/require"
)

func TestAUResolveLength(t *testing.T) {
	d := format.AUDetector{}
	rng := formattest.NewRand(7)

	au := formattest.AU(rng, 1000, nil)
	require.Equal(t, format.Match, d.Match(au))
	require.Equal(t, format.Insufficient, d.Match(au[:12]))

	n, err := d.ResolveLength(au, 0, uint64(len(au)))
	require.NoError(t, err)
	require.Equal(t, uint64(len(au)), n)

	n, err = d.ResolveLength(au, 10, 10_000)
	require.NoError(t, err)
	require.Equal(t, uint64(1024), n)
}

func TestAUTruncatedTail(t *testing.T) {
	d := format.AUDetector{}
	rng := formattest.NewRand(7)

	unknown := uint32(0xFFFFFFFF)
	au := formattest.AU(rng, 100, &unknown)

	n, err := d.ResolveLength(au, 50, 1000)
	require.NoError(t, err)
	require.Equal(t, uint64(950), n)

	// declared data runs past the source: clamp
	declared := uint32(5000)
	au = formattest.AU(rng, 100, &declared)

	n, err = d.ResolveLength(au, 0, 500)
	require.NoError(t, err)
	require.Equal(t, uint64(500), n)
}

func TestAUCorruption(t *testing.T) {
	d := format.AUDetector{}
	rng := formattest.NewRand(7)

	mutate := map[string]func(b []byte){
		"short data offset": func(b []byte) { binary.BigEndian.PutUint32(b[4:8], 8) },
		"bad encoding":      func(b []byte) { binary.BigEndian.PutUint32(b[12:16], 99) },
		"zero encoding":     func(b []byte) { binary.BigEndian.PutUint32(b[12:16], 0) },
		"no channels":       func(b []byte) { binary.BigEndian.PutUint32(b[20:24], 0) },
		"header past end":   func(b []byte) { binary.BigEndian.PutUint32(b[4:8], 4096) },
	}

	for name, fn := range mutate {
		t.Run(name, func(t *testing.T) {
			au := formattest.AU(rng, 100, nil)
			fn(au)

			_, err := d.ResolveLength(au, 0, uint64(len(au)))
			require.ErrorIs(t, err, format.ErrUnresolvable)
		})
	}
}
