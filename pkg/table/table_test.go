package table

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func walkAll(t *PrefixTable[string], buf []byte) []string {
	var found []string
	t.Walk(buf, func(v string) bool {
		found = append(found, v)
		return false
	})
	return found
}

func TestPrefixTableWalk(t *testing.T) {
	tbl := New[string]()
	tbl.Insert([]byte("RIFF"), "riff")
	tbl.Insert([]byte("RI"), "ri")
	tbl.Insert([]byte(".snd"), "snd")
	tbl.Insert(nil, "ignored")

	require.Equal(t, 3, tbl.Size())
	require.Equal(t, 4, tbl.MaxKeyLen())

	require.Equal(t, []string{"ri", "riff"}, walkAll(tbl, []byte("RIFF\x24\x00\x00\x00WAVE")))
	require.Equal(t, []string{"ri"}, walkAll(tbl, []byte("RIFX")))
	require.Equal(t, []string{"snd"}, walkAll(tbl, []byte(".snd")))
	require.Empty(t, walkAll(tbl, []byte("xRIFF")))
	require.Empty(t, walkAll(tbl, []byte("RIF")[:1]))
	require.Empty(t, walkAll(tbl, nil))
}

func TestPrefixTableWalkStops(t *testing.T) {
	tbl := New[string]()
	tbl.Insert([]byte("RI"), "ri")
	tbl.Insert([]byte("RIFF"), "riff")

	var found []string
	tbl.Walk([]byte("RIFF"), func(v string) bool {
		found = append(found, v)
		return true
	})
	require.Equal(t, []string{"ri"}, found)
}

func TestPrefixTableGet(t *testing.T) {
	tbl := New[int]()
	tbl.Insert([]byte("RIFF"), 1)
	tbl.Insert([]byte("RIFF"), 2)

	v, ok := tbl.Get([]byte("RIFF"))
	require.True(t, ok)
	require.Equal(t, 2, v)
	require.Equal(t, 1, tbl.Size())

	_, ok = tbl.Get([]byte("RIF"))
	require.False(t, ok)
}
