package pbar

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestCountProgressBar(t *testing.T) {
	var buf bytes.Buffer

	bar := NewCountProgressBar(&buf, "Extracting", 4)
	bar.Update(1, 1, true)
	require.Equal(t, int64(25), bar.Percentage())
	require.Contains(t, buf.String(), "[INFO] Extracting: [=====>              ]  25% (1/4) | Found: 1")

	bar.Update(4, 4, true)
	bar.Finish()
	require.Contains(t, buf.String(), "[====================] 100% (4/4)")
	require.Equal(t, byte('\n'), buf.Bytes()[buf.Len()-1])
}

func TestProgressBarThrottles(t *testing.T) {
	var buf bytes.Buffer

	bar := NewBytesProgressBar(&buf, "Scanning", 1024)
	bar.Update(10, 0, false)
	n := buf.Len()
	require.NotZero(t, n)

	// within MinRefreshRate of the previous draw
	bar.Update(20, 0, false)
	require.Equal(t, n, buf.Len())

	require.Equal(t, int64(100), NewBytesProgressBar(&buf, "empty", 0).Percentage())
}
