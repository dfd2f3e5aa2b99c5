package fs

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestNormalizeVolumePath(t *testing.T) {
	cases := map[string]string{
		"C:":                 `\\.\C:`,
		`d:\`:                `\\.\D:`,
		"e:/":                `\\.\E:`,
		`\\.\physicaldrive0`: `\\.\PHYSICALDRIVE0`,
		`C:\images\disk.img`: `C:\images\disk.img`,
		"image.bin":          "image.bin",
		"/tmp/c:":            "/tmp/c:",
	}

	for in, want := range cases {
		require.Equal(t, want, normalizeVolumePath(in), in)
	}
}
