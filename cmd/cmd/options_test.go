package cmd

import (
	"path/filepath"
	"testing"

	"github.com/ostafen/rz4/internal/format"
	"github.com/spf13/cobra"
	"github.com/stretchr/testify/require"
)

func TestParseBufferSize(t *testing.T) {
	require.Equal(t, 262144, parseBufferSize("262144"))
	require.Equal(t, 1<<20, parseBufferSize("1MB"))
	require.Equal(t, 4096, parseBufferSize("4k"))

	for _, s := range []string{"", "0", "-5", "abc", "10XB", "8GB"} {
		require.Equal(t, format.DefaultBufferSize, parseBufferSize(s), s)
	}
}

func TestParseOptions(t *testing.T) {
	cmd := &cobra.Command{Use: "test"}
	addScanFlags(cmd.Flags())

	require.NoError(t, cmd.Flags().Parse([]string{"--bufsize=64KB", "--wav=false", "--au", "--report=r.xml"}))

	opts := parseOptions(cmd)
	require.Equal(t, 64*1024, opts.BufferSize)
	require.Equal(t, map[string]bool{"wav": false, "au": true}, opts.Formats)
	require.Equal(t, "r.xml", opts.ReportFile)
	require.Nil(t, opts.Progress)
}

func TestParseOptionsDefaults(t *testing.T) {
	cmd := &cobra.Command{Use: "test"}
	addScanFlags(cmd.Flags())
	require.NoError(t, cmd.Flags().Parse(nil))

	opts := parseOptions(cmd)
	require.Equal(t, format.DefaultBufferSize, opts.BufferSize)
	require.Equal(t, format.DefaultEnabled(), opts.Formats)
}

func TestDefaultOutDir(t *testing.T) {
	in := filepath.Join("data", "dump.bin")
	require.Equal(t, filepath.Join("data", "dump.bin_extract_data"), defaultOutDir(in))
	require.Equal(t, filepath.Join("data", "dump_mnt"), getMountpoint(in))
}

func TestShorthandFlags(t *testing.T) {
	cmd := DefineExtractCommand()
	require.NoError(t, cmd.Flags().Parse([]string{"-b", "1MB", "-w=false", "-d", "out"}))

	opts := parseOptions(cmd)
	require.Equal(t, 1<<20, opts.BufferSize)
	require.False(t, opts.Formats["wav"])

	outDir, err := cmd.Flags().GetString("outdir")
	require.NoError(t, err)
	require.Equal(t, "out", outDir)
}
