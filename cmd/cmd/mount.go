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
package cmd

import (
	"path/filepath"
	"strings"

	"github.com/ostafen/rz4/internal/fs"
	"github.com/ostafen/rz4/internal/fuse"
	"github.com/spf13/cobra"
)

func DefineMountCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "mount <input_file>",
		Short: "Mount the streams of a file as read-only files",
		Long: `The 'mount' command exposes every stream found in the input as a read-only file of a FUSE mount, without copying any data.
Streams are located by scanning the input, or taken from a carve report with --from-report.
The command blocks until interrupted, then unmounts. Only supported on Linux.`,
		Args:         cobra.ExactArgs(1),
		SilenceUsage: true,
		RunE:         RunMount,
	}

	addScanFlags(cmd.Flags())
	cmd.Flags().StringP("mountpoint", "m", "", "directory where streams are mounted (default <input_file>_mnt)")
	cmd.Flags().String("from-report", "", "mount the streams listed in a DFXML carve report instead of scanning")
	return cmd
}

func RunMount(cmd *cobra.Command, args []string) error {
	s, err := newSession(cmd, args)
	if err != nil {
		return err
	}
	defer s.Close()

	fromReport, _ := cmd.Flags().GetString("from-report")

	registry, err := loadRegistry(s, fromReport)
	if err != nil {
		return err
	}

	mountpoint, _ := cmd.Flags().GetString("mountpoint")
	if mountpoint == "" {
		mountpoint = getMountpoint(s.input)
	}

	f, err := fs.Open(s.input)
	if err != nil {
		return err
	}
	defer f.Close()

	s.console.Infof("Mounting %d streams at %s, press Ctrl+C to unmount", registry.Count(), mountpoint)

	return fuse.Mount(mountpoint, f, registry.Records(), s.log)
}

// getMountpoint derives a mountpoint next to the input by replacing its
// extension with "_mnt".
func getMountpoint(input string) string {
	base := filepath.Base(input)
	name := strings.TrimSuffix(base, filepath.Ext(base))
	return filepath.Join(filepath.Dir(input), name+"_mnt")
}
