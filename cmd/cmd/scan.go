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
	"github.com/spf13/cobra"
)

func DefineScanCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:          "scan <input_file>",
		Aliases:      []string{"s"},
		Short:        "Scan a file for embedded audio streams",
		Args:         cobra.ExactArgs(1),
		SilenceUsage: true,
		RunE:         RunScan,
	}

	addScanFlags(cmd.Flags())
	return cmd
}

func DefineCompressCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "compress <input_file>",
		Aliases: []string{"c"},
		Short:   "Scan a file in preparation for compression",
		Long: `The 'compress' command locates the embedded audio streams of a file, exactly like 'scan'.
No compressed output is produced yet.`,
		Args:         cobra.ExactArgs(1),
		SilenceUsage: true,
		RunE:         RunCompress,
	}

	addScanFlags(cmd.Flags())
	return cmd
}

func RunScan(cmd *cobra.Command, args []string) error {
	s, err := newSession(cmd, args)
	if err != nil {
		return err
	}
	defer s.Close()

	_, err = scanSource(s)
	return err
}

func RunCompress(cmd *cobra.Command, args []string) error {
	s, err := newSession(cmd, args)
	if err != nil {
		return err
	}
	defer s.Close()

	s.console.Warn("compression is not implemented, only scanning the input")

	_, err = scanSource(s)
	return err
}
