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
	"errors"
	"fmt"
	"path/filepath"

	"github.com/ostafen/rz4/internal/format"
	"github.com/ostafen/rz4/internal/scan"
	"github.com/ostafen/rz4/pkg/pbar"
	utilsfmt "github.com/ostafen/rz4/pkg/util/format"
	osutils "github.com/ostafen/rz4/pkg/util/os"
	"github.com/spf13/cobra"
)

func DefineExtractCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "extract <input_file>",
		Aliases: []string{"e"},
		Short:   "Scan a file and carve every embedded audio stream",
		Long: `The 'extract' command scans the input and writes each discovered stream to its own file.
Files are named <offset>-<length>.<ext>, both numbers in fixed-width hexadecimal.
With --from-report, the streams listed in a previous carve report are extracted without scanning again.`,
		Args:         cobra.ExactArgs(1),
		SilenceUsage: true,
		RunE:         RunExtract,
	}

	addScanFlags(cmd.Flags())
	cmd.Flags().StringP("outdir", "d", "", "directory where extracted streams are written (default <input_file>_extract_data)")
	cmd.Flags().String("from-report", "", "extract the streams listed in a DFXML carve report instead of scanning")
	return cmd
}

func RunExtract(cmd *cobra.Command, args []string) error {
	s, err := newSession(cmd, args)
	if err != nil {
		return err
	}
	defer s.Close()

	outDir, _ := cmd.Flags().GetString("outdir")
	if outDir == "" {
		outDir = defaultOutDir(s.input)
	}

	if _, err := osutils.EnsureDir(outDir, false); err != nil {
		return err
	}

	fromReport, _ := cmd.Flags().GetString("from-report")

	registry, err := loadRegistry(s, fromReport)
	if err != nil {
		return err
	}

	e, err := scan.NewExtractor(s.input, s.opts.BufferSize, s.log)
	if err != nil {
		return err
	}
	defer e.Close()

	s.console.Infof("Extracting %d streams to %s", registry.Count(), outDir)

	var onProgress func(done, total int)
	if s.opts.Progress != nil {
		bar := pbar.NewCountProgressBar(s.opts.Progress, "Extracting", registry.Count())
		onProgress = func(done, total int) {
			bar.Update(int64(done), done, done == total)
		}
		defer bar.Finish()
	}

	report := e.ExtractAll(registry, outDir, onProgress)

	for _, f := range report.Failures {
		s.console.Errorf("unable to extract %s: %s", f.Path, f.Err)
	}

	s.console.Infof("Extracted %d of %d streams (%s), %d failed",
		report.Extracted,
		registry.Count(),
		utilsfmt.FormatBytes(int64(report.Bytes)),
		len(report.Failures),
	)
	return nil
}

// loadRegistry scans the input, or replays reportPath when set. An
// interrupted scan still yields the streams found so far.
func loadRegistry(s *session, reportPath string) (*format.StreamRegistry, error) {
	if reportPath != "" {
		registry, src, err := scan.LoadReport(reportPath)
		if err != nil {
			return nil, err
		}

		sameName, err := scan.CheckReportSource(src, s.input)
		if err != nil {
			return nil, err
		}
		if !sameName {
			s.console.Warnf("report %s was written for %s, not %s", reportPath, src.ImageFilename, s.input)
		}
		s.console.Infof("Loaded %d streams from %s", registry.Count(), reportPath)
		return registry, nil
	}

	res, err := scanSource(s)
	if res == nil {
		return nil, err
	}
	if errors.Is(err, scan.ErrInputUnavailable) {
		return nil, err
	}
	if err != nil {
		s.console.Errorf("scan interrupted: %s", err)
	}
	return res.Registry, nil
}

func defaultOutDir(input string) string {
	return filepath.Join(filepath.Dir(input), fmt.Sprintf("%s_extract_data", filepath.Base(input)))
}
