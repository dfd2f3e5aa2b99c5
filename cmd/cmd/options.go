package cmd

import (
	"fmt"
	"io"
	"log/slog"
	"math"
	"os"

	"github.com/ostafen/rz4/internal/format"
	"github.com/ostafen/rz4/internal/fs"
	"github.com/ostafen/rz4/internal/logger"
	"github.com/ostafen/rz4/internal/scan"
	utilsfmt "github.com/ostafen/rz4/pkg/util/format"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
)

// session bundles what every command needs once its flags are parsed.
type session struct {
	input   string
	opts    scan.Options
	console *logger.Logger
	log     *slog.Logger
	logFile *os.File
}

func (s *session) Close() {
	if s.logFile != nil {
		s.logFile.Close()
	}
}

var detectorShorthands = map[string]string{
	"wav": "w",
}

// addScanFlags registers the flags shared by every command that scans.
func addScanFlags(flags *pflag.FlagSet) {
	flags.StringP("bufsize", "b", "256KB", "size of the scan and extraction buffer (e.g. 262144, 1MB)")
	flags.String("report", "", "write a DFXML carve report to the specified file")
	flags.Bool("progress", false, "display a progress bar")

	for _, d := range format.Detectors() {
		desc := d.Descriptor()
		flags.BoolP(desc.Ext, detectorShorthands[desc.Ext], desc.DefaultEnabled, fmt.Sprintf("enable the %s detector", desc.Description))
	}
}

func newSession(cmd *cobra.Command, args []string) (*session, error) {
	logLevel, _ := cmd.Flags().GetString("log-level")
	logFile, _ := cmd.Flags().GetString("log-file")

	level := logger.ParseLevel(logLevel)

	slogger, f, err := scan.NewSessionLogger(logFile, level.Slog())
	if err != nil {
		return nil, err
	}

	s := &session{
		input:   fs.NormalizeVolumePath(args[len(args)-1]),
		opts:    parseOptions(cmd),
		console: logger.New(os.Stdout, level),
		log:     slogger,
		logFile: f,
	}
	return s, nil
}

func parseOptions(cmd *cobra.Command) scan.Options {
	reportFile, _ := cmd.Flags().GetString("report")
	showProgress, _ := cmd.Flags().GetBool("progress")

	formats := make(map[string]bool)
	for _, d := range format.Detectors() {
		ext := d.Descriptor().Ext
		if enabled, err := cmd.Flags().GetBool(ext); err == nil {
			formats[ext] = enabled
		}
	}

	var progress io.Writer
	if showProgress {
		progress = os.Stdout
	}

	return scan.Options{
		BufferSize: getBufferSize(cmd),
		Formats:    formats,
		ReportFile: reportFile,
		Progress:   progress,
	}
}

// getBufferSize falls back to the default for missing, unparsable or
// non-positive values.
func getBufferSize(cmd *cobra.Command) int {
	s, err := cmd.Flags().GetString("bufsize")
	if err != nil {
		return format.DefaultBufferSize
	}
	return parseBufferSize(s)
}

func parseBufferSize(s string) int {
	v, err := utilsfmt.ParseBytes(s)
	if err != nil || v == 0 || v > math.MaxInt32 {
		return format.DefaultBufferSize
	}
	return int(v)
}

// scanSource runs the scan phase and prints its summary. A failure after
// the scan started still prints what was found.
func scanSource(s *session) (*scan.Result, error) {
	s.console.Infof("Scanning %s", s.input)

	res, err := scan.Scan(s.input, s.opts, s.log)
	if res == nil {
		return nil, err
	}

	s.console.Infof("Found %d streams, total size: %s",
		res.Registry.Count(),
		utilsfmt.FormatBytes(int64(res.Registry.TotalBytes())),
	)
	s.console.Infof("Scan took %s", scan.FormatDurationHMS(res.Duration))

	if s.opts.ReportFile != "" && err == nil {
		s.console.Infof("Report written to %s", s.opts.ReportFile)
	}
	return res, err
}
