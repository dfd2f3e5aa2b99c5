package scan

import (
	"bufio"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/ostafen/rz4/internal/env"
	"github.com/ostafen/rz4/internal/format"
	"github.com/ostafen/rz4/internal/fs"
	"github.com/ostafen/rz4/pkg/dfxml"
)

var ErrReportMismatch = errors.New("report does not describe the input")

// WriteReport stores the registry as a DFXML carve report.
func WriteReport(reportPath, imagePath string, imageSize uint64, bufSize int, registry *format.StreamRegistry) error {
	f, err := os.Create(reportPath)
	if err != nil {
		return fmt.Errorf("failed to create report %q: %w", reportPath, err)
	}
	defer f.Close()

	bw := bufio.NewWriter(f)
	w := dfxml.NewDFXMLWriter(bw)

	err = w.WriteHeader(dfxml.DFXMLHeader{
		XmlOutput: dfxml.XmlOutputVersion,
		Metadata:  dfxml.DefaultMetadata,
		Creator: dfxml.Creator{
			Package:              env.AppName,
			Version:              env.Version,
			ExecutionEnvironment: dfxml.GetExecEnv(),
		},
		Source: dfxml.Source{
			ImageFilename: absPath(imagePath),
			ImageSize:     imageSize,
			BufferSize:    bufSize,
		},
	})
	if err != nil {
		return err
	}

	for _, rec := range registry.All() {
		err := w.WriteFileObject(dfxml.FileObject{
			Filename: rec.FileName(),
			FileSize: rec.Length,
			ByteRuns: dfxml.ByteRuns{
				Runs: []dfxml.ByteRun{{
					Offset:    0,
					ImgOffset: rec.Offset,
					Length:    rec.Length,
				}},
			},
		})
		if err != nil {
			return err
		}
	}

	if err := w.Close(); err != nil {
		return err
	}
	if err := bw.Flush(); err != nil {
		return err
	}
	return f.Close()
}

// LoadReport rebuilds a registry from a DFXML carve report, so that a
// previous scan can be replayed without reading the image again.
func LoadReport(reportPath string) (*format.StreamRegistry, *dfxml.Source, error) {
	f, err := os.Open(reportPath)
	if err != nil {
		return nil, nil, err
	}
	defer f.Close()

	report, err := dfxml.ReadReport(bufio.NewReader(f))
	if err != nil {
		return nil, nil, fmt.Errorf("invalid report %q: %w", reportPath, err)
	}

	registry := format.NewStreamRegistry()
	for _, obj := range report.Objects {
		if len(obj.ByteRuns.Runs) != 1 {
			return nil, nil, fmt.Errorf("invalid report %q: %s must have exactly one byte run", reportPath, obj.Filename)
		}
		run := obj.ByteRuns.Runs[0]

		err := registry.Add(format.StreamRecord{
			Offset: run.ImgOffset,
			Length: run.Length,
			Ext:    strings.TrimPrefix(filepath.Ext(obj.Filename), "."),
		})
		if err != nil {
			return nil, nil, fmt.Errorf("invalid report %q: %w", reportPath, err)
		}
	}
	return registry, &report.Source, nil
}

// CheckReportSource verifies that src, the source section of a report,
// describes imagePath. Differing sizes are an error. A differing file name
// is only signalled through sameName, as images are often moved.
func CheckReportSource(src *dfxml.Source, imagePath string) (sameName bool, err error) {
	f, err := fs.Open(imagePath)
	if err != nil {
		return false, fmt.Errorf("%w: %w", ErrInputUnavailable, err)
	}
	defer f.Close()

	size, err := fs.Size(f)
	if err != nil {
		return false, fmt.Errorf("%w: %w", ErrInputUnavailable, err)
	}

	if src.ImageSize != size {
		return false, fmt.Errorf("%w: report was written for %d bytes, input has %d",
			ErrReportMismatch, src.ImageSize, size)
	}
	return src.ImageFilename == absPath(imagePath), nil
}
