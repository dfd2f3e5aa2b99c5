package dfxml

import (
	"encoding/xml"
	"io"
)

// Report is the content of a DFXML carve report.
type Report struct {
	Source  Source
	Objects []FileObject
}

// ReadReport decodes the <source> element and every <fileobject> of the
// document, ignoring everything else.
func ReadReport(r io.Reader) (*Report, error) {
	dec := xml.NewDecoder(r)

	var report Report
	for {
		tok, err := dec.Token()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, err
		}

		start, ok := tok.(xml.StartElement)
		if !ok {
			continue
		}

		switch start.Name.Local {
		case "source":
			if err := dec.DecodeElement(&report.Source, &start); err != nil {
				return nil, err
			}
		case "fileobject":
			var fo FileObject
			if err := dec.DecodeElement(&fo, &start); err != nil {
				return nil, err
			}
			report.Objects = append(report.Objects, fo)
		}
	}
	return &report, nil
}
