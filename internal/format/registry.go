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
package format

import (
	"fmt"
	"slices"

	"github.com/ostafen/rz4/pkg/table"
)

// Detectors returns every supported format detector, in evaluation order.
// Adding a format means adding an entry here.
func Detectors() []Detector {
	return []Detector{
		WAVDetector{},
		AUDetector{},
	}
}

// DefaultEnabled returns the enablement map used when nothing is configured.
func DefaultEnabled() map[string]bool {
	enabled := make(map[string]bool)
	for _, d := range Detectors() {
		desc := d.Descriptor()
		enabled[desc.Ext] = desc.DefaultEnabled
	}
	return enabled
}

// DetectorSet is the immutable set of enabled detectors shared by a scan.
// Candidates are looked up through a prefix table keyed on the fixed
// leading bytes of each signature.
type DetectorSet struct {
	detectors    []Detector
	table        *table.PrefixTable[[]Detector]
	unanchored   []Detector // signatures starting with a wildcard
	maxHeaderLen int
}

// NewDetectorSet builds the set of detectors whose extension maps to true.
// Formats missing from enabled fall back to their default; unknown
// extensions are rejected.
func NewDetectorSet(enabled map[string]bool) (*DetectorSet, error) {
	all := Detectors()

	for ext := range enabled {
		known := slices.ContainsFunc(all, func(d Detector) bool {
			return d.Descriptor().Ext == ext
		})
		if !known {
			return nil, fmt.Errorf("unknown format %q", ext)
		}
	}

	var selected []Detector
	for _, d := range all {
		desc := d.Descriptor()

		on, ok := enabled[desc.Ext]
		if !ok {
			on = desc.DefaultEnabled
		}
		if on {
			selected = append(selected, d)
		}
	}
	return NewDetectorSetOf(selected...), nil
}

// NewDetectorSetOf builds a set from an explicit list of detectors.
func NewDetectorSetOf(detectors ...Detector) *DetectorSet {
	s := &DetectorSet{
		detectors: detectors,
		table:     table.New[[]Detector](),
	}

	for _, d := range detectors {
		desc := d.Descriptor()

		key := desc.Signature.Prefix()
		if len(key) == 0 {
			s.unanchored = append(s.unanchored, d)
		} else {
			candidates, _ := s.table.Get(key)
			s.table.Insert(key, append(candidates, d))
		}

		s.maxHeaderLen = max(s.maxHeaderLen, desc.HeaderLen, desc.Signature.Len())
	}
	return s
}

func (s *DetectorSet) Len() int {
	return len(s.detectors)
}

func (s *DetectorSet) Detectors() []Detector {
	return slices.Clone(s.detectors)
}

// MaxHeaderLen returns the number of bytes that lets every enabled detector
// reach a decision.
func (s *DetectorSet) MaxHeaderLen() int {
	return s.maxHeaderLen
}

// Detect returns the first detector matching at the start of b.
// When no detector matches but one of them could with more bytes, the
// verdict is Insufficient.
func (s *DetectorSet) Detect(b []byte) (Detector, Verdict) {
	if len(b) < s.maxHeaderLen {
		return s.detectShort(b)
	}

	var found Detector
	match := func(candidates []Detector) bool {
		for _, d := range candidates {
			if d.Match(b) == Match {
				found = d
				return true
			}
		}
		return false
	}

	s.table.Walk(b, match)
	if found == nil {
		match(s.unanchored)
	}

	if found != nil {
		return found, Match
	}
	return nil, NoMatch
}

// detectShort handles windows shorter than the longest header, where the
// prefix table could miss a signature cut by the end of b.
func (s *DetectorSet) detectShort(b []byte) (Detector, Verdict) {
	verdict := NoMatch
	for _, d := range s.detectors {
		switch d.Match(b) {
		case Match:
			return d, Match
		case Insufficient:
			verdict = Insufficient
		}
	}
	return nil, verdict
}
