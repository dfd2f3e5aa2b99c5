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
	"encoding/hex"
	"errors"
	"strings"
)

// ErrUnresolvable is returned by ResolveLength when a signature matched but
// the header does not describe a plausible stream.
var ErrUnresolvable = errors.New("unresolvable stream length")

// Verdict is the outcome of testing a byte window against a signature.
type Verdict int

const (
	NoMatch Verdict = iota
	Match
	// Insufficient means every available byte agrees with the signature,
	// but the window ends before the header needed to decide.
	Insufficient
)

func (v Verdict) String() string {
	switch v {
	case NoMatch:
		return "no match"
	case Match:
		return "match"
	case Insufficient:
		return "insufficient data"
	}
	return "unknown"
}

// Signature is a magic byte pattern anchored at the start of a stream.
// A zero Mask byte makes the corresponding position a wildcard.
type Signature struct {
	Magic []byte
	Mask  []byte
}

// NewSignature builds a signature from a pattern where '?' stands for any
// byte, e.g. "RIFF????WAVE".
func NewSignature(pattern string) Signature {
	sig := Signature{
		Magic: make([]byte, len(pattern)),
		Mask:  make([]byte, len(pattern)),
	}
	for i := 0; i < len(pattern); i++ {
		if pattern[i] == '?' {
			continue
		}
		sig.Magic[i] = pattern[i]
		sig.Mask[i] = 0xFF
	}
	return sig
}

func (s Signature) Len() int {
	return len(s.Magic)
}

// Prefix returns the fixed bytes preceding the first wildcard.
func (s Signature) Prefix() []byte {
	for i, m := range s.Mask {
		if m != 0xFF {
			return s.Magic[:i]
		}
	}
	return s.Magic
}

// MatchPrefix reports whether the bytes of b agree with the signature,
// up to min(len(b), s.Len()) bytes.
func (s Signature) MatchPrefix(b []byte) bool {
	n := min(len(b), len(s.Magic))
	for i := 0; i < n; i++ {
		if b[i]&s.Mask[i] != s.Magic[i]&s.Mask[i] {
			return false
		}
	}
	return true
}

func (s Signature) String() string {
	var sb strings.Builder
	for i, b := range s.Magic {
		if s.Mask[i] != 0xFF {
			sb.WriteString("??")
			continue
		}
		sb.WriteString(hex.EncodeToString([]byte{b}))
	}
	return sb.String()
}

// Descriptor holds the immutable, per-format configuration of a detector.
type Descriptor struct {
	Ext            string // extension used for carved files, also the config key
	Description    string
	Signature      Signature
	HeaderLen      int  // bytes needed to resolve the stream length
	DefaultEnabled bool // enabled unless configured otherwise
}

// Detector recognises one container format.
//
// Match must only look at the bytes of b and must report Insufficient,
// rather than NoMatch, when b is too short to decide. ResolveLength is only
// called after Match returned Match, with at least HeaderLen bytes.
type Detector interface {
	Descriptor() Descriptor
	Match(b []byte) Verdict
	ResolveLength(hdr []byte, offset, sourceSize uint64) (uint64, error)
}

// matchHeader is the Match implementation shared by all detectors.
func matchHeader(d Descriptor, b []byte) Verdict {
	if !d.Signature.MatchPrefix(b) {
		return NoMatch
	}
	if len(b) < max(d.HeaderLen, d.Signature.Len()) {
		return Insufficient
	}
	return Match
}
