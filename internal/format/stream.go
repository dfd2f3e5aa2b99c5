package format

import (
	"fmt"
	"iter"
)

// StreamRecord locates one embedded stream inside the source.
type StreamRecord struct {
	Offset uint64 // absolute offset of the signature
	Length uint64 // total size, header included
	Ext    string // format tag, used as extension of the carved file
}

func (r StreamRecord) End() uint64 {
	return r.Offset + r.Length
}

// FileName returns the deterministic name of the carved file, encoding
// offset and length as fixed-width hexadecimal numbers.
func (r StreamRecord) FileName() string {
	return fmt.Sprintf("%016X-%016X.%s", r.Offset, r.Length, r.Ext)
}

// StreamRegistry is an append-only list of stream records, kept in
// ascending, non-overlapping offset order, with running aggregates.
type StreamRegistry struct {
	records    []StreamRecord
	totalBytes uint64
}

func NewStreamRegistry() *StreamRegistry {
	return &StreamRegistry{}
}

// Add appends rec. It fails if rec is empty, or starts before the end of
// the last record.
func (r *StreamRegistry) Add(rec StreamRecord) error {
	if rec.Length == 0 {
		return fmt.Errorf("stream at offset %d has zero length", rec.Offset)
	}
	if rec.End() < rec.Offset {
		return fmt.Errorf("stream at offset %d: length %d overflows", rec.Offset, rec.Length)
	}

	if n := len(r.records); n > 0 {
		if last := r.records[n-1]; rec.Offset < last.End() {
			return fmt.Errorf("stream at offset %d overlaps stream [%d, %d)", rec.Offset, last.Offset, last.End())
		}
	}

	r.records = append(r.records, rec)
	r.totalBytes += rec.Length
	return nil
}

func (r *StreamRegistry) Count() int {
	return len(r.records)
}

// TotalBytes returns the sum of the lengths of all records.
func (r *StreamRegistry) TotalBytes() uint64 {
	return r.totalBytes
}

func (r *StreamRegistry) At(i int) StreamRecord {
	return r.records[i]
}

// All iterates over the records in offset order.
func (r *StreamRegistry) All() iter.Seq2[int, StreamRecord] {
	return func(yield func(int, StreamRecord) bool) {
		for i, rec := range r.records {
			if !yield(i, rec) {
				return
			}
		}
	}
}

// Records returns a copy of the records.
func (r *StreamRegistry) Records() []StreamRecord {
	out := make([]StreamRecord, len(r.records))
	copy(out, r.records)
	return out
}
