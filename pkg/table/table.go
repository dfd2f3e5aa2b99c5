package table

// TableSize is the number of slots of the prefix marker array, one per
// value of the 16 bit rolling hash.
const TableSize = 1 << 16

const (
	none = iota
	prefixMarker
	keyMarker
)

// PrefixTable maps short byte keys (magic numbers) to values and answers
// "which stored keys are a prefix of this buffer" without allocating for
// buffers that cannot match.
//
// Every prefix of every key is marked in a 64K array indexed by a rolling
// hash. A lookup walks the buffer byte by byte and stops at the first
// unmarked hash, so most non-matching positions cost one array access.
// Hash collisions only cause extra map lookups, never missed keys.
type PrefixTable[T any] struct {
	marks     [TableSize]byte
	elems     map[string]T
	maxKeyLen int
}

func New[T any]() *PrefixTable[T] {
	return &PrefixTable[T]{
		elems: make(map[string]T),
	}
}

func hashStep(h uint16, b byte) uint16 {
	return (h << 2) + uint16(b)
}

// Insert stores v under key, replacing any previous value.
// Empty keys are ignored.
func (t *PrefixTable[T]) Insert(key []byte, v T) {
	if len(key) == 0 {
		return
	}

	var h uint16
	for _, b := range key {
		h = hashStep(h, b)
		t.marks[h] = max(t.marks[h], prefixMarker)
	}
	t.marks[h] = keyMarker
	t.elems[string(key)] = v
	t.maxKeyLen = max(t.maxKeyLen, len(key))
}

func (t *PrefixTable[T]) Get(key []byte) (T, bool) {
	v, found := t.elems[string(key)]
	return v, found
}

// Walk calls onMatch, shortest key first, for every stored key that is a
// prefix of buf. It stops early when onMatch returns true.
func (t *PrefixTable[T]) Walk(buf []byte, onMatch func(T) bool) {
	if len(buf) > t.maxKeyLen {
		buf = buf[:t.maxKeyLen]
	}

	var h uint16
	for i, b := range buf {
		h = hashStep(h, b)

		switch t.marks[h] {
		case none:
			return
		case keyMarker:
			if v, ok := t.elems[string(buf[:i+1])]; ok && onMatch(v) {
				return
			}
		}
	}
}

func (t *PrefixTable[T]) Size() int {
	return len(t.elems)
}

// MaxKeyLen returns the length of the longest stored key.
func (t *PrefixTable[T]) MaxKeyLen() int {
	return t.maxKeyLen
}
