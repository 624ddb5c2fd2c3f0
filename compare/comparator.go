package compare

import (
	"bytes"
	"strings"

	"golang.org/x/exp/constraints"
)

// Comparator orders two decoded values. Compare returns a negative number,
// zero or a positive number when lhs sorts before, equal to or after rhs.
type Comparator[T any] interface {
	Compare(lhs, rhs T) int
}

// StreamComparator orders two values directly over their encoded frames.
//
// CompareStream is NOT idempotent: it reads the frame at each buffer's
// cursor and advances both cursors past it, so a second call on the same
// buffers compares the next frames. Passing the same buffer twice returns
// zero without reading or advancing.
//
// Buffers must be positioned on a frame boundary. The framing is not
// validated; truncated input is a caller error.
type StreamComparator interface {
	CompareStream(lhs, rhs *Buffer) int
}

// BytesComparator orders byte slices lexicographically as unsigned bytes. A
// slice that is a prefix of a longer one sorts first. It holds no state and
// is safe for concurrent use.
type BytesComparator struct{}

// Compare orders two decoded byte slices.
func (BytesComparator) Compare(lhs, rhs []byte) int {
	if sameSlice(lhs, rhs) {
		return 0
	}
	return bytes.Compare(lhs, rhs)
}

// CompareStream orders the frames at the cursors of lhs and rhs and advances
// each cursor by 4 plus its payload length.
func (BytesComparator) CompareStream(lhs, rhs *Buffer) int {
	return compareFrames(lhs, rhs)
}

// StringComparator orders strings by their UTF-8 bytes. Encoded strings are
// compared without decoding.
type StringComparator struct{}

// Compare orders two decoded strings.
func (StringComparator) Compare(lhs, rhs string) int {
	return strings.Compare(lhs, rhs)
}

// CompareStream orders two UTF-8 frames; see BytesComparator.CompareStream.
func (StringComparator) CompareStream(lhs, rhs *Buffer) int {
	return compareFrames(lhs, rhs)
}

// NaturalComparator orders values of an ordered native type. NaN sorts
// before every other float, as with cmp.Compare.
type NaturalComparator[T constraints.Ordered] struct{}

// Compare orders two decoded values.
func (NaturalComparator[T]) Compare(lhs, rhs T) int {
	lnan, rnan := lhs != lhs, rhs != rhs
	switch {
	case lnan && rnan:
		return 0
	case lnan:
		return -1
	case rnan:
		return 1
	case lhs < rhs:
		return -1
	case lhs > rhs:
		return 1
	}
	return 0
}

// Reverse inverts the order of a field comparator, for descending sorts.
func Reverse(c FieldComparator) FieldComparator {
	if r, ok := c.(reversed); ok {
		return r.inner
	}
	return reversed{inner: c}
}

type reversed struct {
	inner FieldComparator
}

func (r reversed) Compare(lhs, rhs any) int { return r.inner.Compare(rhs, lhs) }

func (r reversed) CompareStream(lhs, rhs *Buffer) int {
	// both cursors still advance, only the verdict flips
	return -r.inner.CompareStream(lhs, rhs)
}

func compareFrames(lhs, rhs *Buffer) int {
	if lhs == rhs {
		return 0
	}
	if checkedFraming {
		mustValidate(lhs)
		mustValidate(rhs)
	}

	l, lpos := lhs.data, lhs.pos
	llen := FrameLen(l, lpos)
	lhs.pos = lpos + FrameHeaderSize + llen

	r, rpos := rhs.data, rhs.pos
	rlen := FrameLen(r, rpos)
	rhs.pos = rpos + FrameHeaderSize + rlen

	lstart, rstart := lpos+FrameHeaderSize, rpos+FrameHeaderSize
	return bytes.Compare(l[lstart:lstart+llen], r[rstart:rstart+rlen])
}

func sameSlice(lhs, rhs []byte) bool {
	return len(lhs) == len(rhs) && len(lhs) > 0 && &lhs[0] == &rhs[0]
}
