// Package compare implements the dual-mode comparator protocol used by
// sort/merge phases.
//
// A Comparator orders decoded values. A StreamComparator orders values
// directly over encoded bytes, where each value is a frame: a 4-byte
// big-endian length followed by that many payload bytes. Stream comparison
// advances the caller-owned Buffer cursors past the frames it compared, so
// comparators themselves are stateless and may be shared by concurrent
// workers.
//
//	lhs := compare.NewBuffer(compare.AppendString(nil, "abc"))
//	rhs := compare.NewBuffer(compare.AppendString(nil, "abd"))
//	compare.BytesComparator{}.CompareStream(lhs, rhs) // < 0, both cursors at 7
//
// The hot path never validates framing. CheckedBytesComparator validates
// explicitly, and building with -tags ductline_checked makes every stream
// comparison panic with a FRAMING_VIOLATION error on malformed input.
package compare
