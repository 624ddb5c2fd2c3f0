package compare

import "github.com/kbukum/ductline/tuple"

// TupleComparator orders whole records field by field; the first field that
// differs decides.
type TupleComparator struct {
	fields []FieldComparator
}

// NewTupleComparator creates a comparator from per-field comparators, in
// field order.
func NewTupleComparator(fields ...FieldComparator) *TupleComparator {
	return &TupleComparator{fields: append([]FieldComparator(nil), fields...)}
}

// ForSchema binds a comparator to every field of schema by declared type.
func ForSchema(schema *tuple.Schema) *TupleComparator {
	fields := make([]FieldComparator, schema.Len())
	for i := range fields {
		fields[i] = ForType(schema.Field(i).Type)
	}
	return &TupleComparator{fields: fields}
}

// Len returns the number of fields compared.
func (c *TupleComparator) Len() int { return len(c.fields) }

// Compare orders two decoded tuples. Fields beyond the comparator's arity
// are ignored; a shorter tuple sorts first when all shared fields tie.
func (c *TupleComparator) Compare(lhs, rhs tuple.Tuple) int {
	n := min(len(lhs), len(rhs), len(c.fields))
	for i := 0; i < n; i++ {
		if res := c.fields[i].Compare(lhs[i], rhs[i]); res != 0 {
			return res
		}
	}
	if n == len(c.fields) {
		return 0
	}
	return len(lhs) - len(rhs)
}

// CompareStream orders two encoded records, one frame per field. Both
// cursors always end past the whole record: once a field decides, the
// remaining frames are skipped unread.
func (c *TupleComparator) CompareStream(lhs, rhs *Buffer) int {
	if lhs == rhs {
		return 0
	}
	res := 0
	for i, f := range c.fields {
		if res = f.CompareStream(lhs, rhs); res != 0 {
			skipFrames(lhs, len(c.fields)-i-1)
			skipFrames(rhs, len(c.fields)-i-1)
			break
		}
	}
	return res
}

func skipFrames(b *Buffer, n int) {
	for ; n > 0; n-- {
		b.pos += FrameHeaderSize + FrameLen(b.data, b.pos)
	}
}
