package tuple

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/kbukum/ductline/errors"
)

// Tuple is an ordered list of field values.
type Tuple []any

func (t Tuple) String() string {
	var b strings.Builder
	b.WriteByte('[')
	for i, v := range t {
		if i > 0 {
			b.WriteString(", ")
		}
		fmt.Fprintf(&b, "%v", v)
	}
	b.WriteByte(']')
	return b.String()
}

// Entry pairs a tuple with its schema. The number of values always equals
// the number of schema fields.
//
// Entries used as per-record scratch are created once and refilled with
// SetTuple for every record.
type Entry struct {
	schema *Schema
	tuple  Tuple
}

// NewEntry creates an entry for schema holding nil values.
func NewEntry(schema *Schema) *Entry {
	if schema == nil {
		schema = Empty
	}
	return &Entry{schema: schema, tuple: make(Tuple, schema.Len())}
}

// NewEntryWith creates an entry holding t.
func NewEntryWith(schema *Schema, t Tuple) (*Entry, error) {
	e := &Entry{schema: schema}
	if e.schema == nil {
		e.schema = Empty
	}
	if err := e.SetTuple(t); err != nil {
		return nil, err
	}
	return e, nil
}

// SetTuple replaces the values held by the entry. The tuple is not copied.
func (e *Entry) SetTuple(t Tuple) error {
	if len(t) != e.schema.Len() {
		return errors.ArityMismatch(e.schema.Len(), len(t))
	}
	e.tuple = t
	return nil
}

// Schema returns the schema of the entry.
func (e *Entry) Schema() *Schema { return e.schema }

// Tuple returns the values held by the entry.
func (e *Entry) Tuple() Tuple { return e.tuple }

// Len returns the number of fields.
func (e *Entry) Len() int { return len(e.tuple) }

// GetAt returns the value at position i.
func (e *Entry) GetAt(i int) any { return e.tuple[i] }

// Get returns the value of the named field.
func (e *Entry) Get(name string) (any, error) {
	i, ok := e.schema.Index(name)
	if !ok {
		return nil, errors.InvalidSelector(strconv.Quote(name), "field not found in "+e.schema.String())
	}
	return e.tuple[i], nil
}

// StringAt returns the value at position i rendered as text. Nil renders as
// the empty string.
func (e *Entry) StringAt(i int) string {
	switch v := e.tuple[i].(type) {
	case nil:
		return ""
	case string:
		return v
	case []byte:
		return string(v)
	case fmt.Stringer:
		return v.String()
	default:
		return fmt.Sprint(v)
	}
}

// SelectInto copies the values chosen by sel into dst and returns the filled
// slice. dst is reused when it has enough capacity, so steady-state selection
// does not allocate. The entry's own tuple is never handed out.
func (e *Entry) SelectInto(sel *Selector, dst Tuple) Tuple {
	n := len(sel.positions)
	if cap(dst) < n {
		dst = make(Tuple, n)
	}
	dst = dst[:n]
	for i, p := range sel.positions {
		dst[i] = e.tuple[p]
	}
	return dst
}

// Select returns a new tuple holding the values chosen by sel.
func (e *Entry) Select(sel *Selector) Tuple {
	return e.SelectInto(sel, nil)
}

func (e *Entry) String() string {
	var b strings.Builder
	b.WriteString("fields: ")
	b.WriteString(e.schema.String())
	b.WriteString(" tuple: ")
	b.WriteString(e.tuple.String())
	return b.String()
}
