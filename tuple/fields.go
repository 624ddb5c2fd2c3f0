package tuple

import (
	"strconv"
	"strings"

	"github.com/kbukum/ductline/errors"
)

type selectorKind uint8

const (
	kindSelect selectorKind = iota
	kindAll
	kindNone
)

type fieldRef struct {
	name string
	pos  int
}

// Fields is an unresolved field selector. It names a subset of fields by
// name or position, or selects all or none of them. A selector is resolved
// once against a known schema and the resulting Selector is reused for every
// record.
type Fields struct {
	kind selectorKind
	refs []fieldRef
}

// All selects every field of the incoming schema.
var All = Fields{kind: kindAll}

// None selects no field. Operations bound with None receive a zero-field
// tuple.
var None = Fields{kind: kindNone}

// Named selects fields by name, in the given order.
func Named(names ...string) Fields {
	refs := make([]fieldRef, len(names))
	for i, n := range names {
		refs[i] = fieldRef{name: n}
	}
	return Fields{kind: kindSelect, refs: refs}
}

// At selects fields by position. Negative positions count from the end:
// -1 is the last field.
func At(positions ...int) Fields {
	refs := make([]fieldRef, len(positions))
	for i, p := range positions {
		refs[i] = fieldRef{pos: p}
	}
	return Fields{kind: kindSelect, refs: refs}
}

// IsAll reports whether f selects every field.
func (f Fields) IsAll() bool { return f.kind == kindAll }

// IsNone reports whether f selects nothing. An empty Named or At selection
// counts as None.
func (f Fields) IsNone() bool {
	return f.kind == kindNone || (f.kind == kindSelect && len(f.refs) == 0)
}

// Resolve binds the selector to schema.
func (f Fields) Resolve(schema *Schema) (*Selector, error) {
	if schema == nil {
		schema = Empty
	}
	switch {
	case f.IsAll():
		positions := make([]int, schema.Len())
		for i := range positions {
			positions[i] = i
		}
		return &Selector{positions: positions, schema: schema}, nil
	case f.IsNone():
		return &Selector{schema: Empty}, nil
	}

	positions := make([]int, len(f.refs))
	for i, ref := range f.refs {
		if ref.name != "" {
			p, ok := schema.Index(ref.name)
			if !ok {
				return nil, errors.InvalidSelector(f.String(), "field "+strconv.Quote(ref.name)+" not found in "+schema.String())
			}
			positions[i] = p
			continue
		}
		p := ref.pos
		if p < 0 {
			p += schema.Len()
		}
		if p < 0 || p >= schema.Len() {
			return nil, errors.InvalidSelector(f.String(), "position "+strconv.Itoa(ref.pos)+" out of range for "+schema.String())
		}
		positions[i] = p
	}
	return &Selector{positions: positions, schema: schema.project(positions)}, nil
}

func (f Fields) String() string {
	switch {
	case f.IsAll():
		return "ALL"
	case f.IsNone():
		return "NONE"
	}
	var b strings.Builder
	b.WriteByte('[')
	for i, ref := range f.refs {
		if i > 0 {
			b.WriteString(", ")
		}
		if ref.name != "" {
			b.WriteString(ref.name)
		} else {
			b.WriteString(strconv.Itoa(ref.pos))
		}
	}
	b.WriteByte(']')
	return b.String()
}

// Selector is a Fields expression resolved against a schema.
type Selector struct {
	positions []int
	schema    *Schema
}

// Schema returns the schema of the selected sub-record.
func (s *Selector) Schema() *Schema { return s.schema }

// Len returns the number of selected fields.
func (s *Selector) Len() int { return len(s.positions) }

// Positions returns the selected positions in the source schema.
func (s *Selector) Positions() []int { return append([]int(nil), s.positions...) }
