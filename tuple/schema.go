package tuple

import "strings"

// Type is the declared type of a field. It decides which comparator the
// sort/merge phase binds to the field.
type Type uint8

const (
	TypeAny Type = iota
	TypeString
	TypeBytes
	TypeInt64
	TypeFloat64
	TypeBool
)

var typeNames = [...]string{"any", "string", "bytes", "int64", "float64", "bool"}

func (t Type) String() string {
	if int(t) < len(typeNames) {
		return typeNames[t]
	}
	return "unknown"
}

// Field is a named, typed column of a schema.
type Field struct {
	Name string
	Type Type
}

// Schema is an ordered, immutable list of fields.
type Schema struct {
	fields []Field
	index  map[string]int
}

// Empty is the zero-field schema.
var Empty = NewSchema()

// NewSchema creates a schema from fields. Later duplicates of a name shadow
// nothing: lookups by name return the first position.
func NewSchema(fields ...Field) *Schema {
	s := &Schema{
		fields: append([]Field(nil), fields...),
		index:  make(map[string]int, len(fields)),
	}
	for i, f := range fields {
		if _, ok := s.index[f.Name]; !ok {
			s.index[f.Name] = i
		}
	}
	return s
}

// Names creates an untyped schema from field names.
func Names(names ...string) *Schema {
	fields := make([]Field, len(names))
	for i, n := range names {
		fields[i] = Field{Name: n, Type: TypeAny}
	}
	return NewSchema(fields...)
}

// Len returns the number of fields.
func (s *Schema) Len() int { return len(s.fields) }

// Field returns the field at position i.
func (s *Schema) Field(i int) Field { return s.fields[i] }

// Fields returns a copy of the declared fields.
func (s *Schema) Fields() []Field { return append([]Field(nil), s.fields...) }

// Index returns the position of the named field.
func (s *Schema) Index(name string) (int, bool) {
	i, ok := s.index[name]
	return i, ok
}

// Names returns the field names in order.
func (s *Schema) Names() []string {
	names := make([]string, len(s.fields))
	for i, f := range s.fields {
		names[i] = f.Name
	}
	return names
}

// Append returns a new schema with fields added after the receiver's.
func (s *Schema) Append(fields ...Field) *Schema {
	all := make([]Field, 0, len(s.fields)+len(fields))
	all = append(all, s.fields...)
	all = append(all, fields...)
	return NewSchema(all...)
}

func (s *Schema) project(positions []int) *Schema {
	fields := make([]Field, len(positions))
	for i, p := range positions {
		fields[i] = s.fields[p]
	}
	return NewSchema(fields...)
}

func (s *Schema) String() string {
	var b strings.Builder
	b.WriteByte('[')
	for i, f := range s.fields {
		if i > 0 {
			b.WriteString(", ")
		}
		b.WriteString(f.Name)
		if f.Type != TypeAny {
			b.WriteByte(':')
			b.WriteString(f.Type.String())
		}
	}
	b.WriteByte(']')
	return b.String()
}
