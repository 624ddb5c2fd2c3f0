package compare

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/kbukum/ductline/tuple"
)

// FieldComparator orders one field both as a decoded value and as an
// encoded frame. It is bound to the field's declared type when a schema is
// built and shared by every sort/merge worker; implementations hold no
// mutable state.
type FieldComparator interface {
	Comparator[any]
	StreamComparator
}

// ForType returns the comparator for a declared field type. Every type
// compares its frames as unsigned bytes: values are encoded with the
// order-preserving key encoding of AppendKey.
func ForType(t tuple.Type) FieldComparator {
	switch t {
	case tuple.TypeString:
		return stringField{}
	case tuple.TypeBytes:
		return bytesField{}
	case tuple.TypeInt64:
		return int64Field{}
	case tuple.TypeFloat64:
		return float64Field{}
	case tuple.TypeBool:
		return boolField{}
	default:
		return anyField{}
	}
}

type stringField struct{ StringComparator }

func (stringField) Compare(lhs, rhs any) int {
	l, lok := lhs.(string)
	r, rok := rhs.(string)
	if lok && rok {
		return strings.Compare(l, r)
	}
	return compareAny(lhs, rhs)
}

type bytesField struct{ BytesComparator }

func (f bytesField) Compare(lhs, rhs any) int {
	l, lok := lhs.([]byte)
	r, rok := rhs.([]byte)
	if lok && rok {
		return f.BytesComparator.Compare(l, r)
	}
	return compareAny(lhs, rhs)
}

type int64Field struct{ BytesComparator }

func (int64Field) Compare(lhs, rhs any) int {
	l, lok := asInt64(lhs)
	r, rok := asInt64(rhs)
	if lok && rok {
		return NaturalComparator[int64]{}.Compare(l, r)
	}
	return compareAny(lhs, rhs)
}

type float64Field struct{ BytesComparator }

func (float64Field) Compare(lhs, rhs any) int {
	l, lok := asFloat64(lhs)
	r, rok := asFloat64(rhs)
	if lok && rok {
		return NaturalComparator[float64]{}.Compare(l, r)
	}
	return compareAny(lhs, rhs)
}

type boolField struct{ BytesComparator }

func (boolField) Compare(lhs, rhs any) int {
	l, lok := lhs.(bool)
	r, rok := rhs.(bool)
	if lok && rok {
		return boolOrder(l) - boolOrder(r)
	}
	return compareAny(lhs, rhs)
}

type anyField struct{ BytesComparator }

func (anyField) Compare(lhs, rhs any) int { return compareAny(lhs, rhs) }

// compareAny orders values of unknown type: nil first, then values of a
// common comparable kind naturally, then everything else by its text.
func compareAny(lhs, rhs any) int {
	switch {
	case lhs == nil && rhs == nil:
		return 0
	case lhs == nil:
		return -1
	case rhs == nil:
		return 1
	}
	if l, ok := asInt64(lhs); ok {
		if r, ok := asInt64(rhs); ok {
			return NaturalComparator[int64]{}.Compare(l, r)
		}
	}
	if l, ok := asFloat64(lhs); ok {
		if r, ok := asFloat64(rhs); ok {
			return NaturalComparator[float64]{}.Compare(l, r)
		}
	}
	switch l := lhs.(type) {
	case string:
		if r, ok := rhs.(string); ok {
			return strings.Compare(l, r)
		}
	case []byte:
		if r, ok := rhs.([]byte); ok {
			return bytes.Compare(l, r)
		}
	case bool:
		if r, ok := rhs.(bool); ok {
			return boolOrder(l) - boolOrder(r)
		}
	}
	return strings.Compare(fmt.Sprint(lhs), fmt.Sprint(rhs))
}

func asInt64(v any) (int64, bool) {
	switch x := v.(type) {
	case int64:
		return x, true
	case int:
		return int64(x), true
	case int32:
		return int64(x), true
	case int16:
		return int64(x), true
	case int8:
		return int64(x), true
	}
	return 0, false
}

func asFloat64(v any) (float64, bool) {
	switch x := v.(type) {
	case float64:
		return x, true
	case float32:
		return float64(x), true
	}
	if i, ok := asInt64(v); ok {
		return float64(i), true
	}
	return 0, false
}

func boolOrder(b bool) int {
	if b {
		return 1
	}
	return 0
}
