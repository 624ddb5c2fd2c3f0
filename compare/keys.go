package compare

import (
	"encoding/binary"
	"fmt"
	"math"

	"github.com/kbukum/ductline/errors"
	"github.com/kbukum/ductline/tuple"
)

// keyPresent prefixes the payload of every non-nil key, so nil (an empty
// payload) sorts before any value, including "" and an empty slice.
const keyPresent byte = 0x01

// AppendKey appends v to dst as one frame whose payload sorts, as unsigned
// bytes, in the same order as the decoded value compares under ForType(t).
// Nil encodes as an empty payload; any other value as keyPresent followed
// by:
//
//   - string, []byte: raw bytes
//   - int64: big-endian with the sign bit flipped
//   - float64: IEEE 754 bits, sign bit flipped for positives and all bits
//     flipped for negatives; -0 encodes as +0 and every NaN as eight zero
//     bytes, below -Inf
//   - bool: one byte, 0 or 1
//
// Under TypeAny, integers and floats share the float64 encoding, so mixed
// numbers sort numerically; integers beyond ±2^53 lose precision. Values of
// different non-numeric kinds are not ordered consistently with Compare.
func AppendKey(dst []byte, t tuple.Type, v any) ([]byte, error) {
	out, ok := appendKey(dst, t, v)
	if !ok {
		return dst, errors.InvalidKey("", fmt.Sprintf("cannot encode %T as %s key", v, t))
	}
	return out, nil
}

func appendKey(dst []byte, t tuple.Type, v any) ([]byte, bool) {
	if v == nil {
		return AppendFrame(dst, nil), true
	}
	if t == tuple.TypeAny {
		t = typeOf(v)
	}

	switch t {
	case tuple.TypeString:
		if s, ok := v.(string); ok {
			dst = binary.BigEndian.AppendUint32(dst, uint32(len(s)+1))
			return append(append(dst, keyPresent), s...), true
		}
	case tuple.TypeBytes:
		if b, ok := v.([]byte); ok {
			dst = binary.BigEndian.AppendUint32(dst, uint32(len(b)+1))
			return append(append(dst, keyPresent), b...), true
		}
	case tuple.TypeInt64:
		if i, ok := asInt64(v); ok {
			return appendFixed(dst, uint64(i)^(1<<63)), true
		}
	case tuple.TypeFloat64:
		if f, ok := asFloat64(v); ok {
			return appendFixed(dst, floatKey(f)), true
		}
	case tuple.TypeBool:
		if b, ok := v.(bool); ok {
			dst = binary.BigEndian.AppendUint32(dst, 2)
			return append(dst, keyPresent, byte(boolOrder(b))), true
		}
	}
	return dst, false
}

func appendFixed(dst []byte, bits uint64) []byte {
	dst = binary.BigEndian.AppendUint32(dst, 9)
	dst = append(dst, keyPresent)
	return binary.BigEndian.AppendUint64(dst, bits)
}

func floatKey(f float64) uint64 {
	switch {
	case math.IsNaN(f):
		return 0
	case f == 0:
		f = 0
	}
	bits := math.Float64bits(f)
	if bits&(1<<63) != 0 {
		return ^bits
	}
	return bits | 1<<63
}

// EncodeTuple encodes every value of t as a key frame, using the field
// types declared by schema.
func EncodeTuple(dst []byte, schema *tuple.Schema, t tuple.Tuple) ([]byte, error) {
	if len(t) != schema.Len() {
		return dst, errors.ArityMismatch(schema.Len(), len(t))
	}
	for i, v := range t {
		f := schema.Field(i)
		out, ok := appendKey(dst, f.Type, v)
		if !ok {
			return dst, errors.InvalidKey(f.Name, fmt.Sprintf("cannot encode %T as %s key", v, f.Type))
		}
		dst = out
	}
	return dst, nil
}

// typeOf picks the key encoding of a TypeAny value.
func typeOf(v any) tuple.Type {
	switch v.(type) {
	case string:
		return tuple.TypeString
	case []byte:
		return tuple.TypeBytes
	case int, int8, int16, int32, int64, float32, float64:
		return tuple.TypeFloat64
	case bool:
		return tuple.TypeBool
	}
	return tuple.TypeAny
}
