// Package tuple provides the record model of the stream core.
//
// A Schema is an ordered list of named, typed fields. A Tuple holds the
// values of one record and an Entry pairs a tuple with its schema; an entry's
// value count always equals its schema's field count.
//
// Fields is a selector expression over a schema: a named or positional
// subset, All, or None. It is resolved once into a Selector and reused for
// every record:
//
//	sel, err := tuple.Named("zip", "city").Resolve(schema)
//	scratch := tuple.NewEntry(sel.Schema())
//	buf := make(tuple.Tuple, 0, sel.Len())
//	// per record
//	buf = entry.SelectInto(sel, buf)
//	_ = scratch.SetTuple(buf)
package tuple
