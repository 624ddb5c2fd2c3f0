package filter

import (
	"math"
	"regexp"

	"github.com/zeebo/xxh3"

	"github.com/kbukum/ductline/errors"
	"github.com/kbukum/ductline/operation"
	"github.com/kbukum/ductline/tuple"
)

// Func adapts a predicate over the argument entry. The predicate returns
// true to remove the record.
type Func struct {
	operation.Base
	fn func(args *tuple.Entry) (bool, error)
}

// NewFunc creates a stateless filter named name.
func NewFunc(name string, fn func(args *tuple.Entry) (bool, error)) *Func {
	return &Func{Base: operation.NewBase(name), fn: fn}
}

// IsRemove implements operation.Filter.
func (f *Func) IsRemove(_ *operation.Process, call *operation.Call) (bool, error) {
	return f.fn(call.Arguments())
}

// Null removes records whose argument values are all nil.
type Null struct {
	operation.Base
}

// NewNull creates a Null filter.
func NewNull() *Null { return &Null{Base: operation.NewBase("Null")} }

// IsRemove implements operation.Filter.
func (*Null) IsRemove(_ *operation.Process, call *operation.Call) (bool, error) {
	args := call.Arguments()
	for i := 0; i < args.Len(); i++ {
		if args.GetAt(i) != nil {
			return false, nil
		}
	}
	return true, nil
}

// NotNull removes records whose argument values are all non-nil.
type NotNull struct {
	operation.Base
}

// NewNotNull creates a NotNull filter.
func NewNotNull() *NotNull { return &NotNull{Base: operation.NewBase("NotNull")} }

// IsRemove implements operation.Filter.
func (*NotNull) IsRemove(_ *operation.Process, call *operation.Call) (bool, error) {
	args := call.Arguments()
	for i := 0; i < args.Len(); i++ {
		if args.GetAt(i) == nil {
			return false, nil
		}
	}
	return true, nil
}

// Regex matches the argument values, joined by tabs, against a pattern. By
// default records that do not match are removed; with removeMatch set,
// records that match are removed instead.
type Regex struct {
	operation.Base
	pattern     *regexp.Regexp
	removeMatch bool
}

// NewRegex compiles pattern.
func NewRegex(pattern string, removeMatch bool) (*Regex, error) {
	re, err := regexp.Compile(pattern)
	if err != nil {
		return nil, errors.InvalidAssembly("invalid regex filter pattern").WithCause(err)
	}
	return &Regex{Base: operation.NewBase("Regex"), pattern: re, removeMatch: removeMatch}, nil
}

// Prepare allocates the per-instance text buffer.
func (r *Regex) Prepare(_ *operation.Process, call *operation.Call) error {
	call.SetContext(&scratch{})
	return nil
}

// Cleanup drops the text buffer.
func (r *Regex) Cleanup(_ *operation.Process, call *operation.Call) {
	call.SetContext(nil)
}

// IsRemove implements operation.Filter.
func (r *Regex) IsRemove(_ *operation.Process, call *operation.Call) (bool, error) {
	s, ok := call.Context().(*scratch)
	if !ok {
		return false, errors.InvalidAssembly("Regex invoked before Prepare")
	}
	s.fill(call.Arguments())
	return r.pattern.Match(s.buf) == r.removeMatch, nil
}

// Sample keeps a deterministic fraction of the records. The decision for a
// record depends only on its argument values and the seed, so the same
// record is kept or removed by every pipeline instance.
type Sample struct {
	operation.Base
	seed      uint64
	threshold uint64
}

// NewSample keeps roughly fraction of the records; fraction is clamped to
// [0, 1].
func NewSample(seed uint64, fraction float64) *Sample {
	var threshold uint64
	switch {
	case fraction >= 1:
		threshold = math.MaxUint64
	case fraction > 0:
		threshold = uint64(fraction*(1<<53)) << 11
	}
	return &Sample{Base: operation.NewBase("Sample"), seed: seed, threshold: threshold}
}

// Prepare allocates the per-instance key buffer.
func (s *Sample) Prepare(_ *operation.Process, call *operation.Call) error {
	call.SetContext(&scratch{})
	return nil
}

// Cleanup drops the key buffer.
func (s *Sample) Cleanup(_ *operation.Process, call *operation.Call) {
	call.SetContext(nil)
}

// IsRemove implements operation.Filter.
func (s *Sample) IsRemove(_ *operation.Process, call *operation.Call) (bool, error) {
	sc, ok := call.Context().(*scratch)
	if !ok {
		return false, errors.InvalidAssembly("Sample invoked before Prepare")
	}
	if s.threshold == math.MaxUint64 {
		return false, nil
	}
	sc.fill(call.Arguments())
	return xxh3.HashSeed(sc.buf, s.seed) >= s.threshold, nil
}

// Limit keeps the first n records seen by a pipeline instance and removes
// the rest.
type Limit struct {
	operation.Base
	limit int64
}

// NewLimit creates a Limit keeping n records per instance.
func NewLimit(n int64) *Limit {
	return &Limit{Base: operation.NewBase("Limit"), limit: n}
}

type limitContext struct {
	seen int64
}

// Prepare resets the per-instance count.
func (l *Limit) Prepare(_ *operation.Process, call *operation.Call) error {
	call.SetContext(&limitContext{})
	return nil
}

// Cleanup drops the count.
func (l *Limit) Cleanup(_ *operation.Process, call *operation.Call) {
	call.SetContext(nil)
}

// IsRemove implements operation.Filter.
func (l *Limit) IsRemove(_ *operation.Process, call *operation.Call) (bool, error) {
	lc, ok := call.Context().(*limitContext)
	if !ok {
		return false, errors.InvalidAssembly("Limit invoked before Prepare")
	}
	lc.seen++
	return lc.seen > l.limit, nil
}

// scratch is a reusable text buffer for filters that look at the argument
// values as bytes.
type scratch struct {
	buf []byte
}

func (s *scratch) fill(args *tuple.Entry) {
	s.buf = s.buf[:0]
	for i := 0; i < args.Len(); i++ {
		if i > 0 {
			s.buf = append(s.buf, '\t')
		}
		s.buf = append(s.buf, args.StringAt(i)...)
	}
}
