package stream

import (
	"context"

	"github.com/kbukum/ductline/errors"
	"github.com/kbukum/ductline/logger"
	"github.com/kbukum/ductline/tuple"
)

// Iterator provides pull-based sequential access to the records a source
// stage pushes into its chain.
type Iterator interface {
	// Next returns the next record. Returns (nil, false, nil) when exhausted.
	Next(ctx context.Context) (tuple.Tuple, bool, error)
	// Close releases any resources held by the iterator.
	Close() error
}

// FromSlice creates an iterator over records.
func FromSlice(records []tuple.Tuple) Iterator {
	return &sliceIter{items: records}
}

// FromFunc creates an iterator from a next function. close may be nil.
func FromFunc(next func(ctx context.Context) (tuple.Tuple, bool, error), close func() error) Iterator {
	return &funcIter{next: next, close: close}
}

// FromChannel creates an iterator reading records from ch until it is
// closed or the context is done.
func FromChannel(ch <-chan tuple.Tuple) Iterator {
	return &channelIter{ch: ch}
}

type sliceIter struct {
	items []tuple.Tuple
	index int
}

func (it *sliceIter) Next(_ context.Context) (tuple.Tuple, bool, error) {
	if it.index >= len(it.items) {
		return nil, false, nil
	}
	val := it.items[it.index]
	it.index++
	return val, true, nil
}

func (it *sliceIter) Close() error { return nil }

type funcIter struct {
	next  func(ctx context.Context) (tuple.Tuple, bool, error)
	close func() error
}

func (it *funcIter) Next(ctx context.Context) (tuple.Tuple, bool, error) { return it.next(ctx) }

func (it *funcIter) Close() error {
	if it.close != nil {
		return it.close()
	}
	return nil
}

type channelIter struct {
	ch <-chan tuple.Tuple
}

func (it *channelIter) Next(ctx context.Context) (tuple.Tuple, bool, error) {
	select {
	case t, open := <-it.ch:
		if !open {
			return nil, false, nil
		}
		return t, true, nil
	case <-ctx.Done():
		return nil, false, ctx.Err()
	}
}

func (it *channelIter) Close() error { return nil }

// SourceStage is the head of a chain. It turns pulled tuples into records
// of its schema and pushes them downstream one at a time.
type SourceStage struct {
	Stage
	entry *tuple.Entry
}

// NewSourceStage creates a source producing records of schema.
func NewSourceStage(rt *Runtime, name string, schema *tuple.Schema) *SourceStage {
	s := &SourceStage{Stage: newStage(rt, name, schema)}
	s.entry = tuple.NewEntry(s.incoming)
	s.self = s
	return s
}

// Outgoing returns the source schema.
func (s *SourceStage) Outgoing() *tuple.Schema { return s.incoming }

// Initialize checks the source is bound.
func (s *SourceStage) Initialize() error {
	if err := s.requireNext(); err != nil {
		return err
	}
	s.logInitialized("fields", s.incoming.String())
	return nil
}

// Receive forwards an entry that already carries the source schema.
func (s *SourceStage) Receive(_ Duct, entry *tuple.Entry) {
	s.rec.Received(s.rt.runContext())
	s.forward(entry)
}

// Push sends one tuple down the chain. A tuple whose size differs from the
// schema is reported and dropped.
func (s *SourceStage) Push(t tuple.Tuple) {
	s.rec.Received(s.rt.runContext())
	if err := s.entry.SetTuple(t); err != nil {
		s.reportFailure(s.name, err, s.incoming, t, errors.OperatorFailed)
		return
	}
	s.forward(s.entry)
}

// Run pushes every record of iter down the chain until the iterator is
// exhausted, the context is done or the reporter stops the instance. The
// iterator is closed on return.
func (s *SourceStage) Run(ctx context.Context, iter Iterator) error {
	defer func() {
		if err := iter.Close(); err != nil {
			s.log.Warn("closing source iterator failed", logger.Fields(logger.FieldError, err.Error()))
		}
	}()
	s.rt.ctx = ctx

	var count int64
	for {
		if err := ctx.Err(); err != nil {
			return err
		}
		t, ok, err := iter.Next(ctx)
		if err != nil {
			return err
		}
		if !ok {
			s.log.Debug("source exhausted", logger.Fields(logger.FieldCount, count))
			return nil
		}
		count++
		s.Push(t)
		if err := s.rt.Err(); err != nil {
			return err
		}
	}
}

// Cleanup does nothing; the iterator is closed by Run.
func (s *SourceStage) Cleanup() {}
