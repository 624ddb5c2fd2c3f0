package stream

import (
	"sync"

	"github.com/kbukum/ductline/errors"
	"github.com/kbukum/ductline/tuple"
)

// SinkFunc consumes one record at the end of a chain. The entry is reused
// after the call returns; copy what must be kept.
type SinkFunc func(entry *tuple.Entry) error

// SinkStage is the terminal stage of a chain.
type SinkStage struct {
	Stage
	sink SinkFunc
}

// NewSinkStage creates a sink stage.
func NewSinkStage(rt *Runtime, name string, incoming *tuple.Schema, sink SinkFunc) *SinkStage {
	s := &SinkStage{Stage: newStage(rt, name, incoming), sink: sink}
	s.self = s
	return s
}

// Outgoing returns the incoming schema.
func (s *SinkStage) Outgoing() *tuple.Schema { return s.incoming }

// Initialize checks the sink is set.
func (s *SinkStage) Initialize() error {
	if s.sink == nil {
		return errors.InvalidAssembly("sink stage " + s.name + " has no sink")
	}
	s.logInitialized()
	return nil
}

// Bind is a no-op: nothing follows a sink.
func (s *SinkStage) Bind(Duct) {}

// Receive hands the record to the sink.
func (s *SinkStage) Receive(_ Duct, entry *tuple.Entry) {
	s.rec.Received(s.rt.runContext())
	if err := s.write(entry); err != nil {
		s.handleFailure(s.name, err, entry, errors.SinkFailed)
		return
	}
	s.rec.Forwarded(s.rt.runContext())
}

func (s *SinkStage) write(entry *tuple.Entry) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = &panicError{value: r}
		}
	}()
	return s.sink(entry)
}

// Cleanup does nothing.
func (s *SinkStage) Cleanup() { s.logCleanup() }

// Split forwards every record to each of its branches in bind order.
type Split struct {
	Stage
	branches []Duct
}

// NewSplit creates a split stage.
func NewSplit(rt *Runtime, name string, incoming *tuple.Schema) *Split {
	s := &Split{Stage: newStage(rt, name, incoming)}
	s.self = s
	return s
}

// Outgoing returns the incoming schema.
func (s *Split) Outgoing() *tuple.Schema { return s.incoming }

// Bind adds a branch.
func (s *Split) Bind(next Duct) { s.branches = append(s.branches, next) }

// Branches returns the bound branches.
func (s *Split) Branches() []Duct { return append([]Duct(nil), s.branches...) }

// Initialize checks at least one branch is bound.
func (s *Split) Initialize() error {
	if len(s.branches) == 0 {
		return errors.InvalidAssembly("split " + s.name + " has no branches")
	}
	s.logInitialized("branches", len(s.branches))
	return nil
}

// Receive pushes the record into every branch.
func (s *Split) Receive(_ Duct, entry *tuple.Entry) {
	s.rec.Received(s.rt.runContext())
	for _, b := range s.branches {
		s.rec.Forwarded(s.rt.runContext())
		b.Receive(s, entry)
	}
}

// Cleanup does nothing.
func (s *Split) Cleanup() {}

// RecordBuffer is a sink that keeps a copy of every record it receives.
// It is safe to share between pipeline instances.
type RecordBuffer struct {
	mu      sync.Mutex
	records []tuple.Tuple
}

// Sink appends a copy of the entry's values.
func (b *RecordBuffer) Sink(entry *tuple.Entry) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.records = append(b.records, append(tuple.Tuple(nil), entry.Tuple()...))
	return nil
}

// Records returns the collected records.
func (b *RecordBuffer) Records() []tuple.Tuple {
	b.mu.Lock()
	defer b.mu.Unlock()
	return append([]tuple.Tuple(nil), b.records...)
}

// Len returns the number of collected records.
func (b *RecordBuffer) Len() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.records)
}
