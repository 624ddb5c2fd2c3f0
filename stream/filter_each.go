package stream

import (
	"github.com/kbukum/ductline/errors"
	"github.com/kbukum/ductline/logger"
	"github.com/kbukum/ductline/operation"
	"github.com/kbukum/ductline/tuple"
)

// FilterEachStage applies a filter to every record and forwards the
// original record when the filter keeps it.
type FilterEachStage struct {
	Stage
	arguments tuple.Fields
	filter    operation.Filter

	selector *tuple.Selector
	args     *tuple.Entry
	buf      tuple.Tuple
	call     *operation.Call
}

// NewFilterEachStage creates a stage applying f to the fields chosen by
// arguments.
func NewFilterEachStage(rt *Runtime, name string, incoming *tuple.Schema, arguments tuple.Fields, f operation.Filter) *FilterEachStage {
	s := &FilterEachStage{Stage: newStage(rt, name, incoming), arguments: arguments, filter: f}
	s.self = s
	return s
}

// Outgoing returns the schema of forwarded records, which is the incoming
// schema.
func (s *FilterEachStage) Outgoing() *tuple.Schema { return s.incoming }

// Initialize resolves the argument selector, allocates the per-record
// scratch and prepares the filter.
func (s *FilterEachStage) Initialize() error {
	if err := s.requireNext(); err != nil {
		return err
	}
	if s.filter == nil {
		return errors.InvalidAssembly("filter stage " + s.name + " has no filter")
	}
	sel, err := s.arguments.Resolve(s.incoming)
	if err != nil {
		return err
	}
	s.selector = sel
	s.args = tuple.NewEntry(sel.Schema())
	s.buf = make(tuple.Tuple, sel.Len())
	s.call = operation.NewCall(s.args)

	if err := guard(func() error { return s.filter.Prepare(s.rt.process, s.call) }); err != nil {
		return errors.OperatorFailed(s.filter.Name(), err)
	}
	s.logInitialized(logger.FieldOperation, s.filter.Name(), "arguments", sel.Schema().String())
	return nil
}

// Receive evaluates the filter for one record.
func (s *FilterEachStage) Receive(_ Duct, entry *tuple.Entry) {
	s.rec.Received(s.rt.runContext())

	remove, err := s.isRemove(entry)
	if err != nil {
		s.handleFailure(s.filter.Name(), err, entry, errors.OperatorFailed)
		return
	}
	if remove {
		s.rec.Removed(s.rt.runContext())
		return
	}
	s.forward(entry)
}

func (s *FilterEachStage) isRemove(entry *tuple.Entry) (remove bool, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = &panicError{value: r}
		}
	}()
	s.buf = entry.SelectInto(s.selector, s.buf)
	if err := s.args.SetTuple(s.buf); err != nil {
		return false, err
	}
	// Operations may swap the call's arguments; every record starts from
	// the stage's own scratch entry.
	s.call.SetArguments(s.args)
	return s.filter.IsRemove(s.rt.process, s.call)
}

// Cleanup cleans up the filter.
func (s *FilterEachStage) Cleanup() {
	if s.call == nil {
		return
	}
	_ = guard(func() error {
		s.filter.Cleanup(s.rt.process, s.call)
		return nil
	})
	s.logCleanup()
}
