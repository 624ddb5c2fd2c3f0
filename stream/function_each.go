package stream

import (
	"github.com/kbukum/ductline/errors"
	"github.com/kbukum/ductline/logger"
	"github.com/kbukum/ductline/operation"
	"github.com/kbukum/ductline/tuple"
)

// FunctionEachStage applies a function to every record and forwards each
// tuple the function emits, as a record of the function's declared schema.
//
// Emissions are forwarded as they are added, not when the function returns.
// If an emission fails (an arity mismatch) or the function returns an error
// after emitting, the tuples added before it have already gone downstream
// and the record is still reported as failed.
type FunctionEachStage struct {
	Stage
	arguments tuple.Fields
	function  operation.Function

	selector *tuple.Selector
	args     *tuple.Entry
	buf      tuple.Tuple
	out      *tuple.Entry
	output   *stageCollector
	call     *operation.Call
}

// NewFunctionEachStage creates a stage applying fn to the fields chosen by
// arguments.
func NewFunctionEachStage(rt *Runtime, name string, incoming *tuple.Schema, arguments tuple.Fields, fn operation.Function) *FunctionEachStage {
	s := &FunctionEachStage{Stage: newStage(rt, name, incoming), arguments: arguments, function: fn}
	s.self = s
	return s
}

// Outgoing returns the function's declared schema.
func (s *FunctionEachStage) Outgoing() *tuple.Schema {
	if s.function == nil || s.function.Declared() == nil {
		return tuple.Empty
	}
	return s.function.Declared()
}

// Initialize resolves the argument selector, allocates the input and
// output scratch and prepares the function.
func (s *FunctionEachStage) Initialize() error {
	if err := s.requireNext(); err != nil {
		return err
	}
	if s.function == nil {
		return errors.InvalidAssembly("function stage " + s.name + " has no function")
	}
	sel, err := s.arguments.Resolve(s.incoming)
	if err != nil {
		return err
	}
	s.selector = sel
	s.args = tuple.NewEntry(sel.Schema())
	s.buf = make(tuple.Tuple, sel.Len())
	s.out = tuple.NewEntry(s.Outgoing())
	s.output = &stageCollector{stage: s}
	s.call = operation.NewCall(s.args)
	s.call.SetOutput(s.output)

	if err := guard(func() error { return s.function.Prepare(s.rt.process, s.call) }); err != nil {
		return errors.OperatorFailed(s.function.Name(), err)
	}
	s.logInitialized(logger.FieldOperation, s.function.Name(), "declared", s.Outgoing().String())
	return nil
}

// Receive invokes the function for one record.
func (s *FunctionEachStage) Receive(_ Duct, entry *tuple.Entry) {
	s.rec.Received(s.rt.runContext())

	if err := s.operate(entry); err != nil {
		s.handleFailure(s.function.Name(), err, entry, errors.OperatorFailed)
	}
}

func (s *FunctionEachStage) operate(entry *tuple.Entry) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = &panicError{value: r}
		}
	}()
	s.buf = entry.SelectInto(s.selector, s.buf)
	if err := s.args.SetTuple(s.buf); err != nil {
		return err
	}
	s.call.SetArguments(s.args)
	s.output.err = nil
	if err := s.function.Operate(s.rt.process, s.call); err != nil {
		return err
	}
	return s.output.err
}

// Cleanup cleans up the function.
func (s *FunctionEachStage) Cleanup() {
	if s.call == nil {
		return
	}
	_ = guard(func() error {
		s.function.Cleanup(s.rt.process, s.call)
		return nil
	})
	s.logCleanup()
}

// stageCollector forwards emitted tuples downstream through the stage's
// output entry. A tuple that does not match the declared schema is not
// forwarded and fails the record.
type stageCollector struct {
	stage *FunctionEachStage
	err   error
}

func (c *stageCollector) Add(t tuple.Tuple) error {
	if err := c.stage.out.SetTuple(t); err != nil {
		if c.err == nil {
			c.err = err
		}
		return err
	}
	c.stage.forward(c.stage.out)
	return nil
}
