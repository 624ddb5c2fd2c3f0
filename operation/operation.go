package operation

import "github.com/kbukum/ductline/tuple"

// Operation is a unit of per-record work bound to a stage.
type Operation interface {
	// Name identifies the operation in failure reports and logs.
	Name() string
	// Prepare is called once per pipeline instance before any record
	// flows. The call's arguments hold the resolved argument schema; an
	// operation that needs private state stores it with call.SetContext.
	Prepare(p *Process, call *Call) error
	// Cleanup is called once after the last record.
	Cleanup(p *Process, call *Call)
}

// Filter decides, per record, whether the record is removed from the
// stream. It reads its arguments from call.Arguments() and must not modify
// them.
type Filter interface {
	Operation
	IsRemove(p *Process, call *Call) (bool, error)
}

// Function maps one argument record to zero or more output tuples, emitted
// with call.Output().Add. Every emitted tuple must match Declared.
type Function interface {
	Operation
	Declared() *tuple.Schema
	Operate(p *Process, call *Call) error
}

// Base provides a name and no-op lifecycle hooks. Embed it in operations
// that keep no private state.
type Base struct {
	name string
}

// NewBase creates a Base with name.
func NewBase(name string) Base { return Base{name: name} }

// Name returns the operation name.
func (b Base) Name() string { return b.name }

// Prepare does nothing.
func (Base) Prepare(*Process, *Call) error { return nil }

// Cleanup does nothing.
func (Base) Cleanup(*Process, *Call) {}

// FunctionFunc adapts a plain function to the Function interface.
type FunctionFunc struct {
	Base
	declared *tuple.Schema
	fn       func(args *tuple.Entry, out Collector) error
}

// NewFunction creates a stateless function declaring the output schema
// declared.
func NewFunction(name string, declared *tuple.Schema, fn func(args *tuple.Entry, out Collector) error) *FunctionFunc {
	return &FunctionFunc{Base: NewBase(name), declared: declared, fn: fn}
}

// Declared returns the output schema.
func (f *FunctionFunc) Declared() *tuple.Schema { return f.declared }

// Operate invokes the wrapped function.
func (f *FunctionFunc) Operate(_ *Process, call *Call) error {
	return f.fn(call.Arguments(), call.Output())
}
