package operation

import "github.com/kbukum/ductline/tuple"

// Collector receives the tuples a Function emits for one input record.
type Collector interface {
	Add(t tuple.Tuple) error
}

// Call is the operation call context. One Call exists per bound operation
// per pipeline instance and is reused for every record: it holds the
// currently selected argument entry and the operation's private context.
//
// A Call belongs to a single pipeline instance and is not safe for
// concurrent use.
type Call struct {
	arguments *tuple.Entry
	context   any
	output    Collector
}

// NewCall creates a call whose argument entry is arguments.
func NewCall(arguments *tuple.Entry) *Call {
	return &Call{arguments: arguments}
}

// Arguments returns the argument entry of the current record.
func (c *Call) Arguments() *tuple.Entry { return c.arguments }

// SetArguments replaces the argument entry.
func (c *Call) SetArguments(arguments *tuple.Entry) { c.arguments = arguments }

// Context returns the operation's private context.
func (c *Call) Context() any { return c.context }

// SetContext replaces the operation's private context. Operations usually
// set it once in Prepare.
func (c *Call) SetContext(ctx any) { c.context = ctx }

// Output returns the collector of a function call; nil for filters.
func (c *Call) Output() Collector { return c.output }

// SetOutput replaces the collector.
func (c *Call) SetOutput(output Collector) { c.output = output }

// Frame is a saved (arguments, context) pair of a Call.
type Frame struct {
	arguments *tuple.Entry
	context   any
}

// Enter makes arguments and ctx live on the call and returns what was live
// before. Pair every Enter with a deferred Restore:
//
//	defer call.Restore(call.Enter(childArgs, childCtx))
func (c *Call) Enter(arguments *tuple.Entry, ctx any) Frame {
	saved := Frame{arguments: c.arguments, context: c.context}
	c.arguments = arguments
	c.context = ctx
	return saved
}

// Restore puts a saved frame back.
func (c *Call) Restore(f Frame) {
	c.arguments = f.arguments
	c.context = f.context
}
