package stream

import (
	"context"
	"fmt"

	"github.com/kbukum/ductline/errors"
	"github.com/kbukum/ductline/logger"
	"github.com/kbukum/ductline/observability"
	"github.com/kbukum/ductline/operation"
	"github.com/kbukum/ductline/tuple"
)

// Duct is one link of a push-driven chain. Records are pushed into a duct
// with Receive and travel downstream synchronously on the caller's
// goroutine.
type Duct interface {
	// Bind attaches the downstream duct.
	Bind(next Duct)
	// Initialize prepares the duct. Downstream ducts are initialized first.
	Initialize() error
	// Receive handles one record. The entry is only valid for the duration
	// of the call: upstream ducts reuse it for the next record.
	Receive(prev Duct, entry *tuple.Entry)
	// Cleanup releases what Initialize acquired.
	Cleanup()
}

// CounterGroup is the process counter group stages report failures under,
// one counter per error code.
const CounterGroup = "ductline.failures"

// Runtime is the state shared by every stage of one chain: the process,
// the failure reporter and the metrics. It belongs to a single pipeline
// instance.
type Runtime struct {
	graph    string
	process  *operation.Process
	reporter Reporter
	metrics  *observability.StreamMetrics
	ctx      context.Context
	failures int64
	err      error
}

// NewRuntime creates a runtime. A nil process gets a fresh one; a nil
// reporter logs failures; nil metrics record nothing.
func NewRuntime(graph string, process *operation.Process, reporter Reporter, metrics *observability.StreamMetrics) *Runtime {
	if process == nil {
		process = operation.NewProcess(nil)
	}
	if reporter == nil {
		reporter = NewLogReporter(process.Logger())
	}
	return &Runtime{
		graph:    graph,
		process:  process,
		reporter: reporter,
		metrics:  metrics,
		ctx:      context.Background(),
	}
}

// Process returns the instance process.
func (rt *Runtime) Process() *operation.Process { return rt.process }

// Failures returns the number of failures reported so far.
func (rt *Runtime) Failures() int64 { return rt.failures }

// Err returns the error that stopped the instance, if any. It is set when
// the reporter refuses a failure.
func (rt *Runtime) Err() error { return rt.err }

func (rt *Runtime) runContext() context.Context { return rt.ctx }

func (rt *Runtime) report(f Failure) {
	rt.failures++
	rt.process.Increment(CounterGroup, string(f.Code), 1)
	if err := rt.reporter.Report(f); err != nil && rt.err == nil {
		rt.err = err
	}
}

// Stage holds what every stage shares: identity, runtime, incoming schema
// and the downstream duct.
type Stage struct {
	name     string
	rt       *Runtime
	incoming *tuple.Schema
	self     Duct
	next     Duct
	rec      *observability.StageRecorder
	log      *logger.Logger
}

func newStage(rt *Runtime, name string, incoming *tuple.Schema) Stage {
	if incoming == nil {
		incoming = tuple.Empty
	}
	return Stage{
		name:     name,
		rt:       rt,
		incoming: incoming,
		rec:      rt.metrics.Stage(rt.graph, name),
		log:      rt.process.Logger().WithFields(logger.Fields(logger.FieldStage, name)),
	}
}

// Name returns the stage name.
func (s *Stage) Name() string { return s.name }

// Incoming returns the schema of the records the stage receives.
func (s *Stage) Incoming() *tuple.Schema { return s.incoming }

// Bind attaches the downstream duct.
func (s *Stage) Bind(next Duct) { s.next = next }

// Next returns the downstream duct.
func (s *Stage) Next() Duct { return s.next }

func (s *Stage) requireNext() error {
	if s.next == nil {
		return errors.InvalidAssembly(fmt.Sprintf("stage %q has no downstream duct", s.name))
	}
	return nil
}

func (s *Stage) forward(entry *tuple.Entry) {
	s.rec.Forwarded(s.rt.runContext())
	s.next.Receive(s.self, entry)
}

// handleFailure reports one failed record. A domain failure (any AppError)
// is reported as raised; anything else, including a recovered panic, is
// wrapped with the identity of the failing operation. The record is never
// forwarded after a failure.
func (s *Stage) handleFailure(op string, err error, entry *tuple.Entry, wrap func(string, error) *errors.AppError) {
	s.reportFailure(op, err, entry.Schema(), entry.Tuple(), wrap)
}

func (s *Stage) reportFailure(op string, err error, schema *tuple.Schema, record tuple.Tuple, wrap func(string, error) *errors.AppError) {
	var code errors.ErrorCode
	appErr, isApp := errors.AsAppError(err)
	if _, panicked := err.(*panicError); panicked || !isApp {
		wrapped := wrap(op, err)
		err, code = wrapped, wrapped.Code
	} else {
		code = appErr.Code
	}

	s.rec.Failed(s.rt.runContext(), string(code))
	s.rt.report(Failure{
		Graph:     s.rt.graph,
		Stage:     s.name,
		Operation: op,
		Code:      code,
		Schema:    schema,
		Record:    append(tuple.Tuple(nil), record...),
		Err:       err,
	})
}

func (s *Stage) logInitialized(fields ...interface{}) {
	s.log.Debug("stage initialized", logger.Fields(fields...))
}

func (s *Stage) logCleanup() {
	s.log.Debug("stage cleaned up")
}

// panicError is a panic recovered from an operation.
type panicError struct {
	value any
}

func (e *panicError) Error() string { return fmt.Sprintf("panic: %v", e.value) }

func (e *panicError) Unwrap() error {
	if err, ok := e.value.(error); ok {
		return err
	}
	return nil
}

// guard runs fn and turns a panic into an error. Per-record paths recover
// inline instead to avoid the closure.
func guard(fn func() error) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = &panicError{value: r}
		}
	}()
	return fn()
}
