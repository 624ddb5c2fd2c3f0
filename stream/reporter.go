package stream

import (
	"context"
	"fmt"

	"github.com/kbukum/ductline/config"
	"github.com/kbukum/ductline/errors"
	"github.com/kbukum/ductline/logger"
	"github.com/kbukum/ductline/resilience"
	"github.com/kbukum/ductline/tuple"
)

// Failure describes one record that failed in a stage.
type Failure struct {
	Graph     string
	Stage     string
	Operation string
	Code      errors.ErrorCode
	// Schema and Record hold a copy of the offending record.
	Schema *tuple.Schema
	Record tuple.Tuple
	Err    error
}

// Entry rebuilds the offending record as an entry.
func (f Failure) Entry() (*tuple.Entry, error) {
	return tuple.NewEntryWith(f.Schema, f.Record)
}

func (f Failure) fields() map[string]interface{} {
	return logger.Fields(
		logger.FieldStage, f.Stage,
		logger.FieldOperation, f.Operation,
		logger.FieldCode, string(f.Code),
		logger.FieldRecord, f.Record.String(),
		logger.FieldError, f.Err.Error(),
	)
}

// Reporter receives every failed record of a pipeline instance. Returning
// an error stops the instance.
type Reporter interface {
	Report(f Failure) error
}

// ReporterFunc adapts a function to Reporter.
type ReporterFunc func(f Failure) error

// Report calls fn.
func (fn ReporterFunc) Report(f Failure) error { return fn(f) }

// LogReporter logs every failure and lets the stream carry on.
type LogReporter struct {
	log *logger.Logger
}

// NewLogReporter creates a LogReporter. A nil log uses the "stream"
// component logger.
func NewLogReporter(log *logger.Logger) *LogReporter {
	if log == nil {
		log = logger.Get("stream")
	}
	return &LogReporter{log: log}
}

// Report logs f.
func (r *LogReporter) Report(f Failure) error {
	r.log.Error("record failed", f.fields())
	return nil
}

// TrapFunc receives records diverted by a TrapReporter.
type TrapFunc func(f Failure) error

// RetryTrap retries trap deliveries that fail with backoff until cfg gives
// up or ctx is done.
func RetryTrap(ctx context.Context, cfg resilience.RetryConfig, trap TrapFunc) TrapFunc {
	if trap == nil || cfg.MaxAttempts <= 1 {
		return trap
	}
	return func(f Failure) error {
		return resilience.Do(ctx, cfg, func() error { return trap(f) })
	}
}

// TrapReporter diverts every failed record to a trap and lets the stream
// carry on. A trap that itself fails stops the instance.
type TrapReporter struct {
	trap TrapFunc
	log  *logger.Logger
}

// NewTrapReporter creates a TrapReporter.
func NewTrapReporter(trap TrapFunc, log *logger.Logger) *TrapReporter {
	if log == nil {
		log = logger.Get("stream")
	}
	return &TrapReporter{trap: trap, log: log}
}

// Report hands f to the trap.
func (r *TrapReporter) Report(f Failure) error {
	r.log.Warn("record trapped", f.fields())
	if err := r.trap(f); err != nil {
		return errors.SinkFailed("trap", err)
	}
	return nil
}

// FailFastReporter stops the instance at the first failure.
type FailFastReporter struct {
	instance string
	log      *logger.Logger
	err      error
}

// NewFailFastReporter creates a FailFastReporter for the named instance.
func NewFailFastReporter(instance string, log *logger.Logger) *FailFastReporter {
	if log == nil {
		log = logger.Get("stream")
	}
	return &FailFastReporter{instance: instance, log: log}
}

// Report records the first failure and returns it, wrapped as
// PIPELINE_ABORTED, on every call.
func (r *FailFastReporter) Report(f Failure) error {
	if r.err == nil {
		r.log.Error("record failed, aborting instance", f.fields())
		r.err = errors.PipelineAborted(r.instance, f.Err)
	}
	return r.err
}

// Err returns the failure that aborted the instance, if any.
func (r *FailFastReporter) Err() error { return r.err }

// ReporterFor builds the reporter of an error policy. The trap policy
// requires trap.
func ReporterFor(policy string, trap TrapFunc, instance string, log *logger.Logger) (Reporter, error) {
	switch policy {
	case config.ErrorPolicyLog, "":
		return NewLogReporter(log), nil
	case config.ErrorPolicyTrap:
		if trap == nil {
			return nil, errors.InvalidConfig("error policy trap requires a trap")
		}
		return NewTrapReporter(trap, log), nil
	case config.ErrorPolicyFailFast:
		return NewFailFastReporter(instance, log), nil
	default:
		return nil, errors.InvalidConfig(fmt.Sprintf("unknown error policy %q", policy))
	}
}
