package errors

import (
	stderrors "errors"
	"fmt"
)

// AppError is the unified error type of the stream core.
type AppError struct {
	// Code is a machine-readable error code.
	Code ErrorCode `json:"code"`
	// Message is a human-readable error message.
	Message string `json:"message"`
	// Operation names the operation that raised or caused the error, if any.
	Operation string `json:"operation,omitempty"`
	// Details contains additional context for the error.
	Details map[string]any `json:"details,omitempty"`
	// Cause is the underlying error that caused this error.
	Cause error `json:"-"`
}

// Error returns the string representation of the error.
func (e *AppError) Error() string {
	prefix := string(e.Code)
	if e.Operation != "" {
		prefix = fmt.Sprintf("%s [%s]", e.Code, e.Operation)
	}
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s (cause: %v)", prefix, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s: %s", prefix, e.Message)
}

// Unwrap returns the underlying cause of the error.
func (e *AppError) Unwrap() error { return e.Cause }

// WithCause sets the underlying cause of the error and returns the receiver.
func (e *AppError) WithCause(cause error) *AppError {
	e.Cause = cause
	return e
}

// WithOperation sets the operation name and returns the receiver.
func (e *AppError) WithOperation(name string) *AppError {
	e.Operation = name
	return e
}

// WithDetail sets a single detail key-value pair and returns the receiver.
func (e *AppError) WithDetail(key string, value any) *AppError {
	if e.Details == nil {
		e.Details = make(map[string]any)
	}
	e.Details[key] = value
	return e
}

// New creates a new AppError.
func New(code ErrorCode, message string) *AppError {
	return &AppError{Code: code, Message: message}
}

// --- Record failures ---

// OperationFailure creates a domain failure. Operations return it to flag a
// data-specific condition on the current record.
func OperationFailure(message string) *AppError {
	return &AppError{Code: ErrCodeOperationFailure, Message: message}
}

// OperatorFailed wraps an unexpected failure raised by the named operation.
func OperatorFailed(operation string, cause error) *AppError {
	return &AppError{
		Code: ErrCodeOperatorFailed, Message: "operator failed executing operation",
		Operation: operation, Cause: cause,
	}
}

// ArityMismatch creates an error for a tuple whose size differs from its schema.
func ArityMismatch(want, got int) *AppError {
	return &AppError{
		Code: ErrCodeArityMismatch, Message: fmt.Sprintf("tuple has %d values, schema declares %d fields", got, want),
		Details: map[string]any{"want": want, "got": got},
	}
}

// SinkFailed wraps an error returned by a terminal sink.
func SinkFailed(sink string, cause error) *AppError {
	return &AppError{
		Code: ErrCodeSinkFailed, Message: "sink rejected record",
		Operation: sink, Cause: cause,
	}
}

// --- Assembly failures ---

// InvalidSelector creates an error for a selector that does not resolve.
func InvalidSelector(selector, reason string) *AppError {
	return &AppError{
		Code: ErrCodeInvalidSelector, Message: fmt.Sprintf("selector %s: %s", selector, reason),
		Details: map[string]any{"selector": selector},
	}
}

// InvalidAssembly creates an error for a malformed chain or combinator.
func InvalidAssembly(reason string) *AppError {
	return &AppError{Code: ErrCodeInvalidAssembly, Message: reason}
}

// InvalidConfig creates an error for invalid configuration.
func InvalidConfig(reason string) *AppError {
	return &AppError{Code: ErrCodeInvalidConfig, Message: reason}
}

// FramingViolation creates an error for a truncated or malformed frame.
func FramingViolation(offset, need, have int) *AppError {
	return &AppError{
		Code: ErrCodeFramingViolation, Message: fmt.Sprintf("frame at offset %d needs %d bytes, %d available", offset, need, have),
		Details: map[string]any{"offset": offset, "need": need, "have": have},
	}
}

// InvalidKey creates an error for a value that cannot be encoded as a sort key.
func InvalidKey(field, reason string) *AppError {
	e := &AppError{Code: ErrCodeInvalidKey, Message: reason}
	if field != "" {
		e.Message = fmt.Sprintf("field %q: %s", field, reason)
		e.Details = map[string]any{"field": field}
	}
	return e
}

// PipelineAborted wraps the failure that stopped a pipeline instance.
func PipelineAborted(instance string, cause error) *AppError {
	return &AppError{
		Code: ErrCodePipelineAborted, Message: "pipeline instance aborted",
		Cause: cause, Details: map[string]any{"instance": instance},
	}
}

// --- Inspection ---

// AsAppError converts an error to an AppError if possible.
func AsAppError(err error) (*AppError, bool) {
	var appErr *AppError
	if stderrors.As(err, &appErr) {
		return appErr, true
	}
	return nil, false
}

// IsAppError checks if an error is an AppError.
func IsAppError(err error) bool {
	_, ok := AsAppError(err)
	return ok
}

// HasCode reports whether err is an AppError carrying code.
func HasCode(err error, code ErrorCode) bool {
	appErr, ok := AsAppError(err)
	return ok && appErr.Code == code
}

// Is and As re-export the standard library helpers so callers need a single
// errors import.
func Is(err, target error) bool { return stderrors.Is(err, target) }

func As(err error, target any) bool { return stderrors.As(err, target) }
