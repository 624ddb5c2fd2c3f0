package errors

// ErrorCode represents a machine-readable error code.
type ErrorCode string

// Record-level failures, reported once per offending record.
const (
	// ErrCodeOperationFailure is raised by an operation on purpose to flag a
	// data-specific condition on one record.
	ErrCodeOperationFailure ErrorCode = "OPERATION_FAILURE"
	// ErrCodeOperatorFailed wraps any other failure raised inside an operation.
	ErrCodeOperatorFailed ErrorCode = "OPERATOR_FAILED"
	// ErrCodeArityMismatch indicates a tuple whose size differs from its schema.
	ErrCodeArityMismatch ErrorCode = "ARITY_MISMATCH"
	// ErrCodeSinkFailed indicates the terminal sink rejected a record.
	ErrCodeSinkFailed ErrorCode = "SINK_FAILED"
)

// Assembly failures, raised while a chain is built or initialized.
const (
	// ErrCodeInvalidSelector indicates a field selector that does not resolve
	// against the incoming schema.
	ErrCodeInvalidSelector ErrorCode = "INVALID_SELECTOR"
	// ErrCodeInvalidAssembly indicates a malformed stage chain or combinator.
	ErrCodeInvalidAssembly ErrorCode = "INVALID_ASSEMBLY"
	// ErrCodeInvalidConfig indicates invalid configuration.
	ErrCodeInvalidConfig ErrorCode = "INVALID_CONFIG"
)

// Other failures.
const (
	// ErrCodeFramingViolation indicates a truncated or malformed length-prefixed
	// frame. Only the checked comparator reports it.
	ErrCodeFramingViolation ErrorCode = "FRAMING_VIOLATION"
	// ErrCodeInvalidKey indicates a value that cannot be encoded as a sort key
	// of its declared field type.
	ErrCodeInvalidKey ErrorCode = "INVALID_KEY"
	// ErrCodePipelineAborted indicates a pipeline instance stopped under the
	// fail-fast policy.
	ErrCodePipelineAborted ErrorCode = "PIPELINE_ABORTED"
)

var recordCodes = map[ErrorCode]bool{
	ErrCodeOperationFailure: true,
	ErrCodeOperatorFailed:   true,
	ErrCodeArityMismatch:    true,
	ErrCodeSinkFailed:       true,
}

// IsRecordCode returns true if the code describes a failure of a single record
// rather than of the whole assembly.
func IsRecordCode(code ErrorCode) bool {
	return recordCodes[code]
}
