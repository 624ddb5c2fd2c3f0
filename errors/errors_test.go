package errors

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAppError_New_Success(t *testing.T) {
	err := New(ErrCodeInvalidAssembly, "no stages")
	assert.Equal(t, ErrCodeInvalidAssembly, err.Code)
	assert.Equal(t, "no stages", err.Message)
}

func TestAppError_OperatorFailed_Success(t *testing.T) {
	cause := fmt.Errorf("index out of range")
	err := OperatorFailed("parse-date", cause)
	assert.Equal(t, ErrCodeOperatorFailed, err.Code)
	assert.Equal(t, "parse-date", err.Operation)
	assert.Same(t, cause, err.Cause)
	assert.ErrorIs(t, err, cause)
}

func TestAppError_Error_Format(t *testing.T) {
	tests := []struct {
		name string
		err  *AppError
		want string
	}{
		{"plain", OperationFailure("bad zip"), "OPERATION_FAILURE: bad zip"},
		{"with operation", OperationFailure("bad zip").WithOperation("zip"), "OPERATION_FAILURE [zip]: bad zip"},
		{"with cause", OperatorFailed("zip", fmt.Errorf("boom")), "OPERATOR_FAILED [zip]: operator failed executing operation (cause: boom)"},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			assert.EqualError(t, tc.err, tc.want)
		})
	}
}

func TestAppError_WithDetail_NilMap(t *testing.T) {
	err := InvalidAssembly("x")
	err.WithDetail("stage", "filter")
	assert.Equal(t, "filter", err.Details["stage"])
}

func TestAppError_Constructors_Table(t *testing.T) {
	tests := []struct {
		name string
		err  *AppError
		code ErrorCode
	}{
		{"ArityMismatch", ArityMismatch(2, 3), ErrCodeArityMismatch},
		{"SinkFailed", SinkFailed("out", fmt.Errorf("closed")), ErrCodeSinkFailed},
		{"InvalidSelector", InvalidSelector("[a]", "unknown field"), ErrCodeInvalidSelector},
		{"InvalidConfig", InvalidConfig("bad policy"), ErrCodeInvalidConfig},
		{"FramingViolation", FramingViolation(0, 4, 2), ErrCodeFramingViolation},
		{"PipelineAborted", PipelineAborted("id", fmt.Errorf("x")), ErrCodePipelineAborted},
		{"InvalidKey", InvalidKey("age", "cannot encode string as int64 key"), ErrCodeInvalidKey},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.code, tc.err.Code)
			assert.NotEmpty(t, tc.err.Message)
		})
	}
}

func TestArityMismatch_Message(t *testing.T) {
	err := ArityMismatch(2, 3)
	assert.Contains(t, err.Message, "3 values")
	assert.Contains(t, err.Message, "2 fields")
}

func TestInvalidKey_Field(t *testing.T) {
	err := InvalidKey("age", "bad value")
	assert.Equal(t, "age", err.Details["field"])
	assert.Contains(t, err.Message, `"age"`)

	unnamed := InvalidKey("", "bad value")
	assert.Nil(t, unnamed.Details)
	assert.Equal(t, "bad value", unnamed.Message)
}

func TestIsRecordCode_Table(t *testing.T) {
	tests := []struct {
		code ErrorCode
		want bool
	}{
		{ErrCodeOperationFailure, true},
		{ErrCodeOperatorFailed, true},
		{ErrCodeArityMismatch, true},
		{ErrCodeSinkFailed, true},
		{ErrCodeInvalidSelector, false},
		{ErrCodeFramingViolation, false},
		{ErrCodePipelineAborted, false},
		{ErrCodeInvalidKey, false},
	}
	for _, tc := range tests {
		assert.Equal(t, tc.want, IsRecordCode(tc.code), "IsRecordCode(%s)", tc.code)
	}
}

func TestAsAppError_Wrapped(t *testing.T) {
	inner := OperationFailure("bad")
	wrapped := fmt.Errorf("outer: %w", inner)

	got, ok := AsAppError(wrapped)
	require.True(t, ok)
	assert.Same(t, inner, got)
	assert.True(t, HasCode(wrapped, ErrCodeOperationFailure))
	assert.False(t, IsAppError(fmt.Errorf("plain")))
}

func TestAppError_ImplementsErrorInterface(t *testing.T) {
	var err error = OperationFailure("x")
	assert.NotEmpty(t, err.Error())
}
