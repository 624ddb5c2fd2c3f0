// Package errors provides the failure taxonomy of the stream core.
//
// Operations flag data-specific problems on a single record by returning an
// *AppError (a domain failure). Any other error, or a panic, raised inside an
// operation is wrapped by the stage into an OPERATOR_FAILED AppError that
// carries the operation name and the original failure as its cause. Both are
// handed to the error reporter together with the offending record.
package errors
