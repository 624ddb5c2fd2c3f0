// Package operation defines the per-record operations bound to stream
// stages and the call context they run in.
//
// An operation is prepared once per pipeline instance, invoked once per
// record and cleaned up once. Between Prepare and Cleanup it keeps its
// private state in the Call context, so one operation value can be shared
// by any number of pipeline instances.
//
//	call := operation.NewCall(tuple.NewEntry(schema))
//	if err := f.Prepare(p, call); err != nil { ... }
//	remove, err := f.IsRemove(p, call)
package operation
