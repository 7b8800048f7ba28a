// Package errors provides structured errors for the world engine.
//
// Every engine operation returns either a payload or an *Error. Callers
// (chat handlers, HTTP dispatchers, AI tool executors) switch on the Code
// and show the Message; they never need to match on strings.
//
// # Basic Usage
//
//	err := errors.NotFoundf("character %d not found", id)
//	err := errors.InvalidArgument("invalid time of day").WithMeta("value", v)
//
// Wrapping storage errors keeps the code of an inner *Error, or marks a
// foreign error as internal:
//
//	if err := pipe.Exec(ctx); err != nil {
//	    return errors.Wrap(err, "failed to commit")
//	}
//
// # Taxonomy
//
//   - NotFound: a referenced entity does not exist
//   - InvalidArgument: bad enum value, unknown target kind, wrong key
//   - FailedPrecondition: a business rule blocks the action (healing the dead, locked exit)
//   - AlreadyExists: recoverable conflict, the existing id travels in Meta
//   - Aborted: optimistic transaction lost every retry
//   - Internal: storage failure
//
// Code.HTTPStatus and ToGRPCError translate codes for transport layers.
package errors
