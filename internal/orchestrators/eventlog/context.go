package eventlog

import "context"

type callKey struct{}

// Call identifies the engine call that produced an event
type Call struct {
	OperationID string
	RoomID      *int64
	UserID      *int64
}

// WithCall attaches call metadata that Log stamps on every event
func WithCall(ctx context.Context, call Call) context.Context {
	return context.WithValue(ctx, callKey{}, call)
}

// CallFrom returns the call metadata in ctx, if any
func CallFrom(ctx context.Context) (Call, bool) {
	call, ok := ctx.Value(callKey{}).(Call)
	return call, ok
}
