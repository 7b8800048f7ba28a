package main

import (
	"fmt"
	"io"
	"sort"

	"google.golang.org/grpc/status"

	"github.com/KirkDiggler/rpg-world/internal/errors"
)

// failure is how a failed command is reported to the caller
type failure struct {
	Code       errors.Code
	GRPCStatus *status.Status
	HTTPStatus int
	Message    string
	Meta       map[string]interface{}
}

func describeFailure(err error) failure {
	code := errors.GetCode(err)
	st, _ := status.FromError(errors.ToGRPCError(err))
	return failure{
		Code:       code,
		GRPCStatus: st,
		HTTPStatus: code.HTTPStatus(),
		Message:    err.Error(),
		Meta:       errors.GetMeta(err),
	}
}

// ExitCode is the gRPC code number, so scripts can tell a missing world
// (5) from a conflicting write (10). Never zero.
func (f failure) ExitCode() int {
	if c := int(f.GRPCStatus.Code()); c != 0 {
		return c
	}
	return 1
}

// reportFailure writes err to w and returns the process exit code
func reportFailure(w io.Writer, err error) int {
	f := describeFailure(err)
	fmt.Fprintf(w, "Error: %s\n", f.Message)
	fmt.Fprintf(w, "  code=%s grpc=%s http=%d\n", f.Code, f.GRPCStatus.Code(), f.HTTPStatus)

	keys := make([]string, 0, len(f.Meta))
	for k := range f.Meta {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		fmt.Fprintf(w, "  %s=%v\n", k, f.Meta[k])
	}
	return f.ExitCode()
}
