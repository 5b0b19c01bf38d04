package grpcledger

import (
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"agriledger/handler"
	"agriledger/state"
)

// mapErr converts a handler rejection or ledger error into a gRPC status.
func mapErr(err error) error {
	if err == nil {
		return nil
	}
	if err == state.ErrClosed {
		return status.Error(codes.Unavailable, err.Error())
	}
	switch handler.RejectionCode(err) {
	case handler.CodeMissingField, handler.CodeMalformed:
		return status.Error(codes.InvalidArgument, err.Error())
	case handler.CodeUnauthorized:
		return status.Error(codes.PermissionDenied, err.Error())
	case handler.CodeNotFound:
		return status.Error(codes.NotFound, err.Error())
	case handler.CodeRule:
		return status.Error(codes.FailedPrecondition, err.Error())
	case handler.CodeUnknownAction:
		return status.Error(codes.Unimplemented, err.Error())
	default:
		return status.Error(codes.Internal, err.Error())
	}
}
