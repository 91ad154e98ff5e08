package grpc

import (
	"context"
	"errors"

	"github.com/dmitrijs2005/gophauth/internal/common"
	"github.com/dmitrijs2005/gophauth/internal/server/auth/password"
	"github.com/dmitrijs2005/gophauth/internal/server/services"
	"google.golang.org/genproto/googleapis/rpc/errdetails"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

// Client-visible messages for authentication failures.
const (
	MsgInvalidCredentials = "Invalid username and/or password"
	MsgTokenExpired       = "Signature has expired"
	MsgInvalidToken       = "Invalid token"
	MsgMissingToken       = "missing token"
)

// toStatus maps a service error to a gRPC status error. Internal details
// never reach the client.
func toStatus(err error) error {
	var rej *password.RejectedError

	switch {
	case errors.Is(err, common.ErrInvalidCredentials):
		return status.Error(codes.Unauthenticated, MsgInvalidCredentials)
	case errors.Is(err, common.ErrTokenExpired):
		return status.Error(codes.Unauthenticated, MsgTokenExpired)
	case errors.Is(err, common.ErrInvalidToken):
		return status.Error(codes.Unauthenticated, MsgInvalidToken)
	case errors.As(err, &rej):
		return policyStatus(rej)
	case errors.Is(err, common.ErrPasswordMismatch),
		errors.Is(err, services.ErrInvalidAccount):
		return status.Error(codes.InvalidArgument, err.Error())
	case errors.Is(err, common.ErrorAlreadyExists):
		return status.Error(codes.AlreadyExists, err.Error())
	case errors.Is(err, common.ErrorNotFound):
		return status.Error(codes.NotFound, "account not found")
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return status.FromContextError(err).Err()
	default:
		return status.Error(codes.Internal, common.ErrorInternal.Error())
	}
}

// policyStatus lists every failed rule both in the message and as
// BadRequest field violations.
func policyStatus(rej *password.RejectedError) error {
	st := status.New(codes.InvalidArgument, rej.Error())

	br := &errdetails.BadRequest{}
	for _, r := range rej.Failed {
		br.FieldViolations = append(br.FieldViolations, &errdetails.BadRequest_FieldViolation{
			Field:       "password",
			Description: r.Describe(),
		})
	}

	if withDetails, err := st.WithDetails(br); err == nil {
		st = withDetails
	}
	return st.Err()
}
