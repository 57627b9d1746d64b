package api

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"
	"google.golang.org/grpc/codes"
	grpcstatus "google.golang.org/grpc/status"

	"github.com/matheus3301/disa/internal/actions"
	"github.com/matheus3301/disa/internal/auth"
	"github.com/matheus3301/disa/internal/bus"
	"github.com/matheus3301/disa/internal/disa"
	"github.com/matheus3301/disa/internal/messages"
	"github.com/matheus3301/disa/internal/query"
)

// User-facing texts of the sign-in failures.
const (
	InvalidOTPMessage   = "Invalid OTP. Please try again or request a new OTP."
	SignInFailedMessage = "Unable to connect. Please contact the Disa Team."
	OTPFailedMessage    = "Failed to send OTP. Please check your email and try again."
	UnauthorizedMessage = "The Disa backend rejected the session token. Run :logout and sign in again."
	NotSignedInMessage  = "not signed in"
	UnreachableMessage  = "Disa backend unreachable"
)

var errInvalidEmail = errors.New("invalid email address")

// errOTPTooShort is returned for codes shorter than the backend issues.
var errOTPTooShort = errors.New("OTP must be at least 6 characters")

// toStatus translates a domain error into a gRPC status. A 401 on a data
// call is published as session.unauthorized; the session itself is kept.
func toStatus(b *bus.Bus, log *zap.Logger, op string, err error) error {
	if err == nil {
		return nil
	}
	var he *disa.HTTPError
	switch {
	case errors.Is(err, context.Canceled):
		return grpcstatus.Error(codes.Canceled, err.Error())
	case errors.Is(err, context.DeadlineExceeded):
		return grpcstatus.Error(codes.DeadlineExceeded, err.Error())
	case errors.Is(err, disa.ErrInvalidOTP):
		return grpcstatus.Error(codes.Unauthenticated, InvalidOTPMessage)
	case errors.Is(err, disa.ErrSignInFailed):
		log.Warn("sign-in failed", zap.Error(err))
		return grpcstatus.Error(codes.Unavailable, SignInFailedMessage)
	case errors.Is(err, disa.ErrOTPRequestFailed):
		log.Warn("otp request failed", zap.Error(err))
		return grpcstatus.Error(codes.Unavailable, OTPFailedMessage)
	case errors.Is(err, query.ErrDisabled), errors.Is(err, auth.ErrNotAuthenticated):
		return grpcstatus.Error(codes.FailedPrecondition, NotSignedInMessage)
	case errors.Is(err, disa.ErrUnreachable):
		log.Warn("backend unreachable", zap.String("op", op), zap.Error(err))
		return grpcstatus.Error(codes.Unavailable, UnreachableMessage)
	case errors.Is(err, errInvalidEmail), errors.Is(err, errOTPTooShort),
		errors.Is(err, messages.ErrEmptyMessage), errors.Is(err, actions.ErrNameRequired):
		return grpcstatus.Error(codes.InvalidArgument, err.Error())
	case disa.IsUnauthorized(err):
		log.Warn("backend rejected token", zap.String("op", op))
		b.Emit(bus.KindSessionUnauthorized, op)
		return grpcstatus.Error(codes.Unauthenticated, UnauthorizedMessage)
	case errors.As(err, &he):
		log.Warn("backend rejected request", zap.String("op", op), zap.Int("status", he.Status))
		return grpcstatus.Error(codes.Aborted, fmt.Sprintf("%s rejected (%d): %s", op, he.Status, he.Body))
	case errors.Is(err, disa.ErrMissingChatID):
		return grpcstatus.Error(codes.Aborted, err.Error())
	default:
		log.Error("request failed", zap.String("op", op), zap.Error(err))
		return grpcstatus.Errorf(codes.Internal, "%s: %v", op, err)
	}
}
