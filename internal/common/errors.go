package common

import (
	"errors"
	"fmt"

	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

// AppError represents application-specific errors. Message is safe to show
// to callers; Cause is for logs.
type AppError struct {
	Code    string
	Message string
	Cause   error
}

func (e *AppError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *AppError) Unwrap() error {
	return e.Cause
}

// Common application errors
var (
	ErrNotFound     = errors.New("resource not found")
	ErrInvalidInput = errors.New("invalid input")
	ErrPrecondition = errors.New("precondition failed")
	ErrInternal     = errors.New("internal error")
	ErrDatabase     = errors.New("database error")
	ErrValidation   = errors.New("validation failed")
	ErrUpstream     = errors.New("upstream service failed")
)

// Error constructors
func NewAppError(code, message string, cause error) *AppError {
	return &AppError{
		Code:    code,
		Message: message,
		Cause:   cause,
	}
}

func WrapError(err error, message string) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%s: %w", message, err)
}

// PublicMessage returns the caller-facing text for err. Errors that are not
// AppErrors never leak their text.
func PublicMessage(err error, fallback string) string {
	var ae *AppError
	if errors.As(err, &ae) && ae.Message != "" {
		return ae.Message
	}
	return fallback
}

// gRPC error helpers
func InvalidArgumentError(message string) error {
	return status.Error(codes.InvalidArgument, message)
}

func NotFoundError(message string) error {
	return status.Error(codes.NotFound, message)
}

func FailedPreconditionError(message string) error {
	return status.Error(codes.FailedPrecondition, message)
}

func InternalError(message string) error {
	return status.Error(codes.Internal, message)
}

func InvalidArgumentErrorf(format string, args ...any) error {
	return InvalidArgumentError(fmt.Sprintf(format, args...))
}

// ToGRPC maps an application error onto a gRPC status carrying only the
// public message.
func ToGRPC(err error) error {
	if err == nil {
		return nil
	}
	if _, ok := status.FromError(err); ok {
		return err
	}
	msg := PublicMessage(err, "internal error")
	switch {
	case errors.Is(err, ErrInvalidInput):
		return InvalidArgumentError(msg)
	case errors.Is(err, ErrPrecondition):
		return FailedPreconditionError(msg)
	case errors.Is(err, ErrNotFound):
		return NotFoundError(msg)
	case errors.Is(err, ErrUpstream):
		return status.Error(codes.Unavailable, msg)
	default:
		return InternalError(msg)
	}
}
