package common

import (
	"errors"
	"fmt"

	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

// AppError represents application-specific errors
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

// Error codes surfaced to callers of the extraction pipeline.
const (
	CodeInvalidInput        = "INVALID_INPUT"
	CodeEmptyInput          = "EMPTY_INPUT"
	CodeUnsupportedCountry  = "UNSUPPORTED_COUNTRY"
	CodeFallbackUnavailable = "FALLBACK_UNAVAILABLE"
	CodeInternal            = "INTERNAL"
	CodeConfig              = "CONFIG_ERROR"
)

// Common application errors
var (
	ErrInvalidInput        = errors.New("invalid input")
	ErrEmptyInput          = errors.New("empty input")
	ErrUnsupportedCountry  = errors.New("unsupported country")
	ErrFallbackUnavailable = errors.New("fallback unavailable")
	ErrInternal            = errors.New("internal error")
	ErrDatabase            = errors.New("database error")
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

// IsFatal reports whether err must abort an extraction.
func IsFatal(err error) bool {
	return errors.Is(err, ErrInvalidInput) ||
		errors.Is(err, ErrEmptyInput) ||
		errors.Is(err, ErrUnsupportedCountry) ||
		errors.Is(err, ErrInternal)
}

// Message returns the human-readable part of an AppError, or err.Error().
func Message(err error) string {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr.Message
	}
	if err == nil {
		return ""
	}
	return err.Error()
}

// gRPC error helpers
func InvalidArgumentError(message string) error {
	return status.Error(codes.InvalidArgument, message)
}

func InternalError(message string) error {
	return status.Error(codes.Internal, message)
}

func InvalidArgumentErrorf(format string, args ...interface{}) error {
	return InvalidArgumentError(fmt.Sprintf(format, args...))
}

func InternalErrorf(format string, args ...interface{}) error {
	return InternalError(fmt.Sprintf(format, args...))
}

// ToStatusError maps pipeline errors onto gRPC status codes.
func ToStatusError(err error) error {
	if err == nil {
		return nil
	}
	switch {
	case errors.Is(err, ErrInvalidInput), errors.Is(err, ErrEmptyInput), errors.Is(err, ErrUnsupportedCountry):
		return InvalidArgumentError(Message(err))
	case errors.Is(err, ErrFallbackUnavailable):
		return status.Error(codes.Unavailable, Message(err))
	default:
		return InternalError(Message(err))
	}
}
