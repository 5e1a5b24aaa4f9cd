package errx

import (
	"errors"
	"fmt"
	"net/http"
)

const (
	// SystemErrorMessage is a user-facing fallback when internal errors occur.
	SystemErrorMessage = "internal server error"
	// RedisErrorMessage describes Redis related failures.
	RedisErrorMessage = "redis operation failed"
	// RedisNotFoundMessage describes a missing Redis key.
	RedisNotFoundMessage = "not found"
	// CrossUserAccessMessage describes an attempt to touch another user's conversation.
	CrossUserAccessMessage = "conversation belongs to a different user"
	// DispatchErrorMessage describes a failure from a business operation backend.
	DispatchErrorMessage = "business operation failed"
)

// AppError wraps an underlying error with an HTTP status and safe message.
type AppError struct {
	Err     error
	Status  int
	Message string
}

// Error implements the error interface.
func (e *AppError) Error() string {
	if e.Err == nil {
		return e.Message
	}
	return fmt.Sprintf("%s: %v", e.Message, e.Err)
}

// Unwrap exposes the underlying error for errors.Is / errors.As support.
func (e *AppError) Unwrap() error {
	return e.Err
}

// New creates a new AppError with the provided information.
func New(err error, status int, message string) *AppError {
	return &AppError{
		Err:     err,
		Status:  status,
		Message: message,
	}
}

// CrossUserAccess reports a request whose user id does not own the conversation.
// The conversation state must not be read or mutated when this is returned.
func CrossUserAccess(conversationID, userID string) *AppError {
	return &AppError{
		Err:     fmt.Errorf("conversation %s not owned by user %s", conversationID, userID),
		Status:  http.StatusForbidden,
		Message: CrossUserAccessMessage,
	}
}

// WrapDispatch wraps a failure from an external business operation.
func WrapDispatch(err error) *AppError {
	if err == nil {
		return nil
	}
	return &AppError{
		Err:     err,
		Status:  http.StatusBadGateway,
		Message: DispatchErrorMessage,
	}
}

// Is reports whether the target matches the underlying error or the AppError itself.
func (e *AppError) Is(target error) bool {
	return errors.Is(e.Err, target)
}

// As allows casting to AppError or the wrapped error in a chain.
func (e *AppError) As(target any) bool {
	if errors.As(e.Err, target) {
		return true
	}
	if t, ok := target.(**AppError); ok {
		*t = e
		return true
	}
	return false
}
