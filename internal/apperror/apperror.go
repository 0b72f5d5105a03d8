// Package apperror defines the error kinds shared by the service and HTTP layers.
//
// Services return *AppError values; handlers map the wrapped sentinel to a status code
// with errors.Is, so neither layer needs to know about the other.
package apperror

import (
	"errors"
	"fmt"
)

var (
	ErrNotFound   = errors.New("not found")
	ErrValidation = errors.New("validation error")
)

type AppError struct {
	Err     error  // sentinel kind
	Message string // Human-readable error message
	Field   string // Optional: field causing the error
}

func (e *AppError) Error() string {
	return e.Message
}

func (e *AppError) Unwrap() error {
	return e.Err
}

// NotFound reports a lookup miss. id is formatted with %v so both integer
// ids and raw path values can be passed.
func NotFound(resource string, id any) *AppError {
	return &AppError{
		Err:     ErrNotFound,
		Message: fmt.Sprintf("%s not found with id %v", resource, id),
	}
}

func ValidationFailed(field, message string) *AppError {
	return &AppError{
		Err:     ErrValidation,
		Message: message,
		Field:   field,
	}
}

// WriteFailed wraps a storage failure that happened while creating a resource.
// The cause text is embedded in the message because the caller is told why
// the write was refused (a constraint violation, usually).
func WriteFailed(resource string, cause error) *AppError {
	return &AppError{
		Err:     ErrValidation,
		Message: fmt.Sprintf("%s creation failed: %v", resource, cause),
	}
}
