package errors

import (
	"errors"
	"fmt"
)

// Domain error kinds. The HTTP layer maps each kind to a status code exactly
// once; storage drivers map their own failure codes onto these at the
// repository boundary and nothing downstream inspects driver errors again.
var (
	// Validation errors
	ErrValidation = errors.New("validation failed")

	// Account errors
	ErrEmailTaken      = errors.New("user with this email already exists")
	ErrAccountNotFound = errors.New("user not found")

	// Credential errors
	ErrInvalidCredentials = errors.New("invalid email or password")

	// Token errors
	ErrInvalidToken      = errors.New("invalid or expired token")
	ErrResetTokenInvalid = errors.New("token is invalid or expired")

	// Authorization errors
	ErrForbidden = errors.New("insufficient permissions to perform this action")

	// General errors
	ErrInternal = errors.New("internal error")
)

// Error carries a domain kind plus a user-facing message. Unwrap makes
// errors.Is(err, kind) work while Error() stays presentable.
type Error struct {
	Kind    error
	Message string
}

func (e *Error) Error() string { return e.Message }

func (e *Error) Unwrap() error { return e.Kind }

// Validation builds a 400-class error with a specific reason.
func Validation(message string) error {
	return &Error{Kind: ErrValidation, Message: message}
}

// Validationf builds a 400-class error with a formatted reason.
func Validationf(format string, args ...interface{}) error {
	return &Error{Kind: ErrValidation, Message: fmt.Sprintf(format, args...)}
}

// Wrapf wraps an error with context using fmt.Errorf
func Wrapf(err error, format string, args ...interface{}) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf(format+": %w", append(args, err)...)
}

// Is reports whether any error in err's chain matches target
func Is(err, target error) bool {
	return errors.Is(err, target)
}

// As finds the first error in err's chain that matches target
func As(err error, target interface{}) bool {
	return errors.As(err, target)
}
