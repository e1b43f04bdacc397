package aggregates

import (
	"errors"
	"fmt"
	"strings"
)

// ErrorCode standardizes failure semantics across the learning engine.
type ErrorCode string

const (
	CodeValidation ErrorCode = "validation"
	// CodeNotFound covers missing rows and broken parent chains (a lesson that is not in the stated module).
	CodeNotFound ErrorCode = "not_found"
	// CodeNotAvailable is returned for actions on locked lessons/modules or quizzes whose lessons are unfinished.
	CodeNotAvailable        ErrorCode = "not_available"
	CodeInvalidAttemptState ErrorCode = "invalid_attempt_state"
	CodeNoAnswers           ErrorCode = "no_answers"
	// CodeConflict is a storage conflict (unique violation, serialization failure). Retry the whole operation.
	CodeConflict  ErrorCode = "conflict"
	CodeRetryable ErrorCode = "retryable"
	CodeInternal  ErrorCode = "internal"
)

// Retryable reports whether a caller may safely retry the whole logical operation.
func (c ErrorCode) Retryable() bool { return c == CodeConflict || c == CodeRetryable }

// Error is the canonical engine error wrapper.
type Error struct {
	Code    ErrorCode
	Op      string
	Message string
	Cause   error
}

func (e *Error) Error() string {
	if e == nil {
		return "<nil>"
	}
	op := strings.TrimSpace(e.Op)
	msg := strings.TrimSpace(e.Message)
	switch {
	case op != "" && msg != "":
		return fmt.Sprintf("%s: %s (%s)", op, msg, e.Code)
	case op != "":
		return fmt.Sprintf("%s (%s)", op, e.Code)
	case msg != "":
		return fmt.Sprintf("%s (%s)", msg, e.Code)
	default:
		return string(e.Code)
	}
}

func (e *Error) Unwrap() error { return e.Cause }

// NewError builds an error with explicit code + operation.
func NewError(code ErrorCode, op, message string, cause error) error {
	return &Error{
		Code:    code,
		Op:      strings.TrimSpace(op),
		Message: strings.TrimSpace(message),
		Cause:   cause,
	}
}

// Wrap annotates an existing error with engine error semantics.
func Wrap(code ErrorCode, op string, err error) error {
	if err == nil {
		return nil
	}
	return NewError(code, op, err.Error(), err)
}

func NotFound(op, what string) error {
	return NewError(CodeNotFound, op, what+" not found", nil)
}

func NotAvailable(op, message string) error {
	return NewError(CodeNotAvailable, op, message, nil)
}

func InvalidAttemptState(op, message string) error {
	return NewError(CodeInvalidAttemptState, op, message, nil)
}

// IsCode checks whether err (or wrapped err) carries the given code.
func IsCode(err error, code ErrorCode) bool {
	var aggErr *Error
	if !errors.As(err, &aggErr) {
		return false
	}
	return aggErr.Code == code
}

// CodeOf extracts the error code when available.
func CodeOf(err error) ErrorCode {
	var aggErr *Error
	if !errors.As(err, &aggErr) {
		return ""
	}
	return aggErr.Code
}
