package errors

import (
	stderrors "errors"
	"fmt"
	"net/http"
	"sort"
	"strings"

	goerrors "github.com/go-errors/errors"
)

type ErrorType string

const (
	ErrTypeNotFound     ErrorType = "NOT_FOUND"
	ErrTypeInvalidInput ErrorType = "INVALID_INPUT"
	ErrTypeUnauthorized ErrorType = "UNAUTHORIZED"
	ErrTypeInternal     ErrorType = "INTERNAL"
	ErrTypeUnavailable  ErrorType = "UNAVAILABLE"
	ErrTypeRateLimit    ErrorType = "RATE_LIMIT"
	ErrTypeRejected     ErrorType = "REJECTED"
)

// GenericMessage is shown when an error carries no message meant for the user.
const GenericMessage = "Something went wrong. Please try again."

type DomainError struct {
	Type    ErrorType
	Message string
	Err     error
	Stack   []byte

	// Status is the backend HTTP status, zero when the error never reached the backend.
	Status int
	// Remote is the human-readable message reported by the backend.
	Remote string
}

func (e *DomainError) Error() string {
	msg := e.Message
	if e.Remote != "" {
		msg = fmt.Sprintf("%s (%s)", e.Message, e.Remote)
	}
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Type, msg, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Type, msg)
}

func (e *DomainError) Unwrap() error {
	return e.Err
}

func (e *DomainError) StackTrace() []byte {
	return e.Stack
}

func New(errType ErrorType, message string, err error) *DomainError {
	var stack []byte
	if err != nil {
		if stackErr, ok := err.(*goerrors.Error); ok {
			stack = stackErr.Stack()
		} else {
			stack = goerrors.Wrap(err, 2).Stack()
		}
	} else {
		stack = goerrors.New(message).Stack()
	}

	return &DomainError{
		Type:    errType,
		Message: message,
		Err:     err,
		Stack:   stack,
	}
}

func NotFound(message string, err error) *DomainError {
	return New(ErrTypeNotFound, message, err)
}

func InvalidInput(message string, err error) *DomainError {
	return New(ErrTypeInvalidInput, message, err)
}

func Unauthorized(message string, err error) *DomainError {
	return New(ErrTypeUnauthorized, message, err)
}

func Internal(message string, err error) *DomainError {
	return New(ErrTypeInternal, message, err)
}

func Unavailable(message string, err error) *DomainError {
	return New(ErrTypeUnavailable, message, err)
}

func RateLimit(message string, err error) *DomainError {
	return New(ErrTypeRateLimit, message, err)
}

func Rejected(message string, err error) *DomainError {
	return New(ErrTypeRejected, message, err)
}

// FromResponse builds the error for a non-2xx backend response. remote is the
// message field of the response body and may be empty.
func FromResponse(status int, message, remote string) *DomainError {
	var errType ErrorType
	switch {
	case status == http.StatusNotFound:
		errType = ErrTypeNotFound
	case status == http.StatusUnauthorized || status == http.StatusForbidden:
		errType = ErrTypeUnauthorized
	case status == http.StatusTooManyRequests:
		errType = ErrTypeRateLimit
	case status >= http.StatusInternalServerError:
		errType = ErrTypeInternal
	default:
		errType = ErrTypeRejected
	}

	e := New(errType, message, nil)
	e.Status = status
	e.Remote = strings.TrimSpace(remote)
	return e
}

// IsType reports whether err, or any error it wraps, is a DomainError of type t.
func IsType(err error, t ErrorType) bool {
	var de *DomainError
	if stderrors.As(err, &de) {
		return de.Type == t
	}
	return false
}

// UserMessage returns the backend's message verbatim when there is one and
// fallback otherwise.
func UserMessage(err error, fallback string) string {
	var de *DomainError
	if stderrors.As(err, &de) && de.Remote != "" {
		return de.Remote
	}
	var ve *ValidationError
	if stderrors.As(err, &ve) {
		return ve.Error()
	}
	if fallback == "" {
		return GenericMessage
	}
	return fallback
}

// ValidationError carries per-field messages produced before any request is made.
type ValidationError struct {
	Fields map[string]string
}

func NewValidation(fields map[string]string) *ValidationError {
	return &ValidationError{Fields: fields}
}

func (e *ValidationError) Error() string {
	keys := make([]string, 0, len(e.Fields))
	for k := range e.Fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, fmt.Sprintf("%s: %s", k, e.Fields[k]))
	}
	return "validation failed: " + strings.Join(parts, "; ")
}

func IsValidation(err error) bool {
	var ve *ValidationError
	return stderrors.As(err, &ve)
}
