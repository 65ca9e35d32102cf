package errors

import (
	"encoding/json"
	stderrors "errors"
	"fmt"
	"net/http"
)

// Kind classifies an application error. The kind decides the HTTP status
// and whether the caller is expected to retry.
type Kind string

const (
	// KindConfiguration is an operator mistake such as a missing secret.
	KindConfiguration Kind = "configuration_error"
	// KindAuthentication is a missing or mismatched signature.
	KindAuthentication Kind = "authentication_error"
	// KindValidation is a malformed or incomplete request.
	KindValidation Kind = "validation_error"
	// KindDependency is an unreachable or failing provider or store.
	KindDependency Kind = "dependency_error"
	// KindNotFound is an identifier that could not be resolved.
	KindNotFound Kind = "not_found_error"
)

// Error represents an application error
type Error struct {
	Kind    Kind   `json:"kind"`
	Code    int    `json:"code"`
	Message string `json:"message"`
	Err     error  `json:"-"`
}

// Error implements the error interface
func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

// Unwrap returns the wrapped error
func (e *Error) Unwrap() error {
	return e.Err
}

// JSON returns the error as a JSON string
func (e *Error) JSON() string {
	b, _ := json.Marshal(e)
	return string(b)
}

// Retryable reports whether a caller retrying the same request could
// succeed.
func (e *Error) Retryable() bool {
	return e.Kind == KindDependency
}

// New creates a new Error
func New(kind Kind, code int, message string, err error) *Error {
	return &Error{
		Kind:    kind,
		Code:    code,
		Message: message,
		Err:     err,
	}
}

func Configuration(message string, err error) *Error {
	return New(KindConfiguration, http.StatusInternalServerError, message, err)
}

func Authentication(message string, err error) *Error {
	return New(KindAuthentication, http.StatusBadRequest, message, err)
}

func Validation(message string, err error) *Error {
	return New(KindValidation, http.StatusBadRequest, message, err)
}

func Dependency(message string, err error) *Error {
	return New(KindDependency, http.StatusInternalServerError, message, err)
}

func NotFound(message string, err error) *Error {
	return New(KindNotFound, http.StatusNotFound, message, err)
}

// From returns err as an *Error, converting anything else into an internal
// dependency error so boundaries always have a status code to report.
func From(err error) *Error {
	if err == nil {
		return nil
	}
	var appErr *Error
	if stderrors.As(err, &appErr) {
		return appErr
	}
	return Dependency("Internal server error", err)
}

// IsKind reports whether err is an *Error of the given kind.
func IsKind(err error, kind Kind) bool {
	var appErr *Error
	return stderrors.As(err, &appErr) && appErr.Kind == kind
}
