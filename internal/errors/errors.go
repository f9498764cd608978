// Package errors provides centralized error definitions and error handling utilities
// for the LexAI client. It defines the failure taxonomy of talking to the backend,
// error constructors with context wrapping, and error classification helpers.
//
// # Error Types
//
// Three kinds of failure can happen when the client talks to the backend:
//   - TransportError: the request never produced an HTTP response (network
//     unreachable, DNS, timeout, canceled context)
//   - AuthError: the login or register endpoint answered with a non-OK status
//   - RequestError: any other endpoint answered with a non-OK status
//
// ValidationError covers local input problems (for example a missing file path
// on the document analysis screen).
//
// # Usage
//
// Checking errors:
//
//	var authErr *errors.AuthError
//	if errors.As(err, &authErr) { ... }
//
//	if errors.Is(err, errors.ErrNotFound) { ... }
//
// Translating errors for the auth screen:
//
//	m.errorText = errors.UserMessage(err)
//
// Nothing in this package retries; callers make a single attempt per user action.
package errors

import (
	"errors"
	"fmt"
	"net/http"
	"strings"
)

// Re-export standard library functions for convenience.
// This allows callers to import only this package for all error handling.
var (
	Is     = errors.Is
	As     = errors.As
	Unwrap = errors.Unwrap
	New    = errors.New
	Join   = errors.Join
)

// -----------------------------------------------------------------------------
// Sentinel Errors
// -----------------------------------------------------------------------------

var (
	// ErrNotAuthenticated indicates that an operation needs a session and none exists.
	ErrNotAuthenticated = New("not authenticated")
	// ErrUnauthorized indicates that the backend rejected the bearer token.
	ErrUnauthorized = New("unauthorized")
	// ErrNotFound indicates that the backend could not find the requested resource.
	ErrNotFound = New("not found")
	// ErrInvalidInput indicates that local input validation failed.
	ErrInvalidInput = New("invalid input")
)

// Auth actions carried by AuthError.
const (
	ActionLogin    = "login"
	ActionRegister = "register"
)

// User-facing messages shown by the auth screen and the CLI.
const (
	MsgInvalidCredentials = "Credenciales inválidas"
	MsgRegisterFailed     = "Error al crear la cuenta"
	MsgConnection         = "Error de conexión"
	MsgUnexpected         = "Error inesperado"
)

// -----------------------------------------------------------------------------
// TransportError
// -----------------------------------------------------------------------------

// TransportError is returned when a request could not be completed at the
// transport level, so no HTTP status is available.
type TransportError struct {
	Method string
	Path   string
	Err    error
}

// NewTransportError creates a TransportError for the given request.
func NewTransportError(method, path string, cause error) *TransportError {
	return &TransportError{Method: method, Path: path, Err: cause}
}

func (e *TransportError) Error() string {
	return fmt.Sprintf("transport error [%s %s]: %v", e.Method, e.Path, e.Err)
}

func (e *TransportError) Unwrap() error {
	return e.Err
}

// -----------------------------------------------------------------------------
// RequestError
// -----------------------------------------------------------------------------

// RequestError is returned when the backend answers with a non-2xx status.
// Detail holds the FastAPI "detail" field when the body carried one.
type RequestError struct {
	Method string
	Path   string
	Status int
	Detail string
}

// NewRequestError creates a RequestError.
func NewRequestError(method, path string, status int, detail string) *RequestError {
	return &RequestError{Method: method, Path: path, Status: status, Detail: detail}
}

func (e *RequestError) Error() string {
	msg := fmt.Sprintf("request error [%s %s]: status %d", e.Method, e.Path, e.Status)
	if e.Detail != "" {
		msg += ": " + e.Detail
	}
	return msg
}

// Is maps well-known statuses onto sentinel errors.
func (e *RequestError) Is(target error) bool {
	switch target {
	case ErrUnauthorized:
		return e.Status == http.StatusUnauthorized
	case ErrNotFound:
		return e.Status == http.StatusNotFound
	}
	return false
}

// -----------------------------------------------------------------------------
// AuthError
// -----------------------------------------------------------------------------

// AuthError is returned when the login or register endpoint rejects the request.
//
// Example:
//
//	err := errors.NewAuthError(errors.ActionLogin, reqErr)
//	fmt.Println(err) // "login failed: request error [POST /api/auth/login]: status 401: Credenciales inválidas"
type AuthError struct {
	Action string
	Status int
	Detail string
	cause  error
}

// NewAuthError wraps a RequestError produced by an auth endpoint.
func NewAuthError(action string, cause *RequestError) *AuthError {
	e := &AuthError{Action: action}
	if cause != nil {
		e.cause = cause
		e.Status = cause.Status
		e.Detail = cause.Detail
	}
	return e
}

func (e *AuthError) Error() string {
	if e.cause != nil {
		return fmt.Sprintf("%s failed: %v", e.Action, e.cause)
	}
	return fmt.Sprintf("%s failed: status %d", e.Action, e.Status)
}

func (e *AuthError) Unwrap() error {
	return e.cause
}

// -----------------------------------------------------------------------------
// ValidationError
// -----------------------------------------------------------------------------

// ValidationError represents a local input validation failure. Cause is set
// when the input was rejected because of an underlying failure, such as a file
// that could not be read.
type ValidationError struct {
	Field   string
	Message string
	Cause   error
}

// NewValidationError creates a ValidationError for the given field.
func NewValidationError(field, message string) *ValidationError {
	return &ValidationError{Field: field, Message: message}
}

// WithCause records the failure that made the input invalid.
func (e *ValidationError) WithCause(cause error) *ValidationError {
	e.Cause = cause
	return e
}

func (e *ValidationError) Error() string {
	msg := "validation error: " + e.Message
	if e.Field != "" {
		msg = fmt.Sprintf("validation error [field=%s]: %s", e.Field, e.Message)
	}
	if e.Cause != nil {
		msg += ": " + e.Cause.Error()
	}
	return msg
}

func (e *ValidationError) Unwrap() error {
	return e.Cause
}

// Is reports ErrInvalidInput as a match.
func (e *ValidationError) Is(target error) bool {
	return target == ErrInvalidInput
}

// -----------------------------------------------------------------------------
// Classification Helpers
// -----------------------------------------------------------------------------

// IsTransport reports whether err is (or wraps) a TransportError.
func IsTransport(err error) bool {
	var t *TransportError
	return As(err, &t)
}

// UserMessage translates err into the text shown to the user.
// Auth failures are checked before transport failures so a rejected login is
// never reported as a connection problem.
func UserMessage(err error) string {
	if err == nil {
		return ""
	}

	var authErr *AuthError
	if As(err, &authErr) {
		if authErr.Action == ActionRegister {
			return MsgRegisterFailed
		}
		return MsgInvalidCredentials
	}
	if IsTransport(err) {
		return MsgConnection
	}
	var validation *ValidationError
	if As(err, &validation) {
		return validation.Message
	}
	return MsgUnexpected
}

// StatusOf returns the HTTP status carried by err, or 0 when there is none.
func StatusOf(err error) int {
	var reqErr *RequestError
	if As(err, &reqErr) {
		return reqErr.Status
	}
	var authErr *AuthError
	if As(err, &authErr) {
		return authErr.Status
	}
	return 0
}

// -----------------------------------------------------------------------------
// Convenience Constructors
// -----------------------------------------------------------------------------

// Wrap wraps an error with additional context message.
//
// Example:
//
//	err := errors.Wrap(baseErr, "failed to load cases")
func Wrap(err error, message string) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%s: %w", message, err)
}

// Summary returns a one-line description of err suitable for a status line.
func Summary(err error) string {
	if err == nil {
		return ""
	}
	var reqErr *RequestError
	if As(err, &reqErr) {
		if reqErr.Detail != "" {
			return fmt.Sprintf("%d: %s", reqErr.Status, reqErr.Detail)
		}
		return fmt.Sprintf("%d %s", reqErr.Status, strings.ToLower(http.StatusText(reqErr.Status)))
	}
	if IsTransport(err) {
		return MsgConnection
	}
	return err.Error()
}
