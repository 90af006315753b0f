// Package errors provides the error taxonomy shared by the Wikidot client.
//
// Every error type decides at construction whether the retry engine may try
// the failing operation again. Use IsRetryable to read that decision.
package errors

import (
	"errors"
	"fmt"
	"strings"
)

// Sentinel errors.
var (
	// ErrNotAuthenticated is returned by operations that need a session cookie
	// when the client has not logged in.
	ErrNotAuthenticated = Permanent(errors.New("not logged in"))

	// ErrNoSessionCookie is returned when a login response carried neither an
	// error banner nor a WIKIDOT_SESSION_ID cookie.
	ErrNoSessionCookie = Permanent(errors.New("login response did not set WIKIDOT_SESSION_ID"))
)

// Retryable is implemented by errors that know whether a retry may succeed.
type Retryable interface {
	Retryable() bool
}

// IsRetryable reports whether err may be retried. Errors that do not
// implement Retryable anywhere in their chain are treated as transient.
func IsRetryable(err error) bool {
	if err == nil {
		return false
	}
	var r Retryable
	if errors.As(err, &r) {
		return r.Retryable()
	}
	return true
}

// permanentError flags an arbitrary error as non-retryable.
type permanentError struct {
	err error
}

func (e *permanentError) Error() string   { return e.err.Error() }
func (e *permanentError) Unwrap() error   { return e.err }
func (e *permanentError) Retryable() bool { return false }

// Permanent wraps err so the retry engine surfaces it immediately.
func Permanent(err error) error {
	if err == nil {
		return nil
	}
	return &permanentError{err: err}
}

// CredentialError indicates the remote site rejected the username/password pair.
type CredentialError struct {
	Username string
	Message  string // banner text reported by the site
}

func (e *CredentialError) Error() string {
	if e.Username != "" {
		return fmt.Sprintf("login rejected for %q: %s", e.Username, e.Message)
	}
	return "login rejected: " + e.Message
}

func (e *CredentialError) Retryable() bool { return false }

// TransportError indicates a non-2xx HTTP response or a network failure.
type TransportError struct {
	Operation  string // "module", "quickmodule", "login", "graphql", "source"
	URL        string
	StatusCode int // 0 when the request never got a response
	Status     string
	Err        error
}

func (e *TransportError) Error() string {
	var sb strings.Builder
	sb.WriteString(e.Operation)
	sb.WriteString(" request failed")
	if e.StatusCode != 0 {
		sb.WriteString(fmt.Sprintf(": HTTP %d", e.StatusCode))
		if e.Status != "" {
			sb.WriteString(" " + e.Status)
		}
	}
	if e.Err != nil {
		sb.WriteString(": " + e.Err.Error())
	}
	return sb.String()
}

func (e *TransportError) Unwrap() error   { return e.Err }
func (e *TransportError) Retryable() bool { return true }

// DecodeError indicates a response body that could not be parsed.
type DecodeError struct {
	Operation string
	Err       error
}

func (e *DecodeError) Error() string {
	return fmt.Sprintf("%s: failed to parse response: %v", e.Operation, e.Err)
}

func (e *DecodeError) Unwrap() error   { return e.Err }
func (e *DecodeError) Retryable() bool { return true }

// RemoteError carries the first message of a GraphQL error list.
type RemoteError struct {
	Message   string
	Throttled bool // upstream asked us to slow down
}

func (e *RemoteError) Error() string {
	return "graphql error: " + e.Message
}

func (e *RemoteError) Retryable() bool { return true }

// ModuleError indicates the module connector answered with a status other than "ok".
type ModuleError struct {
	Module  string
	Status  string
	Message string
}

func (e *ModuleError) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("module %s returned status %q: %s", e.Module, e.Status, e.Message)
	}
	return fmt.Sprintf("module %s returned status %q", e.Module, e.Status)
}

func (e *ModuleError) Retryable() bool { return false }

// NotFoundError indicates a page could not be located.
type NotFoundError struct {
	Site string
	Page string
}

func (e *NotFoundError) Error() string {
	if e.Site != "" {
		return fmt.Sprintf("page not found on %s: %s", e.Site, e.Page)
	}
	return "page not found: " + e.Page
}

func (e *NotFoundError) Retryable() bool { return false }

// NewNotFoundError creates a NotFoundError.
func NewNotFoundError(site, page string) *NotFoundError {
	return &NotFoundError{Site: site, Page: page}
}

// ValidationError indicates invalid input parameters.
type ValidationError struct {
	Field   string // field name that failed validation
	Value   string // the invalid value (may be empty for sensitive data)
	Message string // human-readable error message
}

func (e *ValidationError) Error() string {
	if e.Field != "" && e.Value != "" {
		return fmt.Sprintf("validation failed for %s=%q: %s", e.Field, e.Value, e.Message)
	}
	if e.Field != "" {
		return fmt.Sprintf("validation failed for %s: %s", e.Field, e.Message)
	}
	return fmt.Sprintf("validation failed: %s", e.Message)
}

func (e *ValidationError) Retryable() bool { return false }

// NewValidationError creates a ValidationError.
func NewValidationError(field, value, message string) *ValidationError {
	return &ValidationError{
		Field:   field,
		Value:   value,
		Message: message,
	}
}

// IsCredential returns true if err is or wraps a CredentialError.
func IsCredential(err error) bool {
	var target *CredentialError
	return errors.As(err, &target)
}

// IsNotFound returns true if err is or wraps a NotFoundError.
func IsNotFound(err error) bool {
	var target *NotFoundError
	return errors.As(err, &target)
}

// IsValidation returns true if err is or wraps a ValidationError.
func IsValidation(err error) bool {
	var target *ValidationError
	return errors.As(err, &target)
}
