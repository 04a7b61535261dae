package errors

import (
	stderrors "errors"
	"fmt"
	"net/http"
	"strings"
)

// Kind classifies an error for callers that need to react to it.
type Kind int

const (
	KindUnknown Kind = iota
	// KindAuth covers rejected credentials and reactive session expiry.
	KindAuth
	// KindPermission is an authorization denial.
	KindPermission
	// KindServer is a business 500.
	KindServer
	// KindBusiness is any other non-success business code.
	KindBusiness
	// KindTransport is a network failure or a non-2xx HTTP status.
	KindTransport
	// KindState means an operation was called in the wrong session state.
	KindState
	// KindStorage is a durable token storage failure.
	KindStorage
	KindConfig
	KindDecode
	KindValidation
)

// String returns the taxonomy name of the kind.
func (k Kind) String() string {
	switch k {
	case KindAuth:
		return "AuthError"
	case KindPermission:
		return "PermissionError"
	case KindServer:
		return "ServerError"
	case KindBusiness:
		return "BusinessError"
	case KindTransport:
		return "TransportError"
	case KindState:
		return "StateError"
	case KindStorage:
		return "StorageError"
	case KindConfig:
		return "ConfigError"
	case KindDecode:
		return "DecodeError"
	case KindValidation:
		return "ValidationError"
	default:
		return "UnknownError"
	}
}

// ErrorCode is a stable identifier for a specific failure.
type ErrorCode string

const (
	// Auth errors (AUTH-001 to AUTH-099)
	ErrCodeInvalidCredentials ErrorCode = "AUTH-001"
	ErrCodeSessionExpired     ErrorCode = "AUTH-002"
	ErrCodeMissingToken       ErrorCode = "AUTH-003"
	ErrCodeNotLoggedIn        ErrorCode = "AUTH-004"

	ErrCodePermissionDenied ErrorCode = "PERM-001"

	ErrCodeServerError ErrorCode = "SERVER-001"

	ErrCodeBusinessError ErrorCode = "BIZ-001"

	// Transport errors (NET-001 to NET-099)
	ErrCodeNetworkFailure ErrorCode = "NET-001"
	ErrCodeHTTPStatus     ErrorCode = "NET-002"
	ErrCodeRequestBuild   ErrorCode = "NET-003"
	ErrCodeCircuitOpen    ErrorCode = "NET-004"
	ErrCodeBodyTooLarge   ErrorCode = "NET-005"

	// Session state errors (STATE-001 to STATE-099)
	ErrCodeNoSession       ErrorCode = "STATE-001"
	ErrCodeSessionChanged  ErrorCode = "STATE-002"
	ErrCodeNoAuthenticator ErrorCode = "STATE-003"
	ErrCodeHealthCheck     ErrorCode = "STATE-004"

	// Token storage errors (STORE-001 to STORE-099)
	ErrCodeStorageRead  ErrorCode = "STORE-001"
	ErrCodeStorageWrite ErrorCode = "STORE-002"
	ErrCodeStorageClear ErrorCode = "STORE-003"

	ErrCodeConfigInvalid ErrorCode = "CONFIG-001"
	ErrCodeConfigRead    ErrorCode = "CONFIG-002"

	ErrCodeDecodeFailed ErrorCode = "DECODE-001"

	ErrCodeValidationFailed ErrorCode = "VALID-001"
)

// PoetryError is the error type returned across package boundaries.
//
// Status is the HTTP status for transport errors (0 when no response was
// received). BusinessCode is the envelope code for business-level failures.
type PoetryError struct {
	Kind         Kind
	Code         ErrorCode
	Message      string
	Status       int
	BusinessCode int
	Suggestions  []string
	Cause        error
}

// Error implements the error interface
func (e *PoetryError) Error() string {
	var b strings.Builder

	b.WriteString(fmt.Sprintf("[%s] %s", e.Code, e.Message))

	if e.Cause != nil {
		b.WriteString(fmt.Sprintf(": %v", e.Cause))
	}

	if len(e.Suggestions) > 0 {
		b.WriteString("\n\nSuggestions:")
		for _, suggestion := range e.Suggestions {
			b.WriteString(fmt.Sprintf("\n  • %s", suggestion))
		}
	}

	return b.String()
}

// Unwrap implements error unwrapping for errors.Is and errors.As
func (e *PoetryError) Unwrap() error {
	return e.Cause
}

// New creates a new PoetryError
func New(kind Kind, code ErrorCode, message string) *PoetryError {
	return &PoetryError{
		Kind:    kind,
		Code:    code,
		Message: message,
	}
}

// Wrap creates a new PoetryError wrapping an existing error
func Wrap(kind Kind, code ErrorCode, message string, cause error) *PoetryError {
	return &PoetryError{
		Kind:    kind,
		Code:    code,
		Message: message,
		Cause:   cause,
	}
}

// WithSuggestion adds a suggestion to the error
func (e *PoetryError) WithSuggestion(suggestion string) *PoetryError {
	e.Suggestions = append(e.Suggestions, suggestion)
	return e
}

// WithSuggestions adds multiple suggestions to the error
func (e *PoetryError) WithSuggestions(suggestions ...string) *PoetryError {
	e.Suggestions = append(e.Suggestions, suggestions...)
	return e
}

// As returns the first PoetryError in err's chain.
func As(err error) (*PoetryError, bool) {
	var pe *PoetryError
	if stderrors.As(err, &pe) {
		return pe, true
	}
	return nil, false
}

// KindOf returns the kind of the first PoetryError in err's chain.
func KindOf(err error) Kind {
	if pe, ok := As(err); ok {
		return pe.Kind
	}
	return KindUnknown
}

// IsKind reports whether err carries a PoetryError of the given kind.
func IsKind(err error, kind Kind) bool {
	return err != nil && KindOf(err) == kind
}

// IsSessionExpired reports whether err was produced by a 401, either as a
// business code or as a raw HTTP status.
func IsSessionExpired(err error) bool {
	pe, ok := As(err)
	if !ok {
		return false
	}
	switch pe.Kind {
	case KindAuth:
		return pe.Code == ErrCodeSessionExpired
	case KindTransport:
		return pe.Status == http.StatusUnauthorized
	}
	return false
}

// StatusOf returns the HTTP status carried by err, or 0.
func StatusOf(err error) int {
	if pe, ok := As(err); ok {
		return pe.Status
	}
	return 0
}

// Common error constructors

// NewInvalidCredentialsError creates an error for credentials the server rejected.
func NewInvalidCredentialsError(message string) *PoetryError {
	if message == "" {
		message = "invalid username or password"
	}
	return New(KindAuth, ErrCodeInvalidCredentials, message).
		WithSuggestion("Check the username and password and try again")
}

// NewSessionExpiredError creates the error returned when the server answers
// with business code 401.
func NewSessionExpiredError(message string) *PoetryError {
	if message == "" {
		message = "session expired"
	}
	err := New(KindAuth, ErrCodeSessionExpired, message).
		WithSuggestion("Run 'poetryctl auth login' to sign in again")
	err.BusinessCode = http.StatusUnauthorized
	return err
}

// NewNotLoggedInError is returned by commands that need a session.
func NewNotLoggedInError() *PoetryError {
	return New(KindAuth, ErrCodeNotLoggedIn, "not logged in").
		WithSuggestion("Run 'poetryctl auth login' first")
}

// NewPermissionError creates an authorization denial error.
func NewPermissionError(message string) *PoetryError {
	if message == "" {
		message = "insufficient permission"
	}
	err := New(KindPermission, ErrCodePermissionDenied, message).
		WithSuggestion("Ask an administrator to grant the required role")
	err.BusinessCode = http.StatusForbidden
	return err
}

// NewServerError creates an error for business code 500.
func NewServerError(message string) *PoetryError {
	if message == "" {
		message = "internal server error"
	}
	err := New(KindServer, ErrCodeServerError, message)
	err.BusinessCode = http.StatusInternalServerError
	return err
}

// NewBusinessError creates an error for any other non-success business code.
func NewBusinessError(code int, message string) *PoetryError {
	if message == "" {
		message = "request failed"
	}
	err := New(KindBusiness, ErrCodeBusinessError, message)
	err.BusinessCode = code
	return err
}

// NewTransportError creates an error for a failed exchange. Status is 0 when
// no response was received.
func NewTransportError(status int, message string, cause error) *PoetryError {
	code := ErrCodeHTTPStatus
	if status == 0 {
		code = ErrCodeNetworkFailure
	}
	err := Wrap(KindTransport, code, message, cause)
	err.Status = status
	if status == 0 {
		err.WithSuggestion("Check that the API server is reachable (poetryctl config view)")
	}
	return err
}

// NewStateError creates an error for an operation called in the wrong session state.
func NewStateError(code ErrorCode, message string) *PoetryError {
	return New(KindState, code, message)
}

// NewStorageError wraps a durable token storage failure.
func NewStorageError(code ErrorCode, message string, cause error) *PoetryError {
	return Wrap(KindStorage, code, message, cause).
		WithSuggestion("Check the storage section of the configuration")
}

// NewConfigError wraps a configuration failure.
func NewConfigError(code ErrorCode, message string, cause error) *PoetryError {
	return Wrap(KindConfig, code, message, cause).
		WithSuggestion("Run 'poetryctl config view' to inspect the effective configuration")
}

// NewDecodeError wraps a payload that could not be decoded into the expected type.
func NewDecodeError(target string, cause error) *PoetryError {
	return Wrap(KindDecode, ErrCodeDecodeFailed, fmt.Sprintf("failed to decode %s", target), cause)
}

// NewValidationError reports invalid caller input.
func NewValidationError(message string, cause error) *PoetryError {
	return Wrap(KindValidation, ErrCodeValidationFailed, message, cause)
}
