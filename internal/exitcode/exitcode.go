package exitcode

import (
	"net/http"
	"os"
	"strings"

	"github.com/sakura-poetry/poetryctl/internal/errors"
)

// Exit codes for consistent error handling across the CLI
const (
	// Success indicates successful execution
	Success = 0

	// GeneralError indicates a general error condition
	GeneralError = 1

	// UsageError indicates invalid command usage (bad flags, missing args, invalid input)
	UsageError = 2

	// PermissionDenied indicates the server refused the signed-in user
	PermissionDenied = 3

	// ServerError indicates the backend failed internally
	ServerError = 4

	// AuthError indicates missing, rejected or expired credentials
	AuthError = 5

	// NetworkError indicates the backend could not be reached
	NetworkError = 6

	// BusinessError indicates the backend rejected the request with a business code
	BusinessError = 7

	// Interrupted indicates the user cancelled with Ctrl+C
	Interrupted = 130
)

// Exit terminates the program with the given exit code
func Exit(code int) {
	os.Exit(code)
}

// ExitWithError exits with an appropriate code based on error type
func ExitWithError(err error) {
	if err == nil {
		Exit(Success)
		return
	}

	code := DetermineExitCode(err)
	Exit(code)
}

// DetermineExitCode maps an error to an exit code, using its kind when it is
// a PoetryError and falling back to the message otherwise.
func DetermineExitCode(err error) int {
	if err == nil {
		return Success
	}

	if pe, ok := errors.As(err); ok {
		return fromKind(pe)
	}
	return fromMessage(err.Error())
}

func fromKind(pe *errors.PoetryError) int {
	switch pe.Kind {
	case errors.KindAuth:
		return AuthError
	case errors.KindPermission:
		return PermissionDenied
	case errors.KindServer:
		return ServerError
	case errors.KindBusiness:
		return BusinessError
	case errors.KindTransport:
		switch {
		case pe.Status == 0:
			if pe.Code == errors.ErrCodeRequestBuild {
				return GeneralError
			}
			return NetworkError
		case pe.Status == http.StatusUnauthorized:
			return AuthError
		case pe.Status == http.StatusForbidden:
			return PermissionDenied
		case pe.Status >= http.StatusInternalServerError:
			return ServerError
		default:
			return GeneralError
		}
	case errors.KindState:
		if pe.Code == errors.ErrCodeNoSession {
			return AuthError
		}
		return GeneralError
	case errors.KindValidation, errors.KindConfig:
		return UsageError
	default:
		return GeneralError
	}
}

func fromMessage(msg string) int {
	errMsg := strings.ToLower(msg)

	// Usage errors, including the ones cobra produces
	if strings.Contains(errMsg, "unknown flag") || strings.Contains(errMsg, "unknown command") {
		return UsageError
	}
	if strings.Contains(errMsg, "required flag") || (strings.Contains(errMsg, "accepts") && strings.Contains(errMsg, "arg(s)")) {
		return UsageError
	}
	if strings.Contains(errMsg, "invalid argument") {
		return UsageError
	}

	// Authentication errors
	if strings.Contains(errMsg, "unauthorized") || strings.Contains(errMsg, "not logged in") {
		return AuthError
	}

	// Network errors
	if strings.Contains(errMsg, "connection refused") || strings.Contains(errMsg, "no such host") {
		return NetworkError
	}
	if strings.Contains(errMsg, "timeout") || strings.Contains(errMsg, "unreachable") {
		return NetworkError
	}

	// Default to general error
	return GeneralError
}

// GetExitCodeDescription returns a human-readable description of an exit code
func GetExitCodeDescription(code int) string {
	switch code {
	case Success:
		return "Success"
	case GeneralError:
		return "General error"
	case UsageError:
		return "Usage error (invalid flags, arguments or configuration)"
	case PermissionDenied:
		return "Permission denied"
	case ServerError:
		return "Server error"
	case AuthError:
		return "Authentication error"
	case NetworkError:
		return "Network error"
	case BusinessError:
		return "Request rejected by server"
	case Interrupted:
		return "Interrupted"
	default:
		return "Unknown error"
	}
}
