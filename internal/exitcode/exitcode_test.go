package exitcode

import (
	stderrors "errors"
	"fmt"
	"testing"

	"github.com/sakura-poetry/poetryctl/internal/errors"
)

func TestExitCodes(t *testing.T) {
	tests := []struct {
		name     string
		code     int
		expected int
	}{
		{"Success", Success, 0},
		{"GeneralError", GeneralError, 1},
		{"UsageError", UsageError, 2},
		{"PermissionDenied", PermissionDenied, 3},
		{"ServerError", ServerError, 4},
		{"AuthError", AuthError, 5},
		{"NetworkError", NetworkError, 6},
		{"BusinessError", BusinessError, 7},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.code != tt.expected {
				t.Errorf("Exit code %s = %d, want %d", tt.name, tt.code, tt.expected)
			}
		})
	}
}

func TestDetermineExitCode(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		expected int
	}{
		{
			name:     "nil error returns success",
			err:      nil,
			expected: Success,
		},
		{
			name:     "session expired",
			err:      errors.NewSessionExpiredError(""),
			expected: AuthError,
		},
		{
			name:     "invalid credentials",
			err:      errors.NewInvalidCredentialsError(""),
			expected: AuthError,
		},
		{
			name:     "not logged in",
			err:      errors.NewNotLoggedInError(),
			expected: AuthError,
		},
		{
			name:     "permission denied",
			err:      errors.NewPermissionError(""),
			expected: PermissionDenied,
		},
		{
			name:     "business 500",
			err:      errors.NewServerError(""),
			expected: ServerError,
		},
		{
			name:     "other business code",
			err:      errors.NewBusinessError(4001, "duplicate"),
			expected: BusinessError,
		},
		{
			name:     "network failure",
			err:      errors.NewTransportError(0, "network error", stderrors.New("connection refused")),
			expected: NetworkError,
		},
		{
			name:     "raw 401",
			err:      errors.NewTransportError(401, "unauthorized", nil),
			expected: AuthError,
		},
		{
			name:     "raw 403",
			err:      errors.NewTransportError(403, "forbidden", nil),
			expected: PermissionDenied,
		},
		{
			name:     "raw 502",
			err:      errors.NewTransportError(502, "bad gateway", nil),
			expected: ServerError,
		},
		{
			name:     "raw 404",
			err:      errors.NewTransportError(404, "not found", nil),
			expected: GeneralError,
		},
		{
			name:     "request build failure",
			err:      errors.Wrap(errors.KindTransport, errors.ErrCodeRequestBuild, "failed to prepare request", nil),
			expected: GeneralError,
		},
		{
			name:     "no session",
			err:      errors.NewStateError(errors.ErrCodeNoSession, "no token"),
			expected: AuthError,
		},
		{
			name:     "session changed",
			err:      errors.NewStateError(errors.ErrCodeSessionChanged, "changed"),
			expected: GeneralError,
		},
		{
			name:     "validation",
			err:      errors.NewValidationError("invalid credentials", nil),
			expected: UsageError,
		},
		{
			name:     "config",
			err:      errors.NewConfigError(errors.ErrCodeConfigInvalid, "invalid configuration", nil),
			expected: UsageError,
		},
		{
			name:     "wrapped poetry error",
			err:      fmt.Errorf("listing poems: %w", errors.NewPermissionError("")),
			expected: PermissionDenied,
		},
		{
			name:     "cobra unknown flag",
			err:      stderrors.New("unknown flag: --colour"),
			expected: UsageError,
		},
		{
			name:     "cobra arg count",
			err:      stderrors.New("accepts 1 arg(s), received 0"),
			expected: UsageError,
		},
		{
			name:     "plain connection refused",
			err:      stderrors.New("dial tcp: connection refused"),
			expected: NetworkError,
		},
		{
			name:     "plain unauthorized",
			err:      stderrors.New("Unauthorized"),
			expected: AuthError,
		},
		{
			name:     "generic error",
			err:      stderrors.New("something went wrong"),
			expected: GeneralError,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := DetermineExitCode(tt.err)
			if got != tt.expected {
				t.Errorf("DetermineExitCode(%v) = %d, want %d", tt.err, got, tt.expected)
			}
		})
	}
}

func TestGetExitCodeDescription(t *testing.T) {
	tests := []struct {
		code     int
		expected string
	}{
		{Success, "Success"},
		{GeneralError, "General error"},
		{PermissionDenied, "Permission denied"},
		{AuthError, "Authentication error"},
		{NetworkError, "Network error"},
		{BusinessError, "Request rejected by server"},
		{99, "Unknown error"},
	}

	for _, tt := range tests {
		t.Run(tt.expected, func(t *testing.T) {
			got := GetExitCodeDescription(tt.code)
			if got != tt.expected {
				t.Errorf("GetExitCodeDescription(%d) = %q, want %q", tt.code, got, tt.expected)
			}
		})
	}
}
