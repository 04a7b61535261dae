package errors

import (
	"errors"
	"fmt"
	"strings"
	"testing"
)

func TestNew(t *testing.T) {
	err := New(KindState, ErrCodeNoSession, "no session")

	if err.Kind != KindState {
		t.Errorf("expected kind %v, got %v", KindState, err.Kind)
	}
	if err.Code != ErrCodeNoSession {
		t.Errorf("expected code %s, got %s", ErrCodeNoSession, err.Code)
	}
	if err.Cause != nil {
		t.Errorf("expected nil cause, got %v", err.Cause)
	}
}

func TestWrap(t *testing.T) {
	cause := fmt.Errorf("disk full")
	err := Wrap(KindStorage, ErrCodeStorageWrite, "failed to save token", cause)

	if !errors.Is(err, cause) {
		t.Errorf("Wrap should support errors.Is")
	}
	if !strings.Contains(err.Error(), "disk full") {
		t.Errorf("error string should contain cause, got: %s", err.Error())
	}
}

func TestErrorFormatting(t *testing.T) {
	tests := []struct {
		name     string
		err      *PoetryError
		wantCode string
		wantMsg  string
	}{
		{
			name:     "session expired default message",
			err:      NewSessionExpiredError(""),
			wantCode: "AUTH-002",
			wantMsg:  "session expired",
		},
		{
			name:     "business error keeps server message",
			err:      NewBusinessError(409, "username already exists"),
			wantCode: "BIZ-001",
			wantMsg:  "username already exists",
		},
		{
			name:     "transport error without response",
			err:      NewTransportError(0, "network error", fmt.Errorf("connection refused")),
			wantCode: "NET-001",
			wantMsg:  "connection refused",
		},
		{
			name:     "transport error with status",
			err:      NewTransportError(404, "not found", nil),
			wantCode: "NET-002",
			wantMsg:  "not found",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			errStr := tt.err.Error()
			if !strings.Contains(errStr, tt.wantCode) {
				t.Errorf("error string should contain code %s, got: %s", tt.wantCode, errStr)
			}
			if !strings.Contains(errStr, tt.wantMsg) {
				t.Errorf("error string should contain message %q, got: %s", tt.wantMsg, errStr)
			}
		})
	}
}

func TestKindOf(t *testing.T) {
	wrapped := fmt.Errorf("fetch profile: %w", NewPermissionError(""))

	if got := KindOf(wrapped); got != KindPermission {
		t.Errorf("KindOf = %v, want %v", got, KindPermission)
	}
	if !IsKind(wrapped, KindPermission) {
		t.Error("IsKind should see through fmt wrapping")
	}
	if KindOf(errors.New("plain")) != KindUnknown {
		t.Error("plain errors should be KindUnknown")
	}
	if IsKind(nil, KindUnknown) {
		t.Error("nil error has no kind")
	}
}

func TestIsSessionExpired(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want bool
	}{
		{"business 401", NewSessionExpiredError("token expired"), true},
		{"transport 401", NewTransportError(401, "unauthorized", nil), true},
		{"transport 403", NewTransportError(403, "forbidden", nil), false},
		{"invalid credentials", NewInvalidCredentialsError(""), false},
		{"plain error", errors.New("boom"), false},
		{"nil", nil, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := IsSessionExpired(tt.err); got != tt.want {
				t.Errorf("IsSessionExpired() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestStatusOf(t *testing.T) {
	if got := StatusOf(NewTransportError(502, "bad gateway", nil)); got != 502 {
		t.Errorf("StatusOf = %d, want 502", got)
	}
	if got := StatusOf(NewBusinessError(1001, "")); got != 0 {
		t.Errorf("StatusOf business error = %d, want 0", got)
	}
}

func TestDefaultMessages(t *testing.T) {
	if NewPermissionError("").Message != "insufficient permission" {
		t.Error("permission error default message")
	}
	if NewServerError("").BusinessCode != 500 {
		t.Error("server error should carry business code 500")
	}
	if NewBusinessError(7, "").Message != "request failed" {
		t.Error("business error default message")
	}
}

func TestWithSuggestions(t *testing.T) {
	err := New(KindConfig, ErrCodeConfigInvalid, "bad config").
		WithSuggestions("first", "second")

	errStr := err.Error()
	if !strings.Contains(errStr, "Suggestions:") || !strings.Contains(errStr, "second") {
		t.Errorf("suggestions missing from %q", errStr)
	}
}

func TestKindString(t *testing.T) {
	if KindTransport.String() != "TransportError" {
		t.Errorf("got %s", KindTransport.String())
	}
	if Kind(99).String() != "UnknownError" {
		t.Errorf("got %s", Kind(99).String())
	}
}
