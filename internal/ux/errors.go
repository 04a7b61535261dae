package ux

import (
	"fmt"
	"io"
	"strings"

	"github.com/sakura-poetry/poetryctl/internal/errors"
)

// ErrorWithSuggestion wraps an error with helpful recovery suggestions
type ErrorWithSuggestion struct {
	Err        error
	Suggestion string
}

// Error implements the error interface
func (e *ErrorWithSuggestion) Error() string {
	if e.Suggestion != "" {
		return fmt.Sprintf("%v\n\n💡 Suggestion: %s", e.Err, e.Suggestion)
	}
	return e.Err.Error()
}

// Unwrap provides access to the underlying error
func (e *ErrorWithSuggestion) Unwrap() error {
	return e.Err
}

// NewErrorWithSuggestion creates a new error with a suggestion
func NewErrorWithSuggestion(err error, suggestion string) error {
	if err == nil {
		return nil
	}
	return &ErrorWithSuggestion{
		Err:        err,
		Suggestion: suggestion,
	}
}

// EnhanceError adds a suggestion to errors that do not carry their own.
// PoetryErrors already do and are returned unchanged.
func EnhanceError(err error) error {
	if err == nil {
		return nil
	}
	if _, ok := errors.As(err); ok {
		return err
	}

	errMsg := err.Error()

	// Input file errors
	if strings.Contains(errMsg, "no such file or directory") {
		return NewErrorWithSuggestion(err,
			"Check the path passed to --file")
	}
	if strings.Contains(errMsg, "cannot unmarshal") || strings.Contains(errMsg, "invalid character") {
		return NewErrorWithSuggestion(err,
			"The input must be a single JSON or YAML object matching the resource fields")
	}

	// Permission errors
	if strings.Contains(errMsg, "permission denied") {
		return NewErrorWithSuggestion(err,
			"Check permissions on ~/.poetryctl and the files passed on the command line")
	}

	// Network errors
	if strings.Contains(errMsg, "connection refused") || strings.Contains(errMsg, "no route to host") {
		return NewErrorWithSuggestion(err,
			"Check that the API server is running and --api-url points at it")
	}

	// Usage errors from cobra
	if strings.Contains(errMsg, "unknown command") || strings.Contains(errMsg, "unknown flag") {
		return NewErrorWithSuggestion(err,
			"Run 'poetryctl --help' to list commands and flags")
	}

	return err
}

// PrintError writes err to w, styled, with its suggestions on separate lines.
func PrintError(w io.Writer, err error, noColor bool) {
	if err == nil {
		return
	}
	styles := NewStyles(w, noColor)

	pe, ok := errors.As(err)
	if !ok {
		fmt.Fprintln(w, styles.Error.Render("Error: ")+EnhanceError(err).Error())
		return
	}

	msg := pe.Message
	if pe.Cause != nil {
		msg += ": " + pe.Cause.Error()
	}
	fmt.Fprintf(w, "%s%s %s\n", styles.Error.Render("Error: "), msg, styles.Hint.Render("["+string(pe.Code)+"]"))
	for _, s := range pe.Suggestions {
		fmt.Fprintln(w, styles.Hint.Render("  → "+s))
	}
}
