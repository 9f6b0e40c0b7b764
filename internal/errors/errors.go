package errors

import (
	"errors"
	"fmt"
	"runtime"
	"strings"
)

// ErrorType represents the category of error
type ErrorType int

const (
	// Source errors - path does not resolve to a usable commit history
	ErrorTypeInvalidSource ErrorType = iota
	// Empty input - zero commits after extraction or filtering
	ErrorTypeEmptyInput
	// Classification errors - classifier call failed or returned malformed output
	ErrorTypeClassification
	// Configuration errors - missing or invalid configuration
	ErrorTypeConfig
	// Storage errors - export / import failures
	ErrorTypeStorage
	// External errors - remote service failures (GitHub, LLM, cache)
	ErrorTypeExternal
	// Internal errors - unexpected internal state
	ErrorTypeInternal
)

// Severity represents how critical an error is
type Severity int

const (
	// SeverityLow - recovered locally, processing continues
	SeverityLow Severity = iota
	// SeverityMedium - should be addressed but not fatal
	SeverityMedium
	// SeverityHigh - significant issue, may impact functionality
	SeverityHigh
	// SeverityCritical - must be addressed, stops execution
	SeverityCritical
)

// Sentinel errors for errors.Is checks. Matching is by ErrorType.
var (
	ErrInvalidSource         = &Error{Type: ErrorTypeInvalidSource, Severity: SeverityCritical, Message: "invalid commit source"}
	ErrEmptyInput            = &Error{Type: ErrorTypeEmptyInput, Severity: SeverityCritical, Message: "no commits to analyze"}
	ErrClassification        = &Error{Type: ErrorTypeClassification, Severity: SeverityLow, Message: "classification failed"}
	ErrClassificationTimeout = errors.New("classification deadline exceeded")
)

// Error represents a structured error with context
type Error struct {
	Type       ErrorType
	Severity   Severity
	Message    string
	Cause      error
	Context    map[string]interface{}
	StackTrace string
}

// Error implements the error interface
func (e *Error) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Cause)
	}
	return e.Message
}

// Unwrap returns the underlying cause
func (e *Error) Unwrap() error {
	return e.Cause
}

// WithContext adds context to the error
func (e *Error) WithContext(key string, value interface{}) *Error {
	if e.Context == nil {
		e.Context = make(map[string]interface{})
	}
	e.Context[key] = value
	return e
}

// Is checks if this error matches the target error type
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return e.Type == t.Type
}

// DetailedString returns a detailed error message with context
func (e *Error) DetailedString() string {
	var sb strings.Builder

	sb.WriteString(fmt.Sprintf("[%s] [%s] %s\n",
		severityString(e.Severity),
		typeString(e.Type),
		e.Message))

	if e.Cause != nil {
		sb.WriteString(fmt.Sprintf("Caused by: %v\n", e.Cause))
	}

	if len(e.Context) > 0 {
		sb.WriteString("Context:\n")
		for k, v := range e.Context {
			sb.WriteString(fmt.Sprintf("  %s: %v\n", k, v))
		}
	}

	if e.StackTrace != "" {
		sb.WriteString(fmt.Sprintf("Stack trace:\n%s\n", e.StackTrace))
	}

	return sb.String()
}

func typeString(t ErrorType) string {
	switch t {
	case ErrorTypeInvalidSource:
		return "INVALID_SOURCE"
	case ErrorTypeEmptyInput:
		return "EMPTY_INPUT"
	case ErrorTypeClassification:
		return "CLASSIFICATION"
	case ErrorTypeConfig:
		return "CONFIG"
	case ErrorTypeStorage:
		return "STORAGE"
	case ErrorTypeExternal:
		return "EXTERNAL"
	case ErrorTypeInternal:
		return "INTERNAL"
	default:
		return "UNKNOWN"
	}
}

func severityString(s Severity) string {
	switch s {
	case SeverityLow:
		return "LOW"
	case SeverityMedium:
		return "MEDIUM"
	case SeverityHigh:
		return "HIGH"
	case SeverityCritical:
		return "CRITICAL"
	default:
		return "UNKNOWN"
	}
}

// captureStackTrace captures the current stack trace
func captureStackTrace(skip int) string {
	var sb strings.Builder
	for i := skip; i < skip+10; i++ {
		pc, file, line, ok := runtime.Caller(i)
		if !ok {
			break
		}
		fn := runtime.FuncForPC(pc)
		if fn == nil {
			break
		}
		sb.WriteString(fmt.Sprintf("  %s:%d %s\n", file, line, fn.Name()))
	}
	return sb.String()
}

// New creates a new error with the given type, severity, and message
func New(errType ErrorType, severity Severity, message string) *Error {
	return &Error{
		Type:       errType,
		Severity:   severity,
		Message:    message,
		Context:    make(map[string]interface{}),
		StackTrace: captureStackTrace(2),
	}
}

// Wrap wraps an existing error with additional context
func Wrap(err error, errType ErrorType, severity Severity, message string) *Error {
	if err == nil {
		return nil
	}

	return &Error{
		Type:       errType,
		Severity:   severity,
		Message:    message,
		Cause:      err,
		Context:    make(map[string]interface{}),
		StackTrace: captureStackTrace(2),
	}
}

// Convenience constructors for common error types

// InvalidSourcef reports a path or remote that is not a usable commit history
func InvalidSourcef(err error, format string, args ...interface{}) *Error {
	e := &Error{
		Type:       ErrorTypeInvalidSource,
		Severity:   SeverityCritical,
		Message:    fmt.Sprintf(format, args...),
		Cause:      err,
		Context:    make(map[string]interface{}),
		StackTrace: captureStackTrace(2),
	}
	return e
}

// EmptyInputf reports that there is nothing to aggregate
func EmptyInputf(format string, args ...interface{}) *Error {
	return New(ErrorTypeEmptyInput, SeverityCritical, fmt.Sprintf(format, args...))
}

// ClassificationError wraps a per-commit classifier failure
func ClassificationError(err error, commitID string) *Error {
	return Wrap(err, ErrorTypeClassification, SeverityLow, "classification failed").
		WithContext("commit", commitID)
}

// ConfigErrorf creates a configuration error with formatting
func ConfigErrorf(format string, args ...interface{}) *Error {
	return New(ErrorTypeConfig, SeverityCritical, fmt.Sprintf(format, args...))
}

// StorageErrorf wraps an export / import error with formatting
func StorageErrorf(err error, format string, args ...interface{}) *Error {
	return Wrap(err, ErrorTypeStorage, SeverityHigh, fmt.Sprintf(format, args...))
}

// ExternalErrorf wraps an external service error with formatting
func ExternalErrorf(err error, format string, args ...interface{}) *Error {
	return Wrap(err, ErrorTypeExternal, SeverityMedium, fmt.Sprintf(format, args...))
}

// InternalErrorf creates an internal error with formatting
func InternalErrorf(format string, args ...interface{}) *Error {
	return New(ErrorTypeInternal, SeverityCritical, fmt.Sprintf(format, args...))
}

// Detail returns the DetailedString of the first *Error in err's chain, or ""
// when err carries none
func Detail(err error) string {
	var e *Error
	if errors.As(err, &e) {
		return e.DetailedString()
	}
	return ""
}

// ExitCode maps an error to the process exit code used by the CLI
func ExitCode(err error) int {
	if err == nil {
		return 0
	}
	switch {
	case errors.Is(err, ErrInvalidSource):
		return 2
	case errors.Is(err, ErrEmptyInput):
		return 3
	default:
		return 1
	}
}
