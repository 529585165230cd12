package errors

import (
	"errors"
	"fmt"
	"runtime"
	"strings"
	"time"
)

// ErrorCode represents a unique error code for categorizing errors
type ErrorCode string

const (
	// Connection errors (1xxx)
	ErrCodeConnectionFailed     ErrorCode = "FDE1001"
	ErrCodeConnectionTimeout    ErrorCode = "FDE1002"
	ErrCodeAuthenticationFailed ErrorCode = "FDE1003"
	ErrCodeNotConnected         ErrorCode = "FDE1004"

	// Configuration errors (2xxx)
	ErrCodeConfigNotFound ErrorCode = "FDE2001"
	ErrCodeConfigInvalid  ErrorCode = "FDE2002"
	ErrCodeConfigMissing  ErrorCode = "FDE2003"
	ErrCodeCredentials    ErrorCode = "FDE2004"

	// Warehouse errors (4xxx)
	ErrCodeTableNotFound  ErrorCode = "FDE4001"
	ErrCodeSQLExecution   ErrorCode = "FDE4002"
	ErrCodeSQLPermission  ErrorCode = "FDE4003"
	ErrCodeResultParsing  ErrorCode = "FDE4004"
	ErrCodeInvalidName    ErrorCode = "FDE4005"
	ErrCodeSchemaMismatch ErrorCode = "FDE4006"

	// Model and data errors (5xxx)
	ErrCodeSerialization    ErrorCode = "FDE5001"
	ErrCodeInsufficientData ErrorCode = "FDE5002"
	ErrCodeFitFailed        ErrorCode = "FDE5003"
	ErrCodeVerification     ErrorCode = "FDE5004"

	// Validation errors (6xxx)
	ErrCodeInvalidInput ErrorCode = "FDE6002"

	// System errors (9xxx)
	ErrCodeInternal ErrorCode = "FDE9001"
)

// ErrorSeverity represents the severity level of an error
type ErrorSeverity string

const (
	SeverityCritical ErrorSeverity = "CRITICAL" // System failure, requires immediate attention
	SeverityError    ErrorSeverity = "ERROR"    // Operation failed
	SeverityWarning  ErrorSeverity = "WARNING"  // Operation succeeded with issues
	SeverityInfo     ErrorSeverity = "INFO"     // Informational, not an error
)

// AppError represents a structured application error with context
type AppError struct {
	Code        ErrorCode
	Message     string
	Severity    ErrorSeverity
	Context     map[string]interface{}
	Cause       error
	Stack       string
	Timestamp   time.Time
	Suggestions []string
}

// Error implements the error interface
func (e *AppError) Error() string {
	var b strings.Builder
	b.WriteString(fmt.Sprintf("[%s] %s: %s", e.Code, e.Severity, e.Message))

	if e.Cause != nil {
		b.WriteString(fmt.Sprintf("\nCaused by: %v", e.Cause))
	}

	if len(e.Suggestions) > 0 {
		b.WriteString("\nSuggestions:")
		for i, suggestion := range e.Suggestions {
			b.WriteString(fmt.Sprintf("\n  %d. %s", i+1, suggestion))
		}
	}

	return b.String()
}

// Unwrap returns the cause of the error
func (e *AppError) Unwrap() error {
	return e.Cause
}

// Is implements error comparison
func (e *AppError) Is(target error) bool {
	t, ok := target.(*AppError)
	if !ok {
		return false
	}
	return e.Code == t.Code
}

// New creates a new AppError
func New(code ErrorCode, message string) *AppError {
	return &AppError{
		Code:      code,
		Message:   message,
		Severity:  SeverityError,
		Context:   make(map[string]interface{}),
		Stack:     captureStack(),
		Timestamp: time.Now(),
	}
}

// Wrap wraps an existing error with AppError
func Wrap(err error, code ErrorCode, message string) *AppError {
	if err == nil {
		return nil
	}

	appErr := New(code, message)
	appErr.Cause = err

	// If wrapping another AppError, inherit its context
	if ae, ok := err.(*AppError); ok {
		for k, v := range ae.Context {
			appErr.Context[k] = v
		}
	}

	return appErr
}

// WithContext adds context to the error
func (e *AppError) WithContext(key string, value interface{}) *AppError {
	if e.Context == nil {
		e.Context = make(map[string]interface{})
	}
	e.Context[key] = value
	return e
}

// WithSeverity sets the error severity
func (e *AppError) WithSeverity(severity ErrorSeverity) *AppError {
	e.Severity = severity
	return e
}

// WithSuggestions adds recovery suggestions
func (e *AppError) WithSuggestions(suggestions ...string) *AppError {
	e.Suggestions = append(e.Suggestions, suggestions...)
	return e
}

// captureStack captures the current stack trace
func captureStack() string {
	const depth = 32
	var pcs [depth]uintptr
	n := runtime.Callers(3, pcs[:])

	var b strings.Builder
	frames := runtime.CallersFrames(pcs[:n])

	for {
		frame, more := frames.Next()
		if !strings.Contains(frame.File, "runtime/") {
			b.WriteString(fmt.Sprintf("%s:%d %s\n", frame.File, frame.Line, frame.Function))
		}
		if !more {
			break
		}
	}

	return b.String()
}

// Common error constructors

// ConnectionError creates a connection-related error
func ConnectionError(message string, cause error) *AppError {
	return Wrap(cause, ErrCodeConnectionFailed, message).
		WithSuggestions(
			"Check your network connection",
			"Verify Snowflake endpoint is accessible",
			"Check firewall settings",
		)
}

// ConfigError creates a configuration-related error
func ConfigError(message string, field string) *AppError {
	return New(ErrCodeConfigInvalid, message).
		WithContext("field", field).
		WithSuggestions(
			fmt.Sprintf("Check the '%s' configuration value", field),
			"Run 'featuredrop setup' to reconfigure",
		)
}

// SQLError creates an SQL execution error. Messages from Snowflake that
// report a missing object are classified as ErrCodeTableNotFound.
func SQLError(message string, query string, cause error) *AppError {
	err := Wrap(cause, ErrCodeSQLExecution, message).
		WithContext("query", truncateString(query, 200))

	causeStr := ""
	if cause != nil {
		causeStr = strings.ToLower(cause.Error())
	}

	switch {
	case strings.Contains(causeStr, "does not exist") || strings.Contains(causeStr, "not found"):
		err.Code = ErrCodeTableNotFound
		_ = err.WithSuggestions(
			"Verify the object exists in the target database/schema",
			"Check for typos in object names",
		)
	case strings.Contains(causeStr, "insufficient privileges") || strings.Contains(causeStr, "access denied"):
		err.Code = ErrCodeSQLPermission
		_ = err.WithSuggestions(
			"Verify the role has required privileges",
			"Contact your Snowflake administrator",
		)
	}

	return err
}

// TableNotFound reports a missing warehouse table or view
func TableNotFound(name string) *AppError {
	return New(ErrCodeTableNotFound, fmt.Sprintf("Table '%s' does not exist or not authorized", name)).
		WithContext("table", name).
		WithSuggestions(
			"Run 'featuredrop materialize' before 'featuredrop train'",
			"Check the database and schema of the configured session",
		)
}

// SchemaMismatch reports a column that is missing or has an unusable type
func SchemaMismatch(table, column, reason string) *AppError {
	return New(ErrCodeSchemaMismatch, fmt.Sprintf("Column '%s' of '%s': %s", column, table, reason)).
		WithContext("table", table).
		WithContext("column", column)
}

// SerializationError reports a failure to persist or read a model file
func SerializationError(path string, cause error) *AppError {
	return Wrap(cause, ErrCodeSerialization, fmt.Sprintf("Failed to serialize model to %s", path)).
		WithContext("path", path).
		WithSuggestions("Check that the scratch directory exists and is writable")
}

// GetErrorCode extracts the error code from an error
func GetErrorCode(err error) ErrorCode {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr.Code
	}
	return ErrCodeInternal
}

// IsCode reports whether any AppError in err's chain carries code
func IsCode(err error, code ErrorCode) bool {
	for err != nil {
		var appErr *AppError
		if !errors.As(err, &appErr) {
			return false
		}
		if appErr.Code == code {
			return true
		}
		err = appErr.Cause
	}
	return false
}

// truncateString truncates a string to maxLen characters
func truncateString(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}
	return s[:maxLen] + "..."
}
