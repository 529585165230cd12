package errors

import (
	"errors"
	"fmt"
	"strings"
	"testing"
)

func TestAppError(t *testing.T) {
	tests := []struct {
		name     string
		err      *AppError
		expected string
	}{
		{
			name:     "basic error",
			err:      New(ErrCodeConnectionFailed, "Connection failed"),
			expected: "[FDE1001] ERROR: Connection failed",
		},
		{
			name: "error with suggestions",
			err: New(ErrCodeConnectionFailed, "Connection failed").
				WithSuggestions("Check network", "Verify credentials"),
			expected: "[FDE1001] ERROR: Connection failed\nSuggestions:\n  1. Check network\n  2. Verify credentials",
		},
		{
			name: "error with context",
			err: New(ErrCodeConnectionFailed, "Connection failed").
				WithContext("host", "example.com").
				WithContext("port", 443),
			expected: "[FDE1001] ERROR: Connection failed",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.err.Error() != tt.expected {
				t.Errorf("Expected %q, got %q", tt.expected, tt.err.Error())
			}
		})
	}
}

func TestErrorWrapping(t *testing.T) {
	baseErr := fmt.Errorf("database connection refused")

	appErr := Wrap(baseErr, ErrCodeConnectionFailed, "Failed to connect to Snowflake")

	if appErr.Cause != baseErr {
		t.Error("Wrapped error should contain original error as cause")
	}
	if !errors.Is(appErr, baseErr) {
		t.Error("errors.Is should reach the cause")
	}
	if Wrap(nil, ErrCodeInternal, "nothing") != nil {
		t.Error("Wrapping nil should return nil")
	}
}

func TestWrapInheritsContext(t *testing.T) {
	inner := TableNotFound("FEATURE_STORE.USER_FEATURES_VIEW")
	outer := Wrap(inner, ErrCodeSQLExecution, "load failed")

	if outer.Context["table"] != "FEATURE_STORE.USER_FEATURES_VIEW" {
		t.Errorf("Expected inherited table context, got %v", outer.Context)
	}
}

func TestSQLErrorClassification(t *testing.T) {
	tests := []struct {
		cause error
		code  ErrorCode
	}{
		{fmt.Errorf("002003 (42S02): SQL compilation error: Object 'X' does not exist or not authorized."), ErrCodeTableNotFound},
		{fmt.Errorf("003001 (42501): Insufficient privileges to operate on schema"), ErrCodeSQLPermission},
		{fmt.Errorf("001003 (42000): syntax error line 1"), ErrCodeSQLExecution},
	}

	for _, tt := range tests {
		err := SQLError("query failed", "SELECT 1", tt.cause)
		if err.Code != tt.code {
			t.Errorf("%v: expected %s, got %s", tt.cause, tt.code, err.Code)
		}
	}
}

func TestIsCode(t *testing.T) {
	notFound := TableNotFound("A.B")
	wrapped := fmt.Errorf("training aborted: %w", Wrap(notFound, ErrCodeSQLExecution, "lookup"))

	if !IsCode(wrapped, ErrCodeTableNotFound) {
		t.Error("Expected TableNotFound in chain")
	}
	if !IsCode(wrapped, ErrCodeSQLExecution) {
		t.Error("Expected SQLExecution in chain")
	}
	if IsCode(wrapped, ErrCodeSerialization) {
		t.Error("Did not expect Serialization in chain")
	}
	if IsCode(fmt.Errorf("plain"), ErrCodeTableNotFound) {
		t.Error("Plain errors carry no code")
	}
}

func TestErrorCodes(t *testing.T) {
	if GetErrorCode(SchemaMismatch("T", "C", "missing")) != ErrCodeSchemaMismatch {
		t.Error("Expected schema mismatch code")
	}
	if GetErrorCode(fmt.Errorf("plain")) != ErrCodeInternal {
		t.Error("Plain errors map to internal code")
	}

	err := SerializationError("/tmp/model.yaml", fmt.Errorf("permission denied"))
	if err.Code != ErrCodeSerialization {
		t.Errorf("Expected %s, got %s", ErrCodeSerialization, err.Code)
	}
	if !strings.Contains(err.Error(), "permission denied") {
		t.Error("Cause should be rendered")
	}
}

func TestErrorSeverity(t *testing.T) {
	err := New(ErrCodeInternal, "boom").WithSeverity(SeverityCritical)
	if err.Severity != SeverityCritical {
		t.Errorf("Expected %s, got %s", SeverityCritical, err.Severity)
	}
	if !strings.HasPrefix(err.Error(), "[FDE9001] CRITICAL") {
		t.Errorf("Unexpected rendering %q", err.Error())
	}
}

func BenchmarkErrorCreation(b *testing.B) {
	for i := 0; i < b.N; i++ {
		_ = New(ErrCodeTableNotFound, "missing").WithContext("table", "X")
	}
}
