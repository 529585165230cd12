package ui

import (
	"bytes"
	"errors"
	"strings"
	"testing"
)

func TestColorFunc(t *testing.T) {
	originalSupportsColor := supportsColor
	defer func() {
		supportsColor = originalSupportsColor
	}()

	funcs := []func(string) string{ColorError, ColorInfo}

	supportsColor = true
	for _, f := range funcs {
		if f("text") == "text" {
			t.Error("Expected colored output, got plain text")
		}
	}

	supportsColor = false
	for _, f := range funcs {
		if f("text") != "text" {
			t.Error("Expected plain text, got colored output")
		}
	}
}

func TestConsoleOutput(t *testing.T) {
	var buf bytes.Buffer
	c := NewConsole(&buf)

	c.Header("User Features Sample")
	c.Success("Feature table 'X' created successfully!")
	c.Info("dropped 2 rows")
	c.Warning("careful")
	c.Metric("R² Score", 0.987654)
	c.Metric("MSE", 2)

	out := buf.String()
	for _, want := range []string{
		"=== User Features Sample ===\n",
		"SUCCESS: Feature table 'X' created successfully!\n",
		"INFO: dropped 2 rows\n",
		"WARNING: careful\n",
		"R² Score: 0.9877\n",
		"MSE: 2.0000\n",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("Expected %q in output:\n%s", want, out)
		}
	}
	if strings.Contains(out, "\x1b[") {
		t.Error("Buffers are not terminals and must not receive escape codes")
	}
	if c.Writer() != &buf {
		t.Error("Writer should return the wrapped writer")
	}
}

func TestShowError(t *testing.T) {
	originalSupportsColor := supportsColor
	supportsColor = false
	defer func() { supportsColor = originalSupportsColor }()

	var buf bytes.Buffer
	ShowError(&buf, errors.New("Table 'A.B' does not exist or not authorized\nCaused by: lookup"))

	out := buf.String()
	if !strings.Contains(out, "ERROR:") {
		t.Errorf("Expected error header, got: %s", out)
	}
	if !strings.Contains(out, "  Caused by: lookup") {
		t.Errorf("Expected indented continuation line, got: %s", out)
	}
	if !strings.Contains(out, "TIP: Run 'featuredrop materialize' first") {
		t.Errorf("Expected suggestion, got: %s", out)
	}
}

func TestGetSuggestion(t *testing.T) {
	tests := []struct {
		message  string
		contains string
	}{
		{"Authentication failed for user", "username and password"},
		{"dial tcp: connection refused", "network connectivity"},
		{"Insufficient privileges to operate", "role"},
		{"something else", ""},
	}

	for _, tt := range tests {
		got := getSuggestion(tt.message)
		if tt.contains == "" && got != "" {
			t.Errorf("Expected no suggestion for %q, got %q", tt.message, got)
		}
		if !strings.Contains(got, tt.contains) {
			t.Errorf("Expected suggestion for %q to contain %q, got %q", tt.message, tt.contains, got)
		}
	}
}
