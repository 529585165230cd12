package observability

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

func TestLogger(t *testing.T) {
	var buf bytes.Buffer
	logger := NewLogger(LoggerConfig{
		Level:   "debug",
		Format:  "json",
		Output:  &buf,
		Service: "test-service",
		Version: "1.0.0",
	})

	logger.Info("test message")

	var entry map[string]interface{}
	if err := json.Unmarshal(buf.Bytes(), &entry); err != nil {
		t.Fatalf("Expected JSON output, got %q: %v", buf.String(), err)
	}
	if entry["msg"] != "test message" {
		t.Errorf("Expected msg 'test message', got %v", entry["msg"])
	}
	if entry["service"] != "test-service" {
		t.Errorf("Expected service field, got %v", entry["service"])
	}
}

func TestLoggerWithFields(t *testing.T) {
	var buf bytes.Buffer
	logger := NewLogger(LoggerConfig{Level: "info", Format: "json", Output: &buf})

	logger.InfoWithFields("materialized", map[string]interface{}{
		"table": "FEATURE_STORE.USER_FEATURES_VIEW",
		"rows":  123,
	})

	output := buf.String()
	if !strings.Contains(output, "FEATURE_STORE.USER_FEATURES_VIEW") {
		t.Errorf("Expected table field, got: %s", output)
	}
	if !strings.Contains(output, "123") {
		t.Errorf("Expected rows field, got: %s", output)
	}
}

func TestLoggerLevelFiltering(t *testing.T) {
	var buf bytes.Buffer
	logger := NewLogger(LoggerConfig{Level: "warn", Output: &buf})

	logger.Info("hidden")
	logger.Debugf("hidden %d", 1)
	logger.Warn("visible")

	if strings.Contains(buf.String(), "hidden") {
		t.Errorf("Info/debug should be filtered at warn level, got: %s", buf.String())
	}
	if !strings.Contains(buf.String(), "visible") {
		t.Errorf("Expected warning in output, got: %s", buf.String())
	}

	logger.SetLevel("debug")
	logger.Debug("now shown")
	if !strings.Contains(buf.String(), "now shown") {
		t.Errorf("Expected debug after SetLevel, got: %s", buf.String())
	}
}

func TestWithRunID(t *testing.T) {
	var buf bytes.Buffer
	logger, id := NewLogger(LoggerConfig{Format: "json", Output: &buf}).WithRunID()

	if _, err := uuid.Parse(id); err != nil {
		t.Fatalf("Expected a UUID run id, got %q", id)
	}

	logger.WithError(fmt.Errorf("boom")).Error("failed")
	if !strings.Contains(buf.String(), id) {
		t.Errorf("Expected run id in output, got: %s", buf.String())
	}
	if !strings.Contains(buf.String(), "boom") {
		t.Errorf("Expected error in output, got: %s", buf.String())
	}
}

func TestWithRunIDKeepsExistingID(t *testing.T) {
	base := NewLogger(LoggerConfig{Format: "json", Output: &bytes.Buffer{}})
	if _, ok := base.RunID(); ok {
		t.Fatal("Fresh logger should carry no run id")
	}

	tagged, id := base.WithRunID()
	nested, nestedID := tagged.WithField("step", "train").WithRunID()
	if nestedID != id {
		t.Errorf("Expected nested run id %q, got %q", id, nestedID)
	}
	if got, _ := nested.RunID(); got != id {
		t.Errorf("Expected run id %q on nested logger, got %q", id, got)
	}

	_, other := base.WithRunID()
	if other == id {
		t.Error("Separate runs should get separate ids")
	}
}

func TestLoggerFileSink(t *testing.T) {
	path := filepath.Join(t.TempDir(), "featuredrop.log")
	var buf bytes.Buffer
	logger := NewLogger(LoggerConfig{Output: &buf, File: path, MaxSizeMB: 1})

	logger.Info("to both sinks")
	if err := logger.Close(); err != nil {
		t.Fatalf("Close failed: %v", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("Expected log file: %v", err)
	}
	if !strings.Contains(string(data), "to both sinks") {
		t.Errorf("Expected entry in file, got: %s", data)
	}
	if !strings.Contains(buf.String(), "to both sinks") {
		t.Errorf("Expected entry in output, got: %s", buf.String())
	}
}

func TestLogLevelFromString(t *testing.T) {
	tests := []struct {
		input    string
		expected logrus.Level
	}{
		{"DEBUG", logrus.DebugLevel},
		{"debug", logrus.DebugLevel},
		{"INFO", logrus.InfoLevel},
		{"WARN", logrus.WarnLevel},
		{"WARNING", logrus.WarnLevel},
		{"ERROR", logrus.ErrorLevel},
		{"FATAL", logrus.FatalLevel},
		{"invalid", logrus.InfoLevel},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			if got := LogLevelFromString(tt.input); got != tt.expected {
				t.Errorf("LogLevelFromString(%s) = %v, want %v", tt.input, got, tt.expected)
			}
		})
	}
}
