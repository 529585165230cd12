package testutil

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"featuredrop/internal/common"
	"featuredrop/internal/observability"
)

// TestHelper provides common test utilities
type TestHelper struct {
	t *testing.T
}

// NewTestHelper creates a new test helper
func NewTestHelper(t *testing.T) *TestHelper {
	return &TestHelper{t: t}
}

// WriteFile writes content to a file in the given directory
func (h *TestHelper) WriteFile(dir, filename, content string) string {
	h.t.Helper()
	path := filepath.Join(dir, filename)

	if err := os.MkdirAll(filepath.Dir(path), common.DirPermissionNormal); err != nil {
		h.t.Fatalf("Failed to create directories: %v", err)
	}

	if err := os.WriteFile(path, []byte(content), common.FilePermissionSecure); err != nil {
		h.t.Fatalf("Failed to write file %s: %v", path, err)
	}

	return path
}

// NewTestLogger returns a debug-level JSON logger writing into the returned buffer
func NewTestLogger() (*observability.Logger, *bytes.Buffer) {
	var buf bytes.Buffer
	logger := observability.NewLogger(observability.LoggerConfig{
		Level:   "debug",
		Format:  "json",
		Output:  &buf,
		Service: "featuredrop-test",
	})
	return logger, &buf
}
