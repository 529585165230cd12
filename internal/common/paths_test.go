package common

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCleanPath(t *testing.T) {
	abs, err := CleanPath("config.yaml")
	require.NoError(t, err)
	assert.True(t, filepath.IsAbs(abs))

	_, err = CleanPath("../secrets/config.yaml")
	assert.Error(t, err)
}

func TestExpandHome(t *testing.T) {
	home := t.TempDir()
	t.Setenv("HOME", home)

	tests := []struct {
		in   string
		want string
	}{
		{"~/models/lr.yaml", filepath.Join(home, "models/lr.yaml")},
		{"~", home},
		{"/tmp/linear_regression_model.yaml", "/tmp/linear_regression_model.yaml"},
		{"~other/file", "~other/file"},
		{"", ""},
	}

	for _, tt := range tests {
		got, err := ExpandHome(tt.in)
		require.NoError(t, err)
		assert.Equal(t, tt.want, got, tt.in)
	}
}
