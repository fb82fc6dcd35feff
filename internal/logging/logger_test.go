package logging

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseLevel(t *testing.T) {
	tests := []struct {
		in   string
		want logrus.Level
	}{
		{"debug", logrus.DebugLevel},
		{"WARN", logrus.WarnLevel},
		{"warning", logrus.WarnLevel},
		{"error", logrus.ErrorLevel},
		{"", logrus.InfoLevel},
		{"verbose", logrus.InfoLevel},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, parseLevel(tt.in), tt.in)
	}
}

func TestFromContext(t *testing.T) {
	ctx := ContextWithRunID(context.Background(), "run-1")
	ctx = ContextWithAction(ctx, "importcompanies")
	ctx = ContextWithEntity(ctx, "Company")
	ctx = ContextWithRow(ctx, 7)

	entry := WithFields(ctx, logrus.Fields{"sheet": "Companies"})

	assert.Equal(t, logrus.Fields{
		"run_id": "run-1",
		"action": "importcompanies",
		"entity": "Company",
		"row":    7,
		"sheet":  "Companies",
	}, entry.Data)
	assert.Empty(t, FromContext(context.Background()).Data)
}

func TestSetup_File(t *testing.T) {
	defer logrus.SetOutput(os.Stderr)
	path := filepath.Join(t.TempDir(), "import.log")

	closer, err := Setup("info", "json", path)
	require.NoError(t, err)
	FromContext(ContextWithRunID(context.Background(), "run-2")).Info("sheet loaded")
	require.NoError(t, closer.Close())

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), `"run_id":"run-2"`)
	assert.Contains(t, string(data), `"msg":"sheet loaded"`)
}

func TestSetup_BadFile(t *testing.T) {
	defer logrus.SetOutput(os.Stderr)

	closer, err := Setup("info", "text", filepath.Join(t.TempDir(), "missing", "import.log"))
	assert.Error(t, err)
	assert.NotNil(t, closer)
}
