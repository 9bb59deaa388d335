package logging

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestNewWritesRotatedFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "app.log")
	logger, err := New(Options{Level: "debug", File: path, MaxSizeMB: 1})
	require.NoError(t, err)

	logger.Debug("model loaded", zap.String("path", "xgb_model.json"))
	_ = logger.Sync()

	payload, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(payload), `"msg":"model loaded"`)
	assert.Contains(t, string(payload), `"path":"xgb_model.json"`)
}

func TestNewRejectsUnknownLevel(t *testing.T) {
	_, err := New(Options{Level: "chatty"})
	assert.Error(t, err)
}
