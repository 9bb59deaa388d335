package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadMissingFileUsesDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "config.yaml"))
	require.NoError(t, err)
	assert.Equal(t, Default(), cfg)
}

func TestLoadOverridesDefaults(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
http:
  port: 9000
  timeout: 5s
ml:
  model_type: decision_tree
  model_path: models/dt_model.json
  watch: false
`), 0o600))

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, 9000, cfg.Http.Port)
	assert.Equal(t, 5*time.Second, cfg.Http.Timeout)
	assert.Equal(t, "decision_tree", cfg.ML.ModelType)
	assert.Equal(t, filepath.Join(dir, "models", "dt_model.json"), cfg.ML.ModelPath)
	assert.False(t, cfg.ML.Watch)
	assert.Equal(t, 1024, cfg.ML.CacheSize)
	assert.Equal(t, "info", cfg.Log.Level)
	assert.Empty(t, cfg.Log.File)
}

func TestLoadRejectsMalformedYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("http: [unclosed"), 0o600))
	_, err := Load(path)
	assert.Error(t, err)
}
