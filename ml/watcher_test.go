package ml

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestWatcherPicksUpNewArtifact(t *testing.T) {
	path := filepath.Join(t.TempDir(), "xgb_model.json")
	registry := NewRegistry(TypeXGBoost, path, 0, nil)
	_, err := registry.Current()
	require.Error(t, err)

	watcher, err := NewWatcher(registry, nil)
	require.NoError(t, err)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	require.NoError(t, watcher.Start(ctx))
	defer watcher.Stop()

	copyFixture(t, path)
	require.Eventually(t, func() bool {
		_, err := registry.Current()
		return err == nil
	}, 5*time.Second, 50*time.Millisecond)

	require.NoError(t, os.Remove(path))
	require.Eventually(t, func() bool {
		_, err := registry.Current()
		return err != nil
	}, 5*time.Second, 50*time.Millisecond)
}
