package configwatcher

import (
	"context"
	"ethioheritage_backend/internal/config"
	"fmt"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func configBody(uploads string, retries int) string {
	return fmt.Sprintf(`
server:
  mode: debug
storage:
  type: local
  local_path: %s
progress:
  conflict_retries: %d
`, uploads, retries)
}

func TestWatchReloadsOnWrite(t *testing.T) {
	dir := t.TempDir()
	file := filepath.Join(dir, "config.yaml")
	uploads := filepath.Join(dir, "uploads")
	require.NoError(t, os.WriteFile(file, []byte(configBody(uploads, 3)), 0644))

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	reloaded := make(chan *config.Config, 1)
	require.NoError(t, Watch(ctx, file, func(cfg *config.Config) {
		select {
		case reloaded <- cfg:
		default:
		}
	}))

	require.NoError(t, os.WriteFile(file, []byte(configBody(uploads, 7)), 0644))

	select {
	case cfg := <-reloaded:
		assert.Equal(t, 7, cfg.Progress.ConflictRetries)
	case <-time.After(5 * time.Second):
		t.Fatal("config was not reloaded")
	}
}

func TestWatchMissingDirectory(t *testing.T) {
	err := Watch(context.Background(), filepath.Join(t.TempDir(), "missing", "config.yaml"), func(*config.Config) {})
	assert.Error(t, err)
}
