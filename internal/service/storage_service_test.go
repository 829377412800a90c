package service

import (
	"context"
	"ethioheritage_backend/internal/config"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLocalStorageUploadAndDelete(t *testing.T) {
	root := t.TempDir()
	svc := NewStorageService(&config.StorageConfig{Type: "local", LocalPath: root})
	ctx := context.Background()

	url, err := svc.Upload(ctx, "certificates/EH360-2026-abc.html", strings.NewReader("<html></html>"), 13, "text/html")
	require.NoError(t, err)
	assert.Equal(t, "/uploads/certificates/EH360-2026-abc.html", url)

	data, err := os.ReadFile(filepath.Join(root, "certificates", "EH360-2026-abc.html"))
	require.NoError(t, err)
	assert.Equal(t, "<html></html>", string(data))

	require.NoError(t, svc.Delete(ctx, "certificates/EH360-2026-abc.html"))
	_, err = os.Stat(filepath.Join(root, "certificates", "EH360-2026-abc.html"))
	assert.True(t, os.IsNotExist(err))
}

func TestLocalStorageRejectsTraversal(t *testing.T) {
	svc := NewStorageService(&config.StorageConfig{Type: "local", LocalPath: t.TempDir()})
	_, err := svc.Upload(context.Background(), "../escape.html", strings.NewReader("x"), 1, "text/html")
	assert.Error(t, err)
}

func TestStorageFallsBackToLocal(t *testing.T) {
	svc := NewStorageService(&config.StorageConfig{Type: "minio", LocalPath: t.TempDir()})
	_, ok := svc.Provider.(*LocalStorageProvider)
	assert.True(t, ok)
}
