package cli

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"todo/internal/config"
	"todo/internal/storage"
	"todo/internal/store"
)

func TestDefaultOpener_PersistsAcrossRuns(t *testing.T) {
	for _, backend := range []string{config.BackendFile, config.BackendSQLite} {
		t.Run(backend, func(t *testing.T) {
			dir := t.TempDir()
			open := DefaultOpener(config.Production)
			flags := []string{"--storage", backend, "--data-dir", dir}

			mustRun(t, open, append([]string{"name", "Ada"}, flags...)...)
			mustRun(t, open, append([]string{"add", "--deep", "Persisted task"}, flags...)...)

			out := mustRun(t, open, append([]string{"list"}, flags...)...)
			assert.Contains(t, out, "Hello, Ada")
			assert.Contains(t, out, "Persisted task")
		})
	}
}

func TestDefaultOpener_FileLayout(t *testing.T) {
	dir := t.TempDir()
	open := DefaultOpener(config.Production)

	mustRun(t, open, "add", "--easy", "On disk", "--storage", "file", "--data-dir", dir, "--storage-key", "my-list")

	_, err := os.Stat(filepath.Join(dir, "my-list.json"))
	assert.NoError(t, err)
}

func TestDefaultOpener_TestingEnvironmentIsInMemory(t *testing.T) {
	dir := t.TempDir()
	open := DefaultOpener(config.Testing)

	mustRun(t, open, "add", "--deep", "Gone", "--data-dir", dir)

	out := mustRun(t, open, "list", "--data-dir", dir)
	assert.Contains(t, out, "0 tasks today")

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.Empty(t, entries)
}

func TestStorageOpener_LeavesBackendOpen(t *testing.T) {
	backend := storage.NewMemoryStorage()
	open := StorageOpener(backend)

	mustRun(t, open, "add", "--deep", "Kept")

	_, found, err := backend.GetItem(context.Background(), storage.DefaultKey)
	require.NoError(t, err)
	assert.True(t, found)
}

// unreadableStorage fails every read but would accept writes.
type unreadableStorage struct {
	*storage.MemoryStorage
}

func (u *unreadableStorage) GetItem(ctx context.Context, key string) ([]byte, bool, error) {
	return nil, false, errors.New("database is locked")
}

func TestStorageOpener_UnreadableStorageFailsCommand(t *testing.T) {
	backend := &unreadableStorage{storage.NewMemoryStorage()}
	saved := []byte(`{"version":1,"userName":"Ada","todos":[]}`)
	require.NoError(t, backend.MemoryStorage.SetItem(context.Background(), storage.DefaultKey, saved))

	_, err := runCLI(t, StorageOpener(backend), "name", "Sam")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to load saved tasks")
	assert.ErrorIs(t, err, store.ErrSavedStateUnreadable)

	data, _, err := backend.MemoryStorage.GetItem(context.Background(), storage.DefaultKey)
	require.NoError(t, err)
	assert.Equal(t, saved, data)
}

func TestStorageOpener_CorruptRecordStartsEmpty(t *testing.T) {
	backend := storage.NewMemoryStorage()
	require.NoError(t, backend.SetItem(context.Background(), storage.DefaultKey, []byte("not json")))

	out := mustRun(t, StorageOpener(backend), "list")
	assert.Contains(t, out, "0 tasks today")
	mustRun(t, StorageOpener(backend), "name", "Sam")
	assert.Equal(t, "Sam\n", mustRun(t, StorageOpener(backend), "name"))
}

func TestServeCommand(t *testing.T) {
	open := StorageOpener(storage.NewMemoryStorage())

	t.Run("stops when cancelled", func(t *testing.T) {
		ctx, cancel := context.WithCancel(context.Background())
		cancel()

		done := make(chan struct{})
		var (
			out string
			err error
		)
		go func() {
			defer close(done)
			out, err = runCLIContext(ctx, t, open, "serve", "--addr", "127.0.0.1:0")
		}()

		select {
		case <-done:
		case <-time.After(10 * time.Second):
			t.Fatal("serve did not stop")
		}
		require.NoError(t, err)
		assert.Contains(t, out, "Serving on http://127.0.0.1:0")
		assert.Contains(t, out, "Stopped")
	})

	t.Run("refuses public addresses", func(t *testing.T) {
		_, err := runCLI(t, open, "serve", "--addr", "0.0.0.0:8080")
		require.Error(t, err)
		assert.Contains(t, err.Error(), "loopback")
	})
}
