package store

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"todo/internal/domain"
	"todo/internal/storage"
)

// sequentialIDs returns "1", "2", ... in order.
func sequentialIDs() func() string {
	var mu sync.Mutex
	n := 0
	return func() string {
		mu.Lock()
		defer mu.Unlock()
		n++
		return fmt.Sprintf("%d", n)
	}
}

func newTestStore(t *testing.T, s storage.Storage, opts ...Option) *TaskStore {
	t.Helper()
	if s == nil {
		s = storage.NewMemoryStorage()
	}
	opts = append([]Option{WithIDGenerator(sequentialIDs())}, opts...)
	ts := New(s, opts...)
	t.Cleanup(func() {
		ctx, cancel := context.WithTimeout(context.Background(), time.Second)
		defer cancel()
		ts.Close(ctx)
	})
	return ts
}

func waitFor(t *testing.T, w *Write) error {
	t.Helper()
	require.NotNil(t, w)
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	return w.Wait(ctx)
}

var errDiskFull = errors.New("disk full")

// failingStorage accepts reads and rejects every write.
type failingStorage struct {
	*storage.MemoryStorage
}

func (f *failingStorage) SetItem(ctx context.Context, key string, value []byte) error {
	return errDiskFull
}

// gatedStorage blocks each write until release is signalled and records what was written.
type gatedStorage struct {
	*storage.MemoryStorage
	entered chan struct{}
	release chan struct{}

	mu     sync.Mutex
	writes [][]byte
}

func newGatedStorage() *gatedStorage {
	return &gatedStorage{
		MemoryStorage: storage.NewMemoryStorage(),
		entered:       make(chan struct{}, 16),
		release:       make(chan struct{}),
	}
}

func (g *gatedStorage) SetItem(ctx context.Context, key string, value []byte) error {
	g.entered <- struct{}{}
	select {
	case <-g.release:
	case <-ctx.Done():
		return ctx.Err()
	}
	g.mu.Lock()
	g.writes = append(g.writes, append([]byte(nil), value...))
	g.mu.Unlock()
	return g.MemoryStorage.SetItem(ctx, key, value)
}

func (g *gatedStorage) writeCount() int {
	g.mu.Lock()
	defer g.mu.Unlock()
	return len(g.writes)
}

// brokenReadStorage fails every read.
type brokenReadStorage struct {
	*storage.MemoryStorage
}

func (b *brokenReadStorage) GetItem(ctx context.Context, key string) ([]byte, bool, error) {
	return nil, false, errors.New("io error")
}

// flakyReadStorage fails the first failures reads, then behaves normally.
type flakyReadStorage struct {
	*storage.MemoryStorage

	mu       sync.Mutex
	failures int
}

func (f *flakyReadStorage) GetItem(ctx context.Context, key string) ([]byte, bool, error) {
	f.mu.Lock()
	fail := f.failures > 0
	if fail {
		f.failures--
	}
	f.mu.Unlock()
	if fail {
		return nil, false, errors.New("database is locked")
	}
	return f.MemoryStorage.GetItem(ctx, key)
}

// seedTasks saves n easy tasks directly under the default key.
func seedTasks(t *testing.T, mem *storage.MemoryStorage, n int) {
	t.Helper()
	state := domain.EmptyState()
	for i := 0; i < n; i++ {
		state.Todos = append(state.Todos, domain.NewTask(fmt.Sprintf("seed-%d", i), domain.TaskDraft{Title: "seeded", Category: domain.CategoryEasy}))
	}
	data, err := domain.NewStateMapper().Encode(state)
	require.NoError(t, err)
	require.NoError(t, mem.SetItem(context.Background(), storage.DefaultKey, data))
}

// savedTasks decodes what the default key currently holds.
func savedTasks(t *testing.T, mem *storage.MemoryStorage) []domain.Task {
	t.Helper()
	data, found, err := mem.GetItem(context.Background(), storage.DefaultKey)
	require.NoError(t, err)
	require.True(t, found)
	saved, err := domain.NewStateMapper().Decode(data)
	require.NoError(t, err)
	return saved.Todos
}
