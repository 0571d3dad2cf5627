package store

import (
	"context"
	stderrors "errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"todo/internal/domain"
	"todo/internal/errors"
	"todo/internal/storage"
)

func TestTaskStore_RoundTrip(t *testing.T) {
	ctx := context.Background()
	mem := storage.NewMemoryStorage()

	first := New(mem, WithIDGenerator(func() string { return "1" }))
	first.SetUserName("Sam")
	_, w, err := first.AddTodo(domain.TaskDraft{Title: "Buy milk", Category: domain.CategoryEasy})
	require.NoError(t, err)
	require.NoError(t, waitFor(t, w))
	original := first.State()
	require.NoError(t, first.Close(ctx))

	second := New(mem)
	defer second.Close(ctx)
	require.NoError(t, second.Hydrate(ctx))

	assert.Equal(t, original, second.State())
	name := "Sam"
	assert.Equal(t, domain.State{
		UserName: &name,
		Todos:    []domain.Task{{ID: "1", Title: "Buy milk", Details: "", Category: domain.CategoryEasy, Done: false}},
	}, second.State())
}

func TestTaskStore_PersistedLayout(t *testing.T) {
	mem := storage.NewMemoryStorage()
	ts := newTestStore(t, mem)

	ts.SetUserName("Sam")
	_, w, err := ts.AddTodo(domain.TaskDraft{Title: "Buy milk", Category: domain.CategoryEasy})
	require.NoError(t, err)
	require.NoError(t, waitFor(t, w))

	data, found, err := mem.GetItem(context.Background(), storage.DefaultKey)
	require.NoError(t, err)
	require.True(t, found)
	assert.JSONEq(t, `{
		"version": 1,
		"userName": "Sam",
		"todos": [{"id": "1", "title": "Buy milk", "details": "", "category": "easy", "done": false}]
	}`, string(data))
}

func TestTaskStore_CustomStorageKey(t *testing.T) {
	mem := storage.NewMemoryStorage()
	ts := newTestStore(t, mem, WithStorageKey("other"))

	require.NoError(t, waitFor(t, ts.SetUserName("Sam")))

	_, found, err := mem.GetItem(context.Background(), "other")
	require.NoError(t, err)
	assert.True(t, found)
	_, found, err = mem.GetItem(context.Background(), storage.DefaultKey)
	require.NoError(t, err)
	assert.False(t, found)
}

func TestTaskStore_Hydrate(t *testing.T) {
	tests := []struct {
		name        string
		stored      string
		wantErr     bool
		wantRefusal bool
		wantName    string
		wantTasks   int
	}{
		{
			name:      "versioned",
			stored:    `{"version":1,"userName":"Ana","todos":[{"id":"a","title":"x","details":"","category":"deep","done":true}]}`,
			wantName:  "Ana",
			wantTasks: 1,
		},
		{
			name:      "legacy envelope",
			stored:    `{"state":{"userName":"Ana","todos":[{"id":"a","title":"x","details":"","category":"easy","done":false}]},"version":0}`,
			wantName:  "Ana",
			wantTasks: 1,
		},
		{
			name:      "bare layout",
			stored:    `{"userName":null,"todos":[{"id":"a","title":"x","details":"","category":"easy","done":false},{"id":"b","title":"y","details":"","category":"deep","done":false}]}`,
			wantTasks: 2,
		},
		{
			name:    "corrupt",
			stored:  `{"todos": [`,
			wantErr: true,
		},
		{
			name:        "future version",
			stored:      `{"version":7,"todos":[]}`,
			wantErr:     true,
			wantRefusal: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mem := storage.NewMemoryStorage()
			require.NoError(t, mem.SetItem(context.Background(), storage.DefaultKey, []byte(tt.stored)))
			ts := newTestStore(t, mem)

			err := ts.Hydrate(context.Background())
			if tt.wantErr {
				assert.Error(t, err)
				assert.Equal(t, tt.wantRefusal, stderrors.Is(err, ErrSavedStateUnreadable))
				assert.Equal(t, domain.EmptyState(), ts.State())
				return
			}
			require.NoError(t, err)
			state := ts.State()
			assert.Equal(t, tt.wantName, state.Name())
			assert.Len(t, state.Todos, tt.wantTasks)
		})
	}
}

func TestTaskStore_HydrateReadFailure(t *testing.T) {
	ctx := context.Background()
	broken := &brokenReadStorage{MemoryStorage: storage.NewMemoryStorage()}
	seedTasks(t, broken.MemoryStorage, 3)
	ts := newTestStore(t, broken)

	err := ts.Hydrate(ctx)
	require.Error(t, err)
	assert.True(t, errors.IsErrorType(err, errors.ErrorTypeStorage))
	assert.ErrorIs(t, err, ErrSavedStateUnreadable)
	assert.Equal(t, domain.EmptyState(), ts.State())

	// mutations still apply in memory but never reach storage
	_, w, err := ts.AddTodo(easy("after"))
	require.NoError(t, err)
	werr := waitFor(t, w)
	assert.ErrorIs(t, werr, ErrSavedStateUnreadable)
	assert.Equal(t, werr, w.Err())
	assert.Len(t, ts.Todos(), 1)
	assert.Error(t, ts.Flush(ctx))

	assert.Len(t, savedTasks(t, broken.MemoryStorage), 3)
}

func TestTaskStore_TransientReadFailureKeepsSavedTasks(t *testing.T) {
	ctx := context.Background()
	flaky := &flakyReadStorage{MemoryStorage: storage.NewMemoryStorage(), failures: 1}
	seedTasks(t, flaky.MemoryStorage, 3)

	ts := Open(ctx, flaky)
	ts.SetUserName("Sam")
	assert.ErrorIs(t, ts.Close(ctx), ErrSavedStateUnreadable, "the refused write is reported on close")
	assert.Len(t, savedTasks(t, flaky.MemoryStorage), 3)

	// the next successful hydration accepts writes again
	reopened := Open(ctx, flaky)
	defer reopened.Close(ctx)
	assert.Len(t, reopened.Todos(), 3)
	require.NoError(t, waitFor(t, reopened.SetUserName("Sam")))
	assert.Len(t, savedTasks(t, flaky.MemoryStorage), 3)
}

func TestTaskStore_FutureVersionIsNotOverwritten(t *testing.T) {
	ctx := context.Background()
	mem := storage.NewMemoryStorage()
	future := `{"version":7,"todos":[]}`
	require.NoError(t, mem.SetItem(ctx, storage.DefaultKey, []byte(future)))

	ts := Open(ctx, mem)
	defer ts.Close(ctx)
	assert.Error(t, waitFor(t, ts.SetUserName("Sam")))

	data, _, err := mem.GetItem(ctx, storage.DefaultKey)
	require.NoError(t, err)
	assert.Equal(t, future, string(data))
}

func TestTaskStore_HydrateNotifies(t *testing.T) {
	mem := storage.NewMemoryStorage()
	require.NoError(t, mem.SetItem(context.Background(), storage.DefaultKey, []byte(`{"version":1,"userName":"Ana","todos":[]}`)))
	ts := newTestStore(t, mem)

	var got domain.State
	ts.Subscribe(func(s domain.State) { got = s })

	require.NoError(t, ts.Hydrate(context.Background()))
	assert.Equal(t, "Ana", got.Name())
}

func TestOpen(t *testing.T) {
	mem := storage.NewMemoryStorage()
	require.NoError(t, mem.SetItem(context.Background(), storage.DefaultKey, []byte("not json")))

	ts := Open(context.Background(), mem)
	defer ts.Close(context.Background())

	assert.Equal(t, domain.EmptyState(), ts.State())

	// a corrupt record is replaced by the next write
	require.NoError(t, waitFor(t, ts.SetUserName("Sam")))
	data, _, err := mem.GetItem(context.Background(), storage.DefaultKey)
	require.NoError(t, err)
	saved, err := domain.NewStateMapper().Decode(data)
	require.NoError(t, err)
	assert.Equal(t, "Sam", saved.Name())
}

func TestTaskStore_FailedWrite(t *testing.T) {
	ts := newTestStore(t, &failingStorage{storage.NewMemoryStorage()})

	task, w, err := ts.AddTodo(easy("kept"))
	require.NoError(t, err, "a failed write is not a mutation error")

	werr := waitFor(t, w)
	require.Error(t, werr)
	assert.ErrorIs(t, werr, errDiskFull)
	assert.True(t, errors.IsErrorType(werr, errors.ErrorTypeStorage))
	assert.Equal(t, werr, w.Err())
	assert.Equal(t, []domain.Task{task}, ts.Todos())
}

func TestWrite_ErrBeforeDone(t *testing.T) {
	w := newWrite(3)
	assert.NoError(t, w.Err())
	assert.Equal(t, uint64(3), w.Revision())

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	err := w.Wait(ctx)
	assert.True(t, errors.IsErrorType(err, errors.ErrorTypeTimeout))

	w.complete(nil)
	select {
	case <-w.Done():
	default:
		t.Fatal("Done should be closed")
	}
}

func TestTaskStore_CoalescesQueuedWrites(t *testing.T) {
	gated := newGatedStorage()
	ts := newTestStore(t, gated)

	first := ts.SetUserName("first")
	<-gated.entered // persister is now blocked inside the first SetItem

	_, second, err := ts.AddTodo(easy("a"))
	require.NoError(t, err)
	_, third, err := ts.AddTodo(easy("b"))
	require.NoError(t, err)

	close(gated.release)
	require.NoError(t, waitFor(t, first))
	require.NoError(t, waitFor(t, second))
	require.NoError(t, waitFor(t, third))

	assert.Equal(t, 2, gated.writeCount(), "queued snapshots share one write")
	assert.Equal(t, uint64(1), first.Revision())
	assert.Equal(t, uint64(3), third.Revision())

	data, _, err := gated.MemoryStorage.GetItem(context.Background(), storage.DefaultKey)
	require.NoError(t, err)
	saved, err := domain.NewStateMapper().Decode(data)
	require.NoError(t, err)
	assert.Equal(t, ts.State(), saved)
}

func TestTaskStore_WriteTimeout(t *testing.T) {
	gated := newGatedStorage()
	ts := newTestStore(t, gated, WithWriteTimeout(20*time.Millisecond))

	w := ts.SetUserName("slow")
	err := waitFor(t, w)
	require.Error(t, err)
	assert.ErrorIs(t, err, context.DeadlineExceeded)

	name, _ := ts.UserName()
	assert.Equal(t, "slow", name)
}

func TestTaskStore_FlushAndClose(t *testing.T) {
	ctx := context.Background()
	mem := storage.NewMemoryStorage()
	ts := New(mem)

	assert.NoError(t, ts.Flush(ctx), "nothing written yet")

	for i := 0; i < 5; i++ {
		_, _, err := ts.AddTodo(easy("t"))
		require.NoError(t, err)
	}
	require.NoError(t, ts.Flush(ctx))

	data, found, err := mem.GetItem(ctx, storage.DefaultKey)
	require.NoError(t, err)
	require.True(t, found)
	saved, err := domain.NewStateMapper().Decode(data)
	require.NoError(t, err)
	assert.Len(t, saved.Todos, 5)

	require.NoError(t, ts.Close(ctx))
	require.NoError(t, ts.Close(ctx))

	// mutations after Close still apply in memory, but cannot be saved
	_, w, err := ts.AddTodo(easy("late"))
	require.NoError(t, err)
	assert.ErrorIs(t, waitFor(t, w), storage.ErrClosed)
	assert.Len(t, ts.Todos(), 6)
}
