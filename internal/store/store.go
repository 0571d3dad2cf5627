// Package store holds the in-memory task list and user name, enforces the
// per-category limits, and persists every committed change in the background.
package store

import (
	"context"
	stderrors "errors"
	"fmt"
	"sort"
	"strings"
	"sync"

	"todo/internal/domain"
	"todo/internal/errors"
	"todo/internal/logging"
	"todo/internal/storage"
)

const maxIDAttempts = 8

// ErrSavedStateUnreadable marks a hydration failure that leaves the saved
// record in place: the backend could not be read, or the record was written
// by a newer schema. Writes are refused until a later Hydrate succeeds.
var ErrSavedStateUnreadable = stderrors.New("saved state could not be read")

// TaskStore is the single source of truth for the application state.
// All methods are safe for concurrent use.
type TaskStore struct {
	opts      options
	storage   storage.Storage
	persister *persister

	mu       sync.RWMutex
	state    domain.State
	revision uint64

	subMu       sync.Mutex
	subscribers map[uint64]func(domain.State)
	nextSubID   uint64

	// dispatchMu serializes subscriber calls; delivered is the newest
	// revision handed to them.
	dispatchMu sync.Mutex
	delivered  uint64
}

// New creates a store with the empty default state. Call Hydrate to load
// previously saved data.
func New(s storage.Storage, opts ...Option) *TaskStore {
	o := defaultOptions()
	for _, opt := range opts {
		opt(&o)
	}
	return &TaskStore{
		opts:        o,
		storage:     s,
		persister:   newPersister(s, o.key, o.writeTimeout),
		state:       domain.EmptyState(),
		subscribers: make(map[uint64]func(domain.State)),
	}
}

// Open creates a store and hydrates it from storage. A failed hydration is
// logged and leaves the store at the empty default state. When the saved
// record could not be read, writes stay refused so it is not overwritten.
func Open(ctx context.Context, s storage.Storage, opts ...Option) *TaskStore {
	ts := New(s, opts...)
	if err := ts.Hydrate(ctx); err != nil {
		logging.Warnf("starting with an empty task list: %v\n", err)
	}
	return ts
}

// Hydrate replaces the in-memory state with the saved one. Missing data
// yields the empty state with a nil error. Unreadable data also yields the
// empty state; the error is returned so the caller can report it.
//
// A corrupt record is replaced by the next write. A failed read or a record
// from a newer schema returns an error wrapping ErrSavedStateUnreadable and
// every write fails until a later Hydrate succeeds.
func (ts *TaskStore) Hydrate(ctx context.Context) error {
	loaded, loadErr := ts.load(ctx)

	if stderrors.Is(loadErr, ErrSavedStateUnreadable) {
		ts.persister.refuseWrites(loadErr)
	} else {
		ts.persister.refuseWrites(nil)
	}

	ts.mu.Lock()
	ts.state = loaded
	ts.revision++
	snapshot, revision := ts.state, ts.revision
	ts.mu.Unlock()

	ts.notify(snapshot, revision)
	return loadErr
}

func (ts *TaskStore) load(ctx context.Context) (domain.State, error) {
	data, found, err := ts.storage.GetItem(ctx, ts.opts.key)
	if err != nil {
		return domain.EmptyState(), errors.NewStorageError("load state", fmt.Errorf("%w: %w", ErrSavedStateUnreadable, err))
	}
	if !found {
		logging.Debugf("no saved state under %q\n", ts.opts.key)
		return domain.EmptyState(), nil
	}

	state, err := domain.NewStateMapper().Decode(data)
	var versionErr *domain.UnsupportedVersionError
	switch {
	case stderrors.As(err, &versionErr):
		return domain.EmptyState(), errors.NewStorageError("load state", fmt.Errorf("%w: %w", ErrSavedStateUnreadable, err))
	case err != nil:
		return domain.EmptyState(), errors.WrapError(err, errors.ErrorTypeStorage, "saved state is unreadable")
	}
	logging.Debugf("hydrated %d tasks from %q\n", len(state.Todos), ts.opts.key)
	return state, nil
}

// SetUserName trims and stores the user's name.
func (ts *TaskStore) SetUserName(name string) *Write {
	name = strings.TrimSpace(name)
	w, _ := ts.commit(func(s domain.State) (domain.State, error) {
		s.UserName = &name
		return s, nil
	})
	return w
}

// AddTodo appends a new not-done task with a fresh id.
// It fails with a capacity error when the draft's category is full.
func (ts *TaskStore) AddTodo(draft domain.TaskDraft) (domain.Task, *Write, error) {
	var added domain.Task
	w, err := ts.commit(func(s domain.State) (domain.State, error) {
		if err := ts.checkCapacity(s, draft.Category); err != nil {
			return s, err
		}
		id, err := ts.uniqueID(s)
		if err != nil {
			return s, err
		}
		added = domain.NewTask(id, draft)
		todos := make([]domain.Task, len(s.Todos), len(s.Todos)+1)
		copy(todos, s.Todos)
		s.Todos = append(todos, added)
		return s, nil
	})
	if err != nil {
		return domain.Task{}, nil, err
	}
	return added, w, nil
}

// UpdateTodo replaces the title, details and category of the task with id.
// ID and Done are preserved.
func (ts *TaskStore) UpdateTodo(id string, patch domain.TaskPatch) (domain.Task, *Write, error) {
	var updated domain.Task
	w, err := ts.commit(func(s domain.State) (domain.State, error) {
		current, idx, ok := s.Find(id)
		if !ok {
			return s, errors.NewNotFoundError("task", id)
		}
		if patch.Category != current.Category {
			if err := ts.checkCapacity(s, patch.Category); err != nil {
				return s, err
			}
		}
		updated = current.Apply(patch)
		s.Todos = replaceAt(s.Todos, idx, updated)
		return s, nil
	})
	if err != nil {
		return domain.Task{}, nil, err
	}
	return updated, w, nil
}

// DeleteTodo removes the task with id.
func (ts *TaskStore) DeleteTodo(id string) (*Write, error) {
	return ts.commit(func(s domain.State) (domain.State, error) {
		_, idx, ok := s.Find(id)
		if !ok {
			return s, errors.NewNotFoundError("task", id)
		}
		todos := make([]domain.Task, 0, len(s.Todos)-1)
		todos = append(todos, s.Todos[:idx]...)
		s.Todos = append(todos, s.Todos[idx+1:]...)
		return s, nil
	})
}

// ToggleTodo flips the done flag of the task with id.
func (ts *TaskStore) ToggleTodo(id string) (domain.Task, *Write, error) {
	var toggled domain.Task
	w, err := ts.commit(func(s domain.State) (domain.State, error) {
		current, idx, ok := s.Find(id)
		if !ok {
			return s, errors.NewNotFoundError("task", id)
		}
		toggled = current.Toggled()
		s.Todos = replaceAt(s.Todos, idx, toggled)
		return s, nil
	})
	if err != nil {
		return domain.Task{}, nil, err
	}
	return toggled, w, nil
}

// DeepTasks returns the deep tasks in list order.
func (ts *TaskStore) DeepTasks() []domain.Task {
	return ts.TasksIn(domain.CategoryDeep)
}

// EasyTasks returns the easy tasks in list order.
func (ts *TaskStore) EasyTasks() []domain.Task {
	return ts.TasksIn(domain.CategoryEasy)
}

// TasksIn returns the tasks of one category, computed from the current state.
func (ts *TaskStore) TasksIn(c domain.Category) []domain.Task {
	ts.mu.RLock()
	defer ts.mu.RUnlock()
	return ts.state.TasksIn(c)
}

// State returns a copy of the current state.
func (ts *TaskStore) State() domain.State {
	ts.mu.RLock()
	defer ts.mu.RUnlock()
	return ts.state.Clone()
}

// UserName returns the stored name and whether one has been set.
func (ts *TaskStore) UserName() (string, bool) {
	ts.mu.RLock()
	defer ts.mu.RUnlock()
	return ts.state.Name(), ts.state.UserName != nil
}

// Todos returns a copy of the task list in insertion order.
func (ts *TaskStore) Todos() []domain.Task {
	return ts.State().Todos
}

// Limit returns the capacity of a category; zero means unlimited.
func (ts *TaskStore) Limit(c domain.Category) int {
	if n := ts.opts.limits[c]; n > 0 {
		return n
	}
	return 0
}

// Subscribe registers fn to receive committed snapshots in revision order.
// fn runs on a mutating goroutine after the store lock is released, so it may
// read the store, but it must not mutate it. A snapshot older than one
// already delivered is skipped, so the last call always carries the newest
// state.
func (ts *TaskStore) Subscribe(fn func(domain.State)) (unsubscribe func()) {
	ts.subMu.Lock()
	id := ts.nextSubID
	ts.nextSubID++
	ts.subscribers[id] = fn
	ts.subMu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() {
			ts.subMu.Lock()
			delete(ts.subscribers, id)
			ts.subMu.Unlock()
		})
	}
}

// Flush waits until the most recent change has been written.
func (ts *TaskStore) Flush(ctx context.Context) error {
	w := ts.persister.latest()
	if w == nil {
		return nil
	}
	return w.Wait(ctx)
}

// Close writes any queued snapshot and stops the persister. The storage
// backend is owned by the caller and is not closed. Later mutations still
// apply in memory but their writes fail.
func (ts *TaskStore) Close(ctx context.Context) error {
	if err := ts.persister.close(ctx); err != nil {
		return err
	}
	if w := ts.persister.latest(); w != nil {
		return w.Err()
	}
	return nil
}

// commit applies mutate to the current state. On success the new state is
// published, handed to the persister and broadcast to subscribers.
func (ts *TaskStore) commit(mutate func(domain.State) (domain.State, error)) (*Write, error) {
	ts.mu.Lock()
	next, err := mutate(ts.state)
	if err != nil {
		ts.mu.Unlock()
		return nil, err
	}
	ts.state = next
	ts.revision++
	revision := ts.revision
	w := ts.persister.enqueue(next, revision)
	ts.mu.Unlock()

	ts.notify(next, revision)
	return w, nil
}

func (ts *TaskStore) notify(s domain.State, revision uint64) {
	ts.dispatchMu.Lock()
	defer ts.dispatchMu.Unlock()
	if revision <= ts.delivered {
		return
	}
	ts.delivered = revision

	ts.subMu.Lock()
	ids := make([]uint64, 0, len(ts.subscribers))
	for id := range ts.subscribers {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	fns := make([]func(domain.State), 0, len(ids))
	for _, id := range ids {
		fns = append(fns, ts.subscribers[id])
	}
	ts.subMu.Unlock()

	for _, fn := range fns {
		fn(s.Clone())
	}
}

func (ts *TaskStore) checkCapacity(s domain.State, c domain.Category) error {
	limit := ts.Limit(c)
	if limit > 0 && s.Count(c) >= limit {
		return errors.NewCapacityError(c.String(), c.DisplayName()+" tasks", limit)
	}
	return nil
}

func (ts *TaskStore) uniqueID(s domain.State) (string, error) {
	for i := 0; i < maxIDAttempts; i++ {
		id := ts.opts.newID()
		if _, _, taken := s.Find(id); id != "" && !taken {
			return id, nil
		}
	}
	return "", fmt.Errorf("could not generate a unique task id after %d attempts", maxIDAttempts)
}

func replaceAt(todos []domain.Task, idx int, t domain.Task) []domain.Task {
	out := make([]domain.Task, len(todos))
	copy(out, todos)
	out[idx] = t
	return out
}
