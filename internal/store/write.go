package store

import (
	"context"
	"sync"
	"time"

	"todo/internal/domain"
	"todo/internal/errors"
	"todo/internal/logging"
	"todo/internal/storage"
)

// Write tracks persistence of one committed snapshot.
// Several Writes may be satisfied by the same storage call when the persister
// coalesces queued snapshots; they all complete with that call's outcome.
type Write struct {
	revision uint64
	done     chan struct{}
	err      error
}

func newWrite(revision uint64) *Write {
	return &Write{revision: revision, done: make(chan struct{})}
}

func completedWrite(revision uint64, err error) *Write {
	w := newWrite(revision)
	w.complete(err)
	return w
}

func (w *Write) complete(err error) {
	w.err = err
	close(w.done)
}

// Done is closed once the snapshot has been written or the write has failed.
func (w *Write) Done() <-chan struct{} {
	return w.done
}

// Err returns the outcome of the write. It is nil until Done is closed.
func (w *Write) Err() error {
	select {
	case <-w.done:
		return w.err
	default:
		return nil
	}
}

// Wait blocks until the write completes or ctx ends.
func (w *Write) Wait(ctx context.Context) error {
	select {
	case <-w.done:
		return w.err
	case <-ctx.Done():
		return errors.NewTimeoutError("wait for write", ctx.Err())
	}
}

// Revision is the store revision the write persists.
func (w *Write) Revision() uint64 {
	return w.revision
}

// pending is the newest unsaved snapshot plus every Write waiting on it.
type pending struct {
	state    domain.State
	revision uint64
	writes   []*Write
}

// persister owns all storage writes. It runs on a single goroutine and only
// ever saves the newest queued snapshot.
type persister struct {
	storage storage.Storage
	key     string
	mapper  *domain.StateMapper
	timeout time.Duration

	mu      sync.Mutex
	queued  *pending
	last    *Write
	closed  bool
	refused error
	wake    chan struct{}
	stop    chan struct{}
	stopped chan struct{}
}

func newPersister(s storage.Storage, key string, timeout time.Duration) *persister {
	p := &persister{
		storage: s,
		key:     key,
		mapper:  domain.NewStateMapper(),
		timeout: timeout,
		wake:    make(chan struct{}, 1),
		stop:    make(chan struct{}),
		stopped: make(chan struct{}),
	}
	go p.run()
	return p
}

// enqueue replaces any queued snapshot with state. It never blocks on I/O.
func (p *persister) enqueue(state domain.State, revision uint64) *Write {
	w := newWrite(revision)

	p.mu.Lock()
	if p.closed {
		p.mu.Unlock()
		w.complete(errors.NewStorageError("save state", storage.ErrClosed))
		return w
	}
	if p.refused != nil {
		p.last = w
		p.mu.Unlock()
		w.complete(errors.NewStorageError("save state", p.refused))
		return w
	}
	if p.queued == nil {
		p.queued = &pending{}
	}
	p.queued.state = state
	p.queued.revision = revision
	p.queued.writes = append(p.queued.writes, w)
	p.last = w
	p.mu.Unlock()

	select {
	case p.wake <- struct{}{}:
	default:
	}
	return w
}

func (p *persister) run() {
	defer close(p.stopped)
	for {
		select {
		case <-p.wake:
			p.drain()
		case <-p.stop:
			p.drain()
			return
		}
	}
}

func (p *persister) drain() {
	p.mu.Lock()
	job := p.queued
	p.queued = nil
	p.mu.Unlock()

	if job == nil {
		return
	}

	err := p.save(job.state)
	if err != nil {
		logging.Warnf("could not save state (revision %d): %v\n", job.revision, err)
	} else {
		logging.Debugf("saved revision %d (%d writes coalesced)\n", job.revision, len(job.writes))
	}
	for _, w := range job.writes {
		w.complete(err)
	}
}

func (p *persister) save(state domain.State) error {
	data, err := p.mapper.Encode(state)
	if err != nil {
		return errors.NewStorageError("encode state", err)
	}

	ctx := context.Background()
	if p.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, p.timeout)
		defer cancel()
	}

	if err := p.storage.SetItem(ctx, p.key, data); err != nil {
		if errors.IsAppError(err) {
			return err
		}
		return errors.NewStorageError("save state", err)
	}
	return nil
}

// refuseWrites makes every later snapshot fail with cause instead of reaching
// storage. A nil cause accepts writes again.
func (p *persister) refuseWrites(cause error) {
	p.mu.Lock()
	p.refused = cause
	p.mu.Unlock()
}

// latest returns the most recently enqueued write, or nil.
func (p *persister) latest() *Write {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.last
}

// close stops accepting snapshots and waits for the final one to be written.
func (p *persister) close(ctx context.Context) error {
	p.mu.Lock()
	if p.closed {
		p.mu.Unlock()
		return nil
	}
	p.closed = true
	p.mu.Unlock()

	close(p.stop)
	select {
	case <-p.stopped:
		return nil
	case <-ctx.Done():
		return errors.NewTimeoutError("close store", ctx.Err())
	}
}
