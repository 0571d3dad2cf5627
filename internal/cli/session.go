package cli

import (
	"context"
	stderrors "errors"
	"fmt"

	"todo/internal/api"
	"todo/internal/config"
	"todo/internal/domain"
	"todo/internal/logging"
	"todo/internal/storage"
	"todo/internal/store"
	"todo/internal/validation"
)

// Session is an open task store and the API over it, for the lifetime of one command.
type Session struct {
	API   api.TodoAPI
	Close func(ctx context.Context) error
}

// OpenFunc opens a session for the resolved configuration
type OpenFunc func(ctx context.Context, cfg *config.Config) (*Session, error)

// DefaultOpener creates the storage backend for env and cfg and opens the store on it.
// Closing the session flushes pending writes and closes the backend.
func DefaultOpener(env config.Environment) OpenFunc {
	return func(ctx context.Context, cfg *config.Config) (*Session, error) {
		backend, err := config.NewStorageFactory(env, cfg).CreateStorage()
		if err != nil {
			return nil, fmt.Errorf("failed to open storage: %w", err)
		}

		session, err := openSession(ctx, backend, cfg)
		if err != nil {
			backend.Close()
			return nil, err
		}
		closeStore := session.Close
		session.Close = func(ctx context.Context) error {
			storeErr := closeStore(ctx)
			if err := backend.Close(); err != nil && storeErr == nil {
				return fmt.Errorf("failed to close storage: %w", err)
			}
			return storeErr
		}
		return session, nil
	}
}

// StorageOpener opens sessions on an existing backend and leaves it open
// afterwards, so several commands can share one backend.
func StorageOpener(backend storage.Storage) OpenFunc {
	return func(ctx context.Context, cfg *config.Config) (*Session, error) {
		return openSession(ctx, backend, cfg)
	}
}

// openSession hydrates a store from backend. A corrupt record is logged and
// the session starts empty; a record that could not be read at all fails the
// session so no command runs against a list that would overwrite it.
func openSession(ctx context.Context, backend storage.Storage, cfg *config.Config) (*Session, error) {
	ts := store.New(backend,
		store.WithStorageKey(cfg.Storage.Key),
		store.WithWriteTimeout(cfg.GetWriteTimeout()),
		store.WithCapacity(domain.CategoryDeep, cfg.Limits.DeepCapacity),
		store.WithCapacity(domain.CategoryEasy, cfg.Limits.EasyCapacity),
	)
	if err := ts.Hydrate(ctx); err != nil {
		if stderrors.Is(err, store.ErrSavedStateUnreadable) {
			ts.Close(ctx)
			return nil, fmt.Errorf("failed to load saved tasks: %w", err)
		}
		logging.Warnf("starting with an empty task list: %v\n", err)
	}

	limits := validation.NewValidatorWithLimits(validation.Limits{
		NameMin:    cfg.Limits.NameMin,
		NameMax:    cfg.Limits.NameMax,
		TitleMin:   cfg.Limits.TitleMin,
		TitleMax:   cfg.Limits.TitleMax,
		DetailsMax: cfg.Limits.DetailsMax,
	})
	return &Session{
		API: api.New(ts,
			api.WithWaitForWrites(cfg.GetWriteTimeout()),
			api.WithValidator(limits),
		),
		Close: ts.Close,
	}, nil
}
