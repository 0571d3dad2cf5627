package store

import (
	"time"

	"github.com/google/uuid"

	"todo/internal/domain"
	"todo/internal/storage"
)

// DefaultWriteTimeout bounds a single SetItem call made by the persister.
const DefaultWriteTimeout = 5 * time.Second

type options struct {
	limits       map[domain.Category]int
	key          string
	newID        func() string
	writeTimeout time.Duration
}

func defaultOptions() options {
	limits := make(map[domain.Category]int, len(domain.Categories()))
	for _, c := range domain.Categories() {
		limits[c] = c.DefaultCapacity()
	}
	return options{
		limits:       limits,
		key:          storage.DefaultKey,
		newID:        uuid.NewString,
		writeTimeout: DefaultWriteTimeout,
	}
}

// Option configures a TaskStore.
type Option func(*options)

// WithCapacity sets the maximum number of tasks held in a category.
// A limit of zero or less removes the limit.
func WithCapacity(c domain.Category, limit int) Option {
	return func(o *options) {
		o.limits[c] = limit
	}
}

// WithStorageKey changes the key the state is saved under.
func WithStorageKey(key string) Option {
	return func(o *options) {
		if key != "" {
			o.key = key
		}
	}
}

// WithIDGenerator replaces the UUID generator used for new tasks.
func WithIDGenerator(fn func() string) Option {
	return func(o *options) {
		if fn != nil {
			o.newID = fn
		}
	}
}

// WithWriteTimeout bounds each storage write. Zero disables the bound.
func WithWriteTimeout(d time.Duration) Option {
	return func(o *options) {
		o.writeTimeout = d
	}
}
