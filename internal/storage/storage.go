// Package storage provides the durable key-value slot the task store persists into.
package storage

import (
	"context"
	"errors"
)

// DefaultKey is the fixed name under which the whole store state is saved.
const DefaultKey = "todo-storage"

// ErrClosed is returned by backends used after Close.
var ErrClosed = errors.New("storage is closed")

// Storage is a minimal asynchronous-storage style key-value interface.
// GetItem reports found=false, with a nil error, when the key has never been written.
type Storage interface {
	GetItem(ctx context.Context, key string) (value []byte, found bool, err error)
	SetItem(ctx context.Context, key string, value []byte) error
	Close() error
}
