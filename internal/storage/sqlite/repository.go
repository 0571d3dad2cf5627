package sqlite

import (
	"context"
	"database/sql"
	"time"

	"todo/internal/errors"
	"todo/internal/storage"
	"todo/internal/storage/sqlite/migrations"

	_ "modernc.org/sqlite"
)

// Repository is a storage.Storage backed by a SQLite kv_store table.
type Repository struct {
	db  *sql.DB
	now func() time.Time
}

var _ storage.Storage = (*Repository)(nil)

// New opens (or creates) the database at dbPath and runs pending migrations.
// ":memory:" gives a private in-memory database.
func New(dbPath string) (*Repository, error) {
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, errors.NewStorageError("open database", err)
	}
	// one connection: SQLite serializes writers anyway, and ":memory:" is per connection
	db.SetMaxOpenConns(1)

	if err := migrations.RunMigrations(db); err != nil {
		db.Close()
		return nil, errors.NewStorageError("run migrations", err)
	}

	return &Repository{db: db, now: time.Now}, nil
}

// Close closes the database connection
func (r *Repository) Close() error {
	return r.db.Close()
}

// GetItem returns the value stored under key
func (r *Repository) GetItem(ctx context.Context, key string) ([]byte, bool, error) {
	item, err := r.GetItemWithMeta(ctx, key)
	if err != nil {
		if errors.IsErrorType(err, errors.ErrorTypeNotFound) {
			return nil, false, nil
		}
		return nil, false, err
	}
	return item.Value, true, nil
}

// GetItemWithMeta returns the full row for key, or a not-found AppError
func (r *Repository) GetItemWithMeta(ctx context.Context, key string) (*Item, error) {
	query := `SELECT key, value, updated_at FROM kv_store WHERE key = ?`
	return QuerySingle(ctx, r.db, query, ScanItem, "storage item", key, key)
}

// SetItem inserts or replaces the value stored under key
func (r *Repository) SetItem(ctx context.Context, key string, value []byte) error {
	query := `
	INSERT INTO kv_store (key, value, updated_at)
	VALUES (?, ?, ?)
	ON CONFLICT(key) DO UPDATE SET value = excluded.value, updated_at = excluded.updated_at`

	return ExecuteWithRowsAffected(ctx, r.db, query, "storage item", key, key, string(value), FormatTimeForDB(r.now()))
}

