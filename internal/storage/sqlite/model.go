package sqlite

import "time"

// Item is one row of the kv_store table.
type Item struct {
	Key       string
	Value     []byte
	UpdatedAt time.Time
}
