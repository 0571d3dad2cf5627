package sqlite

// Scanner interface defines the common scanning behavior for both sql.Row and sql.Rows
type Scanner interface {
	Scan(dest ...interface{}) error
}

// ScanItem scans a single kv_store row
func ScanItem(scanner Scanner) (*Item, error) {
	item := &Item{}
	var value, updatedAt string

	if err := scanner.Scan(&item.Key, &value, &updatedAt); err != nil {
		return nil, err
	}

	item.Value = []byte(value)
	if updatedAt != "" {
		t, err := ParseTimeFromDB(updatedAt)
		if err != nil {
			return nil, err
		}
		item.UpdatedAt = t
	}
	return item, nil
}
