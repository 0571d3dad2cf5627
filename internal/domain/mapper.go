package domain

import (
	"encoding/json"
	"fmt"
)

// CurrentSchemaVersion is written into every persisted state record.
const CurrentSchemaVersion = 1

// PersistedTask is the storage representation of a Task.
type PersistedTask struct {
	ID       string `json:"id"`
	Title    string `json:"title"`
	Details  string `json:"details"`
	Category string `json:"category"`
	Done     bool   `json:"done"`
}

// PersistedState is the record stored in the durable key-value slot.
type PersistedState struct {
	Version  int             `json:"version"`
	UserName *string         `json:"userName"`
	Todos    []PersistedTask `json:"todos"`
}

// legacyEnvelope is the {"state": ..., "version": 0} wrapper written by the
// original persistence middleware.
type legacyEnvelope struct {
	State   json.RawMessage `json:"state"`
	Version *int            `json:"version"`
}

// UnsupportedVersionError is returned when a record was written by a newer schema.
type UnsupportedVersionError struct {
	Version int
}

func (e *UnsupportedVersionError) Error() string {
	return fmt.Sprintf("unsupported state schema version %d (max %d)", e.Version, CurrentSchemaVersion)
}

// StateMapper handles conversion between the domain State and its persisted form.
type StateMapper struct{}

// NewStateMapper creates a new StateMapper instance.
func NewStateMapper() *StateMapper {
	return &StateMapper{}
}

// ToPersisted converts a domain State to its storage record.
func (m *StateMapper) ToPersisted(s State) PersistedState {
	todos := make([]PersistedTask, len(s.Todos))
	for i, t := range s.Todos {
		todos[i] = PersistedTask{
			ID:       t.ID,
			Title:    t.Title,
			Details:  t.Details,
			Category: string(t.Category),
			Done:     t.Done,
		}
	}
	return PersistedState{
		Version:  CurrentSchemaVersion,
		UserName: s.UserName,
		Todos:    todos,
	}
}

// FromPersisted converts a storage record to a domain State.
// Tasks with an empty id, an unknown category, or a repeated id are dropped.
func (m *StateMapper) FromPersisted(p PersistedState) State {
	s := EmptyState()
	if p.UserName != nil {
		name := *p.UserName
		s.UserName = &name
	}
	seen := make(map[string]bool, len(p.Todos))
	for _, pt := range p.Todos {
		c := Category(pt.Category)
		if pt.ID == "" || !c.IsValid() || seen[pt.ID] {
			continue
		}
		seen[pt.ID] = true
		s.Todos = append(s.Todos, Task{
			ID:       pt.ID,
			Title:    pt.Title,
			Details:  pt.Details,
			Category: c,
			Done:     pt.Done,
		})
	}
	return s
}

// Encode serializes a State as the current JSON record.
func (m *StateMapper) Encode(s State) ([]byte, error) {
	return json.Marshal(m.ToPersisted(s))
}

// Decode parses a stored record. It accepts the current versioned layout,
// the unversioned bare layout and the legacy {"state": ...} envelope.
func (m *StateMapper) Decode(data []byte) (State, error) {
	var env legacyEnvelope
	if err := json.Unmarshal(data, &env); err != nil {
		return State{}, fmt.Errorf("decode state: %w", err)
	}
	if len(env.State) > 0 && string(env.State) != "null" {
		var inner PersistedState
		if err := json.Unmarshal(env.State, &inner); err != nil {
			return State{}, fmt.Errorf("decode legacy state: %w", err)
		}
		return m.FromPersisted(inner), nil
	}

	var p PersistedState
	if err := json.Unmarshal(data, &p); err != nil {
		return State{}, fmt.Errorf("decode state: %w", err)
	}
	if p.Version > CurrentSchemaVersion || p.Version < 0 {
		return State{}, &UnsupportedVersionError{Version: p.Version}
	}
	return m.FromPersisted(p), nil
}
