package domain

// Task represents a single to-do item.
// This is a pure domain model without storage-specific concerns.
type Task struct {
	ID       string
	Title    string
	Details  string
	Category Category
	Done     bool
}

// TaskDraft is the input for creating a task. The store assigns ID and Done.
type TaskDraft struct {
	Title    string
	Details  string
	Category Category
}

// TaskPatch replaces the editable fields of an existing task.
type TaskPatch struct {
	Title    string
	Details  string
	Category Category
}

// NewTask creates a not-done Task from a draft with the given id.
func NewTask(id string, draft TaskDraft) Task {
	return Task{
		ID:       id,
		Title:    draft.Title,
		Details:  draft.Details,
		Category: draft.Category,
	}
}

// Apply returns a copy of t with the patch fields replaced. ID and Done are kept.
func (t Task) Apply(p TaskPatch) Task {
	t.Title = p.Title
	t.Details = p.Details
	t.Category = p.Category
	return t
}

// Toggled returns a copy of t with Done flipped.
func (t Task) Toggled() Task {
	t.Done = !t.Done
	return t
}

// String returns the task title for display purposes.
func (t Task) String() string {
	return t.Title
}
