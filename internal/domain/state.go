package domain

// State is the whole application state: the user's name and the ordered task list.
// The zero value is the empty default state.
type State struct {
	UserName *string
	Todos    []Task
}

// EmptyState returns the default state used before hydration or when nothing is persisted.
func EmptyState() State {
	return State{Todos: []Task{}}
}

// Clone returns a deep copy so the receiver's slice can't be mutated through the result.
func (s State) Clone() State {
	out := State{Todos: make([]Task, len(s.Todos))}
	copy(out.Todos, s.Todos)
	if s.UserName != nil {
		name := *s.UserName
		out.UserName = &name
	}
	return out
}

// Name returns the user name or "" when none has been set.
func (s State) Name() string {
	if s.UserName == nil {
		return ""
	}
	return *s.UserName
}

// Find returns the task with the given id and its position.
func (s State) Find(id string) (Task, int, bool) {
	for i, t := range s.Todos {
		if t.ID == id {
			return t, i, true
		}
	}
	return Task{}, -1, false
}

// TasksIn returns the tasks of one category in list order.
func (s State) TasksIn(c Category) []Task {
	out := make([]Task, 0, len(s.Todos))
	for _, t := range s.Todos {
		if t.Category == c {
			out = append(out, t)
		}
	}
	return out
}

// Count returns the number of tasks in a category.
func (s State) Count(c Category) int {
	n := 0
	for _, t := range s.Todos {
		if t.Category == c {
			n++
		}
	}
	return n
}

// DoneCount returns the number of completed tasks.
func (s State) DoneCount() int {
	n := 0
	for _, t := range s.Todos {
		if t.Done {
			n++
		}
	}
	return n
}
