package services

import (
	"strconv"
	"strings"

	"todo/internal/domain"
	"todo/internal/errors"
)

// searchServiceImpl implements the SearchService interface
type searchServiceImpl struct {
	src StateSource
}

// NewSearchService creates a new SearchService instance
func NewSearchService(src StateSource) SearchService {
	return &searchServiceImpl{src: src}
}

// ResolveRef looks a reference up in this order: exact id, list position,
// id prefix. A prefix shared by several tasks is rejected.
func (s *searchServiceImpl) ResolveRef(ref string) (domain.Task, error) {
	ref = strings.TrimSpace(ref)
	if ref == "" {
		return domain.Task{}, errors.NewInvalidInputError("task", ref, "a task id or number is required")
	}

	state := s.src.State()
	if task, _, ok := state.Find(ref); ok {
		return task, nil
	}

	if n, err := strconv.Atoi(ref); err == nil && n >= 1 && n <= len(state.Todos) {
		return state.Todos[n-1], nil
	}

	var matches []domain.Task
	for _, t := range state.Todos {
		if strings.HasPrefix(t.ID, ref) {
			matches = append(matches, t)
		}
	}
	switch len(matches) {
	case 0:
		return domain.Task{}, errors.NewNotFoundError("task", ref)
	case 1:
		return matches[0], nil
	default:
		return domain.Task{}, errors.NewInvalidInputError("task", ref, strconv.Itoa(len(matches))+" tasks match this prefix")
	}
}

// matchesTextFilter checks if a task title or details contain the text filter
func (s *searchServiceImpl) matchesTextFilter(t domain.Task, textFilter string) bool {
	if textFilter == "" {
		return true
	}
	needle := strings.ToLower(textFilter)
	return strings.Contains(strings.ToLower(t.Title), needle) ||
		strings.Contains(strings.ToLower(t.Details), needle)
}

func (s *searchServiceImpl) matchesStatus(t domain.Task, status StatusFilter) bool {
	switch status {
	case StatusDone:
		return t.Done
	case StatusPending:
		return !t.Done
	default:
		return true
	}
}

// SearchTasks returns matching tasks. Positions refer to the full list so
// they can be passed back to ResolveRef.
func (s *searchServiceImpl) SearchTasks(criteria SearchCriteria) []TodoItem {
	state := s.src.State()
	items := make([]TodoItem, 0, len(state.Todos))
	for i, t := range state.Todos {
		if criteria.Category != nil && t.Category != *criteria.Category {
			continue
		}
		if !s.matchesStatus(t, criteria.Status) || !s.matchesTextFilter(t, criteria.TextFilter) {
			continue
		}
		items = append(items, ToItem(t, i+1))
	}
	return items
}
