package services

import (
	"todo/internal/domain"
)

// StateSource is the read side of the task store the services work from.
type StateSource interface {
	State() domain.State
	Limit(c domain.Category) int
}

// TodoItem is a task as shown to users, with its 1-based list position.
type TodoItem struct {
	Position int             `json:"position,omitempty"`
	ID       string          `json:"id"`
	Title    string          `json:"title"`
	Details  string          `json:"details"`
	Category domain.Category `json:"category"`
	Done     bool            `json:"done"`
}

// CategoryUsage reports how full one category is.
type CategoryUsage struct {
	Category domain.Category `json:"category"`
	Label    string          `json:"label"`
	Count    int             `json:"count"`
	Done     int             `json:"done"`
	Limit    int             `json:"limit"`
	Full     bool            `json:"full"`
}

// Overview is everything the home screen shows.
type Overview struct {
	UserName       *string         `json:"userName"`
	Greeting       string          `json:"greeting"`
	Summary        string          `json:"summary"`
	TaskCount      int             `json:"taskCount"`
	CompletedCount int             `json:"completedCount"`
	Categories     []CategoryUsage `json:"categories"`
	Todos          []TodoItem      `json:"todos"`
}

// StatusFilter narrows a search by completion.
type StatusFilter string

const (
	StatusAll     StatusFilter = "all"
	StatusDone    StatusFilter = "done"
	StatusPending StatusFilter = "pending"
)

// SearchCriteria represents criteria for searching tasks
type SearchCriteria struct {
	Category   *domain.Category `json:"category,omitempty"`
	TextFilter string           `json:"text_filter,omitempty"`
	Status     StatusFilter     `json:"status,omitempty"`
}

// SearchService finds tasks
type SearchService interface {
	// ResolveRef accepts a full id, a 1-based list position or a unique id prefix.
	ResolveRef(ref string) (domain.Task, error)
	SearchTasks(criteria SearchCriteria) []TodoItem
}

// ReportingService summarises the current state
type ReportingService interface {
	GetOverview() *Overview
	GetCategoryUsage(c domain.Category) CategoryUsage
}

// ServiceContainer manages all services and their dependencies
type ServiceContainer struct {
	SearchService    SearchService
	ReportingService ReportingService
}

// NewServiceContainer wires the services over one state source
func NewServiceContainer(src StateSource) *ServiceContainer {
	return &ServiceContainer{
		SearchService:    NewSearchService(src),
		ReportingService: NewReportingService(src),
	}
}

// ToItems converts tasks to TodoItems, numbering them from 1 in the order given.
func ToItems(tasks []domain.Task) []TodoItem {
	items := make([]TodoItem, len(tasks))
	for i, t := range tasks {
		items[i] = ToItem(t, i+1)
	}
	return items
}

// ToItem converts one task.
func ToItem(t domain.Task, position int) TodoItem {
	return TodoItem{
		Position: position,
		ID:       t.ID,
		Title:    t.Title,
		Details:  t.Details,
		Category: t.Category,
		Done:     t.Done,
	}
}
