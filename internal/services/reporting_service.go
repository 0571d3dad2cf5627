package services

import (
	"fmt"

	"todo/internal/domain"
)

// reportingServiceImpl implements the ReportingService interface
type reportingServiceImpl struct {
	src StateSource
}

// NewReportingService creates a new ReportingService instance
func NewReportingService(src StateSource) ReportingService {
	return &reportingServiceImpl{src: src}
}

// GetOverview builds the greeting, task count line and per-category usage
func (r *reportingServiceImpl) GetOverview() *Overview {
	state := r.src.State()

	categories := make([]CategoryUsage, 0, len(domain.Categories()))
	for _, c := range domain.Categories() {
		categories = append(categories, r.usage(state, c))
	}

	return &Overview{
		UserName:       state.UserName,
		Greeting:       Greeting(state.Name()),
		Summary:        TaskCountSummary(len(state.Todos)),
		TaskCount:      len(state.Todos),
		CompletedCount: state.DoneCount(),
		Categories:     categories,
		Todos:          ToItems(state.Todos),
	}
}

// GetCategoryUsage reports one category
func (r *reportingServiceImpl) GetCategoryUsage(c domain.Category) CategoryUsage {
	return r.usage(r.src.State(), c)
}

func (r *reportingServiceImpl) usage(state domain.State, c domain.Category) CategoryUsage {
	u := CategoryUsage{
		Category: c,
		Label:    c.Label(),
		Limit:    r.src.Limit(c),
	}
	for _, t := range state.Todos {
		if t.Category != c {
			continue
		}
		u.Count++
		if t.Done {
			u.Done++
		}
	}
	u.Full = u.Limit > 0 && u.Count >= u.Limit
	return u
}

// Greeting returns "Hello, <name>" or "Hello" when no name is set.
func Greeting(name string) string {
	if name == "" {
		return "Hello"
	}
	return "Hello, " + name
}

// TaskCountSummary returns "1 task today" or "N tasks today".
func TaskCountSummary(n int) string {
	if n == 1 {
		return "1 task today"
	}
	return fmt.Sprintf("%d tasks today", n)
}
