package domain

import (
	"fmt"
	"strings"
)

// Category is the fixed classification of a task.
type Category string

const (
	CategoryDeep Category = "deep"
	CategoryEasy Category = "easy"
)

// Default per-category capacity limits.
const (
	DefaultDeepCapacity = 3
	DefaultEasyCapacity = 7
)

// Categories lists every category in display order.
func Categories() []Category {
	return []Category{CategoryDeep, CategoryEasy}
}

// ParseCategory converts user input such as "Deep" or " easy " into a Category.
func ParseCategory(s string) (Category, error) {
	switch Category(strings.ToLower(strings.TrimSpace(s))) {
	case CategoryDeep:
		return CategoryDeep, nil
	case CategoryEasy:
		return CategoryEasy, nil
	default:
		return "", fmt.Errorf("unknown category %q: must be %q or %q", s, CategoryDeep, CategoryEasy)
	}
}

// IsValid reports whether c is one of the known categories.
func (c Category) IsValid() bool {
	return c == CategoryDeep || c == CategoryEasy
}

// Label returns the heading used when listing tasks of this category.
func (c Category) Label() string {
	switch c {
	case CategoryDeep:
		return "Deep Tasks"
	case CategoryEasy:
		return "Easy Tasks"
	default:
		return string(c)
	}
}

// DisplayName returns the capitalised short name, e.g. "Deep".
func (c Category) DisplayName() string {
	switch c {
	case CategoryDeep:
		return "Deep"
	case CategoryEasy:
		return "Easy"
	default:
		return string(c)
	}
}

// DefaultCapacity returns the built-in task limit for the category.
func (c Category) DefaultCapacity() int {
	switch c {
	case CategoryDeep:
		return DefaultDeepCapacity
	case CategoryEasy:
		return DefaultEasyCapacity
	default:
		return 0
	}
}

func (c Category) String() string {
	return string(c)
}
