package validation

import (
	"strings"
	"unicode/utf8"

	"todo/internal/domain"
)

// Limits are the input length bounds, counted in characters after trimming.
type Limits struct {
	NameMin    int
	NameMax    int
	TitleMin   int
	TitleMax   int
	DetailsMax int
}

// DefaultLimits returns the limits used by the editors.
func DefaultLimits() Limits {
	return Limits{
		NameMin:    2,
		NameMax:    10,
		TitleMin:   2,
		TitleMax:   40,
		DetailsMax: 120,
	}
}

// Validator provides common validation utilities
type Validator struct {
	limits Limits
}

// NewValidator creates a new validator instance
func NewValidator() *Validator {
	return &Validator{limits: DefaultLimits()}
}

// NewValidatorWithLimits creates a validator with custom bounds
func NewValidatorWithLimits(limits Limits) *Validator {
	return &Validator{limits: limits}
}

// Limits returns the bounds this validator enforces
func (v *Validator) Limits() Limits {
	return v.limits
}

// IsNonEmptyString checks if a string is not empty after trimming whitespace
func (v *Validator) IsNonEmptyString(s string) bool {
	return strings.TrimSpace(s) != ""
}

// IsValidStringLength checks if the trimmed character count is within [min, max].
// A max of zero means no upper bound.
func (v *Validator) IsValidStringLength(s string, min, max int) bool {
	length := utf8.RuneCountInString(strings.TrimSpace(s))
	if length < min {
		return false
	}
	return max <= 0 || length <= max
}

// IsValidCategory checks that c is deep or easy
func (v *Validator) IsValidCategory(c domain.Category) bool {
	return c.IsValid()
}

// TrimAndValidateString trims whitespace and returns the cleaned string
func (v *Validator) TrimAndValidateString(s string) string {
	return strings.TrimSpace(s)
}
