package validation

import (
	"todo/internal/domain"
)

const (
	MessageSelectCategory = "Please select Deep or Easy task first"
	MessageEnterTitle     = "Please enter a title"
)

// TodoValidator checks task input before it reaches the store
type TodoValidator struct {
	validator *Validator
}

// NewTodoValidator creates a new todo validator
func NewTodoValidator(v *Validator) *TodoValidator {
	if v == nil {
		v = NewValidator()
	}
	return &TodoValidator{validator: v}
}

// ValidateDraft validates a new task and returns it with title and details trimmed.
// The category is checked first, matching the order the editor reports problems.
func (tv *TodoValidator) ValidateDraft(draft domain.TaskDraft) (domain.TaskDraft, error) {
	title, details, err := tv.validateFields(draft.Title, draft.Details, draft.Category)
	if err != nil {
		return domain.TaskDraft{}, err
	}
	return domain.TaskDraft{Title: title, Details: details, Category: draft.Category}, nil
}

// ValidatePatch validates an edit and returns it cleaned
func (tv *TodoValidator) ValidatePatch(patch domain.TaskPatch) (domain.TaskPatch, error) {
	title, details, err := tv.validateFields(patch.Title, patch.Details, patch.Category)
	if err != nil {
		return domain.TaskPatch{}, err
	}
	return domain.TaskPatch{Title: title, Details: details, Category: patch.Category}, nil
}

func (tv *TodoValidator) validateFields(title, details string, category domain.Category) (string, string, error) {
	ve := NewValidationError()
	limits := tv.validator.Limits()

	switch {
	case category == "":
		ve.AddRequiredError("category", MessageSelectCategory)
	case !tv.validator.IsValidCategory(category):
		ve.AddInvalidValueError("category", category, "must be deep or easy")
	}

	title = tv.validator.TrimAndValidateString(title)
	switch {
	case !tv.validator.IsNonEmptyString(title):
		ve.AddRequiredError("title", MessageEnterTitle)
	case !tv.validator.IsValidStringLength(title, limits.TitleMin, limits.TitleMax):
		ve.AddInvalidLengthError("title", title, limits.TitleMin, limits.TitleMax)
	}

	details = tv.validator.TrimAndValidateString(details)
	if !tv.validator.IsValidStringLength(details, 0, limits.DetailsMax) {
		ve.AddInvalidLengthError("details", details, 0, limits.DetailsMax)
	}

	if ve.HasErrors() {
		return "", "", ve
	}
	return title, details, nil
}
