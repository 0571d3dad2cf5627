package validation

// ProfileValidator checks the user name.
type ProfileValidator struct {
	validator *Validator
}

func NewProfileValidator(v *Validator) *ProfileValidator {
	if v == nil {
		v = NewValidator()
	}
	return &ProfileValidator{validator: v}
}

// ValidateUserName returns the trimmed name or a validation error.
func (pv *ProfileValidator) ValidateUserName(name string) (string, error) {
	limits := pv.validator.Limits()
	name = pv.validator.TrimAndValidateString(name)

	ve := NewValidationError()
	if !pv.validator.IsNonEmptyString(name) {
		ve.AddRequiredError("name", "Please enter your name")
		return "", ve
	}
	if !pv.validator.IsValidStringLength(name, limits.NameMin, limits.NameMax) {
		ve.AddInvalidLengthError("name", name, limits.NameMin, limits.NameMax)
		return "", ve
	}
	return name, nil
}
