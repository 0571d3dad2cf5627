package cli

import (
	"fmt"

	"todo/internal/errors"
	"todo/internal/logging"
	"todo/internal/validation"
)

// ErrorHandler provides centralized error handling for command handlers
type ErrorHandler struct{}

// NewErrorHandler creates a new error handler
func NewErrorHandler() *ErrorHandler {
	return &ErrorHandler{}
}

// Handle provides user-friendly error messages for validation and other errors.
// Failures that are not the user's fault are logged in full at debug level.
func (eh *ErrorHandler) Handle(operation string, err error) error {
	eh.logCause(operation, err)

	if validationErr, ok := err.(*validation.ValidationError); ok {
		return fmt.Errorf("failed to %s: %s", operation, validationErr.GetUserFriendlyMessage())
	}

	if _, ok := errors.AsAppError(err); ok {
		return fmt.Errorf("failed to %s: %s", operation, errors.GetUserMessage(err))
	}

	return fmt.Errorf("failed to %s: %w", operation, err)
}

// HandleSimple provides user-friendly error messages without operation context
func (eh *ErrorHandler) HandleSimple(err error) error {
	eh.logCause("", err)

	if validationErr, ok := err.(*validation.ValidationError); ok {
		return fmt.Errorf("%s", validationErr.GetUserFriendlyMessage())
	}

	if _, ok := errors.AsAppError(err); ok {
		return fmt.Errorf("%s", errors.GetUserMessage(err))
	}

	return err
}

// IsStorageError reports whether a change was applied but could not be saved
func (eh *ErrorHandler) IsStorageError(err error) bool {
	return errors.IsErrorType(err, errors.ErrorTypeStorage) || errors.IsErrorType(err, errors.ErrorTypeTimeout)
}

func (eh *ErrorHandler) logCause(operation string, err error) {
	if err == nil || !errors.ShouldLogError(err) {
		return
	}
	if operation == "" {
		logging.Debugf("%v\n", err)
		return
	}
	logging.Debugf("%s: %v\n", operation, err)
}
