package services

import "errors"

// ValidationError reports bad input (ids, prices, date ranges) before
// any work starts.
type ValidationError struct {
	message string
}

func (e ValidationError) Error() string { return e.message }

func newValidationError(msg string) error {
	return ValidationError{message: msg}
}

// IsValidation lets callers distinguish rejected input from
// infrastructure failures.
func IsValidation(err error) bool {
	var v ValidationError
	return errors.As(err, &v)
}
