package services

import (
	"errors"
	"fmt"

	handyhub_errors "handyhub/pkg/errors"
)

// storeErr wraps a repository failure. Domain errors keep their kind, the
// rest become ErrInternal.
func storeErr(op string, err error) error {
	switch {
	case errors.Is(err, handyhub_errors.ErrNotFound),
		errors.Is(err, handyhub_errors.ErrInvalidInput),
		errors.Is(err, handyhub_errors.ErrAlreadyExists):
		return fmt.Errorf("%s: %w", op, err)
	default:
		return fmt.Errorf("%s: %w: %w", op, handyhub_errors.ErrInternal, err)
	}
}

func invalid(format string, args ...interface{}) error {
	return fmt.Errorf("%s: %w", fmt.Sprintf(format, args...), handyhub_errors.ErrInvalidInput)
}
