package service

import (
	apperrors "github.com/ikkim/storefront-backend/internal/errors"
)

// fieldErrors collects per-field messages before any data access happens.
type fieldErrors map[string]string

func (f fieldErrors) add(field, message string) {
	if _, exists := f[field]; !exists {
		f[field] = message
	}
}

// err returns nil when nothing was collected.
func (f fieldErrors) err() error {
	if len(f) == 0 {
		return nil
	}
	e := apperrors.Validation(apperrors.ValidationInvalidInput, "invalid input")
	for field, message := range f {
		e = e.WithField(field, message)
	}
	return e
}
