package core

import (
	"errors"
	"fmt"
)

// Domain errors - centralized error definitions
var (
	// Not found errors
	ErrNotFound       = errors.New("resource not found")
	ErrRunNotFound    = fmt.Errorf("%w: import run", ErrNotFound)
	ErrMetricNotFound = fmt.Errorf("%w: metric", ErrNotFound)
	ErrColumnNotFound = fmt.Errorf("%w: column", ErrNotFound)

	// Validation errors
	ErrInvalidWindow    = errors.New("invalid year window")
	ErrInvalidScheme    = errors.New("invalid bucket scheme")
	ErrInvalidDate      = errors.New("invalid date")
	ErrInvalidNumber    = errors.New("invalid number")
	ErrInsufficientData = errors.New("insufficient data for analysis")
)

// Error constructors with context
func NewNotFoundError(kind error, id string) error {
	return fmt.Errorf("%w with id %s", kind, id)
}

// NewCellError locates a parse failure in the source sheet.
func NewCellError(row int, column string, err error) error {
	return fmt.Errorf("row %d, column %q: %w", row, column, err)
}

// Error checking helpers
func IsNotFoundError(err error) bool {
	return errors.Is(err, ErrNotFound)
}

func IsValidationError(err error) bool {
	return errors.Is(err, ErrInvalidWindow) ||
		errors.Is(err, ErrInvalidScheme) ||
		errors.Is(err, ErrInvalidDate) ||
		errors.Is(err, ErrInvalidNumber)
}
