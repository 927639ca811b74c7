package domain

import (
	"errors"
	"fmt"
)

// Sentinel errors for store and validation failures.
var (
	ErrNotLoaded       = errors.New("inventory not loaded")
	ErrMissingColumns  = errors.New("missing required columns")
	ErrVehicleNotFound = errors.New("vehicle not found")
	ErrNotAvailable    = errors.New("vehicle not available")
	ErrInvalidVIN      = errors.New("invalid VIN")
	ErrInvalidStatus   = errors.New("invalid status")
	ErrYearOutOfRange  = errors.New("year out of range")
)

// RowError wraps a sentinel with the row and field it came from.
type RowError struct {
	VIN     string
	Field   string
	Wrapped error
}

func (e *RowError) Error() string {
	return fmt.Sprintf("row %s: %s: %s", e.VIN, e.Field, e.Wrapped)
}

func (e *RowError) Unwrap() error { return e.Wrapped }

// NewRowError creates a RowError.
func NewRowError(vin, field string, wrapped error) *RowError {
	return &RowError{VIN: vin, Field: field, Wrapped: wrapped}
}
