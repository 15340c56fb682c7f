package domain

import (
	"errors"
	"fmt"
	"strings"
)

// Base error types (sentinel errors).
var (
	ErrNotFound     = errors.New("not found")
	ErrInvalidInput = errors.New("invalid input")
	ErrUnsupported  = errors.New("unsupported operation")
	ErrInternal     = errors.New("internal error")
	ErrUnavailable  = errors.New("service unavailable")
)

// Specific errors.
var (
	ErrCellNotFound       = fmt.Errorf("roi cell: %w", ErrNotFound)
	ErrSourceNotFound     = fmt.Errorf("shoreline source: %w", ErrNotFound)
	ErrEmptyGeometry      = fmt.Errorf("empty geometry: %w", ErrInvalidInput)
	ErrInvalidCRS         = fmt.Errorf("crs: %w", ErrInvalidInput)
	ErrUnsupportedGeom    = fmt.Errorf("geometry: %w", ErrUnsupported)
	ErrStoreUnavailable   = fmt.Errorf("store: %w", ErrUnavailable)
	ErrStorageUnavailable = fmt.Errorf("storage: %w", ErrUnavailable)
)

// InvalidGeometryTypeError reports a feature set containing geometry types
// outside the allowed set for its feature category.
type InvalidGeometryTypeError struct {
	Feature  string   // Feature category, e.g. "ROI" or "Bounding Box"
	Expected []string // Allowed geometry type names
	Found    []string // Geometry type names actually present
}

// Error implements the error interface.
func (e *InvalidGeometryTypeError) Error() string {
	return fmt.Sprintf("invalid geometry type for %s: expected one of [%s], found [%s]",
		e.Feature, strings.Join(e.Expected, ", "), strings.Join(e.Found, ", "))
}

// Unwrap returns the underlying error type.
func (e *InvalidGeometryTypeError) Unwrap() error {
	return ErrInvalidInput
}

// InvalidSizeError reports that every candidate feature fell outside the
// configured area bounds. It carries the bounds so callers can show the
// user exactly what was allowed.
type InvalidSizeError struct {
	Feature string  // Feature category, e.g. "ROI"
	MinArea float64 // Configured minimum area in square meters
	MaxArea float64 // Configured maximum area in square meters
}

// Error implements the error interface.
func (e *InvalidSizeError) Error() string {
	return fmt.Sprintf("the %s feature(s) had an invalid size: area must be within [%.0f, %.0f] m²",
		e.Feature, e.MinArea, e.MaxArea)
}

// Unwrap returns the underlying error type.
func (e *InvalidSizeError) Unwrap() error {
	return ErrInvalidInput
}

// ObjectNotFoundError reports a missing or empty required spatial input.
// Resource names the specific input ("bounding box", "shoreline") so an
// orchestrating caller can prompt the user precisely.
type ObjectNotFoundError struct {
	Resource string // The missing resource
	Hint     string // Optional guidance for the user
}

// Error implements the error interface.
func (e *ObjectNotFoundError) Error() string {
	if e.Hint != "" {
		return fmt.Sprintf("%s not found: %s", e.Resource, e.Hint)
	}
	return fmt.Sprintf("%s not found or empty", e.Resource)
}

// Unwrap returns the underlying error.
func (e *ObjectNotFoundError) Unwrap() error {
	return ErrNotFound
}

// InvalidConfigurationError represents a caller-contract violation, such
// as requesting a grid with zero-length squares on both tilings.
type InvalidConfigurationError struct {
	Field   string // Configuration field or parameter
	Message string // Error message
}

// Error implements the error interface.
func (e *InvalidConfigurationError) Error() string {
	return fmt.Sprintf("invalid configuration for %s: %s", e.Field, e.Message)
}

// Unwrap returns the underlying error type.
func (e *InvalidConfigurationError) Unwrap() error {
	return ErrInvalidInput
}

// StoreError represents an error during ledger store operations.
type StoreError struct {
	Operation string // Operation that failed (save, load, search)
	Err       error  // Underlying error
}

// Error implements the error interface.
func (e *StoreError) Error() string {
	return fmt.Sprintf("store error during %s: %v", e.Operation, e.Err)
}

// Unwrap returns the underlying error.
func (e *StoreError) Unwrap() error {
	return e.Err
}

// StorageError represents an error during object storage operations.
type StorageError struct {
	Operation string // Operation that failed (download, list, etc.)
	Key       string // Object key
	Err       error  // Underlying error
}

// Error implements the error interface.
func (e *StorageError) Error() string {
	if e.Key != "" {
		return fmt.Sprintf("storage error during %s for %s: %v",
			e.Operation, e.Key, e.Err)
	}
	return fmt.Sprintf("storage error during %s: %v", e.Operation, e.Err)
}

// Unwrap returns the underlying error.
func (e *StorageError) Unwrap() error {
	return e.Err
}
