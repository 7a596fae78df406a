package item

import "errors"

// Sentinel errors shared by stores, backends and the coordinator.
var (
	// ErrNotFound is returned when no item has the requested ID.
	ErrNotFound = errors.New("item not found")
	// ErrValidation is returned when a query, item or patch is rejected
	// before reaching the store. Field details are attached as criterio.FieldErrors.
	ErrValidation = errors.New("validation failed")
	// ErrTransient marks a backend failure that may succeed when retried.
	ErrTransient = errors.New("transient backend failure")
	// ErrConflict is returned when an insert reuses an existing ID.
	ErrConflict = errors.New("item already exists")
)
