package container

import "errors"

var (
	// ErrMissingEndpoint is returned when a search names neither a source nor
	// a target.
	ErrMissingEndpoint = errors.New("container: at least one of source and target is required")

	// ErrInvalidMinDepth is returned for a minimum depth below 1.
	ErrInvalidMinDepth = errors.New("container: invalid min depth")

	// ErrNotStored is returned when a record is not held by the container.
	ErrNotStored = errors.New("container: relationship not stored")

	// ErrAlreadyStored is returned when adding a record twice.
	ErrAlreadyStored = errors.New("container: relationship already stored")
)
