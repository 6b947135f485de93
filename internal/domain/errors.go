package domain

import "errors"

var (
	// ErrProjectNotFound is returned when a project id does not exist.
	ErrProjectNotFound = errors.New("project not found")

	// ErrStoreUnavailable is returned when the tabular store client cannot be
	// constructed, typically because credentials are missing.
	ErrStoreUnavailable = errors.New("tabular store unavailable")

	// ErrInvalidInput is returned for requests rejected before reaching the
	// repository, e.g. a project without a name.
	ErrInvalidInput = errors.New("invalid input")
)
