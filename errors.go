package artifactset

import "errors"

// Sentinel errors returned by New.
var (
	// ErrInvalidOption indicates an option value out of its accepted range.
	ErrInvalidOption = errors.New("invalid option")

	// ErrInvalidResolution indicates a Resolution that cannot be selected from.
	ErrInvalidResolution = errors.New("invalid resolution")
)
