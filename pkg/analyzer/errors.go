package analyzer

import "errors"

var (
	// ErrNoSources indicates an empty source map was given.
	ErrNoSources = errors.New("no proto sources provided")

	// ErrNoFiles indicates compilation produced no file descriptors.
	ErrNoFiles = errors.New("no files compiled")
)
