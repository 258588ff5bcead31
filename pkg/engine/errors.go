package engine

import "errors"

var (
	// ErrNoSchemas indicates the provider was created without any version
	// schemas.
	ErrNoSchemas = errors.New("no version schemas loaded")

	// ErrFieldNotFound indicates the merged message has no field with the
	// requested number.
	ErrFieldNotFound = errors.New("field not found in merged message")
)
