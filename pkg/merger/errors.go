package merger

import "errors"

var (
	// ErrNoVersions indicates Merge was called with no schema versions.
	ErrNoVersions = errors.New("no schema versions provided")

	// ErrMessageNotFound indicates no version declares the requested message.
	ErrMessageNotFound = errors.New("message not found in any version")
)
