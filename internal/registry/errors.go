package registry

import "errors"

var (
	ErrMissingCreator  = errors.New("creator id is required")
	ErrMissingSettings = errors.New("room settings are required")
	ErrNotFound        = errors.New("session not found")
	ErrAccessDenied    = errors.New("access denied: wrong room code")
	ErrAlreadyJoined   = errors.New("already joined this session")
)
