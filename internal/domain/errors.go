package domain

import "errors"

var (
	ErrSessionIDRequired = errors.New("session ID required")
	ErrInvalidUpdate     = errors.New("invalid update")
	ErrNotFound          = errors.New("not found")
)
