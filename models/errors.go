package models

import "errors"

var (
	ErrMissingRequiredOption = errors.New("missing required option")
	ErrItemUnavailable       = errors.New("item unavailable")
	ErrNotFound              = errors.New("not found")
	ErrValidation            = errors.New("validation failed")
	ErrStorageCorrupt        = errors.New("stored state is corrupt")
	ErrInvalidTransition     = errors.New("invalid status transition")
)
