package domain

import "errors"

var (
	ErrUserNotFound    = errors.New("user not found")
	ErrProfileNotBuilt = errors.New("user profile has no scored tags")
	ErrInvalidRecord   = errors.New("invalid record")
)
