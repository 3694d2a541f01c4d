package domain

import "errors"

var (
	ErrNotFound    = errors.New("not found")
	ErrInvalidOdds = errors.New("invalid american odds")
	ErrInvalidDate = errors.New("invalid game date")
	ErrLockHeld    = errors.New("lock already held")
)
