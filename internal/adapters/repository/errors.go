package repository

import "errors"

// Sentinel kinds for report store errors.
var (
	ErrNotFound = errors.New("profile not found")
)
