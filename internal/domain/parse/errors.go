package parse

import "errors"

// Sentinel kinds for parser errors.
var (
	ErrMalformedDocument = errors.New("malformed document")
)
