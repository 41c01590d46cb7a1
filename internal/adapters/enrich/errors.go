package enrich

import "errors"

// Sentinel kinds for enrichment errors.
var (
	ErrDisabled    = errors.New("live metrics fetch disabled")
	ErrUnavailable = errors.New("live metrics unavailable")
)
