package refdata

import "errors"

// Sentinel kinds for reference-table errors.
var (
	ErrReferenceLoad = errors.New("reference table load failed")
)
