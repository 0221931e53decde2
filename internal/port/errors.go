package port

import "errors"

// Sentinel errors used across ports. Only these two escape the analysis
// pipeline; every other failure degrades the affected facet instead.
var (
	ErrRepoNotFound    = errors.New("repository not found")
	ErrRepoUnreachable = errors.New("repository unreachable")
)
