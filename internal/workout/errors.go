package workout

import "errors"

// Service operations fail fast with one of these sentinels so callers can
// map them uniformly. Anything else is a transient persistence failure,
// wrapped with operation context.
var (
	// ErrNotFound covers both absent resources and resources that exist
	// but are not visible to the requester.
	ErrNotFound = errors.New("not found")

	// ErrPermissionDenied means the resource is visible but the caller
	// does not own it and attempted a mutation.
	ErrPermissionDenied = errors.New("permission denied")

	// ErrValidation covers malformed input: mutually-exclusive field
	// violations, out-of-range rpe, deleting the last set of a group.
	ErrValidation = errors.New("validation failed")
)
