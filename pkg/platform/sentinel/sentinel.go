package sentinel

import "errors"

// Sentinel errors for infrastructure facts. Stores return these (optionally
// wrapped) so services can translate them into domain errors.
//
// These describe the state of a resource, not validation failures:
//   - ErrNotFound: entity does not exist in the store
//   - ErrInvalidState: a conditional update found the entity in a different status
//   - ErrConflict: an insert hit an existing row with the same key
//
// For validation errors (bad input, missing fields), use pkg/domain-errors directly.
var (
	ErrNotFound     = errors.New("not found")
	ErrConflict     = errors.New("conflict")
	ErrInvalidState = errors.New("invalid state")
)
