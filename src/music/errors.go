package music

import "errors"

// Error types storage adapters classify their failures into. Adapters wrap
// these with %w so callers can match them with errors.Is without importing
// driver packages.
var (
	ErrConstraintViolation = errors.New("constraint violation")
	ErrStorageUnavailable  = errors.New("storage unavailable")
	ErrSchemaMismatch      = errors.New("schema mismatch")
	ErrTrackNotFound       = errors.New("track not found")
)
