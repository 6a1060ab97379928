// Package interfaces defines the ports consumed by the use cases, plus the
// sentinel errors implementations surface through them. Handlers translate
// these into HTTP statuses.
package interfaces

import "errors"

// ErrNotFound is returned by repositories when the entity does not exist.
var ErrNotFound = errors.New("entity not found")

// ErrVersionConflict is returned when an update was conditioned on a version
// the stored entity no longer has. The caller must re-read and retry; the
// update must never silently overwrite.
var ErrVersionConflict = errors.New("version conflict")
