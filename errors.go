package cratedock

import (
	"errors"
	"fmt"

	"github.com/cratedock/cratedock/internal/crate"
	"github.com/cratedock/cratedock/internal/lockfile"
)

var (
	// ErrNotInitialized means the registry root has no config document.
	ErrNotInitialized = errors.New("cratedock: registry not initialized")

	// ErrPathNotEmpty means Initialize was pointed at a non-empty directory
	// without the force option.
	ErrPathNotEmpty = errors.New("cratedock: registry path not empty")

	// Archive errors, re-exported so callers don't import internal/crate.
	ErrUnreadableArchive = crate.ErrUnreadableArchive
	ErrMissingManifest   = crate.ErrMissingManifest
	ErrMalformedManifest = crate.ErrMalformedManifest

	// ErrLockTimeout means the per-package publish lock stayed contended past
	// its deadline.
	ErrLockTimeout = lockfile.ErrTimeout
)

// DuplicateVersionError is returned when publishing a version that already
// exists and is not yanked. Silent overwrites are never allowed: clients
// cache by (name, version, checksum).
type DuplicateVersionError struct {
	Name    string
	Version string
}

func (e *DuplicateVersionError) Error() string {
	return fmt.Sprintf("cratedock: %s %s is already published", e.Name, e.Version)
}

// NotFoundError is returned when a package or version is absent from the
// index.
type NotFoundError struct {
	Name    string
	Version string
}

func (e *NotFoundError) Error() string {
	if e.Version != "" {
		return fmt.Sprintf("cratedock: %s %s not found", e.Name, e.Version)
	}
	return fmt.Sprintf("cratedock: %s not found", e.Name)
}

// PartialPublishError is returned when the index entry was written but the
// archive could not be copied into content storage. The index update is
// already visible to readers, so it is not rolled back; Verify finds the
// missing blob and re-publishing after a yank repairs it.
type PartialPublishError struct {
	Name    string
	Version string
	Err     error
}

func (e *PartialPublishError) Error() string {
	return fmt.Sprintf("cratedock: %s %s indexed but archive copy failed: %v", e.Name, e.Version, e.Err)
}

func (e *PartialPublishError) Unwrap() error {
	return e.Err
}
