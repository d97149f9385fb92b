package preflight

import (
	"errors"
	"fmt"
)

var (
	// ErrSourceUnreadable is returned when the source is missing or lacks the owner-read bit.
	ErrSourceUnreadable = errors.New("source path is not readable")
	// ErrTargetUnreadable is returned when the resolved target lacks the owner-read bit.
	ErrTargetUnreadable = errors.New("target path is not readable")
	// ErrSameSourceAndTarget is returned when the resolved target is textually equal to the source.
	ErrSameSourceAndTarget = errors.New("source and target paths are the same")
	// ErrDirectoryCreationFailed is matched by every *DirectoryCreationError.
	ErrDirectoryCreationFailed = errors.New("failed to create directory")
)

// DirectoryCreationError reports a target directory that could not be created.
// Ancestors created before the failure are left in place.
type DirectoryCreationError struct {
	Path string
	Err  error
}

func (e *DirectoryCreationError) Error() string {
	return fmt.Sprintf("failed to create directory %q: %v", e.Path, e.Err)
}

func (e *DirectoryCreationError) Unwrap() error { return e.Err }

func (e *DirectoryCreationError) Is(target error) bool {
	return target == ErrDirectoryCreationFailed
}
