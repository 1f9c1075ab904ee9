package repository

import (
	"errors"
	"fmt"
)

var (
	// ErrCommitNotFound means a well-formed commit id is absent from the store.
	ErrCommitNotFound = errors.New("commit not found")

	// ErrCommitNotValid means a commit id could not be parsed.
	ErrCommitNotValid = errors.New("commit not valid")

	// ErrMainBranchNotFound means none of the trunk references exist.
	ErrMainBranchNotFound = errors.New("main branch not found")

	// ErrOctopusMerge means a merge commit has more than two parents, so its
	// branch parent is ambiguous.
	ErrOctopusMerge = errors.New("octopus merge has no single branch parent")

	// ErrRootCommit means the commit has no parents.
	ErrRootCommit = errors.New("root commit has no parent")
)

// CommitError reports a problem with a caller-supplied commit id.
// Use errors.Is against the sentinels above to tell the kinds apart.
type CommitError struct {
	ID  string
	Err error
}

func (e *CommitError) Error() string {
	return fmt.Sprintf("%v: %s", e.Err, e.ID)
}

func (e *CommitError) Unwrap() error {
	return e.Err
}

// IsCommitNotFound reports whether err is, or wraps, ErrCommitNotFound.
func IsCommitNotFound(err error) bool {
	return errors.Is(err, ErrCommitNotFound)
}

// IsCommitNotValid reports whether err is, or wraps, ErrCommitNotValid.
func IsCommitNotValid(err error) bool {
	return errors.Is(err, ErrCommitNotValid)
}

func commitNotFound(id string) error {
	return &CommitError{ID: id, Err: ErrCommitNotFound}
}

func commitNotValid(id string) error {
	return &CommitError{ID: id, Err: ErrCommitNotValid}
}
