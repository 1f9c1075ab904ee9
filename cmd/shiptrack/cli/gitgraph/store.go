// Package gitgraph provides read-only access to a git commit graph.
package gitgraph

import (
	"errors"
	"fmt"

	"github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing"
	"github.com/go-git/go-git/v5/plumbing/object"
	"github.com/go-git/go-git/v5/storage/filesystem"
)

// ErrObjectNotFound is returned when a commit is not present in the object store.
var ErrObjectNotFound = errors.New("commit object not found")

// Store is low-level, read-only access to a content-addressed commit DAG.
// Lookups that may legitimately find nothing report it through a bool
// rather than an error.
type Store interface {
	// Exists reports whether a commit with the given hash is stored.
	Exists(id plumbing.Hash) (bool, error)

	// Commit returns the decoded commit. Missing commits yield an error
	// wrapping ErrObjectNotFound.
	Commit(id plumbing.Hash) (*object.Commit, error)

	// Parents returns the parent hashes of a commit, in recorded order.
	Parents(id plumbing.Hash) ([]plumbing.Hash, error)

	// IsDescendant reports whether id has ancestor in its history.
	// A commit is not its own descendant.
	IsDescendant(id, ancestor plumbing.Hash) (bool, error)

	// MergeBase returns the nearest common ancestor of two commits.
	// The bool is false when the histories are unrelated.
	MergeBase(a, b plumbing.Hash) (plumbing.Hash, bool, error)

	// ResolveRef resolves a reference name to the commit it points at.
	ResolveRef(name plumbing.ReferenceName) (plumbing.Hash, bool, error)

	// Walk returns a fresh, single-use walker over the graph.
	Walk(opts WalkOptions) (WalkIter, error)

	// RemoteURL returns the first URL configured for the named remote.
	RemoteURL(name string) (string, bool, error)

	// Path returns the on-disk location of the git directory.
	Path() string
}

// Compile-time check that GitStore implements the Store interface.
var _ Store = (*GitStore)(nil)

// GitStore implements Store by wrapping a go-git repository.
// The repository is owned by the caller.
type GitStore struct {
	repo *git.Repository
}

// NewGitStore creates a new graph store backed by the given git repository.
func NewGitStore(repo *git.Repository) *GitStore {
	return &GitStore{repo: repo}
}

// Open opens the git repository containing path, searching parent
// directories for the .git directory.
func Open(path string) (*git.Repository, error) {
	repo, err := git.PlainOpenWithOptions(path, &git.PlainOpenOptions{
		DetectDotGit:          true,
		EnableDotGitCommonDir: true,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to open git repository at %s: %w", path, err)
	}
	return repo, nil
}

// Repository returns the underlying git repository.
func (s *GitStore) Repository() *git.Repository {
	return s.repo
}

func (s *GitStore) Exists(id plumbing.Hash) (bool, error) {
	_, err := s.repo.Storer.EncodedObject(plumbing.CommitObject, id)
	if errors.Is(err, plumbing.ErrObjectNotFound) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("failed to look up commit %s: %w", id, err)
	}
	return true, nil
}

func (s *GitStore) Commit(id plumbing.Hash) (*object.Commit, error) {
	commit, err := object.GetCommit(s.repo.Storer, id)
	if errors.Is(err, plumbing.ErrObjectNotFound) {
		return nil, fmt.Errorf("%w: %s", ErrObjectNotFound, id)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read commit %s: %w", id, err)
	}
	return commit, nil
}

func (s *GitStore) Parents(id plumbing.Hash) ([]plumbing.Hash, error) {
	commit, err := s.Commit(id)
	if err != nil {
		return nil, err
	}
	parents := make([]plumbing.Hash, len(commit.ParentHashes))
	copy(parents, commit.ParentHashes)
	return parents, nil
}

func (s *GitStore) IsDescendant(id, ancestor plumbing.Hash) (bool, error) {
	if id == ancestor {
		return false, nil
	}

	descendantCommit, err := s.Commit(id)
	if err != nil {
		return false, err
	}
	ancestorCommit, err := s.Commit(ancestor)
	if err != nil {
		return false, err
	}

	found, err := ancestorCommit.IsAncestor(descendantCommit)
	if err != nil {
		return false, fmt.Errorf("failed to walk history of %s: %w", id, err)
	}
	return found, nil
}

func (s *GitStore) MergeBase(a, b plumbing.Hash) (plumbing.Hash, bool, error) {
	first, err := s.Commit(a)
	if err != nil {
		return plumbing.ZeroHash, false, err
	}
	second, err := s.Commit(b)
	if err != nil {
		return plumbing.ZeroHash, false, err
	}

	bases, err := first.MergeBase(second)
	if err != nil {
		return plumbing.ZeroHash, false, fmt.Errorf("failed to compute merge base of %s and %s: %w", a, b, err)
	}
	if len(bases) == 0 {
		return plumbing.ZeroHash, false, nil
	}

	// Criss-cross histories can have several best common ancestors; git
	// itself reports a single one, so do we.
	return bases[0].Hash, true, nil
}

func (s *GitStore) ResolveRef(name plumbing.ReferenceName) (plumbing.Hash, bool, error) {
	ref, err := s.repo.Reference(name, true)
	if errors.Is(err, plumbing.ErrReferenceNotFound) {
		return plumbing.ZeroHash, false, nil
	}
	if err != nil {
		return plumbing.ZeroHash, false, fmt.Errorf("failed to resolve %s: %w", name, err)
	}
	return ref.Hash(), true, nil
}

func (s *GitStore) RemoteURL(name string) (string, bool, error) {
	remote, err := s.repo.Remote(name)
	if errors.Is(err, git.ErrRemoteNotFound) {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("failed to read remote %s: %w", name, err)
	}

	urls := remote.Config().URLs
	if len(urls) == 0 {
		return "", false, nil
	}
	return urls[0], true, nil
}

// Path returns the git directory for on-disk repositories and an empty
// string for in-memory storage.
func (s *GitStore) Path() string {
	fsStorage, ok := s.repo.Storer.(*filesystem.Storage)
	if !ok {
		return ""
	}
	return fsStorage.Filesystem().Root()
}
