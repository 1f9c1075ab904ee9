// Package repository answers release-tracking questions about a git
// commit graph: which commits lie between two points, what trunk looks like
// recently, and which commits a topic branch brings into trunk.
//
// Repository never writes to the store and never caches: every call reads
// the live references and walks the graph afresh.
package repository

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"time"

	"github.com/go-git/go-git/v5/plumbing"
	"github.com/go-git/go-git/v5/plumbing/storer"

	"github.com/entireio/shiptrack/cmd/shiptrack/cli/gitgraph"
	"github.com/entireio/shiptrack/cmd/shiptrack/cli/logging"
)

// DefaultRecentCommitCount is the number of trunk commits returned when the
// caller has no preference.
const DefaultRecentCommitCount = 50

// DefaultRemote is the remote whose branches are preferred as trunk.
const DefaultRemote = "origin"

// MainBranchCandidates lists the trunk references in order of preference.
var MainBranchCandidates = []plumbing.ReferenceName{
	plumbing.NewRemoteReferenceName(DefaultRemote, "production"),
	plumbing.NewRemoteReferenceName(DefaultRemote, "master"),
	plumbing.NewBranchReferenceName("master"),
}

// Repository builds domain queries on top of a gitgraph.Store.
// It is not safe for concurrent use.
type Repository struct {
	store  gitgraph.Store
	logger *slog.Logger
}

// Option configures a Repository.
type Option func(*Repository)

// WithLogger sets the logger used for diagnostics.
func WithLogger(logger *slog.Logger) Option {
	return func(r *Repository) {
		r.logger = logger
	}
}

// New creates a Repository over an already-open store.
func New(store gitgraph.Store, opts ...Option) *Repository {
	r := &Repository{store: store}
	for _, opt := range opts {
		opt(r)
	}
	if r.logger == nil {
		r.logger = logging.Component("git_repository")
	}
	return r
}

// Path returns the on-disk location of the underlying store.
func (r *Repository) Path() string {
	return r.store.Path()
}

// RemoteURL returns the URL of the origin remote.
func (r *Repository) RemoteURL() (string, bool) {
	url, ok, err := r.store.RemoteURL(DefaultRemote)
	if err != nil {
		r.logger.Warn("failed to read remote", slog.String("remote", DefaultRemote), slog.String("error", err.Error()))
		return "", false
	}
	return url, ok
}

// Exists reports whether id is a full 40-character commit id present in
// the store. Malformed input and lookup failures yield false.
func (r *Repository) Exists(id string) bool {
	if len(id) != 40 {
		return false
	}
	hash, ok := parseID(id)
	if !ok {
		return false
	}
	found, err := r.store.Exists(hash)
	if err != nil {
		return false
	}
	return found
}

// CommitsBetween returns the commits reachable from to but not from from,
// oldest first, to inclusive. An empty from means all ancestors of to.
func (r *Repository) CommitsBetween(from, to string) ([]GitCommit, error) {
	start := time.Now()

	var fromHash plumbing.Hash
	if from != "" {
		hash, err := r.validateCommit(from)
		if err != nil {
			return nil, err
		}
		fromHash = hash
	}
	toHash, err := r.validateCommit(to)
	if err != nil {
		return nil, err
	}

	commits, err := r.commitsBetween(fromHash, toHash)
	if err != nil {
		return nil, err
	}

	r.logger.Debug("commits_between",
		slog.String("from", from),
		slog.String("to", to),
		slog.Int("count", len(commits)),
		slog.Duration("duration", time.Since(start)),
	)
	return commits, nil
}

// RecentCommitsOnMainBranch returns up to count trunk commits, newest
// first, following only first parents from the trunk tip.
func (r *Repository) RecentCommitsOnMainBranch(count int) ([]GitCommit, error) {
	if count <= 0 {
		return []GitCommit{}, nil
	}

	_, tip, err := r.mainBranch()
	if err != nil {
		return nil, err
	}

	walker, err := r.store.Walk(gitgraph.WalkOptions{
		To:              tip,
		Order:           gitgraph.OrderTopo,
		FirstParentOnly: true,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to walk main branch: %w", err)
	}

	ids := make([]plumbing.Hash, 0, count)
	err = walker.ForEach(func(id plumbing.Hash) error {
		ids = append(ids, id)
		if len(ids) == count {
			return storer.ErrStop
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to walk main branch: %w", err)
	}

	return r.buildCommits(ids)
}

// MainBranch returns the trunk reference in use and the commit it points at.
func (r *Repository) MainBranch() (plumbing.ReferenceName, string, error) {
	name, tip, err := r.mainBranch()
	if err != nil {
		return "", "", err
	}
	return name, tip.String(), nil
}

// DependentCommits returns the commits a topic-branch commit brings into
// trunk: every trunk merge commit whose merged parent is id, followed by
// the commits between the branch's fork point and id, excluding id itself.
//
// A malformed id yields an empty result rather than an error.
func (r *Repository) DependentCommits(id string) ([]GitCommit, error) {
	commitHash, err := r.validateCommit(id)
	if err != nil {
		if IsCommitNotValid(err) {
			return []GitCommit{}, nil
		}
		return nil, err
	}

	_, tip, err := r.mainBranch()
	if err != nil {
		return nil, err
	}

	// Walk trunk backwards while id is still an ancestor of it. The merge
	// base only drops below id once trunk has moved past the fork point.
	dependent := []GitCommit{}
	var forkPoint plumbing.Hash
	current, hasCurrent := tip, true
	for hasCurrent {
		base, ok, err := r.store.MergeBase(current, commitHash)
		if err != nil {
			return nil, err
		}
		forkPoint = plumbing.ZeroHash
		if ok {
			forkPoint = base
		}
		if !ok || base != commitHash {
			break
		}

		candidate, err := r.store.Commit(current)
		if err != nil {
			return nil, err
		}
		if isMergeCommitFor(candidate.ParentHashes, commitHash) {
			dependent = append(dependent, buildCommit(candidate))
		}

		hasCurrent = len(candidate.ParentHashes) > 0
		if hasCurrent {
			current = candidate.ParentHashes[0]
		}
	}

	between, err := r.commitsBetween(forkPoint, commitHash)
	if err != nil {
		return nil, err
	}
	if len(between) > 0 {
		between = between[:len(between)-1]
	}

	return append(dependent, between...), nil
}

// DescendantCommitsOfBranch returns the commits on a topic branch after id,
// up to and including the commit that merged the branch into trunk.
// The result is empty when id cannot be resolved, is already on trunk, or
// is the root commit.
func (r *Repository) DescendantCommitsOfBranch(id string) ([]GitCommit, error) {
	commitHash, ok := r.lookup(id)
	if !ok {
		return []GitCommit{}, nil
	}

	onMain, err := r.commitOnMainBranch(commitHash)
	if err != nil {
		return nil, err
	}
	if onMain {
		return []GitCommit{}, nil
	}

	_, tip, err := r.mainBranch()
	if err != nil {
		return nil, err
	}

	mergeCommit, merged, err := r.mergeToMainBranchCommit(tip, commitHash)
	if err != nil {
		return nil, err
	}

	walker, err := r.store.Walk(gitgraph.WalkOptions{
		From:  commitHash,
		To:    tip,
		Order: gitgraph.OrderReverseTopo,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to walk main branch: %w", err)
	}

	var ids []plumbing.Hash
	err = walker.ForEach(func(candidate plumbing.Hash) error {
		descendant, err := r.store.IsDescendant(candidate, commitHash)
		if err != nil {
			return err
		}
		if descendant {
			ids = append(ids, candidate)
		}
		if merged && candidate == mergeCommit {
			return storer.ErrStop
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to collect descendants of %s: %w", id, err)
	}

	return r.buildCommits(ids)
}

// IsMerge reports whether the commit has more than one parent.
func (r *Repository) IsMerge(id string) (bool, error) {
	commitHash, err := r.validateCommit(id)
	if err != nil {
		return false, err
	}

	parents, err := r.store.Parents(commitHash)
	if err != nil {
		return false, err
	}
	return len(parents) > 1, nil
}

// BranchParent returns the parent of a merge commit that was merged in,
// assuming trunk was checked out when merging so trunk is the first parent.
// For an ordinary commit it returns the single parent.
func (r *Repository) BranchParent(id string) (string, error) {
	commitHash, err := r.validateCommit(id)
	if err != nil {
		return "", err
	}

	parents, err := r.store.Parents(commitHash)
	if err != nil {
		return "", err
	}

	switch {
	case len(parents) == 0:
		return "", &CommitError{ID: id, Err: ErrRootCommit}
	case len(parents) > 2:
		return "", &CommitError{ID: id, Err: ErrOctopusMerge}
	default:
		return parents[len(parents)-1].String(), nil
	}
}

func (r *Repository) commitsBetween(from, to plumbing.Hash) ([]GitCommit, error) {
	walker, err := r.store.Walk(gitgraph.WalkOptions{
		From:  from,
		To:    to,
		Order: gitgraph.OrderReverseTopo,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to walk commits: %w", err)
	}

	var ids []plumbing.Hash
	err = walker.ForEach(func(id plumbing.Hash) error {
		ids = append(ids, id)
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to walk commits: %w", err)
	}

	return r.buildCommits(ids)
}

// mainBranch resolves the trunk tip from the live reference set.
func (r *Repository) mainBranch() (plumbing.ReferenceName, plumbing.Hash, error) {
	for _, name := range MainBranchCandidates {
		tip, ok, err := r.store.ResolveRef(name)
		if err != nil {
			return "", plumbing.ZeroHash, err
		}
		if ok {
			return name, tip, nil
		}
	}
	return "", plumbing.ZeroHash, ErrMainBranchNotFound
}

// commitOnMainBranch reports whether id sits on the first-parent line of
// trunk. Root commits count as being on trunk.
func (r *Repository) commitOnMainBranch(id plumbing.Hash) (bool, error) {
	parents, err := r.store.Parents(id)
	if err != nil {
		return false, err
	}
	if len(parents) == 0 {
		return true, nil
	}

	_, tip, err := r.mainBranch()
	if err != nil {
		return false, err
	}

	walker, err := r.store.Walk(gitgraph.WalkOptions{
		From:            parents[0],
		To:              tip,
		Order:           gitgraph.OrderReverseTopo,
		FirstParentOnly: true,
	})
	if err != nil {
		return false, fmt.Errorf("failed to walk main branch: %w", err)
	}
	defer walker.Close()

	first, err := walker.Next()
	if errors.Is(err, io.EOF) {
		// Trunk has nothing past the parent, for instance when the parent is
		// the trunk tip itself.
		r.logger.Warn("main branch walk returned no commits",
			slog.String("target_commit", id.String()),
			slog.String("main_branch_head", tip.String()),
			slog.String("parent_commit", parents[0].String()),
		)
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("failed to walk main branch: %w", err)
	}
	return first == id, nil
}

// mergeToMainBranchCommit finds the oldest trunk commit on the first-parent
// line that descends from id, using full ancestry for the descent check.
func (r *Repository) mergeToMainBranchCommit(tip, id plumbing.Hash) (plumbing.Hash, bool, error) {
	walker, err := r.store.Walk(gitgraph.WalkOptions{
		From:            id,
		To:              tip,
		Order:           gitgraph.OrderReverseTopo,
		FirstParentOnly: true,
	})
	if err != nil {
		return plumbing.ZeroHash, false, fmt.Errorf("failed to walk main branch: %w", err)
	}

	var found plumbing.Hash
	var ok bool
	err = walker.ForEach(func(candidate plumbing.Hash) error {
		descendant, err := r.store.IsDescendant(candidate, id)
		if err != nil {
			return err
		}
		if descendant {
			found, ok = candidate, true
			return storer.ErrStop
		}
		return nil
	})
	if err != nil {
		return plumbing.ZeroHash, false, fmt.Errorf("failed to find merge commit for %s: %w", id, err)
	}
	return found, ok, nil
}

// validateCommit parses id and checks the commit exists.
func (r *Repository) validateCommit(id string) (plumbing.Hash, error) {
	hash, ok := parseID(id)
	if !ok {
		return plumbing.ZeroHash, commitNotValid(id)
	}

	found, err := r.store.Exists(hash)
	if err != nil {
		return plumbing.ZeroHash, fmt.Errorf("failed to look up commit %s: %w", id, err)
	}
	if !found {
		return plumbing.ZeroHash, commitNotFound(id)
	}
	return hash, nil
}

// lookup resolves id to a stored commit, treating every failure as absence.
func (r *Repository) lookup(id string) (plumbing.Hash, bool) {
	hash, err := r.validateCommit(id)
	if err != nil {
		return plumbing.ZeroHash, false
	}
	return hash, true
}

func (r *Repository) buildCommits(ids []plumbing.Hash) ([]GitCommit, error) {
	commits := make([]GitCommit, 0, len(ids))
	for _, id := range ids {
		c, err := r.store.Commit(id)
		if err != nil {
			if errors.Is(err, gitgraph.ErrObjectNotFound) {
				return nil, commitNotFound(id.String())
			}
			return nil, err
		}
		commits = append(commits, buildCommit(c))
	}
	return commits, nil
}

func isMergeCommitFor(parents []plumbing.Hash, id plumbing.Hash) bool {
	return len(parents) > parentOnMergedBranch && parents[parentOnMergedBranch] == id
}

// parseID accepts exactly 40 hexadecimal characters, in either case.
func parseID(id string) (plumbing.Hash, bool) {
	if !plumbing.IsHash(id) {
		return plumbing.ZeroHash, false
	}
	return plumbing.NewHash(strings.ToLower(id)), true
}
