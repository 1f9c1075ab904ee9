// Package gitgraphtest builds commit graphs for tests.
//
// A Builder behaves like a tiny git porcelain: it keeps a current branch,
// commits on top of it, and merges other branches into it. Commits can be
// tagged with a "version" letter so that tests can refer to them by the
// names used in their ASCII diagrams.
package gitgraphtest

import (
	"fmt"
	"testing"
	"time"

	"github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/config"
	"github.com/go-git/go-git/v5/plumbing"
	"github.com/go-git/go-git/v5/plumbing/object"
	"github.com/go-git/go-git/v5/storage/memory"
	"github.com/stretchr/testify/require"

	"github.com/entireio/shiptrack/cmd/shiptrack/cli/gitgraph"
)

// EmptyTreeHash is the well-known hash of git's empty tree.
var EmptyTreeHash = plumbing.NewHash("4b825dc642cb6eb9a060e54bf8d69288fbee4904")

// DefaultBranch is the branch a new Builder starts on.
const DefaultBranch = "master"

// Builder creates commits in a repository.
type Builder struct {
	t        testing.TB
	repo     *git.Repository
	dir      string
	branch   string
	clock    time.Time
	count    int
	versions map[string]plumbing.Hash
}

// New returns a Builder over an in-memory repository.
func New(t testing.TB) *Builder {
	t.Helper()

	repo, err := git.Init(memory.NewStorage(), nil)
	require.NoError(t, err, "failed to init in-memory repository")
	return newBuilder(t, repo, "")
}

// NewOnDisk returns a Builder over a repository initialised in a temporary
// directory, for tests that need a real path.
func NewOnDisk(t testing.TB) *Builder {
	t.Helper()

	dir := t.TempDir()
	repo, err := git.PlainInit(dir, false)
	require.NoError(t, err, "failed to init git repo")
	return newBuilder(t, repo, dir)
}

func newBuilder(t testing.TB, repo *git.Repository, dir string) *Builder {
	b := &Builder{
		t:        t,
		repo:     repo,
		dir:      dir,
		branch:   DefaultBranch,
		clock:    time.Date(2015, time.March, 2, 9, 0, 0, 0, time.UTC),
		versions: make(map[string]plumbing.Hash),
	}

	headRef := plumbing.NewSymbolicReference(plumbing.HEAD, plumbing.NewBranchReferenceName(DefaultBranch))
	require.NoError(t, repo.Storer.SetReference(headRef), "failed to set HEAD")
	return b
}

// Repository returns the repository being built.
func (b *Builder) Repository() *git.Repository {
	return b.repo
}

// Dir returns the working directory, or "" for in-memory repositories.
func (b *Builder) Dir() string {
	return b.dir
}

// Store returns a graph store over the repository.
func (b *Builder) Store() *gitgraph.GitStore {
	return gitgraph.NewGitStore(b.repo)
}

// CommitOption customises a commit.
type CommitOption func(*commitSpec)

type commitSpec struct {
	version string
	author  string
	message string
}

// Version names the commit so it can be retrieved with Builder.Version.
func Version(name string) CommitOption {
	return func(s *commitSpec) { s.version = name }
}

// Author sets the author name.
func Author(name string) CommitOption {
	return func(s *commitSpec) { s.author = name }
}

// Message sets the full commit message.
func Message(message string) CommitOption {
	return func(s *commitSpec) { s.message = message }
}

// Commit creates a commit on top of the current branch.
func (b *Builder) Commit(opts ...CommitOption) plumbing.Hash {
	b.t.Helper()

	var parents []plumbing.Hash
	if tip, ok := b.tip(b.branch); ok {
		parents = append(parents, tip)
	}
	return b.write(parents, opts...)
}

// Merge creates a merge commit on the current branch whose second parent
// is the tip of the named branch.
func (b *Builder) Merge(branch string, opts ...CommitOption) plumbing.Hash {
	b.t.Helper()

	head, ok := b.tip(b.branch)
	require.True(b.t, ok, "cannot merge into empty branch %s", b.branch)
	other, ok := b.tip(branch)
	require.True(b.t, ok, "branch %s has no commits", branch)

	opts = append([]CommitOption{Message(fmt.Sprintf("Merge branch '%s'", branch))}, opts...)
	return b.write([]plumbing.Hash{head, other}, opts...)
}

// Octopus creates a merge commit with the current branch as first parent
// followed by the tips of every named branch.
func (b *Builder) Octopus(branches []string, opts ...CommitOption) plumbing.Hash {
	b.t.Helper()

	head, ok := b.tip(b.branch)
	require.True(b.t, ok, "cannot merge into empty branch %s", b.branch)

	parents := []plumbing.Hash{head}
	for _, branch := range branches {
		other, ok := b.tip(branch)
		require.True(b.t, ok, "branch %s has no commits", branch)
		parents = append(parents, other)
	}
	return b.write(parents, opts...)
}

// CreateBranch creates a branch at the tip of the current branch.
func (b *Builder) CreateBranch(name string) {
	b.t.Helper()

	tip, ok := b.tip(b.branch)
	require.True(b.t, ok, "cannot branch from empty branch %s", b.branch)
	b.SetRef(plumbing.NewBranchReferenceName(name), tip)
}

// Checkout switches the current branch.
func (b *Builder) Checkout(name string) {
	b.branch = name
}

// SetRef points an arbitrary reference at a commit.
func (b *Builder) SetRef(name plumbing.ReferenceName, id plumbing.Hash) {
	b.t.Helper()

	ref := plumbing.NewHashReference(name, id)
	require.NoError(b.t, b.repo.Storer.SetReference(ref), "failed to set %s", name)
}

// RemoveRef deletes a reference.
func (b *Builder) RemoveRef(name plumbing.ReferenceName) {
	b.t.Helper()
	require.NoError(b.t, b.repo.Storer.RemoveReference(name), "failed to remove %s", name)
}

// AddRemote configures a remote with a single URL.
func (b *Builder) AddRemote(name, url string) {
	b.t.Helper()

	_, err := b.repo.CreateRemote(&config.RemoteConfig{Name: name, URLs: []string{url}})
	require.NoError(b.t, err, "failed to create remote %s", name)
}

// RemoveObject drops a commit object from the store while leaving every
// reference and child pointing at it, as in a shallow or damaged clone.
// Only in-memory repositories support it.
func (b *Builder) RemoveObject(id plumbing.Hash) {
	b.t.Helper()

	storage, ok := b.repo.Storer.(*memory.Storage)
	require.True(b.t, ok, "RemoveObject needs an in-memory repository")
	delete(storage.Objects, id)
	delete(storage.Commits, id)
}

// Version returns the full hex id of a named commit.
func (b *Builder) Version(name string) string {
	return b.VersionHash(name).String()
}

// VersionHash returns the hash of a named commit.
func (b *Builder) VersionHash(name string) plumbing.Hash {
	b.t.Helper()

	id, ok := b.versions[name]
	require.True(b.t, ok, "unknown commit version %q", name)
	return id
}

func (b *Builder) tip(branch string) (plumbing.Hash, bool) {
	ref, err := b.repo.Reference(plumbing.NewBranchReferenceName(branch), true)
	if err != nil {
		return plumbing.ZeroHash, false
	}
	return ref.Hash(), true
}

func (b *Builder) write(parents []plumbing.Hash, opts ...CommitOption) plumbing.Hash {
	b.t.Helper()

	b.count++
	spec := commitSpec{author: "Alice"}
	for _, opt := range opts {
		opt(&spec)
	}
	if spec.message == "" {
		spec.message = fmt.Sprintf("Commit %d", b.count)
		if spec.version != "" {
			spec.message = fmt.Sprintf("Commit %d (%s)", b.count, spec.version)
		}
	}

	// Strictly increasing timestamps keep date-ordered algorithms stable.
	b.clock = b.clock.Add(time.Minute)
	sig := object.Signature{
		Name:  spec.author,
		Email: "test@test.com",
		When:  b.clock,
	}

	commit := &object.Commit{
		Author:       sig,
		Committer:    sig,
		Message:      spec.message,
		TreeHash:     EmptyTreeHash,
		ParentHashes: parents,
	}

	obj := b.repo.Storer.NewEncodedObject()
	require.NoError(b.t, commit.Encode(obj), "failed to encode commit")
	id, err := b.repo.Storer.SetEncodedObject(obj)
	require.NoError(b.t, err, "failed to store commit")

	b.SetRef(plumbing.NewBranchReferenceName(b.branch), id)
	if spec.version != "" {
		b.versions[spec.version] = id
	}
	return id
}
