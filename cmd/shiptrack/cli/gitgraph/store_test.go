package gitgraph_test

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/go-git/go-git/v5/plumbing"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/entireio/shiptrack/cmd/shiptrack/cli/gitgraph"
	"github.com/entireio/shiptrack/cmd/shiptrack/cli/gitgraph/gitgraphtest"
)

const missingHash = "8056d10ec2776f5f2d6fe382560dc20a14fb565d"

//	   B--C
//	  /    \
//	-A--D---M
func buildMergedBranch(t *testing.T) *gitgraphtest.Builder {
	t.Helper()

	b := gitgraphtest.New(t)
	b.Commit(gitgraphtest.Version("A"))
	b.CreateBranch("topic")
	b.Checkout("topic")
	b.Commit(gitgraphtest.Version("B"))
	b.Commit(gitgraphtest.Version("C"))
	b.Checkout(gitgraphtest.DefaultBranch)
	b.Commit(gitgraphtest.Version("D"))
	b.Merge("topic", gitgraphtest.Version("M"))
	return b
}

func TestGitStore_Exists(t *testing.T) {
	b := buildMergedBranch(t)
	store := b.Store()

	ok, err := store.Exists(b.VersionHash("A"))
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = store.Exists(plumbing.NewHash(missingHash))
	require.NoError(t, err)
	assert.False(t, ok)

	// Trees are objects but not commits.
	ok, err = store.Exists(gitgraphtest.EmptyTreeHash)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestGitStore_Commit_NotFound(t *testing.T) {
	store := buildMergedBranch(t).Store()

	_, err := store.Commit(plumbing.NewHash(missingHash))
	require.Error(t, err)
	assert.True(t, errors.Is(err, gitgraph.ErrObjectNotFound))
}

func TestGitStore_Parents(t *testing.T) {
	b := buildMergedBranch(t)
	store := b.Store()

	parents, err := store.Parents(b.VersionHash("M"))
	require.NoError(t, err)
	assert.Equal(t, []plumbing.Hash{b.VersionHash("D"), b.VersionHash("C")}, parents)

	parents, err = store.Parents(b.VersionHash("A"))
	require.NoError(t, err)
	assert.Empty(t, parents)
}

func TestGitStore_IsDescendant(t *testing.T) {
	b := buildMergedBranch(t)
	store := b.Store()

	tests := []struct {
		name     string
		id       string
		ancestor string
		want     bool
	}{
		{"merge descends from branch tip", "M", "C", true},
		{"merge descends from root", "M", "A", true},
		{"branch does not descend from trunk sibling", "C", "D", false},
		{"ancestor is not a descendant", "A", "B", false},
		{"commit is not its own descendant", "B", "B", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := store.IsDescendant(b.VersionHash(tt.id), b.VersionHash(tt.ancestor))
			require.NoError(t, err)
			if got != tt.want {
				t.Errorf("IsDescendant(%s, %s) = %v, want %v", tt.id, tt.ancestor, got, tt.want)
			}
		})
	}
}

func TestGitStore_MergeBase(t *testing.T) {
	b := buildMergedBranch(t)
	store := b.Store()

	base, ok, err := store.MergeBase(b.VersionHash("D"), b.VersionHash("C"))
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, b.VersionHash("A"), base)

	base, ok, err = store.MergeBase(b.VersionHash("M"), b.VersionHash("C"))
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, b.VersionHash("C"), base)
}

func TestGitStore_MergeBase_UnrelatedHistories(t *testing.T) {
	b := gitgraphtest.New(t)
	b.Commit(gitgraphtest.Version("A"))
	b.Checkout("orphan")
	b.Commit(gitgraphtest.Version("Z"))

	_, ok, err := b.Store().MergeBase(b.VersionHash("A"), b.VersionHash("Z"))
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestGitStore_ResolveRef(t *testing.T) {
	b := buildMergedBranch(t)
	store := b.Store()

	id, ok, err := store.ResolveRef(plumbing.NewBranchReferenceName("topic"))
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, b.VersionHash("C"), id)

	_, ok, err = store.ResolveRef(plumbing.NewRemoteReferenceName("origin", "production"))
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestGitStore_RemoteURL(t *testing.T) {
	b := buildMergedBranch(t)
	store := b.Store()

	_, ok, err := store.RemoteURL("origin")
	require.NoError(t, err)
	assert.False(t, ok)

	b.AddRemote("origin", "git@example.com:org/app.git")
	url, ok, err := store.RemoteURL("origin")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, "git@example.com:org/app.git", url)
}

func TestGitStore_Path(t *testing.T) {
	assert.Empty(t, gitgraphtest.New(t).Store().Path())

	b := gitgraphtest.NewOnDisk(t)
	b.Commit()
	assert.Equal(t, filepath.Join(b.Dir(), ".git"), b.Store().Path())
}

func TestOpen_DetectsDotGitFromSubdirectory(t *testing.T) {
	b := gitgraphtest.NewOnDisk(t)
	b.Commit(gitgraphtest.Version("A"))

	subdir := filepath.Join(b.Dir(), "app", "models")
	require.NoError(t, os.MkdirAll(subdir, 0o755))

	repo, err := gitgraph.Open(subdir)
	require.NoError(t, err)

	ok, err := gitgraph.NewGitStore(repo).Exists(b.VersionHash("A"))
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestOpen_NotARepository(t *testing.T) {
	_, err := gitgraph.Open(t.TempDir())
	require.Error(t, err)
}
