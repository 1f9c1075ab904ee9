//go:build integration

package integration

import (
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/config"
	"github.com/go-git/go-git/v5/plumbing"
	"github.com/go-git/go-git/v5/plumbing/object"
)

// TestEnv is a real repository with a working tree, driven through go-git
// the way a developer would drive git.
type TestEnv struct {
	T       *testing.T
	RepoDir string

	repo  *git.Repository
	clock time.Time
}

// NewTestEnv creates an environment with an initialised repository.
func NewTestEnv(t *testing.T) *TestEnv {
	t.Helper()

	dir := t.TempDir()
	// Resolve symlinks so paths printed by the binary compare equal.
	if resolved, err := filepath.EvalSymlinks(dir); err == nil {
		dir = resolved
	}

	repo, err := git.PlainInit(dir, false)
	if err != nil {
		t.Fatalf("failed to init git repo: %v", err)
	}

	return &TestEnv{
		T:       t,
		RepoDir: dir,
		repo:    repo,
		clock:   time.Date(2015, time.March, 2, 9, 0, 0, 0, time.UTC),
	}
}

// WriteFile writes a file relative to the repository root.
func (env *TestEnv) WriteFile(path, content string) {
	env.T.Helper()

	full := filepath.Join(env.RepoDir, path)
	if err := os.MkdirAll(filepath.Dir(full), 0o755); err != nil {
		env.T.Fatalf("failed to create directory for %s: %v", path, err)
	}
	if err := os.WriteFile(full, []byte(content), 0o644); err != nil {
		env.T.Fatalf("failed to write %s: %v", path, err)
	}
}

// CommitFile writes, stages and commits a single file on the current branch.
func (env *TestEnv) CommitFile(path, content, message string) string {
	env.T.Helper()

	env.WriteFile(path, content)
	wt := env.worktree()
	if _, err := wt.Add(path); err != nil {
		env.T.Fatalf("failed to add %s: %v", path, err)
	}
	return env.commit(message, nil)
}

// Branch creates a branch at HEAD and checks it out.
func (env *TestEnv) Branch(name string) {
	env.T.Helper()

	err := env.worktree().Checkout(&git.CheckoutOptions{
		Branch: plumbing.NewBranchReferenceName(name),
		Create: true,
	})
	if err != nil {
		env.T.Fatalf("failed to create branch %s: %v", name, err)
	}
}

// Checkout switches to an existing branch.
func (env *TestEnv) Checkout(name string) {
	env.T.Helper()

	err := env.worktree().Checkout(&git.CheckoutOptions{
		Branch: plumbing.NewBranchReferenceName(name),
	})
	if err != nil {
		env.T.Fatalf("failed to checkout branch %s: %v", name, err)
	}
}

// Merge records a merge of branch into the current branch. The merge keeps
// the current branch's tree; only the graph matters here.
func (env *TestEnv) Merge(branch string) string {
	env.T.Helper()

	head, err := env.repo.Head()
	if err != nil {
		env.T.Fatalf("failed to read HEAD: %v", err)
	}
	other, err := env.repo.Reference(plumbing.NewBranchReferenceName(branch), true)
	if err != nil {
		env.T.Fatalf("failed to resolve branch %s: %v", branch, err)
	}
	return env.commit("Merge branch '"+branch+"'", []plumbing.Hash{head.Hash(), other.Hash()})
}

// PublishAs points a remote-tracking ref at the current HEAD, as a fetch
// from origin would.
func (env *TestEnv) PublishAs(remote, branch string) {
	env.T.Helper()

	head, err := env.repo.Head()
	if err != nil {
		env.T.Fatalf("failed to read HEAD: %v", err)
	}
	ref := plumbing.NewHashReference(plumbing.NewRemoteReferenceName(remote, branch), head.Hash())
	if err := env.repo.Storer.SetReference(ref); err != nil {
		env.T.Fatalf("failed to set %s: %v", ref.Name(), err)
	}
}

// AddRemote configures a remote URL.
func (env *TestEnv) AddRemote(name, url string) {
	env.T.Helper()

	if _, err := env.repo.CreateRemote(&config.RemoteConfig{Name: name, URLs: []string{url}}); err != nil {
		env.T.Fatalf("failed to create remote %s: %v", name, err)
	}
}

// Run executes the shiptrack binary in dir and returns stdout, stderr and
// the exit code.
func (env *TestEnv) Run(dir string, args ...string) (string, string, int) {
	env.T.Helper()

	cmd := exec.CommandContext(env.T.Context(), testBinaryPath, args...)
	cmd.Dir = dir
	cmd.Env = append(os.Environ(), "SHIPTRACK_LOG_LEVEL=", "SHIPTRACK_OUTPUT=", "SHIPTRACK_RECENT_COUNT=")

	var stdout, stderr strings.Builder
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	err := cmd.Run()
	code := 0
	if exitErr, ok := err.(*exec.ExitError); ok {
		code = exitErr.ExitCode()
	} else if err != nil {
		env.T.Fatalf("failed to run shiptrack: %v", err)
	}
	return stdout.String(), stderr.String(), code
}

// RunShiptrack executes the binary at the repository root.
func (env *TestEnv) RunShiptrack(args ...string) (string, string, int) {
	env.T.Helper()
	return env.Run(env.RepoDir, args...)
}

func (env *TestEnv) worktree() *git.Worktree {
	env.T.Helper()

	wt, err := env.repo.Worktree()
	if err != nil {
		env.T.Fatalf("failed to get worktree: %v", err)
	}
	return wt
}

func (env *TestEnv) commit(message string, parents []plumbing.Hash) string {
	env.T.Helper()

	env.clock = env.clock.Add(time.Minute)
	sig := &object.Signature{Name: "Test User", Email: "test@example.com", When: env.clock}

	hash, err := env.worktree().Commit(message, &git.CommitOptions{
		Author:            sig,
		Committer:         sig,
		Parents:           parents,
		AllowEmptyCommits: len(parents) > 1,
	})
	if err != nil {
		env.T.Fatalf("failed to commit %q: %v", message, err)
	}
	return hash.String()
}
