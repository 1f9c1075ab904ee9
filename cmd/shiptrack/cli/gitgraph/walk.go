package gitgraph

import (
	"errors"
	"fmt"
	"io"
	"slices"

	"github.com/go-git/go-git/v5/plumbing"
	"github.com/go-git/go-git/v5/plumbing/object"
	"github.com/go-git/go-git/v5/plumbing/storer"
)

// Order controls the sequence in which a Walker emits commits.
type Order int

const (
	// OrderTopo emits children before their parents, newest first.
	OrderTopo Order = iota
	// OrderReverseTopo emits parents before their children, oldest first.
	OrderReverseTopo
)

// String returns a human-readable name for the order.
func (o Order) String() string {
	switch o {
	case OrderTopo:
		return "topo"
	case OrderReverseTopo:
		return "reverse-topo"
	default:
		return fmt.Sprintf("Order(%d)", int(o))
	}
}

// WalkOptions configures a graph walk.
type WalkOptions struct {
	// From is hidden together with all of its ancestors. The zero hash
	// hides nothing.
	From plumbing.Hash

	// To is the commit the walk starts from. It is always included unless
	// it is hidden by From.
	To plumbing.Hash

	Order Order

	// FirstParentOnly follows only the first parent of merge commits.
	FirstParentOnly bool
}

// WalkIter iterates over the commits selected by WalkOptions.
type WalkIter interface {
	// Next returns the next commit hash, or io.EOF when the walk is exhausted.
	Next() (plumbing.Hash, error)

	// ForEach calls fn for every remaining commit. Returning storer.ErrStop
	// from fn ends the walk without error.
	ForEach(fn func(plumbing.Hash) error) error

	// Close releases the iterator.
	Close()
}

// CommitReader is the part of a store a Walker reads commits from.
type CommitReader interface {
	Commit(id plumbing.Hash) (*object.Commit, error)
	Parents(id plumbing.Hash) ([]plumbing.Hash, error)
}

var _ WalkIter = (*Walker)(nil)

// Walker is the WalkIter used by GitStore. A first-parent walk in topo
// order follows the parent chain lazily, one commit per call to Next, so
// reading the newest N commits never touches older history. Every other
// walk computes the full traversal on the first call to Next. A Walker is
// exhausted after one pass and must not be shared between goroutines.
type Walker struct {
	src    CommitReader
	opts   WalkOptions
	hidden map[plumbing.Hash]struct{}
	queue  []plumbing.Hash
	pos    int
	next   plumbing.Hash
	loaded bool
	closed bool
}

// NewWalker returns a walker reading from src.
func NewWalker(src CommitReader, opts WalkOptions) (*Walker, error) {
	if opts.To.IsZero() {
		return nil, errors.New("walk requires a starting commit")
	}
	return &Walker{src: src, opts: opts}, nil
}

// Walk returns a new walker. Every call produces an independent iterator.
func (s *GitStore) Walk(opts WalkOptions) (WalkIter, error) {
	return NewWalker(s, opts)
}

// Next returns the next commit hash, or io.EOF when the walk is exhausted.
func (w *Walker) Next() (plumbing.Hash, error) {
	if w.closed {
		return plumbing.ZeroHash, io.EOF
	}
	if !w.loaded {
		if err := w.load(); err != nil {
			w.Close()
			return plumbing.ZeroHash, err
		}
	}
	if w.streaming() {
		return w.nextFirstParent()
	}
	if w.pos >= len(w.queue) {
		return plumbing.ZeroHash, io.EOF
	}

	id := w.queue[w.pos]
	w.pos++
	return id, nil
}

func (w *Walker) streaming() bool {
	return w.opts.FirstParentOnly && w.opts.Order == OrderTopo
}

// nextFirstParent emits the pending commit and moves to its first parent,
// stopping at the first hidden one.
func (w *Walker) nextFirstParent() (plumbing.Hash, error) {
	if w.next.IsZero() {
		return plumbing.ZeroHash, io.EOF
	}

	id := w.next
	parents, err := w.src.Parents(id)
	if err != nil {
		w.Close()
		return plumbing.ZeroHash, fmt.Errorf("failed to walk from %s: %w", w.opts.To, err)
	}

	w.next = plumbing.ZeroHash
	if len(parents) > 0 {
		if _, ok := w.hidden[parents[0]]; !ok {
			w.next = parents[0]
		}
	}
	return id, nil
}

// ForEach calls fn for every remaining commit. Returning storer.ErrStop
// from fn ends the walk without error. The walker is closed afterwards.
func (w *Walker) ForEach(fn func(plumbing.Hash) error) error {
	defer w.Close()

	for {
		id, err := w.Next()
		if errors.Is(err, io.EOF) {
			return nil
		}
		if err != nil {
			return err
		}

		if err := fn(id); err != nil {
			if errors.Is(err, storer.ErrStop) {
				return nil
			}
			return err
		}
	}
}

// Close releases the walker. Further calls to Next return io.EOF.
func (w *Walker) Close() {
	w.closed = true
	w.queue = nil
	w.hidden = nil
	w.next = plumbing.ZeroHash
}

// load resolves the hidden set and, unless the walk streams, computes the
// full traversal order.
func (w *Walker) load() error {
	w.loaded = true

	hidden, err := hiddenSet(w.src, w.opts.From)
	if err != nil {
		return err
	}
	if _, ok := hidden[w.opts.To]; ok {
		return nil
	}
	if w.streaming() {
		w.hidden = hidden
		w.next = w.opts.To
		return nil
	}

	// Collect the visible subgraph: edges to followed, non-hidden parents
	// and the number of children each commit has inside it.
	edges := make(map[plumbing.Hash][]plumbing.Hash)
	inDegree := make(map[plumbing.Hash]int)
	pending := []plumbing.Hash{w.opts.To}
	seen := map[plumbing.Hash]bool{w.opts.To: true}

	for len(pending) > 0 {
		id := pending[len(pending)-1]
		pending = pending[:len(pending)-1]

		parents, err := w.src.Parents(id)
		if err != nil {
			return fmt.Errorf("failed to walk from %s: %w", w.opts.To, err)
		}
		if w.opts.FirstParentOnly && len(parents) > 1 {
			parents = parents[:1]
		}

		for _, parent := range parents {
			if _, ok := hidden[parent]; ok {
				continue
			}
			edges[id] = append(edges[id], parent)
			inDegree[parent]++
			if !seen[parent] {
				seen[parent] = true
				pending = append(pending, parent)
			}
		}
	}

	// A commit is emitted once all of its children have been. Ready
	// commits are taken LIFO so that each line of history is drained
	// before switching to another, as `git log --topo-order` does.
	order := make([]plumbing.Hash, 0, len(seen))
	ready := []plumbing.Hash{w.opts.To}
	for len(ready) > 0 {
		id := ready[len(ready)-1]
		ready = ready[:len(ready)-1]
		order = append(order, id)

		for _, parent := range edges[id] {
			inDegree[parent]--
			if inDegree[parent] == 0 {
				ready = append(ready, parent)
			}
		}
	}

	if w.opts.Order == OrderReverseTopo {
		slices.Reverse(order)
	}
	w.queue = order
	return nil
}

// hiddenSet returns from and all of its ancestors.
func hiddenSet(src CommitReader, from plumbing.Hash) (map[plumbing.Hash]struct{}, error) {
	hidden := make(map[plumbing.Hash]struct{})
	if from.IsZero() {
		return hidden, nil
	}

	commit, err := src.Commit(from)
	if err != nil {
		return nil, err
	}

	iter := object.NewCommitPreorderIter(commit, nil, nil)
	err = iter.ForEach(func(c *object.Commit) error {
		hidden[c.Hash] = struct{}{}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to iterate ancestors of %s: %w", from, err)
	}
	return hidden, nil
}
