package repository

import (
	"testing"

	"github.com/entireio/shiptrack/cmd/shiptrack/cli/gitgraph/gitgraphtest"
)

// Each builder reproduces one of the diagrams below. Commits drawn as "o"
// are anonymous; lettered commits can be looked up with Builder.Version.

const master = gitgraphtest.DefaultBranch

var (
	version = gitgraphtest.Version
	author  = gitgraphtest.Author
	message = gitgraphtest.Message
)

// -A
func singleCommit(t *testing.T) *gitgraphtest.Builder {
	b := gitgraphtest.New(t)
	b.Commit(version("A"))
	return b
}

// -A-B-C-o
func linearHistory(t *testing.T) *gitgraphtest.Builder {
	b := gitgraphtest.New(t)
	b.Commit(version("A"))
	b.Commit(version("B"))
	b.Commit(version("C"), author("Charly"), message("Change can confuse"))
	b.Commit()
	return b
}

//	   o-A-B---
//	  /        \
//	-o-------o--C---o
func mergedTopicBranch(t *testing.T) *gitgraphtest.Builder {
	b := gitgraphtest.New(t)
	b.Commit()
	b.CreateBranch("topic")
	b.Checkout("topic")
	b.Commit()
	b.Commit(version("A"))
	b.Checkout(master)
	b.Commit()
	b.Checkout("topic")
	b.Commit(version("B"), author("Berta"), message("Built by Berta"))
	b.Checkout(master)
	b.Merge("topic", version("C"))
	b.Commit()
	return b
}

//	      B--C----E
//	     /         \
//	-X--A-------D---F---G-
func trunkWithFeatureMerge(t *testing.T) *gitgraphtest.Builder {
	b := gitgraphtest.New(t)
	b.Commit(version("X"))
	b.Commit(version("A"))
	b.CreateBranch("topic")
	b.Checkout("topic")
	b.Commit(version("B"))
	b.Commit(version("C"))
	b.Checkout(master)
	b.Commit(version("D"))
	b.Checkout("topic")
	b.Commit(version("E"))
	b.Checkout(master)
	b.Merge("topic", version("F"))
	b.Commit(version("G"), author("Gregory"), message("Good goes green"))
	return b
}

// -A-o
func rootThenCommit(t *testing.T) *gitgraphtest.Builder {
	b := gitgraphtest.New(t)
	b.Commit(version("A"))
	b.Commit()
	return b
}

// -o-A-o
func commitInMiddleOfTrunk(t *testing.T) *gitgraphtest.Builder {
	b := gitgraphtest.New(t)
	b.Commit()
	b.Commit(version("A"))
	b.Commit()
	return b
}

//	   o-A-o
//	  /
//	-o-----o
func unmergedTopicBranch(t *testing.T) *gitgraphtest.Builder {
	b := gitgraphtest.New(t)
	b.Commit()
	b.CreateBranch("topic")
	b.Checkout("topic")
	b.Commit()
	b.Commit(version("A"))
	b.Commit()
	b.Checkout(master)
	b.Commit()
	return b
}

//	   A-B-C-o
//	  /       \
//	-o----o----o
func mergedBranchWithTrailingCommit(t *testing.T) *gitgraphtest.Builder {
	b := gitgraphtest.New(t)
	b.Commit()
	b.CreateBranch("topic")
	b.Checkout("topic")
	b.Commit(version("A"))
	b.Commit(version("B"), author("Berta"), message("Built by Berta"))
	b.Commit(version("C"))
	b.Commit()
	b.Checkout(master)
	b.Commit()
	b.Merge("topic")
	return b
}

//	   A-B
//	  /   \
//	-o--o--C
func shortMergedBranch(t *testing.T) *gitgraphtest.Builder {
	b := gitgraphtest.New(t)
	b.Commit()
	b.CreateBranch("topic")
	b.Checkout("topic")
	b.Commit(version("A"))
	b.Commit(version("B"))
	b.Checkout(master)
	b.Commit()
	b.Merge("topic", version("C"))
	return b
}

//	     B-C
//	    /   \
//	-X-A--D--F
func forkedAtTrunkCommit(t *testing.T) *gitgraphtest.Builder {
	b := gitgraphtest.New(t)
	b.Commit(version("X"))
	b.Commit(version("A"))
	b.CreateBranch("topic")
	b.Checkout("topic")
	b.Commit(version("B"))
	b.Commit(version("C"))
	b.Checkout(master)
	b.Commit(version("D"))
	b.Merge("topic", version("F"))
	return b
}

//	   A
//	  / \
//	-o-o-M
//	  \ /
//	   B
func octopusMerge(t *testing.T) *gitgraphtest.Builder {
	b := gitgraphtest.New(t)
	b.Commit()
	b.CreateBranch("one")
	b.CreateBranch("two")
	b.Checkout("one")
	b.Commit(version("A"))
	b.Checkout("two")
	b.Commit(version("B"))
	b.Checkout(master)
	b.Commit()
	b.Octopus([]string{"one", "two"}, version("M"))
	return b
}

// Branch two forks from A on branch one and lands first, at M1. Branch one
// picks up C afterwards and lands at M2.
//
//	     B
//	    / \
//	   A---\---C
//	  /     \   \
//	-o-------M1--M2
func nestedTopicBranches(t *testing.T) *gitgraphtest.Builder {
	b := gitgraphtest.New(t)
	b.Commit()
	b.CreateBranch("one")
	b.Checkout("one")
	b.Commit(version("A"))
	b.CreateBranch("two")
	b.Checkout("two")
	b.Commit(version("B"))
	b.Checkout(master)
	b.Merge("two", version("M1"))
	b.Checkout("one")
	b.Commit(version("C"))
	b.Checkout(master)
	b.Merge("one", version("M2"))
	return b
}

// -A-o-o-...-o-Y-Z with n anonymous commits between A and Y.
func longTrunk(t *testing.T, n int) *gitgraphtest.Builder {
	b := gitgraphtest.New(t)
	b.Commit(version("A"))
	for range n {
		b.Commit()
	}
	b.Commit(version("Y"))
	b.Commit(version("Z"))
	return b
}
