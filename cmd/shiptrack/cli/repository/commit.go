package repository

import (
	"time"

	"github.com/go-git/go-git/v5/plumbing/object"

	"github.com/entireio/shiptrack/cmd/shiptrack/cli/textutil"
)

// parentOnMergedBranch is the index of the parent that was merged in.
// The first parent of a merge is the last commit on the branch that was
// checked out; the second is the tip of the branch being merged.
const parentOnMergedBranch = 1

// GitCommit is a detached snapshot of one commit's metadata.
// Parents are referenced by id so a GitCommit outlives the store it came from.
type GitCommit struct {
	ID         string    `json:"id" yaml:"id"`
	AuthorName string    `json:"author_name" yaml:"author_name"`
	Message    string    `json:"message" yaml:"message"`
	Time       time.Time `json:"time" yaml:"time"`
	ParentIDs  []string  `json:"parent_ids" yaml:"parent_ids"`
}

// SubjectLine returns the message up to the first newline.
func (c GitCommit) SubjectLine() string {
	return textutil.FirstLine(c.Message)
}

// AssociatedIDs returns the commit id and, for merges, the id of the
// branch tip it merged.
func (c GitCommit) AssociatedIDs() []string {
	ids := []string{c.ID}
	if len(c.ParentIDs) > parentOnMergedBranch {
		ids = append(ids, c.ParentIDs[parentOnMergedBranch])
	}
	return ids
}

// IsMerge reports whether the commit has more than one parent.
func (c GitCommit) IsMerge() bool {
	return len(c.ParentIDs) > 1
}

func buildCommit(c *object.Commit) GitCommit {
	parentIDs := make([]string, len(c.ParentHashes))
	for i, parent := range c.ParentHashes {
		parentIDs[i] = parent.String()
	}

	return GitCommit{
		ID:         c.Hash.String(),
		AuthorName: c.Author.Name,
		Message:    c.Message,
		Time:       c.Committer.When,
		ParentIDs:  parentIDs,
	}
}
