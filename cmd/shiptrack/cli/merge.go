package cli

import (
	"github.com/spf13/cobra"

	"github.com/entireio/shiptrack/cmd/shiptrack/cli/clierr"
)

type mergeResult struct {
	ID           string `json:"id" yaml:"id"`
	Merge        bool   `json:"merge" yaml:"merge"`
	BranchParent string `json:"branch_parent,omitempty" yaml:"branch_parent,omitempty"`
}

type branchParentResult struct {
	ID           string `json:"id" yaml:"id"`
	BranchParent string `json:"branch_parent" yaml:"branch_parent"`
}

func newMergeCmd(s *session) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "merge <commit>",
		Short: "Report whether a commit is a merge",
		Long: `Print true when <commit> has more than one parent, false otherwise.
For merges, the parent that was merged in is reported as well.`,
		Args: commitArg("commit"),
		RunE: func(cmd *cobra.Command, args []string) error {
			id := args[0]
			withCommit(cmd, id)

			repo, err := s.repository(cmd)
			if err != nil {
				return err
			}

			merge, err := repo.IsMerge(id)
			if err != nil {
				return clierr.Classify(err)
			}

			result := mergeResult{ID: id, Merge: merge}
			if !merge {
				return s.printer(cmd).printBool(result, false)
			}

			parent, err := repo.BranchParent(id)
			if err != nil {
				return clierr.Classify(err)
			}
			result.BranchParent = parent

			p := s.printer(cmd)
			return p.fields(result, []field{
				{label: "merge", value: p.boolean.Render("true")},
				{label: "branch parent", value: parent},
			})
		},
	}

	return cmd
}

func newBranchParentCmd(s *session) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "branch-parent <commit>",
		Short: "Print the parent a merge commit merged in",
		Long: `Print the parent of <commit> that sits on the merged branch, assuming
the main branch was checked out while merging. For an ordinary commit,
prints its only parent.

Root commits and octopus merges have no single branch parent and fail.`,
		Args: commitArg("commit"),
		RunE: func(cmd *cobra.Command, args []string) error {
			id := args[0]
			withCommit(cmd, id)

			repo, err := s.repository(cmd)
			if err != nil {
				return err
			}

			parent, err := repo.BranchParent(id)
			if err != nil {
				return clierr.Classify(err)
			}
			return s.printer(cmd).value(branchParentResult{ID: id, BranchParent: parent}, parent)
		},
	}

	return cmd
}
