package cli

import (
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/entireio/shiptrack/cmd/shiptrack/cli/clierr"
	"github.com/entireio/shiptrack/cmd/shiptrack/cli/logging"
)

func newBetweenCmd(s *session) *cobra.Command {
	var from string

	cmd := &cobra.Command{
		Use:   "between <commit>",
		Short: "List the commits between two points, oldest first",
		Long: `List the commits reachable from <commit> but not from --from, oldest
first, ending with <commit> itself. Without --from, lists every ancestor
of <commit>.

Merged branches are included: this is the full set of changes that
shipping <commit> on top of --from would deliver.`,
		Example: `  # What will go out if we deploy HEAD's commit over the current release
  shiptrack between --from 5c6e280c6c4f5aff08a179526b6d73410552f453 8120765f3fce2da11a5c8e17d3ca800847912424`,
		Args: commitArg("commit"),
		RunE: func(cmd *cobra.Command, args []string) error {
			withCommit(cmd, args[0])

			repo, err := s.repository(cmd)
			if err != nil {
				return err
			}

			commits, err := repo.CommitsBetween(from, args[0])
			if err != nil {
				return clierr.Classify(err)
			}
			return s.printer(cmd).commits(commits)
		},
	}

	cmd.Flags().StringVar(&from, "from", "", "Exclude this commit and its ancestors")

	return cmd
}

func newRecentCmd(s *session) *cobra.Command {
	var count int

	cmd := &cobra.Command{
		Use:   "recent",
		Short: "List recent commits on the main branch, newest first",
		Long: `List the most recent commits on the main branch, following only first
parents so commits made on merged branches are not shown; the merge
commits that brought them in are.

The count defaults to recent_count from .shiptrack/settings.json, or 50.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if !cmd.Flags().Changed("count") {
				count = s.settings.RecentCount
			}

			repo, err := s.repository(cmd)
			if err != nil {
				return err
			}

			commits, err := repo.RecentCommitsOnMainBranch(count)
			if err != nil {
				return clierr.Classify(err)
			}
			logging.Debug(cmd.Context(), "listed recent commits",
				slog.Int("requested", count),
				slog.Int("returned", len(commits)),
			)
			return s.printer(cmd).commits(commits)
		},
	}

	cmd.Flags().IntVarP(&count, "count", "n", 0, "Number of commits to list")

	return cmd
}

func newDependentsCmd(s *session) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "dependents <commit>",
		Short: "List the commits a topic-branch commit depends on",
		Long: `List what shipping <commit> alone would bring along: the main-branch
merge commits that merged <commit>, followed by the commits on its branch
between the fork point and <commit>, excluding <commit> itself.

An invalid commit id lists nothing.`,
		Args: commitArg("commit"),
		RunE: func(cmd *cobra.Command, args []string) error {
			withCommit(cmd, args[0])

			repo, err := s.repository(cmd)
			if err != nil {
				return err
			}

			commits, err := repo.DependentCommits(args[0])
			if err != nil {
				return clierr.Classify(err)
			}
			return s.printer(cmd).commits(commits)
		},
	}

	return cmd
}

func newDescendantsCmd(s *session) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "descendants <commit>",
		Short: "List the commits after a commit on its branch, up to the merge",
		Long: `List the commits that followed <commit> on its topic branch, oldest
first, up to and including the merge commit that brought the branch into
the main branch.

Lists nothing when <commit> is unknown, is on the main branch, or is the
root commit.`,
		Args: commitArg("commit"),
		RunE: func(cmd *cobra.Command, args []string) error {
			withCommit(cmd, args[0])

			repo, err := s.repository(cmd)
			if err != nil {
				return err
			}

			commits, err := repo.DescendantCommitsOfBranch(args[0])
			if err != nil {
				return clierr.Classify(err)
			}
			return s.printer(cmd).commits(commits)
		},
	}

	return cmd
}
