package cli

import (
	"errors"

	"github.com/spf13/cobra"

	"github.com/entireio/shiptrack/cmd/shiptrack/cli/clierr"
)

type existsResult struct {
	ID     string `json:"id" yaml:"id"`
	Exists bool   `json:"exists" yaml:"exists"`
}

func newExistsCmd(s *session) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "exists [commit]",
		Short: "Report whether a commit exists",
		Long: `Print true when the full 40 character commit id names a commit in the
repository, false otherwise. Abbreviated or malformed ids print false.

When no commit is given and stdin is a terminal, prompts for one.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var id string
			switch {
			case len(args) == 1:
				id = args[0]
			case s.interactive():
				prompted, err := s.prompt(cmd.Context())
				if err != nil {
					if errors.Is(err, errPromptAborted) {
						return nil
					}
					return err
				}
				id = prompted
			default:
				return clierr.New(clierr.CodeUsage, "commit required: shiptrack exists <commit>")
			}
			withCommit(cmd, id)

			repo, err := s.repository(cmd)
			if err != nil {
				return err
			}

			found := repo.Exists(id)
			return s.printer(cmd).printBool(existsResult{ID: id, Exists: found}, found)
		},
	}

	return cmd
}
