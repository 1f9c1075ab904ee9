package cli

import (
	"errors"

	"github.com/spf13/cobra"

	"github.com/entireio/shiptrack/cmd/shiptrack/cli/repository"
)

type infoResult struct {
	Path          string `json:"path" yaml:"path"`
	RemoteURL     string `json:"remote_url,omitempty" yaml:"remote_url,omitempty"`
	MainBranch    string `json:"main_branch,omitempty" yaml:"main_branch,omitempty"`
	MainBranchTip string `json:"main_branch_tip,omitempty" yaml:"main_branch_tip,omitempty"`
}

func newInfoCmd(s *session) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "info",
		Short: "Show the repository and main branch being analysed",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			repo, err := s.repository(cmd)
			if err != nil {
				return err
			}

			result := infoResult{Path: repo.Path()}
			if url, ok := repo.RemoteURL(); ok {
				result.RemoteURL = url
			}

			name, tip, err := repo.MainBranch()
			switch {
			case err == nil:
				result.MainBranch = name.String()
				result.MainBranchTip = tip
			case errors.Is(err, repository.ErrMainBranchNotFound):
				// Reported as "(none)" below.
			default:
				return err
			}

			return s.printer(cmd).fields(result, []field{
				{label: "path", value: result.Path},
				{label: "remote", value: orNone(result.RemoteURL)},
				{label: "main branch", value: orNone(result.MainBranch)},
				{label: "main branch tip", value: orNone(result.MainBranchTip)},
			})
		},
	}

	return cmd
}

func orNone(s string) string {
	if s == "" {
		return "(none)"
	}
	return s
}
