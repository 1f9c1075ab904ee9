package cli

import (
	"runtime"

	"github.com/spf13/cobra"
)

type versionResult struct {
	Version   string `json:"version" yaml:"version"`
	Commit    string `json:"commit" yaml:"commit"`
	GoVersion string `json:"go_version" yaml:"go_version"`
}

func newVersionCmd(s *session) *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the shiptrack version",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			result := versionResult{Version: Version, Commit: Commit, GoVersion: runtime.Version()}
			return s.printer(cmd).value(result, versionString())
		},
	}
}
