// Package cli implements the shiptrack command tree.
package cli

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/go-git/go-git/v5"
	"github.com/spf13/cobra"

	"github.com/entireio/shiptrack/cmd/shiptrack/cli/clierr"
	"github.com/entireio/shiptrack/cmd/shiptrack/cli/gitgraph"
	"github.com/entireio/shiptrack/cmd/shiptrack/cli/logging"
	"github.com/entireio/shiptrack/cmd/shiptrack/cli/repository"
	"github.com/entireio/shiptrack/cmd/shiptrack/cli/settings"
)

// Set at build time with -ldflags "-X".
var (
	Version = "dev"
	Commit  = "unknown"
)

// globalOptions holds the persistent flags shared by every command.
type globalOptions struct {
	repoDir   string
	output    outputFormat
	logLevel  string
	logFormat string
}

// session is the per-invocation state: resolved settings and the
// repository the command runs against. The repository is opened lazily so
// commands like version work outside a git checkout.
type session struct {
	opts     globalOptions
	settings settings.Settings
	format   outputFormat

	repo *repository.Repository
	root string

	interactive func() bool
	prompt      func(context.Context) (string, error)
}

// NewRootCmd constructs the shiptrack root command.
func NewRootCmd() *cobra.Command {
	return newRootCmd(&session{
		interactive: stdinIsTerminal,
		prompt:      promptCommitID,
	})
}

func newRootCmd(s *session) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "shiptrack",
		Short: "Analyse a git commit graph for release tracking",
		Long: `shiptrack answers release-tracking questions about a local git repository:
which commits lie between two points, what the main branch looked like
recently, and which commits a topic branch brings into the main branch.

The main branch is origin/production, then origin/master, then master,
whichever exists first.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return s.setup(cmd)
		},
	}
	cmd.SetFlagErrorFunc(func(_ *cobra.Command, err error) error {
		return clierr.Wrap(clierr.CodeUsage, "", err)
	})

	flags := cmd.PersistentFlags()
	flags.StringVarP(&s.opts.repoDir, "repo", "C", ".", "Path inside the git repository to analyse")
	s.opts.output = outputText
	flags.VarP(&s.opts.output, "output", "o", "Output format: text, json or yaml")
	flags.StringVar(&s.opts.logLevel, "log-level", settings.DefaultLogLevel, "Log level: debug, info, warn or error")
	flags.StringVar(&s.opts.logFormat, "log-format", settings.DefaultLogFormat, "Log format: text or json")

	cmd.AddCommand(newExistsCmd(s))
	cmd.AddCommand(newBetweenCmd(s))
	cmd.AddCommand(newRecentCmd(s))
	cmd.AddCommand(newDependentsCmd(s))
	cmd.AddCommand(newDescendantsCmd(s))
	cmd.AddCommand(newMergeCmd(s))
	cmd.AddCommand(newBranchParentCmd(s))
	cmd.AddCommand(newInfoCmd(s))
	cmd.AddCommand(newVersionCmd(s))

	return cmd
}

// setup resolves settings and configures logging. Flags that were set
// explicitly win over settings files and the environment.
func (s *session) setup(cmd *cobra.Command) error {
	s.root = worktreeRoot(s.opts.repoDir)

	loaded, err := settings.Load(s.root)
	if err != nil {
		return clierr.Wrap(clierr.CodeUsage, "invalid settings", err)
	}
	s.settings = loaded

	flags := cmd.Flags()
	if flags.Changed("log-level") {
		s.settings.LogLevel = s.opts.logLevel
	}
	if flags.Changed("log-format") {
		s.settings.LogFormat = s.opts.logFormat
	}
	if flags.Changed("output") {
		s.settings.Output = s.opts.output.String()
	}

	level, err := logging.ParseLevel(s.settings.LogLevel)
	if err != nil {
		return clierr.Wrap(clierr.CodeUsage, "invalid --log-level", err)
	}
	logFormat, err := logging.ParseFormat(s.settings.LogFormat)
	if err != nil {
		return clierr.Wrap(clierr.CodeUsage, "invalid --log-format", err)
	}
	logging.Init(cmd.ErrOrStderr(), level, logFormat)

	s.format, err = parseOutputFormat(s.settings.Output)
	if err != nil {
		return clierr.Wrap(clierr.CodeUsage, "invalid --output", err)
	}

	ctx := logging.WithCommand(cmd.Context(), cmd.Name())
	if s.root != "" {
		ctx = logging.WithRepository(ctx, s.root)
	}
	cmd.SetContext(ctx)
	return nil
}

// repository opens the git repository on first use.
func (s *session) repository(cmd *cobra.Command) (*repository.Repository, error) {
	if s.repo != nil {
		return s.repo, nil
	}

	gitRepo, err := gitgraph.Open(s.opts.repoDir)
	if err != nil {
		if errors.Is(err, git.ErrRepositoryNotExists) {
			return nil, clierr.Newf(clierr.CodeFailure, "not a git repository: %s", s.opts.repoDir)
		}
		return nil, err
	}

	logger := logging.Component("git_repository").With(slog.String("command", cmd.Name()))
	s.repo = repository.New(gitgraph.NewGitStore(gitRepo), repository.WithLogger(logger))
	logging.Debug(cmd.Context(), "opened repository", slog.String("path", s.repo.Path()))
	return s.repo, nil
}

func (s *session) printer(cmd *cobra.Command) *printer {
	return newPrinter(cmd.OutOrStdout(), s.format)
}

// worktreeRoot returns the top of the working tree containing dir, or ""
// when dir is not inside a repository or the repository is bare.
func worktreeRoot(dir string) string {
	gitRepo, err := gitgraph.Open(dir)
	if err != nil {
		return ""
	}
	wt, err := gitRepo.Worktree()
	if err != nil {
		return ""
	}
	return wt.Filesystem.Root()
}

// commitArg validates the number of positional commit ids.
func commitArg(name string) cobra.PositionalArgs {
	return func(_ *cobra.Command, args []string) error {
		if len(args) == 0 {
			return clierr.Newf(clierr.CodeUsage, "%s required", name)
		}
		if len(args) > 1 {
			return clierr.Newf(clierr.CodeUsage, "expected 1 %s, got %d", name, len(args))
		}
		return nil
	}
}

// withCommit tags the command context with the commit being analysed.
func withCommit(cmd *cobra.Command, id string) {
	cmd.SetContext(logging.WithCommit(cmd.Context(), id))
}

func versionString() string {
	return fmt.Sprintf("shiptrack %s (%s)", Version, Commit)
}
