package cli

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/charmbracelet/huh"
	"github.com/go-git/go-git/v5/plumbing"
	"golang.org/x/term"
)

// errPromptAborted is returned when the user cancels an interactive prompt.
var errPromptAborted = errors.New("prompt aborted")

// NewAccessibleForm creates a huh form that switches to accessible mode
// (plain prompts, no TUI) when ACCESSIBLE is set.
func NewAccessibleForm(groups ...*huh.Group) *huh.Form {
	return huh.NewForm(groups...).WithAccessible(os.Getenv("ACCESSIBLE") != "")
}

// stdinIsTerminal reports whether prompting the user is possible.
func stdinIsTerminal() bool {
	return term.IsTerminal(int(os.Stdin.Fd())) //nolint:gosec // fd fits in int on supported platforms
}

// promptCommitID asks for a full commit id.
func promptCommitID(ctx context.Context) (string, error) {
	var id string

	form := NewAccessibleForm(
		huh.NewGroup(
			huh.NewInput().
				Title("Commit id").
				Description("Full 40 character commit id").
				CharLimit(40).
				Value(&id).
				Validate(validateCommitInput),
		),
	)

	if err := form.RunWithContext(ctx); err != nil {
		if errors.Is(err, huh.ErrUserAborted) {
			return "", errPromptAborted
		}
		return "", fmt.Errorf("failed to read commit id: %w", err)
	}

	return strings.TrimSpace(id), nil
}

func validateCommitInput(s string) error {
	s = strings.TrimSpace(s)
	if s == "" {
		return errors.New("commit id is required")
	}
	if !plumbing.IsHash(s) {
		return errors.New("commit id must be 40 hexadecimal characters")
	}
	return nil
}
