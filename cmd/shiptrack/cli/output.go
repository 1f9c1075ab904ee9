package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/dustin/go-humanize"
	"github.com/spf13/pflag"
	"gopkg.in/yaml.v3"

	"github.com/entireio/shiptrack/cmd/shiptrack/cli/repository"
	"github.com/entireio/shiptrack/cmd/shiptrack/cli/textutil"
)

type outputFormat string

const (
	outputText outputFormat = "text"
	outputJSON outputFormat = "json"
	outputYAML outputFormat = "yaml"
)

var _ pflag.Value = (*outputFormat)(nil)

func (f *outputFormat) String() string { return string(*f) }

func (f *outputFormat) Set(s string) error {
	parsed, err := parseOutputFormat(s)
	if err != nil {
		return err
	}
	*f = parsed
	return nil
}

func (f *outputFormat) Type() string { return "format" }

// subjectWidth caps the subject column in text output.
const subjectWidth = 72

func parseOutputFormat(s string) (outputFormat, error) {
	switch f := outputFormat(strings.ToLower(strings.TrimSpace(s))); f {
	case "", outputText:
		return outputText, nil
	case outputJSON, outputYAML:
		return f, nil
	default:
		return "", fmt.Errorf("unknown output format %q (want text, json or yaml)", s)
	}
}

// printer writes command results in the selected format. Text output is
// styled only when w is a terminal.
type printer struct {
	w      io.Writer
	format outputFormat
	now    func() time.Time

	id      lipgloss.Style
	author  lipgloss.Style
	age     lipgloss.Style
	label   lipgloss.Style
	boolean lipgloss.Style
}

func newPrinter(w io.Writer, format outputFormat) *printer {
	r := lipgloss.NewRenderer(w)
	return &printer{
		w:       w,
		format:  format,
		now:     time.Now,
		id:      r.NewStyle().Foreground(lipgloss.Color("3")),
		author:  r.NewStyle().Foreground(lipgloss.Color("6")),
		age:     r.NewStyle().Faint(true),
		label:   r.NewStyle().Bold(true),
		boolean: r.NewStyle().Bold(true),
	}
}

// structured encodes v as JSON or YAML. It reports false for text output.
func (p *printer) structured(v any) (bool, error) {
	switch p.format {
	case outputJSON:
		enc := json.NewEncoder(p.w)
		enc.SetIndent("", "  ")
		if err := enc.Encode(v); err != nil {
			return true, fmt.Errorf("failed to encode json: %w", err)
		}
		return true, nil
	case outputYAML:
		enc := yaml.NewEncoder(p.w)
		enc.SetIndent(2)
		if err := enc.Encode(v); err != nil {
			return true, fmt.Errorf("failed to encode yaml: %w", err)
		}
		if err := enc.Close(); err != nil {
			return true, fmt.Errorf("failed to encode yaml: %w", err)
		}
		return true, nil
	default:
		return false, nil
	}
}

// commits prints one line per commit in text mode:
// short id, author, relative time and subject.
func (p *printer) commits(commits []repository.GitCommit) error {
	if commits == nil {
		commits = []repository.GitCommit{}
	}
	if done, err := p.structured(commits); done {
		return err
	}

	for _, c := range commits {
		line := fmt.Sprintf("%s %s %s %s",
			p.id.Render(textutil.ShortID(c.ID)),
			p.author.Render(c.AuthorName),
			p.age.Render("("+humanize.RelTime(c.Time, p.now(), "ago", "from now")+")"),
			textutil.Truncate(c.SubjectLine(), subjectWidth),
		)
		if _, err := fmt.Fprintln(p.w, line); err != nil {
			return err
		}
	}
	return nil
}

// field is one labelled line of text output.
type field struct {
	label string
	value string
}

// fields prints v structurally, or the labelled lines in text mode.
func (p *printer) fields(v any, lines []field) error {
	if done, err := p.structured(v); done {
		return err
	}

	width := 0
	for _, f := range lines {
		width = max(width, len(f.label))
	}
	for _, f := range lines {
		label := p.label.Render(fmt.Sprintf("%-*s", width+1, f.label+":"))
		if _, err := fmt.Fprintf(p.w, "%s %s\n", label, f.value); err != nil {
			return err
		}
	}
	return nil
}

// value prints v structurally, or text as a single line.
func (p *printer) value(v any, text string) error {
	if done, err := p.structured(v); done {
		return err
	}
	_, err := fmt.Fprintln(p.w, text)
	return err
}

func (p *printer) printBool(v any, b bool) error {
	return p.value(v, p.boolean.Render(fmt.Sprint(b)))
}
