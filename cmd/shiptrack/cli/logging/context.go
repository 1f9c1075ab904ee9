package logging

import (
	"context"
	"log/slog"
)

type contextKey int

const (
	componentKey contextKey = iota
	commandKey
	repositoryKey
	commitKey
)

// WithComponent returns a context tagged with the subsystem emitting logs.
func WithComponent(ctx context.Context, component string) context.Context {
	return context.WithValue(ctx, componentKey, component)
}

// WithCommand returns a context tagged with the CLI command being run.
func WithCommand(ctx context.Context, command string) context.Context {
	return context.WithValue(ctx, commandKey, command)
}

// WithRepository returns a context tagged with the repository path.
func WithRepository(ctx context.Context, path string) context.Context {
	return context.WithValue(ctx, repositoryKey, path)
}

// WithCommit returns a context tagged with the commit being analysed.
func WithCommit(ctx context.Context, commitID string) context.Context {
	return context.WithValue(ctx, commitKey, commitID)
}

// ComponentFromContext returns the component, or "" if unset.
func ComponentFromContext(ctx context.Context) string {
	return stringValue(ctx, componentKey)
}

// CommandFromContext returns the command name, or "" if unset.
func CommandFromContext(ctx context.Context) string {
	return stringValue(ctx, commandKey)
}

// RepositoryFromContext returns the repository path, or "" if unset.
func RepositoryFromContext(ctx context.Context) string {
	return stringValue(ctx, repositoryKey)
}

// CommitFromContext returns the commit id, or "" if unset.
func CommitFromContext(ctx context.Context) string {
	return stringValue(ctx, commitKey)
}

func stringValue(ctx context.Context, key contextKey) string {
	if ctx == nil {
		return ""
	}
	v, _ := ctx.Value(key).(string) //nolint:errcheck // type assertion, not an error
	return v
}

// attrsFromContext extracts the non-empty logging attributes stored in ctx.
func attrsFromContext(ctx context.Context) []slog.Attr {
	var attrs []slog.Attr
	if v := ComponentFromContext(ctx); v != "" {
		attrs = append(attrs, slog.String("component", v))
	}
	if v := CommandFromContext(ctx); v != "" {
		attrs = append(attrs, slog.String("command", v))
	}
	if v := RepositoryFromContext(ctx); v != "" {
		attrs = append(attrs, slog.String("repository", v))
	}
	if v := CommitFromContext(ctx); v != "" {
		attrs = append(attrs, slog.String("commit", v))
	}
	return attrs
}
