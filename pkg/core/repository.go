package core

import (
	"context"
	"io/fs"
)

// Store defines how project files are read and written.
// Paths are relative to the store root and slash separated.
// Keeping the project logic behind this port lets tests run against an
// in-memory store and lets the filesystem adapter add versioning.
type Store interface {
	// ReadFile returns the contents of a file. Missing files yield ErrNotFound.
	ReadFile(ctx context.Context, path string) ([]byte, error)

	// WriteFile replaces the contents of a file atomically, creating parents.
	WriteFile(ctx context.Context, path string, data []byte) error

	// Rename moves a file. It refuses to overwrite (ErrExists) and to
	// rename a path onto itself (ErrSamePath).
	Rename(ctx context.Context, oldPath, newPath string) error

	// Remove deletes a file.
	Remove(ctx context.Context, path string) error

	// Exists reports whether a file or directory exists.
	Exists(ctx context.Context, path string) bool

	// ReadDir lists a directory.
	ReadDir(ctx context.Context, path string) ([]fs.DirEntry, error)
}

// Versioned is implemented by stores that can record a batch of changes.
type Versioned interface {
	// Commit records all staged changes with the given message.
	Commit(ctx context.Context, msg string) error
}

// Watchable is implemented by stores that can report changes.
type Watchable interface {
	Watch(ctx context.Context, pattern string) (<-chan Event, error)
}

// SummaryCache is implemented by stores that can remember topic summaries
// between runs, keyed by path and invalidated when the file changes.
type SummaryCache interface {
	CachedSummary(ctx context.Context, path string, compute func() (TopicSummary, error)) (TopicSummary, error)
	FlushCache(ctx context.Context) error
}

type contextKey string

// ChangeReasonKey is the context key for passing the commit message of an operation.
const ChangeReasonKey contextKey = "change_reason"

// ChangeReason extracts the change reason from ctx, falling back to def.
func ChangeReason(ctx context.Context, def string) string {
	if val, ok := ctx.Value(ChangeReasonKey).(string); ok && val != "" {
		return val
	}
	return def
}
