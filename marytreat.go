package marytreat

import (
	"context"
	"log/slog"

	"github.com/aretw0/marytreat/internal/platform"
	"github.com/aretw0/marytreat/pkg/core"
	"github.com/aretw0/marytreat/pkg/project"
)

// --- Types ---

// Project is a public alias for a loaded DITA project.
type Project = project.Project

// Config is a public alias for the project configuration.
type Config = platform.Config

// --- Configuration ---

// Option defines a functional option for configuring MaryTreat.
type Option = platform.Option

// WithVersioning stages changes in Git and commits after each operation.
func WithVersioning(enabled bool) Option {
	return platform.WithVersioning(enabled)
}

// WithAutoInit runs git init when versioning is on and the folder is not a repository.
func WithAutoInit(auto bool) Option {
	return platform.WithAutoInit(auto)
}

// WithReadOnly rejects every write.
func WithReadOnly(enabled bool) Option {
	return platform.WithReadOnly(enabled)
}

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) Option {
	return platform.WithLogger(logger)
}

// WithStore allows injecting a custom storage adapter.
func WithStore(store core.Store) Option {
	return platform.WithStore(store)
}

// WithSystemDir allows specifying the hidden directory name (e.g. ".marytreat").
func WithSystemDir(name string) Option {
	return platform.WithSystemDir(name)
}

// WithShortdescs adds boilerplate short descriptions keyed by topic title.
func WithShortdescs(m map[string]string) Option {
	return platform.WithShortdescs(m)
}

// WithWatcherErrorHandler receives errors raised while watching the project folder.
func WithWatcherErrorHandler(fn func(error)) Option {
	return platform.WithWatcherErrorHandler(fn)
}

// --- Factory ---

// Open loads the project of folder dir. An empty mapPath picks the only
// ditamap of dir.
func Open(ctx context.Context, dir, mapPath string, opts ...Option) (*Project, error) {
	return platform.Open(ctx, dir, mapPath, opts...)
}

// Check summarizes every topic of a map without loading the project.
func Check(ctx context.Context, dir, mapPath string, opts ...Option) ([]core.TopicSummary, error) {
	if mapPath == "" {
		found, err := platform.FindMap(dir)
		if err != nil {
			return nil, err
		}
		mapPath = found
	}
	store, err := Init(ctx, dir, opts...)
	if err != nil {
		return nil, err
	}
	return project.Check(ctx, store, mapPath)
}

// LoadConfig reads .marytreat.yaml and MARYTREAT_* variables for dir.
func LoadConfig(dir string) (Config, error) {
	return platform.LoadConfig(dir)
}

// FindRoot looks upwards from startDir for a project folder.
func FindRoot(startDir string) (string, error) {
	return platform.FindRoot(startDir)
}

// --- Semantic Commits ---

const (
	CommitTypeFeat     = platform.CommitTypeFeat
	CommitTypeFix      = platform.CommitTypeFix
	CommitTypeDocs     = platform.CommitTypeDocs
	CommitTypeRefactor = platform.CommitTypeRefactor
	CommitTypeChore    = platform.CommitTypeChore
)

// AppendFooter appends the MaryTreat footer to a free-form commit message.
func AppendFooter(msg string) string {
	return platform.AppendFooter(msg)
}

// FormatCommitMessage builds a Conventional Commit message with the MaryTreat footer.
func FormatCommitMessage(ctype, scope, subject, body string) string {
	return platform.FormatCommitMessage(ctype, scope, subject, body)
}

// Init prepares the store of folder dir without loading a project.
func Init(ctx context.Context, dir string, opts ...Option) (core.Store, error) {
	return platform.Init(ctx, dir, opts...)
}
