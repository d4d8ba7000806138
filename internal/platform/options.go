package platform

import (
	"log/slog"

	"github.com/aretw0/marytreat/pkg/core"
)

// options holds the internal configuration for opening a project.
type options struct {
	store      core.Store
	logger     *slog.Logger
	config     map[string]interface{}
	shortdescs map[string]string
}

// Option defines a functional option for configuring MaryTreat.
type Option func(*options)

// defaultOptions returns the default configuration.
func defaultOptions() *options {
	return &options{
		config:     make(map[string]interface{}),
		shortdescs: make(map[string]string),
	}
}

func applyOptions(opts []Option) *options {
	o := defaultOptions()
	for _, opt := range opts {
		opt(o)
	}
	if o.logger == nil {
		o.logger = slog.Default()
	}
	return o
}

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) Option {
	return func(o *options) {
		o.logger = logger
	}
}

// WithStore injects a storage adapter. The default filesystem adapter is
// then skipped.
func WithStore(store core.Store) Option {
	return func(o *options) {
		o.store = store
	}
}

// WithVersioning stages every change in Git and commits after each
// operation. Disabled by default.
func WithVersioning(enabled bool) Option {
	return func(o *options) {
		o.config["versioning"] = enabled
	}
}

// WithAutoInit runs git init when versioning is on and the project folder
// is not a repository yet.
func WithAutoInit(auto bool) Option {
	return func(o *options) {
		o.config["auto_init"] = auto
	}
}

// WithReadOnly rejects every write. The summary cache is not persisted.
func WithReadOnly(enabled bool) Option {
	return func(o *options) {
		o.config["read_only"] = enabled
	}
}

// WithSystemDir sets the hidden directory holding the summary cache.
// Defaults to ".marytreat".
func WithSystemDir(name string) Option {
	return func(o *options) {
		o.config["system_dir"] = name
	}
}

// WithShortdescs adds boilerplate short descriptions keyed by topic title.
func WithShortdescs(m map[string]string) Option {
	return func(o *options) {
		for k, v := range m {
			o.shortdescs[k] = v
		}
	}
}

// WithWatcherErrorHandler registers a callback for errors raised while
// watching the project folder.
func WithWatcherErrorHandler(fn func(error)) Option {
	return func(o *options) {
		o.config["watcher_error_handler"] = fn
	}
}
