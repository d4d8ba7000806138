package platform

import (
	"context"

	"github.com/aretw0/marytreat/pkg/adapters/fs"
	"github.com/aretw0/marytreat/pkg/core"
	"github.com/aretw0/marytreat/pkg/git"
)

// Init prepares the store of the project folder dir. An injected store is
// returned as is.
func Init(ctx context.Context, dir string, opts ...Option) (core.Store, error) {
	o := applyOptions(opts)
	if o.store != nil {
		return o.store, nil
	}

	repo := initFS(dir, o)
	if err := repo.Initialize(ctx); err != nil {
		return nil, err
	}
	return repo, nil
}

// initFS builds the filesystem adapter from the options.
func initFS(dir string, o *options) *fs.Repository {
	autoInit, _ := o.config["auto_init"].(bool)
	readOnly, _ := o.config["read_only"].(bool)
	systemDir, _ := o.config["system_dir"].(string)
	errorHandler, _ := o.config["watcher_error_handler"].(func(error))

	// Without an explicit setting, a folder inside a Git work tree is
	// versioned.
	versioning, ok := o.config["versioning"].(bool)
	if !ok {
		versioning = git.IsInstalled() && git.NewClient(dir, o.logger).IsRepo()
		if versioning {
			o.logger.Debug("auto-detected git versioning", "path", dir)
		}
	}

	return fs.NewRepository(fs.Config{
		Path:         dir,
		Versioning:   versioning,
		AutoInit:     autoInit,
		ReadOnly:     readOnly,
		Logger:       o.logger,
		SystemDir:    systemDir,
		ErrorHandler: errorHandler,
	})
}
