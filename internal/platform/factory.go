package platform

import (
	"context"
	"errors"
	"path/filepath"

	"github.com/aretw0/marytreat/pkg/project"
)

// Open loads the project of folder dir. The map path is relative to dir;
// when empty, the only ditamap of dir is used.
//
//	p, err := platform.Open(ctx, "./manual", "", platform.WithVersioning(false))
func Open(ctx context.Context, dir, mapPath string, opts ...Option) (*project.Project, error) {
	o := applyOptions(opts)

	if mapPath == "" {
		if o.store != nil {
			return nil, errors.New("a map path is required with an injected store")
		}
		found, err := FindMap(dir)
		if err != nil {
			return nil, err
		}
		mapPath = found
	}

	store, err := Init(ctx, dir, opts...)
	if err != nil {
		return nil, err
	}

	return project.Open(ctx, store, filepath.ToSlash(mapPath),
		project.WithLogger(o.logger),
		project.WithShortdescs(o.shortdescs),
	)
}
