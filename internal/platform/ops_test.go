package platform_test

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/aretw0/marytreat/internal/platform"
	"github.com/aretw0/marytreat/pkg/adapters/fs"
	"github.com/aretw0/marytreat/pkg/core"
	"github.com/aretw0/marytreat/pkg/git"
)

func TestInit(t *testing.T) {
	ctx := context.Background()

	t.Run("AutoInit=true Creates Git Repo", func(t *testing.T) {
		if !git.IsInstalled() {
			t.Skip("git not installed")
		}
		dir := t.TempDir()

		store, err := platform.Init(ctx, dir, platform.WithVersioning(true), platform.WithAutoInit(true))
		if err != nil {
			t.Fatalf("Init failed: %v", err)
		}

		repo, ok := store.(*fs.Repository)
		if !ok {
			t.Fatalf("Expected fs repository")
		}
		if repo.Path != dir {
			t.Errorf("Expected path %s, got %s", dir, repo.Path)
		}
		if _, err := os.Stat(filepath.Join(dir, ".git")); os.IsNotExist(err) {
			t.Errorf(".git directory not found")
		}
		if state := repo.State().(fs.RepositoryState); !state.Versioning {
			t.Errorf("Expected versioning to be on")
		}
	})

	t.Run("Missing Folder Fails", func(t *testing.T) {
		_, err := platform.Init(ctx, filepath.Join(t.TempDir(), "missing"), platform.WithVersioning(false))
		if err == nil {
			t.Error("Expected failure for missing directory")
		}
	})

	t.Run("Plain Folder Is Not Versioned", func(t *testing.T) {
		dir := t.TempDir()

		store, err := platform.Init(ctx, dir, platform.WithReadOnly(true))
		if err != nil {
			t.Fatalf("Init failed: %v", err)
		}
		if _, err := os.Stat(filepath.Join(dir, ".git")); !os.IsNotExist(err) {
			t.Errorf(".git directory should not exist")
		}
		if err := store.WriteFile(ctx, "a.dita", nil); !errors.Is(err, core.ErrReadOnly) {
			t.Errorf("Expected ErrReadOnly, got %v", err)
		}
	})

	t.Run("Injected Store Is Returned", func(t *testing.T) {
		injected := fs.NewRepository(fs.Config{Path: t.TempDir()})
		store, err := platform.Init(ctx, "ignored", platform.WithStore(injected))
		if err != nil {
			t.Fatalf("Init failed: %v", err)
		}
		if store != injected {
			t.Errorf("Expected the injected store")
		}
	})
}

func TestOpen(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()
	write := func(name, content string) {
		if err := os.WriteFile(filepath.Join(dir, name), []byte(content), 0644); err != nil {
			t.Fatal(err)
		}
	}
	write("guide.ditamap", `<map><topicref href="a.dita"/></map>`)
	write("a.dita", `<concept><title>Safety</title></concept>`)

	p, err := platform.Open(ctx, dir, "", platform.WithVersioning(false),
		platform.WithShortdescs(map[string]string{"Safety": "Read this first."}))
	if err != nil {
		t.Fatalf("Open failed: %v", err)
	}
	if p.Path != "guide.ditamap" {
		t.Errorf("Expected discovered map guide.ditamap, got %s", p.Path)
	}

	processed, err := p.ApplyBoilerplateShortdescs(ctx)
	if err != nil {
		t.Fatalf("ApplyBoilerplateShortdescs failed: %v", err)
	}
	if len(processed) != 1 {
		t.Errorf("Expected configured shortdesc to apply, got %v", processed)
	}

	write("other.ditamap", `<map/>`)
	if _, err := platform.Open(ctx, dir, "", platform.WithVersioning(false)); err == nil {
		t.Error("Expected failure with several maps")
	}

	if _, err := platform.Open(ctx, t.TempDir(), "", platform.WithVersioning(false)); !errors.Is(err, core.ErrNoMap) {
		t.Errorf("Expected ErrNoMap, got %v", err)
	}
}
