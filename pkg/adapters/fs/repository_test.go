package fs

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aretw0/marytreat/pkg/core"
	"github.com/aretw0/marytreat/pkg/git"
)

func newTestRepo(t *testing.T, cfg Config) *Repository {
	t.Helper()
	if cfg.Path == "" {
		cfg.Path = t.TempDir()
	}
	repo := NewRepository(cfg)
	require.NoError(t, repo.Initialize(context.Background()))
	return repo
}

func TestRepository_ReadWrite(t *testing.T) {
	ctx := context.Background()
	repo := newTestRepo(t, Config{})

	require.NoError(t, repo.WriteFile(ctx, "media/sub/a.dita", []byte("<concept/>")))
	assert.True(t, repo.Exists(ctx, "media/sub/a.dita"))

	data, err := repo.ReadFile(ctx, "media/sub/a.dita")
	require.NoError(t, err)
	assert.Equal(t, "<concept/>", string(data))

	_, err = repo.ReadFile(ctx, "missing.dita")
	assert.ErrorIs(t, err, core.ErrNotFound)

	entries, err := repo.ReadDir(ctx, "media")
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, "sub", entries[0].Name())
}

func TestRepository_RejectsEscapingPaths(t *testing.T) {
	ctx := context.Background()
	repo := newTestRepo(t, Config{})

	assert.Error(t, repo.WriteFile(ctx, "../outside.dita", []byte("x")))
	_, err := repo.ReadFile(ctx, "../../etc/passwd")
	assert.Error(t, err)
	assert.False(t, repo.Exists(ctx, "../"))
}

func TestRepository_Rename(t *testing.T) {
	ctx := context.Background()
	repo := newTestRepo(t, Config{})
	require.NoError(t, repo.WriteFile(ctx, "a.dita", []byte("a")))
	require.NoError(t, repo.WriteFile(ctx, "b.dita", []byte("b")))

	t.Run("Moves File", func(t *testing.T) {
		require.NoError(t, repo.Rename(ctx, "a.dita", "e_A.dita"))
		assert.False(t, repo.Exists(ctx, "a.dita"))
		assert.True(t, repo.Exists(ctx, "e_A.dita"))
	})

	t.Run("Refuses Existing Target", func(t *testing.T) {
		err := repo.Rename(ctx, "b.dita", "e_A.dita")
		assert.ErrorIs(t, err, core.ErrExists)
		assert.True(t, repo.Exists(ctx, "b.dita"))
	})

	t.Run("Refuses Same Path", func(t *testing.T) {
		assert.ErrorIs(t, repo.Rename(ctx, "b.dita", "./b.dita"), core.ErrSamePath)
	})

	t.Run("Missing Source", func(t *testing.T) {
		assert.ErrorIs(t, repo.Rename(ctx, "nope.dita", "x.dita"), core.ErrNotFound)
	})
}

func TestRepository_Remove(t *testing.T) {
	ctx := context.Background()
	repo := newTestRepo(t, Config{})
	require.NoError(t, repo.WriteFile(ctx, "a.dita", []byte("a")))

	require.NoError(t, repo.Remove(ctx, "a.dita"))
	assert.False(t, repo.Exists(ctx, "a.dita"))
	assert.ErrorIs(t, repo.Remove(ctx, "a.dita"), core.ErrNotFound)
}

func TestRepository_ReadOnly(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "a.dita"), []byte("a"), 0644))

	repo := newTestRepo(t, Config{Path: dir, ReadOnly: true, Versioning: true})

	assert.ErrorIs(t, repo.WriteFile(ctx, "b.dita", nil), core.ErrReadOnly)
	assert.ErrorIs(t, repo.Rename(ctx, "a.dita", "b.dita"), core.ErrReadOnly)
	assert.ErrorIs(t, repo.Remove(ctx, "a.dita"), core.ErrReadOnly)
	assert.NoError(t, repo.Commit(ctx, "noop"))

	data, err := repo.ReadFile(ctx, "a.dita")
	require.NoError(t, err)
	assert.Equal(t, "a", string(data))
}

func TestRepository_InitializeMissingFolder(t *testing.T) {
	repo := NewRepository(Config{Path: filepath.Join(t.TempDir(), "missing")})
	assert.Error(t, repo.Initialize(context.Background()))
}

func TestRepository_Versioning(t *testing.T) {
	if !git.IsInstalled() {
		t.Skip("git not installed")
	}
	ctx := context.Background()
	dir := t.TempDir()
	repo := newTestRepo(t, Config{Path: dir, Versioning: true, AutoInit: true})
	_, _ = repo.git.Run("config", "user.email", "test@example.com")
	_, _ = repo.git.Run("config", "user.name", "Test")

	exclude, err := os.ReadFile(filepath.Join(dir, ".git", "info", "exclude"))
	require.NoError(t, err)
	assert.Contains(t, string(exclude), DefaultSystemDir+"/")
	assert.Contains(t, string(exclude), git.LockFile)
	assert.NoFileExists(t, filepath.Join(dir, ".gitignore"), "the work tree is left untouched")

	// A second open does not repeat the entries.
	require.NoError(t, NewRepository(Config{Path: dir, Versioning: true}).Initialize(ctx))
	again, err := os.ReadFile(filepath.Join(dir, ".git", "info", "exclude"))
	require.NoError(t, err)
	assert.Equal(t, string(exclude), string(again))

	require.NoError(t, repo.WriteFile(ctx, "a.dita", []byte("a")))
	require.NoError(t, repo.Commit(ctx, "docs: add a"))

	require.NoError(t, repo.Rename(ctx, "a.dita", "e_A.dita"))
	reasonCtx := context.WithValue(ctx, core.ChangeReasonKey, "refactor(topics): rename after titles")
	require.NoError(t, repo.Commit(reasonCtx, "ignored"))

	msg, err := repo.git.Run("log", "-1", "--format=%s")
	require.NoError(t, err)
	assert.Equal(t, "refactor(topics): rename after titles", msg)

	status, err := repo.git.Status()
	require.NoError(t, err)
	assert.NotContains(t, status, "e_A.dita")

	// Nothing staged: Commit is a no-op.
	require.NoError(t, repo.Commit(ctx, "empty"))
}

func TestRepository_CachedSummary(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()
	repo := newTestRepo(t, Config{Path: dir})
	require.NoError(t, repo.WriteFile(ctx, "a.dita", []byte("a")))

	calls := 0
	compute := func() (core.TopicSummary, error) {
		calls++
		return core.TopicSummary{Path: "a.dita", Title: "A", MissingShortdesc: true}, nil
	}

	s, err := repo.CachedSummary(ctx, "a.dita", compute)
	require.NoError(t, err)
	assert.Equal(t, "A", s.Title)

	_, err = repo.CachedSummary(ctx, "a.dita", compute)
	require.NoError(t, err)
	assert.Equal(t, 1, calls, "unchanged file must hit the cache")

	require.NoError(t, repo.FlushCache(ctx))
	assert.FileExists(t, filepath.Join(dir, DefaultSystemDir, "index.json"))

	// A fresh repository picks the index up from disk.
	reopened := newTestRepo(t, Config{Path: dir})
	_, err = reopened.CachedSummary(ctx, "a.dita", compute)
	require.NoError(t, err)
	assert.Equal(t, 1, calls)

	// Touching the file invalidates the entry.
	future := time.Now().Add(time.Hour)
	require.NoError(t, os.Chtimes(filepath.Join(dir, "a.dita"), future, future))
	_, err = reopened.CachedSummary(ctx, "a.dita", compute)
	require.NoError(t, err)
	assert.Equal(t, 2, calls)

	_, err = reopened.CachedSummary(ctx, "missing.dita", compute)
	assert.ErrorIs(t, err, core.ErrNotFound)
}

func TestRepository_State(t *testing.T) {
	repo := newTestRepo(t, Config{ReadOnly: true})
	state, ok := repo.State().(RepositoryState)
	require.True(t, ok)
	assert.True(t, state.ReadOnly)
	assert.Equal(t, DefaultSystemDir, state.SystemDir)
	assert.Equal(t, "repository", repo.ComponentType())
}
