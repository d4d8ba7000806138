package fs

import (
	"context"
	"errors"
	"fmt"
	iofs "io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/aretw0/marytreat/pkg/core"
	"github.com/aretw0/marytreat/pkg/git"
)

// DefaultSystemDir is the hidden directory holding the summary cache.
const DefaultSystemDir = ".marytreat"

// Repository implements core.Store on a project folder, optionally
// staging every change in Git.
type Repository struct {
	Path   string
	git    *git.Client
	cache  *cache
	config Config

	mu            sync.RWMutex
	watcherActive bool
}

// Config holds the configuration for the filesystem repository.
type Config struct {
	Path         string
	Versioning   bool // stage changes in Git and allow Commit
	AutoInit     bool // git init when the folder is not a repository
	ReadOnly     bool
	Logger       *slog.Logger
	SystemDir    string      // e.g. ".marytreat"
	ErrorHandler func(error) // receives watcher errors; optional
}

// NewRepository creates a new filesystem-backed repository.
func NewRepository(config Config) *Repository {
	if config.SystemDir == "" {
		config.SystemDir = DefaultSystemDir
	}
	if config.Logger == nil {
		config.Logger = slog.Default()
	}
	return &Repository{
		Path:   config.Path,
		git:    git.NewClient(config.Path, config.Logger),
		config: config,
		cache:  newCache(config.Path, config.SystemDir),
	}
}

// Initialize checks the folder and prepares Git when versioning is on.
func (r *Repository) Initialize(ctx context.Context) error {
	info, err := os.Stat(r.Path)
	if os.IsNotExist(err) {
		return fmt.Errorf("project path does not exist: %s", r.Path)
	}
	if err != nil {
		return err
	}
	if !info.IsDir() {
		return fmt.Errorf("project path is not a directory: %s", r.Path)
	}

	if err := r.cache.Load(); err != nil {
		r.config.Logger.Warn("summary cache unreadable, starting fresh", "error", err)
	}

	if !r.config.Versioning || r.config.ReadOnly {
		return nil
	}
	if !git.IsInstalled() {
		return fmt.Errorf("git is not installed")
	}
	if !r.git.IsRepo() {
		if !r.config.AutoInit {
			return fmt.Errorf("path is not a git repository: %s", r.Path)
		}
		if err := r.git.Init(); err != nil {
			return fmt.Errorf("failed to git init: %w", err)
		}
	}
	if _, err := r.ensureIgnore(); err != nil {
		return fmt.Errorf("failed to update git excludes: %w", err)
	}
	return nil
}

// ensureIgnore keeps the system directory and lock file out of Git. The
// entries go to the repository's info/exclude file, leaving the work tree
// untouched.
func (r *Repository) ensureIgnore() (bool, error) {
	ignorePath, err := r.git.Run("rev-parse", "--git-path", "info/exclude")
	if err != nil {
		return false, err
	}
	if !filepath.IsAbs(ignorePath) {
		ignorePath = filepath.Join(r.Path, ignorePath)
	}
	if err := os.MkdirAll(filepath.Dir(ignorePath), 0755); err != nil {
		return false, err
	}
	entries := []string{r.config.SystemDir + "/", git.LockFile}

	content, err := os.ReadFile(ignorePath)
	if err != nil && !os.IsNotExist(err) {
		return false, err
	}

	present := make(map[string]bool)
	for _, line := range strings.Split(string(content), "\n") {
		present[strings.TrimSpace(line)] = true
	}

	var missing []string
	for _, e := range entries {
		if !present[e] {
			missing = append(missing, e)
		}
	}
	if len(missing) == 0 {
		return false, nil
	}

	f, err := os.OpenFile(ignorePath, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
	if err != nil {
		return false, err
	}
	defer f.Close()

	if len(content) > 0 && !strings.HasSuffix(string(content), "\n") {
		if _, err := f.WriteString("\n"); err != nil {
			return false, err
		}
	}
	if _, err := f.WriteString(strings.Join(missing, "\n") + "\n"); err != nil {
		return false, err
	}
	return true, nil
}

// abs resolves a store path, refusing paths that leave the root.
func (r *Repository) abs(rel string) (string, error) {
	clean := filepath.Clean(filepath.FromSlash(rel))
	if filepath.IsAbs(clean) || clean == ".." || strings.HasPrefix(clean, ".."+string(filepath.Separator)) {
		return "", fmt.Errorf("path escapes project folder: %s", rel)
	}
	return filepath.Join(r.Path, clean), nil
}

func (r *Repository) gitPath(rel string) string {
	return filepath.ToSlash(filepath.Clean(filepath.FromSlash(rel)))
}

func (r *Repository) versioned() bool {
	return r.config.Versioning && !r.config.ReadOnly
}

// ReadFile reads a file relative to the project folder.
func (r *Repository) ReadFile(ctx context.Context, path string) ([]byte, error) {
	full, err := r.abs(path)
	if err != nil {
		return nil, err
	}
	data, err := os.ReadFile(full)
	if os.IsNotExist(err) {
		return nil, fmt.Errorf("%s: %w", path, core.ErrNotFound)
	}
	return data, err
}

// WriteFile writes data atomically and stages it when versioning.
func (r *Repository) WriteFile(ctx context.Context, path string, data []byte) error {
	if r.config.ReadOnly {
		return core.ErrReadOnly
	}
	full, err := r.abs(path)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(full), 0755); err != nil {
		return fmt.Errorf("failed to create directories: %w", err)
	}
	if err := replaceFile(full, data, 0644); err != nil {
		return fmt.Errorf("failed to write file: %w", err)
	}
	if !r.versioned() {
		return nil
	}
	unlock, err := r.git.Lock(ctx)
	if err != nil {
		return fmt.Errorf("failed to acquire git lock: %w", err)
	}
	defer unlock()
	if err := r.git.Add(r.gitPath(path)); err != nil {
		return fmt.Errorf("failed to git add: %w", err)
	}
	return nil
}

// Rename moves a file inside the project folder.
func (r *Repository) Rename(ctx context.Context, oldPath, newPath string) error {
	if r.config.ReadOnly {
		return core.ErrReadOnly
	}
	oldFull, err := r.abs(oldPath)
	if err != nil {
		return err
	}
	newFull, err := r.abs(newPath)
	if err != nil {
		return err
	}
	if oldFull == newFull {
		return fmt.Errorf("%s: %w", oldPath, core.ErrSamePath)
	}
	if _, err := os.Stat(oldFull); os.IsNotExist(err) {
		return fmt.Errorf("%s: %w", oldPath, core.ErrNotFound)
	}
	if _, err := os.Stat(newFull); err == nil {
		return fmt.Errorf("%s: %w", newPath, core.ErrExists)
	}
	if err := os.MkdirAll(filepath.Dir(newFull), 0755); err != nil {
		return fmt.Errorf("failed to create directories: %w", err)
	}

	if r.versioned() {
		unlock, err := r.git.Lock(ctx)
		if err != nil {
			return fmt.Errorf("failed to acquire git lock: %w", err)
		}
		defer unlock()
		// git mv only knows tracked files; fall back to a plain rename.
		if err := r.git.Mv(r.gitPath(oldPath), r.gitPath(newPath)); err == nil {
			r.cache.Delete(r.gitPath(oldPath))
			return nil
		}
	}

	if err := os.Rename(oldFull, newFull); err != nil {
		return fmt.Errorf("failed to rename %s: %w", oldPath, err)
	}
	r.cache.Delete(r.gitPath(oldPath))

	if r.versioned() {
		if err := r.git.Add(r.gitPath(newPath)); err != nil {
			return fmt.Errorf("failed to git add: %w", err)
		}
	}
	return nil
}

// Remove deletes a file.
func (r *Repository) Remove(ctx context.Context, path string) error {
	if r.config.ReadOnly {
		return core.ErrReadOnly
	}
	full, err := r.abs(path)
	if err != nil {
		return err
	}
	if _, err := os.Stat(full); os.IsNotExist(err) {
		return fmt.Errorf("%s: %w", path, core.ErrNotFound)
	}
	r.cache.Delete(r.gitPath(path))

	if r.versioned() {
		unlock, err := r.git.Lock(ctx)
		if err != nil {
			return fmt.Errorf("failed to acquire git lock: %w", err)
		}
		defer unlock()
		if err := r.git.Rm(r.gitPath(path)); err == nil {
			return nil
		}
	}
	return os.Remove(full)
}

// Exists reports whether path exists in the project folder.
func (r *Repository) Exists(ctx context.Context, path string) bool {
	full, err := r.abs(path)
	if err != nil {
		return false
	}
	_, err = os.Stat(full)
	return err == nil
}

// ReadDir lists a directory of the project folder.
func (r *Repository) ReadDir(ctx context.Context, path string) ([]iofs.DirEntry, error) {
	full, err := r.abs(path)
	if err != nil {
		return nil, err
	}
	entries, err := os.ReadDir(full)
	if os.IsNotExist(err) {
		return nil, fmt.Errorf("%s: %w", path, core.ErrNotFound)
	}
	return entries, err
}

// Commit records the staged changes. The message in ctx under
// core.ChangeReasonKey wins over msg. Without versioning it does nothing.
func (r *Repository) Commit(ctx context.Context, msg string) error {
	if !r.versioned() {
		return nil
	}
	unlock, err := r.git.Lock(ctx)
	if err != nil {
		return fmt.Errorf("failed to acquire git lock: %w", err)
	}
	defer unlock()

	staged, err := r.git.HasStaged()
	if err != nil {
		return fmt.Errorf("failed to inspect index: %w", err)
	}
	if !staged {
		r.config.Logger.Debug("nothing to commit")
		return nil
	}
	if err := r.git.Commit(core.ChangeReason(ctx, msg)); err != nil {
		return fmt.Errorf("failed to git commit: %w", err)
	}
	return nil
}

// CachedSummary returns the cached summary of a file when its mtime has not
// changed, and otherwise computes and caches a fresh one.
func (r *Repository) CachedSummary(ctx context.Context, path string, compute func() (core.TopicSummary, error)) (core.TopicSummary, error) {
	full, err := r.abs(path)
	if err != nil {
		return core.TopicSummary{}, err
	}
	info, err := os.Stat(full)
	if err != nil {
		if errors.Is(err, iofs.ErrNotExist) {
			return core.TopicSummary{}, fmt.Errorf("%s: %w", path, core.ErrNotFound)
		}
		return core.TopicSummary{}, err
	}
	key := r.gitPath(path)
	if entry, ok := r.cache.Get(key, info.ModTime()); ok {
		return entry.Summary, nil
	}
	s, err := compute()
	if err != nil {
		return core.TopicSummary{}, err
	}
	r.cache.Set(key, &indexEntry{Summary: s, LastModified: info.ModTime()})
	return s, nil
}

// FlushCache persists the summary cache unless the repository is read-only.
func (r *Repository) FlushCache(ctx context.Context) error {
	if r.config.ReadOnly {
		return nil
	}
	return r.cache.Save()
}

var (
	_ core.Store        = (*Repository)(nil)
	_ core.Versioned    = (*Repository)(nil)
	_ core.Watchable    = (*Repository)(nil)
	_ core.SummaryCache = (*Repository)(nil)
)
