package fs

import (
	"fmt"
	"os"
	"path/filepath"
)

// TempFilePrefix names the staging files of replaceFile. The watcher ignores them.
const TempFilePrefix = "marytreat-tmp-"

// replaceFile swaps the contents of a topic, map or index file in one rename,
// so readers and the watcher never see a half-written document. An existing
// file keeps its mode; perm applies to new files only.
func replaceFile(filename string, data []byte, perm os.FileMode) error {
	if info, err := os.Stat(filename); err == nil {
		perm = info.Mode().Perm()
	}

	staged, err := stageFile(filepath.Dir(filename), data, perm)
	if err != nil {
		return err
	}
	if err := os.Rename(staged, filename); err != nil {
		_ = os.Remove(staged)
		return fmt.Errorf("failed to replace %s: %w", filepath.Base(filename), err)
	}
	return nil
}

// stageFile writes data to a synced staging file in dir and returns its path.
func stageFile(dir string, data []byte, perm os.FileMode) (string, error) {
	f, err := os.CreateTemp(dir, TempFilePrefix+"*")
	if err != nil {
		return "", fmt.Errorf("failed to stage file: %w", err)
	}
	name := f.Name()

	_, err = f.Write(data)
	if err == nil {
		err = f.Sync()
	}
	if closeErr := f.Close(); err == nil {
		err = closeErr
	}
	if err == nil {
		err = os.Chmod(name, perm)
	}
	if err != nil {
		_ = os.Remove(name)
		return "", fmt.Errorf("failed to stage %s: %w", filepath.Base(name), err)
	}
	return name, nil
}
