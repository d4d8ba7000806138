package platform

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/caarlos0/env/v11"
	"gopkg.in/yaml.v3"

	"github.com/aretw0/marytreat/pkg/adapters/fs"
	"github.com/aretw0/marytreat/pkg/project"
	"github.com/aretw0/marytreat/pkg/releasenotes"
)

// ConfigFile is the optional per-project configuration file.
const ConfigFile = ".marytreat.yaml"

// Config is the project configuration. Values come from the defaults, then
// ConfigFile, then MARYTREAT_* environment variables. CLI flags are applied
// on top by the caller.
type Config struct {
	Map               string            `yaml:"map" env:"MARYTREAT_MAP"`
	ImagePrefix       string            `yaml:"image_prefix" env:"MARYTREAT_IMAGE_PREFIX"`
	RootConceptTitle  string            `yaml:"root_concept_title" env:"MARYTREAT_ROOT_CONCEPT_TITLE"`
	Versioning        *bool             `yaml:"versioning" env:"MARYTREAT_VERSIONING"`
	AutoInit          bool              `yaml:"auto_init" env:"MARYTREAT_AUTO_INIT"`
	ReadOnly          bool              `yaml:"read_only" env:"MARYTREAT_READ_ONLY"`
	SystemDir         string            `yaml:"system_dir" env:"MARYTREAT_SYSTEM_DIR"`
	WatchPattern      string            `yaml:"watch_pattern" env:"MARYTREAT_WATCH_PATTERN"`
	ReleaseNotesFile  string            `yaml:"release_notes_file" env:"MARYTREAT_RELEASE_NOTES_FILE"`
	ReleaseNotesTitle string            `yaml:"release_notes_title" env:"MARYTREAT_RELEASE_NOTES_TITLE"`
	Shortdescs        map[string]string `yaml:"shortdescs"`
}

// DefaultConfig returns the built-in configuration.
func DefaultConfig() Config {
	return Config{
		RootConceptTitle:  project.DefaultRootConceptTitle,
		SystemDir:         fs.DefaultSystemDir,
		WatchPattern:      "**/*.{dita,ditamap,3sish}",
		ReleaseNotesFile:  "RELEASE_NOTES.md",
		ReleaseNotesTitle: releasenotes.DefaultTitle,
	}
}

// LoadConfig reads the configuration of the project folder dir.
func LoadConfig(dir string) (Config, error) {
	cfg := DefaultConfig()

	data, err := os.ReadFile(filepath.Join(dir, ConfigFile))
	switch {
	case err == nil:
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return cfg, fmt.Errorf("parse %s: %w", ConfigFile, err)
		}
	case !os.IsNotExist(err):
		return cfg, err
	}

	if err := env.Parse(&cfg); err != nil {
		return cfg, fmt.Errorf("parse env: %w", err)
	}
	return cfg, nil
}

// Options turns the storage and project settings into options. Versioning
// is left to detection when it is not configured.
func (c Config) Options() []Option {
	opts := []Option{
		WithAutoInit(c.AutoInit),
		WithReadOnly(c.ReadOnly),
		WithSystemDir(c.SystemDir),
		WithShortdescs(c.Shortdescs),
	}
	if c.Versioning != nil {
		opts = append(opts, WithVersioning(*c.Versioning))
	}
	return opts
}
