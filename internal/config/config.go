package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

const (
	// ProjectFile is the optional per-project settings file
	ProjectFile = ".plandeck.yml"

	DefaultPlansDir = "plans"
	DefaultTrunk    = "main"
)

// Environment variables override the project file
const (
	EnvPlansDir  = "PLANDECK_DIR"
	EnvTrunk     = "PLANDECK_TRUNK"
	EnvLogLevel  = "PLANDECK_LOG_LEVEL"
	EnvLogFormat = "PLANDECK_LOG_FORMAT"
	EnvIndexPath = "PLANDECK_INDEX"
)

// ProjectConfig models .plandeck.yml
type ProjectConfig struct {
	PlansDir  string `yaml:"plans_dir"`
	Trunk     string `yaml:"trunk"`
	LogLevel  string `yaml:"log_level"`
	LogFormat string `yaml:"log_format"`
	IndexPath string `yaml:"index_path"`
	Schema    string `yaml:"schema"`
}

// Config holds the resolved runtime configuration
type Config struct {
	// ProjectDir is where the project file was looked up
	ProjectDir string

	PlansDir  string
	Trunk     string
	LogLevel  string
	LogFormat string
	// IndexPath is empty when the index should live in the XDG data directory
	IndexPath string
	Schema    string
}

// Load resolves configuration for projectDir: defaults, then the project
// file if present, then environment variables. Relative paths are resolved
// against projectDir.
func Load(projectDir string) (*Config, error) {
	cfg := &Config{
		ProjectDir: projectDir,
		PlansDir:   DefaultPlansDir,
		Trunk:      DefaultTrunk,
		LogLevel:   "warn",
		LogFormat:  "text",
	}

	project, err := loadProjectFile(filepath.Join(projectDir, ProjectFile))
	if err != nil {
		return nil, err
	}
	cfg.apply(project)
	cfg.apply(ProjectConfig{
		PlansDir:  os.Getenv(EnvPlansDir),
		Trunk:     os.Getenv(EnvTrunk),
		LogLevel:  os.Getenv(EnvLogLevel),
		LogFormat: os.Getenv(EnvLogFormat),
		IndexPath: os.Getenv(EnvIndexPath),
	})

	cfg.PlansDir = cfg.resolve(cfg.PlansDir)
	if cfg.IndexPath != "" {
		cfg.IndexPath = cfg.resolve(cfg.IndexPath)
	}
	return cfg, nil
}

// apply overlays every non-empty field of p
func (c *Config) apply(p ProjectConfig) {
	set := func(dst *string, v string) {
		if v = strings.TrimSpace(v); v != "" {
			*dst = v
		}
	}
	set(&c.PlansDir, p.PlansDir)
	set(&c.Trunk, p.Trunk)
	set(&c.LogLevel, p.LogLevel)
	set(&c.LogFormat, p.LogFormat)
	set(&c.IndexPath, p.IndexPath)
	set(&c.Schema, p.Schema)
}

func (c *Config) resolve(path string) string {
	if strings.HasPrefix(path, "~") {
		if home, err := os.UserHomeDir(); err == nil {
			path = filepath.Join(home, path[1:])
		}
	}
	if !filepath.IsAbs(path) {
		path = filepath.Join(c.ProjectDir, path)
	}
	return filepath.Clean(path)
}

func loadProjectFile(path string) (ProjectConfig, error) {
	var p ProjectConfig
	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return p, nil
	}
	if err != nil {
		return p, fmt.Errorf("failed to read %s: %w", path, err)
	}
	if err := yaml.Unmarshal(data, &p); err != nil {
		return p, fmt.Errorf("failed to parse %s: %w", path, err)
	}
	return p, nil
}
