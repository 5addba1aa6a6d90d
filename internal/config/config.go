// Package config loads application configuration from an optional
// per-workspace YAML file overlaid with environment variables.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// WorkspaceFile is the per-workspace configuration file name.
const WorkspaceFile = ".reviewmarks.yaml"

// DefaultCSVName is the review file created next to the code.
const DefaultCSVName = "code-review.csv"

// TrackerConfig configures the external issue tracker connection.
type TrackerConfig struct {
	// Kind selects the tracker adapter: "gitlab" or "github".
	Kind string `yaml:"kind"`
	// BaseURL is the tracker instance URL. Empty selects the public
	// SaaS endpoint of the chosen kind.
	BaseURL string `yaml:"base_url"`
	Token   string `yaml:"token"`
	// Project is the issue target: a GitLab project path ("group/proj")
	// or a GitHub "owner/repo".
	Project string `yaml:"project"`
	// DefaultLabels are attached to every exported issue in addition to
	// the labels derived from priority and category.
	DefaultLabels []string `yaml:"default_labels"`
	// TemplatePath points at a custom issue body template. Empty uses
	// the built-in template.
	TemplatePath string `yaml:"template_path"`
	// Timeout bounds each outbound tracker request.
	Timeout time.Duration `yaml:"timeout"`
}

// Configured reports whether the tracker connection is fully specified.
func (t TrackerConfig) Configured() bool {
	return t.Kind != "" && t.Token != "" && t.Project != ""
}

// ImportConfig configures the review-source import pipeline.
type ImportConfig struct {
	// DBPath is the analysis tool's session database, relative to the
	// workspace root unless absolute.
	DBPath string `yaml:"db_path"`
	// URLTemplate builds record deep links; it must contain at least
	// the {file} placeholder and may use {sha}, {start} and {end}.
	URLTemplate string `yaml:"url_template"`
	// BaseURL is the fallback concatenation scheme when no template is
	// set. At least one of the two must be configured before an import
	// can run.
	BaseURL string `yaml:"base_url"`
}

// Config is the resolved application configuration. It is built once at
// startup and passed down explicitly; nothing re-reads the environment
// mid-operation.
type Config struct {
	Workspace      string        `yaml:"-"`
	CSVPath        string        `yaml:"csv_path"`
	Author         string        `yaml:"author"`
	HiddenStatuses []string      `yaml:"hidden_statuses"`
	AttributionTTL time.Duration `yaml:"attribution_ttl"`
	Tracker        TrackerConfig `yaml:"tracker"`
	Import         ImportConfig  `yaml:"import"`
}

// Load resolves configuration for the given workspace root. Values come
// from .reviewmarks.yaml in the workspace when present, then from
// REVIEWMARKS_* environment variables, which win. Defaults: the review
// file is code-review.csv in the workspace, the attribution cache TTL
// is one minute and tracker requests time out after thirty seconds.
func Load(workspace string) (*Config, error) {
	abs, err := filepath.Abs(workspace)
	if err != nil {
		return nil, fmt.Errorf("resolving workspace %q: %w", workspace, err)
	}

	cfg := &Config{
		Workspace:      abs,
		AttributionTTL: time.Minute,
		Tracker:        TrackerConfig{Timeout: 30 * time.Second},
	}

	if err := loadFile(filepath.Join(abs, WorkspaceFile), cfg); err != nil {
		return nil, err
	}
	applyEnv(cfg)

	if cfg.CSVPath == "" {
		cfg.CSVPath = DefaultCSVName
	}
	if !filepath.IsAbs(cfg.CSVPath) {
		cfg.CSVPath = filepath.Join(abs, cfg.CSVPath)
	}
	if cfg.Import.DBPath != "" && !filepath.IsAbs(cfg.Import.DBPath) {
		cfg.Import.DBPath = filepath.Join(abs, cfg.Import.DBPath)
	}

	if cfg.Tracker.Kind != "" && cfg.Tracker.Kind != "gitlab" && cfg.Tracker.Kind != "github" {
		return nil, fmt.Errorf("unknown tracker kind %q (want gitlab or github)", cfg.Tracker.Kind)
	}

	return cfg, nil
}

func loadFile(path string, cfg *Config) error {
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("reading %s: %w", path, err)
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return fmt.Errorf("parsing %s: %w", path, err)
	}
	return nil
}

func applyEnv(cfg *Config) {
	setString := func(key string, dst *string) {
		if v, ok := os.LookupEnv(key); ok && v != "" {
			*dst = v
		}
	}

	setString("REVIEWMARKS_CSV_PATH", &cfg.CSVPath)
	setString("REVIEWMARKS_AUTHOR", &cfg.Author)
	setString("REVIEWMARKS_TRACKER", &cfg.Tracker.Kind)
	setString("REVIEWMARKS_TRACKER_URL", &cfg.Tracker.BaseURL)
	setString("REVIEWMARKS_TRACKER_TOKEN", &cfg.Tracker.Token)
	setString("REVIEWMARKS_TRACKER_PROJECT", &cfg.Tracker.Project)
	setString("REVIEWMARKS_TEMPLATE_PATH", &cfg.Tracker.TemplatePath)
	setString("REVIEWMARKS_REVIEWDB_PATH", &cfg.Import.DBPath)
	setString("REVIEWMARKS_URL_TEMPLATE", &cfg.Import.URLTemplate)
	setString("REVIEWMARKS_BASE_URL", &cfg.Import.BaseURL)

	if v, ok := os.LookupEnv("REVIEWMARKS_HIDDEN_STATUSES"); ok && v != "" {
		cfg.HiddenStatuses = splitList(v)
	}
	if v, ok := os.LookupEnv("REVIEWMARKS_DEFAULT_LABELS"); ok && v != "" {
		cfg.Tracker.DefaultLabels = splitList(v)
	}
	if v, ok := os.LookupEnv("REVIEWMARKS_TIMEOUT"); ok && v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			cfg.Tracker.Timeout = d
		}
	}
	if v, ok := os.LookupEnv("REVIEWMARKS_ATTRIBUTION_TTL"); ok && v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			cfg.AttributionTTL = d
		}
	}
}

func splitList(v string) []string {
	var out []string
	for _, item := range strings.Split(v, ",") {
		item = strings.TrimSpace(item)
		if item != "" {
			out = append(out, item)
		}
	}
	return out
}
