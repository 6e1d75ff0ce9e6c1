package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"
)

// Default config file path.
const DefaultConfigPath = "~/.config/eventscope/config.yaml"

// Config holds all eventscope configuration.
type Config struct {
	Storage   StorageConfig   `yaml:"storage"`
	Calendar  CalendarConfig  `yaml:"calendar"`
	Retention RetentionConfig `yaml:"retention"`
	Logging   LoggingConfig   `yaml:"logging"`
	Import    ImportConfig    `yaml:"import"`
}

type StorageConfig struct {
	Path              string `yaml:"path"`
	SQLiteFile        string `yaml:"sqlite_file"`
	SQLiteJournalMode string `yaml:"sqlite_journal_mode"`
}

// CalendarConfig controls how "today" is determined and how dates print.
type CalendarConfig struct {
	Timezone   string `yaml:"timezone"`
	DateFormat string `yaml:"date_format"`
}

// RetentionConfig sets the default age for `prune` when no cutoff is given.
// Zero disables the default.
type RetentionConfig struct {
	Days int `yaml:"days"`
}

type LoggingConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

// ImportConfig controls `import`. Recurring events are expanded from
// HistoryDays before today to ExpandDays after it; ExpandDays zero
// disables expansion.
type ImportConfig struct {
	DefaultSource string `yaml:"default_source"`
	ExpandDays    int    `yaml:"expand_days"`
	HistoryDays   int    `yaml:"history_days"`
}

// Load reads a YAML config file at path and merges it with defaults.
// Returns an error if the file cannot be read or contains invalid YAML.
func Load(path string) (*Config, error) {
	cfg := DefaultConfig()

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config file: %w", err)
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parsing config file: %w", err)
	}

	if _, err := cfg.Location(); err != nil {
		return nil, err
	}
	if cfg.Retention.Days < 0 {
		return nil, fmt.Errorf("retention.days must not be negative, got %d", cfg.Retention.Days)
	}
	if cfg.Import.ExpandDays < 0 {
		return nil, fmt.Errorf("import.expand_days must not be negative, got %d", cfg.Import.ExpandDays)
	}
	if cfg.Import.HistoryDays < 0 {
		return nil, fmt.Errorf("import.history_days must not be negative, got %d", cfg.Import.HistoryDays)
	}

	return cfg, nil
}

// Location resolves calendar.timezone. "Local" and "" mean the process's
// local zone.
func (c *Config) Location() (*time.Location, error) {
	switch c.Calendar.Timezone {
	case "", "Local":
		return time.Local, nil
	}
	loc, err := time.LoadLocation(c.Calendar.Timezone)
	if err != nil {
		return nil, fmt.Errorf("calendar.timezone %q: %w", c.Calendar.Timezone, err)
	}
	return loc, nil
}

// DBPath returns the full database path with ~ expanded.
func (c *Config) DBPath() (string, error) {
	dir, err := expandPath(c.Storage.Path)
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, c.Storage.SQLiteFile), nil
}

// expandPath replaces a leading ~ with the user's home directory.
func expandPath(path string) (string, error) {
	if len(path) > 0 && path[0] == '~' {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("resolving home directory: %w", err)
		}
		return filepath.Join(home, path[1:]), nil
	}
	return path, nil
}

// LoadOrCreate loads the config from the default path. If the file does
// not exist, it creates the directory structure and writes defaults.
func LoadOrCreate() (*Config, error) {
	path, err := expandPath(DefaultConfigPath)
	if err != nil {
		return nil, err
	}
	return LoadOrCreateAt(path)
}

// LoadOrCreateAt loads the config from the given path. If the file does
// not exist, it creates the directory structure and writes defaults.
func LoadOrCreateAt(path string) (*Config, error) {
	if _, err := os.Stat(path); os.IsNotExist(err) {
		cfg := DefaultConfig()

		dir := filepath.Dir(path)
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, fmt.Errorf("creating config directory: %w", err)
		}

		data, err := yaml.Marshal(cfg)
		if err != nil {
			return nil, fmt.Errorf("marshaling default config: %w", err)
		}

		if err := os.WriteFile(path, data, 0644); err != nil {
			return nil, fmt.Errorf("writing default config: %w", err)
		}

		return cfg, nil
	}

	return Load(path)
}
