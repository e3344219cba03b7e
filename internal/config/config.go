package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

// Config holds the tunables of every flvctl command. Zero values in a loaded
// file fall back to the defaults.
type Config struct {
	Merge   MergeConfig   `yaml:"merge"`
	FixSeek FixSeekConfig `yaml:"fixSeek"`
	Inspect InspectConfig `yaml:"inspect"`
	Output  OutputConfig  `yaml:"output"`
	Logs    LogConfig     `yaml:"logs"`
	Metrics MetricsConfig `yaml:"metrics"`
	Journal JournalConfig `yaml:"journal"`
}

type MergeConfig struct {
	// SkipFrames is nil when unset; 0 is a valid choice.
	SkipFrames           *int `yaml:"skipFrames"`
	ClueToleranceMs      int  `yaml:"clueToleranceMs"`
	TailTolerancePercent int  `yaml:"tailTolerancePercent"`
	WarnBelowPercent     int  `yaml:"warnBelowPercent"`
}

type FixSeekConfig struct {
	AnchorTags int `yaml:"anchorTags"`
}

type InspectConfig struct {
	GapThresholdMs int `yaml:"gapThresholdMs"`
}

type OutputConfig struct {
	// KeepPartial leaves a partially written output in place after a failure.
	KeepPartial bool `yaml:"keepPartial"`
}

type LogConfig struct {
	File       string `yaml:"file"`
	MaxSizeMB  int    `yaml:"maxSizeMB"`
	MaxAgeDays int    `yaml:"maxAgeDays"`
	MaxBackups int    `yaml:"maxBackups"`
	Compress   bool   `yaml:"compress"`
}

type MetricsConfig struct {
	Textfile string `yaml:"textfile"`
}

type JournalConfig struct {
	Path string `yaml:"path"`
}

const (
	DefaultSkipFrames           = 100
	DefaultClueToleranceMs      = 500
	DefaultTailTolerancePercent = 95
	DefaultWarnBelowPercent     = 80
	DefaultAnchorTags           = 2
	DefaultGapThresholdMs       = 500
)

// Default returns the built-in configuration.
func Default() Config {
	var cfg Config
	cfg.applyDefaults()
	return cfg
}

func (c *Config) applyDefaults() {
	if c.Merge.SkipFrames == nil {
		skip := DefaultSkipFrames
		c.Merge.SkipFrames = &skip
	}
	if c.Merge.ClueToleranceMs <= 0 {
		c.Merge.ClueToleranceMs = DefaultClueToleranceMs
	}
	if c.Merge.TailTolerancePercent <= 0 {
		c.Merge.TailTolerancePercent = DefaultTailTolerancePercent
	}
	if c.Merge.WarnBelowPercent <= 0 {
		c.Merge.WarnBelowPercent = DefaultWarnBelowPercent
	}
	if c.FixSeek.AnchorTags <= 0 {
		c.FixSeek.AnchorTags = DefaultAnchorTags
	}
	if c.Inspect.GapThresholdMs <= 0 {
		c.Inspect.GapThresholdMs = DefaultGapThresholdMs
	}
	if c.Logs.File != "" {
		if c.Logs.MaxSizeMB <= 0 {
			c.Logs.MaxSizeMB = 25
		}
		if c.Logs.MaxAgeDays <= 0 {
			c.Logs.MaxAgeDays = 7
		}
		if c.Logs.MaxBackups <= 0 {
			c.Logs.MaxBackups = 5
		}
	}
}

// Validate rejects values no command can work with.
func (c Config) Validate() error {
	if c.Merge.SkipFrames != nil && *c.Merge.SkipFrames < 0 {
		return fmt.Errorf("merge.skipFrames must not be negative, got %d", *c.Merge.SkipFrames)
	}
	if c.Merge.TailTolerancePercent > 100 {
		return fmt.Errorf("merge.tailTolerancePercent must be at most 100, got %d", c.Merge.TailTolerancePercent)
	}
	if c.Merge.WarnBelowPercent > 100 {
		return fmt.Errorf("merge.warnBelowPercent must be at most 100, got %d", c.Merge.WarnBelowPercent)
	}
	return nil
}

// Load reads a YAML configuration file. Relative paths inside the file are
// resolved against the file's directory.
func Load(path string) (Config, error) {
	var cfg Config
	f, err := os.Open(path)
	if err != nil {
		return cfg, err
	}
	defer f.Close()
	dec := yaml.NewDecoder(f)
	dec.KnownFields(true)
	if err := dec.Decode(&cfg); err != nil {
		return cfg, fmt.Errorf("parse config %s: %w", path, err)
	}
	baseDir := filepath.Dir(path)
	resolvePath := func(p string) string {
		p = strings.TrimSpace(p)
		if p == "" {
			return ""
		}
		if filepath.IsAbs(p) {
			return filepath.Clean(p)
		}
		return filepath.Clean(filepath.Join(baseDir, p))
	}
	cfg.Logs.File = resolvePath(cfg.Logs.File)
	cfg.Metrics.Textfile = resolvePath(cfg.Metrics.Textfile)
	cfg.Journal.Path = resolvePath(cfg.Journal.Path)
	cfg.applyDefaults()
	if err := cfg.Validate(); err != nil {
		return cfg, err
	}
	return cfg, nil
}

// LoadOrDefault loads path when it is non-empty and returns the defaults
// otherwise.
func LoadOrDefault(path string) (Config, error) {
	if strings.TrimSpace(path) == "" {
		return Default(), nil
	}
	return Load(path)
}
