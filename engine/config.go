package engine

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/hazyhaar/feedloom/feedpage"
)

// Config is the top-level feedloom configuration.
type Config struct {
	Page     PageConfig     `yaml:"page"`
	Browser  BrowserConfig  `yaml:"browser"`
	Scan     ScanConfig     `yaml:"scan"`
	Generate GenerateConfig `yaml:"generate"`
	Cache    CacheConfig    `yaml:"cache"`
	Control  ControlConfig  `yaml:"control"`
}

// PageConfig identifies the feed to augment.
type PageConfig struct {
	URL string `yaml:"url"`
	// Signatures is an optional YAML file overriding the built-in page
	// selectors.
	Signatures string `yaml:"signatures"`
}

// BrowserConfig controls the Chrome connection.
type BrowserConfig struct {
	Remote      string `yaml:"remote"`
	Headless    bool   `yaml:"headless"`
	UserDataDir string `yaml:"user_data_dir"`
}

// ScanConfig controls reconciliation triggering and eligibility.
type ScanConfig struct {
	DebounceWindow time.Duration `yaml:"debounce_window"`
	Interval       time.Duration `yaml:"interval"`
	MinTextLen     int           `yaml:"min_text_len"`
}

// GenerateConfig points at the drafting endpoint.
type GenerateConfig struct {
	Endpoint     string        `yaml:"endpoint"`
	Timeout      time.Duration `yaml:"timeout"`
	Retries      uint64        `yaml:"retries"`
	InitialDelay time.Duration `yaml:"initial_delay"`
	Tone         string        `yaml:"tone"`
}

// CacheConfig locates the profile cache database.
type CacheConfig struct {
	Path string `yaml:"path"`
}

// ControlConfig configures the local HTTP control surface. Empty Listen
// disables it.
type ControlConfig struct {
	Listen string `yaml:"listen"`
}

// LoadConfigFile reads a YAML configuration file and applies defaults.
func LoadConfigFile(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("engine: read config: %w", err)
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("engine: parse config: %w", err)
	}

	cfg.applyDefaults()
	if cfg.Page.URL == "" {
		return nil, fmt.Errorf("engine: config missing page.url")
	}
	if cfg.Generate.Endpoint == "" {
		return nil, fmt.Errorf("engine: config missing generate.endpoint")
	}
	return &cfg, nil
}

func (c *Config) applyDefaults() {
	if c.Scan.DebounceWindow <= 0 {
		c.Scan.DebounceWindow = 300 * time.Millisecond
	}
	if c.Scan.Interval <= 0 {
		c.Scan.Interval = 3 * time.Second
	}
	if c.Generate.Timeout <= 0 {
		c.Generate.Timeout = 30 * time.Second
	}
	if c.Generate.Retries == 0 {
		c.Generate.Retries = 2
	}
	if c.Generate.InitialDelay <= 0 {
		c.Generate.InitialDelay = 2 * time.Second
	}
	if c.Cache.Path == "" {
		c.Cache.Path = "feedloom.db"
	}
}

// Signatures loads the configured signature file, or the defaults.
func (c *Config) LoadSignatures() (*feedpage.Signatures, error) {
	if c.Page.Signatures == "" {
		return feedpage.Default(), nil
	}
	return feedpage.LoadFile(c.Page.Signatures)
}
