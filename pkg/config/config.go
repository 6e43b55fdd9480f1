package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

const (
	defaultOutputJSON = "scraped_posts.json"
	defaultOutputCSV  = "scraped_posts.csv"
)

// Config holds all configuration options for the scraper
type Config struct {
	// Browser session settings
	Browser BrowserConfig `yaml:"browser" json:"browser"`

	// Search defaults
	Search SearchConfig `yaml:"search" json:"search"`

	// Scroll-and-collect engine tuning
	Scroll ScrollConfig `yaml:"scroll" json:"scroll"`

	// Retry policy for failed navigation/scroll steps
	Retry RetryConfig `yaml:"retry" json:"retry"`

	// Rate limiting for profile enrichment lookups
	RateLimit RateLimitConfig `yaml:"rate_limit" json:"rate_limit"`

	// Output settings
	Output OutputConfig `yaml:"output" json:"output"`

	// Logging configuration
	Logging LoggingConfig `yaml:"logging" json:"logging"`
}

// BrowserConfig holds browser session configuration
type BrowserConfig struct {
	ProfileDir        string        `yaml:"profile_dir" json:"profile_dir"`
	UserAgent         string        `yaml:"user_agent" json:"user_agent"`
	ChromePath        string        `yaml:"chrome_path" json:"chrome_path"`
	Headless          bool          `yaml:"headless" json:"headless"`
	NavigationTimeout time.Duration `yaml:"navigation_timeout" json:"navigation_timeout"`
	ContentTimeout    time.Duration `yaml:"content_timeout" json:"content_timeout"`
}

// SearchConfig holds search defaults applied when flags are absent
type SearchConfig struct {
	DefaultLimit   int  `yaml:"default_limit" json:"default_limit"`
	FetchFollowers bool `yaml:"fetch_followers" json:"fetch_followers"`
}

// ScrollConfig tunes the stall and date-window heuristics of the engine.
// MaxEmptyScrolls is a threshold-based heuristic, not a hard end-of-stream
// guarantee: the feed has no explicit end marker.
type ScrollConfig struct {
	MaxEmptyScrolls int           `yaml:"max_empty_scrolls" json:"max_empty_scrolls"`
	MaxPastWindow   int           `yaml:"max_past_window" json:"max_past_window"`
	PauseMin        time.Duration `yaml:"pause_min" json:"pause_min"`
	PauseMax        time.Duration `yaml:"pause_max" json:"pause_max"`
}

// RetryConfig holds the bounded-retry policy for scroll/navigation steps
type RetryConfig struct {
	MaxAttempts int           `yaml:"max_attempts" json:"max_attempts"`
	BaseDelay   time.Duration `yaml:"base_delay" json:"base_delay"`
	MaxDelay    time.Duration `yaml:"max_delay" json:"max_delay"`
	Multiplier  float64       `yaml:"multiplier" json:"multiplier"`
}

// RateLimitConfig paces the follower-count profile lookups
type RateLimitConfig struct {
	ProfileLookupsPerMinute int `yaml:"profile_lookups_per_minute" json:"profile_lookups_per_minute"`
}

// OutputConfig holds output sink configuration
type OutputConfig struct {
	File        string `yaml:"file" json:"file"`
	Format      string `yaml:"format" json:"format"`
	Incremental bool   `yaml:"incremental" json:"incremental"`
}

// LoggingConfig holds logging configuration
type LoggingConfig struct {
	Level string `yaml:"level" json:"level"`
	File  string `yaml:"file" json:"file"`
}

// DefaultConfig returns a Config instance with sensible defaults
func DefaultConfig() *Config {
	return &Config{
		Browser: BrowserConfig{
			ProfileDir:        defaultProfileDir(),
			UserAgent:         "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36",
			Headless:          true,
			NavigationTimeout: 60 * time.Second,
			ContentTimeout:    80 * time.Second,
		},
		Search: SearchConfig{
			DefaultLimit:   100,
			FetchFollowers: true,
		},
		Scroll: ScrollConfig{
			MaxEmptyScrolls: 3,
			MaxPastWindow:   10,
			PauseMin:        time.Second,
			PauseMax:        2 * time.Second,
		},
		Retry: RetryConfig{
			MaxAttempts: 3,
			BaseDelay:   2 * time.Second,
			MaxDelay:    30 * time.Second,
			Multiplier:  2.0,
		},
		RateLimit: RateLimitConfig{
			ProfileLookupsPerMinute: 20,
		},
		Output: OutputConfig{
			File:        defaultOutputJSON,
			Format:      "json",
			Incremental: true,
		},
		Logging: LoggingConfig{
			Level: "info",
			File:  "",
		},
	}
}

func defaultProfileDir() string {
	if dir, err := os.UserConfigDir(); err == nil {
		return filepath.Join(dir, "xscraper", "browser_profile")
	}
	return "browser_profile"
}

// Load builds the effective configuration: defaults, then config file, then
// environment variables, then command-line flag overrides.
func Load(path string, flags map[string]interface{}) (*Config, error) {
	cfg := DefaultConfig()

	if err := cfg.LoadFromFile(path); err != nil {
		return nil, err
	}

	loadDotEnv()
	if err := cfg.LoadFromEnv(); err != nil {
		return nil, err
	}

	cfg.applyFlags(flags)

	// A csv run without an explicit output path gets the default basename
	// with the matching extension, not a csv body in a .json file.
	if cfg.Output.Format == "csv" && cfg.Output.File == defaultOutputJSON {
		cfg.Output.File = defaultOutputCSV
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func loadDotEnv() {
	_ = godotenv.Load(".env")
	_ = godotenv.Load(filepath.Join(os.Getenv("HOME"), ".xscraper.env"))
}

// LoadFromFile loads configuration from a YAML file
func (c *Config) LoadFromFile(path string) error {
	if path == "" {
		path = c.findConfigFile()
		if path == "" {
			return nil // No config file found, not an error
		}
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read config file: %w", err)
	}

	if err := yaml.Unmarshal(data, c); err != nil {
		return fmt.Errorf("failed to parse config file: %w", err)
	}
	return nil
}

// findConfigFile searches for config file in standard locations
func (c *Config) findConfigFile() string {
	locations := []string{
		".xscraper.yaml",
		".xscraper.yml",
		filepath.Join(os.Getenv("HOME"), ".config", "xscraper", "config.yaml"),
		filepath.Join(os.Getenv("HOME"), ".config", "xscraper", "config.yml"),
		filepath.Join(os.Getenv("HOME"), ".xscraper.yaml"),
	}

	for _, loc := range locations {
		if _, err := os.Stat(loc); err == nil {
			return loc
		}
	}
	return ""
}

// LoadFromEnv loads configuration from environment variables
func (c *Config) LoadFromEnv() error {
	if dir := os.Getenv("XSCRAPER_PROFILE_DIR"); dir != "" {
		c.Browser.ProfileDir = dir
	}
	if ua := os.Getenv("XSCRAPER_USER_AGENT"); ua != "" {
		c.Browser.UserAgent = ua
	}
	if path := os.Getenv("XSCRAPER_CHROME_PATH"); path != "" {
		c.Browser.ChromePath = path
	}
	if headless := os.Getenv("XSCRAPER_HEADLESS"); headless != "" {
		c.Browser.Headless = strings.ToLower(headless) == "true"
	}
	if limit := os.Getenv("XSCRAPER_DEFAULT_LIMIT"); limit != "" {
		if val, err := strconv.Atoi(limit); err == nil && val > 0 {
			c.Search.DefaultLimit = val
		}
	}
	if out := os.Getenv("XSCRAPER_OUTPUT_FILE"); out != "" {
		c.Output.File = out
	}
	if level := os.Getenv("XSCRAPER_LOG_LEVEL"); level != "" {
		c.Logging.Level = level
	}
	return nil
}

// applyFlags overrides config values with explicitly set command-line flags
func (c *Config) applyFlags(flags map[string]interface{}) {
	for name, value := range flags {
		switch name {
		case "profile-dir":
			c.Browser.ProfileDir = value.(string)
		case "headless":
			c.Browser.Headless = value.(bool)
		case "output":
			c.Output.File = value.(string)
		case "format":
			c.Output.Format = value.(string)
		case "followers":
			c.Search.FetchFollowers = value.(bool)
		case "log-level":
			c.Logging.Level = value.(string)
		}
	}
}

// Validate checks if the configuration is valid
func (c *Config) Validate() error {
	var errs []error

	if c.Browser.ProfileDir == "" {
		errs = append(errs, errors.New("browser profile directory is required"))
	}
	if c.Browser.NavigationTimeout <= 0 {
		errs = append(errs, errors.New("navigation timeout must be positive"))
	}
	if c.Scroll.MaxEmptyScrolls <= 0 {
		errs = append(errs, errors.New("max empty scrolls must be positive"))
	}
	if c.Scroll.MaxPastWindow <= 0 {
		errs = append(errs, errors.New("max past-window entries must be positive"))
	}
	if c.Scroll.PauseMin < 0 || c.Scroll.PauseMax < c.Scroll.PauseMin {
		errs = append(errs, errors.New("scroll pause range is invalid"))
	}
	if c.Retry.MaxAttempts <= 0 {
		errs = append(errs, errors.New("retry max attempts must be positive"))
	}
	if c.Retry.Multiplier < 1 {
		errs = append(errs, errors.New("retry multiplier must be at least 1"))
	}
	if c.RateLimit.ProfileLookupsPerMinute <= 0 {
		errs = append(errs, errors.New("profile lookups per minute must be positive"))
	}
	switch c.Output.Format {
	case "json", "csv":
	default:
		errs = append(errs, fmt.Errorf("unsupported output format %q", c.Output.Format))
	}
	switch strings.ToLower(c.Logging.Level) {
	case "debug", "info", "warn", "error", "fatal":
	default:
		errs = append(errs, fmt.Errorf("invalid log level %q", c.Logging.Level))
	}

	if len(errs) > 0 {
		msgs := make([]string, len(errs))
		for i, err := range errs {
			msgs[i] = err.Error()
		}
		return fmt.Errorf("config validation failed: %s", strings.Join(msgs, "; "))
	}
	return nil
}

// Save writes the config to a YAML file
func (c *Config) Save(path string) error {
	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	return os.WriteFile(path, data, 0644)
}
