package config

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"runtime"
	"strings"

	"gopkg.in/yaml.v3"
)

// Config holds the news service configuration.
type Config struct {
	HTTP    HTTPConfig    `yaml:"http"`
	Mongo   MongoConfig   `yaml:"mongo"`
	Redis   RedisConfig   `yaml:"redis"`
	Scraper ScraperConfig `yaml:"scraper"`
	Search  SearchConfig  `yaml:"search"`
	Refresh RefreshConfig `yaml:"refresh"`
	Logging LoggingConfig `yaml:"logging"`
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	Level string `yaml:"level"` // debug, info, warn, error (default: determined by env)
}

// HTTPConfig holds HTTP server settings.
type HTTPConfig struct {
	Port            int `yaml:"port"`
	ReadTimeoutSec  int `yaml:"read_timeout_sec"`
	WriteTimeoutSec int `yaml:"write_timeout_sec"`
	ShutdownSec     int `yaml:"shutdown_timeout_sec"`
}

// MongoConfig holds document store connection settings.
type MongoConfig struct {
	URI              string `yaml:"uri"`
	Database         string `yaml:"database"`
	Collection       string `yaml:"collection"`
	ReadinessTimeout int    `yaml:"readiness_timeout_sec"`
}

// RedisConfig holds the scrape-guard store settings. The guard is
// disabled when no address is configured.
type RedisConfig struct {
	Addrs    []string `yaml:"addrs"`
	Password string   `yaml:"password"`
}

// ScraperConfig holds upstream scraping settings.
type ScraperConfig struct {
	BaseURL    string `yaml:"base_url"`
	UserAgent  string `yaml:"user_agent"`
	TimeoutSec int    `yaml:"timeout_sec"`
}

// SearchConfig holds relevance-matching and pagination settings.
type SearchConfig struct {
	DefaultPageSize int `yaml:"default_page_size"`
	MaxPageSize     int `yaml:"max_page_size"`
	// OverlapThreshold is the fraction of query tags an article must
	// cover to match.
	OverlapThreshold float64 `yaml:"overlap_threshold"`
	// RescrapeThreshold triggers a live scrape when the total match
	// count falls below it. 0 means "use default_page_size".
	RescrapeThreshold int `yaml:"rescrape_threshold"`
	ScrapeCooldownSec int `yaml:"scrape_cooldown_sec"`
}

// RefreshConfig holds the periodic re-scrape worker settings.
type RefreshConfig struct {
	Enabled     bool     `yaml:"enabled"`
	IntervalMin int      `yaml:"interval_min"`
	Queries     []string `yaml:"queries"`
}

// Load reads configuration from a YAML file by environment name (local, dev, prod).
func Load(env string) (Config, error) {
	configPath := findConfigPath(env)

	data, err := os.ReadFile(filepath.Clean(configPath))
	if err != nil {
		return Config{}, fmt.Errorf("failed to read config %s: %w", configPath, err)
	}

	// Substitute env variables of the form ${VAR}
	data = expandEnvVars(data)

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return Config{}, fmt.Errorf("failed to parse config: %w", err)
	}

	cfg.ApplyDefaults()

	if err := cfg.Validate(); err != nil {
		return Config{}, fmt.Errorf("invalid config: %w", err)
	}

	return cfg, nil
}

// GetEnv returns the current environment from the ENV variable, defaulting to "local".
func GetEnv() string {
	if env := os.Getenv("ENV"); env != "" {
		return env
	}
	return "local"
}

// ApplyDefaults fills empty fields with default values.
func (c *Config) ApplyDefaults() {
	if c.HTTP.ReadTimeoutSec <= 0 {
		c.HTTP.ReadTimeoutSec = 10
	}
	if c.HTTP.WriteTimeoutSec <= 0 {
		// Scrape-on-miss searches block on the upstream site, so writes
		// need more headroom than reads.
		c.HTTP.WriteTimeoutSec = 60
	}
	if c.HTTP.ShutdownSec <= 0 {
		c.HTTP.ShutdownSec = 10
	}
	if c.Mongo.Database == "" {
		c.Mongo.Database = "news"
	}
	if c.Mongo.Collection == "" {
		c.Mongo.Collection = "search_results"
	}
	if c.Mongo.ReadinessTimeout <= 0 {
		c.Mongo.ReadinessTimeout = 10
	}
	if c.Scraper.BaseURL == "" {
		c.Scraper.BaseURL = "https://www.laptopmag.com"
	}
	if c.Scraper.UserAgent == "" {
		c.Scraper.UserAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) " +
			"AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36"
	}
	if c.Scraper.TimeoutSec <= 0 {
		c.Scraper.TimeoutSec = 30
	}
	if c.Search.DefaultPageSize <= 0 {
		c.Search.DefaultPageSize = 5
	}
	if c.Search.MaxPageSize <= 0 {
		c.Search.MaxPageSize = 10
	}
	if c.Search.OverlapThreshold <= 0 {
		c.Search.OverlapThreshold = 0.75
	}
	if c.Search.RescrapeThreshold <= 0 {
		c.Search.RescrapeThreshold = c.Search.DefaultPageSize
	}
	if c.Search.ScrapeCooldownSec <= 0 {
		c.Search.ScrapeCooldownSec = 600
	}
	if c.Refresh.IntervalMin <= 0 {
		c.Refresh.IntervalMin = 60
	}
}

// Validate checks the configuration for correctness.
func (c *Config) Validate() error {
	if c.HTTP.Port <= 0 || c.HTTP.Port > 65535 {
		return fmt.Errorf("http.port must be between 1 and 65535, got %d", c.HTTP.Port)
	}
	if c.Mongo.URI == "" {
		return fmt.Errorf("mongo.uri is required")
	}
	if c.Search.OverlapThreshold > 1 {
		return fmt.Errorf("search.overlap_threshold must be in (0, 1], got %v", c.Search.OverlapThreshold)
	}
	if c.Search.MaxPageSize < c.Search.DefaultPageSize {
		return fmt.Errorf(
			"search.max_page_size (%d) must be >= search.default_page_size (%d)",
			c.Search.MaxPageSize, c.Search.DefaultPageSize,
		)
	}
	if c.Refresh.Enabled && len(c.Refresh.Queries) == 0 {
		return fmt.Errorf("refresh.enabled requires at least one refresh.queries entry")
	}
	return nil
}

// findConfigPath locates the config file.
func findConfigPath(env string) string {
	filename := fmt.Sprintf("%s.yaml", env)

	// 1. Check ./config/
	if path := filepath.Join("config", filename); fileExists(path) {
		return path
	}

	// 2. Check relative to the source file
	_, b, _, _ := runtime.Caller(0)
	projectRoot := filepath.Dir(filepath.Dir(filepath.Dir(b))) // internal/config -> project root
	if path := filepath.Join(projectRoot, "config", filename); fileExists(path) {
		return path
	}

	// 3. Fallback to ./config/
	return filepath.Join("config", filename)
}

func fileExists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}

// expandEnvVars replaces ${VAR} and ${VAR:-default} with environment variable values.
var envVarRegex = regexp.MustCompile(`\$\{([^}]+)\}`)

func expandEnvVars(data []byte) []byte {
	return envVarRegex.ReplaceAllFunc(data, func(match []byte) []byte {
		expr := string(match[2 : len(match)-1]) // strip ${ and }
		varName, defaultVal, hasDefault := strings.Cut(expr, ":-")
		val := os.Getenv(varName)
		if val == "" && hasDefault {
			val = defaultVal
		}
		return []byte(val)
	})
}
