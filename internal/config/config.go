package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"sync"
	"time"

	"gopkg.in/yaml.v3"
)

// Environment variables that override values from the config file.
const (
	EnvHome               = "SHELFVIEW_HOME"
	EnvLibraryBackend     = "SHELFVIEW_LIBRARY_BACKEND"
	EnvLibraryPath        = "SHELFVIEW_LIBRARY_PATH"
	EnvOpenLibraryEnabled = "SHELFVIEW_OPENLIBRARY_ENABLED"
	EnvOpenLibraryURL     = "SHELFVIEW_OPENLIBRARY_URL"
	EnvCacheEnabled       = "SHELFVIEW_CACHE_ENABLED"
	EnvCacheTTLSeconds    = "SHELFVIEW_CACHE_TTL_SECONDS"
	EnvLoadingDelay       = "SHELFVIEW_LOADING_DELAY"
	EnvLocale             = "SHELFVIEW_LOCALE"
	EnvLogLevel           = "SHELFVIEW_LOG_LEVEL"
	EnvLogFormat          = "SHELFVIEW_LOG_FORMAT"
)

// Library backends.
const (
	BackendFile   = "file"
	BackendSQLite = "sqlite"
)

// Defaults.
const (
	DefaultLoadingDelay       = 300 * time.Millisecond
	DefaultCacheTTLSeconds    = 86400
	MinCacheTTLSeconds        = 60
	MaxCacheTTLSeconds        = 30 * 86400
	DefaultRequestsPerSecond  = 2
	DefaultMaxRetries         = 2
	DefaultOpenLibraryTimeout = 15 * time.Second
	DefaultOpenLibraryURL     = "https://openlibrary.org"
	DefaultLocale             = "en"

	configFileName = "config.yaml"
)

// ErrInvalidConfig wraps every validation failure.
var ErrInvalidConfig = errors.New("invalid configuration")

// Config is the root of config.yaml.
type Config struct {
	Library  LibraryConfig  `yaml:"library"`
	Metadata MetadataConfig `yaml:"metadata"`
	UI       UIConfig       `yaml:"ui"`
	Logging  LoggingConfig  `yaml:"logging"`
}

// LibraryConfig selects and locates the library store.
type LibraryConfig struct {
	Backend     string `yaml:"backend"`
	Path        string `yaml:"path"`
	RemoveFiles bool   `yaml:"remove_files"`
}

// MetadataConfig configures the metadata sources.
type MetadataConfig struct {
	OpenLibrary OpenLibraryConfig `yaml:"openlibrary"`
	Cache       CacheConfig       `yaml:"cache"`
}

// OpenLibraryConfig configures the remote Open Library source.
type OpenLibraryConfig struct {
	Enabled           bool          `yaml:"enabled"`
	BaseURL           string        `yaml:"base_url"`
	RequestsPerSecond int           `yaml:"requests_per_second"`
	MaxRetries        int           `yaml:"max_retries"`
	Timeout           time.Duration `yaml:"timeout"`
}

// CacheConfig configures the metadata file cache.
type CacheConfig struct {
	Enabled    bool   `yaml:"enabled"`
	Directory  string `yaml:"directory"`
	TTLSeconds int    `yaml:"ttl_seconds"`
}

// UIConfig holds presentation settings.
type UIConfig struct {
	LoadingDelay time.Duration `yaml:"loading_delay"`
	Locale       string        `yaml:"locale"`
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
	File   string `yaml:"file"`
}

//nolint:gochecknoglobals // Process-wide configuration, loaded once per command.
var (
	globalConfig   *Config
	globalConfigMu sync.RWMutex
)

// HomeDir returns the shelfview state directory.
// SHELFVIEW_HOME wins, otherwise ~/.shelfview.
func HomeDir() string {
	if dir := os.Getenv(EnvHome); dir != "" {
		return dir
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return ".shelfview"
	}
	return filepath.Join(home, ".shelfview")
}

// DefaultPath returns the location of config.yaml.
func DefaultPath() string {
	return filepath.Join(HomeDir(), configFileName)
}

// Default returns a configuration rooted at homeDir.
func Default(homeDir string) *Config {
	return &Config{
		Library: LibraryConfig{
			Backend: BackendFile,
			Path:    filepath.Join(homeDir, "library.json"),
		},
		Metadata: MetadataConfig{
			OpenLibrary: OpenLibraryConfig{
				Enabled:           true,
				BaseURL:           DefaultOpenLibraryURL,
				RequestsPerSecond: DefaultRequestsPerSecond,
				MaxRetries:        DefaultMaxRetries,
				Timeout:           DefaultOpenLibraryTimeout,
			},
			Cache: CacheConfig{
				Enabled:    true,
				Directory:  filepath.Join(homeDir, "cache"),
				TTLSeconds: DefaultCacheTTLSeconds,
			},
		},
		UI: UIConfig{
			LoadingDelay: DefaultLoadingDelay,
			Locale:       DefaultLocale,
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "json",
			File:   filepath.Join(homeDir, "logs", "shelfview.log"),
		},
	}
}

// Load reads path on top of the defaults and applies environment overrides.
// A missing file is not an error.
func Load(path string) (*Config, error) {
	cfg := Default(HomeDir())

	data, err := os.ReadFile(path)
	switch {
	case err == nil:
		if unmarshalErr := yaml.Unmarshal(data, cfg); unmarshalErr != nil {
			return nil, fmt.Errorf("parsing %s: %w", path, unmarshalErr)
		}
	case errors.Is(err, os.ErrNotExist):
	default:
		return nil, fmt.Errorf("reading %s: %w", path, err)
	}

	cfg.applyEnvOverrides()
	cfg.expandPaths()

	if validateErr := cfg.Validate(); validateErr != nil {
		return nil, validateErr
	}
	return cfg, nil
}

// Save writes cfg to path as YAML. An existing file is kept unless force is set.
func (c *Config) Save(path string, force bool) error {
	if !force {
		if _, err := os.Stat(path); err == nil {
			return fmt.Errorf("%s already exists (use --force to overwrite)", path)
		}
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o750); err != nil {
		return fmt.Errorf("creating config directory: %w", err)
	}
	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("encoding config: %w", err)
	}
	if writeErr := os.WriteFile(path, data, 0o600); writeErr != nil {
		return fmt.Errorf("writing %s: %w", path, writeErr)
	}
	return nil
}

// Validate checks value ranges and enumerations.
func (c *Config) Validate() error {
	switch c.Library.Backend {
	case BackendFile, BackendSQLite:
	default:
		return fmt.Errorf("%w: library.backend must be %q or %q, got %q",
			ErrInvalidConfig, BackendFile, BackendSQLite, c.Library.Backend)
	}
	if c.Library.Path == "" {
		return fmt.Errorf("%w: library.path is required", ErrInvalidConfig)
	}

	ol := c.Metadata.OpenLibrary
	if ol.Enabled {
		if ol.RequestsPerSecond <= 0 {
			return fmt.Errorf("%w: metadata.openlibrary.requests_per_second must be > 0", ErrInvalidConfig)
		}
		if ol.MaxRetries < 0 {
			return fmt.Errorf("%w: metadata.openlibrary.max_retries must be >= 0", ErrInvalidConfig)
		}
		if ol.BaseURL == "" {
			return fmt.Errorf("%w: metadata.openlibrary.base_url is required", ErrInvalidConfig)
		}
	}

	cache := c.Metadata.Cache
	if cache.Enabled && (cache.TTLSeconds < MinCacheTTLSeconds || cache.TTLSeconds > MaxCacheTTLSeconds) {
		return fmt.Errorf("%w: metadata.cache.ttl_seconds must be between %d and %d, got %d",
			ErrInvalidConfig, MinCacheTTLSeconds, MaxCacheTTLSeconds, cache.TTLSeconds)
	}

	if c.UI.LoadingDelay < 0 {
		return fmt.Errorf("%w: ui.loading_delay must be >= 0", ErrInvalidConfig)
	}
	return nil
}

func (c *Config) applyEnvOverrides() {
	if v := os.Getenv(EnvLibraryBackend); v != "" {
		c.Library.Backend = strings.ToLower(v)
	}
	if v := os.Getenv(EnvLibraryPath); v != "" {
		c.Library.Path = v
	}
	if v, ok := envBool(EnvOpenLibraryEnabled); ok {
		c.Metadata.OpenLibrary.Enabled = v
	}
	if v := os.Getenv(EnvOpenLibraryURL); v != "" {
		c.Metadata.OpenLibrary.BaseURL = v
	}
	if v, ok := envBool(EnvCacheEnabled); ok {
		c.Metadata.Cache.Enabled = v
	}
	if v := os.Getenv(EnvCacheTTLSeconds); v != "" {
		if ttl, err := strconv.Atoi(v); err == nil {
			c.Metadata.Cache.TTLSeconds = ttl
		}
	}
	if v := os.Getenv(EnvLoadingDelay); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			c.UI.LoadingDelay = d
		}
	}
	if v := os.Getenv(EnvLocale); v != "" {
		c.UI.Locale = v
	}
	if v := os.Getenv(EnvLogLevel); v != "" {
		c.Logging.Level = v
	}
	if v := os.Getenv(EnvLogFormat); v != "" {
		c.Logging.Format = v
	}
}

func (c *Config) expandPaths() {
	c.Library.Path = expandHome(c.Library.Path)
	c.Metadata.Cache.Directory = expandHome(c.Metadata.Cache.Directory)
	c.Logging.File = expandHome(c.Logging.File)
}

func envBool(key string) (bool, bool) {
	v := os.Getenv(key)
	if v == "" {
		return false, false
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return false, false
	}
	return b, true
}

func expandHome(path string) string {
	if path != "~" && !strings.HasPrefix(path, "~/") {
		return path
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return path
	}
	return filepath.Join(home, strings.TrimPrefix(path, "~"))
}

// GetGlobalConfig returns the configuration loaded for this process.
// Before SetGlobalConfig is called it returns the defaults.
func GetGlobalConfig() *Config {
	globalConfigMu.RLock()
	cfg := globalConfig
	globalConfigMu.RUnlock()
	if cfg != nil {
		return cfg
	}
	return Default(HomeDir())
}

// SetGlobalConfig replaces the process configuration.
func SetGlobalConfig(cfg *Config) {
	globalConfigMu.Lock()
	defer globalConfigMu.Unlock()
	globalConfig = cfg
}
