// Package config loads countrysearch settings from an optional YAML file,
// a .env file and COUNTRYSEARCH_* environment variables.
package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// EnvPrefix is prepended to every environment override
const EnvPrefix = "COUNTRYSEARCH_"

// RedisConfig holds the redis store settings
type RedisConfig struct {
	Addr     string `yaml:"addr"`
	Password string `yaml:"password"`
	DB       int    `yaml:"db"`
	Prefix   string `yaml:"prefix"`
}

// LogConfig holds logging settings
type LogConfig struct {
	Level string `yaml:"level"`
	File  string `yaml:"file"` // TUI log file, defaults next to the database
}

// Config is the complete countrysearch configuration
type Config struct {
	APIURL      string        `yaml:"api_url"`
	HTTPTimeout time.Duration `yaml:"http_timeout"`

	Store         string      `yaml:"store"` // sqlite | memory | redis
	DBPath        string      `yaml:"db_path"`
	MaxStoreBytes int64       `yaml:"max_store_bytes"`
	Redis         RedisConfig `yaml:"redis"`

	CacheTTL           time.Duration `yaml:"cache_ttl"`
	PageSize           int           `yaml:"page_size"`
	MinQueryLength     int           `yaml:"min_query_length"`
	HistoryLimit       int           `yaml:"history_limit"`
	Locale             string        `yaml:"locale"`
	NormalizeCacheKeys bool          `yaml:"normalize_cache_keys"`

	Log LogConfig `yaml:"log"`
}

// Default returns the built-in configuration
func Default() *Config {
	cfg := &Config{}
	setDefaults(cfg)
	return cfg
}

// Load reads .env (if present), then the YAML file at path (if path is not
// empty), then applies environment overrides and defaults.
func Load(path string) (*Config, error) {
	// .env is optional
	_ = godotenv.Load()

	cfg := &Config{}
	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("failed to parse config file: %w", err)
		}
	}

	if err := applyEnv(cfg, os.LookupEnv); err != nil {
		return nil, err
	}
	setDefaults(cfg)

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}

func setDefaults(cfg *Config) {
	if cfg.HTTPTimeout <= 0 {
		cfg.HTTPTimeout = 30 * time.Second
	}
	if cfg.Store == "" {
		cfg.Store = "sqlite"
	}
	if cfg.DBPath == "" {
		cfg.DBPath = "countrysearch.db"
	}
	if cfg.Redis.Addr == "" {
		cfg.Redis.Addr = "localhost:6379"
	}
	if cfg.Redis.Prefix == "" {
		cfg.Redis.Prefix = "countrysearch:"
	}
	if cfg.CacheTTL <= 0 {
		cfg.CacheTTL = 24 * time.Hour
	}
	if cfg.PageSize <= 0 {
		cfg.PageSize = 30
	}
	if cfg.MinQueryLength <= 0 {
		cfg.MinQueryLength = 3
	}
	if cfg.HistoryLimit <= 0 {
		cfg.HistoryLimit = 10
	}
	if cfg.Locale == "" {
		cfg.Locale = "en"
	}
	if cfg.Log.Level == "" {
		cfg.Log.Level = "info"
	}
}

// Validate checks the values that defaults cannot fix
func (c *Config) Validate() error {
	switch c.Store {
	case "sqlite", "memory", "redis":
	default:
		return fmt.Errorf("unknown store %q", c.Store)
	}
	if c.MaxStoreBytes < 0 {
		return errors.New("max_store_bytes must not be negative")
	}
	if c.Redis.DB < 0 {
		return errors.New("redis.db must not be negative")
	}
	return nil
}

// applyEnv overrides cfg from COUNTRYSEARCH_* variables
func applyEnv(cfg *Config, lookup func(string) (string, bool)) error {
	strs := map[string]*string{
		"API_URL":        &cfg.APIURL,
		"STORE":          &cfg.Store,
		"DB_PATH":        &cfg.DBPath,
		"REDIS_ADDR":     &cfg.Redis.Addr,
		"REDIS_PASSWORD": &cfg.Redis.Password,
		"REDIS_PREFIX":   &cfg.Redis.Prefix,
		"LOCALE":         &cfg.Locale,
		"LOG_LEVEL":      &cfg.Log.Level,
		"LOG_FILE":       &cfg.Log.File,
	}
	for name, dst := range strs {
		if v, ok := lookup(EnvPrefix + name); ok && v != "" {
			*dst = v
		}
	}

	ints := map[string]*int{
		"REDIS_DB":         &cfg.Redis.DB,
		"PAGE_SIZE":        &cfg.PageSize,
		"MIN_QUERY_LENGTH": &cfg.MinQueryLength,
		"HISTORY_LIMIT":    &cfg.HistoryLimit,
	}
	for name, dst := range ints {
		v, ok := lookup(EnvPrefix + name)
		if !ok || v == "" {
			continue
		}
		n, err := strconv.Atoi(strings.TrimSpace(v))
		if err != nil {
			return fmt.Errorf("invalid %s%s: %w", EnvPrefix, name, err)
		}
		*dst = n
	}

	durations := map[string]*time.Duration{
		"CACHE_TTL":    &cfg.CacheTTL,
		"HTTP_TIMEOUT": &cfg.HTTPTimeout,
	}
	for name, dst := range durations {
		v, ok := lookup(EnvPrefix + name)
		if !ok || v == "" {
			continue
		}
		d, err := time.ParseDuration(strings.TrimSpace(v))
		if err != nil {
			return fmt.Errorf("invalid %s%s: %w", EnvPrefix, name, err)
		}
		*dst = d
	}

	if v, ok := lookup(EnvPrefix + "MAX_STORE_BYTES"); ok && v != "" {
		n, err := strconv.ParseInt(strings.TrimSpace(v), 10, 64)
		if err != nil {
			return fmt.Errorf("invalid %sMAX_STORE_BYTES: %w", EnvPrefix, err)
		}
		cfg.MaxStoreBytes = n
	}
	if v, ok := lookup(EnvPrefix + "NORMALIZE_CACHE_KEYS"); ok && v != "" {
		b, err := strconv.ParseBool(strings.TrimSpace(v))
		if err != nil {
			return fmt.Errorf("invalid %sNORMALIZE_CACHE_KEYS: %w", EnvPrefix, err)
		}
		cfg.NormalizeCacheKeys = b
	}
	return nil
}
