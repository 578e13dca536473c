package config

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	toml "github.com/pelletier/go-toml/v2"
	"golang.org/x/text/currency"
)

const (
	DriverFile     = "file"
	DriverPostgres = "postgres"
	DriverMemory   = "memory"
)

// Config is resolved once at startup and passed by value to whoever needs it.
type Config struct {
	BaseURL             string
	Currency            currency.Unit
	RecentlyViewedLimit int
	RequestTimeout      time.Duration
	LogLevel            string
	LogFormat           string
	Storage             Storage
}

type Storage struct {
	Driver       string
	Dir          string
	DSN          string
	DeviceID     string
	WriteTimeout time.Duration
	WriteRetries int
}

const (
	defaultConfigPath     = "~/.config/storefront/config.toml"
	defaultBaseURL        = "https://api.escuelajs.co/api/v1"
	defaultCurrency       = "USD"
	defaultRecentLimit    = 5
	defaultRequestTimeout = 10 * time.Second
	defaultLogLevel       = "info"
	defaultLogFormat      = "text"
	defaultDriver         = DriverFile
	defaultDataDir        = "~/.local/share/storefront"
	defaultWriteTimeout   = 5 * time.Second
	defaultWriteRetries   = 3
)

type rawConfig struct {
	BaseURL               string     `toml:"base_url"`
	Currency              string     `toml:"currency"`
	RecentlyViewedLimit   int        `toml:"recently_viewed_limit"`
	RequestTimeoutSeconds int        `toml:"request_timeout_seconds"`
	LogLevel              string     `toml:"log_level"`
	LogFormat             string     `toml:"log_format"`
	Storage               rawStorage `toml:"storage"`
}

type rawStorage struct {
	Driver              string `toml:"driver"`
	Dir                 string `toml:"dir"`
	DSN                 string `toml:"dsn"`
	DeviceID            string `toml:"device_id"`
	WriteTimeoutSeconds int    `toml:"write_timeout_seconds"`
	WriteRetries        *int   `toml:"write_retries"`
}

// Default returns the configuration used when no file exists.
func Default() Config {
	cfg, _ := fromRaw(rawConfig{})
	return cfg
}

// Load parses the config at path, or the default location when path is
// empty. A missing file yields Default().
func Load(path string) (Config, error) {
	resolved, err := resolvePath(path)
	if err != nil {
		return Config{}, err
	}

	file, err := os.Open(resolved)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return Default(), nil
		}
		return Config{}, fmt.Errorf("open config: %w", err)
	}
	defer file.Close()

	bytes, err := io.ReadAll(file)
	if err != nil {
		return Config{}, fmt.Errorf("read config: %w", err)
	}

	var raw rawConfig
	if err := toml.Unmarshal(bytes, &raw); err != nil {
		return Config{}, fmt.Errorf("parse config: %w", err)
	}

	return fromRaw(raw)
}

func fromRaw(raw rawConfig) (Config, error) {
	cfg := Config{
		BaseURL:             orDefault(raw.BaseURL, defaultBaseURL),
		RecentlyViewedLimit: raw.RecentlyViewedLimit,
		RequestTimeout:      seconds(raw.RequestTimeoutSeconds, defaultRequestTimeout),
		LogLevel:            strings.ToLower(orDefault(raw.LogLevel, defaultLogLevel)),
		LogFormat:           strings.ToLower(orDefault(raw.LogFormat, defaultLogFormat)),
		Storage: Storage{
			Driver:       strings.ToLower(orDefault(raw.Storage.Driver, defaultDriver)),
			Dir:          mustExpand(orDefault(raw.Storage.Dir, defaultDataDir)),
			DSN:          strings.TrimSpace(raw.Storage.DSN),
			DeviceID:     strings.TrimSpace(raw.Storage.DeviceID),
			WriteTimeout: seconds(raw.Storage.WriteTimeoutSeconds, defaultWriteTimeout),
			WriteRetries: defaultWriteRetries,
		},
	}

	if cfg.RecentlyViewedLimit <= 0 {
		cfg.RecentlyViewedLimit = defaultRecentLimit
	}
	if raw.Storage.WriteRetries != nil && *raw.Storage.WriteRetries >= 0 {
		cfg.Storage.WriteRetries = *raw.Storage.WriteRetries
	}

	unit, err := currency.ParseISO(strings.ToUpper(orDefault(raw.Currency, defaultCurrency)))
	if err != nil {
		return Config{}, fmt.Errorf("parse currency %q: %w", raw.Currency, err)
	}
	cfg.Currency = unit

	switch cfg.Storage.Driver {
	case DriverFile, DriverMemory:
	case DriverPostgres:
		if cfg.Storage.DSN == "" {
			return Config{}, fmt.Errorf("storage driver %q needs a dsn", cfg.Storage.Driver)
		}
	default:
		return Config{}, fmt.Errorf("unknown storage driver %q", cfg.Storage.Driver)
	}

	return cfg, nil
}

// DeviceIDPath is where a generated device id is kept between runs.
func (s Storage) DeviceIDPath() string {
	return filepath.Join(s.Dir, "device_id")
}

func orDefault(value, fallback string) string {
	if v := strings.TrimSpace(value); v != "" {
		return v
	}
	return fallback
}

func seconds(n int, fallback time.Duration) time.Duration {
	if n <= 0 {
		return fallback
	}
	return time.Duration(n) * time.Second
}

func resolvePath(path string) (string, error) {
	if strings.TrimSpace(path) == "" {
		return expandPath(defaultConfigPath)
	}
	return expandPath(path)
}

func mustExpand(path string) string {
	expanded, err := expandPath(path)
	if err != nil {
		return path
	}
	return expanded
}

func expandPath(path string) (string, error) {
	trimmed := strings.TrimSpace(path)
	if trimmed == "" {
		return "", fmt.Errorf("path is empty")
	}
	if strings.HasPrefix(trimmed, "~") {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("resolve home dir: %w", err)
		}
		trimmed = filepath.Join(home, strings.TrimPrefix(trimmed, "~"))
	}
	return filepath.Abs(trimmed)
}
