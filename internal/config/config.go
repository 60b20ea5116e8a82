// Package config loads the explorer configuration from defaults, an
// optional config file and the environment.
package config

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// EnvPrefix prefixes every environment override: EXPLORER_DATASET_URL sets
// dataset.url.
const EnvPrefix = "EXPLORER_"

type Config struct {
	Server  ServerConfig  `mapstructure:"server"`
	Dataset DatasetConfig `mapstructure:"dataset"`
	Log     LogConfig     `mapstructure:"log"`
	Warmup  WarmupConfig  `mapstructure:"warmup"`
}

type ServerConfig struct {
	Port   int    `mapstructure:"port"`
	Origin string `mapstructure:"origin"`
	// RPM is the per-client request budget per minute; 0 disables limiting.
	RPM   int `mapstructure:"rpm"`
	Burst int `mapstructure:"burst"`
}

// DatasetConfig selects the dataset source and carries the settings of
// every source type. Each source reads only its own keys.
type DatasetConfig struct {
	Source string `mapstructure:"source"`

	// http
	URL     string        `mapstructure:"url"`
	Method  string        `mapstructure:"method"`
	Headers string        `mapstructure:"headers"`
	Body    string        `mapstructure:"body"`
	Timeout time.Duration `mapstructure:"timeout"`

	// json_file and csv_file
	Path string `mapstructure:"path"`

	// http and json_file
	DataPath string `mapstructure:"datapath"`

	// csv_file
	Delimiter string `mapstructure:"delimiter"`
	Header    string `mapstructure:"header"`

	// database
	Driver   string `mapstructure:"driver"`
	DSN      string `mapstructure:"dsn"`
	Query    string `mapstructure:"query"`
	Host     string `mapstructure:"host"`
	Port     int    `mapstructure:"port"`
	User     string `mapstructure:"user"`
	Password string `mapstructure:"password"`
	SSLMode  string `mapstructure:"sslmode"`

	// mongodb
	URI        string `mapstructure:"uri"`
	Collection string `mapstructure:"collection"`
	Filter     string `mapstructure:"filter"`

	// database and mongodb
	Database string `mapstructure:"database"`
}

type LogConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
	// Seq is the Seq server URL; empty disables the Seq sink.
	Seq string `mapstructure:"seq"`
}

type WarmupConfig struct {
	Enabled  bool          `mapstructure:"enabled"`
	Schedule string        `mapstructure:"schedule"`
	Watch    bool          `mapstructure:"watch"`
	Timeout  time.Duration `mapstructure:"timeout"`
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.port", 9001)
	v.SetDefault("server.origin", "*")
	v.SetDefault("server.rpm", 600)
	v.SetDefault("server.burst", 100)

	v.SetDefault("dataset.source", "http")
	v.SetDefault("dataset.method", "GET")
	v.SetDefault("dataset.timeout", "30s")

	v.SetDefault("log.level", "INFO")
	v.SetDefault("log.format", "text")

	v.SetDefault("warmup.enabled", true)
	v.SetDefault("warmup.schedule", "@every 1m")
	v.SetDefault("warmup.watch", false)
	v.SetDefault("warmup.timeout", "2m")
}

// Load reads the configuration. Precedence, lowest first: defaults, the
// config file at path (or ./explorer.{yaml,json,toml} when path is empty),
// EXPLORER_* environment variables, then a bare PORT.
func Load(path string) (*Config, error) {
	v := viper.New()
	setDefaults(v)

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("read config %s: %w", path, err)
		}
	} else {
		v.SetConfigName("explorer")
		v.AddConfigPath(".")
		if err := v.ReadInConfig(); err != nil {
			var notFound viper.ConfigFileNotFoundError
			if !errors.As(err, &notFound) {
				return nil, fmt.Errorf("read config: %w", err)
			}
		}
	}

	// EXPLORER_DATASET_URL -> dataset.url
	for _, env := range os.Environ() {
		key, value, ok := strings.Cut(env, "=")
		if !ok || !strings.HasPrefix(key, EnvPrefix) {
			continue
		}
		prop := strings.ToLower(strings.ReplaceAll(strings.TrimPrefix(key, EnvPrefix), "_", "."))
		v.Set(strings.TrimPrefix(prop, "."), value)
	}
	if port := os.Getenv("PORT"); port != "" {
		v.Set("server.port", port)
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate checks the settings that would otherwise fail late.
func (c *Config) Validate() error {
	if c.Server.Port < 1 || c.Server.Port > 65535 {
		return fmt.Errorf("server.port must be between 1 and 65535, got %d", c.Server.Port)
	}
	if c.Server.RPM < 0 || c.Server.Burst < 0 {
		return errors.New("server.rpm and server.burst must not be negative")
	}
	if strings.TrimSpace(c.Dataset.Source) == "" {
		return errors.New("dataset.source is required")
	}
	switch strings.ToLower(c.Log.Format) {
	case "text", "json":
	default:
		return fmt.Errorf("log.format must be text or json, got %q", c.Log.Format)
	}
	if _, err := c.Log.SlogLevel(); err != nil {
		return err
	}
	if c.Warmup.Watch && c.Dataset.fileSource() && c.Dataset.Path == "" {
		return errors.New("warmup.watch needs dataset.path")
	}
	return nil
}

// SlogLevel parses Level ("debug", "INFO", "warn", "error").
func (l LogConfig) SlogLevel() (slog.Level, error) {
	var level slog.Level
	if err := level.UnmarshalText([]byte(l.Level)); err != nil {
		return 0, fmt.Errorf("log.level: %w", err)
	}
	return level, nil
}

// SourceConfig returns the settings in the key layout the dataset sources
// read. Unset values are left out.
func (d DatasetConfig) SourceConfig() map[string]any {
	cfg := map[string]any{}
	set := func(key string, value any) {
		switch v := value.(type) {
		case string:
			if v == "" {
				return
			}
		case int:
			if v == 0 {
				return
			}
		case time.Duration:
			if v == 0 {
				return
			}
			value = v.String()
		}
		cfg[key] = value
	}

	set("url", d.URL)
	set("method", d.Method)
	set("headers", d.Headers)
	set("body", d.Body)
	set("timeout", d.Timeout)
	set("filePath", d.Path)
	set("dataPath", d.DataPath)
	set("delimiter", d.Delimiter)
	set("hasHeader", d.Header)
	set("driver", d.Driver)
	set("dsn", d.DSN)
	set("query", d.Query)
	set("host", d.Host)
	set("port", d.Port)
	set("user", d.User)
	set("password", d.Password)
	set("sslmode", d.SSLMode)
	set("uri", d.URI)
	set("database", d.Database)
	set("collection", d.Collection)
	set("filter", d.Filter)
	return cfg
}

// WatchPath is the file the warmer watches, or "" when watching is off.
func (c *Config) WatchPath() string {
	if !c.Warmup.Watch || !c.Dataset.fileSource() {
		return ""
	}
	return c.Dataset.Path
}

func (d DatasetConfig) fileSource() bool {
	return d.Source == "json_file" || d.Source == "csv_file"
}
