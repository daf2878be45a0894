package config

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

// Config holds all configuration for the application
type Config struct {
	Server ServerConfig
	Log    LogConfig
	Ping   PingConfig
}

// ServerConfig holds server-specific configuration
type ServerConfig struct {
	Port    int
	GinMode string // debug, release, test
}

// LogConfig holds logging configuration
type LogConfig struct {
	Level  string // debug, info, warn, error
	Format string // json, text
}

// PingConfig holds the latency sampler configuration
type PingConfig struct {
	URL      string        // Endpoint the command line sampler pings
	Interval time.Duration // Time between ticks
	Timeout  time.Duration // Per-request timeout, zero means none
	Label    string        // Trigger label shown while sampling
}

// flagKeys maps command line flags onto configuration keys
var flagKeys = map[string]string{
	"url":      "ping.url",
	"interval": "ping.interval",
	"timeout":  "ping.timeout",
	"label":    "ping.label",
}

// Load reads configuration from file and environment variables
func Load() (*Config, error) {
	return load(viper.New(), nil)
}

// LoadWithFlags reads configuration like Load and lets any flag that was set
// on the command line override the matching ping.* key
func LoadWithFlags(flags *pflag.FlagSet) (*Config, error) {
	return load(viper.New(), flags)
}

func load(v *viper.Viper, flags *pflag.FlagSet) (*Config, error) {
	// Set config file name and paths
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	v.AddConfigPath("./config")
	v.AddConfigPath("$HOME/.pingboard")

	// Set defaults
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.ginmode", "release")
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "text")
	v.SetDefault("ping.url", "http://localhost:8080/api/ping")
	v.SetDefault("ping.interval", time.Second)
	v.SetDefault("ping.timeout", time.Duration(0))
	v.SetDefault("ping.label", "Pinging...")

	// Read from environment variables
	v.SetEnvPrefix("PINGBOARD")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if flags != nil {
		for name, key := range flagKeys {
			flag := flags.Lookup(name)
			if flag == nil {
				continue
			}
			if err := v.BindPFlag(key, flag); err != nil {
				return nil, fmt.Errorf("failed to bind flag %q: %w", name, err)
			}
		}
	}

	// Read config file
	if err := v.ReadInConfig(); err != nil {
		// It's okay if config file doesn't exist, we have defaults
		var configFileNotFoundError viper.ConfigFileNotFoundError
		if !errors.As(err, &configFileNotFoundError) {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	// Unmarshal into config struct
	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// Validate rejects settings the sampler cannot run with
func (c *Config) Validate() error {
	if c.Ping.URL == "" {
		return errors.New("ping.url must not be empty")
	}
	if c.Ping.Interval <= 0 {
		return fmt.Errorf("ping.interval must be positive, got %s", c.Ping.Interval)
	}
	if c.Ping.Timeout < 0 {
		return fmt.Errorf("ping.timeout must not be negative, got %s", c.Ping.Timeout)
	}
	return nil
}

// GetServerAddr returns the server address in the format ":port"
func (c *Config) GetServerAddr() string {
	return fmt.Sprintf(":%d", c.Server.Port)
}

// NewLogger creates a new slog.Logger based on the configuration
func (c *Config) NewLogger() *slog.Logger {
	// Parse log level
	var level slog.Level
	switch strings.ToLower(c.Log.Level) {
	case "debug":
		level = slog.LevelDebug
	case "info":
		level = slog.LevelInfo
	case "warn", "warning":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	default:
		level = slog.LevelInfo
	}

	// Create handler options
	opts := &slog.HandlerOptions{
		Level: level,
	}

	// Choose handler based on format
	var handler slog.Handler
	switch strings.ToLower(c.Log.Format) {
	case "json":
		handler = slog.NewJSONHandler(os.Stdout, opts)
	default: // "text" or anything else
		handler = slog.NewTextHandler(os.Stdout, opts)
	}

	return slog.New(handler)
}
