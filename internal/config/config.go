// Package config loads the hepato-proxy configuration from a YAML file, a
// .env file and HEPATO_* environment variables, in that order of precedence
// (environment wins).
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"net/url"
	"os"
	"time"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
	"github.com/redis/go-redis/v9"
	"gopkg.in/yaml.v3"

	"github.com/Sternrassler/hepatodb-client/pkg/client"
	"github.com/Sternrassler/hepatodb-client/pkg/logging"
)

// EnvPrefix is the prefix of every environment override, e.g.
// HEPATO_API_BASE_URL or HEPATO_LOG_LEVEL.
const EnvPrefix = "HEPATO"

// Config is the complete proxy configuration.
type Config struct {
	Server   ServerConfig  `yaml:"server"`
	API      APIConfig     `yaml:"api"`
	Redis    RedisConfig   `yaml:"redis"`
	Log      LogConfig     `yaml:"log"`
	Sessions SessionConfig `yaml:"sessions"`
}

// ServerConfig configures the HTTP facade.
type ServerConfig struct {
	Addr string `yaml:"addr"`
	// Maximum number of simultaneously accepted connections.
	MaxConnections  int           `yaml:"max_connections" split_words:"true"`
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout" split_words:"true"`
}

// APIConfig configures the upstream HepatoDB client.
type APIConfig struct {
	BaseURL        string        `yaml:"base_url" envconfig:"BASE_URL"`
	UserAgent      string        `yaml:"user_agent" split_words:"true"`
	MaxConcurrency int           `yaml:"max_concurrency" split_words:"true"`
	RequestTimeout time.Duration `yaml:"request_timeout" split_words:"true"`
	MaxRetries     int           `yaml:"max_retries" split_words:"true"`
	MemoryCacheTTL time.Duration `yaml:"memory_cache_ttl" envconfig:"MEMORY_CACHE_TTL"`
}

// RedisConfig is optional; an empty Addr runs the client memory-only.
type RedisConfig struct {
	Addr     string `yaml:"addr"`
	Password string `yaml:"password"`
	DB       int    `yaml:"db"`
}

// LogConfig configures zerolog.
type LogConfig struct {
	Level  string `yaml:"level"`
	Pretty bool   `yaml:"pretty"`
}

// SessionConfig configures the screen session registry.
type SessionConfig struct {
	TTL time.Duration `yaml:"ttl"`
}

// Default returns the configuration used when no file or variable overrides
// a value.
func Default() Config {
	return Config{
		Server: ServerConfig{
			Addr:            ":8080",
			MaxConnections:  100,
			ShutdownTimeout: 10 * time.Second,
		},
		API: APIConfig{
			BaseURL:        "http://localhost:5000/api",
			UserAgent:      client.DefaultUserAgent,
			MaxConcurrency: 1,
			RequestTimeout: 15 * time.Second,
			MemoryCacheTTL: 5 * time.Minute,
		},
		Log: LogConfig{
			Level: string(logging.LevelInfo),
		},
		Sessions: SessionConfig{
			TTL: 30 * time.Minute,
		},
	}
}

// Load builds the configuration. path may be empty, in which case only
// defaults and the environment apply. A missing .env file is not an error.
func Load(path string) (Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return Config{}, fmt.Errorf("load .env: %w", err)
	}

	cfg := Default()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return Config{}, fmt.Errorf("read config: %w", err)
		}
		if err := Parse(data, &cfg); err != nil {
			return Config{}, err
		}
	}

	if err := envconfig.Process(EnvPrefix, &cfg); err != nil {
		return Config{}, fmt.Errorf("environment overrides: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Parse decodes YAML into cfg after expanding ${VAR} references. Keys absent
// from the document keep their current value.
func Parse(data []byte, cfg *Config) error {
	data = []byte(os.ExpandEnv(string(data)))
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return fmt.Errorf("parse config: %w", err)
	}
	return nil
}

// Validate checks the configuration for values the proxy cannot start with.
func (c Config) Validate() error {
	if c.Server.MaxConnections <= 0 {
		return fmt.Errorf("invalid server.max_connections: %d (must be positive)", c.Server.MaxConnections)
	}

	base, err := url.Parse(c.API.BaseURL)
	if err != nil || (base.Scheme != "http" && base.Scheme != "https") || base.Host == "" {
		return fmt.Errorf("invalid api.base_url: %q (must be an http or https url)", c.API.BaseURL)
	}
	if c.API.MaxConcurrency <= 0 {
		return fmt.Errorf("invalid api.max_concurrency: %d (must be positive)", c.API.MaxConcurrency)
	}
	if c.API.MaxRetries < 0 {
		return fmt.Errorf("invalid api.max_retries: %d (must be >= 0)", c.API.MaxRetries)
	}
	if c.API.RequestTimeout <= 0 {
		return fmt.Errorf("invalid api.request_timeout: %s", c.API.RequestTimeout)
	}

	if _, err := logging.ParseLevel(c.Log.Level); err != nil {
		return fmt.Errorf("invalid log.level: %w", err)
	}

	if c.Sessions.TTL <= 0 {
		return fmt.Errorf("invalid sessions.ttl: %s", c.Sessions.TTL)
	}
	return nil
}

// ClientConfig maps the API section onto a client configuration. rdb may be
// nil.
func (c Config) ClientConfig(rdb *redis.Client) client.Config {
	cc := client.DefaultConfig(rdb, c.API.BaseURL)
	cc.UserAgent = c.API.UserAgent
	cc.MaxConcurrency = c.API.MaxConcurrency
	cc.RequestTimeout = c.API.RequestTimeout
	cc.MaxRetries = c.API.MaxRetries
	if c.API.MemoryCacheTTL > 0 {
		cc.MemoryCacheTTL = c.API.MemoryCacheTTL
	}
	return cc
}

// RedisClient returns a client for the configured Redis, or nil when none is
// configured.
func (c Config) RedisClient() *redis.Client {
	if c.Redis.Addr == "" {
		return nil
	}
	return redis.NewClient(&redis.Options{
		Addr:     c.Redis.Addr,
		Password: c.Redis.Password,
		DB:       c.Redis.DB,
	})
}

// LoggingConfig maps the log section onto a logger configuration.
func (c Config) LoggingConfig() logging.Config {
	lc := logging.DefaultConfig()
	lc.Service = "hepato-proxy"
	lc.Pretty = c.Log.Pretty
	if level, err := logging.ParseLevel(c.Log.Level); err == nil {
		lc.Level = level
	}
	return lc
}
