package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Sternrassler/hepatodb-client/pkg/logging"
)

const sampleYAML = `
server:
  addr: ":9090"
  max_connections: 25
api:
  base_url: "${HEPATO_TEST_UPSTREAM}/api"
  max_concurrency: 4
  request_timeout: 5s
  max_retries: 2
redis:
  addr: "localhost:6379"
  db: 3
log:
  level: debug
  pretty: true
sessions:
  ttl: 10m
`

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "hepato.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestDefault_IsValid(t *testing.T) {
	cfg := Default()
	assert.NoError(t, cfg.Validate())
	assert.Equal(t, 1, cfg.API.MaxConcurrency)
	assert.Zero(t, cfg.API.MaxRetries)
	assert.Empty(t, cfg.Redis.Addr)
}

func TestParse_ExpandsEnvironment(t *testing.T) {
	t.Setenv("HEPATO_TEST_UPSTREAM", "https://hepatodb.example.org")

	cfg := Default()
	require.NoError(t, Parse([]byte(sampleYAML), &cfg))

	assert.Equal(t, ":9090", cfg.Server.Addr)
	assert.Equal(t, 25, cfg.Server.MaxConnections)
	assert.Equal(t, 10*time.Second, cfg.Server.ShutdownTimeout, "unset keys keep defaults")
	assert.Equal(t, "https://hepatodb.example.org/api", cfg.API.BaseURL)
	assert.Equal(t, 5*time.Second, cfg.API.RequestTimeout)
	assert.Equal(t, 3, cfg.Redis.DB)
	assert.Equal(t, "debug", cfg.Log.Level)
	assert.True(t, cfg.Log.Pretty)
	assert.Equal(t, 10*time.Minute, cfg.Sessions.TTL)
}

func TestParse_Malformed(t *testing.T) {
	cfg := Default()
	assert.Error(t, Parse([]byte("server: [unclosed"), &cfg))
}

func TestLoad_EnvironmentWins(t *testing.T) {
	t.Setenv("HEPATO_TEST_UPSTREAM", "http://upstream:5000")
	t.Setenv("HEPATO_API_MAX_RETRIES", "5")
	t.Setenv("HEPATO_LOG_LEVEL", "warn")
	t.Setenv("HEPATO_SERVER_MAX_CONNECTIONS", "7")

	cfg, err := Load(writeConfig(t, sampleYAML))
	require.NoError(t, err)

	assert.Equal(t, "http://upstream:5000/api", cfg.API.BaseURL)
	assert.Equal(t, 5, cfg.API.MaxRetries)
	assert.Equal(t, "warn", cfg.Log.Level)
	assert.Equal(t, 7, cfg.Server.MaxConnections)
	assert.Equal(t, 4, cfg.API.MaxConcurrency, "file value survives without override")
}

func TestLoad_NoFile(t *testing.T) {
	t.Setenv("HEPATO_API_BASE_URL", "https://hepatodb.example.org/api")

	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, "https://hepatodb.example.org/api", cfg.API.BaseURL)
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"zero connections", func(c *Config) { c.Server.MaxConnections = 0 }},
		{"empty base url", func(c *Config) { c.API.BaseURL = "" }},
		{"non-http base url", func(c *Config) { c.API.BaseURL = "ftp://hepatodb.example.org" }},
		{"zero concurrency", func(c *Config) { c.API.MaxConcurrency = 0 }},
		{"negative retries", func(c *Config) { c.API.MaxRetries = -1 }},
		{"zero timeout", func(c *Config) { c.API.RequestTimeout = 0 }},
		{"unknown log level", func(c *Config) { c.Log.Level = "verbose" }},
		{"zero session ttl", func(c *Config) { c.Sessions.TTL = 0 }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(&cfg)
			assert.Error(t, cfg.Validate())
		})
	}
}

func TestClientConfig(t *testing.T) {
	cfg := Default()
	cfg.API.MaxConcurrency = 3
	cfg.API.MaxRetries = 2
	cfg.API.UserAgent = "lab-dashboard/2.0"

	cc := cfg.ClientConfig(nil)
	assert.Equal(t, cfg.API.BaseURL, cc.BaseURL)
	assert.Nil(t, cc.Redis)
	assert.Equal(t, 3, cc.MaxConcurrency)
	assert.Equal(t, 2, cc.MaxRetries)
	assert.Equal(t, "lab-dashboard/2.0", cc.UserAgent)
	assert.Equal(t, 5*time.Minute, cc.MemoryCacheTTL)
}

func TestRedisClient(t *testing.T) {
	cfg := Default()
	assert.Nil(t, cfg.RedisClient())

	cfg.Redis.Addr = "localhost:6379"
	rdb := cfg.RedisClient()
	require.NotNil(t, rdb)
	defer rdb.Close()
	assert.Equal(t, "localhost:6379", rdb.Options().Addr)
}

func TestLoggingConfig(t *testing.T) {
	cfg := Default()
	cfg.Log.Level = "error"
	cfg.Log.Pretty = true

	lc := cfg.LoggingConfig()
	assert.Equal(t, logging.LevelError, lc.Level)
	assert.True(t, lc.Pretty)
	assert.Equal(t, "hepato-proxy", lc.Service)
}
