package config

import (
	"testing"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validConfig() *Config {
	return &Config{
		Env:                "production",
		Port:               "8080",
		DBDriver:           "postgres",
		DBSSLMode:          "require",
		DBPassword:         "secure-password",
		JWTSecret:          "secure-secret-at-least-32-chars-long",
		EventsBackend:      "redis",
		TracingSampleRatio: 1,
		FeedPageSize:       20,
	}
}

func TestConfig_Validate(t *testing.T) {
	tests := []struct {
		name        string
		mutate      func(c *Config)
		expectError bool
	}{
		{"Valid production", func(c *Config) {}, false},
		{"Missing port", func(c *Config) { c.Port = "" }, true},
		{"Default secret in production", func(c *Config) { c.JWTSecret = defaultJWTSecret }, true},
		{"Short secret in production", func(c *Config) { c.JWTSecret = "short" }, true},
		{"Short secret in development", func(c *Config) { c.Env = "development"; c.JWTSecret = "short" }, false},
		{"Production with disable SSL mode", func(c *Config) { c.DBSSLMode = "disable" }, true},
		{"Prod with empty SSL mode", func(c *Config) { c.Env = "prod"; c.DBSSLMode = "" }, true},
		{"Production sqlite skips DB password", func(c *Config) {
			c.DBDriver = "sqlite"
			c.DBPath = "/data/hotorflop.db"
			c.DBPassword = ""
			c.DBSSLMode = ""
		}, false},
		{"Sqlite without path", func(c *Config) { c.DBDriver = "sqlite"; c.DBPath = "" }, true},
		{"Unknown driver", func(c *Config) { c.DBDriver = "mysql" }, true},
		{"Nats without url", func(c *Config) { c.EventsBackend = "nats"; c.NatsURL = "" }, true},
		{"Nats with url", func(c *Config) { c.EventsBackend = "nats"; c.NatsURL = "nats://nats:4222" }, false},
		{"Unknown events backend", func(c *Config) { c.EventsBackend = "kafka" }, true},
		{"Sample ratio out of range", func(c *Config) { c.TracingSampleRatio = 1.5 }, true},
		{"Feed page size too large", func(c *Config) { c.FeedPageSize = 500 }, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := validConfig()
			tt.mutate(c)
			err := c.Validate()
			if tt.expectError {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestLoadConfig_DefaultsAndNormalization(t *testing.T) {
	defer viper.Reset()

	t.Setenv("APP_ENV", "test")
	t.Setenv("DB_SSLMODE", "  DISABLE  ")
	t.Setenv("DB_DRIVER", "SQLite")
	t.Setenv("EVENTS_BACKEND", " NATS ")

	c, err := LoadConfig()
	require.NoError(t, err)
	assert.Equal(t, "disable", c.DBSSLMode)
	assert.Equal(t, "sqlite", c.DBDriver)
	assert.Equal(t, "nats", c.EventsBackend)
	assert.Equal(t, 20, c.FeedPageSize)
	assert.Equal(t, "hotorflop-api", c.JWTIssuer)
	assert.False(t, c.IsProduction())
}
