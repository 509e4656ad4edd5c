// Package shared holds the state passed to all CLI commands.
package shared

import (
	"hotorflop/internal/cache"
	"hotorflop/internal/config"
	"hotorflop/internal/database"
	"hotorflop/internal/middleware"

	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

// Context carries configuration loaded once by the root command.
type Context struct {
	// Config is loaded before any subcommand runs unless already set.
	Config *config.Config
	// OpenDB connects to the configured database. Tests replace it.
	OpenDB func(*config.Config) (*gorm.DB, error)
	// OpenRedis connects to Redis; nil means unavailable. Tests replace it.
	OpenRedis func(*config.Config) *redis.Client
}

// Load reads configuration and installs the logger and auth settings it implies.
func (c *Context) Load() error {
	if c.Config == nil {
		cfg, err := config.LoadConfig()
		if err != nil {
			return err
		}
		c.Config = cfg
		middleware.Logger = middleware.NewLogger(cfg.Env)
	}
	middleware.InitMiddleware(c.Config)
	return nil
}

// DB opens the database described by the loaded configuration.
func (c *Context) DB() (*gorm.DB, error) {
	if c.OpenDB != nil {
		return c.OpenDB(c.Config)
	}
	return database.Connect(c.Config)
}

// Redis connects to the configured Redis, or returns nil when it is unreachable.
func (c *Context) Redis() *redis.Client {
	if c.OpenRedis != nil {
		return c.OpenRedis(c.Config)
	}
	return cache.InitRedis(c.Config.RedisURL)
}
