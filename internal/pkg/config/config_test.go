package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func validConfig() Config {
	return Config{
		Database: DatabaseConfig{Host: "localhost", User: "postgres", DBName: "anonboard", Port: "5432", SSLMode: "disable", Password: "pw"},
		Redis:    RedisConfig{Addr: "localhost:6379"},
		JWT:      JWTConfig{Secret: "0123456789abcdef0123456789abcdef"},
		Content:  ContentConfig{PostEditWindow: 10 * time.Minute, CommentEditWindow: 10 * time.Minute, MaxTags: 5, FreePostLimit: 5},
		RateLimit: RateLimitConfig{
			IPQPS: 50, IPBurst: 100, VotePerWindow: 60, ReportPerWindow: 10, CommentPerWindow: 20, Window: time.Minute,
		},
	}
}

func TestValidate(t *testing.T) {
	t.Run("valid config", func(t *testing.T) {
		cfg := validConfig()
		assert.NoError(t, cfg.Validate())
	})

	t.Run("short jwt secret", func(t *testing.T) {
		cfg := validConfig()
		cfg.JWT.Secret = "short"
		assert.Error(t, cfg.Validate())
	})

	t.Run("missing database host", func(t *testing.T) {
		cfg := validConfig()
		cfg.Database.Host = ""
		assert.Error(t, cfg.Validate())
	})

	t.Run("zero throttle window", func(t *testing.T) {
		cfg := validConfig()
		cfg.RateLimit.Window = 0
		assert.Error(t, cfg.Validate())
	})

	t.Run("negative free post limit", func(t *testing.T) {
		cfg := validConfig()
		cfg.Content.FreePostLimit = -1
		assert.Error(t, cfg.Validate())
	})

	t.Run("zero free post limit means unlimited", func(t *testing.T) {
		cfg := validConfig()
		cfg.Content.FreePostLimit = 0
		assert.NoError(t, cfg.Validate())
	})

	t.Run("zero edit window", func(t *testing.T) {
		cfg := validConfig()
		cfg.Content.CommentEditWindow = 0
		assert.Error(t, cfg.Validate())
	})
}

func TestDatabaseURL(t *testing.T) {
	cfg := validConfig()
	assert.Equal(t, "postgres://postgres:pw@localhost:5432/anonboard?sslmode=disable", cfg.Database.URL())
	assert.Contains(t, cfg.Database.DSN(), "dbname=anonboard")
}
