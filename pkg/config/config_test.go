package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm/logger"
)

func TestLoad_Defaults(t *testing.T) {
	t.Setenv("DB_DRIVER", "")
	cfg, err := Load("storefront")
	require.Error(t, err, "empty driver is not a supported driver")
	assert.Nil(t, cfg)

	t.Setenv("DB_DRIVER", DriverPostgres)
	cfg, err = Load("storefront")
	require.NoError(t, err)

	assert.Equal(t, "storefront", cfg.ServiceName)
	assert.Equal(t, SessionBackendDatabase, cfg.Session.Backend)
	assert.Equal(t, "sessionid", cfg.Session.CookieName)
	assert.Equal(t, 4, cfg.Catalog.RelatedLimit)
	assert.Equal(t, 8, cfg.Catalog.FeaturedLimit)
}

func TestLoad_EnvOverrides(t *testing.T) {
	t.Setenv("DB_DRIVER", DriverSQLite)
	t.Setenv("DB_PATH", "/tmp/shop.db")
	t.Setenv("DB_LOG_LEVEL", "silent")
	t.Setenv("SESSION_BACKEND", SessionBackendRedis)
	t.Setenv("SESSION_TTL", "2h")
	t.Setenv("REDIS_DB", "3")
	t.Setenv("CATALOG_RELATED_LIMIT", "not-a-number")

	cfg, err := Load("storefront")
	require.NoError(t, err)

	assert.Equal(t, "/tmp/shop.db", cfg.DB.GetDSN())
	assert.Equal(t, logger.Silent, cfg.DB.LogLevel)
	assert.Equal(t, SessionBackendRedis, cfg.Session.Backend)
	assert.Equal(t, 2*time.Hour, cfg.Session.TTL)
	assert.Equal(t, 3, cfg.Session.RedisDB)
	assert.Equal(t, 4, cfg.Catalog.RelatedLimit, "invalid ints fall back to the default")
}

func TestLoad_RejectsUnknownSessionBackend(t *testing.T) {
	t.Setenv("DB_DRIVER", DriverPostgres)
	t.Setenv("SESSION_BACKEND", "memcached")

	_, err := Load("storefront")
	assert.ErrorContains(t, err, "SESSION_BACKEND")
}

func TestGetDSN_Postgres(t *testing.T) {
	c := DBConfig{
		Driver:   DriverPostgres,
		Host:     "db",
		Port:     "5432",
		User:     "shop",
		Password: "secret",
		DBName:   "storefront",
		SSLMode:  "disable",
	}
	assert.Equal(t, "host=db port=5432 user=shop password=secret dbname=storefront sslmode=disable", c.GetDSN())
}
