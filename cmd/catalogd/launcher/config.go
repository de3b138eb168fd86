package launcher

import (
	"fmt"
	"time"

	"github.com/carcatalog/catalog/kit/cli"
	"github.com/carcatalog/catalog/kit/tracing"
	"github.com/carcatalog/catalog/logger"
	"github.com/carcatalog/catalog/sqlstore"
	"go.uber.org/zap/zapcore"
)

// Config holds every setting of catalogd.
type Config struct {
	LogLevel  zapcore.Level
	LogFormat string

	HTTPBindAddress       string
	HTTPReadHeaderTimeout time.Duration
	HTTPIdleTimeout       time.Duration
	HTTPRateLimit         float64
	HTTPRateBurst         int

	StoreDriver string
	SQLitePath  string
	PostgresDSN string

	TracingType string
}

// NewConfig returns a Config with the defaults catalogd starts with.
func NewConfig() *Config {
	return &Config{
		LogLevel:  zapcore.InfoLevel,
		LogFormat: logger.FormatAuto,

		HTTPBindAddress:       ":8000",
		HTTPReadHeaderTimeout: 10 * time.Second,
		HTTPIdleTimeout:       3 * time.Minute,
		HTTPRateBurst:         50,

		StoreDriver: sqlstore.DriverSQLite,
		SQLitePath:  sqlstore.DefaultFilename,

		TracingType: tracing.TypeNone,
	}
}

// DSN returns the data source for the configured driver.
func (c *Config) DSN() (string, error) {
	switch c.StoreDriver {
	case sqlstore.DriverSQLite:
		return c.SQLitePath, nil
	case sqlstore.DriverPostgres:
		if c.PostgresDSN == "" {
			return "", fmt.Errorf("postgres-dsn is required with store-driver %q", c.StoreDriver)
		}
		return c.PostgresDSN, nil
	default:
		return "", fmt.Errorf("unknown store-driver %q; expected %s or %s", c.StoreDriver, sqlstore.DriverSQLite, sqlstore.DriverPostgres)
	}
}

// Opts returns the command line options bound to c.
func (c *Config) Opts() []cli.Opt {
	return []cli.Opt{
		{
			DestP:      &c.LogLevel,
			Flag:       "log-level",
			Default:    c.LogLevel,
			Persistent: true,
			Desc:       "supported log levels are debug, info, warn and error",
		},
		{
			DestP:      &c.LogFormat,
			Flag:       "log-format",
			Default:    c.LogFormat,
			Persistent: true,
			Desc: fmt.Sprintf("log output format: %s, %s, %s or %s",
				logger.FormatAuto, logger.FormatConsole, logger.FormatJSON, logger.FormatLogfmt),
		},
		{
			DestP:   &c.HTTPBindAddress,
			Flag:    "http-bind-address",
			Default: c.HTTPBindAddress,
			Desc:    "bind address for the REST HTTP API",
		},
		{
			DestP:   &c.HTTPReadHeaderTimeout,
			Flag:    "http-read-header-timeout",
			Default: c.HTTPReadHeaderTimeout,
			Desc:    "max duration the server should spend trying to read HTTP headers for new requests. Set to 0 for no timeout",
		},
		{
			DestP:   &c.HTTPIdleTimeout,
			Flag:    "http-idle-timeout",
			Default: c.HTTPIdleTimeout,
			Desc:    "max duration the server should keep established connections alive while waiting for new requests. Set to 0 for no timeout",
		},
		{
			DestP:   &c.HTTPRateLimit,
			Flag:    "http-rate-limit",
			Default: c.HTTPRateLimit,
			Desc:    "API requests allowed per second. Set to 0 to disable rate limiting",
		},
		{
			DestP:   &c.HTTPRateBurst,
			Flag:    "http-rate-burst",
			Default: c.HTTPRateBurst,
			Desc:    "API requests allowed in a single burst when rate limiting is enabled",
		},
		{
			DestP:      &c.StoreDriver,
			Flag:       "store-driver",
			Default:    c.StoreDriver,
			Persistent: true,
			Desc:       fmt.Sprintf("database backing the catalog (%s or %s)", sqlstore.DriverSQLite, sqlstore.DriverPostgres),
		},
		{
			DestP:      &c.SQLitePath,
			Flag:       "sqlite-path",
			Default:    c.SQLitePath,
			Persistent: true,
			Desc:       fmt.Sprintf("path to the sqlite database file, or %q for an in-memory database", sqlstore.InmemPath),
		},
		{
			DestP:      &c.PostgresDSN,
			Flag:       "postgres-dsn",
			Persistent: true,
			Desc:       "postgres connection string, used with store-driver postgres",
		},
		{
			DestP:   &c.TracingType,
			Flag:    "tracing-type",
			Default: c.TracingType,
			Desc:    fmt.Sprintf("supported tracing types are %q and %s", tracing.TypeNone, tracing.TypeJaeger),
		},
	}
}
