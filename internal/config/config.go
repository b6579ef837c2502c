// Package config handles loading application configuration from environment
// variables. All config is centralized here so no other package reads env
// vars directly. Sensible defaults are provided for development.
package config

import (
	"fmt"
	"net"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/go-sql-driver/mysql"
	"github.com/robfig/cron/v3"

	"github.com/keyxmakerx/almanac/internal/timezone"
)

// Config holds all application configuration. Populated from environment
// variables at startup. Passed to other packages via dependency injection.
type Config struct {
	// Env is the runtime environment: "development" or "production".
	Env string

	// Port is the HTTP listen port (default: 8080).
	Port int

	// LogLevel controls log verbosity: "debug", "info", "warn", "error".
	LogLevel string

	// HTTP holds edge settings for the API server.
	HTTP HTTPConfig

	// Calendar holds the calendar system defaults.
	Calendar CalendarConfig

	// Storage holds settings for custom calendar definitions.
	Storage StorageConfig

	// Database holds MariaDB connection settings.
	Database DatabaseConfig

	// Redis holds Redis connection settings.
	Redis RedisConfig
}

// HTTPConfig controls how the API faces clients and proxies.
type HTTPConfig struct {
	// CORSOrigins lists browser origins allowed to call the API. Empty
	// disables CORS; "*" allows any origin.
	CORSOrigins []string

	// TrustedProxies are the CIDRs whose X-Forwarded-For is believed.
	TrustedProxies []string

	// WriteRateLimit is how many definition writes one IP may make per
	// minute.
	WriteRateLimit int
}

// CalendarConfig selects the active calendar and how dates are shown.
type CalendarConfig struct {
	// Default is the calendar identifier used when a request names none
	// (default: "gregorian"). Startup fails if it cannot be resolved.
	Default string

	// StartWeekday is the first column of Gregorian week views, 0 = Sunday.
	StartWeekday int

	// UserTimezone is what the "99" timezone sentinel resolves to
	// (default: UTC).
	UserTimezone timezone.Spec

	// SelectorStep is the minute granularity of date selectors (default: 5).
	SelectorStep int
}

// StorageConfig controls where custom calendar definitions come from.
type StorageConfig struct {
	// Enabled turns on the MariaDB store and Redis cache. When false the
	// service runs from the definitions file alone.
	Enabled bool

	// DefinitionsFile is an optional YAML file of custom calendars loaded
	// at startup.
	DefinitionsFile string

	// MigrationsPath is the directory holding SQL migrations.
	MigrationsPath string

	// CacheTTL is how long a definition stays in Redis.
	CacheTTL time.Duration

	// SyncSchedule is the cron spec on which definitions are reloaded from
	// the store, picking up writes made by other instances. Empty disables.
	SyncSchedule string
}

// DatabaseConfig holds MariaDB connection parameters. Individual fields
// (Host, User, Password, Name) are read from separate env vars so
// container orchestrators can manage each independently.
// If DATABASE_URL is set, it takes precedence over the individual fields.
type DatabaseConfig struct {
	// Host is the MariaDB address in host:port format (default: "localhost:3306").
	// If no port is specified, 3306 is appended automatically.
	Host string

	User     string
	Password string
	Name     string

	// dsnOverride is set when DATABASE_URL is provided, bypassing individual fields.
	dsnOverride string

	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxLifetime time.Duration
}

// DSN returns the go-sql-driver/mysql connection string. If DATABASE_URL was
// set, it is returned as-is. Otherwise the DSN is built with the driver's
// Config.FormatDSN() so special characters in passwords survive.
func (d DatabaseConfig) DSN() string {
	if d.dsnOverride != "" {
		return d.dsnOverride
	}
	cfg := mysql.NewConfig()
	cfg.User = d.User
	cfg.Passwd = d.Password
	cfg.Net = "tcp"
	cfg.Addr = ensurePort(d.Host, "3306")
	cfg.DBName = d.Name
	cfg.ParseTime = true
	return cfg.FormatDSN()
}

// ensurePort appends the default port if the host string doesn't include one.
// Allows users to set DB_HOST=mydb (gets :3306) or DB_HOST=mydb:3307 (as-is).
func ensurePort(host, defaultPort string) string {
	_, _, err := net.SplitHostPort(host)
	if err != nil {
		return net.JoinHostPort(host, defaultPort)
	}
	return host
}

// RedisConfig holds Redis connection parameters.
type RedisConfig struct {
	// URL is the Redis connection URL (e.g., "redis://localhost:6379").
	URL string
}

// defaultTrustedProxies covers loopback, Docker bridges and private LANs.
var defaultTrustedProxies = []string{
	"127.0.0.0/8", "10.0.0.0/8", "172.16.0.0/12", "192.168.0.0/16", "fd00::/8",
}

// Load reads configuration from environment variables with sensible defaults.
// Returns an error if a value is present but unusable.
func Load() (*Config, error) {
	userTZ, err := timezone.Parse(getEnv("USER_TIMEZONE", "0"))
	if err != nil {
		return nil, fmt.Errorf("USER_TIMEZONE: %w", err)
	}
	if userTZ.IsUser() {
		return nil, fmt.Errorf("USER_TIMEZONE must name a zone or offset, not the user sentinel")
	}

	cfg := &Config{
		Env:      getEnv("ENV", "development"),
		Port:     getEnvInt("PORT", 8080),
		LogLevel: getEnv("LOG_LEVEL", "debug"),

		HTTP: HTTPConfig{
			CORSOrigins:    getEnvList("CORS_ORIGINS", nil),
			TrustedProxies: getEnvList("TRUSTED_PROXIES", defaultTrustedProxies),
			WriteRateLimit: getEnvInt("WRITE_RATE_LIMIT", 30),
		},

		Calendar: CalendarConfig{
			Default:      getEnv("CALENDAR_TYPE", "gregorian"),
			StartWeekday: getEnvInt("CALENDAR_START_WEEKDAY", 0),
			UserTimezone: userTZ,
			SelectorStep: getEnvInt("SELECTOR_STEP", 5),
		},

		Storage: StorageConfig{
			Enabled:         getEnvBool("STORAGE_ENABLED", false),
			DefinitionsFile: getEnv("DEFINITIONS_FILE", ""),
			MigrationsPath:  getEnv("MIGRATIONS_PATH", "db/migrations"),
			CacheTTL:        getEnvDuration("CACHE_TTL", 10*time.Minute),
			SyncSchedule:    getEnv("SYNC_SCHEDULE", "@every 1m"),
		},

		Database: DatabaseConfig{
			Host:            getEnv("DB_HOST", "localhost:3306"),
			User:            getEnv("DB_USER", "almanac"),
			Password:        getEnv("DB_PASSWORD", "almanac"),
			Name:            getEnv("DB_NAME", "almanac"),
			dsnOverride:     getEnv("DATABASE_URL", ""),
			MaxOpenConns:    getEnvInt("DB_MAX_OPEN_CONNS", 25),
			MaxIdleConns:    getEnvInt("DB_MAX_IDLE_CONNS", 5),
			ConnMaxLifetime: getEnvDuration("DB_CONN_MAX_LIFETIME", 5*time.Minute),
		},

		Redis: RedisConfig{
			URL: getEnv("REDIS_URL", "redis://localhost:6379"),
		},
	}

	if cfg.Calendar.StartWeekday < 0 || cfg.Calendar.StartWeekday > 6 {
		return nil, fmt.Errorf("CALENDAR_START_WEEKDAY must be between 0 and 6")
	}
	if cfg.Calendar.SelectorStep < 1 || cfg.Calendar.SelectorStep > 60 {
		return nil, fmt.Errorf("SELECTOR_STEP must be between 1 and 60")
	}

	if cfg.Storage.SyncSchedule != "" {
		if _, err := cron.ParseStandard(cfg.Storage.SyncSchedule); err != nil {
			return nil, fmt.Errorf("SYNC_SCHEDULE: %w", err)
		}
	}
	if cfg.HTTP.WriteRateLimit < 1 {
		return nil, fmt.Errorf("WRITE_RATE_LIMIT must be positive")
	}

	// Production deployments with storage must not run on the dev password.
	if cfg.IsProduction() && cfg.Storage.Enabled && cfg.Database.dsnOverride == "" && cfg.Database.Password == "almanac" {
		return nil, fmt.Errorf("DB_PASSWORD must be set in production")
	}

	return cfg, nil
}

// IsDevelopment returns true if running in development mode.
func (c *Config) IsDevelopment() bool {
	env := strings.ToLower(c.Env)
	return env == "development" || env == "dev"
}

// IsProduction returns true for "production" or "prod" in any case.
func (c *Config) IsProduction() bool {
	env := strings.ToLower(c.Env)
	return env == "production" || env == "prod"
}

// --- Helper functions for reading environment variables ---

// getEnv reads a string env var or returns the default.
func getEnv(key, defaultVal string) string {
	if val, ok := os.LookupEnv(key); ok {
		return val
	}
	return defaultVal
}

// getEnvInt reads an integer env var or returns the default.
func getEnvInt(key string, defaultVal int) int {
	if val, ok := os.LookupEnv(key); ok {
		if i, err := strconv.Atoi(val); err == nil {
			return i
		}
	}
	return defaultVal
}

// getEnvBool reads a boolean env var ("true", "1", "yes") or returns the default.
func getEnvBool(key string, defaultVal bool) bool {
	if val, ok := os.LookupEnv(key); ok {
		switch strings.ToLower(strings.TrimSpace(val)) {
		case "true", "1", "yes", "on":
			return true
		case "false", "0", "no", "off":
			return false
		}
	}
	return defaultVal
}

// getEnvList reads a comma-separated env var, dropping empty items.
func getEnvList(key string, defaultVal []string) []string {
	val, ok := os.LookupEnv(key)
	if !ok {
		return defaultVal
	}
	var out []string
	for _, item := range strings.Split(val, ",") {
		if item = strings.TrimSpace(item); item != "" {
			out = append(out, item)
		}
	}
	return out
}

// getEnvDuration reads a duration env var (e.g., "10m") or returns the default.
func getEnvDuration(key string, defaultVal time.Duration) time.Duration {
	if val, ok := os.LookupEnv(key); ok {
		if d, err := time.ParseDuration(val); err == nil {
			return d
		}
	}
	return defaultVal
}
