package config // package config loads application configuration from environment variables

import (
	"fmt"
	"os"
	"strings"

	"github.com/joho/godotenv"
)

// Supported values for DB_DRIVER.
const (
	DriverMySQL    = "mysql"
	DriverPostgres = "postgres"
	DriverSQLite   = "sqlite3"
)

// Config holds the core runtime configuration.  Each field corresponds to
// an environment variable; concern-specific settings (cache, rate limit,
// mail, queue, outbox, logging) have their own loaders in this package.
type Config struct {
	Env       string // application environment (e.g. "dev", "prod")
	Port      string // HTTP port to listen on
	DBDriver  string // mysql | postgres | sqlite3
	DBUser    string // database username
	DBPass    string // database password (optional)
	DBHost    string // database host address
	DBPort    string // database port number
	DBName    string // database name
	DBPath    string // sqlite3 database file
	SentryDSN string // error reporting DSN; empty disables Sentry
}

// LoadDotEnv reads a .env file into the process environment when one is
// present.  Variables that are already set are left untouched.
func LoadDotEnv(files ...string) {
	_ = godotenv.Load(files...)
}

// Load reads configuration values from environment variables and returns a
// Config.  Variables required by the selected driver are checked together so
// a misconfigured deployment reports every missing key at once.
func Load() (Config, error) {
	cfg := Config{
		Env:       envStr("APP_ENV", "dev"),
		Port:      envStr("APP_PORT", envStr("PORT", "3001")),
		DBDriver:  strings.ToLower(envStr("DB_DRIVER", DriverMySQL)),
		DBUser:    os.Getenv("DB_USER"),
		DBPass:    os.Getenv("DB_PASS"), // empty allowed
		DBHost:    os.Getenv("DB_HOST"),
		DBPort:    os.Getenv("DB_PORT"),
		DBName:    os.Getenv("DB_NAME"),
		DBPath:    envStr("DB_PATH", "shastra.db"),
		SentryDSN: os.Getenv("SENTRY_DSN"),
	}

	var missing []string
	switch cfg.DBDriver {
	case DriverMySQL, DriverPostgres:
		for _, key := range []string{"DB_USER", "DB_HOST", "DB_PORT", "DB_NAME"} {
			if os.Getenv(key) == "" {
				missing = append(missing, key)
			}
		}
	case DriverSQLite:
	default:
		return Config{}, fmt.Errorf("unsupported DB_DRIVER %q", cfg.DBDriver)
	}
	if len(missing) > 0 {
		return Config{}, fmt.Errorf("missing required env vars: %s", strings.Join(missing, ", "))
	}
	return cfg, nil
}

// IsProd reports whether the service runs in a production environment.
func (c Config) IsProd() bool {
	return strings.EqualFold(c.Env, "prod") || strings.EqualFold(c.Env, "production")
}
