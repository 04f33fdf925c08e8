// Package config provides configuration management for pocketr.
// It loads configuration from environment variables and .env files.
package config

import (
	"fmt"
	"os"
	"strings"

	"github.com/joho/godotenv"
)

// Config represents the application configuration.
type Config struct {
	Database DatabaseConfig
	Paths    PathsConfig
	// User is the e-mail of the default acting user.
	User  string
	Debug bool
}

// DatabaseConfig selects the storage backend.
type DatabaseConfig struct {
	// Driver is "sqlite3" or "postgres".
	Driver string
	// DSN is a lib/pq connection string, or the SQLite file path.
	// An empty SQLite DSN resolves to {DataDir}/pocketr.db.
	DSN string
}

// PathsConfig represents file locations.
type PathsConfig struct {
	DataDir        string
	ExportDir      string
	CurrenciesFile string
}

// Load loads configuration from environment variables.
// It automatically loads .env file from the current directory if available.
// You can optionally specify a custom .env file path.
func Load(envPath ...string) (*Config, error) {
	// Load .env file
	if len(envPath) > 0 && envPath[0] != "" {
		if err := godotenv.Load(envPath[0]); err != nil {
			return nil, fmt.Errorf("failed to load .env file: %w", err)
		}
	} else {
		// Try to load .env from current directory (ignore error if not found)
		_ = godotenv.Load()
	}

	driver := strings.ToLower(getEnvOrDefault("POCKETR_DB_DRIVER", "sqlite3"))
	switch driver {
	case "sqlite", "sqlite3", "postgres", "postgresql":
	default:
		return nil, fmt.Errorf("invalid POCKETR_DB_DRIVER: %s", driver)
	}

	config := &Config{
		Database: DatabaseConfig{
			Driver: driver,
			DSN:    os.Getenv("POCKETR_DB_DSN"),
		},
		Paths: PathsConfig{
			DataDir:        getEnvOrDefault("POCKETR_DATA_DIR", "./data"),
			ExportDir:      os.Getenv("POCKETR_EXPORT_DIR"),
			CurrenciesFile: os.Getenv("POCKETR_CURRENCIES_FILE"),
		},
		User:  strings.TrimSpace(os.Getenv("POCKETR_USER")),
		Debug: os.Getenv("DEBUG") == "true",
	}

	return config, nil
}

// IsPostgres reports whether the PostgreSQL driver is selected.
func (c *Config) IsPostgres() bool {
	return strings.HasPrefix(c.Database.Driver, "postgres")
}

// Validate validates the configuration.
// Each path names one key, for example "database.dsn" or "paths.exportDir".
// Every missing key is reported at once.
func (c *Config) Validate(required ...string) error {
	var missing []string

	for _, path := range required {
		var value string
		switch path {
		case "database.driver":
			value = c.Database.Driver
		case "database.dsn":
			value = c.Database.DSN
		case "paths.dataDir":
			value = c.Paths.DataDir
		case "paths.exportDir":
			value = c.Paths.ExportDir
		case "paths.currenciesFile":
			value = c.Paths.CurrenciesFile
		case "user":
			value = c.User
		default:
			return fmt.Errorf("unknown configuration key: %s", path)
		}

		if value == "" {
			missing = append(missing, path)
		}
	}

	if len(missing) > 0 {
		return fmt.Errorf("missing required configuration: %v\nPlease check your .env file or environment variables", missing)
	}

	return nil
}

// getEnvOrDefault returns the value of the environment variable or a default value if not set.
func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
