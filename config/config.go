package config

import (
	"fmt"
	"log"

	"github.com/spf13/viper"
)

// Config holds the full application configuration loaded from environment variables or .env file.
//
// Example ENV equivalent:
//
//	SERVER_PORT=8080
//	RATE_LIMIT_PER_MINUTE=60
//	POSTGRES_HOST=localhost
//	POSTGRES_PORT=5432
//	POSTGRES_USER=admin
//	POSTGRES_PASSWORD=secret
//	POSTGRES_DB=brokerfees
//	POSTGRES_SSLMODE=disable
//	POSTGRES_AUTO_MIGRATE=false
//	FEE_RULES_PATH=./rules/belgium.yaml
//	VALIDATION_MAX_RETRIES=3
//	VALIDATION_PARALLEL=0
//	VALIDATION_HISTORY=true
type Config struct {
	Server     ServerConfig     // HTTP server configuration
	Postgres   PostgresConfig   // PostgreSQL connection settings
	Fees       FeesConfig       // Fee rule source
	Validation ValidationConfig // Table validation behaviour
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Port               string // The TCP port the HTTP server will listen on (e.g., "8080")
	RateLimitPerMinute int    // Requests allowed per client IP per minute
}

// PostgresConfig defines connection details for PostgreSQL.
//
// Fields:
//   - Host: hostname of the database server.
//   - Port: port number of the database server (default 5432).
//   - User: username for authentication.
//   - Password: password for authentication.
//   - DBName: target database name.
//   - SSLMode: SSL mode (e.g., "disable", "require").
//   - AutoMigrate: apply embedded migrations on startup.
//   - URL: computed DSN used by database/sql to connect.
type PostgresConfig struct {
	Host        string
	Port        int
	User        string
	Password    string
	DBName      string
	SSLMode     string
	AutoMigrate bool
	URL         string
}

// FeesConfig selects the fee rule set. An empty RulesPath means the
// built-in Belgian rule set.
type FeesConfig struct {
	RulesPath string
}

// ValidationConfig tunes table validation.
//
// Fields:
//   - MaxRetries: generation attempts before the last candidate is patched.
//   - Parallel: files validated concurrently in batch mode (0 = auto, capped at 8).
//   - History: persist validation runs in PostgreSQL.
type ValidationConfig struct {
	MaxRetries int
	Parallel   int
	History    bool
}

// AppConfig is the globally accessible configuration instance.
//
// It is populated once via LoadConfig() and used throughout the application.
var AppConfig Config

// LoadConfig initializes the global AppConfig by reading from .env file
// or directly from environment variables.
//
// Precedence (from lowest to highest):
//  1. Defaults set in this function.
//  2. Values from .env file (if present).
//  3. Environment variables.
//
// Fatal exit:
//   - If required variables are missing or invalid, validateConfig() terminates
//     the app with a descriptive log message.
func LoadConfig() {
	// Default values
	viper.SetDefault("SERVER_PORT", "8080")
	viper.SetDefault("RATE_LIMIT_PER_MINUTE", 60)

	viper.SetDefault("POSTGRES_HOST", "localhost")
	viper.SetDefault("POSTGRES_PORT", 5432)
	viper.SetDefault("POSTGRES_USER", "postgres")
	viper.SetDefault("POSTGRES_PASSWORD", "postgres")
	viper.SetDefault("POSTGRES_DB", "brokerfees")
	viper.SetDefault("POSTGRES_SSLMODE", "disable")
	viper.SetDefault("POSTGRES_AUTO_MIGRATE", false)

	viper.SetDefault("FEE_RULES_PATH", "")
	viper.SetDefault("VALIDATION_MAX_RETRIES", 3)
	viper.SetDefault("VALIDATION_PARALLEL", 0)
	viper.SetDefault("VALIDATION_HISTORY", true)

	// Optionally read from .env if present (common in local dev)
	viper.SetConfigFile(".env")
	_ = viper.ReadInConfig() // ignore error if no .env

	// Read environment variables automatically
	viper.AutomaticEnv()

	AppConfig = Config{
		Server: ServerConfig{
			Port:               viper.GetString("SERVER_PORT"),
			RateLimitPerMinute: viper.GetInt("RATE_LIMIT_PER_MINUTE"),
		},
		Postgres: PostgresConfig{
			Host:        viper.GetString("POSTGRES_HOST"),
			Port:        viper.GetInt("POSTGRES_PORT"),
			User:        viper.GetString("POSTGRES_USER"),
			Password:    viper.GetString("POSTGRES_PASSWORD"),
			DBName:      viper.GetString("POSTGRES_DB"),
			SSLMode:     viper.GetString("POSTGRES_SSLMODE"),
			AutoMigrate: viper.GetBool("POSTGRES_AUTO_MIGRATE"),
		},
		Fees: FeesConfig{
			RulesPath: viper.GetString("FEE_RULES_PATH"),
		},
		Validation: ValidationConfig{
			MaxRetries: viper.GetInt("VALIDATION_MAX_RETRIES"),
			Parallel:   viper.GetInt("VALIDATION_PARALLEL"),
			History:    viper.GetBool("VALIDATION_HISTORY"),
		},
	}

	AppConfig.Postgres.URL = AppConfig.Postgres.DSN()

	validateConfig()
}

// DSN builds the PostgreSQL connection string used by database/sql.
func (p PostgresConfig) DSN() string {
	return fmt.Sprintf(
		"postgres://%s:%s@%s:%d/%s?sslmode=%s",
		p.User,
		p.Password,
		p.Host,
		p.Port,
		p.DBName,
		p.SSLMode,
	)
}

// validateConfig terminates the application when required variables are
// missing or out of range. Postgres settings are only required when
// validation history is enabled.
func validateConfig() {
	if problems := AppConfig.problems(); len(problems) > 0 {
		log.Fatalf("Missing or invalid environment variables: %v\n", problems)
	}
}

func (c Config) problems() []string {
	var missing []string

	if c.Server.Port == "" {
		missing = append(missing, "SERVER_PORT")
	}
	if c.Server.RateLimitPerMinute < 1 {
		missing = append(missing, "RATE_LIMIT_PER_MINUTE")
	}
	if c.Validation.MaxRetries < 1 {
		missing = append(missing, "VALIDATION_MAX_RETRIES")
	}
	if c.Validation.Parallel < 0 {
		missing = append(missing, "VALIDATION_PARALLEL")
	}
	if !c.Validation.History {
		return missing
	}
	if c.Postgres.Host == "" {
		missing = append(missing, "POSTGRES_HOST")
	}
	if c.Postgres.Port == 0 {
		missing = append(missing, "POSTGRES_PORT")
	}
	if c.Postgres.User == "" {
		missing = append(missing, "POSTGRES_USER")
	}
	if c.Postgres.Password == "" {
		missing = append(missing, "POSTGRES_PASSWORD")
	}
	if c.Postgres.DBName == "" {
		missing = append(missing, "POSTGRES_DB")
	}
	return missing
}
