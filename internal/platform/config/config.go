package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Database types accepted by DB_TYPE
const (
	DatabaseTypePostgreSQL = "postgresql"
	DatabaseTypeMemory     = "memory"
)

// Config is the full service configuration
type Config struct {
	Server     ServerConfig     `json:"server"`
	Database   DatabaseConfig   `json:"database"`
	Pagination PaginationConfig `json:"pagination"`
	Thread     ThreadConfig     `json:"thread"`
	App        AppConfig        `json:"app"`
}

// ServerConfig holds server-related configuration
type ServerConfig struct {
	Host      string `json:"host"`
	Port      int    `json:"port"`
	BaseRoute string `json:"baseRoute"`
	WebDomain string `json:"webDomain"`
	Debug     bool   `json:"debug"`
}

// Address returns host:port for the listener
func (s ServerConfig) Address() string {
	return fmt.Sprintf("%s:%d", s.Host, s.Port)
}

// DatabaseConfig holds database-related configuration
type DatabaseConfig struct {
	Type        string           `json:"type"`
	AutoMigrate bool             `json:"autoMigrate"`
	SeedDemo    bool             `json:"seedDemo"`
	Postgres    PostgreSQLConfig `json:"postgres"`
}

// PostgreSQLConfig holds PostgreSQL-specific configuration
type PostgreSQLConfig struct {
	Host            string        `json:"host"`
	Port            int           `json:"port"`
	Username        string        `json:"username"`
	Password        string        `json:"password"`
	Database        string        `json:"database"`
	Schema          string        `json:"schema"`
	DSN             string        `json:"dsn"`
	SSLMode         string        `json:"sslMode"`
	ConnectTimeout  int           `json:"connectTimeout"`
	MaxOpenConns    int           `json:"maxOpenConns"`
	MaxIdleConns    int           `json:"maxIdleConns"`
	ConnMaxLifetime time.Duration `json:"connMaxLifetime"`
}

// PaginationConfig holds the default page sizes of the list endpoints
type PaginationConfig struct {
	FirstLevelPageSize int `json:"firstLevelPageSize"`
	HistoryPageSize    int `json:"historyPageSize"`
	MaxPageSize        int `json:"maxPageSize"`
}

// ThreadConfig controls the comment tree walk
type ThreadConfig struct {
	MaxDepth int `json:"maxDepth"`
	// CommentTypeName is the entity type name marking a parent as a comment
	CommentTypeName string `json:"commentTypeName"`
}

// AppConfig holds application-related configuration
type AppConfig struct {
	Name string `json:"name"`
}

// LoadFromEnv loads configuration from the environment.
// It follows a clear precedence:
// 1. Explicit Environment Variables (e.g., set in the shell or by CI)
// 2. Values from the .env file (if it exists)
// 3. Hardcoded defaults (if applicable)
func LoadFromEnv() (*Config, error) {
	// godotenv.Load never overrides variables that are already set
	envPaths := []string{
		".env",
		"../.env",
		"../../.env",
	}

	var loadErr error
	for _, envPath := range envPaths {
		loadErr = godotenv.Load(envPath)
		if loadErr == nil {
			break
		}
	}

	if loadErr != nil {
		fmt.Println("INFO: .env file not found, using environment variables and defaults.")
	}

	return load(os.LookupEnv)
}

// LoadFromMap loads configuration from an in-memory map.
// This is the primary helper for testing configuration logic in isolation
// without manipulating global environment variables.
func LoadFromMap(envMap map[string]string) (*Config, error) {
	return load(func(key string) (string, bool) {
		value, ok := envMap[key]
		return value, ok
	})
}

func load(lookup func(string) (string, bool)) (*Config, error) {
	env := source{lookup: lookup}

	config := &Config{
		Server: ServerConfig{
			Host:      env.get("HOST", "localhost"),
			Port:      env.getInt("SERVER_PORT", 8000),
			BaseRoute: env.get("BASE_ROUTE", "/api"),
			WebDomain: env.get("WEB_DOMAIN", "*"),
			Debug:     env.getBool("DEBUG", false),
		},
		Database: DatabaseConfig{
			Type:        env.get("DB_TYPE", DatabaseTypePostgreSQL),
			AutoMigrate: env.getBool("DB_AUTO_MIGRATE", true),
			SeedDemo:    env.getBool("DB_SEED_DEMO", false),
			Postgres: PostgreSQLConfig{
				Host:            env.get("POSTGRES_HOST", "localhost"),
				Port:            env.getInt("POSTGRES_PORT", 5432),
				Username:        env.get("POSTGRES_USERNAME", "postgres"),
				Password:        env.get("POSTGRES_PASSWORD", ""),
				Database:        env.get("POSTGRES_DATABASE", "comments"),
				Schema:          env.get("POSTGRES_SCHEMA", ""),
				DSN:             env.get("POSTGRES_DSN", ""),
				SSLMode:         env.get("POSTGRES_SSL_MODE", "disable"),
				ConnectTimeout:  env.getInt("POSTGRES_CONNECT_TIMEOUT", 10),
				MaxOpenConns:    env.getInt("POSTGRES_MAX_OPEN_CONNS", 25),
				MaxIdleConns:    env.getInt("POSTGRES_MAX_IDLE_CONNS", 25),
				ConnMaxLifetime: time.Duration(env.getInt("POSTGRES_CONN_MAX_LIFETIME", 300)) * time.Second,
			},
		},
		Pagination: PaginationConfig{
			FirstLevelPageSize: env.getInt("PAGINATION_FIRST_LEVEL_SIZE", 10),
			HistoryPageSize:    env.getInt("PAGINATION_HISTORY_SIZE", 50),
			MaxPageSize:        env.getInt("PAGINATION_MAX_PAGE_SIZE", 1000),
		},
		Thread: ThreadConfig{
			MaxDepth:        env.getInt("THREAD_MAX_DEPTH", 100),
			CommentTypeName: env.get("THREAD_COMMENT_TYPE", "Comment"),
		},
		App: AppConfig{
			Name: env.get("APP_NAME", "comments"),
		},
	}

	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return config, nil
}

// Validate validates the configuration for required fields
func (c *Config) Validate() error {
	var errors []string

	validDbTypes := []string{DatabaseTypePostgreSQL, DatabaseTypeMemory}
	if !contains(validDbTypes, c.Database.Type) {
		errors = append(errors, fmt.Sprintf("DB_TYPE must be one of: %s", strings.Join(validDbTypes, ", ")))
	}

	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		errors = append(errors, "SERVER_PORT must be between 1 and 65535")
	}
	if c.Pagination.FirstLevelPageSize <= 0 {
		errors = append(errors, "PAGINATION_FIRST_LEVEL_SIZE must be positive")
	}
	if c.Pagination.HistoryPageSize <= 0 {
		errors = append(errors, "PAGINATION_HISTORY_SIZE must be positive")
	}
	if c.Pagination.MaxPageSize < c.Pagination.FirstLevelPageSize || c.Pagination.MaxPageSize < c.Pagination.HistoryPageSize {
		errors = append(errors, "PAGINATION_MAX_PAGE_SIZE must not be below the default page sizes")
	}
	if c.Thread.MaxDepth <= 0 {
		errors = append(errors, "THREAD_MAX_DEPTH must be positive")
	}
	if strings.TrimSpace(c.Thread.CommentTypeName) == "" {
		errors = append(errors, "THREAD_COMMENT_TYPE is required")
	}

	if len(errors) > 0 {
		return fmt.Errorf("validation errors: %s", strings.Join(errors, "; "))
	}

	return nil
}

// source reads typed values through a lookup function, falling back to
// defaults for missing or unparsable values
type source struct {
	lookup func(string) (string, bool)
}

func (s source) get(key, defaultValue string) string {
	if value, ok := s.lookup(key); ok && value != "" {
		return value
	}
	return defaultValue
}

func (s source) getInt(key string, defaultValue int) int {
	if value, ok := s.lookup(key); ok && value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}

func (s source) getBool(key string, defaultValue bool) bool {
	if value, ok := s.lookup(key); ok && value != "" {
		if boolValue, err := strconv.ParseBool(value); err == nil {
			return boolValue
		}
	}
	return defaultValue
}

func contains(slice []string, item string) bool {
	for _, s := range slice {
		if s == item {
			return true
		}
	}
	return false
}
