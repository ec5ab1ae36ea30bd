// Copyright (c) 2024 Telar Social
//
// This software is released under the MIT License.
// https://opensource.org/licenses/MIT

package postgres

import (
	"context"
	"fmt"
	"net/url"
	"strings"

	"github.com/MaksimBoltov/comments/internal/database/migrations"
	"github.com/MaksimBoltov/comments/internal/pkg/log"
	platformconfig "github.com/MaksimBoltov/comments/internal/platform/config"
	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"
	"github.com/pressly/goose/v3"
)

// Client wraps sqlx.DB and provides connection pooling, health checks and migrations
type Client struct {
	db *sqlx.DB
}

// NewClient creates a new PostgreSQL client wrapper
func NewClient(ctx context.Context, config *platformconfig.PostgreSQLConfig) (*Client, error) {
	connStr, err := BuildConnectionString(config)
	if err != nil {
		return nil, err
	}

	db, err := sqlx.ConnectContext(ctx, "postgres", connStr)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to PostgreSQL: %w", err)
	}

	if config.MaxOpenConns > 0 {
		db.SetMaxOpenConns(config.MaxOpenConns)
	}
	if config.MaxIdleConns > 0 {
		db.SetMaxIdleConns(config.MaxIdleConns)
	}
	if config.ConnMaxLifetime > 0 {
		db.SetConnMaxLifetime(config.ConnMaxLifetime)
	}

	return &Client{db: db}, nil
}

// BuildConnectionString returns the DSN when one is configured, otherwise a
// key=value string built from the discrete fields. A schema becomes the
// connection's search_path.
func BuildConnectionString(config *platformconfig.PostgreSQLConfig) (string, error) {
	if config.DSN != "" {
		if config.Schema == "" {
			return config.DSN, nil
		}
		u, err := url.Parse(config.DSN)
		if err != nil {
			return "", fmt.Errorf("invalid POSTGRES_DSN: %w", err)
		}
		q := u.Query()
		q.Set("search_path", config.Schema)
		u.RawQuery = q.Encode()
		return u.String(), nil
	}

	var parts []string

	parts = append(parts, fmt.Sprintf("host=%s", config.Host))
	parts = append(parts, fmt.Sprintf("port=%d", config.Port))
	parts = append(parts, fmt.Sprintf("dbname=%s", config.Database))

	if config.Username != "" {
		parts = append(parts, fmt.Sprintf("user=%s", config.Username))
	}

	if config.Password != "" {
		parts = append(parts, fmt.Sprintf("password=%s", config.Password))
	}

	parts = append(parts, fmt.Sprintf("sslmode=%s", config.SSLMode))

	if config.ConnectTimeout > 0 {
		parts = append(parts, fmt.Sprintf("connect_timeout=%d", config.ConnectTimeout))
	}

	if config.Schema != "" {
		parts = append(parts, fmt.Sprintf("search_path=%s", config.Schema))
	}

	return strings.Join(parts, " "), nil
}

// DB returns the underlying *sqlx.DB connection
func (c *Client) DB() *sqlx.DB {
	return c.db
}

// Ping tests the database connection
func (c *Client) Ping(ctx context.Context) error {
	return c.db.PingContext(ctx)
}

// Close closes the database connection
func (c *Client) Close() error {
	return c.db.Close()
}

// Migrate applies every pending migration embedded in the binary
func (c *Client) Migrate(ctx context.Context) error {
	goose.SetBaseFS(migrations.FS)
	goose.SetLogger(gooseLogger{})

	if err := goose.SetDialect("postgres"); err != nil {
		return fmt.Errorf("failed to set goose dialect: %w", err)
	}

	if err := goose.UpContext(ctx, c.db.DB, "."); err != nil {
		return fmt.Errorf("failed to run migrations: %w", err)
	}

	return nil
}

// MigrationVersion reports the last applied migration
func (c *Client) MigrationVersion(ctx context.Context) (int64, error) {
	goose.SetBaseFS(migrations.FS)
	if err := goose.SetDialect("postgres"); err != nil {
		return 0, fmt.Errorf("failed to set goose dialect: %w", err)
	}
	return goose.GetDBVersionContext(ctx, c.db.DB)
}

// gooseLogger routes migration output through the service logger
type gooseLogger struct{}

func (gooseLogger) Printf(format string, v ...interface{}) {
	log.Info(strings.TrimSuffix(format, "\n"), v...)
}

func (gooseLogger) Fatalf(format string, v ...interface{}) {
	log.Error(strings.TrimSuffix(format, "\n"), v...)
	panic(fmt.Sprintf(format, v...))
}
