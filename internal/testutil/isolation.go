package testutil

import (
	"context"
	"fmt"
	"os"
	"regexp"
	"strings"
	"testing"

	"github.com/MaksimBoltov/comments/internal/database/postgres"
	platformconfig "github.com/MaksimBoltov/comments/internal/platform/config"
	"github.com/gofrs/uuid"
	"github.com/stretchr/testify/require"
)

var unsafeSchemaChars = regexp.MustCompile(`[^a-z0-9_]+`)

// ShouldRunDatabaseTests reports whether PostgreSQL tests are enabled
func ShouldRunDatabaseTests() bool {
	return os.Getenv("RUN_DB_TESTS") == "1" && os.Getenv("POSTGRES_DSN") != ""
}

// SanitizeTestName turns a test name into a valid schema name fragment
func SanitizeTestName(name string) string {
	sanitized := unsafeSchemaChars.ReplaceAllString(strings.ToLower(name), "_")
	if len(sanitized) > 40 {
		sanitized = sanitized[:40]
	}
	return strings.Trim(sanitized, "_")
}

// NewIsolatedPostgres returns a client bound to a freshly migrated schema
// that is dropped when the test ends. The test is skipped unless
// RUN_DB_TESTS=1 and POSTGRES_DSN are set.
func NewIsolatedPostgres(t *testing.T) *postgres.Client {
	t.Helper()
	if !ShouldRunDatabaseTests() {
		t.Skip("RUN_DB_TESTS not set, skipping database test")
	}

	ctx := context.Background()
	dsn := os.Getenv("POSTGRES_DSN")

	admin, err := postgres.NewClient(ctx, &platformconfig.PostgreSQLConfig{DSN: dsn})
	require.NoError(t, err, "Failed to create postgres client")

	suffix := strings.ReplaceAll(uuid.Must(uuid.NewV4()).String(), "-", "")[:12]
	schema := fmt.Sprintf("t_%s_%s", SanitizeTestName(t.Name()), suffix)
	_, err = admin.DB().ExecContext(ctx, fmt.Sprintf(`CREATE SCHEMA %q`, schema))
	require.NoError(t, err, "Failed to create schema")

	client, err := postgres.NewClient(ctx, &platformconfig.PostgreSQLConfig{DSN: dsn, Schema: schema})
	require.NoError(t, err, "Failed to connect to isolated schema")
	require.NoError(t, client.Migrate(ctx), "Failed to migrate isolated schema")

	t.Cleanup(func() {
		client.Close()
		if _, err := admin.DB().ExecContext(context.Background(), fmt.Sprintf(`DROP SCHEMA %q CASCADE`, schema)); err != nil {
			t.Logf("failed to drop schema %s: %v", schema, err)
		}
		admin.Close()
	})

	return client
}
