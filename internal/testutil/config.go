package testutil

import (
	"testing"

	platformconfig "github.com/MaksimBoltov/comments/internal/platform/config"
	"github.com/stretchr/testify/require"
)

// LoadTestConfig builds an in-memory configuration; overrides use the same
// keys as the environment
func LoadTestConfig(t *testing.T, overrides map[string]string) *platformconfig.Config {
	t.Helper()
	env := map[string]string{
		"DB_TYPE":    platformconfig.DatabaseTypeMemory,
		"BASE_ROUTE": "/api",
	}
	for key, value := range overrides {
		env[key] = value
	}

	cfg, err := platformconfig.LoadFromMap(env)
	require.NoError(t, err, "Failed to load test config")
	return cfg
}
