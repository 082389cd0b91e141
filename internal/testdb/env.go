// Package testdb provides helpers for tests that need an external database
// or cache. Those tests are skipped unless the matching environment variable
// names a reachable server.
package testdb

import (
	"os"
	"testing"
)

// Environment variables that enable integration tests.
const (
	EnvDatabaseURL = "FLASHFLOW_TEST_DATABASE_URL"
	EnvRedisURL    = "FLASHFLOW_TEST_REDIS_URL"
)

// DatabaseURL returns the PostgreSQL URL for integration tests, or "".
func DatabaseURL() string {
	return os.Getenv(EnvDatabaseURL)
}

// RedisURL returns the Redis URL for integration tests, or "".
func RedisURL() string {
	return os.Getenv(EnvRedisURL)
}

// RequireDatabaseURL skips the test when no database is configured.
func RequireDatabaseURL(t *testing.T) string {
	t.Helper()
	return requireEnv(t, EnvDatabaseURL)
}

// RequireRedisURL skips the test when no Redis server is configured.
func RequireRedisURL(t *testing.T) string {
	t.Helper()
	return requireEnv(t, EnvRedisURL)
}

func requireEnv(t *testing.T, name string) string {
	t.Helper()
	value := os.Getenv(name)
	if value == "" {
		if IsCIEnvironment() {
			t.Logf("warning: %s is not set in CI, integration coverage is reduced", name)
		}
		t.Skipf("%s not set, skipping integration test", name)
	}
	return value
}

// IsCIEnvironment reports whether the tests run in CI.
func IsCIEnvironment() bool {
	for _, name := range []string{"CI", "GITHUB_ACTIONS", "GITLAB_CI"} {
		if os.Getenv(name) != "" {
			return true
		}
	}
	return false
}
