package integration_test

import (
	"os"
	"sync"
	"testing"

	"storefront_backend/test/helpers"
)

var (
	globalTestServer *helpers.TestServer
	serverOnce       sync.Once
)

// GetTestServer returns the shared test server. The whole suite skips
// unless DATABASE_URL points at a disposable test database.
func GetTestServer(t *testing.T) *helpers.TestServer {
	t.Helper()

	if os.Getenv("DATABASE_URL") == "" {
		t.Skip("DATABASE_URL is not set, skipping integration tests")
	}

	serverOnce.Do(func() {
		if os.Getenv("JWT_SECRET") == "" {
			os.Setenv("JWT_SECRET", "integration_test_secret")
		}
		globalTestServer = helpers.NewTestServer(t)
	})
	return globalTestServer
}
