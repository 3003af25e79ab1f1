package testdb

import (
	"os"

	"github.com/phrazzld/natours-api/internal/redact"
)

// DatabaseURLEnvVars are consulted in order for the test database URL.
var DatabaseURLEnvVars = []string{"DATABASE_URL", "NATOURS_TEST_DB_URL", "NATOURS_DATABASE_URL"}

// GetTestDatabaseURL returns the first configured test database URL, or ""
// when none is set.
func GetTestDatabaseURL() string {
	for _, name := range DatabaseURLEnvVars {
		if v := os.Getenv(name); v != "" {
			return v
		}
	}
	return ""
}

// IsIntegrationTestEnvironment reports whether a test database is
// configured.
func IsIntegrationTestEnvironment() bool {
	return GetTestDatabaseURL() != ""
}

// MaskDatabaseURL replaces the password of a database URL for logging.
func MaskDatabaseURL(dbURL string) string {
	return redact.URL(dbURL)
}
