package directory_test

import (
	"testing"

	"github.com/stretchr/testify/require"
)

// TestLivezEndpoint verifies the liveness probe answers without authentication.
func TestLivezEndpoint(t *testing.T) {
	client := setupDirectoryServer(t)

	health, err := client.GetLiveness(t.Context())
	assertHealthy(t, health, err)
	require.NotEmpty(t, health.Version)
}

// TestReadyzEndpoint verifies the readiness probe reports a healthy database.
func TestReadyzEndpoint(t *testing.T) {
	client := setupDirectoryServer(t)

	health, err := client.GetReadiness(t.Context())
	assertHealthy(t, health, err)

	require.NotNil(t, health.Checks)
	require.Equal(t, "ok", health.Checks.Database)
}
