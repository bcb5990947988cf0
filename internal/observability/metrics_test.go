package observability

import (
	"io"
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/require"
)

func TestMetricsHandlerExposesPortalCollectors(t *testing.T) {
	RegisterMetrics()
	RegisterMetrics()

	SnapshotLoads().WithLabelValues("hit").Inc()
	AuthAttempts().WithLabelValues("teacher", "success").Inc()

	app := fiber.New()
	app.Get("/metrics", MetricsHandler())

	resp, err := app.Test(httptest.NewRequest("GET", "/metrics", nil), -1)
	require.NoError(t, err)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)

	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	require.Contains(t, string(body), `portal_snapshot_loads_total{outcome="hit"}`)
	require.Contains(t, string(body), `portal_auth_attempts_total{outcome="success",role="teacher"}`)
}
