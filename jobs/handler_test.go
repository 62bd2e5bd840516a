package jobs

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/require"
)

func TestQueueHealthRouteIsMounted(t *testing.T) {
	h := NewHandler(nil, slog.Default())
	r := chi.NewRouter()
	r.Route("/api/v1", func(r chi.Router) {
		h.MountRoutes(r)
	})

	req := httptest.NewRequest(http.MethodGet, "/api/v1/jobs/health", nil)
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)

	var health QueueHealth
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &health))
	require.Equal(t, QueueDefault, health.Queue)
	require.Zero(t, health.Pending)
}
