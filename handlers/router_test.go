package handlers

import (
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"sourcing/config"
	"sourcing/models"
)

func TestHealth(t *testing.T) {
	env := newTestEnv(t)
	w := env.do(t, http.MethodGet, "/api/health", "", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "ok", decode[map[string]interface{}](t, w)["status"])
}

func TestMetricsEndpoint(t *testing.T) {
	env := newTestEnv(t)
	env.do(t, http.MethodGet, "/api/health", "", nil)

	w := env.do(t, http.MethodGet, "/metrics", "", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "sourcing_rfq_submissions_total")
	assert.Contains(t, w.Body.String(), "sourcing_http_requests_total")
}

func TestSwaggerDocListsRoutes(t *testing.T) {
	env := newTestEnv(t)
	w := env.do(t, http.MethodGet, "/swagger/doc.json", "", nil)
	require.Equal(t, http.StatusOK, w.Code)

	doc := decode[map[string]interface{}](t, w)
	paths, ok := doc["paths"].(map[string]interface{})
	require.True(t, ok)
	assert.Contains(t, paths, "/api/rfqs")
	assert.Contains(t, paths, "/api/responses/{id}/analyze")
}

func TestCORSPreflight(t *testing.T) {
	env := newTestEnv(t, withConfig(func(c *config.Config) { c.CORSOrigins = "https://app.example" }))

	req := httptest.NewRequest(http.MethodOptions, "/api/rfqs", nil)
	req.Header.Set("Origin", "https://app.example")
	req.Header.Set("Access-Control-Request-Method", http.MethodPost)
	w := httptest.NewRecorder()
	env.router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusNoContent, w.Code)
	assert.Equal(t, "https://app.example", w.Header().Get("Access-Control-Allow-Origin"))
}

func TestNotificationsReadFlow(t *testing.T) {
	env := newTestEnv(t)
	env.seedPartner(t, "alu", models.PartnerManufacturer, "Aluminum Extrusion")
	project := env.seedProject(t, env.buyer)
	for i := 0; i < 2; i++ {
		submitRFQ(t, env, env.buyerToken, project.ID, models.RFQData{Title: "Foldable Camp Table", Materials: "aluminum"})
	}

	w := env.do(t, http.MethodGet, "/api/notifications", env.buyerToken, nil)
	require.Equal(t, http.StatusOK, w.Code)
	notes := decode[[]models.Notification](t, w)
	require.Len(t, notes, 2)
	assert.Equal(t, models.NotificationUnread, notes[0].Status)

	w = env.do(t, http.MethodPut, fmt.Sprintf("/api/notifications/%d/read", notes[0].ID), env.buyerToken, nil)
	require.Equal(t, http.StatusOK, w.Code)

	// someone else's notification is not found
	w = env.do(t, http.MethodPut, fmt.Sprintf("/api/notifications/%d/read", notes[1].ID), env.adminToken, nil)
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = env.do(t, http.MethodPut, "/api/notifications/read-all", env.buyerToken, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.EqualValues(t, 1, decode[map[string]interface{}](t, w)["updated"])

	w = env.do(t, http.MethodGet, "/api/notifications", env.buyerToken, nil)
	for _, n := range decode[[]models.Notification](t, w) {
		assert.Equal(t, models.NotificationRead, n.Status)
	}
}
