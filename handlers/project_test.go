package handlers

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"sourcing/models"
)

func TestProjectCRUD(t *testing.T) {
	env := newTestEnv(t)

	w := env.do(t, http.MethodPost, "/api/projects", env.buyerToken, models.ProjectRequest{
		Name: "Foldable Camp Table", Materials: "aluminum", TargetPrice: floatPtr(10),
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	project := decode[models.Project](t, w)
	assert.NotEmpty(t, project.ID)
	assert.Equal(t, env.buyer.ID, project.OwnerID)

	w = env.do(t, http.MethodPut, "/api/projects/"+project.ID, env.buyerToken, models.ProjectRequest{
		Name: "Foldable Camp Table", Materials: "aluminum", Dimensions: "80x60x70 cm",
	})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Equal(t, "80x60x70 cm", decode[models.Project](t, w).Dimensions)

	w = env.do(t, http.MethodGet, "/api/projects/"+project.ID, env.buyerToken, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "80x60x70 cm", decode[models.Project](t, w).Dimensions)

	w = env.do(t, http.MethodGet, "/api/projects", env.buyerToken, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Len(t, decode[[]models.Project](t, w), 1)
}

func TestProjectValidationAndAccess(t *testing.T) {
	env := newTestEnv(t)
	project := env.seedProject(t, env.buyer)
	env.seedProject(t, env.admin)

	w := env.do(t, http.MethodPost, "/api/projects", env.buyerToken, models.ProjectRequest{Name: "  "})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	_, otherToken := seedUser(t, env.store, "other@example.com", false)
	w = env.do(t, http.MethodGet, "/api/projects/"+project.ID, otherToken, nil)
	assert.Equal(t, http.StatusForbidden, w.Code)
	w = env.do(t, http.MethodPut, "/api/projects/"+project.ID, otherToken, models.ProjectRequest{Name: "Mine now"})
	assert.Equal(t, http.StatusForbidden, w.Code)
	w = env.do(t, http.MethodGet, "/api/projects/missing", env.buyerToken, nil)
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = env.do(t, http.MethodGet, "/api/projects", otherToken, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Empty(t, decode[[]models.Project](t, w))

	w = env.do(t, http.MethodGet, "/api/projects", env.adminToken, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Len(t, decode[[]models.Project](t, w), 2)
	w = env.do(t, http.MethodGet, "/api/projects/"+project.ID, env.adminToken, nil)
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestProjectReadiness(t *testing.T) {
	env := newTestEnv(t)
	project := env.seedProject(t, env.buyer, func(p *models.Project) {
		p.Description = "Lightweight table for camping"
		p.Process = "extrusion"
		p.Materials = "aluminum"
	})

	w := env.do(t, http.MethodGet, "/api/projects/"+project.ID+"/readiness", env.buyerToken, nil)
	require.Equal(t, http.StatusOK, w.Code)
	r := decode[models.Readiness](t, w)
	// name, description, process and materials are filled in
	assert.Equal(t, 50, r.Percentage)
	assert.False(t, r.Ready)

	fields := make([]string, 0, len(r.Missing))
	for _, m := range r.Missing {
		fields = append(fields, m.Field)
	}
	assert.Equal(t, []string{"dimensions", "target_price", "target_moq", "target_lead_time_days", "certifications"}, fields)
}
