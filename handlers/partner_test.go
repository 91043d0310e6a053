package handlers

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"sourcing/models"
)

func TestPartnerCRUD(t *testing.T) {
	env := newTestEnv(t)

	w := env.do(t, http.MethodPost, "/api/partners", env.adminToken, models.Partner{
		Name:         "  Ningbo Alu Works ",
		Type:         models.PartnerManufacturer,
		Capabilities: []string{"Aluminum Extrusion", "  ", " Anodizing "},
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	created := decode[models.Partner](t, w)
	assert.NotEmpty(t, created.ID)
	assert.Equal(t, "Ningbo Alu Works", created.Name)
	assert.Equal(t, []string{"Aluminum Extrusion", "Anodizing"}, created.Capabilities)

	w = env.do(t, http.MethodGet, "/api/partners/"+created.ID, env.buyerToken, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, created.ID, decode[models.Partner](t, w).ID)

	created.Country = "CN"
	w = env.do(t, http.MethodPut, "/api/partners/"+created.ID, env.adminToken, created)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Equal(t, "CN", decode[models.Partner](t, w).Country)

	w = env.do(t, http.MethodDelete, "/api/partners/"+created.ID, env.adminToken, nil)
	require.Equal(t, http.StatusOK, w.Code)

	w = env.do(t, http.MethodGet, "/api/partners/"+created.ID, env.buyerToken, nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
	w = env.do(t, http.MethodDelete, "/api/partners/"+created.ID, env.adminToken, nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestPartnerValidation(t *testing.T) {
	env := newTestEnv(t)

	tests := []struct {
		name string
		body interface{}
	}{
		{"unknown type", models.Partner{Name: "X", Type: "broker"}},
		{"missing name", models.Partner{Type: models.PartnerAgent}},
		{"blank name", models.Partner{Name: "   ", Type: models.PartnerAgent}},
		{"missing type", models.Partner{Name: "X"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := env.do(t, http.MethodPost, "/api/partners", env.adminToken, tt.body)
			assert.Equal(t, http.StatusBadRequest, w.Code)
		})
	}
}

func TestUpdatePartnerRejectsBlankName(t *testing.T) {
	env := newTestEnv(t)
	env.seedPartner(t, "alu", models.PartnerManufacturer)

	w := env.do(t, http.MethodPut, "/api/partners/alu", env.adminToken, models.Partner{Name: " \t ", Type: models.PartnerManufacturer})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = env.do(t, http.MethodGet, "/api/partners/alu", env.buyerToken, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.NotEmpty(t, decode[models.Partner](t, w).Name)
}

func TestPartnerWritesRequireAdmin(t *testing.T) {
	env := newTestEnv(t)
	env.seedPartner(t, "alu", models.PartnerManufacturer)

	w := env.do(t, http.MethodPost, "/api/partners", env.buyerToken, models.Partner{Name: "X", Type: models.PartnerAgent})
	assert.Equal(t, http.StatusForbidden, w.Code)
	w = env.do(t, http.MethodDelete, "/api/partners/alu", env.buyerToken, nil)
	assert.Equal(t, http.StatusForbidden, w.Code)
}

func TestListPartnersByType(t *testing.T) {
	env := newTestEnv(t)
	env.seedPartner(t, "alu", models.PartnerManufacturer, "Aluminum Extrusion")
	env.seedPartner(t, "ship", models.PartnerShipper, "Freight")
	env.seedPartner(t, "cnc", models.PartnerManufacturer, "CNC Machining")

	w := env.do(t, http.MethodGet, "/api/partners", env.buyerToken, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Len(t, decode[[]models.Partner](t, w), 3)

	w = env.do(t, http.MethodGet, "/api/partners?type=manufacturer", env.buyerToken, nil)
	require.Equal(t, http.StatusOK, w.Code)
	partners := decode[[]models.Partner](t, w)
	require.Len(t, partners, 2)
	assert.Equal(t, "alu", partners[0].ID)
	assert.Equal(t, "cnc", partners[1].ID)

	w = env.do(t, http.MethodGet, "/api/partners?type=broker", env.buyerToken, nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}
