package services

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"sourcing/metrics"
	"sourcing/models"
	"sourcing/storage"
)

func manufacturer(id string, description string, capabilities ...string) models.Partner {
	return models.Partner{
		ID:           id,
		Name:         id,
		Type:         models.PartnerManufacturer,
		Description:  description,
		Capabilities: capabilities,
	}
}

type failingDirectory struct{}

func (failingDirectory) ListPartners(context.Context, models.PartnerFilter) ([]models.Partner, error) {
	return nil, errors.New("connection refused")
}

func TestBuildSearchTerms(t *testing.T) {
	tests := []struct {
		name                      string
		title, process, materials string
		want                      []string
	}{
		{"all blank", "", "", "", []string{}},
		{"short title words only", "A Big Cup", "", "", []string{}},
		{"process and materials kept whole", "", " CNC Machining ", "Stainless Steel", []string{"cnc machining", "stainless steel"}},
		{"title tokens longer than three", "Foldable Camp Table", "", "aluminum", []string{"aluminum", "foldable", "camp", "table"}},
		{"duplicates dropped", "Aluminum aluminum Frame", "", "Aluminum", []string{"aluminum", "frame"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, BuildSearchTerms(tt.title, tt.process, tt.materials))
		})
	}
}

func TestMatchPartnersCampTableScenario(t *testing.T) {
	partners := []models.Partner{
		manufacturer("alu", "", "Aluminum Extrusion"),
		manufacturer("textile", "", "Textile Cut & Sew"),
	}
	terms := BuildSearchTerms("Foldable Camp Table", "", "aluminum")

	matched := MatchPartners(terms, partners)
	require.Len(t, matched, 1)
	assert.Equal(t, "alu", matched[0].ID)
}

func TestMatchPartnersEmptyTermsMatchNothing(t *testing.T) {
	partners := []models.Partner{
		manufacturer("a", "we make everything", "anything"),
		manufacturer("b", "", ""),
	}
	assert.Empty(t, MatchPartners(BuildSearchTerms("", "", ""), partners))
	assert.Empty(t, MatchPartners(BuildSearchTerms("Mug Lid Cap", "", ""), partners))
}

func TestMatchPartnersSubstringPredicate(t *testing.T) {
	partners := []models.Partner{
		manufacturer("desc-hit", "Precision CNC MACHINING shop"),
		manufacturer("cap-hit", "", "Injection Molding", "cnc machining centers"),
		manufacturer("miss", "Sheet metal", "Laser Cutting"),
		{ID: "agent", Type: models.PartnerAgent, Description: "cnc machining sourcing agent"},
	}

	matched := MatchPartners([]string{"cnc machining"}, partners)
	ids := make([]string, 0, len(matched))
	for _, p := range matched {
		ids = append(ids, p.ID)
	}
	assert.Equal(t, []string{"desc-hit", "cap-hit"}, ids)
}

func TestMatchPartnersNoStemming(t *testing.T) {
	partners := []models.Partner{manufacturer("a", "", "Molding")}
	assert.Empty(t, MatchPartners([]string{"molded"}, partners))
}

func TestMatcherIsDeterministic(t *testing.T) {
	ctx := context.Background()
	store := storage.NewMemory()
	for _, p := range []models.Partner{
		manufacturer("p1", "Aluminium and aluminum die casting"),
		manufacturer("p2", "", "Plastic injection"),
		manufacturer("p3", "", "ALUMINUM extrusion"),
	} {
		p := p
		require.NoError(t, store.CreatePartner(ctx, &p))
	}
	m := NewMatcher(store, nil, metrics.NewManager())
	data := models.RFQData{Title: "Camp Table", Materials: "aluminum"}

	first := m.Match(ctx, data)
	second := m.Match(ctx, data)
	assert.Equal(t, []string{"p1", "p3"}, first.IDs)
	assert.Equal(t, first.IDs, second.IDs)
}

func TestMatcherExcludesNonManufacturersFromDirectory(t *testing.T) {
	ctx := context.Background()
	store := storage.NewMemory()
	shipper := models.Partner{ID: "s1", Type: models.PartnerShipper, Capabilities: []string{"aluminum freight"}}
	require.NoError(t, store.CreatePartner(ctx, &shipper))

	result := NewMatcher(store, nil, nil).Match(ctx, models.RFQData{Materials: "aluminum"})
	assert.Empty(t, result.IDs)
}

func TestMatcherDirectoryFailureYieldsZeroMatches(t *testing.T) {
	m := NewMatcher(failingDirectory{}, nil, metrics.NewManager())

	result := m.Match(context.Background(), models.RFQData{Title: "Foldable Camp Table", Materials: "aluminum"})
	assert.NotNil(t, result.IDs)
	assert.Empty(t, result.IDs)
	assert.Empty(t, result.Partners)
}
