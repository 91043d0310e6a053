package services

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"sourcing/models"
)

func TestReadinessWeightsSumToHundred(t *testing.T) {
	total := 0
	for _, f := range readinessFields {
		total += f.weight
	}
	assert.Equal(t, 100, total)
}

func TestAssessEmptyProject(t *testing.T) {
	r := Assess(&models.Project{}, 60)
	assert.Equal(t, 0, r.Percentage)
	assert.False(t, r.Ready)
	assert.Len(t, r.Missing, len(readinessFields))

	assert.Equal(t, r, Assess(nil, 60))
}

func TestAssessCompleteProject(t *testing.T) {
	price, moq, lead := 10.0, 500, 45
	p := &models.Project{
		Name:               "Foldable Camp Table",
		Description:        "Lightweight folding table",
		Process:            "extrusion",
		Materials:          "aluminum",
		Dimensions:         "80x60x70 cm",
		TargetPrice:        &price,
		TargetMOQ:          &moq,
		TargetLeadTimeDays: &lead,
		Certifications:     "BIFMA",
	}
	r := Assess(p, 100)
	assert.Equal(t, 100, r.Percentage)
	assert.True(t, r.Ready)
	assert.Empty(t, r.Missing)
	assert.NotNil(t, r.Missing)
}

func TestAssessPartialProject(t *testing.T) {
	zero := 0
	p := &models.Project{
		Name:      "Table",
		Process:   "extrusion",
		Materials: "  ",
		TargetMOQ: &zero,
	}
	r := Assess(p, 25)
	assert.Equal(t, 25, r.Percentage)
	assert.True(t, r.Ready)

	fields := map[string]bool{}
	for _, m := range r.Missing {
		fields[m.Field] = true
	}
	assert.True(t, fields["materials"])
	assert.True(t, fields["target_moq"])
	assert.False(t, fields["name"])
}
