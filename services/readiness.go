package services

import (
	"errors"
	"strings"

	"sourcing/models"
)

// ErrNotReady is returned when a project's spec is below the RFQ threshold.
var ErrNotReady = errors.New("project specification is not complete enough to submit an RFQ")

type readinessField struct {
	field   string
	label   string
	weight  int
	present func(p *models.Project) bool
}

func hasText(s string) bool { return strings.TrimSpace(s) != "" }

// Weights sum to 100.
var readinessFields = []readinessField{
	{"name", "Product name", 10, func(p *models.Project) bool { return hasText(p.Name) }},
	{"description", "Product description", 10, func(p *models.Project) bool { return hasText(p.Description) }},
	{"process", "Manufacturing process", 15, func(p *models.Project) bool { return hasText(p.Process) }},
	{"materials", "Materials", 15, func(p *models.Project) bool { return hasText(p.Materials) }},
	{"dimensions", "Product dimensions", 15, func(p *models.Project) bool { return hasText(p.Dimensions) }},
	{"target_price", "Target unit price", 15, func(p *models.Project) bool { return p.TargetPrice != nil && *p.TargetPrice > 0 }},
	{"target_moq", "Target MOQ", 10, func(p *models.Project) bool { return p.TargetMOQ != nil && *p.TargetMOQ > 0 }},
	{"target_lead_time_days", "Target lead time", 5, func(p *models.Project) bool {
		return p.TargetLeadTimeDays != nil && *p.TargetLeadTimeDays > 0
	}},
	{"certifications", "Required certifications", 5, func(p *models.Project) bool { return hasText(p.Certifications) }},
}

// Assess scores how complete a project's spec is. Ready is true when the
// percentage reaches threshold.
func Assess(p *models.Project, threshold int) models.Readiness {
	r := models.Readiness{Missing: []models.MissingField{}}
	if p == nil {
		p = &models.Project{}
	}

	total := 0
	for _, f := range readinessFields {
		if f.present(p) {
			total += f.weight
			continue
		}
		r.Missing = append(r.Missing, models.MissingField{Field: f.field, Label: f.label, Weight: f.weight})
	}

	r.Percentage = clamp(total, 0, 100)
	r.Ready = r.Percentage >= threshold
	return r
}

func clamp(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
