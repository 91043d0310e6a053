package services

import (
	"context"
	"strings"
	"unicode/utf8"

	"go.uber.org/zap"

	"sourcing/metrics"
	"sourcing/models"
)

// minTitleTokenLen is the shortest title word used as a search term is
// one rune longer than this.
const minTitleTokenLen = 3

// PartnerDirectory is the read side of the partner store the matcher needs.
type PartnerDirectory interface {
	ListPartners(ctx context.Context, filter models.PartnerFilter) ([]models.Partner, error)
}

// BuildSearchTerms returns the lowercase terms an RFQ is matched on: the
// process and materials values as given, then every title word longer than
// three characters. Blank values are skipped and duplicates dropped, keeping
// first-seen order.
func BuildSearchTerms(title, process, materials string) []string {
	terms := []string{}
	seen := map[string]bool{}
	add := func(term string) {
		term = strings.ToLower(strings.TrimSpace(term))
		if term == "" || seen[term] {
			return
		}
		seen[term] = true
		terms = append(terms, term)
	}

	add(process)
	add(materials)
	for _, token := range strings.Fields(title) {
		if utf8.RuneCountInString(token) > minTitleTokenLen {
			add(token)
		}
	}
	return terms
}

// MatchPartners keeps the manufacturers whose capabilities or description
// contain any term as a case-insensitive substring. Source order is kept.
// An empty term set matches nothing.
func MatchPartners(terms []string, partners []models.Partner) []models.Partner {
	matched := []models.Partner{}
	if len(terms) == 0 {
		return matched
	}
	for _, p := range partners {
		if p.Type != models.PartnerManufacturer {
			continue
		}
		if partnerMatches(terms, p) {
			matched = append(matched, p)
		}
	}
	return matched
}

func partnerMatches(terms []string, p models.Partner) bool {
	description := strings.ToLower(p.Description)
	capabilities := make([]string, len(p.Capabilities))
	for i, c := range p.Capabilities {
		capabilities[i] = strings.ToLower(c)
	}

	for _, term := range terms {
		if strings.Contains(description, term) {
			return true
		}
		for _, c := range capabilities {
			if strings.Contains(c, term) {
				return true
			}
		}
	}
	return false
}

type MatchResult struct {
	Terms    []string
	Partners []models.Partner
	IDs      []string
}

// Matcher runs the substring match against the live partner directory.
type Matcher struct {
	directory PartnerDirectory
	logger    *zap.Logger
	metrics   *metrics.Manager
}

func NewMatcher(directory PartnerDirectory, logger *zap.Logger, m *metrics.Manager) *Matcher {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Matcher{directory: directory, logger: logger, metrics: m}
}

// Match never fails. A directory error is logged and yields zero matches so
// the caller can still store the RFQ.
func (m *Matcher) Match(ctx context.Context, data models.RFQData) MatchResult {
	result := MatchResult{
		Terms:    BuildSearchTerms(data.Title, data.Process, data.Materials),
		Partners: []models.Partner{},
		IDs:      []string{},
	}
	if len(result.Terms) == 0 {
		m.metrics.RecordMatchCount(0)
		return result
	}

	partners, err := m.directory.ListPartners(ctx, models.PartnerFilter{Type: models.PartnerManufacturer})
	if err != nil {
		m.logger.Warn("partner directory unavailable, continuing without matches",
			zap.String("title", data.Title), zap.Error(err))
		m.metrics.RecordDirectoryError()
		m.metrics.RecordMatchCount(0)
		return result
	}

	result.Partners = MatchPartners(result.Terms, partners)
	for _, p := range result.Partners {
		result.IDs = append(result.IDs, p.ID)
	}
	m.metrics.RecordMatchCount(len(result.IDs))
	return result
}
