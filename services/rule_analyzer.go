package services

import (
	"context"
	"fmt"
	"math"
	"regexp"
	"strconv"
	"strings"

	"sourcing/models"
)

var (
	// "$12/unit", "12.50 USD per piece", "EUR 3 each", "$1,250.50 each"
	unitPricePattern = regexp.MustCompile(`(?i)(us\$|\$|€|£|¥|usd|eur|gbp|cny|rmb)?\s*(\d{1,3}(?:,\d{3})+(?:\.\d+)?|\d+(?:[.,]\d+)?)\s*(usd|eur|gbp|cny|rmb)?\s*(/\s*|per\s+|a\s+)?(?:unit|pc|pcs|piece|each|ea)\b`)
	// "unit price: $12.5"
	labelledPricePattern = regexp.MustCompile(`(?i)(?:unit\s+price|price)\s*(?:is|of|:)?\s*(us\$|\$|€|£|¥|usd|eur|gbp|cny|rmb)?\s*(\d{1,3}(?:,\d{3})+(?:\.\d+)?|\d+(?:[.,]\d+)?)`)
	moqPattern           = regexp.MustCompile(`(?i)(?:moq|minimum\s+order(?:\s+quantity)?)\s*(?:is|of|:)?\s*(\d[\d,]*)`)
	moqTrailingPattern   = regexp.MustCompile(`(?i)(\d[\d,]*)\s*(?:units?|pcs|pieces)?\s+moq\b`)
	leadTimePattern      = regexp.MustCompile(`(?i)(\d+)(?:\s*(?:-|to)\s*(\d+))?[\s-]*(day|week|month)s?\s*(?:lead|production|turnaround|delivery)`)
	leadTimeLabelPattern = regexp.MustCompile(`(?i)lead\s*time\s*(?:is|of|:)?\s*(\d+)(?:\s*(?:-|to)\s*(\d+))?\s*(day|week|month)s?`)
	depositPattern       = regexp.MustCompile(`(?i)(\d{1,3})\s*%\s*(deposit|upfront|advance|down\s*payment)`)
	netTermsPattern      = regexp.MustCompile(`(?i)\bnet\s*(\d{1,3})\b`)
	instrumentPattern    = regexp.MustCompile(`(?i)\b(t/t|l/c|paypal|wire transfer)\b`)
	thousandsPattern     = regexp.MustCompile(`^\d{1,3}(?:,\d{3})+(?:\.\d+)?$`)
)

const longLeadTimeDays = 60

// RuleQuoteAnalyzer extracts metrics with regular expressions and scores the
// quote with a fixed formula. It needs no network and always gives the same
// answer for the same input.
type RuleQuoteAnalyzer struct{}

func NewRuleQuoteAnalyzer() *RuleQuoteAnalyzer {
	return &RuleQuoteAnalyzer{}
}

func (RuleQuoteAnalyzer) Analyze(_ context.Context, in QuoteInput) (QuoteResult, error) {
	text := in.RawText
	metrics := models.QuoteMetrics{
		PaymentTerms: extractPaymentTerms(text),
	}
	if price, cur, ok := extractUnitPrice(text); ok {
		metrics.UnitPrice = &price
		metrics.Currency = NormalizeCurrency(&cur)
	}
	if moq, ok := extractMOQ(text); ok {
		metrics.MOQ = &moq
	}
	if days, ok := extractLeadTime(text); ok {
		metrics.LeadTimeDays = &days
	}

	score := 100
	flags := []string{}
	var notes []string

	if metrics.UnitPrice == nil {
		score -= 25
		flags = append(flags, FlagMissingUnitPrice)
	} else if in.TargetPrice != nil && *in.TargetPrice > 0 && *metrics.UnitPrice > *in.TargetPrice {
		over := (*metrics.UnitPrice - *in.TargetPrice) / *in.TargetPrice * 100
		score -= int(math.Min(40, math.Round(over)))
		flags = append(flags, FlagPriceAboveTarget)
		notes = append(notes, fmt.Sprintf("unit price is %.0f%% above target", over))
	} else {
		notes = append(notes, "unit price is within target")
	}

	if metrics.MOQ == nil {
		score -= 10
		flags = append(flags, FlagMissingMOQ)
	} else if in.TargetMOQ != nil && *in.TargetMOQ > 0 && *metrics.MOQ > *in.TargetMOQ {
		score -= 15
		flags = append(flags, FlagMOQAboveTarget)
		notes = append(notes, fmt.Sprintf("MOQ %d exceeds the target of %d", *metrics.MOQ, *in.TargetMOQ))
	}

	if metrics.LeadTimeDays == nil {
		score -= 10
		flags = append(flags, FlagMissingLeadTime)
	} else if *metrics.LeadTimeDays > longLeadTimeDays {
		score -= 10
		flags = append(flags, FlagLongLeadTime)
		notes = append(notes, fmt.Sprintf("lead time of %d days is long", *metrics.LeadTimeDays))
	}

	return QuoteResult{
		Metrics: metrics,
		Analysis: models.QuoteAnalysis{
			Score:   clamp(score, 0, 100),
			Flags:   flags,
			Summary: ruleSummary(metrics, notes),
		},
	}, nil
}

func ruleSummary(m models.QuoteMetrics, notes []string) string {
	if m.UnitPrice == nil && m.MOQ == nil && m.LeadTimeDays == nil {
		return "The quote does not state a unit price, MOQ or lead time."
	}
	var parts []string
	if m.UnitPrice != nil {
		cur := ""
		if m.Currency != nil {
			cur = " " + *m.Currency
		}
		parts = append(parts, fmt.Sprintf("%s%s per unit", strconv.FormatFloat(*m.UnitPrice, 'f', -1, 64), cur))
	}
	if m.MOQ != nil {
		parts = append(parts, fmt.Sprintf("MOQ %d", *m.MOQ))
	}
	if m.LeadTimeDays != nil {
		parts = append(parts, fmt.Sprintf("%d days lead time", *m.LeadTimeDays))
	}
	summary := "Quote offers " + strings.Join(parts, ", ")
	if len(notes) > 0 {
		summary += "; " + strings.Join(notes, ", ")
	}
	return summary + "."
}

// parseDecimal reads "1,250.50" with a thousands separator and "12,50"
// with a decimal comma.
func parseDecimal(s string) (float64, bool) {
	if thousandsPattern.MatchString(s) {
		s = strings.ReplaceAll(s, ",", "")
	} else {
		s = strings.ReplaceAll(s, ",", ".")
	}
	v, err := strconv.ParseFloat(s, 64)
	return v, err == nil
}

func parseCount(s string) (int, bool) {
	v, err := strconv.Atoi(strings.ReplaceAll(s, ",", ""))
	return v, err == nil
}

func extractUnitPrice(text string) (float64, string, bool) {
	// "500 pcs" is a quantity, not a price: require a currency or "/", "per".
	for _, m := range unitPricePattern.FindAllStringSubmatch(text, -1) {
		cur := m[1]
		if cur == "" {
			cur = m[3]
		}
		if cur == "" && strings.TrimSpace(m[4]) == "" {
			continue
		}
		if v, ok := parseDecimal(m[2]); ok {
			return v, cur, true
		}
	}
	if m := labelledPricePattern.FindStringSubmatch(text); m != nil {
		if v, ok := parseDecimal(m[2]); ok {
			return v, m[1], true
		}
	}
	return 0, "", false
}

func extractMOQ(text string) (int, bool) {
	for _, re := range []*regexp.Regexp{moqPattern, moqTrailingPattern} {
		if m := re.FindStringSubmatch(text); m != nil {
			if v, ok := parseCount(m[1]); ok {
				return v, true
			}
		}
	}
	return 0, false
}

// extractLeadTime returns days, taking the upper bound of a range.
func extractLeadTime(text string) (int, bool) {
	for _, re := range []*regexp.Regexp{leadTimePattern, leadTimeLabelPattern} {
		m := re.FindStringSubmatch(text)
		if m == nil {
			continue
		}
		n, err := strconv.Atoi(m[1])
		if err != nil {
			continue
		}
		if m[2] != "" {
			if upper, err := strconv.Atoi(m[2]); err == nil && upper > n {
				n = upper
			}
		}
		switch strings.ToLower(m[3]) {
		case "week":
			n *= 7
		case "month":
			n *= 30
		}
		return n, true
	}
	return 0, false
}

func extractPaymentTerms(text string) *string {
	var terms []string
	if m := depositPattern.FindStringSubmatch(text); m != nil {
		terms = append(terms, m[1]+"% "+strings.ToLower(m[2]))
	}
	if m := netTermsPattern.FindStringSubmatch(text); m != nil {
		terms = append(terms, "net "+m[1])
	}
	if m := instrumentPattern.FindStringSubmatch(text); m != nil {
		terms = append(terms, strings.ToUpper(m[1]))
	}
	if len(terms) == 0 {
		return nil
	}
	joined := strings.Join(terms, ", ")
	return &joined
}
