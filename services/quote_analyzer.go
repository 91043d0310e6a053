package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"regexp"
	"strconv"
	"strings"

	"golang.org/x/text/currency"

	"sourcing/models"
)

// Flag names shared by the analyzers.
const (
	FlagAnalysisFailed   = "analysis_failed"
	FlagPriceAboveTarget = "price_above_target"
	FlagMOQAboveTarget   = "moq_above_target"
	FlagMissingUnitPrice = "missing_unit_price"
	FlagMissingMOQ       = "missing_moq"
	FlagMissingLeadTime  = "missing_lead_time"
	FlagLongLeadTime     = "long_lead_time"
)

const FallbackSummary = "Automatic analysis could not be completed for this quote."

type QuoteInput struct {
	RawText     string
	TargetPrice *float64
	TargetMOQ   *int
}

type QuoteResult struct {
	Metrics  models.QuoteMetrics
	Analysis models.QuoteAnalysis
}

// QuoteAnalyzer turns a free-text quote into metrics and a fit score. An
// error means the caller should substitute FallbackResult.
type QuoteAnalyzer interface {
	Analyze(ctx context.Context, in QuoteInput) (QuoteResult, error)
}

// FallbackResult is written when analysis fails so the quote still has a
// well-formed analysis to show.
func FallbackResult() QuoteResult {
	return QuoteResult{
		Metrics: models.QuoteMetrics{},
		Analysis: models.QuoteAnalysis{
			Score:   0,
			Flags:   []string{FlagAnalysisFailed},
			Summary: FallbackSummary,
		},
	}
}

const quoteSystemPrompt = `You are a sourcing analyst reviewing supplier quotes for a hardware buyer.
Extract the commercial terms from the quote and rate how well it fits the buyer's targets.
Respond with a single JSON object and nothing else, using exactly this shape:
{
  "metrics": {
    "unit_price": number or null,
    "moq": integer or null,
    "lead_time_days": integer or null,
    "payment_terms": string or null,
    "currency": ISO 4217 code or null
  },
  "score": integer from 0 to 100,
  "flags": [short snake_case strings describing anomalies, e.g. "price_above_target", "moq_above_target", "long_lead_time", "missing_unit_price"],
  "summary": one sentence for the buyer
}
Convert lead times given in weeks or months to days. Use null for anything the quote does not state.`

func buildQuotePrompt(in QuoteInput) []Message {
	var sb strings.Builder
	sb.WriteString("Supplier quote:\n\"\"\"\n")
	sb.WriteString(strings.TrimSpace(in.RawText))
	sb.WriteString("\n\"\"\"\n\nBuyer targets:\n")
	if in.TargetPrice != nil {
		fmt.Fprintf(&sb, "- target unit price: %s\n", strconv.FormatFloat(*in.TargetPrice, 'f', -1, 64))
	} else {
		sb.WriteString("- target unit price: not specified\n")
	}
	if in.TargetMOQ != nil {
		fmt.Fprintf(&sb, "- target MOQ: %d\n", *in.TargetMOQ)
	} else {
		sb.WriteString("- target MOQ: not specified\n")
	}
	return []Message{
		{Role: RoleSystem, Content: quoteSystemPrompt},
		{Role: RoleUser, Content: sb.String()},
	}
}

// LLMQuoteAnalyzer asks a language model for the metrics and the score. The
// score is the model's own judgement, only clamped to 0..100.
type LLMQuoteAnalyzer struct {
	completer Completer
}

func NewLLMQuoteAnalyzer(completer Completer) *LLMQuoteAnalyzer {
	return &LLMQuoteAnalyzer{completer: completer}
}

func (a *LLMQuoteAnalyzer) Analyze(ctx context.Context, in QuoteInput) (QuoteResult, error) {
	content, err := a.completer.CompleteJSON(ctx, buildQuotePrompt(in))
	if err != nil {
		return QuoteResult{}, err
	}
	return parseQuoteCompletion(content)
}

// flexNumber accepts 12, 12.5, "12", "$12.50", "1,000" or "€12,50". A string
// holding more than one number, such as "85/100", is rejected.
type flexNumber struct {
	value *float64
}

var numberToken = regexp.MustCompile(`-?\d+(?:[.,]\d+)*`)

func (f *flexNumber) UnmarshalJSON(b []byte) error {
	s := strings.TrimSpace(string(b))
	if s == "null" {
		return nil
	}
	if strings.HasPrefix(s, `"`) {
		var str string
		if err := json.Unmarshal(b, &str); err != nil {
			return err
		}
		tokens := numberToken.FindAllString(str, -1)
		switch len(tokens) {
		case 0:
			return nil
		case 1:
		default:
			return fmt.Errorf("ambiguous number: %q", str)
		}
		neg := strings.HasPrefix(tokens[0], "-")
		v, ok := parseDecimal(strings.TrimPrefix(tokens[0], "-"))
		if !ok {
			return fmt.Errorf("not a number: %q", str)
		}
		if neg {
			v = -v
		}
		f.value = &v
		return nil
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return fmt.Errorf("not a number: %q", string(b))
	}
	f.value = &v
	return nil
}

func (f flexNumber) intPtr() *int {
	if f.value == nil {
		return nil
	}
	v := int(math.Round(*f.value))
	return &v
}

type completionPayload struct {
	Metrics *struct {
		UnitPrice    flexNumber `json:"unit_price"`
		MOQ          flexNumber `json:"moq"`
		LeadTimeDays flexNumber `json:"lead_time_days"`
		PaymentTerms *string    `json:"payment_terms"`
		Currency     *string    `json:"currency"`
	} `json:"metrics"`
	Score   *flexNumber `json:"score"`
	Flags   []string    `json:"flags"`
	Summary string      `json:"summary"`
}

var errMalformedCompletion = errors.New("malformed completion")

func parseQuoteCompletion(content string) (QuoteResult, error) {
	var payload completionPayload
	if err := json.Unmarshal([]byte(stripCodeFence(content)), &payload); err != nil {
		return QuoteResult{}, fmt.Errorf("%w: %v", errMalformedCompletion, err)
	}
	if payload.Metrics == nil || payload.Score == nil || payload.Score.value == nil {
		return QuoteResult{}, fmt.Errorf("%w: metrics and score are required", errMalformedCompletion)
	}

	m := payload.Metrics
	result := QuoteResult{
		Metrics: models.QuoteMetrics{
			UnitPrice:    m.UnitPrice.value,
			MOQ:          m.MOQ.intPtr(),
			LeadTimeDays: m.LeadTimeDays.intPtr(),
			PaymentTerms: nonEmpty(m.PaymentTerms),
			Currency:     NormalizeCurrency(m.Currency),
		},
		Analysis: models.QuoteAnalysis{
			Score:   clamp(int(math.Round(*payload.Score.value)), 0, 100),
			Flags:   cleanFlags(payload.Flags),
			Summary: strings.TrimSpace(payload.Summary),
		},
	}
	return result, nil
}

// stripCodeFence removes a ```json ... ``` wrapper some models add even in
// JSON mode.
func stripCodeFence(s string) string {
	s = strings.TrimSpace(s)
	if !strings.HasPrefix(s, "```") {
		return s
	}
	s = strings.TrimPrefix(s, "```")
	s = strings.TrimPrefix(s, "json")
	s = strings.TrimSuffix(strings.TrimSpace(s), "```")
	return strings.TrimSpace(s)
}

func cleanFlags(flags []string) []string {
	out := []string{}
	seen := map[string]bool{}
	for _, f := range flags {
		f = strings.TrimSpace(f)
		if f == "" || seen[f] {
			continue
		}
		seen[f] = true
		out = append(out, f)
	}
	return out
}

func nonEmpty(s *string) *string {
	if s == nil {
		return nil
	}
	v := strings.TrimSpace(*s)
	if v == "" {
		return nil
	}
	return &v
}

var currencySymbols = map[string]string{
	"$":   "USD",
	"us$": "USD",
	"€":   "EUR",
	"£":   "GBP",
	"¥":   "CNY",
	"rmb": "CNY",
	"₹":   "INR",
}

// NormalizeCurrency maps symbols and ISO codes in any case to an upper-case
// ISO 4217 code. Unrecognised values are returned trimmed and unchanged.
func NormalizeCurrency(s *string) *string {
	v := nonEmpty(s)
	if v == nil {
		return nil
	}
	if code, ok := currencySymbols[strings.ToLower(*v)]; ok {
		return &code
	}
	if unit, err := currency.ParseISO(strings.ToUpper(*v)); err == nil {
		code := unit.String()
		return &code
	}
	return v
}
