package models

import (
	"encoding/json"
	"time"
)

// QuoteMetrics are the structured fields pulled out of a free-text quote.
// Every field is nullable because suppliers rarely state all of them.
type QuoteMetrics struct {
	UnitPrice    *float64 `json:"unit_price"`
	MOQ          *int     `json:"moq"`
	LeadTimeDays *int     `json:"lead_time_days"`
	PaymentTerms *string  `json:"payment_terms"`
	Currency     *string  `json:"currency"`
}

// QuoteAnalysis is the buyer-facing quality signal for a quote.
type QuoteAnalysis struct {
	Score   int      `json:"score" example:"72"`
	Flags   []string `json:"flags" example:"price_above_target"`
	Summary string   `json:"summary" example:"Price is 20% above target with a standard lead time."`
}

// RFQResponse is one supplier reply to an RFQ. ExtractedMetrics and AIAnalysis
// are written together by the normalizer, never one without the other.
type RFQResponse struct {
	ID               string          `json:"id"`
	SubmissionID     string          `json:"submission_id"`
	PartnerID        string          `json:"partner_id,omitempty"`
	RawText          string          `json:"raw_text"`
	PricingData      json.RawMessage `json:"pricing_data,omitempty" swaggertype:"object"`
	ExtractedMetrics *QuoteMetrics   `json:"extracted_metrics,omitempty"`
	AIAnalysis       *QuoteAnalysis  `json:"ai_analysis,omitempty"`
	AnalyzedAt       *time.Time      `json:"analyzed_at,omitempty"`
	CreatedAt        time.Time       `json:"created_at" example:"2024-01-15T10:30:00Z"`
}

type QuoteSubmitRequest struct {
	PartnerID   string          `json:"partner_id"`
	RawText     string          `json:"raw_text" example:"We can do $12/unit, MOQ 500, 30 day lead time, 30% deposit"`
	PricingData json.RawMessage `json:"pricing_data,omitempty" swaggertype:"object"`
}

// QuoteAnalyzeRequest lets the caller override the targets stored on the RFQ.
type QuoteAnalyzeRequest struct {
	TargetPrice *float64 `json:"target_price,omitempty" example:"10"`
	TargetMOQ   *int     `json:"target_moq,omitempty" example:"500"`
}

type QuoteAnalyzeResponse struct {
	ResponseID       string        `json:"response_id"`
	ExtractedMetrics QuoteMetrics  `json:"extracted_metrics"`
	AIAnalysis       QuoteAnalysis `json:"ai_analysis"`
}
