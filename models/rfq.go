package models

import "time"

type RFQStatus string

const (
	RFQSubmitted RFQStatus = "submitted"
	RFQInReview  RFQStatus = "in_review"
	RFQCompleted RFQStatus = "completed"
)

func (s RFQStatus) Valid() bool {
	switch s {
	case RFQSubmitted, RFQInReview, RFQCompleted:
		return true
	}
	return false
}

// RFQData is the free-form payload a buyer submits with an RFQ.
type RFQData struct {
	Title       string   `json:"title" example:"Foldable Camp Table"`
	Process     string   `json:"process" example:"extrusion"`
	Materials   string   `json:"materials" example:"aluminum"`
	Quantity    int      `json:"quantity,omitempty" example:"1000"`
	TargetPrice *float64 `json:"target_price,omitempty" example:"10"`
	TargetMOQ   *int     `json:"target_moq,omitempty" example:"500"`
	Currency    string   `json:"currency,omitempty" example:"USD"`
	Notes       string   `json:"notes,omitempty"`
	Deadline    string   `json:"deadline,omitempty" example:"2024-03-01"`
}

type RFQSubmission struct {
	ID                string    `json:"id"`
	Reference         string    `json:"reference" example:"RFQ-AB12345"`
	ProjectID         string    `json:"project_id"`
	UserID            string    `json:"user_id"`
	RFQData           RFQData   `json:"rfq_data"`
	Status            RFQStatus `json:"status" example:"submitted"`
	MatchedPartnerIDs []string  `json:"matched_partner_ids"`
	CreatedAt         time.Time `json:"created_at" example:"2024-01-15T10:30:00Z"`
	UpdatedAt         time.Time `json:"updated_at" example:"2024-01-15T10:30:00Z"`
}

type RFQSubmitRequest struct {
	ProjectID string  `json:"project_id" binding:"required"`
	RFQData   RFQData `json:"rfq_data" binding:"required"`
}

type RFQStatusRequest struct {
	Status RFQStatus `json:"status" binding:"required" example:"in_review"`
}

type RFQSubmitResponse struct {
	Submission      RFQSubmission `json:"submission"`
	MatchedPartners []Partner     `json:"matched_partners"`
}
