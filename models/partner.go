package models

import "time"

// PartnerType tags a directory entry with the kind of counterparty it is.
type PartnerType string

const (
	PartnerManufacturer PartnerType = "manufacturer"
	PartnerAgent        PartnerType = "agent"
	PartnerShipper      PartnerType = "shipper"
	PartnerLegal        PartnerType = "legal"
)

func (t PartnerType) Valid() bool {
	switch t {
	case PartnerManufacturer, PartnerAgent, PartnerShipper, PartnerLegal:
		return true
	}
	return false
}

// Partner is a supplier, agent, shipper or legal counterparty in the directory.
type Partner struct {
	ID           string      `json:"id" example:"0b8f5c9e-4f7a-4a7b-8d0e-6c1d2e3f4a5b"`
	Name         string      `json:"name" binding:"required" example:"Ningbo Alu Works"`
	Type         PartnerType `json:"type" binding:"required" example:"manufacturer"`
	Description  string      `json:"description" example:"Aluminium extrusion and anodizing for outdoor furniture"`
	Capabilities []string    `json:"capabilities" example:"Aluminum Extrusion,CNC Machining"`
	Country      string      `json:"country" example:"CN"`
	Email        string      `json:"email" example:"sales@alu.example"`
	Website      string      `json:"website" example:"https://alu.example"`
	CreatedAt    time.Time   `json:"created_at" example:"2024-01-15T10:30:00Z"`
	UpdatedAt    time.Time   `json:"updated_at" example:"2024-01-15T10:30:00Z"`
}

// PartnerFilter narrows a directory listing. Zero value lists everything.
type PartnerFilter struct {
	Type PartnerType
}
