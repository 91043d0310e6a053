package models

import "time"

// Project is a buyer's product being sourced.
type Project struct {
	ID                 string    `gorm:"primaryKey;column:id;type:varchar(36)" json:"id"`
	OwnerID            string    `gorm:"column:owner_id;index;not null" json:"owner_id"`
	Name               string    `gorm:"column:name;not null" json:"name" example:"Foldable Camp Table"`
	Description        string    `gorm:"column:description;type:text" json:"description"`
	Category           string    `gorm:"column:category" json:"category" example:"outdoor furniture"`
	Process            string    `gorm:"column:process" json:"process" example:"extrusion"`
	Materials          string    `gorm:"column:materials" json:"materials" example:"aluminum"`
	Dimensions         string    `gorm:"column:dimensions" json:"dimensions" example:"80x60x70 cm"`
	TargetPrice        *float64  `gorm:"column:target_price" json:"target_price,omitempty" example:"10"`
	TargetMOQ          *int      `gorm:"column:target_moq" json:"target_moq,omitempty" example:"500"`
	TargetLeadTimeDays *int      `gorm:"column:target_lead_time_days" json:"target_lead_time_days,omitempty" example:"45"`
	Certifications     string    `gorm:"column:certifications" json:"certifications" example:"BIFMA"`
	Playbook           string    `gorm:"column:playbook;type:text" json:"playbook,omitempty"`
	CreatedAt          time.Time `gorm:"column:created_at" json:"created_at" example:"2024-01-15T10:30:00Z"`
	UpdatedAt          time.Time `gorm:"column:updated_at" json:"updated_at" example:"2024-01-15T10:30:00Z"`
}

func (Project) TableName() string {
	return "projects"
}

type ProjectRequest struct {
	Name               string   `json:"name" example:"Foldable Camp Table"`
	Description        string   `json:"description"`
	Category           string   `json:"category"`
	Process            string   `json:"process"`
	Materials          string   `json:"materials"`
	Dimensions         string   `json:"dimensions"`
	TargetPrice        *float64 `json:"target_price,omitempty"`
	TargetMOQ          *int     `json:"target_moq,omitempty"`
	TargetLeadTimeDays *int     `json:"target_lead_time_days,omitempty"`
	Certifications     string   `json:"certifications"`
	Playbook           string   `json:"playbook,omitempty"`
}

// MissingField names one spec field that is still empty on a project.
type MissingField struct {
	Field  string `json:"field" example:"dimensions"`
	Label  string `json:"label" example:"Product dimensions"`
	Weight int    `json:"weight" example:"15"`
}

type Readiness struct {
	Percentage int            `json:"percentage" example:"70"`
	Ready      bool           `json:"ready" example:"true"`
	Missing    []MissingField `json:"missing"`
}
