package models

import "time"

type QCChecklist struct {
	ID        uint              `gorm:"primaryKey;column:id" json:"id" example:"1"`
	ProjectID string            `gorm:"column:project_id;index;not null" json:"project_id"`
	Name      string            `gorm:"column:name;not null" json:"name" example:"Pre-shipment inspection"`
	CreatedBy string            `gorm:"column:created_by" json:"created_by"`
	Items     []QCChecklistItem `gorm:"foreignKey:ChecklistID" json:"items"`
	CreatedAt time.Time         `gorm:"column:created_at" json:"created_at" example:"2024-01-15T10:30:00Z"`
	UpdatedAt time.Time         `gorm:"column:updated_at" json:"updated_at" example:"2024-01-15T10:30:00Z"`
}

func (QCChecklist) TableName() string {
	return "qc_checklists"
}

type QCChecklistItem struct {
	ID          uint      `gorm:"primaryKey;column:id" json:"id" example:"1"`
	ChecklistID uint      `gorm:"column:checklist_id;index;not null" json:"checklist_id" example:"1"`
	Label       string    `gorm:"column:label;not null" json:"label" example:"Weld seams free of porosity"`
	Checked     bool      `gorm:"column:checked" json:"checked" example:"false"`
	Notes       string    `gorm:"column:notes" json:"notes"`
	UpdatedAt   time.Time `gorm:"column:updated_at" json:"updated_at" example:"2024-01-15T10:30:00Z"`
}

func (QCChecklistItem) TableName() string {
	return "qc_checklist_items"
}

type QCChecklistRequest struct {
	Name  string   `json:"name" binding:"required" example:"Pre-shipment inspection"`
	Items []string `json:"items" binding:"required" example:"Weld seams free of porosity,Anodizing even"`
}

type QCItemUpdateRequest struct {
	Checked *bool  `json:"checked"`
	Notes   string `json:"notes"`
}
