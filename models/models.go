package models

import (
	"time"
)

type User struct {
	ID        string    `json:"id" example:"7f3c2a8e-1d2b-4c5e-9f60-2b1a0c9d8e7f"`
	Email     string    `json:"email" example:"buyer@example.com"`
	Password  string    `json:"-"`
	FirstName string    `json:"first_name" example:"Jane"`
	LastName  string    `json:"last_name" example:"Doe"`
	Company   string    `json:"company" example:"Trailhead Goods"`
	IsAdmin   bool      `json:"is_admin" example:"false"`
	Suspended bool      `json:"suspended" example:"false"`
	CreatedAt time.Time `json:"created_at" example:"2024-01-15T10:30:00Z"`
	UpdatedAt time.Time `json:"updated_at" example:"2024-01-15T10:30:00Z"`
}

// FullName joins first and last name, falling back to the email.
func (u User) FullName() string {
	name := u.FirstName
	if u.LastName != "" {
		if name != "" {
			name += " "
		}
		name += u.LastName
	}
	if name == "" {
		return u.Email
	}
	return name
}

type Session struct {
	UserID    string    `json:"user_id"`
	SessionID string    `json:"session_id"`
	HostName  string    `json:"host_name"`
	IPAddress string    `json:"ip_address"`
	Timestamp time.Time `json:"timestp"`
	ExpiresAt time.Time `json:"expires_at"`
}

type LoginRequest struct {
	Email    string `json:"email" binding:"required" example:"buyer@example.com"`
	Password string `json:"password" binding:"required" example:"secret"`
}

type LoginResponse struct {
	Message     string    `json:"message" example:"Login successful"`
	AccessToken string    `json:"access_token"`
	ExpiresAt   time.Time `json:"expires_at"`
	User        User      `json:"user"`
}

type ValidateSessionResponse struct {
	Message   string `json:"message" example:"Session validated"`
	SessionID string `json:"session_id"`
	HostName  string `json:"host_name" example:"buyer@example.com"`
	IsAdmin   bool   `json:"is_admin" example:"false"`
}

type ActivityLog struct {
	ID           uint      `gorm:"primaryKey;column:id" json:"id" example:"1"`
	CreatedAt    time.Time `gorm:"column:created_at;not null" json:"created_at" example:"2024-01-15T10:30:00Z"`
	UserName     string    `gorm:"column:user_name;not null" json:"user_name" example:"Jane Doe"`
	HostName     string    `gorm:"column:host_name" json:"host_name" example:"buyer@example.com"`
	EventContext string    `gorm:"column:event_context;not null" json:"event_context" example:"RFQ"`
	IPAddress    string    `gorm:"column:ip_address" json:"ip_address" example:"192.168.1.1"`
	Description  string    `gorm:"column:description" json:"description" example:"Submit RFQ"`
	EventName    string    `gorm:"column:event_name;not null" json:"event_name" example:"Create"`
	ProjectID    string    `gorm:"column:project_id;index" json:"project_id"`
}

func (ActivityLog) TableName() string {
	return "activity_logs"
}

type Notification struct {
	ID        uint      `gorm:"primaryKey;column:id" json:"id" example:"1"`
	UserID    string    `gorm:"column:user_id;index;not null" json:"user_id"`
	Title     string    `gorm:"column:title" json:"title" example:"New quote received"`
	Message   string    `gorm:"column:message;not null" json:"message" example:"Supplier replied to RFQ-AB12345"`
	Status    string    `gorm:"column:status;default:unread" json:"status" example:"unread"`
	Action    string    `gorm:"column:action" json:"action" example:"view_quote"`
	Link      string    `gorm:"column:link" json:"link" example:"/rfqs/42"`
	CreatedAt time.Time `gorm:"column:created_at" json:"created_at" example:"2024-01-15T10:30:00Z"`
	UpdatedAt time.Time `gorm:"column:updated_at" json:"updated_at" example:"2024-01-15T10:30:00Z"`
}

func (Notification) TableName() string {
	return "notifications"
}

const (
	NotificationUnread = "unread"
	NotificationRead   = "read"
)

type ErrorResponse struct {
	Error   string `json:"error" example:"Invalid session"`
	Details string `json:"details,omitempty" example:"session not found"`
}

type MessageResponse struct {
	Message string `json:"message" example:"Operation completed"`
}

type PaginatedActivityLogs struct {
	Data       []ActivityLog `json:"data"`
	Page       int           `json:"page" example:"1"`
	Limit      int           `json:"limit" example:"10"`
	TotalCount int64         `json:"total_count" example:"42"`
	TotalPages int           `json:"total_pages" example:"5"`
}
