package storage

import (
	"context"
	"errors"
	"time"

	"sourcing/models"
)

var (
	// ErrNotFound is returned when the addressed row does not exist.
	ErrNotFound = errors.New("record not found")
	// ErrConflict is returned when a unique value is already taken.
	ErrConflict = errors.New("record already exists")
)

type UserStore interface {
	CreateUser(ctx context.Context, user *models.User) error
	GetUserByEmail(ctx context.Context, email string) (*models.User, error)
	GetUserByID(ctx context.Context, id string) (*models.User, error)
}

type SessionStore interface {
	SaveSession(ctx context.Context, session *models.Session) error
	// GetSession only returns sessions that have not expired.
	GetSession(ctx context.Context, sessionID string) (*models.Session, error)
	CountActiveSessions(ctx context.Context, userID string) (int, error)
	DeleteSession(ctx context.Context, sessionID string) error
	CleanupExpiredSessions(ctx context.Context) (int64, error)
}

type PartnerStore interface {
	CreatePartner(ctx context.Context, partner *models.Partner) error
	GetPartner(ctx context.Context, id string) (*models.Partner, error)
	// ListPartners returns partners in a stable order (created_at, id).
	ListPartners(ctx context.Context, filter models.PartnerFilter) ([]models.Partner, error)
	UpdatePartner(ctx context.Context, partner *models.Partner) error
	DeletePartner(ctx context.Context, id string) error
}

type RFQStore interface {
	CreateSubmission(ctx context.Context, sub *models.RFQSubmission) error
	GetSubmission(ctx context.Context, id string) (*models.RFQSubmission, error)
	// ListSubmissions filters by project when projectID is set, otherwise by owner.
	ListSubmissions(ctx context.Context, projectID, userID string) ([]models.RFQSubmission, error)
	UpdateSubmissionStatus(ctx context.Context, id string, status models.RFQStatus) error
	ReplaceMatchedPartners(ctx context.Context, id string, partnerIDs []string) error
}

type QuoteStore interface {
	CreateResponse(ctx context.Context, resp *models.RFQResponse) error
	GetResponse(ctx context.Context, id string) (*models.RFQResponse, error)
	ListResponses(ctx context.Context, submissionID string) ([]models.RFQResponse, error)
	// ReplaceQuoteAnalysis overwrites extracted_metrics and ai_analysis of one
	// response in a single write. Concurrent callers: last write wins.
	ReplaceQuoteAnalysis(ctx context.Context, id string, metrics models.QuoteMetrics, analysis models.QuoteAnalysis, analyzedAt time.Time) error
}

type ProjectStore interface {
	CreateProject(ctx context.Context, project *models.Project) error
	GetProject(ctx context.Context, id string) (*models.Project, error)
	// ListProjects lists every project when ownerID is empty.
	ListProjects(ctx context.Context, ownerID string) ([]models.Project, error)
	UpdateProject(ctx context.Context, project *models.Project) error
}

type QCStore interface {
	CreateQCChecklist(ctx context.Context, checklist *models.QCChecklist) error
	GetQCChecklist(ctx context.Context, id uint) (*models.QCChecklist, error)
	ListQCChecklists(ctx context.Context, projectID string) ([]models.QCChecklist, error)
	UpdateQCItem(ctx context.Context, checklistID, itemID uint, checked *bool, notes string) (*models.QCChecklistItem, error)
}

type NotificationStore interface {
	CreateNotification(ctx context.Context, n *models.Notification) error
	ListNotifications(ctx context.Context, userID string) ([]models.Notification, error)
	MarkNotificationRead(ctx context.Context, userID string, id uint) error
	MarkAllNotificationsRead(ctx context.Context, userID string) (int64, error)
}

type ActivityStore interface {
	SaveActivityLog(ctx context.Context, log *models.ActivityLog) error
	ListActivityLogs(ctx context.Context, offset, limit int) ([]models.ActivityLog, int64, error)
}

// Store is everything the HTTP layer needs from persistence.
type Store interface {
	UserStore
	SessionStore
	PartnerStore
	RFQStore
	QuoteStore
	ProjectStore
	QCStore
	NotificationStore
	ActivityStore
}

var (
	_ Store = (*Postgres)(nil)
	_ Store = (*Memory)(nil)
)
