package storage

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"sourcing/models"
)

// Memory is an in-process Store used by tests and local tooling.
// It is safe for concurrent use and hands out copies, never internal pointers.
type Memory struct {
	mu sync.RWMutex

	users    map[string]models.User
	sessions map[string]models.Session

	partners     map[string]models.Partner
	partnerOrder []string

	submissions map[string]models.RFQSubmission
	responses   map[string]models.RFQResponse
	respOrder   []string

	projects      map[string]models.Project
	checklists    map[uint]models.QCChecklist
	notifications map[uint]models.Notification
	activity      []models.ActivityLog

	nextID uint
}

func NewMemory() *Memory {
	return &Memory{
		users:         map[string]models.User{},
		sessions:      map[string]models.Session{},
		partners:      map[string]models.Partner{},
		submissions:   map[string]models.RFQSubmission{},
		responses:     map[string]models.RFQResponse{},
		projects:      map[string]models.Project{},
		checklists:    map[uint]models.QCChecklist{},
		notifications: map[uint]models.Notification{},
	}
}

func (m *Memory) id() uint {
	m.nextID++
	return m.nextID
}

func cloneStrings(in []string) []string {
	if in == nil {
		return nil
	}
	return append([]string(nil), in...)
}

func clonePartner(p models.Partner) models.Partner {
	p.Capabilities = cloneStrings(p.Capabilities)
	return p
}

func cloneSubmission(s models.RFQSubmission) models.RFQSubmission {
	s.MatchedPartnerIDs = cloneStrings(s.MatchedPartnerIDs)
	return s
}

func cloneResponse(r models.RFQResponse) models.RFQResponse {
	if r.PricingData != nil {
		r.PricingData = append([]byte(nil), r.PricingData...)
	}
	if r.ExtractedMetrics != nil {
		m := *r.ExtractedMetrics
		r.ExtractedMetrics = &m
	}
	if r.AIAnalysis != nil {
		a := *r.AIAnalysis
		a.Flags = cloneStrings(a.Flags)
		r.AIAnalysis = &a
	}
	if r.AnalyzedAt != nil {
		t := *r.AnalyzedAt
		r.AnalyzedAt = &t
	}
	return r
}

func cloneChecklist(c models.QCChecklist) models.QCChecklist {
	c.Items = append([]models.QCChecklistItem(nil), c.Items...)
	return c
}

func (m *Memory) CreateUser(_ context.Context, user *models.User) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, u := range m.users {
		if strings.EqualFold(u.Email, user.Email) {
			return ErrConflict
		}
	}
	m.users[user.ID] = *user
	return nil
}

func (m *Memory) GetUserByEmail(_ context.Context, email string) (*models.User, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	for _, u := range m.users {
		if strings.EqualFold(u.Email, email) {
			return &u, nil
		}
	}
	return nil, ErrNotFound
}

func (m *Memory) GetUserByID(_ context.Context, id string) (*models.User, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	u, ok := m.users[id]
	if !ok {
		return nil, ErrNotFound
	}
	return &u, nil
}

func (m *Memory) SaveSession(_ context.Context, session *models.Session) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sessions[session.SessionID] = *session
	return nil
}

func (m *Memory) GetSession(_ context.Context, sessionID string) (*models.Session, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	s, ok := m.sessions[sessionID]
	if !ok || !s.ExpiresAt.After(time.Now()) {
		return nil, ErrNotFound
	}
	return &s, nil
}

func (m *Memory) CountActiveSessions(_ context.Context, userID string) (int, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	now := time.Now()
	count := 0
	for _, s := range m.sessions {
		if s.UserID == userID && s.ExpiresAt.After(now) {
			count++
		}
	}
	return count, nil
}

func (m *Memory) DeleteSession(_ context.Context, sessionID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.sessions[sessionID]; !ok {
		return ErrNotFound
	}
	delete(m.sessions, sessionID)
	return nil
}

func (m *Memory) CleanupExpiredSessions(_ context.Context) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	now := time.Now()
	var n int64
	for id, s := range m.sessions {
		if s.ExpiresAt.Before(now) {
			delete(m.sessions, id)
			n++
		}
	}
	return n, nil
}

func (m *Memory) CreatePartner(_ context.Context, partner *models.Partner) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.partners[partner.ID]; ok {
		return ErrConflict
	}
	m.partners[partner.ID] = clonePartner(*partner)
	m.partnerOrder = append(m.partnerOrder, partner.ID)
	return nil
}

func (m *Memory) GetPartner(_ context.Context, id string) (*models.Partner, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	p, ok := m.partners[id]
	if !ok {
		return nil, ErrNotFound
	}
	p = clonePartner(p)
	return &p, nil
}

func (m *Memory) ListPartners(_ context.Context, filter models.PartnerFilter) ([]models.Partner, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := []models.Partner{}
	for _, id := range m.partnerOrder {
		p, ok := m.partners[id]
		if !ok {
			continue
		}
		if filter.Type != "" && p.Type != filter.Type {
			continue
		}
		out = append(out, clonePartner(p))
	}
	return out, nil
}

func (m *Memory) UpdatePartner(_ context.Context, partner *models.Partner) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	existing, ok := m.partners[partner.ID]
	if !ok {
		return ErrNotFound
	}
	updated := clonePartner(*partner)
	updated.CreatedAt = existing.CreatedAt
	m.partners[partner.ID] = updated
	return nil
}

func (m *Memory) DeletePartner(_ context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.partners[id]; !ok {
		return ErrNotFound
	}
	delete(m.partners, id)
	for i, pid := range m.partnerOrder {
		if pid == id {
			m.partnerOrder = append(m.partnerOrder[:i], m.partnerOrder[i+1:]...)
			break
		}
	}
	return nil
}

func (m *Memory) CreateSubmission(_ context.Context, sub *models.RFQSubmission) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.submissions[sub.ID]; ok {
		return ErrConflict
	}
	for _, s := range m.submissions {
		if s.Reference == sub.Reference {
			return ErrConflict
		}
	}
	m.submissions[sub.ID] = cloneSubmission(*sub)
	return nil
}

func (m *Memory) GetSubmission(_ context.Context, id string) (*models.RFQSubmission, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	s, ok := m.submissions[id]
	if !ok {
		return nil, ErrNotFound
	}
	s = cloneSubmission(s)
	return &s, nil
}

func (m *Memory) ListSubmissions(_ context.Context, projectID, userID string) ([]models.RFQSubmission, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := []models.RFQSubmission{}
	for _, s := range m.submissions {
		if projectID != "" && s.ProjectID != projectID {
			continue
		}
		if projectID == "" && s.UserID != userID {
			continue
		}
		out = append(out, cloneSubmission(s))
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

func (m *Memory) UpdateSubmissionStatus(_ context.Context, id string, status models.RFQStatus) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	s, ok := m.submissions[id]
	if !ok {
		return ErrNotFound
	}
	s.Status = status
	s.UpdatedAt = time.Now()
	m.submissions[id] = s
	return nil
}

func (m *Memory) ReplaceMatchedPartners(_ context.Context, id string, partnerIDs []string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	s, ok := m.submissions[id]
	if !ok {
		return ErrNotFound
	}
	s.MatchedPartnerIDs = cloneStrings(partnerIDs)
	if s.MatchedPartnerIDs == nil {
		s.MatchedPartnerIDs = []string{}
	}
	s.UpdatedAt = time.Now()
	m.submissions[id] = s
	return nil
}

func (m *Memory) CreateResponse(_ context.Context, resp *models.RFQResponse) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.submissions[resp.SubmissionID]; !ok {
		return ErrNotFound
	}
	if _, ok := m.responses[resp.ID]; ok {
		return ErrConflict
	}
	m.responses[resp.ID] = cloneResponse(*resp)
	m.respOrder = append(m.respOrder, resp.ID)
	return nil
}

func (m *Memory) GetResponse(_ context.Context, id string) (*models.RFQResponse, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	r, ok := m.responses[id]
	if !ok {
		return nil, ErrNotFound
	}
	r = cloneResponse(r)
	return &r, nil
}

func (m *Memory) ListResponses(_ context.Context, submissionID string) ([]models.RFQResponse, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := []models.RFQResponse{}
	for _, id := range m.respOrder {
		if r := m.responses[id]; r.SubmissionID == submissionID {
			out = append(out, cloneResponse(r))
		}
	}
	return out, nil
}

func (m *Memory) ReplaceQuoteAnalysis(_ context.Context, id string, metrics models.QuoteMetrics, analysis models.QuoteAnalysis, analyzedAt time.Time) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	r, ok := m.responses[id]
	if !ok {
		return ErrNotFound
	}
	analysis.Flags = cloneStrings(analysis.Flags)
	if analysis.Flags == nil {
		analysis.Flags = []string{}
	}
	r.ExtractedMetrics = &metrics
	r.AIAnalysis = &analysis
	r.AnalyzedAt = &analyzedAt
	m.responses[id] = r
	return nil
}

func (m *Memory) CreateProject(_ context.Context, project *models.Project) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.projects[project.ID]; ok {
		return ErrConflict
	}
	m.projects[project.ID] = *project
	return nil
}

func (m *Memory) GetProject(_ context.Context, id string) (*models.Project, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	p, ok := m.projects[id]
	if !ok {
		return nil, ErrNotFound
	}
	return &p, nil
}

func (m *Memory) ListProjects(_ context.Context, ownerID string) ([]models.Project, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := []models.Project{}
	for _, p := range m.projects {
		if ownerID == "" || p.OwnerID == ownerID {
			out = append(out, p)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

func (m *Memory) UpdateProject(_ context.Context, project *models.Project) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	existing, ok := m.projects[project.ID]
	if !ok {
		return ErrNotFound
	}
	updated := *project
	updated.OwnerID = existing.OwnerID
	updated.CreatedAt = existing.CreatedAt
	m.projects[project.ID] = updated
	return nil
}

func (m *Memory) CreateQCChecklist(_ context.Context, checklist *models.QCChecklist) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	checklist.ID = m.id()
	for i := range checklist.Items {
		checklist.Items[i].ID = m.id()
		checklist.Items[i].ChecklistID = checklist.ID
	}
	m.checklists[checklist.ID] = cloneChecklist(*checklist)
	return nil
}

func (m *Memory) GetQCChecklist(_ context.Context, id uint) (*models.QCChecklist, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	c, ok := m.checklists[id]
	if !ok {
		return nil, ErrNotFound
	}
	c = cloneChecklist(c)
	return &c, nil
}

func (m *Memory) ListQCChecklists(_ context.Context, projectID string) ([]models.QCChecklist, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := []models.QCChecklist{}
	for _, c := range m.checklists {
		if c.ProjectID == projectID {
			out = append(out, cloneChecklist(c))
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (m *Memory) UpdateQCItem(_ context.Context, checklistID, itemID uint, checked *bool, notes string) (*models.QCChecklistItem, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	c, ok := m.checklists[checklistID]
	if !ok {
		return nil, ErrNotFound
	}
	for i := range c.Items {
		if c.Items[i].ID != itemID {
			continue
		}
		if checked != nil {
			c.Items[i].Checked = *checked
		}
		if notes != "" {
			c.Items[i].Notes = notes
		}
		c.Items[i].UpdatedAt = time.Now()
		m.checklists[checklistID] = c
		item := c.Items[i]
		return &item, nil
	}
	return nil, ErrNotFound
}

func (m *Memory) CreateNotification(_ context.Context, n *models.Notification) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	n.ID = m.id()
	m.notifications[n.ID] = *n
	return nil
}

func (m *Memory) ListNotifications(_ context.Context, userID string) ([]models.Notification, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := []models.Notification{}
	for _, n := range m.notifications {
		if n.UserID == userID {
			out = append(out, n)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID > out[j].ID })
	return out, nil
}

func (m *Memory) MarkNotificationRead(_ context.Context, userID string, id uint) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	n, ok := m.notifications[id]
	if !ok || n.UserID != userID {
		return ErrNotFound
	}
	n.Status = models.NotificationRead
	n.UpdatedAt = time.Now()
	m.notifications[id] = n
	return nil
}

func (m *Memory) MarkAllNotificationsRead(_ context.Context, userID string) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var count int64
	for id, n := range m.notifications {
		if n.UserID == userID && n.Status == models.NotificationUnread {
			n.Status = models.NotificationRead
			n.UpdatedAt = time.Now()
			m.notifications[id] = n
			count++
		}
	}
	return count, nil
}

func (m *Memory) SaveActivityLog(_ context.Context, log *models.ActivityLog) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	log.ID = m.id()
	m.activity = append(m.activity, *log)
	return nil
}

func (m *Memory) ListActivityLogs(_ context.Context, offset, limit int) ([]models.ActivityLog, int64, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	total := int64(len(m.activity))
	// newest first
	out := []models.ActivityLog{}
	if offset < 0 || offset >= len(m.activity) {
		return out, total, nil
	}
	for i := len(m.activity) - 1 - offset; i >= 0 && len(out) < limit; i-- {
		out = append(out, m.activity[i])
	}
	return out, total, nil
}
