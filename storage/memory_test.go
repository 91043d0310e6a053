package storage

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"sourcing/models"
)

func TestMemoryPartnersKeepInsertionOrder(t *testing.T) {
	ctx := context.Background()
	m := NewMemory()

	for _, p := range []models.Partner{
		{ID: "p1", Name: "Alpha", Type: models.PartnerManufacturer},
		{ID: "p2", Name: "Beta", Type: models.PartnerShipper},
		{ID: "p3", Name: "Gamma", Type: models.PartnerManufacturer},
	} {
		p := p
		require.NoError(t, m.CreatePartner(ctx, &p))
	}

	all, err := m.ListPartners(ctx, models.PartnerFilter{})
	require.NoError(t, err)
	require.Len(t, all, 3)
	assert.Equal(t, []string{"p1", "p2", "p3"}, []string{all[0].ID, all[1].ID, all[2].ID})

	manufacturers, err := m.ListPartners(ctx, models.PartnerFilter{Type: models.PartnerManufacturer})
	require.NoError(t, err)
	assert.Len(t, manufacturers, 2)

	require.NoError(t, m.DeletePartner(ctx, "p2"))
	assert.ErrorIs(t, m.DeletePartner(ctx, "p2"), ErrNotFound)
	all, err = m.ListPartners(ctx, models.PartnerFilter{})
	require.NoError(t, err)
	assert.Len(t, all, 2)
}

func TestMemoryReturnsCopies(t *testing.T) {
	ctx := context.Background()
	m := NewMemory()
	p := models.Partner{ID: "p1", Name: "Alpha", Type: models.PartnerManufacturer, Capabilities: []string{"CNC"}}
	require.NoError(t, m.CreatePartner(ctx, &p))

	got, err := m.GetPartner(ctx, "p1")
	require.NoError(t, err)
	got.Capabilities[0] = "changed"

	again, err := m.GetPartner(ctx, "p1")
	require.NoError(t, err)
	assert.Equal(t, "CNC", again.Capabilities[0])
}

func TestMemoryReplaceQuoteAnalysisOverwrites(t *testing.T) {
	ctx := context.Background()
	m := NewMemory()
	require.NoError(t, m.CreateSubmission(ctx, &models.RFQSubmission{ID: "s1", Reference: "RFQ-AA00001"}))
	require.NoError(t, m.CreateResponse(ctx, &models.RFQResponse{ID: "r1", SubmissionID: "s1", RawText: "quote"}))

	price := 12.0
	require.NoError(t, m.ReplaceQuoteAnalysis(ctx, "r1",
		models.QuoteMetrics{UnitPrice: &price},
		models.QuoteAnalysis{Score: 50, Flags: []string{"a"}, Summary: "first"}, time.Now()))
	require.NoError(t, m.ReplaceQuoteAnalysis(ctx, "r1",
		models.QuoteMetrics{},
		models.QuoteAnalysis{Score: 80, Summary: "second"}, time.Now()))

	r, err := m.GetResponse(ctx, "r1")
	require.NoError(t, err)
	require.NotNil(t, r.AIAnalysis)
	assert.Equal(t, 80, r.AIAnalysis.Score)
	assert.Equal(t, "second", r.AIAnalysis.Summary)
	assert.Equal(t, []string{}, r.AIAnalysis.Flags)
	assert.Nil(t, r.ExtractedMetrics.UnitPrice)

	assert.ErrorIs(t, m.ReplaceQuoteAnalysis(ctx, "missing", models.QuoteMetrics{}, models.QuoteAnalysis{}, time.Now()), ErrNotFound)
}

func TestMemoryCreateResponseRequiresSubmission(t *testing.T) {
	m := NewMemory()
	err := m.CreateResponse(context.Background(), &models.RFQResponse{ID: "r1", SubmissionID: "nope"})
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestMemorySessionsExpire(t *testing.T) {
	ctx := context.Background()
	m := NewMemory()
	require.NoError(t, m.SaveSession(ctx, &models.Session{SessionID: "live", UserID: "u1", ExpiresAt: time.Now().Add(time.Hour)}))
	require.NoError(t, m.SaveSession(ctx, &models.Session{SessionID: "dead", UserID: "u1", ExpiresAt: time.Now().Add(-time.Hour)}))

	_, err := m.GetSession(ctx, "dead")
	assert.ErrorIs(t, err, ErrNotFound)

	count, err := m.CountActiveSessions(ctx, "u1")
	require.NoError(t, err)
	assert.Equal(t, 1, count)

	removed, err := m.CleanupExpiredSessions(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(1), removed)
}

func TestMemoryQCItemUpdate(t *testing.T) {
	ctx := context.Background()
	m := NewMemory()
	checklist := models.QCChecklist{
		ProjectID: "proj",
		Name:      "Pre-shipment",
		Items:     []models.QCChecklistItem{{Label: "Welds"}, {Label: "Finish"}},
	}
	require.NoError(t, m.CreateQCChecklist(ctx, &checklist))
	require.NotZero(t, checklist.ID)

	checked := true
	item, err := m.UpdateQCItem(ctx, checklist.ID, checklist.Items[1].ID, &checked, "ok")
	require.NoError(t, err)
	assert.True(t, item.Checked)
	assert.Equal(t, "ok", item.Notes)

	_, err = m.UpdateQCItem(ctx, checklist.ID, 9999, &checked, "")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestMemoryActivityLogsPaginateNewestFirst(t *testing.T) {
	ctx := context.Background()
	m := NewMemory()
	for _, name := range []string{"one", "two", "three"} {
		require.NoError(t, m.SaveActivityLog(ctx, &models.ActivityLog{EventName: name}))
	}

	logs, total, err := m.ListActivityLogs(ctx, 0, 2)
	require.NoError(t, err)
	assert.Equal(t, int64(3), total)
	require.Len(t, logs, 2)
	assert.Equal(t, "three", logs[0].EventName)

	logs, _, err = m.ListActivityLogs(ctx, 2, 2)
	require.NoError(t, err)
	require.Len(t, logs, 1)
	assert.Equal(t, "one", logs[0].EventName)
}

func TestMemoryActivityLogsOffsetOutOfRange(t *testing.T) {
	ctx := context.Background()
	m := NewMemory()
	require.NoError(t, m.SaveActivityLog(ctx, &models.ActivityLog{EventName: "one"}))

	for _, offset := range []int{1, 1 << 40, -5} {
		logs, total, err := m.ListActivityLogs(ctx, offset, 10)
		require.NoError(t, err)
		assert.Equal(t, int64(1), total)
		assert.Empty(t, logs, offset)
	}
}
