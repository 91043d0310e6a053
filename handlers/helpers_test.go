package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"sourcing/config"
	"sourcing/metrics"
	"sourcing/models"
	"sourcing/services"
	"sourcing/storage"
	"sourcing/utils"
)

func init() {
	gin.SetMode(gin.TestMode)
}

const testSecret = "test-secret"

type testEnv struct {
	store      *storage.Memory
	deps       *Deps
	router     *gin.Engine
	buyer      *models.User
	buyerToken string
	admin      *models.User
	adminToken string
	mails      *recordingMailer
}

type envOption func(*Deps)

func withAnalyzer(a services.QuoteAnalyzer) envOption {
	return func(d *Deps) {
		d.Normalizer = services.NewNormalizer(a, d.Store, d.Logger, d.Metrics)
	}
}

func withDirectory(dir services.PartnerDirectory) envOption {
	return func(d *Deps) {
		d.Matcher = services.NewMatcher(dir, d.Logger, d.Metrics)
	}
}

func withConfig(fn func(*config.Config)) envOption {
	return func(d *Deps) { fn(d.Config) }
}

type recordingMailer struct {
	sent []services.EmailData
}

func (r *recordingMailer) SendTemplatedEmail(_ string, data services.EmailData) error {
	r.sent = append(r.sent, data)
	return nil
}

func newTestEnv(t *testing.T, opts ...envOption) *testEnv {
	t.Helper()

	store := storage.NewMemory()
	cfg := config.Default()
	cfg.JWTSecret = testSecret
	cfg.AutoAnalyzeQuotes = false
	logger := zap.NewNop()
	m := metrics.NewManager()
	mails := &recordingMailer{}

	d := &Deps{
		Store:      store,
		Matcher:    services.NewMatcher(store, logger, m),
		Normalizer: services.NewNormalizer(services.NewRuleQuoteAnalyzer(), store, logger, m),
		Notifier:   services.NewNotifier(store, mails, logger),
		Config:     cfg,
		Logger:     logger,
		Metrics:    m,
	}
	for _, opt := range opts {
		opt(d)
	}

	env := &testEnv{store: store, deps: d, mails: mails}
	env.buyer, env.buyerToken = seedUser(t, store, "buyer@example.com", false)
	env.admin, env.adminToken = seedUser(t, store, "admin@example.com", true)
	env.router = NewRouter(d)
	return env
}

func seedUser(t *testing.T, store *storage.Memory, email string, admin bool) (*models.User, string) {
	t.Helper()
	return seedUserWith(t, store, email, func(u *models.User) { u.IsAdmin = admin })
}

func seedUserWith(t *testing.T, store *storage.Memory, email string, mutate func(*models.User)) (*models.User, string) {
	t.Helper()
	ctx := context.Background()

	hash, err := utils.HashPassword("secret")
	require.NoError(t, err)
	user := &models.User{
		ID:        email,
		Email:     email,
		Password:  hash,
		FirstName: "Test",
		CreatedAt: time.Now(),
		UpdatedAt: time.Now(),
	}
	mutate(user)
	require.NoError(t, store.CreateUser(ctx, user))

	token, exp, err := utils.GenerateJWT(testSecret, user.ID, user.Email, time.Hour)
	require.NoError(t, err)
	require.NoError(t, store.SaveSession(ctx, &models.Session{
		UserID: user.ID, SessionID: token, HostName: email, Timestamp: time.Now(), ExpiresAt: exp,
	}))
	return user, token
}

func (e *testEnv) do(t *testing.T, method, path, token string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	e.router.ServeHTTP(w, req)
	return w
}

func decode[T any](t *testing.T, w *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &v), w.Body.String())
	return v
}

func (e *testEnv) seedPartner(t *testing.T, id string, typ models.PartnerType, capabilities ...string) models.Partner {
	t.Helper()
	p := models.Partner{ID: id, Name: id, Type: typ, Capabilities: capabilities, CreatedAt: time.Now()}
	require.NoError(t, e.store.CreatePartner(context.Background(), &p))
	return p
}

func (e *testEnv) seedProject(t *testing.T, owner *models.User, mutate ...func(*models.Project)) *models.Project {
	t.Helper()
	p := &models.Project{ID: "proj-" + owner.ID, OwnerID: owner.ID, Name: "Foldable Camp Table", CreatedAt: time.Now()}
	for _, fn := range mutate {
		fn(p)
	}
	require.NoError(t, e.store.CreateProject(context.Background(), p))
	return p
}

func floatPtr(v float64) *float64 { return &v }
func intPtr(v int) *int { return &v }

// failingDirectory wraps the memory store but cannot list partners.
type failingDirectory struct{}

func (failingDirectory) ListPartners(context.Context, models.PartnerFilter) ([]models.Partner, error) {
	return nil, errors.New("connection refused")
}

// fakeCompleter returns canned completion content.
type fakeCompleter struct {
	content string
	err     error
}

func (f fakeCompleter) CompleteJSON(context.Context, []services.Message) (string, error) {
	return f.content, f.err
}
