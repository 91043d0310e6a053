package handlers

import (
	"bytes"
	"context"
	"errors"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"sourcing/config"
	"sourcing/models"
	"sourcing/services"
)

const scenarioQuote = "We can do $12/unit, MOQ 500, 30 day lead time, 30% deposit"

// quoteFixture submits an RFQ with $10 / 500 targets and records one quote.
func quoteFixture(t *testing.T, env *testEnv) (models.RFQSubmission, models.RFQResponse) {
	t.Helper()
	env.seedPartner(t, "alu", models.PartnerManufacturer, "Aluminum Extrusion")
	project := env.seedProject(t, env.buyer)
	sub := submitRFQ(t, env, env.buyerToken, project.ID, models.RFQData{
		Title: "Foldable Camp Table", Materials: "aluminum", TargetPrice: floatPtr(10), TargetMOQ: intPtr(500),
	}).Submission

	w := env.do(t, http.MethodPost, "/api/rfqs/"+sub.ID+"/responses", env.buyerToken,
		models.QuoteSubmitRequest{PartnerID: "alu", RawText: scenarioQuote})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	return sub, decode[models.RFQResponse](t, w)
}

func TestSubmitQuoteStoresRawReply(t *testing.T) {
	env := newTestEnv(t)
	sub, resp := quoteFixture(t, env)

	assert.Equal(t, sub.ID, resp.SubmissionID)
	assert.Equal(t, scenarioQuote, resp.RawText)
	assert.Nil(t, resp.ExtractedMetrics)
	assert.Nil(t, resp.AIAnalysis)

	w := env.do(t, http.MethodGet, "/api/rfqs/"+sub.ID+"/responses", env.buyerToken, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Len(t, decode[[]models.RFQResponse](t, w), 1)

	w = env.do(t, http.MethodGet, "/api/responses/"+resp.ID, env.buyerToken, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, resp.ID, decode[models.RFQResponse](t, w).ID)
}

func TestSubmitQuoteValidation(t *testing.T) {
	env := newTestEnv(t)
	sub, _ := quoteFixture(t, env)
	path := "/api/rfqs/" + sub.ID + "/responses"

	w := env.do(t, http.MethodPost, path, env.buyerToken, models.QuoteSubmitRequest{RawText: "   "})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = env.do(t, http.MethodPost, path, env.buyerToken, models.QuoteSubmitRequest{PartnerID: "ghost", RawText: "ok"})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = env.do(t, http.MethodPost, "/api/rfqs/missing/responses", env.buyerToken, models.QuoteSubmitRequest{RawText: "ok"})
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestAnalyzeQuoteScenario(t *testing.T) {
	env := newTestEnv(t)
	_, resp := quoteFixture(t, env)

	w := env.do(t, http.MethodPost, "/api/responses/"+resp.ID+"/analyze", env.buyerToken, nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	out := decode[models.QuoteAnalyzeResponse](t, w)

	require.NotNil(t, out.ExtractedMetrics.UnitPrice)
	assert.InDelta(t, 12, *out.ExtractedMetrics.UnitPrice, 0.001)
	assert.Equal(t, 500, *out.ExtractedMetrics.MOQ)
	assert.Equal(t, 30, *out.ExtractedMetrics.LeadTimeDays)
	assert.Contains(t, out.AIAnalysis.Flags, services.FlagPriceAboveTarget)

	stored, err := env.store.GetResponse(context.Background(), resp.ID)
	require.NoError(t, err)
	require.NotNil(t, stored.ExtractedMetrics)
	require.NotNil(t, stored.AIAnalysis)
	assert.Equal(t, out.AIAnalysis, *stored.AIAnalysis)
	assert.NotNil(t, stored.AnalyzedAt)
}

func TestAnalyzeQuoteTargetOverride(t *testing.T) {
	env := newTestEnv(t)
	_, resp := quoteFixture(t, env)

	w := env.do(t, http.MethodPost, "/api/responses/"+resp.ID+"/analyze", env.buyerToken,
		models.QuoteAnalyzeRequest{TargetPrice: floatPtr(15)})
	require.Equal(t, http.StatusOK, w.Code)
	out := decode[models.QuoteAnalyzeResponse](t, w)
	assert.NotContains(t, out.AIAnalysis.Flags, services.FlagPriceAboveTarget)
}

func TestAnalyzeQuoteCompletionFailureStoresFallback(t *testing.T) {
	llm := services.NewLLMQuoteAnalyzer(fakeCompleter{err: errors.New("dial tcp: connection refused")})
	env := newTestEnv(t, withAnalyzer(llm))
	_, resp := quoteFixture(t, env)

	w := env.do(t, http.MethodPost, "/api/responses/"+resp.ID+"/analyze", env.buyerToken, nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	out := decode[models.QuoteAnalyzeResponse](t, w)
	assert.Equal(t, 0, out.AIAnalysis.Score)
	assert.Equal(t, []string{services.FlagAnalysisFailed}, out.AIAnalysis.Flags)
	assert.Equal(t, services.FallbackSummary, out.AIAnalysis.Summary)

	stored, err := env.store.GetResponse(context.Background(), resp.ID)
	require.NoError(t, err)
	require.NotNil(t, stored.AIAnalysis)
	assert.Equal(t, []string{services.FlagAnalysisFailed}, stored.AIAnalysis.Flags)
}

func TestAnalyzeQuoteMalformedCompletionStoresFallback(t *testing.T) {
	llm := services.NewLLMQuoteAnalyzer(fakeCompleter{content: "Sure! The price is $12."})
	env := newTestEnv(t, withAnalyzer(llm))
	_, resp := quoteFixture(t, env)

	w := env.do(t, http.MethodPost, "/api/responses/"+resp.ID+"/analyze", env.buyerToken, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, 0, decode[models.QuoteAnalyzeResponse](t, w).AIAnalysis.Score)
}

func TestAnalyzeQuoteErrors(t *testing.T) {
	env := newTestEnv(t)
	_, resp := quoteFixture(t, env)

	w := env.do(t, http.MethodPost, "/api/responses/missing/analyze", env.buyerToken, nil)
	assert.Equal(t, http.StatusNotFound, w.Code)

	_, otherToken := seedUser(t, env.store, "other@example.com", false)
	w = env.do(t, http.MethodPost, "/api/responses/"+resp.ID+"/analyze", otherToken, nil)
	assert.Equal(t, http.StatusForbidden, w.Code)

	w = env.do(t, http.MethodPost, "/api/responses/"+resp.ID+"/analyze", env.buyerToken, "not an object")
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestSubmitQuoteAutoAnalyze(t *testing.T) {
	env := newTestEnv(t, withConfig(func(c *config.Config) { c.AutoAnalyzeQuotes = true }))
	_, resp := quoteFixture(t, env)

	require.NotNil(t, resp.AIAnalysis)
	assert.Contains(t, resp.AIAnalysis.Flags, services.FlagPriceAboveTarget)
	require.NotNil(t, resp.ExtractedMetrics)
	assert.Equal(t, 500, *resp.ExtractedMetrics.MOQ)
}

func TestExportQuotes(t *testing.T) {
	env := newTestEnv(t)
	sub, resp := quoteFixture(t, env)
	w := env.do(t, http.MethodPost, "/api/responses/"+resp.ID+"/analyze", env.buyerToken, nil)
	require.Equal(t, http.StatusOK, w.Code)

	w = env.do(t, http.MethodGet, "/api/rfqs/"+sub.ID+"/responses/export", env.buyerToken, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Header().Get("Content-Disposition"), sub.Reference+".xlsx")

	f, err := excelize.OpenReader(bytes.NewReader(w.Body.Bytes()))
	require.NoError(t, err)
	defer f.Close()
	supplier, err := f.GetCellValue("Quotes", "A5")
	require.NoError(t, err)
	assert.Equal(t, "alu", supplier)

	w = env.do(t, http.MethodGet, "/api/rfqs/"+sub.ID+"/responses/export?format=csv", env.buyerToken, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "text/csv", w.Header().Get("Content-Type"))
	assert.Contains(t, w.Body.String(), "Supplier,Unit Price")

	w = env.do(t, http.MethodGet, "/api/rfqs/"+sub.ID+"/responses/export?format=pdf", env.buyerToken, nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestQuoteNotifiesProjectOwner(t *testing.T) {
	env := newTestEnv(t)
	sub, resp := quoteFixture(t, env)
	env.do(t, http.MethodPost, "/api/responses/"+resp.ID+"/analyze", env.buyerToken, nil)

	notes, err := env.store.ListNotifications(context.Background(), env.buyer.ID)
	require.NoError(t, err)
	// matched, quote received, quote analyzed
	require.Len(t, notes, 3)
	for _, n := range notes {
		assert.Equal(t, "/rfqs/"+sub.ID, n.Link)
	}
}
