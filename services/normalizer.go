package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"sourcing/metrics"
	"sourcing/models"
	"sourcing/storage"
)

var (
	ErrMissingRawText    = errors.New("raw quote text is required")
	ErrMissingResponseID = errors.New("response id is required")
)

// QuoteWriter is the slice of the quote store the normalizer writes through.
type QuoteWriter interface {
	ReplaceQuoteAnalysis(ctx context.Context, id string, metrics models.QuoteMetrics, analysis models.QuoteAnalysis, analyzedAt time.Time) error
}

type NormalizeRequest struct {
	ResponseID  string
	RawText     string
	TargetPrice *float64
	TargetMOQ   *int
}

// Normalizer analyzes a supplier quote and stores the result on the quote
// record. Analysis failures never reach the caller: the fallback result is
// stored instead. Only input and storage errors are returned.
type Normalizer struct {
	analyzer QuoteAnalyzer
	store    QuoteWriter
	logger   *zap.Logger
	metrics  *metrics.Manager
	now      func() time.Time
}

func NewNormalizer(analyzer QuoteAnalyzer, store QuoteWriter, logger *zap.Logger, m *metrics.Manager) *Normalizer {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Normalizer{analyzer: analyzer, store: store, logger: logger, metrics: m, now: time.Now}
}

func (n *Normalizer) Normalize(ctx context.Context, req NormalizeRequest) (QuoteResult, error) {
	if strings.TrimSpace(req.ResponseID) == "" {
		return QuoteResult{}, ErrMissingResponseID
	}
	if strings.TrimSpace(req.RawText) == "" {
		return QuoteResult{}, ErrMissingRawText
	}

	result, err := n.analyze(ctx, QuoteInput{
		RawText:     req.RawText,
		TargetPrice: req.TargetPrice,
		TargetMOQ:   req.TargetMOQ,
	})
	if err != nil {
		n.logger.Warn("quote analysis failed, storing fallback",
			zap.String("response_id", req.ResponseID), zap.Error(err))
		n.metrics.RecordQuoteNormalized(metrics.OutcomeFallback)
		result = FallbackResult()
	} else {
		n.metrics.RecordQuoteNormalized(metrics.OutcomeOK)
	}

	result.Analysis.Score = clamp(result.Analysis.Score, 0, 100)
	if result.Analysis.Flags == nil {
		result.Analysis.Flags = []string{}
	}

	if err := n.store.ReplaceQuoteAnalysis(ctx, req.ResponseID, result.Metrics, result.Analysis, n.now()); err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return QuoteResult{}, err
		}
		return QuoteResult{}, fmt.Errorf("failed to store quote analysis: %w", err)
	}
	return result, nil
}

// analyze turns an analyzer panic into an error so a misbehaving backend
// cannot take the request down.
func (n *Normalizer) analyze(ctx context.Context, in QuoteInput) (result QuoteResult, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("quote analyzer panicked: %v", r)
		}
	}()
	return n.analyzer.Analyze(ctx, in)
}
