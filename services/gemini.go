package services

import (
	"context"
	"fmt"
	"strings"
	"time"

	"golang.org/x/time/rate"
	"google.golang.org/genai"

	"sourcing/config"
	"sourcing/metrics"
)

// GeminiClient is a Completer backed by the Gemini API.
type GeminiClient struct {
	client  *genai.Client
	model   string
	timeout time.Duration
	schema  *genai.Schema
	limiter *rate.Limiter
	metrics *metrics.Manager
}

func NewGeminiClient(ctx context.Context, cfg *config.Config, m *metrics.Manager) (*GeminiClient, error) {
	if cfg.GeminiAPIKey == "" {
		return nil, fmt.Errorf("gemini_api_key is required when llm_provider is %q", config.ProviderGemini)
	}
	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  cfg.GeminiAPIKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create gemini client: %w", err)
	}
	return &GeminiClient{
		client:  client,
		model:   cfg.GeminiModel,
		timeout: cfg.LLMTimeout,
		limiter: newLimiter(cfg.LLMRequestsPerSecond),
		metrics: m,
	}, nil
}

// WithResponseSchema constrains every completion to schema.
func (g *GeminiClient) WithResponseSchema(schema *genai.Schema) *GeminiClient {
	g.schema = schema
	return g
}

func (g *GeminiClient) CompleteJSON(ctx context.Context, messages []Message) (string, error) {
	if err := g.limiter.Wait(ctx); err != nil {
		return "", fmt.Errorf("completion rate limit wait: %w", err)
	}
	if g.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, g.timeout)
		defer cancel()
	}
	start := time.Now()
	defer func() { g.metrics.RecordCompletion(config.ProviderGemini, time.Since(start)) }()

	var system []string
	contents := make([]*genai.Content, 0, len(messages))
	for _, msg := range messages {
		switch msg.Role {
		case RoleSystem:
			system = append(system, msg.Content)
		case RoleAssistant:
			contents = append(contents, genai.NewContentFromText(msg.Content, genai.RoleModel))
		default:
			contents = append(contents, genai.NewContentFromText(msg.Content, genai.RoleUser))
		}
	}

	cfg := &genai.GenerateContentConfig{
		ResponseMIMEType: "application/json",
		ResponseSchema:   g.schema,
		Temperature:      genai.Ptr(float32(0)),
	}
	if len(system) > 0 {
		cfg.SystemInstruction = genai.NewContentFromText(strings.Join(system, "\n\n"), "")
	}

	resp, err := g.client.Models.GenerateContent(ctx, g.model, contents, cfg)
	if err != nil {
		return "", fmt.Errorf("gemini generate content: %w", err)
	}
	if resp == nil || len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil || len(resp.Candidates[0].Content.Parts) == 0 {
		return "", fmt.Errorf("invalid response structure from gemini")
	}

	var sb strings.Builder
	for _, part := range resp.Candidates[0].Content.Parts {
		sb.WriteString(part.Text)
	}
	if strings.TrimSpace(sb.String()) == "" {
		return "", fmt.Errorf("gemini returned no content")
	}
	return sb.String(), nil
}

// QuoteResponseSchema is the structured output shape the quote analyzer asks for.
func QuoteResponseSchema() *genai.Schema {
	nullableNumber := func(desc string) *genai.Schema {
		return &genai.Schema{Type: genai.TypeNumber, Nullable: genai.Ptr(true), Description: desc}
	}
	nullableString := func(desc string) *genai.Schema {
		return &genai.Schema{Type: genai.TypeString, Nullable: genai.Ptr(true), Description: desc}
	}
	return &genai.Schema{
		Type: genai.TypeObject,
		Properties: map[string]*genai.Schema{
			"metrics": {
				Type: genai.TypeObject,
				Properties: map[string]*genai.Schema{
					"unit_price":     nullableNumber("Price per unit as a number"),
					"moq":            nullableNumber("Minimum order quantity in units"),
					"lead_time_days": nullableNumber("Production lead time in days"),
					"payment_terms":  nullableString("Payment terms, e.g. 30% deposit"),
					"currency":       nullableString("ISO 4217 currency code"),
				},
			},
			"score": {Type: genai.TypeInteger, Description: "Fit score from 0 to 100"},
			"flags": {
				Type:        genai.TypeArray,
				Description: "Short snake_case anomaly flags",
				Items:       &genai.Schema{Type: genai.TypeString},
			},
			"summary": {Type: genai.TypeString, Description: "One sentence for the buyer"},
		},
		Required: []string{"metrics", "score", "flags", "summary"},
	}
}
