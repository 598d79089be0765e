package ai

import (
	"context"
	"fmt"

	"google.golang.org/genai"

	"executive-analytics/utils"
)

// GeminiAnalyzer answers queries with a Gemini model.
type GeminiAnalyzer struct {
	client *genai.Client
	model  string
	logger *utils.Logger
}

func NewGeminiAnalyzer(ctx context.Context, apiKey, model string, logger *utils.Logger) (*GeminiAnalyzer, error) {
	if apiKey == "" {
		return nil, ErrNotConfigured
	}
	if model == "" {
		model = "gemini-2.0-flash"
	}
	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("ai: create genai client: %w", err)
	}
	return &GeminiAnalyzer{client: client, model: model, logger: logger}, nil
}

func (g *GeminiAnalyzer) Analyze(ctx context.Context, query, contextPayload string) Result {
	resp, err := g.client.Models.GenerateContent(ctx, g.model,
		genai.Text(userPrompt(contextPayload, query)),
		&genai.GenerateContentConfig{
			SystemInstruction: genai.NewContentFromText(systemPrompt, genai.RoleUser),
			Temperature:       genai.Ptr[float32](temperature),
			MaxOutputTokens:   maxTokens,
		},
	)
	if err != nil {
		g.logger.Warn("[ai] Gemini request failed: %v", err)
		return failure(query, fmt.Errorf("AI analysis error: %w", err), "")
	}
	return success(query, resp.Text())
}
