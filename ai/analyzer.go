package ai

import (
	"context"
	"errors"
	"fmt"
	"time"

	"executive-analytics/config"
	"executive-analytics/utils"
)

// ErrNotConfigured is reported when no provider credentials are set.
var ErrNotConfigured = errors.New("ai analyzer not configured")

const (
	systemPrompt = "You are an executive data analyst for the American Red Cross. " +
		"Analyze data and provide strategic insights for C-level executives. " +
		"Be concise, specific, and action-oriented."

	maxTokens   = 500
	temperature = 0.5

	noAnalysis = "No analysis available"
)

// Result is the outcome of one natural-language query. Failures are carried
// in Error rather than returned, so callers can relay them as-is.
type Result struct {
	Success   bool      `json:"success"`
	Analysis  string    `json:"analysis,omitempty"`
	Query     string    `json:"query"`
	Timestamp time.Time `json:"timestamp"`
	Error     string    `json:"error,omitempty"`
	Details   string    `json:"details,omitempty"`
}

// Analyzer answers a query against a serialized KPI context.
type Analyzer interface {
	Analyze(ctx context.Context, query, contextPayload string) Result
}

func userPrompt(contextPayload, query string) string {
	return fmt.Sprintf("Data Context:\n%s\n\nQuery: %s\n\nProvide executive-level analysis and recommendations.", contextPayload, query)
}

func success(query, analysis string) Result {
	if analysis == "" {
		analysis = noAnalysis
	}
	return Result{Success: true, Analysis: analysis, Query: query, Timestamp: time.Now()}
}

func failure(query string, err error, details string) Result {
	return Result{Query: query, Timestamp: time.Now(), Error: err.Error(), Details: details}
}

// Disabled is the analyzer used when no provider is configured.
type Disabled struct {
	Hint string
}

func (d Disabled) Analyze(_ context.Context, query, _ string) Result {
	return failure(query, ErrNotConfigured, d.Hint)
}

// FromConfig picks the provider named by AI_PROVIDER. Missing credentials or a
// client that cannot be built yield a Disabled analyzer.
func FromConfig(ctx context.Context, cfg *config.Config, logger *utils.Logger) Analyzer {
	switch cfg.AIProvider {
	case "cloudflare":
		if cfg.CloudflareAPIToken == "" || cfg.CloudflareAccountID == "" {
			logger.Warn("[ai] Cloudflare credentials missing, analysis disabled")
			return Disabled{Hint: "Set CLOUDFLARE_API_TOKEN and CLOUDFLARE_ACCOUNT_ID"}
		}
		logger.Info("[ai] Using Cloudflare Workers AI model %s", cfg.CloudflareModel)
		return NewCloudflareAnalyzer(cfg.CloudflareAPIToken, cfg.CloudflareAccountID, cfg.CloudflareModel, cfg.AITimeout, logger)
	case "gemini":
		g, err := NewGeminiAnalyzer(ctx, cfg.GeminiAPIKey, cfg.GeminiModel, logger)
		if err != nil {
			logger.Warn("[ai] Gemini unavailable: %v", err)
			return Disabled{Hint: "Set GEMINI_API_KEY"}
		}
		logger.Info("[ai] Using Gemini model %s", cfg.GeminiModel)
		return g
	}
	logger.Info("[ai] No AI provider configured")
	return Disabled{Hint: "Set AI_PROVIDER to cloudflare or gemini"}
}
