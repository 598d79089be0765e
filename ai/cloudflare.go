package ai

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"executive-analytics/utils"
)

const defaultCloudflareBaseURL = "https://api.cloudflare.com/client/v4"

type cfMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type cfRequest struct {
	Messages    []cfMessage `json:"messages"`
	MaxTokens   int         `json:"max_tokens"`
	Temperature float64     `json:"temperature"`
}

type cfResponse struct {
	Success bool `json:"success"`
	Result  struct {
		Response string `json:"response"`
	} `json:"result"`
}

// CloudflareAnalyzer calls a Workers AI text model over REST.
type CloudflareAnalyzer struct {
	baseURL    string
	accountID  string
	model      string
	token      string
	httpClient *http.Client
	logger     *utils.Logger
}

func NewCloudflareAnalyzer(token, accountID, model string, timeout time.Duration, logger *utils.Logger) *CloudflareAnalyzer {
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &CloudflareAnalyzer{
		baseURL:    defaultCloudflareBaseURL,
		accountID:  accountID,
		model:      model,
		token:      token,
		httpClient: &http.Client{Timeout: timeout},
		logger:     logger,
	}
}

// WithBaseURL points the client at another API root.
func (c *CloudflareAnalyzer) WithBaseURL(u string) *CloudflareAnalyzer {
	c.baseURL = u
	return c
}

func (c *CloudflareAnalyzer) endpoint() string {
	return fmt.Sprintf("%s/accounts/%s/ai/run/%s", c.baseURL, c.accountID, c.model)
}

func (c *CloudflareAnalyzer) Analyze(ctx context.Context, query, contextPayload string) Result {
	if c.token == "" {
		return failure(query, ErrNotConfigured, "Set CLOUDFLARE_API_TOKEN")
	}

	body, err := json.Marshal(cfRequest{
		Messages: []cfMessage{
			{Role: "system", Content: systemPrompt},
			{Role: "user", Content: userPrompt(contextPayload, query)},
		},
		MaxTokens:   maxTokens,
		Temperature: temperature,
	})
	if err != nil {
		return failure(query, fmt.Errorf("AI analysis error: %w", err), "")
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint(), bytes.NewReader(body))
	if err != nil {
		return failure(query, fmt.Errorf("AI analysis error: %w", err), "")
	}
	req.Header.Set("Authorization", "Bearer "+c.token)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.logger.Warn("[ai] Cloudflare request failed: %v", err)
		return failure(query, fmt.Errorf("AI analysis error: %w", err), "")
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return failure(query, fmt.Errorf("AI analysis error: %w", err), "")
	}
	if resp.StatusCode != http.StatusOK {
		c.logger.Warn("[ai] Cloudflare returned %d", resp.StatusCode)
		return failure(query, fmt.Errorf("AI analysis failed: %d", resp.StatusCode), string(raw))
	}

	var parsed cfResponse
	if err := json.Unmarshal(raw, &parsed); err != nil {
		return failure(query, fmt.Errorf("AI analysis error: %w", err), string(raw))
	}
	return success(query, parsed.Result.Response)
}
