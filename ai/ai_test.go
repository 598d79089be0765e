package ai

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"
	"unicode/utf8"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"executive-analytics/config"
	"executive-analytics/models"
	"executive-analytics/utils"
)

func TestBuildContextTruncatesByRunes(t *testing.T) {
	snap := &models.KpiSnapshot{
		RunID: "run-1",
		Notes: []string{strings.Repeat("é", 3000)},
	}

	full := BuildContext(snap, 1_000_000)
	assert.True(t, strings.HasPrefix(full, "{\n  \"run_id\": \"run-1\""))

	cut := BuildContext(snap, 0)
	assert.Equal(t, DefaultContextBudget, utf8.RuneCountInString(cut))
	assert.True(t, utf8.ValidString(cut))
	assert.True(t, strings.HasPrefix(full, cut))
}

func TestBuildContextShortPayloadUnchanged(t *testing.T) {
	snap := &models.KpiSnapshot{RunID: "x"}
	out := BuildContext(snap, DefaultContextBudget)
	assert.Less(t, utf8.RuneCountInString(out), DefaultContextBudget)

	var back map[string]any
	require.NoError(t, json.Unmarshal([]byte(out), &back))
	assert.Equal(t, "x", back["run_id"])
}

func TestCloudflareAnalyze(t *testing.T) {
	var got cfRequest
	var path, auth string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		path = r.URL.Path
		auth = r.Header.Get("Authorization")
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"success":true,"result":{"response":"Focus on retention."}}`))
	}))
	defer srv.Close()

	c := NewCloudflareAnalyzer("tok", "acct", "@cf/meta/llama-2-7b-chat-int8", time.Second, utils.NewNopLogger()).WithBaseURL(srv.URL)
	res := c.Analyze(context.Background(), "Why is retention low?", `{"a":1}`)

	assert.True(t, res.Success)
	assert.Equal(t, "Focus on retention.", res.Analysis)
	assert.Equal(t, "Why is retention low?", res.Query)
	assert.Empty(t, res.Error)

	assert.Equal(t, "/accounts/acct/ai/run/@cf/meta/llama-2-7b-chat-int8", path)
	assert.Equal(t, "Bearer tok", auth)
	assert.Equal(t, maxTokens, got.MaxTokens)
	assert.InDelta(t, 0.5, got.Temperature, 1e-9)
	require.Len(t, got.Messages, 2)
	assert.Equal(t, "system", got.Messages[0].Role)
	assert.Equal(t, systemPrompt, got.Messages[0].Content)
	assert.Equal(t, "Data Context:\n{\"a\":1}\n\nQuery: Why is retention low?\n\nProvide executive-level analysis and recommendations.", got.Messages[1].Content)
}

func TestCloudflareEmptyResponseFallsBack(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"success":true,"result":{}}`))
	}))
	defer srv.Close()

	c := NewCloudflareAnalyzer("tok", "acct", "m", time.Second, utils.NewNopLogger()).WithBaseURL(srv.URL)
	res := c.Analyze(context.Background(), "q", "{}")
	assert.True(t, res.Success)
	assert.Equal(t, noAnalysis, res.Analysis)
}

func TestCloudflareHTTPFailure(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "quota exceeded", http.StatusTooManyRequests)
	}))
	defer srv.Close()

	c := NewCloudflareAnalyzer("tok", "acct", "m", time.Second, utils.NewNopLogger()).WithBaseURL(srv.URL)
	res := c.Analyze(context.Background(), "q", "{}")
	assert.False(t, res.Success)
	assert.Equal(t, "AI analysis failed: 429", res.Error)
	assert.Contains(t, res.Details, "quota exceeded")
}

func TestCloudflareWithoutToken(t *testing.T) {
	c := NewCloudflareAnalyzer("", "acct", "m", 0, utils.NewNopLogger())
	res := c.Analyze(context.Background(), "q", "{}")
	assert.False(t, res.Success)
	assert.Equal(t, ErrNotConfigured.Error(), res.Error)
}

func TestGeminiRequiresKey(t *testing.T) {
	_, err := NewGeminiAnalyzer(context.Background(), "", "", utils.NewNopLogger())
	assert.ErrorIs(t, err, ErrNotConfigured)
}

func TestFromConfig(t *testing.T) {
	logger := utils.NewNopLogger()
	ctx := context.Background()

	a := FromConfig(ctx, &config.Config{AIProvider: "none"}, logger)
	assert.IsType(t, Disabled{}, a)

	a = FromConfig(ctx, &config.Config{AIProvider: "cloudflare"}, logger)
	assert.IsType(t, Disabled{}, a)
	res := a.Analyze(ctx, "q", "")
	assert.False(t, res.Success)
	assert.Equal(t, ErrNotConfigured.Error(), res.Error)
	assert.NotEmpty(t, res.Details)

	a = FromConfig(ctx, &config.Config{AIProvider: "cloudflare", CloudflareAPIToken: "t", CloudflareAccountID: "a"}, logger)
	assert.IsType(t, &CloudflareAnalyzer{}, a)

	a = FromConfig(ctx, &config.Config{AIProvider: "gemini"}, logger)
	assert.IsType(t, Disabled{}, a)
}
