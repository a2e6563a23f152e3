package anthropic

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/upb/genos-ai/models"
	"github.com/upb/genos-ai/services"
	"github.com/upb/genos-ai/services/prompt"
	"github.com/upb/genos-ai/services/providers"
)

const (
	defaultBaseURL   = "https://api.anthropic.com"
	defaultModel     = "claude-sonnet-4-6"
	apiVersion       = "2023-06-01"
	maxTokens        = 4096
	defaultTimeout   = 90 * time.Second
	errorBodyLimit   = 2048
	apiKeyEnvSetting = "ANTHROPIC_API_KEY"
)

// Adapter implements providers.Provider for the Anthropic Messages API
type Adapter struct {
	config     providers.ProviderConfig
	httpClient *http.Client
}

// NewAdapter creates a new Claude adapter
func NewAdapter(config providers.ProviderConfig) *Adapter {
	if config.BaseURL == "" {
		config.BaseURL = defaultBaseURL
	}
	if config.Model == "" {
		config.Model = defaultModel
	}
	config.BaseURL = strings.TrimRight(config.BaseURL, "/")

	return &Adapter{
		config:     config,
		httpClient: config.Client(defaultTimeout),
	}
}

// Name returns the provider name
func (a *Adapter) Name() models.Provider {
	return models.ProviderClaude
}

// Configured reports whether an API key is present
func (a *Adapter) Configured() bool {
	return a.config.APIKey != ""
}

// ListModels returns the served model
func (a *Adapter) ListModels() []string {
	return []string{a.config.Model}
}

// Generate performs one Messages API call. There is no retry.
func (a *Adapter) Generate(ctx context.Context, req models.GenerationRequest) (*models.GenerationResponse, error) {
	if !a.Configured() {
		return nil, services.NewConfigurationError(apiKeyEnvSetting)
	}

	body, err := json.Marshal(messagesRequest{
		Model:     a.config.Model,
		MaxTokens: maxTokens,
		System:    prompt.BuildSystemPrompt(req),
		Messages:  []message{{Role: "user", Content: req.Prompt}},
	})
	if err != nil {
		return nil, services.NewGenerationError(string(a.Name()), 0, "", fmt.Errorf("marshal request: %w", err))
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, a.config.BaseURL+"/v1/messages", bytes.NewReader(body))
	if err != nil {
		return nil, services.NewGenerationError(string(a.Name()), 0, "", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("x-api-key", a.config.APIKey)
	httpReq.Header.Set("anthropic-version", apiVersion)

	httpResp, err := a.httpClient.Do(httpReq)
	if err != nil {
		return nil, services.NewGenerationError(string(a.Name()), 0, "", err)
	}
	defer httpResp.Body.Close()

	respBody, err := io.ReadAll(httpResp.Body)
	if err != nil {
		return nil, services.NewGenerationError(string(a.Name()), httpResp.StatusCode, "", err)
	}

	if httpResp.StatusCode < 200 || httpResp.StatusCode >= 300 {
		return nil, services.NewGenerationError(string(a.Name()), httpResp.StatusCode,
			providers.Truncate(string(respBody), errorBodyLimit), nil)
	}

	var parsed messagesResponse
	if err := json.Unmarshal(respBody, &parsed); err != nil {
		return nil, services.NewGenerationError(string(a.Name()), httpResp.StatusCode, "", fmt.Errorf("decode response: %w", err))
	}

	return providers.NewResponse(req, parsed.firstText(), a.config.Model,
		parsed.Usage.InputTokens+parsed.Usage.OutputTokens), nil
}

// Anthropic-specific request/response types

type messagesRequest struct {
	Model     string    `json:"model"`
	MaxTokens int       `json:"max_tokens"`
	System    string    `json:"system"`
	Messages  []message `json:"messages"`
}

type message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type messagesResponse struct {
	ID      string         `json:"id"`
	Model   string         `json:"model"`
	Content []contentBlock `json:"content"`
	Usage   struct {
		InputTokens  int `json:"input_tokens"`
		OutputTokens int `json:"output_tokens"`
	} `json:"usage"`
}

type contentBlock struct {
	Type string `json:"type"`
	Text string `json:"text"`
}

// firstText returns the first text block, or "" when there is none.
func (r messagesResponse) firstText() string {
	for _, block := range r.Content {
		if block.Type == "text" {
			return block.Text
		}
	}
	return ""
}
