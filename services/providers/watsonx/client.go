package watsonx

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/upb/genos-ai/services"
	"github.com/upb/genos-ai/services/providers"
)

const (
	providerName      = "granite"
	apiVersion        = "2024-05-31"
	defaultBaseURL    = "https://us-south.ml.cloud.ibm.com"
	defaultTimeout    = 90 * time.Second
	errorBodyLimit    = 2048
	apiKeyEnvSetting  = "WATSONX_API_KEY"
	projectEnvSetting = "WATSONX_PROJECT_ID"
)

// Config holds watsonx.ai connection settings
type Config struct {
	APIKey         string
	ProjectID      string
	BaseURL        string
	IAMURL         string
	EmbeddingModel string
	Timeout        time.Duration
	HTTPClient     *http.Client
	TokenCache     TokenCache
}

// Client is the shared watsonx.ai transport used by both Granite generation
// and the embedding client.
type Client struct {
	config     Config
	httpClient *http.Client
	tokens     *TokenSource
}

// NewClient creates a watsonx.ai client
func NewClient(config Config) *Client {
	if config.BaseURL == "" {
		config.BaseURL = defaultBaseURL
	}
	config.BaseURL = strings.TrimRight(config.BaseURL, "/")
	if config.EmbeddingModel == "" {
		config.EmbeddingModel = EmbeddingModel
	}

	httpClient := providers.ProviderConfig{Timeout: config.Timeout, HTTPClient: config.HTTPClient}.Client(defaultTimeout)

	return &Client{
		config:     config,
		httpClient: httpClient,
		tokens:     NewTokenSource(config.APIKey, config.IAMURL, config.TokenCache, httpClient),
	}
}

// Configured reports whether the API key and project are present
func (c *Client) Configured() bool {
	return c.config.APIKey != "" && c.config.ProjectID != ""
}

func (c *Client) checkConfig() error {
	if c.config.APIKey == "" {
		return services.NewConfigurationError(apiKeyEnvSetting)
	}
	if c.config.ProjectID == "" {
		return services.NewConfigurationError(projectEnvSetting)
	}
	return nil
}

// post sends an authenticated JSON request to a versioned ml/v1 endpoint and
// decodes the response into out.
func (c *Client) post(ctx context.Context, path string, payload, out interface{}) error {
	token, err := c.tokens.Token(ctx)
	if err != nil {
		return err
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return services.NewGenerationError(providerName, 0, "", fmt.Errorf("marshal request: %w", err))
	}

	endpoint := fmt.Sprintf("%s%s?version=%s", c.config.BaseURL, path, apiVersion)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(body))
	if err != nil {
		return services.NewGenerationError(providerName, 0, "", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	req.Header.Set("Authorization", "Bearer "+token)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return services.NewGenerationError(providerName, 0, "", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return services.NewGenerationError(providerName, resp.StatusCode, "", err)
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return services.NewGenerationError(providerName, resp.StatusCode,
			providers.Truncate(string(respBody), errorBodyLimit), nil)
	}

	if err := json.Unmarshal(respBody, out); err != nil {
		return services.NewGenerationError(providerName, resp.StatusCode, "", fmt.Errorf("decode response: %w", err))
	}
	return nil
}
