package providers

import (
	"context"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/upb/genos-ai/models"
)

// Provider is a generation backend that turns a request into content.
type Provider interface {
	// Name returns the provider name (claude, gemini or granite)
	Name() models.Provider

	// Generate performs a single generation request. The system instruction
	// is built from the request's brand package and options.
	Generate(ctx context.Context, req models.GenerationRequest) (*models.GenerationResponse, error)

	// Configured reports whether the credentials needed by Generate are present
	Configured() bool

	// ListModels returns the models this provider can serve
	ListModels() []string
}

// ProviderConfig holds common configuration for providers
type ProviderConfig struct {
	// APIKey for authentication
	APIKey string

	// BaseURL for the API (optional override)
	BaseURL string

	// Model overrides the provider's default model
	Model string

	// Timeout for requests
	Timeout time.Duration

	// HTTPClient overrides the client built from Timeout
	HTTPClient *http.Client
}

// Client returns the configured HTTP client, or one built from Timeout.
func (c ProviderConfig) Client(defaultTimeout time.Duration) *http.Client {
	if c.HTTPClient != nil {
		return c.HTTPClient
	}
	timeout := c.Timeout
	if timeout == 0 {
		timeout = defaultTimeout
	}
	return &http.Client{Timeout: timeout}
}

// NewResponse assembles a canonical response. A nil thread ID is replaced
// with a fresh one.
func NewResponse(req models.GenerationRequest, content, model string, tokensUsed int) *models.GenerationResponse {
	threadID := req.ThreadID
	if threadID == uuid.Nil {
		threadID = uuid.New()
	}
	return &models.GenerationResponse{
		Content:     content,
		Model:       model,
		ThreadID:    threadID,
		TokensUsed:  tokensUsed,
		GeneratedAt: time.Now().UTC(),
	}
}

// Truncate shortens s to at most n bytes for logging and error bodies.
func Truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n]
}
