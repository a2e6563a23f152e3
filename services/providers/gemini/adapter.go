package gemini

import (
	"context"
	"errors"
	"strings"
	"sync"
	"time"

	"github.com/upb/genos-ai/models"
	"github.com/upb/genos-ai/services"
	"github.com/upb/genos-ai/services/prompt"
	"github.com/upb/genos-ai/services/providers"
	"google.golang.org/genai"
)

const (
	defaultModel     = "gemini-2.0-flash"
	defaultTimeout   = 60 * time.Second
	errorBodyLimit   = 2048
	apiKeyEnvSetting = "GOOGLE_GEMINI_API_KEY"
)

// Adapter implements providers.Provider on the Gemini API through the genai SDK.
// The SDK client is created on first use.
type Adapter struct {
	config providers.ProviderConfig

	mu     sync.Mutex
	client *genai.Client
}

// NewAdapter creates a new Gemini adapter
func NewAdapter(config providers.ProviderConfig) *Adapter {
	if config.Model == "" {
		config.Model = defaultModel
	}
	return &Adapter{config: config}
}

// Name returns the provider name
func (a *Adapter) Name() models.Provider {
	return models.ProviderGemini
}

// Configured reports whether an API key is present
func (a *Adapter) Configured() bool {
	return a.config.APIKey != ""
}

// ListModels returns the served model
func (a *Adapter) ListModels() []string {
	return []string{a.config.Model}
}

// Generate performs one GenerateContent call with the system instruction
// built from the request.
func (a *Adapter) Generate(ctx context.Context, req models.GenerationRequest) (*models.GenerationResponse, error) {
	if !a.Configured() {
		return nil, services.NewConfigurationError(apiKeyEnvSetting)
	}

	client, err := a.getClient(ctx)
	if err != nil {
		return nil, services.NewGenerationError(string(a.Name()), 0, "", err)
	}

	result, err := client.Models.GenerateContent(ctx,
		a.config.Model,
		genai.Text(req.Prompt),
		&genai.GenerateContentConfig{
			SystemInstruction: &genai.Content{Parts: []*genai.Part{{Text: prompt.BuildSystemPrompt(req)}}},
		},
	)
	if err != nil {
		return nil, a.wrapError(err)
	}

	tokens := 0
	if result != nil && result.UsageMetadata != nil {
		tokens = int(result.UsageMetadata.PromptTokenCount) + int(result.UsageMetadata.CandidatesTokenCount)
	}

	text := ""
	if result != nil {
		text = result.Text()
	}

	return providers.NewResponse(req, text, a.config.Model, tokens), nil
}

func (a *Adapter) getClient(ctx context.Context) (*genai.Client, error) {
	a.mu.Lock()
	defer a.mu.Unlock()

	if a.client != nil {
		return a.client, nil
	}

	cfg := &genai.ClientConfig{
		APIKey:     a.config.APIKey,
		Backend:    genai.BackendGeminiAPI,
		HTTPClient: a.config.Client(defaultTimeout),
	}
	if a.config.BaseURL != "" {
		cfg.HTTPOptions = genai.HTTPOptions{BaseURL: strings.TrimRight(a.config.BaseURL, "/") + "/"}
	}

	client, err := genai.NewClient(ctx, cfg)
	if err != nil {
		return nil, err
	}
	a.client = client
	return client, nil
}

// wrapError keeps the backend status when the SDK reports one.
func (a *Adapter) wrapError(err error) error {
	var apiErr genai.APIError
	if errors.As(err, &apiErr) {
		return services.NewGenerationError(string(a.Name()), apiErr.Code,
			providers.Truncate(apiErr.Message, errorBodyLimit), err)
	}
	return services.NewGenerationError(string(a.Name()), 0, "", err)
}
