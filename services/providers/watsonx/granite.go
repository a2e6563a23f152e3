package watsonx

import (
	"context"
	"fmt"
	"strings"

	"github.com/upb/genos-ai/models"
	"github.com/upb/genos-ai/services/prompt"
	"github.com/upb/genos-ai/services/providers"
)

// Granite model identifiers
const (
	GraniteInstruct8B   = "ibm/granite-3.1-8b-instruct"
	GraniteInstruct2B   = "ibm/granite-3.1-2b-instruct"
	GraniteDense128K    = "ibm/granite-3.1-dense-128k"
	DefaultGraniteModel = GraniteInstruct8B
)

var graniteModels = []string{GraniteInstruct8B, GraniteInstruct2B, GraniteDense128K}

// GraniteProvider implements providers.Provider on watsonx text generation
type GraniteProvider struct {
	client *Client
}

// NewGraniteProvider creates a Granite provider on a shared watsonx client
func NewGraniteProvider(client *Client) *GraniteProvider {
	return &GraniteProvider{client: client}
}

// Name returns the provider name
func (p *GraniteProvider) Name() models.Provider {
	return models.ProviderGranite
}

// Configured reports whether watsonx credentials are present
func (p *GraniteProvider) Configured() bool {
	return p.client.Configured()
}

// ListModels returns the supported Granite models
func (p *GraniteProvider) ListModels() []string {
	out := make([]string, len(graniteModels))
	copy(out, graniteModels)
	return out
}

// Generate runs a Granite chat-template completion. req.Model selects the
// model; empty means the 8B instruct model.
func (p *GraniteProvider) Generate(ctx context.Context, req models.GenerationRequest) (*models.GenerationResponse, error) {
	if err := p.client.checkConfig(); err != nil {
		return nil, err
	}

	model := req.Model
	if model == "" {
		model = DefaultGraniteModel
	}

	var out generationResponse
	if err := p.client.post(ctx, "/ml/v1/text/generation", generationRequest{
		ModelID:    model,
		Input:      ChatTemplate(prompt.BuildSystemPrompt(req), req.Prompt),
		Parameters: parametersFor(model),
		ProjectID:  p.client.config.ProjectID,
	}, &out); err != nil {
		return nil, err
	}

	if len(out.Results) == 0 {
		return providers.NewResponse(req, "", model, 0), nil
	}

	r := out.Results[0]
	return providers.NewResponse(req, strings.TrimSpace(r.GeneratedText), model,
		r.InputTokenCount+r.GeneratedTokenCount), nil
}

// ChatTemplate renders the Granite instruct prompt format.
func ChatTemplate(system, user string) string {
	return fmt.Sprintf("<|system|>\n%s\n<|user|>\n%s\n<|assistant|>\n", system, user)
}

func parametersFor(model string) generationParameters {
	maxNew := 4096
	if model == GraniteDense128K {
		maxNew = 8192
	}
	return generationParameters{
		DecodingMethod:    "sample",
		MaxNewTokens:      maxNew,
		Temperature:       0.7,
		TopP:              0.9,
		TopK:              50,
		RepetitionPenalty: 1.1,
		StopSequences:     []string{"<|endoftext|>", "<|user|>"},
	}
}

type generationRequest struct {
	ModelID    string               `json:"model_id"`
	Input      string               `json:"input"`
	Parameters generationParameters `json:"parameters"`
	ProjectID  string               `json:"project_id"`
}

type generationParameters struct {
	DecodingMethod    string   `json:"decoding_method"`
	MaxNewTokens      int      `json:"max_new_tokens"`
	Temperature       float64  `json:"temperature"`
	TopP              float64  `json:"top_p"`
	TopK              int      `json:"top_k"`
	RepetitionPenalty float64  `json:"repetition_penalty"`
	StopSequences     []string `json:"stop_sequences"`
}

type generationResponse struct {
	ModelID string `json:"model_id"`
	Results []struct {
		GeneratedText       string `json:"generated_text"`
		InputTokenCount     int    `json:"input_token_count"`
		GeneratedTokenCount int    `json:"generated_token_count"`
		StopReason          string `json:"stop_reason"`
	} `json:"results"`
}
