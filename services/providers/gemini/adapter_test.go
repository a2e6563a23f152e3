package gemini

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/upb/genos-ai/models"
	"github.com/upb/genos-ai/services"
	"github.com/upb/genos-ai/services/providers"
)

func newRequest() models.GenerationRequest {
	return models.GenerationRequest{
		Prompt:      "Hashtags para padaria",
		ContentType: models.ContentTypeHashtags,
		BrandPackage: models.BrandIdentityPackage{
			Industry:       "Alimentação",
			TargetLanguage: "pt-BR",
		},
	}
}

func TestAdapter_Generate_Success(t *testing.T) {
	var body map[string]interface{}
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.True(t, strings.HasSuffix(r.URL.Path, "/models/gemini-2.0-flash:generateContent"), r.URL.Path)
		raw, _ := io.ReadAll(r.Body)
		require.NoError(t, json.Unmarshal(raw, &body))

		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"candidates":[{"content":{"parts":[{"text":"#pao #padaria"}],"role":"model"}}],"usageMetadata":{"promptTokenCount":30,"candidatesTokenCount":12,"totalTokenCount":42}}`))
	}))
	defer server.Close()

	adapter := NewAdapter(providers.ProviderConfig{APIKey: "g-key", BaseURL: server.URL})
	resp, err := adapter.Generate(context.Background(), newRequest())
	require.NoError(t, err)

	assert.Equal(t, "#pao #padaria", resp.Content)
	assert.Equal(t, 42, resp.TokensUsed)
	assert.Equal(t, "gemini-2.0-flash", resp.Model)
	assert.NotEmpty(t, resp.ThreadID)

	raw, _ := json.Marshal(body["systemInstruction"])
	assert.Contains(t, string(raw), "INDÚSTRIA: Alimentação")
}

func TestAdapter_Generate_BackendError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusServiceUnavailable)
		w.Write([]byte(`{"error":{"code":503,"message":"overloaded","status":"UNAVAILABLE"}}`))
	}))
	defer server.Close()

	adapter := NewAdapter(providers.ProviderConfig{APIKey: "g-key", BaseURL: server.URL})
	_, err := adapter.Generate(context.Background(), newRequest())
	require.Error(t, err)

	genErr, ok := services.AsGenerationError(err)
	require.True(t, ok, "expected GenerationError, got %v", err)
	assert.Equal(t, "gemini", genErr.Provider)
	assert.True(t, services.IsExternalError(err))
}

func TestAdapter_Generate_MissingKey(t *testing.T) {
	adapter := NewAdapter(providers.ProviderConfig{})
	assert.False(t, adapter.Configured())

	_, err := adapter.Generate(context.Background(), newRequest())
	assert.True(t, services.IsConfigurationError(err))
	assert.Equal(t, "GOOGLE_GEMINI_API_KEY", services.GetErrorDetails(err)["setting"])
}

func TestAdapter_NameAndModels(t *testing.T) {
	adapter := NewAdapter(providers.ProviderConfig{Model: "gemini-2.5-pro"})
	assert.Equal(t, models.ProviderGemini, adapter.Name())
	assert.Equal(t, []string{"gemini-2.5-pro"}, adapter.ListModels())
}
