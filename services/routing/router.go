package routing

import (
	"github.com/upb/genos-ai/models"
	"github.com/upb/genos-ai/services/providers/watsonx"
)

// GeneralProvider handles every content type outside the fast table and is
// the fallback target.
const GeneralProvider = models.ProviderClaude

// fastContentTypes route to the lightweight provider.
var fastContentTypes = map[models.ContentType]models.Provider{
	models.ContentTypeHashtags: models.ProviderGemini,
	models.ContentTypeTitle:    models.ProviderGemini,
	models.ContentTypeCaption:  models.ProviderGemini,
}

// longFormContentTypes get the long-context Granite model when Granite is
// explicitly preferred.
var longFormContentTypes = map[models.ContentType]bool{
	models.ContentTypeBlog:  true,
	models.ContentTypeEmail: true,
}

// Decision is a routing result: the provider and, for Granite, the model.
type Decision struct {
	Provider models.Provider `json:"provider"`
	Model    string          `json:"model,omitempty"`
}

// Select maps a content type to its provider. It is a pure table lookup.
// Prompt length is not considered.
func Select(contentType models.ContentType) models.Provider {
	if p, ok := fastContentTypes[contentType]; ok {
		return p
	}
	return GeneralProvider
}

// Route applies the static table, or the caller's preferred provider when given.
func Route(contentType models.ContentType, preferred models.Provider) Decision {
	if preferred == "" {
		return Decision{Provider: Select(contentType)}
	}

	if preferred == models.ProviderGranite {
		model := watsonx.GraniteInstruct8B
		if longFormContentTypes[contentType] {
			model = watsonx.GraniteDense128K
		}
		return Decision{Provider: preferred, Model: model}
	}

	return Decision{Provider: preferred}
}
