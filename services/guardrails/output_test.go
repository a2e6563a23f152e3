package guardrails

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestVerifyOutput_CleanContent(t *testing.T) {
	res := VerifyOutput("Conheça a nova coleção #acme", Constraints{MandatoryElements: []string{"#acme"}})

	assert.True(t, res.Passed)
	assert.Equal(t, 100, res.Score)
	assert.Empty(t, res.Flags)
	assert.NotNil(t, res.Flags)
	assert.Empty(t, res.SanitizedContent)
}

func TestVerifyOutput_CPFRedacted(t *testing.T) {
	content := "Fale com João, CPF 123.456.789-09, hoje."
	res := VerifyOutput(content, Constraints{})

	require.Len(t, res.Flags, 1)
	f := res.Flags[0]
	assert.Equal(t, FlagPII, f.Type)
	assert.Equal(t, SeverityCritical, f.Severity)
	assert.Equal(t, "CPF detected", f.Detail)
	require.NotNil(t, f.Position)
	assert.Equal(t, "123.456.789-09", content[f.Position.Start:f.Position.End])

	assert.False(t, res.Passed)
	assert.Equal(t, 50, res.Score)
	assert.Equal(t, "Fale com João, CPF [CPF_REDACTED], hoje.", res.SanitizedContent)
}

func TestVerifyOutput_EmailRedacted(t *testing.T) {
	res := VerifyOutput("Escreva para contato@acme.com.br", Constraints{})

	require.Len(t, res.Flags, 1)
	assert.Equal(t, "Email detected", res.Flags[0].Detail)
	assert.Equal(t, "Escreva para [Email_REDACTED]", res.SanitizedContent)
	assert.False(t, res.Passed)
}

func TestVerifyOutput_SSNDetected(t *testing.T) {
	res := VerifyOutput("ssn 078-05-1120", Constraints{})

	var details []string
	for _, f := range res.Flags {
		details = append(details, f.Detail)
	}
	assert.Contains(t, details, "SSN detected")
	assert.Contains(t, res.SanitizedContent, "[SSN_REDACTED]")
}

func TestVerifyOutput_Toxicity(t *testing.T) {
	res := VerifyOutput("Só um IDIOTA não compraria", Constraints{})

	require.Len(t, res.Flags, 1)
	assert.Equal(t, FlagToxicity, res.Flags[0].Type)
	assert.Equal(t, SeverityHigh, res.Flags[0].Severity)
	assert.Equal(t, "Potentially toxic/abusive language detected", res.Flags[0].Detail)
	assert.Nil(t, res.Flags[0].Position)
	assert.Equal(t, 70, res.Score)
	assert.True(t, res.Passed)
	assert.Empty(t, res.SanitizedContent)
}

func TestVerifyOutput_ForbiddenWords(t *testing.T) {
	content := "Produto Barato e bom"
	res := VerifyOutput(content, Constraints{ForbiddenWords: []string{"barato", "ruim", ""}})

	require.Len(t, res.Flags, 1)
	f := res.Flags[0]
	assert.Equal(t, FlagForbiddenWord, f.Type)
	assert.Equal(t, SeverityMedium, f.Severity)
	assert.Equal(t, `Forbidden word: "barato"`, f.Detail)
	require.NotNil(t, f.Position)
	assert.Equal(t, "Barato", content[f.Position.Start:f.Position.End])
	assert.Equal(t, 85, res.Score)
}

func TestVerifyOutput_Length(t *testing.T) {
	t.Run("counts characters not bytes", func(t *testing.T) {
		res := VerifyOutput("ação", Constraints{MaxLength: 4})
		assert.Empty(t, res.Flags)
	})

	t.Run("over the limit", func(t *testing.T) {
		res := VerifyOutput(strings.Repeat("a", 300), Constraints{MaxLength: 280})
		require.Len(t, res.Flags, 1)
		assert.Equal(t, FlagLengthViolation, res.Flags[0].Type)
		assert.Equal(t, SeverityLow, res.Flags[0].Severity)
		assert.Equal(t, "Content exceeds max length: 300/280", res.Flags[0].Detail)
		assert.Equal(t, 95, res.Score)
		assert.True(t, res.Passed)
	})

	t.Run("zero disables", func(t *testing.T) {
		res := VerifyOutput(strings.Repeat("a", 5000), Constraints{})
		assert.Empty(t, res.Flags)
	})
}

func TestVerifyOutput_BrandDrift(t *testing.T) {
	tests := []struct {
		name      string
		content   string
		elements  []string
		wantDrift bool
		wantMsg   string
	}{
		{"all present", "#acme Acme Store link", []string{"#acme", "acme store", "link"}, false, ""},
		{"half missing", "#acme link", []string{"#acme", "link", "cta", "promo"}, false, ""},
		{"most missing", "#ACME only", []string{"#acme", "link", "cta"}, true, "Missing mandatory brand elements: link, cta"},
		{"none configured", "anything", nil, false, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res := VerifyOutput(tt.content, Constraints{MandatoryElements: tt.elements})
			if !tt.wantDrift {
				assert.Empty(t, res.Flags)
				return
			}
			require.Len(t, res.Flags, 1)
			assert.Equal(t, FlagBrandDrift, res.Flags[0].Type)
			assert.Equal(t, SeverityMedium, res.Flags[0].Severity)
			assert.Equal(t, tt.wantMsg, res.Flags[0].Detail)
		})
	}
}

func TestVerifyOutput_ScoreFloorAndThreshold(t *testing.T) {
	words := []string{"um", "dois", "tres", "quatro", "cinco", "seis", "sete"}
	content := strings.Join(words, " ")

	res := VerifyOutput(content, Constraints{ForbiddenWords: words[:4]})
	assert.Equal(t, 40, res.Score)
	assert.True(t, res.Passed)

	res = VerifyOutput(content, Constraints{ForbiddenWords: words[:5]})
	assert.Equal(t, 25, res.Score)
	assert.False(t, res.Passed)

	res = VerifyOutput(content, Constraints{ForbiddenWords: words})
	assert.Equal(t, 0, res.Score)
	assert.False(t, res.Passed)
}

func TestVerifyOutput_DoesNotModifyInput(t *testing.T) {
	content := "email: a@b.io"
	res := VerifyOutput(content, Constraints{})
	assert.Equal(t, "email: a@b.io", content)
	assert.NotEqual(t, content, res.SanitizedContent)
}
