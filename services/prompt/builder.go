package prompt

import (
	"encoding/json"
	"strings"

	"github.com/upb/genos-ai/models"
)

// Section markers and fixed lines of the system instruction.
const (
	roleHeader       = "Você é um assistente especializado em criação de conteúdo de marketing digital."
	identityMarker   = "--- IDENTIDADE DA MARCA ---"
	constraintMarker = "--- RESTRIÇÕES ---"
	rulesMarker      = "--- REGRAS GERAIS ---"
)

var closingRules = []string{
	"- Gere conteúdo original e criativo",
	"- Mantenha consistência com a voz da marca",
	"- Adapte o formato para a plataforma alvo",
	"- Nunca mencione nomes de agências, ferramentas internas ou plataformas de gestão",
	"- Foque apenas na marca do cliente",
}

// platformGuidance is keyed by lower-case platform name.
var platformGuidance = map[string]string{
	"instagram": "Limite de 2200 caracteres. Use emojis e hashtags.",
	"twitter":   "Limite de 280 caracteres. Seja conciso e impactante.",
	"linkedin":  "Tom profissional. Até 3000 caracteres. Use formatação com bullets.",
	"facebook":  "Até 63206 caracteres. Incentive engajamento e compartilhamento.",
	"blog":      "Formato longo. Use headings, subheadings e SEO keywords.",
	"email":     "Assunto impactante. Corpo conciso. CTA claro.",
}

// platformCharLimits are the hard ceilings stated in platformGuidance.
var platformCharLimits = map[string]int{
	"instagram": 2200,
	"twitter":   280,
	"linkedin":  3000,
	"facebook":  63206,
}

// PlatformGuidance returns the formatting guidance line for a platform.
func PlatformGuidance(platform string) (string, bool) {
	g, ok := platformGuidance[normalizePlatform(platform)]
	return g, ok
}

// PlatformCharLimit returns the character ceiling of a short-form platform, or 0.
func PlatformCharLimit(platform string) int {
	return platformCharLimits[normalizePlatform(platform)]
}

// BuildSystemPrompt turns a generation request into the system instruction.
// It is pure: the same request always yields the same string.
func BuildSystemPrompt(req models.GenerationRequest) string {
	brand := req.BrandPackage

	lang := req.Language
	if lang == "" {
		lang = brand.TargetLanguage
	}
	if lang == "" {
		lang = models.DefaultLanguage
	}

	sections := []string{
		roleHeader,
		"Idioma de resposta: " + lang,
		"",
	}

	if identity := brandIdentity(brand); identity != "" {
		sections = append(sections, identityMarker, identity, "")
	}

	if constraints := brandConstraints(brand); constraints != "" {
		sections = append(sections, constraintMarker, constraints, "")
	}

	sections = append(sections, "TIPO DE CONTEÚDO: "+string(req.ContentType))

	if guidance, ok := PlatformGuidance(req.Platform); ok {
		sections = append(sections, "PLATAFORMA: "+normalizePlatform(req.Platform), guidance)
	}

	if req.Tone != "" {
		sections = append(sections, "TOM: "+req.Tone)
	}

	sections = append(sections, "", rulesMarker)
	sections = append(sections, closingRules...)

	return strings.Join(sections, "\n")
}

func brandIdentity(b models.BrandIdentityPackage) string {
	var parts []string

	if b.BrandVoice != "" {
		parts = append(parts, "VOZ DA MARCA: "+b.BrandVoice)
	}
	if b.TargetAudience != "" {
		parts = append(parts, "PÚBLICO-ALVO: "+b.TargetAudience)
	}
	if b.Industry != "" {
		parts = append(parts, "INDÚSTRIA: "+b.Industry)
	}
	if len(b.ContentPillars) > 0 {
		parts = append(parts, "PILARES DE CONTEÚDO: "+strings.Join(b.ContentPillars, ", "))
	}
	if len(b.RegionalExpertise) > 0 {
		// map keys are sorted by encoding/json, so the output is stable
		if data, err := json.Marshal(b.RegionalExpertise); err == nil {
			parts = append(parts, "EXPERTISE REGIONAL: "+string(data))
		}
	}

	return strings.Join(parts, "\n")
}

func brandConstraints(b models.BrandIdentityPackage) string {
	var parts []string

	if words := dedupe(b.ForbiddenWords); len(words) > 0 {
		parts = append(parts, "PALAVRAS PROIBIDAS (nunca use): "+strings.Join(words, ", "))
	}
	if elements := dedupe(b.MandatoryElements); len(elements) > 0 {
		parts = append(parts, "ELEMENTOS OBRIGATÓRIOS (sempre inclua): "+strings.Join(elements, ", "))
	}

	return strings.Join(parts, "\n")
}

// dedupe keeps the first occurrence of each entry, compared case-insensitively.
func dedupe(in []string) []string {
	seen := make(map[string]struct{}, len(in))
	out := make([]string, 0, len(in))
	for _, s := range in {
		key := strings.ToLower(strings.TrimSpace(s))
		if key == "" {
			continue
		}
		if _, ok := seen[key]; ok {
			continue
		}
		seen[key] = struct{}{}
		out = append(out, strings.TrimSpace(s))
	}
	return out
}

func normalizePlatform(p string) string {
	return strings.ToLower(strings.TrimSpace(p))
}
