package guardrails

import (
	"regexp"
	"sort"
	"strings"

	"github.com/upb/genos-ai/services"
)

// InjectionType classifies a prompt injection attempt.
type InjectionType string

const (
	InjectionTypeSystemPromptLeak    InjectionType = "system_prompt_leak"
	InjectionTypeInstructionOverride InjectionType = "instruction_override"
	InjectionTypeRoleManipulation    InjectionType = "role_manipulation"
	InjectionTypeJailbreak           InjectionType = "jailbreak"
)

// BlockingConfidence is the confidence at which CheckInput rejects a prompt.
const BlockingConfidence = 0.9

// InjectionDetection is one matched injection pattern. Positions are byte offsets.
type InjectionDetection struct {
	Type       InjectionType
	Confidence float64
	StartPos   int
	EndPos     int
}

type injectionPattern struct {
	injectionType InjectionType
	confidence    float64
	regex         *regexp.Regexp
}

// Marketing prompts legitimately ask for personas ("fale como uma nutricionista"),
// so role manipulation is reported below the blocking confidence.
var injectionPatterns = []injectionPattern{
	{InjectionTypeInstructionOverride, 0.95, regexp.MustCompile(`(?i)\b(?:ignore|disregard|forget)\s+(?:all\s+)?(?:the\s+)?(?:previous|above|prior|earlier)\s+(?:instructions?|prompts?|rules)`)},
	{InjectionTypeInstructionOverride, 0.95, regexp.MustCompile(`(?i)\b(?:ignore|desconsidere|esqueça)\s+(?:todas\s+)?as\s+instruções\s+(?:anteriores|acima)`)},
	{InjectionTypeInstructionOverride, 0.9, regexp.MustCompile(`(?i)\boverride\s+(?:all|previous|system)\s+(?:instructions?|rules|settings?)`)},
	{InjectionTypeSystemPromptLeak, 0.9, regexp.MustCompile(`(?i)\b(?:show|reveal|print|repeat)\s+(?:me\s+)?(?:your|the)\s+(?:system|original|initial|hidden)\s+(?:prompt|instructions?)`)},
	{InjectionTypeSystemPromptLeak, 0.9, regexp.MustCompile(`(?i)\b(?:mostre|revele|repita)\s+(?:o\s+seu|seu|o)\s+prompt\s+(?:de\s+sistema|original|inicial)`)},
	{InjectionTypeJailbreak, 0.9, regexp.MustCompile(`(?i)\b(?:DAN|developer|unrestricted)\s+mode\b`)},
	{InjectionTypeRoleManipulation, 0.6, regexp.MustCompile(`(?i)\bfrom\s+now\s+on,?\s+you\s+(?:are|will)`)},
	{InjectionTypeRoleManipulation, 0.6, regexp.MustCompile(`(?i)\ba\s+partir\s+de\s+agora,?\s+você\s+(?:é|será)`)},
}

// DetectInjections reports every injection pattern found in the prompt,
// ordered by position.
func DetectInjections(text string) []InjectionDetection {
	var detections []InjectionDetection
	for _, p := range injectionPatterns {
		for _, loc := range p.regex.FindAllStringIndex(text, -1) {
			detections = append(detections, InjectionDetection{
				Type:       p.injectionType,
				Confidence: p.confidence,
				StartPos:   loc[0],
				EndPos:     loc[1],
			})
		}
	}

	sort.SliceStable(detections, func(i, j int) bool {
		return detections[i].StartPos < detections[j].StartPos
	})
	return detections
}

func checkInjection(prompt string) error {
	seen := map[InjectionType]bool{}
	var types []string
	for _, d := range DetectInjections(prompt) {
		if d.Confidence < BlockingConfidence || seen[d.Type] {
			continue
		}
		seen[d.Type] = true
		types = append(types, string(d.Type))
	}
	if len(types) == 0 {
		return nil
	}

	return services.NewDomainError(services.ErrorTypeValidation, "prompt contains an instruction override", services.ErrInvalidInput).
		WithDetail("injection_types", strings.Join(types, ","))
}
