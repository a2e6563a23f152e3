package guardrails

import (
	"fmt"
	"regexp"
	"strings"
	"unicode/utf8"
)

// FlagType classifies a guardrail finding
type FlagType string

const (
	FlagPII             FlagType = "pii"
	FlagToxicity        FlagType = "toxicity"
	FlagBrandDrift      FlagType = "brand_drift"
	FlagForbiddenWord   FlagType = "forbidden_word"
	FlagLengthViolation FlagType = "length_violation"
)

// Severity of a finding
type Severity string

const (
	SeverityLow      Severity = "low"
	SeverityMedium   Severity = "medium"
	SeverityHigh     Severity = "high"
	SeverityCritical Severity = "critical"
)

var severityWeights = map[Severity]int{
	SeverityLow:      5,
	SeverityMedium:   15,
	SeverityHigh:     30,
	SeverityCritical: 50,
}

// PassingScore is the minimum score of a passing result
const PassingScore = 40

// Position is a byte range in the checked content
type Position struct {
	Start int `json:"start"`
	End   int `json:"end"`
}

// Flag is a single guardrail finding
type Flag struct {
	Type     FlagType  `json:"type"`
	Severity Severity  `json:"severity"`
	Detail   string    `json:"detail"`
	Position *Position `json:"position,omitempty"`
}

// Result is the verdict on generated content. SanitizedContent is only set
// when a critical flag was raised.
type Result struct {
	Passed           bool   `json:"passed"`
	Flags            []Flag `json:"flags"`
	Score            int    `json:"score"`
	SanitizedContent string `json:"sanitized_content,omitempty"`
}

// Constraints are the brand rules checked against the output
type Constraints struct {
	ForbiddenWords    []string
	MandatoryElements []string
	// MaxLength in characters; 0 disables the check
	MaxLength int
}

type piiPattern struct {
	name  string
	regex *regexp.Regexp
}

// Brazilian and US identifiers, checked in this order.
var piiPatterns = []piiPattern{
	{"CPF", regexp.MustCompile(`\b\d{3}\.?\d{3}\.?\d{3}-?\d{2}\b`)},
	{"CNPJ", regexp.MustCompile(`\b\d{2}\.?\d{3}\.?\d{3}/?\d{4}-?\d{2}\b`)},
	{"Email", regexp.MustCompile(`(?i)\b[A-Z0-9._%+\-]+@[A-Z0-9.\-]+\.[A-Z]{2,}\b`)},
	{"Phone", regexp.MustCompile(`\b(?:\+55\s?)?(?:\(?\d{2}\)?\s?)?\d{4,5}-?\d{4}\b`)},
	{"Credit Card", regexp.MustCompile(`\b\d{4}[\s-]?\d{4}[\s-]?\d{4}[\s-]?\d{4}\b`)},
	{"SSN", regexp.MustCompile(`\b\d{3}-\d{2}-\d{4}\b`)},
}

var toxicityPatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?i)\b(idiota|estúpido|imbecil|retardado|lixo humano)\b`),
}

// VerifyOutput runs every output check and scores the content. It never
// modifies content; redactions go to SanitizedContent.
func VerifyOutput(content string, c Constraints) Result {
	flags := []Flag{}
	sanitized := content

	for _, p := range piiPatterns {
		for _, loc := range p.regex.FindAllStringIndex(content, -1) {
			match := content[loc[0]:loc[1]]
			flags = append(flags, Flag{
				Type:     FlagPII,
				Severity: SeverityCritical,
				Detail:   p.name + " detected",
				Position: &Position{Start: loc[0], End: loc[1]},
			})
			sanitized = strings.Replace(sanitized, match, "["+p.name+"_REDACTED]", 1)
		}
	}

	for _, p := range toxicityPatterns {
		if p.MatchString(content) {
			flags = append(flags, Flag{
				Type:     FlagToxicity,
				Severity: SeverityHigh,
				Detail:   "Potentially toxic/abusive language detected",
			})
		}
	}

	lower := strings.ToLower(content)

	for _, word := range c.ForbiddenWords {
		w := strings.ToLower(word)
		if w == "" {
			continue
		}
		if idx := strings.Index(lower, w); idx >= 0 {
			flags = append(flags, Flag{
				Type:     FlagForbiddenWord,
				Severity: SeverityMedium,
				Detail:   fmt.Sprintf("Forbidden word: %q", word),
				Position: &Position{Start: idx, End: idx + len(w)},
			})
		}
	}

	if length := utf8.RuneCountInString(content); c.MaxLength > 0 && length > c.MaxLength {
		flags = append(flags, Flag{
			Type:     FlagLengthViolation,
			Severity: SeverityLow,
			Detail:   fmt.Sprintf("Content exceeds max length: %d/%d", length, c.MaxLength),
		})
	}

	if len(c.MandatoryElements) > 0 {
		var missing []string
		for _, el := range c.MandatoryElements {
			if !strings.Contains(lower, strings.ToLower(el)) {
				missing = append(missing, el)
			}
		}
		// more than half missing
		if 2*len(missing) > len(c.MandatoryElements) {
			flags = append(flags, Flag{
				Type:     FlagBrandDrift,
				Severity: SeverityMedium,
				Detail:   "Missing mandatory brand elements: " + strings.Join(missing, ", "),
			})
		}
	}

	penalty, critical := 0, false
	for _, f := range flags {
		penalty += severityWeights[f.Severity]
		if f.Severity == SeverityCritical {
			critical = true
		}
	}
	score := 100 - penalty
	if score < 0 {
		score = 0
	}

	result := Result{
		Passed: !critical && score >= PassingScore,
		Flags:  flags,
		Score:  score,
	}
	if critical {
		result.SanitizedContent = sanitized
	}
	return result
}
