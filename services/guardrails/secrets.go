package guardrails

import (
	"regexp"
	"sort"
	"strings"

	"github.com/upb/genos-ai/services"
)

// SecretType represents different types of secrets that can be detected
type SecretType string

const (
	SecretTypeAWSKey       SecretType = "aws_key"
	SecretTypeGCPKey       SecretType = "gcp_key"
	SecretTypePrivateKey   SecretType = "private_key"
	SecretTypeJWT          SecretType = "jwt"
	SecretTypeSlackToken   SecretType = "slack_token"
	SecretTypeGitHubToken  SecretType = "github_token"
	SecretTypeStripeKey    SecretType = "stripe_key"
	SecretTypeOpenAIKey    SecretType = "openai_key"
	SecretTypeAnthropicKey SecretType = "anthropic_key"
	SecretTypeAPIKey       SecretType = "api_key"
	SecretTypeDatabaseURL  SecretType = "database_url"
)

// SecretDetection represents a detected secret instance
type SecretDetection struct {
	Type     SecretType
	StartPos int
	EndPos   int
}

type secretPattern struct {
	secretType SecretType
	regex      *regexp.Regexp
}

var secretPatterns = []secretPattern{
	{SecretTypeAWSKey, regexp.MustCompile(`\bAKIA[0-9A-Z]{16}\b`)},
	{SecretTypeGCPKey, regexp.MustCompile(`\bAIza[0-9A-Za-z\-_]{35}\b`)},
	{SecretTypePrivateKey, regexp.MustCompile(`-----BEGIN\s+(?:RSA\s+|EC\s+|DSA\s+|OPENSSH\s+)?PRIVATE\s+KEY-----`)},
	{SecretTypeJWT, regexp.MustCompile(`\beyJ[A-Za-z0-9_\-]+\.eyJ[A-Za-z0-9_\-]+\.[A-Za-z0-9_\-]+\b`)},
	{SecretTypeSlackToken, regexp.MustCompile(`\bxox[baprs]-[A-Za-z0-9\-]{10,}\b`)},
	{SecretTypeGitHubToken, regexp.MustCompile(`\bgh[pousr]_[A-Za-z0-9]{36,}\b`)},
	{SecretTypeStripeKey, regexp.MustCompile(`\b(?:sk|rk)_(?:live|test)_[0-9a-zA-Z]{24,}\b`)},
	{SecretTypeAnthropicKey, regexp.MustCompile(`\bsk-ant-[A-Za-z0-9\-_]{32,}`)},
	{SecretTypeOpenAIKey, regexp.MustCompile(`\bsk-(?:proj-)?[A-Za-z0-9]{32,}\b`)},
	{SecretTypeAPIKey, regexp.MustCompile(`(?i)\bapi[_\-]?key\s*[:=]\s*['"]?[A-Za-z0-9_\-]{20,}`)},
	{SecretTypeDatabaseURL, regexp.MustCompile(`(?i)\b(?:postgres|postgresql|mysql|mongodb|redis)://[^\s'"]+:[^\s'"]+@[^\s'"]+`)},
}

// DetectSecrets finds credential-like strings. Overlapping matches are
// reported once, under the first pattern that found them.
func DetectSecrets(text string) []SecretDetection {
	var detections []SecretDetection

	for _, p := range secretPatterns {
		for _, loc := range p.regex.FindAllStringIndex(text, -1) {
			if overlaps(detections, loc[0], loc[1]) {
				continue
			}
			detections = append(detections, SecretDetection{
				Type:     p.secretType,
				StartPos: loc[0],
				EndPos:   loc[1],
			})
		}
	}

	sort.Slice(detections, func(i, j int) bool {
		return detections[i].StartPos < detections[j].StartPos
	})
	return detections
}

func overlaps(detections []SecretDetection, start, end int) bool {
	for _, d := range detections {
		if start < d.EndPos && d.StartPos < end {
			return true
		}
	}
	return false
}

// CheckInput rejects prompts that carry credentials or a high confidence
// injection before they are sent to any provider.
func CheckInput(prompt string) error {
	detections := DetectSecrets(prompt)
	if len(detections) == 0 {
		return checkInjection(prompt)
	}

	seen := map[SecretType]bool{}
	var types []string
	for _, d := range detections {
		if !seen[d.Type] {
			seen[d.Type] = true
			types = append(types, string(d.Type))
		}
	}

	return services.NewDomainError(services.ErrorTypeValidation, "prompt contains a credential", services.ErrSecretInPrompt).
		WithDetail("secret_types", strings.Join(types, ","))
}
