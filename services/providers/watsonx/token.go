package watsonx

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/upb/genos-ai/services"
	"github.com/upb/genos-ai/services/providers"
)

const (
	defaultIAMURL = "https://iam.cloud.ibm.com/identity/token"
	// tokens are refreshed this long before the IAM expiry
	refreshMargin = 60 * time.Second
)

// TokenCache holds an IAM bearer token shared across requests.
type TokenCache interface {
	Get(now time.Time) (string, bool)
	Set(token string, expiresAt time.Time)
}

// MemoryTokenCache is a process-local TokenCache
type MemoryTokenCache struct {
	mu        sync.Mutex
	token     string
	expiresAt time.Time
}

// NewMemoryTokenCache creates an empty token cache
func NewMemoryTokenCache() *MemoryTokenCache {
	return &MemoryTokenCache{}
}

// Get returns the cached token while it is still valid at now
func (c *MemoryTokenCache) Get(now time.Time) (string, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.token == "" || !now.Before(c.expiresAt) {
		return "", false
	}
	return c.token, true
}

// Set stores a token with its effective expiry
func (c *MemoryTokenCache) Set(token string, expiresAt time.Time) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.token = token
	c.expiresAt = expiresAt
}

// TokenSource exchanges the watsonx API key for IAM bearer tokens.
type TokenSource struct {
	apiKey     string
	iamURL     string
	cache      TokenCache
	httpClient *http.Client
	now        func() time.Time

	// serializes refreshes so concurrent callers do not all hit IAM
	refreshMu sync.Mutex
}

// NewTokenSource creates a token source backed by cache
func NewTokenSource(apiKey, iamURL string, cache TokenCache, httpClient *http.Client) *TokenSource {
	if iamURL == "" {
		iamURL = defaultIAMURL
	}
	if cache == nil {
		cache = NewMemoryTokenCache()
	}
	return &TokenSource{
		apiKey:     apiKey,
		iamURL:     iamURL,
		cache:      cache,
		httpClient: httpClient,
		now:        time.Now,
	}
}

// Token returns a cached token, fetching a new one when expired.
func (s *TokenSource) Token(ctx context.Context) (string, error) {
	if s.apiKey == "" {
		return "", services.NewConfigurationError(apiKeyEnvSetting)
	}

	if token, ok := s.cache.Get(s.now()); ok {
		return token, nil
	}

	s.refreshMu.Lock()
	defer s.refreshMu.Unlock()

	if token, ok := s.cache.Get(s.now()); ok {
		return token, nil
	}

	form := url.Values{}
	form.Set("grant_type", "urn:ibm:params:oauth:grant-type:apikey")
	form.Set("apikey", s.apiKey)

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.iamURL, strings.NewReader(form.Encode()))
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.Header.Set("Accept", "application/json")

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return "", services.NewGenerationError(providerName, 0, "", fmt.Errorf("iam token: %w", err))
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", services.NewGenerationError(providerName, resp.StatusCode, "", fmt.Errorf("iam token: %w", err))
	}
	if resp.StatusCode != http.StatusOK {
		return "", services.NewGenerationError(providerName, resp.StatusCode,
			providers.Truncate(string(body), errorBodyLimit), fmt.Errorf("iam token request rejected"))
	}

	var parsed struct {
		AccessToken string `json:"access_token"`
		ExpiresIn   int    `json:"expires_in"`
	}
	if err := json.Unmarshal(body, &parsed); err != nil {
		return "", services.NewGenerationError(providerName, resp.StatusCode, "", fmt.Errorf("iam token: %w", err))
	}

	expiresAt := s.now().Add(time.Duration(parsed.ExpiresIn)*time.Second - refreshMargin)
	s.cache.Set(parsed.AccessToken, expiresAt)

	return parsed.AccessToken, nil
}
