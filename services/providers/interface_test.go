package providers

import (
	"context"
	"errors"
	"net/http"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/upb/genos-ai/models"
)

// MockProvider is a test implementation of the Provider interface
type MockProvider struct {
	name       models.Provider
	configured bool
	content    string
	err        error
}

func NewMockProvider(name models.Provider) *MockProvider {
	return &MockProvider{name: name, configured: true, content: "mock content"}
}

func (m *MockProvider) Name() models.Provider { return m.name }

func (m *MockProvider) Generate(ctx context.Context, req models.GenerationRequest) (*models.GenerationResponse, error) {
	if m.err != nil {
		return nil, m.err
	}
	return NewResponse(req, m.content, "mock-model", 10), nil
}

func (m *MockProvider) Configured() bool { return m.configured }

func (m *MockProvider) ListModels() []string { return []string{"mock-model"} }

func TestRegistry_RegisterAndGet(t *testing.T) {
	r := NewRegistry()
	claude := NewMockProvider(models.ProviderClaude)

	if err := r.Register(claude); err != nil {
		t.Fatalf("Register() error = %v", err)
	}

	got, err := r.Get(models.ProviderClaude)
	if err != nil {
		t.Fatalf("Get() error = %v", err)
	}
	if got != claude {
		t.Error("Get() returned a different provider")
	}

	if _, err := r.Get(models.ProviderGemini); !errors.Is(err, ErrProviderNotFound) {
		t.Errorf("Get(gemini) error = %v, want ErrProviderNotFound", err)
	}
}

func TestRegistry_RegisterRejects(t *testing.T) {
	r := NewRegistry()

	if err := r.Register(nil); err == nil {
		t.Error("Register(nil) should fail")
	}
	if err := r.Register(NewMockProvider("openai")); err == nil {
		t.Error("Register(openai) should fail for an unknown name")
	}

	_ = r.Register(NewMockProvider(models.ProviderGemini))
	if err := r.Register(NewMockProvider(models.ProviderGemini)); !errors.Is(err, ErrProviderAlreadyRegistered) {
		t.Errorf("duplicate Register() error = %v, want ErrProviderAlreadyRegistered", err)
	}
}

func TestRegistry_Names(t *testing.T) {
	r := NewRegistry()
	_ = r.Register(NewMockProvider(models.ProviderGranite))
	_ = r.Register(NewMockProvider(models.ProviderClaude))
	_ = r.Register(NewMockProvider(models.ProviderGemini))

	names := r.Names()
	want := []models.Provider{models.ProviderClaude, models.ProviderGemini, models.ProviderGranite}
	if len(names) != len(want) {
		t.Fatalf("Names() = %v, want %v", names, want)
	}
	for i := range want {
		if names[i] != want[i] {
			t.Errorf("Names()[%d] = %s, want %s", i, names[i], want[i])
		}
	}
}

func TestNewResponse_ThreadID(t *testing.T) {
	existing := uuid.New()

	resp := NewResponse(models.GenerationRequest{ThreadID: existing}, "hi", "m", 3)
	if resp.ThreadID != existing {
		t.Errorf("ThreadID = %s, want %s", resp.ThreadID, existing)
	}

	resp = NewResponse(models.GenerationRequest{}, "hi", "m", 3)
	if resp.ThreadID == uuid.Nil {
		t.Error("ThreadID should be generated when absent")
	}
	if resp.GeneratedAt.IsZero() {
		t.Error("GeneratedAt should be set")
	}
}

func TestProviderConfig_Client(t *testing.T) {
	custom := &http.Client{}
	if got := (ProviderConfig{HTTPClient: custom}).Client(time.Second); got != custom {
		t.Error("Client() should return the injected client")
	}
	if got := (ProviderConfig{}).Client(5 * time.Second); got.Timeout != 5*time.Second {
		t.Errorf("Client().Timeout = %v, want 5s", got.Timeout)
	}
	if got := (ProviderConfig{Timeout: time.Second}).Client(5 * time.Second); got.Timeout != time.Second {
		t.Errorf("Client().Timeout = %v, want 1s", got.Timeout)
	}
}

func TestTruncate(t *testing.T) {
	if got := Truncate("abcdef", 3); got != "abc" {
		t.Errorf("Truncate() = %q", got)
	}
	if got := Truncate("ab", 3); got != "ab" {
		t.Errorf("Truncate() = %q", got)
	}
}
