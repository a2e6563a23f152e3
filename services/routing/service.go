package routing

import (
	"context"
	"errors"
	"fmt"

	"github.com/sony/gobreaker"
	"github.com/upb/genos-ai/models"
	"github.com/upb/genos-ai/services"
	"github.com/upb/genos-ai/services/providers"
	"go.uber.org/zap"
)

// Result is the outcome of a routed generation. FallbackFrom is set when the
// routed provider failed and the general provider produced the content.
type Result struct {
	Response     *models.GenerationResponse
	Provider     models.Provider
	FallbackFrom models.Provider
}

// ProviderStatus describes a registered provider for the status endpoint
type ProviderStatus struct {
	Name       models.Provider `json:"name"`
	Configured bool            `json:"configured"`
	Circuit    string          `json:"circuit"`
	Models     []string        `json:"models"`
}

// RoutingService dispatches generation requests to providers behind
// per-provider circuit breakers.
type RoutingService struct {
	registry *providers.Registry
	breakers map[models.Provider]*gobreaker.CircuitBreaker
	logger   *zap.Logger
}

// NewRoutingService creates a routing service over every registered provider
func NewRoutingService(registry *providers.Registry, cfg BreakerConfig, logger *zap.Logger) *RoutingService {
	s := &RoutingService{
		registry: registry,
		breakers: make(map[models.Provider]*gobreaker.CircuitBreaker),
		logger:   logger,
	}
	for _, name := range registry.Names() {
		s.breakers[name] = newBreaker(string(name), cfg, logger)
	}
	return s
}

// Execute generates with the decided provider. When that provider is not the
// general provider and fails, the request is retried once on the general one.
func (s *RoutingService) Execute(ctx context.Context, decision Decision, req models.GenerationRequest) (*Result, error) {
	req.Model = decision.Model

	resp, err := s.call(ctx, decision.Provider, req)
	if err == nil {
		return &Result{Response: resp, Provider: decision.Provider}, nil
	}

	if decision.Provider == GeneralProvider || !fallbackEligible(ctx, err) {
		return nil, err
	}

	s.logger.Warn("provider failed, falling back",
		zap.String("provider", string(decision.Provider)),
		zap.String("fallback_provider", string(GeneralProvider)),
		zap.Error(err))

	req.Model = ""
	resp, fbErr := s.call(ctx, GeneralProvider, req)
	if fbErr != nil {
		return nil, fbErr
	}

	return &Result{Response: resp, Provider: GeneralProvider, FallbackFrom: decision.Provider}, nil
}

func (s *RoutingService) call(ctx context.Context, name models.Provider, req models.GenerationRequest) (*models.GenerationResponse, error) {
	provider, err := s.registry.Get(name)
	if err != nil {
		return nil, services.NewDomainError(services.ErrorTypeExternal,
			fmt.Sprintf("provider %s is not registered", name),
			fmt.Errorf("%w: %w", services.ErrProviderUnavailable, err))
	}

	// a missing credential is not a backend failure and does not trip the breaker
	if !provider.Configured() {
		return provider.Generate(ctx, req)
	}

	breaker, ok := s.breakers[name]
	if !ok {
		return provider.Generate(ctx, req)
	}

	out, err := breaker.Execute(func() (interface{}, error) {
		return provider.Generate(ctx, req)
	})
	if err != nil {
		if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
			return nil, services.NewDomainError(services.ErrorTypeExternal,
				fmt.Sprintf("provider %s circuit open", name),
				fmt.Errorf("%w: %w", services.ErrCircuitOpen, err)).
				WithDetail("provider", string(name))
		}
		return nil, err
	}
	return out.(*models.GenerationResponse), nil
}

// fallbackEligible reports whether a failure should be retried on the general
// provider. Caller cancellation is never retried.
func fallbackEligible(ctx context.Context, err error) bool {
	if ctx.Err() != nil {
		return false
	}
	if _, ok := services.AsGenerationError(err); ok {
		return true
	}
	return services.IsConfigurationError(err) || services.IsExternalError(err)
}

// CircuitState returns CLOSED, OPEN or HALF_OPEN for a provider
func (s *RoutingService) CircuitState(name models.Provider) string {
	breaker, ok := s.breakers[name]
	if !ok {
		return stateName(gobreaker.StateClosed)
	}
	return stateName(breaker.State())
}

// Status reports every registered provider
func (s *RoutingService) Status() []ProviderStatus {
	names := s.registry.Names()
	out := make([]ProviderStatus, 0, len(names))
	for _, name := range names {
		provider, err := s.registry.Get(name)
		if err != nil {
			continue
		}
		out = append(out, ProviderStatus{
			Name:       name,
			Configured: provider.Configured(),
			Circuit:    s.CircuitState(name),
			Models:     provider.ListModels(),
		})
	}
	return out
}
