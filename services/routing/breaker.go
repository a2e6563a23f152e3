package routing

import (
	"time"

	"github.com/sony/gobreaker"
	"go.uber.org/zap"
)

// Breaker thresholds
const (
	DefaultFailureThreshold  = 3
	DefaultOpenTimeout       = 30 * time.Second
	DefaultHalfOpenSuccesses = 2
)

// BreakerConfig configures the per-provider circuit breakers
type BreakerConfig struct {
	FailureThreshold  uint32
	OpenTimeout       time.Duration
	HalfOpenSuccesses uint32
}

// DefaultBreakerConfig returns the production thresholds
func DefaultBreakerConfig() BreakerConfig {
	return BreakerConfig{
		FailureThreshold:  DefaultFailureThreshold,
		OpenTimeout:       DefaultOpenTimeout,
		HalfOpenSuccesses: DefaultHalfOpenSuccesses,
	}
}

func newBreaker(name string, cfg BreakerConfig, logger *zap.Logger) *gobreaker.CircuitBreaker {
	return gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name: name,
		// half-open admits this many trial calls and closes after as many successes
		MaxRequests: cfg.HalfOpenSuccesses,
		Timeout:     cfg.OpenTimeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= cfg.FailureThreshold
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			logger.Warn("provider circuit state changed",
				zap.String("provider", name),
				zap.String("from", stateName(from)),
				zap.String("to", stateName(to)))
		},
	})
}

// stateName renders a breaker state as CLOSED, OPEN or HALF_OPEN.
func stateName(s gobreaker.State) string {
	switch s {
	case gobreaker.StateOpen:
		return "OPEN"
	case gobreaker.StateHalfOpen:
		return "HALF_OPEN"
	default:
		return "CLOSED"
	}
}
