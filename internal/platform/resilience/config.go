package resilience

import (
	"fmt"
	"time"
)

// CircuitBreakerConfig is the env-facing shape of a breaker. The source sheet
// and the live score API each get their own.
type CircuitBreakerConfig struct {
	Enabled          bool
	FailureThreshold int
	OpenTimeout      time.Duration
	HalfOpenMaxReq   int
}

var defaultCircuitBreaker = CircuitBreakerConfig{
	Enabled:          true,
	FailureThreshold: 5,
	OpenTimeout:      15 * time.Second,
	HalfOpenMaxReq:   2,
}

func DefaultCircuitBreakerConfig() CircuitBreakerConfig {
	return defaultCircuitBreaker
}

// Validate rejects values the breaker would otherwise silently clamp.
func (c CircuitBreakerConfig) Validate() error {
	switch {
	case c.FailureThreshold < 1:
		return fmt.Errorf("failure threshold must be >= 1, got %d", c.FailureThreshold)
	case c.OpenTimeout <= 0:
		return fmt.Errorf("open timeout must be > 0, got %s", c.OpenTimeout)
	case c.HalfOpenMaxReq < 1:
		return fmt.Errorf("half-open max requests must be >= 1, got %d", c.HalfOpenMaxReq)
	}
	return nil
}

// withDefaults fills zero fields, so a partially built config still yields a
// working breaker.
func (c CircuitBreakerConfig) withDefaults() CircuitBreakerConfig {
	if c.FailureThreshold < 1 {
		c.FailureThreshold = defaultCircuitBreaker.FailureThreshold
	}
	if c.OpenTimeout <= 0 {
		c.OpenTimeout = defaultCircuitBreaker.OpenTimeout
	}
	if c.HalfOpenMaxReq < 1 {
		c.HalfOpenMaxReq = defaultCircuitBreaker.HalfOpenMaxReq
	}
	return c
}
