package config

import (
	"fmt"
	"strings"
	"time"
)

// ResilienceConfig tunes the order event publisher: each publish is retried with
// exponential backoff, and the breaker stops publishing while the broker keeps failing.
type ResilienceConfig struct {
	Retry          RetryConfig          `koanf:"retry"`
	CircuitBreaker CircuitBreakerConfig `koanf:"circuitbreaker"`
}

type RetryConfig struct {
	MaxAttempts    uint          `koanf:"maxattempts"`
	InitialBackoff time.Duration `koanf:"initialbackoff"`
}

type CircuitBreakerConfig struct {
	ConsecutiveFailures uint32 `koanf:"consecutivefailures"`
	// ErrorRatePercent opens the breaker once this share of requests failed. 0 disables the rule.
	ErrorRatePercent int           `koanf:"errorratepercent"`
	OpenTimeout      time.Duration `koanf:"opentimeout"`
}

const (
	defaultPublishAttempts     = 3
	defaultPublishBackoff      = 100 * time.Millisecond
	defaultConsecutiveFailures = 5
	defaultBreakerOpenTimeout  = 30 * time.Second
)

func (c *ResilienceConfig) String() string {
	var b strings.Builder
	b.WriteString("\n--- Publisher resilience ---\n")
	b.WriteString(fmt.Sprintf("  retry: %d attempts, initial backoff %v\n", c.Retry.MaxAttempts, c.Retry.InitialBackoff))
	b.WriteString(fmt.Sprintf("  breaker: %d consecutive failures or %d%% errors, open for %v\n",
		c.CircuitBreaker.ConsecutiveFailures, c.CircuitBreaker.ErrorRatePercent, c.CircuitBreaker.OpenTimeout))
	return b.String()
}

// Validate fills unset values with defaults and rejects out of range ones.
func (c *ResilienceConfig) Validate() error {
	if c.Retry.MaxAttempts == 0 {
		c.Retry.MaxAttempts = defaultPublishAttempts
	}
	if c.Retry.InitialBackoff == 0 {
		c.Retry.InitialBackoff = defaultPublishBackoff
	}
	if c.CircuitBreaker.ConsecutiveFailures == 0 {
		c.CircuitBreaker.ConsecutiveFailures = defaultConsecutiveFailures
	}
	if c.CircuitBreaker.OpenTimeout == 0 {
		c.CircuitBreaker.OpenTimeout = defaultBreakerOpenTimeout
	}
	if c.Retry.InitialBackoff < 0 || c.CircuitBreaker.OpenTimeout < 0 {
		return fmt.Errorf("resilience durations must not be negative")
	}
	if c.CircuitBreaker.ErrorRatePercent < 0 || c.CircuitBreaker.ErrorRatePercent > 100 {
		return fmt.Errorf("circuitbreaker.errorratepercent must be between 0 and 100")
	}
	return nil
}
