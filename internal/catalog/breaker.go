package catalog

import (
	"sync"
	"time"

	"github.com/rs/zerolog"
)

// BreakerState represents the state of the catalog load circuit breaker.
type BreakerState int

const (
	// BreakerClosed allows loads to pass through.
	BreakerClosed BreakerState = iota

	// BreakerOpen rejects loads immediately.
	BreakerOpen

	// BreakerHalfOpen allows a limited number of probe loads.
	BreakerHalfOpen
)

func (s BreakerState) String() string {
	switch s {
	case BreakerClosed:
		return "closed"
	case BreakerOpen:
		return "open"
	case BreakerHalfOpen:
		return "half-open"
	default:
		return "unknown"
	}
}

// BreakerConfig holds circuit breaker settings for catalog snapshot loads.
type BreakerConfig struct {
	MaxFailures      int           `mapstructure:"max_failures"`
	ResetTimeout     time.Duration `mapstructure:"reset_timeout"`
	HalfOpenMaxCalls int           `mapstructure:"half_open_max_calls"`
}

// DefaultBreakerConfig returns the default breaker settings.
func DefaultBreakerConfig() BreakerConfig {
	return BreakerConfig{
		MaxFailures:      5,
		ResetTimeout:     30 * time.Second,
		HalfOpenMaxCalls: 3,
	}
}

// Breaker shields the database from load storms when snapshot loads keep
// failing. Stale snapshots stay servable while the breaker is open.
type Breaker struct {
	mu              sync.Mutex
	state           BreakerState
	failureCount    int
	successCount    int
	lastFailureTime time.Time
	config          BreakerConfig
	logger          zerolog.Logger
}

// NewBreaker creates a circuit breaker for catalog loads.
func NewBreaker(config BreakerConfig, logger zerolog.Logger) *Breaker {
	return &Breaker{
		state:  BreakerClosed,
		config: config,
		logger: logger,
	}
}

// Allow reports whether a load attempt may proceed.
func (b *Breaker) Allow() bool {
	b.mu.Lock()
	defer b.mu.Unlock()

	switch b.state {
	case BreakerClosed:
		return true

	case BreakerOpen:
		if time.Since(b.lastFailureTime) >= b.config.ResetTimeout {
			b.state = BreakerHalfOpen
			b.successCount = 0
			b.logger.Info().Msg("Catalog breaker transitioning to half-open")
			return true
		}
		return false

	case BreakerHalfOpen:
		return b.successCount < b.config.HalfOpenMaxCalls

	default:
		return false
	}
}

// RecordSuccess records a successful load.
func (b *Breaker) RecordSuccess() {
	b.mu.Lock()
	defer b.mu.Unlock()

	switch b.state {
	case BreakerClosed:
		b.failureCount = 0

	case BreakerHalfOpen:
		b.successCount++
		if b.successCount >= b.config.HalfOpenMaxCalls {
			b.state = BreakerClosed
			b.failureCount = 0
			b.successCount = 0
			b.logger.Info().Msg("Catalog breaker closing after recovery")
		}
	}
}

// RecordFailure records a failed load.
func (b *Breaker) RecordFailure(err error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.failureCount++
	b.lastFailureTime = time.Now()

	b.logger.Error().
		Err(err).
		Int("failureCount", b.failureCount).
		Msg("Catalog breaker recording failure")

	switch b.state {
	case BreakerClosed:
		if b.failureCount >= b.config.MaxFailures {
			b.state = BreakerOpen
			b.logger.Warn().
				Dur("resetTimeout", b.config.ResetTimeout).
				Msg("Catalog breaker opening after repeated load failures")
		}

	case BreakerHalfOpen:
		b.state = BreakerOpen
		b.successCount = 0
		b.logger.Warn().Msg("Catalog breaker re-opening after failed probe")
	}
}

// State returns the current breaker state.
func (b *Breaker) State() BreakerState {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.state
}

// Reset forces the breaker back to closed.
func (b *Breaker) Reset() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.state = BreakerClosed
	b.failureCount = 0
	b.successCount = 0
	b.logger.Info().Msg("Catalog breaker manually reset")
}
