// Package circuitbreaker guards the MongoDB repositories so a failing store
// answers fast with ErrCircuitOpen instead of holding cart requests.
package circuitbreaker

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/guttosm/bundle-service/internal/metrics"
)

// ErrCircuitOpen is returned without calling the protected function.
var ErrCircuitOpen = errors.New("circuit breaker is open")

// State is the breaker position. The numeric values are exported as the state gauge.
type State int

const (
	StateClosed State = iota
	StateOpen
	StateHalfOpen
)

func (s State) String() string {
	switch s {
	case StateClosed:
		return "closed"
	case StateOpen:
		return "open"
	case StateHalfOpen:
		return "half-open"
	default:
		return "unknown"
	}
}

// Config holds the breaker thresholds.
type Config struct {
	Name string
	// FailureThreshold consecutive failures open a closed breaker.
	FailureThreshold int
	// SuccessThreshold consecutive probe successes close a half-open breaker.
	SuccessThreshold int
	// Timeout is how long an open breaker rejects calls before probing.
	Timeout time.Duration
	// IsFailure decides which errors count against the store.
	// Nil counts everything except context cancellation.
	IsFailure func(error) bool
	// Now is the clock. Nil uses time.Now.
	Now func() time.Time
}

// DefaultConfig returns the thresholds used when configuration leaves them unset.
func DefaultConfig() Config {
	return Config{
		Name:             "circuit-breaker",
		FailureThreshold: 5,
		SuccessThreshold: 2,
		Timeout:          30 * time.Second,
	}
}

// Stats is a point-in-time view used by the readiness probe.
type Stats struct {
	Name         string
	State        string
	FailureCount int
	SuccessCount int
	Rejected     int64
	LastFailure  time.Time
	IsHealthy    bool
}

// CircuitBreaker is a consecutive-failure breaker. While half-open only one
// probe call runs at a time; concurrent callers are rejected.
type CircuitBreaker struct {
	cfg Config

	mu        sync.Mutex
	state     State
	failures  int
	successes int
	probing   bool
	openedAt  time.Time
	lastFail  time.Time
	rejected  int64
}

// New builds a closed breaker. Non-positive thresholds fall back to DefaultConfig.
func New(cfg Config) *CircuitBreaker {
	def := DefaultConfig()
	if cfg.Name == "" {
		cfg.Name = def.Name
	}
	if cfg.FailureThreshold <= 0 {
		cfg.FailureThreshold = def.FailureThreshold
	}
	if cfg.SuccessThreshold <= 0 {
		cfg.SuccessThreshold = def.SuccessThreshold
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = def.Timeout
	}
	if cfg.Now == nil {
		cfg.Now = time.Now
	}
	metrics.RecordCircuitBreakerState(cfg.Name, int(StateClosed))
	return &CircuitBreaker{cfg: cfg}
}

// NewNamed builds a breaker from configuration values.
func NewNamed(name string, failureThreshold, successThreshold int, timeout time.Duration) *CircuitBreaker {
	return New(Config{
		Name:             name,
		FailureThreshold: failureThreshold,
		SuccessThreshold: successThreshold,
		Timeout:          timeout,
	})
}

func (cb *CircuitBreaker) Name() string {
	return cb.cfg.Name
}

// Execute runs fn unless the breaker is open or ctx is already done.
// fn's error is returned unchanged.
func (cb *CircuitBreaker) Execute(ctx context.Context, fn func() error) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	probe, err := cb.admit()
	if err != nil {
		return err
	}

	err = fn()

	cb.mu.Lock()
	defer cb.mu.Unlock()
	if probe {
		cb.probing = false
	}
	if err != nil && cb.countsAsFailure(err) {
		cb.recordFailure()
		return err
	}
	if err == nil {
		cb.recordSuccess()
	}
	return err
}

// admit reports whether the call is the half-open probe, or ErrCircuitOpen.
func (cb *CircuitBreaker) admit() (bool, error) {
	cb.mu.Lock()
	defer cb.mu.Unlock()

	if cb.state == StateOpen && cb.cfg.Now().Sub(cb.openedAt) >= cb.cfg.Timeout {
		cb.transition(StateHalfOpen)
	}

	switch cb.state {
	case StateOpen:
		cb.rejected++
		return false, ErrCircuitOpen
	case StateHalfOpen:
		if cb.probing {
			cb.rejected++
			return false, ErrCircuitOpen
		}
		cb.probing = true
		return true, nil
	default:
		return false, nil
	}
}

func (cb *CircuitBreaker) countsAsFailure(err error) bool {
	if cb.cfg.IsFailure != nil {
		return cb.cfg.IsFailure(err)
	}
	return !errors.Is(err, context.Canceled)
}

// recordFailure must be called with mu held.
func (cb *CircuitBreaker) recordFailure() {
	cb.failures++
	cb.successes = 0
	cb.lastFail = cb.cfg.Now()

	if cb.state == StateHalfOpen || cb.failures >= cb.cfg.FailureThreshold {
		cb.transition(StateOpen)
	}
}

// recordSuccess must be called with mu held.
func (cb *CircuitBreaker) recordSuccess() {
	cb.failures = 0
	if cb.state != StateHalfOpen {
		return
	}
	cb.successes++
	if cb.successes >= cb.cfg.SuccessThreshold {
		cb.transition(StateClosed)
	}
}

// transition must be called with mu held.
func (cb *CircuitBreaker) transition(to State) {
	from := cb.state
	if from == to {
		return
	}
	cb.state = to
	cb.successes = 0
	if to == StateOpen {
		cb.openedAt = cb.cfg.Now()
	}
	metrics.RecordCircuitBreakerState(cb.cfg.Name, int(to))

	event := log.Info()
	if to == StateOpen {
		event = log.Warn()
	}
	event.Str("circuit_breaker", cb.cfg.Name).
		Str("from", from.String()).
		Str("to", to.String()).
		Int("failures", cb.failures).
		Msg("Circuit breaker state changed")
}

// State returns the current position. An open breaker whose timeout has
// elapsed still reports open until the next call probes.
func (cb *CircuitBreaker) State() State {
	cb.mu.Lock()
	defer cb.mu.Unlock()
	return cb.state
}

func (cb *CircuitBreaker) IsOpen() bool {
	return cb.State() == StateOpen
}

// GetStats returns the counters. Only a closed breaker is healthy.
func (cb *CircuitBreaker) GetStats() Stats {
	cb.mu.Lock()
	defer cb.mu.Unlock()
	return Stats{
		Name:         cb.cfg.Name,
		State:        cb.state.String(),
		FailureCount: cb.failures,
		SuccessCount: cb.successes,
		Rejected:     cb.rejected,
		LastFailure:  cb.lastFail,
		IsHealthy:    cb.state == StateClosed,
	}
}
