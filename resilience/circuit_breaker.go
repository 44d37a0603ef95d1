package resilience

import (
	"sync"
	"time"

	"github.com/switchyard-io/switchyard/core"
)

// CircuitState represents the state of the circuit breaker.
type CircuitState int

const (
	// StateClosed allows all requests through.
	StateClosed CircuitState = iota
	// StateOpen blocks all requests.
	StateOpen
	// StateHalfOpen allows limited requests for testing recovery.
	StateHalfOpen
)

// String returns the string representation of the state.
func (s CircuitState) String() string {
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

// CircuitBreakerConfig holds configuration for the circuit breaker.
type CircuitBreakerConfig struct {
	// Name identifies the circuit breaker in logs.
	Name string

	// FailureThreshold is the number of consecutive failures before
	// the circuit opens.
	FailureThreshold int

	// RecoveryTimeout is how long the circuit stays open before a
	// half-open probe is allowed.
	RecoveryTimeout time.Duration

	// HalfOpenSuccesses is the number of consecutive successes in
	// half-open state required to close the circuit.
	HalfOpenSuccesses int

	// Logger for state transitions.
	Logger core.Logger
}

// DefaultCircuitBreakerConfig returns sensible defaults.
func DefaultCircuitBreakerConfig() *CircuitBreakerConfig {
	return &CircuitBreakerConfig{
		Name:              "default",
		FailureThreshold:  5,
		RecoveryTimeout:   30 * time.Second,
		HalfOpenSuccesses: 2,
		Logger:            &core.NoOpLogger{},
	}
}

// CircuitBreaker protects an upstream from repeated calls while it is
// failing. Consecutive failures open the circuit; after the recovery
// timeout a probe request is let through, and enough probe successes
// close it again.
type CircuitBreaker struct {
	config *CircuitBreakerConfig

	mu            sync.Mutex
	state         CircuitState
	failures      int
	halfOpenWins  int
	lastOpenedAt  time.Time
	probeInFlight bool
}

// NewCircuitBreaker creates a circuit breaker. A nil config uses
// defaults.
func NewCircuitBreaker(config *CircuitBreakerConfig) *CircuitBreaker {
	if config == nil {
		config = DefaultCircuitBreakerConfig()
	}
	if config.FailureThreshold <= 0 {
		config.FailureThreshold = 5
	}
	if config.RecoveryTimeout <= 0 {
		config.RecoveryTimeout = 30 * time.Second
	}
	if config.HalfOpenSuccesses <= 0 {
		config.HalfOpenSuccesses = 2
	}
	if config.Logger == nil {
		config.Logger = &core.NoOpLogger{}
	}
	return &CircuitBreaker{
		config: config,
		state:  StateClosed,
	}
}

// CanExecute reports whether a request may proceed. In half-open state
// only one probe at a time is admitted.
func (cb *CircuitBreaker) CanExecute() bool {
	cb.mu.Lock()
	defer cb.mu.Unlock()

	switch cb.state {
	case StateClosed:
		return true
	case StateOpen:
		if time.Since(cb.lastOpenedAt) >= cb.config.RecoveryTimeout {
			cb.transitionLocked(StateHalfOpen)
			cb.probeInFlight = true
			return true
		}
		return false
	case StateHalfOpen:
		if cb.probeInFlight {
			return false
		}
		cb.probeInFlight = true
		return true
	default:
		return false
	}
}

// RecordSuccess records a successful call.
func (cb *CircuitBreaker) RecordSuccess() {
	cb.mu.Lock()
	defer cb.mu.Unlock()

	switch cb.state {
	case StateClosed:
		cb.failures = 0
	case StateHalfOpen:
		cb.probeInFlight = false
		cb.halfOpenWins++
		if cb.halfOpenWins >= cb.config.HalfOpenSuccesses {
			cb.transitionLocked(StateClosed)
		}
	}
}

// RecordFailure records a failed call.
func (cb *CircuitBreaker) RecordFailure() {
	cb.mu.Lock()
	defer cb.mu.Unlock()

	switch cb.state {
	case StateClosed:
		cb.failures++
		if cb.failures >= cb.config.FailureThreshold {
			cb.transitionLocked(StateOpen)
		}
	case StateHalfOpen:
		cb.probeInFlight = false
		cb.transitionLocked(StateOpen)
	}
}

// Execute runs fn under the breaker, recording the outcome.
func (cb *CircuitBreaker) Execute(fn func() error) error {
	if !cb.CanExecute() {
		return core.ErrCircuitBreakerOpen
	}
	err := fn()
	if err != nil {
		cb.RecordFailure()
		return err
	}
	cb.RecordSuccess()
	return nil
}

// State returns the current state.
func (cb *CircuitBreaker) State() CircuitState {
	cb.mu.Lock()
	defer cb.mu.Unlock()
	return cb.state
}

// Reset returns the breaker to the closed state and clears counters.
func (cb *CircuitBreaker) Reset() {
	cb.mu.Lock()
	defer cb.mu.Unlock()
	cb.transitionLocked(StateClosed)
}

func (cb *CircuitBreaker) transitionLocked(newState CircuitState) {
	if cb.state == newState {
		return
	}
	old := cb.state
	cb.state = newState

	switch newState {
	case StateOpen:
		cb.lastOpenedAt = time.Now()
		cb.halfOpenWins = 0
		cb.probeInFlight = false
	case StateClosed:
		cb.failures = 0
		cb.halfOpenWins = 0
		cb.probeInFlight = false
	case StateHalfOpen:
		cb.halfOpenWins = 0
	}

	cb.config.Logger.Info("Circuit breaker state change", map[string]interface{}{
		"name": cb.config.Name,
		"from": old.String(),
		"to":   newState.String(),
	})
}
