package resilience

import (
	"context"
	"errors"
	"sync"
	"time"
)

var ErrCircuitOpen = errors.New("circuit breaker is open")

type CircuitState string

const (
	CircuitStateClosed   CircuitState = "closed"
	CircuitStateOpen     CircuitState = "open"
	CircuitStateHalfOpen CircuitState = "half_open"
)

// CircuitBreaker fails fast after FailureThreshold consecutive failures.
// Once OpenTimeout has passed it lets HalfOpenMaxReq probes through and
// closes again when all of them succeed.
//
// Every transition starts a new generation; outcomes reported for an older
// generation are ignored.
type CircuitBreaker struct {
	cfg CircuitBreakerConfig

	// IsFailure decides which errors count against the dependency. Nil
	// counts every error.
	IsFailure func(error) bool
	// OnStateChange runs under the breaker lock and must not call back into it.
	OnStateChange func(from, to CircuitState)

	mu         sync.Mutex
	state      CircuitState
	generation uint64
	failures   int
	probes     int
	passed     int
	expiry     time.Time
	now        func() time.Time
}

func NewCircuitBreaker(cfg CircuitBreakerConfig) *CircuitBreaker {
	return &CircuitBreaker{
		cfg:   NormalizeCircuitBreakerConfig(cfg),
		state: CircuitStateClosed,
		now:   time.Now,
	}
}

// Do runs fn unless the circuit is open and records its outcome.
func (b *CircuitBreaker) Do(ctx context.Context, fn func(context.Context) error) error {
	generation, err := b.admit()
	if err != nil {
		return err
	}

	err = fn(ctx)
	b.record(generation, err == nil || (b.IsFailure != nil && !b.IsFailure(err)))
	return err
}

func (b *CircuitBreaker) State() CircuitState {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.advance(b.now())
	return b.state
}

func (b *CircuitBreaker) admit() (uint64, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.advance(b.now())
	switch b.state {
	case CircuitStateOpen:
		return 0, ErrCircuitOpen
	case CircuitStateHalfOpen:
		if b.probes >= b.cfg.HalfOpenMaxReq {
			return 0, ErrCircuitOpen
		}
		b.probes++
	}
	return b.generation, nil
}

func (b *CircuitBreaker) record(generation uint64, ok bool) {
	b.mu.Lock()
	defer b.mu.Unlock()

	now := b.now()
	b.advance(now)
	if generation != b.generation {
		return
	}

	switch {
	case b.state == CircuitStateClosed && ok:
		b.failures = 0
	case b.state == CircuitStateClosed:
		b.failures++
		if b.failures >= b.cfg.FailureThreshold {
			b.transition(CircuitStateOpen, now)
		}
	case b.state == CircuitStateHalfOpen && ok:
		b.passed++
		if b.passed >= b.cfg.HalfOpenMaxReq {
			b.transition(CircuitStateClosed, now)
		}
	case b.state == CircuitStateHalfOpen:
		b.transition(CircuitStateOpen, now)
	}
}

// advance moves an expired open circuit to half-open.
func (b *CircuitBreaker) advance(now time.Time) {
	if b.state == CircuitStateOpen && !now.Before(b.expiry) {
		b.transition(CircuitStateHalfOpen, now)
	}
}

func (b *CircuitBreaker) transition(to CircuitState, now time.Time) {
	from := b.state
	b.state = to
	b.generation++
	b.failures, b.probes, b.passed = 0, 0, 0
	b.expiry = time.Time{}
	if to == CircuitStateOpen {
		b.expiry = now.Add(b.cfg.OpenTimeout)
	}
	if b.OnStateChange != nil {
		b.OnStateChange(from, to)
	}
}
