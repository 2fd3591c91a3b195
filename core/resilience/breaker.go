package resilience

import (
	"sync"
	"time"
)

// State is the circuit breaker state.
type State string

const (
	// StateClosed passes calls through and tracks outcomes.
	StateClosed State = "closed"
	// StateOpen fails calls fast without reaching the dependency.
	StateOpen State = "open"
	// StateHalfOpen admits a limited number of trial calls.
	StateHalfOpen State = "half_open"
)

// Breaker is a per-dependency circuit breaker. It is shared by all callers of
// that dependency; every transition happens under one mutex so concurrent
// trial calls cannot be admitted beyond the configured limit.
type Breaker struct {
	cfg Config
	now func() time.Time

	mu       sync.Mutex
	state    State
	outcomes []bool // ring of recent outcomes, true = failure
	next     int
	recorded int
	failures int
	openedAt time.Time
	trials   int // trial calls admitted in half-open
	passed   int // trial calls succeeded in half-open
}

// NewBreaker creates a closed breaker with the given policy.
func NewBreaker(cfg Config) *Breaker {
	cfg = cfg.withDefaults()
	return &Breaker{
		cfg:      cfg,
		now:      time.Now,
		state:    StateClosed,
		outcomes: make([]bool, cfg.Window),
	}
}

// State returns the current state, applying the open->half-open transition if
// the cooldown has elapsed.
func (b *Breaker) State() State {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.maybeHalfOpen()
	return b.state
}

// Allow reports whether a call may proceed. In half-open state it admits at
// most HalfOpenTrials concurrent trial calls.
func (b *Breaker) Allow() bool {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.maybeHalfOpen()

	switch b.state {
	case StateClosed:
		return true
	case StateHalfOpen:
		if b.trials < b.cfg.HalfOpenTrials {
			b.trials++
			return true
		}
		return false
	default:
		return false
	}
}

// Record reports the outcome of an admitted call.
func (b *Breaker) Record(failure bool) {
	b.mu.Lock()
	defer b.mu.Unlock()

	switch b.state {
	case StateClosed:
		b.push(failure)
		if b.recorded >= b.cfg.MinCalls &&
			float64(b.failures)/float64(b.recorded) >= b.cfg.FailureRatio {
			b.trip()
		}
	case StateHalfOpen:
		if failure {
			b.trip()
			return
		}
		b.passed++
		if b.passed >= b.cfg.HalfOpenTrials {
			b.reset()
		}
	case StateOpen:
		// Late result from a call admitted before the trip. Nothing to do.
	}
}

// push records one outcome in the sliding window.
func (b *Breaker) push(failure bool) {
	if b.recorded == len(b.outcomes) {
		if b.outcomes[b.next] {
			b.failures--
		}
	} else {
		b.recorded++
	}
	b.outcomes[b.next] = failure
	if failure {
		b.failures++
	}
	b.next = (b.next + 1) % len(b.outcomes)
}

func (b *Breaker) trip() {
	b.state = StateOpen
	b.openedAt = b.now()
	b.trials = 0
	b.passed = 0
}

func (b *Breaker) reset() {
	b.state = StateClosed
	b.outcomes = make([]bool, b.cfg.Window)
	b.next = 0
	b.recorded = 0
	b.failures = 0
	b.trials = 0
	b.passed = 0
}

// maybeHalfOpen transitions open->half-open once the cooldown has elapsed.
// Caller must hold b.mu.
func (b *Breaker) maybeHalfOpen() {
	if b.state == StateOpen && b.now().Sub(b.openedAt) >= b.cfg.cooldown() {
		b.state = StateHalfOpen
		b.trials = 0
		b.passed = 0
	}
}
