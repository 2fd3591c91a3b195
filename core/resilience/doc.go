// Package resilience guards every outbound call to a downstream dependency
// with timeout, retry, and circuit breaker policy.
//
// Each dependency gets one Gate, created once and injected into every caller
// of that dependency, so all callers share the same breaker state. The gate
// is the only component that knows the policies; callers see a single call
// contract: success with a value, or a failure tagged with a Kind.
//
// # Circuit breaker
//
// The breaker tracks the last Window call outcomes. Once at least MinCalls
// outcomes are recorded and the failure ratio reaches FailureRatio, the
// circuit opens and calls fail fast with KindCircuitOpen. After the cooldown,
// up to HalfOpenTrials trial calls are admitted; if they all succeed the
// circuit closes, any trial failure reopens it and restarts the cooldown.
//
// # Retry
//
// Only Timeout and Transient failures are retried, with exponential backoff
// up to MaxAttempts. NotFound and NonTransient failures are surfaced
// immediately and do not count toward the breaker's failure ratio.
//
// # Usage Example
//
//	gate := resilience.NewGate("collector", cfg.Resilience, logger)
//	page, err := resilience.Call(ctx, gate, func(ctx context.Context) (collector.Page, error) {
//	    return rawFetch(ctx, cursor, size)
//	})
package resilience
