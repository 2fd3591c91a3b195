package resilience

import (
	"context"
	"errors"
	"time"

	"go.uber.org/zap"
)

// Gate wraps every outbound call to one downstream dependency with timeout,
// retry, and circuit breaker policy. It is the only place that knows about
// these policies; callers see success with a value, or a failure tagged with
// one of the Kind values.
type Gate struct {
	name    string
	cfg     Config
	breaker *Breaker
	logger  *zap.Logger
	sleep   func(ctx context.Context, d time.Duration) error
}

// NewGate creates a gate for the named dependency.
func NewGate(name string, cfg Config, logger *zap.Logger) *Gate {
	cfg = cfg.withDefaults()
	return &Gate{
		name:    name,
		cfg:     cfg,
		breaker: NewBreaker(cfg),
		logger:  logger,
		sleep:   sleepCtx,
	}
}

// State exposes the breaker state for logging and health reporting.
func (g *Gate) State() State {
	return g.breaker.State()
}

// Do runs op under the gate's policy. Timeout and Transient failures are
// retried with exponential backoff up to MaxAttempts; NotFound and
// NonTransient failures are surfaced immediately. When the breaker is open
// the call fails fast with KindCircuitOpen.
func (g *Gate) Do(ctx context.Context, op func(ctx context.Context) error) error {
	var lastErr error

	for attempt := 1; attempt <= g.cfg.MaxAttempts; attempt++ {
		if !g.breaker.Allow() {
			return Errorf(KindCircuitOpen, "%s: circuit open", g.name)
		}

		err := g.attempt(ctx, op)
		if err == nil {
			g.breaker.Record(false)
			return nil
		}

		kind := KindOf(err)
		switch kind {
		case KindNotFound, KindNonTransient, KindDataIntegrity:
			// The dependency answered; the answer just isn't retryable.
			g.breaker.Record(false)
			return err
		default:
			g.breaker.Record(true)
		}

		lastErr = err
		if attempt == g.cfg.MaxAttempts {
			break
		}

		delay := g.cfg.backoffBase() << (attempt - 1)
		g.logger.Warn("call failed, retrying",
			zap.String("dependency", g.name),
			zap.String("kind", string(kind)),
			zap.Int("attempt", attempt),
			zap.Duration("backoff", delay),
			zap.Error(err),
		)
		if err := g.sleep(ctx, delay); err != nil {
			return NewError(KindTimeout, err)
		}
	}

	return lastErr
}

// attempt runs op once under the per-call timeout and normalizes the error.
func (g *Gate) attempt(ctx context.Context, op func(ctx context.Context) error) error {
	callCtx, cancel := context.WithTimeout(ctx, g.cfg.callTimeout())
	defer cancel()

	err := op(callCtx)
	if err == nil {
		return nil
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return NewError(KindTimeout, err)
	}
	var re *Error
	if errors.As(err, &re) {
		return err
	}
	return NewError(KindTransient, err)
}

// Call runs a value-returning op through the gate.
func Call[T any](ctx context.Context, g *Gate, op func(ctx context.Context) (T, error)) (T, error) {
	var out T
	err := g.Do(ctx, func(ctx context.Context) error {
		v, err := op(ctx)
		if err != nil {
			return err
		}
		out = v
		return nil
	})
	if err != nil {
		var zero T
		return zero, err
	}
	return out, nil
}

func sleepCtx(ctx context.Context, d time.Duration) error {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
