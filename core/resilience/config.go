package resilience

import "time"

// Config holds the circuit breaker and retry policy for one downstream dependency.
type Config struct {
	// Window is the number of recent call outcomes used to compute the failure ratio.
	Window int `mapstructure:"window" default:"20"`
	// MinCalls is the minimum number of recorded outcomes before the ratio is evaluated.
	MinCalls int `mapstructure:"min_calls" default:"10"`
	// FailureRatio opens the circuit when failures/recorded reaches this value.
	FailureRatio float64 `mapstructure:"failure_ratio" default:"0.5"`
	// CooldownSeconds is how long the circuit stays open before allowing trial calls.
	CooldownSeconds int `mapstructure:"cooldown_seconds" default:"10"`
	// HalfOpenTrials is the number of trial calls admitted in half-open state.
	HalfOpenTrials int `mapstructure:"half_open_trials" default:"3"`
	// MaxAttempts is the total number of attempts per call (1 = no retry).
	MaxAttempts int `mapstructure:"max_attempts" default:"3"`
	// BackoffBaseMillis is the base delay for exponential retry backoff.
	BackoffBaseMillis int `mapstructure:"backoff_base_millis" default:"1000"`
	// CallTimeoutSeconds bounds every individual attempt.
	CallTimeoutSeconds int `mapstructure:"call_timeout_seconds" default:"3"`
}

func (c Config) cooldown() time.Duration {
	if c.CooldownSeconds <= 0 {
		return 10 * time.Second
	}
	return time.Duration(c.CooldownSeconds) * time.Second
}

func (c Config) backoffBase() time.Duration {
	if c.BackoffBaseMillis <= 0 {
		return time.Second
	}
	return time.Duration(c.BackoffBaseMillis) * time.Millisecond
}

func (c Config) callTimeout() time.Duration {
	if c.CallTimeoutSeconds <= 0 {
		return 3 * time.Second
	}
	return time.Duration(c.CallTimeoutSeconds) * time.Second
}

// withDefaults fills zero values so a partially populated Config stays usable.
func (c Config) withDefaults() Config {
	if c.Window <= 0 {
		c.Window = 20
	}
	if c.MinCalls <= 0 {
		c.MinCalls = 10
	}
	if c.MinCalls > c.Window {
		c.MinCalls = c.Window
	}
	if c.FailureRatio <= 0 || c.FailureRatio > 1 {
		c.FailureRatio = 0.5
	}
	if c.HalfOpenTrials <= 0 {
		c.HalfOpenTrials = 3
	}
	if c.MaxAttempts <= 0 {
		c.MaxAttempts = 3
	}
	return c
}
