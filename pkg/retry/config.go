package retry

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v2"
)

// BackoffKind selects the backoff strategy variant.
type BackoffKind string

const (
	// BackoffNone never retries
	BackoffNone BackoffKind = "none"
	// BackoffFixed waits a fixed interval between retries
	BackoffFixed BackoffKind = "fixed"
	// BackoffExponential waits exponentially longer with random jitter
	BackoffExponential BackoffKind = "exponential"
	// BackoffIncremental grows the wait linearly
	BackoffIncremental BackoffKind = "incremental"
)

// Duration is a time.Duration that unmarshals from "500ms"-style YAML
// strings. yaml.v2 has no native duration support.
type Duration time.Duration

// UnmarshalYAML implements yaml.v2 unmarshalling
func (d *Duration) UnmarshalYAML(unmarshal func(interface{}) error) error {
	var raw string
	if err := unmarshal(&raw); err == nil {
		parsed, perr := time.ParseDuration(raw)
		if perr != nil {
			return fmt.Errorf("invalid duration %q: %w", raw, perr)
		}
		*d = Duration(parsed)
		return nil
	}

	var nanos int64
	if err := unmarshal(&nanos); err != nil {
		return err
	}
	*d = Duration(nanos)
	return nil
}

// Std returns the value as a time.Duration
func (d Duration) Std() time.Duration {
	return time.Duration(d)
}

// Config is the immutable per-call-site retry configuration. Build it once,
// keep it for the process lifetime.
type Config struct {
	// MaxRetryCount is the number of retries after the first attempt;
	// zero disables retrying entirely
	MaxRetryCount int `yaml:"max_retry_count"`

	// FastFirstRetry skips the wait before the first retry
	FastFirstRetry bool `yaml:"fast_first_retry"`

	// ThresholdInterval caps total elapsed time across all attempts when
	// the executor runs with a StopOnElapsed guard
	ThresholdInterval Duration `yaml:"threshold_interval"`

	// IncidentRetryLimit stops retrying with an IncidentError once the
	// attempt index passes it; zero or less disables the limit
	IncidentRetryLimit int `yaml:"incident_retry_limit"`

	// Backoff selects and parameterizes the backoff strategy
	Backoff BackoffConfig `yaml:"backoff"`
}

// BackoffConfig holds the strategy-specific parameters.
type BackoffConfig struct {
	Kind BackoffKind `yaml:"kind"`

	// Interval is the fixed wait (fixed kind)
	Interval Duration `yaml:"interval"`

	// MinBackoff, MaxBackoff and DeltaBackoff parameterize the
	// exponential kind
	MinBackoff   Duration `yaml:"min_backoff"`
	MaxBackoff   Duration `yaml:"max_backoff"`
	DeltaBackoff Duration `yaml:"delta_backoff"`

	// InitialInterval and Increment parameterize the incremental kind
	InitialInterval Duration `yaml:"initial_interval"`
	Increment       Duration `yaml:"increment"`
}

// DefaultConfig returns the stock configuration: ten exponential retries
// with a fast first retry and a two-minute elapsed cap.
func DefaultConfig() Config {
	return Config{
		MaxRetryCount:     10,
		FastFirstRetry:    true,
		ThresholdInterval: Duration(2 * time.Minute),
		Backoff: BackoffConfig{
			Kind:            BackoffExponential,
			Interval:        Duration(time.Second),
			MinBackoff:      Duration(time.Second),
			MaxBackoff:      Duration(30 * time.Second),
			DeltaBackoff:    Duration(10 * time.Second),
			InitialInterval: Duration(time.Second),
			Increment:       Duration(time.Second),
		},
	}
}

// LoadConfig reads a YAML config file, expanding ${ENV} references.
// Omitted fields keep their DefaultConfig values.
func LoadConfig(path string) (Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("failed to read config file: %w", err)
	}
	return ParseConfig([]byte(os.ExpandEnv(string(data))))
}

// ParseConfig unmarshals YAML on top of DefaultConfig and validates.
func ParseConfig(data []byte) (Config, error) {
	cfg := DefaultConfig()
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return Config{}, fmt.Errorf("failed to parse config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate checks the configuration for contradictions.
func (c Config) Validate() error {
	if c.MaxRetryCount < 0 {
		return fmt.Errorf("max_retry_count must be >= 0, got %d", c.MaxRetryCount)
	}

	switch c.Backoff.Kind {
	case BackoffNone:
	case BackoffFixed:
		if c.Backoff.Interval < 0 {
			return fmt.Errorf("fixed interval must be >= 0, got %v", c.Backoff.Interval.Std())
		}
	case BackoffExponential:
		if c.Backoff.MinBackoff < 0 || c.Backoff.MaxBackoff < 0 || c.Backoff.DeltaBackoff < 0 {
			return fmt.Errorf("exponential backoff durations must be >= 0")
		}
		if c.Backoff.MinBackoff > c.Backoff.MaxBackoff {
			return fmt.Errorf("min_backoff %v exceeds max_backoff %v",
				c.Backoff.MinBackoff.Std(), c.Backoff.MaxBackoff.Std())
		}
	case BackoffIncremental:
		if c.Backoff.InitialInterval < 0 || c.Backoff.Increment < 0 {
			return fmt.Errorf("incremental backoff durations must be >= 0")
		}
	default:
		return fmt.Errorf("unknown backoff kind %q", c.Backoff.Kind)
	}

	return nil
}

// Strategy builds the backoff strategy the configuration describes.
// A zero MaxRetryCount always yields NoRetry.
func (c Config) Strategy() Strategy {
	if c.MaxRetryCount == 0 {
		return NoRetry{}
	}

	switch c.Backoff.Kind {
	case BackoffFixed:
		return NewFixedInterval(c.MaxRetryCount, c.Backoff.Interval.Std())
	case BackoffExponential:
		return NewExponentialJitter(c.MaxRetryCount,
			c.Backoff.MinBackoff.Std(), c.Backoff.MaxBackoff.Std(), c.Backoff.DeltaBackoff.Std())
	case BackoffIncremental:
		return NewIncremental(c.MaxRetryCount,
			c.Backoff.InitialInterval.Std(), c.Backoff.Increment.Std())
	default:
		return NoRetry{}
	}
}
