package config

import (
	"runtime"
	"time"

	"github.com/kbukum/ductline/observability"
	"github.com/kbukum/ductline/resilience"
	"github.com/kbukum/ductline/validation"
)

// Error policies for failed records.
const (
	// ErrorPolicyLog logs every failed record and carries on.
	ErrorPolicyLog = "log"
	// ErrorPolicyTrap hands every failed record to a trap and carries on.
	ErrorPolicyTrap = "trap"
	// ErrorPolicyFailFast stops the pipeline instance at the first failure.
	ErrorPolicyFailFast = "fail-fast"
)

// StreamConfig configures how pipeline instances run.
type StreamConfig struct {
	ServiceConfig `yaml:",inline" mapstructure:",squash"`

	// ErrorPolicy decides what happens to failed records.
	ErrorPolicy string `yaml:"error_policy" mapstructure:"error_policy" validate:"oneof=log trap fail-fast"`
	// Parallelism caps the number of instances running at once; zero means
	// unlimited.
	Parallelism int `yaml:"parallelism" mapstructure:"parallelism" validate:"gte=0,lte=4096"`

	// TrapRetry retries a failing trap before the instance is stopped.
	TrapRetry RetryConfig `yaml:"trap_retry" mapstructure:"trap_retry"`

	Metrics MetricsConfig `yaml:"metrics" mapstructure:"metrics"`
	Tracing TracingConfig `yaml:"tracing" mapstructure:"tracing"`
}

// RetryConfig configures retries with exponential backoff.
type RetryConfig struct {
	MaxAttempts    int           `yaml:"max_attempts" mapstructure:"max_attempts" validate:"gte=0,lte=100"`
	InitialBackoff time.Duration `yaml:"initial_backoff" mapstructure:"initial_backoff" validate:"gte=0"`
	MaxBackoff     time.Duration `yaml:"max_backoff" mapstructure:"max_backoff" validate:"gte=0"`
}

// MetricsConfig configures OTLP metric export.
type MetricsConfig struct {
	Enabled  bool          `yaml:"enabled" mapstructure:"enabled"`
	Endpoint string        `yaml:"endpoint" mapstructure:"endpoint" validate:"required_if=Enabled true"`
	Insecure bool          `yaml:"insecure" mapstructure:"insecure"`
	Interval time.Duration `yaml:"interval" mapstructure:"interval" validate:"gte=0"`
}

// TracingConfig configures OTLP trace export.
type TracingConfig struct {
	Enabled    bool    `yaml:"enabled" mapstructure:"enabled"`
	Endpoint   string  `yaml:"endpoint" mapstructure:"endpoint" validate:"required_if=Enabled true"`
	Insecure   bool    `yaml:"insecure" mapstructure:"insecure"`
	SampleRate float64 `yaml:"sample_rate" mapstructure:"sample_rate" validate:"gte=0,lte=1"`
}

// ApplyDefaults applies default values.
func (c *StreamConfig) ApplyDefaults() {
	c.ServiceConfig.ApplyDefaults()
	if c.ErrorPolicy == "" {
		c.ErrorPolicy = ErrorPolicyLog
	}
	if c.Parallelism == 0 {
		c.Parallelism = runtime.GOMAXPROCS(0)
	}
	if c.TrapRetry.MaxAttempts == 0 {
		c.TrapRetry.MaxAttempts = 1
	}
	if c.TrapRetry.InitialBackoff == 0 {
		c.TrapRetry.InitialBackoff = 100 * time.Millisecond
	}
	if c.TrapRetry.MaxBackoff == 0 {
		c.TrapRetry.MaxBackoff = 5 * time.Second
	}
	if c.Metrics.Enabled && c.Metrics.Interval == 0 {
		c.Metrics.Interval = 15 * time.Second
	}
	if c.Tracing.Enabled && c.Tracing.SampleRate == 0 {
		c.Tracing.SampleRate = 1.0
	}
}

// Validate validates the configuration.
func (c *StreamConfig) Validate() error {
	v := validation.New()
	v.Merge("", c.ServiceConfig.Validate())
	v.Merge("", validation.Validate(c))
	return v.Validate()
}

// RetryConfig returns the trap retry policy for resilience.Do.
func (c *StreamConfig) RetryConfig() resilience.RetryConfig {
	cfg := resilience.DefaultRetryConfig()
	cfg.MaxAttempts = c.TrapRetry.MaxAttempts
	cfg.InitialBackoff = c.TrapRetry.InitialBackoff
	cfg.MaxBackoff = c.TrapRetry.MaxBackoff
	return cfg
}

// MeterConfig returns the meter settings for observability.InitMeter.
func (c *StreamConfig) MeterConfig() *observability.MeterConfig {
	return &observability.MeterConfig{
		ServiceName:    c.Name,
		ServiceVersion: c.Version,
		Environment:    c.Environment,
		Endpoint:       c.Metrics.Endpoint,
		Insecure:       c.Metrics.Insecure,
		Interval:       c.Metrics.Interval,
	}
}

// TracerConfig returns the tracer settings for observability.InitTracer.
func (c *StreamConfig) TracerConfig() observability.TracerConfig {
	return observability.TracerConfig{
		ServiceName:    c.Name,
		ServiceVersion: c.Version,
		Environment:    c.Environment,
		Endpoint:       c.Tracing.Endpoint,
		Insecure:       c.Tracing.Insecure,
		SampleRate:     c.Tracing.SampleRate,
	}
}

// Load loads, defaults and validates the stream configuration of a
// service.
func Load(serviceName string, opts ...LoaderOption) (*StreamConfig, error) {
	cfg := &StreamConfig{}
	if err := LoadConfig(serviceName, cfg, opts...); err != nil {
		return nil, err
	}
	if cfg.Name == "" {
		cfg.Name = serviceName
	}
	cfg.ApplyDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}
