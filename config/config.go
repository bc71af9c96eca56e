package config

import (
	"fmt"
	"runtime"

	"github.com/shale-sh/shale/logger"
	"github.com/shale-sh/shale/util"
	"github.com/shale-sh/shale/validation"
)

// RuntimeConfig holds everything the engine reads at startup: worker
// pool sizing, stream buffering, error rendering, and logging.
type RuntimeConfig struct {
	// Threads caps the worker pool used by parallel stages. Zero means
	// one worker per CPU.
	Threads int `yaml:"threads" mapstructure:"threads" validate:"min=0,max=4096"`

	// StreamBuffer sizes the read buffer for external command output,
	// accepting human units ("64KB", "1MB").
	StreamBuffer string `yaml:"stream_buffer" mapstructure:"stream_buffer"`

	Errors    ErrorsConfig    `yaml:"errors" mapstructure:"errors"`
	Log       logger.Config   `yaml:"log" mapstructure:"log"`
	Telemetry TelemetryConfig `yaml:"telemetry" mapstructure:"telemetry"`
}

// ErrorsConfig controls how shell errors render in the terminal.
type ErrorsConfig struct {
	// ContextLines is the number of source lines shown around an
	// error's span.
	ContextLines int `yaml:"context_lines" mapstructure:"context_lines" validate:"min=0,max=16"`

	// NoColor disables ANSI styling in rendered errors.
	NoColor bool `yaml:"no_color" mapstructure:"no_color"`
}

// TelemetryConfig controls OTLP export of spans and metrics. Disabled
// by default; the runtime stays no-op without a collector.
type TelemetryConfig struct {
	Enabled bool `yaml:"enabled" mapstructure:"enabled"`

	// Endpoint is the OTLP HTTP collector host:port.
	Endpoint string `yaml:"endpoint" mapstructure:"endpoint"`

	// SampleRate is the trace sampling rate; zero means sample
	// everything.
	SampleRate float64 `yaml:"sample_rate" mapstructure:"sample_rate" validate:"min=0,max=1"`
}

// Default returns a RuntimeConfig with all defaults applied.
func Default() *RuntimeConfig {
	cfg := &RuntimeConfig{}
	cfg.ApplyDefaults()
	return cfg
}

// ApplyDefaults fills zero fields with usable values.
func (c *RuntimeConfig) ApplyDefaults() {
	c.StreamBuffer = util.Coalesce(c.StreamBuffer, "64KB")
	if c.Errors.ContextLines == 0 {
		c.Errors.ContextLines = 2
	}
	c.Telemetry.Endpoint = util.Coalesce(c.Telemetry.Endpoint, "localhost:4318")
	if c.Telemetry.SampleRate == 0 {
		c.Telemetry.SampleRate = 1.0
	}
	// Logs go to stderr so stdout stays clean for pipeline data, and
	// stay quiet unless asked for.
	c.Log.Output = util.Coalesce(c.Log.Output, "stderr")
	c.Log.Level = util.Coalesce(c.Log.Level, "warn")
	c.Log.ApplyDefaults()
}

// StreamBufferBytes returns the stream buffer size in bytes, falling
// back to 64KB when the configured value does not parse.
func (c *RuntimeConfig) StreamBufferBytes() int64 {
	return util.ParseSize(c.StreamBuffer, 64*1024)
}

// WorkerThreads returns the effective parallel stage worker count.
func (c *RuntimeConfig) WorkerThreads() int {
	if c.Threads <= 0 {
		return runtime.NumCPU()
	}
	return c.Threads
}

// Validate checks field constraints and the logging section.
func (c *RuntimeConfig) Validate() error {
	if err := validation.Validate(c); err != nil {
		return err
	}
	v := validation.New().
		Custom(util.ParseSize(c.StreamBuffer, 0) > 0, "stream_buffer", "must be a byte size such as 64KB")
	if c.Telemetry.Enabled {
		v.Required("telemetry.endpoint", c.Telemetry.Endpoint)
	}
	if err := v.Validate(); err != nil {
		return err
	}
	if err := c.Log.Validate(); err != nil {
		return fmt.Errorf("config.log: %w", err)
	}
	return nil
}
