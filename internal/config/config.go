package config

import "time"

type Duration struct {
	Duration time.Duration
}

type HTTPConfig struct {
	Addr              string   `json:"addr" yaml:"addr"`
	ReadHeaderTimeout Duration `json:"read_header_timeout" yaml:"read_header_timeout"`
	IdleTimeout       Duration `json:"idle_timeout" yaml:"idle_timeout"`
	ShutdownTimeout   Duration `json:"shutdown_timeout" yaml:"shutdown_timeout"`
	MaxRequestBytes   int64    `json:"max_request_bytes" yaml:"max_request_bytes"`

	// CORSOrigins lists allowed browser origins. "*" allows any origin.
	CORSOrigins []string `json:"cors_origins,omitempty" yaml:"cors_origins,omitempty"`
}

// SourceConfig selects where survey workbooks are read from.
type SourceConfig struct {
	// Driver is one of "fs", "s3", "gcs", "memory".
	Driver string `json:"driver" yaml:"driver"`

	// Root is the directory for the fs driver.
	Root string `json:"root,omitempty" yaml:"root,omitempty"`

	// Bucket, Region, Endpoint and PathStyle apply to the s3 and gcs drivers.
	Bucket    string `json:"bucket,omitempty" yaml:"bucket,omitempty"`
	Region    string `json:"region,omitempty" yaml:"region,omitempty"`
	Endpoint  string `json:"endpoint,omitempty" yaml:"endpoint,omitempty"`
	PathStyle bool   `json:"path_style,omitempty" yaml:"path_style,omitempty"`

	// Prefix is prepended to every file id before it reaches the store.
	Prefix string `json:"prefix,omitempty" yaml:"prefix,omitempty"`
}

type ReducerConfig struct {
	// Engine is "local" (in-process) or "remote" (HTTP UMAP service).
	Engine string `json:"engine" yaml:"engine"`

	// Seed is the fixed random state passed to every computation.
	Seed int64 `json:"seed" yaml:"seed"`

	BaseURL string   `json:"base_url,omitempty" yaml:"base_url,omitempty"`
	Path    string   `json:"path,omitempty" yaml:"path,omitempty"`
	APIKey  string   `json:"api_key,omitempty" yaml:"api_key,omitempty"`
	Timeout Duration `json:"timeout,omitempty" yaml:"timeout,omitempty"`
}

// LeaseConfig controls how the single embedding slot is shared across processes.
type LeaseConfig struct {
	// Driver is "local" (process only) or "redis".
	Driver       string   `json:"driver" yaml:"driver"`
	RedisAddr    string   `json:"redis_addr,omitempty" yaml:"redis_addr,omitempty"`
	Key          string   `json:"key,omitempty" yaml:"key,omitempty"`
	// TTL is the key expiry; a live holder renews it, so it only bounds how
	// long a crashed holder blocks the slot.
	TTL          Duration `json:"ttl,omitempty" yaml:"ttl,omitempty"`
	PollInterval Duration `json:"poll_interval,omitempty" yaml:"poll_interval,omitempty"`
}

// RunLogConfig enables the run ledger. An empty Driver disables it.
type RunLogConfig struct {
	Driver string `json:"driver,omitempty" yaml:"driver,omitempty"`
	DSN    string `json:"dsn,omitempty" yaml:"dsn,omitempty"`
}

type TracingConfig struct {
	Enabled     bool    `json:"enabled" yaml:"enabled"`
	ServiceName string  `json:"service_name,omitempty" yaml:"service_name,omitempty"`
	Endpoint    string  `json:"endpoint,omitempty" yaml:"endpoint,omitempty"`
	Insecure    bool    `json:"insecure,omitempty" yaml:"insecure,omitempty"`
	SampleRatio float64 `json:"sample_ratio,omitempty" yaml:"sample_ratio,omitempty"`
}

type Config struct {
	Env     string        `json:"env" yaml:"env"`
	Version string        `json:"version,omitempty" yaml:"version,omitempty"`
	HTTP    HTTPConfig    `json:"http" yaml:"http"`
	Source  SourceConfig  `json:"source" yaml:"source"`
	Reducer ReducerConfig `json:"reducer" yaml:"reducer"`
	Lease   LeaseConfig   `json:"lease" yaml:"lease"`
	RunLog  RunLogConfig  `json:"runlog" yaml:"runlog"`
	Metrics bool          `json:"metrics" yaml:"metrics"`
	Tracing TracingConfig `json:"tracing" yaml:"tracing"`
}
