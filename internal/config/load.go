package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/yungbote/stoplight-backend/internal/platform/envutil"
)

func (d *Duration) UnmarshalJSON(b []byte) error {
	s := strings.TrimSpace(string(b))
	if s == "" || s == "null" {
		d.Duration = 0
		return nil
	}
	if len(s) >= 2 && s[0] == '"' && s[len(s)-1] == '"' {
		u, err := strconv.Unquote(s)
		if err != nil {
			return err
		}
		return d.parse(u)
	}

	n, err := strconv.ParseInt(s, 10, 64)
	if err != nil {
		return fmt.Errorf("duration must be a JSON string like \"5s\" or an int nanoseconds: %w", err)
	}
	d.Duration = time.Duration(n)
	return nil
}

func (d *Duration) UnmarshalYAML(node *yaml.Node) error {
	if node == nil || node.Value == "" {
		d.Duration = 0
		return nil
	}
	if node.Tag == "!!int" {
		n, err := strconv.ParseInt(node.Value, 10, 64)
		if err != nil {
			return err
		}
		d.Duration = time.Duration(n)
		return nil
	}
	return d.parse(node.Value)
}

func (d Duration) MarshalJSON() ([]byte, error) {
	return json.Marshal(d.Duration.String())
}

func (d *Duration) parse(raw string) error {
	if strings.TrimSpace(raw) == "" {
		d.Duration = 0
		return nil
	}
	dd, err := time.ParseDuration(strings.TrimSpace(raw))
	if err != nil {
		return err
	}
	d.Duration = dd
	return nil
}

func Default() *Config {
	return &Config{
		Env:     "development",
		Version: "dev",
		HTTP: HTTPConfig{
			Addr:              ":8000",
			ReadHeaderTimeout: Duration{Duration: 5 * time.Second},
			IdleTimeout:       Duration{Duration: 2 * time.Minute},
			ShutdownTimeout:   Duration{Duration: 15 * time.Second},
			MaxRequestBytes:   1 << 20,
			CORSOrigins:       []string{"*"},
		},
		Source: SourceConfig{
			Driver: "fs",
			Root:   "./data",
		},
		Reducer: ReducerConfig{
			Engine:  "local",
			Seed:    42,
			Path:    "/umap",
			Timeout: Duration{Duration: 5 * time.Minute},
		},
		Lease: LeaseConfig{
			Driver:       "local",
			Key:          "stoplight:embedding-slot",
			TTL:          Duration{Duration: 10 * time.Minute},
			PollInterval: Duration{Duration: 250 * time.Millisecond},
		},
		Tracing: TracingConfig{
			ServiceName: "stoplight",
			SampleRatio: 0.1,
		},
	}
}

// Load builds the config from an optional file, then env overrides, then defaults.
// An empty path falls back to STOPLIGHT_CONFIG_PATH and then ./config/config.{json,yaml,yml}.
func Load(path string) (*Config, error) {
	cfg := Default()

	cfgPath := strings.TrimSpace(path)
	if cfgPath == "" {
		cfgPath = strings.TrimSpace(os.Getenv("STOPLIGHT_CONFIG_PATH"))
	}
	if cfgPath == "" {
		cfgPath = discoverConfigFile()
	}

	if cfgPath != "" {
		if err := loadFile(cfgPath, cfg); err != nil {
			return nil, fmt.Errorf("load config %s: %w", cfgPath, err)
		}
	}

	applyEnv(cfg)

	if err := normalize(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

func discoverConfigFile() string {
	wd, err := os.Getwd()
	if err != nil {
		return ""
	}
	for _, name := range []string{"config.json", "config.yaml", "config.yml"} {
		p := filepath.Join(wd, "config", name)
		if _, err := os.Stat(p); err == nil {
			return p
		}
	}
	return ""
}

func loadFile(path string, cfg *Config) error {
	b, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return yaml.Unmarshal(b, cfg)
	default:
		return json.Unmarshal(b, cfg)
	}
}

func applyEnv(cfg *Config) {
	cfg.Env = envutil.String("LOG_MODE", cfg.Env)
	cfg.HTTP.Addr = envutil.String("STOPLIGHT_HTTP_ADDR", cfg.HTTP.Addr)
	if port := envutil.String("PORT", ""); port != "" {
		cfg.HTTP.Addr = ":" + strings.TrimPrefix(port, ":")
	}
	if origins := envutil.List("STOPLIGHT_CORS_ORIGINS"); len(origins) > 0 {
		cfg.HTTP.CORSOrigins = origins
	}

	cfg.Source.Driver = envutil.String("STOPLIGHT_SOURCE_DRIVER", cfg.Source.Driver)
	cfg.Source.Root = envutil.String("STOPLIGHT_SOURCE_ROOT", cfg.Source.Root)
	cfg.Source.Bucket = envutil.String("STOPLIGHT_SOURCE_BUCKET", cfg.Source.Bucket)
	cfg.Source.Region = envutil.String("STOPLIGHT_SOURCE_REGION", cfg.Source.Region)
	cfg.Source.Endpoint = envutil.String("STOPLIGHT_SOURCE_ENDPOINT", cfg.Source.Endpoint)
	cfg.Source.PathStyle = envutil.Bool("STOPLIGHT_SOURCE_PATH_STYLE", cfg.Source.PathStyle)
	cfg.Source.Prefix = envutil.String("STOPLIGHT_SOURCE_PREFIX", cfg.Source.Prefix)

	cfg.Reducer.Engine = envutil.String("STOPLIGHT_REDUCER_ENGINE", cfg.Reducer.Engine)
	cfg.Reducer.Seed = envutil.Int64("STOPLIGHT_REDUCER_SEED", cfg.Reducer.Seed)
	cfg.Reducer.BaseURL = envutil.String("STOPLIGHT_REDUCER_BASE_URL", cfg.Reducer.BaseURL)
	cfg.Reducer.APIKey = envutil.String("STOPLIGHT_REDUCER_API_KEY", cfg.Reducer.APIKey)
	cfg.Reducer.Timeout.Duration = envutil.Duration("STOPLIGHT_REDUCER_TIMEOUT", cfg.Reducer.Timeout.Duration)

	if addr := envutil.String("REDIS_ADDR", ""); addr != "" {
		cfg.Lease.RedisAddr = addr
		if strings.TrimSpace(os.Getenv("STOPLIGHT_LEASE_DRIVER")) == "" {
			cfg.Lease.Driver = "redis"
		}
	}
	cfg.Lease.Driver = envutil.String("STOPLIGHT_LEASE_DRIVER", cfg.Lease.Driver)

	cfg.RunLog.Driver = envutil.String("STOPLIGHT_RUNLOG_DRIVER", cfg.RunLog.Driver)
	cfg.RunLog.DSN = envutil.String("STOPLIGHT_RUNLOG_DSN", cfg.RunLog.DSN)

	cfg.Metrics = envutil.Bool("METRICS_ENABLED", cfg.Metrics)
	cfg.Tracing.Enabled = envutil.Bool("OTEL_ENABLED", cfg.Tracing.Enabled)
	cfg.Tracing.Endpoint = envutil.String("OTEL_EXPORTER_OTLP_ENDPOINT", cfg.Tracing.Endpoint)
	cfg.Tracing.Insecure = envutil.Bool("OTEL_EXPORTER_OTLP_INSECURE", cfg.Tracing.Insecure)
}

func normalize(cfg *Config) error {
	if strings.TrimSpace(cfg.Env) == "" {
		cfg.Env = "development"
	}
	if strings.TrimSpace(cfg.HTTP.Addr) == "" {
		cfg.HTTP.Addr = ":8000"
	}
	if cfg.HTTP.MaxRequestBytes <= 0 {
		cfg.HTTP.MaxRequestBytes = 1 << 20
	}
	if cfg.HTTP.ShutdownTimeout.Duration <= 0 {
		cfg.HTTP.ShutdownTimeout = Duration{Duration: 15 * time.Second}
	}
	if len(cfg.HTTP.CORSOrigins) == 0 {
		cfg.HTTP.CORSOrigins = []string{"*"}
	}

	cfg.Source.Driver = strings.ToLower(strings.TrimSpace(cfg.Source.Driver))
	switch cfg.Source.Driver {
	case "", "fs":
		cfg.Source.Driver = "fs"
		if strings.TrimSpace(cfg.Source.Root) == "" {
			cfg.Source.Root = "./data"
		}
	case "s3", "gcs":
		if strings.TrimSpace(cfg.Source.Bucket) == "" {
			return fmt.Errorf("source.bucket is required for driver %q", cfg.Source.Driver)
		}
	case "memory":
	default:
		return fmt.Errorf("unsupported source.driver %q", cfg.Source.Driver)
	}

	cfg.Reducer.Engine = strings.ToLower(strings.TrimSpace(cfg.Reducer.Engine))
	switch cfg.Reducer.Engine {
	case "", "local":
		cfg.Reducer.Engine = "local"
	case "remote", "http":
		cfg.Reducer.Engine = "remote"
		cfg.Reducer.BaseURL = strings.TrimRight(strings.TrimSpace(cfg.Reducer.BaseURL), "/")
		if cfg.Reducer.BaseURL == "" {
			return errors.New("reducer.base_url is required for the remote engine")
		}
		if strings.TrimSpace(cfg.Reducer.Path) == "" {
			cfg.Reducer.Path = "/umap"
		}
	default:
		return fmt.Errorf("unsupported reducer.engine %q", cfg.Reducer.Engine)
	}
	if cfg.Reducer.Timeout.Duration <= 0 {
		cfg.Reducer.Timeout = Duration{Duration: 5 * time.Minute}
	}

	cfg.Lease.Driver = strings.ToLower(strings.TrimSpace(cfg.Lease.Driver))
	switch cfg.Lease.Driver {
	case "", "local":
		cfg.Lease.Driver = "local"
	case "redis":
		if strings.TrimSpace(cfg.Lease.RedisAddr) == "" {
			return errors.New("lease.redis_addr is required for the redis lease driver")
		}
	default:
		return fmt.Errorf("unsupported lease.driver %q", cfg.Lease.Driver)
	}
	if strings.TrimSpace(cfg.Lease.Key) == "" {
		cfg.Lease.Key = "stoplight:embedding-slot"
	}
	if cfg.Lease.TTL.Duration <= 0 {
		cfg.Lease.TTL = Duration{Duration: 10 * time.Minute}
	}
	if cfg.Lease.PollInterval.Duration <= 0 {
		cfg.Lease.PollInterval = Duration{Duration: 250 * time.Millisecond}
	}

	cfg.RunLog.Driver = strings.ToLower(strings.TrimSpace(cfg.RunLog.Driver))
	switch cfg.RunLog.Driver {
	case "":
	case "sqlite", "postgres":
		if strings.TrimSpace(cfg.RunLog.DSN) == "" {
			return fmt.Errorf("runlog.dsn is required for driver %q", cfg.RunLog.Driver)
		}
	default:
		return fmt.Errorf("unsupported runlog.driver %q", cfg.RunLog.Driver)
	}

	if cfg.Tracing.SampleRatio < 0 {
		cfg.Tracing.SampleRatio = 0
	}
	if cfg.Tracing.SampleRatio > 1 {
		cfg.Tracing.SampleRatio = 1
	}
	if strings.TrimSpace(cfg.Tracing.ServiceName) == "" {
		cfg.Tracing.ServiceName = "stoplight"
	}
	return nil
}
