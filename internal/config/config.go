package config

import (
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/vango-dev/hydrate/internal/errors"
	"github.com/vango-dev/hydrate/pkg/codec"
)

const (
	// ConfigFileName is the name of the configuration file.
	ConfigFileName = "hydrate.json"

	DefaultAddr          = "localhost:3000"
	DefaultGatewayPrefix = "/_fn"
	DefaultPayloadTTL    = 5 * time.Minute
	DefaultRenderTimeout = 10 * time.Second
	DefaultRedisAddr     = "localhost:6379"
)

// Hydration modes.
const (
	ModeInline = "inline"
	ModeStore  = "store"
)

// Payload store backends.
const (
	StoreMemory = "memory"
	StoreRedis  = "redis"
)

// Duration is a time.Duration written as a Go duration string ("30s").
type Duration time.Duration

// MarshalJSON implements json.Marshaler.
func (d Duration) MarshalJSON() ([]byte, error) {
	return json.Marshal(time.Duration(d).String())
}

// UnmarshalJSON implements json.Unmarshaler.
func (d *Duration) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return fmt.Errorf("duration must be a string like \"30s\": %w", err)
	}
	v, err := time.ParseDuration(s)
	if err != nil {
		return err
	}
	*d = Duration(v)
	return nil
}

// Std returns d as a time.Duration.
func (d Duration) Std() time.Duration {
	return time.Duration(d)
}

// Config represents hydrate.json.
type Config struct {
	// Name is the application name, used as the tracer name.
	Name string `json:"name,omitempty"`

	Server    ServerConfig    `json:"server"`
	Gateway   GatewayConfig   `json:"gateway"`
	Hydration HydrationConfig `json:"hydration"`
	Log       LogConfig       `json:"log"`
	Metrics   MetricsConfig   `json:"metrics"`
	Tracing   TracingConfig   `json:"tracing"`

	configPath string
}

// ServerConfig configures the HTTP host.
type ServerConfig struct {
	Addr string `json:"addr,omitempty"`

	// RenderTimeout bounds a page render including boundary waits.
	RenderTimeout Duration `json:"renderTimeout,omitempty"`

	// ShutdownTimeout bounds graceful shutdown.
	ShutdownTimeout Duration `json:"shutdownTimeout,omitempty"`

	// Stream flushes the document head before boundaries resolve.
	Stream bool `json:"stream,omitempty"`
}

// GatewayConfig configures server function endpoints.
type GatewayConfig struct {
	// Prefix is the mount point of the function routes (default: "/_fn").
	Prefix string `json:"prefix,omitempty"`

	// Codec names the argument and result codec: "json" or "gojson".
	Codec string `json:"codec,omitempty"`

	// Timeout bounds each invocation. Zero disables it.
	Timeout Duration `json:"timeout,omitempty"`

	// RateLimit is the per-function request rate in calls per second.
	// Zero disables limiting.
	RateLimit float64 `json:"rateLimit,omitempty"`
	Burst     int     `json:"burst,omitempty"`

	// WebSocket enables the multiplexed socket endpoint.
	WebSocket bool `json:"websocket,omitempty"`
}

// HydrationConfig configures how settlements reach the client.
type HydrationConfig struct {
	// Mode is "inline" (payload in the page) or "store" (payload fetched
	// from the payload endpoint).
	Mode string `json:"mode,omitempty"`

	// Store is the backend for store mode: "memory" or "redis".
	Store string `json:"store,omitempty"`

	// TTL is how long a stored payload stays fetchable.
	TTL Duration `json:"ttl,omitempty"`

	Redis RedisConfig `json:"redis,omitempty"`
}

// RedisConfig locates the Redis payload store.
type RedisConfig struct {
	Addr     string `json:"addr,omitempty"`
	Password string `json:"password,omitempty"`
	DB       int    `json:"db,omitempty"`
}

// LogConfig configures slog output.
type LogConfig struct {
	// Level is one of debug, info, warn, error.
	Level string `json:"level,omitempty"`

	// Format is "text" or "json".
	Format string `json:"format,omitempty"`
}

// MetricsConfig configures the Prometheus endpoint.
type MetricsConfig struct {
	Enabled   bool   `json:"enabled,omitempty"`
	Path      string `json:"path,omitempty"`
	Namespace string `json:"namespace,omitempty"`
}

// TracingConfig configures OpenTelemetry spans.
type TracingConfig struct {
	Enabled bool `json:"enabled,omitempty"`
}

// New creates a Config with default values.
func New() *Config {
	c := &Config{}
	c.applyDefaults()
	return c
}

// Load reads hydrate.json from dir.
func Load(dir string) (*Config, error) {
	return LoadFile(filepath.Join(dir, ConfigFileName))
}

// LoadFile reads and validates the configuration at path.
func LoadFile(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, errors.New("E121").
				WithDetail("No " + ConfigFileName + " found in " + filepath.Dir(path)).
				WithSuggestion("Create " + ConfigFileName + " or run without --config to use defaults")
		}
		return nil, errors.New("E120").Wrap(err)
	}

	cfg := &Config{}
	if err := json.Unmarshal(data, cfg); err != nil {
		return nil, errors.New("E120").
			WithDetail("Failed to parse " + ConfigFileName + ": " + err.Error()).
			WithSuggestion("Check that " + ConfigFileName + " is valid JSON and durations are strings like \"30s\"")
	}

	cfg.configPath = path
	cfg.applyDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// SaveTo writes the configuration to path.
func (c *Config) SaveTo(path string) error {
	data, err := json.MarshalIndent(c, "", "  ")
	if err != nil {
		return errors.New("E120").Wrap(err)
	}
	data = append(data, '\n')

	if err := os.WriteFile(path, data, 0644); err != nil {
		return errors.New("E120").Wrap(err)
	}
	c.configPath = path
	return nil
}

// Path returns the path the config was loaded from.
func (c *Config) Path() string {
	return c.configPath
}

func (c *Config) applyDefaults() {
	if c.Name == "" {
		c.Name = "hydrate"
	}

	if c.Server.Addr == "" {
		c.Server.Addr = DefaultAddr
	}
	if c.Server.RenderTimeout == 0 {
		c.Server.RenderTimeout = Duration(DefaultRenderTimeout)
	}
	if c.Server.ShutdownTimeout == 0 {
		c.Server.ShutdownTimeout = Duration(10 * time.Second)
	}

	if c.Gateway.Prefix == "" {
		c.Gateway.Prefix = DefaultGatewayPrefix
	}
	if c.Gateway.Codec == "" {
		c.Gateway.Codec = codec.Default.Name()
	}
	if c.Gateway.RateLimit > 0 && c.Gateway.Burst == 0 {
		c.Gateway.Burst = int(c.Gateway.RateLimit) + 1
	}

	if c.Hydration.Mode == "" {
		c.Hydration.Mode = ModeInline
	}
	if c.Hydration.Store == "" {
		c.Hydration.Store = StoreMemory
	}
	if c.Hydration.TTL == 0 {
		c.Hydration.TTL = Duration(DefaultPayloadTTL)
	}
	if c.Hydration.Store == StoreRedis && c.Hydration.Redis.Addr == "" {
		c.Hydration.Redis.Addr = DefaultRedisAddr
	}

	if c.Log.Level == "" {
		c.Log.Level = "info"
	}
	if c.Log.Format == "" {
		c.Log.Format = "text"
	}

	if c.Metrics.Path == "" {
		c.Metrics.Path = "/metrics"
	}
	if c.Metrics.Namespace == "" {
		c.Metrics.Namespace = "hydrate"
	}
}

// Validate checks that every value is inside its allowed set or range.
func (c *Config) Validate() error {
	invalid := func(field, detail string) error {
		return errors.New("E122").WithDetail(field + ": " + detail)
	}

	if !strings.HasPrefix(c.Gateway.Prefix, "/") {
		return invalid("gateway.prefix", "must start with /")
	}
	if _, ok := codec.Lookup(c.Gateway.Codec); !ok {
		return invalid("gateway.codec", fmt.Sprintf("unknown codec %q", c.Gateway.Codec))
	}
	if c.Gateway.Timeout < 0 {
		return invalid("gateway.timeout", "must not be negative")
	}
	if c.Gateway.RateLimit < 0 || c.Gateway.Burst < 0 {
		return invalid("gateway.rateLimit", "must not be negative")
	}

	switch c.Hydration.Mode {
	case ModeInline, ModeStore:
	default:
		return invalid("hydration.mode", fmt.Sprintf("%q is not inline or store", c.Hydration.Mode))
	}
	switch c.Hydration.Store {
	case StoreMemory, StoreRedis:
	default:
		return invalid("hydration.store", fmt.Sprintf("%q is not memory or redis", c.Hydration.Store))
	}
	if c.Hydration.TTL <= 0 {
		return invalid("hydration.ttl", "must be positive")
	}

	if _, err := c.Log.SlogLevel(); err != nil {
		return invalid("log.level", err.Error())
	}
	switch c.Log.Format {
	case "text", "json":
	default:
		return invalid("log.format", fmt.Sprintf("%q is not text or json", c.Log.Format))
	}

	if !strings.HasPrefix(c.Metrics.Path, "/") {
		return invalid("metrics.path", "must start with /")
	}
	return nil
}

// SlogLevel parses Level.
func (l LogConfig) SlogLevel() (slog.Level, error) {
	var level slog.Level
	if err := level.UnmarshalText([]byte(l.Level)); err != nil {
		return 0, err
	}
	return level, nil
}

// NewLogger builds the logger described by l, writing to w.
func (l LogConfig) NewLogger(w io.Writer) *slog.Logger {
	level, err := l.SlogLevel()
	if err != nil {
		level = slog.LevelInfo
	}
	opts := &slog.HandlerOptions{Level: level}
	if l.Format == "json" {
		return slog.New(slog.NewJSONHandler(w, opts))
	}
	return slog.New(slog.NewTextHandler(w, opts))
}

// Exists reports whether dir contains hydrate.json.
func Exists(dir string) bool {
	_, err := os.Stat(filepath.Join(dir, ConfigFileName))
	return err == nil
}
