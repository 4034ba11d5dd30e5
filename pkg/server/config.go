package server

import (
	"time"

	"github.com/vango-dev/hydrate/pkg/render"
	"github.com/vango-dev/hydrate/pkg/serverfn"
)

// PayloadMode selects how the hydration payload reaches the client.
type PayloadMode uint8

const (
	// PayloadInline embeds the payload in the document.
	PayloadInline PayloadMode = iota

	// PayloadStore publishes the payload to the Store and references it
	// from the document. The client fetches it from the payload endpoint.
	PayloadStore
)

// String returns the string representation of the PayloadMode.
func (m PayloadMode) String() string {
	switch m {
	case PayloadInline:
		return "inline"
	case PayloadStore:
		return "store"
	default:
		return "unknown"
	}
}

// Config holds the server settings.
type Config struct {
	// Addr is the listen address. Default: "localhost:3000".
	Addr string

	// RenderTimeout bounds one page render, including every load the
	// render waits for. Default: 10s.
	RenderTimeout time.Duration

	// ShutdownTimeout bounds graceful shutdown. Default: 10s.
	ShutdownTimeout time.Duration

	// ReadHeaderTimeout is passed to http.Server. Default: 5s.
	ReadHeaderTimeout time.Duration

	// Stream flushes the document head before the body is resolved.
	Stream bool

	// GatewayPrefix is where server functions are mounted. Default: "/_fn".
	GatewayPrefix string

	// Gateway configures the server function routes.
	Gateway serverfn.RouteOptions

	// PayloadMode defaults to PayloadInline. PayloadStore requires a Store.
	PayloadMode PayloadMode

	// PayloadTTL is how long a published payload stays fetchable.
	// Default: 5m.
	PayloadTTL time.Duration

	// MetricsPath is where the metrics handler is mounted. Default:
	// "/metrics".
	MetricsPath string

	// Renderer must match the client's mount options.
	Renderer render.RendererConfig

	// DevMode writes render errors into the response and disables
	// caching of the client bundle.
	DevMode bool
}

// DefaultConfig returns a Config with every default filled in.
func DefaultConfig() *Config {
	return &Config{
		Addr:              "localhost:3000",
		RenderTimeout:     10 * time.Second,
		ShutdownTimeout:   10 * time.Second,
		ReadHeaderTimeout: 5 * time.Second,
		GatewayPrefix:     "/_fn",
		PayloadTTL:        5 * time.Minute,
		MetricsPath:       "/metrics",
	}
}

// Clone returns a copy of the config.
func (c *Config) Clone() *Config {
	clone := *c
	return &clone
}

// withDefaults fills unset fields from DefaultConfig.
func (c *Config) withDefaults() *Config {
	out := c.Clone()
	defaults := DefaultConfig()
	if out.Addr == "" {
		out.Addr = defaults.Addr
	}
	if out.RenderTimeout <= 0 {
		out.RenderTimeout = defaults.RenderTimeout
	}
	if out.ShutdownTimeout <= 0 {
		out.ShutdownTimeout = defaults.ShutdownTimeout
	}
	if out.ReadHeaderTimeout <= 0 {
		out.ReadHeaderTimeout = defaults.ReadHeaderTimeout
	}
	if out.GatewayPrefix == "" {
		out.GatewayPrefix = defaults.GatewayPrefix
	}
	if out.PayloadTTL <= 0 {
		out.PayloadTTL = defaults.PayloadTTL
	}
	if out.MetricsPath == "" {
		out.MetricsPath = defaults.MetricsPath
	}
	return out
}
