package resource

import (
	"context"
	"log/slog"

	"github.com/vango-dev/hydrate/pkg/codec"
)

type config struct {
	name     string
	codec    codec.Codec
	ctx      context.Context
	observer Observer
	logger   *slog.Logger

	// onSettle holds a func(State[T]) for the resource's T.
	onSettle any
}

// Option configures a Resource.
type Option func(*config)

// WithName names the resource in logs and metrics.
func WithName(name string) Option {
	return func(c *config) {
		c.name = name
	}
}

// WithCodec sets the codec used for hydration envelopes. Default:
// codec.Default.
func WithCodec(cd codec.Codec) Option {
	return func(c *config) {
		c.codec = cd
	}
}

// WithContext sets the parent of every loader context. Cancelling it
// cancels in-flight loads.
func WithContext(ctx context.Context) Option {
	return func(c *config) {
		c.ctx = ctx
	}
}

// WithObserver overrides the observer attached to the runtime.
func WithObserver(o Observer) Option {
	return func(c *config) {
		c.observer = o
	}
}

// WithLogger sets the logger. Default: the runtime's logger.
func WithLogger(l *slog.Logger) Option {
	return func(c *config) {
		c.logger = l
	}
}

// OnSettle registers fn to run on the loop after every applied settlement,
// including one adopted from the server. T must match the resource's
// value type; otherwise fn is ignored.
func OnSettle[T any](fn func(State[T])) Option {
	return func(c *config) {
		c.onSettle = fn
	}
}
