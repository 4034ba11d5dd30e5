package middleware

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/vango-dev/hydrate/pkg/serverfn"
)

const defaultTracerName = "hydrate"

// OTelConfig configures the OpenTelemetry interceptor and page middleware.
type OTelConfig struct {
	// TracerName is the name of the tracer (default: "hydrate").
	TracerName string

	// Filter decides which calls are traced. Nil traces every call.
	Filter func(call serverfn.Call) bool

	// AttributeExtractor adds attributes to every call span.
	AttributeExtractor func(ctx context.Context, call serverfn.Call) []attribute.KeyValue

	tracer trace.Tracer
}

// OTelOption configures OpenTelemetry tracing.
type OTelOption func(*OTelConfig)

// WithTracerName sets the tracer name.
func WithTracerName(name string) OTelOption {
	return func(c *OTelConfig) {
		c.TracerName = name
	}
}

// WithCallFilter sets a filter for traced calls.
func WithCallFilter(filter func(call serverfn.Call) bool) OTelOption {
	return func(c *OTelConfig) {
		c.Filter = filter
	}
}

// WithAttributeExtractor sets a custom attribute extractor.
func WithAttributeExtractor(extractor func(ctx context.Context, call serverfn.Call) []attribute.KeyValue) OTelOption {
	return func(c *OTelConfig) {
		c.AttributeExtractor = extractor
	}
}

func newOTelConfig(opts []OTelOption) OTelConfig {
	config := OTelConfig{TracerName: defaultTracerName}
	for _, opt := range opts {
		opt(&config)
	}
	config.tracer = otel.Tracer(config.TracerName)
	return config
}

// OpenTelemetry returns a serverfn interceptor that traces every
// invocation. The span travels in the context handed to the next
// interceptor and to the implementation.
//
// The tracer comes from the global provider. Configure it in main:
//
//	otel.SetTracerProvider(tp)
func OpenTelemetry(opts ...OTelOption) serverfn.Interceptor {
	config := newOTelConfig(opts)

	return func(ctx context.Context, call serverfn.Call, next serverfn.Invoker) error {
		if config.Filter != nil && !config.Filter(call) {
			return next(ctx)
		}

		attrs := []attribute.KeyValue{
			attribute.String("hydrate.function", call.Name),
			attribute.String("hydrate.side", call.Side.String()),
		}
		if config.AttributeExtractor != nil {
			attrs = append(attrs, config.AttributeExtractor(ctx, call)...)
		}

		ctx, span := config.tracer.Start(ctx, "serverfn "+call.Name,
			trace.WithSpanKind(spanKind(call.Side)),
			trace.WithAttributes(attrs...),
		)
		defer span.End()

		err := next(ctx)
		if err != nil {
			var ferr *serverfn.Error
			if errors.As(err, &ferr) {
				span.SetAttributes(
					attribute.String("hydrate.error_kind", ferr.Kind.String()),
					attribute.String("hydrate.error_code", ferr.Code.String()),
				)
			}
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
			return err
		}
		span.SetStatus(codes.Ok, "")
		return nil
	}
}

func spanKind(side serverfn.Side) trace.SpanKind {
	switch side {
	case serverfn.SideRemote:
		return trace.SpanKindClient
	case serverfn.SideHandler:
		return trace.SpanKindServer
	default:
		return trace.SpanKindInternal
	}
}

// TracePages returns HTTP middleware that opens a span per page request.
// Resource loaders started by the render inherit it through the request
// context.
func TracePages(opts ...OTelOption) func(http.Handler) http.Handler {
	config := newOTelConfig(opts)

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx, span := config.tracer.Start(r.Context(), fmt.Sprintf("render %s", r.URL.Path),
				trace.WithSpanKind(trace.SpanKindServer),
				trace.WithAttributes(
					attribute.String("http.method", r.Method),
					attribute.String("http.target", r.URL.Path),
				),
			)
			defer span.End()
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}
