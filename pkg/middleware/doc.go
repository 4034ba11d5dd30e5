// Package middleware instruments the gateway, resources and hydration.
//
// # Prometheus
//
// Metrics is a serverfn interceptor source and an observer for resources
// and the hydration synchronizer:
//
//	m := middleware.NewMetrics(middleware.WithNamespace("shop"))
//	reg := serverfn.NewRegistry(serverfn.WithRegistryInterceptors(m.Interceptor()))
//	resource.AttachObserver(rt, m)
//	http.Handle("/metrics", promhttp.Handler())
//
// # OpenTelemetry
//
// OpenTelemetry returns an interceptor that opens a span per invocation,
// client kind on the calling side and server kind in the handler.
// TracePages does the same for page requests.
//
//	reg.Use(middleware.OpenTelemetry(middleware.WithTracerName("shop")))
package middleware
