package middleware

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gorilla/mux"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/trace"
)

const tracerName = "go-vaccination-booking/internal/delivery/http"

// statusRecorder captures the status code written by the handler
type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(code int) {
	r.status = code
	r.ResponseWriter.WriteHeader(code)
}

// Telemetry instruments requests with a server span, a request counter and a
// duration histogram labelled by the mux route template.
func Telemetry() mux.MiddlewareFunc {
	tracer := otel.Tracer(tracerName)
	meter := otel.Meter(tracerName)

	requestCounter, _ := meter.Int64Counter(
		"http_server_request_count",
		metric.WithDescription("Total number of HTTP requests"),
		metric.WithUnit("{request}"),
	)
	requestDuration, _ := meter.Float64Histogram(
		"http_server_request_duration_ms",
		metric.WithDescription("HTTP request duration in milliseconds"),
		metric.WithUnit("ms"),
	)

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := otel.GetTextMapPropagator().Extract(r.Context(), propagation.HeaderCarrier(r.Header))

			route := r.URL.Path
			if current := mux.CurrentRoute(r); current != nil {
				if tmpl, err := current.GetPathTemplate(); err == nil {
					route = tmpl
				}
			}

			ctx, span := tracer.Start(ctx, r.Method+" "+route,
				trace.WithSpanKind(trace.SpanKindServer),
				trace.WithAttributes(
					attribute.String("http.method", r.Method),
					attribute.String("http.route", route),
					attribute.String("http.user_agent", r.UserAgent()),
				),
			)
			defer span.End()

			if span.SpanContext().HasTraceID() {
				w.Header().Set("X-Trace-Id", span.SpanContext().TraceID().String())
			}

			rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
			start := time.Now()
			next.ServeHTTP(rec, r.WithContext(ctx))
			duration := float64(time.Since(start).Microseconds()) / 1000

			span.SetAttributes(
				attribute.Int("http.status_code", rec.status),
				attribute.Float64("http.duration_ms", duration),
			)

			attrs := metric.WithAttributes(
				attribute.String("http.method", r.Method),
				attribute.String("http.route", route),
				attribute.Int("http.status_code", rec.status),
			)
			requestCounter.Add(ctx, 1, attrs)
			requestDuration.Record(ctx, duration, attrs)

			if rec.status >= http.StatusInternalServerError {
				span.SetStatus(codes.Error, "HTTP "+strconv.Itoa(rec.status))
			} else {
				span.SetStatus(codes.Ok, "")
			}
		})
	}
}
