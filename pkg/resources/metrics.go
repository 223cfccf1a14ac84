package resources

import (
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

// Endpoints scraped by infrastructure are not part of the API traffic.
var unmeasured = map[string]struct{}{"/metrics": {}, "/health": {}}

type HTTPMetrics struct {
	requests metric.Int64Counter
	failures metric.Int64Counter
	inFlight metric.Int64UpDownCounter
	latency  metric.Float64Histogram
}

// NewHTTPMetrics builds the gin request instruments on the named meter.
func NewHTTPMetrics(name string) *HTTPMetrics {
	meter := otel.Meter(name)

	requests, _ := meter.Int64Counter("http.server.requests",
		metric.WithDescription("HTTP requests by route and status class"))
	failures, _ := meter.Int64Counter("http.server.failures",
		metric.WithDescription("HTTP requests answered with a 5xx status"))
	inFlight, _ := meter.Int64UpDownCounter("http.server.active_requests",
		metric.WithDescription("HTTP requests being served"))
	latency, _ := meter.Float64Histogram("http.server.duration.ms",
		metric.WithDescription("HTTP request duration in milliseconds"),
		metric.WithUnit("ms"))

	return &HTTPMetrics{
		requests: requests,
		failures: failures,
		inFlight: inFlight,
		latency:  latency,
	}
}

func routeOf(c *gin.Context) string {
	if route := c.FullPath(); route != "" {
		return route
	}

	return "unmatched"
}

func (m *HTTPMetrics) Middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		if _, skip := unmeasured[c.Request.URL.Path]; skip {
			c.Next()
			return
		}

		ctx := c.Request.Context()
		method := attribute.String("http.method", c.Request.Method)

		m.inFlight.Add(ctx, 1, metric.WithAttributes(method))
		defer m.inFlight.Add(ctx, -1, metric.WithAttributes(method))

		start := time.Now()

		c.Next()

		status := c.Writer.Status()
		attrs := metric.WithAttributes(
			method,
			attribute.String("http.route", routeOf(c)),
			attribute.String("http.status_class", strconv.Itoa(status/100)+"xx"),
		)

		m.requests.Add(ctx, 1, attrs)
		m.latency.Record(ctx, float64(time.Since(start).Microseconds())/1000, attrs)

		if status >= 500 {
			m.failures.Add(ctx, 1, attrs)
		}
	}
}
