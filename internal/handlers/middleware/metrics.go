package middleware

import (
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
)

type collector interface {
	RecordHTTPStatus(statusCode int)
	RecordRequestLatency(path string, duration time.Duration)
}

// MetricsMiddleware counts responses by status and observes request latency
func MetricsMiddleware(c collector) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()

			lw := &logWriter{
				ResponseWriter: w,
				data:           logData{responseStatus: http.StatusOK},
			}

			next.ServeHTTP(lw, r)

			c.RecordHTTPStatus(lw.data.responseStatus)
			c.RecordRequestLatency(metricPath(r.URL.Path), time.Since(start))
		})
	}
}

// metricPath collapses resource ids into a placeholder so the latency label
// set stays bounded
func metricPath(path string) string {
	segments := strings.Split(path, "/")
	for i, segment := range segments {
		if _, err := uuid.Parse(segment); err == nil {
			segments[i] = "{id}"
		}
	}
	return strings.Join(segments, "/")
}
