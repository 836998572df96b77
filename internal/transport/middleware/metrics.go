package middleware

import (
	"net/http"

	"github.com/kbmproject/kbm-backend/internal/metrics"
)

// Metrics records request count, latency, and in-flight requests per chi
// route. Unmatched requests are labelled "unmatched".
func Metrics(m *metrics.Metrics) Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			done := m.HTTPStarted(r.Method)
			sw := newStatusWriter(w)

			next.ServeHTTP(sw, r)

			route := routePattern(r)
			if route == "" {
				route = "unmatched"
			}
			done(route, sw.status)
		})
	}
}
