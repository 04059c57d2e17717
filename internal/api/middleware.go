package api

import (
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/dopamind/dopamind/internal/infra/metrics"
	"github.com/dopamind/dopamind/internal/logging"
)

// accessLog records one structured line and one latency observation per
// request. The route label uses the chi pattern so user IDs do not
// explode metric cardinality.
func accessLog(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		start := time.Now()

		next.ServeHTTP(ww, r)

		elapsed := time.Since(start)
		status := ww.Status()
		if status == 0 {
			status = http.StatusOK
		}

		route := "unmatched"
		if rctx := chi.RouteContext(r.Context()); rctx != nil {
			if p := rctx.RoutePattern(); p != "" {
				route = p
			}
		}
		metrics.HTTPLatency.WithLabelValues(route, strconv.Itoa(status)).Observe(elapsed.Seconds())

		ev := logging.Info()
		if status >= http.StatusInternalServerError {
			ev = logging.Error()
		}
		ev.Str("request_id", middleware.GetReqID(r.Context())).
			Str("method", r.Method).
			Str("path", r.URL.Path).
			Str("route", route).
			Int("status", status).
			Int("bytes", ww.BytesWritten()).
			Dur("duration", elapsed).
			Str("remote_ip", r.RemoteAddr).
			Msg("http request")
	})
}
