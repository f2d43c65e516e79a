package web

import (
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/thebtf/catwalk/internal/web/sse"
)

// metrics holds the server's Prometheus collectors. Each Server gets its own
// registry so several servers can coexist in one process.
type metrics struct {
	registry    *prometheus.Registry
	requests    *prometheus.CounterVec
	duration    *prometheus.HistogramVec
	registered  prometheus.Counter
	transitions *prometheus.CounterVec
	resets      prometheus.Counter
}

func newMetrics(events *sse.Broadcaster) *metrics {
	m := &metrics{
		registry: prometheus.NewRegistry(),
		requests: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "catwalk_http_requests_total",
				Help: "HTTP requests by route and status",
			},
			[]string{"method", "route", "status"},
		),
		duration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "catwalk_http_request_duration_seconds",
				Help:    "HTTP request latency by route",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"route"},
		),
		registered: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "catwalk_cats_registered_total",
			Help: "Cats registered through the web surface",
		}),
		transitions: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "catwalk_walk_transitions_total",
				Help: "Walk state changes by transition",
			},
			[]string{"transition"},
		),
		resets: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "catwalk_resets_total",
			Help: "Data resets",
		}),
	}

	subscribers := prometheus.NewGaugeFunc(
		prometheus.GaugeOpts{
			Name: "catwalk_event_subscribers",
			Help: "Connected change-feed subscribers",
		},
		func() float64 { return float64(events.ClientCount()) },
	)

	m.registry.MustRegister(
		m.requests, m.duration, m.registered, m.transitions, m.resets, subscribers,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return m
}

func (m *metrics) handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

// observe records one event against the domain counters.
func (m *metrics) observe(ev sse.Event) {
	switch ev.Type {
	case sse.EventCatAdded:
		m.registered.Inc()
	case sse.EventWalk:
		m.transitions.WithLabelValues(ev.Transition).Inc()
	case sse.EventReset:
		m.resets.Inc()
	}
}

// instrument counts and times requests by chi route pattern.
func (m *metrics) instrument(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)

		route := "unmatched"
		if rctx := chi.RouteContext(r.Context()); rctx != nil && rctx.RoutePattern() != "" {
			route = rctx.RoutePattern()
		}
		status := ww.Status()
		if status == 0 {
			status = http.StatusOK
		}
		m.requests.WithLabelValues(r.Method, route, strconv.Itoa(status)).Inc()
		m.duration.WithLabelValues(route).Observe(time.Since(start).Seconds())
	})
}
