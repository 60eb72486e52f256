package observability

import (
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
)

type Prom struct {
	RequestsTotal    *prometheus.CounterVec
	RequestsDuration *prometheus.HistogramVec
	InFlight         *prometheus.GaugeVec

	// session store
	SessionOps        *prometheus.CounterVec
	SessionOpDuration *prometheus.HistogramVec
	LiveStores        prometheus.Gauge

	// route guard
	GuardDecisions *prometheus.CounterVec

	// durable slots
	SlotOpDuration *prometheus.HistogramVec
	SlotErrors     *prometheus.CounterVec
	SlotBreaker    *prometheus.GaugeVec
}

func NewProm(reg prometheus.Registerer) *Prom {
	p := &Prom{
		RequestsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "campushub",
				Name:      "http_requests_total",
				Help:      "Total HTTP requests processed",
			},
			[]string{"method", "route", "status"},
		),
		RequestsDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: "campushub",
				Name:      "http_request_duration_seconds",
				Help:      "HTTP request latency distributions.",
				Buckets:   []float64{0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2, 5, 10},
			},
			[]string{"method", "route", "status"},
		),
		InFlight: prometheus.NewGaugeVec(
			prometheus.GaugeOpts{
				Namespace: "campushub",
				Name:      "http_in_flight_requests",
				Help:      "Current number of in-flight HTTP requests.",
			},
			[]string{"method", "route"},
		),
		SessionOps: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "campushub",
				Subsystem: "session",
				Name:      "operations_total",
				Help:      "Session store operations by op and result.",
			},
			[]string{"op", "result"},
		),
		SessionOpDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: "campushub",
				Subsystem: "session",
				Name:      "operation_duration_seconds",
				Help:      "Session store operation latency, simulated delay included.",
				Buckets:   []float64{0.001, 0.005, 0.01, 0.05, 0.1, 0.25, 0.5, 1, 1.5, 2, 5},
			},
			[]string{"op"},
		),
		LiveStores: prometheus.NewGauge(
			prometheus.GaugeOpts{
				Namespace: "campushub",
				Subsystem: "session",
				Name:      "live_stores",
				Help:      "Per-device session stores currently held in memory.",
			},
		),
		GuardDecisions: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "campushub",
				Subsystem: "guard",
				Name:      "decisions_total",
				Help:      "Route guard outcomes by action and target.",
			},
			[]string{"action", "target"},
		),
		SlotOpDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: "campushub",
				Subsystem: "slot",
				Name:      "operation_duration_seconds",
				Help:      "Durable slot operation latency by backend, op and status.",
				Buckets:   []float64{0.0005, 0.001, 0.005, 0.01, 0.02, 0.05, 0.1, 0.2, 0.5, 1, 2},
			},
			[]string{"backend", "op", "status"},
		),
		SlotErrors: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "campushub",
				Subsystem: "slot",
				Name:      "errors_total",
				Help:      "Durable slot errors by backend, op and class.",
			},
			[]string{"backend", "op", "class"},
		),
		SlotBreaker: prometheus.NewGaugeVec(
			prometheus.GaugeOpts{
				Namespace: "campushub",
				Subsystem: "slot",
				Name:      "breaker_state",
				Help:      "1 for the slot circuit breaker's current state, 0 for the others.",
			},
			[]string{"backend", "state"},
		),
	}
	reg.MustRegister(
		p.RequestsTotal, p.RequestsDuration, p.InFlight,
		p.SessionOps, p.SessionOpDuration, p.LiveStores,
		p.GuardDecisions,
		p.SlotOpDuration, p.SlotErrors, p.SlotBreaker,
	)

	return p
}

func (p *Prom) GinHandleMiddleware() gin.HandlerFunc {
	return func(ctx *gin.Context) {
		start := time.Now()

		// route template is only available after routing; best effort:
		route := ctx.FullPath()

		if route == "" {
			route = "unmatched"
		}

		method := ctx.Request.Method
		p.InFlight.WithLabelValues(method, route).Inc()
		defer p.InFlight.WithLabelValues(method, route).Dec()
		ctx.Next()

		status := strconv.Itoa(ctx.Writer.Status())
		secs := time.Since(start).Seconds()

		p.RequestsTotal.WithLabelValues(method, route, status).Inc()
		p.RequestsDuration.WithLabelValues(method, route, status).Observe(secs)
	}
}

func (p *Prom) ObserveSessionOp(op, result string, elapsed time.Duration) {
	p.SessionOps.WithLabelValues(op, result).Inc()
	p.SessionOpDuration.WithLabelValues(op).Observe(elapsed.Seconds())
}

// ObserveGuard counts one guard decision. target is the redirect target or
// the rendered view name.
func (p *Prom) ObserveGuard(action, target string) {
	p.GuardDecisions.WithLabelValues(action, target).Inc()
}

func (p *Prom) SetLiveStores(n int) {
	p.LiveStores.Set(float64(n))
}

var breakerStates = []string{"closed", "half_open", "open"}

// SetBreakerState marks state as the current breaker state for backend.
func (p *Prom) SetBreakerState(backend, state string) {
	for _, s := range breakerStates {
		v := 0.0
		if s == state {
			v = 1
		}
		p.SlotBreaker.WithLabelValues(backend, s).Set(v)
	}
}
