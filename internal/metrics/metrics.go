// Package metrics exposes poll cycle outcomes to Prometheus.
package metrics

import (
	"context"
	"errors"
	"math"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rileyhilliard/pvdash/internal/dashboard"
	"github.com/rileyhilliard/pvdash/internal/logger"
)

// Result label values for pvdash_cycles_total.
const (
	ResultOK    = "ok"
	ResultError = "error"
)

// Metrics records every completed cycle. It implements dashboard.Observer.
type Metrics struct {
	cyclesTotal      *prometheus.CounterVec
	cycleDuration    prometheus.Histogram
	status           *prometheus.GaugeVec
	nextDelay        prometheus.Gauge
	nearestDistance  prometheus.Gauge
	samplesAppended  *prometheus.CounterVec
	priorityVehicles prometheus.Gauge
}

// New registers the dashboard metrics with reg.
func New(reg prometheus.Registerer) *Metrics {
	f := promauto.With(reg)
	return &Metrics{
		cyclesTotal: f.NewCounterVec(
			prometheus.CounterOpts{
				Name: "pvdash_cycles_total",
				Help: "Total number of poll cycles by result",
			},
			[]string{"result"},
		),
		cycleDuration: f.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "pvdash_cycle_duration_seconds",
				Help:    "Time spent fetching and classifying one cycle",
				Buckets: prometheus.DefBuckets,
			},
		),
		status: f.NewGaugeVec(
			prometheus.GaugeOpts{
				Name: "pvdash_status",
				Help: "Current dashboard status (1 for the active status, 0 otherwise)",
			},
			[]string{"status"},
		),
		nextDelay: f.NewGauge(
			prometheus.GaugeOpts{
				Name: "pvdash_next_delay_seconds",
				Help: "Delay armed before the next poll cycle",
			},
		),
		nearestDistance: f.NewGauge(
			prometheus.GaugeOpts{
				Name: "pvdash_nearest_distance_meters",
				Help: "Nearest reported vehicle distance (NaN when none reported)",
			},
		),
		samplesAppended: f.NewCounterVec(
			prometheus.CounterOpts{
				Name: "pvdash_samples_appended_total",
				Help: "Total distance samples appended per vehicle",
			},
			[]string{"vehicle"},
		),
		priorityVehicles: f.NewGauge(
			prometheus.GaugeOpts{
				Name: "pvdash_priority_vehicles",
				Help: "Number of vehicles currently classified as priority",
			},
		),
	}
}

// ObserveCycle implements dashboard.Observer.
func (m *Metrics) ObserveCycle(o *dashboard.Outcome) {
	if m == nil || o == nil {
		return
	}

	result := ResultOK
	if !o.OK() {
		result = ResultError
	}
	m.cyclesTotal.WithLabelValues(result).Inc()
	m.cycleDuration.Observe(o.Duration().Seconds())
	m.nextDelay.Set(o.NextDelay.Seconds())

	for _, s := range dashboard.Statuses {
		v := 0.0
		if s == o.Status {
			v = 1
		}
		m.status.WithLabelValues(s.String()).Set(v)
	}

	if !o.OK() {
		return
	}

	nearest := o.Nearest
	if math.IsInf(nearest, 0) {
		nearest = math.NaN()
	}
	m.nearestDistance.Set(nearest)

	priority := 0
	for _, p := range o.Panels {
		if p.Appended {
			m.samplesAppended.WithLabelValues(p.ID).Inc()
		}
		if p.Priority {
			priority++
		}
	}
	m.priorityVehicles.Set(float64(priority))
}

// Handler serves the metrics gathered by g.
func Handler(g prometheus.Gatherer) http.Handler {
	return promhttp.HandlerFor(g, promhttp.HandlerOpts{})
}

// Serve exposes /metrics on listen until ctx is cancelled.
func Serve(ctx context.Context, listen string, g prometheus.Gatherer, log logger.Logger) error {
	if log == nil {
		log = logger.Noop()
	}

	mux := http.NewServeMux()
	mux.Handle("/metrics", Handler(g))
	srv := &http.Server{
		Addr:              listen,
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}

	log.Info("metrics listening on %s", listen)
	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.ListenAndServe()
	}()

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	}
}
