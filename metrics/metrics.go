// Package metrics holds the prometheus collectors of the report service.
package metrics

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"pos-analytics/logging"
)

// refresh results
const (
	ResultOK      = "ok"
	ResultPartial = "partial"
)

var (
	// Registry is the global registry
	Registry = NewRegistry(true)

	RefreshTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "pos_dashboard_refresh_total",
		Help: "Dashboard refreshes by result.",
	}, []string{"result"})

	FetchFailures = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "pos_fetch_failures_total",
		Help: "Failed record fetches by collection.",
	}, []string{"collection"})

	RefreshSeconds = prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:    "pos_dashboard_refresh_seconds",
		Help:    "Time to load every dashboard section.",
		Buckets: prometheus.DefBuckets,
	})

	BatchWrites = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "pos_batch_writes_total",
		Help: "Committed write batches.",
	})

	LowStockItems = prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "pos_low_stock_items",
		Help: "Inventory items at or below their minimum quantity at the last load.",
	})
)

func init() {
	Registry.MustRegister(RefreshTotal, FetchFailures, RefreshSeconds, BatchWrites, LowStockItems)
}

// NewRegistry creates a new registry.
// If collectProcessMetrics = true, the go and process collectors are registered.
func NewRegistry(collectProcessMetrics bool) *prometheus.Registry {
	registry := prometheus.NewRegistry()
	if collectProcessMetrics {
		registry.MustRegister(
			collectors.NewGoCollector(),
			collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		)
	}
	return registry
}

// Handler serves Registry in the prometheus exposition format.
func Handler() http.Handler {
	return promhttp.HandlerFor(Registry, promhttp.HandlerOpts{
		ErrorHandling: promhttp.ContinueOnError,
	})
}

// Serve exposes /metrics on addr until ctx is done.
func Serve(ctx context.Context, addr string) error {
	logger := logging.New("metrics")
	mux := http.NewServeMux()
	mux.Handle("/metrics", Handler())
	srv := &http.Server{Addr: addr, Handler: mux, ReadHeaderTimeout: 10 * time.Second}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			logger.Error().Err(err).Msg("metrics shutdown")
		}
	}()

	logger.Info().Str("addr", addr).Msg("metrics listening")
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}
