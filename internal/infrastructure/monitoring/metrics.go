package monitoring

import (
	"context"
	"net/http"
	"strconv"
	"time"

	"github.com/alchemorsel/mealplan/internal/ports/outbound"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"
)

// MetricsCollector handles Prometheus metrics collection
type MetricsCollector struct {
	logger   *zap.Logger
	gatherer prometheus.Gatherer

	// HTTP metrics
	httpRequestsTotal   *prometheus.CounterVec
	httpRequestDuration *prometheus.HistogramVec

	// Planning metrics
	plansGeneratedTotal   prometheus.Counter
	planItemsTotal        prometheus.Counter
	planDays              prometheus.Histogram
	allocationFailures    *prometheus.CounterVec
	shoppingListsBuilt    prometheus.Counter
	shoppingListItems     prometheus.Histogram
	shoppingListConflicts prometheus.Counter
	unitMismatches        prometheus.Counter
	budgetEstimates       *prometheus.CounterVec

	// System metrics
	cacheOperations *prometheus.CounterVec
	uptimeSeconds   prometheus.Counter
}

var _ outbound.PlanningMetrics = (*MetricsCollector)(nil)

// NewMetricsCollector registers the collectors with reg. Gathering for the
// /metrics handler uses reg as well when it is a *prometheus.Registry,
// otherwise the default gatherer.
func NewMetricsCollector(reg prometheus.Registerer, logger *zap.Logger) *MetricsCollector {
	factory := promauto.With(reg)

	var gatherer prometheus.Gatherer = prometheus.DefaultGatherer
	if g, ok := reg.(prometheus.Gatherer); ok {
		gatherer = g
	}

	return &MetricsCollector{
		logger:   logger.Named("metrics"),
		gatherer: gatherer,

		httpRequestsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "http_requests_total",
				Help: "Total number of HTTP requests",
			},
			[]string{"method", "route", "status_code"},
		),
		httpRequestDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "http_request_duration_seconds",
				Help:    "HTTP request duration in seconds",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"method", "route"},
		),

		plansGeneratedTotal: factory.NewCounter(
			prometheus.CounterOpts{
				Name: "mealplan_plans_generated_total",
				Help: "Total number of meal plans generated",
			},
		),
		planItemsTotal: factory.NewCounter(
			prometheus.CounterOpts{
				Name: "mealplan_plan_items_total",
				Help: "Total number of planned meals across all plans",
			},
		),
		planDays: factory.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "mealplan_plan_days",
				Help:    "Requested plan horizon in days",
				Buckets: []float64{1, 2, 3, 5, 7},
			},
		),
		allocationFailures: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "mealplan_allocation_failures_total",
				Help: "Plan generations rejected before persistence, by reason",
			},
			[]string{"reason"},
		),
		shoppingListsBuilt: factory.NewCounter(
			prometheus.CounterOpts{
				Name: "mealplan_shopping_lists_built_total",
				Help: "Total number of shopping lists built",
			},
		),
		shoppingListItems: factory.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "mealplan_shopping_list_items",
				Help:    "Number of items per built shopping list",
				Buckets: prometheus.LinearBuckets(5, 10, 8),
			},
		),
		shoppingListConflicts: factory.NewCounter(
			prometheus.CounterOpts{
				Name: "mealplan_shopping_list_conflicts_total",
				Help: "Concurrent shopping list builds resolved to an existing list",
			},
		),
		unitMismatches: factory.NewCounter(
			prometheus.CounterOpts{
				Name: "mealplan_unit_mismatches_total",
				Help: "Ingredients kept in more than one unit class",
			},
		),
		budgetEstimates: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "mealplan_budget_estimates_total",
				Help: "Budget estimates computed, by confidence",
			},
			[]string{"confidence"},
		),

		cacheOperations: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "cache_operations_total",
				Help: "Total number of cache operations",
			},
			[]string{"operation", "cache_type", "status"},
		),
		uptimeSeconds: factory.NewCounter(
			prometheus.CounterOpts{
				Name: "uptime_seconds_total",
				Help: "Total uptime in seconds",
			},
		),
	}
}

// HTTPMiddleware records request counts and latency by chi route pattern
func (m *MetricsCollector) HTTPMiddleware(next http.Handler) http.Handler {
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

		m.httpRequestsTotal.WithLabelValues(r.Method, route, strconv.Itoa(status)).Inc()
		m.httpRequestDuration.WithLabelValues(r.Method, route).Observe(time.Since(start).Seconds())
	})
}

// Planning metric methods

func (m *MetricsCollector) PlanGenerated(days, items int) {
	m.plansGeneratedTotal.Inc()
	m.planItemsTotal.Add(float64(items))
	m.planDays.Observe(float64(days))
}

func (m *MetricsCollector) AllocationFailed(reason string) {
	m.allocationFailures.WithLabelValues(reason).Inc()
}

func (m *MetricsCollector) ShoppingListBuilt(items int) {
	m.shoppingListsBuilt.Inc()
	m.shoppingListItems.Observe(float64(items))
}

func (m *MetricsCollector) ShoppingListConflict() {
	m.shoppingListConflicts.Inc()
}

func (m *MetricsCollector) UnitMismatch() {
	m.unitMismatches.Inc()
}

func (m *MetricsCollector) BudgetEstimated(confidence string) {
	m.budgetEstimates.WithLabelValues(confidence).Inc()
}

// CacheOperation counts a cache access; status is hit, miss, or error
func (m *MetricsCollector) CacheOperation(operation, cacheType, status string) {
	m.cacheOperations.WithLabelValues(operation, cacheType, status).Inc()
}

// StartUptimeCounter starts the uptime counter
func (m *MetricsCollector) StartUptimeCounter(ctx context.Context) {
	ticker := time.NewTicker(time.Second)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			m.uptimeSeconds.Inc()
		}
	}
}

// Handler returns the Prometheus metrics HTTP handler
func (m *MetricsCollector) Handler() http.Handler {
	return promhttp.HandlerFor(m.gatherer, promhttp.HandlerOpts{})
}
