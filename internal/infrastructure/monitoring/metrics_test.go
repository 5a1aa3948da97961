package monitoring

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"
	"go.uber.org/zap"
)

func TestMetricsCollector_PlanningMetrics(t *testing.T) {
	collector := NewMetricsCollector(prometheus.NewRegistry(), zap.NewNop())

	collector.PlanGenerated(7, 21)
	collector.PlanGenerated(3, 9)
	collector.AllocationFailed("no_recipes_for_slot")
	collector.ShoppingListBuilt(12)
	collector.ShoppingListConflict()
	collector.UnitMismatch()
	collector.BudgetEstimated("high")
	collector.CacheOperation("get", "redis", "hit")

	assert.Equal(t, 2.0, testutil.ToFloat64(collector.plansGeneratedTotal))
	assert.Equal(t, 30.0, testutil.ToFloat64(collector.planItemsTotal))
	assert.Equal(t, 1.0, testutil.ToFloat64(collector.allocationFailures.WithLabelValues("no_recipes_for_slot")))
	assert.Equal(t, 1.0, testutil.ToFloat64(collector.shoppingListsBuilt))
	assert.Equal(t, 1.0, testutil.ToFloat64(collector.shoppingListConflicts))
	assert.Equal(t, 1.0, testutil.ToFloat64(collector.unitMismatches))
	assert.Equal(t, 1.0, testutil.ToFloat64(collector.budgetEstimates.WithLabelValues("high")))
	assert.Equal(t, 1.0, testutil.ToFloat64(collector.cacheOperations.WithLabelValues("get", "redis", "hit")))
}

func TestMetricsCollector_HTTPMiddlewareAndHandler(t *testing.T) {
	collector := NewMetricsCollector(prometheus.NewRegistry(), zap.NewNop())

	r := chi.NewRouter()
	r.Use(collector.HTTPMiddleware)
	r.Get("/plans/{planID}", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	})
	r.Handle("/metrics", collector.Handler())

	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/plans/abc", nil))
	require.Equal(t, http.StatusNotFound, rec.Code)

	assert.Equal(t, 1.0, testutil.ToFloat64(collector.httpRequestsTotal.WithLabelValues("GET", "/plans/{planID}", "404")))

	rec = httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.True(t, strings.Contains(rec.Body.String(), "http_requests_total"))
}

func TestTracingProvider(t *testing.T) {
	ctx := context.Background()

	t.Run("Disabled_IsNoop", func(t *testing.T) {
		provider, err := NewTracingProvider(ctx, TracingConfig{Enabled: false}, zap.NewNop())
		require.NoError(t, err)
		assert.NoError(t, provider.Shutdown(ctx))
	})

	t.Run("Exporter_ReceivesSpans", func(t *testing.T) {
		exporter := tracetest.NewInMemoryExporter()
		provider, err := NewTracingProviderWithExporter(ctx, TracingConfig{ServiceName: "mealplan-test"}, sdktrace.WithSyncer(exporter), zap.NewNop())
		require.NoError(t, err)

		spanCtx, span := otel.Tracer("test").Start(ctx, "planner.GeneratePlan")
		assert.NotEmpty(t, TraceIDFromContext(spanCtx))
		span.End()

		spans := exporter.GetSpans()
		require.Len(t, spans, 1)
		assert.Equal(t, "planner.GeneratePlan", spans[0].Name)
		assert.NoError(t, provider.Shutdown(ctx))
	})

	assert.Empty(t, TraceIDFromContext(ctx))
}
