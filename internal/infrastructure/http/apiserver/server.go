// Package apiserver provides the JSON API HTTP server
package apiserver

import (
	"context"
	"errors"
	"net/http"

	"github.com/alchemorsel/mealplan/internal/infrastructure/config"
	"github.com/alchemorsel/mealplan/internal/infrastructure/http/handlers"
	"github.com/alchemorsel/mealplan/internal/infrastructure/http/middleware"
	"github.com/alchemorsel/mealplan/internal/infrastructure/monitoring"
	"github.com/alchemorsel/mealplan/internal/infrastructure/security"
	"github.com/alchemorsel/mealplan/internal/ports/inbound"
	"github.com/alchemorsel/mealplan/internal/ports/outbound"
	apperrors "github.com/alchemorsel/mealplan/pkg/errors"
	"github.com/alchemorsel/mealplan/pkg/healthcheck"
	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
	"go.uber.org/zap"
)

// Dependencies are the services the routes dispatch to
type Dependencies struct {
	Plans       inbound.PlanService
	Shopping    inbound.ShoppingService
	Budget      inbound.BudgetService
	Users       outbound.UserRepository
	Auth        *security.AuthService
	RateLimiter *security.RateLimitService
	Validator   *security.ValidationService
	Health      *healthcheck.HealthCheck
	Metrics     *monitoring.MetricsCollector
}

// Server is the JSON API HTTP server
type Server struct {
	config *config.Config
	logger *zap.Logger
	deps   Dependencies
	router *chi.Mux
	server *http.Server
}

// NewServer creates a new API server instance
func NewServer(cfg *config.Config, log *zap.Logger, deps Dependencies) *Server {
	s := &Server{
		config: cfg,
		logger: log.Named("http"),
		deps:   deps,
	}

	s.router = s.setupRoutes()
	s.server = &http.Server{
		Addr:           cfg.ListenAddr(),
		Handler:        s.Handler(),
		ReadTimeout:    cfg.Server.ReadTimeout,
		WriteTimeout:   cfg.Server.WriteTimeout,
		IdleTimeout:    cfg.Server.IdleTimeout,
		MaxHeaderBytes: cfg.Server.MaxHeaderBytes,
	}
	return s
}

// Handler returns the traced root handler
func (s *Server) Handler() http.Handler {
	return otelhttp.NewHandler(s.router, "mealplan-api",
		otelhttp.WithFilter(func(r *http.Request) bool {
			return r.URL.Path != s.config.Monitoring.HealthCheckPath
		}),
	)
}

// setupRoutes configures the middleware chain and routes
func (s *Server) setupRoutes() *chi.Mux {
	r := chi.NewRouter()
	writeError := handlers.NewErrorWriter(s.logger)

	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.RealIP)
	if s.deps.Metrics != nil {
		r.Use(s.deps.Metrics.HTTPMiddleware)
	}
	r.Use(middleware.Logger(s.logger, s.config.Monitoring.HealthCheckPath, s.config.Monitoring.MetricsPath))
	r.Use(chimiddleware.Recoverer)
	r.Use(middleware.Security())
	r.Use(middleware.CORS(s.allowedOrigins()))
	if s.config.Server.RequestTimeout > 0 {
		r.Use(chimiddleware.Timeout(s.config.Server.RequestTimeout))
	}

	if s.deps.Health != nil {
		r.Get(s.config.Monitoring.HealthCheckPath, s.deps.Health.Handler())
	}
	if s.deps.Metrics != nil && s.config.Monitoring.EnableMetrics {
		r.Method(http.MethodGet, s.config.Monitoring.MetricsPath, s.deps.Metrics.Handler())
	}

	r.Route("/api/v1", func(r chi.Router) {
		r.Use(middleware.JSONOnly(writeError))
		r.Get("/openapi.yaml", serveOpenAPISpec)
		s.setupAPIV1Routes(r, writeError)
	})

	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		writeError(w, r, apperrors.NewNotFoundError("Route"))
	})
	return r
}

// setupAPIV1Routes configures API v1 endpoints
func (s *Server) setupAPIV1Routes(r chi.Router, writeError middleware.ErrorWriter) {
	planH := handlers.NewPlanHandlers(s.deps.Plans, s.deps.Shopping, s.deps.Validator, s.logger)
	shopH := handlers.NewShoppingHandlers(s.deps.Shopping, s.deps.Budget, s.deps.Validator, s.logger)
	authH := handlers.NewAuthAPIHandlers(s.deps.Users, s.deps.Auth, s.deps.Validator, s.logger)

	if s.config.IsDevelopment() {
		r.Post("/auth/token", authH.IssueToken)
	}

	r.Group(func(r chi.Router) {
		r.Use(middleware.Authenticate(s.deps.Auth, writeError))

		r.Get("/auth/profile", authH.GetProfile)

		r.Route("/plans", func(r chi.Router) {
			generate := http.Handler(http.HandlerFunc(planH.GeneratePlan))
			if s.config.RateLimit.Enable && s.deps.RateLimiter != nil {
				generate = middleware.RateLimit(s.deps.RateLimiter, writeError)(generate)
			}
			r.Method(http.MethodPost, "/", generate)

			r.Route("/{planID}", func(r chi.Router) {
				r.Get("/", planH.GetPlan)
				r.Delete("/", planH.DeletePlan)
				r.Post("/shopping-list", planH.BuildShoppingList)
				r.Get("/shopping-list", planH.GetShoppingList)
			})
		})

		r.Post("/shopping-list-items/{itemID}/toggle", shopH.ToggleItem)

		r.Route("/shopping-lists/{listID}", func(r chi.Router) {
			r.Put("/categories/{category}", shopH.UpdateCategory)
			r.Post("/items", shopH.AddItem)
			r.Get("/budget", shopH.EstimateBudget)
		})
	})
}

func (s *Server) allowedOrigins() []string {
	if len(s.config.Server.AllowedOrigins) == 0 && s.config.IsDevelopment() {
		return []string{"*"}
	}
	return s.config.Server.AllowedOrigins
}

// Start serves until Shutdown is called
func (s *Server) Start() error {
	s.logger.Info("Starting API server", zap.String("address", s.server.Addr))

	if err := s.server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// Shutdown gracefully shuts down the server
func (s *Server) Shutdown(ctx context.Context) error {
	s.logger.Info("Shutting down API server")
	return s.server.Shutdown(ctx)
}
