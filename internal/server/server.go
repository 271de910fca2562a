package server

import (
	"kvk-dashboard/internal/config"
	"kvk-dashboard/internal/middleware"
	"kvk-dashboard/internal/service"
	"net/http"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/cors"
	"github.com/rs/zerolog"
)

type DashboardServer struct {
	ingestSvc      *service.IngestService
	kpiSvc         *service.KPIService
	leaderboardSvc *service.LeaderboardService
	statusSvc      *service.StatusService
	adjustmentSvc  *service.AdjustmentService
	cfg            *config.Config
	gatherer       prometheus.Gatherer
	logger         zerolog.Logger
}

func NewDashboardServer(
	ingestSvc *service.IngestService,
	kpiSvc *service.KPIService,
	leaderboardSvc *service.LeaderboardService,
	statusSvc *service.StatusService,
	adjustmentSvc *service.AdjustmentService,
	cfg *config.Config,
	gatherer prometheus.Gatherer,
	logger zerolog.Logger,
) *DashboardServer {
	return &DashboardServer{
		ingestSvc:      ingestSvc,
		kpiSvc:         kpiSvc,
		leaderboardSvc: leaderboardSvc,
		statusSvc:      statusSvc,
		adjustmentSvc:  adjustmentSvc,
		cfg:            cfg,
		gatherer:       gatherer,
		logger:         logger,
	}
}

// Routes builds the HTTP handler with every endpoint and middleware.
func (s *DashboardServer) Routes() http.Handler {
	r := chi.NewRouter()

	r.Use(chimw.Recoverer)
	r.Use(middleware.RequestID(s.logger))
	r.Use(s.corsMiddleware())

	r.Handle("/metrics", promhttp.HandlerFor(s.gatherer, promhttp.HandlerOpts{}))

	r.Route("/api/v1", func(r chi.Router) {
		r.Get("/health", s.handleHealth)

		r.Get("/phases/{phase}/stats", s.handlePhaseStats)
		r.Get("/kpi/{scope}", s.handleKPI)
		r.Get("/leaderboard", s.handleLeaderboard)

		r.Get("/statuses", s.handleListStatuses)
		r.Get("/statuses/{governorId}", s.handleGetStatus)

		r.Route("/admin", func(r chi.Router) {
			r.Use(middleware.RequireAdmin(s.cfg.AdminToken))

			r.Post("/phases/{phase}/upload", s.handleUploadPhase)
			r.Post("/total-deads/upload", s.handleUploadTotalDeads)
			r.Put("/total-deads/{governorId}", s.handleSetTotalDeads)

			r.Put("/statuses/{governorId}", s.handleUpdateStatus)

			r.Get("/reductions", s.handleListReductions)
			r.Post("/reductions", s.handleApplyReduction)
			r.Delete("/reductions/{id}", s.handleRemoveReduction)
		})
	})

	return r
}

func (s *DashboardServer) corsMiddleware() func(http.Handler) http.Handler {
	opts := cors.Options{
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"*"},
		AllowCredentials: true,
	}
	origins := s.cfg.CORSOrigins
	if len(origins) == 0 || (len(origins) == 1 && origins[0] == "*") {
		opts.AllowOriginFunc = func(string) bool { return true }
	} else {
		opts.AllowedOrigins = origins
	}
	return cors.New(opts).Handler
}
