package fx

import (
	"kvk-dashboard/internal/config"
	"kvk-dashboard/internal/database"
	"kvk-dashboard/internal/kpi"
	"kvk-dashboard/internal/logger"
	"kvk-dashboard/internal/metrics"
	"kvk-dashboard/internal/repository"
	"kvk-dashboard/internal/repository/memory"
	"kvk-dashboard/internal/server"
	"kvk-dashboard/internal/service"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog"
	"go.uber.org/fx"
)

// Stores are the three leaf stores behind the services.
type Stores struct {
	fx.Out

	Stats       service.StatStore
	Statuses    service.StatusStore
	Adjustments service.AdjustmentStore
}

// ProvideStores opens the backend selected by STORE_DRIVER.
func ProvideStores(lc fx.Lifecycle, cfg *config.Config, logger zerolog.Logger) (Stores, error) {
	if cfg.StoreDriver == config.StoreDriverMemory {
		logger.Warn().Msg("using in-memory stores, data is lost on shutdown")
		return Stores{
			Stats:       memory.NewStatStore(),
			Statuses:    memory.NewStatusStore(),
			Adjustments: memory.NewAdjustmentStore(),
		}, nil
	}

	sqlDB, err := database.New(cfg, logger)
	if err != nil {
		return Stores{}, err
	}
	database.Register(lc, sqlDB, logger)

	return Stores{
		Stats:       repository.NewStatRepository(sqlDB, logger),
		Statuses:    repository.NewStatusRepository(sqlDB, logger),
		Adjustments: repository.NewAdjustmentRepository(sqlDB, logger),
	}, nil
}

func ProvideLeaderboardService(kpis *service.KPIService, calc *kpi.Calculator, cfg *config.Config, logger zerolog.Logger) *service.LeaderboardService {
	return service.NewLeaderboardService(kpis, calc, cfg.LeaderboardSize, logger)
}

var Module = fx.Options(
	logger.Module,
	config.Module,
	fx.Provide(ProvideStores),
	// metrics
	fx.Provide(fx.Annotate(
		metrics.NewRegistry,
		fx.As(new(prometheus.Registerer)),
		fx.As(new(prometheus.Gatherer)),
	)),
	fx.Provide(metrics.New),
	// engine
	fx.Provide(kpi.NewCalculator),
	// svc
	fx.Provide(service.NewIngestService),
	fx.Provide(service.NewKPIService),
	fx.Provide(ProvideLeaderboardService),
	fx.Provide(service.NewStatusService),
	fx.Provide(service.NewAdjustmentService),
	// server
	fx.Provide(server.NewDashboardServer),
)
