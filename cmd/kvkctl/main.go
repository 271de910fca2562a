package main

import (
	"database/sql"
	"fmt"
	"kvk-dashboard/internal/config"
	"kvk-dashboard/internal/database"
	"kvk-dashboard/internal/kpi"
	"kvk-dashboard/internal/logger"
	"kvk-dashboard/internal/repository"
	"kvk-dashboard/internal/service"
	"os"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
)

var (
	dbPath   string
	logLevel string
	log      zerolog.Logger
)

func main() {
	log = logger.New()

	if err := rootCmd.Execute(); err != nil {
		log.Error().Err(err).Msg("command failed")
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:   "kvkctl",
	Short: "Offline administration for the KvK KPI dashboard",
	Long: `kvkctl works directly against the dashboard's sqlite database.
It imports phase spreadsheets, patches total deads, manages KPI
reductions and prints ranked results without running the server.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		level, err := zerolog.ParseLevel(logLevel)
		if err != nil {
			return fmt.Errorf("invalid log level %q: %w", logLevel, err)
		}
		log = logger.SetLevel(level)
		return nil
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&dbPath, "db", "", "sqlite database path (defaults to DB_PATH)")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "warn", "log level (debug, info, warn, error)")
}

// app is the service graph used by one command invocation.
type app struct {
	db          *sql.DB
	ingest      *service.IngestService
	kpis        *service.KPIService
	leaderboard *service.LeaderboardService
	statuses    *service.StatusService
	adjustments *service.AdjustmentService
}

func openApp() (*app, error) {
	cfg, err := config.Load(log)
	if err != nil {
		return nil, err
	}
	if dbPath != "" {
		cfg.DBPath = dbPath
	}

	sqlDB, err := database.New(cfg, log)
	if err != nil {
		return nil, err
	}

	stats := repository.NewStatRepository(sqlDB, log)
	statuses := repository.NewStatusRepository(sqlDB, log)
	adjustments := repository.NewAdjustmentRepository(sqlDB, log)
	calc := kpi.NewCalculator(log)
	kpis := service.NewKPIService(stats, statuses, adjustments, calc, nil, log)

	return &app{
		db:          sqlDB,
		ingest:      service.NewIngestService(stats, statuses, nil, log),
		kpis:        kpis,
		leaderboard: service.NewLeaderboardService(kpis, calc, cfg.LeaderboardSize, log),
		statuses:    service.NewStatusService(statuses, nil, log),
		adjustments: service.NewAdjustmentService(stats, adjustments, nil, log),
	}, nil
}

func (a *app) Close() {
	if err := a.db.Close(); err != nil {
		log.Warn().Err(err).Msg("error closing database connection")
	}
}
