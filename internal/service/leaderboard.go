package service

import (
	"context"
	"fmt"
	"kvk-dashboard/internal/constants"
	"kvk-dashboard/internal/domain"
	"kvk-dashboard/internal/kpi"
	"time"

	"github.com/rs/zerolog"
)

type LeaderboardService struct {
	kpis        *KPIService
	calc        *kpi.Calculator
	defaultSize int
	logger      zerolog.Logger
}

func NewLeaderboardService(kpis *KPIService, calc *kpi.Calculator, size int, logger zerolog.Logger) *LeaderboardService {
	if size <= 0 {
		size = constants.DefaultLeaderboardSize
	}
	return &LeaderboardService{kpis: kpis, calc: calc, defaultSize: size, logger: logger}
}

// Top returns the first n players of the cumulative ranking. n <= 0 means the
// configured default.
func (s *LeaderboardService) Top(ctx context.Context, n int) ([]domain.LeaderboardEntry, error) {
	if n <= 0 {
		n = s.defaultSize
	}
	if n > constants.MaxLeaderboardSize {
		return nil, fmt.Errorf("%w: limit must be at most %d", domain.ErrValidation, constants.MaxLeaderboardSize)
	}

	ctx, cancel := context.WithTimeout(ctx, constants.RequestTimeout)
	defer cancel()

	start := time.Now()
	snap, err := s.kpis.Snapshot(ctx, kpi.ScopeCumulative.Phases())
	if err != nil {
		return nil, err
	}
	results, err := s.calc.Compute(*snap, kpi.ScopeCumulative)
	if err != nil {
		return nil, err
	}
	s.kpis.metrics.ObserveKPI(string(kpi.ScopeCumulative), time.Since(start), len(results))

	entries := kpi.Top(results, *snap, n)
	s.logger.Debug().Int("limit", n).Int("entries", len(entries)).Msg("leaderboard served")
	return entries, nil
}
