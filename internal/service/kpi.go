package service

import (
	"context"
	"fmt"
	"kvk-dashboard/internal/constants"
	"kvk-dashboard/internal/domain"
	"kvk-dashboard/internal/kpi"
	"kvk-dashboard/internal/metrics"
	"sync"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"
)

type KPIService struct {
	stats       StatStore
	statuses    StatusStore
	adjustments AdjustmentStore
	calc        *kpi.Calculator
	metrics     *metrics.Metrics
	logger      zerolog.Logger
}

func NewKPIService(stats StatStore, statuses StatusStore, adjustments AdjustmentStore, calc *kpi.Calculator, m *metrics.Metrics, logger zerolog.Logger) *KPIService {
	return &KPIService{
		stats:       stats,
		statuses:    statuses,
		adjustments: adjustments,
		calc:        calc,
		metrics:     m,
		logger:      logger,
	}
}

// Results ranks every eligible player for scope, filtered by query.
func (s *KPIService) Results(ctx context.Context, scope string, query string) ([]domain.KpiResult, error) {
	sc, err := kpi.ParseScope(scope)
	if err != nil {
		return nil, err
	}

	ctx, cancel := context.WithTimeout(ctx, constants.RequestTimeout)
	defer cancel()

	start := time.Now()
	snap, err := s.Snapshot(ctx, sc.Phases())
	if err != nil {
		return nil, err
	}

	results, err := s.calc.Compute(*snap, sc)
	if err != nil {
		return nil, err
	}
	s.metrics.ObserveKPI(string(sc), time.Since(start), len(results))

	filtered := kpi.Filter(results, query)
	s.logger.Debug().
		Str("scope", string(sc)).
		Str("query", query).
		Int("ranked", len(results)).
		Int("returned", len(filtered)).
		Msg("kpi results served")
	return filtered, nil
}

// Snapshot loads the given phases, the status registry and the adjustment
// ledger as independent concurrent reads.
func (s *KPIService) Snapshot(ctx context.Context, phases []domain.Phase) (*kpi.Snapshot, error) {
	snap := &kpi.Snapshot{Phases: make(map[domain.Phase][]domain.StatRecord, len(phases))}
	var mu sync.Mutex

	g, gCtx := errgroup.WithContext(ctx)
	for _, phase := range phases {
		g.Go(func() error {
			records, err := s.stats.ListByPhase(gCtx, phase)
			if err != nil {
				return fmt.Errorf("failed to load %s: %w", phase, err)
			}
			mu.Lock()
			snap.Phases[phase] = records
			mu.Unlock()
			return nil
		})
	}

	g.Go(func() error {
		var err error
		snap.Statuses, err = s.statuses.List(gCtx)
		if err != nil {
			return fmt.Errorf("failed to load statuses: %w", err)
		}
		return nil
	})

	g.Go(func() error {
		var err error
		snap.Adjustments, err = s.adjustments.List(gCtx)
		if err != nil {
			return fmt.Errorf("failed to load adjustments: %w", err)
		}
		return nil
	})

	if err := g.Wait(); err != nil {
		s.logger.Error().Err(err).Msg("failed to load kpi snapshot")
		return nil, err
	}
	return snap, nil
}
