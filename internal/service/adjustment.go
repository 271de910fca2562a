package service

import (
	"context"
	"fmt"
	"kvk-dashboard/internal/constants"
	"kvk-dashboard/internal/domain"
	"kvk-dashboard/internal/kpi"
	"kvk-dashboard/internal/metrics"
	"math"
	"strings"
	"time"

	"github.com/rs/zerolog"
)

type AdjustmentService struct {
	stats       StatStore
	adjustments AdjustmentStore
	metrics     *metrics.Metrics
	logger      zerolog.Logger
}

func NewAdjustmentService(stats StatStore, adjustments AdjustmentStore, m *metrics.Metrics, logger zerolog.Logger) *AdjustmentService {
	return &AdjustmentService{stats: stats, adjustments: adjustments, metrics: m, logger: logger}
}

// ApplyReduction appends a ledger entry for a governor that has a dataStart
// record, snapshotting that record's power and name.
func (s *AdjustmentService) ApplyReduction(ctx context.Context, governorID string, percentage float64, reason string) (*domain.KpiAdjustment, error) {
	ctx, cancel := context.WithTimeout(ctx, constants.DatabaseTimeout)
	defer cancel()

	governorID = strings.TrimSpace(governorID)
	if governorID == "" {
		return nil, fmt.Errorf("%w: governor id is required", domain.ErrValidation)
	}
	if math.IsNaN(percentage) || percentage < 0 || percentage > 100 {
		return nil, fmt.Errorf("%w: reduction percentage must be between 0 and 100", domain.ErrValidation)
	}

	start, err := s.stats.Get(ctx, domain.PhaseStart, governorID)
	if err != nil {
		s.logger.Warn().Err(err).Str("governor_id", governorID).Msg("reduction refused")
		return nil, err
	}

	adj := &domain.KpiAdjustment{
		GovernorID:          governorID,
		GovernorName:        start.GovernorName,
		ReductionPercentage: percentage,
		Reason:              strings.TrimSpace(reason),
		PowerAtReduction:    start.Power,
		CreatedAt:           time.Now().UTC(),
	}
	if err := s.adjustments.Create(ctx, adj); err != nil {
		s.logger.Error().Err(err).Str("governor_id", governorID).Msg("failed to create adjustment")
		return nil, err
	}
	s.metrics.AdjustmentChanged("apply")

	s.logger.Info().
		Int64("adjustment_id", adj.ID).
		Str("governor_id", governorID).
		Float64("reduction_percentage", percentage).
		Msg("reduction applied")
	return adj, nil
}

func (s *AdjustmentService) RemoveReduction(ctx context.Context, id int64) error {
	ctx, cancel := context.WithTimeout(ctx, constants.DatabaseTimeout)
	defer cancel()

	if err := s.adjustments.Delete(ctx, id); err != nil {
		s.logger.Warn().Err(err).Int64("adjustment_id", id).Msg("failed to remove reduction")
		return err
	}
	s.metrics.AdjustmentChanged("remove")

	s.logger.Info().Int64("adjustment_id", id).Msg("reduction removed")
	return nil
}

// ListReductions returns the ledger newest first.
func (s *AdjustmentService) ListReductions(ctx context.Context, query string) ([]domain.KpiAdjustment, error) {
	ctx, cancel := context.WithTimeout(ctx, constants.DatabaseTimeout)
	defer cancel()

	all, err := s.adjustments.List(ctx)
	if err != nil {
		return nil, err
	}

	q := strings.ToLower(strings.TrimSpace(query))
	if q == "" {
		return all, nil
	}
	out := make([]domain.KpiAdjustment, 0, len(all))
	for _, a := range all {
		if kpi.Matches(a.GovernorID, a.GovernorName, q) {
			out = append(out, a)
		}
	}
	return out, nil
}
