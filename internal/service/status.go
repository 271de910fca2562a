package service

import (
	"context"
	"errors"
	"fmt"
	"kvk-dashboard/internal/constants"
	"kvk-dashboard/internal/domain"
	"kvk-dashboard/internal/metrics"
	"strings"
	"time"

	"github.com/rs/zerolog"
)

type StatusService struct {
	statuses StatusStore
	metrics  *metrics.Metrics
	logger   zerolog.Logger
}

func NewStatusService(statuses StatusStore, m *metrics.Metrics, logger zerolog.Logger) *StatusService {
	return &StatusService{statuses: statuses, metrics: m, logger: logger}
}

// UpdateStatus sets the flags of a governor, creating the registry entry when
// needed. An empty name keeps the stored one; new entries require a name.
func (s *StatusService) UpdateStatus(ctx context.Context, governorID, name string, flags domain.StatusFlags) (*domain.StatusRecord, error) {
	ctx, cancel := context.WithTimeout(ctx, constants.DatabaseTimeout)
	defer cancel()

	governorID = strings.TrimSpace(governorID)
	name = strings.TrimSpace(name)
	if governorID == "" {
		return nil, fmt.Errorf("%w: governor id is required", domain.ErrValidation)
	}

	existing, err := s.statuses.Get(ctx, governorID)
	switch {
	case err == nil:
		if name == "" {
			name = existing.GovernorName
		}
	case errors.Is(err, domain.ErrNotFound):
		if name == "" {
			return nil, fmt.Errorf("%w: governor name is required for a new status entry", domain.ErrValidation)
		}
	default:
		return nil, err
	}

	rec := domain.StatusRecord{
		GovernorID:   governorID,
		GovernorName: name,
		OnLeave:      flags.OnLeave,
		Zeroed:       flags.Zeroed,
		FarmAccount:  flags.FarmAccount,
		Blacklisted:  flags.Blacklisted,
		UpdatedAt:    time.Now().UTC(),
	}
	if err := s.statuses.Upsert(ctx, rec); err != nil {
		s.logger.Error().Err(err).Str("governor_id", governorID).Msg("failed to update status")
		return nil, err
	}
	s.metrics.StatusUpdated()

	s.logger.Info().
		Str("governor_id", governorID).
		Bool("on_leave", rec.OnLeave).
		Bool("zeroed", rec.Zeroed).
		Bool("farm_account", rec.FarmAccount).
		Bool("blacklisted", rec.Blacklisted).
		Msg("status updated")

	s.refreshExcluded(ctx)
	return &rec, nil
}

func (s *StatusService) GetStatus(ctx context.Context, governorID string) (*domain.StatusRecord, error) {
	ctx, cancel := context.WithTimeout(ctx, constants.DatabaseTimeout)
	defer cancel()

	return s.statuses.Get(ctx, strings.TrimSpace(governorID))
}

// ListStatuses returns the whole registry, or only the entries carrying flag
// (most recently updated first) when flag is not blank.
func (s *StatusService) ListStatuses(ctx context.Context, flag string) ([]domain.StatusRecord, error) {
	ctx, cancel := context.WithTimeout(ctx, constants.DatabaseTimeout)
	defer cancel()

	if strings.TrimSpace(flag) == "" {
		return s.statuses.List(ctx)
	}
	f, err := domain.ParseStatusFlag(strings.TrimSpace(flag))
	if err != nil {
		return nil, err
	}
	return s.statuses.ListByFlag(ctx, f)
}

func (s *StatusService) refreshExcluded(ctx context.Context) {
	all, err := s.statuses.List(ctx)
	if err != nil {
		s.logger.Warn().Err(err).Msg("failed to refresh excluded player gauges")
		return
	}
	for _, flag := range []domain.StatusFlag{domain.FlagOnLeave, domain.FlagZeroed, domain.FlagFarmAccount, domain.FlagBlacklisted} {
		n := 0
		for _, rec := range all {
			if rec.Has(flag) {
				n++
			}
		}
		s.metrics.SetExcluded(flag, n)
	}
}
