package service

import (
	"context"
	"fmt"
	"kvk-dashboard/internal/constants"
	"kvk-dashboard/internal/domain"
	"kvk-dashboard/internal/ingest"
	"kvk-dashboard/internal/kpi"
	"kvk-dashboard/internal/metrics"
	"kvk-dashboard/internal/spreadsheet"
	"strings"

	gonanoid "github.com/matoous/go-nanoid/v2"
	"github.com/rs/zerolog"
)

type IngestService struct {
	stats    StatStore
	statuses StatusStore
	metrics  *metrics.Metrics
	logger   zerolog.Logger
}

func NewIngestService(stats StatStore, statuses StatusStore, m *metrics.Metrics, logger zerolog.Logger) *IngestService {
	return &IngestService{stats: stats, statuses: statuses, metrics: m, logger: logger}
}

// UploadPhase replaces every record of phase with the rows of the uploaded
// file and registers unseen governors in the status registry.
func (s *IngestService) UploadPhase(ctx context.Context, phase domain.Phase, filename string, data []byte) (*domain.UploadResult, error) {
	res, err := s.uploadPhase(ctx, phase, filename, data)
	rows := 0
	if res != nil {
		rows = res.Rows
	}
	s.metrics.ObserveUpload(metrics.UploadKindPhase, phase, rows, err)
	return res, err
}

func (s *IngestService) uploadPhase(ctx context.Context, phase domain.Phase, filename string, data []byte) (*domain.UploadResult, error) {
	ctx, cancel := context.WithTimeout(ctx, constants.UploadTimeout)
	defer cancel()

	if _, err := domain.ParsePhase(string(phase)); err != nil {
		return nil, err
	}

	s.logger.Info().Str("phase", string(phase)).Str("filename", filename).Int("bytes", len(data)).Msg("phase upload received")

	rows, err := spreadsheet.Parse(filename, data)
	if err != nil {
		s.logger.Warn().Err(err).Str("phase", string(phase)).Msg("failed to parse upload")
		return nil, err
	}

	records, err := ingest.NormalizeStats(rows, phase)
	if err != nil {
		s.logger.Warn().Err(err).Str("phase", string(phase)).Int("rows", len(rows)).Msg("upload rejected")
		return nil, err
	}

	batchID, err := gonanoid.New()
	if err != nil {
		return nil, fmt.Errorf("failed to generate nanoid: %w", err)
	}

	if err := s.stats.ReplacePhase(ctx, phase, records); err != nil {
		s.logger.Error().Err(err).Str("phase", string(phase)).Str("batch_id", batchID).Msg("failed to replace phase data")
		return nil, err
	}

	fresh := make([]domain.StatusRecord, len(records))
	for i, rec := range records {
		fresh[i] = domain.StatusRecord{GovernorID: rec.GovernorID, GovernorName: rec.GovernorName}
	}
	created, err := s.statuses.InsertMissing(ctx, fresh)
	if err != nil {
		s.logger.Error().Err(err).Str("batch_id", batchID).Msg("failed to bootstrap status registry")
		return nil, err
	}

	s.logger.Info().
		Str("phase", string(phase)).
		Str("batch_id", batchID).
		Int("rows", len(records)).
		Int("new_players", created).
		Msg("phase upload applied")

	return &domain.UploadResult{BatchID: batchID, Phase: phase, Rows: len(records), NewPlayers: created}, nil
}

// PatchTotalDeads applies a governor id + total deads file to existing
// dataKingland records. Unknown governors reject the whole file.
func (s *IngestService) PatchTotalDeads(ctx context.Context, filename string, data []byte) (*domain.UploadResult, error) {
	res, err := s.patchTotalDeads(ctx, filename, data)
	rows := 0
	if res != nil {
		rows = res.Rows
	}
	s.metrics.ObserveUpload(metrics.UploadKindTotalDeads, domain.PhaseKingland, rows, err)
	return res, err
}

func (s *IngestService) patchTotalDeads(ctx context.Context, filename string, data []byte) (*domain.UploadResult, error) {
	ctx, cancel := context.WithTimeout(ctx, constants.UploadTimeout)
	defer cancel()

	rows, err := spreadsheet.Parse(filename, data)
	if err != nil {
		return nil, err
	}
	patches, err := ingest.NormalizeTotalDeads(rows)
	if err != nil {
		s.logger.Warn().Err(err).Msg("total deads upload rejected")
		return nil, err
	}

	existing, err := s.stats.ListByPhase(ctx, domain.PhaseKingland)
	if err != nil {
		return nil, err
	}
	known := make(map[string]struct{}, len(existing))
	for _, rec := range existing {
		known[rec.GovernorID] = struct{}{}
	}

	var problems []domain.RowError
	totals := make(map[string]int64, len(patches))
	for _, p := range patches {
		if _, ok := known[p.GovernorID]; !ok {
			problems = append(problems, domain.RowError{
				Row:    p.Line,
				Field:  string(ingest.FieldGovernorID),
				Reason: fmt.Sprintf("%s has no %s record", p.GovernorID, domain.PhaseKingland),
			})
			continue
		}
		totals[p.GovernorID] = p.TotalDeads
	}
	if len(problems) > 0 {
		return nil, &domain.ValidationError{Rows: problems}
	}

	batchID, err := gonanoid.New()
	if err != nil {
		return nil, fmt.Errorf("failed to generate nanoid: %w", err)
	}

	updated, err := s.stats.UpdateTotalDeads(ctx, domain.PhaseKingland, totals)
	if err != nil {
		s.logger.Error().Err(err).Str("batch_id", batchID).Msg("failed to patch total deads")
		return nil, err
	}

	s.logger.Info().Str("batch_id", batchID).Int64("updated", updated).Msg("total deads patched")
	return &domain.UploadResult{BatchID: batchID, Phase: domain.PhaseKingland, Rows: int(updated)}, nil
}

// SetTotalDeads edits a single dataKingland record.
func (s *IngestService) SetTotalDeads(ctx context.Context, governorID string, totalDeads int64) error {
	ctx, cancel := context.WithTimeout(ctx, constants.DatabaseTimeout)
	defer cancel()

	governorID = strings.TrimSpace(governorID)
	if governorID == "" {
		return fmt.Errorf("%w: governor id is required", domain.ErrValidation)
	}
	if totalDeads < 0 {
		return fmt.Errorf("%w: total deads must not be negative", domain.ErrValidation)
	}

	if _, err := s.stats.Get(ctx, domain.PhaseKingland, governorID); err != nil {
		return err
	}
	if _, err := s.stats.UpdateTotalDeads(ctx, domain.PhaseKingland, map[string]int64{governorID: totalDeads}); err != nil {
		s.logger.Error().Err(err).Str("governor_id", governorID).Msg("failed to set total deads")
		return err
	}

	s.logger.Info().Str("governor_id", governorID).Int64("total_deads", totalDeads).Msg("total deads set")
	return nil
}

// ListPhase returns the records of phase in upload order, filtered by a
// case-insensitive id or name substring when query is not blank.
func (s *IngestService) ListPhase(ctx context.Context, phase domain.Phase, query string) ([]domain.StatRecord, error) {
	ctx, cancel := context.WithTimeout(ctx, constants.DatabaseTimeout)
	defer cancel()

	if _, err := domain.ParsePhase(string(phase)); err != nil {
		return nil, err
	}

	records, err := s.stats.ListByPhase(ctx, phase)
	if err != nil {
		return nil, err
	}

	q := strings.ToLower(strings.TrimSpace(query))
	if q == "" {
		return records, nil
	}
	out := make([]domain.StatRecord, 0, len(records))
	for _, rec := range records {
		if kpi.Matches(rec.GovernorID, rec.GovernorName, q) {
			out = append(out, rec)
		}
	}
	return out, nil
}
