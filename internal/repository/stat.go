package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"kvk-dashboard/internal/constants"
	"kvk-dashboard/internal/domain"
	"time"

	"github.com/rs/zerolog"
)

const statColumns = `id, governor_id, governor_name, power, kill_points, deads, total_deads,
	t1_kills, t2_kills, t3_kills, t4_kills, t5_kills, phase, created_at`

type StatRepository struct {
	db     *sql.DB
	logger zerolog.Logger
}

func NewStatRepository(sqlDB *sql.DB, logger zerolog.Logger) *StatRepository {
	return &StatRepository{
		db:     sqlDB,
		logger: logger.With().Str("repository", "player_data").Logger(),
	}
}

func (r *StatRepository) ListByPhase(ctx context.Context, phase domain.Phase) ([]domain.StatRecord, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT `+statColumns+` FROM player_data WHERE phase = ? ORDER BY id`, string(phase))
	if err != nil {
		return nil, domain.StorageError("list player data", err)
	}
	defer rows.Close()

	records := []domain.StatRecord{}
	for rows.Next() {
		rec, err := scanStat(rows)
		if err != nil {
			return nil, domain.StorageError("scan player data", err)
		}
		records = append(records, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, domain.StorageError("list player data", err)
	}
	return records, nil
}

func (r *StatRepository) Get(ctx context.Context, phase domain.Phase, governorID string) (*domain.StatRecord, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT `+statColumns+` FROM player_data WHERE phase = ? AND governor_id = ?`, string(phase), governorID)
	rec, err := scanStat(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: no %s record for governor %s", domain.ErrNotFound, phase, governorID)
	}
	if err != nil {
		return nil, domain.StorageError("get player data", err)
	}
	return &rec, nil
}

// ReplacePhase deletes every record of phase and inserts records in one
// transaction, so readers never observe a half-replaced phase.
func (r *StatRepository) ReplacePhase(ctx context.Context, phase domain.Phase, records []domain.StatRecord) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return domain.StorageError("begin transaction", err)
	}
	defer tx.Rollback()

	res, err := tx.ExecContext(ctx, `DELETE FROM player_data WHERE phase = ?`, string(phase))
	if err != nil {
		return domain.StorageError("delete player data", err)
	}
	deleted, _ := res.RowsAffected()

	stmt, err := tx.PrepareContext(ctx, `INSERT INTO player_data (
		governor_id, governor_name, power, kill_points, deads, total_deads,
		t1_kills, t2_kills, t3_kills, t4_kills, t5_kills, phase, created_at
	) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return domain.StorageError("prepare player data insert", err)
	}
	defer stmt.Close()

	now := time.Now().UTC()
	for i := 0; i < len(records); i += constants.DBBatchSize {
		end := i + constants.DBBatchSize
		if end > len(records) {
			end = len(records)
		}

		for _, rec := range records[i:end] {
			createdAt := rec.CreatedAt
			if createdAt.IsZero() {
				createdAt = now
			}
			_, err := stmt.ExecContext(ctx,
				rec.GovernorID, rec.GovernorName, rec.Power, rec.KillPoints, rec.Deads, rec.TotalDeads,
				rec.TierKills[0], rec.TierKills[1], rec.TierKills[2], rec.TierKills[3], rec.TierKills[4],
				string(phase), createdAt,
			)
			if err != nil {
				return domain.StorageError(fmt.Sprintf("insert player data for %s", rec.GovernorID), err)
			}
		}
	}

	if err := tx.Commit(); err != nil {
		return domain.StorageError("commit player data", err)
	}

	r.logger.Debug().
		Str("phase", string(phase)).
		Int64("deleted", deleted).
		Int("inserted", len(records)).
		Msg("phase replaced")
	return nil
}

// UpdateTotalDeads patches total_deads for existing records of phase and
// returns how many rows changed. Unknown governor ids are skipped silently;
// callers that need strictness check existence first.
func (r *StatRepository) UpdateTotalDeads(ctx context.Context, phase domain.Phase, totals map[string]int64) (int64, error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, domain.StorageError("begin transaction", err)
	}
	defer tx.Rollback()

	var updated int64
	for governorID, total := range totals {
		res, err := tx.ExecContext(ctx,
			`UPDATE player_data SET total_deads = ? WHERE phase = ? AND governor_id = ?`,
			total, string(phase), governorID)
		if err != nil {
			return 0, domain.StorageError(fmt.Sprintf("update total deads for %s", governorID), err)
		}
		n, _ := res.RowsAffected()
		updated += n
	}

	if err := tx.Commit(); err != nil {
		return 0, domain.StorageError("commit total deads", err)
	}
	return updated, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanStat(row rowScanner) (domain.StatRecord, error) {
	var rec domain.StatRecord
	var phase string
	err := row.Scan(
		&rec.ID, &rec.GovernorID, &rec.GovernorName, &rec.Power, &rec.KillPoints, &rec.Deads, &rec.TotalDeads,
		&rec.TierKills[0], &rec.TierKills[1], &rec.TierKills[2], &rec.TierKills[3], &rec.TierKills[4],
		&phase, &rec.CreatedAt,
	)
	rec.Phase = domain.Phase(phase)
	return rec, err
}
