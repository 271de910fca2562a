package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"kvk-dashboard/internal/domain"
	"time"

	"github.com/rs/zerolog"
)

const statusColumns = `governor_id, governor_name, on_leave, zeroed, farm_account, blacklisted, updated_at`

var flagColumns = map[domain.StatusFlag]string{
	domain.FlagOnLeave:     "on_leave",
	domain.FlagZeroed:      "zeroed",
	domain.FlagFarmAccount: "farm_account",
	domain.FlagBlacklisted: "blacklisted",
}

type StatusRepository struct {
	db     *sql.DB
	logger zerolog.Logger
}

func NewStatusRepository(sqlDB *sql.DB, logger zerolog.Logger) *StatusRepository {
	return &StatusRepository{
		db:     sqlDB,
		logger: logger.With().Str("repository", "player_status").Logger(),
	}
}

func (r *StatusRepository) Get(ctx context.Context, governorID string) (*domain.StatusRecord, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT `+statusColumns+` FROM player_status WHERE governor_id = ?`, governorID)
	rec, err := scanStatus(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: no status for governor %s", domain.ErrNotFound, governorID)
	}
	if err != nil {
		return nil, domain.StorageError("get player status", err)
	}
	return &rec, nil
}

func (r *StatusRepository) List(ctx context.Context) ([]domain.StatusRecord, error) {
	return r.query(ctx, `SELECT `+statusColumns+` FROM player_status ORDER BY governor_id`)
}

func (r *StatusRepository) ListByFlag(ctx context.Context, flag domain.StatusFlag) ([]domain.StatusRecord, error) {
	column, ok := flagColumns[flag]
	if !ok {
		return nil, fmt.Errorf("%w: unknown status flag %q", domain.ErrValidation, flag)
	}
	return r.query(ctx,
		`SELECT `+statusColumns+` FROM player_status WHERE `+column+` = ? ORDER BY updated_at DESC, governor_id`, true)
}

func (r *StatusRepository) Upsert(ctx context.Context, rec domain.StatusRecord) error {
	if rec.UpdatedAt.IsZero() {
		rec.UpdatedAt = time.Now().UTC()
	}
	_, err := r.db.ExecContext(ctx, `INSERT INTO player_status (`+statusColumns+`)
		VALUES (?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT (governor_id) DO UPDATE SET
			governor_name = excluded.governor_name,
			on_leave = excluded.on_leave,
			zeroed = excluded.zeroed,
			farm_account = excluded.farm_account,
			blacklisted = excluded.blacklisted,
			updated_at = excluded.updated_at`,
		rec.GovernorID, rec.GovernorName, rec.OnLeave, rec.Zeroed, rec.FarmAccount, rec.Blacklisted, rec.UpdatedAt)
	if err != nil {
		return domain.StorageError(fmt.Sprintf("upsert status for %s", rec.GovernorID), err)
	}
	return nil
}

// InsertMissing creates records for governors not yet registered and leaves
// existing ones untouched. It returns the number of records created.
func (r *StatusRepository) InsertMissing(ctx context.Context, records []domain.StatusRecord) (int, error) {
	if len(records) == 0 {
		return 0, nil
	}

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, domain.StorageError("begin transaction", err)
	}
	defer tx.Rollback()

	stmt, err := tx.PrepareContext(ctx, `INSERT INTO player_status (`+statusColumns+`)
		VALUES (?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT (governor_id) DO NOTHING`)
	if err != nil {
		return 0, domain.StorageError("prepare status insert", err)
	}
	defer stmt.Close()

	now := time.Now().UTC()
	created := 0
	for _, rec := range records {
		updatedAt := rec.UpdatedAt
		if updatedAt.IsZero() {
			updatedAt = now
		}
		res, err := stmt.ExecContext(ctx,
			rec.GovernorID, rec.GovernorName, rec.OnLeave, rec.Zeroed, rec.FarmAccount, rec.Blacklisted, updatedAt)
		if err != nil {
			return 0, domain.StorageError(fmt.Sprintf("insert status for %s", rec.GovernorID), err)
		}
		if n, _ := res.RowsAffected(); n > 0 {
			created++
		}
	}

	if err := tx.Commit(); err != nil {
		return 0, domain.StorageError("commit statuses", err)
	}
	return created, nil
}

func (r *StatusRepository) query(ctx context.Context, query string, args ...any) ([]domain.StatusRecord, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, domain.StorageError("list player status", err)
	}
	defer rows.Close()

	records := []domain.StatusRecord{}
	for rows.Next() {
		rec, err := scanStatus(rows)
		if err != nil {
			return nil, domain.StorageError("scan player status", err)
		}
		records = append(records, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, domain.StorageError("list player status", err)
	}
	return records, nil
}

func scanStatus(row rowScanner) (domain.StatusRecord, error) {
	var rec domain.StatusRecord
	err := row.Scan(&rec.GovernorID, &rec.GovernorName, &rec.OnLeave, &rec.Zeroed, &rec.FarmAccount, &rec.Blacklisted, &rec.UpdatedAt)
	return rec, err
}
