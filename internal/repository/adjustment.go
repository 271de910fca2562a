package repository

import (
	"context"
	"database/sql"
	"fmt"
	"kvk-dashboard/internal/domain"
	"time"

	"github.com/rs/zerolog"
)

const adjustmentColumns = `id, governor_id, governor_name, reduction_percentage, reason, power_at_reduction, created_at`

// AdjustmentRepository is the append-only KPI reduction ledger.
type AdjustmentRepository struct {
	db     *sql.DB
	logger zerolog.Logger
}

func NewAdjustmentRepository(sqlDB *sql.DB, logger zerolog.Logger) *AdjustmentRepository {
	return &AdjustmentRepository{
		db:     sqlDB,
		logger: logger.With().Str("repository", "kpi_reductions").Logger(),
	}
}

func (r *AdjustmentRepository) Create(ctx context.Context, adj *domain.KpiAdjustment) error {
	if adj.CreatedAt.IsZero() {
		adj.CreatedAt = time.Now().UTC()
	}

	res, err := r.db.ExecContext(ctx, `INSERT INTO kpi_reductions (
		governor_id, governor_name, reduction_percentage, reason, power_at_reduction, created_at
	) VALUES (?, ?, ?, ?, ?, ?)`,
		adj.GovernorID, adj.GovernorName, adj.ReductionPercentage, adj.Reason, adj.PowerAtReduction, adj.CreatedAt)
	if err != nil {
		return domain.StorageError(fmt.Sprintf("create kpi reduction for %s", adj.GovernorID), err)
	}

	id, err := res.LastInsertId()
	if err != nil {
		return domain.StorageError("read kpi reduction id", err)
	}
	adj.ID = id

	r.logger.Debug().Int64("id", id).Str("governor_id", adj.GovernorID).Msg("kpi reduction created")
	return nil
}

func (r *AdjustmentRepository) Delete(ctx context.Context, id int64) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM kpi_reductions WHERE id = ?`, id)
	if err != nil {
		return domain.StorageError(fmt.Sprintf("delete kpi reduction %d", id), err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("%w: kpi reduction %d", domain.ErrNotFound, id)
	}
	return nil
}

// List returns the ledger newest first.
func (r *AdjustmentRepository) List(ctx context.Context) ([]domain.KpiAdjustment, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT `+adjustmentColumns+` FROM kpi_reductions ORDER BY created_at DESC, id DESC`)
	if err != nil {
		return nil, domain.StorageError("list kpi reductions", err)
	}
	defer rows.Close()

	adjustments := []domain.KpiAdjustment{}
	for rows.Next() {
		var a domain.KpiAdjustment
		if err := rows.Scan(&a.ID, &a.GovernorID, &a.GovernorName, &a.ReductionPercentage, &a.Reason, &a.PowerAtReduction, &a.CreatedAt); err != nil {
			return nil, domain.StorageError("scan kpi reduction", err)
		}
		adjustments = append(adjustments, a)
	}
	if err := rows.Err(); err != nil {
		return nil, domain.StorageError("list kpi reductions", err)
	}
	return adjustments, nil
}
