package service

import (
	"context"
	"kvk-dashboard/internal/domain"
)

// StatStore is the Player Statistics Store.
type StatStore interface {
	ListByPhase(ctx context.Context, phase domain.Phase) ([]domain.StatRecord, error)
	Get(ctx context.Context, phase domain.Phase, governorID string) (*domain.StatRecord, error)
	// ReplacePhase deletes every record of phase and inserts records in its place.
	ReplacePhase(ctx context.Context, phase domain.Phase, records []domain.StatRecord) error
	UpdateTotalDeads(ctx context.Context, phase domain.Phase, totals map[string]int64) (int64, error)
}

// StatusStore is the Player Status Registry.
type StatusStore interface {
	Get(ctx context.Context, governorID string) (*domain.StatusRecord, error)
	List(ctx context.Context) ([]domain.StatusRecord, error)
	ListByFlag(ctx context.Context, flag domain.StatusFlag) ([]domain.StatusRecord, error)
	Upsert(ctx context.Context, rec domain.StatusRecord) error
	InsertMissing(ctx context.Context, records []domain.StatusRecord) (int, error)
}

// AdjustmentStore is the KPI Adjustment Ledger.
type AdjustmentStore interface {
	Create(ctx context.Context, adj *domain.KpiAdjustment) error
	Delete(ctx context.Context, id int64) error
	List(ctx context.Context) ([]domain.KpiAdjustment, error)
}
