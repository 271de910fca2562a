package memory

import (
	"context"
	"fmt"
	"kvk-dashboard/internal/domain"
	"sort"
	"sync/atomic"
	"time"
)

type StatStore struct {
	records table[domain.StatRecord]
	nextID  atomic.Int64
}

func NewStatStore() *StatStore {
	return &StatStore{}
}

func (s *StatStore) ListByPhase(_ context.Context, phase domain.Phase) ([]domain.StatRecord, error) {
	return s.records.selectWhere(func(r domain.StatRecord) bool { return r.Phase == phase }), nil
}

func (s *StatStore) Get(_ context.Context, phase domain.Phase, governorID string) (*domain.StatRecord, error) {
	rec, ok := s.records.first(func(r domain.StatRecord) bool {
		return r.Phase == phase && r.GovernorID == governorID
	})
	if !ok {
		return nil, fmt.Errorf("%w: no %s record for governor %s", domain.ErrNotFound, phase, governorID)
	}
	return &rec, nil
}

// ReplacePhase swaps the phase contents under a single lock.
func (s *StatStore) ReplacePhase(_ context.Context, phase domain.Phase, records []domain.StatRecord) error {
	now := time.Now().UTC()
	seen := make(map[string]struct{}, len(records))
	fresh := make([]domain.StatRecord, len(records))
	for i, rec := range records {
		if _, dup := seen[rec.GovernorID]; dup {
			return domain.StorageError("insert player data",
				fmt.Errorf("duplicate governor %s in %s", rec.GovernorID, phase))
		}
		seen[rec.GovernorID] = struct{}{}
		rec.ID = s.nextID.Add(1)
		rec.Phase = phase
		if rec.CreatedAt.IsZero() {
			rec.CreatedAt = now
		}
		fresh[i] = rec
	}

	s.records.mu.Lock()
	defer s.records.mu.Unlock()
	s.records.deleteLocked(func(r domain.StatRecord) bool { return r.Phase == phase })
	s.records.rows = append(s.records.rows, fresh...)
	return nil
}

func (s *StatStore) UpdateTotalDeads(_ context.Context, phase domain.Phase, totals map[string]int64) (int64, error) {
	n := s.records.update(
		func(r domain.StatRecord) bool {
			_, ok := totals[r.GovernorID]
			return ok && r.Phase == phase
		},
		func(r *domain.StatRecord) { r.TotalDeads = totals[r.GovernorID] },
	)
	return int64(n), nil
}

type StatusStore struct {
	records table[domain.StatusRecord]
}

func NewStatusStore() *StatusStore {
	return &StatusStore{}
}

func (s *StatusStore) Get(_ context.Context, governorID string) (*domain.StatusRecord, error) {
	rec, ok := s.records.first(func(r domain.StatusRecord) bool { return r.GovernorID == governorID })
	if !ok {
		return nil, fmt.Errorf("%w: no status for governor %s", domain.ErrNotFound, governorID)
	}
	return &rec, nil
}

func (s *StatusStore) List(_ context.Context) ([]domain.StatusRecord, error) {
	out := s.records.selectWhere(nil)
	sort.SliceStable(out, func(i, j int) bool { return out[i].GovernorID < out[j].GovernorID })
	return out, nil
}

func (s *StatusStore) ListByFlag(_ context.Context, flag domain.StatusFlag) ([]domain.StatusRecord, error) {
	if _, err := domain.ParseStatusFlag(string(flag)); err != nil {
		return nil, err
	}
	out := s.records.selectWhere(func(r domain.StatusRecord) bool { return r.Has(flag) })
	sort.SliceStable(out, func(i, j int) bool { return out[i].UpdatedAt.After(out[j].UpdatedAt) })
	return out, nil
}

func (s *StatusStore) Upsert(_ context.Context, rec domain.StatusRecord) error {
	if rec.UpdatedAt.IsZero() {
		rec.UpdatedAt = time.Now().UTC()
	}

	s.records.mu.Lock()
	defer s.records.mu.Unlock()
	for i := range s.records.rows {
		if s.records.rows[i].GovernorID == rec.GovernorID {
			s.records.rows[i] = rec
			return nil
		}
	}
	s.records.rows = append(s.records.rows, rec)
	return nil
}

func (s *StatusStore) InsertMissing(_ context.Context, records []domain.StatusRecord) (int, error) {
	now := time.Now().UTC()

	s.records.mu.Lock()
	defer s.records.mu.Unlock()

	known := make(map[string]struct{}, len(s.records.rows))
	for _, r := range s.records.rows {
		known[r.GovernorID] = struct{}{}
	}

	created := 0
	for _, rec := range records {
		if _, ok := known[rec.GovernorID]; ok {
			continue
		}
		if rec.UpdatedAt.IsZero() {
			rec.UpdatedAt = now
		}
		s.records.rows = append(s.records.rows, rec)
		known[rec.GovernorID] = struct{}{}
		created++
	}
	return created, nil
}

type AdjustmentStore struct {
	records table[domain.KpiAdjustment]
	nextID  atomic.Int64
}

func NewAdjustmentStore() *AdjustmentStore {
	return &AdjustmentStore{}
}

func (s *AdjustmentStore) Create(_ context.Context, adj *domain.KpiAdjustment) error {
	adj.ID = s.nextID.Add(1)
	if adj.CreatedAt.IsZero() {
		adj.CreatedAt = time.Now().UTC()
	}
	s.records.insert(*adj)
	return nil
}

func (s *AdjustmentStore) Delete(_ context.Context, id int64) error {
	if s.records.deleteWhere(func(a domain.KpiAdjustment) bool { return a.ID == id }) == 0 {
		return fmt.Errorf("%w: kpi reduction %d", domain.ErrNotFound, id)
	}
	return nil
}

func (s *AdjustmentStore) List(_ context.Context) ([]domain.KpiAdjustment, error) {
	out := s.records.selectWhere(nil)
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].ID > out[j].ID
		}
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})
	return out, nil
}
