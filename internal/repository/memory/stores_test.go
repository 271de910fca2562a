package memory

import (
	"context"
	"kvk-dashboard/internal/domain"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStatStore_ReplacePhase(t *testing.T) {
	ctx := context.Background()
	store := NewStatStore()

	require.NoError(t, store.ReplacePhase(ctx, domain.PhaseStart, []domain.StatRecord{
		{GovernorID: "a", GovernorName: "Alpha"},
		{GovernorID: "b", GovernorName: "Bravo"},
	}))
	require.NoError(t, store.ReplacePhase(ctx, domain.PhasePass4, []domain.StatRecord{
		{GovernorID: "a", GovernorName: "Alpha"},
	}))
	require.NoError(t, store.ReplacePhase(ctx, domain.PhaseStart, []domain.StatRecord{
		{GovernorID: "c", GovernorName: "Charlie"},
	}))

	start, err := store.ListByPhase(ctx, domain.PhaseStart)
	require.NoError(t, err)
	require.Len(t, start, 1)
	assert.Equal(t, "c", start[0].GovernorID)
	assert.Equal(t, domain.PhaseStart, start[0].Phase)
	assert.NotZero(t, start[0].ID)

	pass4, err := store.ListByPhase(ctx, domain.PhasePass4)
	require.NoError(t, err)
	assert.Len(t, pass4, 1)

	err = store.ReplacePhase(ctx, domain.PhasePass4, []domain.StatRecord{{GovernorID: "x"}, {GovernorID: "x"}})
	assert.ErrorIs(t, err, domain.ErrStorage)
	pass4, err = store.ListByPhase(ctx, domain.PhasePass4)
	require.NoError(t, err)
	assert.Equal(t, "a", pass4[0].GovernorID, "failed replace leaves the phase intact")
}

func TestStatStore_ConcurrentReplace(t *testing.T) {
	ctx := context.Background()
	store := NewStatStore()

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_ = store.ReplacePhase(ctx, domain.PhaseStart, []domain.StatRecord{
				{GovernorID: "a"}, {GovernorID: "b"}, {GovernorID: "c"},
			})
		}()
	}
	wg.Wait()

	start, err := store.ListByPhase(ctx, domain.PhaseStart)
	require.NoError(t, err)
	assert.Len(t, start, 3, "one batch wins, never an interleaving")
}

func TestStatStore_GetAndTotalDeads(t *testing.T) {
	ctx := context.Background()
	store := NewStatStore()
	require.NoError(t, store.ReplacePhase(ctx, domain.PhaseKingland, []domain.StatRecord{
		{GovernorID: "a"}, {GovernorID: "b"},
	}))

	n, err := store.UpdateTotalDeads(ctx, domain.PhaseKingland, map[string]int64{"a": 9, "zz": 1})
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)

	a, err := store.Get(ctx, domain.PhaseKingland, "a")
	require.NoError(t, err)
	assert.Equal(t, int64(9), a.TotalDeads)

	_, err = store.Get(ctx, domain.PhaseStart, "a")
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestStatusStore(t *testing.T) {
	ctx := context.Background()
	store := NewStatusStore()

	created, err := store.InsertMissing(ctx, []domain.StatusRecord{
		{GovernorID: "b", GovernorName: "Bravo"},
		{GovernorID: "a", GovernorName: "Alpha"},
		{GovernorID: "a", GovernorName: "Alpha twice"},
	})
	require.NoError(t, err)
	assert.Equal(t, 2, created)

	base := time.Now().UTC()
	require.NoError(t, store.Upsert(ctx, domain.StatusRecord{GovernorID: "a", GovernorName: "Alpha", Blacklisted: true, UpdatedAt: base}))
	require.NoError(t, store.Upsert(ctx, domain.StatusRecord{GovernorID: "b", GovernorName: "Bravo", Blacklisted: true, UpdatedAt: base.Add(time.Second)}))

	created, err = store.InsertMissing(ctx, []domain.StatusRecord{{GovernorID: "a", GovernorName: "Other"}})
	require.NoError(t, err)
	assert.Zero(t, created)

	all, err := store.List(ctx)
	require.NoError(t, err)
	require.Len(t, all, 2)
	assert.Equal(t, "a", all[0].GovernorID)
	assert.Equal(t, "Alpha", all[0].GovernorName)

	blacklisted, err := store.ListByFlag(ctx, domain.FlagBlacklisted)
	require.NoError(t, err)
	require.Len(t, blacklisted, 2)
	assert.Equal(t, "b", blacklisted[0].GovernorID)

	_, err = store.ListByFlag(ctx, domain.StatusFlag("nope"))
	assert.ErrorIs(t, err, domain.ErrValidation)

	_, err = store.Get(ctx, "zz")
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestAdjustmentStore(t *testing.T) {
	ctx := context.Background()
	store := NewAdjustmentStore()

	at := time.Date(2025, 5, 1, 0, 0, 0, 0, time.UTC)
	first := &domain.KpiAdjustment{GovernorID: "a", ReductionPercentage: 10, CreatedAt: at}
	second := &domain.KpiAdjustment{GovernorID: "a", ReductionPercentage: 20, CreatedAt: at}
	require.NoError(t, store.Create(ctx, first))
	require.NoError(t, store.Create(ctx, second))

	list, err := store.List(ctx)
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, second.ID, list[0].ID, "equal timestamps order by id")

	require.NoError(t, store.Delete(ctx, first.ID))
	assert.ErrorIs(t, store.Delete(ctx, first.ID), domain.ErrNotFound)
}
