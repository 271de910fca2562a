package kpi

import (
	"kvk-dashboard/internal/domain"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTop(t *testing.T) {
	withTiers := func(rec domain.StatRecord, t4, t5 int64) domain.StatRecord {
		rec.TierKills[3] = t4
		rec.TierKills[4] = t5
		return rec
	}

	snap := Snapshot{
		Phases: map[domain.Phase][]domain.StatRecord{
			domain.PhaseStart: {
				withTiers(stat(domain.PhaseStart, "a", "A", 60_000_000, 0, 0), 1, 1),
				withTiers(stat(domain.PhaseStart, "b", "B", 70_000_000, 0, 0), 2, 2),
				withTiers(stat(domain.PhaseStart, "c", "C", 80_000_000, 0, 0), 3, 3),
				withTiers(stat(domain.PhaseStart, "d", "D", 90_000_000, 0, 0), 4, 4),
			},
			domain.PhasePass4: {
				withTiers(stat(domain.PhasePass4, "a", "A", 61_000_000, 4_000_000, 0), 10, 10),
				withTiers(stat(domain.PhasePass4, "b", "B", 71_000_000, 3_000_000, 0), 20, 20),
				withTiers(stat(domain.PhasePass4, "d", "D", 91_000_000, 1_000_000, 0), 40, 40),
			},
			domain.PhasePass7: {
				withTiers(stat(domain.PhasePass7, "b", "B", 72_000_000, 3_000_000, 0), 200, 200),
			},
			domain.PhaseKingland: {
				withTiers(stat(domain.PhaseKingland, "a", "A", 63_000_000, 4_000_000, 0), 1000, 1000),
			},
		},
	}

	results, err := NewCalculator(zerolog.Nop()).Compute(snap, ScopeCumulative)
	require.NoError(t, err)

	entries := Top(results, snap, 3)
	require.Len(t, entries, 3)

	assert.Equal(t, 1, entries[0].Rank)
	assert.Equal(t, "a", entries[0].GovernorID)
	assert.Equal(t, int64(4_000_000), entries[0].KillPoints)
	assert.Equal(t, int64(63_000_000), entries[0].Power)
	assert.Equal(t, int64(1000), entries[0].TierKills[4])
	assert.Equal(t, domain.PhaseKingland, entries[0].SourcePhase)

	assert.Equal(t, 2, entries[1].Rank)
	assert.Equal(t, "b", entries[1].GovernorID)
	assert.Equal(t, domain.PhasePass7, entries[1].SourcePhase)
	assert.Equal(t, int64(200), entries[1].TierKills[3])

	assert.Equal(t, 3, entries[2].Rank)
	assert.Equal(t, "d", entries[2].GovernorID)
	assert.Equal(t, domain.PhasePass4, entries[2].SourcePhase)
	assert.Equal(t, int64(91_000_000), entries[2].Power)
}

func TestTop_FewerPlayersThanLimit(t *testing.T) {
	snap := scenarioSnapshot()
	results, err := NewCalculator(zerolog.Nop()).Compute(snap, ScopeCumulative)
	require.NoError(t, err)

	entries := Top(results, snap, 3)
	require.Len(t, entries, 1)
	assert.Equal(t, 1, entries[0].Rank)

	assert.Empty(t, Top(nil, snap, 3))
	assert.Empty(t, Top(results, snap, 0))
}

func TestTop_FallsBackToStart(t *testing.T) {
	snap := Snapshot{
		Phases: map[domain.Phase][]domain.StatRecord{
			domain.PhaseStart: {stat(domain.PhaseStart, "s", "Solo", 25_000_000, 0, 0)},
		},
	}
	results, err := NewCalculator(zerolog.Nop()).Compute(snap, ScopeCumulative)
	require.NoError(t, err)

	entries := Top(results, snap, 3)
	require.Len(t, entries, 1)
	assert.Equal(t, domain.PhaseStart, entries[0].SourcePhase)
	assert.Equal(t, int64(25_000_000), entries[0].Power)
}
