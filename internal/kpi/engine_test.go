package kpi

import (
	"kvk-dashboard/internal/domain"
	"math"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func stat(phase domain.Phase, id, name string, power, kp, totalDeads int64) domain.StatRecord {
	return domain.StatRecord{
		GovernorID:   id,
		GovernorName: name,
		Power:        power,
		KillPoints:   kp,
		TotalDeads:   totalDeads,
		Phase:        phase,
	}
}

// scenarioSnapshot is one 50M player progressing through all four phases.
func scenarioSnapshot() Snapshot {
	return Snapshot{
		Phases: map[domain.Phase][]domain.StatRecord{
			domain.PhaseStart:    {stat(domain.PhaseStart, "P", "Player", 50_000_000, 100_000, 0)},
			domain.PhasePass4:    {stat(domain.PhasePass4, "P", "Player", 52_000_000, 400_000, 0)},
			domain.PhasePass7:    {stat(domain.PhasePass7, "P", "Player", 53_000_000, 900_000, 0)},
			domain.PhaseKingland: {stat(domain.PhaseKingland, "P", "Player", 54_000_000, 1_600_000, 600_000)},
		},
	}
}

func TestCompute_Scenario(t *testing.T) {
	calc := NewCalculator(zerolog.Nop())

	results, err := calc.Compute(scenarioSnapshot(), ScopeCumulative)
	require.NoError(t, err)
	require.Len(t, results, 1)

	r := results[0]
	assert.Equal(t, "P", r.GovernorID)
	assert.Equal(t, int64(1_500_000), r.KpIncrease)
	assert.Equal(t, int64(150_000_000), r.KillPointTarget)
	assert.InDelta(t, 1.0, r.KillPointPercentage, 1e-9)
	assert.Equal(t, int64(600_000), r.TotalDeads)
	assert.Equal(t, int64(500_000), r.DeadsTarget)
	assert.InDelta(t, 120.0, r.DeadsPercentage, 1e-9)
	assert.InDelta(t, 121.0, r.KpiPercentage, 1e-9)
	assert.Zero(t, r.ReductionPercentage)
	assert.False(t, r.IsAchieved)
}

func TestCompute_ScenarioWithReduction(t *testing.T) {
	calc := NewCalculator(zerolog.Nop())
	snap := scenarioSnapshot()
	snap.Adjustments = []domain.KpiAdjustment{
		{ID: 1, GovernorID: "P", ReductionPercentage: 20, CreatedAt: time.Now()},
	}

	results, err := calc.Compute(snap, ScopeCumulative)
	require.NoError(t, err)
	require.Len(t, results, 1)

	r := results[0]
	assert.InDelta(t, 0.8, r.KillPointPercentage, 1e-9)
	assert.InDelta(t, 96.0, r.DeadsPercentage, 1e-9)
	assert.InDelta(t, 96.8, r.KpiPercentage, 1e-9)
	assert.InDelta(t, 20.0, r.ReductionPercentage, 1e-9)
	assert.False(t, r.IsAchieved)
}

func TestCompute_CumulativeEqualsSumOfEdges(t *testing.T) {
	calc := NewCalculator(zerolog.Nop())
	snap := scenarioSnapshot()

	var sum int64
	for _, sc := range []Scope{ScopePass4, ScopePass7, ScopeKingland} {
		results, err := calc.Compute(snap, sc)
		require.NoError(t, err)
		require.Len(t, results, 1)
		sum += results[0].KpIncrease
	}

	cumulative, err := calc.Compute(snap, ScopeCumulative)
	require.NoError(t, err)
	assert.Equal(t, sum, cumulative[0].KpIncrease)
}

func TestCompute_SingleEdgeScopes(t *testing.T) {
	calc := NewCalculator(zerolog.Nop())
	snap := scenarioSnapshot()

	tests := []struct {
		scope      Scope
		increase   int64
		totalDeads int64
	}{
		{scope: ScopePass4, increase: 300_000, totalDeads: 0},
		{scope: ScopePass7, increase: 500_000, totalDeads: 0},
		{scope: ScopeKingland, increase: 700_000, totalDeads: 600_000},
	}

	for _, tt := range tests {
		t.Run(string(tt.scope), func(t *testing.T) {
			results, err := calc.Compute(snap, tt.scope)
			require.NoError(t, err)
			require.Len(t, results, 1)
			assert.Equal(t, tt.increase, results[0].KpIncrease)
			assert.Equal(t, tt.totalDeads, results[0].TotalDeads)
			assert.Equal(t, int64(150_000_000), results[0].KillPointTarget)
		})
	}
}

func TestCompute_MissingPass4ContributesZero(t *testing.T) {
	calc := NewCalculator(zerolog.Nop())
	snap := scenarioSnapshot()
	delete(snap.Phases, domain.PhasePass4)

	for _, sc := range []Scope{ScopePass4, ScopePass7} {
		results, err := calc.Compute(snap, sc)
		require.NoError(t, err)
		require.Len(t, results, 1)
		assert.Zero(t, results[0].KpIncrease, "scope %s", sc)
	}

	results, err := calc.Compute(snap, ScopeCumulative)
	require.NoError(t, err)
	require.Len(t, results, 1)
	// only dataPass7 -> dataKingland survives
	assert.Equal(t, int64(700_000), results[0].KpIncrease)
}

func TestCompute_ExcludedStatusesNeverAppear(t *testing.T) {
	calc := NewCalculator(zerolog.Nop())

	starts := []domain.StatRecord{
		stat(domain.PhaseStart, "keep", "Keep", 30_000_000, 0, 0),
		stat(domain.PhaseStart, "leave", "Leave", 30_000_000, 0, 0),
		stat(domain.PhaseStart, "zero", "Zero", 30_000_000, 0, 0),
		stat(domain.PhaseStart, "farm", "Farm", 30_000_000, 0, 0),
		stat(domain.PhaseStart, "black", "Black", 30_000_000, 0, 0),
	}
	kingland := make([]domain.StatRecord, len(starts))
	for i, s := range starts {
		kingland[i] = stat(domain.PhaseKingland, s.GovernorID, s.GovernorName, s.Power, 1_000_000, 10)
	}

	snap := Snapshot{
		Phases: map[domain.Phase][]domain.StatRecord{
			domain.PhaseStart:    starts,
			domain.PhasePass4:    starts,
			domain.PhasePass7:    starts,
			domain.PhaseKingland: kingland,
		},
		Statuses: []domain.StatusRecord{
			{GovernorID: "keep"},
			{GovernorID: "leave", OnLeave: true},
			{GovernorID: "zero", Zeroed: true},
			{GovernorID: "farm", FarmAccount: true},
			{GovernorID: "black", Blacklisted: true},
		},
	}

	for _, sc := range Scopes {
		results, err := calc.Compute(snap, sc)
		require.NoError(t, err)
		require.Len(t, results, 1, "scope %s", sc)
		assert.Equal(t, "keep", results[0].GovernorID)
	}
}

func TestCompute_ZeroPowerNeverNaN(t *testing.T) {
	calc := NewCalculator(zerolog.Nop())
	snap := Snapshot{
		Phases: map[domain.Phase][]domain.StatRecord{
			domain.PhaseStart:    {stat(domain.PhaseStart, "z", "Zero", 0, 0, 0)},
			domain.PhaseKingland: {stat(domain.PhaseKingland, "z", "Zero", 0, 0, 500)},
			domain.PhasePass7:    {stat(domain.PhasePass7, "z", "Zero", 0, 0, 0)},
		},
	}

	results, err := calc.Compute(snap, ScopeKingland)
	require.NoError(t, err)
	require.Len(t, results, 1)

	r := results[0]
	assert.Zero(t, r.KillPointPercentage)
	assert.Zero(t, r.DeadsPercentage)
	assert.False(t, math.IsNaN(r.KpiPercentage) || math.IsInf(r.KpiPercentage, 0))
}

func TestCompute_RanksByKpIncreaseStable(t *testing.T) {
	calc := NewCalculator(zerolog.Nop())
	snap := Snapshot{
		Phases: map[domain.Phase][]domain.StatRecord{
			domain.PhaseStart: {
				stat(domain.PhaseStart, "a", "A", 100_000_000, 0, 0),
				stat(domain.PhaseStart, "b", "B", 10_000_000, 0, 0),
				stat(domain.PhaseStart, "c", "C", 10_000_000, 0, 0),
				stat(domain.PhaseStart, "d", "D", 10_000_000, 0, 0),
			},
			domain.PhasePass4: {
				stat(domain.PhasePass4, "a", "A", 0, 100, 0),
				stat(domain.PhasePass4, "b", "B", 0, 500, 0),
				stat(domain.PhasePass4, "c", "C", 0, 100, 0),
				stat(domain.PhasePass4, "d", "D", 0, 900, 0),
			},
		},
	}

	results, err := calc.Compute(snap, ScopePass4)
	require.NoError(t, err)

	ids := make([]string, len(results))
	for i, r := range results {
		ids[i] = r.GovernorID
	}
	// a and c tie and keep their dataStart order
	assert.Equal(t, []string{"d", "b", "a", "c"}, ids)
}

func TestCompute_NameFromTerminalPhase(t *testing.T) {
	calc := NewCalculator(zerolog.Nop())
	snap := scenarioSnapshot()
	snap.Phases[domain.PhaseKingland][0].GovernorName = "Renamed"

	results, err := calc.Compute(snap, ScopeCumulative)
	require.NoError(t, err)
	assert.Equal(t, "Renamed", results[0].GovernorName)

	results, err = calc.Compute(snap, ScopePass4)
	require.NoError(t, err)
	assert.Equal(t, "Player", results[0].GovernorName)
}

func TestCompute_PopulationIsDataStart(t *testing.T) {
	calc := NewCalculator(zerolog.Nop())
	snap := scenarioSnapshot()
	snap.Phases[domain.PhaseKingland] = append(snap.Phases[domain.PhaseKingland],
		stat(domain.PhaseKingland, "late", "Late Joiner", 90_000_000, 5_000_000, 1_000_000))

	results, err := calc.Compute(snap, ScopeCumulative)
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Equal(t, "P", results[0].GovernorID)
}

func TestCompute_NoStartData(t *testing.T) {
	calc := NewCalculator(zerolog.Nop())

	results, err := calc.Compute(Snapshot{}, ScopeCumulative)
	require.NoError(t, err)
	assert.NotNil(t, results)
	assert.Empty(t, results)
}

func TestCompute_InvalidScope(t *testing.T) {
	calc := NewCalculator(zerolog.Nop())

	_, err := calc.Compute(scenarioSnapshot(), Scope("weekly"))
	assert.ErrorIs(t, err, domain.ErrInvalidScope)
}

func TestCompute_AchievedPlayer(t *testing.T) {
	calc := NewCalculator(zerolog.Nop())
	snap := Snapshot{
		Phases: map[domain.Phase][]domain.StatRecord{
			domain.PhaseStart:    {stat(domain.PhaseStart, "w", "Whale", 20_000_000, 0, 0)},
			domain.PhasePass7:    {stat(domain.PhasePass7, "w", "Whale", 0, 0, 0)},
			domain.PhaseKingland: {stat(domain.PhaseKingland, "w", "Whale", 0, 30_000_000, 300_000)},
		},
	}

	results, err := calc.Compute(snap, ScopeKingland)
	require.NoError(t, err)
	require.Len(t, results, 1)

	// 30M / 60M = 50%, 300k / 200k = 150%
	assert.InDelta(t, 50.0, results[0].KillPointPercentage, 1e-9)
	assert.InDelta(t, 200.0, results[0].KpiPercentage, 1e-9)
	assert.True(t, results[0].IsAchieved)
}

func TestLatestAdjustments(t *testing.T) {
	base := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)
	latest := LatestAdjustments([]domain.KpiAdjustment{
		{ID: 1, GovernorID: "a", ReductionPercentage: 10, CreatedAt: base},
		{ID: 2, GovernorID: "a", ReductionPercentage: 30, CreatedAt: base.Add(time.Hour)},
		{ID: 3, GovernorID: "a", ReductionPercentage: 50, CreatedAt: base.Add(-time.Hour)},
		{ID: 4, GovernorID: "b", ReductionPercentage: 5, CreatedAt: base},
		{ID: 5, GovernorID: "b", ReductionPercentage: 15, CreatedAt: base},
	})

	require.Len(t, latest, 2)
	assert.InDelta(t, 30.0, latest["a"].ReductionPercentage, 1e-9)
	assert.Equal(t, int64(5), latest["b"].ID)
}

func TestFilter(t *testing.T) {
	results := []domain.KpiResult{
		{GovernorID: "1001", GovernorName: "Alpha"},
		{GovernorID: "2002", GovernorName: "beta"},
		{GovernorID: "3003", GovernorName: "ALPHABET"},
	}

	assert.Equal(t, results, Filter(results, "  "))

	got := Filter(results, "alpha")
	require.Len(t, got, 2)
	assert.Equal(t, "1001", got[0].GovernorID)
	assert.Equal(t, "3003", got[1].GovernorID)

	got = Filter(results, "200")
	require.Len(t, got, 1)
	assert.Equal(t, "beta", got[0].GovernorName)

	assert.Empty(t, Filter(results, "nobody"))
}
