// Package kpi derives per-player KPI results from phase snapshots.
package kpi

import (
	"fmt"
	"kvk-dashboard/internal/domain"
	"sort"
	"strings"

	"github.com/rs/zerolog"
)

// Snapshot is everything one computation reads, fetched up front.
type Snapshot struct {
	Phases      map[domain.Phase][]domain.StatRecord
	Statuses    []domain.StatusRecord
	Adjustments []domain.KpiAdjustment
}

type Calculator struct {
	logger zerolog.Logger
}

func NewCalculator(logger zerolog.Logger) *Calculator {
	return &Calculator{logger: logger.With().Str("component", "kpi").Logger()}
}

// Compute returns results for every eligible dataStart player, ranked by
// kpIncrease descending. No dataStart data yields an empty list.
func (c *Calculator) Compute(snap Snapshot, scope Scope) ([]domain.KpiResult, error) {
	edges := scope.Edges()
	if len(edges) == 0 {
		return nil, fmt.Errorf("%w: %q", domain.ErrInvalidScope, scope)
	}

	starts := snap.Phases[domain.PhaseStart]
	results := make([]domain.KpiResult, 0, len(starts))
	if len(starts) == 0 {
		c.logger.Debug().Str("scope", string(scope)).Msg("no dataStart records, nothing to rank")
		return results, nil
	}

	byPhase := indexPhases(snap.Phases)
	statuses := indexStatuses(snap.Statuses)
	reductions := LatestAdjustments(snap.Adjustments)
	terminal := scope.Terminal()

	excluded := 0
	for _, start := range starts {
		status, hasStatus := statuses[start.GovernorID]
		if hasStatus && status.Excluded() {
			excluded++
			continue
		}

		var kpIncrease int64
		for _, e := range edges {
			delta, ok := edgeDelta(byPhase, e, start.GovernorID)
			if !ok {
				c.logger.Debug().
					Str("governor_id", start.GovernorID).
					Str("scope", string(scope)).
					Str("from", string(e.From)).
					Str("to", string(e.To)).
					Msg("phase data missing, edge contributes 0")
				continue
			}
			kpIncrease += delta
		}

		name := start.GovernorName
		var totalDeads int64
		if last, ok := byPhase[terminal][start.GovernorID]; ok {
			name = last.GovernorName
			totalDeads = last.TotalDeads
		}

		kpTarget := KillPointTarget(start.Power)
		deadsTarget := DeadsTarget(start.Power, hasStatus && status.Zeroed)

		var reduction float64
		if adj, ok := reductions[start.GovernorID]; ok {
			reduction = adj.ReductionPercentage
		}

		kpPct := Reduce(Percentage(kpIncrease, kpTarget), reduction)
		deadsPct := Reduce(Percentage(totalDeads, deadsTarget), reduction)
		kpiPct := kpPct + deadsPct

		results = append(results, domain.KpiResult{
			GovernorID:          start.GovernorID,
			GovernorName:        name,
			KpIncrease:          kpIncrease,
			KillPointTarget:     kpTarget,
			KillPointPercentage: kpPct,
			TotalDeads:          totalDeads,
			DeadsTarget:         deadsTarget,
			DeadsPercentage:     deadsPct,
			KpiPercentage:       kpiPct,
			ReductionPercentage: reduction,
			IsAchieved:          Achieved(kpPct, kpiPct),
		})
	}

	sort.SliceStable(results, func(i, j int) bool {
		return results[i].KpIncrease > results[j].KpIncrease
	})

	c.logger.Debug().
		Str("scope", string(scope)).
		Int("ranked", len(results)).
		Int("excluded", excluded).
		Msg("kpi computed")
	return results, nil
}

// LatestAdjustments keeps the most recent adjustment per governor; equal
// timestamps fall back to the larger id.
func LatestAdjustments(adjustments []domain.KpiAdjustment) map[string]domain.KpiAdjustment {
	latest := make(map[string]domain.KpiAdjustment, len(adjustments))
	for _, a := range adjustments {
		cur, ok := latest[a.GovernorID]
		if !ok || a.CreatedAt.After(cur.CreatedAt) || (a.CreatedAt.Equal(cur.CreatedAt) && a.ID > cur.ID) {
			latest[a.GovernorID] = a
		}
	}
	return latest
}

// Filter keeps results whose id or name contains query, case-insensitively,
// preserving order.
func Filter(results []domain.KpiResult, query string) []domain.KpiResult {
	q := strings.ToLower(strings.TrimSpace(query))
	if q == "" {
		return results
	}
	out := make([]domain.KpiResult, 0, len(results))
	for _, r := range results {
		if Matches(r.GovernorID, r.GovernorName, q) {
			out = append(out, r)
		}
	}
	return out
}

// Matches reports whether id or name contains the lower-cased query.
func Matches(id, name, lowerQuery string) bool {
	return strings.Contains(strings.ToLower(id), lowerQuery) ||
		strings.Contains(strings.ToLower(name), lowerQuery)
}

func edgeDelta(byPhase map[domain.Phase]map[string]domain.StatRecord, e Edge, governorID string) (int64, bool) {
	from, ok := byPhase[e.From][governorID]
	if !ok {
		return 0, false
	}
	to, ok := byPhase[e.To][governorID]
	if !ok {
		return 0, false
	}
	return to.KillPoints - from.KillPoints, true
}

func indexPhases(phases map[domain.Phase][]domain.StatRecord) map[domain.Phase]map[string]domain.StatRecord {
	idx := make(map[domain.Phase]map[string]domain.StatRecord, len(phases))
	for phase, records := range phases {
		m := make(map[string]domain.StatRecord, len(records))
		for _, r := range records {
			if _, dup := m[r.GovernorID]; !dup {
				m[r.GovernorID] = r
			}
		}
		idx[phase] = m
	}
	return idx
}

func indexStatuses(statuses []domain.StatusRecord) map[string]domain.StatusRecord {
	idx := make(map[string]domain.StatusRecord, len(statuses))
	for _, s := range statuses {
		idx[s.GovernorID] = s
	}
	return idx
}
