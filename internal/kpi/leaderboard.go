package kpi

import (
	"kvk-dashboard/internal/domain"
)

// Top takes the first n cumulative results and enriches them with power and
// tier kills from the latest phase record the player has.
func Top(results []domain.KpiResult, snap Snapshot, n int) []domain.LeaderboardEntry {
	if n <= 0 || len(results) == 0 {
		return []domain.LeaderboardEntry{}
	}
	if n > len(results) {
		n = len(results)
	}

	byPhase := indexPhases(snap.Phases)
	entries := make([]domain.LeaderboardEntry, 0, n)
	for i, r := range results[:n] {
		entry := domain.LeaderboardEntry{
			Rank:          i + 1,
			GovernorID:    r.GovernorID,
			GovernorName:  r.GovernorName,
			KillPoints:    r.KpIncrease,
			KpiPercentage: r.KpiPercentage,
			IsAchieved:    r.IsAchieved,
		}
		if rec, ok := latestRecord(byPhase, r.GovernorID); ok {
			entry.Power = rec.Power
			entry.TierKills = rec.TierKills
			entry.SourcePhase = rec.Phase
		}
		entries = append(entries, entry)
	}
	return entries
}

func latestRecord(byPhase map[domain.Phase]map[string]domain.StatRecord, governorID string) (domain.StatRecord, bool) {
	for i := len(domain.Phases) - 1; i >= 0; i-- {
		phase := domain.Phases[i]
		if rec, ok := byPhase[phase][governorID]; ok {
			rec.Phase = phase
			return rec, true
		}
	}
	return domain.StatRecord{}, false
}
