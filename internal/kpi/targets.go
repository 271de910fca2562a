package kpi

import (
	"kvk-dashboard/internal/constants"
)

type deadsTier struct {
	minPower int64
	target   int64
}

// deadsTiers is ordered by descending threshold; the first match wins.
var deadsTiers = []deadsTier{
	{100_000_000, 1_500_000},
	{90_000_000, 1_100_000},
	{80_000_000, 850_000},
	{70_000_000, 700_000},
	{60_000_000, 600_000},
	{50_000_000, 500_000},
	{40_000_000, 400_000},
	{30_000_000, 300_000},
	{20_000_000, 200_000},
}

// DeadsTarget maps starting power to the deads requirement. Zeroed players
// owe nothing.
func DeadsTarget(power int64, zeroed bool) int64 {
	if zeroed {
		return 0
	}
	for _, t := range deadsTiers {
		if power >= t.minPower {
			return t.target
		}
	}
	return 0
}

func KillPointTarget(power int64) int64 {
	return power * constants.KillPointTargetMultiplier
}

// Percentage returns 100*value/target, or 0 when target is not positive.
func Percentage(value, target int64) float64 {
	if target <= 0 {
		return 0
	}
	return float64(value) * 100 / float64(target)
}

// Reduce scales a percentage down by reduction percent (0-100).
func Reduce(pct, reduction float64) float64 {
	return pct * (1 - reduction/100)
}

// Achieved applies the two KPI gates; both must hold.
func Achieved(killPointPct, kpiPct float64) bool {
	return killPointPct >= constants.KillPointGatePercentage && kpiPct >= constants.KpiGatePercentage
}
