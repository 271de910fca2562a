package domain

import (
	"time"
)

// TierCount is the number of troop tiers tracked per kill breakdown.
const TierCount = 5

type StatRecord struct {
	ID           int64
	GovernorID   string
	GovernorName string
	Power        int64
	KillPoints   int64
	Deads        int64
	TotalDeads   int64 // only meaningful at PhaseKingland
	TierKills    [TierCount]int64
	Phase        Phase
	CreatedAt    time.Time
}

type StatusRecord struct {
	GovernorID   string
	GovernorName string
	OnLeave      bool
	Zeroed       bool
	FarmAccount  bool
	Blacklisted  bool
	UpdatedAt    time.Time
}

// Excluded reports whether any status flag removes the player from KPI views.
func (s StatusRecord) Excluded() bool {
	return s.OnLeave || s.Zeroed || s.FarmAccount || s.Blacklisted
}

type KpiAdjustment struct {
	ID                  int64
	GovernorID          string
	GovernorName        string
	ReductionPercentage float64 // 0-100
	Reason              string
	PowerAtReduction    int64
	CreatedAt           time.Time
}

// KpiResult is computed per request and never persisted.
type KpiResult struct {
	GovernorID          string  `json:"governorId"`
	GovernorName        string  `json:"governorName"`
	KpIncrease          int64   `json:"kpIncrease"`
	KillPointTarget     int64   `json:"killPointTarget"`
	KillPointPercentage float64 `json:"killPointPercentage"`
	TotalDeads          int64   `json:"totalDeads"`
	DeadsTarget         int64   `json:"deadsTarget"`
	DeadsPercentage     float64 `json:"deadsPercentage"`
	KpiPercentage       float64 `json:"kpiPercentage"`
	ReductionPercentage float64 `json:"reductionPercentage"`
	IsAchieved          bool    `json:"isAchieved"`
}

type LeaderboardEntry struct {
	Rank          int              `json:"rank"`
	GovernorID    string           `json:"governorId"`
	GovernorName  string           `json:"governorName"`
	Power         int64            `json:"power"`
	KillPoints    int64            `json:"killPoints"` // cumulative kp increase
	TierKills     [TierCount]int64 `json:"tierKills"`
	KpiPercentage float64          `json:"kpiPercentage"`
	IsAchieved    bool             `json:"isAchieved"`
	SourcePhase   Phase            `json:"sourcePhase"`
}

// StatusFlags is the mutable part of a StatusRecord.
type StatusFlags struct {
	OnLeave     bool `json:"onLeave"`
	Zeroed      bool `json:"zeroed"`
	FarmAccount bool `json:"farmAccount"`
	Blacklisted bool `json:"blacklisted"`
}

// UploadResult summarises one accepted spreadsheet batch.
type UploadResult struct {
	BatchID    string `json:"batchId"`
	Phase      Phase  `json:"phase"`
	Rows       int    `json:"rows"`
	NewPlayers int    `json:"newPlayers"`
}
