package server

import (
	"kvk-dashboard/internal/domain"
	"time"
)

type statRecordResponse struct {
	GovernorID   string                  `json:"governorId"`
	GovernorName string                  `json:"governorName"`
	Power        int64                   `json:"power"`
	KillPoints   int64                   `json:"killPoints"`
	Deads        int64                   `json:"deads"`
	TotalDeads   int64                   `json:"totalDeads"`
	TierKills    [domain.TierCount]int64 `json:"tierKills"`
	Phase        domain.Phase            `json:"phase"`
	CreatedAt    string                  `json:"createdAt"`
}

type statusResponse struct {
	GovernorID   string `json:"governorId"`
	GovernorName string `json:"governorName"`
	domain.StatusFlags
	UpdatedAt string `json:"updatedAt"`
}

type adjustmentResponse struct {
	ID                  int64   `json:"id"`
	GovernorID          string  `json:"governorId"`
	GovernorName        string  `json:"governorName"`
	ReductionPercentage float64 `json:"reductionPercentage"`
	Reason              string  `json:"reason"`
	PowerAtReduction    int64   `json:"powerAtReduction"`
	CreatedAt           string  `json:"createdAt"`
}

type errorResponse struct {
	Error string            `json:"error"`
	Rows  []domain.RowError `json:"rows,omitempty"`
}

type updateStatusRequest struct {
	GovernorName string `json:"governorName"`
	domain.StatusFlags
}

type setTotalDeadsRequest struct {
	TotalDeads *int64 `json:"totalDeads"`
}

type applyReductionRequest struct {
	GovernorID          string   `json:"governorId"`
	ReductionPercentage *float64 `json:"reductionPercentage"`
	Reason              string   `json:"reason"`
}

func toStatRecordResponses(records []domain.StatRecord) []statRecordResponse {
	out := make([]statRecordResponse, 0, len(records))
	for _, r := range records {
		out = append(out, statRecordResponse{
			GovernorID:   r.GovernorID,
			GovernorName: r.GovernorName,
			Power:        r.Power,
			KillPoints:   r.KillPoints,
			Deads:        r.Deads,
			TotalDeads:   r.TotalDeads,
			TierKills:    r.TierKills,
			Phase:        r.Phase,
			CreatedAt:    r.CreatedAt.Format(time.RFC3339),
		})
	}
	return out
}

func toStatusResponse(r domain.StatusRecord) statusResponse {
	return statusResponse{
		GovernorID:   r.GovernorID,
		GovernorName: r.GovernorName,
		StatusFlags: domain.StatusFlags{
			OnLeave:     r.OnLeave,
			Zeroed:      r.Zeroed,
			FarmAccount: r.FarmAccount,
			Blacklisted: r.Blacklisted,
		},
		UpdatedAt: r.UpdatedAt.Format(time.RFC3339),
	}
}

func toStatusResponses(records []domain.StatusRecord) []statusResponse {
	out := make([]statusResponse, 0, len(records))
	for _, r := range records {
		out = append(out, toStatusResponse(r))
	}
	return out
}

func toAdjustmentResponse(a domain.KpiAdjustment) adjustmentResponse {
	return adjustmentResponse{
		ID:                  a.ID,
		GovernorID:          a.GovernorID,
		GovernorName:        a.GovernorName,
		ReductionPercentage: a.ReductionPercentage,
		Reason:              a.Reason,
		PowerAtReduction:    a.PowerAtReduction,
		CreatedAt:           a.CreatedAt.Format(time.RFC3339),
	}
}

func toAdjustmentResponses(adjustments []domain.KpiAdjustment) []adjustmentResponse {
	out := make([]adjustmentResponse, 0, len(adjustments))
	for _, a := range adjustments {
		out = append(out, toAdjustmentResponse(a))
	}
	return out
}
