package server

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"kvk-dashboard/internal/domain"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"
)

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	if err := json.NewEncoder(w).Encode(v); err != nil {
		http.Error(w, "encoding response", http.StatusInternalServerError)
	}
}

// writeError maps the domain error taxonomy onto HTTP status codes.
func writeError(w http.ResponseWriter, r *http.Request, err error) {
	resp := errorResponse{Error: err.Error()}
	status := http.StatusInternalServerError

	var validation *domain.ValidationError
	var tooLarge *http.MaxBytesError
	switch {
	case errors.As(err, &tooLarge):
		status = http.StatusRequestEntityTooLarge
	case errors.Is(err, domain.ErrInvalidFormat),
		errors.Is(err, domain.ErrInvalidPhase),
		errors.Is(err, domain.ErrInvalidScope):
		status = http.StatusBadRequest
	case errors.As(err, &validation):
		status = http.StatusUnprocessableEntity
		resp.Rows = validation.Rows
	case errors.Is(err, domain.ErrValidation):
		status = http.StatusUnprocessableEntity
	case errors.Is(err, domain.ErrNotFound):
		status = http.StatusNotFound
	}

	logger := zerolog.Ctx(r.Context())
	if status >= http.StatusInternalServerError {
		logger.Error().Err(err).Str("path", r.URL.Path).Msg("request failed")
		resp.Error = "internal error"
	} else {
		logger.Debug().Err(err).Int("status", status).Msg("request rejected")
	}
	writeJSON(w, status, resp)
}

func (s *DashboardServer) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *DashboardServer) handlePhaseStats(w http.ResponseWriter, r *http.Request) {
	phase, err := domain.ParsePhase(chi.URLParam(r, "phase"))
	if err != nil {
		writeError(w, r, err)
		return
	}

	records, err := s.ingestSvc.ListPhase(r.Context(), phase, r.URL.Query().Get("q"))
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, toStatRecordResponses(records))
}

func (s *DashboardServer) handleKPI(w http.ResponseWriter, r *http.Request) {
	results, err := s.kpiSvc.Results(r.Context(), chi.URLParam(r, "scope"), r.URL.Query().Get("q"))
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, results)
}

func (s *DashboardServer) handleLeaderboard(w http.ResponseWriter, r *http.Request) {
	limit := 0
	if raw := r.URL.Query().Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 1 {
			writeError(w, r, fmt.Errorf("%w: limit must be a positive integer", domain.ErrValidation))
			return
		}
		limit = n
	}

	entries, err := s.leaderboardSvc.Top(r.Context(), limit)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, entries)
}

func (s *DashboardServer) handleListStatuses(w http.ResponseWriter, r *http.Request) {
	statuses, err := s.statusSvc.ListStatuses(r.Context(), r.URL.Query().Get("flag"))
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, toStatusResponses(statuses))
}

func (s *DashboardServer) handleGetStatus(w http.ResponseWriter, r *http.Request) {
	status, err := s.statusSvc.GetStatus(r.Context(), chi.URLParam(r, "governorId"))
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, toStatusResponse(*status))
}

// --- Admin handlers ---

func (s *DashboardServer) handleUploadPhase(w http.ResponseWriter, r *http.Request) {
	phase, err := domain.ParsePhase(chi.URLParam(r, "phase"))
	if err != nil {
		writeError(w, r, err)
		return
	}

	filename, data, err := s.readUpload(w, r)
	if err != nil {
		writeError(w, r, err)
		return
	}

	result, err := s.ingestSvc.UploadPhase(r.Context(), phase, filename, data)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, result)
}

func (s *DashboardServer) handleUploadTotalDeads(w http.ResponseWriter, r *http.Request) {
	filename, data, err := s.readUpload(w, r)
	if err != nil {
		writeError(w, r, err)
		return
	}

	result, err := s.ingestSvc.PatchTotalDeads(r.Context(), filename, data)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, result)
}

func (s *DashboardServer) handleSetTotalDeads(w http.ResponseWriter, r *http.Request) {
	var req setTotalDeadsRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, r, err)
		return
	}
	if req.TotalDeads == nil {
		writeError(w, r, fmt.Errorf("%w: totalDeads is required", domain.ErrValidation))
		return
	}

	governorID := chi.URLParam(r, "governorId")
	if err := s.ingestSvc.SetTotalDeads(r.Context(), governorID, *req.TotalDeads); err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"governorId": governorID, "totalDeads": *req.TotalDeads})
}

func (s *DashboardServer) handleUpdateStatus(w http.ResponseWriter, r *http.Request) {
	var req updateStatusRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, r, err)
		return
	}

	status, err := s.statusSvc.UpdateStatus(r.Context(), chi.URLParam(r, "governorId"), req.GovernorName, req.StatusFlags)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, toStatusResponse(*status))
}

func (s *DashboardServer) handleListReductions(w http.ResponseWriter, r *http.Request) {
	adjustments, err := s.adjustmentSvc.ListReductions(r.Context(), r.URL.Query().Get("q"))
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, toAdjustmentResponses(adjustments))
}

func (s *DashboardServer) handleApplyReduction(w http.ResponseWriter, r *http.Request) {
	var req applyReductionRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, r, err)
		return
	}
	if req.ReductionPercentage == nil {
		writeError(w, r, fmt.Errorf("%w: reductionPercentage is required", domain.ErrValidation))
		return
	}

	adj, err := s.adjustmentSvc.ApplyReduction(r.Context(), req.GovernorID, *req.ReductionPercentage, req.Reason)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, toAdjustmentResponse(*adj))
}

func (s *DashboardServer) handleRemoveReduction(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		writeError(w, r, fmt.Errorf("%w: invalid adjustment id", domain.ErrValidation))
		return
	}

	if err := s.adjustmentSvc.RemoveReduction(r.Context(), id); err != nil {
		writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// readUpload returns the "file" part of a multipart request, capped at the
// configured upload size.
func (s *DashboardServer) readUpload(w http.ResponseWriter, r *http.Request) (string, []byte, error) {
	r.Body = http.MaxBytesReader(w, r.Body, s.cfg.MaxUploadBytes)
	if err := r.ParseMultipartForm(s.cfg.MaxUploadBytes); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			return "", nil, err
		}
		return "", nil, fmt.Errorf("%w: expected multipart form: %v", domain.ErrInvalidFormat, err)
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		return "", nil, fmt.Errorf("%w: missing file field: %v", domain.ErrInvalidFormat, err)
	}
	defer file.Close()

	data, err := io.ReadAll(file)
	if err != nil {
		return "", nil, fmt.Errorf("failed to read upload: %w", err)
	}
	return header.Filename, data, nil
}

func decodeJSON(r *http.Request, v any) error {
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		return fmt.Errorf("%w: invalid request body: %v", domain.ErrValidation, err)
	}
	return nil
}
