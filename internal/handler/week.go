package handler

import (
	"context"
	"net/http"

	"fitness-league/internal/models"
	"fitness-league/internal/service"
	"fitness-league/pkg/errors"
)

type Finalizer interface {
	FinalizeWeek(ctx context.Context, weekID uint) (*service.FinalizeResult, error)
}

type WeekResultsReader interface {
	GetWeekMetrics(ctx context.Context, weekID uint) ([]models.TeamWeekMetric, error)
	GetWeekAwards(ctx context.Context, weekID uint) ([]models.TeamWeekAward, error)
}

type WeekLister interface {
	GetByID(ctx context.Context, id uint) (*models.Week, error)
	ListByBlock(ctx context.Context, blockID uint) ([]models.Week, error)
}

type WeekHandler struct {
	finalizer Finalizer
	results   WeekResultsReader
	weeks     WeekLister
}

func NewWeekHandler(finalizer Finalizer, results WeekResultsReader, weeks WeekLister) *WeekHandler {
	return &WeekHandler{finalizer: finalizer, results: results, weeks: weeks}
}

// Finalize handles POST /api/weeks/{id}/finalize.
func (h *WeekHandler) Finalize(w http.ResponseWriter, r *http.Request) {
	weekID, ok := pathID(r, "id")
	if !ok {
		writeError(w, http.StatusBadRequest, "week id must be a positive integer")
		return
	}

	result, err := h.finalizer.FinalizeWeek(r.Context(), weekID)
	if err != nil {
		writeAppError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, result)
}

// GetMetrics handles GET /api/weeks/{id}/metrics.
func (h *WeekHandler) GetMetrics(w http.ResponseWriter, r *http.Request) {
	weekID, ok := h.existingWeek(w, r)
	if !ok {
		return
	}

	metrics, err := h.results.GetWeekMetrics(r.Context(), weekID)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to get week metrics: "+err.Error())
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"week_id": weekID,
		"items":   metrics,
	})
}

// GetAwards handles GET /api/weeks/{id}/awards.
func (h *WeekHandler) GetAwards(w http.ResponseWriter, r *http.Request) {
	weekID, ok := h.existingWeek(w, r)
	if !ok {
		return
	}

	awards, err := h.results.GetWeekAwards(r.Context(), weekID)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to get week awards: "+err.Error())
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"week_id": weekID,
		"items":   awards,
	})
}

// ListBlockWeeks handles GET /api/blocks/{id}/weeks.
func (h *WeekHandler) ListBlockWeeks(w http.ResponseWriter, r *http.Request) {
	blockID, ok := pathID(r, "id")
	if !ok {
		writeError(w, http.StatusBadRequest, "block id must be a positive integer")
		return
	}

	weeks, err := h.weeks.ListByBlock(r.Context(), blockID)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to list weeks: "+err.Error())
		return
	}

	writeJSON(w, http.StatusOK, weeks)
}

func (h *WeekHandler) existingWeek(w http.ResponseWriter, r *http.Request) (uint, bool) {
	weekID, ok := pathID(r, "id")
	if !ok {
		writeError(w, http.StatusBadRequest, "week id must be a positive integer")
		return 0, false
	}

	if _, err := h.weeks.GetByID(r.Context(), weekID); err != nil {
		if errors.Is(err, errors.ErrWeekNotFound) {
			writeError(w, http.StatusNotFound, err.Error())
		} else {
			writeError(w, http.StatusInternalServerError, "failed to load week: "+err.Error())
		}
		return 0, false
	}
	return weekID, true
}
