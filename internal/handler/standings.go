package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/go-playground/validator/v10"

	"fitness-league/internal/models"
	"fitness-league/internal/service"
)

type StandingsReader interface {
	Standings(ctx context.Context) ([]service.Standing, error)
	TeamLedger(ctx context.Context, teamID uint, limit int) ([]models.PointLedgerEntry, error)
	AdjustPoints(ctx context.Context, teamID uint, amount int, reason string) (*models.PointLedgerEntry, error)
}

type StandingsHandler struct {
	standings StandingsReader
	validate  *validator.Validate
}

func NewStandingsHandler(standings StandingsReader) *StandingsHandler {
	return &StandingsHandler{standings: standings, validate: validator.New()}
}

// GetStandings handles GET /api/standings.
func (h *StandingsHandler) GetStandings(w http.ResponseWriter, r *http.Request) {
	standings, err := h.standings.Standings(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to get standings: "+err.Error())
		return
	}

	writeJSON(w, http.StatusOK, standings)
}

// GetTeamLedger handles GET /api/teams/{id}/ledger.
func (h *StandingsHandler) GetTeamLedger(w http.ResponseWriter, r *http.Request) {
	teamID, ok := pathID(r, "id")
	if !ok {
		writeError(w, http.StatusBadRequest, "team id must be a positive integer")
		return
	}

	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
	if limit < 1 || limit > 200 {
		limit = 50
	}

	entries, err := h.standings.TeamLedger(r.Context(), teamID, limit)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to get ledger: "+err.Error())
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"team_id": teamID,
		"items":   entries,
	})
}

type adjustmentRequest struct {
	Amount int    `json:"amount" validate:"required"`
	Reason string `json:"reason" validate:"required,max=255"`
}

// AdjustPoints handles POST /api/teams/{id}/adjustments.
func (h *StandingsHandler) AdjustPoints(w http.ResponseWriter, r *http.Request) {
	teamID, ok := pathID(r, "id")
	if !ok {
		writeError(w, http.StatusBadRequest, "team id must be a positive integer")
		return
	}

	var req adjustmentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body: "+err.Error())
		return
	}
	if err := h.validate.Struct(req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid adjustment: "+err.Error())
		return
	}

	entry, err := h.standings.AdjustPoints(r.Context(), teamID, req.Amount, req.Reason)
	if err != nil {
		writeAppError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, entry)
}
