package handler

import (
	"context"
	"net/http"
	"time"
)

type FinalizeTrigger interface {
	TriggerNow(ctx context.Context) (int, error)
}

type TriggerHandler struct {
	trigger FinalizeTrigger
}

func NewTriggerHandler(trigger FinalizeTrigger) *TriggerHandler {
	return &TriggerHandler{trigger: trigger}
}

// FinalizeRecent handles POST /api/finalize/recent. It runs the scheduled
// pass synchronously; weeks that fail are reported but do not fail the call.
func (h *TriggerHandler) FinalizeRecent(w http.ResponseWriter, r *http.Request) {
	started := time.Now()
	done, err := h.trigger.TriggerNow(r.Context())

	resp := map[string]interface{}{
		"finalized":   done,
		"duration_ms": time.Since(started).Milliseconds(),
	}
	if err != nil {
		resp["errors"] = err.Error()
	}

	writeJSON(w, http.StatusOK, resp)
}
