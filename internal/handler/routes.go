package handler

import (
	"net/http"

	"github.com/gorilla/mux"
)

// RegisterRoutes mounts the API on r. trigger may be nil when the scheduler
// is disabled.
func RegisterRoutes(r *mux.Router, weeks *WeekHandler, standings *StandingsHandler, trigger *TriggerHandler) {
	r.HandleFunc("/health", HandleHealth).Methods(http.MethodGet)

	api := r.PathPrefix("/api").Subrouter()
	api.HandleFunc("/weeks/{id:[0-9]+}/finalize", weeks.Finalize).Methods(http.MethodPost)
	api.HandleFunc("/weeks/{id:[0-9]+}/metrics", weeks.GetMetrics).Methods(http.MethodGet)
	api.HandleFunc("/weeks/{id:[0-9]+}/awards", weeks.GetAwards).Methods(http.MethodGet)
	api.HandleFunc("/blocks/{id:[0-9]+}/weeks", weeks.ListBlockWeeks).Methods(http.MethodGet)

	api.HandleFunc("/standings", standings.GetStandings).Methods(http.MethodGet)
	api.HandleFunc("/teams/{id:[0-9]+}/ledger", standings.GetTeamLedger).Methods(http.MethodGet)
	api.HandleFunc("/teams/{id:[0-9]+}/adjustments", standings.AdjustPoints).Methods(http.MethodPost)

	if trigger != nil {
		api.HandleFunc("/finalize/recent", trigger.FinalizeRecent).Methods(http.MethodPost)
	}
}
