package http

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/report-coach/reportcoach-backend/internal/audit"
)

// GET /admin/events?limit=50
func ListEventsHandler(events *audit.Log) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
		rows, err := events.Recent(r.Context(), limit)
		if err != nil {
			http.Error(w, err.Error(), http.StatusInternalServerError)
			return
		}
		_ = json.NewEncoder(w).Encode(map[string]interface{}{"success": true, "events": rows})
	}
}
