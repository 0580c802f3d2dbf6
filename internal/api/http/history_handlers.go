package http

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	authmw "github.com/report-coach/reportcoach-backend/internal/auth/middleware"
	"github.com/report-coach/reportcoach-backend/internal/interaction"
)

const historyExcerptLimit = 160

// GET /history
func ListHistoryHandler(interactions *interaction.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID := authmw.SubjectFromContext(r.Context())
		rows, err := interactions.ListRecent(r.Context(), userID, 30)
		if err != nil {
			http.Error(w, err.Error(), http.StatusInternalServerError)
			return
		}
		items := make([]map[string]interface{}, 0, len(rows))
		for _, rec := range rows {
			items = append(items, map[string]interface{}{
				"id":               rec.ID,
				"feedback_time":    rec.FeedbackTime,
				"prompt_excerpt":   historyExcerpt(rec.PromptText),
				"feedback_excerpt": historyExcerpt(rec.FeedbackText),
			})
		}
		_ = json.NewEncoder(w).Encode(map[string]interface{}{"success": true, "items": items})
	}
}

// GET /history/{interactionID}
func GetHistoryHandler(interactions *interaction.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID := authmw.SubjectFromContext(r.Context())
		id := strings.TrimSpace(chi.URLParam(r, "interactionID"))
		rec, err := interactions.Get(r.Context(), id)
		if errors.Is(err, interaction.ErrNotFound) || (err == nil && rec.UserID != userID) {
			http.Error(w, "not found", http.StatusNotFound)
			return
		}
		if err != nil {
			http.Error(w, err.Error(), http.StatusInternalServerError)
			return
		}
		_ = json.NewEncoder(w).Encode(map[string]interface{}{
			"success":       true,
			"id":            rec.ID,
			"feedback_time": rec.FeedbackTime,
			"prompt_text":   rec.PromptText,
			"feedback_text": rec.FeedbackText,
			"scores":        rec.Scores,
		})
	}
}

type ratingReq struct {
	InteractionID string  `json:"interaction_id"`
	Rating        *int    `json:"rating"`
	Feedback      *string `json:"feedback"`
}

// POST /history/rating attaches the student's rating of the feedback; falls
// back to the latest interaction when no id is given.
func SubmitRatingHandler(interactions *interaction.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID := authmw.SubjectFromContext(r.Context())
		var req ratingReq
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "bad json", http.StatusBadRequest)
			return
		}
		err := interactions.AttachRating(r.Context(), req.InteractionID, userID, req.Rating, req.Feedback)
		if errors.Is(err, interaction.ErrNotFound) {
			http.Error(w, "record not found", http.StatusNotFound)
			return
		}
		if err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		_ = json.NewEncoder(w).Encode(map[string]interface{}{"success": true})
	}
}

func historyExcerpt(s string) string {
	if len(s) > historyExcerptLimit {
		return s[:historyExcerptLimit] + "..."
	}
	return s
}
