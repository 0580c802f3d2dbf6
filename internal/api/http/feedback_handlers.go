package http

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"strings"
	"time"

	"github.com/report-coach/reportcoach-backend/internal/audit"
	authmw "github.com/report-coach/reportcoach-backend/internal/auth/middleware"
	"github.com/report-coach/reportcoach-backend/internal/feedback"
	"github.com/report-coach/reportcoach-backend/internal/interaction"
	"github.com/report-coach/reportcoach-backend/internal/rubric"
)

const promptExcerptLimit = 4000

type feedbackReq struct {
	// Report text, already extracted upstream for PDF/DOCX uploads.
	Message string `json:"message"`
}

// POST /feedback
func GenerateFeedbackHandler(gen *feedback.Generator, rubrics *rubric.Store, interactions *interaction.Store, events *audit.Log) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID := authmw.SubjectFromContext(r.Context())
		var req feedbackReq
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "bad json", http.StatusBadRequest)
			return
		}

		rub, err := rubrics.GetActive(r.Context())
		if err != nil {
			http.Error(w, "load rubric: "+err.Error(), http.StatusInternalServerError)
			return
		}

		res := gen.Generate(r.Context(), req.Message, rub)

		now := time.Now().Unix()
		rec, err := interactions.Append(r.Context(), interaction.Interaction{
			UserID:          userID,
			PromptText:      strings.TrimSpace(req.Message),
			PromptTime:      now,
			FeedbackText:    res.ReportText,
			FeedbackSummary: res.Summary,
			FeedbackTime:    now,
			Scores:          res.Scores,
			EvidenceQuotes:  res.EvidenceQuotes,
			Status:          "final",
		})
		if err != nil {
			http.Error(w, "persist interaction: "+err.Error(), http.StatusInternalServerError)
			return
		}
		if err := events.Append(r.Context(), audit.EventFeedbackGenerated, rec.ID,
			map[string]interface{}{"user_id": userID, "scores": res.Scores}); err != nil {
			log.Printf("audit append failed: %v", err)
		}

		_ = json.NewEncoder(w).Encode(map[string]interface{}{
			"success":          true,
			"feedback":         res.ReportText,
			"feedback_summary": res.Summary,
			"scores":           res.Scores,
			"evidence_quotes":  res.EvidenceQuotes,
			"interaction_id":   rec.ID,
			"prompt_excerpt":   clip(strings.TrimSpace(req.Message), promptExcerptLimit),
		})
	}
}

// GET /feedback/latest
func LatestFeedbackHandler(interactions *interaction.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID := authmw.SubjectFromContext(r.Context())
		rec, err := interactions.Latest(r.Context(), userID)
		if err != nil && !errors.Is(err, interaction.ErrNotFound) {
			http.Error(w, err.Error(), http.StatusInternalServerError)
			return
		}
		_ = json.NewEncoder(w).Encode(map[string]interface{}{
			"success":  true,
			"feedback": rec.FeedbackText,
		})
	}
}

func clip(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n]
}
