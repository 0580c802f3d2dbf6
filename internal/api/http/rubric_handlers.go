package http

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"strconv"
	"strings"

	"github.com/report-coach/reportcoach-backend/internal/audit"
	authmw "github.com/report-coach/reportcoach-backend/internal/auth/middleware"
	"github.com/report-coach/reportcoach-backend/internal/rubric"
)

// GET /rubric
func GetRubricHandler(store *rubric.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		rub, err := store.GetActive(r.Context())
		if err != nil {
			http.Error(w, err.Error(), http.StatusInternalServerError)
			return
		}
		_ = json.NewEncoder(w).Encode(rub)
	}
}

// PUT /rubric replaces the active rubric wholesale. The body must be a JSON
// array of sections; anything else is rejected and leaves the active rubric
// and its history untouched.
func SaveRubricHandler(store *rubric.Store, events *audit.Log) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var rub rubric.Rubric
		if err := json.NewDecoder(r.Body).Decode(&rub); err != nil {
			http.Error(w, "body must be a JSON array of rubric sections", http.StatusBadRequest)
			return
		}
		actor := authmw.SubjectFromContext(r.Context())
		vid, err := store.Replace(r.Context(), rub, actor)
		if errors.Is(err, rubric.ErrValidation) {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		if err != nil {
			http.Error(w, err.Error(), http.StatusInternalServerError)
			return
		}
		if err := events.Append(r.Context(), audit.EventRubricReplaced, strconv.FormatInt(vid, 10),
			map[string]interface{}{"actor": actor, "sections": len(rub)}); err != nil {
			log.Printf("audit append failed: %v", err)
		}
		_ = json.NewEncoder(w).Encode(map[string]interface{}{
			"message":    "rubric saved",
			"version_id": vid,
		})
	}
}

type extractReq struct {
	// Syllabus text, already extracted upstream for PDF/DOCX uploads.
	Text string `json:"text"`
}

// POST /rubric/extract runs best-effort rubric extraction on syllabus text.
// The result is returned for review, not activated.
func ExtractRubricHandler(ex *rubric.Extractor) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req extractReq
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "bad json", http.StatusBadRequest)
			return
		}
		if strings.TrimSpace(req.Text) == "" {
			http.Error(w, "syllabus text required", http.StatusBadRequest)
			return
		}
		sections := ex.Extract(r.Context(), req.Text)
		_ = json.NewEncoder(w).Encode(map[string]interface{}{
			"success": true,
			"rubric":  sections,
		})
	}
}

// GET /rubric/versions?limit=20
func ListRubricVersionsHandler(store *rubric.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
		versions, err := store.ListVersions(r.Context(), limit)
		if err != nil {
			http.Error(w, err.Error(), http.StatusInternalServerError)
			return
		}
		_ = json.NewEncoder(w).Encode(map[string]interface{}{
			"success":  true,
			"versions": versions,
		})
	}
}

type rollbackReq struct {
	VersionID int64 `json:"version_id"`
}

// POST /rubric/rollback
func RollbackRubricHandler(store *rubric.Store, events *audit.Log) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req rollbackReq
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.VersionID == 0 {
			http.Error(w, "version_id is required", http.StatusBadRequest)
			return
		}
		actor := authmw.SubjectFromContext(r.Context())
		rub, err := store.Rollback(r.Context(), req.VersionID, actor)
		switch {
		case errors.Is(err, rubric.ErrVersionNotFound):
			http.Error(w, err.Error(), http.StatusNotFound)
			return
		case errors.Is(err, rubric.ErrVersionCorrupt):
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		case err != nil:
			http.Error(w, err.Error(), http.StatusInternalServerError)
			return
		}
		if err := events.Append(r.Context(), audit.EventRubricRollback, strconv.FormatInt(req.VersionID, 10),
			map[string]interface{}{"actor": actor}); err != nil {
			log.Printf("audit append failed: %v", err)
		}
		_ = json.NewEncoder(w).Encode(map[string]interface{}{
			"success": true,
			"rubric":  rub,
		})
	}
}
