package main

import (
	"context"
	"log"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	api "github.com/report-coach/reportcoach-backend/internal/api/http"
	"github.com/report-coach/reportcoach-backend/internal/audit"
	auth "github.com/report-coach/reportcoach-backend/internal/auth/middleware"
	"github.com/report-coach/reportcoach-backend/internal/config"
	"github.com/report-coach/reportcoach-backend/internal/db"
	"github.com/report-coach/reportcoach-backend/internal/feedback"
	"github.com/report-coach/reportcoach-backend/internal/interaction"
	"github.com/report-coach/reportcoach-backend/internal/llm"
	rbac "github.com/report-coach/reportcoach-backend/internal/rbac"
	"github.com/report-coach/reportcoach-backend/internal/rubric"
	storage "github.com/report-coach/reportcoach-backend/internal/storage"
)

func main() {
	cfg := config.FromEnv()

	// --- DB ---
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	dbh, err := db.Open(ctx, db.Driver(cfg.DBDriver), cfg.DBDSN)
	if err != nil {
		log.Fatalf("db open failed: %v", err)
	}

	if err := api.SeedAdmin(ctx, dbh, cfg.AdminUsername, cfg.AdminPassword); err != nil {
		log.Fatalf("seed admin: %v", err)
	}

	// --- Stores ---
	docs, err := storage.NewFSStore(cfg.DataDir)
	if err != nil {
		log.Fatalf("doc store: %v", err)
	}
	rubrics, err := rubric.NewStore(dbh, cfg.DBDriver, docs)
	if err != nil {
		log.Fatalf("rubric store: %v", err)
	}
	interactions := interaction.NewStore(dbh)
	events := audit.NewLog(dbh)

	// --- LLM-backed services (offline when no key) ---
	var client llm.Client
	if cfg.OpenAIKey != "" {
		client = llm.NewOpenAIClient(cfg.OpenAIKey)
	}
	gen := feedback.NewGenerator(client, cfg.OpenAIModel,
		feedback.ProfileByName(cfg.RubricProfile), cfg.EvidenceStrict)
	extractor := rubric.NewExtractor(client, cfg.OpenAIModel)

	// --- Auth ---
	authSvc := auth.NewAuthService(cfg.AuthSecret)

	// --- Router ---
	r := chi.NewRouter()
	r.Use(middleware.RequestID, middleware.RealIP, middleware.Logger, middleware.Recoverer)
	r.Use(middleware.Timeout(60 * time.Second)) // LLM calls are slow

	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   cfg.CORSOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Authorization", "Content-Type"},
		ExposedHeaders:   []string{"Content-Length"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	r.Post("/auth/register", api.RegisterHandler(dbh))
	r.Post("/auth/login", api.LoginHandler(dbh, authSvc))

	// Protected API (JWT → role in context → RBAC)
	r.Group(func(pr chi.Router) {
		pr.Use(auth.JWTMiddleware(authSvc))
		pr.Use(auth.AttachRoleFromDB(dbh, false))

		// Student flow
		pr.With(rbac.Require("feedback:create")).
			Post("/feedback", api.GenerateFeedbackHandler(gen, rubrics, interactions, events))
		pr.With(rbac.Require("feedback:view-own")).
			Get("/feedback/latest", api.LatestFeedbackHandler(interactions))
		pr.With(rbac.Require("history:view-own")).
			Get("/history", api.ListHistoryHandler(interactions))
		pr.With(rbac.Require("history:view-own")).
			Get("/history/{interactionID}", api.GetHistoryHandler(interactions))
		pr.With(rbac.Require("history:view-own")).
			Post("/history/rating", api.SubmitRatingHandler(interactions))

		pr.With(rbac.Require("user:change_password")).
			Post("/users/change-password", api.ChangePasswordHandler(dbh))

		// Rubric (view for everyone, mutation admin-only)
		pr.With(rbac.Require("rubric:view")).
			Get("/rubric", api.GetRubricHandler(rubrics))
		pr.With(rbac.Require("rubric:edit")).
			Put("/rubric", api.SaveRubricHandler(rubrics, events))
		pr.With(rbac.Require("rubric:edit")).
			Post("/rubric/extract", api.ExtractRubricHandler(extractor))
		pr.With(rbac.Require("rubric:edit")).
			Get("/rubric/versions", api.ListRubricVersionsHandler(rubrics))
		pr.With(rbac.Require("rubric:rollback")).
			Post("/rubric/rollback", api.RollbackRubricHandler(rubrics, events))

		pr.With(rbac.Require("audit:view")).
			Get("/admin/events", api.ListEventsHandler(events))
	})

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) { w.WriteHeader(200) })
	r.Get("/readyz", func(w http.ResponseWriter, r *http.Request) { w.WriteHeader(200) })

	log.Printf("listening on %s (db=%s, profile=%s, llm=%v)",
		cfg.HTTPAddr, cfg.DBDriver, cfg.RubricProfile, client != nil)
	log.Fatal(http.ListenAndServe(cfg.HTTPAddr, r))
}
