package interaction_test

import (
	"context"
	"database/sql"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/report-coach/reportcoach-backend/internal/db"
	"github.com/report-coach/reportcoach-backend/internal/feedback"
	"github.com/report-coach/reportcoach-backend/internal/interaction"
)

func newTestStore(t *testing.T) (*interaction.Store, *sql.DB) {
	t.Helper()
	dbh, err := db.Open(context.Background(), db.DriverSQLite,
		"file:"+filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	t.Cleanup(func() { dbh.Close() })
	for _, u := range []string{"user-1", "user-2"} {
		if _, err := dbh.Exec(
			`INSERT INTO users (id, username, password_hash, role, created_at) VALUES ($1,$1,'x','student',$2)`,
			u, time.Now().Unix()); err != nil {
			t.Fatalf("seed user: %v", err)
		}
	}
	return interaction.NewStore(dbh), dbh
}

func sample(userID, prompt string, ts int64) interaction.Interaction {
	return interaction.Interaction{
		UserID:          userID,
		PromptText:      prompt,
		PromptTime:      ts,
		FeedbackText:    "**Final Report Feedback**\nTotal 4/4",
		FeedbackSummary: "solid draft",
		FeedbackTime:    ts,
		Scores: map[string]feedback.ScoreEntry{
			"Executive Summary": {Score: 3.2, Total: 4},
		},
		EvidenceQuotes: []string{"the plant produces 120 t/d"},
	}
}

func TestAppendAndGet(t *testing.T) {
	store, _ := newTestStore(t)
	ctx := context.Background()

	rec, err := store.Append(ctx, sample("user-1", "my report", 100))
	if err != nil {
		t.Fatalf("Append: %v", err)
	}
	if rec.ID == "" || rec.CreatedAt == 0 || rec.Status != "final" {
		t.Fatalf("Append did not fill defaults: %+v", rec)
	}

	got, err := store.Get(ctx, rec.ID)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if got.UserID != "user-1" || got.PromptText != "my report" {
		t.Fatalf("got = %+v", got)
	}
	if e := got.Scores["Executive Summary"]; e.Score != 3.2 || e.Total != 4 {
		t.Errorf("scores round trip = %+v", got.Scores)
	}
	if len(got.EvidenceQuotes) != 1 {
		t.Errorf("evidence round trip = %v", got.EvidenceQuotes)
	}
}

func TestGetUnknown(t *testing.T) {
	store, _ := newTestStore(t)
	if _, err := store.Get(context.Background(), "nope"); !errors.Is(err, interaction.ErrNotFound) {
		t.Fatalf("err = %v, want ErrNotFound", err)
	}
}

func TestListRecentNewestFirstAndScoped(t *testing.T) {
	store, _ := newTestStore(t)
	ctx := context.Background()

	a, _ := store.Append(ctx, sample("user-1", "first", 100))
	b, _ := store.Append(ctx, sample("user-1", "second", 200))
	if _, err := store.Append(ctx, sample("user-2", "other user", 300)); err != nil {
		t.Fatalf("Append: %v", err)
	}

	rows, err := store.ListRecent(ctx, "user-1", 10)
	if err != nil {
		t.Fatalf("ListRecent: %v", err)
	}
	if len(rows) != 2 || rows[0].ID != b.ID || rows[1].ID != a.ID {
		t.Fatalf("rows = %+v", rows)
	}

	latest, err := store.Latest(ctx, "user-1")
	if err != nil {
		t.Fatalf("Latest: %v", err)
	}
	if latest.ID != b.ID {
		t.Fatalf("latest = %+v, want %s", latest, b.ID)
	}
}

func TestAttachRating(t *testing.T) {
	store, _ := newTestStore(t)
	ctx := context.Background()

	rec, _ := store.Append(ctx, sample("user-1", "report", 100))
	rating := 5
	comment := "helpful"
	if err := store.AttachRating(ctx, rec.ID, "user-1", &rating, &comment); err != nil {
		t.Fatalf("AttachRating: %v", err)
	}
	got, _ := store.Get(ctx, rec.ID)
	if got.Rating == nil || *got.Rating != 5 || got.StudentFeedback != "helpful" {
		t.Fatalf("rating not attached: %+v", got)
	}
}

func TestAttachRatingFallsBackToLatest(t *testing.T) {
	store, _ := newTestStore(t)
	ctx := context.Background()

	store.Append(ctx, sample("user-1", "first", 100))
	latest, _ := store.Append(ctx, sample("user-1", "second", 200))

	rating := 2
	// unknown id falls back to the caller's latest interaction
	if err := store.AttachRating(ctx, "unknown-id", "user-1", &rating, nil); err != nil {
		t.Fatalf("AttachRating: %v", err)
	}
	got, _ := store.Get(ctx, latest.ID)
	if got.Rating == nil || *got.Rating != 2 {
		t.Fatalf("fallback rating not attached: %+v", got)
	}
}

func TestAttachRatingRejectsForeignInteraction(t *testing.T) {
	store, _ := newTestStore(t)
	ctx := context.Background()

	foreign, _ := store.Append(ctx, sample("user-2", "not yours", 100))
	mine, _ := store.Append(ctx, sample("user-1", "mine", 200))

	rating := 1
	if err := store.AttachRating(ctx, foreign.ID, "user-1", &rating, nil); err != nil {
		t.Fatalf("AttachRating: %v", err)
	}
	// rating lands on the caller's latest, never the foreign record
	f, _ := store.Get(ctx, foreign.ID)
	if f.Rating != nil {
		t.Fatal("foreign interaction was mutated")
	}
	m, _ := store.Get(ctx, mine.ID)
	if m.Rating == nil || *m.Rating != 1 {
		t.Fatalf("rating missing on own latest: %+v", m)
	}
}
