package interaction

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"time"

	"github.com/google/uuid"

	"github.com/report-coach/reportcoach-backend/internal/feedback"
)

var ErrNotFound = errors.New("interaction not found")

type Store struct {
	db *sql.DB
}

func NewStore(db *sql.DB) *Store { return &Store{db: db} }

// Append inserts a new interaction and returns it with ID and CreatedAt set.
func (s *Store) Append(ctx context.Context, in Interaction) (Interaction, error) {
	in.ID = uuid.NewString()
	in.CreatedAt = time.Now().Unix()
	if in.Status == "" {
		in.Status = "final"
	}
	scores, err := json.Marshal(in.Scores)
	if err != nil {
		return Interaction{}, err
	}
	evidence, err := json.Marshal(in.EvidenceQuotes)
	if err != nil {
		return Interaction{}, err
	}
	_, err = s.db.ExecContext(ctx,
		`INSERT INTO interactions
		 (id, user_id, prompt_text, prompt_time, feedback_text, feedback_summary, feedback_time,
		  scores_json, evidence_json, status, created_at)
		 VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11)`,
		in.ID, in.UserID, in.PromptText, in.PromptTime, in.FeedbackText, in.FeedbackSummary,
		in.FeedbackTime, string(scores), string(evidence), in.Status, in.CreatedAt)
	if err != nil {
		return Interaction{}, err
	}
	return in, nil
}

const selectCols = `id, user_id, COALESCE(prompt_text,''), COALESCE(prompt_time,0),
	COALESCE(feedback_text,''), COALESCE(feedback_summary,''), COALESCE(feedback_time,0),
	scores_json, evidence_json, rating, COALESCE(student_feedback,''), status, created_at`

func (s *Store) Get(ctx context.Context, id string) (Interaction, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+selectCols+` FROM interactions WHERE id=$1`, id)
	return scanInteraction(row)
}

// ListRecent returns the user's interactions that carry feedback, newest
// first.
func (s *Store) ListRecent(ctx context.Context, userID string, limit int) ([]Interaction, error) {
	if limit <= 0 {
		limit = 30
	}
	rows, err := s.db.QueryContext(ctx,
		`SELECT `+selectCols+` FROM interactions
		 WHERE user_id=$1 AND feedback_text IS NOT NULL
		 ORDER BY feedback_time DESC, id DESC LIMIT $2`, userID, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []Interaction
	for rows.Next() {
		in, err := scanInteraction(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, in)
	}
	return out, rows.Err()
}

func (s *Store) Latest(ctx context.Context, userID string) (Interaction, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT `+selectCols+` FROM interactions
		 WHERE user_id=$1 AND feedback_text IS NOT NULL
		 ORDER BY feedback_time DESC, id DESC LIMIT 1`, userID)
	return scanInteraction(row)
}

// AttachRating records the student's rating of the feedback. An empty or
// unknown id falls back to the user's latest interaction.
func (s *Store) AttachRating(ctx context.Context, id, userID string, rating *int, comment *string) error {
	target := id
	if target != "" {
		if in, err := s.Get(ctx, target); err != nil || in.UserID != userID {
			target = ""
		}
	}
	if target == "" {
		latest, err := s.Latest(ctx, userID)
		if err != nil {
			return err
		}
		target = latest.ID
	}
	if rating != nil {
		if _, err := s.db.ExecContext(ctx,
			`UPDATE interactions SET rating=$1 WHERE id=$2`, *rating, target); err != nil {
			return err
		}
	}
	if comment != nil {
		if _, err := s.db.ExecContext(ctx,
			`UPDATE interactions SET student_feedback=$1 WHERE id=$2`, *comment, target); err != nil {
			return err
		}
	}
	return nil
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanInteraction(r rowScanner) (Interaction, error) {
	var in Interaction
	var scores, evidence string
	var rating sql.NullInt64
	err := r.Scan(&in.ID, &in.UserID, &in.PromptText, &in.PromptTime,
		&in.FeedbackText, &in.FeedbackSummary, &in.FeedbackTime,
		&scores, &evidence, &rating, &in.StudentFeedback, &in.Status, &in.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return Interaction{}, ErrNotFound
	}
	if err != nil {
		return Interaction{}, err
	}
	if rating.Valid {
		v := int(rating.Int64)
		in.Rating = &v
	}
	if scores != "" {
		if err := json.Unmarshal([]byte(scores), &in.Scores); err != nil {
			in.Scores = map[string]feedback.ScoreEntry{}
		}
	}
	if evidence != "" {
		if err := json.Unmarshal([]byte(evidence), &in.EvidenceQuotes); err != nil {
			in.EvidenceQuotes = nil
		}
	}
	return in, nil
}
