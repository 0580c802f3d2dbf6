package interaction

import "github.com/report-coach/reportcoach-backend/internal/feedback"

// Interaction is one submission's full record: the submitted text, the
// generated feedback, and an optional later rating from the student. Rows are
// append-only; only the rating fields are ever updated.
type Interaction struct {
	ID     string `json:"id"`
	UserID string `json:"user_id"`

	PromptText string `json:"prompt_text,omitempty"`
	PromptTime int64  `json:"prompt_time,omitempty"`

	FeedbackText    string `json:"feedback_text,omitempty"`
	FeedbackSummary string `json:"feedback_summary,omitempty"`
	FeedbackTime    int64  `json:"feedback_time,omitempty"`

	Scores         map[string]feedback.ScoreEntry `json:"scores,omitempty"`
	EvidenceQuotes []string                       `json:"evidence_quotes,omitempty"`

	Rating          *int   `json:"rating,omitempty"`
	StudentFeedback string `json:"student_feedback,omitempty"`

	Status    string `json:"status"` // draft|final
	CreatedAt int64  `json:"created_at"`
}
