package audit

import (
	"context"
	"database/sql"
	"encoding/json"
	"time"
)

// Event types appended by the API layer.
const (
	EventFeedbackGenerated = "FeedbackGenerated"
	EventRubricReplaced    = "RubricReplaced"
	EventRubricRollback    = "RubricRollback"
)

type Event struct {
	Seq       int64  `json:"seq"`
	Type      string `json:"type"`
	Key       string `json:"key"` // natural key: interaction or version id
	DataJSON  string `json:"data"`
	CreatedAt int64  `json:"created_at"`
}

// Log is an append-only audit trail alongside the owning tables.
type Log struct{ db *sql.DB }

func NewLog(db *sql.DB) *Log { return &Log{db: db} }

func (l *Log) Append(ctx context.Context, typ, key string, data interface{}) error {
	buf, err := json.Marshal(data)
	if err != nil {
		return err
	}
	_, err = l.db.ExecContext(ctx,
		`INSERT INTO event_log (typ, key, data, created_at) VALUES ($1,$2,$3,$4)`,
		typ, key, string(buf), time.Now().Unix())
	return err
}

func (l *Log) Recent(ctx context.Context, limit int) ([]Event, error) {
	if limit <= 0 {
		limit = 50
	}
	rows, err := l.db.QueryContext(ctx,
		`SELECT seq, typ, key, data, created_at FROM event_log ORDER BY seq DESC LIMIT $1`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []Event
	for rows.Next() {
		var e Event
		if err := rows.Scan(&e.Seq, &e.Type, &e.Key, &e.DataJSON, &e.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, e)
	}
	return out, rows.Err()
}
