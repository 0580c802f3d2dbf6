package rubric

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/report-coach/reportcoach-backend/internal/storage"
)

var (
	// ErrValidation rejects a malformed rubric on Replace.
	ErrValidation = errors.New("invalid rubric")
	// ErrVersionNotFound rejects a rollback to an unknown version.
	ErrVersionNotFound = errors.New("rubric version not found")
	// ErrVersionCorrupt rejects a rollback to a version whose stored
	// snapshot no longer parses.
	ErrVersionCorrupt = errors.New("rubric version corrupt")
)

// Version is an immutable snapshot of the rubric at the time of a Replace.
type Version struct {
	ID         int64  `json:"id"`
	CreatedAt  int64  `json:"created_at"`
	CreatedBy  string `json:"created_by,omitempty"`
	RubricJSON string `json:"-"`
}

const activeKey = "rubric.json"

// Store owns the active rubric document and its append-only version history.
// The active document lives in the doc store; versions live in SQL.
type Store struct {
	db     *sql.DB
	driver string // "sqlite" or "postgres"
	docs   storage.DocStore
}

// NewStore seeds the built-in default rubric when no active document exists.
func NewStore(db *sql.DB, driver string, docs storage.DocStore) (*Store, error) {
	s := &Store{db: db, driver: driver, docs: docs}
	if !docs.Exists(activeKey) {
		if err := docs.PutJSON(activeKey, Default()); err != nil {
			return nil, fmt.Errorf("seed default rubric: %w", err)
		}
	}
	return s, nil
}

func (s *Store) GetActive(ctx context.Context) (Rubric, error) {
	var r Rubric
	if err := s.docs.GetJSON(activeKey, &r); err != nil {
		return nil, fmt.Errorf("load active rubric: %w", err)
	}
	return r, nil
}

// Replace validates, persists the new active rubric and appends a version
// entry. The previous history is never touched.
func (s *Store) Replace(ctx context.Context, r Rubric, actor string) (int64, error) {
	if err := Validate(r); err != nil {
		return 0, err
	}
	buf, err := json.Marshal(r)
	if err != nil {
		return 0, err
	}
	if err := s.docs.PutJSON(activeKey, r); err != nil {
		return 0, err
	}
	return s.appendVersion(ctx, string(buf), actor)
}

func (s *Store) appendVersion(ctx context.Context, rubricJSON, actor string) (int64, error) {
	now := time.Now().Unix()
	// pgx's database/sql driver has no LastInsertId, so Postgres uses RETURNING.
	if s.driver == "postgres" {
		var id int64
		err := s.db.QueryRowContext(ctx,
			`INSERT INTO rubric_versions (created_at, created_by, rubric_json)
			 VALUES ($1,$2,$3) RETURNING id`,
			now, actor, rubricJSON).Scan(&id)
		return id, err
	}
	res, err := s.db.ExecContext(ctx,
		`INSERT INTO rubric_versions (created_at, created_by, rubric_json)
		 VALUES ($1,$2,$3)`,
		now, actor, rubricJSON)
	if err != nil {
		return 0, err
	}
	return res.LastInsertId()
}

func (s *Store) ListVersions(ctx context.Context, limit int) ([]Version, error) {
	if limit <= 0 {
		limit = 20
	}
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, created_at, COALESCE(created_by,''), rubric_json
		 FROM rubric_versions ORDER BY id DESC LIMIT $1`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := make([]Version, 0, limit)
	for rows.Next() {
		var v Version
		if err := rows.Scan(&v.ID, &v.CreatedAt, &v.CreatedBy, &v.RubricJSON); err != nil {
			return nil, err
		}
		out = append(out, v)
	}
	return out, rows.Err()
}

// Rollback re-activates the snapshot stored at versionID. On success the
// snapshot is replayed through Replace, so a fresh version entry records the
// rollback; history is append-only.
func (s *Store) Rollback(ctx context.Context, versionID int64, actor string) (Rubric, error) {
	var snapshot string
	err := s.db.QueryRowContext(ctx,
		`SELECT rubric_json FROM rubric_versions WHERE id=$1`, versionID).Scan(&snapshot)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: version %d", ErrVersionNotFound, versionID)
	}
	if err != nil {
		return nil, err
	}
	var r Rubric
	if err := json.Unmarshal([]byte(snapshot), &r); err != nil {
		return nil, fmt.Errorf("%w: version %d: %v", ErrVersionCorrupt, versionID, err)
	}
	if _, err := s.Replace(ctx, r, actor); err != nil {
		return nil, err
	}
	return r, nil
}
