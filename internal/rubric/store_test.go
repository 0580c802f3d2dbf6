package rubric_test

import (
	"context"
	"database/sql"
	"errors"
	"path/filepath"
	"reflect"
	"testing"
	"time"

	"github.com/report-coach/reportcoach-backend/internal/db"
	"github.com/report-coach/reportcoach-backend/internal/rubric"
	"github.com/report-coach/reportcoach-backend/internal/storage"
)

func newTestStore(t *testing.T) (*rubric.Store, *sql.DB) {
	t.Helper()
	dir := t.TempDir()
	dbh, err := db.Open(context.Background(), db.DriverSQLite,
		"file:"+filepath.Join(dir, "test.db"))
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	t.Cleanup(func() { dbh.Close() })
	docs, err := storage.NewFSStore(filepath.Join(dir, "data"))
	if err != nil {
		t.Fatalf("fs store: %v", err)
	}
	store, err := rubric.NewStore(dbh, "sqlite", docs)
	if err != nil {
		t.Fatalf("new store: %v", err)
	}
	return store, dbh
}

func sampleRubric(name string) rubric.Rubric {
	return rubric.Rubric{
		{
			Name: name,
			ScoringCriteria: []rubric.Criterion{
				{Points: 4, Description: "Excellent."},
				{Points: 0, Description: "Missing."},
			},
		},
	}
}

func TestSeedsDefaultRubric(t *testing.T) {
	store, _ := newTestStore(t)
	got, err := store.GetActive(context.Background())
	if err != nil {
		t.Fatalf("GetActive: %v", err)
	}
	if !reflect.DeepEqual(got, rubric.Default()) {
		t.Fatalf("seeded rubric differs from default:\n%v", got)
	}
}

func TestReplaceRoundTrip(t *testing.T) {
	store, _ := newTestStore(t)
	ctx := context.Background()

	want := sampleRubric("Executive Summary")
	vid, err := store.Replace(ctx, want, "admin-1")
	if err != nil {
		t.Fatalf("Replace: %v", err)
	}
	if vid == 0 {
		t.Fatal("expected non-zero version id")
	}
	got, err := store.GetActive(ctx)
	if err != nil {
		t.Fatalf("GetActive: %v", err)
	}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("round trip mismatch:\ngot  %v\nwant %v", got, want)
	}

	versions, err := store.ListVersions(ctx, 10)
	if err != nil {
		t.Fatalf("ListVersions: %v", err)
	}
	if len(versions) != 1 || versions[0].ID != vid || versions[0].CreatedBy != "admin-1" {
		t.Fatalf("versions = %+v", versions)
	}
}

func TestReplaceRejectsInvalid(t *testing.T) {
	store, _ := newTestStore(t)
	ctx := context.Background()

	before, _ := store.GetActive(ctx)
	cases := []rubric.Rubric{
		nil,
		{},
		{{Name: "", ScoringCriteria: []rubric.Criterion{{Points: 4}}}},
		{{Name: "No Criteria"}},
	}
	for _, bad := range cases {
		if _, err := store.Replace(ctx, bad, "admin-1"); !errors.Is(err, rubric.ErrValidation) {
			t.Fatalf("Replace(%v) err = %v, want ErrValidation", bad, err)
		}
	}
	after, _ := store.GetActive(ctx)
	if !reflect.DeepEqual(before, after) {
		t.Fatal("failed Replace mutated the active rubric")
	}
	versions, _ := store.ListVersions(ctx, 10)
	if len(versions) != 0 {
		t.Fatalf("failed Replace appended history: %+v", versions)
	}
}

func TestListVersionsMostRecentFirst(t *testing.T) {
	store, _ := newTestStore(t)
	ctx := context.Background()

	v1, _ := store.Replace(ctx, sampleRubric("One"), "a")
	v2, _ := store.Replace(ctx, sampleRubric("Two"), "a")
	v3, _ := store.Replace(ctx, sampleRubric("Three"), "a")

	versions, err := store.ListVersions(ctx, 2)
	if err != nil {
		t.Fatalf("ListVersions: %v", err)
	}
	if len(versions) != 2 || versions[0].ID != v3 || versions[1].ID != v2 {
		t.Fatalf("versions = %+v, want [%d %d]", versions, v3, v2)
	}
	_ = v1
}

func TestRollbackRoundTrip(t *testing.T) {
	store, _ := newTestStore(t)
	ctx := context.Background()

	first := sampleRubric("First")
	v1, err := store.Replace(ctx, first, "admin-1")
	if err != nil {
		t.Fatalf("Replace: %v", err)
	}
	if _, err := store.Replace(ctx, sampleRubric("Second"), "admin-1"); err != nil {
		t.Fatalf("Replace: %v", err)
	}

	got, err := store.Rollback(ctx, v1, "admin-2")
	if err != nil {
		t.Fatalf("Rollback: %v", err)
	}
	if !reflect.DeepEqual(got, first) {
		t.Fatalf("rollback returned %v, want %v", got, first)
	}
	active, _ := store.GetActive(ctx)
	if !reflect.DeepEqual(active, first) {
		t.Fatalf("active after rollback = %v, want %v", active, first)
	}

	// rollback appends, never rewrites
	versions, _ := store.ListVersions(ctx, 10)
	if len(versions) != 3 {
		t.Fatalf("expected 3 versions after rollback, got %d", len(versions))
	}
	if versions[0].CreatedBy != "admin-2" {
		t.Errorf("newest version actor = %q, want admin-2", versions[0].CreatedBy)
	}
}

func TestRollbackUnknownVersion(t *testing.T) {
	store, _ := newTestStore(t)
	ctx := context.Background()

	before, _ := store.GetActive(ctx)
	_, err := store.Rollback(ctx, 9999, "admin-1")
	if !errors.Is(err, rubric.ErrVersionNotFound) {
		t.Fatalf("err = %v, want ErrVersionNotFound", err)
	}
	after, _ := store.GetActive(ctx)
	if !reflect.DeepEqual(before, after) {
		t.Fatal("failed rollback mutated the active rubric")
	}
}

func TestRollbackCorruptVersion(t *testing.T) {
	store, dbh := newTestStore(t)
	ctx := context.Background()

	res, err := dbh.ExecContext(ctx,
		`INSERT INTO rubric_versions (created_at, created_by, rubric_json) VALUES ($1,$2,$3)`,
		time.Now().Unix(), "admin-1", "{not valid json")
	if err != nil {
		t.Fatalf("insert corrupt version: %v", err)
	}
	vid, _ := res.LastInsertId()

	before, _ := store.GetActive(ctx)
	_, err = store.Rollback(ctx, vid, "admin-1")
	if !errors.Is(err, rubric.ErrVersionCorrupt) {
		t.Fatalf("err = %v, want ErrVersionCorrupt", err)
	}
	after, _ := store.GetActive(ctx)
	if !reflect.DeepEqual(before, after) {
		t.Fatal("corrupt rollback mutated the active rubric")
	}
}
