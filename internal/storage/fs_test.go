package storage_test

import (
	"testing"

	"github.com/report-coach/reportcoach-backend/internal/storage"
)

func TestFSStoreRoundTrip(t *testing.T) {
	s, err := storage.NewFSStore(t.TempDir())
	if err != nil {
		t.Fatalf("NewFSStore: %v", err)
	}

	if s.Exists("doc.json") {
		t.Fatal("Exists before Put")
	}
	in := map[string]int{"a": 1, "b": 2}
	if err := s.PutJSON("doc.json", in); err != nil {
		t.Fatalf("PutJSON: %v", err)
	}
	if !s.Exists("doc.json") {
		t.Fatal("Exists after Put")
	}

	var out map[string]int
	if err := s.GetJSON("doc.json", &out); err != nil {
		t.Fatalf("GetJSON: %v", err)
	}
	if out["a"] != 1 || out["b"] != 2 {
		t.Fatalf("round trip = %v", out)
	}

	// overwrite replaces wholesale
	if err := s.PutJSON("doc.json", map[string]int{"c": 3}); err != nil {
		t.Fatalf("PutJSON overwrite: %v", err)
	}
	out = nil
	if err := s.GetJSON("doc.json", &out); err != nil {
		t.Fatalf("GetJSON: %v", err)
	}
	if _, stale := out["a"]; stale || out["c"] != 3 {
		t.Fatalf("overwrite = %v", out)
	}
}

func TestFSStoreGetMissing(t *testing.T) {
	s, _ := storage.NewFSStore(t.TempDir())
	var out map[string]int
	if err := s.GetJSON("missing.json", &out); err == nil {
		t.Fatal("expected error for missing key")
	}
}
