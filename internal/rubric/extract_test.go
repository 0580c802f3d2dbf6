package rubric_test

import (
	"context"
	"errors"
	"reflect"
	"testing"

	"github.com/report-coach/reportcoach-backend/internal/rubric"
)

type fakeClient struct {
	content string
	err     error
}

func (f *fakeClient) CompleteJSON(ctx context.Context, model, system, user string) (string, error) {
	if f.err != nil {
		return "", f.err
	}
	return f.content, nil
}

const syllabusText = `Course Syllabus

Grading Rubric
Executive Summary:
4 pts: Covers problem, approach, and results clearly.
3 pts: Mostly clear with minor gaps.
0 pts: Missing entirely.

Economic Analysis
4: Sound CAPEX and OPEX with sensitivity analysis.
2: Rough estimates without basis.
`

func TestExtractEmptyInput(t *testing.T) {
	ex := rubric.NewExtractor(nil, "test-model")
	for _, in := range []string{"", "   \n\t"} {
		if got := ex.Extract(context.Background(), in); len(got) != 0 {
			t.Fatalf("Extract(%q) = %v, want empty", in, got)
		}
	}
}

func TestHeuristicExtract(t *testing.T) {
	ex := rubric.NewExtractor(nil, "test-model")
	got := ex.Extract(context.Background(), syllabusText)

	var names []string
	for _, s := range got {
		names = append(names, s.Name)
	}
	wantNames := []string{"Course Syllabus", "Grading Rubric", "Executive Summary", "Economic Analysis"}
	if !reflect.DeepEqual(names, wantNames) {
		t.Fatalf("section names = %v, want %v", names, wantNames)
	}

	var es rubric.Section
	for _, s := range got {
		if s.Name == "Executive Summary" {
			es = s
		}
	}
	if len(es.ScoringCriteria) != 3 {
		t.Fatalf("Executive Summary criteria = %+v, want 3", es.ScoringCriteria)
	}
	if es.MaxPoints() != 4 {
		t.Errorf("MaxPoints = %v, want 4", es.MaxPoints())
	}
	if es.ScoringCriteria[0].Description != "Covers problem, approach, and results clearly." {
		t.Errorf("unexpected description: %q", es.ScoringCriteria[0].Description)
	}
}

func TestHeuristicExtractIdempotent(t *testing.T) {
	ex := rubric.NewExtractor(nil, "test-model")
	a := ex.Extract(context.Background(), syllabusText)
	b := ex.Extract(context.Background(), syllabusText)
	if !reflect.DeepEqual(a, b) {
		t.Fatalf("heuristic extraction not deterministic:\n%v\nvs\n%v", a, b)
	}
}

func TestHeuristicFallbackSkeleton(t *testing.T) {
	// no headings, no criteria lines: last-resort skeleton
	ex := rubric.NewExtractor(nil, "test-model")
	got := ex.Extract(context.Background(), "just some prose with nothing rubric-shaped in it")
	if len(got) != 8 {
		t.Fatalf("fallback skeleton has %d sections, want 8", len(got))
	}
	if got[0].Name != "Executive Summary" || got[len(got)-1].Name != "Writing Quality" {
		t.Errorf("unexpected skeleton names: %v", got)
	}
	for _, s := range got {
		if len(s.ScoringCriteria) == 0 {
			t.Errorf("%s: skeleton section has no criteria", s.Name)
		}
	}
}

func TestLLMExtractDirectArray(t *testing.T) {
	client := &fakeClient{content: `[
		{"name": " Executive Summary ", "scoringCriteria": [
			{"points": 4, "description": " Clear. "},
			{"points": 4, "description": "Clear."},
			{"points": "3 pts", "description": "Mostly clear."}
		]}
	]`}
	ex := rubric.NewExtractor(client, "test-model")
	got := ex.Extract(context.Background(), "syllabus body")
	if len(got) != 1 {
		t.Fatalf("sections = %v, want 1", got)
	}
	s := got[0]
	if s.Name != "Executive Summary" {
		t.Errorf("name = %q", s.Name)
	}
	// duplicate (4, "Clear.") collapses; "3 pts" coerces to 3
	if len(s.ScoringCriteria) != 2 {
		t.Fatalf("criteria = %+v, want 2 after dedupe", s.ScoringCriteria)
	}
	if s.ScoringCriteria[1].Points != 3 {
		t.Errorf("coerced points = %v, want 3", s.ScoringCriteria[1].Points)
	}
}

func TestLLMExtractWrappedObject(t *testing.T) {
	client := &fakeClient{content: `{"rubric": [
		{"name": "Safety", "scoringCriteria": [{"points": 4, "description": "Thorough."}]}
	]}`}
	ex := rubric.NewExtractor(client, "test-model")
	got := ex.Extract(context.Background(), "syllabus body")
	if len(got) != 1 || got[0].Name != "Safety" {
		t.Fatalf("sections = %v, want single Safety section", got)
	}
}

func TestLLMExtractDefaultScaleWhenNoCriteria(t *testing.T) {
	client := &fakeClient{content: `[{"name": "Safety", "scoringCriteria": []}]`}
	ex := rubric.NewExtractor(client, "test-model")
	got := ex.Extract(context.Background(), "syllabus body")
	if len(got) != 1 {
		t.Fatalf("sections = %v", got)
	}
	if len(got[0].ScoringCriteria) != 5 || got[0].MaxPoints() != 4 {
		t.Errorf("expected default 4..0 scale, got %+v", got[0].ScoringCriteria)
	}
}

func TestLLMFailureFallsThroughToHeuristic(t *testing.T) {
	for _, client := range []*fakeClient{
		{err: errors.New("timeout")},
		{content: "not json at all"},
		{content: `{"unexpected": "shape"}`},
	} {
		ex := rubric.NewExtractor(client, "test-model")
		got := ex.Extract(context.Background(), syllabusText)
		if len(got) == 0 {
			t.Fatal("expected heuristic result after LLM failure")
		}
		found := false
		for _, s := range got {
			if s.Name == "Executive Summary" {
				found = true
			}
		}
		if !found {
			t.Errorf("heuristic fallback missing Executive Summary: %v", got)
		}
	}
}
