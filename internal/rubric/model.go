package rubric

import (
	"fmt"
	"strings"
)

// Criterion is one descriptive band on a section's point scale.
type Criterion struct {
	Points      float64 `json:"points"`
	Description string  `json:"description"`
}

// Section is one gradable dimension of the rubric. MaxPoints is derived from
// the scoring criteria unless an explicit override is present.
type Section struct {
	Name              string      `json:"name"`
	MaxPointsOverride *float64    `json:"max_points,omitempty"`
	ScoringCriteria   []Criterion `json:"scoringCriteria"`
	Gates             []string    `json:"gates,omitempty"`
	PageLimit         int         `json:"page_limit,omitempty"`
	Notes             string      `json:"notes,omitempty"`
}

// Rubric is the ordered set of sections used to grade a report. Persisted as
// a single JSON array; replaced wholesale, never patched.
type Rubric []Section

func (s Section) MaxPoints() float64 {
	if s.MaxPointsOverride != nil {
		return *s.MaxPointsOverride
	}
	mx := 0.0
	for _, c := range s.ScoringCriteria {
		if c.Points > mx {
			mx = c.Points
		}
	}
	return mx
}

// Validate enforces the shape required for Replace: a non-empty ordered
// sequence of sections, each named, each with at least one criterion and a
// non-negative point scale.
func Validate(r Rubric) error {
	if len(r) == 0 {
		return fmt.Errorf("%w: rubric must be a non-empty array of sections", ErrValidation)
	}
	seen := map[string]bool{}
	for i, s := range r {
		name := strings.TrimSpace(s.Name)
		if name == "" {
			return fmt.Errorf("%w: section %d has no name", ErrValidation, i)
		}
		if seen[name] {
			return fmt.Errorf("%w: duplicate section name %q", ErrValidation, name)
		}
		seen[name] = true
		if len(s.ScoringCriteria) == 0 {
			return fmt.Errorf("%w: section %q has no scoring criteria", ErrValidation, name)
		}
		if s.MaxPoints() < 0 {
			return fmt.Errorf("%w: section %q has negative max points", ErrValidation, name)
		}
	}
	return nil
}

// NormalizeSection trims the name, dedupes (points, description) pairs and
// substitutes a default 4..0 scale when no usable criteria remain.
func NormalizeSection(name string, criteria []Criterion) Section {
	name = strings.TrimSpace(name)
	if name == "" {
		name = "Untitled"
	}
	out := make([]Criterion, 0, len(criteria))
	type key struct {
		pts  float64
		desc string
	}
	seen := map[key]bool{}
	for _, c := range criteria {
		desc := strings.TrimSpace(c.Description)
		k := key{c.Points, desc}
		if seen[k] {
			continue
		}
		seen[k] = true
		out = append(out, Criterion{Points: c.Points, Description: desc})
	}
	if len(out) == 0 {
		out = defaultScale()
	}
	return Section{Name: name, ScoringCriteria: out}
}

func defaultScale() []Criterion {
	return []Criterion{
		{Points: 4, Description: "Excellent."},
		{Points: 3, Description: "Good."},
		{Points: 2, Description: "Fair."},
		{Points: 1, Description: "Poor."},
		{Points: 0, Description: "Insufficient."},
	}
}
