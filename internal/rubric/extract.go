package rubric

import (
	"context"
	"encoding/json"
	"regexp"
	"strconv"
	"strings"

	"github.com/report-coach/reportcoach-backend/internal/llm"
)

// Extractor produces a best-effort rubric from free-form syllabus text. It
// degrades through three tiers (LLM, heuristic line scan, fixed skeleton) so
// the admin editor always has something to start from. It never fails on
// malformed input.
type Extractor struct {
	client llm.Client // nil disables the LLM tier
	model  string
}

func NewExtractor(client llm.Client, model string) *Extractor {
	return &Extractor{client: client, model: model}
}

const (
	llmExcerptLimit       = 12000
	heuristicWindowBefore = 200
	heuristicWindowSize   = 8000
)

func (e *Extractor) Extract(ctx context.Context, sourceText string) []Section {
	text := strings.TrimSpace(sourceText)
	if text == "" {
		return nil
	}
	if e.client != nil {
		if items := e.llmExtract(ctx, text); len(items) > 0 {
			return items
		}
	}
	return heuristicExtract(text)
}

const extractSystemPrompt = "You extract grading rubrics for technical report writing from syllabi. " +
	"Return ONLY a JSON array. Each item: {name, scoringCriteria:[{points:number, description:string}]}. " +
	"Prefer 3-6 clear items; keep descriptions short and concrete."

// llmExtract returns nil on any transport or parse failure; the caller falls
// through to the heuristic tier.
func (e *Extractor) llmExtract(ctx context.Context, text string) []Section {
	payload := map[string]interface{}{
		"syllabus_excerpt": excerpt(text, llmExcerptLimit),
		"format": []map[string]interface{}{
			{
				"name": "Executive Summary",
				"scoringCriteria": []map[string]interface{}{
					{"points": 4, "description": "Clear problem, approach, key results, and recommendation."},
					{"points": 3, "description": "Mostly clear; minor missing elements."},
				},
			},
		},
	}
	user, err := json.Marshal(payload)
	if err != nil {
		return nil
	}
	content, err := e.client.CompleteJSON(ctx, e.model, extractSystemPrompt, string(user))
	if err != nil {
		return nil
	}
	items := decodeItems([]byte(content))
	if len(items) == 0 {
		return nil
	}
	out := make([]Section, 0, len(items))
	for _, it := range items {
		out = append(out, NormalizeSection(it.Name, coerceCriteria(it.ScoringCriteria)))
	}
	return out
}

type rawItem struct {
	Name            string            `json:"name"`
	ScoringCriteria []json.RawMessage `json:"scoringCriteria"`
}

// decodeItems accepts either a bare JSON array or an object with the array
// nested under "rubric". Anything else is treated as no result.
func decodeItems(content []byte) []rawItem {
	var direct []rawItem
	if err := json.Unmarshal(content, &direct); err == nil {
		return direct
	}
	var wrapped struct {
		Rubric []rawItem `json:"rubric"`
	}
	if err := json.Unmarshal(content, &wrapped); err == nil {
		return wrapped.Rubric
	}
	return nil
}

var numeralRe = regexp.MustCompile(`([0-9]+(?:\.[0-9]+)?)`)

// coerceCriteria tolerates points delivered as strings, labels with embedded
// numerals, or junk (which becomes 0). Broken rows are kept rather than
// dropped so the admin can see and fix them.
func coerceCriteria(raw []json.RawMessage) []Criterion {
	out := make([]Criterion, 0, len(raw))
	for _, rm := range raw {
		var c struct {
			Points      json.RawMessage `json:"points"`
			Description string          `json:"description"`
		}
		if err := json.Unmarshal(rm, &c); err != nil {
			continue
		}
		out = append(out, Criterion{Points: coercePoints(c.Points), Description: c.Description})
	}
	return out
}

func coercePoints(raw json.RawMessage) float64 {
	var f float64
	if err := json.Unmarshal(raw, &f); err == nil {
		return f
	}
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		if m := numeralRe.FindString(s); m != "" {
			if v, err := strconv.ParseFloat(m, 64); err == nil {
				return v
			}
		}
	}
	return 0
}

var (
	headingRe   = regexp.MustCompile(`^([A-Z][A-Za-z0-9 ,/&()\-]{3,})\s*(?:\([^)]+\))?\s*[:\-]?$`)
	pointLineRe = regexp.MustCompile(`(?i)^(?:-\s*)?(\d{1,2})\s*(?:points?|pts?)\s*[:\-]\s*(.+)$`)
	numLineRe   = regexp.MustCompile(`^(?:-\s*)?(\d{1,2})\s*[:\-]\s*(.+)$`)
	rubricWord  = regexp.MustCompile(`(?i)rubric`)
	wsRe        = regexp.MustCompile(`\s+`)
)

// heuristicExtract scans line by line for capitalized headings followed by
// "N pts: ..." criteria lines. Deterministic for a given input.
func heuristicExtract(text string) []Section {
	lines := splitClean(text)
	joined := strings.Join(lines, "\n")
	if loc := rubricWord.FindStringIndex(joined); loc != nil {
		start := loc[0] - heuristicWindowBefore
		if start < 0 {
			start = 0
		}
		end := start + heuristicWindowSize
		if end > len(joined) {
			end = len(joined)
		}
		lines = strings.Split(joined[start:end], "\n")
	}

	var items []Section
	var curName string
	var curCriteria []Criterion
	flush := func() {
		if curName != "" {
			items = append(items, NormalizeSection(curName, curCriteria))
		}
		curName, curCriteria = "", nil
	}

	for _, ln := range lines {
		if ln == "" {
			continue
		}
		if m := headingRe.FindStringSubmatch(ln); m != nil && len(strings.Fields(ln)) <= 8 {
			flush()
			curName = strings.TrimSpace(m[1])
			continue
		}
		if curName == "" {
			continue
		}
		if m := pointLineRe.FindStringSubmatch(ln); m != nil {
			pts, _ := strconv.ParseFloat(m[1], 64)
			curCriteria = append(curCriteria, Criterion{Points: pts, Description: strings.TrimSpace(m[2])})
			continue
		}
		if m := numLineRe.FindStringSubmatch(ln); m != nil {
			desc := strings.TrimSpace(m[2])
			if len(desc) >= 6 {
				pts, _ := strconv.ParseFloat(m[1], 64)
				curCriteria = append(curCriteria, Criterion{Points: pts, Description: desc})
			}
			continue
		}
	}
	flush()

	if len(items) == 0 {
		return fallbackSkeleton()
	}
	return items
}

func splitClean(text string) []string {
	raw := strings.Split(text, "\n")
	out := make([]string, len(raw))
	for i, ln := range raw {
		out[i] = wsRe.ReplaceAllString(strings.TrimSpace(ln), " ")
	}
	return out
}

// fallbackSkeleton is the last-resort rubric: canned point scales, empty
// descriptions, ready for the admin to fill in.
func fallbackSkeleton() []Section {
	defaults := []struct {
		name   string
		points []float64
	}{
		{"Executive Summary", []float64{4, 3, 2, 1, 0}},
		{"Context & Constraints", []float64{4, 3, 2, 1, 0}},
		{"Process Description & Flows", []float64{5, 4, 3, 2, 0}},
		{"Safety & Environmental", []float64{4, 3, 2, 1, 0}},
		{"Economic Analysis", []float64{4, 3, 2, 1, 0}},
		{"Data, Methods, and Rigor", []float64{5, 4, 3, 2, 0}},
		{"Figures, Tables, and Formatting", []float64{3, 2, 1, 0}},
		{"Writing Quality", []float64{3, 2, 1, 0}},
	}
	out := make([]Section, 0, len(defaults))
	for _, d := range defaults {
		crit := make([]Criterion, 0, len(d.points))
		for _, p := range d.points {
			crit = append(crit, Criterion{Points: p})
		}
		out = append(out, NormalizeSection(d.name, crit))
	}
	return out
}

func excerpt(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n]
}
