package feedback

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/report-coach/reportcoach-backend/internal/llm"
	"github.com/report-coach/reportcoach-backend/internal/rubric"
)

// ScoreEntry is one section's earned/possible points at evaluation time.
type ScoreEntry struct {
	Score float64 `json:"score"`
	Total float64 `json:"total"`
}

// Result is the full output of one scoring run.
type Result struct {
	ReportText     string                `json:"report_text"`
	Scores         map[string]ScoreEntry `json:"scores"`
	Summary        string                `json:"summary"`
	EvidenceQuotes []string              `json:"evidence_quotes"`
}

// Generator turns (report text, rubric) into a Result. It is a pure function
// of its inputs plus the injected configuration; it holds no mutable state
// and is safe for concurrent use. Errors never escape: every failure mode
// lands in a terminal message instead.
type Generator struct {
	client         llm.Client // nil means offline mode
	model          string
	profile        Profile
	strictEvidence bool
}

func NewGenerator(client llm.Client, model string, profile Profile, strictEvidence bool) *Generator {
	return &Generator{client: client, model: model, profile: profile, strictEvidence: strictEvidence}
}

const (
	emptyInputMessage = "No report content provided. Paste your final report text or upload a file."
	emptyInputSummary = "No content to evaluate."
	offlineSummary    = "Model offline; no rubric scoring."
	degradedSummary   = "Model error; no scores."
)

const scoringSystemPrompt = "You are a rigorous grader for a student technical report. " +
	"Enforce gates and caps, rounding rules, and page limits as specified. " +
	"Return ONLY a valid JSON object that matches the requested schema."

func (g *Generator) Generate(ctx context.Context, message string, rub rubric.Rubric) Result {
	text := strings.TrimSpace(message)
	if text == "" {
		return Result{
			ReportText: emptyInputMessage,
			Scores:     scoreSkeleton(rub),
			Summary:    emptyInputSummary,
		}
	}

	if g.client == nil {
		return Result{
			ReportText: offlineMessage(),
			Scores:     scoreSkeleton(rub),
			Summary:    offlineSummary,
		}
	}

	content, err := g.requestScores(ctx, text, rub)
	if err != nil {
		return g.degraded(err, rub)
	}
	var resp llmResponse
	if err := json.Unmarshal([]byte(content), &resp); err != nil {
		return g.degraded(err, rub)
	}

	rows, earned, maxTotal, capNotes, quotes := g.processRows(resp.Writing)

	scores := make(map[string]ScoreEntry, len(rows))
	for _, row := range rows {
		scores[row.Name] = ScoreEntry{Score: row.Score, Total: row.Total}
	}
	if len(scores) == 0 {
		scores = scoreSkeleton(rub)
	}

	return Result{
		ReportText:     renderReport(g.profile, rows, earned, maxTotal, capNotes),
		Scores:         scores,
		Summary:        strings.TrimSpace(resp.Overall.Notes),
		EvidenceQuotes: quotes,
	}
}

func (g *Generator) requestScores(ctx context.Context, text string, rub rubric.Rubric) (string, error) {
	payload, err := json.Marshal(g.buildPayload(text, rub))
	if err != nil {
		return "", err
	}
	user := "Return a JSON object that strictly matches the output_schema. " +
		"The word json here indicates your output must be JSON.\n\nPayload:\n" + string(payload)
	return g.client.CompleteJSON(ctx, g.model, scoringSystemPrompt, user)
}

type payloadSection struct {
	Name      string  `json:"name"`
	MaxPoints float64 `json:"max_points"`
}

func (g *Generator) buildPayload(text string, rub rubric.Rubric) map[string]interface{} {
	sections := make([]payloadSection, 0, len(rub))
	for _, s := range rub {
		sections = append(sections, payloadSection{Name: s.Name, MaxPoints: s.MaxPoints()})
	}

	// Profile rules first, then any rules carried on the rubric itself.
	gates := map[string][]string{}
	for k, v := range g.profile.Gates {
		gates[k] = v
	}
	pageLimits := map[string]int{}
	for k, v := range g.profile.PageLimits {
		pageLimits[k] = v
	}
	for _, s := range rub {
		if len(s.Gates) > 0 {
			gates[s.Name] = append(gates[s.Name], s.Gates...)
		}
		if s.PageLimit > 0 {
			pageLimits[s.Name] = s.PageLimit
		}
	}

	instructions := []string{
		"For each rubric, compute a raw score 0..max based on the provided text and rubric intent.",
		"Apply gates and page caps: final_score = min(raw, caps).",
	}
	if g.profile.RoundScores {
		instructions = append(instructions, "Rounding: round raw to nearest integer before capping.")
	}
	instructions = append(instructions,
		"If you cap, note which gate triggered in 'applied_caps'.",
		"Ground judgments strictly in the provided text; include 0-2 short evidence quotes when helpful.",
		"Keep rationales <= 25 words; suggestions <= 16 words; be concrete.",
	)

	payload := map[string]interface{}{
		"report_excerpt": excerpt(text, g.profile.ExcerptLimit),
		"rubrics":        sections,
		"instructions":   instructions,
		"output_schema": map[string]interface{}{
			"writing": []map[string]interface{}{
				{
					"name":            "string",
					"score":           "number (0..max after caps)",
					"total":           "number (the rubric max)",
					"rationale":       "string (<= 25 words)",
					"suggestion":      "string (<= 16 words)",
					"evidence_quotes": []string{"string (0-2 quotes)"},
					"applied_caps":    []string{"string (optional; gates or page caps applied)"},
				},
			},
			"overall": map[string]interface{}{
				"notes": "string (<= 120 words; 2-4 concrete actions to reach Exemplary in capped/weak areas)",
			},
		},
	}
	if len(g.profile.GlobalRules) > 0 {
		payload["global_rules"] = g.profile.GlobalRules
	}
	if len(gates) > 0 {
		payload["gates"] = gates
	}
	if len(pageLimits) > 0 {
		payload["page_limits"] = pageLimits
	}
	return payload
}

// processedRow is one section row after coercion and the evidence penalty.
type processedRow struct {
	Name       string
	Score      float64
	Total      float64
	Rationale  string
	Suggestion string
	Quotes     []string
}

func (g *Generator) processRows(raw []json.RawMessage) (rows []processedRow, earned, maxTotal float64, capNotes, quotes []string) {
	seen := map[string]bool{}
	for _, rm := range raw {
		var row scoreRow
		if err := json.Unmarshal(rm, &row); err != nil {
			continue // bad row, keep the rest
		}
		name := strings.TrimSpace(row.Name)
		if name == "" {
			continue
		}
		s, t := float64(row.Score), float64(row.Total)
		maxTotal += t

		if g.strictEvidence && s > 0 && len(row.EvidenceQuotes) == 0 {
			s *= g.profile.PenaltyFactor
		}
		earned += s

		kept := make([]string, 0, 2)
		for _, q := range row.EvidenceQuotes {
			if len(kept) == 2 {
				break
			}
			q = strings.TrimSpace(q)
			if q == "" {
				continue
			}
			kept = append(kept, q)
			if !seen[q] {
				seen[q] = true
				quotes = append(quotes, q)
			}
		}

		for _, c := range row.AppliedCaps {
			if c = strings.TrimSpace(c); c != "" {
				capNotes = append(capNotes, name+": "+c)
			}
		}

		rows = append(rows, processedRow{
			Name:       name,
			Score:      s,
			Total:      t,
			Rationale:  strings.TrimSpace(row.Rationale),
			Suggestion: strings.TrimSpace(row.Suggestion),
			Quotes:     kept,
		})
	}
	return rows, earned, maxTotal, capNotes, quotes
}

func (g *Generator) degraded(err error, rub rubric.Rubric) Result {
	return Result{
		ReportText: fmt.Sprintf("**Final Report Feedback (degraded)**\n- Error: %v\nFalling back to structure-only scores.\n", err),
		Scores:     scoreSkeleton(rub),
		Summary:    degradedSummary,
	}
}

// scoreSkeleton is the safe zero default: one zeroed entry per named section.
func scoreSkeleton(rub rubric.Rubric) map[string]ScoreEntry {
	d := make(map[string]ScoreEntry, len(rub))
	for _, s := range rub {
		name := strings.TrimSpace(s.Name)
		if name == "" {
			continue
		}
		d[name] = ScoreEntry{Score: 0, Total: s.MaxPoints()}
	}
	return d
}

func offlineMessage() string {
	return "**Final Report Feedback (offline mode)**\n" +
		"- LLM disabled (no OPENAI_API_KEY). Returning structure-only scores.\n\n" +
		"Rubric emphasis:\n" +
		"- Apply gates: missing required artifacts cap section scores.\n" +
		"- Respect page limits; sections over the limit cap at Proficient.\n" +
		"- Ground every claim in the report text itself.\n"
}

func excerpt(s string, n int) string {
	if n <= 0 || len(s) <= n {
		return s
	}
	return s[:n]
}
