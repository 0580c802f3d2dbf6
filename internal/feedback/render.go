package feedback

import (
	"fmt"
	"sort"
	"strings"
)

const (
	weakRatio      = 0.8
	maxCapNotes    = 8
	maxRevisionTop = 3
	maxMissing     = 5
	maxHighlights  = 3
)

// renderReport builds the human-readable report deterministically from the
// processed rows. No model output is consulted beyond what the rows carry.
func renderReport(p Profile, rows []processedRow, earned, maxTotal float64, capNotes []string) string {
	lines := []string{"**Final Report Feedback**"}
	if maxTotal > 0 {
		lines = append(lines, fmt.Sprintf("**Total Score**: %s/%s",
			fmtScore(earned, p.RoundScores), fmtScore(maxTotal, p.RoundScores)))
	}
	if len(capNotes) > 0 {
		lines = append(lines, "", "**Applied Caps/Gates**")
		if len(capNotes) > maxCapNotes {
			capNotes = capNotes[:maxCapNotes]
		}
		lines = append(lines, capNotes...)
	}
	lines = append(lines, "", "**Overall Summary**")
	lines = append(lines, overallSummary(p, rows, earned, maxTotal), "")

	body := []string{"**Per-Rubric Breakdown**"}
	for _, row := range rows {
		body = append(body, fmt.Sprintf(" **%s**: %s/%s",
			row.Name, fmtScore(row.Score, p.RoundScores), fmtScore(row.Total, p.RoundScores)))
		if p.DetailWeakOnly && !isWeak(row) {
			continue
		}
		if row.Rationale != "" {
			body = append(body, "  - **Why**: "+row.Rationale)
		}
		if row.Suggestion != "" && !strings.EqualFold(row.Suggestion, "none") {
			body = append(body, "  - **Improve**: "+row.Suggestion)
		}
		if len(row.Quotes) > 0 {
			quoted := make([]string, 0, len(row.Quotes))
			for _, q := range row.Quotes {
				quoted = append(quoted, "“"+q+"”")
			}
			body = append(body, "  - **Evidence**: "+strings.Join(quoted, " | "))
		}
	}

	all := append(lines, "")
	all = append(all, body...)
	return strings.TrimSpace(strings.Join(all, "\n"))
}

func overallSummary(p Profile, rows []processedRow, earned, maxTotal float64) string {
	var weak, strong []processedRow
	for _, row := range rows {
		if row.Total <= 0 {
			continue
		}
		if isWeak(row) {
			weak = append(weak, row)
		} else {
			strong = append(strong, row)
		}
	}
	sort.SliceStable(weak, func(i, j int) bool {
		return weak[i].Score/weak[i].Total < weak[j].Score/weak[j].Total
	})

	out := []string{fmt.Sprintf(
		"Draft scores **%s/%s**. To reach Exemplary, fix gated items first, then raise weakest sections.",
		fmtScore(earned, p.RoundScores), fmtScore(maxTotal, p.RoundScores))}

	top := weak
	if len(top) > maxRevisionTop {
		top = top[:maxRevisionTop]
	}
	if len(top) > 0 {
		steps := make([]string, 0, len(top))
		for _, row := range top {
			action := row.Suggestion
			if action == "" {
				action = "Strengthen " + row.Name + " with quantitative evidence"
			}
			steps = append(steps, row.Name+": "+strings.TrimRight(action, "."))
		}
		out = append(out, "**Revise in this order:** "+strings.Join(steps, " → "))
	}

	var missing []string
	for _, row := range weak {
		if row.Score == 0 && len(missing) < maxMissing {
			missing = append(missing, row.Name)
		}
	}
	if len(missing) > 0 {
		out = append(out, "**Missing sections:** "+strings.Join(missing, ", "))
	}

	if len(strong) > 0 {
		names := make([]string, 0, maxHighlights)
		for _, row := range strong {
			if len(names) == maxHighlights {
				break
			}
			names = append(names, row.Name)
		}
		out = append(out, "**Highlights:** "+strings.Join(names, ", "))
	}

	return strings.Join(out, "\n")
}

func isWeak(row processedRow) bool {
	return row.Total > 0 && row.Score/row.Total < weakRatio
}

func fmtScore(v float64, round bool) string {
	if round {
		return fmt.Sprintf("%.0f", v)
	}
	return fmt.Sprintf("%.1f", v)
}
