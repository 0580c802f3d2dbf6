package rubric

// Default is the built-in technical-report rubric seeded at first boot.
func Default() Rubric {
	return Rubric{
		{
			Name: "Executive Summary",
			ScoringCriteria: []Criterion{
				{Points: 4, Description: "Clear problem, approach, key results, and recommendations."},
				{Points: 3, Description: "Mostly clear; minor gaps in results or recommendations."},
				{Points: 2, Description: "Important elements missing or unclear."},
				{Points: 1, Description: "Confusing or lacks core content."},
				{Points: 0, Description: "Absent or unusable."},
			},
		},
		{
			Name: "Context & Constraints",
			ScoringCriteria: []Criterion{
				{Points: 4, Description: "Explicitly addresses site-specific constraints (infrastructure, climate, regulations)."},
				{Points: 3, Description: "Mentions local context with moderate specificity."},
				{Points: 2, Description: "Superficial references to context."},
				{Points: 1, Description: "Vague or generic context."},
				{Points: 0, Description: "No context."},
			},
		},
		{
			Name: "Process Description & Flows",
			ScoringCriteria: []Criterion{
				{Points: 5, Description: "Accurate process overview with flowrates, units, and assumptions."},
				{Points: 4, Description: "Solid description; minor missing values or units."},
				{Points: 3, Description: "Some process elements unclear or inconsistent."},
				{Points: 2, Description: "Major gaps; unclear flows or units."},
				{Points: 0, Description: "Not described."},
			},
		},
		{
			Name: "Safety & Environmental",
			ScoringCriteria: []Criterion{
				{Points: 4, Description: "Identifies hazards, mitigations, emissions, and compliance requirements."},
				{Points: 3, Description: "Covers most safety/env factors; minor omissions."},
				{Points: 2, Description: "Superficial; limited mitigations or compliance details."},
				{Points: 1, Description: "Vague mention without specifics."},
				{Points: 0, Description: "No discussion."},
			},
		},
		{
			Name: "Economic Analysis",
			ScoringCriteria: []Criterion{
				{Points: 4, Description: "Uses reasonable CAPEX/OPEX, sensitivity, and assumptions."},
				{Points: 3, Description: "Basic costs; limited sensitivity or assumptions."},
				{Points: 2, Description: "Rough estimates; unclear basis."},
				{Points: 1, Description: "Inconsistent or unsupported economics."},
				{Points: 0, Description: "Absent."},
			},
		},
		{
			Name: "Data, Methods, and Rigor",
			ScoringCriteria: []Criterion{
				{Points: 5, Description: "Credible data cited; methods reproducible; units and references consistent."},
				{Points: 4, Description: "Mostly credible/reproducible; few inconsistencies."},
				{Points: 3, Description: "Some gaps in data sources or methods."},
				{Points: 2, Description: "Sparse citations; unclear methods."},
				{Points: 0, Description: "No sources or methods."},
			},
		},
		{
			Name: "Figures, Tables, and Formatting",
			ScoringCriteria: []Criterion{
				{Points: 3, Description: "Legible figures/tables with captions and references in text."},
				{Points: 2, Description: "Mostly legible; inconsistent captions or references."},
				{Points: 1, Description: "Cluttered or unlabeled visuals."},
				{Points: 0, Description: "No usable visuals."},
			},
		},
		{
			Name: "Writing Quality",
			ScoringCriteria: []Criterion{
				{Points: 3, Description: "Clear, concise, and well-organized with minimal errors."},
				{Points: 2, Description: "Generally clear; some errors or structure issues."},
				{Points: 1, Description: "Frequent errors; hard to follow."},
				{Points: 0, Description: "Unclear or unreadable."},
			},
		},
	}
}
