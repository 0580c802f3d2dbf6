package feedback

// Profile parameterizes the scoring pipeline: how long an excerpt the model
// sees, how hard missing evidence is penalized, whether report scores are
// shown rounded, and which gate/page-limit rules ride along in the prompt.
// One pipeline, two built-in profiles.
type Profile struct {
	Name           string
	PenaltyFactor  float64 // multiplier for scored rows with no evidence quotes
	ExcerptLimit   int     // max chars of report text sent to the model
	RoundScores    bool    // render scores as integers instead of one decimal
	DetailWeakOnly bool    // breakdown detail lines only for weak sections
	GlobalRules    []string
	Gates          map[string][]string
	PageLimits     map[string]int
}

// MasterProfile carries the full gate/page-limit rule set for the final
// design report and the gentler evidence penalty.
func MasterProfile() Profile {
	return Profile{
		Name:           "master",
		PenaltyFactor:  0.9,
		ExcerptLimit:   16000,
		RoundScores:    true,
		DetailWeakOnly: true,
		GlobalRules: []string{
			"Bands: Exemplary/Proficient/Developing/Insufficient.",
			"Round decimals to nearest integer before band mapping.",
			"Page limits: if >10% over, cap section at Proficient.",
			"Numbering consistency: enforce one-to-one PFD↔simulation where required.",
		},
		Gates: map[string][]string{
			"Justification (Intro & Baseline)": {
				"Missing PFD or full stream table → cap 7",
				"Missing one-to-one PFD↔simulation numbering → cap 7",
			},
			"Summary (Improved Process & Results)": {
				"Missing improved PFD or missing NPW/IRR → cap 5",
				"Main equipment replaced without strong justification → cap 7",
			},
			"6a) Designed Equipment": {
				"No one-to-one PFD↔simulation mapping, or missing full process stream table, or missing capital-cost method → cap 12",
				"Missing Aspen backups (base & improved) → cap 12",
			},
			"6b) Safety, Health & Environment": {
				"Missing P&ID or HAZOP → cap 4",
			},
			"6c) Economic Analysis": {
				"Missing DCF or NPW/IRR → cap 4",
			},
		},
		PageLimits: map[string]int{
			"Executive Summary":                    1,
			"Justification (Intro & Baseline)":     6,
			"Summary (Improved Process & Results)": 6,
		},
	}
}

// StandardProfile is the simpler draft-feedback variant: shorter excerpt,
// harder evidence penalty, fractional scores, detail on every section.
func StandardProfile() Profile {
	return Profile{
		Name:           "standard",
		PenaltyFactor:  0.8,
		ExcerptLimit:   8000,
		RoundScores:    false,
		DetailWeakOnly: false,
		GlobalRules: []string{
			"Score each section 0..max grounded strictly in the provided excerpt.",
		},
	}
}

func ProfileByName(name string) Profile {
	if name == "standard" {
		return StandardProfile()
	}
	return MasterProfile()
}
