package matching

import "slices"

// Tier is the display band of a match score.
type Tier string

const (
	TierHigh   Tier = "high"
	TierMedium Tier = "medium"
	TierLow    Tier = "low"
)

const (
	highScore   = 80
	mediumScore = 50
)

// ScoreTier maps a score to its display band: high >= 80, medium 50..79, low < 50.
func ScoreTier(score int) Tier {
	switch {
	case score >= highScore:
		return TierHigh
	case score >= mediumScore:
		return TierMedium
	default:
		return TierLow
	}
}

// Result is one job-to-candidate match.
type Result struct {
	ID             string   `json:"id" yaml:"id"`
	Job            string   `json:"job,omitempty" yaml:"job,omitempty"`
	JobTitle       string   `json:"job_title" yaml:"job_title"`
	JobCompany     string   `json:"job_company" yaml:"job_company"`
	JobDescription string   `json:"job_description" yaml:"job_description"`
	MatchScore     int      `json:"match_score" yaml:"match_score"`
	MatchedSkills  []string `json:"matched_skills" yaml:"matched_skills"`
	MissingSkills  []string `json:"missing_skills" yaml:"missing_skills"`
	Summary        string   `json:"summary,omitempty" yaml:"summary,omitempty"`
	CreatedAt      string   `json:"created_at,omitempty" yaml:"created_at,omitempty"`
}

func (r Result) Tier() Tier {
	return ScoreTier(r.MatchScore)
}

// Page is the response envelope as returned by the service. The navigation flags are
// forwarded, never recomputed.
type Page struct {
	Results      []Result `json:"results" yaml:"results"`
	Page         int      `json:"page" yaml:"page"`
	TotalMatches int      `json:"total_matches" yaml:"total_matches"`
	TotalPages   int      `json:"total_pages" yaml:"total_pages"`
	HasNext      bool     `json:"has_next" yaml:"has_next"`
	HasPrevious  bool     `json:"has_previous" yaml:"has_previous"`
	Message      string   `json:"message,omitempty" yaml:"message,omitempty"`
}

func (p Page) Len() int {
	return len(p.Results)
}

// FindByID returns the result with the given id on this page.
func (p Page) FindByID(id string) *Result {
	for i := range p.Results {
		if p.Results[i].ID == id {
			return &p.Results[i]
		}
	}

	return nil
}

func (p Page) clone() Page {
	out := p
	out.Results = make([]Result, len(p.Results))
	for i, r := range p.Results {
		r.MatchedSkills = slices.Clone(r.MatchedSkills)
		r.MissingSkills = slices.Clone(r.MissingSkills)
		out.Results[i] = r
	}

	return out
}
