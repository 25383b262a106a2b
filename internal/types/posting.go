// Package types provides the record types shared by the skill pipeline: postings,
// taxonomy rows and the derived catalog, mention, profile and requirements artifacts.
//
//nolint:revive // types is a standard Go package name pattern
package types

// Posting is one job listing. Only ID, Title and Description are required by the
// core; the remaining columns are optional and default to empty.
type Posting struct {
	ID             string  `json:"posting_id"`
	Title          string  `json:"title"`
	Description    string  `json:"description"`
	MinEducation   string  `json:"requirements_min_education,omitempty"`
	ExperienceText string  `json:"requirements_experience,omitempty"`
	OnetCode       string  `json:"classifications_onet_code,omitempty"`
	MOCCodes       string  `json:"moc_codes,omitempty"`
	City           string  `json:"city,omitempty"`
	Company        string  `json:"application_company,omitempty"`
	Link           string  `json:"link,omitempty"`
	SalaryMin      float64 `json:"salary_min,omitempty"`
	SalaryMax      float64 `json:"salary_max,omitempty"`
	SalaryUnit     string  `json:"salary_unit,omitempty"`
	GhostJob       bool    `json:"ghostjob,omitempty"`
}

// TaxonomyEntry is one row of the raw taxonomy feed: an employer-written phrase
// mapped to a canonical taxonomy skill with a correlation score.
type TaxonomyEntry struct {
	PostingID     string  `json:"research_id"`
	RawSkill      string  `json:"raw_skill"`
	TaxonomySkill string  `json:"taxonomy_skill"`
	Source        string  `json:"taxonomy_source"`
	Correlation   float64 `json:"correlation_coefficient"`
}

// PostingIDs returns the ids of postings in order.
func PostingIDs(postings []Posting) []string {
	ids := make([]string, len(postings))
	for i, p := range postings {
		ids[i] = p.ID
	}
	return ids
}
