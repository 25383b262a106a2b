package types

// Mention sources.
const (
	MentionSourceNLP      = "nlp"
	MentionSourceTaxonomy = "taxonomy"
)

// Requirement sources.
const (
	SourceDataset      = "dataset"
	SourceInferred     = "inferred"
	SourceNotSpecified = "not_specified"
)

// CatalogEntry is a canonical skill with its frequency in the taxonomy feed.
type CatalogEntry struct {
	Skill     string `json:"skill"`
	Frequency int    `json:"frequency"`
}

// SkillMention is evidence that a posting supports a canonical skill.
type SkillMention struct {
	PostingID  string  `json:"posting_id"`
	Skill      string  `json:"canonical_skill"`
	Confidence float64 `json:"confidence"`
	Source     string  `json:"source,omitempty"`
}

// SkillProfile is the concatenated skill text representing one posting.
type SkillProfile struct {
	PostingID string `json:"posting_id"`
	SkillText string `json:"skill_text"`
}

// RequirementsProfile holds the education and experience requirement of a posting
// together with where each value came from.
type RequirementsProfile struct {
	PostingID         string `json:"posting_id"`
	EducationDisplay  string `json:"education_display"`
	EducationSource   string `json:"education_source"`
	ExperienceDisplay string `json:"experience_display"`
	ExperienceSource  string `json:"experience_source"`
}
