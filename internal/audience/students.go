package audience

import (
	"sort"
	"strings"

	"github.com/jonathan/skill-matcher/internal/types"
)

// Default list sizes for skill frequency tables.
const (
	DefaultTopSkills      = 20
	DefaultTopFieldSkills = 10
)

// FieldKeywords maps a study field to the query text used to find its postings.
var FieldKeywords = map[string]string{
	"Healthcare & Medicine":  "patient care medical nursing health clinical",
	"Technology & IT":        "software programming data systems network cloud",
	"Business & Management":  "management leadership strategy finance accounting",
	"Engineering":            "engineering design systems technical analysis",
	"Education":              "teaching curriculum training instruction learning",
	"Logistics & Operations": "logistics supply chain operations warehouse transportation",
}

// Fields returns the FieldKeywords names in sorted order.
func Fields() []string {
	out := make([]string, 0, len(FieldKeywords))
	for name := range FieldKeywords {
		out = append(out, name)
	}
	sort.Strings(out)
	return out
}

// SkillCount is a taxonomy skill and the number of feed rows naming it.
type SkillCount struct {
	Skill string `json:"skill"`
	Count int    `json:"count"`
}

// TopSkills counts taxonomy skill labels across entries and returns the limit
// most frequent. Ties keep first-seen order. A non-positive limit selects
// DefaultTopSkills.
func TopSkills(entries []types.TaxonomyEntry, limit int) []SkillCount {
	if limit <= 0 {
		limit = DefaultTopSkills
	}
	return countSkills(entries, nil, limit)
}

// TopFieldSkills is TopSkills restricted to rows of the given postings. A
// non-positive limit selects DefaultTopFieldSkills.
func TopFieldSkills(entries []types.TaxonomyEntry, postingIDs []string, limit int) []SkillCount {
	if limit <= 0 {
		limit = DefaultTopFieldSkills
	}
	keep := make(map[string]bool, len(postingIDs))
	for _, id := range postingIDs {
		keep[id] = true
	}
	return countSkills(entries, keep, limit)
}

func countSkills(entries []types.TaxonomyEntry, keep map[string]bool, limit int) []SkillCount {
	counts := make(map[string]int)
	order := make([]string, 0)
	for _, e := range entries {
		if keep != nil && !keep[e.PostingID] {
			continue
		}
		skill := strings.TrimSpace(e.TaxonomySkill)
		if skill == "" {
			continue
		}
		if _, seen := counts[skill]; !seen {
			order = append(order, skill)
		}
		counts[skill]++
	}

	out := make([]SkillCount, len(order))
	for i, skill := range order {
		out[i] = SkillCount{Skill: skill, Count: counts[skill]}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Count > out[j].Count })
	if len(out) > limit {
		out = out[:limit]
	}
	return out
}
