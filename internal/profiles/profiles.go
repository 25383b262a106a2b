// Package profiles collapses skill mentions into one skill-text document per posting.
package profiles

import (
	"sort"
	"strings"

	"github.com/jonathan/skill-matcher/internal/textnorm"
	"github.com/jonathan/skill-matcher/internal/types"
)

// Build returns one profile per posting that has at least one mention, ordered by
// posting id. A posting's skills appear in descending confidence order with
// duplicates removed; equal-confidence skills keep their input order.
func Build(mentions []types.SkillMention) []types.SkillProfile {
	if len(mentions) == 0 {
		return []types.SkillProfile{}
	}

	sorted := make([]types.SkillMention, len(mentions))
	copy(sorted, mentions)
	sort.SliceStable(sorted, func(i, j int) bool {
		if sorted[i].PostingID != sorted[j].PostingID {
			return sorted[i].PostingID < sorted[j].PostingID
		}
		return sorted[i].Confidence > sorted[j].Confidence
	})

	var out []types.SkillProfile
	var current string
	var skills []string
	seen := make(map[string]bool)

	flush := func() {
		if len(skills) > 0 {
			out = append(out, types.SkillProfile{
				PostingID: current,
				SkillText: strings.Join(skills, " "),
			})
		}
	}

	for i, m := range sorted {
		if i == 0 || m.PostingID != current {
			flush()
			current = m.PostingID
			skills = skills[:0:0]
			seen = make(map[string]bool)
		}
		skill := textnorm.Normalize(m.Skill)
		if skill == "" || seen[skill] {
			continue
		}
		seen[skill] = true
		skills = append(skills, skill)
	}
	flush()

	if out == nil {
		return []types.SkillProfile{}
	}
	return out
}

// Index returns profiles keyed by posting id.
func Index(profiles []types.SkillProfile) map[string]string {
	out := make(map[string]string, len(profiles))
	for _, p := range profiles {
		out[p.PostingID] = p.SkillText
	}
	return out
}
