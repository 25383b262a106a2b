package matching

import (
	"sort"
	"strings"

	"github.com/jonathan/skill-matcher/internal/textnorm"
	"github.com/jonathan/skill-matcher/internal/types"
)

// DefaultGapLimit is the number of posting skills considered by SkillGap.
const DefaultGapLimit = 12

// minGapTokenLen excludes short tokens such as "sql" from overlap checks.
const minGapTokenLen = 3

// SkillGap splits the top skills of postingID into those the query text covers
// and those it does not. A skill is matched when any of its normalized tokens
// longer than three characters occurs as a substring of the normalized query.
// Both lists keep descending score order; together they hold the posting's top
// limit distinct skills.
func SkillGap(query, postingID string, mentions []types.SkillMention, limit int) (matched, missing []string) {
	matched, missing = []string{}, []string{}
	if limit <= 0 {
		limit = DefaultGapLimit
	}

	var own []types.SkillMention
	for _, m := range mentions {
		if m.PostingID == postingID {
			own = append(own, m)
		}
	}
	if len(own) == 0 {
		return matched, missing
	}

	sort.SliceStable(own, func(i, j int) bool {
		return own[i].Confidence > own[j].Confidence
	})

	q := textnorm.Normalize(query)
	seen := make(map[string]bool)
	for _, m := range own {
		if len(seen) == limit {
			break
		}
		if seen[m.Skill] {
			continue
		}
		seen[m.Skill] = true

		if coveredBy(q, m.Skill) {
			matched = append(matched, m.Skill)
		} else {
			missing = append(missing, m.Skill)
		}
	}
	return matched, missing
}

func coveredBy(query, skill string) bool {
	if query == "" {
		return false
	}
	for _, tok := range textnorm.Tokens(skill, minGapTokenLen) {
		if strings.Contains(query, tok) {
			return true
		}
	}
	return false
}
