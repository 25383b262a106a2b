package insights

import (
	"sort"
	"strings"

	"github.com/jonathan/skill-matcher/internal/types"
)

const (
	// MinInflationGroup is the smallest occupation group compared for inflation.
	MinInflationGroup = 3
	// MinInflationGap is the education gap, in levels, that flags a posting.
	MinInflationGap = 2

	maxInflationRows = 150
)

var educationLevels = map[string]int{
	"no formal education required":      0,
	"high school diploma or ged":        1,
	"some college coursework completed": 2,
	"associates degree":                 3,
	"associate degree":                  3,
	"bachelors degree":                  4,
	"bachelor degree":                   4,
	"masters degree":                    5,
	"master degree":                     5,
	"doctoral degree":                   6,
	"phd":                               6,
	"post-doctoral training":            7,
	"post doctoral training":            7,
}

var levelNames = []string{
	"No Formal Education Required",
	"High School Diploma or GED",
	"Some College Coursework Completed",
	"Associate's Degree",
	"Bachelor's Degree",
	"Master's Degree",
	"Doctoral Degree",
	"Post-Doctoral Training",
}

// EducationLevel ranks a structured education requirement from 0 (none) to 7
// (post-doctoral). ok is false for values outside the known vocabulary.
func EducationLevel(s string) (level int, ok bool) {
	s = strings.ToLower(strings.Join(strings.Fields(s), " "))
	s = strings.NewReplacer("'", "", "’", "").Replace(s)
	level, ok = educationLevels[s]
	return level, ok
}

// InflatedPosting is a posting that asks for more education than the least
// demanding posting in the same occupation.
type InflatedPosting struct {
	PostingID         string `json:"posting_id"`
	Title             string `json:"title"`
	Company           string `json:"employer"`
	City              string `json:"city"`
	RequiredEducation string `json:"required_education"`
	FieldMinimum      string `json:"minimum_in_field"`
	Gap               int    `json:"gap_levels"`
	OnetCode          string `json:"onet_code"`
	Salary            string `json:"salary"`
}

// DetectCredentialInflation groups postings by O*NET code and flags those whose
// education requirement is MinInflationGap or more levels above the group
// minimum. Groups smaller than MinInflationGroup are skipped. Largest gaps come
// first.
func DetectCredentialInflation(postings []types.Posting) []InflatedPosting {
	type ranked struct {
		p     types.Posting
		level int
	}
	groups := make(map[string][]ranked)
	for _, p := range postings {
		code := strings.TrimSpace(p.OnetCode)
		if code == "" {
			continue
		}
		level, ok := EducationLevel(p.MinEducation)
		if !ok {
			continue
		}
		groups[code] = append(groups[code], ranked{p: p, level: level})
	}

	codes := make([]string, 0, len(groups))
	for code := range groups {
		codes = append(codes, code)
	}
	sort.Strings(codes)

	out := make([]InflatedPosting, 0)
	for _, code := range codes {
		group := groups[code]
		if len(group) < MinInflationGroup {
			continue
		}
		minimum := group[0].level
		for _, r := range group[1:] {
			minimum = min(minimum, r.level)
		}
		for _, r := range group {
			gap := r.level - minimum
			if gap < MinInflationGap {
				continue
			}
			out = append(out, InflatedPosting{
				PostingID:         r.p.ID,
				Title:             r.p.Title,
				Company:           r.p.Company,
				City:              r.p.City,
				RequiredEducation: r.p.MinEducation,
				FieldMinimum:      levelNames[minimum],
				Gap:               gap,
				OnetCode:          code,
				Salary:            FormatSalary(r.p.SalaryMin, r.p.SalaryMax, ""),
			})
		}
	}

	sort.SliceStable(out, func(i, j int) bool { return out[i].Gap > out[j].Gap })
	if len(out) > maxInflationRows {
		out = out[:maxInflationRows]
	}
	return out
}
