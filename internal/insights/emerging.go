package insights

import (
	"regexp"
	"sort"
	"strings"

	"github.com/jonathan/skill-matcher/internal/types"
)

// Emerging skill detection defaults.
const (
	DefaultConfidenceThreshold = 0.65
	DefaultMinEmployers        = 2
	DefaultEmergingTopN        = 30
)

var digitsOnlyRe = regexp.MustCompile(`^\d+$`)

// EmergingOptions controls DetectEmergingSkills. Zero values select the defaults.
type EmergingOptions struct {
	ConfidenceThreshold float64 `json:"confidence_threshold" yaml:"confidence_threshold" validate:"gte=0,lte=1"`
	MinEmployers        int     `json:"min_employers" yaml:"min_employers" validate:"gte=0"`
	TopN                int     `json:"top_n" yaml:"top_n" validate:"gte=0"`
}

func (o EmergingOptions) withDefaults() EmergingOptions {
	if o.ConfidenceThreshold <= 0 {
		o.ConfidenceThreshold = DefaultConfidenceThreshold
	}
	if o.MinEmployers <= 0 {
		o.MinEmployers = DefaultMinEmployers
	}
	if o.TopN <= 0 {
		o.TopN = DefaultEmergingTopN
	}
	return o
}

// EmergingSkill is an employer phrase the taxonomy maps only weakly, seen across
// several postings.
type EmergingSkill struct {
	RawSkill        string  `json:"raw_skill"`
	EmployerCount   int     `json:"employer_count"`
	AvgConfidence   float64 `json:"avg_confidence"`
	ClosestTaxonomy string  `json:"closest_taxonomy"`
	TaxonomySource  string  `json:"taxonomy_source"`
}

type phraseGroup struct {
	postings   map[string]bool
	sum        float64
	n          int
	taxonomy   map[string]int
	taxSources map[string]int
}

// DetectEmergingSkills returns raw phrases whose taxonomy correlation is below the
// threshold and that appear at MinEmployers or more distinct postings, most
// widespread first.
func DetectEmergingSkills(entries []types.TaxonomyEntry, opts EmergingOptions) []EmergingSkill {
	opts = opts.withDefaults()

	groups := make(map[string]*phraseGroup)
	for _, e := range entries {
		if e.Correlation >= opts.ConfidenceThreshold || len(e.RawSkill) <= 3 {
			continue
		}
		g, ok := groups[e.RawSkill]
		if !ok {
			g = &phraseGroup{
				postings:   make(map[string]bool),
				taxonomy:   make(map[string]int),
				taxSources: make(map[string]int),
			}
			groups[e.RawSkill] = g
		}
		g.postings[e.PostingID] = true
		g.sum += e.Correlation
		g.n++
		g.taxonomy[e.TaxonomySkill]++
		g.taxSources[e.Source]++
	}

	out := make([]EmergingSkill, 0)
	for raw, g := range groups {
		if len(g.postings) < opts.MinEmployers {
			continue
		}
		if digitsOnlyRe.MatchString(raw) || len(strings.TrimSpace(raw)) <= 4 {
			continue
		}
		out = append(out, EmergingSkill{
			RawSkill:        raw,
			EmployerCount:   len(g.postings),
			AvgConfidence:   g.sum / float64(g.n),
			ClosestTaxonomy: mode(g.taxonomy),
			TaxonomySource:  mode(g.taxSources),
		})
	}

	sort.Slice(out, func(i, j int) bool {
		if out[i].EmployerCount != out[j].EmployerCount {
			return out[i].EmployerCount > out[j].EmployerCount
		}
		return out[i].RawSkill < out[j].RawSkill
	})
	if len(out) > opts.TopN {
		out = out[:opts.TopN]
	}
	return out
}

// mode returns the most frequent key, the smallest on ties.
func mode(counts map[string]int) string {
	best, bestN := "", 0
	for k, n := range counts {
		if n > bestN || (n == bestN && k < best) {
			best, bestN = k, n
		}
	}
	return best
}
