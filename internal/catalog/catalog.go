// Package catalog derives the controlled skill vocabulary from the taxonomy feed.
package catalog

import (
	"sort"

	"github.com/jonathan/skill-matcher/internal/textnorm"
	"github.com/jonathan/skill-matcher/internal/types"
)

const (
	// DefaultMinFrequency is the minimum number of taxonomy rows a label needs.
	DefaultMinFrequency = 3
	// DefaultMaxSkills caps the catalog size.
	DefaultMaxSkills = 3000

	minLabelLength = 2
)

// Options controls catalog filtering. Zero values select the defaults.
type Options struct {
	MinFrequency int `json:"min_frequency" yaml:"min_frequency" validate:"gte=0"`
	MaxSkills    int `json:"max_skills" yaml:"max_skills" validate:"gte=0"`
}

// DefaultOptions returns the standard catalog options.
func DefaultOptions() Options {
	return Options{MinFrequency: DefaultMinFrequency, MaxSkills: DefaultMaxSkills}
}

// Effective returns o with zero fields replaced by their defaults.
func (o Options) Effective() Options {
	return o.withDefaults()
}

func (o Options) withDefaults() Options {
	if o.MinFrequency <= 0 {
		o.MinFrequency = DefaultMinFrequency
	}
	if o.MaxSkills <= 0 {
		o.MaxSkills = DefaultMaxSkills
	}
	return o
}

// Build counts the normalized taxonomy skill labels and returns those seen at least
// MinFrequency times, most frequent first, capped at MaxSkills. Ties keep the
// order in which labels were first encountered. Labels of two characters or fewer
// after normalization are discarded.
func Build(entries []types.TaxonomyEntry, opts Options) []types.CatalogEntry {
	labels := make([]string, len(entries))
	for i, e := range entries {
		labels[i] = e.TaxonomySkill
	}
	return BuildFromLabels(labels, opts)
}

// BuildFromLabels is Build over bare label strings.
func BuildFromLabels(labels []string, opts Options) []types.CatalogEntry {
	opts = opts.withDefaults()

	counts := make(map[string]int)
	order := make([]string, 0)
	for _, label := range labels {
		normalized := textnorm.Normalize(label)
		if len(normalized) <= minLabelLength {
			continue
		}
		if _, seen := counts[normalized]; !seen {
			order = append(order, normalized)
		}
		counts[normalized]++
	}

	kept := make([]types.CatalogEntry, 0, len(order))
	for _, skill := range order {
		if counts[skill] >= opts.MinFrequency {
			kept = append(kept, types.CatalogEntry{Skill: skill, Frequency: counts[skill]})
		}
	}

	sort.SliceStable(kept, func(i, j int) bool {
		return kept[i].Frequency > kept[j].Frequency
	})

	if len(kept) > opts.MaxSkills {
		kept = kept[:opts.MaxSkills]
	}
	return kept
}

// Skills returns the skill strings of a catalog in order.
func Skills(entries []types.CatalogEntry) []string {
	skills := make([]string, len(entries))
	for i, e := range entries {
		skills[i] = e.Skill
	}
	return skills
}
