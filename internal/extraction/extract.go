// Package extraction finds canonical skill mentions in posting text by cosine
// similarity in a TF-IDF space fitted jointly over postings and catalog skills.
package extraction

import (
	"runtime"
	"sort"

	"golang.org/x/sync/errgroup"

	"github.com/jonathan/skill-matcher/internal/textnorm"
	"github.com/jonathan/skill-matcher/internal/types"
	"github.com/jonathan/skill-matcher/internal/vectorspace"
)

// Default extraction parameters.
const (
	DefaultTopK          = 15
	DefaultMinSimilarity = 0.08
	DefaultBatchSize     = 256
)

// Options controls mention extraction. Zero values select the defaults.
type Options struct {
	TopK          int     `json:"top_k" yaml:"top_k" validate:"gte=0"`
	MinSimilarity float64 `json:"min_similarity" yaml:"min_similarity" validate:"gte=0,lte=1"`
	BatchSize     int     `json:"batch_size" yaml:"batch_size" validate:"gte=0"`
	// Concurrency bounds the number of batches scored at once; 0 means GOMAXPROCS
	// and 1 scores batches sequentially.
	Concurrency int `json:"concurrency" yaml:"concurrency" validate:"gte=0"`
}

// DefaultOptions returns the standard extraction parameters.
func DefaultOptions() Options {
	return Options{
		TopK:          DefaultTopK,
		MinSimilarity: DefaultMinSimilarity,
		BatchSize:     DefaultBatchSize,
	}
}

// Effective returns o with zero fields replaced by their defaults.
func (o Options) Effective() Options {
	return o.withDefaults()
}

func (o Options) withDefaults() Options {
	if o.TopK <= 0 {
		o.TopK = DefaultTopK
	}
	if o.MinSimilarity <= 0 {
		o.MinSimilarity = DefaultMinSimilarity
	}
	if o.BatchSize <= 0 {
		o.BatchSize = DefaultBatchSize
	}
	if o.Concurrency <= 0 {
		o.Concurrency = runtime.GOMAXPROCS(0)
	}
	return o
}

// spaceOptions are the term-space settings used to relate postings to skills.
var spaceOptions = vectorspace.Options{
	NGramMin:    1,
	NGramMax:    2,
	StopWords:   vectorspace.EnglishStopWords,
	MinDF:       2,
	MaxDF:       0.95,
	SublinearTF: true,
}

// CorpusText is the normalized text a posting contributes to extraction: title,
// description and the requirement-related columns.
func CorpusText(p types.Posting) string {
	return textnorm.Join(p.Title, p.Description, p.MinEducation, p.ExperienceText, p.OnetCode)
}

// Extract returns skill mentions for every posting, grouped by posting in input
// order. Within a posting mentions are sorted by descending confidence (ties in
// catalog order), all have confidence >= MinSimilarity, and there are at most TopK.
// The result does not depend on BatchSize or Concurrency.
func Extract(postings []types.Posting, skills []string, opts Options) []types.SkillMention {
	opts = opts.withDefaults()
	skills = uniqueSkills(skills)
	if len(postings) == 0 || len(skills) == 0 {
		return []types.SkillMention{}
	}

	docs := make([]string, 0, len(postings)+len(skills))
	for _, p := range postings {
		docs = append(docs, CorpusText(p))
	}
	docs = append(docs, skills...)

	_, vectors := vectorspace.FitTransform(docs, spaceOptions)
	postingVectors := vectors[:len(postings)]
	skillMatrix := vectorspace.NewMatrix(vectors[len(postings):])

	batches := (len(postings) + opts.BatchSize - 1) / opts.BatchSize
	results := make([][]types.SkillMention, batches)

	var g errgroup.Group
	g.SetLimit(opts.Concurrency)
	for b := 0; b < batches; b++ {
		start := b * opts.BatchSize
		end := min(start+opts.BatchSize, len(postings))
		g.Go(func() error {
			results[b] = scoreBatch(postings[start:end], postingVectors[start:end], skillMatrix, skills, opts)
			return nil
		})
	}
	_ = g.Wait()

	total := 0
	for _, r := range results {
		total += len(r)
	}
	mentions := make([]types.SkillMention, 0, total)
	for _, r := range results {
		mentions = append(mentions, r...)
	}
	return mentions
}

type candidate struct {
	skill int
	score float64
}

func scoreBatch(
	postings []types.Posting,
	vectors []vectorspace.Vector,
	skillMatrix *vectorspace.Matrix,
	skills []string,
	opts Options,
) []types.SkillMention {
	var out []types.SkillMention
	scores := make([]float64, skillMatrix.Rows())
	for i, v := range vectors {
		if v.NNZ() == 0 {
			continue
		}
		scores = skillMatrix.Similarities(v, scores)

		kept := make([]candidate, 0)
		for s, score := range scores {
			if score > 0 && score >= opts.MinSimilarity {
				kept = append(kept, candidate{skill: s, score: score})
			}
		}
		sort.SliceStable(kept, func(a, b int) bool {
			return kept[a].score > kept[b].score
		})
		if len(kept) > opts.TopK {
			kept = kept[:opts.TopK]
		}

		for _, c := range kept {
			out = append(out, types.SkillMention{
				PostingID:  postings[i].ID,
				Skill:      skills[c.skill],
				Confidence: c.score,
				Source:     types.MentionSourceNLP,
			})
		}
	}
	return out
}

func uniqueSkills(skills []string) []string {
	seen := make(map[string]bool, len(skills))
	out := make([]string, 0, len(skills))
	for _, s := range skills {
		if s == "" || seen[s] {
			continue
		}
		seen[s] = true
		out = append(out, s)
	}
	return out
}
