// Package matching ranks postings against free-text queries using a vector index
// built over posting skill profiles, and partitions a posting's skills into those
// a query already covers and those it lacks.
package matching

import (
	"sort"

	"github.com/jonathan/skill-matcher/internal/types"
	"github.com/jonathan/skill-matcher/internal/vectorspace"
)

// DefaultTopN is the number of matches returned when the caller does not say.
const DefaultTopN = 8

var indexSpaceOptions = vectorspace.Options{
	NGramMin:  1,
	NGramMax:  2,
	StopWords: vectorspace.EnglishStopWords,
}

// Match is one ranked posting.
type Match struct {
	PostingID string  `json:"posting_id"`
	Score     float64 `json:"match_score"`
}

// Index is an immutable snapshot of the vector space and document rows built from
// one profile collection. It is safe for concurrent queries.
type Index struct {
	space  *vectorspace.Space
	matrix *vectorspace.Matrix
	ids    []string
}

// Build fits an index over profiles. Rows keep profile order, which is also the
// tie-break order for equal scores.
func Build(profiles []types.SkillProfile) *Index {
	texts := make([]string, len(profiles))
	ids := make([]string, len(profiles))
	for i, p := range profiles {
		texts[i] = p.SkillText
		ids[i] = p.PostingID
	}
	space, rows := vectorspace.FitTransform(texts, indexSpaceOptions)
	return &Index{
		space:  space,
		matrix: vectorspace.NewMatrix(rows),
		ids:    ids,
	}
}

// Len returns the number of indexed postings.
func (idx *Index) Len() int {
	if idx == nil {
		return 0
	}
	return len(idx.ids)
}

// PostingIDs returns the indexed posting ids in row order.
func (idx *Index) PostingIDs() []string {
	if idx == nil {
		return nil
	}
	out := make([]string, len(idx.ids))
	copy(out, idx.ids)
	return out
}

// Query returns up to topN postings ranked by cosine similarity to text. Every
// indexed posting is a candidate, so an empty or unmatched query still returns a
// ranking (with zero scores). A non-positive topN selects DefaultTopN. An empty
// index yields an empty result.
func (idx *Index) Query(text string, topN int) []Match {
	if idx.Len() == 0 {
		return []Match{}
	}
	if topN <= 0 {
		topN = DefaultTopN
	}

	scores := idx.matrix.Similarities(idx.space.Transform(text), nil)
	order := make([]int, len(scores))
	for i := range order {
		order[i] = i
	}
	sort.SliceStable(order, func(a, b int) bool {
		return scores[order[a]] > scores[order[b]]
	})
	if len(order) > topN {
		order = order[:topN]
	}

	out := make([]Match, len(order))
	for i, row := range order {
		out[i] = Match{PostingID: idx.ids[row], Score: scores[row]}
	}
	return out
}

// Result is a posting with its match score attached.
type Result struct {
	types.Posting
	Score float64 `json:"match_score"`
}

// Join attaches match scores to the postings they refer to, preserving match
// order. Matches whose posting is not in postings are dropped.
func Join(postings []types.Posting, matches []Match) []Result {
	byID := make(map[string]types.Posting, len(postings))
	for _, p := range postings {
		if _, dup := byID[p.ID]; !dup {
			byID[p.ID] = p
		}
	}
	out := make([]Result, 0, len(matches))
	for _, m := range matches {
		p, ok := byID[m.PostingID]
		if !ok {
			continue
		}
		out = append(out, Result{Posting: p, Score: m.Score})
	}
	return out
}
