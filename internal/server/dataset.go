package server

import (
	"github.com/jonathan/skill-matcher/internal/matching"
	"github.com/jonathan/skill-matcher/internal/pipeline"
	"github.com/jonathan/skill-matcher/internal/types"
)

// Dataset is the read-only snapshot of pipeline output the API serves from. The
// postings and the index built from them are published together, so a request
// that loads one Dataset never pairs an index with another run's postings.
type Dataset struct {
	Postings     []types.Posting
	RunID        string
	index        *matching.Index
	byID         map[string]int
	mentions     map[string][]types.SkillMention
	requirements map[string]types.RequirementsProfile
}

// NewDataset indexes a run's artifacts by posting id. res may be nil.
func NewDataset(res *pipeline.Result, postings []types.Posting) *Dataset {
	ds := &Dataset{
		Postings:     postings,
		byID:         make(map[string]int, len(postings)),
		mentions:     make(map[string][]types.SkillMention),
		requirements: make(map[string]types.RequirementsProfile),
		index:        &matching.Index{},
	}
	for i, p := range postings {
		if _, dup := ds.byID[p.ID]; !dup {
			ds.byID[p.ID] = i
		}
	}
	if res == nil {
		return ds
	}
	ds.RunID = res.RunID.String()
	if res.Index != nil {
		ds.index = res.Index
	}
	for _, m := range res.Mentions {
		ds.mentions[m.PostingID] = append(ds.mentions[m.PostingID], m)
	}
	for _, r := range res.Requirements {
		ds.requirements[r.PostingID] = r
	}
	return ds
}

// Posting returns the posting with id.
func (ds *Dataset) Posting(id string) (types.Posting, bool) {
	i, ok := ds.byID[id]
	if !ok {
		return types.Posting{}, false
	}
	return ds.Postings[i], true
}

// Mentions returns the skill mentions of a posting.
func (ds *Dataset) Mentions(id string) []types.SkillMention {
	return ds.mentions[id]
}

// Requirements returns the requirements profile of a posting.
func (ds *Dataset) Requirements(id string) (types.RequirementsProfile, bool) {
	r, ok := ds.requirements[id]
	return r, ok
}

// Index returns the matching index built with the dataset's postings.
func (ds *Dataset) Index() *matching.Index {
	return ds.index
}
