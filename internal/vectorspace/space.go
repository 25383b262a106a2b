// Package vectorspace provides a weighted-term (TF-IDF) vector space with sparse
// vectors, shared by mention extraction and the matching index.
//
// A Space is an immutable value: the vocabulary (term -> column) and per-column
// inverse document frequencies are fixed when Fit returns. Transform projects new
// text into the space; terms outside the vocabulary contribute nothing.
package vectorspace

import (
	"math"
	"regexp"
	"sort"
	"strings"
)

// tokenRe matches runs of two or more word characters.
var tokenRe = regexp.MustCompile(`\b\w\w+\b`)

// Options controls tokenization and vocabulary pruning.
type Options struct {
	NGramMin    int             // smallest n-gram length (default 1)
	NGramMax    int             // largest n-gram length (default 1)
	StopWords   map[string]bool // tokens removed before n-grams are formed
	MinDF       int             // terms in fewer documents are dropped (0 or 1 disables)
	MaxDF       float64         // terms in a larger share of documents are dropped (0 disables)
	SublinearTF bool            // replace tf with 1 + ln(tf)
}

// Space is a fitted vocabulary with IDF weights.
type Space struct {
	opts  Options
	vocab map[string]int
	terms []string
	idf   []float64
}

// Fit builds a Space over docs. Documents that produce no tokens still count toward
// the document total used for IDF. If pruning removes every term the result is an
// empty space whose projections are all zero vectors.
func Fit(docs []string, opts Options) *Space {
	opts = withDefaults(opts)

	df := make(map[string]int)
	for _, doc := range docs {
		seen := make(map[string]bool)
		for _, term := range analyze(doc, opts) {
			if !seen[term] {
				seen[term] = true
				df[term]++
			}
		}
	}

	n := len(docs)
	maxCount := math.Inf(1)
	if opts.MaxDF > 0 && opts.MaxDF < 1 {
		maxCount = opts.MaxDF * float64(n)
	}

	terms := make([]string, 0, len(df))
	for term, count := range df {
		if opts.MinDF > 1 && count < opts.MinDF {
			continue
		}
		if float64(count) > maxCount {
			continue
		}
		terms = append(terms, term)
	}
	sort.Strings(terms)

	s := &Space{
		opts:  opts,
		vocab: make(map[string]int, len(terms)),
		terms: terms,
		idf:   make([]float64, len(terms)),
	}
	for i, term := range terms {
		s.vocab[term] = i
		// smoothed idf: as if one extra document contained every term
		s.idf[i] = math.Log(float64(1+n)/float64(1+df[term])) + 1
	}
	return s
}

// FitTransform fits a space over docs and projects each of them.
func FitTransform(docs []string, opts Options) (*Space, []Vector) {
	s := Fit(docs, opts)
	vectors := make([]Vector, len(docs))
	for i, doc := range docs {
		vectors[i] = s.Transform(doc)
	}
	return s, vectors
}

// Len returns the vocabulary size.
func (s *Space) Len() int {
	return len(s.terms)
}

// Terms returns the vocabulary in column order.
func (s *Space) Terms() []string {
	out := make([]string, len(s.terms))
	copy(out, s.terms)
	return out
}

// Column returns the column of term and whether it is in the vocabulary.
func (s *Space) Column(term string) (int, bool) {
	i, ok := s.vocab[term]
	return i, ok
}

// IDF returns the inverse document frequency of column i.
func (s *Space) IDF(i int) float64 {
	return s.idf[i]
}

// Transform projects doc into the space as an L2-normalized sparse vector.
func (s *Space) Transform(doc string) Vector {
	if len(s.terms) == 0 {
		return Vector{}
	}

	counts := make(map[int]int)
	for _, term := range analyze(doc, s.opts) {
		if col, ok := s.vocab[term]; ok {
			counts[col]++
		}
	}
	if len(counts) == 0 {
		return Vector{}
	}

	v := Vector{
		Indices: make([]int, 0, len(counts)),
		Values:  make([]float64, 0, len(counts)),
	}
	for col := range counts {
		v.Indices = append(v.Indices, col)
	}
	sort.Ints(v.Indices)

	var norm float64
	for _, col := range v.Indices {
		tf := float64(counts[col])
		if s.opts.SublinearTF {
			tf = 1 + math.Log(tf)
		}
		w := tf * s.idf[col]
		v.Values = append(v.Values, w)
		norm += w * w
	}
	if norm > 0 {
		norm = math.Sqrt(norm)
		for i := range v.Values {
			v.Values[i] /= norm
		}
	}
	return v
}

func withDefaults(opts Options) Options {
	if opts.NGramMin <= 0 {
		opts.NGramMin = 1
	}
	if opts.NGramMax < opts.NGramMin {
		opts.NGramMax = opts.NGramMin
	}
	return opts
}

// analyze lowercases doc, extracts tokens, removes stop words and emits the
// configured n-grams.
func analyze(doc string, opts Options) []string {
	raw := tokenRe.FindAllString(strings.ToLower(doc), -1)
	tokens := raw[:0]
	for _, tok := range raw {
		if opts.StopWords[tok] {
			continue
		}
		tokens = append(tokens, tok)
	}

	if opts.NGramMax == 1 {
		return tokens
	}

	out := make([]string, 0, len(tokens)*(opts.NGramMax-opts.NGramMin+1))
	for n := opts.NGramMin; n <= opts.NGramMax; n++ {
		for i := 0; i+n <= len(tokens); i++ {
			out = append(out, strings.Join(tokens[i:i+n], " "))
		}
	}
	return out
}
