package vectorspace

import (
	"math"
	"sort"
)

// Vector is an L2-normalized sparse TF-IDF vector.
type Vector struct {
	terms map[string]float64
	norm  float64
}

// TermCount returns the number of distinct terms in the vector.
func (v *Vector) TermCount() int {
	if v == nil {
		return 0
	}
	return len(v.terms)
}

// Options controls vector space construction.
type Options struct {
	MinN  int // minimum n-gram length
	MaxN  int // maximum n-gram length
	MinDF int // terms in fewer documents are dropped from the vocabulary
}

// DefaultOptions matches the retrieval configuration used across the
// pipeline: character 2- and 3-grams, vocabulary terms must appear in
// at least two documents.
func DefaultOptions() Options {
	return Options{MinN: 2, MaxN: 3, MinDF: 2}
}

func (o Options) normalized() Options {
	if o.MinN <= 0 {
		o.MinN = 2
	}
	if o.MaxN < o.MinN {
		o.MaxN = o.MinN
	}
	if o.MinDF <= 0 {
		o.MinDF = 1
	}
	return o
}

// Space is a frozen TF-IDF vector space: vocabulary, IDF weights, and
// the corpus document vectors in fit order. Read-only after Fit.
type Space struct {
	opts Options
	idf  map[string]float64
	docs []*Vector
}

// Fit builds the vector space over the corpus. Document frequencies
// feed smoothed IDF weights, idf = ln((1+N)/(1+df)) + 1, and terms
// below MinDF are excluded from the vocabulary. The corpus documents
// themselves are transformed and retained for ranking.
func Fit(corpus []string, opts Options) *Space {
	opts = opts.normalized()

	docFreq := make(map[string]int)
	counts := make([]map[string]float64, len(corpus))
	for i, text := range corpus {
		tf := termFrequencies(text, opts)
		counts[i] = tf
		for term := range tf {
			docFreq[term]++
		}
	}

	n := float64(len(corpus))
	idf := make(map[string]float64, len(docFreq))
	for term, df := range docFreq {
		if df < opts.MinDF {
			continue
		}
		idf[term] = math.Log((1+n)/(1+float64(df))) + 1
	}

	space := &Space{opts: opts, idf: idf, docs: make([]*Vector, len(corpus))}
	for i, tf := range counts {
		space.docs[i] = space.weigh(tf)
	}
	return space
}

// Transform projects text into the frozen space. Terms outside the
// fitted vocabulary are ignored. Returns a zero-norm vector when
// nothing survives.
func (s *Space) Transform(text string) *Vector {
	return s.weigh(termFrequencies(text, s.opts))
}

// DocCount returns the number of corpus documents.
func (s *Space) DocCount() int {
	if s == nil {
		return 0
	}
	return len(s.docs)
}

// Doc returns the fitted vector of the i-th corpus document.
func (s *Space) Doc(i int) *Vector {
	return s.docs[i]
}

// Similarity scores two texts against each other inside the space.
func (s *Space) Similarity(a, b string) float64 {
	return Cosine(s.Transform(a), s.Transform(b))
}

func termFrequencies(text string, opts Options) map[string]float64 {
	grams := charNGrams(text, opts.MinN, opts.MaxN)
	tf := make(map[string]float64, len(grams))
	for _, gram := range grams {
		tf[gram]++
	}
	return tf
}

func (s *Space) weigh(tf map[string]float64) *Vector {
	terms := make(map[string]float64, len(tf))
	var squared float64
	for term, count := range tf {
		idf, ok := s.idf[term]
		if !ok {
			continue
		}
		w := count * idf
		terms[term] = w
		squared += w * w
	}
	return &Vector{terms: terms, norm: math.Sqrt(squared)}
}

// Cosine computes cosine similarity between two vectors. Zero-norm or
// nil vectors score 0.
func Cosine(a, b *Vector) float64 {
	if a == nil || b == nil || a.norm == 0 || b.norm == 0 {
		return 0
	}
	// Iterate the smaller vector.
	small, large := a, b
	if len(b.terms) < len(a.terms) {
		small, large = b, a
	}
	var dot float64
	for term, w := range small.terms {
		if other, ok := large.terms[term]; ok {
			dot += w * other
		}
	}
	if dot == 0 {
		return 0
	}
	return dot / (a.norm * b.norm)
}

// Scored pairs a corpus document index with its similarity to a query.
type Scored struct {
	Index int
	Score float64
}

// RankAll scores the query against every corpus document and returns
// the top K by descending similarity. Ties keep corpus order (stable
// sort); rank assignment downstream relies on this being documented
// behavior rather than platform accident.
func (s *Space) RankAll(text string, topK int) []Scored {
	subset := make([]int, s.DocCount())
	for i := range subset {
		subset[i] = i
	}
	return s.RankSubset(text, subset, topK)
}

// RankSubset scores the query against the given corpus document
// indices only and returns the top K of that subset by descending
// similarity, ties in subset order.
func (s *Space) RankSubset(text string, subset []int, topK int) []Scored {
	query := s.Transform(text)
	scored := make([]Scored, 0, len(subset))
	for _, idx := range subset {
		scored = append(scored, Scored{Index: idx, Score: Cosine(query, s.docs[idx])})
	}
	sort.SliceStable(scored, func(i, j int) bool {
		return scored[i].Score > scored[j].Score
	})
	if topK > 0 && len(scored) > topK {
		scored = scored[:topK]
	}
	return scored
}
