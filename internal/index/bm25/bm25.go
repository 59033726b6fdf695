// Package bm25 provides an in-process inverted index with Okapi BM25
// ranking. One Index serves the whole recipe catalog; rebuilds publish a
// fresh immutable snapshot atomically so concurrent queries are lock-free
// and never observe a partially built index.
package bm25

import (
	"fmt"
	"math"
	"sort"
	"sync/atomic"

	"github.com/umami-labs/recipedex/internal/domain"
	"github.com/umami-labs/recipedex/internal/domain/search/result"
	"github.com/umami-labs/recipedex/internal/domain/search/token"
)

// Default Okapi BM25 parameters.
const (
	DefaultK1 = 1.5
	DefaultB  = 0.75
)

// TitleWeight is how many times title tokens are counted during indexing.
const TitleWeight = 2

// Params tune the scoring function. K1 controls term frequency saturation,
// B controls document length normalization.
type Params struct {
	K1 float64
	B  float64
}

// Doc is one indexable document.
type Doc struct {
	ID    string
	Title string
	Body  string
}

// TokenizedDoc is a document whose keyword multiset was produced ahead of
// the build, so callers can spread tokenization over a worker pool and
// feed the serial posting construction with ready token lists.
type TokenizedDoc struct {
	ID     string
	Tokens []string
}

// posting records one document's term frequency for a term. Lists are kept
// in document insertion order.
type posting struct {
	doc int32
	tf  int32
}

// snapshot is one fully built, immutable index generation.
type snapshot struct {
	ids      []string
	lengths  []int
	postings map[string][]posting
	avgLen   float64
}

// Index ranks documents by lexical overlap with a query.
type Index struct {
	params Params
	tk     token.Tokenizer
	snap   atomic.Pointer[snapshot]
}

// New creates an empty, unbuilt index. Out-of-range params fall back to
// defaults.
func New(params Params, tk token.Tokenizer) *Index {
	if params.K1 <= 0 {
		params.K1 = DefaultK1
	}
	if params.B < 0 || params.B > 1 {
		params.B = DefaultB
	}
	return &Index{params: params, tk: tk}
}

// Build tokenizes the full document set and atomically replaces the current
// snapshot. On error the previous snapshot stays live.
func (ix *Index) Build(docs []Doc) error {
	tdocs := make([]TokenizedDoc, len(docs))
	for i, d := range docs {
		tdocs[i] = TokenizedDoc{ID: d.ID, Tokens: ix.Tokenize(d)}
	}
	return ix.BuildTokenized(tdocs)
}

// BuildTokenized indexes pre-tokenized documents and atomically replaces
// the current snapshot. On error the previous snapshot stays live.
func (ix *Index) BuildTokenized(docs []TokenizedDoc) error {
	snap := &snapshot{
		ids:      make([]string, len(docs)),
		lengths:  make([]int, len(docs)),
		postings: make(map[string][]posting, len(docs)*8),
	}
	seen := make(map[string]struct{}, len(docs))

	var totalLen int
	for i, d := range docs {
		if d.ID == "" {
			return fmt.Errorf("document at position %d has an empty id", i)
		}
		if _, dup := seen[d.ID]; dup {
			return fmt.Errorf("duplicate document id %q", d.ID)
		}
		seen[d.ID] = struct{}{}

		snap.ids[i] = d.ID
		snap.lengths[i] = len(d.Tokens)
		totalLen += len(d.Tokens)

		tf := make(map[string]int32, len(d.Tokens))
		for _, t := range d.Tokens {
			tf[t]++
		}
		for term, n := range tf {
			snap.postings[term] = append(snap.postings[term], posting{doc: int32(i), tf: n})
		}
	}
	if len(docs) > 0 {
		snap.avgLen = float64(totalLen) / float64(len(docs))
	}

	ix.snap.Store(snap)
	return nil
}

// Tokenize returns the document's keyword multiset with title tokens
// repeated TitleWeight times. Document length counts the repetitions.
func (ix *Index) Tokenize(d Doc) []string {
	title := ix.tk.Keywords(d.Title)
	body := ix.tk.Keywords(d.Body)

	tokens := make([]string, 0, len(title)*TitleWeight+len(body))
	for i := 0; i < TitleWeight; i++ {
		tokens = append(tokens, title...)
	}
	return append(tokens, body...)
}

// Search scores documents against the query and returns the top matches
// sorted by descending score, ties broken by insertion order. An empty
// result (never an error) is returned when the query has no indexable
// keywords, the index is empty, or nothing overlaps. Searching before any
// successful Build returns domain.ErrIndexNotBuilt.
func (ix *Index) Search(query string, topN int) ([]result.Sparse, error) {
	snap := ix.snap.Load()
	if snap == nil {
		return nil, domain.ErrIndexNotBuilt
	}
	if topN <= 0 || len(snap.ids) == 0 {
		return nil, nil
	}
	terms := ix.tk.Keywords(query)
	if len(terms) == 0 {
		return nil, nil
	}

	n := float64(len(snap.ids))
	scores := make(map[int32]float64)
	for _, term := range terms {
		plist := snap.postings[term]
		if len(plist) == 0 {
			continue
		}
		df := float64(len(plist))
		idf := math.Log(1 + (n-df+0.5)/(df+0.5))
		for _, p := range plist {
			tf := float64(p.tf)
			norm := 1 - ix.params.B + ix.params.B*float64(snap.lengths[p.doc])/snap.avgLen
			scores[p.doc] += idf * tf * (ix.params.K1 + 1) / (tf + ix.params.K1*norm)
		}
	}
	if len(scores) == 0 {
		return nil, nil
	}

	order := make([]int32, 0, len(scores))
	for idx := range scores {
		order = append(order, idx)
	}
	sort.Slice(order, func(a, b int) bool {
		ia, ib := order[a], order[b]
		if scores[ia] != scores[ib] {
			return scores[ia] > scores[ib]
		}
		return ia < ib
	})

	if topN > len(order) {
		topN = len(order)
	}
	out := make([]result.Sparse, 0, topN)
	for _, idx := range order[:topN] {
		out = append(out, result.NewSparse(snap.ids[idx], scores[idx]))
	}
	return out, nil
}

// Built reports whether at least one Build has completed.
func (ix *Index) Built() bool { return ix.snap.Load() != nil }

// DocCount returns the number of documents in the live snapshot.
func (ix *Index) DocCount() int {
	snap := ix.snap.Load()
	if snap == nil {
		return 0
	}
	return len(snap.ids)
}

// TermCount returns the number of distinct terms in the live snapshot.
func (ix *Index) TermCount() int {
	snap := ix.snap.Load()
	if snap == nil {
		return 0
	}
	return len(snap.postings)
}
