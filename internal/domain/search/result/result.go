// Package result defines the typed hits produced by each retrieval path.
// Sparse and Dense are per-path hits; Fused is the reconciled ranking the
// fusion step produces from both.
package result

import "github.com/umami-labs/recipedex/internal/domain/recipe"

// Sparse is a single keyword (BM25) hit.
type Sparse struct {
	id    string
	score float64
}

// NewSparse creates a keyword hit.
func NewSparse(id string, score float64) Sparse {
	return Sparse{id: id, score: score}
}

// ID returns the recipe identifier.
func (s *Sparse) ID() string { return s.id }

// Score returns the BM25 relevance score.
func (s *Sparse) Score() float64 { return s.score }

// Dense is a single embedding-similarity hit.
type Dense struct {
	id         string
	similarity float64
}

// NewDense creates a semantic hit.
func NewDense(id string, similarity float64) Dense {
	return Dense{id: id, similarity: similarity}
}

// ID returns the recipe identifier.
func (d *Dense) ID() string { return d.id }

// Similarity returns the cosine similarity in [0,1].
func (d *Dense) Similarity() float64 { return d.similarity }

// Fused is a reconciled hit carrying the combined score plus the raw
// per-path scores and 1-based ranks for observability. A rank of zero means
// the recipe did not appear in that path's list. The raw scores never
// influence ordering once fusion has run.
type Fused struct {
	id            string
	combinedScore float64
	sparseScore   float64
	denseScore    float64
	sparseRank    int
	denseRank     int
	metadata      recipe.Metadata
	hasMetadata   bool
}

// NewFused creates a fused hit.
func NewFused(id string, combinedScore, sparseScore, denseScore float64, sparseRank, denseRank int) Fused {
	return Fused{
		id:            id,
		combinedScore: combinedScore,
		sparseScore:   sparseScore,
		denseScore:    denseScore,
		sparseRank:    sparseRank,
		denseRank:     denseRank,
	}
}

// ID returns the recipe identifier.
func (f *Fused) ID() string { return f.id }

// CombinedScore returns the weighted reciprocal rank fusion score.
func (f *Fused) CombinedScore() float64 { return f.combinedScore }

// SparseScore returns the raw BM25 score (0 if absent from that path).
func (f *Fused) SparseScore() float64 { return f.sparseScore }

// DenseScore returns the raw similarity (0 if absent from that path).
func (f *Fused) DenseScore() float64 { return f.denseScore }

// SparseRank returns the 1-based keyword rank (0 if absent).
func (f *Fused) SparseRank() int { return f.sparseRank }

// DenseRank returns the 1-based semantic rank (0 if absent).
func (f *Fused) DenseRank() int { return f.denseRank }

// Metadata returns the attached recipe metadata snapshot.
func (f *Fused) Metadata() recipe.Metadata { return f.metadata }

// HasMetadata reports whether a metadata snapshot has been attached.
func (f *Fused) HasMetadata() bool { return f.hasMetadata }

// WithMetadata returns a copy of the hit with the metadata snapshot attached.
func (f Fused) WithMetadata(meta recipe.Metadata) Fused {
	f.metadata = meta
	f.hasMetadata = true
	return f
}
