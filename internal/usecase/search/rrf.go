package search

import (
	"sort"

	"github.com/umami-labs/recipedex/internal/domain/search/result"
)

// DefaultRRFK is the Reciprocal Rank Fusion constant (standard value from Cormack et al. 2009).
const DefaultRRFK = 60

// fusedAcc accumulates one document's per-path ranks and raw scores before
// the combined score is computed. Insertion order is the tie-break order.
type fusedAcc struct {
	id          string
	sparseScore float64
	denseScore  float64
	sparseRank  int
	denseRank   int
}

// fuseRRF merges the keyword and semantic rankings with weighted Reciprocal
// Rank Fusion: combined = w_sparse/(k+rank_sparse) + w_dense/(k+rank_dense),
// ranks 1-based within each source's own list, an absent path contributes
// nothing. The union is sorted by combined score descending; equal scores
// keep first-seen order (sparse list walked first), so output is
// deterministic for identical inputs. Truncation is the caller's business:
// post-filtering runs over the full fused union.
func fuseRRF(sparse []result.Sparse, dense []result.Dense, wSparse, wDense float64, k int) []result.Fused {
	if k <= 0 {
		k = DefaultRRFK
	}

	merged := make(map[string]*fusedAcc, len(sparse)+len(dense))
	ordered := make([]*fusedAcc, 0, len(sparse)+len(dense))
	touch := func(id string) *fusedAcc {
		if acc, ok := merged[id]; ok {
			return acc
		}
		acc := &fusedAcc{id: id}
		merged[id] = acc
		ordered = append(ordered, acc)
		return acc
	}

	for i := range sparse {
		acc := touch(sparse[i].ID())
		acc.sparseScore = sparse[i].Score()
		acc.sparseRank = i + 1
	}
	for i := range dense {
		acc := touch(dense[i].ID())
		acc.denseScore = dense[i].Similarity()
		acc.denseRank = i + 1
	}

	fused := make([]result.Fused, 0, len(ordered))
	for _, acc := range ordered {
		var combined float64
		if acc.sparseRank > 0 {
			combined += wSparse / float64(k+acc.sparseRank)
		}
		if acc.denseRank > 0 {
			combined += wDense / float64(k+acc.denseRank)
		}
		fused = append(fused, result.NewFused(
			acc.id, combined, acc.sparseScore, acc.denseScore, acc.sparseRank, acc.denseRank,
		))
	}

	sort.SliceStable(fused, func(a, b int) bool {
		return fused[a].CombinedScore() > fused[b].CombinedScore()
	})

	return fused
}
