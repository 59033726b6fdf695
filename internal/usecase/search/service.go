// Package search orchestrates hybrid recipe retrieval: the keyword and
// semantic paths are queried concurrently and independently, their rankings
// are merged with weighted Reciprocal Rank Fusion, and metadata post-filters
// run over the fused ranking. One failed path degrades to an empty list; the
// request only fails when both paths are down.
package search

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/umami-labs/recipedex/internal/domain"
	"github.com/umami-labs/recipedex/internal/domain/search/filter"
	"github.com/umami-labs/recipedex/internal/domain/search/mode"
	"github.com/umami-labs/recipedex/internal/domain/search/request"
	"github.com/umami-labs/recipedex/internal/domain/search/result"
	"github.com/umami-labs/recipedex/internal/metrics"
)

// Orchestrator defaults, overridable via Options.
const (
	// DefaultOversampleFactor is how many times n_results each path fetches,
	// so post-filtering has candidates to discard.
	DefaultOversampleFactor = 3
	// DefaultDenseTimeout bounds the semantic path (embedding API + KNN).
	DefaultDenseTimeout = 5 * time.Second
)

// Options tune the orchestrator. Zero values fall back to defaults, except
// MinSimilarity where zero genuinely means "no threshold" (the service
// config supplies the production default).
type Options struct {
	// MinSimilarity drops semantic hits below this similarity in [0,1].
	MinSimilarity float64
	// OversampleFactor multiplies n_results for per-path retrieval.
	OversampleFactor int
	// DenseTimeout bounds one semantic retrieval; on expiry the path
	// degrades like any other failure.
	DenseTimeout time.Duration
	// RRFK is the Reciprocal Rank Fusion constant.
	RRFK int
}

// Service is the hybrid search orchestrator.
type Service struct {
	sparse  SparseSearcher
	dense   DenseSearcher
	meta    MetadataReader
	recipes RecipeReader
	embed   Embedder
	opts    Options
	logger  *zap.Logger
}

// New creates a search service.
func New(
	sparse SparseSearcher, dense DenseSearcher,
	meta MetadataReader, recipes RecipeReader, embed Embedder,
	opts Options, logger *zap.Logger,
) *Service {
	if opts.MinSimilarity < 0 {
		opts.MinSimilarity = 0
	}
	if opts.OversampleFactor <= 0 {
		opts.OversampleFactor = DefaultOversampleFactor
	}
	if opts.DenseTimeout <= 0 {
		opts.DenseTimeout = DefaultDenseTimeout
	}
	if opts.RRFK <= 0 {
		opts.RRFK = DefaultRRFK
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{
		sparse:  sparse,
		dense:   dense,
		meta:    meta,
		recipes: recipes,
		embed:   embed,
		opts:    opts,
		logger:  logger,
	}
}

// Search executes a recipe search in the requested mode and returns the
// fused, filtered, truncated ranking. An empty query returns an empty result
// set without touching either retrieval path.
func (s *Service) Search(ctx context.Context, req *request.Request) ([]result.Fused, error) {
	start := time.Now()
	label := string(req.Mode())

	hits, err := s.dispatch(ctx, req)

	metrics.SearchDuration.WithLabelValues(label).Observe(time.Since(start).Seconds())
	if err != nil {
		metrics.SearchRequestsTotal.WithLabelValues(label, "error").Inc()
		return nil, err
	}
	metrics.SearchRequestsTotal.WithLabelValues(label, "success").Inc()
	return hits, nil
}

func (s *Service) dispatch(ctx context.Context, req *request.Request) ([]result.Fused, error) {
	if req.EmptyQuery() {
		return []result.Fused{}, nil
	}

	switch req.Mode() {
	case mode.Hybrid:
		return s.searchHybrid(ctx, req)
	case mode.Sparse:
		return s.searchSparseOnly(ctx, req)
	case mode.Dense:
		return s.searchDenseOnly(ctx, req)
	default:
		return nil, fmt.Errorf("unsupported search mode %q: %w", req.Mode(), domain.ErrInvalidRequest)
	}
}

// searchHybrid fans out to both paths concurrently. Each path captures its
// own failure locally so one failed backend never cancels the other; only
// both failing fails the request.
func (s *Service) searchHybrid(ctx context.Context, req *request.Request) ([]result.Fused, error) {
	fetch := req.NResults() * s.opts.OversampleFactor

	var (
		sparseHits []result.Sparse
		denseHits  []result.Dense
		sparseErr  error
		denseErr   error
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		sparseHits, sparseErr = s.sparseHits(req.Query(), fetch)
		return nil
	})
	g.Go(func() error {
		dctx, cancel := context.WithTimeout(gctx, s.opts.DenseTimeout)
		defer cancel()
		denseHits, denseErr = s.denseHits(dctx, req.Query(), fetch)
		return nil
	})
	_ = g.Wait() // обе горутины возвращают nil, Wait только ждёт

	if sparseErr != nil && denseErr != nil {
		s.logger.Error("all retrieval paths failed",
			zap.Error(sparseErr), zap.NamedError("dense_error", denseErr))
		return nil, fmt.Errorf("%v; %v: %w", sparseErr, denseErr, domain.ErrSearchUnavailable)
	}
	if sparseErr != nil {
		metrics.SearchPathFailuresTotal.WithLabelValues("sparse").Inc()
		s.logger.Warn("keyword path degraded, serving dense-only", zap.Error(sparseErr))
	}
	if denseErr != nil {
		metrics.SearchPathFailuresTotal.WithLabelValues("dense").Inc()
		s.logger.Warn("semantic path degraded, serving sparse-only", zap.Error(denseErr))
	}

	fused := fuseRRF(sparseHits, denseHits, req.SparseWeight(), req.DenseWeight(), s.opts.RRFK)
	return s.finalize(ctx, fused, req.Filters(), req.NResults())
}

// searchSparseOnly serves mode=sparse through the same fusion formula so the
// result shape stays uniform across modes.
func (s *Service) searchSparseOnly(ctx context.Context, req *request.Request) ([]result.Fused, error) {
	hits, err := s.sparseHits(req.Query(), req.NResults()*s.opts.OversampleFactor)
	if err != nil {
		return nil, err
	}
	fused := fuseRRF(hits, nil, req.SparseWeight(), req.DenseWeight(), s.opts.RRFK)
	return s.finalize(ctx, fused, req.Filters(), req.NResults())
}

func (s *Service) searchDenseOnly(ctx context.Context, req *request.Request) ([]result.Fused, error) {
	dctx, cancel := context.WithTimeout(ctx, s.opts.DenseTimeout)
	defer cancel()

	hits, err := s.denseHits(dctx, req.Query(), req.NResults()*s.opts.OversampleFactor)
	if err != nil {
		return nil, err
	}
	fused := fuseRRF(nil, hits, req.SparseWeight(), req.DenseWeight(), s.opts.RRFK)
	return s.finalize(ctx, fused, req.Filters(), req.NResults())
}

// SparseSearch runs the keyword path alone and returns raw BM25 matches,
// post-filtered and truncated. Independently callable, not only a fusion input.
func (s *Service) SparseSearch(ctx context.Context, req *request.Request) ([]result.Sparse, error) {
	if req.EmptyQuery() {
		return []result.Sparse{}, nil
	}

	hits, err := s.sparseHits(req.Query(), req.NResults()*s.opts.OversampleFactor)
	if err != nil {
		return nil, err
	}

	out := make([]result.Sparse, 0, req.NResults())
	keep, err := s.passingIDs(ctx, sparseIDs(hits), req.Filters())
	if err != nil {
		return nil, err
	}
	for _, h := range hits {
		if !keep[h.ID()] {
			continue
		}
		out = append(out, h)
		if len(out) == req.NResults() {
			break
		}
	}
	return out, nil
}

// DenseSearch runs the semantic path alone and returns raw similarity
// matches, post-filtered and truncated.
func (s *Service) DenseSearch(ctx context.Context, req *request.Request) ([]result.Dense, error) {
	if req.EmptyQuery() {
		return []result.Dense{}, nil
	}

	dctx, cancel := context.WithTimeout(ctx, s.opts.DenseTimeout)
	defer cancel()

	hits, err := s.denseHits(dctx, req.Query(), req.NResults()*s.opts.OversampleFactor)
	if err != nil {
		return nil, err
	}

	out := make([]result.Dense, 0, req.NResults())
	keep, err := s.passingIDs(ctx, denseIDs(hits), req.Filters())
	if err != nil {
		return nil, err
	}
	for _, h := range hits {
		if !keep[h.ID()] {
			continue
		}
		out = append(out, h)
		if len(out) == req.NResults() {
			break
		}
	}
	return out, nil
}

// Similar ranks recipes nearest to the stored recipe's embedding, excluding
// the recipe itself. Recipes stored before vectors were persisted are
// re-embedded from their prepared text.
func (s *Service) Similar(ctx context.Context, id string, req *request.SimilarRequest) ([]result.Fused, error) {
	start := time.Now()

	hits, err := s.similar(ctx, id, req)

	metrics.SearchDuration.WithLabelValues("similar").Observe(time.Since(start).Seconds())
	if err != nil {
		metrics.SearchRequestsTotal.WithLabelValues("similar", "error").Inc()
		return nil, err
	}
	metrics.SearchRequestsTotal.WithLabelValues("similar", "success").Inc()
	return hits, nil
}

func (s *Service) similar(ctx context.Context, id string, req *request.SimilarRequest) ([]result.Fused, error) {
	rec, err := s.recipes.Get(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("load source recipe: %w", err)
	}

	vector := rec.Vector()
	if len(vector) == 0 {
		emb, embErr := s.embed.Embed(ctx, rec.EmbeddingText())
		if embErr != nil {
			return nil, fmt.Errorf("vectorize source recipe: %w", embErr)
		}
		domain.UsageFromContext(ctx).AddTokens(emb.TotalTokens)
		vector = emb.Embedding
	}

	dctx, cancel := context.WithTimeout(ctx, s.opts.DenseTimeout)
	defer cancel()

	// +1: сам рецепт почти наверняка в топе выдачи.
	fetch := (req.NResults() + 1) * s.opts.OversampleFactor
	raw, err := s.dense.Search(dctx, vector, fetch)
	if err != nil {
		return nil, domain.NewPathError("dense", err)
	}

	hits := make([]result.Dense, 0, len(raw))
	for _, h := range raw {
		if h.ID() == id {
			continue
		}
		hits = append(hits, h)
	}
	hits = aboveThreshold(hits, s.opts.MinSimilarity)

	fused := fuseRRF(nil, hits, request.DefaultWeight, request.DefaultWeight, s.opts.RRFK)
	return s.finalize(ctx, fused, req.Filters(), req.NResults())
}

// sparseHits queries the keyword index. A never-built index is a legal empty
// sparse result, so dense-only degradation stays possible.
func (s *Service) sparseHits(query string, topN int) ([]result.Sparse, error) {
	hits, err := s.sparse.Search(query, topN)
	if err != nil {
		if errors.Is(err, domain.ErrIndexNotBuilt) {
			return nil, nil
		}
		return nil, domain.NewPathError("sparse", err)
	}
	return hits, nil
}

// denseHits embeds the query and runs KNN, dropping hits below the
// similarity threshold.
func (s *Service) denseHits(ctx context.Context, query string, topK int) ([]result.Dense, error) {
	emb, err := s.embed.Embed(ctx, query)
	if err != nil {
		return nil, domain.NewPathError("dense", fmt.Errorf("vectorize query: %w", err))
	}
	domain.UsageFromContext(ctx).AddTokens(emb.TotalTokens)

	hits, err := s.dense.Search(ctx, emb.Embedding, topK)
	if err != nil {
		return nil, domain.NewPathError("dense", err)
	}
	return aboveThreshold(hits, s.opts.MinSimilarity), nil
}

// finalize attaches metadata snapshots, applies the post-filter in rank
// order, and truncates. Fused hits whose recipe vanished between retrieval
// and the metadata load are dropped.
func (s *Service) finalize(
	ctx context.Context, fused []result.Fused, f filter.RecipeFilter, n int,
) ([]result.Fused, error) {
	if len(fused) == 0 {
		return []result.Fused{}, nil
	}

	ids := make([]string, len(fused))
	for i := range fused {
		ids[i] = fused[i].ID()
	}
	metas, err := s.meta.GetMetadataMulti(ctx, ids)
	if err != nil {
		return nil, fmt.Errorf("load result metadata: %w", err)
	}

	out := make([]result.Fused, 0, n)
	for i := range fused {
		meta, ok := metas[fused[i].ID()]
		if !ok {
			continue
		}
		if !f.Passes(meta) {
			continue
		}
		out = append(out, fused[i].WithMetadata(meta))
		if len(out) == n {
			break
		}
	}
	return out, nil
}

// passingIDs loads metadata for the ids and reports which pass the filter.
// Vanished recipes never pass, even with no filter set.
func (s *Service) passingIDs(
	ctx context.Context, ids []string, f filter.RecipeFilter,
) (map[string]bool, error) {
	metas, err := s.meta.GetMetadataMulti(ctx, ids)
	if err != nil {
		return nil, fmt.Errorf("load result metadata: %w", err)
	}
	keep := make(map[string]bool, len(metas))
	for id, meta := range metas {
		if f.Passes(meta) {
			keep[id] = true
		}
	}
	return keep, nil
}

func aboveThreshold(hits []result.Dense, min float64) []result.Dense {
	if min <= 0 {
		return hits
	}
	kept := make([]result.Dense, 0, len(hits))
	for _, h := range hits {
		if h.Similarity() >= min {
			kept = append(kept, h)
		}
	}
	return kept
}

func sparseIDs(hits []result.Sparse) []string {
	ids := make([]string, len(hits))
	for i := range hits {
		ids[i] = hits[i].ID()
	}
	return ids
}

func denseIDs(hits []result.Dense) []string {
	ids := make([]string, len(hits))
	for i := range hits {
		ids[i] = hits[i].ID()
	}
	return ids
}
