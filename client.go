package recipedex

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/umami-labs/recipedex/internal/db"
	dbRedis "github.com/umami-labs/recipedex/internal/db/redis"
	dbValkey "github.com/umami-labs/recipedex/internal/db/valkey"
	"github.com/umami-labs/recipedex/internal/domain"
	dombatch "github.com/umami-labs/recipedex/internal/domain/batch"
	domrec "github.com/umami-labs/recipedex/internal/domain/recipe"
	"github.com/umami-labs/recipedex/internal/domain/search/request"
	"github.com/umami-labs/recipedex/internal/domain/search/result"
	"github.com/umami-labs/recipedex/internal/domain/search/token"
	"github.com/umami-labs/recipedex/internal/index/bm25"
	"github.com/umami-labs/recipedex/internal/repository/dense"
	reciperepo "github.com/umami-labs/recipedex/internal/repository/recipe"
	batchuc "github.com/umami-labs/recipedex/internal/usecase/batch"
	healthuc "github.com/umami-labs/recipedex/internal/usecase/health"
	indexeruc "github.com/umami-labs/recipedex/internal/usecase/indexer"
	recipeuc "github.com/umami-labs/recipedex/internal/usecase/recipe"
	searchuc "github.com/umami-labs/recipedex/internal/usecase/search"
	usageuc "github.com/umami-labs/recipedex/internal/usecase/usage"
)

const (
	defaultReadinessTimeout = 10 * time.Second
	defaultSearchCacheSize  = 512
)

// Внутренние интерфейсы для подмены в тестах.
type recipeUseCase interface {
	Upsert(ctx context.Context, rec *domrec.Recipe) (bool, error)
	Get(ctx context.Context, id string) (domrec.Recipe, error)
	List(ctx context.Context, cursor string, limit int) ([]domrec.Recipe, string, error)
	Delete(ctx context.Context, id string) error
	Count(ctx context.Context) (int, error)
}

type batchUseCase interface {
	Upsert(ctx context.Context, items []batchuc.UpsertItem) []dombatch.Result
	Delete(ctx context.Context, ids []string) []dombatch.Result
}

type searchUseCase interface {
	Search(ctx context.Context, req *request.Request) ([]result.Fused, error)
}

type similarUseCase interface {
	Similar(ctx context.Context, id string, req *request.SimilarRequest) ([]result.Fused, error)
}

type indexerUseCase interface {
	Rebuild(ctx context.Context) (indexeruc.Stats, error)
	Close()
}

// fullEmbedder is the pair of contracts the write and search paths need.
type fullEmbedder interface {
	domain.Embedder
	domain.BatchEmbedder
}

// Client is the recipedex entry point. It owns the database connection, the
// in-process keyword index and its background rebuilder.
type Client struct {
	store      db.Store
	indexer    indexerUseCase
	recipeSvc  recipeUseCase
	batchSvc   batchUseCase
	searchSvc  searchUseCase
	similarSvc similarUseCase
	healthSvc  healthUseCase
	usageSvc   usageUseCase
	obs        *observer
}

// New creates a recipedex Client and connects to the database. The provided
// context bounds the readiness check and the initial keyword index build.
func New(ctx context.Context, opts ...Option) (*Client, error) {
	cfg := &clientConfig{
		vectorDimensions: domain.DefaultVectorConfig().Dimensions,
	}
	for _, o := range opts {
		o.apply(cfg)
	}

	if len(cfg.addrs) == 0 {
		return nil, errors.New("recipedex: database address required (use WithValkey or WithRedis)")
	}

	store, err := createStore(cfg)
	if err != nil {
		return nil, err
	}

	if err := store.WaitForReady(ctx, defaultReadinessTimeout); err != nil {
		store.Close()
		return nil, fmt.Errorf("recipedex: database not ready: %w", err)
	}

	obs, err := newObserver(cfg.logger, cfg.metricsReg)
	if err != nil {
		store.Close()
		return nil, err
	}

	c, err := wireClient(ctx, store, cfg, obs)
	if err != nil {
		store.Close()
		return nil, err
	}
	return c, nil
}

func createStore(cfg *clientConfig) (db.Store, error) {
	switch cfg.driver {
	case "valkey":
		s, err := dbValkey.NewStore(dbValkey.Config{
			Addrs:    cfg.addrs,
			Password: cfg.password,
		})
		if err != nil {
			return nil, fmt.Errorf("recipedex: create valkey store: %w", err)
		}
		return s, nil
	case "redis":
		s, err := dbRedis.NewStore(dbRedis.Config{
			Addrs:    cfg.addrs,
			Password: cfg.password,
		})
		if err != nil {
			return nil, fmt.Errorf("recipedex: create redis store: %w", err)
		}
		return s, nil
	default:
		return nil, fmt.Errorf("recipedex: unknown driver %q", cfg.driver)
	}
}

func wireClient(ctx context.Context, store db.Store, cfg *clientConfig, obs *observer) (*Client, error) {
	vectorDim := cfg.vectorDimensions

	recipeRepo := reciperepo.New(store)
	denseRepo := dense.New(store, vectorDim)
	if cfg.hnswM > 0 || cfg.hnswEFConstruct > 0 {
		denseRepo = denseRepo.WithHNSWParams(cfg.hnswM, cfg.hnswEFConstruct)
	}
	if err := denseRepo.EnsureIndex(ctx); err != nil {
		return nil, fmt.Errorf("recipedex: ensure vector index: %w", err)
	}

	// Embedder: noop если не задан (каждый upsert и dense-запрос вернёт ошибку).
	var domEmb fullEmbedder = noopEmbedder{}
	if cfg.embedder != nil {
		domEmb = &embedderAdapter{inner: cfg.embedder}
	}

	tk := token.New(0, token.DefaultStopwords())
	idx := bm25.New(bm25.Params{K1: cfg.bm25K1, B: cfg.bm25B}, tk)

	searchSvc := searchuc.New(
		idx, denseRepo, recipeRepo, recipeRepo, domEmb,
		searchuc.Options{MinSimilarity: cfg.minSimilarity},
		zap.NewNop(),
	)

	cacheSize := cfg.searchCacheSize
	if cacheSize <= 0 {
		cacheSize = defaultSearchCacheSize
	}
	searcher, err := searchuc.NewCachedSearcher(searchSvc, cacheSize, cfg.searchCacheTTL)
	if err != nil {
		return nil, fmt.Errorf("recipedex: create search cache: %w", err)
	}

	indexer, err := indexeruc.New(recipeRepo, idx, searcher, indexeruc.Options{}, zap.NewNop())
	if err != nil {
		return nil, fmt.Errorf("recipedex: create index rebuilder: %w", err)
	}
	if _, err := indexer.Rebuild(ctx); err != nil {
		indexer.Close()
		return nil, fmt.Errorf("recipedex: initial index build: %w", err)
	}
	indexer.Start()

	recipeSvc := recipeuc.New(recipeRepo, domEmb, indexer, vectorDim)
	batchSvc := batchuc.New(recipeRepo, recipeRepo, domEmb, indexer, vectorDim)
	if cfg.maxBatchSize > 0 {
		batchSvc = batchSvc.WithMaxBatchSize(cfg.maxBatchSize)
	}

	// The health probe for embeddings is optional and only available when
	// the user's embedder knows how to check itself.
	var embHealth healthuc.EmbeddingChecker
	if hc, ok := cfg.embedder.(healthuc.EmbeddingChecker); ok {
		embHealth = hc
	}

	return &Client{
		store:      store,
		indexer:    indexer,
		recipeSvc:  recipeSvc,
		batchSvc:   batchSvc,
		searchSvc:  searcher,
		similarSvc: searchSvc,
		healthSvc:  healthuc.New(store, idx, embHealth),
		usageSvc:   usageuc.New(nil), // nil = unlimited mode (no budget tracking in the client)
		obs:        obs,
	}, nil
}

// Close stops the background index rebuilder and releases the database
// connection. The rebuilder goes first: it reads from the store.
func (c *Client) Close() {
	if c.indexer != nil {
		c.indexer.Close()
	}
	if c.store != nil {
		c.store.Close()
	}
}

// Ping checks database connectivity.
func (c *Client) Ping(ctx context.Context) (err error) {
	start := time.Now()
	defer func() { c.obs.observe("ping", start, err) }()

	if err = c.store.Ping(ctx); err != nil {
		return fmt.Errorf("ping: %w", err)
	}
	return nil
}

// Recipes returns the recipe catalog service.
func (c *Client) Recipes() *RecipeService {
	return &RecipeService{
		svc:   c.recipeSvc,
		batch: c.batchSvc,
		obs:   c.obs,
	}
}

// embedderAdapter wraps the public Embedder to satisfy the internal
// embedding contracts. Batch calls use the provider's native batch API when
// it has one and fall back to sequential single embeds otherwise.
type embedderAdapter struct {
	inner Embedder
}

func (a *embedderAdapter) Embed(ctx context.Context, text string) (domain.EmbeddingResult, error) {
	r, err := a.inner.Embed(ctx, text)
	if err != nil {
		return domain.EmbeddingResult{}, fmt.Errorf("embed: %w", err)
	}
	return domain.EmbeddingResult{
		Embedding:    r.Embedding,
		PromptTokens: r.PromptTokens,
		TotalTokens:  r.TotalTokens,
	}, nil
}

func (a *embedderAdapter) BatchEmbed(ctx context.Context, texts []string) (domain.BatchEmbeddingResult, error) {
	if be, ok := a.inner.(BatchEmbedder); ok {
		r, err := be.BatchEmbed(ctx, texts)
		if err != nil {
			return domain.BatchEmbeddingResult{}, fmt.Errorf("batch embed: %w", err)
		}
		return domain.BatchEmbeddingResult{
			Embeddings:   r.Embeddings,
			PromptTokens: r.PromptTokens,
			TotalTokens:  r.TotalTokens,
		}, nil
	}
	return domain.BatchFallback(ctx, a, texts)
}

// noopEmbedder returns an error on every call (used when no embedder is
// configured).
type noopEmbedder struct{}

func (noopEmbedder) Embed(_ context.Context, _ string) (domain.EmbeddingResult, error) {
	return domain.EmbeddingResult{}, errors.New(
		"recipedex: embedder not configured (use WithEmbedder)",
	)
}

func (noopEmbedder) BatchEmbed(_ context.Context, _ []string) (domain.BatchEmbeddingResult, error) {
	return domain.BatchEmbeddingResult{}, errors.New(
		"recipedex: embedder not configured (use WithEmbedder)",
	)
}
