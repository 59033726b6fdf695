package main

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/umami-labs/recipedex/internal/config"
	"github.com/umami-labs/recipedex/internal/db"
	dbRedis "github.com/umami-labs/recipedex/internal/db/redis"
	dbValkey "github.com/umami-labs/recipedex/internal/db/valkey"
	"github.com/umami-labs/recipedex/internal/domain"
	"github.com/umami-labs/recipedex/internal/domain/search/token"
	"github.com/umami-labs/recipedex/internal/index/bm25"
	"github.com/umami-labs/recipedex/internal/metrics"
	budgetrepo "github.com/umami-labs/recipedex/internal/repository/budget"
	"github.com/umami-labs/recipedex/internal/repository/dense"
	"github.com/umami-labs/recipedex/internal/repository/embcache"
	reciperepo "github.com/umami-labs/recipedex/internal/repository/recipe"
	openaiEmb "github.com/umami-labs/recipedex/internal/transport/openai"
	batchuc "github.com/umami-labs/recipedex/internal/usecase/batch"
	embeddinguc "github.com/umami-labs/recipedex/internal/usecase/embedding"
	healthuc "github.com/umami-labs/recipedex/internal/usecase/health"
	indexeruc "github.com/umami-labs/recipedex/internal/usecase/indexer"
	recipeuc "github.com/umami-labs/recipedex/internal/usecase/recipe"
	searchuc "github.com/umami-labs/recipedex/internal/usecase/search"
	usageuc "github.com/umami-labs/recipedex/internal/usecase/usage"
)

// Budget counters outlive their period so a restart mid-window resumes
// from the persisted spend instead of zero.
const (
	budgetDailyTTL = 48 * time.Hour
	budgetMonthTTL = 62 * 24 * time.Hour
)

// fullEmbedder is what the write path needs: single and batch vectorization.
// Every decorator in the chain implements both.
type fullEmbedder interface {
	domain.Embedder
	domain.BatchEmbedder
}

// app owns every connection and service the subcommands run on.
type app struct {
	cfg    config.Config
	logger *zap.Logger

	store db.Store
	dense *dense.Repo
	index *bm25.Index

	searcher  *searchuc.CachedSearcher
	searchSvc *searchuc.Service
	recipes   *recipeuc.Service
	batch     *batchuc.Service
	indexer   *indexeruc.Service
	usage     *usageuc.Service
	health    *healthuc.Service
}

// newApp wires the full service graph: store, embedder chain, repositories,
// use cases. The caller owns Close.
func newApp(ctx context.Context, cfg config.Config, logger *zap.Logger) (*app, error) {
	store, err := openStore(cfg.Database)
	if err != nil {
		return nil, fmt.Errorf("create database store: %w", err)
	}

	readiness := time.Duration(cfg.Database.ReadinessTimeout) * time.Second
	if err := store.WaitForReady(ctx, readiness); err != nil {
		store.Close()
		return nil, fmt.Errorf("database not ready: %w", err)
	}
	logger.Info("Connected to database",
		zap.String("driver", cfg.Database.Driver),
		zap.Strings("addrs", cfg.Database.Addrs),
	)

	// Register metrics explicitly (no init())
	metrics.RegisterEmbeddingMetrics()
	metrics.RegisterSearchMetrics()
	metrics.RegisterIndexMetrics()

	vecCfg, provName := pickVectorizer(cfg.Embedding.Vectorizers)
	provCfg := cfg.Embedding.Providers[provName]

	// Single BudgetTracker shared across both embedder chains and the
	// usage service.
	budget := newBudgetTracker(ctx, provName, provCfg.Budget, store, logger)

	// Pass nil interface (not typed nil pointer!) if budget is not configured.
	// Go gotcha: (*BudgetTracker)(nil) wrapped in BudgetChecker != nil.
	var budgetChecker embeddinguc.BudgetChecker
	if budget != nil {
		budgetChecker = budget
	}

	// Base provider is shared by both chains; it also serves as the
	// readiness probe for the embedding backend.
	base := openaiEmb.NewEmbedder(&openaiEmb.Config{
		APIKey:     provCfg.APIKey,
		BaseURL:    provCfg.BaseURL,
		Model:      vecCfg.Model,
		Dimensions: vecCfg.Dimensions,
		Provider:   provName,
		Logger:     logger,
	})
	docEmbedder := buildEmbedder(base, vecCfg.DocumentInstruction, provName, vecCfg.Model, store, budgetChecker, logger)
	queryEmbedder := buildEmbedder(base, vecCfg.QueryInstruction, provName, vecCfg.Model, store, budgetChecker, logger)
	logger.Info("Embedders created",
		zap.String("provider", provName),
		zap.String("model", vecCfg.Model),
		zap.Int("dimensions", vecCfg.Dimensions),
	)

	vectorDim := vecCfg.Dimensions
	if vectorDim == 0 {
		vectorDim = domain.DefaultVectorConfig().Dimensions
	}

	recipeRepo := reciperepo.New(store)
	denseRepo := dense.New(store, vectorDim).
		WithHNSWParams(cfg.Index.HNSWM, cfg.Index.HNSWEFConstruct)
	if err := denseRepo.EnsureIndex(ctx); err != nil {
		store.Close()
		return nil, fmt.Errorf("ensure vector index: %w", err)
	}

	stopwords := cfg.Search.Stopwords
	if len(stopwords) == 0 {
		stopwords = token.DefaultStopwords()
	}
	tk := token.New(cfg.Search.MinKeywordLength, stopwords)
	idx := bm25.New(bm25.Params{K1: cfg.Search.BM25K1, B: cfg.Search.BM25B}, tk)

	searchSvc := searchuc.New(idx, denseRepo, recipeRepo, recipeRepo, queryEmbedder,
		searchuc.Options{
			MinSimilarity:    cfg.Search.MinSimilarity,
			OversampleFactor: cfg.Search.OversampleFactor,
			DenseTimeout:     time.Duration(cfg.Search.DenseTimeoutMs) * time.Millisecond,
			RRFK:             cfg.Search.RRFK,
		}, logger)
	searcher, err := searchuc.NewCachedSearcher(searchSvc,
		cfg.Search.CacheSize, time.Duration(cfg.Search.CacheTTLSec)*time.Second)
	if err != nil {
		store.Close()
		return nil, fmt.Errorf("create search cache: %w", err)
	}

	indexer, err := indexeruc.New(recipeRepo, idx, searcher, indexeruc.Options{
		PoolSize: cfg.Index.TokenizerPoolSize,
		Debounce: time.Duration(cfg.Index.RebuildDebounceMs) * time.Millisecond,
	}, logger)
	if err != nil {
		store.Close()
		return nil, fmt.Errorf("create indexer: %w", err)
	}

	recipeSvc := recipeuc.New(recipeRepo, docEmbedder, indexer, vectorDim).
		WithPagination(cfg.Index.DefaultPageSize, cfg.Index.MaxPageSize)
	batchSvc := batchuc.New(recipeRepo, recipeRepo, docEmbedder, indexer, vectorDim).
		WithMaxBatchSize(cfg.Index.MaxBatchSize)

	var budgetReader usageuc.BudgetReader
	if budget != nil {
		budgetReader = budget
	}

	return &app{
		cfg:       cfg,
		logger:    logger,
		store:     store,
		dense:     denseRepo,
		index:     idx,
		searcher:  searcher,
		searchSvc: searchSvc,
		recipes:   recipeSvc,
		batch:     batchSvc,
		indexer:   indexer,
		usage:     usageuc.New(budgetReader),
		health:    healthuc.New(store, idx, base),
	}, nil
}

// buildIndex runs the boot-time keyword index build so readiness does not
// depend on the first catalog write.
func (a *app) buildIndex(ctx context.Context) error {
	stats, err := a.indexer.Rebuild(ctx)
	if err != nil {
		return fmt.Errorf("initial index build: %w", err)
	}
	a.logger.Info("Keyword index built",
		zap.Int("docs", stats.Docs),
		zap.Int("terms", stats.Terms),
		zap.Duration("took", stats.Took),
	)
	return nil
}

// Close stops the rebuild worker before the store it reads from.
func (a *app) Close() {
	a.indexer.Close()
	a.store.Close()
}

func openStore(cfg config.DatabaseConfig) (db.Store, error) {
	switch cfg.Driver {
	case "", "valkey":
		return dbValkey.NewStore(dbValkey.Config{
			Addrs:    cfg.Addrs,
			Password: cfg.Password,
		})
	case "redis":
		return dbRedis.NewStore(dbRedis.Config{
			Addrs:    cfg.Addrs,
			Password: cfg.Password,
		})
	default:
		return nil, fmt.Errorf("unknown database driver %q", cfg.Driver)
	}
}

// pickVectorizer prefers the conventional "recipes" entry and falls back to
// the first configured one.
func pickVectorizer(vectorizers map[string]config.VectorizerConfig) (config.VectorizerConfig, string) {
	if vc, ok := vectorizers["recipes"]; ok {
		return vc, vc.Provider
	}
	for _, vc := range vectorizers {
		return vc, vc.Provider
	}
	return config.VectorizerConfig{}, ""
}

func newBudgetTracker(
	ctx context.Context,
	provider string,
	cfg config.BudgetConfig,
	store db.Store,
	logger *zap.Logger,
) *embeddinguc.BudgetTracker {
	if cfg.DailyTokenLimit <= 0 && cfg.MonthlyTokenLimit <= 0 {
		return nil
	}
	action := embeddinguc.BudgetActionWarn
	if cfg.Action == "reject" {
		action = embeddinguc.BudgetActionReject
	}
	bt := embeddinguc.NewBudgetTracker(provider, cfg.DailyTokenLimit, cfg.MonthlyTokenLimit, action, logger)
	// Connect persistence store — loads current counters from DB.
	return bt.WithStore(ctx, budgetrepo.New(store, budgetDailyTTL, budgetMonthTTL))
}

// buildEmbedder assembles the decorator chain: base -> cached -> instrumented
// -> instruction. The instruction prefix sits outermost so the cache key
// includes it.
func buildEmbedder(
	base *openaiEmb.Embedder,
	instruction, provName, model string,
	store db.Store,
	budget embeddinguc.BudgetChecker,
	logger *zap.Logger,
) fullEmbedder {
	var embedder fullEmbedder = base
	if store != nil {
		embedder = embcache.New(embedder, store, 0, metrics.EmbeddingCacheTotal, logger)
	}
	embedder = embeddinguc.NewInstrumentedEmbedder(embedder, provName, model, budget, logger)
	if instruction != "" {
		return domain.NewInstructionEmbedder(embedder, instruction)
	}
	return embedder
}
