// Package indexer rebuilds the in-process keyword index from the recipe
// catalog. A rebuild is always full: scan every recipe, tokenize on a
// worker pool, swap the snapshot atomically. Catalog writes mark the
// index stale; a background loop folds write bursts into one debounced
// rebuild.
package indexer

import (
	"context"
	"fmt"
	"runtime"
	"sync"
	"time"

	"github.com/panjf2000/ants/v2"
	"go.uber.org/zap"

	"github.com/umami-labs/recipedex/internal/index/bm25"
	"github.com/umami-labs/recipedex/internal/metrics"
)

// DefaultDebounce is the quiet period after the last catalog write before
// an automatic rebuild starts.
const DefaultDebounce = 2 * time.Second

// Options tune the rebuilder. Zero values fall back to defaults.
type Options struct {
	PoolSize int           // tokenization workers, default NumCPU/2
	Debounce time.Duration // quiet period before an automatic rebuild
}

// Stats describes one completed rebuild.
type Stats struct {
	Docs  int
	Terms int
	Took  time.Duration
}

// Service owns the keyword index lifecycle.
type Service struct {
	source   Source
	index    Index
	inval    Invalidator
	pool     *ants.Pool
	logger   *zap.Logger
	debounce time.Duration

	dirty chan struct{}
	done  chan struct{}
	wg    sync.WaitGroup
	once  sync.Once

	mu sync.Mutex // один rebuild за раз
}

// New creates a rebuilder. A nil invalidator disables cache purging.
func New(source Source, index Index, inval Invalidator, opts Options, logger *zap.Logger) (*Service, error) {
	if logger == nil {
		logger = zap.NewNop()
	}

	size := opts.PoolSize
	if size < 1 {
		size = runtime.NumCPU() / 2
		if size < 1 {
			size = 1
		}
	}
	pool, err := ants.NewPool(size)
	if err != nil {
		return nil, fmt.Errorf("create tokenizer pool: %w", err)
	}

	debounce := opts.Debounce
	if debounce <= 0 {
		debounce = DefaultDebounce
	}

	return &Service{
		source:   source,
		index:    index,
		inval:    inval,
		pool:     pool,
		logger:   logger,
		debounce: debounce,
		dirty:    make(chan struct{}, 1),
		done:     make(chan struct{}),
	}, nil
}

// Start launches the background debounce loop. Call Close to stop it.
func (s *Service) Start() {
	s.wg.Add(1)
	go s.run()
}

func (s *Service) run() {
	defer s.wg.Done()

	timer := time.NewTimer(s.debounce)
	timer.Stop() // armed only after the first dirty mark

	for {
		select {
		case <-s.dirty:
			timer.Reset(s.debounce)
		case <-timer.C:
			if _, err := s.Rebuild(context.Background()); err != nil {
				s.logger.Error("background index rebuild failed", zap.Error(err))
			}
		case <-s.done:
			timer.Stop()
			return
		}
	}
}

// MarkStale schedules a debounced rebuild. Safe for concurrent use;
// bursts collapse into a single rebuild.
func (s *Service) MarkStale() {
	select {
	case s.dirty <- struct{}{}:
	default: // уже помечено
	}
}

// Rebuild scans the catalog, tokenizes recipes on the worker pool and
// swaps in the fresh snapshot. Queries keep hitting the previous snapshot
// until the swap, and keep it if the rebuild fails.
func (s *Service) Rebuild(ctx context.Context) (Stats, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	start := time.Now()

	recs, err := s.source.All(ctx)
	if err != nil {
		metrics.IndexRebuildsTotal.WithLabelValues("error").Inc()
		return Stats{}, fmt.Errorf("load catalog: %w", err)
	}

	tdocs := make([]bm25.TokenizedDoc, len(recs))
	var wg sync.WaitGroup
	for i := range recs {
		doc := bm25.Doc{ID: recs[i].ID(), Title: recs[i].Title(), Body: recs[i].Body()}
		wg.Add(1)
		if submitErr := s.pool.Submit(func() {
			defer wg.Done()
			tdocs[i] = bm25.TokenizedDoc{ID: doc.ID, Tokens: s.index.Tokenize(doc)}
		}); submitErr != nil {
			// Pool released mid-shutdown: tokenize inline.
			tdocs[i] = bm25.TokenizedDoc{ID: doc.ID, Tokens: s.index.Tokenize(doc)}
			wg.Done()
		}
	}
	wg.Wait()

	if err := s.index.BuildTokenized(tdocs); err != nil {
		metrics.IndexRebuildsTotal.WithLabelValues("error").Inc()
		return Stats{}, fmt.Errorf("build index: %w", err)
	}

	if s.inval != nil {
		s.inval.Purge()
	}

	stats := Stats{
		Docs:  s.index.DocCount(),
		Terms: s.index.TermCount(),
		Took:  time.Since(start),
	}
	metrics.IndexRebuildsTotal.WithLabelValues("success").Inc()
	metrics.IndexRebuildDuration.Observe(stats.Took.Seconds())
	metrics.IndexDocuments.Set(float64(stats.Docs))

	s.logger.Info("keyword index rebuilt",
		zap.Int("docs", stats.Docs),
		zap.Int("terms", stats.Terms),
		zap.Duration("took", stats.Took),
	)
	return stats, nil
}

// Close stops the background loop and releases the worker pool.
func (s *Service) Close() {
	s.once.Do(func() {
		close(s.done)
		s.wg.Wait()
		s.pool.Release()
	})
}
