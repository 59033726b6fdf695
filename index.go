package recipedex

import (
	"context"
	"fmt"
	"time"
)

// IndexStats describes one completed keyword index rebuild.
type IndexStats struct {
	Docs  int
	Terms int
	Took  time.Duration
}

// RebuildIndex rebuilds the in-process keyword index from the catalog right
// now instead of waiting for the debounced background rebuild.
func (c *Client) RebuildIndex(ctx context.Context) (_ IndexStats, err error) {
	start := time.Now()
	defer func() { c.obs.observe("rebuild_index", start, err) }()

	stats, err := c.indexer.Rebuild(ctx)
	if err != nil {
		return IndexStats{}, fmt.Errorf("rebuild index: %w", err)
	}
	return IndexStats{
		Docs:  stats.Docs,
		Terms: stats.Terms,
		Took:  stats.Took,
	}, nil
}
