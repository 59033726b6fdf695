// Package recipe persists recipes as JSON documents in Redis/Valkey.
package recipe

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/umami-labs/recipedex/internal/db"
	"github.com/umami-labs/recipedex/internal/domain"
	domrec "github.com/umami-labs/recipedex/internal/domain/recipe"
)

// store is the consumer interface for recipe persistence (ISP).
type store interface {
	JSONSet(ctx context.Context, key, path string, data []byte) error
	JSONSetMulti(ctx context.Context, items []db.JSONSetItem) error
	JSONGet(ctx context.Context, key string, paths ...string) ([]byte, error)
	JSONGetMulti(ctx context.Context, keys []string, path string) ([][]byte, error)
	Del(ctx context.Context, key string) error
	Exists(ctx context.Context, key string) (bool, error)
	Scan(ctx context.Context, pattern string) ([]string, error)
	SearchList(ctx context.Context, index, query string, offset, limit int, fields []string) (*db.SearchResult, error)
	SearchCount(ctx context.Context, index, query string) (int, error)
}

// Repo implements recipe storage over a JSON document store.
type Repo struct {
	store store
}

// New creates a recipe repository.
func New(s store) *Repo {
	return &Repo{store: s}
}

// Upsert creates or updates a recipe. Returns true if created.
func (r *Repo) Upsert(ctx context.Context, rec *domrec.Recipe) (bool, error) {
	key := recipeKey(rec.ID())
	data, err := json.Marshal(buildJSONDoc(rec))
	if err != nil {
		return false, fmt.Errorf("marshal recipe: %w", err)
	}

	exists, err := r.store.Exists(ctx, key)
	if err != nil {
		return false, fmt.Errorf("check exists %s: %w", key, err)
	}

	if err := r.store.JSONSet(ctx, key, "$", data); err != nil {
		return false, fmt.Errorf("json.set %s: %w", key, err)
	}

	return !exists, nil
}

// UpsertMulti stores a batch of recipes in one pipelined round trip.
// Per-recipe validation happens upstream; here the batch fails on the
// first write error.
func (r *Repo) UpsertMulti(ctx context.Context, recs []*domrec.Recipe) error {
	if len(recs) == 0 {
		return nil
	}

	items := make([]db.JSONSetItem, 0, len(recs))
	for _, rec := range recs {
		data, err := json.Marshal(buildJSONDoc(rec))
		if err != nil {
			return fmt.Errorf("marshal recipe %s: %w", rec.ID(), err)
		}
		items = append(items, db.JSONSetItem{Key: recipeKey(rec.ID()), Path: "$", Data: data})
	}

	if err := r.store.JSONSetMulti(ctx, items); err != nil {
		return fmt.Errorf("json.set batch: %w", err)
	}
	return nil
}

// Get returns a recipe by ID.
func (r *Repo) Get(ctx context.Context, id string) (domrec.Recipe, error) {
	key := recipeKey(id)
	raw, err := r.store.JSONGet(ctx, key, "$")
	if err != nil {
		if errors.Is(err, db.ErrKeyNotFound) {
			return domrec.Recipe{}, domain.ErrRecipeNotFound
		}
		return domrec.Recipe{}, fmt.Errorf("json.get %s: %w", key, err)
	}
	return parseJSONGetResult(id, raw)
}

// List returns recipes with cursor-based pagination.
func (r *Repo) List(ctx context.Context, cursor string, limit int) ([]domrec.Recipe, string, error) {
	if limit <= 0 {
		limit = 20
	}

	offset := 0
	if cursor != "" {
		parsed, err := strconv.Atoi(cursor)
		if err != nil || parsed < 0 {
			return nil, "", fmt.Errorf("cursor %q: %w", cursor, domain.ErrInvalidRequest)
		}
		offset = parsed
	}

	// Fetch one extra row to decide whether a next page exists.
	fetchCount := limit + 1

	result, err := r.store.SearchList(ctx, indexName(), "*", offset, fetchCount, []string{"$"})
	if err != nil {
		return nil, "", fmt.Errorf("list recipes: %w", err)
	}

	if result == nil || result.Total == 0 {
		return nil, "", nil
	}

	recs := make([]domrec.Recipe, 0, limit)
	for i, entry := range result.Entries {
		if i >= limit {
			break
		}
		id := extractRecipeID(entry.Key)
		rec, err := parseDocJSON(id, []byte(entry.Fields["$"]))
		if err != nil {
			// Skip rows that fail to decode rather than failing the page.
			continue
		}
		recs = append(recs, rec)
	}

	var nextCursor string
	if len(result.Entries) > limit {
		nextCursor = strconv.Itoa(offset + limit)
	}

	return recs, nextCursor, nil
}

// Count returns the number of stored recipes.
func (r *Repo) Count(ctx context.Context) (int, error) {
	n, err := r.store.SearchCount(ctx, indexName(), "*")
	if err != nil {
		return 0, fmt.Errorf("count recipes: %w", err)
	}
	return n, nil
}

// Delete removes a recipe.
func (r *Repo) Delete(ctx context.Context, id string) error {
	key := recipeKey(id)

	exists, err := r.store.Exists(ctx, key)
	if err != nil {
		return fmt.Errorf("check exists %s: %w", key, err)
	}
	if !exists {
		return domain.ErrRecipeNotFound
	}

	if err := r.store.Del(ctx, key); err != nil {
		return fmt.Errorf("del %s: %w", key, err)
	}
	return nil
}

// All returns every stored recipe. Used for full index rebuilds; keys are
// scanned first, then documents fetched in one pipelined round trip.
func (r *Repo) All(ctx context.Context) ([]domrec.Recipe, error) {
	keys, err := r.store.Scan(ctx, keyPattern())
	if err != nil {
		return nil, fmt.Errorf("scan recipes: %w", err)
	}
	if len(keys) == 0 {
		return nil, nil
	}

	docs, err := r.store.JSONGetMulti(ctx, keys, "$")
	if err != nil {
		return nil, fmt.Errorf("fetch recipes: %w", err)
	}

	recs := make([]domrec.Recipe, 0, len(keys))
	for i, raw := range docs {
		if raw == nil {
			continue // удалён между SCAN и GET
		}
		rec, err := parseJSONGetResult(extractRecipeID(keys[i]), raw)
		if err != nil {
			continue
		}
		recs = append(recs, rec)
	}
	return recs, nil
}

// GetMetadataMulti fetches the filterable metadata for a set of recipe IDs
// in one round trip. IDs whose recipe no longer exists are absent from the
// result map, which downstream filtering treats as an exclusion.
func (r *Repo) GetMetadataMulti(ctx context.Context, ids []string) (map[string]domrec.Metadata, error) {
	if len(ids) == 0 {
		return map[string]domrec.Metadata{}, nil
	}

	keys := make([]string, len(ids))
	for i, id := range ids {
		keys[i] = recipeKey(id)
	}

	docs, err := r.store.JSONGetMulti(ctx, keys, "$")
	if err != nil {
		return nil, fmt.Errorf("fetch metadata: %w", err)
	}

	out := make(map[string]domrec.Metadata, len(ids))
	for i, raw := range docs {
		if raw == nil {
			continue
		}
		doc, err := parseJSONGetDoc(raw)
		if err != nil {
			continue
		}
		out[ids[i]] = doc.toMetadata()
	}
	return out, nil
}

func recipeKey(id string) string {
	return fmt.Sprintf("%srecipe:%s", domain.KeyPrefix, id)
}

func indexName() string {
	return fmt.Sprintf("%srecipe:idx", domain.KeyPrefix)
}

func keyPattern() string {
	return fmt.Sprintf("%srecipe:*", domain.KeyPrefix)
}

func extractRecipeID(key string) string {
	return strings.TrimPrefix(key, domain.KeyPrefix+"recipe:")
}
