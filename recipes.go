package recipedex

import (
	"context"
	"fmt"
	"time"

	batchuc "github.com/umami-labs/recipedex/internal/usecase/batch"
)

// RecipeService manages the recipe catalog.
type RecipeService struct {
	svc   recipeUseCase
	batch batchUseCase
	obs   *observer
}

// Upsert creates or updates a recipe. Returns true if created. The recipe
// is embedded and the keyword index is scheduled for a rebuild.
func (s *RecipeService) Upsert(ctx context.Context, r Recipe) (created bool, err error) {
	start := time.Now()
	defer func() { s.obs.observe("recipe_upsert", start, err) }()

	rec, err := toInternalRecipe(r)
	if err != nil {
		return false, fmt.Errorf("upsert: %w", err)
	}
	created, err = s.svc.Upsert(ctx, &rec)
	if err != nil {
		return false, fmt.Errorf("upsert: %w", err)
	}
	return created, nil
}

// Get retrieves a recipe by ID.
func (s *RecipeService) Get(ctx context.Context, id string) (_ Recipe, err error) {
	start := time.Now()
	defer func() { s.obs.observe("recipe_get", start, err) }()

	rec, err := s.svc.Get(ctx, id)
	if err != nil {
		return Recipe{}, fmt.Errorf("get recipe: %w", err)
	}
	return fromInternalRecipe(rec), nil
}

// List returns a paginated page of recipes. An empty cursor starts from the
// beginning; limit <= 0 uses the default page size.
func (s *RecipeService) List(ctx context.Context, cursor string, limit int) (_ ListResult, err error) {
	start := time.Now()
	defer func() { s.obs.observe("recipe_list", start, err) }()

	recs, next, err := s.svc.List(ctx, cursor, limit)
	if err != nil {
		return ListResult{}, fmt.Errorf("list recipes: %w", err)
	}
	out := make([]Recipe, len(recs))
	for i, rec := range recs {
		out[i] = fromInternalRecipe(rec)
	}
	return ListResult{Recipes: out, NextCursor: next}, nil
}

// Delete removes a recipe by ID.
func (s *RecipeService) Delete(ctx context.Context, id string) (err error) {
	start := time.Now()
	defer func() { s.obs.observe("recipe_delete", start, err) }()

	if err = s.svc.Delete(ctx, id); err != nil {
		return fmt.Errorf("delete recipe: %w", err)
	}
	return nil
}

// Count returns the number of recipes in the catalog.
func (s *RecipeService) Count(ctx context.Context) (_ int, err error) {
	start := time.Now()
	defer func() { s.obs.observe("recipe_count", start, err) }()

	n, err := s.svc.Count(ctx)
	if err != nil {
		return 0, fmt.Errorf("count: %w", err)
	}
	return n, nil
}

// BatchUpsert creates or updates recipes in batch, one result per item in
// input order. Items with an empty ID are assigned a generated one; the ID
// is reported in the result.
func (s *RecipeService) BatchUpsert(ctx context.Context, recipes []Recipe) []BatchResult {
	start := time.Now()
	defer func() { s.obs.observe("batch_upsert", start, nil) }()

	items := make([]batchuc.UpsertItem, len(recipes))
	for i, r := range recipes {
		items[i] = batchuc.UpsertItem{
			ID:              r.ID,
			Title:           r.Title,
			Difficulty:      string(r.Difficulty),
			PrepTimeMinutes: r.PrepTimeMinutes,
			CookTimeMinutes: r.CookTimeMinutes,
			Servings:        r.Servings,
			Ingredients:     r.Ingredients,
			Instructions:    r.Instructions,
		}
	}
	return fromBatchResults(s.batch.Upsert(ctx, items))
}

// BatchDelete removes recipes by IDs, one result per ID in input order.
func (s *RecipeService) BatchDelete(ctx context.Context, ids []string) []BatchResult {
	start := time.Now()
	defer func() { s.obs.observe("batch_delete", start, nil) }()

	return fromBatchResults(s.batch.Delete(ctx, ids))
}
