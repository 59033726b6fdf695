package recipedex

import (
	"fmt"

	dombatch "github.com/umami-labs/recipedex/internal/domain/batch"
	domrec "github.com/umami-labs/recipedex/internal/domain/recipe"
	"github.com/umami-labs/recipedex/internal/domain/search/filter"
	"github.com/umami-labs/recipedex/internal/domain/search/result"
)

func toInternalRecipe(r Recipe) (domrec.Recipe, error) {
	rec, err := domrec.New(
		r.ID, r.Title, domrec.Difficulty(r.Difficulty),
		r.PrepTimeMinutes, r.CookTimeMinutes, r.Servings,
		r.Ingredients, r.Instructions,
	)
	if err != nil {
		return domrec.Recipe{}, fmt.Errorf("validate recipe: %w", err)
	}
	return rec, nil
}

func fromInternalRecipe(rec domrec.Recipe) Recipe {
	return Recipe{
		ID:              rec.ID(),
		Title:           rec.Title(),
		Difficulty:      Difficulty(rec.Difficulty()),
		PrepTimeMinutes: rec.PrepTimeMinutes(),
		CookTimeMinutes: rec.CookTimeMinutes(),
		Servings:        rec.Servings(),
		Ingredients:     rec.Ingredients(),
		Instructions:    rec.Instructions(),
	}
}

func toInternalFilter(f Filters) (filter.RecipeFilter, error) {
	rf, err := filter.New(
		domrec.Difficulty(f.Difficulty),
		f.PrepTimeMin, f.PrepTimeMax,
		f.CookTimeMin, f.CookTimeMax,
		f.ServingsMin, f.ServingsMax,
		f.Dietary,
		f.MaxTotalTime,
	)
	if err != nil {
		return filter.RecipeFilter{}, fmt.Errorf("validate filters: %w", err)
	}
	return rf, nil
}

func fromFusedResults(results []result.Fused) []Hit {
	hits := make([]Hit, len(results))
	for i := range results {
		f := &results[i]
		h := Hit{
			ID:          f.ID(),
			Score:       f.CombinedScore(),
			SparseScore: f.SparseScore(),
			DenseScore:  f.DenseScore(),
			SparseRank:  f.SparseRank(),
			DenseRank:   f.DenseRank(),
		}
		if f.HasMetadata() {
			m := f.Metadata()
			h.Metadata = &HitMetadata{
				Title:            m.Title,
				Difficulty:       Difficulty(m.Difficulty),
				PrepTimeMinutes:  m.PrepTimeMinutes,
				CookTimeMinutes:  m.CookTimeMinutes,
				TotalTimeMinutes: m.TotalTimeMinutes(),
				Servings:         m.Servings,
				IngredientCount:  m.IngredientCount,
				InstructionCount: m.InstructionCount,
			}
		}
		hits[i] = h
	}
	return hits
}

func fromBatchResults(results []dombatch.Result) []BatchResult {
	out := make([]BatchResult, len(results))
	for i, r := range results {
		out[i] = BatchResult{
			ID:  r.ID(),
			OK:  r.Status() == dombatch.StatusOK,
			Err: r.Err(),
		}
	}
	return out
}
