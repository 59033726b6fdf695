package recipe

import (
	"bytes"
	"encoding/json"
	"fmt"

	"github.com/umami-labs/recipedex/internal/domain"
	domrec "github.com/umami-labs/recipedex/internal/domain/recipe"
)

// jsonDoc is the stored JSON shape of a recipe. Field names line up with the
// search index schema paths ($.vector, $.difficulty, $.prep_time_minutes).
// Numeric fields are pointers so records written without them stay
// distinguishable from zeros on the read side.
type jsonDoc struct {
	ID              string    `json:"id"`
	Title           string    `json:"title"`
	Difficulty      string    `json:"difficulty"`
	PrepTimeMinutes *int      `json:"prep_time_minutes,omitempty"`
	CookTimeMinutes *int      `json:"cook_time_minutes,omitempty"`
	Servings        *int      `json:"servings,omitempty"`
	Ingredients     []string  `json:"ingredients"`
	Instructions    []string  `json:"instructions"`
	Vector          []float32 `json:"vector,omitempty"`
}

// buildJSONDoc converts a domain Recipe into its stored form.
func buildJSONDoc(rec *domrec.Recipe) jsonDoc {
	prep, cook, servings := rec.PrepTimeMinutes(), rec.CookTimeMinutes(), rec.Servings()
	return jsonDoc{
		ID:              rec.ID(),
		Title:           rec.Title(),
		Difficulty:      string(rec.Difficulty()),
		PrepTimeMinutes: &prep,
		CookTimeMinutes: &cook,
		Servings:        &servings,
		Ingredients:     rec.Ingredients(),
		Instructions:    rec.Instructions(),
		Vector:          rec.Vector(),
	}
}

// toRecipe hydrates a domain Recipe from a stored document. Storage is
// trusted, so missing numerics degrade to zero instead of failing.
func (d jsonDoc) toRecipe(id string) domrec.Recipe {
	return domrec.Reconstruct(
		id, d.Title, domrec.Difficulty(d.Difficulty),
		intOrZero(d.PrepTimeMinutes), intOrZero(d.CookTimeMinutes), intOrZero(d.Servings),
		d.Ingredients, d.Instructions, d.Vector,
	)
}

// toMetadata extracts the filterable view, preserving nil numerics so range
// filters can tell a missing field from a zero.
func (d jsonDoc) toMetadata() domrec.Metadata {
	return domrec.Metadata{
		Title:            d.Title,
		Difficulty:       domrec.Difficulty(d.Difficulty),
		PrepTimeMinutes:  d.PrepTimeMinutes,
		CookTimeMinutes:  d.CookTimeMinutes,
		Servings:         d.Servings,
		IngredientCount:  len(d.Ingredients),
		InstructionCount: len(d.Instructions),
		Ingredients:      d.Ingredients,
	}
}

// parseJSONGetResult decodes a JSON.GET "$" response, which wraps the
// document in a JSONPath result array.
func parseJSONGetResult(id string, raw []byte) (domrec.Recipe, error) {
	doc, err := parseJSONGetDoc(raw)
	if err != nil {
		return domrec.Recipe{}, err
	}
	return doc.toRecipe(id), nil
}

func parseJSONGetDoc(raw []byte) (jsonDoc, error) {
	var docs []jsonDoc
	if err := json.Unmarshal(raw, &docs); err != nil {
		return jsonDoc{}, fmt.Errorf("unmarshal recipe: %w", err)
	}
	if len(docs) == 0 {
		return jsonDoc{}, domain.ErrRecipeNotFound
	}
	return docs[0], nil
}

// parseDocJSON decodes a single recipe document from a search entry.
// FT.SEARCH returns the bare object for the "$" field; the SCAN fallback
// returns the JSONPath array form. Both shapes are accepted.
func parseDocJSON(id string, raw []byte) (domrec.Recipe, error) {
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) == 0 {
		return domrec.Recipe{}, fmt.Errorf("empty document %s", id)
	}
	if trimmed[0] == '[' {
		return parseJSONGetResult(id, trimmed)
	}
	var doc jsonDoc
	if err := json.Unmarshal(trimmed, &doc); err != nil {
		return domrec.Recipe{}, fmt.Errorf("unmarshal recipe: %w", err)
	}
	return doc.toRecipe(id), nil
}

func intOrZero(p *int) int {
	if p == nil {
		return 0
	}
	return *p
}
