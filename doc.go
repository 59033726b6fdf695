// Package recipedex provides an embedded Go client for the recipedex hybrid
// recipe search engine backed by Valkey or Redis with search modules.
//
// Every query fans out to two retrieval paths: an in-process BM25 keyword
// index over titles and ingredients, and a vector similarity search against
// the database. The two rankings are merged with weighted reciprocal rank
// fusion and post-filtered by recipe metadata.
//
// # Basic usage
//
//	client, err := recipedex.New(ctx,
//	    recipedex.WithValkey("localhost:6379", ""),
//	    recipedex.WithEmbedder(myEmbedder),
//	)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer client.Close()
//
//	created, _ := client.Recipes().Upsert(ctx, recipedex.Recipe{
//	    ID:              "spaghetti-carbonara",
//	    Title:           "Spaghetti Carbonara",
//	    Difficulty:      recipedex.DifficultyIntermediate,
//	    PrepTimeMinutes: 15,
//	    CookTimeMinutes: 20,
//	    Servings:        4,
//	    Ingredients:     []string{"spaghetti", "eggs", "pecorino", "guanciale"},
//	    Instructions:    []string{"Boil pasta.", "Render guanciale.", "Toss off heat."},
//	})
//
//	hits, _ := client.Search(ctx, "creamy pasta dinner", nil)
//
// # Fluent queries
//
//	hits, _ := client.Query("weeknight chicken dinner").
//	    Mode(recipedex.ModeHybrid).
//	    Difficulty(recipedex.DifficultyBeginner).
//	    MaxTotalTime(45).
//	    Limit(5).
//	    Do(ctx)
//
// The keyword index lives in process and is rebuilt automatically a couple
// of seconds after the last write. Call RebuildIndex to force it.
package recipedex
