package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/umami-labs/recipedex/internal/config"
	logpkg "github.com/umami-labs/recipedex/internal/logger"
)

var reindexRecreateVector bool

var reindexCmd = &cobra.Command{
	Use:   "reindex",
	Short: "Rebuild the keyword index from the stored catalog",
	Long: `Rebuild the in-process keyword index by reading every recipe from
the store, then exit. Useful after bulk imports done outside the API.

With --recreate-vector the vector index definition is dropped and created
anew first; stored vectors are reindexed by the engine in the background.`,
	RunE: runReindex,
	Args: cobra.NoArgs,
}

func init() {
	reindexCmd.Flags().BoolVar(&reindexRecreateVector, "recreate-vector", false,
		"drop and recreate the vector index definition")
	rootCmd.AddCommand(reindexCmd)
}

func runReindex(cmd *cobra.Command, _ []string) error {
	env := config.GetEnv()
	cfg, err := config.Load(env)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	logger, err := logpkg.New(env, cfg.Logging.Level)
	if err != nil {
		return fmt.Errorf("create logger: %w", err)
	}
	defer func() { _ = logger.Sync() }()

	ctx := cmd.Context()
	app, err := newApp(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer app.Close()

	if reindexRecreateVector {
		if err := app.dense.RecreateIndex(ctx); err != nil {
			return fmt.Errorf("recreate vector index: %w", err)
		}
		cmd.Println("Vector index recreated")
	}

	stats, err := app.indexer.Rebuild(ctx)
	if err != nil {
		return fmt.Errorf("rebuild keyword index: %w", err)
	}
	cmd.Printf("Indexed %d recipes (%d terms) in %s\n", stats.Docs, stats.Terms, stats.Took)
	return nil
}
