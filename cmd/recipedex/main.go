// Binary recipedex is the hybrid recipe search service.
package main

import (
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "recipedex",
	Short: "Hybrid recipe search service",
	Long: `recipedex serves a recipe catalog with hybrid search: an in-process
BM25 keyword index fused with vector KNN from Redis/Valkey via weighted
Reciprocal Rank Fusion.

Running without a subcommand starts the HTTP API server, same as
"recipedex serve". The environment is selected with ENV (local, dev,
prod) and maps to a config file under ./config.`,
	RunE: runServe,
	// Root takes no positional args; "recipedex serve" etc. are subcommands.
	Args: cobra.NoArgs,
}

func main() {
	// .env is optional; real deployments set variables directly.
	_ = godotenv.Load()

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
