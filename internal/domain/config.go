package domain

// VectorConfig holds internal vectorization settings, not exposed to clients.
type VectorConfig struct {
	Model               string
	Dimensions          int
	ContextWindowTokens int
	DistanceMetric      string
	Algorithm           string
}

// DefaultVectorConfig returns the settings used when a deployment does not
// pin its own embedding model.
func DefaultVectorConfig() VectorConfig {
	return VectorConfig{
		Model:               "text-embedding-3-small",
		Dimensions:          1536,
		ContextWindowTokens: 8191,
		DistanceMetric:      "cosine",
		Algorithm:           "hnsw",
	}
}
