package mode

// Mode is the search strategy.
type Mode string

// Search mode constants.
const (
	// Hybrid fuses keyword and semantic rankings.
	Hybrid Mode = "hybrid"
	// Sparse is keyword-only BM25 ranking.
	Sparse Mode = "sparse"
	// Dense is embedding-similarity-only ranking.
	Dense Mode = "dense"
)

// IsValid checks if the mode is one of the supported values.
func (m Mode) IsValid() bool {
	return m == Hybrid || m == Sparse || m == Dense
}
