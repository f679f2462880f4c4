package domain

// RAGConfig holds retrieval pipeline settings.
type RAGConfig struct {
	Dimensions            int
	TopK                  int
	CandidateLimit        int
	SimilarCandidateLimit int
	DefaultMode           string
}

// DefaultRAGConfig returns the pipeline defaults.
func DefaultRAGConfig() RAGConfig {
	return RAGConfig{
		Dimensions:            256,
		TopK:                  5,
		CandidateLimit:        50,
		SimilarCandidateLimit: 100,
		DefaultMode:           "friendly",
	}
}
