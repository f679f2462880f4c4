package db

// TextQuery is the input for full-text search.
type TextQuery struct {
	IndexName    string
	Query        string
	Fields       []string // TEXT fields to match against; empty matches all
	Limit        int
	ReturnFields []string
}

// SearchResult is the output of a search operation.
type SearchResult struct {
	Total   int
	Entries []SearchEntry
}

// SearchEntry is a single document hit from a search.
type SearchEntry struct {
	Key    string
	Score  float64
	Fields map[string]string
}
