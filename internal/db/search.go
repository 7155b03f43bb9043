package db

// DefaultDialect is the query dialect required for KNN and VECTOR_RANGE syntax.
const DefaultDialect = 2

// SearchRequest is a fully built FT.SEARCH invocation.
type SearchRequest struct {
	IndexName    string
	Query        string
	Params       map[string]string
	ReturnFields []string
	SortBy       string
	SortDesc     bool
	Offset       int
	Limit        int // negative means no LIMIT clause
	Dialect      int
}

// SearchResult is the output of a search operation.
type SearchResult struct {
	Total   int
	Entries []SearchEntry
}

// SearchEntry is a single document hit from a search.
type SearchEntry struct {
	Key    string
	Fields map[string]string
}
