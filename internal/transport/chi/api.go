package chi

import (
	"github.com/kailas-cloud/redisvec/internal/domain/search/filter"
)

// ErrorCode is the machine-readable error discriminator in ErrorResponse.
type ErrorCode string

// Error codes returned by the API.
const (
	CodeBadRequest            ErrorCode = "bad_request"
	CodeUnauthorized          ErrorCode = "unauthorized"
	CodeValidationFailed      ErrorCode = "validation_failed"
	CodeVectorDimMismatch     ErrorCode = "vector_dim_mismatch"
	CodeIndexNotFound         ErrorCode = "index_not_found"
	CodeIndexNotBound         ErrorCode = "index_not_bound"
	CodeRangeQueryUnsupported ErrorCode = "range_query_unsupported"
	CodeConfiguration         ErrorCode = "configuration_error"
	CodeEmbeddingProvider     ErrorCode = "embedding_provider_error"
	CodeConnection            ErrorCode = "connection_error"
	CodeInternal              ErrorCode = "internal_error"
)

// ErrorResponse is the body of every non-2xx response.
// CommittedKeys lists records that were written before an ingestion failure.
type ErrorResponse struct {
	Code          ErrorCode `json:"code"`
	Message       string    `json:"message"`
	CommittedKeys []string  `json:"committed_keys,omitempty"`
}

// CreateIndexRequest is the body of POST /v1/index. Dims may be omitted when configured.
type CreateIndexRequest struct {
	Dims int `json:"dims,omitempty"`
}

// IndexResponse describes the bound index.
type IndexResponse struct {
	Name      string   `json:"name"`
	Exists    bool     `json:"exists"`
	Prefix    string   `json:"prefix,omitempty"`
	Dims      int      `json:"dims,omitempty"`
	Metric    string   `json:"metric,omitempty"`
	Algorithm string   `json:"algorithm,omitempty"`
	Metadata  []string `json:"metadata,omitempty"`
}

// DropIndexResponse is the body of DELETE /v1/index.
type DropIndexResponse struct {
	Dropped bool `json:"dropped"`
}

// AddTextsRequest is the body of POST /v1/texts. Metadatas, Vectors and Keys are parallel to Texts.
type AddTextsRequest struct {
	Texts     []string         `json:"texts"`
	Metadatas []map[string]any `json:"metadatas,omitempty"`
	Vectors   [][]float32      `json:"vectors,omitempty"`
	Keys      []string         `json:"keys,omitempty"`
}

// AddTextsResponse lists the written keys in input order.
type AddTextsResponse struct {
	Keys []string `json:"keys"`
}

// SearchRequest is the body of POST /v1/search. Exactly one of Text and Vector is set.
// A ScoreThreshold switches to range mode.
type SearchRequest struct {
	Text           string       `json:"text,omitempty"`
	Vector         []float32    `json:"vector,omitempty"`
	K              *int         `json:"k,omitempty"`
	ScoreThreshold *float64     `json:"score_threshold,omitempty"`
	Filter         *filter.Spec `json:"filter,omitempty"`
}

// SearchHit is one scored document.
type SearchHit struct {
	ID        string         `json:"id"`
	Content   string         `json:"content"`
	Metadata  map[string]any `json:"metadata"`
	Distance  float64        `json:"distance"`
	Relevance float64        `json:"relevance"`
}

// SearchResponse is the body of a successful search.
type SearchResponse struct {
	Results []SearchHit `json:"results"`
}

// DeleteDocumentsRequest is the body of DELETE /v1/documents.
type DeleteDocumentsRequest struct {
	Keys []string `json:"keys"`
}

// DeleteDocumentsResponse reports "deleted" or "not_found".
type DeleteDocumentsResponse struct {
	Result string `json:"result"`
}

// HealthResponse is the body of GET /health.
type HealthResponse struct {
	Status string            `json:"status"`
	Checks map[string]string `json:"checks"`
}
