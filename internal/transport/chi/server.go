package chi

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/kailas-cloud/redisvec/internal/domain"
	"github.com/kailas-cloud/redisvec/internal/domain/search/result"
	logpkg "github.com/kailas-cloud/redisvec/internal/logger"
	documentuc "github.com/kailas-cloud/redisvec/internal/usecase/document"
	healthuc "github.com/kailas-cloud/redisvec/internal/usecase/health"
	indexuc "github.com/kailas-cloud/redisvec/internal/usecase/index"
	ingestuc "github.com/kailas-cloud/redisvec/internal/usecase/ingest"
	searchuc "github.com/kailas-cloud/redisvec/internal/usecase/search"
)

const (
	maxTextsPerRequest = 5000
	maxBodyBytes       = 64 << 20
	defaultK           = 4
)

// Server serves the HTTP API for one bound index.
type Server struct {
	binding   *indexuc.Binding
	indexes   *indexuc.Service
	ingest    *ingestuc.Service
	search    *searchuc.Service
	documents *documentuc.Service
	health    *healthuc.Service
	logger    *zap.Logger
}

// NewServer creates an HTTP API server.
func NewServer(
	binding *indexuc.Binding,
	indexes *indexuc.Service,
	ingest *ingestuc.Service,
	search *searchuc.Service,
	documents *documentuc.Service,
	health *healthuc.Service,
	logger *zap.Logger,
) *Server {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Server{
		binding:   binding,
		indexes:   indexes,
		ingest:    ingest,
		search:    search,
		documents: documents,
		health:    health,
		logger:    logger,
	}
}

// CreateIndex handles POST /v1/index.
func (s *Server) CreateIndex(w http.ResponseWriter, r *http.Request) {
	var req CreateIndexRequest
	if !decodeOptionalBody(w, r, &req) {
		return
	}
	if req.Dims < 0 {
		writeError(w, http.StatusBadRequest, CodeValidationFailed, "dims must not be negative")
		return
	}

	desc, err := s.binding.Ensure(r.Context(), req.Dims)
	if err != nil {
		s.handleDomainError(w, err)
		return
	}

	vec := desc.Vector()
	writeJSON(w, http.StatusCreated, IndexResponse{
		Name:      desc.IndexName(),
		Exists:    true,
		Prefix:    desc.KeyPrefix(),
		Dims:      vec.Dims(),
		Metric:    string(vec.Metric()),
		Algorithm: string(vec.Algorithm()),
		Metadata:  desc.Metadata().Names(),
	})
}

// GetIndex handles GET /v1/index.
func (s *Server) GetIndex(w http.ResponseWriter, r *http.Request) {
	name := s.binding.Layout().Name
	exists, err := s.indexes.Exists(r.Context(), name)
	if err != nil {
		s.handleDomainError(w, err)
		return
	}
	if !exists {
		writeJSON(w, http.StatusOK, IndexResponse{Name: name})
		return
	}

	desc, err := s.binding.Descriptor(r.Context())
	if err != nil {
		s.handleDomainError(w, err)
		return
	}
	vec := desc.Vector()
	writeJSON(w, http.StatusOK, IndexResponse{
		Name:      name,
		Exists:    true,
		Prefix:    desc.KeyPrefix(),
		Dims:      vec.Dims(),
		Metric:    string(vec.Metric()),
		Algorithm: string(vec.Algorithm()),
		Metadata:  desc.Metadata().Names(),
	})
}

// DropIndex handles DELETE /v1/index?delete_documents=true.
func (s *Server) DropIndex(w http.ResponseWriter, r *http.Request) {
	deleteDocuments := false
	if v := r.URL.Query().Get("delete_documents"); v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			writeError(w, http.StatusBadRequest, CodeBadRequest, "delete_documents must be a boolean")
			return
		}
		deleteDocuments = b
	}

	dropped, err := s.indexes.Drop(r.Context(), s.binding.Layout().Name, deleteDocuments)
	if err != nil {
		s.handleDomainError(w, err)
		return
	}
	s.binding.Reset()
	writeJSON(w, http.StatusOK, DropIndexResponse{Dropped: dropped})
}

// AddTexts handles POST /v1/texts.
func (s *Server) AddTexts(w http.ResponseWriter, r *http.Request) {
	var req AddTextsRequest
	if !decodeBody(w, r, &req) {
		return
	}
	if len(req.Texts) == 0 {
		writeError(w, http.StatusBadRequest, CodeValidationFailed, "texts must not be empty")
		return
	}
	if len(req.Texts) > maxTextsPerRequest {
		writeError(w, http.StatusBadRequest, CodeValidationFailed,
			fmt.Sprintf("at most %d texts per request", maxTextsPerRequest))
		return
	}

	desc, err := s.binding.Descriptor(r.Context())
	if errors.Is(err, domain.ErrSchemaNotBound) && len(req.Vectors) > 0 {
		// First write against a fresh index: the supplied vectors fix the dimension.
		desc, err = s.binding.Ensure(r.Context(), len(req.Vectors[0]))
	}
	if err != nil {
		s.handleDomainError(w, err)
		return
	}

	keys, err := s.ingest.AddTexts(r.Context(), desc, ingestuc.Input{
		Texts:     req.Texts,
		Metadatas: req.Metadatas,
		Vectors:   req.Vectors,
		Keys:      req.Keys,
	})
	if err != nil {
		s.handleDomainError(w, err, keys...)
		return
	}

	logpkg.FromContext(r.Context()).Debug("Texts added", zap.Int("count", len(keys)))
	writeJSON(w, http.StatusCreated, AddTextsResponse{Keys: keys})
}

// Search handles POST /v1/search.
func (s *Server) Search(w http.ResponseWriter, r *http.Request) {
	var req SearchRequest
	if !decodeBody(w, r, &req) {
		return
	}
	if (req.Text == "") == (len(req.Vector) == 0) {
		writeError(w, http.StatusBadRequest, CodeValidationFailed, "exactly one of text or vector is required")
		return
	}

	desc, err := s.binding.Descriptor(r.Context())
	if err != nil {
		s.handleDomainError(w, err)
		return
	}

	expr, err := req.Filter.Compile(desc.Metadata())
	if err != nil {
		s.handleDomainError(w, err)
		return
	}

	k := defaultK
	if req.K != nil {
		k = *req.K
	}
	sreq := searchuc.Request{K: k, ScoreThreshold: req.ScoreThreshold, Filter: expr}

	var results []result.Result
	if req.Text != "" {
		results, err = s.search.SearchByText(r.Context(), desc, req.Text, sreq, nil)
	} else {
		results, err = s.search.SearchByVector(r.Context(), desc, req.Vector, sreq, nil)
	}
	if err != nil {
		s.handleDomainError(w, err)
		return
	}

	hits := make([]SearchHit, len(results))
	for i := range results {
		hits[i] = hitFromResult(&results[i])
	}
	writeJSON(w, http.StatusOK, SearchResponse{Results: hits})
}

// DeleteDocuments handles DELETE /v1/documents.
func (s *Server) DeleteDocuments(w http.ResponseWriter, r *http.Request) {
	var req DeleteDocumentsRequest
	if !decodeBody(w, r, &req) {
		return
	}

	outcome, err := s.documents.Delete(r.Context(), req.Keys)
	if err != nil {
		s.handleDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, DeleteDocumentsResponse{Result: outcome.String()})
}

// HealthCheck handles GET /health.
func (s *Server) HealthCheck(w http.ResponseWriter, r *http.Request) {
	report := s.health.Check(r.Context())

	checks := make(map[string]string, len(report.Checks))
	for name, res := range report.Checks {
		checks[name] = string(res)
	}

	status := http.StatusOK
	if report.Status == healthuc.Unhealthy {
		status = http.StatusServiceUnavailable
	}
	writeJSON(w, status, HealthResponse{Status: string(report.Status), Checks: checks})
}

// Metrics handles GET /metrics.
func (s *Server) Metrics(w http.ResponseWriter, r *http.Request) {
	promhttp.Handler().ServeHTTP(w, r)
}

func decodeBody(w http.ResponseWriter, r *http.Request, v any) bool {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		writeError(w, http.StatusBadRequest, CodeBadRequest, "Invalid request body: "+err.Error())
		return false
	}
	return true
}

// decodeOptionalBody is decodeBody that accepts an empty body.
func decodeOptionalBody(w http.ResponseWriter, r *http.Request, v any) bool {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	err := json.NewDecoder(r.Body).Decode(v)
	if err != nil && !errors.Is(err, io.EOF) {
		writeError(w, http.StatusBadRequest, CodeBadRequest, "Invalid request body: "+err.Error())
		return false
	}
	return true
}

func hitFromResult(r *result.Result) SearchHit {
	doc := r.Document()
	return SearchHit{
		ID:        doc.Key(),
		Content:   doc.Content(),
		Metadata:  doc.Metadata(),
		Distance:  r.RawScore(),
		Relevance: r.Relevance(),
	}
}
