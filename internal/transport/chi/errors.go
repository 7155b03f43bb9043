package chi

import (
	"encoding/json"
	"errors"
	"net/http"

	"go.uber.org/zap"

	"github.com/kailas-cloud/redisvec/internal/domain"
)

// errorHandler tries to handle a domain error. Returns true if handled.
type errorHandler func(w http.ResponseWriter, err error, resp ErrorResponse) bool

// Order matters: specific sentinels wrap ErrConfiguration and must match first.
var errorHandlers = []errorHandler{
	sentinelHandler(domain.ErrValidation, http.StatusBadRequest, CodeValidationFailed),
	sentinelHandler(domain.ErrDimensionMismatch, http.StatusBadRequest, CodeVectorDimMismatch),
	sentinelHandler(domain.ErrIndexNotFound, http.StatusNotFound, CodeIndexNotFound),
	sentinelHandler(domain.ErrSchemaNotBound, http.StatusConflict, CodeIndexNotBound),
	sentinelHandler(domain.ErrRangeQueryUnsupported, http.StatusNotImplemented, CodeRangeQueryUnsupported),
	sentinelHandler(domain.ErrConfiguration, http.StatusUnprocessableEntity, CodeConfiguration),
	sentinelHandler(domain.ErrEmbeddingProviderError, http.StatusBadGateway, CodeEmbeddingProvider),
	sentinelHandler(domain.ErrConnection, http.StatusServiceUnavailable, CodeConnection),
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, code ErrorCode, message string) {
	writeJSON(w, status, ErrorResponse{Code: code, Message: message})
}

// clientMessage exposes caller-caused error details and hides everything else behind the sentinel text.
func clientMessage(err error) string {
	if errors.Is(err, domain.ErrValidation) || errors.Is(err, domain.ErrConfiguration) {
		return err.Error()
	}
	for _, s := range []error{domain.ErrEmbeddingProviderError, domain.ErrConnection} {
		if errors.Is(err, s) {
			return s.Error()
		}
	}
	return "internal error"
}

// sentinelHandler returns an errorHandler that matches a single sentinel error.
func sentinelHandler(sentinel error, status int, code ErrorCode) errorHandler {
	return func(w http.ResponseWriter, err error, resp ErrorResponse) bool {
		if !errors.Is(err, sentinel) {
			return false
		}
		resp.Code = code
		writeJSON(w, status, resp)
		return true
	}
}

func (s *Server) handleDomainError(w http.ResponseWriter, err error, committed ...string) {
	resp := ErrorResponse{Message: clientMessage(err), CommittedKeys: committed}
	for _, h := range errorHandlers {
		if h(w, err, resp) {
			s.logger.Warn("domain error", zap.Error(err))
			return
		}
	}
	s.logger.Error("internal error", zap.Error(err))
	resp.Code = CodeInternal
	writeJSON(w, http.StatusInternalServerError, resp)
}
