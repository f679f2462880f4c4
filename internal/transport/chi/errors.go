package chi

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"go.uber.org/zap"

	"github.com/kailas-cloud/storeassist/internal/domain"
	"github.com/kailas-cloud/storeassist/internal/logger"
)

// errorHandler tries to handle a domain error. Returns true if handled.
type errorHandler func(w http.ResponseWriter, err error) bool

// errorHandlers are tried in order. Context errors come first: a store or
// backend call aborted by the caller is still a timeout, not an upstream failure.
// The quota sentinel wraps ErrGeneration, so it precedes it.
var errorHandlers = []errorHandler{
	sentinelHandler(context.DeadlineExceeded, http.StatusServiceUnavailable, ErrorCodeTimeout),
	sentinelHandler(context.Canceled, http.StatusServiceUnavailable, ErrorCodeTimeout),
	sentinelHandler(domain.ErrInvalidRequest, http.StatusBadRequest, ErrorCodeValidationFailed),
	sentinelHandler(domain.ErrDimensionMismatch, http.StatusBadRequest, ErrorCodeDimensionMismatch),
	sentinelHandler(domain.ErrProductNotFound, http.StatusNotFound, ErrorCodeProductNotFound),
	sentinelHandler(domain.ErrGenerationQuotaExceeded, http.StatusPaymentRequired, ErrorCodeQuotaExceeded),
	sentinelHandler(domain.ErrGeneration, http.StatusBadGateway, ErrorCodeGenerationFailed),
	sentinelHandler(domain.ErrCandidateStore, http.StatusBadGateway, ErrorCodeStoreUnavailable),
	sentinelHandler(domain.ErrNotImplemented, http.StatusNotImplemented, ErrorCodeNotImplemented),
}

// clientMessages are the only error texts exposed to callers.
var clientMessages = []error{
	domain.ErrInvalidRequest,
	domain.ErrDimensionMismatch,
	domain.ErrProductNotFound,
	domain.ErrGenerationQuotaExceeded,
	domain.ErrGeneration,
	domain.ErrCandidateStore,
	domain.ErrNotImplemented,
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, code ErrorCode, message string) {
	writeJSON(w, status, ErrorResponse{Code: code, Message: message})
}

// safeDomainMessage returns a client-safe message without exposing internals.
// Invalid requests keep their full text since it only describes caller input.
func safeDomainMessage(err error) string {
	if errors.Is(err, domain.ErrInvalidRequest) {
		return err.Error()
	}
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
		return "request timed out"
	}
	for _, s := range clientMessages {
		if errors.Is(err, s) {
			return s.Error()
		}
	}
	return "internal error"
}

// sentinelHandler returns an errorHandler that matches a single sentinel error.
func sentinelHandler(sentinel error, status int, code ErrorCode) errorHandler {
	return func(w http.ResponseWriter, err error) bool {
		if !errors.Is(err, sentinel) {
			return false
		}
		writeError(w, status, code, safeDomainMessage(err))
		return true
	}
}

func handleDomainError(w http.ResponseWriter, r *http.Request, err error) {
	log := logger.FromContext(r.Context())
	for _, h := range errorHandlers {
		if h(w, err) {
			log.Warn("domain error", zap.Error(err))
			return
		}
	}
	log.Error("internal error", zap.Error(err))
	writeError(w, http.StatusInternalServerError, ErrorCodeInternalError, "internal error")
}
