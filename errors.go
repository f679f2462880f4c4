package storeassist

import "github.com/kailas-cloud/storeassist/internal/domain"

// Sentinel errors re-exported from the domain layer.
// Use errors.Is() to check.
var (
	ErrInvalidRequest          = domain.ErrInvalidRequest
	ErrDimensionMismatch       = domain.ErrDimensionMismatch
	ErrProductNotFound         = domain.ErrProductNotFound
	ErrCandidateStore          = domain.ErrCandidateStore
	ErrGeneration              = domain.ErrGeneration
	ErrGenerationQuotaExceeded = domain.ErrGenerationQuotaExceeded
)
