package domain

import (
	"errors"
	"fmt"
)

var (
	// ErrInvalidRequest signals malformed caller input.
	ErrInvalidRequest = errors.New("invalid request")
	// ErrDimensionMismatch signals that two vectors of unequal length were compared.
	ErrDimensionMismatch = errors.New("vector dimension mismatch")
	// ErrProductNotFound signals a missing catalog product.
	ErrProductNotFound = errors.New("product not found")
	// ErrCandidateStore signals a failure of the external candidate store.
	ErrCandidateStore = errors.New("candidate store error")
	// ErrGeneration signals that the completion backend failed, timed out or rejected the request.
	ErrGeneration = errors.New("generation error")
	// ErrGenerationQuotaExceeded signals an exhausted generation token budget.
	ErrGenerationQuotaExceeded = fmt.Errorf("%w: token quota exceeded", ErrGeneration)
	// ErrNotImplemented signals an unimplemented feature.
	ErrNotImplemented = errors.New("not implemented")
)

// DimensionMismatchError carries both lengths of a failed comparison.
type DimensionMismatchError struct {
	Left  int
	Right int
}

func (e *DimensionMismatchError) Error() string {
	return fmt.Sprintf("%s: %d != %d", ErrDimensionMismatch.Error(), e.Left, e.Right)
}

func (e *DimensionMismatchError) Unwrap() error { return ErrDimensionMismatch }

// NewDimensionMismatch creates a dimension mismatch error.
func NewDimensionMismatch(left, right int) error {
	return &DimensionMismatchError{Left: left, Right: right}
}
