package vector

import (
	"crypto/sha256"
	"encoding/binary"
	"fmt"
	"math"
	"strings"
)

// normEpsilon keeps normalization finite for texts without tokens.
const normEpsilon = 1e-6

// BucketMapping selects how a token hash is folded into a bucket index.
type BucketMapping string

const (
	// BucketUniform maps (hash & 0x7fffffff) mod D.
	BucketUniform BucketMapping = "uniform"
	// BucketLegacy maps hash & (0x7fffffff mod D), which is only uniform when D is a power of two.
	BucketLegacy BucketMapping = "legacy"
)

// ParseBucketMapping validates a configured mapping name. Empty means uniform.
func ParseBucketMapping(s string) (BucketMapping, error) {
	switch BucketMapping(s) {
	case "", BucketUniform:
		return BucketUniform, nil
	case BucketLegacy:
		return BucketLegacy, nil
	default:
		return "", fmt.Errorf("unknown bucket mapping %q", s)
	}
}

// Hashing is a bag-of-tokens feature-hashing vectorizer.
// Each token is hashed with SHA-256 and counted in one of D buckets;
// the result is L2-normalized.
type Hashing struct {
	dims    int
	mapping BucketMapping
}

// HashingOption configures a Hashing vectorizer.
type HashingOption func(*Hashing)

// WithBucketMapping overrides the bucket mapping.
func WithBucketMapping(m BucketMapping) HashingOption {
	return func(h *Hashing) { h.mapping = m }
}

// NewHashing creates a vectorizer producing vectors of length dims.
func NewHashing(dims int, opts ...HashingOption) (*Hashing, error) {
	if dims <= 0 {
		return nil, fmt.Errorf("dimensions must be positive, got %d", dims)
	}
	h := &Hashing{dims: dims, mapping: BucketUniform}
	for _, o := range opts {
		o(h)
	}
	return h, nil
}

// Dimensions returns D.
func (h *Hashing) Dimensions() int { return h.dims }

// Mapping returns the configured bucket mapping.
func (h *Hashing) Mapping() BucketMapping { return h.mapping }

// Embed vectorizes text. Texts without tokens yield the zero vector.
func (h *Hashing) Embed(text string) Vector {
	vec := make(Vector, h.dims)
	for _, tok := range Tokenize(text) {
		vec[h.bucket(tok)]++
	}

	norm := vec.Norm() + normEpsilon
	for i := range vec {
		vec[i] = float32(float64(vec[i]) / norm)
	}
	return vec
}

func (h *Hashing) bucket(token string) int {
	sum := sha256.Sum256([]byte(token))
	folded := int32(binary.LittleEndian.Uint32(sum[:4])) //nolint:gosec // reinterpreting the hash bits

	if h.mapping == BucketLegacy {
		return int(folded & int32(math.MaxInt32%h.dims)) //nolint:gosec // dims fits in int32
	}
	return int(uint32(folded)&math.MaxInt32) % h.dims
}

// Tokenize lowercases text and splits it on spaces, commas, periods, hyphens,
// slashes and underscores, dropping empty fragments.
func Tokenize(text string) []string {
	return strings.FieldsFunc(strings.ToLower(text), isDelimiter)
}

func isDelimiter(r rune) bool {
	switch r {
	case ' ', ',', '.', '-', '/', '_':
		return true
	}
	return false
}
