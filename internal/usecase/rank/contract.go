package rank

import "github.com/kailas-cloud/storeassist/internal/domain/vector"

// Vectorizer maps text to a fixed-length vector.
type Vectorizer interface {
	Embed(text string) vector.Vector
}
