// Package prompt holds the per-request directive pair handed to generation.
package prompt

// Pair is a system directive and a user directive built for one request.
type Pair struct {
	system string
	user   string
}

// NewPair creates a directive pair.
func NewPair(system, user string) Pair {
	return Pair{system: system, user: user}
}

// System returns the system directive.
func (p Pair) System() string { return p.system }

// User returns the user directive.
func (p Pair) User() string { return p.user }
