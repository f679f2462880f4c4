// Package profile holds the requester profile that constrains prompt composition.
package profile

// Profile is a read-only requester profile.
type Profile struct {
	id               string
	email            string
	preferredVendors []string
	blockedVendors   []string
	favoriteTags     []string
}

// New creates a profile. Nil sets are treated as empty.
func New(id, email string, preferred, blocked, favoriteTags []string) Profile {
	return Profile{
		id:               id,
		email:            email,
		preferredVendors: preferred,
		blockedVendors:   blocked,
		favoriteTags:     favoriteTags,
	}
}

// ID returns the requester identifier.
func (p Profile) ID() string { return p.id }

// Email returns the requester contact address.
func (p Profile) Email() string { return p.email }

// PreferredVendors returns vendors to prioritize, in order.
func (p Profile) PreferredVendors() []string { return p.preferredVendors }

// BlockedVendors returns vendors to avoid.
func (p Profile) BlockedVendors() []string { return p.blockedVendors }

// FavoriteTags returns the requester interests.
func (p Profile) FavoriteTags() []string { return p.favoriteTags }
