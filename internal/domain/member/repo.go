package member

import "context"

// Repository is the storage contract for the member registry.
type Repository interface {
	// GetLatestByMembershipID returns the most recently created row for a
	// membership id, or httperr.ErrNotFound when none exists.
	GetLatestByMembershipID(ctx context.Context, membershipID string) (*Member, error)

	// Autocomplete searches membership id, names and NHIS number with a
	// contains match, ordered by last name.
	Autocomplete(ctx context.Context, query string, limit, offset int) ([]*AutocompleteRow, error)
}
