package visit

import (
	"context"

	"github.com/google/uuid"
)

// Repository is the storage contract for the visit ledger.
type Repository interface {
	// Create appends a visit. Joins the surrounding transaction when one
	// is on the context.
	Create(ctx context.Context, v *RecentVisit) error

	// List returns visits newest first with the total count for paging.
	List(ctx context.Context, f Filter, limit, offset int) ([]*RecentVisit, int, error)

	// GetByID returns one visit, or httperr.ErrNotFound.
	GetByID(ctx context.Context, id uuid.UUID) (*RecentVisit, error)

	// Delete removes a visit, or httperr.ErrNotFound when absent.
	Delete(ctx context.Context, id uuid.UUID) error
}
