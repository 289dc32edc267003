package encounter

import (
	"context"
	"time"
)

// Repository is the storage contract for verification tokens.
type Repository interface {
	// Create inserts a token. Joins the surrounding transaction when one
	// is on the context.
	Create(ctx context.Context, tok *VerificationToken) error

	// GetByToken returns the token row, or httperr.ErrNotFound.
	GetByToken(ctx context.Context, token string) (*VerificationToken, error)

	// SetCompareResult records a face comparison outcome. Repeat calls
	// overwrite the previous outcome.
	SetCompareResult(ctx context.Context, token string, verified bool, compareImageURL string) error

	// Finalize writes the closing disposition, final status, final time
	// and encounter image in one statement.
	Finalize(ctx context.Context, token string, finalStatus bool, dispositionName string, finalTime time.Time, encounterImageURL string) error

	// ListByUser returns a user's tokens newest first with the total.
	ListByUser(ctx context.Context, userID string, limit, offset int) ([]*VerificationToken, int, error)
}
