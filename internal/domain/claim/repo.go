package claim

import "context"

// Repository is the storage contract for claims, drafts and the
// adjudication notification counters.
type Repository interface {
	// Create inserts a claim. A second claim for the same encounter token
	// returns httperr.ErrConflict.
	Create(ctx context.Context, c *Claim) error

	// GetByToken returns the claim for an encounter token, or
	// httperr.ErrNotFound.
	GetByToken(ctx context.Context, token string) (*Claim, error)

	// List returns claims newest first with the total count.
	List(ctx context.Context, f Filter, limit, offset int) ([]*Claim, int, error)

	// NextPending returns the oldest pending claim, or httperr.ErrNotFound
	// when the queue is empty.
	NextPending(ctx context.Context) (*Claim, error)

	// CommitVerdict writes the adjudication outcome for a claim in one
	// statement.
	CommitVerdict(ctx context.Context, token, status string, totalPayout float64, reason string) error

	// Drafts.
	CreateDraft(ctx context.Context, d *Draft) error
	GetDraft(ctx context.Context, token string) (*Draft, error)
	ListDrafts(ctx context.Context, userID string) ([]*Draft, error)
	UpdateDraft(ctx context.Context, d *Draft) error
	DeleteDraft(ctx context.Context, token string) error

	// Notification counters.
	BumpNotification(ctx context.Context, status string) error
	NotificationCounts(ctx context.Context) ([]*NotificationCount, error)
}
