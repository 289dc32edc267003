package visit

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/nhisverify/nhisverify/internal/platform/httperr"
)

// Service exposes the visit ledger. Rows are appended by the verification
// flow; this service only reads and prunes them.
type Service struct {
	repo Repository
}

func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

// Record appends a visit. Called from the verification flow inside its
// transaction.
func (s *Service) Record(ctx context.Context, v *RecentVisit) error {
	if v.ID == uuid.Nil {
		v.ID = uuid.New()
	}
	if v.VisitDate.IsZero() {
		v.VisitDate = time.Now().UTC()
	}
	return s.repo.Create(ctx, v)
}

// List returns visits across all users, newest first.
func (s *Service) List(ctx context.Context, limit, offset int) ([]*RecentVisit, int, error) {
	return s.repo.List(ctx, Filter{}, limit, offset)
}

// ListMine returns the acting user's visits, optionally bounded by date.
func (s *Service) ListMine(ctx context.Context, userID string, from, to *time.Time, limit, offset int) ([]*RecentVisit, int, error) {
	if userID == "" {
		return nil, 0, fmt.Errorf("%w: user id is required", httperr.ErrInvalidArgument)
	}
	if from != nil && to != nil && to.Before(*from) {
		return nil, 0, fmt.Errorf("%w: date range is inverted", httperr.ErrInvalidArgument)
	}
	return s.repo.List(ctx, Filter{UserID: userID, From: from, To: to}, limit, offset)
}

// Get returns one visit by id.
func (s *Service) Get(ctx context.Context, id uuid.UUID) (*RecentVisit, error) {
	return s.repo.GetByID(ctx, id)
}

// Delete removes a visit. Only the user who recorded it may delete it.
func (s *Service) Delete(ctx context.Context, id uuid.UUID, actorID string) error {
	v, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if v.UserID == nil || *v.UserID != actorID {
		return fmt.Errorf("%w: visit belongs to another user", httperr.ErrForbidden)
	}
	return s.repo.Delete(ctx, id)
}
