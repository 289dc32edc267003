package member

import (
	"context"
	"fmt"
	"strings"

	"github.com/nhisverify/nhisverify/internal/platform/httperr"
)

// Service exposes read access to the member registry.
type Service struct {
	repo Repository
}

func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

// Get returns the latest enrolment record for a membership id.
func (s *Service) Get(ctx context.Context, membershipID string) (*Member, error) {
	membershipID = strings.TrimSpace(membershipID)
	if membershipID == "" {
		return nil, fmt.Errorf("%w: membership_id is required", httperr.ErrInvalidArgument)
	}
	return s.repo.GetLatestByMembershipID(ctx, membershipID)
}

// Autocomplete searches members by partial membership id, name or NHIS
// number. A blank query returns no rows rather than the whole registry.
func (s *Service) Autocomplete(ctx context.Context, query string, limit, offset int) ([]*AutocompleteRow, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return []*AutocompleteRow{}, nil
	}
	return s.repo.Autocomplete(ctx, query, limit, offset)
}
