package catalog

import (
	"context"
	"strings"
)

const (
	defaultSearchLimit = 15
	maxSearchLimit     = 100
)

// Service exposes the pricing catalogs and dispositions to handlers and to
// the claims processor.
type Service struct {
	repo Repository
}

func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

func clampLimit(limit int) int {
	if limit <= 0 {
		return defaultSearchLimit
	}
	if limit > maxSearchLimit {
		return maxSearchLimit
	}
	return limit
}

// SearchMedicines finds price-list entries whose code or generic name starts
// with term. With no term the newest entries come back.
func (s *Service) SearchMedicines(ctx context.Context, term string, limit int) ([]*Medicine, error) {
	return s.repo.SearchMedicines(ctx, strings.TrimSpace(term), clampLimit(limit))
}

// GetMedicine looks up a single price-list entry by code.
func (s *Service) GetMedicine(ctx context.Context, code string) (*Medicine, error) {
	return s.repo.GetMedicine(ctx, strings.TrimSpace(code))
}

// SearchTariffs finds tariff entries whose code or service name starts with
// term.
func (s *Service) SearchTariffs(ctx context.Context, term string, limit int) ([]*ServiceTariff, error) {
	return s.repo.SearchTariffs(ctx, strings.TrimSpace(term), clampLimit(limit))
}

// GetTariff looks up a single tariff entry by code.
func (s *Service) GetTariff(ctx context.Context, code string) (*ServiceTariff, error) {
	return s.repo.GetTariff(ctx, strings.TrimSpace(code))
}

// ListDispositions returns the full disposition list.
func (s *Service) ListDispositions(ctx context.Context) ([]*Disposition, error) {
	return s.repo.ListDispositions(ctx)
}

// GetDisposition returns one disposition by id.
func (s *Service) GetDisposition(ctx context.Context, id int) (*Disposition, error) {
	return s.repo.GetDisposition(ctx, id)
}
