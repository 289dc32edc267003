package catalog

import "context"

// Repository is the storage contract for the pricing catalogs and the
// disposition list. All three are reference data loaded out of band.
type Repository interface {
	// SearchMedicines matches term as a prefix of code or generic name.
	// An empty term returns the most recently added entries.
	SearchMedicines(ctx context.Context, term string, limit int) ([]*Medicine, error)

	// GetMedicine returns the entry for a code, or httperr.ErrNotFound.
	GetMedicine(ctx context.Context, code string) (*Medicine, error)

	// SearchTariffs matches term as a prefix of code or service name.
	SearchTariffs(ctx context.Context, term string, limit int) ([]*ServiceTariff, error)

	// GetTariff returns the entry for a code, or httperr.ErrNotFound.
	GetTariff(ctx context.Context, code string) (*ServiceTariff, error)

	// ListDispositions returns every disposition, ordered by id.
	ListDispositions(ctx context.Context) ([]*Disposition, error)

	// GetDisposition returns the disposition with the given id, or
	// httperr.ErrNotFound.
	GetDisposition(ctx context.Context, id int) (*Disposition, error)
}
