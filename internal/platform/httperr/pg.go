package httperr

import (
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

// FromPG maps common postgres failures onto the taxonomy. pgx.ErrNoRows
// becomes ErrNotFound and unique violations (23505) become ErrConflict;
// everything else passes through wrapped with context.
func FromPG(err error, context string) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, pgx.ErrNoRows) {
		return fmt.Errorf("%s: %w", context, ErrNotFound)
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == "23505" {
		return fmt.Errorf("%s: %w", context, ErrConflict)
	}
	return fmt.Errorf("%s: %w", context, err)
}
