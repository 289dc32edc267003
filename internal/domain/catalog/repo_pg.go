package catalog

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/nhisverify/nhisverify/internal/platform/db"
	"github.com/nhisverify/nhisverify/internal/platform/httperr"
)

type repoPG struct {
	pool *pgxpool.Pool
}

// NewRepo returns a Postgres-backed catalog repository.
func NewRepo(pool *pgxpool.Pool) Repository {
	return &repoPG{pool: pool}
}

type querier interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

func (r *repoPG) conn(ctx context.Context) querier {
	if tx := db.TxFromContext(ctx); tx != nil {
		return tx
	}
	return r.pool
}

const medicineCols = `code, generic_name, unit_of_pricing, price, level_of_prescribing, created_at`

func scanMedicine(row pgx.Row) (*Medicine, error) {
	var m Medicine
	err := row.Scan(&m.Code, &m.GenericName, &m.UnitOfPricing, &m.Price, &m.LevelOfPrescribing, &m.CreatedAt)
	if err != nil {
		return nil, err
	}
	return &m, nil
}

func (r *repoPG) SearchMedicines(ctx context.Context, term string, limit int) ([]*Medicine, error) {
	var (
		rows pgx.Rows
		err  error
	)
	if term == "" {
		rows, err = r.conn(ctx).Query(ctx, `
			SELECT `+medicineCols+`
			FROM medicines
			ORDER BY created_at DESC
			LIMIT $1`, limit)
	} else {
		rows, err = r.conn(ctx).Query(ctx, `
			SELECT `+medicineCols+`
			FROM medicines
			WHERE code ILIKE $1 OR generic_name ILIKE $1
			ORDER BY generic_name
			LIMIT $2`, term+"%", limit)
	}
	if err != nil {
		return nil, httperr.FromPG(err, "search medicines")
	}
	defer rows.Close()
	return collectMedicines(rows)
}

func collectMedicines(rows pgx.Rows) ([]*Medicine, error) {
	var out []*Medicine
	for rows.Next() {
		m, err := scanMedicine(rows)
		if err != nil {
			return nil, httperr.FromPG(err, "scan medicine")
		}
		out = append(out, m)
	}
	if err := rows.Err(); err != nil {
		return nil, httperr.FromPG(err, "read medicines")
	}
	return out, nil
}

func (r *repoPG) GetMedicine(ctx context.Context, code string) (*Medicine, error) {
	row := r.conn(ctx).QueryRow(ctx, `
		SELECT `+medicineCols+`
		FROM medicines
		WHERE code = $1`, code)
	m, err := scanMedicine(row)
	if err != nil {
		return nil, httperr.FromPG(err, "get medicine")
	}
	return m, nil
}

const tariffCols = `code, service, tariff, created_at`

func scanTariff(row pgx.Row) (*ServiceTariff, error) {
	var t ServiceTariff
	err := row.Scan(&t.Code, &t.Service, &t.Tariff, &t.CreatedAt)
	if err != nil {
		return nil, err
	}
	return &t, nil
}

func (r *repoPG) SearchTariffs(ctx context.Context, term string, limit int) ([]*ServiceTariff, error) {
	var (
		rows pgx.Rows
		err  error
	)
	if term == "" {
		rows, err = r.conn(ctx).Query(ctx, `
			SELECT `+tariffCols+`
			FROM service_tariffs
			ORDER BY created_at DESC
			LIMIT $1`, limit)
	} else {
		rows, err = r.conn(ctx).Query(ctx, `
			SELECT `+tariffCols+`
			FROM service_tariffs
			WHERE code ILIKE $1 OR service ILIKE $1
			ORDER BY service
			LIMIT $2`, term+"%", limit)
	}
	if err != nil {
		return nil, httperr.FromPG(err, "search tariffs")
	}
	defer rows.Close()

	var out []*ServiceTariff
	for rows.Next() {
		t, err := scanTariff(rows)
		if err != nil {
			return nil, httperr.FromPG(err, "scan tariff")
		}
		out = append(out, t)
	}
	if err := rows.Err(); err != nil {
		return nil, httperr.FromPG(err, "read tariffs")
	}
	return out, nil
}

func (r *repoPG) GetTariff(ctx context.Context, code string) (*ServiceTariff, error) {
	row := r.conn(ctx).QueryRow(ctx, `
		SELECT `+tariffCols+`
		FROM service_tariffs
		WHERE code = $1`, code)
	t, err := scanTariff(row)
	if err != nil {
		return nil, httperr.FromPG(err, "get tariff")
	}
	return t, nil
}

func (r *repoPG) ListDispositions(ctx context.Context) ([]*Disposition, error) {
	rows, err := r.conn(ctx).Query(ctx, `
		SELECT id, name, description
		FROM dispositions
		ORDER BY id`)
	if err != nil {
		return nil, httperr.FromPG(err, "list dispositions")
	}
	defer rows.Close()

	var out []*Disposition
	for rows.Next() {
		var d Disposition
		if err := rows.Scan(&d.ID, &d.Name, &d.Description); err != nil {
			return nil, httperr.FromPG(err, "scan disposition")
		}
		out = append(out, &d)
	}
	if err := rows.Err(); err != nil {
		return nil, httperr.FromPG(err, "read dispositions")
	}
	return out, nil
}

func (r *repoPG) GetDisposition(ctx context.Context, id int) (*Disposition, error) {
	var d Disposition
	err := r.conn(ctx).QueryRow(ctx, `
		SELECT id, name, description
		FROM dispositions
		WHERE id = $1`, id).Scan(&d.ID, &d.Name, &d.Description)
	if err != nil {
		return nil, httperr.FromPG(err, "get disposition")
	}
	return &d, nil
}
