package visit

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/nhisverify/nhisverify/internal/platform/db"
	"github.com/nhisverify/nhisverify/internal/platform/httperr"
)

type repoPG struct {
	pool *pgxpool.Pool
}

// NewRepo returns a Postgres-backed visit ledger.
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

const visitCols = `id, membership_id, nhis_number, first_name, middle_name, last_name,
	date_of_birth, gender, enrolment_status, profile_image_url, visit_date,
	user_id, verification_token_id`

func scanVisit(row pgx.Row) (*RecentVisit, error) {
	var v RecentVisit
	err := row.Scan(
		&v.ID, &v.MembershipID, &v.NHISNumber, &v.FirstName, &v.MiddleName, &v.LastName,
		&v.DateOfBirth, &v.Gender, &v.EnrolmentStatus, &v.ProfileImageURL, &v.VisitDate,
		&v.UserID, &v.VerificationTokenID,
	)
	if err != nil {
		return nil, err
	}
	return &v, nil
}

func (r *repoPG) Create(ctx context.Context, v *RecentVisit) error {
	_, err := r.conn(ctx).Exec(ctx, `
		INSERT INTO recent_visits (`+visitCols+`)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)`,
		v.ID, v.MembershipID, v.NHISNumber, v.FirstName, v.MiddleName, v.LastName,
		v.DateOfBirth, v.Gender, v.EnrolmentStatus, v.ProfileImageURL, v.VisitDate,
		v.UserID, v.VerificationTokenID,
	)
	return httperr.FromPG(err, "create visit")
}

func (r *repoPG) List(ctx context.Context, f Filter, limit, offset int) ([]*RecentVisit, int, error) {
	var (
		where []string
		args  []any
	)
	arg := func(v any) string {
		args = append(args, v)
		return fmt.Sprintf("$%d", len(args))
	}
	if f.UserID != "" {
		where = append(where, "user_id = "+arg(f.UserID))
	}
	if f.From != nil {
		where = append(where, "visit_date >= "+arg(*f.From))
	}
	if f.To != nil {
		where = append(where, "visit_date <= "+arg(*f.To))
	}
	clause := ""
	if len(where) > 0 {
		clause = " WHERE " + strings.Join(where, " AND ")
	}

	var total int
	err := r.conn(ctx).QueryRow(ctx, `SELECT count(*) FROM recent_visits`+clause, args...).Scan(&total)
	if err != nil {
		return nil, 0, httperr.FromPG(err, "count visits")
	}

	query := `SELECT ` + visitCols + ` FROM recent_visits` + clause +
		` ORDER BY visit_date DESC LIMIT ` + arg(limit) + ` OFFSET ` + arg(offset)
	rows, err := r.conn(ctx).Query(ctx, query, args...)
	if err != nil {
		return nil, 0, httperr.FromPG(err, "list visits")
	}
	defer rows.Close()

	var out []*RecentVisit
	for rows.Next() {
		v, err := scanVisit(rows)
		if err != nil {
			return nil, 0, httperr.FromPG(err, "scan visit")
		}
		out = append(out, v)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, httperr.FromPG(err, "read visits")
	}
	return out, total, nil
}

func (r *repoPG) GetByID(ctx context.Context, id uuid.UUID) (*RecentVisit, error) {
	row := r.conn(ctx).QueryRow(ctx, `
		SELECT `+visitCols+`
		FROM recent_visits
		WHERE id = $1`, id)
	v, err := scanVisit(row)
	if err != nil {
		return nil, httperr.FromPG(err, "get visit")
	}
	return v, nil
}

func (r *repoPG) Delete(ctx context.Context, id uuid.UUID) error {
	tag, err := r.conn(ctx).Exec(ctx, `DELETE FROM recent_visits WHERE id = $1`, id)
	if err != nil {
		return httperr.FromPG(err, "delete visit")
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("%w: visit %s", httperr.ErrNotFound, id)
	}
	return nil
}
