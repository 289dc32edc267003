package member

import (
	"context"
	"sort"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/nhisverify/nhisverify/internal/platform/db"
	"github.com/nhisverify/nhisverify/internal/platform/httperr"
)

type repoPG struct {
	pool *pgxpool.Pool
}

// NewRepo returns a Postgres-backed member repository.
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

const memberCols = `id, membership_id, first_name, middle_name, last_name,
	date_of_birth, gender, marital_status, nhis_number, insurance_type,
	issue_date, enrolment_status, current_expiry_date, mobile_phone_number,
	residential_address, ghana_card_number, profile_image_url, created_at`

const memberColsM = `m.id, m.membership_id, m.first_name, m.middle_name, m.last_name,
	m.date_of_birth, m.gender, m.marital_status, m.nhis_number, m.insurance_type,
	m.issue_date, m.enrolment_status, m.current_expiry_date, m.mobile_phone_number,
	m.residential_address, m.ghana_card_number, m.profile_image_url, m.created_at`

func scanMember(row pgx.Row) (*Member, error) {
	var m Member
	err := row.Scan(
		&m.ID, &m.MembershipID, &m.FirstName, &m.MiddleName, &m.LastName,
		&m.DateOfBirth, &m.Gender, &m.MaritalStatus, &m.NHISNumber, &m.InsuranceType,
		&m.IssueDate, &m.EnrolmentStatus, &m.CurrentExpiryDate, &m.MobilePhoneNumber,
		&m.ResidentialAddress, &m.GhanaCardNumber, &m.ProfileImageURL, &m.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &m, nil
}

func (r *repoPG) GetLatestByMembershipID(ctx context.Context, membershipID string) (*Member, error) {
	row := r.conn(ctx).QueryRow(ctx, `
		SELECT `+memberCols+`
		FROM members
		WHERE membership_id = $1
		ORDER BY created_at DESC
		LIMIT 1`, membershipID)
	m, err := scanMember(row)
	if err != nil {
		return nil, httperr.FromPG(err, "get member")
	}
	return m, nil
}

func (r *repoPG) Autocomplete(ctx context.Context, query string, limit, offset int) ([]*AutocompleteRow, error) {
	pattern := "%" + query + "%"
	rows, err := r.conn(ctx).Query(ctx, `
		SELECT DISTINCT ON (m.id) `+memberColsM+`,
			rv.visit_date, vt.final_verification_status, vt.disposition_name
		FROM members m
		LEFT JOIN LATERAL (
			SELECT visit_date, verification_token_id
			FROM recent_visits
			WHERE membership_id = m.membership_id
			ORDER BY visit_date DESC
			LIMIT 1
		) rv ON true
		LEFT JOIN verification_tokens vt ON vt.id = rv.verification_token_id
		WHERE m.membership_id ILIKE $1
		   OR m.first_name ILIKE $1
		   OR m.middle_name ILIKE $1
		   OR m.last_name ILIKE $1
		   OR m.nhis_number ILIKE $1
		ORDER BY m.id, m.created_at DESC`, pattern)
	if err != nil {
		return nil, httperr.FromPG(err, "search members")
	}
	defer rows.Close()

	var out []*AutocompleteRow
	for rows.Next() {
		var ar AutocompleteRow
		err := rows.Scan(
			&ar.ID, &ar.MembershipID, &ar.FirstName, &ar.MiddleName, &ar.LastName,
			&ar.DateOfBirth, &ar.Gender, &ar.MaritalStatus, &ar.NHISNumber, &ar.InsuranceType,
			&ar.IssueDate, &ar.EnrolmentStatus, &ar.CurrentExpiryDate, &ar.MobilePhoneNumber,
			&ar.ResidentialAddress, &ar.GhanaCardNumber, &ar.ProfileImageURL, &ar.CreatedAt,
			&ar.LastVisit, &ar.FinalVerificationStatus, &ar.DispositionName,
		)
		if err != nil {
			return nil, httperr.FromPG(err, "search members")
		}
		out = append(out, &ar)
	}
	if err := rows.Err(); err != nil {
		return nil, httperr.FromPG(err, "search members")
	}

	// DISTINCT ON forces ordering by id first, so sort and page in memory.
	// The pattern match keeps result sets small enough for that.
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].LastName < out[j].LastName
	})
	if offset >= len(out) {
		return []*AutocompleteRow{}, nil
	}
	out = out[offset:]
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}
