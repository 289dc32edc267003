package encounter

import (
	"context"
	"fmt"
	"time"

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

// NewRepo returns a Postgres-backed verification token repository.
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

const tokenCols = `id, token, membership_id, nhis_number, first_name, middle_name, last_name,
	date_of_birth, gender, phone_number, ghana_card_number, residential_address,
	enrolment_status, insurance_type, current_expiry_date, profile_image_url,
	compare_image_url, encounter_image_url, verification_status,
	final_verification_status, disposition_name, final_time, user_id, created_at`

func scanToken(row pgx.Row) (*VerificationToken, error) {
	var t VerificationToken
	err := row.Scan(
		&t.ID, &t.Token, &t.MembershipID, &t.NHISNumber, &t.FirstName, &t.MiddleName, &t.LastName,
		&t.DateOfBirth, &t.Gender, &t.PhoneNumber, &t.GhanaCardNumber, &t.ResidentialAddress,
		&t.EnrolmentStatus, &t.InsuranceType, &t.CurrentExpiryDate, &t.ProfileImageURL,
		&t.CompareImageURL, &t.EncounterImageURL, &t.VerificationStatus,
		&t.FinalVerificationStatus, &t.DispositionName, &t.FinalTime, &t.UserID, &t.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &t, nil
}

func (r *repoPG) Create(ctx context.Context, tok *VerificationToken) error {
	if tok.ID == uuid.Nil {
		tok.ID = uuid.New()
	}
	_, err := r.conn(ctx).Exec(ctx, `
		INSERT INTO verification_tokens (
			id, token, membership_id, nhis_number, first_name, middle_name, last_name,
			date_of_birth, gender, phone_number, ghana_card_number, residential_address,
			enrolment_status, insurance_type, current_expiry_date, profile_image_url, user_id
		) VALUES (
			$1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14,$15,$16,$17
		)`,
		tok.ID, tok.Token, tok.MembershipID, tok.NHISNumber, tok.FirstName, tok.MiddleName, tok.LastName,
		tok.DateOfBirth, tok.Gender, tok.PhoneNumber, tok.GhanaCardNumber, tok.ResidentialAddress,
		tok.EnrolmentStatus, tok.InsuranceType, tok.CurrentExpiryDate, tok.ProfileImageURL, tok.UserID,
	)
	return httperr.FromPG(err, "create verification token")
}

func (r *repoPG) GetByToken(ctx context.Context, token string) (*VerificationToken, error) {
	row := r.conn(ctx).QueryRow(ctx, `
		SELECT `+tokenCols+`
		FROM verification_tokens
		WHERE token = $1`, token)
	t, err := scanToken(row)
	if err != nil {
		return nil, httperr.FromPG(err, "get verification token")
	}
	return t, nil
}

func (r *repoPG) SetCompareResult(ctx context.Context, token string, verified bool, compareImageURL string) error {
	tag, err := r.conn(ctx).Exec(ctx, `
		UPDATE verification_tokens
		SET verification_status = $2, compare_image_url = $3
		WHERE token = $1`, token, verified, compareImageURL)
	if err != nil {
		return httperr.FromPG(err, "record compare result")
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("%w: verification token", httperr.ErrNotFound)
	}
	return nil
}

func (r *repoPG) Finalize(ctx context.Context, token string, finalStatus bool, dispositionName string, finalTime time.Time, encounterImageURL string) error {
	tag, err := r.conn(ctx).Exec(ctx, `
		UPDATE verification_tokens
		SET final_verification_status = $2,
		    disposition_name = $3,
		    final_time = $4,
		    encounter_image_url = $5
		WHERE token = $1`, token, finalStatus, dispositionName, finalTime, encounterImageURL)
	if err != nil {
		return httperr.FromPG(err, "finalize verification token")
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("%w: verification token", httperr.ErrNotFound)
	}
	return nil
}

func (r *repoPG) ListByUser(ctx context.Context, userID string, limit, offset int) ([]*VerificationToken, int, error) {
	var total int
	err := r.conn(ctx).QueryRow(ctx,
		`SELECT count(*) FROM verification_tokens WHERE user_id = $1`, userID).Scan(&total)
	if err != nil {
		return nil, 0, httperr.FromPG(err, "count verification tokens")
	}

	rows, err := r.conn(ctx).Query(ctx, `
		SELECT `+tokenCols+`
		FROM verification_tokens
		WHERE user_id = $1
		ORDER BY created_at DESC
		LIMIT $2 OFFSET $3`, userID, limit, offset)
	if err != nil {
		return nil, 0, httperr.FromPG(err, "list verification tokens")
	}
	defer rows.Close()

	var out []*VerificationToken
	for rows.Next() {
		t, err := scanToken(rows)
		if err != nil {
			return nil, 0, httperr.FromPG(err, "scan verification token")
		}
		out = append(out, t)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, httperr.FromPG(err, "read verification tokens")
	}
	return out, total, nil
}
