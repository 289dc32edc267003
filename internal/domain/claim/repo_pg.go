package claim

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/nhisverify/nhisverify/internal/platform/db"
	"github.com/nhisverify/nhisverify/internal/platform/httperr"
)

type repoPG struct {
	pool *pgxpool.Pool
}

// NewRepo returns a Postgres-backed claim repository.
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

const claimCols = `encounter_token, diagnosis, service_type, drugs, medical_procedures,
	lab_tests, patient_name, hospital_name, location, user_id, status, reason,
	adjusted_amount, total_payout, created_at`

func scanClaim(row pgx.Row) (*Claim, error) {
	var c Claim
	err := row.Scan(
		&c.EncounterToken, &c.Diagnosis, &c.ServiceType, &c.Drugs, &c.MedicalProcedures,
		&c.LabTests, &c.PatientName, &c.HospitalName, &c.Location, &c.UserID, &c.Status, &c.Reason,
		&c.AdjustedAmount, &c.TotalPayout, &c.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &c, nil
}

func (r *repoPG) Create(ctx context.Context, c *Claim) error {
	_, err := r.conn(ctx).Exec(ctx, `
		INSERT INTO claims (
			encounter_token, diagnosis, service_type, drugs, medical_procedures,
			lab_tests, patient_name, hospital_name, location, user_id, status, created_at
		) VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12)`,
		c.EncounterToken, c.Diagnosis, c.ServiceType, c.Drugs, c.MedicalProcedures,
		c.LabTests, c.PatientName, c.HospitalName, c.Location, c.UserID, c.Status, c.CreatedAt,
	)
	return httperr.FromPG(err, "create claim")
}

func (r *repoPG) GetByToken(ctx context.Context, token string) (*Claim, error) {
	row := r.conn(ctx).QueryRow(ctx, `
		SELECT `+claimCols+`
		FROM claims
		WHERE encounter_token = $1`, token)
	c, err := scanClaim(row)
	if err != nil {
		return nil, httperr.FromPG(err, "get claim")
	}
	return c, nil
}

func (r *repoPG) List(ctx context.Context, f Filter, limit, offset int) ([]*Claim, int, error) {
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
	if f.EncounterToken != "" {
		where = append(where, "encounter_token = "+arg(f.EncounterToken))
	}
	if f.Status != "" {
		where = append(where, "status = "+arg(f.Status))
	}
	if f.From != nil {
		where = append(where, "created_at >= "+arg(*f.From))
	}
	if f.To != nil {
		where = append(where, "created_at <= "+arg(*f.To))
	}
	clause := ""
	if len(where) > 0 {
		clause = " WHERE " + strings.Join(where, " AND ")
	}

	var total int
	err := r.conn(ctx).QueryRow(ctx, `SELECT count(*) FROM claims`+clause, args...).Scan(&total)
	if err != nil {
		return nil, 0, httperr.FromPG(err, "count claims")
	}

	query := `SELECT ` + claimCols + ` FROM claims` + clause +
		` ORDER BY created_at DESC LIMIT ` + arg(limit) + ` OFFSET ` + arg(offset)
	rows, err := r.conn(ctx).Query(ctx, query, args...)
	if err != nil {
		return nil, 0, httperr.FromPG(err, "list claims")
	}
	defer rows.Close()

	var out []*Claim
	for rows.Next() {
		c, err := scanClaim(rows)
		if err != nil {
			return nil, 0, httperr.FromPG(err, "scan claim")
		}
		out = append(out, c)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, httperr.FromPG(err, "read claims")
	}
	return out, total, nil
}

func (r *repoPG) NextPending(ctx context.Context) (*Claim, error) {
	row := r.conn(ctx).QueryRow(ctx, `
		SELECT `+claimCols+`
		FROM claims
		WHERE status = $1
		ORDER BY created_at ASC
		LIMIT 1`, StatusPending)
	c, err := scanClaim(row)
	if err != nil {
		return nil, httperr.FromPG(err, "next pending claim")
	}
	return c, nil
}

func (r *repoPG) CommitVerdict(ctx context.Context, token, status string, totalPayout float64, reason string) error {
	tag, err := r.conn(ctx).Exec(ctx, `
		UPDATE claims
		SET status = $2, total_payout = $3, reason = $4
		WHERE encounter_token = $1`, token, status, totalPayout, reason)
	if err != nil {
		return httperr.FromPG(err, "commit verdict")
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("%w: claim %s", httperr.ErrNotFound, token)
	}
	return nil
}

const draftCols = `encounter_token, diagnosis, service_type, drugs, medical_procedures,
	lab_tests, patient_name, hospital_name, location, status, reason,
	adjusted_amount, total_payout, user_id, created_at, updated_at`

func scanDraft(row pgx.Row) (*Draft, error) {
	var d Draft
	err := row.Scan(
		&d.EncounterToken, &d.Diagnosis, &d.ServiceType, &d.Drugs, &d.MedicalProcedures,
		&d.LabTests, &d.PatientName, &d.HospitalName, &d.Location, &d.Status, &d.Reason,
		&d.AdjustedAmount, &d.TotalPayout, &d.UserID,
		&d.CreatedAt, &d.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &d, nil
}

func (r *repoPG) CreateDraft(ctx context.Context, d *Draft) error {
	_, err := r.conn(ctx).Exec(ctx, `
		INSERT INTO claim_drafts (
			encounter_token, diagnosis, service_type, drugs, medical_procedures,
			lab_tests, patient_name, hospital_name, location, status, reason,
			adjusted_amount, total_payout, user_id, created_at, updated_at
		) VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14,$15,$16)`,
		d.EncounterToken, d.Diagnosis, d.ServiceType, d.Drugs, d.MedicalProcedures,
		d.LabTests, d.PatientName, d.HospitalName, d.Location, d.Status, d.Reason,
		d.AdjustedAmount, d.TotalPayout, d.UserID,
		d.CreatedAt, d.UpdatedAt,
	)
	return httperr.FromPG(err, "create claim draft")
}

func (r *repoPG) GetDraft(ctx context.Context, token string) (*Draft, error) {
	row := r.conn(ctx).QueryRow(ctx, `
		SELECT `+draftCols+`
		FROM claim_drafts
		WHERE encounter_token = $1`, token)
	d, err := scanDraft(row)
	if err != nil {
		return nil, httperr.FromPG(err, "get claim draft")
	}
	return d, nil
}

func (r *repoPG) ListDrafts(ctx context.Context, userID string) ([]*Draft, error) {
	rows, err := r.conn(ctx).Query(ctx, `
		SELECT `+draftCols+`
		FROM claim_drafts
		WHERE user_id = $1
		ORDER BY updated_at DESC`, userID)
	if err != nil {
		return nil, httperr.FromPG(err, "list claim drafts")
	}
	defer rows.Close()

	var out []*Draft
	for rows.Next() {
		d, err := scanDraft(rows)
		if err != nil {
			return nil, httperr.FromPG(err, "scan claim draft")
		}
		out = append(out, d)
	}
	if err := rows.Err(); err != nil {
		return nil, httperr.FromPG(err, "read claim drafts")
	}
	return out, nil
}

func (r *repoPG) UpdateDraft(ctx context.Context, d *Draft) error {
	d.UpdatedAt = time.Now().UTC()
	tag, err := r.conn(ctx).Exec(ctx, `
		UPDATE claim_drafts
		SET diagnosis = $2, service_type = $3, drugs = $4, medical_procedures = $5,
		    lab_tests = $6, patient_name = $7, hospital_name = $8, location = $9,
		    status = $10, reason = $11, adjusted_amount = $12, total_payout = $13,
		    updated_at = $14
		WHERE encounter_token = $1`,
		d.EncounterToken, d.Diagnosis, d.ServiceType, d.Drugs, d.MedicalProcedures,
		d.LabTests, d.PatientName, d.HospitalName, d.Location,
		d.Status, d.Reason, d.AdjustedAmount, d.TotalPayout, d.UpdatedAt,
	)
	if err != nil {
		return httperr.FromPG(err, "update claim draft")
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("%w: claim draft %s", httperr.ErrNotFound, d.EncounterToken)
	}
	return nil
}

func (r *repoPG) DeleteDraft(ctx context.Context, token string) error {
	tag, err := r.conn(ctx).Exec(ctx, `DELETE FROM claim_drafts WHERE encounter_token = $1`, token)
	if err != nil {
		return httperr.FromPG(err, "delete claim draft")
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("%w: claim draft %s", httperr.ErrNotFound, token)
	}
	return nil
}

func (r *repoPG) BumpNotification(ctx context.Context, status string) error {
	_, err := r.conn(ctx).Exec(ctx, `
		INSERT INTO claim_notifications (status, count)
		VALUES ($1, 1)
		ON CONFLICT (status) DO UPDATE SET count = claim_notifications.count + 1`, status)
	return httperr.FromPG(err, "bump notification")
}

func (r *repoPG) NotificationCounts(ctx context.Context) ([]*NotificationCount, error) {
	rows, err := r.conn(ctx).Query(ctx, `
		SELECT status, count FROM claim_notifications ORDER BY status`)
	if err != nil {
		return nil, httperr.FromPG(err, "notification counts")
	}
	defer rows.Close()

	var out []*NotificationCount
	for rows.Next() {
		var n NotificationCount
		if err := rows.Scan(&n.Status, &n.Count); err != nil {
			return nil, httperr.FromPG(err, "scan notification count")
		}
		out = append(out, &n)
	}
	if err := rows.Err(); err != nil {
		return nil, httperr.FromPG(err, "read notification counts")
	}
	return out, nil
}
