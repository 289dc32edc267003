package claim

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/nhisverify/nhisverify/internal/domain/encounter"
	"github.com/nhisverify/nhisverify/internal/platform/auth"
	"github.com/nhisverify/nhisverify/internal/platform/httperr"
)

// TokenLookup resolves encounter tokens against the verification store.
type TokenLookup interface {
	GetByToken(ctx context.Context, token string) (*encounter.VerificationToken, error)
}

// Service handles claim submission, listing and the draft workspace.
// Adjudication itself runs in the background worker.
type Service struct {
	repo   Repository
	tokens TokenLookup
	now    func() time.Time
}

func NewService(repo Repository, tokens TokenLookup) *Service {
	return &Service{
		repo:   repo,
		tokens: tokens,
		now:    func() time.Time { return time.Now().UTC() },
	}
}

// SubmitRequest is the claim submission payload.
type SubmitRequest struct {
	EncounterToken    string   `json:"encounter_token"`
	Diagnosis         string   `json:"diagnosis"`
	ServiceType       []string `json:"service_type"`
	Drugs             []Drug   `json:"drugs"`
	MedicalProcedures []string `json:"medical_procedures"`
	LabTests          []string `json:"lab_tests"`
}

func (r *SubmitRequest) validate() error {
	if strings.TrimSpace(r.EncounterToken) == "" {
		return fmt.Errorf("%w: encounter_token is required", httperr.ErrInvalidArgument)
	}
	if strings.TrimSpace(r.Diagnosis) == "" {
		return fmt.Errorf("%w: diagnosis is required", httperr.ErrInvalidArgument)
	}
	if len(r.ServiceType) == 0 {
		return fmt.Errorf("%w: service_type is required", httperr.ErrInvalidArgument)
	}
	for _, d := range r.Drugs {
		if strings.TrimSpace(d.Code) == "" {
			return fmt.Errorf("%w: drug code is required", httperr.ErrInvalidArgument)
		}
	}
	return nil
}

// Submit records a claim against a verified encounter. The patient name
// comes from the token snapshot; hospital and location from the submitting
// user. One claim per encounter token.
func (s *Service) Submit(ctx context.Context, req *SubmitRequest, actor auth.Identity) (*Claim, error) {
	if err := req.validate(); err != nil {
		return nil, err
	}
	if actor.UserID == "" {
		return nil, fmt.Errorf("%w: acting user is required", httperr.ErrInvalidArgument)
	}

	tok, err := s.tokens.GetByToken(ctx, req.EncounterToken)
	if err != nil {
		return nil, err
	}

	c := &Claim{
		EncounterToken:    tok.Token,
		Diagnosis:         req.Diagnosis,
		ServiceType:       req.ServiceType,
		Drugs:             req.Drugs,
		MedicalProcedures: req.MedicalProcedures,
		LabTests:          req.LabTests,
		PatientName:       tok.FullName(),
		HospitalName:      actor.HospitalName,
		Location:          actor.Location,
		UserID:            actor.UserID,
		Status:            StatusPending,
		CreatedAt:         s.now(),
	}
	if c.Drugs == nil {
		c.Drugs = []Drug{}
	}
	if c.MedicalProcedures == nil {
		c.MedicalProcedures = []string{}
	}
	if err := s.repo.Create(ctx, c); err != nil {
		return nil, err
	}
	return c, nil
}

// Get returns the claim for an encounter token.
func (s *Service) Get(ctx context.Context, token string) (*Claim, error) {
	return s.repo.GetByToken(ctx, token)
}

// List returns claims newest first, filtered and paginated.
func (s *Service) List(ctx context.Context, f Filter, limit, offset int) ([]*Claim, int, error) {
	if f.From != nil && f.To != nil && f.To.Before(*f.From) {
		return nil, 0, fmt.Errorf("%w: date range is inverted", httperr.ErrInvalidArgument)
	}
	return s.repo.List(ctx, f, limit, offset)
}

// NotificationCounts returns the running adjudication outcome totals.
func (s *Service) NotificationCounts(ctx context.Context) ([]*NotificationCount, error) {
	return s.repo.NotificationCounts(ctx)
}

// CreateDraft opens a draft workspace for an encounter token.
func (s *Service) CreateDraft(ctx context.Context, d *Draft, actor auth.Identity) (*Draft, error) {
	if strings.TrimSpace(d.EncounterToken) == "" {
		return nil, fmt.Errorf("%w: encounter_token is required", httperr.ErrInvalidArgument)
	}
	if _, err := s.tokens.GetByToken(ctx, d.EncounterToken); err != nil {
		return nil, err
	}
	d.UserID = actor.UserID
	now := s.now()
	d.CreatedAt = now
	d.UpdatedAt = now
	if err := s.repo.CreateDraft(ctx, d); err != nil {
		return nil, err
	}
	return d, nil
}

func (s *Service) ownedDraft(ctx context.Context, token, actorID string) (*Draft, error) {
	d, err := s.repo.GetDraft(ctx, token)
	if err != nil {
		return nil, err
	}
	if d.UserID != actorID {
		return nil, fmt.Errorf("%w: draft belongs to another user", httperr.ErrForbidden)
	}
	return d, nil
}

// GetDraft returns a draft. Only its owner may read it.
func (s *Service) GetDraft(ctx context.Context, token, actorID string) (*Draft, error) {
	return s.ownedDraft(ctx, token, actorID)
}

// ListDrafts returns the acting user's drafts, most recently edited first.
func (s *Service) ListDrafts(ctx context.Context, actorID string) ([]*Draft, error) {
	return s.repo.ListDrafts(ctx, actorID)
}

// UpdateDraft applies a partial edit to a draft. Nil fields in the update
// keep their stored values.
func (s *Service) UpdateDraft(ctx context.Context, token string, upd *DraftUpdate, actorID string) (*Draft, error) {
	d, err := s.ownedDraft(ctx, token, actorID)
	if err != nil {
		return nil, err
	}
	if upd.Diagnosis != nil {
		d.Diagnosis = upd.Diagnosis
	}
	if upd.ServiceType != nil {
		d.ServiceType = upd.ServiceType
	}
	if upd.Drugs != nil {
		d.Drugs = upd.Drugs
	}
	if upd.MedicalProcedures != nil {
		d.MedicalProcedures = upd.MedicalProcedures
	}
	if upd.LabTests != nil {
		d.LabTests = upd.LabTests
	}
	if upd.PatientName != nil {
		d.PatientName = upd.PatientName
	}
	if upd.HospitalName != nil {
		d.HospitalName = upd.HospitalName
	}
	if upd.Location != nil {
		d.Location = upd.Location
	}
	if upd.Status != nil {
		d.Status = upd.Status
	}
	if upd.Reason != nil {
		d.Reason = upd.Reason
	}
	if upd.AdjustedAmount != nil {
		d.AdjustedAmount = upd.AdjustedAmount
	}
	if upd.TotalPayout != nil {
		d.TotalPayout = upd.TotalPayout
	}
	if err := s.repo.UpdateDraft(ctx, d); err != nil {
		return nil, err
	}
	return d, nil
}

// DeleteDraft removes a draft. Only its owner may delete it.
func (s *Service) DeleteDraft(ctx context.Context, token, actorID string) error {
	if _, err := s.ownedDraft(ctx, token, actorID); err != nil {
		return err
	}
	return s.repo.DeleteDraft(ctx, token)
}
