package encounter

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"golang.org/x/sync/errgroup"

	"github.com/nhisverify/nhisverify/internal/domain/catalog"
	"github.com/nhisverify/nhisverify/internal/domain/member"
	"github.com/nhisverify/nhisverify/internal/domain/visit"
	"github.com/nhisverify/nhisverify/internal/platform/auth"
	"github.com/nhisverify/nhisverify/internal/platform/db"
	"github.com/nhisverify/nhisverify/internal/platform/facematch"
	"github.com/nhisverify/nhisverify/internal/platform/httperr"
	"github.com/nhisverify/nhisverify/internal/platform/imagestore"
)

// DispositionLookup resolves disposition ids against the catalog.
type DispositionLookup interface {
	GetDisposition(ctx context.Context, id int) (*catalog.Disposition, error)
}

// Service drives the verification flow: Initiate issues a token from the
// member registry, Compare records a face comparison against the enrolment
// photo, and Finalize closes the token with a disposition.
type Service struct {
	repo         Repository
	members      member.Repository
	visits       *visit.Service
	dispositions DispositionLookup
	store        imagestore.Store
	scorer       facematch.Scorer
	pool         *pgxpool.Pool
	tx           func(ctx context.Context, fn func(ctx context.Context) error) error
	now          func() time.Time
}

func NewService(
	repo Repository,
	members member.Repository,
	visits *visit.Service,
	dispositions DispositionLookup,
	store imagestore.Store,
	scorer facematch.Scorer,
	pool *pgxpool.Pool,
) *Service {
	return &Service{
		repo:         repo,
		members:      members,
		visits:       visits,
		dispositions: dispositions,
		store:        store,
		scorer:       scorer,
		pool:         pool,
		now:          func() time.Time { return time.Now().UTC() },
	}
}

// inTx runs fn inside a transaction. Tests substitute tx with a fake that
// restores the map-backed repositories on error; a nil pool without an
// override runs fn directly.
func (s *Service) inTx(ctx context.Context, fn func(ctx context.Context) error) error {
	if s.tx != nil {
		return s.tx(ctx, fn)
	}
	if s.pool == nil {
		return fn(ctx)
	}
	return db.WithTx(ctx, s.pool, fn)
}

func nilIfEmpty(v string) *string {
	if v == "" {
		return nil
	}
	return &v
}

// Initiate looks up the most recent enrolment for a membership id and issues
// a verification token carrying a snapshot of it. The token and its ledger
// visit are written atomically: a failure on either leaves neither behind.
func (s *Service) Initiate(ctx context.Context, membershipID string, actor auth.Identity) (*VerificationToken, error) {
	membershipID = strings.TrimSpace(membershipID)
	if membershipID == "" {
		return nil, fmt.Errorf("%w: membership_id is required", httperr.ErrInvalidArgument)
	}
	if actor.UserID == "" {
		return nil, fmt.Errorf("%w: acting user is required", httperr.ErrInvalidArgument)
	}

	m, err := s.members.GetLatestByMembershipID(ctx, membershipID)
	if err != nil {
		return nil, err
	}

	tok := &VerificationToken{
		ID:                 uuid.New(),
		Token:              uuid.NewString(),
		MembershipID:       m.MembershipID,
		NHISNumber:         m.NHISNumber,
		FirstName:          m.FirstName,
		MiddleName:         m.MiddleName,
		LastName:           m.LastName,
		DateOfBirth:        m.DateOfBirth,
		Gender:             m.Gender,
		PhoneNumber:        nilIfEmpty(m.MobilePhoneNumber),
		GhanaCardNumber:    nilIfEmpty(m.GhanaCardNumber),
		ResidentialAddress: m.ResidentialAddress,
		EnrolmentStatus:    m.EnrolmentStatus,
		InsuranceType:      m.InsuranceType,
		CurrentExpiryDate:  m.CurrentExpiryDate,
		ProfileImageURL:    m.ProfileImageURL,
		UserID:             actor.UserID,
		CreatedAt:          s.now(),
	}

	err = s.inTx(ctx, func(ctx context.Context) error {
		if err := s.repo.Create(ctx, tok); err != nil {
			return err
		}
		return s.visits.Record(ctx, &visit.RecentVisit{
			MembershipID:        m.MembershipID,
			NHISNumber:          m.NHISNumber,
			FirstName:           m.FirstName,
			MiddleName:          m.MiddleName,
			LastName:            m.LastName,
			DateOfBirth:         m.DateOfBirth,
			Gender:              m.Gender,
			EnrolmentStatus:     m.EnrolmentStatus,
			ProfileImageURL:     m.ProfileImageURL,
			VisitDate:           tok.CreatedAt,
			UserID:              &tok.UserID,
			VerificationTokenID: tok.ID,
		})
	})
	if err != nil {
		return nil, err
	}
	return tok, nil
}

// Get returns the token row for a token string.
func (s *Service) Get(ctx context.Context, token string) (*VerificationToken, error) {
	return s.repo.GetByToken(ctx, token)
}

// ListMine returns the acting user's tokens, newest first.
func (s *Service) ListMine(ctx context.Context, userID string, limit, offset int) ([]*VerificationToken, int, error) {
	return s.repo.ListByUser(ctx, userID, limit, offset)
}

// compareAndStore runs the face comparison and the image upload
// concurrently. Either failure abandons the step with the token unchanged.
func (s *Service) compareAndStore(ctx context.Context, referenceURL, key string, image []byte) (facematch.Result, string, error) {
	var (
		result facematch.Result
		url    string
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		result, err = s.scorer.Compare(gctx, referenceURL, image)
		return err
	})
	g.Go(func() error {
		var err error
		url, err = s.store.Put(gctx, key, image, imagestore.ContentTypeJPEG)
		return err
	})
	if err := g.Wait(); err != nil {
		return facematch.Result{}, "", err
	}
	return result, url, nil
}

// Compare scores a live capture against the token's enrolment photo and
// records the outcome. Repeating the call overwrites the previous outcome.
func (s *Service) Compare(ctx context.Context, token string, image []byte) (*VerificationToken, error) {
	if len(image) == 0 {
		return nil, fmt.Errorf("%w: image is required", httperr.ErrInvalidArgument)
	}
	tok, err := s.repo.GetByToken(ctx, token)
	if err != nil {
		return nil, err
	}

	result, url, err := s.compareAndStore(ctx, tok.ProfileImageURL, imagestore.ProfileKey(tok.UserID, s.now()), image)
	if err != nil {
		return nil, err
	}
	if err := s.repo.SetCompareResult(ctx, tok.Token, result.IsMatch, url); err != nil {
		return nil, err
	}

	tok.VerificationStatus = &result.IsMatch
	tok.CompareImageURL = &url
	return tok, nil
}

// Finalize closes a token with a disposition, re-scoring the member against
// a fresh capture. Only the user who initiated the token may finalize it,
// and finalizing again overwrites the earlier outcome.
func (s *Service) Finalize(ctx context.Context, token string, dispositionID int, image []byte, actorID string) (*VerificationToken, error) {
	if len(image) == 0 {
		return nil, fmt.Errorf("%w: image is required", httperr.ErrInvalidArgument)
	}
	tok, err := s.repo.GetByToken(ctx, token)
	if err != nil {
		return nil, err
	}
	if tok.UserID != actorID {
		return nil, fmt.Errorf("%w: token belongs to another user", httperr.ErrForbidden)
	}

	disp, err := s.dispositions.GetDisposition(ctx, dispositionID)
	if err != nil {
		if errors.Is(err, httperr.ErrNotFound) {
			return nil, fmt.Errorf("%w: unknown disposition %d", httperr.ErrInvalidArgument, dispositionID)
		}
		return nil, err
	}

	result, url, err := s.compareAndStore(ctx, tok.ProfileImageURL, imagestore.EncounterKey(tok.UserID, s.now()), image)
	if err != nil {
		return nil, err
	}

	finalTime := s.now()
	if err := s.repo.Finalize(ctx, tok.Token, result.IsMatch, disp.Name, finalTime, url); err != nil {
		return nil, err
	}

	tok.FinalVerificationStatus = &result.IsMatch
	tok.DispositionName = &disp.Name
	tok.FinalTime = &finalTime
	tok.EncounterImageURL = &url
	return tok, nil
}
