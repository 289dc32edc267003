package encounter

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/nhisverify/nhisverify/internal/domain/catalog"
	"github.com/nhisverify/nhisverify/internal/domain/member"
	"github.com/nhisverify/nhisverify/internal/domain/visit"
	"github.com/nhisverify/nhisverify/internal/platform/auth"
	"github.com/nhisverify/nhisverify/internal/platform/facematch"
	"github.com/nhisverify/nhisverify/internal/platform/httperr"
	"github.com/nhisverify/nhisverify/internal/platform/imagestore"
)

type mockRepo struct {
	tokens map[string]*VerificationToken
}

func newMockRepo() *mockRepo {
	return &mockRepo{tokens: map[string]*VerificationToken{}}
}

func (m *mockRepo) Create(_ context.Context, tok *VerificationToken) error {
	if tok.ID == uuid.Nil {
		tok.ID = uuid.New()
	}
	cp := *tok
	m.tokens[tok.Token] = &cp
	return nil
}

func (m *mockRepo) GetByToken(_ context.Context, token string) (*VerificationToken, error) {
	tok, ok := m.tokens[token]
	if !ok {
		return nil, fmt.Errorf("%w: verification token", httperr.ErrNotFound)
	}
	cp := *tok
	return &cp, nil
}

func (m *mockRepo) SetCompareResult(_ context.Context, token string, verified bool, compareImageURL string) error {
	tok, ok := m.tokens[token]
	if !ok {
		return fmt.Errorf("%w: verification token", httperr.ErrNotFound)
	}
	tok.VerificationStatus = &verified
	tok.CompareImageURL = &compareImageURL
	return nil
}

func (m *mockRepo) Finalize(_ context.Context, token string, finalStatus bool, dispositionName string, finalTime time.Time, encounterImageURL string) error {
	tok, ok := m.tokens[token]
	if !ok {
		return fmt.Errorf("%w: verification token", httperr.ErrNotFound)
	}
	tok.FinalVerificationStatus = &finalStatus
	tok.DispositionName = &dispositionName
	tok.FinalTime = &finalTime
	tok.EncounterImageURL = &encounterImageURL
	return nil
}

func (m *mockRepo) ListByUser(_ context.Context, userID string, limit, offset int) ([]*VerificationToken, int, error) {
	var out []*VerificationToken
	for _, tok := range m.tokens {
		if tok.UserID == userID {
			cp := *tok
			out = append(out, &cp)
		}
	}
	return out, len(out), nil
}

type mockMemberRepo struct {
	members map[string]*member.Member
}

func (m *mockMemberRepo) GetLatestByMembershipID(_ context.Context, membershipID string) (*member.Member, error) {
	mem, ok := m.members[membershipID]
	if !ok {
		return nil, fmt.Errorf("%w: member", httperr.ErrNotFound)
	}
	return mem, nil
}

func (m *mockMemberRepo) Autocomplete(context.Context, string, int, int) ([]*member.AutocompleteRow, error) {
	return nil, nil
}

type mockVisitRepo struct {
	visits  []*visit.RecentVisit
	failing bool
}

func (m *mockVisitRepo) Create(_ context.Context, v *visit.RecentVisit) error {
	if m.failing {
		return fmt.Errorf("ledger unavailable")
	}
	m.visits = append(m.visits, v)
	return nil
}

func (m *mockVisitRepo) List(context.Context, visit.Filter, int, int) ([]*visit.RecentVisit, int, error) {
	return m.visits, len(m.visits), nil
}

func (m *mockVisitRepo) GetByID(context.Context, uuid.UUID) (*visit.RecentVisit, error) {
	return nil, fmt.Errorf("%w: visit", httperr.ErrNotFound)
}

func (m *mockVisitRepo) Delete(context.Context, uuid.UUID) error {
	return fmt.Errorf("%w: visit", httperr.ErrNotFound)
}

type mockDispositions struct {
	byID map[int]*catalog.Disposition
}

func (m *mockDispositions) GetDisposition(_ context.Context, id int) (*catalog.Disposition, error) {
	d, ok := m.byID[id]
	if !ok {
		return nil, fmt.Errorf("%w: disposition %d", httperr.ErrNotFound, id)
	}
	return d, nil
}

type fixture struct {
	repo    *mockRepo
	members *mockMemberRepo
	visits  *mockVisitRepo
	store   *imagestore.MemoryStore
	scorer  *facematch.StaticScorer
	svc     *Service
}

func newFixture() *fixture {
	f := &fixture{
		repo:    newMockRepo(),
		members: &mockMemberRepo{members: map[string]*member.Member{}},
		visits:  &mockVisitRepo{},
		store:   imagestore.NewMemoryStore(),
		scorer:  &facematch.StaticScorer{Result: facematch.Result{IsMatch: true, Confidence: 0.97}},
	}
	dispositions := &mockDispositions{byID: map[int]*catalog.Disposition{
		1: {ID: 1, Name: "Treated and discharged"},
		2: {ID: 2, Name: "Referred"},
	}}
	f.members.members["NHIS-001"] = &member.Member{
		ID:              uuid.New(),
		MembershipID:    "NHIS-001",
		FirstName:       "Ama",
		LastName:        "Mensah",
		DateOfBirth:     time.Date(1990, 5, 12, 0, 0, 0, 0, time.UTC),
		Gender:          "Female",
		NHISNumber:      "01234567",
		EnrolmentStatus: "Active",
		ProfileImageURL: "https://img.test/profiles/ama.jpg",
	}
	f.svc = NewService(f.repo, f.members, visit.NewService(f.visits), dispositions, f.store, f.scorer, nil)
	return f
}

var actor = auth.Identity{UserID: "user-1", HospitalName: "Korle Bu Teaching Hospital", Location: "Accra"}

func TestInitiate_IssuesTokenAndVisit(t *testing.T) {
	f := newFixture()

	tok, err := f.svc.Initiate(context.Background(), "NHIS-001", actor)
	if err != nil {
		t.Fatalf("Initiate: %v", err)
	}
	if tok.Token == "" {
		t.Error("expected a token string")
	}
	if tok.MembershipID != "NHIS-001" || tok.FirstName != "Ama" {
		t.Errorf("snapshot not copied: %+v", tok)
	}
	if tok.UserID != "user-1" {
		t.Errorf("user id = %q", tok.UserID)
	}
	if tok.Finalized() {
		t.Error("fresh token should not be finalized")
	}
	if len(f.visits.visits) != 1 {
		t.Fatalf("expected 1 ledger visit, got %d", len(f.visits.visits))
	}
	if f.visits.visits[0].VerificationTokenID != tok.ID {
		t.Error("visit should reference the token")
	}
}

func TestInitiate_UnknownMember(t *testing.T) {
	f := newFixture()
	_, err := f.svc.Initiate(context.Background(), "NHIS-404", actor)
	if !errors.Is(err, httperr.ErrNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}
}

func TestInitiate_VisitFailureRollsBack(t *testing.T) {
	f := newFixture()
	f.visits.failing = true
	// Snapshot-restoring stand-in for the database transaction.
	f.svc.tx = func(ctx context.Context, fn func(ctx context.Context) error) error {
		tokens := make(map[string]*VerificationToken, len(f.repo.tokens))
		for k, v := range f.repo.tokens {
			tokens[k] = v
		}
		visits := append([]*visit.RecentVisit(nil), f.visits.visits...)
		if err := fn(ctx); err != nil {
			f.repo.tokens = tokens
			f.visits.visits = visits
			return err
		}
		return nil
	}

	_, err := f.svc.Initiate(context.Background(), "NHIS-001", actor)
	if err == nil {
		t.Fatal("expected an error when the ledger write fails")
	}
	if len(f.repo.tokens) != 0 {
		t.Errorf("token row survived a failed initiate: %d", len(f.repo.tokens))
	}
	if len(f.visits.visits) != 0 {
		t.Errorf("visit row survived a failed initiate: %d", len(f.visits.visits))
	}
}

func initiated(t *testing.T, f *fixture) *VerificationToken {
	t.Helper()
	tok, err := f.svc.Initiate(context.Background(), "NHIS-001", actor)
	if err != nil {
		t.Fatalf("Initiate: %v", err)
	}
	return tok
}

func TestCompare_RecordsOutcome(t *testing.T) {
	f := newFixture()
	tok := initiated(t, f)

	got, err := f.svc.Compare(context.Background(), tok.Token, []byte("jpeg-bytes"))
	if err != nil {
		t.Fatalf("Compare: %v", err)
	}
	if got.VerificationStatus == nil || !*got.VerificationStatus {
		t.Error("expected a positive verification status")
	}
	if got.CompareImageURL == nil || *got.CompareImageURL == "" {
		t.Error("expected a compare image url")
	}
	if f.store.Len() != 1 {
		t.Errorf("expected 1 stored image, got %d", f.store.Len())
	}

	stored, _ := f.repo.GetByToken(context.Background(), tok.Token)
	if stored.VerificationStatus == nil || !*stored.VerificationStatus {
		t.Error("outcome not persisted")
	}
}

func TestCompare_Mismatch(t *testing.T) {
	f := newFixture()
	f.scorer.Result = facematch.Result{IsMatch: false, Confidence: 0.12}
	tok := initiated(t, f)

	got, err := f.svc.Compare(context.Background(), tok.Token, []byte("jpeg-bytes"))
	if err != nil {
		t.Fatalf("Compare: %v", err)
	}
	if got.VerificationStatus == nil || *got.VerificationStatus {
		t.Error("expected a negative verification status")
	}
}

func TestCompare_ScorerFailureLeavesTokenUntouched(t *testing.T) {
	f := newFixture()
	f.scorer.Err = fmt.Errorf("%w: comparison service down", httperr.ErrUpstream)
	tok := initiated(t, f)

	_, err := f.svc.Compare(context.Background(), tok.Token, []byte("jpeg-bytes"))
	if !errors.Is(err, httperr.ErrUpstream) {
		t.Fatalf("expected upstream error, got %v", err)
	}

	stored, _ := f.repo.GetByToken(context.Background(), tok.Token)
	if stored.VerificationStatus != nil || stored.CompareImageURL != nil {
		t.Error("failed compare must not modify the token")
	}
}

func TestCompare_UnknownToken(t *testing.T) {
	f := newFixture()
	_, err := f.svc.Compare(context.Background(), "nope", []byte("jpeg-bytes"))
	if !errors.Is(err, httperr.ErrNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}
}

func TestCompare_EmptyImage(t *testing.T) {
	f := newFixture()
	tok := initiated(t, f)
	_, err := f.svc.Compare(context.Background(), tok.Token, nil)
	if !errors.Is(err, httperr.ErrInvalidArgument) {
		t.Fatalf("expected invalid argument, got %v", err)
	}
}

func TestFinalize_SetsDispositionAndTimeTogether(t *testing.T) {
	f := newFixture()
	tok := initiated(t, f)

	got, err := f.svc.Finalize(context.Background(), tok.Token, 1, []byte("jpeg-bytes"), "user-1")
	if err != nil {
		t.Fatalf("Finalize: %v", err)
	}
	if !got.Finalized() {
		t.Fatal("token should be finalized")
	}
	if got.DispositionName == nil || *got.DispositionName != "Treated and discharged" {
		t.Errorf("disposition = %v", got.DispositionName)
	}
	if got.FinalTime == nil {
		t.Error("final time must accompany the disposition")
	}
	if got.EncounterImageURL == nil {
		t.Error("expected an encounter image url")
	}
}

func TestFinalize_WrongActor(t *testing.T) {
	f := newFixture()
	tok := initiated(t, f)

	_, err := f.svc.Finalize(context.Background(), tok.Token, 1, []byte("jpeg-bytes"), "user-2")
	if !errors.Is(err, httperr.ErrForbidden) {
		t.Fatalf("expected forbidden, got %v", err)
	}
	stored, _ := f.repo.GetByToken(context.Background(), tok.Token)
	if stored.Finalized() {
		t.Error("token must not be finalized by another user")
	}
}

func TestFinalize_UnknownDisposition(t *testing.T) {
	f := newFixture()
	tok := initiated(t, f)

	_, err := f.svc.Finalize(context.Background(), tok.Token, 99, []byte("jpeg-bytes"), "user-1")
	if !errors.Is(err, httperr.ErrInvalidArgument) {
		t.Fatalf("expected invalid argument, got %v", err)
	}
}

func TestFinalize_RepeatOverwrites(t *testing.T) {
	f := newFixture()
	tok := initiated(t, f)

	if _, err := f.svc.Finalize(context.Background(), tok.Token, 1, []byte("jpeg-bytes"), "user-1"); err != nil {
		t.Fatalf("first Finalize: %v", err)
	}
	got, err := f.svc.Finalize(context.Background(), tok.Token, 2, []byte("jpeg-bytes"), "user-1")
	if err != nil {
		t.Fatalf("second Finalize: %v", err)
	}
	if got.DispositionName == nil || *got.DispositionName != "Referred" {
		t.Errorf("disposition = %v, want overwrite to Referred", got.DispositionName)
	}
}
