package catalog

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sort"
	"strings"
	"testing"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/nhisverify/nhisverify/internal/platform/httperr"
)

type mockRepo struct {
	medicines    map[string]*Medicine
	tariffs      map[string]*ServiceTariff
	dispositions map[int]*Disposition
	lastLimit    int
}

func newMockRepo() *mockRepo {
	return &mockRepo{
		medicines:    map[string]*Medicine{},
		tariffs:      map[string]*ServiceTariff{},
		dispositions: map[int]*Disposition{},
	}
}

func (m *mockRepo) SearchMedicines(_ context.Context, term string, limit int) ([]*Medicine, error) {
	m.lastLimit = limit
	var out []*Medicine
	for _, med := range m.medicines {
		if term == "" ||
			strings.HasPrefix(strings.ToLower(med.Code), strings.ToLower(term)) ||
			strings.HasPrefix(strings.ToLower(med.GenericName), strings.ToLower(term)) {
			out = append(out, med)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Code < out[j].Code })
	if len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (m *mockRepo) GetMedicine(_ context.Context, code string) (*Medicine, error) {
	med, ok := m.medicines[code]
	if !ok {
		return nil, fmt.Errorf("%w: medicine %s", httperr.ErrNotFound, code)
	}
	return med, nil
}

func (m *mockRepo) SearchTariffs(_ context.Context, term string, limit int) ([]*ServiceTariff, error) {
	m.lastLimit = limit
	var out []*ServiceTariff
	for _, t := range m.tariffs {
		if term == "" ||
			strings.HasPrefix(strings.ToLower(t.Code), strings.ToLower(term)) ||
			strings.HasPrefix(strings.ToLower(t.Service), strings.ToLower(term)) {
			out = append(out, t)
		}
	}
	if len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (m *mockRepo) GetTariff(_ context.Context, code string) (*ServiceTariff, error) {
	t, ok := m.tariffs[code]
	if !ok {
		return nil, fmt.Errorf("%w: tariff %s", httperr.ErrNotFound, code)
	}
	return t, nil
}

func (m *mockRepo) ListDispositions(_ context.Context) ([]*Disposition, error) {
	var out []*Disposition
	for _, d := range m.dispositions {
		out = append(out, d)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (m *mockRepo) GetDisposition(_ context.Context, id int) (*Disposition, error) {
	d, ok := m.dispositions[id]
	if !ok {
		return nil, fmt.Errorf("%w: disposition %d", httperr.ErrNotFound, id)
	}
	return d, nil
}

func seedRepo(repo *mockRepo) {
	repo.medicines["PARAAA1"] = &Medicine{
		Code: "PARAAA1", GenericName: "Paracetamol 500mg", UnitOfPricing: "Tablet",
		Price: 0.35, LevelOfPrescribing: "A", CreatedAt: time.Now(),
	}
	repo.medicines["AMOXBB2"] = &Medicine{
		Code: "AMOXBB2", GenericName: "Amoxicillin 250mg", UnitOfPricing: "Capsule",
		Price: 0.80, LevelOfPrescribing: "B", CreatedAt: time.Now(),
	}
	repo.tariffs["OPDC01"] = &ServiceTariff{Code: "OPDC01", Service: "OPD consultation", Tariff: 12.50, CreatedAt: time.Now()}
	repo.tariffs["LABM05"] = &ServiceTariff{Code: "LABM05", Service: "Malaria test (RDT)", Tariff: 6.00, CreatedAt: time.Now()}
	repo.dispositions[1] = &Disposition{ID: 1, Name: "Treated and discharged"}
	repo.dispositions[2] = &Disposition{ID: 2, Name: "Referred"}
}

func TestSearchMedicines_Prefix(t *testing.T) {
	repo := newMockRepo()
	seedRepo(repo)
	svc := NewService(repo)

	meds, err := svc.SearchMedicines(context.Background(), "para", 0)
	if err != nil {
		t.Fatalf("SearchMedicines: %v", err)
	}
	if len(meds) != 1 || meds[0].Code != "PARAAA1" {
		t.Fatalf("expected the paracetamol entry, got %v", meds)
	}
}

func TestSearchMedicines_DefaultLimit(t *testing.T) {
	repo := newMockRepo()
	seedRepo(repo)
	svc := NewService(repo)

	if _, err := svc.SearchMedicines(context.Background(), "", 0); err != nil {
		t.Fatalf("SearchMedicines: %v", err)
	}
	if repo.lastLimit != defaultSearchLimit {
		t.Errorf("limit = %d, want %d", repo.lastLimit, defaultSearchLimit)
	}

	if _, err := svc.SearchMedicines(context.Background(), "", 10_000); err != nil {
		t.Fatalf("SearchMedicines: %v", err)
	}
	if repo.lastLimit != maxSearchLimit {
		t.Errorf("limit = %d, want clamp to %d", repo.lastLimit, maxSearchLimit)
	}
}

func TestGetMedicine_Unknown(t *testing.T) {
	svc := NewService(newMockRepo())
	_, err := svc.GetMedicine(context.Background(), "NOPE")
	if !errors.Is(err, httperr.ErrNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}
}

func TestSearchTariffs_Prefix(t *testing.T) {
	repo := newMockRepo()
	seedRepo(repo)
	svc := NewService(repo)

	tariffs, err := svc.SearchTariffs(context.Background(), "lab", 0)
	if err != nil {
		t.Fatalf("SearchTariffs: %v", err)
	}
	if len(tariffs) != 1 || tariffs[0].Code != "LABM05" {
		t.Fatalf("expected the lab tariff, got %v", tariffs)
	}
}

func TestListDispositions_Ordered(t *testing.T) {
	repo := newMockRepo()
	seedRepo(repo)
	svc := NewService(repo)

	ds, err := svc.ListDispositions(context.Background())
	if err != nil {
		t.Fatalf("ListDispositions: %v", err)
	}
	if len(ds) != 2 || ds[0].ID != 1 || ds[1].ID != 2 {
		t.Fatalf("unexpected dispositions: %v", ds)
	}
}

func TestHandlerSearchMedicines(t *testing.T) {
	repo := newMockRepo()
	seedRepo(repo)
	e := echo.New()
	NewHandler(NewService(repo)).RegisterRoutes(e.Group("/api/v1"))

	req := httptest.NewRequest(http.MethodGet, "/api/v1/medicines/search?query=amox", nil)
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", rec.Code, rec.Body.String())
	}
	if !strings.Contains(rec.Body.String(), "Amoxicillin") {
		t.Errorf("body missing match: %s", rec.Body.String())
	}
}

func TestHandlerGetTariff_NotFound(t *testing.T) {
	e := echo.New()
	NewHandler(NewService(newMockRepo())).RegisterRoutes(e.Group("/api/v1"))

	req := httptest.NewRequest(http.MethodGet, "/api/v1/service-tariffs/NOPE", nil)
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)

	if rec.Code != http.StatusNotFound {
		t.Fatalf("status = %d, body = %s", rec.Code, rec.Body.String())
	}
}
