package member

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
)

func newTestServer(repo Repository) *echo.Echo {
	e := echo.New()
	h := NewHandler(NewService(repo))
	h.RegisterRoutes(e.Group("/api/v1"))
	return e
}

func TestHandlerGet_OK(t *testing.T) {
	repo := newMockRepo()
	repo.members["NHIS-001"] = []*Member{testMember("NHIS-001", time.Now())}
	e := newTestServer(repo)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/members/NHIS-001", nil)
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", rec.Code, rec.Body.String())
	}
}

func TestHandlerGet_NotFound(t *testing.T) {
	e := newTestServer(newMockRepo())

	req := httptest.NewRequest(http.MethodGet, "/api/v1/members/NHIS-404", nil)
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)

	if rec.Code != http.StatusNotFound {
		t.Fatalf("status = %d, body = %s", rec.Code, rec.Body.String())
	}
}

func TestHandlerAutocomplete(t *testing.T) {
	repo := newMockRepo()
	repo.hits = []*AutocompleteRow{{Member: *testMember("NHIS-001", time.Now())}}
	e := newTestServer(repo)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/members/autocomplete?query=mensah", nil)
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", rec.Code, rec.Body.String())
	}
	if repo.lastQ != "mensah" {
		t.Errorf("query passed to repo = %q", repo.lastQ)
	}
}
