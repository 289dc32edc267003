package claim

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/labstack/echo/v4"

	"github.com/nhisverify/nhisverify/internal/platform/auth"
)

func newTestServer(svc *Service, userID string) *echo.Echo {
	e := echo.New()
	e.Use(func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			ident := auth.Identity{UserID: userID, HospitalName: "Korle Bu Teaching Hospital", Location: "Accra"}
			ctx := auth.WithIdentity(c.Request().Context(), ident)
			c.SetRequest(c.Request().WithContext(ctx))
			return next(c)
		}
	})
	NewHandler(svc).RegisterRoutes(e.Group("/api/v1"))
	return e
}

func TestHandlerSubmit(t *testing.T) {
	svc, _, _ := newFixture()
	e := newTestServer(svc, "user-1")

	body := `{"encounter_token":"tok-1","diagnosis":"Uncomplicated malaria","service_type":["OPD"],"drugs":[{"code":"ARTEAA1","dosage":"bid"}],"medical_procedures":[],"lab_tests":[]}`
	req := httptest.NewRequest(http.MethodPost, "/api/v1/claims/submit", strings.NewReader(body))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)

	if rec.Code != http.StatusCreated {
		t.Fatalf("status = %d, body = %s", rec.Code, rec.Body.String())
	}
	var got Claim
	if err := json.Unmarshal(rec.Body.Bytes(), &got); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if got.Status != StatusPending {
		t.Errorf("status = %q", got.Status)
	}
}

func TestHandlerSubmit_Duplicate(t *testing.T) {
	svc, _, _ := newFixture()
	e := newTestServer(svc, "user-1")

	body := `{"encounter_token":"tok-1","diagnosis":"Malaria","service_type":["OPD"]}`
	for i, want := range []int{http.StatusCreated, http.StatusConflict} {
		req := httptest.NewRequest(http.MethodPost, "/api/v1/claims/submit", strings.NewReader(body))
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
		rec := httptest.NewRecorder()
		e.ServeHTTP(rec, req)
		if rec.Code != want {
			t.Fatalf("submit %d: status = %d, want %d, body = %s", i+1, rec.Code, want, rec.Body.String())
		}
	}
}

func TestHandlerList_BadDate(t *testing.T) {
	svc, _, _ := newFixture()
	e := newTestServer(svc, "user-1")

	req := httptest.NewRequest(http.MethodGet, "/api/v1/claims?start_date=lastweek", nil)
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, body = %s", rec.Code, rec.Body.String())
	}
}

func TestHandlerDraftUpdate_OtherUser(t *testing.T) {
	svc, _, _ := newFixture()
	if _, err := svc.CreateDraft(httptest.NewRequest(http.MethodGet, "/", nil).Context(), &Draft{EncounterToken: "tok-1"}, actor); err != nil {
		t.Fatalf("CreateDraft: %v", err)
	}
	e := newTestServer(svc, "user-2")

	req := httptest.NewRequest(http.MethodPut, "/api/v1/claim-drafts/tok-1", strings.NewReader(`{"diagnosis":"x"}`))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)

	if rec.Code != http.StatusForbidden {
		t.Fatalf("status = %d, body = %s", rec.Code, rec.Body.String())
	}
}

func TestHandlerNotifications(t *testing.T) {
	svc, repo, _ := newFixture()
	repo.notifications[StatusApproved] = 2
	e := newTestServer(svc, "user-1")

	req := httptest.NewRequest(http.MethodGet, "/api/v1/claims/notifications", nil)
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", rec.Code, rec.Body.String())
	}
	if !strings.Contains(rec.Body.String(), StatusApproved) {
		t.Errorf("body missing approved count: %s", rec.Body.String())
	}
}
