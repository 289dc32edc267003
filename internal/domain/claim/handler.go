package claim

import (
	"fmt"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/nhisverify/nhisverify/internal/platform/auth"
	"github.com/nhisverify/nhisverify/internal/platform/httperr"
	"github.com/nhisverify/nhisverify/pkg/pagination"
)

// Handler serves claim submission, listing, drafts and notification counts.
type Handler struct {
	svc *Service
}

func NewHandler(svc *Service) *Handler {
	return &Handler{svc: svc}
}

func (h *Handler) RegisterRoutes(g *echo.Group) {
	g.POST("/claims/submit", h.submit)
	g.GET("/claims", h.list)
	g.GET("/claims/notifications", h.notifications)
	g.GET("/claims/:token", h.get)

	g.POST("/claim-drafts", h.createDraft)
	g.GET("/claim-drafts", h.listDrafts)
	g.GET("/claim-drafts/:token", h.getDraft)
	g.PUT("/claim-drafts/:token", h.updateDraft)
	g.DELETE("/claim-drafts/:token", h.deleteDraft)
}

func requireIdentity(c echo.Context) (auth.Identity, error) {
	ident := auth.IdentityFromContext(c.Request().Context())
	if ident.UserID == "" {
		return ident, echo.NewHTTPError(http.StatusUnauthorized, "authentication required")
	}
	return ident, nil
}

func (h *Handler) submit(c echo.Context) error {
	ident, err := requireIdentity(c)
	if err != nil {
		return err
	}
	var req SubmitRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}
	cl, err := h.svc.Submit(c.Request().Context(), &req, ident)
	if err != nil {
		return httperr.ToHTTP(err, "could not submit claim")
	}
	return c.JSON(http.StatusCreated, cl)
}

// parseTimestamp accepts RFC 3339 or a plain date.
func parseTimestamp(raw string) (*time.Time, error) {
	if raw == "" {
		return nil, nil
	}
	if t, err := time.Parse(time.RFC3339, raw); err == nil {
		return &t, nil
	}
	t, err := time.Parse("2006-01-02", raw)
	if err != nil {
		return nil, fmt.Errorf("%w: invalid timestamp %q", httperr.ErrInvalidArgument, raw)
	}
	return &t, nil
}

func (h *Handler) list(c echo.Context) error {
	from, err := parseTimestamp(c.QueryParam("start_date"))
	if err != nil {
		return httperr.ToHTTP(err, "invalid start_date")
	}
	to, err := parseTimestamp(c.QueryParam("end_date"))
	if err != nil {
		return httperr.ToHTTP(err, "invalid end_date")
	}
	f := Filter{
		UserID:         c.QueryParam("user_id"),
		EncounterToken: c.QueryParam("encounter_token"),
		Status:         c.QueryParam("status"),
		From:           from,
		To:             to,
	}

	page := pagination.FromContext(c)
	claims, total, err := h.svc.List(c.Request().Context(), f, page.Limit, page.Offset)
	if err != nil {
		return httperr.ToHTTP(err, "could not list claims")
	}
	return c.JSON(http.StatusOK, pagination.NewResponse(claims, total, page.Limit, page.Offset))
}

func (h *Handler) get(c echo.Context) error {
	cl, err := h.svc.Get(c.Request().Context(), c.Param("token"))
	if err != nil {
		return httperr.ToHTTP(err, "claim not found")
	}
	return c.JSON(http.StatusOK, cl)
}

func (h *Handler) notifications(c echo.Context) error {
	counts, err := h.svc.NotificationCounts(c.Request().Context())
	if err != nil {
		return httperr.ToHTTP(err, "could not read notification counts")
	}
	return c.JSON(http.StatusOK, counts)
}

func (h *Handler) createDraft(c echo.Context) error {
	ident, err := requireIdentity(c)
	if err != nil {
		return err
	}
	var d Draft
	if err := c.Bind(&d); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}
	created, err := h.svc.CreateDraft(c.Request().Context(), &d, ident)
	if err != nil {
		return httperr.ToHTTP(err, "could not create draft")
	}
	return c.JSON(http.StatusCreated, created)
}

func (h *Handler) listDrafts(c echo.Context) error {
	ident, err := requireIdentity(c)
	if err != nil {
		return err
	}
	drafts, err := h.svc.ListDrafts(c.Request().Context(), ident.UserID)
	if err != nil {
		return httperr.ToHTTP(err, "could not list drafts")
	}
	return c.JSON(http.StatusOK, drafts)
}

func (h *Handler) getDraft(c echo.Context) error {
	ident, err := requireIdentity(c)
	if err != nil {
		return err
	}
	d, err := h.svc.GetDraft(c.Request().Context(), c.Param("token"), ident.UserID)
	if err != nil {
		return httperr.ToHTTP(err, "draft not found")
	}
	return c.JSON(http.StatusOK, d)
}

func (h *Handler) updateDraft(c echo.Context) error {
	ident, err := requireIdentity(c)
	if err != nil {
		return err
	}
	var upd DraftUpdate
	if err := c.Bind(&upd); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}
	d, err := h.svc.UpdateDraft(c.Request().Context(), c.Param("token"), &upd, ident.UserID)
	if err != nil {
		return httperr.ToHTTP(err, "could not update draft")
	}
	return c.JSON(http.StatusOK, d)
}

func (h *Handler) deleteDraft(c echo.Context) error {
	ident, err := requireIdentity(c)
	if err != nil {
		return err
	}
	if err := h.svc.DeleteDraft(c.Request().Context(), c.Param("token"), ident.UserID); err != nil {
		return httperr.ToHTTP(err, "could not delete draft")
	}
	return c.JSON(http.StatusOK, map[string]string{"message": "draft deleted"})
}
