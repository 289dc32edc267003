package visit

import (
	"fmt"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"github.com/nhisverify/nhisverify/internal/platform/auth"
	"github.com/nhisverify/nhisverify/internal/platform/httperr"
	"github.com/nhisverify/nhisverify/pkg/pagination"
)

// Handler serves the visit ledger.
type Handler struct {
	svc *Service
}

func NewHandler(svc *Service) *Handler {
	return &Handler{svc: svc}
}

func (h *Handler) RegisterRoutes(g *echo.Group) {
	g.GET("/recent-visits", h.list)
	g.GET("/recent-visits/my", h.listMine)
	g.GET("/recent-visits/:id", h.get)
	g.DELETE("/recent-visits/:id", h.delete)
}

func (h *Handler) list(c echo.Context) error {
	page := pagination.FromContext(c)
	visits, total, err := h.svc.List(c.Request().Context(), page.Limit, page.Offset)
	if err != nil {
		return httperr.ToHTTP(err, "could not list visits")
	}
	return c.JSON(http.StatusOK, pagination.NewResponse(visits, total, page.Limit, page.Offset))
}

// parseDate accepts a plain date or a full RFC 3339 timestamp.
func parseDate(raw string) (*time.Time, error) {
	if raw == "" {
		return nil, nil
	}
	if t, err := time.Parse("2006-01-02", raw); err == nil {
		return &t, nil
	}
	t, err := time.Parse(time.RFC3339, raw)
	if err != nil {
		return nil, fmt.Errorf("%w: invalid date %q", httperr.ErrInvalidArgument, raw)
	}
	return &t, nil
}

func (h *Handler) listMine(c echo.Context) error {
	ident := auth.IdentityFromContext(c.Request().Context())
	if ident.UserID == "" {
		return echo.NewHTTPError(http.StatusUnauthorized, "authentication required")
	}
	from, err := parseDate(c.QueryParam("from"))
	if err != nil {
		return httperr.ToHTTP(err, "invalid from date")
	}
	to, err := parseDate(c.QueryParam("to"))
	if err != nil {
		return httperr.ToHTTP(err, "invalid to date")
	}

	page := pagination.FromContext(c)
	visits, total, err := h.svc.ListMine(c.Request().Context(), ident.UserID, from, to, page.Limit, page.Offset)
	if err != nil {
		return httperr.ToHTTP(err, "could not list visits")
	}
	return c.JSON(http.StatusOK, pagination.NewResponse(visits, total, page.Limit, page.Offset))
}

func (h *Handler) get(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid visit id")
	}
	v, err := h.svc.Get(c.Request().Context(), id)
	if err != nil {
		return httperr.ToHTTP(err, "visit not found")
	}
	return c.JSON(http.StatusOK, v)
}

func (h *Handler) delete(c echo.Context) error {
	ident := auth.IdentityFromContext(c.Request().Context())
	if ident.UserID == "" {
		return echo.NewHTTPError(http.StatusUnauthorized, "authentication required")
	}
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid visit id")
	}
	if err := h.svc.Delete(c.Request().Context(), id, ident.UserID); err != nil {
		return httperr.ToHTTP(err, "could not delete visit")
	}
	return c.NoContent(http.StatusNoContent)
}
