package member

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/nhisverify/nhisverify/internal/platform/httperr"
	"github.com/nhisverify/nhisverify/pkg/pagination"
)

// Handler serves member registry lookups.
type Handler struct {
	svc *Service
}

func NewHandler(svc *Service) *Handler {
	return &Handler{svc: svc}
}

func (h *Handler) RegisterRoutes(g *echo.Group) {
	g.GET("/members/autocomplete", h.autocomplete)
	g.GET("/members/:membership_id", h.get)
}

func (h *Handler) get(c echo.Context) error {
	m, err := h.svc.Get(c.Request().Context(), c.Param("membership_id"))
	if err != nil {
		return httperr.ToHTTP(err, "member not found")
	}
	return c.JSON(http.StatusOK, m)
}

func (h *Handler) autocomplete(c echo.Context) error {
	page := pagination.FromContext(c)
	rows, err := h.svc.Autocomplete(c.Request().Context(), c.QueryParam("query"), page.Limit, page.Offset)
	if err != nil {
		return httperr.ToHTTP(err, "member search failed")
	}
	return c.JSON(http.StatusOK, rows)
}
