package catalog

import (
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	"github.com/nhisverify/nhisverify/internal/platform/httperr"
)

// Handler serves the medicines and tariff catalogs plus the disposition list.
type Handler struct {
	svc *Service
}

func NewHandler(svc *Service) *Handler {
	return &Handler{svc: svc}
}

func (h *Handler) RegisterRoutes(g *echo.Group) {
	g.GET("/medicines/search", h.searchMedicines)
	g.GET("/medicines/:code", h.getMedicine)
	g.GET("/service-tariffs/search", h.searchTariffs)
	g.GET("/service-tariffs/:code", h.getTariff)
	g.GET("/dispositions", h.listDispositions)
}

func queryLimit(c echo.Context) int {
	limit, _ := strconv.Atoi(c.QueryParam("limit"))
	return limit
}

func (h *Handler) searchMedicines(c echo.Context) error {
	meds, err := h.svc.SearchMedicines(c.Request().Context(), c.QueryParam("query"), queryLimit(c))
	if err != nil {
		return httperr.ToHTTP(err, "medicine search failed")
	}
	return c.JSON(http.StatusOK, meds)
}

func (h *Handler) getMedicine(c echo.Context) error {
	m, err := h.svc.GetMedicine(c.Request().Context(), c.Param("code"))
	if err != nil {
		return httperr.ToHTTP(err, "medicine not found")
	}
	return c.JSON(http.StatusOK, m)
}

func (h *Handler) searchTariffs(c echo.Context) error {
	tariffs, err := h.svc.SearchTariffs(c.Request().Context(), c.QueryParam("query"), queryLimit(c))
	if err != nil {
		return httperr.ToHTTP(err, "tariff search failed")
	}
	return c.JSON(http.StatusOK, tariffs)
}

func (h *Handler) getTariff(c echo.Context) error {
	t, err := h.svc.GetTariff(c.Request().Context(), c.Param("code"))
	if err != nil {
		return httperr.ToHTTP(err, "tariff not found")
	}
	return c.JSON(http.StatusOK, t)
}

func (h *Handler) listDispositions(c echo.Context) error {
	ds, err := h.svc.ListDispositions(c.Request().Context())
	if err != nil {
		return httperr.ToHTTP(err, "could not list dispositions")
	}
	return c.JSON(http.StatusOK, ds)
}
