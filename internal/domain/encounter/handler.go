package encounter

import (
	"fmt"
	"io"
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	"github.com/nhisverify/nhisverify/internal/platform/auth"
	"github.com/nhisverify/nhisverify/internal/platform/httperr"
	"github.com/nhisverify/nhisverify/internal/platform/imagestore"
	"github.com/nhisverify/nhisverify/pkg/pagination"
)

// Handler serves the verification flow.
type Handler struct {
	svc *Service
}

func NewHandler(svc *Service) *Handler {
	return &Handler{svc: svc}
}

func (h *Handler) RegisterRoutes(g *echo.Group) {
	g.POST("/verification/initiate", h.initiate)
	g.GET("/verification/my", h.listMine)
	g.GET("/verification/:token", h.get)
	g.POST("/verification/:token/compare", h.compare)
	g.POST("/verification/:token/finalize", h.finalize)
}

type initiateRequest struct {
	MembershipID string `json:"membership_id"`
}

func (h *Handler) initiate(c echo.Context) error {
	var req initiateRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}
	ident := auth.IdentityFromContext(c.Request().Context())
	tok, err := h.svc.Initiate(c.Request().Context(), req.MembershipID, ident)
	if err != nil {
		return httperr.ToHTTP(err, "could not initiate verification")
	}
	return c.JSON(http.StatusCreated, tok)
}

func (h *Handler) get(c echo.Context) error {
	tok, err := h.svc.Get(c.Request().Context(), c.Param("token"))
	if err != nil {
		return httperr.ToHTTP(err, "verification token not found")
	}
	return c.JSON(http.StatusOK, tok)
}

func (h *Handler) listMine(c echo.Context) error {
	ident := auth.IdentityFromContext(c.Request().Context())
	if ident.UserID == "" {
		return echo.NewHTTPError(http.StatusUnauthorized, "authentication required")
	}
	page := pagination.FromContext(c)
	toks, total, err := h.svc.ListMine(c.Request().Context(), ident.UserID, page.Limit, page.Offset)
	if err != nil {
		return httperr.ToHTTP(err, "could not list verifications")
	}
	return c.JSON(http.StatusOK, pagination.NewResponse(toks, total, page.Limit, page.Offset))
}

// readImage pulls the uploaded capture out of the multipart form.
func readImage(c echo.Context) ([]byte, error) {
	fh, err := c.FormFile("image")
	if err != nil {
		return nil, fmt.Errorf("%w: image file is required", httperr.ErrInvalidArgument)
	}
	if fh.Size > imagestore.MaxImageSize {
		return nil, fmt.Errorf("%w: image exceeds %d bytes", httperr.ErrInvalidArgument, imagestore.MaxImageSize)
	}
	f, err := fh.Open()
	if err != nil {
		return nil, fmt.Errorf("%w: could not read image", httperr.ErrInvalidArgument)
	}
	defer f.Close()
	data, err := io.ReadAll(f)
	if err != nil {
		return nil, fmt.Errorf("%w: could not read image", httperr.ErrInvalidArgument)
	}
	return data, nil
}

func (h *Handler) compare(c echo.Context) error {
	image, err := readImage(c)
	if err != nil {
		return httperr.ToHTTP(err, "invalid image upload")
	}
	tok, err := h.svc.Compare(c.Request().Context(), c.Param("token"), image)
	if err != nil {
		return httperr.ToHTTP(err, "face comparison failed")
	}
	return c.JSON(http.StatusOK, tok)
}

func (h *Handler) finalize(c echo.Context) error {
	ident := auth.IdentityFromContext(c.Request().Context())
	if ident.UserID == "" {
		return echo.NewHTTPError(http.StatusUnauthorized, "authentication required")
	}
	dispositionID, err := strconv.Atoi(c.FormValue("disposition_id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "disposition_id is required")
	}
	image, err := readImage(c)
	if err != nil {
		return httperr.ToHTTP(err, "invalid image upload")
	}
	tok, err := h.svc.Finalize(c.Request().Context(), c.Param("token"), dispositionID, image, ident.UserID)
	if err != nil {
		return httperr.ToHTTP(err, "could not finalize verification")
	}
	return c.JSON(http.StatusOK, tok)
}
