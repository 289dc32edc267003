// Package httperr defines the service's error taxonomy and its mapping onto
// HTTP responses. Repositories and services return (or wrap) these sentinels;
// handlers convert them with ToHTTP so status codes stay consistent across
// domains.
package httperr

import (
	"errors"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"
)

var (
	// ErrNotFound: entity (member, token, draft, disposition) does not exist.
	ErrNotFound = errors.New("not found")
	// ErrForbidden: the acting user does not own the resource.
	ErrForbidden = errors.New("forbidden")
	// ErrConflict: duplicate primary key, e.g. re-submitting a claim.
	ErrConflict = errors.New("conflict")
	// ErrInvalidArgument: bad disposition id, malformed request payload.
	ErrInvalidArgument = errors.New("invalid argument")
	// ErrUpstream: similarity scorer, image store, or assessment oracle
	// failed or returned a malformed response.
	ErrUpstream = errors.New("upstream failure")
)

// ToHTTP converts a taxonomy error into an echo HTTPError carrying msg.
// Validation errors keep their wrapped detail ("diagnosis is required")
// since services write those messages for the caller. Unrecognized errors
// become 500s with a generic message so internals never leak.
func ToHTTP(err error, msg string) error {
	switch {
	case errors.Is(err, ErrNotFound):
		return echo.NewHTTPError(http.StatusNotFound, msg)
	case errors.Is(err, ErrForbidden):
		return echo.NewHTTPError(http.StatusForbidden, msg)
	case errors.Is(err, ErrConflict):
		return echo.NewHTTPError(http.StatusConflict, msg)
	case errors.Is(err, ErrInvalidArgument):
		if detail := strings.TrimPrefix(err.Error(), ErrInvalidArgument.Error()+": "); detail != "" && detail != err.Error() {
			return echo.NewHTTPError(http.StatusBadRequest, detail)
		}
		return echo.NewHTTPError(http.StatusBadRequest, msg)
	case errors.Is(err, ErrUpstream):
		return echo.NewHTTPError(http.StatusBadGateway, msg)
	default:
		return echo.NewHTTPError(http.StatusInternalServerError, "internal server error")
	}
}
