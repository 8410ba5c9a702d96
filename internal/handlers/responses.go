package handlers

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/daechang/placetalk/internal/domain"
)

// httpError maps domain sentinel errors onto HTTP statuses. Store errors
// propagate through the service layer unchanged, so this is the single place
// the taxonomy meets the wire.
func httpError(err error) *echo.HTTPError {
	switch {
	case errors.Is(err, domain.ErrChatroomExists):
		return echo.NewHTTPError(http.StatusConflict, err.Error())
	case errors.Is(err, domain.ErrChatroomNotFound), errors.Is(err, domain.ErrMarkerNotFound):
		return echo.NewHTTPError(http.StatusNotFound, err.Error())
	case errors.Is(err, domain.ErrInvalidMessage):
		return echo.NewHTTPError(http.StatusUnprocessableEntity, err.Error())
	default:
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
}
