package httpapi

import (
	"errors"
	"net/http"

	"github.com/dmitrijs2005/bienesraices/internal/common"
	"github.com/labstack/echo/v4"
)

// errorResponse converts a service error into the HTTP reply. Expected
// lifecycle errors keep their distinct messages; anything unexpected is
// logged and hidden behind a 500.
func (s *HTTPServer) errorResponse(c echo.Context, err error) error {
	switch {
	case errors.Is(err, common.ErrDuplicateEmail):
		return echo.NewHTTPError(http.StatusConflict, common.ErrDuplicateEmail.Error())
	case errors.Is(err, common.ErrUnknownEmail):
		return echo.NewHTTPError(http.StatusNotFound, common.ErrUnknownEmail.Error())
	case errors.Is(err, common.ErrUnknownUser):
		return echo.NewHTTPError(http.StatusUnauthorized, common.ErrUnknownUser.Error())
	case errors.Is(err, common.ErrAccountNotConfirmed):
		return echo.NewHTTPError(http.StatusUnauthorized, common.ErrAccountNotConfirmed.Error())
	case errors.Is(err, common.ErrInvalidPassword):
		return echo.NewHTTPError(http.StatusUnauthorized, common.ErrInvalidPassword.Error())
	case errors.Is(err, common.ErrInvalidToken):
		return echo.NewHTTPError(http.StatusBadRequest, common.ErrInvalidToken.Error())
	case errors.Is(err, common.ErrInvalidInput):
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	case errors.Is(err, common.ErrMessageTooShort):
		return echo.NewHTTPError(http.StatusBadRequest, common.ErrMessageTooShort.Error())
	case errors.Is(err, common.ErrMissingImage):
		return echo.NewHTTPError(http.StatusBadRequest, common.ErrMissingImage.Error())
	case errors.Is(err, common.ErrPropertyNotPublished):
		return echo.NewHTTPError(http.StatusNotFound, common.ErrPropertyNotPublished.Error())
	case errors.Is(err, common.ErrOwnMessage):
		return echo.NewHTTPError(http.StatusForbidden, common.ErrOwnMessage.Error())
	case errors.Is(err, common.ErrorForbidden):
		return echo.NewHTTPError(http.StatusForbidden, common.ErrorForbidden.Error())
	case errors.Is(err, common.ErrorUnauthorized):
		return echo.NewHTTPError(http.StatusUnauthorized, common.ErrorUnauthorized.Error())
	case errors.Is(err, common.ErrorNotFound):
		return echo.NewHTTPError(http.StatusNotFound, common.ErrorNotFound.Error())
	default:
		s.logger.Error(c.Request().Context(), "request failed", "path", c.Path(), "error", err)
		return echo.NewHTTPError(http.StatusInternalServerError, "internal error")
	}
}
