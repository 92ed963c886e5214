// Package httperr renders service errors as the JSON error body every
// endpoint returns: {"code": "...", "message": "..."}.
package httperr

import (
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"equiprental/util/apperr"

	"github.com/labstack/echo/v4"
)

type Body struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Detail  string `json:"detail,omitempty"`
}

// Status maps an error code to its HTTP status.
func Status(code apperr.ErrCode) int {
	switch code {
	case apperr.ErrValidation, apperr.ErrInvalidQuantity, apperr.ErrInvalidPeriod, apperr.ErrUnsupportedModality:
		return http.StatusBadRequest
	case apperr.ErrNotFound, apperr.ErrItemNotFound:
		return http.StatusNotFound
	case apperr.ErrInvalidTransition, apperr.ErrQuoteNotEditable, apperr.ErrQuoteNotFinalized,
		apperr.ErrEmptyQuote, apperr.ErrEquipmentUnavailable, apperr.ErrEquipmentInUse, apperr.ErrDuplicate:
		return http.StatusConflict
	case apperr.ErrForbidden:
		return http.StatusForbidden
	case apperr.ErrUnauthenticated:
		return http.StatusUnauthorized
	case apperr.ErrTransient:
		return http.StatusServiceUnavailable
	}
	return http.StatusInternalServerError
}

// Write sends err as an error body. Server-side failures are logged with
// the request id and never leak their detail.
func Write(c echo.Context, log *slog.Logger, err error) error {
	code := apperr.Code(err)
	status := Status(code)
	body := Body{Code: string(code), Message: apperr.Message(code)}
	if code == "" {
		body.Code = "INTERNAL"
	}
	if status < http.StatusInternalServerError {
		body.Detail = apperr.Detail(err)
	} else if log != nil {
		log.Error("request failed",
			"err", err,
			"code", body.Code,
			"req_id", c.Response().Header().Get(echo.HeaderXRequestID),
			"path", c.Path(),
			"method", c.Request().Method,
		)
	}
	return c.JSON(status, body)
}

// Invalid is a 400 VALIDATION answer for malformed requests.
func Invalid(c echo.Context, detail string) error {
	return Write(c, nil, apperr.Newf(apperr.ErrValidation, "%s", detail))
}

// Handler is the echo error handler; it gives errors raised by middleware
// (jwt, routing, body limits) the same body shape as controller errors.
func Handler(log *slog.Logger) echo.HTTPErrorHandler {
	return func(err error, c echo.Context) {
		if c.Response().Committed {
			return
		}
		var he *echo.HTTPError
		if apperr.Code(err) == "" && errors.As(err, &he) {
			code := codeForStatus(he.Code)
			msg := http.StatusText(he.Code)
			if s, ok := he.Message.(string); ok && s != "" {
				msg = s
			}
			if c.Request().Method == http.MethodHead {
				err = c.NoContent(he.Code)
			} else {
				err = c.JSON(he.Code, Body{Code: code, Message: msg})
			}
			if err != nil && log != nil {
				log.Warn("write error response", "err", err)
			}
			return
		}
		if werr := Write(c, log, err); werr != nil && log != nil {
			log.Warn("write error response", "err", werr)
		}
	}
}

func codeForStatus(status int) string {
	switch status {
	case http.StatusBadRequest:
		return string(apperr.ErrValidation)
	case http.StatusUnauthorized:
		return string(apperr.ErrUnauthenticated)
	case http.StatusForbidden:
		return string(apperr.ErrForbidden)
	case http.StatusNotFound:
		return string(apperr.ErrNotFound)
	case http.StatusServiceUnavailable:
		return string(apperr.ErrTransient)
	}
	return strings.ToUpper(strings.ReplaceAll(http.StatusText(status), " ", "_"))
}
