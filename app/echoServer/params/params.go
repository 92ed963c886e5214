// Package params reads the path and query values shared by controllers.
package params

import (
	"strconv"
	"time"

	"equiprental/model"
	"equiprental/service/pricing"
	"equiprental/util/apperr"

	"github.com/labstack/echo/v4"
)

// DateLayout is the wire format of usage dates.
const DateLayout = "2006-01-02"

// ID parses a positive int64 path parameter.
func ID(c echo.Context, name string) (int64, error) {
	id, err := strconv.ParseInt(c.Param(name), 10, 64)
	if err != nil || id <= 0 {
		return 0, apperr.Newf(apperr.ErrValidation, "invalid %s", name)
	}
	return id, nil
}

// Page reads page and page_size from the query, normalized.
func Page(c echo.Context) (model.PageReq, error) {
	var p model.PageReq
	err := echo.QueryParamsBinder(c).
		Int("page", &p.Page).
		Int("page_size", &p.PageSize).
		BindError()
	if err != nil {
		return p, apperr.Newf(apperr.ErrValidation, "invalid pagination")
	}
	return p.Normalize(), nil
}

// Locale is the display locale asked for by Accept-Language.
func Locale(c echo.Context) string {
	return pricing.DetectLocale(c.Request().Header.Get("Accept-Language"))
}

// Date parses an optional YYYY-MM-DD value; "" gives nil.
func Date(s, field string) (*time.Time, error) {
	if s == "" {
		return nil, nil
	}
	t, err := time.ParseInLocation(DateLayout, s, time.UTC)
	if err != nil {
		return nil, apperr.Newf(apperr.ErrValidation, "%s must be YYYY-MM-DD", field)
	}
	return &t, nil
}
