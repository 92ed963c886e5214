package equipment

import (
	"log/slog"
	"net/http"
	"strconv"

	"equiprental/app/echoServer/httperr"
	"equiprental/app/echoServer/jwtx"
	"equiprental/app/echoServer/params"
	"equiprental/app/echoServer/validation"
	"equiprental/model"
	catalogsvc "equiprental/service/catalog"
	"equiprental/service/pricing"
	"equiprental/util/apperr"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"github.com/shopspring/decimal"
)

type Controller struct {
	Svc catalogsvc.Service
	V   *validator.Validate
	Log *slog.Logger
}

func (h *Controller) fail(c echo.Context, err error) error { return httperr.Write(c, h.Log, err) }

// GET /v1/categories
func (h *Controller) ListCategories(c echo.Context) error {
	rows, err := h.Svc.ListCategories(c.Request().Context())
	if err != nil {
		return h.fail(c, err)
	}
	if rows == nil {
		rows = []model.Category{}
	}
	return c.JSON(http.StatusOK, rows)
}

// POST /v1/categories  (staff)
func (h *Controller) CreateCategory(c echo.Context) error {
	var req CategoryReq
	if err := validation.Bind(c, h.V, &req); err != nil {
		return h.fail(c, err)
	}
	by, err := jwtx.PrincipalFromContext(c)
	if err != nil {
		return h.fail(c, apperr.New(apperr.ErrUnauthenticated))
	}
	cat := &model.Category{Name: req.Name, Description: req.Description, Active: true}
	if err := h.Svc.CreateCategory(c.Request().Context(), by, cat); err != nil {
		return h.fail(c, err)
	}
	return c.JSON(http.StatusCreated, cat)
}

func parseFilter(c echo.Context) (catalogsvc.Filter, error) {
	var (
		f                 catalogsvc.Filter
		avail, pmin, pmax string
	)
	err := echo.QueryParamsBinder(c).
		Int64("category", &f.CategoryID).
		String("available", &avail).
		String("search", &f.Search).
		String("brand", &f.Brand).
		String("price_min", &pmin).
		String("price_max", &pmax).
		BindError()
	if err != nil {
		return f, apperr.Newf(apperr.ErrValidation, "invalid filter")
	}
	if avail != "" {
		b, err := strconv.ParseBool(avail)
		if err != nil {
			return f, apperr.Newf(apperr.ErrValidation, "available must be true or false")
		}
		f.Available = &b
	}
	for _, p := range []struct {
		raw string
		dst **decimal.Decimal
	}{{pmin, &f.PriceMin}, {pmax, &f.PriceMax}} {
		if p.raw == "" {
			continue
		}
		d, err := decimal.NewFromString(p.raw)
		if err != nil {
			return f, apperr.Newf(apperr.ErrValidation, "invalid price %q", p.raw)
		}
		*p.dst = &d
	}
	return f, nil
}

// List equipment
// @Summary      List equipment
// @Tags         equipment
// @Produce      json
// @Param        category   query  int     false  "category id"
// @Param        available  query  bool    false  "effective availability"
// @Param        search     query  string  false  "name, brand, model or description"
// @Param        brand      query  string  false  "brand"
// @Param        price_min  query  string  false  "minimum daily price"
// @Param        price_max  query  string  false  "maximum daily price"
// @Param        page       query  int     false  "page (1-based)"
// @Param        page_size  query  int     false  "page size"
// @Success      200  {object}  map[string]any
// @Failure      400  {object}  httperr.Body
// @Router       /v1/equipment [get]
func (h *Controller) List(c echo.Context) error {
	f, err := parseFilter(c)
	if err != nil {
		return h.fail(c, err)
	}
	page, err := params.Page(c)
	if err != nil {
		return h.fail(c, err)
	}
	res, err := h.Svc.List(c.Request().Context(), f, page)
	if err != nil {
		return h.fail(c, err)
	}
	loc := params.Locale(c)
	out := make([]EquipmentResp, 0, len(res.Results))
	for i := range res.Results {
		out = append(out, toResp(&res.Results[i], loc))
	}
	return c.JSON(http.StatusOK, model.Page[EquipmentResp]{
		Results: out, Count: res.Count, Page: res.Page, PageSize: res.PageSize,
	})
}

// GET /v1/equipment/:id
func (h *Controller) Get(c echo.Context) error {
	id, err := params.ID(c, "id")
	if err != nil {
		return h.fail(c, err)
	}
	e, err := h.Svc.Get(c.Request().Context(), id)
	if err != nil {
		return h.fail(c, err)
	}
	return c.JSON(http.StatusOK, toResp(e, params.Locale(c)))
}

// Price a hypothetical line
// @Summary      Price a line
// @Description  Computes unit and total value for a modality, period and quantity without touching any quote
// @Tags         equipment
// @Accept       json
// @Produce      json
// @Param        id       path  int       true  "equipment id"
// @Param        payload  body  PriceReq  true  "line"
// @Success      200  {object}  PriceResp
// @Failure      400  {object}  httperr.Body
// @Failure      404  {object}  httperr.Body
// @Router       /v1/equipment/{id}/price [post]
func (h *Controller) Price(c echo.Context) error {
	id, err := params.ID(c, "id")
	if err != nil {
		return h.fail(c, err)
	}
	var req PriceReq
	if err := validation.Bind(c, h.V, &req); err != nil {
		return h.fail(c, err)
	}
	line, err := h.Svc.Price(c.Request().Context(), id, model.Modality(req.Modality), req.Period, req.Quantity)
	if err != nil {
		return h.fail(c, err)
	}
	loc := params.Locale(c)
	return c.JSON(http.StatusOK, PriceResp{
		Line:           line,
		UnitFormatted:  pricing.Format(line.UnitValue, loc),
		TotalFormatted: pricing.Format(line.Total, loc),
	})
}

// POST /v1/equipment  (staff)
func (h *Controller) Create(c echo.Context) error {
	var req EquipmentReq
	if err := validation.Bind(c, h.V, &req); err != nil {
		return h.fail(c, err)
	}
	by, err := jwtx.PrincipalFromContext(c)
	if err != nil {
		return h.fail(c, apperr.New(apperr.ErrUnauthenticated))
	}
	e := req.toModel(0)
	if err := h.Svc.Create(c.Request().Context(), by, e); err != nil {
		return h.fail(c, err)
	}
	h.Log.Info("equipment created", "id", e.ID, "by", by.UserID)
	return c.JSON(http.StatusCreated, toResp(e, params.Locale(c)))
}

// PUT /v1/equipment/:id  (staff)
func (h *Controller) Update(c echo.Context) error {
	id, err := params.ID(c, "id")
	if err != nil {
		return h.fail(c, err)
	}
	var req EquipmentReq
	if err := validation.Bind(c, h.V, &req); err != nil {
		return h.fail(c, err)
	}
	by, err := jwtx.PrincipalFromContext(c)
	if err != nil {
		return h.fail(c, apperr.New(apperr.ErrUnauthenticated))
	}
	e := req.toModel(id)
	if err := h.Svc.Update(c.Request().Context(), by, e); err != nil {
		return h.fail(c, err)
	}
	return c.JSON(http.StatusOK, toResp(e, params.Locale(c)))
}

// DELETE /v1/equipment/:id  (staff)
func (h *Controller) Delete(c echo.Context) error {
	id, err := params.ID(c, "id")
	if err != nil {
		return h.fail(c, err)
	}
	by, err := jwtx.PrincipalFromContext(c)
	if err != nil {
		return h.fail(c, apperr.New(apperr.ErrUnauthenticated))
	}
	if err := h.Svc.Delete(c.Request().Context(), by, id); err != nil {
		return h.fail(c, err)
	}
	h.Log.Info("equipment deleted", "id", id, "by", by.UserID)
	return c.NoContent(http.StatusNoContent)
}

// GET /v1/equipment/:id/can-delete  (staff)
func (h *Controller) CanDelete(c echo.Context) error {
	id, err := params.ID(c, "id")
	if err != nil {
		return h.fail(c, err)
	}
	ok, n, err := h.Svc.CanDelete(c.Request().Context(), id)
	if err != nil {
		return h.fail(c, err)
	}
	return c.JSON(http.StatusOK, echo.Map{"can_delete": ok, "open_reservations": n})
}

// POST /v1/availability
func (h *Controller) CheckAvailability(c echo.Context) error {
	var req struct {
		Items []catalogsvc.AvailabilityReq `json:"items" validate:"required,min=1,dive"`
	}
	if err := validation.Bind(c, h.V, &req); err != nil {
		return h.fail(c, err)
	}
	out, err := h.Svc.CheckAvailability(c.Request().Context(), req.Items)
	if err != nil {
		return h.fail(c, err)
	}
	all := true
	for _, a := range out {
		all = all && a.Available
	}
	return c.JSON(http.StatusOK, echo.Map{"available": all, "items": out})
}
