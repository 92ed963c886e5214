package reservation

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"equiprental/app/echoServer/httperr"
	"equiprental/app/echoServer/jwtx"
	"equiprental/app/echoServer/params"
	"equiprental/app/echoServer/validation"
	"equiprental/model"
	reservationsvc "equiprental/service/reservation"
	"equiprental/util/apperr"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
)

type Controller struct {
	Svc reservationsvc.Service
	V   *validator.Validate
	Log *slog.Logger
}

func (h *Controller) fail(c echo.Context, err error) error { return httperr.Write(c, h.Log, err) }

// target resolves the caller and the :id path parameter.
func (h *Controller) target(c echo.Context) (model.Principal, int64, error) {
	by, err := jwtx.PrincipalFromContext(c)
	if err != nil {
		return by, 0, apperr.New(apperr.ErrUnauthenticated)
	}
	id, err := params.ID(c, "id")
	return by, id, err
}

func parseFilter(c echo.Context) (reservationsvc.Filter, error) {
	var (
		f                                          reservationsvc.Filter
		status                                     string
		owner                                      int64
		usageFrom, usageTo, createdFrom, createdTo string
	)
	err := echo.QueryParamsBinder(c).
		String("status", &status).
		Int64("owner_id", &owner).
		String("usage_from", &usageFrom).
		String("usage_to", &usageTo).
		String("created_from", &createdFrom).
		String("created_to", &createdTo).
		BindError()
	if err != nil {
		return f, apperr.Newf(apperr.ErrValidation, "invalid filter")
	}
	f.Status = model.ReservationStatus(status)
	if owner > 0 {
		f.OwnerID = &owner
	}
	for _, d := range []struct {
		raw, name string
		dst       **time.Time
	}{
		{usageFrom, "usage_from", &f.UsageFrom},
		{usageTo, "usage_to", &f.UsageTo},
		{createdFrom, "created_from", &f.CreatedFrom},
		{createdTo, "created_to", &f.CreatedTo},
	} {
		t, err := params.Date(d.raw, d.name)
		if err != nil {
			return f, err
		}
		*d.dst = t
	}
	return f, nil
}

// List reservations
// @Summary      List reservations
// @Description  Clients only see their own reservations; owner_id is honored for staff
// @Tags         reservations
// @Produce      json
// @Security     BearerAuth
// @Param        status        query  string  false  "status"
// @Param        owner_id      query  int     false  "owner (staff)"
// @Param        usage_from    query  string  false  "YYYY-MM-DD"
// @Param        usage_to      query  string  false  "YYYY-MM-DD"
// @Param        created_from  query  string  false  "YYYY-MM-DD"
// @Param        created_to    query  string  false  "YYYY-MM-DD"
// @Param        page          query  int     false  "page (1-based)"
// @Param        page_size     query  int     false  "page size"
// @Success      200  {object}  map[string]any
// @Router       /v1/reservations [get]
func (h *Controller) List(c echo.Context) error {
	by, err := jwtx.PrincipalFromContext(c)
	if err != nil {
		return h.fail(c, apperr.New(apperr.ErrUnauthenticated))
	}
	f, err := parseFilter(c)
	if err != nil {
		return h.fail(c, err)
	}
	page, err := params.Page(c)
	if err != nil {
		return h.fail(c, err)
	}
	res, err := h.Svc.List(c.Request().Context(), by, f, page)
	if err != nil {
		return h.fail(c, err)
	}
	loc := params.Locale(c)
	out := make([]ReservationResp, 0, len(res.Results))
	for i := range res.Results {
		out = append(out, ToResp(&res.Results[i], loc))
	}
	return c.JSON(http.StatusOK, model.Page[ReservationResp]{
		Results: out, Count: res.Count, Page: res.Page, PageSize: res.PageSize,
	})
}

// GET /v1/reservations/:id
func (h *Controller) Get(c echo.Context) error {
	by, id, err := h.target(c)
	if err != nil {
		return h.fail(c, err)
	}
	r, err := h.Svc.Get(c.Request().Context(), by, id)
	if err != nil {
		return h.fail(c, err)
	}
	return c.JSON(http.StatusOK, ToResp(r, params.Locale(c)))
}

type transitionFn func(ctx context.Context, by model.Principal, id int64) (*model.Reservation, error)

func (h *Controller) transition(c echo.Context, action string, fn transitionFn) error {
	by, id, err := h.target(c)
	if err != nil {
		return h.fail(c, err)
	}
	r, err := fn(c.Request().Context(), by, id)
	if err != nil {
		return h.fail(c, err)
	}
	h.Log.Info("reservation "+action, "id", r.ID, "status", r.Status, "by", by.UserID)
	return c.JSON(http.StatusOK, ToResp(r, params.Locale(c)))
}

// POST /v1/reservations/:id/cancel
func (h *Controller) Cancel(c echo.Context) error {
	return h.transition(c, "cancelled", h.Svc.Cancel)
}

// POST /v1/reservations/:id/activate  (staff)
func (h *Controller) Activate(c echo.Context) error {
	return h.transition(c, "activated", h.Svc.Activate)
}

// POST /v1/reservations/:id/complete  (staff)
func (h *Controller) Complete(c echo.Context) error {
	return h.transition(c, "completed", h.Svc.Complete)
}

// Approve a pending reservation
// @Summary      Approve reservation
// @Description  Takes the stock for every line in the same transaction as the status change
// @Tags         reservations
// @Produce      json
// @Security     BearerAuth
// @Param        id  path  int  true  "reservation id"
// @Success      200  {object}  ApproveResp
// @Failure      409  {object}  httperr.Body "INVALID_TRANSITION, EQUIPMENT_UNAVAILABLE"
// @Router       /v1/reservations/{id}/approve [post]
func (h *Controller) Approve(c echo.Context) error {
	by, id, err := h.target(c)
	if err != nil {
		return h.fail(c, err)
	}
	r, moves, err := h.Svc.Approve(c.Request().Context(), by, id)
	if err != nil {
		return h.fail(c, err)
	}
	if moves == nil {
		moves = []model.StockMovement{}
	}
	h.Log.Info("reservation approved", "id", r.ID, "by", by.UserID, "lines", len(moves))
	return c.JSON(http.StatusOK, ApproveResp{Reservation: ToResp(r, params.Locale(c)), Movements: moves})
}

// POST /v1/reservations/:id/reject  (staff)
func (h *Controller) Reject(c echo.Context) error {
	by, id, err := h.target(c)
	if err != nil {
		return h.fail(c, err)
	}
	var req RejectReq
	if err := validation.Bind(c, h.V, &req); err != nil {
		return h.fail(c, err)
	}
	r, err := h.Svc.Reject(c.Request().Context(), by, id, req.Reason)
	if err != nil {
		return h.fail(c, err)
	}
	h.Log.Info("reservation rejected", "id", r.ID, "by", by.UserID)
	return c.JSON(http.StatusOK, ToResp(r, params.Locale(c)))
}

// GET /v1/reservations/stats  (staff)
func (h *Controller) Stats(c echo.Context) error {
	by, err := jwtx.PrincipalFromContext(c)
	if err != nil {
		return h.fail(c, apperr.New(apperr.ErrUnauthenticated))
	}
	st, err := h.Svc.Stats(c.Request().Context(), by)
	if err != nil {
		return h.fail(c, err)
	}
	return c.JSON(http.StatusOK, st)
}
